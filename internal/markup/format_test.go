package markup

import (
	"strings"
	"testing"
)

func TestFormatContent(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain text",
			in:   "hello world",
			want: "hello world",
		},
		{
			name: "script tag is escaped",
			in:   `<script>alert("x")</script>`,
			want: "&lt;script&gt;alert(&quot;x&quot;)&lt;/script&gt;",
		},
		{
			name: "bold and inline code",
			in:   "**bold** `code`",
			want: "<strong>bold</strong> <code>code</code>",
		},
		{
			name: "italic",
			in:   "an *emphasized* word",
			want: "an <em>emphasized</em> word",
		},
		{
			name: "line breaks",
			in:   "one\ntwo",
			want: "one<br>two",
		},
		{
			name: "fenced code block",
			in:   "```go\nfmt.Println(1)\n```",
			want: "<pre><code>fmt.Println(1)<br></code></pre>",
		},
		{
			name: "ampersand",
			in:   "a & b",
			want: "a &amp; b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatContent(tt.in); got != tt.want {
				t.Errorf("FormatContent(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// Markup-like syntax inside message content must never produce live HTML
// beyond the fixed substitution set.
func TestFormatContentNoInjectionThroughMarkup(t *testing.T) {
	got := FormatContent("**<img src=x onerror=alert(1)>**")

	if strings.Contains(got, "<img") {
		t.Errorf("raw tag survived formatting: %q", got)
	}
	if !strings.HasPrefix(got, "<strong>") {
		t.Errorf("bold substitution missing: %q", got)
	}
}
