// Package markup converts raw message content into safe display markup.
package markup

import (
	"regexp"
	"strings"
)

// Substitution patterns, applied to already-escaped text.
var (
	fencedCodeRe = regexp.MustCompile("(?s)```(?:[a-zA-Z0-9_-]*\\n)?(.*?)```")
	inlineCodeRe = regexp.MustCompile("`([^`\n]+)`")
	boldRe       = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicRe     = regexp.MustCompile(`\*([^*]+)\*`)
)

// escape replaces HTML-sensitive characters with entities.
func escape(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
	)
	return r.Replace(s)
}

// FormatContent renders message content as display markup.
//
// HTML-sensitive characters are escaped first, then a fixed set of
// lightweight substitutions is applied to the escaped text: fenced code
// blocks, inline code, bold, italic, and line breaks, in that order.
// Escaping must precede substitution so that content containing
// markup-like syntax can never inject live HTML.
func FormatContent(content string) string {
	out := escape(content)

	out = fencedCodeRe.ReplaceAllString(out, "<pre><code>$1</code></pre>")
	out = inlineCodeRe.ReplaceAllString(out, "<code>$1</code>")
	out = boldRe.ReplaceAllString(out, "<strong>$1</strong>")
	out = italicRe.ReplaceAllString(out, "<em>$1</em>")
	out = strings.ReplaceAll(out, "\n", "<br>")

	return out
}
