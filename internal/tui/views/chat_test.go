package views

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/quillchat/quill/internal/chat"
)

func TestSidebarTruncatesTitlesOnRuneBoundaries(t *testing.T) {
	m := NewChatModel(80, 24)
	m.SetSummaries([]chat.Summary{
		{ID: "c1", Title: strings.Repeat("日本語の長いタイトル", 5), MessageCount: 3},
		{ID: "c2", Title: "short", MessageCount: 1},
	})

	out := m.renderSidebar()
	if !utf8.ValidString(out) {
		t.Error("sidebar output contains invalid UTF-8")
	}
	if !strings.Contains(out, "…") {
		t.Error("long title was not truncated")
	}
	if !strings.Contains(out, "short (1)") {
		t.Errorf("short title mangled:\n%s", out)
	}
}
