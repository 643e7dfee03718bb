package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quillchat/quill/internal/markup"
)

var exportCmd = &cobra.Command{
	Use:   "export <conversation-id>",
	Short: "Export a conversation as an HTML transcript",
	Long: `Fetches a conversation and writes it to stdout (or --out) as a
self-contained HTML page. Message content is escaped before any markup
substitution, so transcripts containing HTML-like text are safe to open.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.Close()

		if !rt.auth.IsAuthenticated() {
			return fmt.Errorf("not signed in; run 'quill login' first")
		}

		if err := rt.engine.LoadConversation(context.Background(), args[0]); err != nil {
			return fmt.Errorf("fetching conversation: %w", err)
		}
		conv := rt.engine.Active()
		if conv == nil {
			return fmt.Errorf("conversation %s not found", args[0])
		}

		var b strings.Builder
		b.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>")
		b.WriteString(markup.FormatContent(conv.Title))
		b.WriteString("</title></head><body>\n")
		fmt.Fprintf(&b, "<h1>%s</h1>\n", markup.FormatContent(conv.Title))
		for _, msg := range conv.Messages {
			fmt.Fprintf(&b, "<div class=%q><p><b>%s</b></p><p>%s</p></div>\n",
				msg.Role, msg.Role, markup.FormatContent(msg.Content))
		}
		b.WriteString("</body></html>\n")

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			fmt.Print(b.String())
			return nil
		}
		if err := os.WriteFile(out, []byte(b.String()), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", out, err)
		}
		fmt.Printf("Wrote %s\n", out)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("out", "", "Write the transcript to a file instead of stdout")
}
