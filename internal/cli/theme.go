package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quillchat/quill/internal/store"
)

var themeCmd = &cobra.Command{
	Use:   "theme [dark|light]",
	Short: "Show or set the UI theme",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.Close()

		if len(args) == 0 {
			fmt.Println(rt.cfg.Theme)
			return nil
		}

		theme := args[0]
		if theme != "dark" && theme != "light" {
			return fmt.Errorf("unknown theme %q (expected dark or light)", theme)
		}
		if err := rt.store.Save(store.KeyTheme, theme); err != nil {
			return fmt.Errorf("saving theme: %w", err)
		}
		fmt.Printf("Theme set to %s\n", theme)
		return nil
	},
}
