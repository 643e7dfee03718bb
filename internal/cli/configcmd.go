package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quillchat/quill/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or initialize the configuration",
	Long: `Prints the active configuration. With --init, writes a default
config file to the quill config directory if one does not exist.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := config.DefaultDir()
		if err != nil {
			return err
		}

		initFlag, _ := cmd.Flags().GetBool("init")
		cfg, err := config.ReadConfig(dir)
		if err != nil {
			cfg = config.DefaultConfig()
			if initFlag {
				if err := config.WriteConfig(dir, cfg); err != nil {
					return fmt.Errorf("writing config: %w", err)
				}
				fmt.Printf("Wrote default config to %s\n", dir)
			}
		}

		fmt.Printf("config dir:    %s\n", dir)
		fmt.Printf("server_url:    %s\n", cfg.ServerURL)
		fmt.Printf("theme:         %s\n", cfg.Theme)
		fmt.Printf("timeout:       %ds\n", cfg.TimeoutSeconds)
		fmt.Printf("history_limit: %d\n", cfg.HistoryLimit)
		return nil
	},
}

func init() {
	configCmd.Flags().Bool("init", false, "Write a default config file if none exists")
}
