// Package cli defines Cobra command definitions for the quill CLI.
// This file contains the root command, version flag, and help output.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quillchat/quill/internal/tui"
	"github.com/quillchat/quill/internal/tui/app"
)

var (
	serverURL string
	version   = "dev" // set via ldflags at build time
)

var rootCmd = &cobra.Command{
	Use:   "quill",
	Short: "Terminal client for the Quill chat service",
	Long: `Quill is a terminal client for the hosted Quill chat service.
It keeps you signed in between runs, synchronizes your conversations
with the server, and renders assistant replies in the terminal.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// When no subcommand is provided, launch TUI if TTY, show help otherwise
		if !tui.IsTTY() {
			return cmd.Help()
		}

		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.Close()

		model := tui.NewModel(rt.cfg, rt.auth, rt.engine, rt.analytics, rt.logger)
		return tui.Run(app.New(model))
	},
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Override the configured server URL")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(themeCmd)
	rootCmd.AddCommand(exportCmd)
}
