package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the persisted session",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.Close()

		if !rt.auth.IsAuthenticated() {
			fmt.Println("Not signed in.")
			return nil
		}

		rt.auth.Logout(context.Background())
		fmt.Println("Signed out.")
		return nil
	},
}
