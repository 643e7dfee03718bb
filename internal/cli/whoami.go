package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.Close()

		user := rt.auth.CurrentUser()
		if user == nil {
			fmt.Println("Not signed in.")
			return nil
		}

		// Refresh from the server so stale profiles do not mislead; the
		// persisted copy is still shown if the server is unreachable.
		if err := rt.auth.RefreshUser(context.Background()); err == nil {
			user = rt.auth.CurrentUser()
		}
		if user == nil {
			fmt.Println("Session expired. Run 'quill login' to sign in again.")
			return nil
		}

		fmt.Printf("Signed in as %s", user.Email)
		if user.Name != "" {
			fmt.Printf(" (%s)", user.Name)
		}
		fmt.Println()
		return nil
	},
}
