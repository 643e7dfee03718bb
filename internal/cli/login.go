package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and persist the session",
	Long: `Prompts for credentials, signs in to the server, and stores the
session so later runs start authenticated.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.Close()

		if user := rt.auth.CurrentUser(); user != nil {
			fmt.Printf("Already signed in as %s. Run 'quill logout' first to switch accounts.\n", user.Email)
			return nil
		}

		reader := bufio.NewReader(os.Stdin)
		fmt.Print("Email: ")
		email, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("reading email: %w", err)
		}
		email = strings.TrimSpace(email)

		fmt.Print("Password: ")
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}

		if err := rt.auth.Login(context.Background(), email, string(password)); err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		user := rt.auth.CurrentUser()
		fmt.Printf("Signed in as %s\n", user.Email)
		return nil
	},
}
