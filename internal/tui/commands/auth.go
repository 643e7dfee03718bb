// Package commands provides Bubble Tea commands for TUI operations.
package commands

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/quillchat/quill/internal/auth"
	"github.com/quillchat/quill/internal/tui"
)

// LoginCmd attempts a login with the given credentials.
func LoginCmd(mgr *auth.Manager, email, password string) tea.Cmd {
	return func() tea.Msg {
		err := mgr.Login(context.Background(), email, password)
		return tui.LoginResultMsg{Err: err}
	}
}

// RegisterCmd creates a new account.
func RegisterCmd(mgr *auth.Manager, email, password, name string) tea.Cmd {
	return func() tea.Msg {
		err := mgr.Register(context.Background(), email, password, name)
		return tui.RegisterResultMsg{Err: err}
	}
}

// CompleteOnboardingCmd submits the collected preferences.
func CompleteOnboardingCmd(mgr *auth.Manager, preferences map[string]any) tea.Cmd {
	return func() tea.Msg {
		err := mgr.UpdateProfile(context.Background(), preferences)
		return tui.OnboardingResultMsg{Err: err}
	}
}

// LogoutCmd tears the session down.
func LogoutCmd(mgr *auth.Manager) tea.Cmd {
	return func() tea.Msg {
		mgr.Logout(context.Background())
		return tui.LoggedOutMsg{}
	}
}
