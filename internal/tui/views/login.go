// Package views provides TUI view components for the quill application.
package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/quillchat/quill/internal/tui"
)

// ============================================================================
// Message Types
// ============================================================================

// SubmitLoginMsg is sent when the user submits the login form.
type SubmitLoginMsg struct {
	Email    string
	Password string
}

// SwitchToRegisterMsg is sent when the user asks for the register form.
type SwitchToRegisterMsg struct{}

// ============================================================================
// LoginModel
// ============================================================================

// LoginModel is the view model for the login screen.
type LoginModel struct {
	inputs     []textinput.Model // 0 = email, 1 = password
	focus      int
	submitting bool
	spinner    spinner.Model
	status     string
	width      int
	height     int
}

// NewLoginModel creates a login form.
func NewLoginModel(width, height int) LoginModel {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 120
	email.Width = 40
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 120
	password.Width = 40
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED"))

	return LoginModel{
		inputs:  []textinput.Model{email, password},
		spinner: sp,
		width:   width,
		height:  height,
	}
}

// SetStatus sets the transient status line (e.g. a failure notice).
func (m *LoginModel) SetStatus(status string) {
	m.status = status
	m.submitting = false
}

// Update handles messages for the login view.
func (m LoginModel) Update(msg tea.Msg) (LoginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "tab", "down":
			return m.moveFocus(1), nil
		case "shift+tab", "up":
			return m.moveFocus(-1), nil
		case "ctrl+r":
			return m, func() tea.Msg { return SwitchToRegisterMsg{} }
		case "enter":
			email := strings.TrimSpace(m.inputs[0].Value())
			password := m.inputs[1].Value()
			if email == "" || password == "" {
				m.status = "Email and password are required"
				return m, nil
			}
			m.submitting = true
			m.status = ""
			return m, tea.Batch(
				m.spinner.Tick,
				func() tea.Msg { return SubmitLoginMsg{Email: email, Password: password} },
			)
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m LoginModel) moveFocus(delta int) LoginModel {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Focus()
	return m
}

// View renders the login screen.
func (m LoginModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("Sign in to Quill"))
	b.WriteString("\n\n")
	b.WriteString(m.inputs[0].View())
	b.WriteString("\n")
	b.WriteString(m.inputs[1].View())
	b.WriteString("\n\n")

	if m.submitting {
		b.WriteString(m.spinner.View() + " signing in...")
	} else if m.status != "" {
		b.WriteString(tui.ErrorStyle.Render(m.status))
	}
	b.WriteString("\n\n")
	b.WriteString(tui.DimStyle.Render("enter: sign in • ctrl+r: create account • ctrl+c: quit"))

	box := tui.BoxStyle.Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
