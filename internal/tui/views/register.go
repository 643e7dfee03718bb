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

// SubmitRegisterMsg is sent when the user submits the registration form.
type SubmitRegisterMsg struct {
	Email    string
	Password string
	Name     string
}

// SwitchToLoginMsg is sent when the user returns to the login form.
type SwitchToLoginMsg struct{}

// ============================================================================
// RegisterModel
// ============================================================================

// RegisterModel is the view model for the account creation screen.
type RegisterModel struct {
	inputs     []textinput.Model // 0 = name, 1 = email, 2 = password
	focus      int
	submitting bool
	spinner    spinner.Model
	status     string
	width      int
	height     int
}

// NewRegisterModel creates a registration form.
func NewRegisterModel(width, height int) RegisterModel {
	name := textinput.New()
	name.Placeholder = "name"
	name.CharLimit = 120
	name.Width = 40
	name.Focus()

	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 120
	email.Width = 40

	password := textinput.New()
	password.Placeholder = "password (6+ characters)"
	password.CharLimit = 120
	password.Width = 40
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED"))

	return RegisterModel{
		inputs:  []textinput.Model{name, email, password},
		spinner: sp,
		width:   width,
		height:  height,
	}
}

// SetStatus sets the transient status line.
func (m *RegisterModel) SetStatus(status string) {
	m.status = status
	m.submitting = false
}

// Update handles messages for the register view.
func (m RegisterModel) Update(msg tea.Msg) (RegisterModel, tea.Cmd) {
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
		case "esc":
			return m, func() tea.Msg { return SwitchToLoginMsg{} }
		case "enter":
			name := strings.TrimSpace(m.inputs[0].Value())
			email := strings.TrimSpace(m.inputs[1].Value())
			password := m.inputs[2].Value()
			if email == "" || password == "" {
				m.status = "Email and password are required"
				return m, nil
			}
			m.submitting = true
			m.status = ""
			return m, tea.Batch(
				m.spinner.Tick,
				func() tea.Msg { return SubmitRegisterMsg{Email: email, Password: password, Name: name} },
			)
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m RegisterModel) moveFocus(delta int) RegisterModel {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Focus()
	return m
}

// View renders the registration screen.
func (m RegisterModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("Create a Quill account"))
	b.WriteString("\n\n")
	for _, in := range m.inputs {
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.submitting {
		b.WriteString(m.spinner.View() + " creating account...")
	} else if m.status != "" {
		b.WriteString(tui.ErrorStyle.Render(m.status))
	}
	b.WriteString("\n\n")
	b.WriteString(tui.DimStyle.Render("enter: create account • esc: back to sign in"))

	box := tui.BoxStyle.Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
