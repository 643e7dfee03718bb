package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/quillchat/quill/internal/tui"
)

// ============================================================================
// Message Types
// ============================================================================

// SubmitOnboardingMsg is sent when the user finishes the onboarding picker.
type SubmitOnboardingMsg struct {
	Preferences map[string]any
}

// ============================================================================
// OnboardingModel
// ============================================================================

var responseStyles = []string{"concise", "balanced", "detailed"}

// OnboardingModel is the one-time preference picker shown after registration.
type OnboardingModel struct {
	selected   int
	webSearch  bool
	focusRow   int // 0 = style, 1 = web search
	submitting bool
	spinner    spinner.Model
	status     string
	width      int
	height     int
}

// NewOnboardingModel creates the onboarding picker.
func NewOnboardingModel(width, height int) OnboardingModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED"))

	return OnboardingModel{
		selected:  1, // balanced
		webSearch: true,
		spinner:   sp,
		width:     width,
		height:    height,
	}
}

// SetStatus sets the transient status line.
func (m *OnboardingModel) SetStatus(status string) {
	m.status = status
	m.submitting = false
}

// Update handles messages for the onboarding view.
func (m OnboardingModel) Update(msg tea.Msg) (OnboardingModel, tea.Cmd) {
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
			m.focusRow = (m.focusRow + 1) % 2
		case "shift+tab", "up":
			m.focusRow = (m.focusRow + 1) % 2
		case "left":
			if m.focusRow == 0 && m.selected > 0 {
				m.selected--
			} else if m.focusRow == 1 {
				m.webSearch = !m.webSearch
			}
		case "right":
			if m.focusRow == 0 && m.selected < len(responseStyles)-1 {
				m.selected++
			} else if m.focusRow == 1 {
				m.webSearch = !m.webSearch
			}
		case " ":
			if m.focusRow == 1 {
				m.webSearch = !m.webSearch
			}
		case "enter":
			m.submitting = true
			m.status = ""
			prefs := map[string]any{
				"response_style":     responseStyles[m.selected],
				"web_search_enabled": m.webSearch,
			}
			return m, tea.Batch(
				m.spinner.Tick,
				func() tea.Msg { return SubmitOnboardingMsg{Preferences: prefs} },
			)
		}
	}
	return m, nil
}

// View renders the onboarding screen.
func (m OnboardingModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("Welcome to Quill"))
	b.WriteString("\n\n")
	b.WriteString("How should the assistant respond?\n\n")

	var styleRow []string
	for i, s := range responseStyles {
		if i == m.selected {
			styleRow = append(styleRow, tui.SelectedStyle.Render(" "+s+" "))
		} else {
			styleRow = append(styleRow, tui.DimStyle.Render(" "+s+" "))
		}
	}
	b.WriteString(strings.Join(styleRow, " "))
	b.WriteString("\n\n")

	check := "[ ]"
	if m.webSearch {
		check = "[x]"
	}
	searchLine := check + " allow web search"
	if m.focusRow == 1 {
		searchLine = tui.SelectedStyle.Render(searchLine)
	}
	b.WriteString(searchLine)
	b.WriteString("\n\n")

	if m.submitting {
		b.WriteString(m.spinner.View() + " saving preferences...")
	} else if m.status != "" {
		b.WriteString(tui.ErrorStyle.Render(m.status))
	}
	b.WriteString("\n\n")
	b.WriteString(tui.DimStyle.Render("←/→: choose • tab: next • enter: continue"))

	box := tui.BoxStyle.Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
