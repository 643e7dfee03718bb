package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/quillchat/quill/internal/chat"
	"github.com/quillchat/quill/internal/tui"
)

// ============================================================================
// Message Types
// ============================================================================

// SendChatMsg is sent when the user submits the composer.
type SendChatMsg struct {
	Content string
}

// OpenConversationMsg is sent when the user picks a conversation from the
// sidebar.
type OpenConversationMsg struct {
	ID string
}

// NewChatMsg is sent when the user starts a fresh conversation.
type NewChatMsg struct{}

// DeleteChatMsg is sent when the user deletes the selected conversation.
type DeleteChatMsg struct {
	ID string
}

// ============================================================================
// ChatModel
// ============================================================================

const sidebarWidth = 32

// ChatModel is the main conversation screen: a sidebar of past conversations,
// the active transcript, and a composer.
type ChatModel struct {
	summaries    []chat.Summary
	selected     int
	active       *chat.Conversation
	sidebarFocus bool

	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	sending bool
	loading bool
	status  string
	width   int
	height  int
}

// NewChatModel creates the chat screen.
func NewChatModel(width, height int) ChatModel {
	ta := textarea.New()
	ta.Placeholder = "Send a message..."
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.CharLimit = 8000
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED"))

	m := ChatModel{
		textarea: ta,
		viewport: viewport.New(width-sidebarWidth-4, height-8),
		spinner:  sp,
		width:    width,
		height:   height,
	}
	m.resize(width, height)
	return m
}

func (m *ChatModel) resize(width, height int) {
	m.width = width
	m.height = height

	transcriptWidth := width - sidebarWidth - 4
	if transcriptWidth < 20 {
		transcriptWidth = 20
	}
	transcriptHeight := height - 8
	if transcriptHeight < 3 {
		transcriptHeight = 3
	}
	m.viewport.Width = transcriptWidth
	m.viewport.Height = transcriptHeight
	m.textarea.SetWidth(transcriptWidth)

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(transcriptWidth-2),
	)
	if err == nil {
		m.renderer = r
	}
	m.refreshTranscript()
}

// SetSummaries replaces the sidebar contents.
func (m *ChatModel) SetSummaries(summaries []chat.Summary) {
	m.summaries = summaries
	if m.selected >= len(summaries) {
		m.selected = 0
	}
}

// SetActive replaces the displayed transcript.
func (m *ChatModel) SetActive(conv *chat.Conversation) {
	m.active = conv
	m.loading = false
	m.refreshTranscript()
	m.viewport.GotoBottom()
}

// SetStatus sets the transient status line.
func (m *ChatModel) SetStatus(status string) {
	m.status = status
	m.sending = false
	m.loading = false
}

// SendFinished clears the in-flight indicator after a send completes.
func (m *ChatModel) SendFinished() {
	m.sending = false
}

// Update handles messages for the chat view.
func (m ChatModel) Update(msg tea.Msg) (ChatModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if !m.sending && !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "tab":
			m.sidebarFocus = !m.sidebarFocus
			if m.sidebarFocus {
				m.textarea.Blur()
			} else {
				m.textarea.Focus()
			}
			return m, nil
		case "ctrl+n":
			m.sidebarFocus = false
			m.textarea.Focus()
			m.status = ""
			return m, func() tea.Msg { return NewChatMsg{} }
		}

		if m.sidebarFocus {
			return m.updateSidebar(msg)
		}
		return m.updateComposer(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m ChatModel) updateSidebar(msg tea.KeyMsg) (ChatModel, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.summaries)-1 {
			m.selected++
		}
	case "enter":
		if m.selected < len(m.summaries) {
			id := m.summaries[m.selected].ID
			m.loading = true
			m.status = ""
			return m, tea.Batch(
				m.spinner.Tick,
				func() tea.Msg { return OpenConversationMsg{ID: id} },
			)
		}
	case "ctrl+x":
		if m.selected < len(m.summaries) {
			id := m.summaries[m.selected].ID
			return m, func() tea.Msg { return DeleteChatMsg{ID: id} }
		}
	}
	return m, nil
}

func (m ChatModel) updateComposer(msg tea.KeyMsg) (ChatModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		content := strings.TrimSpace(m.textarea.Value())
		if content == "" || m.sending {
			return m, nil
		}
		m.textarea.Reset()
		m.sending = true
		m.status = ""
		m.appendLocalUserMessage(content)
		return m, tea.Batch(
			m.spinner.Tick,
			func() tea.Msg { return SendChatMsg{Content: content} },
		)
	case "pgup":
		m.viewport.HalfViewUp()
		return m, nil
	case "pgdown":
		m.viewport.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// appendLocalUserMessage shows the submitted message immediately; the next
// SetActive call replaces the whole transcript with the authoritative one.
func (m *ChatModel) appendLocalUserMessage(content string) {
	conv := &chat.Conversation{}
	if m.active != nil {
		conv.ID = m.active.ID
		conv.Title = m.active.Title
		conv.Messages = append(conv.Messages, m.active.Messages...)
	}
	conv.Messages = append(conv.Messages, chat.Message{Role: "user", Content: content})
	m.active = conv
	m.refreshTranscript()
	m.viewport.GotoBottom()
}

func (m *ChatModel) refreshTranscript() {
	if m.active == nil || len(m.active.Messages) == 0 {
		m.viewport.SetContent(tui.DimStyle.Render("Start a new conversation by typing below."))
		return
	}

	var b strings.Builder
	for _, msg := range m.active.Messages {
		switch msg.Role {
		case "user":
			b.WriteString(tui.UserMessageStyle.Render("You"))
			b.WriteString("\n")
			b.WriteString(msg.Content)
			b.WriteString("\n\n")
		default:
			b.WriteString(tui.TitleStyle.Render("Assistant"))
			if msg.Metadata != nil && msg.Metadata.SearchUsed {
				b.WriteString(tui.DimStyle.Render("  (searched the web)"))
			}
			b.WriteString("\n")
			b.WriteString(m.renderMarkdown(msg.Content))
			b.WriteString("\n")
		}
	}
	m.viewport.SetContent(b.String())
}

func (m *ChatModel) renderMarkdown(content string) string {
	if m.renderer == nil {
		return content
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n") + "\n"
}

// View renders the chat screen.
func (m ChatModel) View() string {
	sidebar := m.renderSidebar()
	main := m.renderMain()
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main)
}

func (m ChatModel) renderSidebar() string {
	var b strings.Builder
	b.WriteString(tui.TitleStyle.Render("Conversations"))
	b.WriteString("\n\n")

	if len(m.summaries) == 0 {
		b.WriteString(tui.DimStyle.Render("No conversations yet"))
	}
	for i, s := range m.summaries {
		title := s.Title
		if title == "" {
			title = "Untitled"
		}
		if r := []rune(title); len(r) > sidebarWidth-6 {
			title = string(r[:sidebarWidth-7]) + "…"
		}
		line := fmt.Sprintf("%s (%d)", title, s.MessageCount)
		if i == m.selected && m.sidebarFocus {
			line = tui.SelectedStyle.Render(line)
		} else if m.active != nil && s.ID == m.active.ID {
			line = tui.SuccessStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	style := lipgloss.NewStyle().
		Width(sidebarWidth).
		Height(m.height - 2).
		Padding(1, 1).
		Border(lipgloss.RoundedBorder(), false, true, false, false).
		BorderForeground(lipgloss.Color("#4B5563"))
	return style.Render(b.String())
}

func (m ChatModel) renderMain() string {
	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.sending {
		b.WriteString(m.spinner.View() + " thinking...")
	} else if m.loading {
		b.WriteString(m.spinner.View() + " loading...")
	} else if m.status != "" {
		b.WriteString(tui.ErrorStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(m.textarea.View())
	b.WriteString("\n")
	b.WriteString(tui.StatusBarStyle.Render("enter: send • tab: sidebar • ctrl+n: new chat • ctrl+d: dashboard • ctrl+l: sign out"))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}
