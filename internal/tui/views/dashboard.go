package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/quillchat/quill/internal/analytics"
	"github.com/quillchat/quill/internal/tui"
)

// ============================================================================
// Message Types
// ============================================================================

// CloseDashboardMsg is sent when the user leaves the dashboard.
type CloseDashboardMsg struct{}

// ============================================================================
// DashboardModel
// ============================================================================

// DashboardModel shows usage statistics for the signed-in user.
type DashboardModel struct {
	stats    *analytics.Stats
	usage    *analytics.Usage
	topics   []analytics.Topic
	insights *analytics.Insights
	loading  bool
	spinner  spinner.Model
	status   string
	width    int
	height   int
}

// NewDashboardModel creates the dashboard screen.
func NewDashboardModel(width, height int) DashboardModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED"))

	return DashboardModel{
		spinner: sp,
		width:   width,
		height:  height,
	}
}

// StartLoading marks the dashboard as fetching and returns the spinner tick.
func (m *DashboardModel) StartLoading() tea.Cmd {
	m.loading = true
	m.status = ""
	return m.spinner.Tick
}

// SetStats replaces the displayed statistics.
func (m *DashboardModel) SetStats(stats *analytics.Stats) {
	m.stats = stats
	m.loading = false
}

// SetUsage replaces the displayed daily activity chart.
func (m *DashboardModel) SetUsage(usage *analytics.Usage) {
	m.usage = usage
}

// SetTopics replaces the displayed recent-topics list.
func (m *DashboardModel) SetTopics(topics []analytics.Topic) {
	m.topics = topics
}

// SetInsights replaces the displayed usage-pattern insights.
func (m *DashboardModel) SetInsights(insights *analytics.Insights) {
	m.insights = insights
}

// SetStatus sets the transient status line.
func (m *DashboardModel) SetStatus(status string) {
	m.status = status
	m.loading = false
}

// Update handles messages for the dashboard view.
func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q", "ctrl+d":
			return m, func() tea.Msg { return CloseDashboardMsg{} }
		}
	}
	return m, nil
}

// View renders the dashboard screen.
func (m DashboardModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("Usage Dashboard"))
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(m.spinner.View() + " loading statistics...")
	case m.status != "":
		b.WriteString(tui.ErrorStyle.Render(m.status))
	case m.stats != nil:
		s := m.stats
		rows := []struct {
			label string
			value string
		}{
			{"Conversations", fmt.Sprintf("%d", s.TotalConversations)},
			{"Messages", fmt.Sprintf("%d", s.TotalMessages)},
			{"Messages today", fmt.Sprintf("%d", s.MessagesToday)},
			{"Active conversations", fmt.Sprintf("%d", s.ActiveConversations)},
			{"Avg messages / conversation", fmt.Sprintf("%.1f", s.AvgMessagesPerConversation)},
			{"Web searches used", fmt.Sprintf("%d", s.SearchQueriesUsed)},
		}
		for _, r := range rows {
			b.WriteString(tui.DimStyle.Render(fmt.Sprintf("%-30s", r.label)))
			b.WriteString(r.value)
			b.WriteString("\n")
		}
		if m.usage != nil && len(m.usage.DailyMessages) > 0 {
			b.WriteString("\n")
			b.WriteString(tui.TitleStyle.Render("Messages per day"))
			b.WriteString("\n")
			for _, p := range m.usage.DailyMessages {
				bar := strings.Repeat("█", min(p.Count, 40))
				b.WriteString(tui.DimStyle.Render(p.Date + " "))
				b.WriteString(tui.SuccessStyle.Render(bar))
				b.WriteString(fmt.Sprintf(" %d\n", p.Count))
			}
		}
		if len(m.topics) > 0 {
			b.WriteString("\n")
			b.WriteString(tui.TitleStyle.Render("Recent topics"))
			b.WriteString("\n")
			for _, topic := range m.topics {
				b.WriteString(fmt.Sprintf("%s %s\n",
					tui.DimStyle.Render(fmt.Sprintf("%3d", topic.MessageCount)), topic.Title))
			}
		}
		if ins := m.insights; ins != nil {
			b.WriteString("\n")
			b.WriteString(tui.TitleStyle.Render("Insights"))
			b.WriteString("\n")
			if ins.MostActiveHour != "" {
				fmt.Fprintf(&b, "Most active around %s:00", ins.MostActiveHour)
				if ins.MostActiveDay != "" {
					fmt.Fprintf(&b, " on %ss", ins.MostActiveDay)
				}
				b.WriteString("\n")
			}
			if ins.AvgResponseLength > 0 {
				fmt.Fprintf(&b, "Replies average %d characters\n", ins.AvgResponseLength)
			}
			if lc := ins.LongestConversation; lc != nil {
				fmt.Fprintf(&b, "Longest conversation: %s (%d messages)\n", lc.Title, lc.MessageCount)
			}
		}
	default:
		b.WriteString(tui.DimStyle.Render("No statistics available"))
	}

	b.WriteString("\n\n")
	b.WriteString(tui.DimStyle.Render("esc: back to chat"))

	box := tui.BoxStyle.Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
