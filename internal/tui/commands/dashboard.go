package commands

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/quillchat/quill/internal/analytics"
	"github.com/quillchat/quill/internal/tui"
)

// LoadStatsCmd fetches dashboard statistics.
func LoadStatsCmd(client *analytics.Client) tea.Cmd {
	return func() tea.Msg {
		stats, err := client.Stats(context.Background())
		return tui.StatsLoadedMsg{Stats: stats, Err: err}
	}
}

// LoadUsageCmd fetches daily activity counts for the trailing days window.
func LoadUsageCmd(client *analytics.Client, days int) tea.Cmd {
	return func() tea.Msg {
		usage, err := client.Usage(context.Background(), days)
		return tui.UsageLoadedMsg{Usage: usage, Err: err}
	}
}

// LoadTopicsCmd fetches the recent-topics list.
func LoadTopicsCmd(client *analytics.Client, limit int) tea.Cmd {
	return func() tea.Msg {
		topics, err := client.Topics(context.Background(), limit)
		return tui.TopicsLoadedMsg{Topics: topics, Err: err}
	}
}

// LoadInsightsCmd fetches usage-pattern insights.
func LoadInsightsCmd(client *analytics.Client) tea.Cmd {
	return func() tea.Msg {
		insights, err := client.Insights(context.Background())
		return tui.InsightsLoadedMsg{Insights: insights, Err: err}
	}
}
