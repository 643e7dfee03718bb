// Package tui implements the terminal user interface using Bubble Tea.
package tui

import (
	"github.com/quillchat/quill/internal/analytics"
	"github.com/quillchat/quill/internal/chat"
	"github.com/quillchat/quill/internal/router"
)

// ============================================================================
// Navigation Messages
// ============================================================================

// NavigateMsg requests a view change. The app runs it through the guard.
type NavigateMsg struct {
	View router.View
}

// ============================================================================
// Auth Messages
// ============================================================================

// LoginResultMsg reports the outcome of a login attempt.
type LoginResultMsg struct {
	Err error
}

// RegisterResultMsg reports the outcome of a registration attempt.
type RegisterResultMsg struct {
	Err error
}

// OnboardingResultMsg reports the outcome of submitting preferences.
type OnboardingResultMsg struct {
	Err error
}

// LoggedOutMsg signals that logout has completed.
type LoggedOutMsg struct{}

// ============================================================================
// Conversation Messages
// ============================================================================

// SummariesLoadedMsg carries a refreshed conversation list.
type SummariesLoadedMsg struct {
	Summaries []chat.Summary
	Err       error
}

// ConversationLoadedMsg signals that the active conversation changed.
type ConversationLoadedMsg struct {
	Conversation *chat.Conversation
	Err          error
}

// SendResultMsg reports the outcome of a message send.
type SendResultMsg struct {
	Result *chat.SendResult
	Err    error
}

// ConversationDeletedMsg reports the outcome of a conversation deletion.
type ConversationDeletedMsg struct {
	ID  string
	Err error
}

// ============================================================================
// Dashboard Messages
// ============================================================================

// StatsLoadedMsg carries dashboard statistics.
type StatsLoadedMsg struct {
	Stats *analytics.Stats
	Err   error
}

// UsageLoadedMsg carries daily activity counts for the dashboard.
type UsageLoadedMsg struct {
	Usage *analytics.Usage
	Err   error
}

// TopicsLoadedMsg carries the recent-topics list for the dashboard.
type TopicsLoadedMsg struct {
	Topics []analytics.Topic
	Err    error
}

// InsightsLoadedMsg carries usage-pattern insights for the dashboard.
type InsightsLoadedMsg struct {
	Insights *analytics.Insights
	Err      error
}
