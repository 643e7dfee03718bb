// Package analytics fetches dashboard statistics from the chat service.
// It is a read-only collaborator: nothing here mutates client state.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/quillchat/quill/internal/api"
)

// Stats summarizes the user's chat activity.
type Stats struct {
	TotalConversations         int     `json:"total_conversations"`
	TotalMessages              int     `json:"total_messages"`
	MessagesToday              int     `json:"messages_today"`
	ActiveConversations        int     `json:"active_conversations"`
	AvgMessagesPerConversation float64 `json:"avg_messages_per_conversation"`
	SearchQueriesUsed          int     `json:"search_queries_used"`
}

// UsagePoint is one day's activity count.
type UsagePoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Usage holds activity over time for the dashboard charts.
type Usage struct {
	DailyMessages      []UsagePoint `json:"daily_messages"`
	DailyConversations []UsagePoint `json:"daily_conversations"`
}

// Topic is one recent conversation ranked by activity.
type Topic struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	MessageCount int    `json:"message_count"`
}

// Insights summarizes the user's usage patterns. Hour and day are empty when
// there is no history yet.
type Insights struct {
	MostActiveHour      string `json:"most_active_hour"`
	MostActiveDay       string `json:"most_active_day"`
	AvgResponseLength   int    `json:"avg_response_length"`
	LongestConversation *Topic `json:"longest_conversation"`
}

// Client wraps the gateway client for the analytics endpoints.
type Client struct {
	api *api.Client
}

// NewClient creates an analytics Client over the given gateway client.
func NewClient(gw *api.Client) *Client {
	return &Client{api: gw}
}

// Stats fetches the summary statistics for the current user.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	raw, err := c.api.Get(ctx, "/api/analytics/stats")
	if err != nil {
		return nil, err
	}

	var resp struct {
		Stats Stats `json:"stats"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode stats: %w", err)
	}
	return &resp.Stats, nil
}

// Usage fetches daily activity counts for the trailing days window.
func (c *Client) Usage(ctx context.Context, days int) (*Usage, error) {
	raw, err := c.api.Get(ctx, fmt.Sprintf("/api/analytics/usage?days=%d", days))
	if err != nil {
		return nil, err
	}

	var resp struct {
		Usage Usage `json:"usage"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode usage: %w", err)
	}
	return &resp.Usage, nil
}

// Topics fetches the user's most recently active conversations.
func (c *Client) Topics(ctx context.Context, limit int) ([]Topic, error) {
	raw, err := c.api.Get(ctx, fmt.Sprintf("/api/analytics/topics?limit=%d", limit))
	if err != nil {
		return nil, err
	}

	var resp struct {
		Topics []Topic `json:"topics"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode topics: %w", err)
	}
	return resp.Topics, nil
}

// Insights fetches usage-pattern insights for the current user.
func (c *Client) Insights(ctx context.Context) (*Insights, error) {
	raw, err := c.api.Get(ctx, "/api/analytics/insights")
	if err != nil {
		return nil, err
	}

	var resp struct {
		Insights Insights `json:"insights"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode insights: %w", err)
	}
	return &resp.Insights, nil
}
