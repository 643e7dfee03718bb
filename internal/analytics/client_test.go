package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quillchat/quill/internal/api"
	"github.com/quillchat/quill/internal/testutil"
)

func TestStats(t *testing.T) {
	fake := testutil.NewFakeServer(t)
	gw := api.NewClient(fake.URL, 5*time.Second)
	gw.SetTokenSource(func() string { return fake.Token })

	stats, err := NewClient(gw).Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalConversations != 2 {
		t.Errorf("TotalConversations: got %d, want 2", stats.TotalConversations)
	}
	if stats.AvgMessagesPerConversation != 7.0 {
		t.Errorf("AvgMessagesPerConversation: got %v, want 7.0", stats.AvgMessagesPerConversation)
	}
}

func TestStatsRequiresAuth(t *testing.T) {
	fake := testutil.NewFakeServer(t)
	gw := api.NewClient(fake.URL, 5*time.Second)
	gw.SetTokenSource(func() string { return "stale" })

	_, err := NewClient(gw).Stats(context.Background())

	var authErr *api.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *api.AuthError, got %v", err)
	}
}

func TestUsage(t *testing.T) {
	fake := testutil.NewFakeServer(t)
	gw := api.NewClient(fake.URL, 5*time.Second)
	gw.SetTokenSource(func() string { return fake.Token })

	usage, err := NewClient(gw).Usage(context.Background(), 7)
	if err != nil {
		t.Fatalf("Usage failed: %v", err)
	}
	if len(usage.DailyMessages) != 2 {
		t.Fatalf("DailyMessages: got %d points, want 2", len(usage.DailyMessages))
	}
	if usage.DailyMessages[1].Count != 9 {
		t.Errorf("DailyMessages[1].Count: got %d, want 9", usage.DailyMessages[1].Count)
	}
	if len(usage.DailyConversations) != 2 {
		t.Errorf("DailyConversations: got %d points, want 2", len(usage.DailyConversations))
	}
}

func TestTopics(t *testing.T) {
	fake := testutil.NewFakeServer(t)
	gw := api.NewClient(fake.URL, 5*time.Second)
	gw.SetTokenSource(func() string { return fake.Token })

	topics, err := NewClient(gw).Topics(context.Background(), 10)
	if err != nil {
		t.Fatalf("Topics failed: %v", err)
	}
	if len(topics) != 2 {
		t.Fatalf("got %d topics, want 2", len(topics))
	}
	if topics[0].Title != "Go generics" || topics[0].MessageCount != 8 {
		t.Errorf("topics[0]: %+v", topics[0])
	}
}

func TestInsights(t *testing.T) {
	fake := testutil.NewFakeServer(t)
	gw := api.NewClient(fake.URL, 5*time.Second)
	gw.SetTokenSource(func() string { return fake.Token })

	ins, err := NewClient(gw).Insights(context.Background())
	if err != nil {
		t.Fatalf("Insights failed: %v", err)
	}
	if ins.MostActiveDay != "Tuesday" {
		t.Errorf("MostActiveDay: got %q", ins.MostActiveDay)
	}
	if ins.AvgResponseLength != 220 {
		t.Errorf("AvgResponseLength: got %d", ins.AvgResponseLength)
	}
	if ins.LongestConversation == nil || ins.LongestConversation.ID != "c1" {
		t.Errorf("LongestConversation: %+v", ins.LongestConversation)
	}
}
