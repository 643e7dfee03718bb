package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quillchat/quill/internal/api"
	"github.com/quillchat/quill/internal/testutil"
)

func newTestEngine(t *testing.T) (*Engine, *testutil.FakeServer) {
	t.Helper()

	fake := testutil.NewFakeServer(t)
	client := api.NewClient(fake.URL, 5*time.Second)
	client.SetTokenSource(func() string { return fake.Token })
	return NewEngine(client, nil, 50), fake
}

func TestLoadSummariesReplacesWholesale(t *testing.T) {
	e, fake := newTestEngine(t)
	ctx := context.Background()

	fake.Conversations = []map[string]any{
		{"id": "c2", "title": "Second", "message_count": 4},
		{"id": "c1", "title": "First", "message_count": 2},
	}

	if err := e.LoadSummaries(ctx); err != nil {
		t.Fatalf("LoadSummaries failed: %v", err)
	}

	got := e.Summaries()
	if len(got) != 2 {
		t.Fatalf("got %d summaries, want 2", len(got))
	}
	// Server order is preserved, not re-sorted locally.
	if got[0].ID != "c2" || got[1].ID != "c1" {
		t.Errorf("order not server-defined: %v", got)
	}
	if got[0].MessageCount != 4 {
		t.Errorf("MessageCount: got %d, want 4", got[0].MessageCount)
	}

	// A shorter list replaces the cache entirely.
	fake.Conversations = []map[string]any{{"id": "c3", "title": "Third", "message_count": 1}}
	if err := e.LoadSummaries(ctx); err != nil {
		t.Fatalf("second LoadSummaries failed: %v", err)
	}
	if got := e.Summaries(); len(got) != 1 || got[0].ID != "c3" {
		t.Errorf("stale summaries survived replacement: %v", got)
	}
}

func TestLoadConversation(t *testing.T) {
	e, fake := newTestEngine(t)
	ctx := context.Background()

	fake.Details["c1"] = map[string]any{
		"id":    "c1",
		"title": "First",
		"messages": []map[string]any{
			{"role": "user", "content": "hi"},
			{"role": "assistant", "content": "hello"},
		},
	}

	if err := e.LoadConversation(ctx, "c1"); err != nil {
		t.Fatalf("LoadConversation failed: %v", err)
	}

	active := e.Active()
	if active == nil || active.ID != "c1" {
		t.Fatalf("active: %+v", active)
	}
	if len(active.Messages) != 2 || active.Messages[1].Role != "assistant" {
		t.Errorf("transcript: %+v", active.Messages)
	}
}

func TestLoadConversationFailureLeavesActiveUnchanged(t *testing.T) {
	e, fake := newTestEngine(t)
	ctx := context.Background()

	fake.Details["c1"] = map[string]any{"id": "c1", "title": "First", "messages": []map[string]any{}}
	if err := e.LoadConversation(ctx, "c1"); err != nil {
		t.Fatalf("LoadConversation failed: %v", err)
	}

	err := e.LoadConversation(ctx, "c9")

	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *api.APIError, got %v", err)
	}
	if apiErr.Message != "Conversation not found" {
		t.Errorf("Message: got %q", apiErr.Message)
	}
	if active := e.Active(); active == nil || active.ID != "c1" {
		t.Errorf("active changed on failed load: %+v", active)
	}
}

func TestSendMessageNewChatScenario(t *testing.T) {
	e, fake := newTestEngine(t)
	ctx := context.Background()

	fake.SendReply = map[string]any{
		"conversation": map[string]any{"id": "c1", "title": "Hello"},
		"message":      map[string]any{"role": "assistant", "content": "Hi there"},
		"search_used":  false,
	}

	res, err := e.SendMessage(ctx, "Hello")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	if res.SearchUsed {
		t.Error("SearchUsed: got true, want false")
	}
	active := e.Active()
	if active.ID != "c1" || active.Title != "Hello" {
		t.Errorf("active conversation: got %q/%q, want c1/Hello", active.ID, active.Title)
	}
	if len(active.Messages) != 2 {
		t.Fatalf("transcript length: got %d, want 2 (user + assistant)", len(active.Messages))
	}
	if active.Messages[0].Role != "user" || active.Messages[0].Content != "Hello" {
		t.Errorf("user message: %+v", active.Messages[0])
	}
	last := active.Messages[1]
	if last.Role != "assistant" || last.Content != "Hi there" {
		t.Errorf("assistant message: %+v", last)
	}
	if last.Metadata != nil && last.Metadata.SearchUsed {
		t.Error("assistant message carries a search indicator")
	}
	if e.SendInFlight() {
		t.Error("sendInFlight not cleared after success")
	}
}

func TestSendMessageOptimisticAppendBeforeNetwork(t *testing.T) {
	e, fake := newTestEngine(t)
	ctx := context.Background()

	var midFlight *Conversation
	fake.OnSend = func() {
		// Observed from the server side: by the time the request is on the
		// wire, the optimistic message is already in the transcript.
		midFlight = e.Active()
	}

	if _, err := e.SendMessage(ctx, "ping"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	if midFlight == nil || len(midFlight.Messages) != 1 {
		t.Fatalf("mid-flight transcript: %+v", midFlight)
	}
	if midFlight.Messages[0].Role != "user" || midFlight.Messages[0].Content != "ping" {
		t.Errorf("optimistic message: %+v", midFlight.Messages[0])
	}
}

func TestSendMessageRejectsConcurrentSends(t *testing.T) {
	e, fake := newTestEngine(t)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	fake.OnSend = func() {
		close(started)
		<-release
	}

	done := make(chan error, 1)
	go func() {
		_, err := e.SendMessage(ctx, "first")
		done <- err
	}()

	<-started
	if !e.SendInFlight() {
		t.Error("SendInFlight false while a send is in progress")
	}

	_, err := e.SendMessage(ctx, "second")
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("concurrent send: got %v, want ErrBusy", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first send failed: %v", err)
	}

	if n := fake.CountRequests("POST /api/chat/message"); n != 1 {
		t.Errorf("network sends issued: got %d, want 1", n)
	}
}

func TestSendMessageFailureKeepsOptimisticMessage(t *testing.T) {
	e, fake := newTestEngine(t)
	ctx := context.Background()

	fake.SendStatus = 500
	fake.SendError = "model unavailable"

	_, err := e.SendMessage(ctx, "are you there")

	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *api.APIError, got %v", err)
	}
	if apiErr.Message != "model unavailable" {
		t.Errorf("Message: got %q", apiErr.Message)
	}

	active := e.Active()
	if active == nil || len(active.Messages) != 1 {
		t.Fatalf("transcript after failure: %+v", active)
	}
	if active.Messages[0].Role != "user" {
		t.Errorf("surviving message: %+v", active.Messages[0])
	}
	if e.SendInFlight() {
		t.Error("sendInFlight not cleared after failure")
	}

	// The engine is usable again immediately.
	fake.SendStatus = 0
	if _, err := e.SendMessage(ctx, "retry"); err != nil {
		t.Fatalf("send after failure: %v", err)
	}
}

func TestSendMessageValidation(t *testing.T) {
	e, fake := newTestEngine(t)
	ctx := context.Background()

	for _, text := range []string{"", "   ", "\n\t"} {
		if _, err := e.SendMessage(ctx, text); !errors.Is(err, ErrEmptyMessage) {
			t.Errorf("SendMessage(%q): got %v, want ErrEmptyMessage", text, err)
		}
	}
	if n := fake.CountRequests("POST /api/chat/message"); n != 0 {
		t.Errorf("validation failures reached the network: %d requests", n)
	}
}

func TestSendMessageCarriesConversationID(t *testing.T) {
	e, fake := newTestEngine(t)
	ctx := context.Background()

	fake.Details["c7"] = map[string]any{"id": "c7", "title": "Ongoing", "messages": []map[string]any{}}
	if err := e.LoadConversation(ctx, "c7"); err != nil {
		t.Fatalf("LoadConversation failed: %v", err)
	}

	res, err := e.SendMessage(ctx, "more")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	// The fake echoes the conversation id it was given.
	if res.Conversation.ID != "c7" {
		t.Errorf("conversation id: got %q, want c7", res.Conversation.ID)
	}
}

func TestLateLoadResponseIsDropped(t *testing.T) {
	e, fake := newTestEngine(t)
	ctx := context.Background()

	fake.Details["c1"] = map[string]any{"id": "c1", "title": "Old", "messages": []map[string]any{}}

	inHandler := make(chan struct{})
	release := make(chan struct{})
	fake.OnDetail = func() {
		close(inHandler)
		<-release
	}

	done := make(chan error, 1)
	go func() { done <- e.LoadConversation(ctx, "c1") }()

	<-inHandler
	// The user moves on before the response lands.
	e.StartNewChat()
	close(release)

	if err := <-done; err != nil {
		t.Fatalf("LoadConversation failed: %v", err)
	}
	if active := e.Active(); active != nil {
		t.Errorf("stale load response was applied: %+v", active)
	}
}

func TestLateSendResponseIsStillApplied(t *testing.T) {
	e, fake := newTestEngine(t)
	ctx := context.Background()

	inHandler := make(chan struct{})
	release := make(chan struct{})
	fake.OnSend = func() {
		close(inHandler)
		<-release
	}

	done := make(chan error, 1)
	go func() {
		_, err := e.SendMessage(ctx, "slow one")
		done <- err
	}()

	<-inHandler
	// Navigating away does not abort the send; its response is applied
	// when it arrives. Known, accepted race.
	e.StartNewChat()
	close(release)

	if err := <-done; err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	active := e.Active()
	if active == nil || active.ID == "" {
		t.Error("late send response was not applied")
	}
}

func TestDeleteConversationClearsActive(t *testing.T) {
	e, fake := newTestEngine(t)
	ctx := context.Background()

	fake.Details["c1"] = map[string]any{"id": "c1", "title": "Doomed", "messages": []map[string]any{}}
	fake.Conversations = []map[string]any{{"id": "c1", "title": "Doomed", "message_count": 0}}

	if err := e.LoadConversation(ctx, "c1"); err != nil {
		t.Fatalf("LoadConversation failed: %v", err)
	}
	if err := e.DeleteConversation(ctx, "c1"); err != nil {
		t.Fatalf("DeleteConversation failed: %v", err)
	}

	if active := e.Active(); active != nil {
		t.Errorf("active conversation survived deletion: %+v", active)
	}
	if got := e.Summaries(); len(got) != 0 {
		t.Errorf("summaries not refreshed: %v", got)
	}
}

func TestReset(t *testing.T) {
	e, fake := newTestEngine(t)
	ctx := context.Background()

	fake.Conversations = []map[string]any{{"id": "c1", "title": "T", "message_count": 1}}
	fake.Details["c1"] = map[string]any{"id": "c1", "title": "T", "messages": []map[string]any{}}
	_ = e.LoadSummaries(ctx)
	_ = e.LoadConversation(ctx, "c1")

	e.Reset()

	if e.Active() != nil {
		t.Error("active survived Reset")
	}
	if len(e.Summaries()) != 0 {
		t.Error("summaries survived Reset")
	}
	if e.SendInFlight() {
		t.Error("sendInFlight set after Reset")
	}
}

func TestRenameConversationUpdatesLocalState(t *testing.T) {
	e, fake := newTestEngine(t)
	ctx := context.Background()

	fake.Conversations = []map[string]any{
		{"id": "c1", "title": "Old title", "message_count": 2},
	}
	fake.Details["c1"] = map[string]any{
		"id":       "c1",
		"title":    "Old title",
		"messages": []map[string]any{{"role": "user", "content": "hi"}},
	}

	if err := e.LoadSummaries(ctx); err != nil {
		t.Fatalf("LoadSummaries failed: %v", err)
	}
	if err := e.LoadConversation(ctx, "c1"); err != nil {
		t.Fatalf("LoadConversation failed: %v", err)
	}

	if err := e.RenameConversation(ctx, "c1", "New title"); err != nil {
		t.Fatalf("RenameConversation failed: %v", err)
	}

	if active := e.Active(); active.Title != "New title" {
		t.Errorf("active title: got %q, want %q", active.Title, "New title")
	}
	if got := e.Summaries(); got[0].Title != "New title" {
		t.Errorf("summary title: got %q, want %q", got[0].Title, "New title")
	}
	// The transcript survives a title change.
	if active := e.Active(); len(active.Messages) != 1 {
		t.Errorf("messages lost on rename: %v", active.Messages)
	}
}

func TestSendMergeUsesSentTranscriptNotCurrentActive(t *testing.T) {
	e, fake := newTestEngine(t)
	ctx := context.Background()

	fake.Details["c1"] = map[string]any{"id": "c1", "title": "First", "messages": []map[string]any{}}
	fake.Details["c2"] = map[string]any{
		"id":    "c2",
		"title": "Second",
		"messages": []map[string]any{
			{"role": "user", "content": "secret from c2"},
		},
	}

	if err := e.LoadConversation(ctx, "c1"); err != nil {
		t.Fatalf("LoadConversation failed: %v", err)
	}

	inHandler := make(chan struct{})
	release := make(chan struct{})
	fake.OnSend = func() {
		close(inHandler)
		<-release
	}

	done := make(chan error, 1)
	go func() {
		_, err := e.SendMessage(ctx, "question for c1")
		done <- err
	}()

	<-inHandler
	// The user switches conversations while the send is in flight.
	if err := e.LoadConversation(ctx, "c2"); err != nil {
		t.Fatalf("LoadConversation failed: %v", err)
	}
	close(release)

	if err := <-done; err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	active := e.Active()
	if active == nil || active.ID != "c1" {
		t.Fatalf("active after merge: %+v", active)
	}
	var sawSent bool
	for _, msg := range active.Messages {
		if msg.Content == "secret from c2" {
			t.Errorf("merged conversation carries a message from c2: %+v", active.Messages)
		}
		if msg.Content == "question for c1" {
			sawSent = true
		}
	}
	if !sawSent {
		t.Errorf("sent message missing from merged transcript: %+v", active.Messages)
	}
}

func TestResetDuringSendDiscardsMerge(t *testing.T) {
	e, fake := newTestEngine(t)
	ctx := context.Background()

	inHandler := make(chan struct{})
	release := make(chan struct{})
	fake.OnSend = func() {
		close(inHandler)
		<-release
	}

	done := make(chan error, 1)
	go func() {
		_, err := e.SendMessage(ctx, "hello")
		done <- err
	}()

	<-inHandler
	// Session teardown while the send is in flight.
	e.Reset()
	close(release)

	if err := <-done; err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	if active := e.Active(); active != nil {
		t.Errorf("engine state repopulated after Reset: %+v", active)
	}
	if got := e.Summaries(); len(got) != 0 {
		t.Errorf("summaries repopulated after Reset: %v", got)
	}
	if e.SendInFlight() {
		t.Error("sendInFlight set after Reset")
	}
}
