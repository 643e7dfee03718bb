// Package chat keeps the local view of conversations synchronized with the
// remote store.
//
// The engine caches the conversation list and the active transcript,
// serializes message sends (at most one in flight per client), and merges
// server-confirmed state. All mutation happens under one mutex and state is
// fully consistent at every unlock; no lock is ever held across a network
// call, so operations interleave at those points exactly like the
// single-threaded cooperative model they implement.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/quillchat/quill/internal/api"
	"github.com/quillchat/quill/internal/log"
)

// Client-side precondition failures. These never reach the network.
var (
	// ErrBusy rejects a send attempted while another send is in flight.
	// Sends are rejected, not queued.
	ErrBusy = errors.New("a message send is already in flight")

	// ErrEmptyMessage rejects a message that is empty after trimming.
	ErrEmptyMessage = errors.New("message is empty")
)

// Engine maintains the conversation cache for one client session.
type Engine struct {
	client *api.Client
	logger *log.Logger
	limit  int // max summaries fetched per list call

	mu           sync.Mutex
	active       *Conversation
	summaries    []Summary
	sendInFlight bool
	loadGen      uint64 // bumped whenever the active-conversation target changes
	resetGen     uint64 // bumped only by Reset; sends that straddle it discard their merge
}

// NewEngine creates an Engine over the given gateway client. limit bounds
// the conversation list fetch; zero means the server default.
func NewEngine(client *api.Client, logger *log.Logger, limit int) *Engine {
	return &Engine{client: client, logger: logger, limit: limit}
}

// Active returns a copy of the active conversation, or nil when composing a
// new chat. The copy's transcript is detached from engine state.
func (e *Engine) Active() *Conversation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneConversation(e.active)
}

// Summaries returns a copy of the cached conversation list.
func (e *Engine) Summaries() []Summary {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Summary, len(e.summaries))
	copy(out, e.summaries)
	return out
}

// SendInFlight reports whether a send is currently in progress.
func (e *Engine) SendInFlight() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sendInFlight
}

// listResponse is the wire shape of the conversation list.
type listResponse struct {
	Conversations []Summary `json:"conversations"`
}

// LoadSummaries fetches the conversation list and replaces the cached
// sequence wholesale. The server is authoritative for this list; there is
// no incremental merge.
func (e *Engine) LoadSummaries(ctx context.Context) error {
	path := "/api/chat/conversations"
	if e.limit > 0 {
		path = fmt.Sprintf("/api/chat/conversations?limit=%d", e.limit)
	}

	raw, err := e.client.Get(ctx, path)
	if err != nil {
		return err
	}

	var resp listResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return fmt.Errorf("decode conversation list: %w", err)
	}

	e.mu.Lock()
	e.summaries = resp.Conversations
	e.mu.Unlock()
	return nil
}

// detailResponse is the wire shape of a single-conversation fetch.
type detailResponse struct {
	Conversation Conversation `json:"conversation"`
}

// LoadConversation fetches the full transcript for id and replaces the
// active conversation wholesale.
//
// Responses are dropped if stale: when the active-conversation target has
// changed between request and response (a newer load, a new chat, or a
// teardown), the late response is discarded rather than applied.
func (e *Engine) LoadConversation(ctx context.Context, id string) error {
	e.mu.Lock()
	e.loadGen++
	gen := e.loadGen
	e.mu.Unlock()

	raw, err := e.client.Get(ctx, "/api/chat/conversations/"+url.PathEscape(id))
	if err != nil {
		return err
	}

	var resp detailResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return fmt.Errorf("decode conversation: %w", err)
	}

	e.mu.Lock()
	if gen != e.loadGen {
		// A newer navigation superseded this load.
		e.mu.Unlock()
		return nil
	}
	e.active = &resp.Conversation
	e.mu.Unlock()

	e.logEvent(log.LogEvent{Event: log.EventConversationLoaded, ConversationID: id})
	return nil
}

// StartNewChat clears the active conversation locally. No network call is
// made; the server creates a conversation lazily on the first message.
func (e *Engine) StartNewChat() {
	e.mu.Lock()
	e.active = nil
	e.loadGen++
	e.mu.Unlock()
}

// sendRequest is the wire shape of a message send.
type sendRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// sendResponse is the wire shape of the send reply.
type sendResponse struct {
	Conversation Conversation `json:"conversation"`
	Message      Message      `json:"message"`
	SearchUsed   bool         `json:"search_used"`
}

// SendMessage submits one user message and merges the server's reply.
//
// The user-role message is appended optimistically before the network call
// so it is immediately visible. On success the server-returned conversation
// replaces the active one (the optimistic message is superseded, never
// duplicated) and the assistant message is appended; the summaries list is
// then refreshed best-effort. On failure the optimistic message stays in
// the transcript and no assistant message appears. The in-flight flag is
// cleared on every path before control returns.
func (e *Engine) SendMessage(ctx context.Context, text string) (*SendResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	e.mu.Lock()
	if e.sendInFlight {
		e.mu.Unlock()
		return nil, ErrBusy
	}
	e.sendInFlight = true

	optimistic := Message{
		ID:      uuid.New().String(),
		Role:    "user",
		Content: text,
	}
	var conversationID string
	if e.active != nil {
		conversationID = e.active.ID
		appended := cloneConversation(e.active)
		appended.Messages = append(appended.Messages, optimistic)
		e.active = appended
	} else {
		// Transient transcript for a chat the server has not created yet.
		e.active = &Conversation{Messages: []Message{optimistic}}
	}
	// The merge must see the transcript as it was at send time, not
	// whatever the user navigated to while the request was in flight.
	sent := make([]Message, len(e.active.Messages))
	copy(sent, e.active.Messages)
	resetGen := e.resetGen
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.sendInFlight = false
		e.mu.Unlock()
	}()

	raw, err := e.client.Post(ctx, "/api/chat/message", sendRequest{
		Message:        text,
		ConversationID: conversationID,
	})
	if err != nil {
		e.logEvent(log.LogEvent{Event: log.EventMessageFailed, ConversationID: conversationID, Error: err.Error()})
		return nil, err
	}

	var resp sendResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode send response: %w", err)
	}

	merged := resp.Conversation
	if len(merged.Messages) == 0 {
		// The send reply carries the conversation shell without its
		// transcript; carry the sent-time transcript forward.
		merged.Messages = append(merged.Messages, sent...)
	}
	merged.Messages = append(merged.Messages, resp.Message)

	e.mu.Lock()
	if e.resetGen != resetGen {
		// The session was torn down while the send was in flight. The
		// server accepted the message, so the result is still returned,
		// but none of it may land in engine state.
		e.mu.Unlock()
		return &SendResult{
			Conversation: cloneConversation(&merged),
			Message:      resp.Message,
			SearchUsed:   resp.SearchUsed,
		}, nil
	}
	e.active = &merged
	e.loadGen++
	e.mu.Unlock()

	e.logEvent(log.LogEvent{Event: log.EventMessageSent, ConversationID: merged.ID, SearchUsed: resp.SearchUsed})

	// The list's ordering and counts changed server-side; refresh is
	// best-effort and never fails the send.
	_ = e.LoadSummaries(ctx)

	return &SendResult{
		Conversation: cloneConversation(&merged),
		Message:      resp.Message,
		SearchUsed:   resp.SearchUsed,
	}, nil
}

// DeleteConversation removes a conversation server-side. If it was the
// active one, the active transcript is cleared as well.
func (e *Engine) DeleteConversation(ctx context.Context, id string) error {
	if _, err := e.client.Delete(ctx, "/api/chat/conversations/"+url.PathEscape(id)); err != nil {
		return err
	}

	e.mu.Lock()
	if e.active != nil && e.active.ID == id {
		e.active = nil
		e.loadGen++
	}
	e.mu.Unlock()

	_ = e.LoadSummaries(ctx)
	return nil
}

// RenameConversation updates a conversation's title server-side and merges
// the confirmed title into local state.
func (e *Engine) RenameConversation(ctx context.Context, id, title string) error {
	raw, err := e.client.Put(ctx, "/api/chat/conversations/"+url.PathEscape(id)+"/title", map[string]string{"title": title})
	if err != nil {
		return err
	}

	var resp detailResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return fmt.Errorf("decode rename response: %w", err)
	}

	e.mu.Lock()
	if e.active != nil && e.active.ID == id {
		renamed := cloneConversation(e.active)
		renamed.Title = resp.Conversation.Title
		e.active = renamed
	}
	for i := range e.summaries {
		if e.summaries[i].ID == id {
			e.summaries[i].Title = resp.Conversation.Title
		}
	}
	e.mu.Unlock()
	return nil
}

// Reset clears all engine state. Called on session teardown. A send still in
// flight when Reset runs discards its merge rather than repopulating state
// that belongs to the torn-down session.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.active = nil
	e.summaries = nil
	e.sendInFlight = false
	e.loadGen++
	e.resetGen++
	e.mu.Unlock()
}

// cloneConversation returns a deep copy, or nil for nil.
func cloneConversation(c *Conversation) *Conversation {
	if c == nil {
		return nil
	}
	out := *c
	out.Messages = make([]Message, len(c.Messages))
	copy(out.Messages, c.Messages)
	return &out
}

func (e *Engine) logEvent(ev log.LogEvent) {
	if e.logger != nil {
		_ = e.logger.Append(ev)
	}
}
