// Package testutil provides test helper utilities for quill tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// FakeServer is an in-memory stand-in for the hosted chat service. It
// implements the auth, chat, and analytics endpoints the client consumes,
// with just enough state to exercise session and synchronization behavior.
type FakeServer struct {
	URL string

	mu sync.Mutex

	// Accepted credentials and the token minted for them.
	Email    string
	Password string
	Token    string

	// User payload returned by login/register/me/onboarding.
	User map[string]any

	// Conversation list and per-id details, as raw payload maps.
	Conversations []map[string]any
	Details       map[string]map[string]any

	// SendReply is returned by POST /api/chat/message when set.
	SendReply map[string]any
	// SendStatus/SendError override the send reply with an error response.
	SendStatus int
	SendError  string

	// OnSend and OnDetail, when set, run at the start of the respective
	// handler. Tests use them to block a request mid-flight.
	OnSend   func()
	OnDetail func()

	// Requests records "METHOD path" for every call, in arrival order.
	Requests []string

	srv *httptest.Server
}

// NewFakeServer starts a FakeServer with one registered account and no
// conversations. The server is shut down when the test finishes.
func NewFakeServer(t *testing.T) *FakeServer {
	t.Helper()

	f := &FakeServer{
		Email:    "ada@example.com",
		Password: "hunter22",
		Token:    "tok-ada",
		User: map[string]any{
			"id":          "u1",
			"email":       "ada@example.com",
			"name":        "Ada",
			"preferences": map[string]any{},
			"is_active":   true,
		},
		Details: make(map[string]map[string]any),
	}

	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	f.URL = f.srv.URL
	t.Cleanup(f.srv.Close)
	return f
}

// SetPreferences replaces the fake user's preferences map.
func (f *FakeServer) SetPreferences(prefs map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.User["preferences"] = prefs
}

// RequestLog returns a copy of the recorded "METHOD path" entries.
func (f *FakeServer) RequestLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Requests))
	copy(out, f.Requests)
	return out
}

// CountRequests returns how many recorded requests match the given
// "METHOD path" prefix.
func (f *FakeServer) CountRequests(prefix string) int {
	n := 0
	for _, r := range f.RequestLog() {
		if strings.HasPrefix(r, prefix) {
			n++
		}
	}
	return n
}

func (f *FakeServer) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.Requests = append(f.Requests, r.Method+" "+r.URL.Path)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/auth/login":
		f.handleLogin(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/api/auth/register":
		f.handleRegister(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/api/auth/logout":
		writeJSON(w, http.StatusOK, map[string]any{"message": "Logged out successfully"})
	case r.Method == http.MethodGet && r.URL.Path == "/api/auth/me":
		f.requireAuth(w, r, func() {
			writeJSON(w, http.StatusOK, map[string]any{"user": f.userCopy()})
		})
	case r.Method == http.MethodPut && r.URL.Path == "/api/auth/onboarding":
		f.requireAuth(w, r, func() { f.handleOnboarding(w, r) })
	case r.Method == http.MethodGet && r.URL.Path == "/api/chat/conversations":
		f.requireAuth(w, r, func() {
			f.mu.Lock()
			list := f.Conversations
			if list == nil {
				list = []map[string]any{}
			}
			f.mu.Unlock()
			writeJSON(w, http.StatusOK, map[string]any{"conversations": list})
		})
	case r.Method == http.MethodPut && strings.HasSuffix(r.URL.Path, "/title"):
		f.requireAuth(w, r, func() { f.handleRename(w, r) })
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/chat/conversations/"):
		f.requireAuth(w, r, func() { f.handleDetail(w, r) })
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/api/chat/conversations/"):
		f.requireAuth(w, r, func() { f.handleDelete(w, r) })
	case r.Method == http.MethodPost && r.URL.Path == "/api/chat/message":
		f.requireAuth(w, r, func() { f.handleSend(w, r) })
	case r.Method == http.MethodGet && r.URL.Path == "/api/analytics/topics":
		f.requireAuth(w, r, func() {
			writeJSON(w, http.StatusOK, map[string]any{"topics": []map[string]any{
				{"id": "c1", "title": "Go generics", "message_count": 8},
				{"id": "c2", "title": "Trip planning", "message_count": 6},
			}})
		})
	case r.Method == http.MethodGet && r.URL.Path == "/api/analytics/insights":
		f.requireAuth(w, r, func() {
			writeJSON(w, http.StatusOK, map[string]any{"insights": map[string]any{
				"most_active_hour":    "14",
				"most_active_day":     "Tuesday",
				"avg_response_length": 220,
				"longest_conversation": map[string]any{
					"id": "c1", "title": "Go generics", "message_count": 8,
				},
			}})
		})
	case r.Method == http.MethodGet && r.URL.Path == "/api/analytics/usage":
		f.requireAuth(w, r, func() {
			writeJSON(w, http.StatusOK, map[string]any{"usage": map[string]any{
				"daily_messages": []map[string]any{
					{"date": "2024-05-01", "count": 5},
					{"date": "2024-05-02", "count": 9},
				},
				"daily_conversations": []map[string]any{
					{"date": "2024-05-01", "count": 1},
					{"date": "2024-05-02", "count": 1},
				},
			}})
		})
	case r.Method == http.MethodGet && r.URL.Path == "/api/analytics/stats":
		f.requireAuth(w, r, func() {
			writeJSON(w, http.StatusOK, map[string]any{"stats": map[string]any{
				"total_conversations":           2,
				"total_messages":                14,
				"messages_today":                3,
				"active_conversations":          1,
				"avg_messages_per_conversation": 7.0,
				"search_queries_used":           4,
			}})
		})
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "Not found"})
	}
}

func (f *FakeServer) requireAuth(w http.ResponseWriter, r *http.Request, next func()) {
	f.mu.Lock()
	want := "Bearer " + f.Token
	f.mu.Unlock()

	if r.Header.Get("Authorization") != want {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Token has expired"})
		return
	}
	next()
}

func (f *FakeServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	ok := body.Email == f.Email && body.Password == f.Password
	token := f.Token
	f.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Invalid email or password"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token":  token,
		"refresh_token": token + "-refresh",
		"user":          f.userCopy(),
	})
}

func (f *FakeServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	if len(body.Password) < 6 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Password must be at least 6 characters"})
		return
	}

	f.mu.Lock()
	f.Email = body.Email
	f.Password = body.Password
	f.User["email"] = body.Email
	f.User["name"] = body.Name
	token := f.Token
	f.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":       "Registration successful",
		"access_token":  token,
		"refresh_token": token + "-refresh",
		"user":          f.userCopy(),
	})
}

func (f *FakeServer) handleOnboarding(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Preferences map[string]any `json:"preferences"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	f.User["preferences"] = body.Preferences
	f.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Preferences updated",
		"user":    f.userCopy(),
	})
}

func (f *FakeServer) handleDetail(w http.ResponseWriter, r *http.Request) {
	if f.OnDetail != nil {
		f.OnDetail()
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/chat/conversations/")

	f.mu.Lock()
	detail, ok := f.Details[id]
	f.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "Conversation not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"conversation": detail})
}

func (f *FakeServer) handleRename(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/chat/conversations/"), "/title")

	var body struct {
		Title string `json:"title"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	if detail, ok := f.Details[id]; ok {
		detail["title"] = body.Title
	}
	for _, c := range f.Conversations {
		if c["id"] == id {
			c["title"] = body.Title
		}
	}
	f.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"conversation": map[string]any{"id": id, "title": body.Title},
	})
}

func (f *FakeServer) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/chat/conversations/")

	f.mu.Lock()
	delete(f.Details, id)
	kept := f.Conversations[:0]
	for _, c := range f.Conversations {
		if c["id"] != id {
			kept = append(kept, c)
		}
	}
	f.Conversations = kept
	f.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"message": "Conversation deleted"})
}

func (f *FakeServer) handleSend(w http.ResponseWriter, r *http.Request) {
	if f.OnSend != nil {
		f.OnSend()
	}

	f.mu.Lock()
	status, errMsg := f.SendStatus, f.SendError
	reply := f.SendReply
	f.mu.Unlock()

	if status != 0 {
		writeJSON(w, status, map[string]any{"error": errMsg})
		return
	}
	if reply == nil {
		var body struct {
			Message        string `json:"message"`
			ConversationID string `json:"conversation_id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		id := body.ConversationID
		if id == "" {
			id = "c-new"
		}
		reply = map[string]any{
			"conversation": map[string]any{"id": id, "title": body.Message},
			"message":      map[string]any{"role": "assistant", "content": "reply to " + body.Message},
			"search_used":  false,
		}
	}
	writeJSON(w, http.StatusOK, reply)
}

func (f *FakeServer) userCopy() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]any, len(f.User))
	for k, v := range f.User {
		out[k] = v
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body map[string]any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
