package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second)
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{}`))
	})
	c.SetTokenSource(func() string { return "tok-1" })

	if _, err := c.Get(context.Background(), "/api/auth/me"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if gotAuth != "Bearer tok-1" {
		t.Errorf("Authorization header: got %q, want %q", gotAuth, "Bearer tok-1")
	}
}

func TestNoTokenNoHeader(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{}`))
	})
	c.SetTokenSource(func() string { return "" })

	if _, err := c.Get(context.Background(), "/api/chat/conversations"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("Authorization header sent without a token: %q", gotAuth)
	}
}

func TestAuthErrorFiresCallbackBeforeReturn(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Token has expired"}`))
	})

	callbackRan := false
	c.OnAuthError(func() { callbackRan = true })

	_, err := c.Get(context.Background(), "/api/chat/conversations")

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *AuthError, got %v", err)
	}
	if authErr.Status != http.StatusUnauthorized {
		t.Errorf("Status: got %d, want 401", authErr.Status)
	}
	if !callbackRan {
		t.Error("invalidation callback did not run before error was returned")
	}
}

func TestAPIErrorCarriesServerMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Conversation not found"}`))
	})

	_, err := c.Get(context.Background(), "/api/chat/conversations/c9")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Message != "Conversation not found" {
		t.Errorf("Message: got %q, want %q", apiErr.Message, "Conversation not found")
	}
}

func TestAPIErrorFallbackMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`not json`))
	})

	_, err := c.Post(context.Background(), "/api/chat/message", map[string]string{"message": "hi"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Message != "request failed" {
		t.Errorf("Message: got %q, want generic fallback", apiErr.Message)
	}
}

func TestNetworkError(t *testing.T) {
	// Point at a closed server.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	c := NewClient(srv.URL, time.Second)

	_, err := c.Get(context.Background(), "/api/chat/conversations")

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected *NetworkError, got %v", err)
	}
}

func TestPostSendsJSONBody(t *testing.T) {
	var got map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type: got %q", ct)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	raw, err := c.Post(context.Background(), "/api/auth/login", map[string]string{"email": "a@b.c"})
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	if got["email"] != "a@b.c" {
		t.Errorf("request body: got %v", got)
	}
	if string(raw) != `{"ok":true}` {
		t.Errorf("response: got %s", raw)
	}
}
