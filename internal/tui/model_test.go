package tui

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/quillchat/quill/internal/api"
	"github.com/quillchat/quill/internal/auth"
	"github.com/quillchat/quill/internal/log"
	"github.com/quillchat/quill/internal/router"
	"github.com/quillchat/quill/internal/store"
	"github.com/quillchat/quill/internal/testutil"
)

func newTestModel(t *testing.T) (*Model, *testutil.FakeServer) {
	t.Helper()

	srv := testutil.NewFakeServer(t)
	dir := t.TempDir()

	st, err := store.NewStore(filepath.Join(dir, "quill.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	logger, err := log.NewLogger(dir)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	client := api.NewClient(srv.URL, 5*time.Second)
	mgr := auth.NewManager(client, st, logger)

	return NewModel(nil, mgr, nil, nil, logger), srv
}

func TestNavigateUnauthenticatedRedirectsToLogin(t *testing.T) {
	m, _ := newTestModel(t)

	got := m.Navigate(router.ViewChat)
	if got != router.ViewLogin {
		t.Fatalf("Navigate(chat) = %v, want login", got)
	}
	if m.View != router.ViewLogin {
		t.Fatalf("model view = %v, want login", m.View)
	}
}

func TestNavigateAuthenticatedWithoutPreferences(t *testing.T) {
	m, srv := newTestModel(t)

	if err := m.Auth.Login(context.Background(), srv.Email, srv.Password); err != nil {
		t.Fatalf("Login: %v", err)
	}

	// Public targets redirect to onboarding while preferences are empty.
	if got := m.Navigate(router.ViewLogin); got != router.ViewOnboarding {
		t.Fatalf("Navigate(login) = %v, want onboarding", got)
	}
	if got := m.Navigate(router.ViewRegister); got != router.ViewOnboarding {
		t.Fatalf("Navigate(register) = %v, want onboarding", got)
	}
}

func TestNavigateAuthenticatedWithPreferences(t *testing.T) {
	m, srv := newTestModel(t)
	srv.SetPreferences(map[string]any{"response_style": "concise"})

	if err := m.Auth.Login(context.Background(), srv.Email, srv.Password); err != nil {
		t.Fatalf("Login: %v", err)
	}

	if got := m.Navigate(router.ViewLogin); got != router.ViewChat {
		t.Fatalf("Navigate(login) = %v, want chat", got)
	}
	if got := m.Navigate(router.ViewDashboard); got != router.ViewDashboard {
		t.Fatalf("Navigate(dashboard) = %v, want dashboard", got)
	}
}

func TestNavigateLogsViewChanges(t *testing.T) {
	m, _ := newTestModel(t)

	m.Navigate(router.ViewRegister)
	m.Navigate(router.ViewRegister) // no change, no event

	events, err := m.Logger.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}

	var changes []string
	for _, ev := range events {
		if ev.Event == log.EventViewChanged {
			changes = append(changes, ev.View)
		}
	}
	if len(changes) != 1 || changes[0] != "register" {
		t.Fatalf("view change events = %v, want [register]", changes)
	}
}
