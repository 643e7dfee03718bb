// Package tui implements the terminal user interface using Bubble Tea.
package tui

import (
	"github.com/quillchat/quill/internal/analytics"
	"github.com/quillchat/quill/internal/auth"
	"github.com/quillchat/quill/internal/chat"
	"github.com/quillchat/quill/internal/config"
	"github.com/quillchat/quill/internal/log"
	"github.com/quillchat/quill/internal/router"
)

// Model is the shared application state passed to views.
type Model struct {
	Cfg       *config.Config
	Auth      *auth.Manager
	Engine    *chat.Engine
	Analytics *analytics.Client
	Logger    *log.Logger

	// View is the effective view currently rendered. Every change goes
	// through Navigate so the guard is never bypassed.
	View router.View

	// Status is a transient one-line status or failure notice. The
	// presentation layer is the only place failures become visible.
	Status string

	// Terminal dimensions
	Width  int
	Height int
}

// NewModel creates a new Model wired to the given collaborators.
func NewModel(cfg *config.Config, mgr *auth.Manager, engine *chat.Engine, stats *analytics.Client, logger *log.Logger) *Model {
	return &Model{
		Cfg:       cfg,
		Auth:      mgr,
		Engine:    engine,
		Analytics: stats,
		Logger:    logger,
		View:      router.ViewLogin,
		Width:     80,
		Height:    24,
	}
}

// Navigate resolves a navigation request against the current session and
// records the effective view. Returns the view actually entered.
func (m *Model) Navigate(requested router.View) router.View {
	effective := router.Resolve(requested, m.Auth.Session())
	if effective != m.View && m.Logger != nil {
		_ = m.Logger.Append(log.LogEvent{Event: log.EventViewChanged, View: effective.String()})
	}
	m.View = effective
	return effective
}
