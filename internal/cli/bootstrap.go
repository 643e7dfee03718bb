package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/quillchat/quill/internal/analytics"
	"github.com/quillchat/quill/internal/api"
	"github.com/quillchat/quill/internal/auth"
	"github.com/quillchat/quill/internal/chat"
	"github.com/quillchat/quill/internal/config"
	"github.com/quillchat/quill/internal/log"
	"github.com/quillchat/quill/internal/store"
)

// runtime holds every long-lived collaborator of a command invocation.
type runtime struct {
	cfg       *config.Config
	logger    *log.Logger
	store     *store.Store
	client    *api.Client
	auth      *auth.Manager
	engine    *chat.Engine
	analytics *analytics.Client
}

// bootstrap wires config, persistence, the gateway client, and the managers
// together, then restores any persisted session. Callers must Close.
func bootstrap() (*runtime, error) {
	dir, err := config.DefaultDir()
	if err != nil {
		return nil, err
	}

	cfg, err := config.ReadConfig(dir)
	if err != nil {
		cfg = config.DefaultConfig()
	}
	if serverURL != "" {
		cfg.ServerURL = serverURL
	}

	logger, err := log.NewLogger(dir)
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}

	st, err := store.NewStore(filepath.Join(dir, "quill.db"))
	if err != nil {
		return nil, fmt.Errorf("opening session store: %w", err)
	}

	// A theme saved in the session store wins over the config file.
	if theme, ok, err := st.Load(store.KeyTheme); err == nil && ok {
		cfg.Theme = theme
	}

	client := api.NewClient(cfg.ServerURL, time.Duration(cfg.TimeoutSeconds)*time.Second)
	mgr := auth.NewManager(client, st, logger)
	engine := chat.NewEngine(client, logger, cfg.HistoryLimit)

	// A dead session must not leave conversation state behind.
	mgr.OnTeardown(engine.Reset)

	mgr.InitializeFromStore()

	return &runtime{
		cfg:       cfg,
		logger:    logger,
		store:     st,
		client:    client,
		auth:      mgr,
		engine:    engine,
		analytics: analytics.NewClient(client),
	}, nil
}

// Close releases the runtime's resources.
func (r *runtime) Close() {
	if r.store != nil {
		_ = r.store.Close()
	}
}
