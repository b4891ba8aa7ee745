// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/headsync/internal/api"
	"github.com/starford/headsync/internal/inclusion"
	"github.com/starford/headsync/internal/journal"
	"github.com/starford/headsync/internal/mcpserver"
	"github.com/starford/headsync/internal/models"
	"github.com/starford/headsync/internal/noteservice"
	"github.com/starford/headsync/internal/settings"
	"github.com/starford/headsync/internal/sse"
	"github.com/starford/headsync/internal/storage"
	"github.com/starford/headsync/internal/syncer"
	"github.com/starford/headsync/internal/watcher"
)

// components is everything both the HTTP server and the MCP server run on.
type components struct {
	logger  *slog.Logger
	store   *storage.FS
	journal *journal.DB
	broker  *sse.Broker
	ctrl    *syncer.Controller
	svc     *noteservice.Service
}

func (c *components) Close() {
	c.broker.Close()
	if err := c.journal.Close(); err != nil {
		c.logger.Warn("journal close failed", slog.String("error", err.Error()))
	}
}

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev", logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func (app *application) build() (*components, error) {
	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("settings_path", cfg.Vault.SettingsPath()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure vault directory exists.
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	settingsPath := cfg.Vault.SettingsPath()
	if err := os.MkdirAll(filepath.Dir(settingsPath), 0o755); err != nil {
		return nil, fmt.Errorf("create settings dir: %w", err)
	}
	prefs, err := settings.Load(settingsPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	db, err := journal.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init journal: %w", err)
	}

	broker := sse.NewBroker(cfg.App.Events.VaultThrottle)

	ctrl := syncer.New(store, prefs, inclusion.Folders(cfg.Vault.ExcludedFolders), &syncer.Active{}, logger,
		syncer.WithRecorder(db),
		syncer.WithRenameHook(func(r models.Rename) {
			if _, err := prefs.RenameFile(r.From, r.To); err != nil {
				logger.Warn("settings: follow rename failed",
					slog.String("from", r.From),
					slog.String("to", r.To),
					slog.String("error", err.Error()))
			}
			broker.PublishRename(r)
		}),
	)

	svc := noteservice.NewService(store, prefs, ctrl, db)
	svc.OnSettingsChanged(func(snap settings.Snapshot) {
		broker.PublishSettings(snap)
	})

	return &components{
		logger:  logger,
		store:   store,
		journal: db,
		broker:  broker,
		ctrl:    ctrl,
		svc:     svc,
	}, nil
}

// watch runs the vault watcher. The watcher and the controller log every
// evaluation themselves, so no callback is needed.
func (c *components) watch(ctx context.Context) error {
	return watcher.Watch(ctx, c.ctrl, c.store.Root(), c.logger, nil)
}

// Run starts the HTTP server and the vault watcher with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	c, err := app.build()
	if err != nil {
		return err
	}
	defer c.Close()
	logger := c.logger

	apiRouter := api.NewRouter(c.svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, c.broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := c.journal.Recent(req.Context(), 1); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"journal unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := c.watch(gCtx); err != nil {
			return fmt.Errorf("watcher error: %w", err)
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// Close SSE streams first so Shutdown is not held open by them.
		c.broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools over stdio until stdin closes. No watcher
// runs: without a host there is no active note for saves to act on.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	c, err := app.build()
	if err != nil {
		return err
	}
	defer c.Close()

	c.logger.Info("MCP server starting on stdio")
	return mcpserver.New(c.svc, app.version).ServeStdio()
}
