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
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"github.com/starford/quire/internal/api"
	"github.com/starford/quire/internal/mcpserver"
	"github.com/starford/quire/internal/mirror"
	"github.com/starford/quire/internal/session"
	"github.com/starford/quire/internal/sse"
	"github.com/starford/quire/internal/store"
	"github.com/starford/quire/internal/workservice"
)

// core holds the components shared by the HTTP and MCP entry points.
type core struct {
	logger *slog.Logger
	db     *store.DB
	mirror *mirror.Mirror
	works  *workservice.Service
}

func (c *core) Close() {
	if err := c.db.Close(); err != nil {
		c.logger.Warn("close store failed", slog.String("error", err.Error()))
	}
}

// setup builds the logger, store, mirror and work service. Extra service
// options are appended after the mirror exporter.
func setup(ctx context.Context, app *application, opts ...workservice.Option) (*core, error) {
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("mirror_path", cfg.Mirror.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if err := os.MkdirAll(filepath.Dir(cfg.SQLite.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	c := &core{logger: logger, db: db}

	var svcOpts []workservice.Option
	if cfg.Mirror.Enabled() {
		m, err := mirror.New(cfg.Mirror.Path)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("init mirror: %w", err)
		}
		c.mirror = m
		svcOpts = append(svcOpts, workservice.WithExporter(m))
	}
	svcOpts = append(svcOpts, opts...)

	c.works = workservice.NewService(db, workservice.Config{
		TitlePrefix: cfg.Works.TitlePrefix,
		DeviceName:  cfg.Works.DeviceName,
		DisplayName: cfg.Works.DisplayName,
	}, logger, svcOpts...)

	// Run initial export so the mirror reflects the store.
	if c.mirror != nil {
		if err := mirror.Sync(ctx, c.mirror, c.works, logger); err != nil {
			logger.Warn("initial mirror sync failed", slog.String("error", err.Error()))
		}
	}
	return c, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	c, err := setup(ctx, app, workservice.WithPublisher(broker))
	if err != nil {
		return err
	}
	defer c.Close()

	cfg, logger := app.config, c.logger

	// Session gates: identity verification against the allow-list and
	// account status from the mirror directory.
	entry := session.NewEntryGate(session.NewAllowListVerifier(cfg.Session.Users), cfg.Session.VerifyTimeout, logger)
	syncGate := session.NewSyncGate(mirror.NewStatusProvider(cfg.Mirror.Path), cfg.Session.VerifyTimeout, logger)
	sessions, err := session.NewService(ctx, c.db, entry, syncGate, logger)
	if err != nil {
		return fmt.Errorf("init session: %w", err)
	}
	defer sessions.Close()
	sessions.CheckSync(ctx)

	apiRouter := api.NewRouter(c.works, sessions, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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
		if err := c.db.Ping(req.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	// CORS must wrap auth so pre-flight requests pass.
	var handler http.Handler = r
	if len(cfg.App.HTTP.CORSOrigins) > 0 {
		handler = cors.New(cors.Options{
			AllowedOrigins:   cfg.App.HTTP.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "If-Match", "Last-Event-ID"},
			ExposedHeaders:   []string{"ETag"},
			AllowCredentials: true,
		}).Handler(r)
	}

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Feed external edits of the mirror back into the store.
	if c.mirror != nil && cfg.Mirror.Watch {
		g.Go(func() error {
			if err := mirror.Watch(gCtx, c.mirror, c.works, logger, nil); err != nil {
				logger.Error("mirror watcher failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}

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

// errShutdown cancels the group context so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the work tools over MCP on stdin/stdout until the client
// disconnects.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))

	c, err := setup(ctx, app)
	if err != nil {
		return err
	}
	defer c.Close()

	c.logger.Info("MCP server starting on stdio", slog.String("version", app.version))
	if err := mcpserver.New(c.works, app.version).ServeStdio(); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
