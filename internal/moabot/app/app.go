// Package app wires the moabot subsystems together and owns their
// lifecycle: the ledger client, the intent resolver, the dispatcher, the
// conversation controller, the HTTP server, and the optional Matrix bridge.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moadev/moabot/internal/moabot/audit"
	"github.com/moadev/moabot/internal/moabot/config"
	"github.com/moadev/moabot/internal/moabot/conversation"
	"github.com/moadev/moabot/internal/moabot/dispatch"
	"github.com/moadev/moabot/internal/moabot/intent"
	"github.com/moadev/moabot/internal/moabot/ledger"
	"github.com/moadev/moabot/internal/moabot/matrix"
	"github.com/moadev/moabot/internal/moabot/observability"
	"github.com/moadev/moabot/internal/moabot/server"
	"github.com/moadev/moabot/internal/moabot/session"
	"github.com/moadev/moabot/internal/moabot/tools"
)

// App is the assembled moabot process.
type App struct {
	config     config.Config
	auditStore *audit.Store
	httpServer *http.Server
	bridge     *matrix.Bridge
	log        *slog.Logger
}

// New builds the application from the given configuration. Construction
// opens the audit database and, when configured, the Matrix client; Run
// starts serving.
func New(cfg config.Config) (*App, error) {
	observability.Setup(cfg.LogLevel, cfg.LogFormat)
	log := slog.Default()

	ledgerClient := ledger.New(ledger.Config{BaseURL: cfg.LedgerBaseURL})

	validator, err := tools.NewValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to compile tool schemas: %w", err)
	}

	resolver := intent.New(intent.Config{
		APIKey:  cfg.Intent.APIKey,
		BaseURL: cfg.Intent.BaseURL,
		Model:   cfg.Intent.Model,
		Timeout: cfg.Intent.Timeout,
	}, tools.ForIntent())

	var auditStore *audit.Store
	var auditor conversation.Auditor
	if cfg.AuditDBPath != "" {
		log.Info("opening audit database", "path", cfg.AuditDBPath)
		auditStore, err = audit.New(cfg.AuditDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit database: %w", err)
		}
		auditor = auditStore
	}

	dispatcher := dispatch.New(ledgerClient, log)
	controller := conversation.New(session.NewStore(), resolver, dispatcher, validator, auditor, log)

	mux := http.NewServeMux()
	server.New(controller, log).Register(mux)
	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	var bridge *matrix.Bridge
	if cfg.MatrixEnabled() {
		log.Info("connecting to Matrix", "homeserver", cfg.Matrix.Homeserver)
		bridge, err = matrix.New(matrix.Config{
			Homeserver:  cfg.Matrix.Homeserver,
			UserID:      cfg.Matrix.UserID,
			AccessToken: cfg.Matrix.AccessToken,
			SyncDBPath:  cfg.Matrix.SyncDBPath,
		}, controller, log)
		if err != nil {
			if auditStore != nil {
				auditStore.Close()
			}
			return nil, fmt.Errorf("failed to initialize Matrix client: %w", err)
		}
	}

	return &App{
		config:     cfg,
		auditStore: auditStore,
		httpServer: httpServer,
		bridge:     bridge,
		log:        log,
	}, nil
}

// Run starts the HTTP server and the Matrix bridge, then blocks until an
// interrupt signal arrives or the server fails.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.bridge != nil {
		a.log.Info("starting Matrix sync")
		if err := a.bridge.Start(ctx); err != nil {
			return fmt.Errorf("failed to start Matrix client: %w", err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("http server listening", "addr", a.config.ListenAddr)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-sigCh:
		a.log.Info("shutting down")
		return nil
	}
}

// Stop shuts down the HTTP server, the Matrix bridge, and the audit store.
func (a *App) Stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.log.Warn("http shutdown", "error", err)
	}

	if a.bridge != nil {
		a.log.Info("stopping Matrix client")
		a.bridge.Stop()
	}

	if a.auditStore != nil {
		a.log.Info("closing audit database")
		if err := a.auditStore.Close(); err != nil {
			a.log.Warn("audit close", "error", err)
		}
	}
}
