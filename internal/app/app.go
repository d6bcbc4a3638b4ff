// Package app assembles the playbooks service from its configuration.
// It wires the orchestration client, the SCM driver, the services and the
// HTTP router so every entry point starts the same service.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/amphitheatre-app/playbooks/internal/config"
	"github.com/amphitheatre-app/playbooks/internal/constants"
	"github.com/amphitheatre-app/playbooks/internal/orchestrator"
	"github.com/amphitheatre-app/playbooks/internal/scm"
	"github.com/amphitheatre-app/playbooks/internal/server"
	"github.com/amphitheatre-app/playbooks/internal/services"
	"github.com/amphitheatre-app/playbooks/internal/telemetry"

	// SCM drivers register themselves with the scm registry.
	_ "github.com/amphitheatre-app/playbooks/internal/scm/github"
	_ "github.com/amphitheatre-app/playbooks/internal/scm/gitrepo"
)

// App is an initialized playbooks service.
type App struct {
	Config *config.Config
	Router *server.Router
	Logger *slog.Logger

	shutdown telemetry.ShutdownFunc
}

// Option customizes initialization.
type Option func(*options)

type options struct {
	orchestrator orchestrator.Interface
	scm          scm.Client
}

// WithOrchestrator replaces the orchestration client built from the configuration.
func WithOrchestrator(client orchestrator.Interface) Option {
	return func(o *options) {
		o.orchestrator = client
	}
}

// WithSCM replaces the SCM client built from the configuration.
func WithSCM(client scm.Client) Option {
	return func(o *options) {
		o.scm = client
	}
}

// Initialize creates the service described by cfg.
// It returns an error if the SCM driver is unknown or telemetry cannot start.
func Initialize(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("initialization canceled: %w", err)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger.Debug(fmt.Sprintf("initializing %s service", constants.ProjectName),
		"version", *constants.GetVersion(),
		"scm_driver", cfg.SCM.Driver,
		"orchestrator", cfg.Orchestrator.URL,
	)

	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to set up telemetry: %w", err)
	}

	client := o.orchestrator
	if client == nil {
		client = orchestrator.New(cfg.Orchestrator, logger)
	}

	scmClient := o.scm
	if scmClient == nil {
		scmClient, err = scm.New(cfg.SCM, logger)
		if err != nil {
			return nil, errors.Join(
				fmt.Errorf("failed to create SCM client (available: %v): %w", scm.Available(), err),
				shutdown(ctx),
			)
		}
	}

	router := server.NewRouter(server.Services{
		Playbooks: services.NewPlaybookService(client, scmClient, logger),
		Files:     services.NewFileService(client, scmClient, logger),
		Folders:   services.NewFolderService(client, scmClient, logger),
		Logs:      services.NewLoggerService(client, logger),
	}, logger, server.Options{
		RequestTimeout: cfg.RequestTimeout,
		KeepAlive:      cfg.Logs.KeepAlive,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	logger.Debug(constants.ProjectName + " service initialized successfully")

	return &App{Config: cfg, Router: router, Logger: logger, shutdown: shutdown}, nil
}

// MustInitialize initializes the service and exits on error.
// Suitable for application startup where initialization errors should be fatal.
func MustInitialize(ctx context.Context, cfg *config.Config, logger *slog.Logger) *App {
	a, err := Initialize(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize service", "error", err)
		os.Exit(1)
	}
	return a
}

// Handler returns the HTTP handler of the service.
func (a *App) Handler() http.Handler {
	return a.Router.Handler()
}

// Shutdown flushes pending traces.
func (a *App) Shutdown(ctx context.Context) error {
	if a.shutdown == nil {
		return nil
	}
	return a.shutdown(ctx)
}
