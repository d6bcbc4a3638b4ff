package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/amphitheatre-app/playbooks/internal/app"
	"github.com/amphitheatre-app/playbooks/internal/config"
	"github.com/amphitheatre-app/playbooks/internal/constants"
	"github.com/amphitheatre-app/playbooks/internal/logger"
	"github.com/amphitheatre-app/playbooks/internal/output"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long: `Loads the configuration, connects to the orchestration server and serves
the REST API until SIGINT or SIGTERM, then drains in-flight requests.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	level := cfg.GetLogLevel()
	if debug {
		level = slog.LevelDebug
	}
	log := logger.Initialize(cfg.Env, level)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Initialize(ctx, cfg, log)
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Addr(), err)
	}

	printBanner(cfg, listener.Addr().String())

	return serve(ctx, a, listener)
}

// serve runs the HTTP server on listener until ctx is done, then shuts the
// server and telemetry down within the configured shutdown timeout.
func serve(ctx context.Context, a *app.App, listener net.Listener) error {
	srv := &http.Server{
		Handler:     a.Handler(),
		ReadTimeout: constants.ServerReadTimeout,
		IdleTimeout: constants.ServerIdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.Logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout(a))
		defer cancel()

		return errors.Join(srv.Shutdown(shutdownCtx), a.Shutdown(shutdownCtx))
	})

	if err := g.Wait(); err != nil {
		return err
	}

	output.Successf("server stopped")
	return nil
}

func shutdownTimeout(a *app.App) time.Duration {
	if a.Config != nil && a.Config.ShutdownTimeout > 0 {
		return a.Config.ShutdownTimeout
	}
	return constants.ServerShutdownTimeout
}

func printBanner(cfg *config.Config, addr string) {
	output.Header(output.Bold(constants.ProjectName) + " " + *constants.GetVersion())
	output.KeyValue("Address", addr)
	output.KeyValue("Orchestrator", cfg.Orchestrator.URL)
	output.KeyValue("SCM driver", string(cfg.SCM.Driver))
	output.KeyValue("Request timeout", output.Duration(cfg.RequestTimeout))
	if cfg.Telemetry.OTLPEndpoint != "" {
		output.KeyValue("Traces", cfg.Telemetry.OTLPEndpoint)
	}
	output.Blank()
	output.Infof("Health check: %s", output.Cyan("http://"+addr+"/health"))
	output.Infof("API docs: %s", output.Cyan("http://"+addr+"/swagger"))
}
