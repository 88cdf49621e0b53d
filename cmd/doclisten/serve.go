package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vango-dev/doclisten/internal/actions"
	"github.com/vango-dev/doclisten/internal/config"
	"github.com/vango-dev/doclisten/pkg/bridge"
	"github.com/vango-dev/doclisten/pkg/dom"
	"github.com/vango-dev/doclisten/pkg/listen"
	"github.com/vango-dev/doclisten/pkg/middleware"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(opts *rootOptions) *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the listener component to WebSocket clients",
		Long: `Start the bridge server.

Every WebSocket connection on /ws runs one component with the configured
listeners. The component mounts when the client connects and is torn down
when it disconnects. Prometheus metrics are served on /metrics.

Examples:
  doclisten serve
  doclisten serve --address=127.0.0.1:9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if address != "" {
				cfg.Server.Address = address
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&address, "address", "a", "", "Address to listen on (default from config)")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger := newLogger(os.Stderr, cfg)
	writeTimeout, _ := cfg.WriteTimeout()

	tally := actions.NewTally()
	decls := cfg.Listeners

	srv := bridge.New(func(s *bridge.Session) {
		listeners, err := actions.Listeners(decls, actions.Options{
			Logger: s.Logger(),
			Tally:  tally,
			Sender: s,
		})
		if err != nil {
			panic(err)
		}
		listen.Use(s.Owner(), s.Document(), listeners)
	}, &bridge.Config{
		Address:      cfg.Server.Address,
		ReadLimit:    cfg.Server.ReadLimit,
		WriteTimeout: writeTimeout,
		Logger:       logger,
		Metrics:      middleware.NewMetrics(middleware.WithNamespace(cfg.Metrics.Namespace)),
		Middleware: []dom.Middleware{
			middleware.OpenTelemetry(middleware.WithTracerName(cfg.Tracing.TracerName)),
		},
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, bridge.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", "sessions", srv.Sessions())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	for _, t := range tally.Types() {
		logger.Info("event total", "event", string(t), "count", tally.Count(t))
	}

	if err := <-errCh; !errors.Is(err, bridge.ErrServerClosed) {
		return err
	}
	return nil
}
