package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/dumpling"
	httpadapter "github.com/aretw0/dumpling/pkg/adapters/http"
	"github.com/aretw0/dumpling/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Serves the wizard as a JSON API with server-sent events, Prometheus metrics
and the OpenAPI document at /openapi.yaml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Port = port
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, cmd.ErrOrStderr())
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "port to listen on (env DUMPLING_PORT)")
	return cmd
}

func (a *app) serve(ctx context.Context, printOut io.Writer) error {
	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	wiz, closeBackend, err := a.wizard(printOut, dumpling.WithLifecycleHooks(metrics.Hooks()))
	if err != nil {
		return err
	}
	defer closeBackend()

	handler := httpadapter.NewHandler(wiz, httpadapter.WithGatherer(prometheus.DefaultGatherer))
	defer handler.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Event streams end with the server context.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		a.logger.Info("starting dumpling server", "addr", srv.Addr, "config", a.cfg)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		a.logger.Info("shutdown started")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown did not complete in %v: %w", shutdownTimeout, err)
		}
		a.logger.Info("server stopped gracefully")
	}
	return nil
}
