package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/pixelpilot"
	httpAdapter "github.com/aretw0/pixelpilot/pkg/adapters/http"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve [graph-file]",
	Short: "Start the HTTP control surface",
	Long: `Starts an engine and exposes it over HTTP: graph editing, rules, shared state,
start/stop/step, Server-Sent Events on /events and Prometheus metrics on /metrics.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.HTTP.Addr
		}
		autostart, _ := cmd.Flags().GetBool("start")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		stream := httpAdapter.NewBroadcaster()
		a, err := newApp(ctx, "", stream)
		if err != nil {
			return err
		}
		defer a.Close()

		if len(args) == 1 {
			if err := a.loadGraph(ctx, args[0], false); err != nil {
				return err
			}
		}

		handler := httpAdapter.NewHandler(a.engine,
			httpAdapter.WithLogger(logger),
			httpAdapter.WithBroadcaster(stream),
			httpAdapter.WithMetrics(a.metrics),
			httpAdapter.WithVersion(pixelpilot.Version),
			httpAdapter.WithRunContext(ctx),
		)
		srv := &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		}

		banner()
		if autostart {
			if err := a.engine.Start(ctx); err != nil {
				return err
			}
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("HTTP server listening", "address", addr)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
		case <-ctx.Done():
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("graceful shutdown did not complete", "error", err)
				_ = srv.Close()
			}
		}
		return a.engine.Stop()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (default http.addr from config)")
	serveCmd.Flags().Bool("start", false, "Start the tick loop immediately")
}
