package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ozdemircibaris/youtube-video-generator/internal/platform/metrics"
	"github.com/ozdemircibaris/youtube-video-generator/internal/server"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve timelines and per-frame queries over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var port string

func init() {
	serveCmd.Flags().StringVarP(&port, "port", "p", "", "listen port (default from PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if port == "" {
		port = cfg.Port
	}
	log := slog.Default()

	met := metrics.New()
	svc := server.NewService(server.NewInMemoryStore(), cfg.Settings, log, met)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           server.NewRouter(svc, log, met, cfg.QueryRateLimit),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	log.Info("server starting",
		"port", port,
		"query_rate_limit", cfg.QueryRateLimit,
		"frame_rate", cfg.Render.FrameRate)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutdown signal received, draining connections")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info("server stopped")
	return nil
}
