package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rflorenc/lxd-resource-dashboard/internal/api"
	"github.com/rflorenc/lxd-resource-dashboard/internal/dashboard"
	"github.com/rflorenc/lxd-resource-dashboard/internal/models"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := cfg.Logger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			conn, err := cfg.Connection()
			if err != nil {
				return err
			}
			src, err := openSource(conn, cfg.RequestTimeout, logger)
			if err != nil {
				return err
			}

			// Verify connectivity early; the dashboard still starts when it fails.
			health := &models.HealthTracker{}
			pingCtx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
			err = src.Ping(pingCtx)
			cancel()
			health.SetHealth(err)
			if err != nil {
				logger.Warn("inventory source unreachable", zap.String("source", src.Describe()), zap.Error(err))
			} else {
				logger.Info("inventory source reachable", zap.String("source", src.Describe()))
			}

			loader := dashboard.NewLoader(src, models.NewFetchStore(cfg.CacheTTL), dashboard.LoaderConfig{
				Timeout:        cfg.RequestTimeout,
				MaxConcurrency: cfg.MaxConcurrency,
			}, logger)
			server := &api.Server{
				Loader:  loader,
				Conn:    conn,
				Health:  health,
				Log:     logger,
				Version: Version,
			}

			httpServer := &http.Server{
				Addr:              cfg.Listen,
				Handler:           api.NewRouter(server),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("lxd-dashboard starting", zap.String("version", Version), zap.String("listen", cfg.Listen))
				fmt.Fprintf(stdout, "Open http://localhost%s/dashboard in your browser\n", cfg.Listen)
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().String("listen", "", "HTTP listen address (default :8080)")
	cmd.Flags().Bool("dev", false, "Dev mode (console logging)")
	return cmd
}
