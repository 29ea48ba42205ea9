package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seenbyai/audit-console/internal/api"
	"github.com/seenbyai/audit-console/internal/clock/system"
	"github.com/seenbyai/audit-console/internal/metrics"
	"github.com/seenbyai/audit-console/internal/watcher"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the console HTTP service.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, client, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck // best-effort flush
			zap.ReplaceGlobals(logger)
			metrics.Init()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			clk := system.New()
			watchCfg := watcher.Config{
				PollInterval:  cfg.Status.PollInterval(),
				TickInterval:  cfg.Status.TickInterval(),
				StepAdvance:   cfg.Status.StepAdvance(),
				RedirectDelay: cfg.Status.RedirectDelay(),
			}
			// Navigation is the browser's job; the server just records that
			// the redirect became due and lets the view model carry the URL.
			registry := watcher.NewRegistry(func(jobID string) *watcher.Watcher {
				return watcher.New(jobID, client, clk, watchCfg, func(jobID, target string) {
					logger.Info("redirect ready",
						zap.String("job_id", jobID),
						zap.String("target", target),
					)
				}, logger.Named("watcher"))
			})
			defer registry.CloseAll()

			server := api.NewServer(client, registry, cfg, logger.Named("api"))
			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
				Handler:           server.Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			go func() {
				logger.Info("http server started", zap.Int("port", cfg.Server.Port))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("http server error", zap.Error(err))
					stop()
				}
			}()

			<-ctx.Done()
			logger.Info("shutdown initiated")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("server shutdown error", zap.Error(err))
			}
			logger.Info("shutdown complete")
			return nil
		},
	}
}
