// ABOUTME: Serve command running the JSON HTTP API
// ABOUTME: Also runs the catalogue import on a cron schedule while serving

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/harper/gachi/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the JSON HTTP API on the configured listen address (default 127.0.0.1:8480).

When events_url or spaces_url are configured, the catalogue is re-imported
on the import_cron schedule (default "0 4 * * *", daily at 04:00).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		listen, _ := cmd.Flags().GetString("listen")
		if listen == "" {
			listen = cfg.GetListen()
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if cfg.EventsURL != "" || cfg.SpacesURL != "" {
			c := cron.New(cron.WithLocation(tz))
			spec := cfg.GetImportCron()
			if _, err := c.AddFunc(spec, func() { runScheduledImport(ctx) }); err != nil {
				return fmt.Errorf("invalid import_cron %q: %w", spec, err)
			}
			c.Start()
			defer func() { <-c.Stop().Done() }()
			logger.Info("scheduled catalogue import", "cron", spec)
		}

		router := api.NewRouter(&api.Handler{
			Schedules:   scheduleService(),
			Family:      familyService(),
			Recommender: recommender(),
			Clock:       clock,
			UserID:      cfg.UserID,
			District:    cfg.GetDistrict(),
			Logger:      logger,
		})
		srv := &http.Server{
			Addr:              listen,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errc := make(chan error, 1)
		go func() {
			logger.Info("listening", "addr", listen)
			errc <- srv.ListenAndServe()
		}()

		select {
		case err := <-errc:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("HTTP server error: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", "", "listen address (default from config)")
}

func runScheduledImport(ctx context.Context) {
	out, err := newImporter().ImportAll(ctx, cfg.EventsURL, cfg.SpacesURL)
	if err != nil {
		logger.Error("scheduled import failed", "err", err)
		return
	}
	logger.Info("scheduled import finished", "events", out.Events.String(), "spaces", out.Spaces.String())
}
