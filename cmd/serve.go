package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/studyplanner/internal/bot"
	"github.com/example/studyplanner/internal/scheduler"
)

const shutdownTimeout = 5 * time.Second

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Telegram bot and the background jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApplication()
		if err != nil {
			return err
		}
		defer app.Close()

		b, err := bot.New(app.cfg.Telegram.BotToken, app.services, app.cfg.IsAdmin, app.logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if app.cfg.Scheduler.Enabled {
			s, err := scheduler.New(app.cfg.Scheduler, app.services.Users, app.services.Planner, b, app.logger)
			if err != nil {
				return fmt.Errorf("create scheduler: %w", err)
			}
			if err := s.Start(ctx); err != nil {
				return fmt.Errorf("start scheduler: %w", err)
			}
			defer s.Stop()
			b.SetBroadcaster(s)
		}

		err = b.Start(ctx)
		app.logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if stopErr := b.Stop(shutdownCtx); stopErr != nil {
			app.logger.WithError(stopErr).Warn("bot did not stop in time")
		}

		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
