package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var planTelegramID int64

// planCmd prints a freshly generated weekly plan
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate this week's plan for a user and print it as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApplication()
		if err != nil {
			return err
		}
		defer app.Close()

		ctx := cmd.Context()
		user, err := app.lookupUser(ctx, planTelegramID, false)
		if err != nil {
			return err
		}
		record, err := app.services.Planner.GenerateWeeklyPlan(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("generate plan: %w", err)
		}
		return writeJSON(cmd.OutOrStdout(), record)
	},
}

// todayCmd prints the entries planned for the current day
var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Print what a user should study today",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApplication()
		if err != nil {
			return err
		}
		defer app.Close()

		ctx := cmd.Context()
		user, err := app.lookupUser(ctx, planTelegramID, false)
		if err != nil {
			return err
		}
		day, entries, err := app.services.Planner.TodayEntries(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("today's entries: %w", err)
		}
		return writeJSON(cmd.OutOrStdout(), map[string]any{
			"day":     day.String(),
			"entries": entries,
		})
	},
}

// summaryCmd prints progress and failure analytics
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print progress and failure analytics for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApplication()
		if err != nil {
			return err
		}
		defer app.Close()

		ctx := cmd.Context()
		user, err := app.lookupUser(ctx, planTelegramID, false)
		if err != nil {
			return err
		}
		summary, err := app.services.Analytics.Summary(ctx, user.ID)
		if err != nil {
			return err
		}
		failure, err := app.services.Analytics.FailureAnalytics(ctx, user.ID, 0)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), map[string]any{
			"summary": summary,
			"failure": failure,
		})
	},
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	for _, c := range []*cobra.Command{planCmd, todayCmd, summaryCmd} {
		c.Flags().Int64Var(&planTelegramID, "telegram-id", 0, "Telegram id of the user")
		rootCmd.AddCommand(c)
	}
}
