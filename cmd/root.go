package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

var envFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "studyplanner",
	Short: "Telegram bot that turns subjects and deadlines into weekly study plans",
	Long: `studyplanner keeps track of the subjects a student is working through and
builds a weekly plan that puts the most urgent work first.

Run "studyplanner serve" to start the Telegram bot together with the weekly
plan broadcast and the daily reminders.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "file with environment variables to load before reading the configuration")
}
