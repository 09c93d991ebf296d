package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/example/studyplanner/internal/excel"
)

var (
	importTelegramID int64
	importFile       string
	importSheet      string
)

// importCmd loads subjects from a spreadsheet
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import subjects for a user from an Excel or CSV file",
	Long: `Import subjects from an .xlsx or .csv file. The first row is a header and
the columns are: name, chapters, difficulty, priority, deadline.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if importFile == "" {
			return fmt.Errorf("--file is required")
		}

		app, err := newApplication()
		if err != nil {
			return err
		}
		defer app.Close()

		ctx := cmd.Context()
		user, err := app.lookupUser(ctx, importTelegramID, true)
		if err != nil {
			return err
		}

		config := excel.DefaultImportConfig()
		config.FilePath = filepath.Clean(importFile)
		config.SheetName = importSheet

		result, err := excel.ImportSubjects(ctx, config, user.ID, app.services.Subjects)
		if err != nil {
			return fmt.Errorf("import subjects: %w", err)
		}

		for _, msg := range result.Errors {
			cmd.PrintErrln(msg)
		}
		cmd.Printf("Imported %d of %d subjects from %s\n", len(result.Created), result.TotalProcessed, importFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().Int64Var(&importTelegramID, "telegram-id", 0, "Telegram id of the user")
	importCmd.Flags().StringVar(&importFile, "file", "", "path to the .xlsx or .csv file")
	importCmd.Flags().StringVar(&importSheet, "sheet", "", "sheet to read (defaults to the active sheet)")
}
