package excel

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/example/studyplanner/internal/usecase"
	"github.com/example/studyplanner/pkg/models"
)

// SubjectCreator stores imported subjects
type SubjectCreator interface {
	Create(ctx context.Context, userID int64, input usecase.SubjectInput) (*models.Subject, error)
}

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath         string // Path to the Excel or CSV file
	NameColumn       string // Column with the subject name
	ChaptersColumn   string // Column with the number of chapters
	DifficultyColumn string // Column with easy, medium or hard
	PriorityColumn   string // Column with low, medium or high
	DeadlineColumn   string // Column with the deadline
	SheetName        string // Name of the sheet to import
	StartRow         int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		NameColumn:       "A",
		ChaptersColumn:   "B",
		DifficultyColumn: "C",
		PriorityColumn:   "D",
		DeadlineColumn:   "E",
		SheetName:        "Sheet1",
		StartRow:         2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        []models.Subject
	Skipped        int
	Errors         []string
}

// deadlineLayouts are the accepted deadline formats, tried in order
var deadlineLayouts = []string{"2006-01-02", "02.01.2006", "01/02/2006", "1/2/06"}

// ImportSubjects imports subjects for a user from an Excel or CSV file.
// Rows that fail to parse or validate are reported in the result and skipped.
func ImportSubjects(ctx context.Context, config ImportConfig, userID int64, creator SubjectCreator) (*ImportResult, error) {
	var (
		rows [][]string
		err  error
	)
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		rows, err = readCSV(config.FilePath)
	} else {
		rows, err = readExcel(config.FilePath, config.SheetName)
	}
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: make([]string, 0)}
	for i, row := range rows {
		rowNum := i + 1
		if rowNum < config.StartRow || isBlank(row) {
			continue
		}
		result.TotalProcessed++

		input, err := parseRow(row, config)
		if err == nil {
			var subject *models.Subject
			subject, err = creator.Create(ctx, userID, input)
			if err == nil {
				result.Created = append(result.Created, *subject)
				continue
			}
			if !errors.Is(err, models.ErrInvalidSubject) {
				return result, fmt.Errorf("row %d: %w", rowNum, err)
			}
		}
		result.Skipped++
		result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
	}

	return result, nil
}

// readExcel returns the raw rows of a sheet. Dates come back as serial numbers.
func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// parseRow turns a row into a subject input. Empty difficulty and priority
// default to medium.
func parseRow(row []string, config ImportConfig) (usecase.SubjectInput, error) {
	cell := func(column string) string {
		if idx := columnToIndex(column); idx >= 0 && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	var input usecase.SubjectInput
	input.Name = cell(config.NameColumn)
	if input.Name == "" {
		return input, fmt.Errorf("name cannot be empty")
	}

	chapters, err := strconv.Atoi(cell(config.ChaptersColumn))
	if err != nil {
		return input, fmt.Errorf("chapters must be a number")
	}
	input.Chapters = chapters

	input.Difficulty = models.Difficulty(strings.ToLower(cell(config.DifficultyColumn)))
	if input.Difficulty == "" {
		input.Difficulty = models.DifficultyMedium
	}
	input.Priority = models.Priority(strings.ToLower(cell(config.PriorityColumn)))
	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}

	input.Deadline, err = parseDeadline(cell(config.DeadlineColumn))
	if err != nil {
		return input, err
	}
	return input, nil
}

// parseDeadline accepts the text layouts and Excel date serial numbers
func parseDeadline(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("deadline cannot be empty")
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised deadline %q", value)
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Helper function to convert Excel column letter to index
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
