package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/example/oposbot/internal/exam"
	"github.com/example/oposbot/pkg/models"
)

// Recorder stores imported test results
type Recorder interface {
	RecordAttempt(ctx context.Context, result exam.Result) (*models.Attempt, error)
}

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath         string // Path to the Excel or CSV file
	IdentityColumn   string // Column with the user email
	NameColumn       string // Column with the display name
	CorrectColumn    string // Column with the correct answers
	IncorrectColumn  string // Column with the incorrect answers
	CategoryColumn   string // Column with the test category
	OccurredAtColumn string // Column with the completion date
	SheetName        string // Name of the sheet to import
	StartRow         int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		IdentityColumn:   "A",
		NameColumn:       "B",
		CorrectColumn:    "C",
		IncorrectColumn:  "D",
		CategoryColumn:   "E",
		OccurredAtColumn: "F",
		SheetName:        "Sheet1",
		StartRow:         2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Imported       int
	Skipped        int
	Errors         []string
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006",
}

// ImportAttempts imports test results from an Excel or CSV file
func ImportAttempts(ctx context.Context, recorder Recorder, config ImportConfig) (*ImportResult, error) {
	rows, err := readRows(config)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{
		Errors: make([]string, 0),
	}

	for i, row := range rows {
		// Skip header rows
		if i < config.StartRow-1 {
			continue
		}
		if isBlank(row) {
			continue
		}

		result.TotalProcessed++

		input, err := parseRow(row, config)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
			continue
		}
		if _, err := recorder.RecordAttempt(ctx, input); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
			continue
		}
		result.Imported++
	}

	return result, nil
}

func readRows(config ImportConfig) ([][]string, error) {
	// Check the file extension
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		file, err := os.Open(config.FilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open CSV file: %v", err)
		}
		defer file.Close()
		return readCSV(file)
	}

	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %v", err)
	}
	return rows, nil
}

func parseRow(row []string, config ImportConfig) (exam.Result, error) {
	var result exam.Result

	result.UserIdentity = cell(row, config.IdentityColumn)
	if result.UserIdentity == "" {
		return result, fmt.Errorf("missing user identity")
	}
	result.UserName = cell(row, config.NameColumn)
	result.Category = cell(row, config.CategoryColumn)

	var err error
	if result.CorrectCount, err = parseCount(cell(row, config.CorrectColumn)); err != nil {
		return result, fmt.Errorf("invalid correct count: %v", err)
	}
	if result.IncorrectCount, err = parseCount(cell(row, config.IncorrectColumn)); err != nil {
		return result, fmt.Errorf("invalid incorrect count: %v", err)
	}

	if raw := cell(row, config.OccurredAtColumn); raw != "" {
		if result.OccurredAt, err = parseDate(raw); err != nil {
			return result, err
		}
	}
	return result, nil
}

// cell returns the trimmed value of a column, empty when the row is short
func cell(row []string, column string) string {
	if column == "" {
		return ""
	}
	idx := columnToIndex(column)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseCount(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative value %d", n)
	}
	return n, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
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
		if column[i] < 'A' || column[i] > 'Z' {
			return -1
		}
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
