package excel

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/example/oposbot/pkg/models"
)

// LeaderboardSheet is the sheet the leaderboard is written to
const LeaderboardSheet = "Sheet1"

var leaderboardHeader = []string{
	"Rank", "Name", "Identity", "Wilson Score", "Questions",
	"Correct", "Incorrect", "Average Score", "Top Category", "Tests",
}

// WriteLeaderboard writes the entries as an xlsx workbook
func WriteLeaderboard(w io.Writer, entries []models.LeaderboardEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	for col, title := range leaderboardHeader {
		if err := setCell(f, col+1, 1, title); err != nil {
			return err
		}
	}

	for i, entry := range entries {
		row := i + 2
		values := []interface{}{
			entry.Rank,
			entry.UserName,
			entry.UserIdentity,
			round1(entry.WilsonScore),
			entry.TotalQuestions,
			entry.TotalCorrect,
			entry.TotalIncorrect,
			round1(entry.AverageScore),
			entry.TopCategory,
			entry.TotalTests,
		}
		for col, value := range values {
			if err := setCell(f, col+1, row, value); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %v", err)
	}
	return nil
}

// ExportLeaderboard saves the entries to an xlsx file
func ExportLeaderboard(path string, entries []models.LeaderboardEntry) error {
	var buf bytes.Buffer
	if err := WriteLeaderboard(&buf, entries); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to save %s: %v", path, err)
	}
	return nil
}

func setCell(f *excelize.File, col, row int, value interface{}) error {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("failed to resolve cell: %v", err)
	}
	if err := f.SetCellValue(LeaderboardSheet, name, value); err != nil {
		return fmt.Errorf("failed to set %s: %v", name, err)
	}
	return nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
