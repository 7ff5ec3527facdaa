// Package report builds the admin-facing progress workbook.
package report

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/nextpv/bd-academy/internal/content"
	"github.com/nextpv/bd-academy/internal/progress"
)

const sheetName = "Progress"

// Writer renders a learner's progress as an xlsx workbook.
type Writer struct {
	catalog *content.Catalog
	tracker *progress.Tracker
}

func NewWriter(catalog *content.Catalog, tracker *progress.Tracker) *Writer {
	return &Writer{catalog: catalog, tracker: tracker}
}

// Write renders the workbook for one learner to w.
func (wr *Writer) Write(ctx context.Context, w io.Writer, email string) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetName)

	headers := []string{"Session", "Title", "Quiz Score", "Scenario", "Completed"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("building header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		f.SetCellStyle(sheetName, "A1", "E1", headerStyle)
	}

	snap := wr.tracker.Snapshot(ctx, email)
	row := 2
	for _, session := range wr.catalog.Sessions() {
		score := "-"
		if s, attempted := snap.QuizScores[session.ID]; attempted {
			score = fmt.Sprintf("%d", s)
		}
		scenario := "no"
		if snap.ScenariosViewed[session.ID] {
			scenario = "yes"
		}
		completed := "no"
		if wr.tracker.IsSessionComplete(ctx, email, session.ID) {
			completed = "yes"
		}

		values := []any{session.ID, session.Title, score, scenario, completed}
		for i, v := range values {
			cell, err := excelize.CoordinatesToCellName(i+1, row)
			if err != nil {
				return fmt.Errorf("building cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("writing row %d: %w", row, err)
			}
		}
		row++
	}

	row++
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "Learner")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), email)
	row++
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "Overall")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), fmt.Sprintf("%d%%", wr.tracker.OverallProgress(ctx, email)))

	f.SetColWidth(sheetName, "B", "B", 52)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
