package report_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/nextpv/bd-academy/internal/content"
	"github.com/nextpv/bd-academy/internal/platform/kv"
	"github.com/nextpv/bd-academy/internal/progress"
	"github.com/nextpv/bd-academy/internal/report"
)

func writeSession(t *testing.T, dir string, id int, title string) {
	t.Helper()
	data := fmt.Sprintf("session:\n  id: %d\n  title: %s\n  duration: 90\n", id, title)
	name := filepath.Join(dir, fmt.Sprintf("%02d.session.yaml", id))
	if err := os.WriteFile(name, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWriter_Write(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeSession(t, dir, 1, "Selling Principles")
	writeSession(t, dir, 2, "Buyer Journey")

	catalog, err := content.NewCatalog(dir)
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	tracker := progress.NewTracker(kv.NewMemoryStore(), progress.WithSessionCount(2))
	tracker.SetQuizScore(ctx, "a@b.com", 1, 85)
	tracker.MarkScenarioViewed(ctx, "a@b.com", 1)
	tracker.MarkSessionComplete(ctx, "a@b.com", 1)

	var buf bytes.Buffer
	if err := report.NewWriter(catalog, tracker).Write(ctx, &buf, "a@b.com"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	tests := []struct {
		cell string
		want string
	}{
		{"A1", "Session"},
		{"B2", "Selling Principles"},
		{"C2", "85"},
		{"D2", "yes"},
		{"E2", "yes"},
		{"B3", "Buyer Journey"},
		{"C3", "-"},
		{"E3", "no"},
		{"B5", "a@b.com"},
		{"B6", "50%"},
	}
	for _, tt := range tests {
		got, err := f.GetCellValue("Progress", tt.cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s) error = %v", tt.cell, err)
		}
		if got != tt.want {
			t.Errorf("cell %s = %q, want %q", tt.cell, got, tt.want)
		}
	}
}
