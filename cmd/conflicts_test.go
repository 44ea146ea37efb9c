package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"clockfix/output"
	"clockfix/storage"
)

func TestEmitTablePrintsAlignedColumns(t *testing.T) {
	t.Parallel()

	table := output.ConflictReport(nil)
	table.Rows = [][]string{{"1", "2026-10-18", "10", "emp-1", "Shift", "1", "08:00", "16:00", "delete+split", "outer", ""}}

	var out bytes.Buffer
	if err := emitTable(&out, table, "", ""); err != nil {
		t.Fatalf("emit table: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got:\n%s", out.String())
	}
	if !strings.HasPrefix(lines[0], "Group") || !strings.Contains(lines[1], "delete+split") {
		t.Fatalf("unexpected table output:\n%s", out.String())
	}
}

func TestEmitTableWritesCSVFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "report.csv")
	table := output.Table{Headers: []string{"A", "B"}, Rows: [][]string{{"1", "2"}}}

	var out bytes.Buffer
	if err := emitTable(&out, table, path, ""); err != nil {
		t.Fatalf("emit table: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(content), "A") || !strings.Contains(string(content), "1") {
		t.Fatalf("unexpected csv content:\n%s", content)
	}
	if !strings.Contains(out.String(), "Format: csv") {
		t.Fatalf("expected summary line, got %q", out.String())
	}
}

func TestDetectOutputFormat(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"report.csv":  "csv",
		"report.xlsx": "excel",
		"report.XLSM": "excel",
		"report.out":  "csv",
	}
	for path, want := range tests {
		if got := detectOutputFormat(path); got != want {
			t.Fatalf("%s: expected %s, got %s", path, want, got)
		}
	}
}

func TestHistoryTable(t *testing.T) {
	t.Parallel()

	started := time.Date(2026, 10, 18, 9, 30, 0, 0, time.Local)
	table := historyTable([]storage.Attempt{
		{
			Action:    storage.ActionSplit,
			Day:       "2026-10-18",
			SubjectID: "emp-1",
			RecordIDs: []int64{10, 11},
			Segments:  3,
			Status:    storage.StatusSucceeded,
			StartedAt: started,
		},
	})

	if len(table.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(table.Rows))
	}
	row := table.Rows[0]
	if row[0] != "2026-10-18 09:30:00" || row[1] != "split" || row[4] != "10,11" || row[5] != "3" || row[6] != "succeeded" {
		t.Fatalf("unexpected row %#v", row)
	}
}
