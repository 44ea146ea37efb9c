package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clockfix/worklog"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"
)

const sampleCSV = "Group;Day;Record ID;Subject ID;Label;Category ID;Start;End;Date\n" +
	"g1;18/10/2026;10;u1;Day shift;3;08:00;17:00;18/10/2026\n" +
	"g1;18/10/2026;11;u1;Break;4;12:00;13:00;18/10/2026\n" +
	";;;;;;;;\n" +
	"g2;19/10/2026;;u2;Draft;4;09:00;12:00;\n" +
	"g2;19/10/2026;21;u2;Late;3;10:00;14:00;\n"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestReadConflictGroups_CSV(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "conflicts.csv", "\xEF\xBB\xBF"+sampleCSV)
	groups, err := ReadConflictGroups(path, "csv")
	if err != nil {
		t.Fatalf("read conflict groups: %v", err)
	}

	want := []worklog.ConflictGroup{
		{Day: "18/10/2026", Items: []worklog.Item{
			{RecordID: worklog.ID(10), SubjectID: "u1", Label: "Day shift", CategoryID: 3, Start: "08:00", End: "17:00", Date: "18/10/2026"},
			{RecordID: worklog.ID(11), SubjectID: "u1", Label: "Break", CategoryID: 4, Start: "12:00", End: "13:00", Date: "18/10/2026"},
		}},
		{Day: "19/10/2026", Items: []worklog.Item{
			{SubjectID: "u2", Label: "Draft", CategoryID: 4, Start: "09:00", End: "12:00", Date: "19/10/2026"},
			{RecordID: worklog.ID(21), SubjectID: "u2", Label: "Late", CategoryID: 3, Start: "10:00", End: "14:00", Date: "19/10/2026"},
		}},
	}
	if diff := cmp.Diff(want, groups); diff != "" {
		t.Fatalf("unexpected groups (-want +got):\n%s", diff)
	}
}

func TestReadConflictGroups_Excel(t *testing.T) {
	t.Parallel()

	file := excelize.NewFile()
	sheet := file.GetSheetName(0)
	rows := [][]any{
		{"group", "day", "recordId", "subjectId", "label", "categoryId", "start", "end", "date"},
		{"a", "18/10/2026", "10", "u1", "Day", "3", "08:00", "17:00", "18/10/2026"},
		{"a", "18/10/2026", "11", "u1", "Break", "4", "12:00", "13:00", "18/10/2026"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := file.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row %d: %v", i+1, err)
		}
	}
	path := filepath.Join(t.TempDir(), "conflicts.xlsx")
	if err := file.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	_ = file.Close()

	groups, err := ReadConflictGroups(path, "xlsx")
	if err != nil {
		t.Fatalf("read conflict groups: %v", err)
	}
	if len(groups) != 1 || len(groups[0].Items) != 2 {
		t.Fatalf("unexpected groups: %+v", groups)
	}
	if groups[0].Items[1].RecordID != worklog.ID(11) {
		t.Fatalf("unexpected inner record id: %+v", groups[0].Items[1])
	}
}

func TestGroupRecords_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "bad record id", content: "group,recordId,subjectId,start,end\ng,abc,u1,08:00,09:00\n", want: "invalid record id"},
		{name: "missing subject", content: "group,recordId,subjectId,start,end\ng,1,,08:00,09:00\n", want: "subject id is required"},
		{name: "bad category", content: "group,subjectId,categoryId\ng,u1,x\n", want: "invalid category id"},
		{name: "mixed days", content: "group,day,subjectId\ng,18/10/2026,u1\ng,19/10/2026,u1\n", want: "mixes days"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "bad.csv", tt.content)
			_, err := ReadConflictGroups(path, "csv")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	t.Parallel()

	if format, err := FormatFromPath("export.XLSX"); err != nil || format != "excel" {
		t.Fatalf("unexpected format %q (%v)", format, err)
	}
	if format, err := FormatFromPath("export.csv"); err != nil || format != "csv" {
		t.Fatalf("unexpected format %q (%v)", format, err)
	}
	if _, err := FormatFromPath("export.txt"); err == nil {
		t.Fatalf("expected error for unknown extension")
	}
	if _, err := ReaderForFormat("json"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}
