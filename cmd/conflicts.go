package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"clockfix/output"

	"github.com/spf13/cobra"
)

var conflictsCmd = &cobra.Command{
	Use:   "conflicts",
	Short: "Inspect conflicting worklog records.",
	Long: `List conflict groups reported by the workforce API, or classify groups read
from an exported CSV/Excel file.

For every group the offered strategies are shown:
- delete: remove exactly one record of the group
- split: only for two records where one interval fully contains the other`,
	Example: `
  # List today's conflicts
  clockfix conflicts list

  # Check an exported file offline
  clockfix conflicts check -i ./conflicts.csv
`,
}

func init() {
	rootCmd.AddCommand(conflictsCmd)
}

// emitTable prints table to out, or writes it to path when path is set.
func emitTable(out io.Writer, table output.Table, path, format string) error {
	if strings.TrimSpace(path) == "" {
		return printTable(out, table)
	}

	if strings.TrimSpace(format) == "" {
		format = detectOutputFormat(path)
	}
	writer, err := output.WriterForFormat(format)
	if err != nil {
		return err
	}
	if err := writer.Write(path, table); err != nil {
		return err
	}
	fmt.Fprintf(out, "Report written. Rows: %d, Format: %s, File: %s\n", len(table.Rows), format, path)
	return nil
}

func printTable(out io.Writer, table output.Table) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(table.Headers, "\t"))
	for _, row := range table.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func detectOutputFormat(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "xlsx", "xlsm", "xls":
		return "excel"
	default:
		return "csv"
	}
}
