package cmd

import (
	"fmt"
	"os"
	"strings"

	"clockfix/importer"
	"clockfix/output"

	"github.com/spf13/cobra"
)

var (
	conflictsCheckInput       string
	conflictsCheckInputFormat string
	conflictsCheckOutput      string
	conflictsCheckFormat      string
)

var conflictsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Classify conflict groups from a CSV or Excel file",
	Long: `Read conflict groups from an exported file and show which strategies each group
would be offered. No API call is made.

Expected columns (case and spacing are ignored):
group, day, recordId, subjectId, label, categoryId, start, end, date

Rows without a group value are grouped by day.`,
	Example: `
  # Check a CSV export
  clockfix conflicts check -i ./conflicts.csv

  # Check an Excel export and write the classification to CSV
  clockfix conflicts check -i ./conflicts.xlsx -o ./classified.csv
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := conflictsCheckInputFormat
		if strings.TrimSpace(format) == "" {
			detected, err := importer.FormatFromPath(conflictsCheckInput)
			if err != nil {
				return err
			}
			format = detected
		}

		groups, err := importer.ReadConflictGroups(conflictsCheckInput, format)
		if err != nil {
			return fmt.Errorf("read %s: %w", conflictsCheckInput, err)
		}
		if len(groups) == 0 {
			fmt.Printf("No conflict groups found in %s.\n", conflictsCheckInput)
			return nil
		}
		return emitTable(os.Stdout, output.ConflictReport(groups), conflictsCheckOutput, conflictsCheckFormat)
	},
}

func init() {
	conflictsCmd.AddCommand(conflictsCheckCmd)

	conflictsCheckCmd.Flags().StringVarP(&conflictsCheckInput, "input", "i", "", "Input CSV or Excel file")
	conflictsCheckCmd.Flags().StringVar(&conflictsCheckInputFormat, "input-format", "", "Input format: csv|excel (optional, inferred from extension)")
	conflictsCheckCmd.Flags().StringVarP(&conflictsCheckOutput, "output", "o", "", "Write the report to this file instead of stdout")
	conflictsCheckCmd.Flags().StringVarP(&conflictsCheckFormat, "format", "f", "", "Output format: csv|excel (optional, inferred from output extension)")

	_ = conflictsCheckCmd.MarkFlagRequired("input")
}
