package cmd

import (
	"fmt"
	"os"
	"time"

	"clockfix/config"
	"clockfix/output"

	"github.com/spf13/cobra"
)

var (
	conflictsListFrom   string
	conflictsListTo     string
	conflictsListOutput string
	conflictsListFormat string
)

var conflictsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List conflict groups reported by the workforce API",
	Long: `Fetch the conflict groups of a day range and show each item with the offered
strategies and, where a split is possible, the outer/inner role.

Without --output the report is printed as a table.`,
	Example: `
  # Conflicts of today
  clockfix conflicts list

  # Conflicts of one week written to Excel
  clockfix conflicts list --from 2026-10-12 --to 2026-10-18 --output ./conflicts.xlsx
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		from, to, err := parseDayRange(conflictsListFrom, conflictsListTo, time.Now())
		if err != nil {
			return err
		}

		client, err := newAPIClient(cfg, "clockfix-cli/1.0")
		if err != nil {
			return err
		}

		ctx, cancel := apiContext(cfg)
		defer cancel()
		groups, err := client.ListConflicts(ctx, from, to)
		if err != nil {
			return err
		}

		if len(groups) == 0 {
			fmt.Printf("No conflicts between %s and %s.\n", from.Format("2006-01-02"), to.Format("2006-01-02"))
			return nil
		}
		return emitTable(os.Stdout, output.ConflictReport(groups), conflictsListOutput, conflictsListFormat)
	},
}

func init() {
	conflictsCmd.AddCommand(conflictsListCmd)

	conflictsListCmd.Flags().StringVar(&conflictsListFrom, "from", "", "First day, format YYYY-MM-DD (default: today)")
	conflictsListCmd.Flags().StringVar(&conflictsListTo, "to", "", "Last day, format YYYY-MM-DD (default: --from)")
	conflictsListCmd.Flags().StringVarP(&conflictsListOutput, "output", "o", "", "Write the report to this file instead of stdout")
	conflictsListCmd.Flags().StringVarP(&conflictsListFormat, "format", "f", "", "Output format: csv|excel (optional, inferred from output extension)")
}
