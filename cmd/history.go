package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"clockfix/config"
	"clockfix/output"
	"clockfix/storage"

	"github.com/spf13/cobra"
)

var (
	historyLimit  int
	historyDBPath string
	historyOutput string
	historyFormat string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the local resolution journal",
	Long: `List resolution attempts recorded in the local SQLite database, newest first.

Every delete or split is journaled as "attempted" before the API call and updated to
"succeeded" or "failed" with the API message afterwards.`,
	Example: `
  # Last 20 attempts
  clockfix history

  # Export the complete journal to Excel
  clockfix history --limit 0 --output ./history.xlsx
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		store, err := openJournal(cfg, historyDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		attempts, err := store.ListAttempts(historyLimit)
		if err != nil {
			return err
		}
		if len(attempts) == 0 {
			fmt.Println("No resolution attempts recorded.")
			return nil
		}
		return emitTable(os.Stdout, historyTable(attempts), historyOutput, historyFormat)
	},
}

func historyTable(attempts []storage.Attempt) output.Table {
	table := output.Table{
		Sheet:   "History",
		Headers: []string{"Started", "Action", "Day", "SubjectID", "RecordIDs", "Segments", "Status", "Message"},
	}
	for _, attempt := range attempts {
		ids := make([]string, 0, len(attempt.RecordIDs))
		for _, id := range attempt.RecordIDs {
			ids = append(ids, strconv.FormatInt(id, 10))
		}
		table.Rows = append(table.Rows, []string{
			attempt.StartedAt.Local().Format(time.DateTime),
			attempt.Action,
			attempt.Day,
			attempt.SubjectID,
			strings.Join(ids, ","),
			strconv.Itoa(attempt.Segments),
			attempt.Status,
			attempt.Message,
		})
	}
	return table
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of attempts (0 = all)")
	historyCmd.Flags().StringVar(&historyDBPath, "db", "", "Path to local SQLite database (default: storage.db from config)")
	historyCmd.Flags().StringVarP(&historyOutput, "output", "o", "", "Write the journal to this file instead of stdout")
	historyCmd.Flags().StringVarP(&historyFormat, "format", "f", "", "Output format: csv|excel (optional, inferred from output extension)")
}
