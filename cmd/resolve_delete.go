package cmd

import (
	"fmt"

	"clockfix/config"
	"clockfix/flow"
	"clockfix/resolve"
	"clockfix/worklog"

	"github.com/spf13/cobra"
)

var (
	resolveDeleteDay    string
	resolveDeleteRecord int64
)

var resolveDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete exactly one record of a conflict group",
	Long: `Fetch the conflicts of --day, find the group containing --record, and delete that
record after an interactive confirmation. The other records of the group are kept.`,
	Example: `
  # Delete record 42 (requires interactive confirmation)
  clockfix resolve delete --day 2026-10-18 --record 42
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		client, err := newAPIClient(cfg, "clockfix-cli/1.0")
		if err != nil {
			return err
		}
		group, err := fetchGroupForRecord(cfg, client, resolveDeleteDay, resolveDeleteRecord)
		if err != nil {
			return err
		}

		journal, err := openJournal(cfg, "")
		if err != nil {
			return err
		}
		defer journal.Close()

		controller := flow.New(group, resolve.NewService(client, journal))
		done, err := runDelete(apiContextFactory(cfg), controller, worklog.ID(resolveDeleteRecord), promptInput, promptOutput)
		if err != nil {
			return err
		}
		if !done {
			return fmt.Errorf("delete aborted: confirmation was not 'Y'")
		}

		fmt.Printf("Deleted worklog %d. Re-run \"clockfix conflicts list\" to refresh.\n", resolveDeleteRecord)
		return nil
	},
}

func init() {
	resolveCmd.AddCommand(resolveDeleteCmd)

	resolveDeleteCmd.Flags().StringVar(&resolveDeleteDay, "day", "", "Day of the conflict, format YYYY-MM-DD (default: today)")
	resolveDeleteCmd.Flags().Int64Var(&resolveDeleteRecord, "record", 0, "Record id to delete")

	_ = resolveDeleteCmd.MarkFlagRequired("record")
}
