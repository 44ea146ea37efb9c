package cmd

import (
	"fmt"

	"clockfix/config"
	"clockfix/flow"
	"clockfix/resolve"

	"github.com/spf13/cobra"
)

var (
	resolveSplitDay    string
	resolveSplitRecord int64
)

var resolveSplitCmd = &cobra.Command{
	Use:   "split",
	Short: "Split the containing record of a two-record conflict group",
	Long: `Fetch the conflicts of --day and find the group containing --record (either the
outer or the inner record). When one interval fully contains the other, the outer
record is replaced by up to three segments:
- before: outer start to inner start, keeps the outer record id
- during: the inner interval, keeps the inner record id
- after: inner end to outer end, created as a new record

The segments are previewed and only submitted after an interactive confirmation.`,
	Example: `
  # Split the group containing record 42
  clockfix resolve split --day 2026-10-18 --record 42
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
		group, err := fetchGroupForRecord(cfg, client, resolveSplitDay, resolveSplitRecord)
		if err != nil {
			return err
		}

		journal, err := openJournal(cfg, "")
		if err != nil {
			return err
		}
		defer journal.Close()

		controller := flow.New(group, resolve.NewService(client, journal))
		done, err := runSplit(apiContextFactory(cfg), controller, promptInput, promptOutput)
		if err != nil {
			return err
		}
		if !done {
			return fmt.Errorf("split aborted: confirmation was not 'Y'")
		}

		fmt.Println("Split submitted. Re-run \"clockfix conflicts list\" to refresh.")
		return nil
	},
}

func init() {
	resolveCmd.AddCommand(resolveSplitCmd)

	resolveSplitCmd.Flags().StringVar(&resolveSplitDay, "day", "", "Day of the conflict, format YYYY-MM-DD (default: today)")
	resolveSplitCmd.Flags().Int64Var(&resolveSplitRecord, "record", 0, "Record id of either interval in the group")

	_ = resolveSplitCmd.MarkFlagRequired("record")
}
