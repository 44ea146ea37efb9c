package cmd

import (
	"context"
	"fmt"
	"io"

	"clockfix/flow"
	"clockfix/output"
	"clockfix/worklog"

	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve one conflict group by delete or split.",
	Long: `Resolve a conflict group identified by a day and one of its record ids.

Every resolution shows a preview first and is only sent to the API after typing "Y".
Attempts and outcomes are journaled in the local SQLite database (see "clockfix history").`,
	Example: `
  # Delete record 42 from its conflict group on 2026-10-18
  clockfix resolve delete --day 2026-10-18 --record 42

  # Split the group containing record 42 around its inner interval
  clockfix resolve split --day 2026-10-18 --record 42
`,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

// contextFactory starts the deadline of one API call.
type contextFactory func() (context.Context, context.CancelFunc)

// runDelete drives the controller from Idle through the delete preview to
// Confirm. It returns false when the user declined.
func runDelete(newContext contextFactory, controller *flow.Controller, id worklog.RecordID, in io.Reader, out io.Writer) (bool, error) {
	if err := controller.OpenMenu(); err != nil {
		return false, err
	}
	if err := controller.StageDelete(id); err != nil {
		controller.Cancel()
		return false, err
	}

	staged, _ := controller.Staged()
	fmt.Fprintf(out, "Delete %s %s-%s %q (record %s, subject %s)\n", staged.Date, staged.Start, staged.End, staged.Label, staged.RecordID, staged.SubjectID)
	for _, item := range controller.Group().Without(id).Items {
		fmt.Fprintf(out, "Keep   %s %s-%s %q (record %s)\n", item.Date, item.Start, item.End, item.Label, item.RecordID)
	}

	return confirmStaged(newContext, controller, in, out, fmt.Sprintf("Delete worklog %s?", id))
}

// runSplit drives the controller from Idle through the split preview to
// Confirm. It returns false when the user declined.
func runSplit(newContext contextFactory, controller *flow.Controller, in io.Reader, out io.Writer) (bool, error) {
	if err := controller.StageSplit(); err != nil {
		return false, err
	}

	split := controller.Classification().Split
	fmt.Fprintf(out, "Split record %s around record %s:\n", split.Outer.RecordID, split.Inner.RecordID)
	if err := printTable(out, output.SplitPreview(controller.Preview())); err != nil {
		controller.Cancel()
		return false, err
	}

	return confirmStaged(newContext, controller, in, out, "Submit this split?")
}

// confirmStaged waits for the prompt before starting the API deadline.
func confirmStaged(newContext contextFactory, controller *flow.Controller, in io.Reader, out io.Writer, question string) (bool, error) {
	confirmed, err := confirmPrompt(in, out, question)
	if err != nil {
		controller.Cancel()
		return false, err
	}
	if !confirmed {
		controller.Cancel()
		return false, nil
	}
	ctx, cancel := newContext()
	defer cancel()
	if err := controller.Confirm(ctx); err != nil {
		return false, err
	}
	return true, nil
}
