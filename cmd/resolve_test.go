package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"clockfix/erpapi"
	"clockfix/flow"
	"clockfix/resolve"
	"clockfix/worklog"

	"github.com/google/go-cmp/cmp"
)

func TestRunDelete(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		input       string
		wantDone    bool
		wantDeleted []int64
		wantStale   bool
	}{
		{name: "confirmed", input: "Y\n", wantDone: true, wantDeleted: []int64{11}, wantStale: true},
		{name: "declined", input: "n\n", wantDone: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := &stubClient{}
			controller := flow.New(nestedGroup(), resolve.NewService(client, nil))
			var out bytes.Buffer

			done, err := runDelete(noDeadline, controller, worklog.ID(11), strings.NewReader(tt.input), &out)
			if err != nil {
				t.Fatalf("run delete: %v", err)
			}
			if done != tt.wantDone {
				t.Fatalf("expected done=%v, got %v", tt.wantDone, done)
			}
			if diff := cmp.Diff(tt.wantDeleted, client.deleted); diff != "" {
				t.Fatalf("unexpected deletes (-want +got):\n%s", diff)
			}
			if controller.State() != flow.Idle {
				t.Fatalf("expected idle state, got %s", controller.State())
			}
			if controller.Stale() != tt.wantStale {
				t.Fatalf("expected stale=%v", tt.wantStale)
			}
			if !strings.Contains(out.String(), `Delete 2026-10-18 10:00-12:00 "Training"`) {
				t.Fatalf("expected delete preview, got:\n%s", out.String())
			}
			if !strings.Contains(out.String(), `Keep   2026-10-18 08:00-16:00 "Shift"`) {
				t.Fatalf("expected kept record in preview, got:\n%s", out.String())
			}
		})
	}
}

func TestRunDeleteRejectsUnknownRecord(t *testing.T) {
	t.Parallel()

	client := &stubClient{}
	controller := flow.New(nestedGroup(), resolve.NewService(client, nil))

	_, err := runDelete(noDeadline, controller, worklog.ID(99), strings.NewReader("Y\n"), &bytes.Buffer{})
	if !errors.Is(err, flow.ErrNotCandidate) {
		t.Fatalf("expected ErrNotCandidate, got %v", err)
	}
	if controller.State() != flow.Idle {
		t.Fatalf("expected idle state after failure, got %s", controller.State())
	}
	if len(client.deleted) != 0 {
		t.Fatalf("expected no api call, got %v", client.deleted)
	}
}

func TestRunSplit(t *testing.T) {
	t.Parallel()

	client := &stubClient{}
	controller := flow.New(nestedGroup(), resolve.NewService(client, nil))
	var out bytes.Buffer

	done, err := runSplit(noDeadline, controller, strings.NewReader("Y\n"), &out)
	if err != nil {
		t.Fatalf("run split: %v", err)
	}
	if !done {
		t.Fatalf("expected split to be submitted")
	}
	if len(client.splits) != 1 {
		t.Fatalf("expected one split call, got %d", len(client.splits))
	}

	got := make([]string, 0, 3)
	for _, seg := range client.splits[0] {
		got = append(got, seg.RecordID.String()+" "+seg.Start+"-"+seg.End)
	}
	want := []string{"10 08:00-10:00", "11 10:00-12:00", "- 12:00-16:00"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected segments (-want +got):\n%s", diff)
	}
	if !strings.Contains(out.String(), "Split record 10 around record 11") {
		t.Fatalf("expected split header, got:\n%s", out.String())
	}
}

func TestRunSplitFailureKeepsGroup(t *testing.T) {
	t.Parallel()

	client := &stubClient{splitErr: errors.New("segment overlaps locked period")}
	controller := flow.New(nestedGroup(), resolve.NewService(client, nil))

	done, err := runSplit(noDeadline, controller, strings.NewReader("Y\n"), &bytes.Buffer{})
	if err == nil || done {
		t.Fatalf("expected split failure, got done=%v err=%v", done, err)
	}
	if controller.State() != flow.Idle || controller.Stale() {
		t.Fatalf("expected idle and not stale, got %s stale=%v", controller.State(), controller.Stale())
	}
}

func TestRunSplitNotOffered(t *testing.T) {
	t.Parallel()

	group := nestedGroup()
	group.Items[1].End = "17:00"
	controller := flow.New(group, resolve.NewService(&stubClient{}, nil))

	if _, err := runSplit(noDeadline, controller, strings.NewReader("Y\n"), &bytes.Buffer{}); !errors.Is(err, flow.ErrNotOffered) {
		t.Fatalf("expected ErrNotOffered, got %v", err)
	}
}

func TestRunDeleteStartsDeadlineAfterPrompt(t *testing.T) {
	t.Parallel()

	client := &stubClient{}
	controller := flow.New(nestedGroup(), resolve.NewService(client, nil))
	timeout := 20 * time.Millisecond
	newContext := func() (context.Context, context.CancelFunc) {
		return context.WithTimeout(context.Background(), timeout)
	}
	in := &slowReader{delay: 5 * timeout, data: []byte("Y\n")}

	done, err := runDelete(newContext, controller, worklog.ID(11), in, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("run delete after slow confirmation: %v", err)
	}
	if !done {
		t.Fatalf("expected delete to be submitted")
	}
	if diff := cmp.Diff([]int64{11}, client.deleted); diff != "" {
		t.Fatalf("unexpected deletes (-want +got):\n%s", diff)
	}
}

func TestRunSplitStartsDeadlineAfterPrompt(t *testing.T) {
	t.Parallel()

	client := &stubClient{}
	controller := flow.New(nestedGroup(), resolve.NewService(client, nil))
	timeout := 20 * time.Millisecond
	newContext := func() (context.Context, context.CancelFunc) {
		return context.WithTimeout(context.Background(), timeout)
	}
	in := &slowReader{delay: 5 * timeout, data: []byte("Y\n")}

	if _, err := runSplit(newContext, controller, in, &bytes.Buffer{}); err != nil {
		t.Fatalf("run split after slow confirmation: %v", err)
	}
	if len(client.splits) != 1 {
		t.Fatalf("expected one split call, got %d", len(client.splits))
	}
}

func noDeadline() (context.Context, context.CancelFunc) {
	return context.WithCancel(context.Background())
}

// slowReader returns its data after delay, like a user reading the preview.
type slowReader struct {
	delay time.Duration
	data  []byte
	done  bool
}

func (r *slowReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, io.EOF
	}
	time.Sleep(r.delay)
	r.done = true
	return copy(p, r.data), nil
}

func nestedGroup() worklog.ConflictGroup {
	return worklog.ConflictGroup{
		Day: "2026-10-18",
		Items: []worklog.Item{
			{RecordID: worklog.ID(10), SubjectID: "emp-1", Label: "Shift", CategoryID: 1, Start: "08:00", End: "16:00", Date: "2026-10-18"},
			{RecordID: worklog.ID(11), SubjectID: "emp-1", Label: "Training", CategoryID: 2, Start: "10:00", End: "12:00", Date: "2026-10-18"},
		},
	}
}

type stubClient struct {
	deleted  []int64
	splits   [][]worklog.Segment
	splitErr error
}

func (s *stubClient) ListConflicts(ctx context.Context, from, to time.Time) ([]worklog.ConflictGroup, error) {
	return []worklog.ConflictGroup{nestedGroup()}, nil
}

func (s *stubClient) DeleteWorklog(ctx context.Context, recordID int64) (erpapi.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return erpapi.Outcome{}, err
	}
	s.deleted = append(s.deleted, recordID)
	return erpapi.Outcome{Success: true}, nil
}

func (s *stubClient) SplitWorklog(ctx context.Context, segments []worklog.Segment) (erpapi.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return erpapi.Outcome{}, err
	}
	if s.splitErr != nil {
		return erpapi.Outcome{}, s.splitErr
	}
	s.splits = append(s.splits, segments)
	return erpapi.Outcome{Success: true}, nil
}
