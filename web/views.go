package web

import (
	"fmt"
	"time"

	"clockfix/flow"
	"clockfix/internal/classify"
	"clockfix/internal/timeutil"
	"clockfix/storage"
	"clockfix/worklog"
)

type conflictsResponse struct {
	From   string      `json:"from"`
	To     string      `json:"to"`
	Groups []groupView `json:"groups"`
}

type groupView struct {
	Key        string              `json:"key"`
	Day        string              `json:"day"`
	Items      []worklog.Item      `json:"items"`
	Strategies []classify.Strategy `json:"strategies"`
	Reason     string              `json:"reason,omitempty"`
	Outer      *worklog.RecordID   `json:"outerId,omitempty"`
	Inner      *worklog.RecordID   `json:"innerId,omitempty"`
	State      string              `json:"state"`
	Stale      bool                `json:"stale"`
	Staged     *worklog.Item       `json:"staged,omitempty"`
	Preview    []segmentView       `json:"preview,omitempty"`
}

type segmentView struct {
	Part worklog.SegmentPart `json:"part"`
	worklog.Segment
}

type attemptView struct {
	ID         string  `json:"id"`
	Action     string  `json:"action"`
	Day        string  `json:"day"`
	SubjectID  string  `json:"subjectId"`
	RecordIDs  []int64 `json:"recordIds"`
	Segments   int     `json:"segments"`
	Status     string  `json:"status"`
	Message    string  `json:"message,omitempty"`
	StartedAt  string  `json:"startedAt"`
	FinishedAt string  `json:"finishedAt,omitempty"`
}

// GroupKeys returns URL-safe keys "<yyyy-mm-dd>.<n>", numbering groups per
// day from 1 in the given order. Unparseable days use "day<i>" instead.
func GroupKeys(groups []worklog.ConflictGroup) []string {
	keys := make([]string, len(groups))
	perDay := make(map[string]int)
	for i, group := range groups {
		prefix := fmt.Sprintf("day%d", i+1)
		if day, ok := timeutil.ParseInstant(group.Day); ok {
			prefix = day.Format("2006-01-02")
		}
		perDay[prefix]++
		keys[i] = fmt.Sprintf("%s.%d", prefix, perDay[prefix])
	}
	return keys
}

func buildGroupView(key string, controller *flow.Controller) groupView {
	group := controller.Group()
	result := controller.Classification()

	view := groupView{
		Key:        key,
		Day:        group.Day,
		Items:      group.Items,
		Strategies: result.Strategies,
		Reason:     result.Reason,
		State:      controller.State().String(),
		Stale:      controller.Stale(),
	}
	if result.Split != nil {
		outer := result.Split.Outer.RecordID
		inner := result.Split.Inner.RecordID
		view.Outer = &outer
		view.Inner = &inner
	}
	if staged, ok := controller.Staged(); ok {
		view.Staged = &staged
	}
	for _, seg := range controller.Preview() {
		view.Preview = append(view.Preview, segmentView{Part: seg.Part, Segment: seg})
	}
	return view
}

func buildAttemptView(attempt storage.Attempt) attemptView {
	view := attemptView{
		ID:        attempt.ID,
		Action:    attempt.Action,
		Day:       attempt.Day,
		SubjectID: attempt.SubjectID,
		RecordIDs: attempt.RecordIDs,
		Segments:  attempt.Segments,
		Status:    attempt.Status,
		Message:   attempt.Message,
		StartedAt: attempt.StartedAt.Format(time.RFC3339),
	}
	if !attempt.FinishedAt.IsZero() {
		view.FinishedAt = attempt.FinishedAt.Format(time.RFC3339)
	}
	if view.RecordIDs == nil {
		view.RecordIDs = []int64{}
	}
	return view
}
