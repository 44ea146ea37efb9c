package worklog

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// RecordID is the optional identifier of a remote worklog record. Synthetic
// entries and newly created split remainders carry no id.
type RecordID struct {
	Valid bool
	Value int64
}

// ID returns a present record id.
func ID(value int64) RecordID {
	return RecordID{Valid: true, Value: value}
}

func (id RecordID) String() string {
	if !id.Valid {
		return "-"
	}
	return strconv.FormatInt(id.Value, 10)
}

func (id RecordID) MarshalJSON() ([]byte, error) {
	if !id.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(id.Value, 10)), nil
}

func (id *RecordID) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	switch text {
	case "", "null", `""`:
		*id = RecordID{}
		return nil
	}

	var number int64
	if err := json.Unmarshal(data, &number); err == nil {
		*id = RecordID{Valid: true, Value: number}
		return nil
	}

	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		parsed, ok := ParseRecordID(asString)
		if !ok && strings.TrimSpace(asString) != "" {
			return fmt.Errorf("parse record id string %q", asString)
		}
		*id = parsed
		return nil
	}

	return fmt.Errorf("unsupported record id value %q", text)
}

// ParseRecordID reads a decimal id. Empty input yields an absent id and true.
func ParseRecordID(raw string) (RecordID, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return RecordID{}, true
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return RecordID{}, false
	}
	return ID(parsed), true
}

// Item is one shift/timesheet interval of a subject on a single day.
type Item struct {
	RecordID   RecordID `json:"recordId"`
	SubjectID  string   `json:"subjectId"`
	Label      string   `json:"label"`
	CategoryID int64    `json:"categoryId"`
	Start      string   `json:"start"`
	End        string   `json:"end"`
	Date       string   `json:"date"`
}

// ConflictGroup holds the overlapping items of one subject on one day, as
// grouped by the remote API.
type ConflictGroup struct {
	Day   string `json:"day"`
	Items []Item `json:"items"`
}

// Has reports whether an item of the group carries id.
func (g ConflictGroup) Has(id RecordID) bool {
	if !id.Valid {
		return false
	}
	for _, item := range g.Items {
		if item.RecordID == id {
			return true
		}
	}
	return false
}

// Without returns a copy of the group minus the item carrying id.
func (g ConflictGroup) Without(id RecordID) ConflictGroup {
	out := ConflictGroup{Day: g.Day, Items: make([]Item, 0, len(g.Items))}
	for _, item := range g.Items {
		if id.Valid && item.RecordID == id {
			continue
		}
		out.Items = append(out.Items, item)
	}
	return out
}

// DeleteCandidates returns the items that can be targeted by a delete.
func (g ConflictGroup) DeleteCandidates() []Item {
	out := make([]Item, 0, len(g.Items))
	for _, item := range g.Items {
		if item.RecordID.Valid {
			out = append(out, item)
		}
	}
	return out
}

// SegmentPart names the position of a split segment relative to the inner
// interval.
type SegmentPart string

const (
	PartBefore SegmentPart = "before"
	PartDuring SegmentPart = "during"
	PartAfter  SegmentPart = "after"
)

// Segment is one piece of a split decomposition. Segments without a record id
// are created by the remote API, the others update the referenced record.
type Segment struct {
	Part       SegmentPart `json:"-"`
	SubjectID  string      `json:"subjectId"`
	RecordID   RecordID    `json:"recordId"`
	Label      string      `json:"label"`
	CategoryID int64       `json:"categoryId"`
	Date       string      `json:"date"`
	Start      string      `json:"start"`
	End        string      `json:"end"`
	Total      string      `json:"total"`
}
