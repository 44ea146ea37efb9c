package classify

import (
	"time"

	"clockfix/internal/timeutil"
	"clockfix/worklog"
)

// Strategy is a resolution offered for a conflict group.
type Strategy string

const (
	DeleteOnly      Strategy = "delete"
	SplitContaining Strategy = "split"
)

// Relation describes how two intervals of the same day relate.
type Relation int

const (
	Invalid Relation = iota
	Disjoint
	Partial
	AContainsB
	BContainsA
)

func (r Relation) String() string {
	switch r {
	case Disjoint:
		return "disjoint"
	case Partial:
		return "partial"
	case AContainsB:
		return "a-contains-b"
	case BContainsA:
		return "b-contains-a"
	default:
		return "invalid"
	}
}

// Span is an item's parsed interval.
type Span struct {
	Start time.Time
	End   time.Time
}

// Containment is a validated outer/inner pair. OuterIndex and InnerIndex are
// positions in the compared pair (0 for a, 1 for b), which equal the positions
// in the group's items when built by Classify.
type Containment struct {
	Outer      worklog.Item
	Inner      worklog.Item
	OuterIndex int
	InnerIndex int
}

// Result lists the strategies offered for one group.
type Result struct {
	Strategies       []Strategy
	Split            *Containment
	Reason           string
	DeleteCandidates []worklog.Item
}

// Offers reports whether strategy is available.
func (r Result) Offers(strategy Strategy) bool {
	for _, s := range r.Strategies {
		if s == strategy {
			return true
		}
	}
	return false
}

// SpanOf parses an item's start and end. Clock-only values are anchored to the
// item's date. ok is false for unparseable or inverted intervals.
func SpanOf(item worklog.Item) (Span, bool) {
	start, ok := timeutil.ParseOnDay(item.Date, item.Start)
	if !ok {
		return Span{}, false
	}
	end, ok := timeutil.ParseOnDay(item.Date, item.End)
	if !ok {
		return Span{}, false
	}
	if end.Before(start) {
		return Span{}, false
	}
	return Span{Start: start, End: end}, true
}

// Relate compares a and b. A is tested as the container first, so identical
// intervals yield AContainsB.
func Relate(a, b worklog.Item) Relation {
	spanA, ok := SpanOf(a)
	if !ok {
		return Invalid
	}
	spanB, ok := SpanOf(b)
	if !ok {
		return Invalid
	}

	switch {
	case !spanA.Start.After(spanB.Start) && !spanA.End.Before(spanB.End):
		return AContainsB
	case !spanB.Start.After(spanA.Start) && !spanB.End.Before(spanA.End):
		return BContainsA
	case spanA.Start.Before(spanB.End) && spanB.Start.Before(spanA.End):
		return Partial
	default:
		return Disjoint
	}
}

// Containing returns the outer/inner assignment when one of a and b fully
// contains the other.
func Containing(a, b worklog.Item) (Containment, bool) {
	switch Relate(a, b) {
	case AContainsB:
		return Containment{Outer: a, Inner: b, OuterIndex: 0, InnerIndex: 1}, true
	case BContainsA:
		return Containment{Outer: b, Inner: a, OuterIndex: 1, InnerIndex: 0}, true
	default:
		return Containment{}, false
	}
}

// Classify determines the strategies for group. Delete is always offered.
// Split is only offered for two items where one contains the other and both
// carry record ids; partial overlaps are never decomposed. Items without a
// date are compared on the group's day.
func Classify(group worklog.ConflictGroup) Result {
	result := Result{
		Strategies:       []Strategy{DeleteOnly},
		DeleteCandidates: group.DeleteCandidates(),
	}

	if len(group.Items) != 2 {
		result.Reason = "split needs exactly two intervals"
		return result
	}

	a, b := onDay(group.Items[0], group.Day), onDay(group.Items[1], group.Day)
	relation := Relate(a, b)
	switch relation {
	case Invalid:
		result.Reason = "interval times are missing or invalid"
		return result
	case Partial, Disjoint:
		result.Reason = "intervals overlap partially; neither contains the other"
		return result
	}

	pair, _ := Containing(a, b)
	if !pair.Outer.RecordID.Valid || !pair.Inner.RecordID.Valid {
		result.Reason = "split needs record ids on both intervals"
		return result
	}

	result.Strategies = append(result.Strategies, SplitContaining)
	result.Split = &pair
	return result
}

func onDay(item worklog.Item, day string) worklog.Item {
	if item.Date == "" {
		item.Date = day
	}
	return item
}
