package classify

import (
	"testing"

	"clockfix/worklog"
)

func item(id int64, start, end string) worklog.Item {
	it := worklog.Item{SubjectID: "u1", Label: "Shift", CategoryID: 3, Start: start, End: end, Date: "18/10/2026"}
	if id > 0 {
		it.RecordID = worklog.ID(id)
	}
	return it
}

func TestRelate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a    worklog.Item
		b    worklog.Item
		want Relation
	}{
		{name: "a contains b", a: item(1, "08:00", "17:00"), b: item(2, "12:00", "13:00"), want: AContainsB},
		{name: "b contains a", a: item(1, "12:00", "13:00"), b: item(2, "08:00", "17:00"), want: BContainsA},
		{name: "identical prefers a", a: item(1, "08:00", "10:00"), b: item(2, "08:00", "10:00"), want: AContainsB},
		{name: "shared start", a: item(1, "08:00", "17:00"), b: item(2, "08:00", "10:00"), want: AContainsB},
		{name: "shared end", a: item(1, "15:00", "17:00"), b: item(2, "08:00", "17:00"), want: BContainsA},
		{name: "partial", a: item(1, "08:00", "12:00"), b: item(2, "10:00", "14:00"), want: Partial},
		{name: "disjoint", a: item(1, "08:00", "09:00"), b: item(2, "10:00", "11:00"), want: Disjoint},
		{name: "invalid start", a: item(1, "eight", "12:00"), b: item(2, "10:00", "11:00"), want: Invalid},
		{name: "inverted", a: item(1, "12:00", "08:00"), b: item(2, "10:00", "11:00"), want: Invalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Relate(tt.a, tt.b); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestClassify_ContainmentOffersSplit(t *testing.T) {
	t.Parallel()

	outer := item(10, "08:00", "17:00")
	inner := item(11, "12:00", "13:00")

	for _, order := range [][]worklog.Item{{outer, inner}, {inner, outer}} {
		result := Classify(worklog.ConflictGroup{Day: "18/10/2026", Items: order})
		if !result.Offers(DeleteOnly) || !result.Offers(SplitContaining) {
			t.Fatalf("expected delete and split, got %v", result.Strategies)
		}
		if result.Split == nil {
			t.Fatalf("expected containment pair")
		}
		if result.Split.Outer.RecordID != outer.RecordID || result.Split.Inner.RecordID != inner.RecordID {
			t.Fatalf("unexpected outer/inner: %+v", result.Split)
		}
	}
}

func TestClassify_PartialOverlapOnlyDelete(t *testing.T) {
	t.Parallel()

	result := Classify(worklog.ConflictGroup{Items: []worklog.Item{
		item(1, "08:00", "12:00"),
		item(2, "10:00", "14:00"),
	}})

	if len(result.Strategies) != 1 || result.Strategies[0] != DeleteOnly {
		t.Fatalf("expected only delete, got %v", result.Strategies)
	}
	if result.Split != nil {
		t.Fatalf("split must not be offered for partial overlap")
	}
	if result.Reason == "" {
		t.Fatalf("expected a reason")
	}
}

func TestClassify_DeleteOnlyFallbacks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		items []worklog.Item
	}{
		{name: "invalid times", items: []worklog.Item{item(1, "08:00", "17:00"), item(2, "", "13:00")}},
		{name: "outer without id", items: []worklog.Item{item(0, "08:00", "17:00"), item(2, "12:00", "13:00")}},
		{name: "inner without id", items: []worklog.Item{item(1, "08:00", "17:00"), item(0, "12:00", "13:00")}},
		{name: "three items", items: []worklog.Item{item(1, "08:00", "17:00"), item(2, "12:00", "13:00"), item(3, "14:00", "15:00")}},
		{name: "single item", items: []worklog.Item{item(1, "08:00", "17:00")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Classify(worklog.ConflictGroup{Items: tt.items})
			if !result.Offers(DeleteOnly) {
				t.Fatalf("delete must always be offered")
			}
			if result.Offers(SplitContaining) || result.Split != nil {
				t.Fatalf("split must not be offered")
			}
		})
	}
}

func TestClassify_DeleteCandidatesSkipMissingIDs(t *testing.T) {
	t.Parallel()

	result := Classify(worklog.ConflictGroup{Items: []worklog.Item{
		item(1, "08:00", "12:00"),
		item(0, "10:00", "14:00"),
	}})
	if len(result.DeleteCandidates) != 1 || result.DeleteCandidates[0].RecordID != worklog.ID(1) {
		t.Fatalf("unexpected candidates: %+v", result.DeleteCandidates)
	}
}

func TestContaining_FullDateTimes(t *testing.T) {
	t.Parallel()

	a := worklog.Item{RecordID: worklog.ID(1), Start: "2026-10-18T08:00:00", End: "2026-10-18T17:00:00"}
	b := worklog.Item{RecordID: worklog.ID(2), Start: "2026-10-18T09:00:00", End: "2026-10-18T10:00:00"}

	pair, ok := Containing(b, a)
	if !ok {
		t.Fatalf("expected containment")
	}
	if pair.Outer.RecordID != worklog.ID(1) {
		t.Fatalf("expected a as outer, got %+v", pair.Outer)
	}
}

func TestClassify_FillsMissingDateFromGroupDay(t *testing.T) {
	t.Parallel()

	outer := item(1, "08:00", "17:00")
	inner := item(2, "12:00", "13:00")
	inner.Date = ""

	result := Classify(worklog.ConflictGroup{Day: "18/10/2026", Items: []worklog.Item{outer, inner}})
	if !result.Offers(SplitContaining) || result.Split == nil {
		t.Fatalf("expected split for dateless inner item, reason %q", result.Reason)
	}
	if result.Split.Inner.RecordID != worklog.ID(2) || result.Split.Inner.Date != "18/10/2026" {
		t.Fatalf("unexpected inner: %+v", result.Split.Inner)
	}
}

func TestClassify_IndexesIdenticalItems(t *testing.T) {
	t.Parallel()

	a := item(7, "08:00", "12:00")
	result := Classify(worklog.ConflictGroup{Day: "18/10/2026", Items: []worklog.Item{a, a}})
	if result.Split == nil {
		t.Fatalf("expected containment for identical intervals")
	}
	if result.Split.OuterIndex != 0 || result.Split.InnerIndex != 1 {
		t.Fatalf("unexpected indices outer=%d inner=%d", result.Split.OuterIndex, result.Split.InnerIndex)
	}

	swapped := Classify(worklog.ConflictGroup{Day: "18/10/2026", Items: []worklog.Item{item(2, "12:00", "13:00"), item(1, "08:00", "17:00")}})
	if swapped.Split == nil || swapped.Split.OuterIndex != 1 || swapped.Split.InnerIndex != 0 {
		t.Fatalf("unexpected containment for b-contains-a: %+v", swapped.Split)
	}
}
