package output

import (
	"strconv"
	"strings"

	"clockfix/internal/classify"
	"clockfix/worklog"
)

var conflictHeaders = []string{"Group", "Day", "RecordID", "SubjectID", "Label", "CategoryID", "Start", "End", "Strategies", "Role", "Note"}

var segmentHeaders = []string{"Part", "SubjectID", "RecordID", "Label", "CategoryID", "Date", "Start", "End", "Total"}

// ConflictReport renders one row per item. Groups are numbered from 1 in the
// order given.
func ConflictReport(groups []worklog.ConflictGroup) Table {
	table := Table{Sheet: "Conflicts", Headers: conflictHeaders}
	for i, group := range groups {
		result := classify.Classify(group)
		strategies := make([]string, 0, len(result.Strategies))
		for _, strategy := range result.Strategies {
			strategies = append(strategies, string(strategy))
		}

		for j, item := range group.Items {
			table.Rows = append(table.Rows, []string{
				strconv.Itoa(i + 1),
				group.Day,
				item.RecordID.String(),
				item.SubjectID,
				item.Label,
				strconv.FormatInt(item.CategoryID, 10),
				item.Start,
				item.End,
				strings.Join(strategies, "+"),
				role(result, j),
				result.Reason,
			})
		}
	}
	return table
}

// SplitPreview renders a decomposition in submit order.
func SplitPreview(segments []worklog.Segment) Table {
	table := Table{Sheet: "Split", Headers: segmentHeaders}
	for _, seg := range segments {
		table.Rows = append(table.Rows, []string{
			string(seg.Part),
			seg.SubjectID,
			seg.RecordID.String(),
			seg.Label,
			strconv.FormatInt(seg.CategoryID, 10),
			seg.Date,
			seg.Start,
			seg.End,
			seg.Total,
		})
	}
	return table
}

// role reports outer/inner by item position, so identical items are told apart.
func role(result classify.Result, index int) string {
	switch {
	case result.Split == nil:
		return ""
	case index == result.Split.OuterIndex:
		return "outer"
	case index == result.Split.InnerIndex:
		return "inner"
	default:
		return ""
	}
}
