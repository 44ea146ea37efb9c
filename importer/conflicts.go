package importer

import (
	"fmt"
	"strconv"
	"strings"

	"clockfix/worklog"
)

// ReadConflictGroups reads path with the reader for format and groups rows by
// their "group" column, in order of first appearance. Rows without a group
// value are grouped by day.
func ReadConflictGroups(path, format string) ([]worklog.ConflictGroup, error) {
	reader, err := ReaderForFormat(format)
	if err != nil {
		return nil, err
	}
	records, err := reader.Read(path)
	if err != nil {
		return nil, err
	}
	return GroupRecords(records)
}

// GroupRecords maps raw rows to conflict groups.
func GroupRecords(records []Record) ([]worklog.ConflictGroup, error) {
	order := make([]string, 0)
	byKey := make(map[string]*worklog.ConflictGroup)

	for _, record := range records {
		if record.Blank() {
			continue
		}

		item, err := mapItem(record)
		if err != nil {
			return nil, err
		}

		day := record.Get("day", "conflict day")
		if day == "" {
			day = item.Date
		}
		if item.Date == "" {
			item.Date = day
		}

		key := record.Get("group", "conflict", "group id")
		if key == "" {
			key = "day:" + day
		}

		group, ok := byKey[key]
		if !ok {
			group = &worklog.ConflictGroup{Day: day}
			byKey[key] = group
			order = append(order, key)
		}
		if group.Day != day && day != "" {
			return nil, fmt.Errorf("row %d: group %q mixes days %q and %q", record.RowNumber, key, group.Day, day)
		}
		group.Items = append(group.Items, item)
	}

	out := make([]worklog.ConflictGroup, 0, len(order))
	for _, key := range order {
		out = append(out, *byKey[key])
	}
	return out, nil
}

func mapItem(record Record) (worklog.Item, error) {
	recordID, ok := worklog.ParseRecordID(record.Get("recordId", "record id", "id"))
	if !ok {
		return worklog.Item{}, fmt.Errorf("row %d: invalid record id %q", record.RowNumber, record.Get("recordId", "record id", "id"))
	}

	var categoryID int64
	if raw := record.Get("categoryId", "category id", "category"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return worklog.Item{}, fmt.Errorf("row %d: invalid category id %q: %w", record.RowNumber, raw, err)
		}
		categoryID = parsed
	}

	subject := record.Get("subjectId", "subject id", "user", "user id")
	if strings.TrimSpace(subject) == "" {
		return worklog.Item{}, fmt.Errorf("row %d: subject id is required", record.RowNumber)
	}

	return worklog.Item{
		RecordID:   recordID,
		SubjectID:  subject,
		Label:      record.Get("label", "name", "shift"),
		CategoryID: categoryID,
		Start:      record.Get("start"),
		End:        record.Get("end"),
		Date:       record.Get("date"),
	}, nil
}
