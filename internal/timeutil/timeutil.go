package timeutil

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Layouts accepted for full dates and date-times, tried in order.
var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2006-01-02",
	"2/1/2006",
}

// Layouts for clock-only values.
var clockLayouts = []string{
	"15:04",
	"15:04:05",
}

func StartOfDay(value time.Time) time.Time {
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, value.Location())
}

func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func MinutesFromMidnight(value time.Time) int {
	return value.Hour()*60 + value.Minute()
}

// ParseInstant parses a display date, time or date-time. The boolean is false
// when the value matches none of the supported layouts; the returned time must
// not be used in comparisons in that case.
func ParseInstant(display string) (time.Time, bool) {
	value := strings.TrimSpace(display)
	if value == "" {
		return time.Time{}, false
	}

	for _, layout := range dateTimeLayouts {
		if parsed, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return parsed, true
		}
	}
	if parsed, ok := parseClock(value); ok {
		return parsed, true
	}
	return time.Time{}, false
}

// ParseOnDay parses display like ParseInstant, but places clock-only values on
// the given day when day itself parses.
func ParseOnDay(day, display string) (time.Time, bool) {
	value := strings.TrimSpace(display)
	clock, isClock := parseClock(value)
	if !isClock {
		return ParseInstant(value)
	}

	base, ok := ParseInstant(day)
	if !ok {
		return clock, true
	}
	base = StartOfDay(base)
	return time.Date(base.Year(), base.Month(), base.Day(), clock.Hour(), clock.Minute(), clock.Second(), 0, base.Location()), true
}

func parseClock(value string) (time.Time, bool) {
	for _, layout := range clockLayouts {
		if parsed, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// FormatClock renders the wall clock of value as "HH:mm".
func FormatClock(value time.Time) string {
	return value.Format("15:04")
}

// FormatDuration renders b-a as "HH:mm". Hours are not wrapped at 24 and a
// negative span renders as "00:00".
func FormatDuration(a, b time.Time) string {
	return formatMinutes(int(b.Sub(a) / time.Minute))
}

// FormatHours renders a worked-hours value as "HH:mm". value may be nil, a
// string holding "H:mm" or decimal hours, or a number of decimal hours.
// Missing or unreadable values render as "--" for pricework and "00:00"
// otherwise.
func FormatHours(value any, isPricework bool) string {
	minutes, ok := hoursToMinutes(value)
	if !ok {
		if isPricework {
			return "--"
		}
		return "00:00"
	}
	return formatMinutes(minutes)
}

func hoursToMinutes(value any) (int, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case string:
		return parseHoursToken(v)
	case float64:
		return decimalHoursToMinutes(v)
	case float32:
		return decimalHoursToMinutes(float64(v))
	case int:
		return v * 60, true
	case int64:
		return int(v) * 60, true
	case int32:
		return int(v) * 60, true
	default:
		return 0, false
	}
}

func parseHoursToken(raw string) (int, bool) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return 0, false
	}

	if hoursPart, minutesPart, found := strings.Cut(cleaned, ":"); found {
		hours, err := strconv.Atoi(strings.TrimSpace(hoursPart))
		if err != nil || hours < 0 {
			return 0, false
		}
		minutes, err := strconv.Atoi(strings.TrimSpace(minutesPart))
		if err != nil || minutes < 0 || minutes > 59 {
			return 0, false
		}
		return hours*60 + minutes, true
	}

	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	hours, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return decimalHoursToMinutes(hours)
}

func decimalHoursToMinutes(hours float64) (int, bool) {
	if math.IsNaN(hours) || math.IsInf(hours, 0) {
		return 0, false
	}
	return int(math.Round(hours * 60)), true
}

func formatMinutes(total int) string {
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
