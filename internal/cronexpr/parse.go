// Package cronexpr converts between 5-field cron expressions and the
// structural fields the schedule form works with: a minute, an hour and a
// set of weekdays. Day-of-month and month are always "*".
package cronexpr

import (
	"fmt"
	"strconv"
	"strings"
)

// Every is the wildcard value for any field.
const Every = "*"

// Fields is the structural form of a schedule. Minute and Hour are either
// Every or a decimal value in range.
type Fields struct {
	Minute string
	Hour   string
	Days   DaySet
}

// Parse splits a 5-field cron expression into minute, hour and day set.
func Parse(expr string) (Fields, error) {
	parts := strings.Fields(expr)
	if len(parts) != 5 {
		return Fields{}, &Error{
			Kind:   ErrInvalidCronFormat,
			Value:  expr,
			Reason: fmt.Sprintf("expected 5 fields, got %d", len(parts)),
		}
	}

	minute, _, err := parseValue(ErrInvalidCronField, FieldMinute, parts[0], 59)
	if err != nil {
		return Fields{}, err
	}
	hour, _, err := parseValue(ErrInvalidCronField, FieldHour, parts[1], 23)
	if err != nil {
		return Fields{}, err
	}
	if parts[2] != Every {
		return Fields{}, fieldError(ErrInvalidCronField, FieldDayOfMonth, parts[2], "only * is supported")
	}
	if parts[3] != Every {
		return Fields{}, fieldError(ErrInvalidCronField, FieldMonth, parts[3], "only * is supported")
	}
	days, err := ParseDays(parts[4])
	if err != nil {
		return Fields{}, err
	}
	return Fields{Minute: minute, Hour: hour, Days: days}, nil
}

// ParseDays expands a day-of-week field. Accepted forms are "*", a single
// ascending range such as "MON-FRI", or a comma list such as "MON,WED".
// Mixing a range into a list is rejected.
func ParseDays(field string) (DaySet, error) {
	if field == Every {
		return AllDays(), nil
	}
	if field == "" {
		return DaySet{}, fieldError(ErrInvalidCronField, FieldDayOfWeek, field, "empty field")
	}

	hasRange := strings.Contains(field, "-")
	if hasRange && strings.Contains(field, ",") {
		return DaySet{}, fieldError(ErrInvalidCronField, FieldDayOfWeek, field, "combining a range with a list is not supported")
	}

	if hasRange {
		startID, endID, _ := strings.Cut(field, "-")
		start, ok := ParseWeekday(startID)
		if !ok {
			return DaySet{}, fieldError(ErrInvalidCronField, FieldDayOfWeek, field, fmt.Sprintf("unknown weekday %q", startID))
		}
		end, ok := ParseWeekday(endID)
		if !ok {
			return DaySet{}, fieldError(ErrInvalidCronField, FieldDayOfWeek, field, fmt.Sprintf("unknown weekday %q", endID))
		}
		if start.index() > end.index() {
			return DaySet{}, fieldError(ErrInvalidCronField, FieldDayOfWeek, field, "range must run from Monday towards Sunday")
		}
		var set DaySet
		for i := start.index(); i <= end.index(); i++ {
			set = set.With(weekdays[i])
		}
		return set, nil
	}

	var set DaySet
	for _, id := range strings.Split(field, ",") {
		d, ok := ParseWeekday(id)
		if !ok {
			return DaySet{}, fieldError(ErrInvalidCronField, FieldDayOfWeek, field, fmt.Sprintf("unknown weekday %q", id))
		}
		set = set.With(d)
	}
	return set, nil
}

// parseValue validates a minute or hour value and returns its normalized
// string form and numeric value (-1 for Every).
func parseValue(kind error, field, raw string, max int) (string, int, error) {
	if raw == Every {
		return Every, -1, nil
	}
	if raw == "" || strings.TrimLeft(raw, "0123456789") != "" {
		return "", 0, fieldError(kind, field, raw, "must be * or a number")
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n > max {
		return "", 0, fieldError(kind, field, raw, fmt.Sprintf("must be between 0 and %d", max))
	}
	return strconv.Itoa(n), n, nil
}
