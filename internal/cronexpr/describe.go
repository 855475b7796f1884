package cronexpr

import (
	"fmt"
	"strings"
)

// Describe renders a sentence such as "Runs at 08:00 on Monday, Wednesday in
// Europe/Paris". The timezone clause is omitted when timezone is empty.
func Describe(f Fields, timezone string) (string, error) {
	_, minute, err := parseValue(ErrInvalidScheduleFields, FieldMinute, f.Minute, 59)
	if err != nil {
		return "", err
	}
	_, hour, err := parseValue(ErrInvalidScheduleFields, FieldHour, f.Hour, 23)
	if err != nil {
		return "", err
	}
	if f.Days.IsEmpty() {
		return "", fieldError(ErrInvalidScheduleFields, FieldDays, "", "select at least one day")
	}

	var b strings.Builder
	b.WriteString("Runs ")
	switch {
	case minute < 0 && hour < 0:
		b.WriteString("every minute")
	case minute < 0:
		fmt.Fprintf(&b, "every minute from %02d:00 to %02d:59", hour, hour)
	case hour < 0:
		fmt.Fprintf(&b, "every hour at :%02d", minute)
	default:
		fmt.Fprintf(&b, "at %02d:%02d", hour, minute)
	}

	if f.Days.IsFull() {
		b.WriteString(" every day")
	} else {
		b.WriteString(" on ")
		b.WriteString(strings.Join(f.Days.Labels(), ", "))
	}

	if timezone != "" {
		b.WriteString(" in ")
		b.WriteString(timezone)
	}
	return b.String(), nil
}

// DescribeExpr parses expr and describes it.
func DescribeExpr(expr, timezone string) (string, error) {
	f, err := Parse(expr)
	if err != nil {
		return "", err
	}
	return Describe(f, timezone)
}
