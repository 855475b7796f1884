package cronexpr

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is.
var (
	ErrInvalidCronFormat     = errors.New("invalid cron format")
	ErrInvalidCronField      = errors.New("invalid cron field")
	ErrInvalidScheduleFields = errors.New("invalid schedule fields")
)

// Field names used in Error.Field.
const (
	FieldMinute     = "minute"
	FieldHour       = "hour"
	FieldDayOfMonth = "day_of_month"
	FieldMonth      = "month"
	FieldDayOfWeek  = "day_of_week"
	FieldDays       = "days"
)

// Error describes why an expression or a set of schedule fields was rejected.
type Error struct {
	Kind   error
	Field  string
	Value  string
	Reason string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("%v: %s %q: %s", e.Kind, e.Field, e.Value, e.Reason)
}

func (e *Error) Unwrap() error { return e.Kind }

func fieldError(kind error, field, value, reason string) *Error {
	return &Error{Kind: kind, Field: field, Value: value, Reason: reason}
}
