package cronexpr

import "strings"

// Format renders f as "minute hour * * dow". A full day set is written as
// "*", anything else as a comma list in canonical order.
func Format(f Fields) (string, error) {
	minute, _, err := parseValue(ErrInvalidScheduleFields, FieldMinute, f.Minute, 59)
	if err != nil {
		return "", err
	}
	hour, _, err := parseValue(ErrInvalidScheduleFields, FieldHour, f.Hour, 23)
	if err != nil {
		return "", err
	}
	if f.Days.IsEmpty() {
		return "", fieldError(ErrInvalidScheduleFields, FieldDays, "", "select at least one day")
	}

	dow := Every
	if !f.Days.IsFull() {
		dow = f.Days.String()
	}
	return strings.Join([]string{minute, hour, Every, Every, dow}, " "), nil
}

// Build is Format for callers holding the individual form values.
func Build(minute, hour string, days DaySet) (string, error) {
	return Format(Fields{Minute: minute, Hour: hour, Days: days})
}
