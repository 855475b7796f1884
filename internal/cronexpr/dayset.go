package cronexpr

import (
	"math/bits"
	"strings"
)

const fullWeek uint8 = 1<<7 - 1

// DaySet is an immutable set of weekdays. The zero value is the empty set.
// With and Without return new sets and never modify the receiver.
type DaySet struct {
	mask uint8
}

// NewDaySet returns a set holding the given days. Identifiers outside the
// canonical seven are ignored.
func NewDaySet(days ...Weekday) DaySet {
	var s DaySet
	for _, d := range days {
		s = s.With(d)
	}
	return s
}

// AllDays returns the set of all seven weekdays.
func AllDays() DaySet {
	return DaySet{mask: fullWeek}
}

// With returns a copy of s that also contains d.
func (s DaySet) With(d Weekday) DaySet {
	i := d.index()
	if i < 0 {
		return s
	}
	return DaySet{mask: s.mask | 1<<i}
}

// Without returns a copy of s that does not contain d.
func (s DaySet) Without(d Weekday) DaySet {
	i := d.index()
	if i < 0 {
		return s
	}
	return DaySet{mask: s.mask &^ (1 << i)}
}

func (s DaySet) Has(d Weekday) bool {
	i := d.index()
	return i >= 0 && s.mask&(1<<i) != 0
}

func (s DaySet) Len() int      { return bits.OnesCount8(s.mask) }
func (s DaySet) IsEmpty() bool { return s.mask == 0 }
func (s DaySet) IsFull() bool  { return s.mask == fullWeek }

func (s DaySet) Equal(o DaySet) bool { return s.mask == o.mask }

// Days returns the members in canonical order.
func (s DaySet) Days() []Weekday {
	out := make([]Weekday, 0, s.Len())
	for i, d := range weekdays {
		if s.mask&(1<<i) != 0 {
			out = append(out, d)
		}
	}
	return out
}

// Labels returns the English names of the members in canonical order.
func (s DaySet) Labels() []string {
	days := s.Days()
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = d.Label()
	}
	return out
}

// String renders the set as a comma-separated list of identifiers.
func (s DaySet) String() string {
	days := s.Days()
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = string(d)
	}
	return strings.Join(parts, ",")
}
