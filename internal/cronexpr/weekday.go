package cronexpr

// Weekday is a day-of-week identifier as written in a cron expression.
type Weekday string

const (
	Monday    Weekday = "MON"
	Tuesday   Weekday = "TUE"
	Wednesday Weekday = "WED"
	Thursday  Weekday = "THU"
	Friday    Weekday = "FRI"
	Saturday  Weekday = "SAT"
	Sunday    Weekday = "SUN"
)

// canonical order: ranges and serialized lists always run Monday to Sunday.
var weekdays = [7]Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var weekdayLabels = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Weekdays returns every weekday in canonical order.
func Weekdays() []Weekday {
	out := make([]Weekday, len(weekdays))
	copy(out, weekdays[:])
	return out
}

// ParseWeekday matches s against the weekday identifiers, ignoring ASCII
// case, and returns the canonical upper-case form.
func ParseWeekday(s string) (Weekday, bool) {
	b := []byte(s)
	for i, c := range b {
		if 'a' <= c && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	d := Weekday(b)
	if d.index() < 0 {
		return "", false
	}
	return d, true
}

// Label returns the English day name, or the raw identifier if unknown.
func (d Weekday) Label() string {
	i := d.index()
	if i < 0 {
		return string(d)
	}
	return weekdayLabels[i]
}

func (d Weekday) index() int {
	for i, w := range weekdays {
		if w == d {
			return i
		}
	}
	return -1
}
