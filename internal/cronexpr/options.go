package cronexpr

import (
	"fmt"
	"strconv"
)

// Option is one choice in a minute or hour select.
type Option struct {
	Value string
	Label string
}

// Default schedule for new forms: 08:00 every day.
const (
	DefaultMinute = "0"
	DefaultHour   = "8"
	DefaultExpr   = "0 8 * * *"
)

var quarterHours = []int{0, 15, 30, 45}

// MinuteOptions returns the quarter-hour choices. allowEvery adds the
// every-minute choice, which is only offered in development.
func MinuteOptions(allowEvery bool) []Option {
	opts := make([]Option, 0, len(quarterHours)+1)
	if allowEvery {
		opts = append(opts, Option{Value: Every, Label: "Every minute"})
	}
	for _, m := range quarterHours {
		opts = append(opts, Option{Value: strconv.Itoa(m), Label: fmt.Sprintf(":%02d", m)})
	}
	return opts
}

// HourOptions returns "every hour" followed by 00:00 through 23:00.
func HourOptions() []Option {
	opts := make([]Option, 0, 25)
	opts = append(opts, Option{Value: Every, Label: "Every hour"})
	for h := 0; h < 24; h++ {
		opts = append(opts, Option{Value: strconv.Itoa(h), Label: fmt.Sprintf("%02d:00", h)})
	}
	return opts
}
