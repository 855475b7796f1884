// Package cron holds the local cron commands; they never call the API.
package cron

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/crucial707/reporthub/cmd/cli/output"
	"github.com/crucial707/reporthub/internal/cronexpr"
	"github.com/spf13/cobra"
)

const nextRuns = 5

func InitCron(rootCmd *cobra.Command) {
	cronCmd := &cobra.Command{
		Use:   "cron",
		Short: "Build, parse and describe cron expressions locally",
	}
	cronCmd.AddCommand(describeCmd(), parseCmd())
	rootCmd.AddCommand(cronCmd)
}

// result is what both commands print.
type result struct {
	Cron        string      `json:"cron"`
	Minute      string      `json:"minute"`
	Hour        string      `json:"hour"`
	Days        []string    `json:"days"`
	Timezone    string      `json:"timezone,omitempty"`
	Description string      `json:"description"`
	NextRuns    []time.Time `json:"next_runs,omitempty"`
}

func newResult(expr, timezone string, now time.Time) (result, error) {
	f, err := cronexpr.Parse(expr)
	if err != nil {
		return result{}, err
	}
	canonical, err := cronexpr.Format(f)
	if err != nil {
		return result{}, err
	}
	desc, err := cronexpr.Describe(f, timezone)
	if err != nil {
		return result{}, err
	}
	res := result{Cron: canonical, Minute: f.Minute, Hour: f.Hour, Timezone: timezone, Description: desc}
	for _, d := range f.Days.Days() {
		res.Days = append(res.Days, string(d))
	}
	if res.NextRuns, err = cronexpr.NextRuns(canonical, timezone, now, nextRuns); err != nil {
		return result{}, err
	}
	return res, nil
}

func render(cmd *cobra.Command, res result) error {
	if output.WantJSON(cmd) {
		return output.RenderJSON(cmd.OutOrStdout(), res)
	}
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, res.Description)
	rows := [][]interface{}{
		{"cron", res.Cron},
		{"minute", res.Minute},
		{"hour", res.Hour},
		{"days", strings.Join(res.Days, ",")},
	}
	for i, t := range res.NextRuns {
		rows = append(rows, []interface{}{fmt.Sprintf("next %d", i+1), t.Format("Mon 2006-01-02 15:04 MST")})
	}
	output.RenderTable(w, []string{"Field", "Value"}, rows)
	return nil
}

// describeCmd builds an expression from --minute/--hour/--days and describes it.
func describeCmd() *cobra.Command {
	var minute, hour, timezone string
	var days []string
	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Build a cron expression from builder fields and describe it",
		Example: `  rh cron describe --hour 8 --minute 0 --days MON,WED
  rh cron describe --hour '*' --minute 30 --timezone Europe/Paris`,
		RunE: func(cmd *cobra.Command, args []string) error {
			set := cronexpr.AllDays()
			if len(days) > 0 {
				set = cronexpr.NewDaySet()
				for _, v := range days {
					d, ok := cronexpr.ParseWeekday(strings.TrimSpace(v))
					if !ok {
						return fmt.Errorf("unknown day %q", v)
					}
					set = set.With(d)
				}
			}
			expr, err := cronexpr.Build(minute, hour, set)
			if err != nil {
				return err
			}
			res, err := newResult(expr, timezone, time.Now())
			if err != nil {
				return err
			}
			return render(cmd, res)
		},
	}
	cmd.Flags().StringVar(&minute, "minute", cronexpr.DefaultMinute, "Minute (0-59 or *)")
	cmd.Flags().StringVar(&hour, "hour", cronexpr.DefaultHour, "Hour (0-23 or *)")
	cmd.Flags().StringSliceVar(&days, "days", nil, "Weekdays, e.g. MON,WED (default every day)")
	cmd.Flags().StringVar(&timezone, "timezone", "", "IANA timezone for the description and next runs")
	output.AddJSONFlag(cmd)
	return cmd
}

// parseCmd splits an expression into builder fields.
func parseCmd() *cobra.Command {
	var timezone string
	cmd := &cobra.Command{
		Use:   "parse [expression]",
		Short: "Parse a 5-field cron expression into minute, hour and days",
		Example: `  rh cron parse "0 8 * * MON-FRI"`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("a cron expression is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Allow the expression unquoted: rh cron parse 0 8 '*' '*' MON
			res, err := newResult(strings.Join(args, " "), timezone, time.Now())
			if err != nil {
				return err
			}
			return render(cmd, res)
		},
	}
	cmd.Flags().StringVar(&timezone, "timezone", "", "IANA timezone for the description and next runs")
	output.AddJSONFlag(cmd)
	return cmd
}
