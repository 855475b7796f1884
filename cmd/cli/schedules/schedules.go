package schedules

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/crucial707/reporthub/cmd/cli/client"
	"github.com/crucial707/reporthub/cmd/cli/output"
	"github.com/spf13/cobra"
)

// schedule mirrors the API's schedule view.
type schedule struct {
	ID          int         `json:"id"`
	Name        string      `json:"name"`
	Cron        string      `json:"cron"`
	Timezone    string      `json:"timezone"`
	Description string      `json:"description"`
	NextRuns    []time.Time `json:"next_runs"`
}

// ==========================
// Init Schedules
// ==========================
func InitSchedules(rootCmd *cobra.Command) {
	schedulesCmd := &cobra.Command{
		Use:   "schedules",
		Short: "Manage schedules",
	}
	schedulesCmd.AddCommand(
		listSchedulesCmd(),
		createScheduleCmd(),
		deleteScheduleCmd(),
	)
	rootCmd.AddCommand(schedulesCmd)
}

// ==========================
// LIST
// ==========================
func listSchedulesCmd() *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List schedules",
		RunE: func(cmd *cobra.Command, args []string) error {
			var page client.Page[schedule]
			if err := client.Do(http.MethodGet, fmt.Sprintf("/schedules?limit=%d&offset=%d", limit, offset), true, nil, &page); err != nil {
				return err
			}
			if output.WantJSON(cmd) {
				return output.RenderJSON(cmd.OutOrStdout(), page)
			}

			rows := make([][]interface{}, 0, len(page.Items))
			for _, s := range page.Items {
				next := ""
				if len(s.NextRuns) > 0 {
					next = s.NextRuns[0].Format("2006-01-02 15:04 MST")
				}
				rows = append(rows, []interface{}{s.ID, s.Name, s.Cron, s.Timezone, s.Description, next})
			}
			output.RenderTable(cmd.OutOrStdout(), []string{"ID", "Name", "Cron", "Timezone", "When", "Next run"}, rows)
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d schedules\n", len(page.Items), page.Total)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of schedules")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of schedules to skip")
	output.AddJSONFlag(cmd)
	return cmd
}

// ==========================
// CREATE
// ==========================
func createScheduleCmd() *cobra.Command {
	var name, expr, minute, hour, timezone string
	var days []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a schedule",
		Long: `Create a schedule from a cron expression or from builder fields.

Examples:
  rh schedules create --name "Morning digest" --cron "0 8 * * MON-FRI" --timezone Europe/Paris
  rh schedules create --name Standup --hour 9 --minute 30 --days MON,WED,FRI`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(name) == "" {
				return errors.New("--name is required")
			}
			payload := map[string]interface{}{"name": name, "timezone": timezone}
			if expr != "" {
				payload["cron"] = expr
			} else {
				if len(days) == 0 {
					days = []string{"MON", "TUE", "WED", "THU", "FRI", "SAT", "SUN"}
				}
				payload["minute"], payload["hour"], payload["days"] = minute, hour, days
			}

			var created schedule
			if err := client.Do(http.MethodPost, "/schedules", true, payload, &created); err != nil {
				return err
			}
			if output.WantJSON(cmd) {
				return output.RenderJSON(cmd.OutOrStdout(), created)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created schedule %d: %s (%s)\n", created.ID, created.Description, created.Cron)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Schedule name")
	cmd.Flags().StringVar(&expr, "cron", "", "5-field cron expression (overrides the builder flags)")
	cmd.Flags().StringVar(&minute, "minute", "0", "Minute (0-59 or *)")
	cmd.Flags().StringVar(&hour, "hour", "8", "Hour (0-23 or *)")
	cmd.Flags().StringSliceVar(&days, "days", nil, "Weekdays, e.g. MON,WED (default every day)")
	cmd.Flags().StringVar(&timezone, "timezone", "UTC", "IANA timezone")
	output.AddJSONFlag(cmd)
	return cmd
}

// ==========================
// DELETE
// ==========================
func deleteScheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Do(http.MethodDelete, "/schedules/"+args[0], true, nil, nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schedule %s deleted\n", args[0])
			return nil
		},
	}
}
