package reporters

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/crucial707/reporthub/cmd/cli/client"
	"github.com/crucial707/reporthub/cmd/cli/output"
	"github.com/spf13/cobra"
)

type reporter struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ScheduleID  *int   `json:"schedule_id"`
	Enabled     bool   `json:"enabled"`
	ChannelIDs  []int  `json:"channel_ids"`
}

type run struct {
	ID         string     `json:"id"`
	ReporterID int        `json:"reporter_id"`
	Trigger    string     `json:"trigger"`
	Status     string     `json:"status"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

func InitReporters(rootCmd *cobra.Command) {
	reportersCmd := &cobra.Command{
		Use:   "reporters",
		Short: "Manage reporters",
	}
	reportersCmd.AddCommand(listReportersCmd(), runReporterCmd())
	rootCmd.AddCommand(reportersCmd)
}

func listReportersCmd() *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reporters",
		RunE: func(cmd *cobra.Command, args []string) error {
			var page client.Page[reporter]
			if err := client.Do(http.MethodGet, fmt.Sprintf("/reporters?limit=%d&offset=%d", limit, offset), true, nil, &page); err != nil {
				return err
			}
			if output.WantJSON(cmd) {
				return output.RenderJSON(cmd.OutOrStdout(), page)
			}

			rows := make([][]interface{}, 0, len(page.Items))
			for _, r := range page.Items {
				schedule := "manual"
				if r.ScheduleID != nil {
					schedule = strconv.Itoa(*r.ScheduleID)
				}
				rows = append(rows, []interface{}{r.ID, r.Name, schedule, len(r.ChannelIDs), r.Enabled})
			}
			output.RenderTable(cmd.OutOrStdout(), []string{"ID", "Name", "Schedule", "Channels", "Enabled"}, rows)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of reporters")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of reporters to skip")
	output.AddJSONFlag(cmd)
	return cmd
}

// runReporterCmd triggers a manual run. It exits non-zero when the run failed.
func runReporterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [id]",
		Short: "Run a reporter now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := strconv.Atoi(args[0]); err != nil {
				return fmt.Errorf("invalid reporter id %q", args[0])
			}
			var out run
			if err := client.Do(http.MethodPost, "/reporters/"+args[0]+"/run", true, struct{}{}, &out); err != nil {
				return err
			}
			if output.WantJSON(cmd) {
				if err := output.RenderJSON(cmd.OutOrStdout(), out); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Run %s: %s\n", out.ID, out.Status)
			}
			if out.Status != "succeeded" {
				return fmt.Errorf("run %s failed: %s", out.ID, out.Error)
			}
			return nil
		},
	}
	output.AddJSONFlag(cmd)
	return cmd
}
