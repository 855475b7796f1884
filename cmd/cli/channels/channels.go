package channels

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/crucial707/reporthub/cmd/cli/client"
	"github.com/crucial707/reporthub/cmd/cli/output"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

type channel struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Type        string          `json:"type"`
	Settings    json.RawMessage `json:"settings"`
}

// target is the delivery URL shown in the table; secrets are never printed.
func (c channel) target() string {
	for _, key := range []string{"url", "webhook_url"} {
		if v := gjson.GetBytes(c.Settings, key); v.Exists() {
			return v.String()
		}
	}
	return ""
}

func InitChannels(rootCmd *cobra.Command) {
	channelsCmd := &cobra.Command{
		Use:   "channels",
		Short: "Manage notification channels",
	}
	channelsCmd.AddCommand(listChannelsCmd())
	rootCmd.AddCommand(channelsCmd)
}

func listChannelsCmd() *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notification channels",
		RunE: func(cmd *cobra.Command, args []string) error {
			var page client.Page[channel]
			if err := client.Do(http.MethodGet, fmt.Sprintf("/channels?limit=%d&offset=%d", limit, offset), true, nil, &page); err != nil {
				return err
			}
			if output.WantJSON(cmd) {
				return output.RenderJSON(cmd.OutOrStdout(), page)
			}

			rows := make([][]interface{}, 0, len(page.Items))
			for _, c := range page.Items {
				rows = append(rows, []interface{}{c.ID, c.Name, c.Type, c.target(), c.Description})
			}
			output.RenderTable(cmd.OutOrStdout(), []string{"ID", "Name", "Type", "Target", "Description"}, rows)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of channels")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of channels to skip")
	output.AddJSONFlag(cmd)
	return cmd
}
