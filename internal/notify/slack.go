package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/crucial707/reporthub/internal/models"
	"github.com/tidwall/gjson"
)

// SlackSender posts to a Slack incoming webhook (settings.webhook_url).
// Optional settings: channel, username, icon_emoji.
type SlackSender struct {
	client *http.Client
}

type slackPayload struct {
	Text      string `json:"text"`
	Channel   string `json:"channel,omitempty"`
	Username  string `json:"username,omitempty"`
	IconEmoji string `json:"icon_emoji,omitempty"`
}

func (s *SlackSender) Send(ctx context.Context, ch models.NotificationChannel, msg Message) Result {
	start := time.Now()
	settings := gjson.ParseBytes(ch.Settings)

	body, err := json.Marshal(slackPayload{
		Text:      fmt.Sprintf("*%s*: %s", msg.Reporter, msg.Text),
		Channel:   settings.Get("channel").String(),
		Username:  settings.Get("username").String(),
		IconEmoji: settings.Get("icon_emoji").String(),
	})
	if err != nil {
		return Result{Error: fmt.Errorf("marshal: %w", err), Duration: time.Since(start)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, settings.Get("webhook_url").String(), bytes.NewReader(body))
	if err != nil {
		return Result{Error: fmt.Errorf("create request: %w", err), Duration: time.Since(start)}
	}
	req.Header.Set("Content-Type", "application/json")
	return do(s.client, req, start)
}
