// Package notify delivers reporter messages to notification channels.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/crucial707/reporthub/internal/metrics"
	"github.com/crucial707/reporthub/internal/models"
)

// Message is what a reporter run sends to each of its channels.
type Message struct {
	EventID     string    `json:"event_id"`
	RunID       string    `json:"run_id"`
	ReporterID  int       `json:"reporter_id"`
	Reporter    string    `json:"reporter"`
	Trigger     string    `json:"trigger"`
	Text        string    `json:"text"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// Result is the outcome of one delivery.
type Result struct {
	StatusCode int
	Duration   time.Duration
	Error      error
}

// OK reports whether the delivery reached the channel and got a 2xx.
func (r Result) OK() bool {
	return r.Error == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Err returns a descriptive error for a failed delivery, or nil.
func (r Result) Err() error {
	if r.Error != nil {
		return r.Error
	}
	if !r.OK() {
		return fmt.Errorf("unexpected status %d", r.StatusCode)
	}
	return nil
}

// Sender delivers a message to one channel of a given type.
type Sender interface {
	Send(ctx context.Context, ch models.NotificationChannel, msg Message) Result
}

// Dispatcher routes a message to the sender registered for the channel type.
type Dispatcher struct {
	senders map[string]Sender
	timeout time.Duration
}

// NewDispatcher registers the webhook and Slack senders on client.
// timeout bounds each delivery; zero means 10s.
func NewDispatcher(client *http.Client, timeout time.Duration) *Dispatcher {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		senders: map[string]Sender{
			models.ChannelWebhook: &WebhookSender{client: client},
			models.ChannelSlack:   &SlackSender{client: client},
		},
		timeout: timeout,
	}
}

// Register replaces the sender for a channel type.
func (d *Dispatcher) Register(channelType string, s Sender) {
	d.senders[channelType] = s
}

// Send delivers msg to ch and records delivery metrics.
func (d *Dispatcher) Send(ctx context.Context, ch models.NotificationChannel, msg Message) Result {
	s, ok := d.senders[ch.Type]
	if !ok {
		return Result{Error: fmt.Errorf("unsupported channel type %q", ch.Type)}
	}
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	res := s.Send(ctx, ch, msg)
	metrics.RecordDelivery(ch.Type, res.OK(), res.Duration.Seconds())
	return res
}
