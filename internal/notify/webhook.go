package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/crucial707/reporthub/internal/models"
	"github.com/tidwall/gjson"
)

// Webhook headers.
const (
	HeaderEventID   = "X-Reporthub-Event-ID"
	HeaderSignature = "X-Reporthub-Signature"
)

// WebhookSender POSTs the message as JSON to settings.url. When
// settings.secret is set the body is signed with HMAC-SHA256.
type WebhookSender struct {
	client *http.Client
}

func (s *WebhookSender) Send(ctx context.Context, ch models.NotificationChannel, msg Message) Result {
	start := time.Now()
	settings := gjson.ParseBytes(ch.Settings)

	body, err := json.Marshal(msg)
	if err != nil {
		return Result{Error: fmt.Errorf("marshal: %w", err), Duration: time.Since(start)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, settings.Get("url").String(), bytes.NewReader(body))
	if err != nil {
		return Result{Error: fmt.Errorf("create request: %w", err), Duration: time.Since(start)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderEventID, msg.EventID)
	settings.Get("headers").ForEach(func(k, v gjson.Result) bool {
		req.Header.Set(k.String(), v.String())
		return true
	})
	if secret := settings.Get("secret").String(); secret != "" {
		req.Header.Set(HeaderSignature, "sha256="+computeSignature(secret, body))
	}

	return do(s.client, req, start)
}

func computeSignature(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature lets webhook receivers check the X-Reporthub-Signature header.
func VerifySignature(secret string, body []byte, header string) bool {
	expected := "sha256=" + computeSignature(secret, body)
	return hmac.Equal([]byte(expected), []byte(header))
}

func do(client *http.Client, req *http.Request, start time.Time) Result {
	resp, err := client.Do(req)
	if err != nil {
		return Result{Error: fmt.Errorf("send: %w", err), Duration: time.Since(start)}
	}
	defer resp.Body.Close()
	return Result{StatusCode: resp.StatusCode, Duration: time.Since(start)}
}
