package models

import (
	"encoding/json"
	"time"
)

// Notification channel types.
const (
	ChannelWebhook = "WEBHOOK"
	ChannelSlack   = "SLACK"
)

// ChannelTypes lists every supported channel type.
var ChannelTypes = []string{ChannelWebhook, ChannelSlack}

// NotificationChannel is a destination reporters deliver to. Settings holds
// the type-specific JSON object (url, secret, webhook_url...).
type NotificationChannel struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Type        string          `json:"type"`
	Settings    json.RawMessage `json:"settings"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
