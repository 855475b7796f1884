package notify

import (
	"fmt"
	"net/url"

	"github.com/crucial707/reporthub/internal/models"
	"github.com/tidwall/gjson"
)

// SettingsError explains why channel settings were rejected.
type SettingsError struct {
	Field   string
	Message string
}

func (e *SettingsError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var requiredURLKey = map[string]string{
	models.ChannelWebhook: "url",
	models.ChannelSlack:   "webhook_url",
}

// ValidateSettings checks that settings is a JSON object carrying the keys
// the channel type needs.
func ValidateSettings(channelType string, settings []byte) error {
	key, ok := requiredURLKey[channelType]
	if !ok {
		return &SettingsError{Field: "type", Message: fmt.Sprintf("unsupported channel type %q", channelType)}
	}
	if !gjson.ValidBytes(settings) {
		return &SettingsError{Message: "Invalid JSON settings"}
	}
	doc := gjson.ParseBytes(settings)
	if !doc.IsObject() {
		return &SettingsError{Message: "settings must be a JSON object"}
	}

	raw := doc.Get(key)
	if !raw.Exists() || raw.Type != gjson.String || raw.Str == "" {
		return &SettingsError{Field: key, Message: "is required"}
	}
	u, err := url.Parse(raw.Str)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &SettingsError{Field: key, Message: "must be an http(s) URL"}
	}

	if h := doc.Get("headers"); h.Exists() && !h.IsObject() {
		return &SettingsError{Field: "headers", Message: "must be an object of strings"}
	}
	return nil
}
