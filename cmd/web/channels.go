package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/crucial707/reporthub/internal/models"
	"github.com/go-chi/chi/v5"
)

// channelForm is the channel form as typed by the user; Settings is raw text.
type channelForm struct {
	ID          int
	Name        string
	Description string
	Type        string
	Settings    string
}

// settingsTemplates pre-fill the settings box for a new channel of each type.
var settingsTemplates = map[string]string{
	models.ChannelWebhook: "{\n  \"url\": \"https://example.com/hook\",\n  \"secret\": \"\"\n}",
	models.ChannelSlack:   "{\n  \"webhook_url\": \"https://hooks.slack.com/services/...\"\n}",
}

func channelFormFrom(ch models.NotificationChannel) channelForm {
	f := channelForm{ID: ch.ID, Name: ch.Name, Description: ch.Description, Type: ch.Type, Settings: "{}"}
	var buf bytes.Buffer
	if len(ch.Settings) > 0 && json.Indent(&buf, ch.Settings, "", "  ") == nil {
		f.Settings = buf.String()
	}
	return f
}

func (a *app) renderChannelForm(w http.ResponseWriter, f channelForm, t *toast) {
	title := f.Name
	if title == "" {
		title = "New Channel"
	}
	data := pageData("channels", crumb{Label: "Channels", URL: "/channels"}, crumb{Label: title})
	data["Form"] = f
	data["Types"] = models.ChannelTypes
	data["FormAction"] = "/channels"
	data["SubmitLabel"] = "Create channel"
	if f.ID > 0 {
		data["FormAction"] = fmt.Sprintf("/channels/%d/edit", f.ID)
		data["SubmitLabel"] = "Save channel"
	}
	if t != nil {
		data["Toast"] = t
	}
	renderTemplate(w, "channel_form.html", data)
}

func (a *app) channelsList(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)
	data := pageData("channels", crumb{Label: "Channels"})
	data["Page"] = page
	data["Toast"] = flashToast(r)

	body, status, err := apiGet(a.api, fmt.Sprintf("/channels?limit=%d&offset=%d", pageSize, (page-1)*pageSize), tokenFrom(r))
	if err != nil {
		data["Toast"] = errorToast("API Unavailable", err.Error())
		renderTemplate(w, "channels.html", data)
		return
	}
	if status == http.StatusUnauthorized {
		clearAuthAndRedirectToLogin(w, r)
		return
	}
	if status != http.StatusOK {
		data["Toast"] = errorToast("API Error", apiMessage(body))
		renderTemplate(w, "channels.html", data)
		return
	}

	var list listPage[models.NotificationChannel]
	if err := json.Unmarshal(body, &list); err != nil {
		data["Toast"] = errorToast("API Error", "Invalid channels response")
		renderTemplate(w, "channels.html", data)
		return
	}
	data["Channels"] = list.Items
	data["Total"] = list.Total
	setPager(data, page, list.Total)
	renderTemplate(w, "channels.html", data)
}

func (a *app) channelNewForm(w http.ResponseWriter, r *http.Request) {
	typ := strings.ToUpper(r.URL.Query().Get("type"))
	if _, ok := settingsTemplates[typ]; !ok {
		typ = models.ChannelWebhook
	}
	a.renderChannelForm(w, channelForm{Type: typ, Settings: settingsTemplates[typ]}, nil)
}

func (a *app) channelEditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	body, status, err := apiGet(a.api, "/channels/"+id, tokenFrom(r))
	if err != nil {
		a.renderChannelForm(w, channelForm{}, errorToast("API Unavailable", err.Error()))
		return
	}
	if status == http.StatusUnauthorized {
		clearAuthAndRedirectToLogin(w, r)
		return
	}
	if status == http.StatusNotFound {
		http.Redirect(w, r, "/channels", http.StatusFound)
		return
	}
	if status != http.StatusOK {
		a.renderChannelForm(w, channelForm{}, errorToast("API Error", apiMessage(body)))
		return
	}
	var ch models.NotificationChannel
	if err := json.Unmarshal(body, &ch); err != nil {
		a.renderChannelForm(w, channelForm{}, errorToast("API Error", "Invalid channel response"))
		return
	}
	a.renderChannelForm(w, channelFormFrom(ch), nil)
}

// channelSave creates a channel, or updates it when the URL carries an id.
func (a *app) channelSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	f := channelForm{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Type:        r.FormValue("type"),
		Settings:    strings.TrimSpace(r.FormValue("settings")),
	}
	if raw := chi.URLParam(r, "id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			http.Redirect(w, r, "/channels", http.StatusFound)
			return
		}
		f.ID = id
	}

	if f.Name == "" {
		a.renderChannelForm(w, f, errorToast("Validation Error", "Name is required"))
		return
	}
	settings := f.Settings
	if settings == "" {
		settings = "{}"
	}
	if !json.Valid([]byte(settings)) {
		a.renderChannelForm(w, f, errorToast("Invalid Settings", "Invalid JSON settings"))
		return
	}

	body, _ := json.Marshal(map[string]interface{}{
		"name":        f.Name,
		"description": f.Description,
		"type":        f.Type,
		"settings":    json.RawMessage(settings),
	})
	var (
		data   []byte
		status int
		err    error
	)
	if f.ID == 0 {
		data, status, err = apiPost(a.api, "/channels", tokenFrom(r), body)
	} else {
		data, status, err = apiPut(a.api, fmt.Sprintf("/channels/%d", f.ID), tokenFrom(r), body)
	}
	if err != nil {
		a.renderChannelForm(w, f, errorToast("API Unavailable", err.Error()))
		return
	}
	switch {
	case status == http.StatusUnauthorized:
		clearAuthAndRedirectToLogin(w, r)
	case status == http.StatusBadRequest:
		title := "Validation Error"
		var e apiErrorBody
		if json.Unmarshal(data, &e) == nil && e.Fields["settings"] != "" {
			title = "Invalid Settings"
		}
		a.renderChannelForm(w, f, errorToast(title, apiMessage(data)))
	case status < 200 || status >= 300:
		a.renderChannelForm(w, f, errorToast("Save Failed", apiMessage(data)))
	default:
		http.Redirect(w, r, "/channels?flash=saved", http.StatusFound)
	}
}

// channelTest sends a test message and reports the outcome on the list page.
func (a *app) channelTest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	_, status, err := apiPost(a.api, "/channels/"+id+"/test", tokenFrom(r), []byte("{}"))
	switch {
	case err != nil:
		http.Redirect(w, r, "/channels?flash=test-failed", http.StatusFound)
	case status == http.StatusUnauthorized:
		clearAuthAndRedirectToLogin(w, r)
	case status == http.StatusOK:
		http.Redirect(w, r, "/channels?flash=test-ok", http.StatusFound)
	default:
		http.Redirect(w, r, "/channels?flash=test-failed", http.StatusFound)
	}
}
