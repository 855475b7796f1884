package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/crucial707/reporthub/internal/models"
	"github.com/go-chi/chi/v5"
)

// optionLimit bounds the schedules and channels offered in the reporter form.
const optionLimit = 100

type reporterForm struct {
	ID          int
	Name        string
	Description string
	ScheduleID  int
	Enabled     bool
	ChannelIDs  []int
}

type channelChoice struct {
	ID      int
	Name    string
	Type    string
	Checked bool
}

// reporterOptions loads the schedules and channels a reporter can link to.
func (a *app) reporterOptions(token string) ([]models.Schedule, []models.NotificationChannel, error) {
	var schedules listPage[models.Schedule]
	if err := a.getJSON(token, fmt.Sprintf("/schedules?limit=%d", optionLimit), &schedules); err != nil {
		return nil, nil, err
	}
	var channels listPage[models.NotificationChannel]
	if err := a.getJSON(token, fmt.Sprintf("/channels?limit=%d", optionLimit), &channels); err != nil {
		return nil, nil, err
	}
	return schedules.Items, channels.Items, nil
}

// errSessionExpired marks an API 401 so callers can send the user to login.
var errSessionExpired = errors.New("session expired")

// getJSON fetches path and decodes a 200 response into v.
func (a *app) getJSON(token, path string, v interface{}) error {
	body, status, err := apiGet(a.api, path, token)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized {
		return errSessionExpired
	}
	if status != http.StatusOK {
		return fmt.Errorf("%s", apiMessage(body))
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("invalid response from %s", path)
	}
	return nil
}

func (a *app) renderReporterForm(w http.ResponseWriter, r *http.Request, f reporterForm, t *toast) {
	title := f.Name
	if title == "" {
		title = "New Reporter"
	}
	data := pageData("reporters", crumb{Label: "Reporters", URL: "/reporters"}, crumb{Label: title})
	data["Form"] = f
	data["FormAction"] = "/reporters"
	data["SubmitLabel"] = "Create reporter"
	if f.ID > 0 {
		data["FormAction"] = fmt.Sprintf("/reporters/%d/edit", f.ID)
		data["SubmitLabel"] = "Save reporter"
	}

	schedules, channels, err := a.reporterOptions(tokenFrom(r))
	if err != nil && t == nil {
		t = errorToast("API Error", err.Error())
	}
	scheduleOpts := []choice{{Value: "", Label: "No schedule (manual only)", Selected: f.ScheduleID == 0}}
	for _, s := range schedules {
		scheduleOpts = append(scheduleOpts, choice{
			Value:    strconv.Itoa(s.ID),
			Label:    s.Name,
			Selected: s.ID == f.ScheduleID,
		})
	}
	linked := make(map[int]bool, len(f.ChannelIDs))
	for _, id := range f.ChannelIDs {
		linked[id] = true
	}
	channelOpts := make([]channelChoice, 0, len(channels))
	for _, ch := range channels {
		channelOpts = append(channelOpts, channelChoice{ID: ch.ID, Name: ch.Name, Type: ch.Type, Checked: linked[ch.ID]})
	}
	data["ScheduleOptions"] = scheduleOpts
	data["ChannelOptions"] = channelOpts
	if t != nil {
		data["Toast"] = t
	}
	renderTemplate(w, "reporter_form.html", data)
}

// reporterRow is a reporter with its schedule resolved for display.
type reporterRow struct {
	models.Reporter
	ScheduleName string
}

func (a *app) reportersList(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)
	data := pageData("reporters", crumb{Label: "Reporters"})
	data["Page"] = page
	data["Toast"] = flashToast(r)
	tok := tokenFrom(r)

	var list listPage[models.Reporter]
	err := a.getJSON(tok, fmt.Sprintf("/reporters?limit=%d&offset=%d", pageSize, (page-1)*pageSize), &list)
	if errors.Is(err, errSessionExpired) {
		clearAuthAndRedirectToLogin(w, r)
		return
	}
	if err != nil {
		data["Toast"] = errorToast("API Error", err.Error())
		renderTemplate(w, "reporters.html", data)
		return
	}

	names := map[int]string{}
	var schedules listPage[models.Schedule]
	if a.getJSON(tok, fmt.Sprintf("/schedules?limit=%d", optionLimit), &schedules) == nil {
		for _, s := range schedules.Items {
			names[s.ID] = s.Name
		}
	}
	rows := make([]reporterRow, 0, len(list.Items))
	for _, rep := range list.Items {
		row := reporterRow{Reporter: rep}
		if rep.ScheduleID != nil {
			row.ScheduleName = names[*rep.ScheduleID]
			if row.ScheduleName == "" {
				row.ScheduleName = fmt.Sprintf("#%d", *rep.ScheduleID)
			}
		}
		rows = append(rows, row)
	}
	data["Reporters"] = rows
	data["Total"] = list.Total
	setPager(data, page, list.Total)
	renderTemplate(w, "reporters.html", data)
}

func (a *app) reporterNewForm(w http.ResponseWriter, r *http.Request) {
	a.renderReporterForm(w, r, reporterForm{Enabled: true}, nil)
}

func (a *app) reporterEditForm(w http.ResponseWriter, r *http.Request) {
	var rep models.Reporter
	err := a.getJSON(tokenFrom(r), "/reporters/"+chi.URLParam(r, "id"), &rep)
	if errors.Is(err, errSessionExpired) {
		clearAuthAndRedirectToLogin(w, r)
		return
	}
	if err != nil {
		a.renderReporterForm(w, r, reporterForm{Enabled: true}, errorToast("API Error", err.Error()))
		return
	}
	f := reporterForm{
		ID:          rep.ID,
		Name:        rep.Name,
		Description: rep.Description,
		Enabled:     rep.Enabled,
		ChannelIDs:  rep.ChannelIDs,
	}
	if rep.ScheduleID != nil {
		f.ScheduleID = *rep.ScheduleID
	}
	a.renderReporterForm(w, r, f, nil)
}

func (a *app) reporterCreate(w http.ResponseWriter, r *http.Request) {
	a.reporterSave(w, r, 0)
}

func (a *app) reporterUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		http.Redirect(w, r, "/reporters", http.StatusFound)
		return
	}
	a.reporterSave(w, r, id)
}

func (a *app) reporterSave(w http.ResponseWriter, r *http.Request, id int) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	f := reporterForm{
		ID:          id,
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Enabled:     r.FormValue("enabled") != "",
		ChannelIDs:  []int{},
	}
	f.ScheduleID, _ = strconv.Atoi(r.FormValue("schedule_id"))
	for _, v := range r.Form["channel_ids"] {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			f.ChannelIDs = append(f.ChannelIDs, n)
		}
	}

	if f.Name == "" {
		a.renderReporterForm(w, r, f, errorToast("Validation Error", "Name is required"))
		return
	}

	payload := map[string]interface{}{
		"name":        f.Name,
		"description": f.Description,
		"enabled":     f.Enabled,
		"channel_ids": f.ChannelIDs,
		"schedule_id": nil,
	}
	if f.ScheduleID > 0 {
		payload["schedule_id"] = f.ScheduleID
	}
	body, _ := json.Marshal(payload)

	var (
		data   []byte
		status int
		err    error
	)
	if id == 0 {
		data, status, err = apiPost(a.api, "/reporters", tokenFrom(r), body)
	} else {
		data, status, err = apiPut(a.api, fmt.Sprintf("/reporters/%d", id), tokenFrom(r), body)
	}
	if err != nil {
		a.renderReporterForm(w, r, f, errorToast("API Unavailable", err.Error()))
		return
	}
	switch {
	case status == http.StatusUnauthorized:
		clearAuthAndRedirectToLogin(w, r)
	case status == http.StatusBadRequest:
		a.renderReporterForm(w, r, f, errorToast("Validation Error", apiMessage(data)))
	case status < 200 || status >= 300:
		a.renderReporterForm(w, r, f, errorToast("Save Failed", apiMessage(data)))
	default:
		http.Redirect(w, r, "/reporters?flash=saved", http.StatusFound)
	}
}

// reporterRun triggers a manual run and shows the run history.
func (a *app) reporterRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	data, status, err := apiPost(a.api, "/reporters/"+id+"/run", tokenFrom(r), []byte("{}"))
	if status == http.StatusUnauthorized {
		clearAuthAndRedirectToLogin(w, r)
		return
	}
	flash := "run-failed"
	if err == nil && status == http.StatusOK {
		var run models.ReporterRun
		if json.Unmarshal(data, &run) == nil && run.Status == models.RunSucceeded {
			flash = "run-succeeded"
		}
	}
	http.Redirect(w, r, "/reporters/"+id+"/runs?flash="+flash, http.StatusFound)
}

func (a *app) reporterRuns(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tok := tokenFrom(r)

	var rep models.Reporter
	err := a.getJSON(tok, "/reporters/"+id, &rep)
	if errors.Is(err, errSessionExpired) {
		clearAuthAndRedirectToLogin(w, r)
		return
	}
	data := pageData("reporters", crumb{Label: "Reporters", URL: "/reporters"}, crumb{Label: rep.Name, URL: "/reporters/" + id + "/edit"}, crumb{Label: "Runs"})
	data["Reporter"] = rep
	data["Toast"] = flashToast(r)
	if err != nil {
		data["Toast"] = errorToast("API Error", err.Error())
		renderTemplate(w, "reporter_runs.html", data)
		return
	}

	var runs []models.ReporterRun
	if err := a.getJSON(tok, "/reporters/"+id+"/runs?limit=20", &runs); err != nil {
		data["Toast"] = errorToast("API Error", err.Error())
	}
	data["Runs"] = runs
	renderTemplate(w, "reporter_runs.html", data)
}
