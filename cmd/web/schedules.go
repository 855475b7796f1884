package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/crucial707/reporthub/internal/cronexpr"
	"github.com/crucial707/reporthub/internal/models"
	"github.com/go-chi/chi/v5"
)

const (
	pageSize        = 20
	newScheduleName = "New Schedule"
	previewRuns     = 3
)

// builderForm is the state of the schedule form's cron builder.
type builderForm struct {
	ID       int
	Name     string
	Minute   string
	Hour     string
	Days     cronexpr.DaySet
	Timezone string
}

func defaultBuilderForm(zone string) builderForm {
	return builderForm{
		Name:     newScheduleName,
		Minute:   cronexpr.DefaultMinute,
		Hour:     cronexpr.DefaultHour,
		Days:     cronexpr.AllDays(),
		Timezone: zone,
	}
}

// builderFromSchedule loads a stored schedule into the builder controls.
func builderFromSchedule(s models.Schedule) (builderForm, error) {
	f := defaultBuilderForm("")
	f.ID, f.Name, f.Timezone = s.ID, s.Name, s.Timezone
	fields, err := cronexpr.Parse(s.Cron)
	if err != nil {
		return f, err
	}
	f.Minute, f.Hour, f.Days = fields.Minute, fields.Hour, fields.Days
	return f, nil
}

func parseBuilderForm(r *http.Request) builderForm {
	f := builderForm{
		Name:     strings.TrimSpace(r.FormValue("name")),
		Minute:   r.FormValue("minute"),
		Hour:     r.FormValue("hour"),
		Timezone: r.FormValue("timezone"),
	}
	for _, v := range r.Form["days"] {
		if d, ok := cronexpr.ParseWeekday(v); ok {
			f.Days = f.Days.With(d)
		}
	}
	return f
}

func (f builderForm) cron() (string, error) {
	return cronexpr.Build(f.Minute, f.Hour, f.Days)
}

// preview returns the cron string, its description and the next few runs.
// err is set when the controls do not form a valid schedule.
func (f builderForm) preview(now time.Time) (expr, desc string, next []time.Time, err error) {
	expr, err = f.cron()
	if err != nil {
		return "", "", nil, err
	}
	desc, err = cronexpr.Describe(cronexpr.Fields{Minute: f.Minute, Hour: f.Hour, Days: f.Days}, f.Timezone)
	if err != nil {
		return "", "", nil, err
	}
	next, err = cronexpr.NextRuns(expr, f.Timezone, now, previewRuns)
	if err != nil {
		return expr, desc, nil, err
	}
	return expr, desc, next, nil
}

// cronReason is the user-facing part of a cronexpr error.
func cronReason(err error) string {
	var ce *cronexpr.Error
	if errors.As(err, &ce) {
		return ce.Reason
	}
	return err.Error()
}

type choice struct {
	Value    string
	Label    string
	Selected bool
}

// choices marks current as selected, appending it when it is not one of opts
// so that editing a schedule never silently changes it.
func choices(opts []cronexpr.Option, current string) []choice {
	out := make([]choice, 0, len(opts)+1)
	found := false
	for _, o := range opts {
		sel := o.Value == current
		found = found || sel
		out = append(out, choice{Value: o.Value, Label: o.Label, Selected: sel})
	}
	if !found && current != "" {
		out = append(out, choice{Value: current, Label: current, Selected: true})
	}
	return out
}

func zoneChoices(zones []string, current string) []choice {
	opts := make([]cronexpr.Option, len(zones))
	for i, z := range zones {
		opts[i] = cronexpr.Option{Value: z, Label: z}
	}
	return choices(opts, current)
}

type dayChoice struct {
	ID      string
	Label   string
	Checked bool
}

func dayChoices(days cronexpr.DaySet) []dayChoice {
	out := make([]dayChoice, 0, 7)
	for _, d := range cronexpr.Weekdays() {
		out = append(out, dayChoice{ID: string(d), Label: d.Label(), Checked: days.Has(d)})
	}
	return out
}

// zones asks the API for the selectable timezones, falling back to the
// built-in list.
func (a *app) zones(token string) []string {
	data, status, err := apiGet(a.api, "/timezones", token)
	if err == nil && status == http.StatusOK {
		var out struct {
			Timezones []string `json:"timezones"`
		}
		if json.Unmarshal(data, &out) == nil && len(out.Timezones) > 0 {
			return out.Timezones
		}
	}
	return cronexpr.DefaultZones().Names()
}

func (a *app) renderScheduleForm(w http.ResponseWriter, r *http.Request, f builderForm, t *toast) {
	title := f.Name
	if title == "" {
		title = newScheduleName
	}
	data := pageData("schedules", crumb{Label: "Schedules", URL: "/schedules"}, crumb{Label: title})
	data["Form"] = f
	data["MinuteOptions"] = choices(cronexpr.MinuteOptions(a.dev), f.Minute)
	data["HourOptions"] = choices(cronexpr.HourOptions(), f.Hour)
	data["DayOptions"] = dayChoices(f.Days)
	data["Zones"] = zoneChoices(a.zones(tokenFrom(r)), f.Timezone)
	data["FormAction"] = "/schedules"
	data["SubmitLabel"] = "Create schedule"
	if f.ID > 0 {
		data["FormAction"] = fmt.Sprintf("/schedules/%d/edit", f.ID)
		data["SubmitLabel"] = "Save schedule"
	}

	expr, desc, next, err := f.preview(time.Now())
	if err != nil {
		data["PreviewError"] = cronReason(err)
	} else {
		data["Cron"], data["Description"], data["NextRuns"] = expr, desc, next
	}
	if t != nil {
		data["Toast"] = t
	}
	renderTemplate(w, "schedule_form.html", data)
}

func (a *app) schedulesList(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)
	data := pageData("schedules", crumb{Label: "Schedules"})
	data["Page"] = page
	data["Toast"] = flashToast(r)

	body, status, err := apiGet(a.api, fmt.Sprintf("/schedules?limit=%d&offset=%d", pageSize, (page-1)*pageSize), tokenFrom(r))
	if err != nil {
		data["Toast"] = errorToast("API Unavailable", err.Error())
		renderTemplate(w, "schedules.html", data)
		return
	}
	if status == http.StatusUnauthorized {
		clearAuthAndRedirectToLogin(w, r)
		return
	}
	if status != http.StatusOK {
		data["Toast"] = errorToast("API Error", apiMessage(body))
		renderTemplate(w, "schedules.html", data)
		return
	}

	var list listPage[struct {
		models.Schedule
		Description string `json:"description"`
	}]
	if err := json.Unmarshal(body, &list); err != nil {
		data["Toast"] = errorToast("API Error", "Invalid schedules response")
		renderTemplate(w, "schedules.html", data)
		return
	}
	data["Schedules"] = list.Items
	data["Total"] = list.Total
	setPager(data, page, list.Total)
	renderTemplate(w, "schedules.html", data)
}

func (a *app) scheduleNewForm(w http.ResponseWriter, r *http.Request) {
	a.renderScheduleForm(w, r, defaultBuilderForm(a.zone), nil)
}

func (a *app) scheduleEditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	body, status, err := apiGet(a.api, "/schedules/"+id, tokenFrom(r))
	if err != nil {
		a.renderScheduleForm(w, r, defaultBuilderForm(a.zone), errorToast("API Unavailable", err.Error()))
		return
	}
	if status == http.StatusUnauthorized {
		clearAuthAndRedirectToLogin(w, r)
		return
	}
	if status == http.StatusNotFound {
		http.Redirect(w, r, "/schedules", http.StatusFound)
		return
	}
	if status != http.StatusOK {
		a.renderScheduleForm(w, r, defaultBuilderForm(a.zone), errorToast("API Error", apiMessage(body)))
		return
	}

	var s models.Schedule
	if err := json.Unmarshal(body, &s); err != nil {
		a.renderScheduleForm(w, r, defaultBuilderForm(a.zone), errorToast("API Error", "Invalid schedule response"))
		return
	}
	f, err := builderFromSchedule(s)
	if err != nil {
		a.renderScheduleForm(w, r, f, errorToast("Unsupported Schedule", cronReason(err)))
		return
	}
	a.renderScheduleForm(w, r, f, nil)
}

func (a *app) scheduleCreate(w http.ResponseWriter, r *http.Request) {
	a.scheduleSave(w, r, 0)
}

func (a *app) scheduleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		http.Redirect(w, r, "/schedules", http.StatusFound)
		return
	}
	a.scheduleSave(w, r, id)
}

// scheduleSave handles both create (id 0) and update. The "preview" action
// re-renders the form without saving.
func (a *app) scheduleSave(w http.ResponseWriter, r *http.Request, id int) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	f := parseBuilderForm(r)
	f.ID = id

	if r.FormValue("action") == "preview" {
		a.renderScheduleForm(w, r, f, nil)
		return
	}
	if f.Name == "" {
		a.renderScheduleForm(w, r, f, errorToast("Validation Error", "Name is required"))
		return
	}
	expr, err := f.cron()
	if err != nil {
		a.renderScheduleForm(w, r, f, errorToast("Validation Error", cronReason(err)))
		return
	}

	body, _ := json.Marshal(map[string]string{"name": f.Name, "cron": expr, "timezone": f.Timezone})
	var (
		data   []byte
		status int
	)
	if id == 0 {
		data, status, err = apiPost(a.api, "/schedules", tokenFrom(r), body)
	} else {
		data, status, err = apiPut(a.api, fmt.Sprintf("/schedules/%d", id), tokenFrom(r), body)
	}
	if err != nil {
		a.renderScheduleForm(w, r, f, errorToast("API Unavailable", err.Error()))
		return
	}
	switch {
	case status == http.StatusUnauthorized:
		clearAuthAndRedirectToLogin(w, r)
	case status == http.StatusBadRequest:
		a.renderScheduleForm(w, r, f, errorToast("Validation Error", apiMessage(data)))
	case status < 200 || status >= 300:
		a.renderScheduleForm(w, r, f, errorToast("Save Failed", apiMessage(data)))
	default:
		http.Redirect(w, r, "/schedules?flash=saved", http.StatusFound)
	}
}

// scheduleDescribe answers the builder script with the live description.
func (a *app) scheduleDescribe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	f := parseBuilderForm(r)
	out := struct {
		Cron        string   `json:"cron,omitempty"`
		Description string   `json:"description,omitempty"`
		NextRuns    []string `json:"next_runs,omitempty"`
		Error       string   `json:"error,omitempty"`
	}{}
	expr, desc, next, err := f.preview(time.Now())
	if err != nil {
		out.Error = cronReason(err)
	} else {
		out.Cron, out.Description = expr, desc
		for _, t := range next {
			out.NextRuns = append(out.NextRuns, t.Format("Mon 02 Jan 15:04 MST"))
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func pageParam(r *http.Request) int {
	if n, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && n > 0 {
		return n
	}
	return 1
}

func setPager(data map[string]interface{}, page, total int) {
	if page > 1 {
		data["PrevPage"] = page - 1
	}
	if page*pageSize < total {
		data["NextPage"] = page + 1
	}
}
