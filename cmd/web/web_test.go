package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

// fakeAPI records the requests the dashboard sends and answers from routes,
// keyed by "METHOD /path".
type fakeAPI struct {
	mu     sync.Mutex
	routes map[string]func(w http.ResponseWriter, body []byte)
	bodies map[string][]byte
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()
	f := &fakeAPI{
		routes: map[string]func(http.ResponseWriter, []byte){
			"GET /me": func(w http.ResponseWriter, _ []byte) {
				io.WriteString(w, `{"id":1,"username":"alice","role":"admin"}`)
			},
			"GET /timezones": func(w http.ResponseWriter, _ []byte) {
				io.WriteString(w, `{"timezones":["Europe/Paris","UTC"]}`)
			},
		},
		bodies: map[string][]byte{},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.bodies[key] = body
		h, ok := f.routes[key]
		f.mu.Unlock()
		if !ok {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		h(w, body)
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeAPI) handle(key string, h func(w http.ResponseWriter, body []byte)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[key] = h
}

func (f *fakeAPI) body(key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bodies[key]
	return b, ok
}

func authedRequest(method, target string, form url.Values) *http.Request {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "tok"})
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func assertContains(t *testing.T, body string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestWeb_RedirectsToLoginWithoutCookie(t *testing.T) {
	_, api := newFakeAPI(t)
	rr := serve(newRouter(api.URL, false, ""), httptest.NewRequest("GET", "/schedules", nil))

	if rr.Code != http.StatusFound {
		t.Fatalf("status: got %d, want 302", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/login?next=%2Fschedules" {
		t.Errorf("Location: got %q", loc)
	}
}

func TestWeb_ExpiredTokenClearsCookie(t *testing.T) {
	f, api := newFakeAPI(t)
	f.handle("GET /me", func(w http.ResponseWriter, _ []byte) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":"invalid token"}`)
	})

	rr := serve(newRouter(api.URL, false, ""), authedRequest("GET", "/channels", nil))
	if rr.Code != http.StatusFound || !strings.HasPrefix(rr.Header().Get("Location"), "/login?next=") {
		t.Fatalf("got %d %q, want redirect to login", rr.Code, rr.Header().Get("Location"))
	}
	cleared := false
	for _, c := range rr.Result().Cookies() {
		if c.Name == cookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("token cookie not cleared")
	}
}

func TestWeb_NewScheduleDefaults(t *testing.T) {
	_, api := newFakeAPI(t)
	rr := serve(newRouter(api.URL, false, ""), authedRequest("GET", "/schedules/new", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	assertContains(t, body,
		`value="New Schedule"`,
		`<option value="8" selected>08:00</option>`,
		`<option value="0" selected>:00</option>`,
		`<option value="UTC" selected>UTC</option>`,
		`value="MON" checked`,
		`value="SUN" checked`,
		"Runs at 08:00 every day in UTC",
		"0 8 * * *",
		"Home",
		"Schedules",
	)
	if strings.Contains(body, "Every minute") {
		t.Error("every-minute choice offered outside development")
	}
}

func TestWeb_NewScheduleUsesDefaultZone(t *testing.T) {
	_, api := newFakeAPI(t)
	rr := serve(newRouter(api.URL, false, "Europe/Paris"), authedRequest("GET", "/schedules/new", nil))
	assertContains(t, rr.Body.String(),
		`<option value="Europe/Paris" selected>Europe/Paris</option>`,
		"Runs at 08:00 every day in Europe/Paris",
		"data-detect-zone",
	)
}

func TestWeb_EditScheduleKeepsStoredZone(t *testing.T) {
	f, api := newFakeAPI(t)
	f.handle("GET /schedules/3", func(w http.ResponseWriter, _ []byte) {
		io.WriteString(w, `{"id":3,"name":"Digest","cron":"0 8 * * *","timezone":"UTC"}`)
	})
	rr := serve(newRouter(api.URL, false, "Europe/Paris"), authedRequest("GET", "/schedules/3/edit", nil))
	body := rr.Body.String()
	assertContains(t, body, `<option value="UTC" selected>UTC</option>`)
	if strings.Contains(body, "data-detect-zone") {
		t.Error("edit form should not replace the stored timezone")
	}
}

func TestDefaultZone(t *testing.T) {
	tests := map[string]string{
		"":                 "UTC",
		"America/New_York": "America/New_York",
		"Not/AZone":        "UTC",
	}
	for in, want := range tests {
		if got := defaultZone(in); got != want {
			t.Errorf("defaultZone(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWeb_MinuteEveryInDevelopment(t *testing.T) {
	_, api := newFakeAPI(t)
	rr := serve(newRouter(api.URL, true, ""), authedRequest("GET", "/schedules/new", nil))
	assertContains(t, rr.Body.String(), `<option value="*">Every minute</option>`)
}

func TestWeb_EditScheduleParsesCron(t *testing.T) {
	f, api := newFakeAPI(t)
	f.handle("GET /schedules/7", func(w http.ResponseWriter, _ []byte) {
		io.WriteString(w, `{"id":7,"name":"Weekend sweep","cron":"15 * * * SAT-SUN","timezone":"Europe/Paris"}`)
	})

	rr := serve(newRouter(api.URL, false, ""), authedRequest("GET", "/schedules/7/edit", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	assertContains(t, body,
		`action="/schedules/7/edit"`,
		`<option value="*" selected>Every hour</option>`,
		`<option value="15" selected>:15</option>`,
		`<option value="Europe/Paris" selected>Europe/Paris</option>`,
		`value="SAT" checked`,
		`value="SUN" checked`,
		"Runs every hour at :15 on Saturday, Sunday in Europe/Paris",
		"Weekend sweep",
	)
	if strings.Contains(body, `value="MON" checked`) {
		t.Error("Monday should not be checked")
	}
}

func TestWeb_CreateScheduleRequiresName(t *testing.T) {
	_, api := newFakeAPI(t)
	form := url.Values{"name": {"  "}, "minute": {"0"}, "hour": {"8"}, "timezone": {"UTC"}, "days": {"MON"}}
	rr := serve(newRouter(api.URL, false, ""), authedRequest("POST", "/schedules", form))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	assertContains(t, rr.Body.String(), "Validation Error", "Name is required")
}

func TestWeb_CreateScheduleRequiresDay(t *testing.T) {
	f, api := newFakeAPI(t)
	form := url.Values{"name": {"Standup"}, "minute": {"0"}, "hour": {"8"}, "timezone": {"UTC"}}
	rr := serve(newRouter(api.URL, false, ""), authedRequest("POST", "/schedules", form))

	assertContains(t, rr.Body.String(), "Validation Error", "select at least one day")
	if _, called := f.body("POST /schedules"); called {
		t.Error("API called for an invalid schedule")
	}
}

func TestWeb_CreateSchedule(t *testing.T) {
	f, api := newFakeAPI(t)
	f.handle("POST /schedules", func(w http.ResponseWriter, _ []byte) {
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id":3}`)
	})

	form := url.Values{
		"name":     {"Standup"},
		"minute":   {"30"},
		"hour":     {"9"},
		"timezone": {"Europe/Paris"},
		"days":     {"WED", "MON"},
		"action":   {"save"},
	}
	rr := serve(newRouter(api.URL, false, ""), authedRequest("POST", "/schedules", form))

	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/schedules?flash=saved" {
		t.Fatalf("got %d %q, want redirect to list", rr.Code, rr.Header().Get("Location"))
	}
	raw, _ := f.body("POST /schedules")
	var sent map[string]string
	if err := json.Unmarshal(raw, &sent); err != nil {
		t.Fatalf("decode API body: %v", err)
	}
	if sent["cron"] != "30 9 * * MON,WED" || sent["name"] != "Standup" || sent["timezone"] != "Europe/Paris" {
		t.Errorf("unexpected API body: %v", sent)
	}
}

func TestWeb_PreviewDoesNotSave(t *testing.T) {
	f, api := newFakeAPI(t)
	form := url.Values{"name": {"Standup"}, "minute": {"45"}, "hour": {"17"}, "timezone": {"UTC"}, "days": {"FRI"}, "action": {"preview"}}
	rr := serve(newRouter(api.URL, false, ""), authedRequest("POST", "/schedules", form))

	assertContains(t, rr.Body.String(), "Runs at 17:45 on Friday in UTC", "45 17 * * FRI")
	if _, called := f.body("POST /schedules"); called {
		t.Error("preview saved the schedule")
	}
}

func TestWeb_ScheduleAPIValidationError(t *testing.T) {
	f, api := newFakeAPI(t)
	f.handle("PUT /schedules/4", func(w http.ResponseWriter, _ []byte) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":"validation failed","fields":{"timezone":"unknown timezone"}}`)
	})

	form := url.Values{"name": {"Nightly"}, "minute": {"0"}, "hour": {"2"}, "timezone": {"Mars/Olympus"}, "days": {"MON"}}
	rr := serve(newRouter(api.URL, false, ""), authedRequest("POST", "/schedules/4/edit", form))
	assertContains(t, rr.Body.String(), "Validation Error", "timezone unknown timezone")
}

func TestWeb_ScheduleDescribe(t *testing.T) {
	_, api := newFakeAPI(t)
	h := newRouter(api.URL, false, "")

	rr := serve(h, authedRequest("POST", "/schedules/describe", url.Values{"minute": {"0"}, "hour": {"*"}, "timezone": {"UTC"}, "days": {"tue"}}))
	var out struct {
		Cron        string   `json:"cron"`
		Description string   `json:"description"`
		NextRuns    []string `json:"next_runs"`
		Error       string   `json:"error"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Cron != "0 * * * TUE" || out.Description != "Runs every hour at :00 on Tuesday in UTC" || len(out.NextRuns) != previewRuns {
		t.Errorf("unexpected preview: %+v", out)
	}

	rr = serve(h, authedRequest("POST", "/schedules/describe", url.Values{"minute": {"0"}, "hour": {"8"}}))
	out.Error = ""
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Error != "select at least one day" {
		t.Errorf("error: got %q", out.Error)
	}
}

func TestWeb_ChannelInvalidSettings(t *testing.T) {
	f, api := newFakeAPI(t)
	form := url.Values{"name": {"Ops"}, "type": {"WEBHOOK"}, "settings": {`{"url": `}}
	rr := serve(newRouter(api.URL, false, ""), authedRequest("POST", "/channels", form))

	assertContains(t, rr.Body.String(), "Invalid Settings", "Invalid JSON settings")
	if _, called := f.body("POST /channels"); called {
		t.Error("API called with invalid settings")
	}
}

func TestWeb_ChannelRequiresName(t *testing.T) {
	_, api := newFakeAPI(t)
	form := url.Values{"name": {""}, "type": {"SLACK"}, "settings": {`{}`}}
	rr := serve(newRouter(api.URL, false, ""), authedRequest("POST", "/channels", form))
	assertContains(t, rr.Body.String(), "Validation Error", "Name is required")
}

func TestWeb_ChannelMissingURLFromAPI(t *testing.T) {
	f, api := newFakeAPI(t)
	f.handle("PUT /channels/2", func(w http.ResponseWriter, _ []byte) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":"validation failed","fields":{"settings":"webhook_url is required"}}`)
	})
	form := url.Values{"name": {"Team"}, "type": {"SLACK"}, "settings": {`{}`}}
	rr := serve(newRouter(api.URL, false, ""), authedRequest("POST", "/channels/2/edit", form))

	assertContains(t, rr.Body.String(), "Invalid Settings", "settings webhook_url is required")
	raw, _ := f.body("PUT /channels/2")
	if !strings.Contains(string(raw), `"settings":{}`) {
		t.Errorf("settings not sent as an object: %s", raw)
	}
}

func TestWeb_ChannelTest(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{http.StatusOK, "/channels?flash=test-ok"},
		{http.StatusBadGateway, "/channels?flash=test-failed"},
	}
	for _, tt := range tests {
		f, api := newFakeAPI(t)
		f.handle("POST /channels/5/test", func(w http.ResponseWriter, _ []byte) {
			w.WriteHeader(tt.status)
			io.WriteString(w, `{"ok":false}`)
		})
		rr := serve(newRouter(api.URL, false, ""), authedRequest("POST", "/channels/5/test", url.Values{}))
		if got := rr.Header().Get("Location"); got != tt.want {
			t.Errorf("status %d: Location got %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestWeb_ReporterRun(t *testing.T) {
	f, api := newFakeAPI(t)
	f.handle("POST /reporters/9/run", func(w http.ResponseWriter, _ []byte) {
		io.WriteString(w, `{"reporter_id":9,"status":"succeeded","trigger":"manual"}`)
	})
	rr := serve(newRouter(api.URL, false, ""), authedRequest("POST", "/reporters/9/run", url.Values{}))
	if got := rr.Header().Get("Location"); got != "/reporters/9/runs?flash=run-succeeded" {
		t.Errorf("Location: got %q", got)
	}
}

func TestWeb_ReporterSaveSendsChannels(t *testing.T) {
	f, api := newFakeAPI(t)
	f.handle("POST /reporters", func(w http.ResponseWriter, _ []byte) {
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id":1}`)
	})
	form := url.Values{"name": {"Daily"}, "schedule_id": {"3"}, "enabled": {"1"}, "channel_ids": {"2", "4"}}
	rr := serve(newRouter(api.URL, false, ""), authedRequest("POST", "/reporters", form))
	if rr.Code != http.StatusFound {
		t.Fatalf("status: got %d, want 302", rr.Code)
	}

	raw, _ := f.body("POST /reporters")
	var sent struct {
		ScheduleID *int  `json:"schedule_id"`
		Enabled    bool  `json:"enabled"`
		ChannelIDs []int `json:"channel_ids"`
	}
	if err := json.Unmarshal(raw, &sent); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sent.ScheduleID == nil || *sent.ScheduleID != 3 || !sent.Enabled || len(sent.ChannelIDs) != 2 {
		t.Errorf("unexpected API body: %s", raw)
	}
}

func TestWeb_DeleteConfirm(t *testing.T) {
	f, api := newFakeAPI(t)
	f.handle("GET /schedules/6", func(w http.ResponseWriter, _ []byte) {
		io.WriteString(w, `{"id":6,"name":"Old digest","cron":"0 8 * * *","timezone":"UTC"}`)
	})
	f.handle("DELETE /schedules/6", func(w http.ResponseWriter, _ []byte) {
		w.WriteHeader(http.StatusNoContent)
	})
	h := newRouter(api.URL, false, "")

	rr := serve(h, authedRequest("GET", "/schedules/6/delete", nil))
	assertContains(t, rr.Body.String(), "Delete Schedule", "Old digest", `action="/schedules/6/delete"`)

	rr = serve(h, authedRequest("POST", "/schedules/6/delete", url.Values{"name": {"Old digest"}}))
	if got := rr.Header().Get("Location"); got != "/schedules?flash=deleted" {
		t.Errorf("Location: got %q", got)
	}
}

func TestApiMessage(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"error":"schedule not found"}`, "schedule not found"},
		{`{"error":"validation failed","fields":{"name":"is required","cron":"bad"}}`, "cron bad; name is required"},
		{"upstream down", "upstream down"},
		{"", "unexpected API response"},
	}
	for _, tt := range tests {
		if got := apiMessage([]byte(tt.in)); got != tt.want {
			t.Errorf("apiMessage(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSafeNext(t *testing.T) {
	tests := map[string]string{
		"":                    "/dashboard",
		"/reporters":          "/reporters",
		"//evil.example.com":  "/dashboard",
		"https://example.com": "/dashboard",
	}
	for in, want := range tests {
		if got := safeNext(in); got != want {
			t.Errorf("safeNext(%q) = %q, want %q", in, got, want)
		}
	}
}
