package schedules

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func runCmd(t *testing.T, handler http.HandlerFunc, build func() *cobra.Command, args ...string) (string, error) {
	t.Helper()
	srv := httptest.NewServer(handler)
	defer srv.Close()
	t.Setenv("REPORTHUB_API_URL", srv.URL)
	t.Setenv("REPORTHUB_TOKEN", "test-token")

	cmd := build()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestListSchedules_TableOutput(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/schedules" || r.URL.Query().Get("limit") != "50" {
			t.Errorf("unexpected request: %s", r.URL)
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("missing token: %q", r.Header.Get("Authorization"))
		}
		io.WriteString(w, `{"items":[
			{"id":1,"name":"Morning digest","cron":"0 8 * * *","timezone":"UTC","description":"Runs at 08:00 every day in UTC","next_runs":["2026-10-16T08:00:00Z"]},
			{"id":2,"name":"Standup","cron":"30 9 * * MON,WED","timezone":"Europe/Paris","description":"Runs at 09:30 on Monday, Wednesday in Europe/Paris"}
		],"total":2,"limit":50,"offset":0}`)
	}

	out, err := runCmd(t, handler, listSchedulesCmd)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, want := range []string{"Morning digest", "Standup", "30 9 * * MON,WED", "2026-10-16 08:00 UTC", "2 of 2 schedules"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestListSchedules_JSONOutput(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"items":[{"id":1,"name":"Morning digest","cron":"0 8 * * *","timezone":"UTC"}],"total":1}`)
	}

	out, err := runCmd(t, handler, listSchedulesCmd, "--json")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, `"name": "Morning digest"`) {
		t.Fatalf("expected JSON output, got: %s", out)
	}
}

func TestCreateSchedule_BuilderFields(t *testing.T) {
	var sent map[string]interface{}
	handler := func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/schedules" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL)
		}
		_ = json.NewDecoder(r.Body).Decode(&sent)
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id":4,"name":"Standup","cron":"30 9 * * MON,FRI","description":"Runs at 09:30 on Monday, Friday in UTC"}`)
	}

	out, err := runCmd(t, handler, createScheduleCmd, "--name", "Standup", "--hour", "9", "--minute", "30", "--days", "MON,FRI")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sent["hour"] != "9" || sent["minute"] != "30" || sent["timezone"] != "UTC" {
		t.Errorf("unexpected payload: %v", sent)
	}
	if days, _ := sent["days"].([]interface{}); len(days) != 2 {
		t.Errorf("days: got %v", sent["days"])
	}
	if _, ok := sent["cron"]; ok {
		t.Error("cron sent alongside builder fields")
	}
	if !strings.Contains(out, "Created schedule 4") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestCreateSchedule_ValidationError(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":"validation failed","fields":{"cron":"expected 5 fields, got 3"}}`)
	}

	_, err := runCmd(t, handler, createScheduleCmd, "--name", "Broken", "--cron", "0 8 *")
	if err == nil || !strings.Contains(err.Error(), "cron: expected 5 fields, got 3") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateSchedule_RequiresName(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		t.Error("API should not be called")
	}
	if _, err := runCmd(t, handler, createScheduleCmd); err == nil {
		t.Fatal("expected error without --name")
	}
}

func TestDeleteSchedule(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/schedules/9" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL)
		}
		w.WriteHeader(http.StatusNoContent)
	}
	out, err := runCmd(t, handler, deleteScheduleCmd, "9")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !strings.Contains(out, "Schedule 9 deleted") {
		t.Errorf("unexpected output: %s", out)
	}
}
