package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"time"
	_ "time/tzdata"

	"github.com/go-chi/chi/v5"
)

// requestWithChiURLParams returns a request with chi route context and URL params set.
func requestWithChiURLParams(method, path string, body []byte, params map[string]string) *http.Request {
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, path, bytes.NewReader(body))
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	return r
}

// fixedNow is Monday 2026-10-12 07:30 UTC.
func fixedNow() time.Time {
	return time.Date(2026, 10, 12, 7, 30, 0, 0, time.UTC)
}

var scheduleCols = []string{"id", "name", "cron", "timezone", "created_at", "updated_at"}

var channelCols = []string{"id", "name", "description", "type", "settings", "created_at", "updated_at"}

var reporterCols = []string{"id", "name", "description", "schedule_id", "enabled", "created_at", "updated_at", "channel_ids"}
