package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

var apiClient = &http.Client{Timeout: 15 * time.Second}

// apiDo sends one request to the API with the user's token and returns the
// body and status code.
func apiDo(method, apiBase, path, token string, body []byte) ([]byte, int, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, apiBase+path, rd)
	if err != nil {
		return nil, 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := apiClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return data, resp.StatusCode, nil
}

func apiGet(apiBase, path, token string) ([]byte, int, error) {
	return apiDo(http.MethodGet, apiBase, path, token, nil)
}

func apiPost(apiBase, path, token string, body []byte) ([]byte, int, error) {
	return apiDo(http.MethodPost, apiBase, path, token, body)
}

func apiPut(apiBase, path, token string, body []byte) ([]byte, int, error) {
	return apiDo(http.MethodPut, apiBase, path, token, body)
}

func apiDelete(apiBase, path, token string) ([]byte, int, error) {
	return apiDo(http.MethodDelete, apiBase, path, token, nil)
}

// apiErrorBody is the API's error envelope.
type apiErrorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// apiMessage turns an API error response into one line for a toast.
// Field errors are listed as "name is required; cron ...", sorted by field.
func apiMessage(data []byte) string {
	var e apiErrorBody
	if err := json.Unmarshal(data, &e); err != nil || (e.Error == "" && len(e.Fields) == 0) {
		s := strings.TrimSpace(string(data))
		if s == "" {
			return "unexpected API response"
		}
		return s
	}
	if len(e.Fields) == 0 {
		return e.Error
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return strings.Join(parts, "; ")
}

func tokenFrom(r *http.Request) string {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// listPage is the API's paginated list envelope.
type listPage[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}
