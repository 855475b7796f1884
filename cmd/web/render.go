package main

import (
	"html/template"
	"log/slog"
	"net/http"
)

// toast is the banner shown at the top of a page.
type toast struct {
	Kind    string // "error" or "success"
	Title   string
	Message string
}

func errorToast(title, msg string) *toast {
	return &toast{Kind: "error", Title: title, Message: msg}
}

// flashes are the toasts a redirect can ask for with ?flash=key.
var flashes = map[string]toast{
	"saved":         {Kind: "success", Title: "Saved", Message: "Your changes were saved."},
	"deleted":       {Kind: "success", Title: "Deleted", Message: "The item was removed."},
	"test-ok":       {Kind: "success", Title: "Test Delivered", Message: "The channel accepted the test message."},
	"test-failed":   {Kind: "error", Title: "Test Failed", Message: "The channel did not accept the test message."},
	"run-succeeded": {Kind: "success", Title: "Run Finished", Message: "The report was delivered to every channel."},
	"run-failed":    {Kind: "error", Title: "Run Failed", Message: "At least one channel did not receive the report."},
}

func flashToast(r *http.Request) *toast {
	t, ok := flashes[r.URL.Query().Get("flash")]
	if !ok {
		return nil
	}
	return &t
}

// crumb is one breadcrumb link; the last crumb has no URL.
type crumb struct {
	Label string
	URL   string
}

// pageData starts the template data for a page in the given sidebar section.
// Breadcrumbs always start at Home.
func pageData(section string, crumbs ...crumb) map[string]interface{} {
	return map[string]interface{}{
		"Section": section,
		"Crumbs":  append([]crumb{{Label: "Home", URL: "/dashboard"}}, crumbs...),
	}
}

var templateFuncs = template.FuncMap{
	"eq": func(a, b interface{}) bool { return a == b },
}

func renderTemplate(w http.ResponseWriter, name string, data interface{}) {
	content, err := assetsFS.ReadFile("templates/" + name)
	if err != nil {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if name == "login.html" {
		t := template.Must(template.New("").Funcs(templateFuncs).Parse(string(content)))
		if err := t.ExecuteTemplate(w, "login", data); err != nil {
			slog.Error("template execute", "template", name, "error", err)
		}
		return
	}

	layout, _ := assetsFS.ReadFile("templates/layout.html")
	t := template.Must(template.New("").Funcs(templateFuncs).Parse(string(layout)))
	t = template.Must(t.New("").Parse(string(content)))
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		slog.Error("template execute", "template", name, "error", err)
	}
}
