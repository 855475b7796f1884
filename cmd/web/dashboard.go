package main

import (
	"errors"
	"net/http"

	"github.com/crucial707/reporthub/internal/models"
)

type dashboardCount struct {
	Label string
	URL   string
	Total int
}

func (a *app) dashboard(w http.ResponseWriter, r *http.Request) {
	tok := tokenFrom(r)
	data := pageData("dashboard")

	counts := []dashboardCount{
		{Label: "Schedules", URL: "/schedules"},
		{Label: "Channels", URL: "/channels"},
		{Label: "Reporters", URL: "/reporters"},
	}
	for i := range counts {
		var page listPage[struct{}]
		err := a.getJSON(tok, counts[i].URL+"?limit=1", &page)
		if errors.Is(err, errSessionExpired) {
			clearAuthAndRedirectToLogin(w, r)
			return
		}
		if err != nil {
			data["Toast"] = errorToast("API Error", err.Error())
			renderTemplate(w, "dashboard.html", data)
			return
		}
		counts[i].Total = page.Total
	}
	data["Counts"] = counts

	var recent []models.AuditEntry
	if err := a.getJSON(tok, "/audit?limit=10", &recent); err == nil {
		data["Activity"] = recent
	}
	renderTemplate(w, "dashboard.html", data)
}
