package main

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// resourceKind describes a deletable dashboard resource.
type resourceKind struct {
	Section string // sidebar section and URL prefix
	Label   string
}

var (
	scheduleKind = resourceKind{Section: "schedules", Label: "Schedule"}
	channelKind  = resourceKind{Section: "channels", Label: "Channel"}
	reporterKind = resourceKind{Section: "reporters", Label: "Reporter"}
)

func (k resourceKind) listURL() string { return "/" + k.Section }

func (a *app) deleteData(k resourceKind, id, name string) map[string]interface{} {
	data := pageData(k.Section,
		crumb{Label: k.Label + "s", URL: k.listURL()},
		crumb{Label: name, URL: k.listURL() + "/" + id + "/edit"},
		crumb{Label: "Delete"},
	)
	data["Kind"] = k.Label
	data["Name"] = name
	data["FormAction"] = k.listURL() + "/" + id + "/delete"
	data["CancelURL"] = k.listURL()
	return data
}

// deleteConfirm asks before deleting; the item is loaded to show its name.
func (a *app) deleteConfirm(k resourceKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var item struct {
			Name string `json:"name"`
		}
		err := a.getJSON(tokenFrom(r), k.listURL()+"/"+id, &item)
		if errors.Is(err, errSessionExpired) {
			clearAuthAndRedirectToLogin(w, r)
			return
		}
		if err != nil {
			http.Redirect(w, r, k.listURL(), http.StatusFound)
			return
		}
		renderTemplate(w, "delete.html", a.deleteData(k, id, item.Name))
	}
}

func (a *app) deleteSubmit(k resourceKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		data, status, err := apiDelete(a.api, k.listURL()+"/"+id, tokenFrom(r))
		if err != nil {
			page := a.deleteData(k, id, r.FormValue("name"))
			page["Toast"] = errorToast("API Unavailable", err.Error())
			renderTemplate(w, "delete.html", page)
			return
		}
		switch status {
		case http.StatusUnauthorized:
			clearAuthAndRedirectToLogin(w, r)
		case http.StatusNoContent, http.StatusOK, http.StatusNotFound:
			http.Redirect(w, r, k.listURL()+"?flash=deleted", http.StatusFound)
		default:
			page := a.deleteData(k, id, r.FormValue("name"))
			page["Toast"] = errorToast("Delete Failed", apiMessage(data))
			renderTemplate(w, "delete.html", page)
		}
	}
}
