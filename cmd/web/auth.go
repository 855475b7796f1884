package main

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// requireAuth redirects to /login when the cookie is missing or the API
// rejects the token.
func (a *app) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := tokenFrom(r)
		if tok == "" {
			http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.Path), http.StatusFound)
			return
		}
		_, status, _ := apiGet(a.api, "/me", tok)
		if status == http.StatusUnauthorized {
			clearAuthAndRedirectToLogin(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func loginForm(w http.ResponseWriter, r *http.Request) {
	if tokenFrom(r) != "" {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	renderTemplate(w, "login.html", map[string]interface{}{"Next": r.URL.Query().Get("next")})
}

func (a *app) loginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	next := safeNext(r.FormValue("next"))
	username := strings.TrimSpace(r.FormValue("username"))
	loginError := func(msg string) {
		renderTemplate(w, "login.html", map[string]interface{}{
			"Next":     next,
			"Username": username,
			"Toast":    errorToast("Sign-in Failed", msg),
		})
	}
	if username == "" {
		loginError("Username is required")
		return
	}

	body, _ := json.Marshal(map[string]string{"username": username, "password": r.FormValue("password")})
	data, status, err := apiPost(a.api, "/auth/login", "", body)
	if err != nil {
		loginError("Cannot reach API: " + err.Error())
		return
	}
	if status != http.StatusOK {
		loginError(apiMessage(data))
		return
	}

	var out struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	if err := json.Unmarshal(data, &out); err != nil || out.Token == "" {
		loginError("Invalid login response")
		return
	}

	maxAge := 24 * 3600
	if ttl := time.Until(out.ExpiresAt); ttl > 0 {
		maxAge = int(ttl.Seconds())
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    out.Token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, next, http.StatusFound)
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/dashboard"
	}
	return next
}

func logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: cookieName, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/login", http.StatusFound)
}

// clearAuthAndRedirectToLogin drops the token cookie and sends the user to
// sign in again, returning to the current page afterwards.
func clearAuthAndRedirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: cookieName, Value: "", Path: "/", MaxAge: -1})
	next := r.URL.Path
	if r.URL.RawQuery != "" {
		next += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, "/login?next="+url.QueryEscape(next), http.StatusFound)
}
