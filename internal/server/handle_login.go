package server

import (
	"net/http"
	"time"
)

type HostLoginRequest struct {
	Password string `json:"password"`
}

func handleHostLogin(auth *hostAuth) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !auth.enabled() {
			writeError(w, http.StatusConflict, "host login is not configured")
			return
		}

		var req HostLoginRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if !auth.check(req.Password) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		sessionID, err := auth.store.CreateSession(r.Context(), roleHost)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     hostCookieName,
			Value:    sessionID,
			Path:     "/",
			MaxAge:   int(7 * 24 * time.Hour / time.Second),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

func handleHostLogout(auth *hostAuth) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(hostCookieName); err == nil && cookie.Value != "" {
			auth.store.DeleteSession(r.Context(), cookie.Value)
		}
		http.SetCookie(w, &http.Cookie{
			Name:     hostCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}
