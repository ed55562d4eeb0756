package server

import (
	"fmt"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

const hostCookieName = "host_session"

// hostAuth guards mutating routes behind a password when one is
// configured. With no password the guard is a no-op and the tool runs
// open, which is the common single-living-room deployment.
type hostAuth struct {
	hash  []byte
	store Store
}

func newHostAuth(store Store, password string) (*hostAuth, error) {
	a := &hostAuth{store: store}
	if password == "" {
		return a, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing host password: %w", err)
	}
	a.hash = hash
	return a, nil
}

func (a *hostAuth) enabled() bool { return a.hash != nil }

func (a *hostAuth) check(password string) bool {
	return bcrypt.CompareHashAndPassword(a.hash, []byte(password)) == nil
}

func (a *hostAuth) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.enabled() {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(hostCookieName)
		if err != nil || cookie.Value == "" {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		role, err := a.store.SessionRole(r.Context(), cookie.Value)
		if err != nil || role != roleHost {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}
