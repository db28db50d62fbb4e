package http

import (
	"context"
	"crypto/subtle"
	"net/http"

	"bookings/internal/dashboard"
)

const (
	tokenCookie = "dashboard_token"
	tokenQuery  = "token"
)

// tokenGuard admits requests carrying DASHBOARD_TOKEN as a cookie or a
// token query value. An empty token admits everyone.
type tokenGuard struct {
	token string
}

func (g tokenGuard) enabled() bool { return g.token != "" }

func (g tokenGuard) check(r *http.Request) bool {
	if !g.enabled() {
		return true
	}
	if g.match(r.URL.Query().Get(tokenQuery)) {
		return true
	}
	c, err := r.Cookie(tokenCookie)
	return err == nil && g.match(c.Value)
}

func (g tokenGuard) match(candidate string) bool {
	return candidate != "" && subtle.ConstantTimeCompare([]byte(candidate), []byte(g.token)) == 1
}

// remember stores a query token as a session cookie so later partial
// requests need not carry it.
func (g tokenGuard) remember(w http.ResponseWriter, r *http.Request) {
	if !g.enabled() || !g.match(r.URL.Query().Get(tokenQuery)) {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    g.token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
}

// pageGuard adapts the check of r to the dashboard's page guard.
func (g tokenGuard) pageGuard(r *http.Request) dashboard.PageGuard {
	return dashboard.PageGuardFunc(func(context.Context) bool { return g.check(r) })
}

func (g tokenGuard) require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.check(r) {
			UnauthorizedError("غير مصرح بالدخول").Write(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}
