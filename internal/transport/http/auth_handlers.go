package http

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/cwrk-planet/meeting-service/internal/idgen"
	"github.com/cwrk-planet/meeting-service/pkg/logger"
)

const stateCookie = "oauth_state"

// GET /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/auth/github", http.StatusFound)
}

// GET /auth/github
func (h *Handler) GitHubLogin(w http.ResponseWriter, r *http.Request) {
	state, err := idgen.Generate()
	if err != nil {
		writeErr(r.Context(), w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth/github",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.oauth.AuthCodeURL(state), http.StatusFound)
}

// GET /auth/github/callback
func (h *Handler) GitHubCallback(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	c, err := r.Cookie(stateCookie)
	state := r.URL.Query().Get("state")
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(c.Value), []byte(state)) != 1 {
		http.Error(w, "invalid oauth state", http.StatusBadRequest)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Path: "/auth/github", MaxAge: -1})

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing code", http.StatusBadRequest)
		return
	}

	tok, err := h.oauth.Exchange(r.Context(), code)
	if err != nil {
		log.Warn("github code exchange failed", "err", err)
		http.Error(w, "GitHub sign-in failed", http.StatusBadGateway)
		return
	}

	p, err := h.identity.Me(r.Context(), tok.AccessToken)
	if err != nil {
		log.Warn("github user lookup failed", "err", err)
		http.Error(w, "GitHub sign-in failed", http.StatusBadGateway)
		return
	}

	if err := h.sessions.Issue(w, p); err != nil {
		writeErr(r.Context(), w, err)
		return
	}
	log.Info("signed in", "ghid", p.GHID, "login", p.Username)
	http.Redirect(w, r, "/", http.StatusFound)
}

// GET /logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w, r)
	http.Redirect(w, r, "/", http.StatusFound)
}
