package http

import (
	"context"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/cwrk-planet/meeting-service/internal/domain"
	"github.com/cwrk-planet/meeting-service/internal/service"
	"github.com/cwrk-planet/meeting-service/internal/session"

	"golang.org/x/oauth2"
)

// Identity loads the GitHub user behind an access token.
type Identity interface {
	Me(ctx context.Context, token string) (domain.Participant, error)
}

type Handler struct {
	svc      *service.MeetingService
	sessions *session.Manager
	oauth    *oauth2.Config
	identity Identity
	pages    *template.Template
	secure   bool
}

func NewHandler(svc *service.MeetingService, sessions *session.Manager, oauth *oauth2.Config, identity Identity, secureCookies bool) *Handler {
	return &Handler{
		svc:      svc,
		sessions: sessions,
		oauth:    oauth,
		identity: identity,
		pages:    parsePages(),
		secure:   secureCookies,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write json response failed", slog.Any("err", err))
	}
}
