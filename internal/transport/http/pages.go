package http

import (
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/cwrk-planet/meeting-service/internal/domain"
	httpmw "github.com/cwrk-planet/meeting-service/internal/transport/http/middleware"
	"github.com/cwrk-planet/meeting-service/pkg/logger"

	"github.com/go-chi/chi/v5"
)

//go:embed templates/*.html
var templateFS embed.FS

func parsePages() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}

type homePage struct {
	User *domain.Participant
}

type meetingPage struct {
	User      domain.Participant
	GHID      int64
	IsChair   bool
	MeetingID string
}

// GET /
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	if p, ok := httpmw.ParticipantFromCtx(r.Context()); ok {
		p = p.Public()
		h.render(w, r, http.StatusOK, "new.html", homePage{User: &p})
		return
	}
	h.render(w, r, http.StatusOK, "home.html", homePage{})
}

// GET /meeting/{id}
func (h *Handler) MeetingPage(w http.ResponseWriter, r *http.Request) {
	viewer, _ := httpmw.ParticipantFromCtx(r.Context())
	id := chi.URLParam(r, "id")

	m, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("Meeting not found."))
			return
		}
		logger.FromContext(r.Context()).Error("load meeting page", "meeting_id", id, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.render(w, r, http.StatusOK, "meeting.html", meetingPage{
		User:      viewer.Public(),
		GHID:      viewer.GHID,
		IsChair:   domain.IsChair(m, viewer.GHID),
		MeetingID: m.ID,
	})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.pages.ExecuteTemplate(w, name, data); err != nil {
		logger.FromContext(r.Context()).Error("render page", "page", name, "err", err)
	}
}
