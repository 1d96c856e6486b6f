package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/cwrk-planet/meeting-service/internal/domain"
	httpmw "github.com/cwrk-planet/meeting-service/internal/transport/http/middleware"

	"github.com/go-chi/chi/v5"
)

func actorFrom(r *http.Request) domain.Participant {
	p, _ := httpmw.ParticipantFromCtx(r.Context())
	return p
}

// POST /meetings
func (h *Handler) CreateMeeting(w http.ResponseWriter, r *http.Request) {
	var req CreateMeetingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(r.Context(), w, err)
		return
	}
	m, err := h.svc.Create(r.Context(), req.Chairs, actorFrom(r))
	if err != nil {
		writeErr(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// GET /api/meetings/{id}
func (h *Handler) GetMeeting(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.View(r.Context(), chi.URLParam(r, "id"), actorFrom(r))
	if err != nil {
		writeErr(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// POST /api/meetings/{id}/agenda
func (h *Handler) AddAgendaItem(w http.ResponseWriter, r *http.Request) {
	var req AddAgendaItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(r.Context(), w, err)
		return
	}
	actor := actorFrom(r)
	owner := actor
	if req.Owner != "" && req.Owner != actor.Username {
		p, err := h.svc.ResolveParticipant(r.Context(), req.Owner, actor)
		if err != nil {
			writeErr(r.Context(), w, err)
			return
		}
		owner = p
	}
	item := domain.NewAgendaItem(req.Name, req.Description, owner, req.Timebox)
	h.execute(w, r, domain.AddAgendaItem{Item: item}, http.StatusCreated)
}

// DELETE /api/meetings/{id}/agenda/{itemId}
func (h *Handler) RemoveAgendaItem(w http.ResponseWriter, r *http.Request) {
	h.execute(w, r, domain.RemoveAgendaItem{ItemID: chi.URLParam(r, "itemId")}, http.StatusOK)
}

// POST /api/meetings/{id}/agenda/{itemId}/move
func (h *Handler) MoveAgendaItem(w http.ResponseWriter, r *http.Request) {
	var req MoveAgendaItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(r.Context(), w, err)
		return
	}
	h.execute(w, r, domain.MoveAgendaItem{ItemID: chi.URLParam(r, "itemId"), To: *req.To}, http.StatusOK)
}

// POST /api/meetings/{id}/agenda/{itemId}/start
func (h *Handler) StartAgendaItem(w http.ResponseWriter, r *http.Request) {
	h.execute(w, r, domain.StartAgendaItem{ItemID: chi.URLParam(r, "itemId")}, http.StatusOK)
}

// POST /api/meetings/{id}/queue
func (h *Handler) EnqueueSpeaker(w http.ResponseWriter, r *http.Request) {
	var req EnqueueRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(r.Context(), w, err)
		return
	}
	actor := actorFrom(r)
	speaker := actor.Public()
	if req.Username != "" && req.Username != actor.Username {
		p, err := h.svc.ResolveParticipant(r.Context(), req.Username, actor)
		if err != nil {
			writeErr(r.Context(), w, err)
			return
		}
		speaker = p
	}
	h.execute(w, r, domain.EnqueueSpeaker{Participant: speaker, Topic: req.Topic}, http.StatusCreated)
}

// DELETE /api/meetings/{id}/queue/{ghid}
func (h *Handler) DequeueSpeaker(w http.ResponseWriter, r *http.Request) {
	ghid, err := ghidParam(r)
	if err != nil {
		writeErr(r.Context(), w, err)
		return
	}
	h.execute(w, r, domain.DequeueSpeaker{GHID: ghid}, http.StatusOK)
}

// POST /api/meetings/{id}/queue/next
func (h *Handler) AdvanceSpeaker(w http.ResponseWriter, r *http.Request) {
	h.execute(w, r, domain.AdvanceToNextSpeaker{}, http.StatusOK)
}

// POST /api/meetings/{id}/floor/yield
func (h *Handler) YieldFloor(w http.ResponseWriter, r *http.Request) {
	h.execute(w, r, domain.YieldFloor{}, http.StatusOK)
}

// POST /api/meetings/{id}/chairs
func (h *Handler) AddChair(w http.ResponseWriter, r *http.Request) {
	var req AddChairRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(r.Context(), w, err)
		return
	}
	p, err := h.svc.ResolveParticipant(r.Context(), req.Username, actorFrom(r))
	if err != nil {
		writeErr(r.Context(), w, err)
		return
	}
	h.execute(w, r, domain.AddChair{Participant: p}, http.StatusCreated)
}

// DELETE /api/meetings/{id}/chairs/{ghid}
func (h *Handler) RemoveChair(w http.ResponseWriter, r *http.Request) {
	ghid, err := ghidParam(r)
	if err != nil {
		writeErr(r.Context(), w, err)
		return
	}
	h.execute(w, r, domain.RemoveChair{GHID: ghid}, http.StatusOK)
}

func (h *Handler) execute(w http.ResponseWriter, r *http.Request, cmd domain.Command, status int) {
	actor := actorFrom(r)
	m, err := h.svc.Execute(r.Context(), chi.URLParam(r, "id"), cmd, actor)
	if err != nil {
		writeErr(r.Context(), w, err)
		return
	}
	writeJSON(w, status, h.svc.ViewOf(m, actor))
}

func ghidParam(r *http.Request) (int64, error) {
	ghid, err := strconv.ParseInt(chi.URLParam(r, "ghid"), 10, 64)
	if err != nil || ghid <= 0 {
		return 0, fmt.Errorf("%w: invalid ghid", errBadRequest)
	}
	return ghid, nil
}
