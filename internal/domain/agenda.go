package domain

import (
	"strings"

	"github.com/google/uuid"
)

type AgendaItem struct {
	ID             string      `json:"id"`
	Title          string      `json:"name"`
	Description    string      `json:"description,omitempty"`
	Owner          Participant `json:"owner"`
	TimeboxMinutes int         `json:"timebox,omitempty"`
}

func NewAgendaItem(title, description string, owner Participant, timebox int) AgendaItem {
	if timebox < 0 {
		timebox = 0
	}
	return AgendaItem{
		ID:             uuid.NewString(),
		Title:          strings.TrimSpace(title),
		Description:    strings.TrimSpace(description),
		Owner:          owner.Public(),
		TimeboxMinutes: timebox,
	}
}
