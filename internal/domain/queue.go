package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SpeakerQueueEntry is one participant waiting for, or holding, the floor.
type SpeakerQueueEntry struct {
	ID          string      `json:"id"`
	Participant Participant `json:"user"`
	Topic       string      `json:"topic,omitempty"`
	EnqueuedAt  time.Time   `json:"enqueuedAt"`
}

func NewSpeakerQueueEntry(p Participant, topic string, now time.Time) SpeakerQueueEntry {
	return SpeakerQueueEntry{
		ID:          uuid.NewString(),
		Participant: p.Public(),
		Topic:       strings.TrimSpace(topic),
		EnqueuedAt:  now,
	}
}
