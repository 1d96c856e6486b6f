package repository

import (
	"context"

	"github.com/cwrk-planet/meeting-service/internal/domain"
)

// MeetingStore is durable keyed storage for meeting documents, keyed by Meeting.ID.
//
// Get returns domain.ErrMeetingNotFound for unknown ids and a copy the caller owns.
// Create returns domain.ErrAlreadyExists if the id is taken and never overwrites.
// Update overwrites unconditionally; the coordinator is the only writer.
type MeetingStore interface {
	Get(ctx context.Context, id string) (*domain.Meeting, error)
	Create(ctx context.Context, m *domain.Meeting) error
	Update(ctx context.Context, m *domain.Meeting) error
	Ping(ctx context.Context) error
}
