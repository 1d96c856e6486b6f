package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cwrk-planet/meeting-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier is the part of *pgxpool.Pool the repository needs.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// MeetingRepository stores each meeting as one jsonb document.
type MeetingRepository struct {
	q querier
}

func NewMeetingRepository(q querier) *MeetingRepository {
	return &MeetingRepository{q: q}
}

// EnsureSchema creates the meetings table if it is missing.
func (r *MeetingRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.q.Exec(ctx, querySchema)
	return err
}

func (r *MeetingRepository) Get(ctx context.Context, id string) (*domain.Meeting, error) {
	var doc []byte
	if err := r.q.QueryRow(ctx, queryGetMeeting, id).Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMeetingNotFound
		}
		return nil, mapPgError(err)
	}

	var m domain.Meeting
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, fmt.Errorf("decode meeting %s: %w", id, err)
	}
	return &m, nil
}

func (r *MeetingRepository) Create(ctx context.Context, m *domain.Meeting) error {
	doc, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode meeting %s: %w", m.ID, err)
	}
	if _, err := r.q.Exec(ctx, queryCreateMeeting, m.ID, doc, m.Version, m.CreatedAt, m.UpdatedAt); err != nil {
		return mapPgError(err)
	}
	return nil
}

func (r *MeetingRepository) Update(ctx context.Context, m *domain.Meeting) error {
	doc, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode meeting %s: %w", m.ID, err)
	}
	tag, err := r.q.Exec(ctx, queryUpdateMeeting, m.ID, doc, m.Version, m.UpdatedAt)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMeetingNotFound
	}
	return nil
}

func (r *MeetingRepository) Ping(ctx context.Context) error {
	return r.q.Ping(ctx)
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 23505 - unique violation
		if pgErr.Code == "23505" {
			return fmt.Errorf("%s: %w", pgErr.ConstraintName, domain.ErrAlreadyExists)
		}
	}
	return err
}
