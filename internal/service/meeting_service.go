package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cwrk-planet/meeting-service/internal/domain"
	"github.com/cwrk-planet/meeting-service/internal/idgen"
	"github.com/cwrk-planet/meeting-service/internal/repository"

	"github.com/samber/lo"
)

//go:generate mockgen -destination=../mocks/mock_directory.go -package=mocks . Directory

// Directory resolves GitHub usernames using the caller's access token.
type Directory interface {
	ResolveUsernames(ctx context.Context, names []string, token string) ([]domain.Participant, error)
}

var ErrChairsRequired = errors.New("Must specify chairs")

// MeetingView is a meeting as one viewer sees it.
type MeetingView struct {
	Meeting *domain.Meeting `json:"meeting"`
	IsChair bool            `json:"isChair"`
}

type MeetingService struct {
	store repository.MeetingStore
	dir   Directory
	coord *Coordinator

	newID func() (string, error)
	now   func() time.Time
}

func NewMeetingService(store repository.MeetingStore, dir Directory, coord *Coordinator) *MeetingService {
	return &MeetingService{
		store: store,
		dir:   dir,
		coord: coord,
		newID: idgen.Generate,
		now:   time.Now,
	}
}

// ParseChairs splits a comma separated username list, dropping blanks, leading @ and duplicates.
func ParseChairs(csv string) []string {
	names := lo.Map(strings.Split(csv, ","), func(s string, _ int) string {
		return strings.TrimPrefix(strings.TrimSpace(s), "@")
	})
	names = lo.Compact(names)
	return lo.UniqBy(names, strings.ToLower)
}

func (s *MeetingService) Create(ctx context.Context, chairsCSV string, actor domain.Participant) (*domain.Meeting, error) {
	names := ParseChairs(chairsCSV)
	if len(names) == 0 {
		return nil, ErrChairsRequired
	}

	chairs, err := s.dir.ResolveUsernames(ctx, names, actor.AccessToken)
	if err != nil {
		return nil, &domain.DirectoryError{Err: err}
	}

	id, err := s.newID()
	if err != nil {
		return nil, fmt.Errorf("generate meeting id: %w", err)
	}

	m, err := domain.NewMeeting(id, chairs, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MeetingService) Get(ctx context.Context, id string) (*domain.Meeting, error) {
	if !idgen.Valid(id) {
		return nil, domain.ErrMeetingNotFound
	}
	return s.store.Get(ctx, id)
}

func (s *MeetingService) View(ctx context.Context, id string, viewer domain.Participant) (MeetingView, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return MeetingView{}, err
	}
	return s.ViewOf(m, viewer), nil
}

// ViewOf projects an already loaded snapshot for viewer.
func (s *MeetingService) ViewOf(m *domain.Meeting, viewer domain.Participant) MeetingView {
	return MeetingView{
		Meeting: domain.ViewFor(m, viewer, s.coord.Policy()),
		IsChair: domain.IsChair(m, viewer.GHID),
	}
}

// ResolveParticipant looks up one username; used by chairs acting on behalf of others.
func (s *MeetingService) ResolveParticipant(ctx context.Context, username string, actor domain.Participant) (domain.Participant, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return domain.Participant{}, &domain.DirectoryError{Err: errors.New("username is required")}
	}
	ps, err := s.dir.ResolveUsernames(ctx, []string{username}, actor.AccessToken)
	if err != nil {
		return domain.Participant{}, &domain.DirectoryError{Err: err}
	}
	if len(ps) != 1 {
		return domain.Participant{}, &domain.DirectoryError{Err: fmt.Errorf("could not resolve %q", username)}
	}
	return ps[0], nil
}

// Execute runs cmd on the meeting through the coordinator.
func (s *MeetingService) Execute(ctx context.Context, id string, cmd domain.Command, actor domain.Participant) (*domain.Meeting, error) {
	if !idgen.Valid(id) {
		return nil, domain.ErrMeetingNotFound
	}
	return s.coord.Execute(ctx, id, cmd, actor)
}
