package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
)

// FocusState is the speaking focus of a meeting, derived from its current item and speaker.
type FocusState int

const (
	StateIdle FocusState = iota
	StatePresenting
	StateSpeaking
)

func (s FocusState) String() string {
	switch s {
	case StatePresenting:
		return "presenting"
	case StateSpeaking:
		return "speaking"
	default:
		return "idle"
	}
}

// Meeting is the aggregate root. All invariants are enforced by its methods and checked by Validate.
type Meeting struct {
	ID                  string              `json:"id"`
	Chairs              []Participant       `json:"chairs"`
	Agenda              []AgendaItem        `json:"agenda"`
	CurrentAgendaItemID *string             `json:"currentAgendaItemId"`
	CurrentSpeaker      *SpeakerQueueEntry  `json:"currentSpeaker"`
	QueuedSpeakers      []SpeakerQueueEntry `json:"queuedSpeakers"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewMeeting(id string, chairs []Participant, now time.Time) (*Meeting, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: empty meeting id", ErrInvariantViolation)
	}
	chairs = lo.UniqBy(chairs, func(p Participant) int64 { return p.GHID })
	if len(chairs) == 0 {
		return nil, ErrLastChair
	}

	return &Meeting{
		ID:             id,
		Chairs:         lo.Map(chairs, func(p Participant, _ int) Participant { return p.Public() }),
		Agenda:         []AgendaItem{},
		QueuedSpeakers: []SpeakerQueueEntry{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func (m *Meeting) State() FocusState {
	switch {
	case m.CurrentAgendaItemID == nil:
		return StateIdle
	case m.CurrentSpeaker != nil:
		return StateSpeaking
	default:
		return StatePresenting
	}
}

// CurrentAgendaItem returns the item the meeting is on, if any.
func (m *Meeting) CurrentAgendaItem() (AgendaItem, bool) {
	if m.CurrentAgendaItemID == nil {
		return AgendaItem{}, false
	}
	item, _, ok := lo.FindIndexOf(m.Agenda, func(it AgendaItem) bool { return it.ID == *m.CurrentAgendaItemID })
	return item, ok
}

// Clone returns a deep copy; transitions run on clones so a failed command never touches committed state.
func (m *Meeting) Clone() *Meeting {
	c := *m
	c.Chairs = append(make([]Participant, 0, len(m.Chairs)), m.Chairs...)
	c.Agenda = append(make([]AgendaItem, 0, len(m.Agenda)), m.Agenda...)
	c.QueuedSpeakers = append(make([]SpeakerQueueEntry, 0, len(m.QueuedSpeakers)), m.QueuedSpeakers...)
	if m.CurrentAgendaItemID != nil {
		id := *m.CurrentAgendaItemID
		c.CurrentAgendaItemID = &id
	}
	if m.CurrentSpeaker != nil {
		sp := *m.CurrentSpeaker
		c.CurrentSpeaker = &sp
	}
	return &c
}

// Validate checks the aggregate invariants.
func (m *Meeting) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("%w: empty meeting id", ErrInvariantViolation)
	}
	if len(m.Chairs) == 0 {
		return ErrLastChair
	}
	if len(lo.UniqBy(m.QueuedSpeakers, entryOwner)) != len(m.QueuedSpeakers) {
		return fmt.Errorf("%w: participant queued twice", ErrInvariantViolation)
	}
	if m.CurrentSpeaker != nil && m.queueIndex(m.CurrentSpeaker.Participant.GHID) >= 0 {
		return fmt.Errorf("%w: current speaker is also queued", ErrInvariantViolation)
	}
	if m.CurrentAgendaItemID != nil && m.agendaIndex(*m.CurrentAgendaItemID) < 0 {
		return fmt.Errorf("%w: current agenda item %q is not on the agenda", ErrInvariantViolation, *m.CurrentAgendaItemID)
	}
	if m.CurrentAgendaItemID == nil && (m.CurrentSpeaker != nil || len(m.QueuedSpeakers) > 0) {
		return fmt.Errorf("%w: speakers without a current agenda item", ErrInvariantViolation)
	}
	return nil
}

func (m *Meeting) StartAgendaItem(itemID string, now time.Time) error {
	if m.agendaIndex(itemID) < 0 {
		return fmt.Errorf("%w: agenda item %q", ErrInvalidReference, itemID)
	}
	id := itemID
	m.CurrentAgendaItemID = &id
	m.CurrentSpeaker = nil
	m.QueuedSpeakers = []SpeakerQueueEntry{}
	m.touch(now)
	return nil
}

func (m *Meeting) EnqueueSpeaker(entry SpeakerQueueEntry, now time.Time) error {
	if m.State() == StateIdle {
		return ErrNoCurrentItem
	}
	ghid := entry.Participant.GHID
	if m.CurrentSpeaker != nil && m.CurrentSpeaker.Participant.GHID == ghid {
		return fmt.Errorf("%w: %s is already speaking", ErrDuplicateEntry, entry.Participant.Username)
	}
	if m.queueIndex(ghid) >= 0 {
		return fmt.Errorf("%w: %s is already queued", ErrDuplicateEntry, entry.Participant.Username)
	}
	m.QueuedSpeakers = append(m.QueuedSpeakers, entry)
	m.touch(now)
	return nil
}

func (m *Meeting) DequeueSpeaker(ghid int64, now time.Time) (SpeakerQueueEntry, error) {
	idx := m.queueIndex(ghid)
	if idx < 0 {
		return SpeakerQueueEntry{}, ErrEntryNotFound
	}
	entry := m.QueuedSpeakers[idx]
	m.QueuedSpeakers = append(m.QueuedSpeakers[:idx:idx], m.QueuedSpeakers[idx+1:]...)
	m.touch(now)
	return entry, nil
}

// AdvanceToNextSpeaker gives the floor to the head of the queue.
func (m *Meeting) AdvanceToNextSpeaker(now time.Time) (SpeakerQueueEntry, error) {
	if len(m.QueuedSpeakers) == 0 {
		return SpeakerQueueEntry{}, ErrEmptyQueue
	}
	next := m.QueuedSpeakers[0]
	m.QueuedSpeakers = append([]SpeakerQueueEntry{}, m.QueuedSpeakers[1:]...)
	m.CurrentSpeaker = &next
	m.touch(now)
	return next, nil
}

func (m *Meeting) YieldFloor(now time.Time) error {
	if m.State() != StateSpeaking {
		return ErrNoSpeaker
	}
	m.CurrentSpeaker = nil
	m.touch(now)
	return nil
}

func (m *Meeting) AddChair(p Participant, now time.Time) error {
	if m.IsChair(p.GHID) {
		return fmt.Errorf("%w: %s is already a chair", ErrDuplicateEntry, p.Username)
	}
	m.Chairs = append(m.Chairs, p.Public())
	m.touch(now)
	return nil
}

func (m *Meeting) RemoveChair(ghid int64, now time.Time) error {
	if !m.IsChair(ghid) {
		return ErrChairNotFound
	}
	if len(m.Chairs) == 1 {
		return ErrLastChair
	}
	m.Chairs = lo.Reject(m.Chairs, func(p Participant, _ int) bool { return p.GHID == ghid })
	m.touch(now)
	return nil
}

func (m *Meeting) AddAgendaItem(item AgendaItem, now time.Time) error {
	if item.ID == "" || item.Title == "" {
		return fmt.Errorf("%w: agenda item needs an id and a title", ErrInvariantViolation)
	}
	if m.agendaIndex(item.ID) >= 0 {
		return fmt.Errorf("%w: agenda item %q", ErrDuplicateEntry, item.ID)
	}
	m.Agenda = append(m.Agenda, item)
	m.touch(now)
	return nil
}

func (m *Meeting) RemoveAgendaItem(itemID string, now time.Time) error {
	idx := m.agendaIndex(itemID)
	if idx < 0 {
		return fmt.Errorf("%w: agenda item %q", ErrInvalidReference, itemID)
	}
	if m.CurrentAgendaItemID != nil && *m.CurrentAgendaItemID == itemID {
		return fmt.Errorf("%w: cannot remove the current agenda item", ErrInvariantViolation)
	}
	m.Agenda = append(m.Agenda[:idx:idx], m.Agenda[idx+1:]...)
	m.touch(now)
	return nil
}

// MoveAgendaItem moves an item so that it ends up at index to.
func (m *Meeting) MoveAgendaItem(itemID string, to int, now time.Time) error {
	from := m.agendaIndex(itemID)
	if from < 0 {
		return fmt.Errorf("%w: agenda item %q", ErrInvalidReference, itemID)
	}
	if to < 0 || to >= len(m.Agenda) {
		return fmt.Errorf("%w: position %d out of range", ErrInvalidReference, to)
	}
	item := m.Agenda[from]
	rest := append(m.Agenda[:from:from], m.Agenda[from+1:]...)
	agenda := make([]AgendaItem, 0, len(m.Agenda))
	agenda = append(agenda, rest[:to]...)
	agenda = append(agenda, item)
	agenda = append(agenda, rest[to:]...)
	m.Agenda = agenda
	m.touch(now)
	return nil
}

func (m *Meeting) IsChair(ghid int64) bool {
	return lo.ContainsBy(m.Chairs, func(p Participant) bool { return p.GHID == ghid })
}

func (m *Meeting) agendaIndex(itemID string) int {
	_, idx, ok := lo.FindIndexOf(m.Agenda, func(it AgendaItem) bool { return it.ID == itemID })
	if !ok {
		return -1
	}
	return idx
}

func (m *Meeting) queueIndex(ghid int64) int {
	_, idx, ok := lo.FindIndexOf(m.QueuedSpeakers, func(e SpeakerQueueEntry) bool { return e.Participant.GHID == ghid })
	if !ok {
		return -1
	}
	return idx
}

func (m *Meeting) touch(now time.Time) {
	m.UpdatedAt = now
}

func entryOwner(e SpeakerQueueEntry) int64 { return e.Participant.GHID }
