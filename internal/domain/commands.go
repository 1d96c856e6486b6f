package domain

import (
	"fmt"
	"time"
)

// Policy holds the per-deployment choices the meeting model leaves open.
type Policy struct {
	AllowAgendaReorder  bool
	AllowSelfYield      bool
	HideQueueIdentities bool
}

func DefaultPolicy() Policy {
	return Policy{
		AllowAgendaReorder: true,
		AllowSelfYield:     true,
	}
}

// Command is one mutation of a meeting. Authorize always runs before Apply,
// and both run while the meeting is exclusively held.
type Command interface {
	Name() string
	Authorize(m *Meeting, actor Participant, p Policy) error
	Apply(m *Meeting, now time.Time) error
}

type StartAgendaItem struct {
	ItemID string
}

func (StartAgendaItem) Name() string { return "start_agenda_item" }

func (c StartAgendaItem) Authorize(m *Meeting, actor Participant, _ Policy) error {
	return requireChair(m, actor)
}

func (c StartAgendaItem) Apply(m *Meeting, now time.Time) error {
	return m.StartAgendaItem(c.ItemID, now)
}

type EnqueueSpeaker struct {
	Participant Participant
	Topic       string
}

func (EnqueueSpeaker) Name() string { return "enqueue_speaker" }

func (c EnqueueSpeaker) Authorize(m *Meeting, actor Participant, _ Policy) error {
	return requireSelfOrChair(m, actor, c.Participant.GHID)
}

func (c EnqueueSpeaker) Apply(m *Meeting, now time.Time) error {
	return m.EnqueueSpeaker(NewSpeakerQueueEntry(c.Participant, c.Topic, now), now)
}

type DequeueSpeaker struct {
	GHID int64
}

func (DequeueSpeaker) Name() string { return "dequeue_speaker" }

func (c DequeueSpeaker) Authorize(m *Meeting, actor Participant, _ Policy) error {
	return requireSelfOrChair(m, actor, c.GHID)
}

func (c DequeueSpeaker) Apply(m *Meeting, now time.Time) error {
	_, err := m.DequeueSpeaker(c.GHID, now)
	return err
}

type AdvanceToNextSpeaker struct{}

func (AdvanceToNextSpeaker) Name() string { return "advance_speaker" }

func (AdvanceToNextSpeaker) Authorize(m *Meeting, actor Participant, _ Policy) error {
	return requireChair(m, actor)
}

func (AdvanceToNextSpeaker) Apply(m *Meeting, now time.Time) error {
	_, err := m.AdvanceToNextSpeaker(now)
	return err
}

type YieldFloor struct{}

func (YieldFloor) Name() string { return "yield_floor" }

func (YieldFloor) Authorize(m *Meeting, actor Participant, p Policy) error {
	if IsChair(m, actor.GHID) {
		return nil
	}
	if p.AllowSelfYield && m.CurrentSpeaker != nil && m.CurrentSpeaker.Participant.GHID == actor.GHID {
		return nil
	}
	return ErrNotChair
}

func (YieldFloor) Apply(m *Meeting, now time.Time) error {
	return m.YieldFloor(now)
}

type AddChair struct {
	Participant Participant
}

func (AddChair) Name() string { return "add_chair" }

func (c AddChair) Authorize(m *Meeting, actor Participant, _ Policy) error {
	return requireChair(m, actor)
}

func (c AddChair) Apply(m *Meeting, now time.Time) error {
	return m.AddChair(c.Participant, now)
}

type RemoveChair struct {
	GHID int64
}

func (RemoveChair) Name() string { return "remove_chair" }

func (c RemoveChair) Authorize(m *Meeting, actor Participant, _ Policy) error {
	return requireChair(m, actor)
}

func (c RemoveChair) Apply(m *Meeting, now time.Time) error {
	return m.RemoveChair(c.GHID, now)
}

type AddAgendaItem struct {
	Item AgendaItem
}

func (AddAgendaItem) Name() string { return "add_agenda_item" }

func (c AddAgendaItem) Authorize(m *Meeting, actor Participant, _ Policy) error {
	return requireChair(m, actor)
}

func (c AddAgendaItem) Apply(m *Meeting, now time.Time) error {
	return m.AddAgendaItem(c.Item, now)
}

type RemoveAgendaItem struct {
	ItemID string
}

func (RemoveAgendaItem) Name() string { return "remove_agenda_item" }

func (c RemoveAgendaItem) Authorize(m *Meeting, actor Participant, _ Policy) error {
	return requireChair(m, actor)
}

func (c RemoveAgendaItem) Apply(m *Meeting, now time.Time) error {
	return m.RemoveAgendaItem(c.ItemID, now)
}

type MoveAgendaItem struct {
	ItemID string
	To     int
}

func (MoveAgendaItem) Name() string { return "move_agenda_item" }

func (c MoveAgendaItem) Authorize(m *Meeting, actor Participant, p Policy) error {
	if err := requireChair(m, actor); err != nil {
		return err
	}
	if !p.AllowAgendaReorder {
		return fmt.Errorf("%w: agenda reordering is disabled", ErrForbidden)
	}
	return nil
}

func (c MoveAgendaItem) Apply(m *Meeting, now time.Time) error {
	return m.MoveAgendaItem(c.ItemID, c.To, now)
}
