package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cwrk-planet/meeting-service/internal/domain"
	"github.com/cwrk-planet/meeting-service/internal/idgen"
	"github.com/cwrk-planet/meeting-service/internal/repository/memory"

	"github.com/stretchr/testify/require"
)

var (
	alice = domain.Participant{GHID: 1, Username: "alice"}
	bob   = domain.Participant{GHID: 2, Username: "bob"}
	carol = domain.Participant{GHID: 3, Username: "carol"}
)

var fixedNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// seedPresenting stores a meeting chaired by alice whose only agenda item is current.
func seedPresenting(t *testing.T, store *memory.Store) string {
	t.Helper()
	id, err := idgen.Generate()
	require.NoError(t, err)

	m, err := domain.NewMeeting(id, []domain.Participant{alice}, fixedNow)
	require.NoError(t, err)
	item := domain.AgendaItem{ID: "item-1", Title: "Intro", Owner: alice}
	require.NoError(t, m.AddAgendaItem(item, fixedNow))
	require.NoError(t, m.StartAgendaItem(item.ID, fixedNow))
	require.NoError(t, store.Create(context.Background(), m))
	return id
}

type recordingPublisher struct {
	mu       sync.Mutex
	versions []int64
}

func (p *recordingPublisher) Publish(m *domain.Meeting) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.versions = append(p.versions, m.Version)
}

func TestCoordinator_CommitsAndPublishes(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := memory.New()
	id := seedPresenting(t, store)
	pub := &recordingPublisher{}
	c := NewCoordinator(store, domain.DefaultPolicy(), WithClock(fixedClock), WithPublisher(pub))

	m, err := c.Execute(ctx, id, domain.EnqueueSpeaker{Participant: bob, Topic: "q"}, bob)
	req.NoError(err)
	req.EqualValues(1, m.Version)

	m, err = c.Execute(ctx, id, domain.AdvanceToNextSpeaker{}, alice)
	req.NoError(err)
	req.EqualValues(2, m.Version)
	req.Equal(bob.GHID, m.CurrentSpeaker.Participant.GHID)

	stored, err := store.Get(ctx, id)
	req.NoError(err)
	req.Equal(m, stored)
	req.Equal([]int64{1, 2}, pub.versions)
}

func TestCoordinator_FailedCommandLeavesStateUntouched(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := memory.New()
	id := seedPresenting(t, store)
	pub := &recordingPublisher{}
	c := NewCoordinator(store, domain.DefaultPolicy(), WithClock(fixedClock), WithPublisher(pub))

	before, err := store.Get(ctx, id)
	req.NoError(err)

	_, err = c.Execute(ctx, id, domain.AdvanceToNextSpeaker{}, bob)
	req.ErrorIs(err, domain.ErrForbidden)

	_, err = c.Execute(ctx, id, domain.AdvanceToNextSpeaker{}, alice)
	req.ErrorIs(err, domain.ErrEmptyQueue)

	_, err = c.Execute(ctx, id, domain.RemoveChair{GHID: alice.GHID}, alice)
	req.ErrorIs(err, domain.ErrInvariantViolation)

	after, err := store.Get(ctx, id)
	req.NoError(err)
	req.Equal(before, after)
	req.Empty(pub.versions)
}

func TestCoordinator_UnknownMeeting(t *testing.T) {
	c := NewCoordinator(memory.New(), domain.DefaultPolicy())
	_, err := c.Execute(context.Background(), "missing", domain.YieldFloor{}, alice)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

// cancelOnGet cancels the caller's context once the command has been read,
// and fails Update if that cancellation reaches it.
type cancelOnGet struct {
	*memory.Store
	cancel context.CancelFunc
}

func (s *cancelOnGet) Get(ctx context.Context, id string) (*domain.Meeting, error) {
	m, err := s.Store.Get(ctx, id)
	s.cancel()
	return m, err
}

func (s *cancelOnGet) Update(ctx context.Context, m *domain.Meeting) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.Store.Update(ctx, m)
}

func TestCoordinator_PersistSurvivesCallerCancel(t *testing.T) {
	req := require.New(t)
	mem := memory.New()
	id := seedPresenting(t, mem)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := NewCoordinator(&cancelOnGet{Store: mem, cancel: cancel}, domain.DefaultPolicy(), WithClock(fixedClock))

	_, err := c.Execute(ctx, id, domain.EnqueueSpeaker{Participant: bob}, bob)
	req.NoError(err)

	stored, err := mem.Get(context.Background(), id)
	req.NoError(err)
	req.Len(stored.QueuedSpeakers, 1)
}

func TestCoordinator_LockHonoursContext(t *testing.T) {
	store := memory.New()
	id := seedPresenting(t, store)
	c := NewCoordinator(store, domain.DefaultPolicy())

	unlock, err := c.locks.Lock(context.Background(), id)
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Execute(ctx, id, domain.EnqueueSpeaker{Participant: bob}, bob)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCoordinator_MeetingsDoNotContend(t *testing.T) {
	store := memory.New()
	busy := seedPresenting(t, store)
	free := seedPresenting(t, store)
	c := NewCoordinator(store, domain.DefaultPolicy())

	unlock, err := c.locks.Lock(context.Background(), busy)
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err = c.Execute(ctx, free, domain.EnqueueSpeaker{Participant: bob}, bob)
	require.NoError(t, err)
}

type outcome struct {
	speaker int64
	queue   []int64
	version int64
}

func summarize(m *domain.Meeting) outcome {
	o := outcome{version: m.Version, queue: []int64{}}
	if m.CurrentSpeaker != nil {
		o.speaker = m.CurrentSpeaker.Participant.GHID
	}
	for _, e := range m.QueuedSpeakers {
		o.queue = append(o.queue, e.Participant.GHID)
	}
	return o
}

type step struct {
	cmd   domain.Command
	actor domain.Participant
}

func permutations(n int) [][]int {
	if n == 1 {
		return [][]int{{0}}
	}
	var out [][]int
	for _, p := range permutations(n - 1) {
		for i := 0; i <= len(p); i++ {
			q := append(append(append([]int{}, p[:i]...), n-1), p[i:]...)
			out = append(out, q)
		}
	}
	return out
}

func TestCoordinator_ConcurrentCommandsAreLinearizable(t *testing.T) {
	steps := []step{
		{domain.EnqueueSpeaker{Participant: bob, Topic: "b"}, bob},
		{domain.EnqueueSpeaker{Participant: carol, Topic: "c"}, carol},
		{domain.AdvanceToNextSpeaker{}, alice},
	}

	var serial []outcome
	for _, order := range permutations(len(steps)) {
		store := memory.New()
		id := seedPresenting(t, store)
		c := NewCoordinator(store, domain.DefaultPolicy(), WithClock(fixedClock))
		for _, i := range order {
			_, _ = c.Execute(context.Background(), id, steps[i].cmd, steps[i].actor)
		}
		m, err := store.Get(context.Background(), id)
		require.NoError(t, err)
		serial = append(serial, summarize(m))
	}

	for range 50 {
		store := memory.New()
		id := seedPresenting(t, store)
		c := NewCoordinator(store, domain.DefaultPolicy(), WithClock(fixedClock))

		var wg sync.WaitGroup
		start := make(chan struct{})
		for _, s := range steps {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				_, _ = c.Execute(context.Background(), id, s.cmd, s.actor)
			}()
		}
		close(start)
		wg.Wait()

		m, err := store.Get(context.Background(), id)
		require.NoError(t, err)
		require.NoError(t, m.Validate())
		require.Contains(t, serial, summarize(m))
		require.Zero(t, c.locks.size())
	}
}
