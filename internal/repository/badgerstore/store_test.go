package badgerstore

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/cwrk-planet/meeting-service/internal/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db, slog.Default())
}

func TestStore_CreateGetUpdate(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := openTestStore(t)

	m, err := domain.NewMeeting("m1", []domain.Participant{{GHID: 1, Username: "alice"}}, time.Now().UTC())
	req.NoError(err)
	req.NoError(s.Create(ctx, m))
	req.ErrorIs(s.Create(ctx, m), domain.ErrAlreadyExists)

	got, err := s.Get(ctx, "m1")
	req.NoError(err)
	req.Equal(m.Chairs, got.Chairs)
	req.NotNil(got.Agenda)
	req.NotNil(got.QueuedSpeakers)

	item := domain.NewAgendaItem("Intro", "", m.Chairs[0], 10)
	req.NoError(got.AddAgendaItem(item, time.Now()))
	got.Version++
	req.NoError(s.Update(ctx, got))

	again, err := s.Get(ctx, "m1")
	req.NoError(err)
	req.EqualValues(1, again.Version)
	req.Len(again.Agenda, 1)
	req.Equal(item.ID, again.Agenda[0].ID)

	_, err = s.Get(ctx, "missing")
	req.ErrorIs(err, domain.ErrMeetingNotFound)
	req.ErrorIs(s.Update(ctx, &domain.Meeting{ID: "missing"}), domain.ErrMeetingNotFound)
	req.NoError(s.Ping(ctx))
}

func TestStore_ConcurrentCreateSameID(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(ghid int64) {
			defer wg.Done()
			m, _ := domain.NewMeeting("same", []domain.Participant{{GHID: ghid}}, time.Now())
			if err := s.Create(ctx, m); err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			} else {
				require.ErrorIs(t, err, domain.ErrAlreadyExists)
			}
		}(int64(i + 1))
	}
	wg.Wait()
	require.Equal(t, 1, created)
}
