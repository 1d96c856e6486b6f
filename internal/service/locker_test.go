package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyedLocker_MutualExclusion(t *testing.T) {
	l := newKeyedLocker()
	var inside, maxInside atomic.Int32

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), "m")
			if err != nil {
				t.Error(err)
				return
			}
			n := inside.Add(1)
			if n > maxInside.Load() {
				maxInside.Store(n)
			}
			inside.Add(-1)
			unlock()
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, maxInside.Load())
	require.Zero(t, l.size())
}

func TestKeyedLocker_CancelledWaiterReleasesSlot(t *testing.T) {
	l := newKeyedLocker()
	unlock, err := l.Lock(context.Background(), "m")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Lock(ctx, "m")
	require.ErrorIs(t, err, context.Canceled)

	unlock()
	unlock()
	require.Zero(t, l.size())
}
