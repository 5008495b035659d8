package checkpoint

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trellis/internal/platform/logger"
	"trellis/internal/token/state"
	"trellis/pkg/domain"
)

func TestFromState(t *testing.T) {
	st := state.New()
	st.TotalSupply = 500
	st.MaxSupply = 1000
	st.Paused = true
	st.Account(domain.Address("h1")).Balance = 300
	st.Account(domain.Address("h1")).Frozen = 100
	st.Account(domain.Address("h2")).Balance = 200

	takenAt := time.Now()
	snap := FromState(st, takenAt)

	assert.Equal(t, takenAt, snap.TakenAt)
	assert.Equal(t, uint64(500), snap.TotalSupply)
	assert.Equal(t, uint64(1000), snap.MaxSupply)
	assert.True(t, snap.Paused)
	require.Len(t, snap.Holders, 2)

	byAddr := make(map[domain.Address]Holder, len(snap.Holders))
	for _, h := range snap.Holders {
		byAddr[h.Address] = h
	}
	assert.Equal(t, uint64(300), byAddr["h1"].Balance)
	assert.Equal(t, uint64(100), byAddr["h1"].Frozen)
	assert.Equal(t, uint64(200), byAddr["h2"].Balance)
}

type fakeStore struct {
	mu    sync.Mutex
	saved []Snapshot
}

func (f *fakeStore) Save(_ context.Context, snap Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, snap)
	return nil
}

func (f *fakeStore) Latest(context.Context) (*Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.saved) == 0 {
		return nil, nil
	}
	snap := f.saved[len(f.saved)-1]
	return &snap, nil
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

type fakeSource struct {
	st *state.State
}

func (f fakeSource) Snapshot() *state.State {
	return f.st.Clone()
}

func TestWorkerSnapshotsOnInterval(t *testing.T) {
	st := state.New()
	st.TotalSupply = 42
	store := &fakeStore{}

	worker := NewWorker(fakeSource{st: st}, store, 10*time.Millisecond, logger.New())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	require.Eventually(t, func() bool { return store.count() >= 2 },
		time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	latest, err := store.Latest(context.Background())
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, uint64(42), latest.TotalSupply)
}
