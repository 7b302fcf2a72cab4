package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/dumpling/pkg/adapters/memory"
	"github.com/aretw0/dumpling/pkg/domain"
	"github.com/aretw0/dumpling/pkg/ports"
	"github.com/aretw0/dumpling/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore widens the window between Load and Save to expose lost updates.
type SlowStore struct {
	*memory.Store
}

func (s SlowStore) Load(ctx context.Context, id string) (*domain.State, error) {
	time.Sleep(2 * time.Millisecond)
	return s.Store.Load(ctx, id)
}

func (s SlowStore) Save(ctx context.Context, id string, st *domain.State) error {
	time.Sleep(2 * time.Millisecond)
	return s.Store.Save(ctx, id, st)
}

func TestManager_UpdateIsSerialized(t *testing.T) {
	mgr := session.NewManager(SlowStore{memory.NewStore()})
	ctx := context.Background()
	id := "race-test"

	_, err := mgr.Create(ctx, id)
	require.NoError(t, err)

	var wg sync.WaitGroup
	writers := 20
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := mgr.Update(ctx, id, func(_ context.Context, s *domain.State) (*domain.State, error) {
				next := s.Snapshot()
				next.Position.IntroIndex++
				return next, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	state, err := mgr.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, writers, state.Position.IntroIndex, "no update may be lost")
}

func TestManager_UpdateFailureSavesNothing(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()
	_, err := mgr.Create(ctx, "s1")
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = mgr.Update(ctx, "s1", func(_ context.Context, s *domain.State) (*domain.State, error) {
		s.Position.IntroIndex = 3
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	state, err := mgr.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, state.Position.IntroIndex)
}

func TestManager_UpdateMissing(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	_, err := mgr.Update(context.Background(), "ghost", func(_ context.Context, s *domain.State) (*domain.State, error) {
		return s, nil
	})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_CreateTwice(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()
	_, err := mgr.Create(ctx, "s1")
	require.NoError(t, err)
	_, err = mgr.Create(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionExists)
}

func TestManager_LoadOrStart(t *testing.T) {
	mgr := session.NewManager(SlowStore{memory.NewStore()})
	ctx := context.Background()
	id := "atomic-init"

	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			state, err := mgr.LoadOrStart(ctx, id)
			assert.NoError(t, err)
			assert.NotNil(t, state)
		}()
	}
	wg.Wait()

	state, err := mgr.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, state.SessionID)
	assert.False(t, state.Position.Started)
}

type countingLocker struct {
	mu       sync.Mutex
	locks    int
	unlocks  int
	ttl      time.Duration
	failWith error
}

func (l *countingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failWith != nil {
		return nil, l.failWith
	}
	l.locks++
	l.ttl = ttl
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.unlocks++
		return nil
	}, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	locker := &countingLocker{}
	mgr := session.NewManager(memory.NewStore(), session.WithLocker(locker), session.WithLockTTL(5*time.Second))
	ctx := context.Background()

	_, err := mgr.Create(ctx, "s1")
	require.NoError(t, err)
	_, err = mgr.Load(ctx, "s1")
	require.NoError(t, err)

	assert.Equal(t, 2, locker.locks)
	assert.Equal(t, 2, locker.unlocks)
	assert.Equal(t, 5*time.Second, locker.ttl)

	locker.failWith = errors.New("redis down")
	_, err = mgr.Load(ctx, "s1")
	assert.ErrorIs(t, err, locker.failWith)
}
