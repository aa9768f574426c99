package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sellerhub/backend/internal/domain/store"
	"github.com/sellerhub/backend/internal/infrastructure/broadcast"
)

type fakeStoreRepo struct {
	stores []store.Store
	err    error
}

func (f *fakeStoreRepo) FindActive(ctx context.Context) ([]store.Store, error) {
	return f.stores, f.err
}

func (f *fakeStoreRepo) FindByID(ctx context.Context, id uuid.UUID) (*store.Store, error) {
	for i := range f.stores {
		if f.stores[i].ID == id {
			return &f.stores[i], nil
		}
	}
	return nil, store.ErrNotFound
}

type enqueuedCall struct {
	job   *SyncJob
	delay time.Duration
}

type fakeEnqueuer struct {
	mu    sync.Mutex
	calls []enqueuedCall
	err   error
}

func (f *fakeEnqueuer) Enqueue(job *SyncJob, delay time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, enqueuedCall{job: job, delay: delay})
	return nil
}

func (f *fakeEnqueuer) snapshot() []enqueuedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]enqueuedCall, len(f.calls))
	copy(out, f.calls)
	return out
}

func testSchedulerConfig() StoreSchedulerConfig {
	return StoreSchedulerConfig{
		OrderInterval:   time.Hour,
		ProductInterval: time.Hour,
		StoreStagger:    time.Minute,
		MaxRetries:      3,
	}
}

func activeStores(n int) []store.Store {
	stores := make([]store.Store, n)
	for i := range stores {
		stores[i] = store.Store{
			ID:     uuid.New(),
			Name:   "Store",
			Status: store.StatusActive,
		}
	}
	return stores
}

func TestStoreScheduler_ValidatesConfig(t *testing.T) {
	cfg := testSchedulerConfig()
	cfg.OrderInterval = 0
	_, err := NewStoreScheduler(cfg, &fakeStoreRepo{}, &fakeEnqueuer{}, broadcast.New(zap.NewNop()), zap.NewNop())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestStoreScheduler_StaggersStoreLaunches(t *testing.T) {
	repo := &fakeStoreRepo{stores: activeStores(3)}
	queue := &fakeEnqueuer{}
	s, err := NewStoreScheduler(testSchedulerConfig(), repo, queue, broadcast.New(zap.NewNop()), zap.NewNop())
	require.NoError(t, err)

	s.RunPass(context.Background(), JobKindOrders)

	calls := queue.snapshot()
	require.Len(t, calls, 3)
	assert.Equal(t, time.Duration(0), calls[0].delay)
	assert.Equal(t, time.Minute, calls[1].delay)
	assert.Equal(t, 2*time.Minute, calls[2].delay)

	for i, call := range calls {
		assert.Equal(t, JobKindOrders, call.job.Kind)
		assert.Equal(t, repo.stores[i].ID, call.job.StoreID)
		assert.Equal(t, 3, call.job.MaxRetries)
	}
}

func TestStoreScheduler_NoActiveStores(t *testing.T) {
	events := broadcast.New(zap.NewNop())
	ch, cancelSub := events.Subscribe()
	defer cancelSub()

	queue := &fakeEnqueuer{}
	s, err := NewStoreScheduler(testSchedulerConfig(), &fakeStoreRepo{}, queue, events, zap.NewNop())
	require.NoError(t, err)

	s.RunPass(context.Background(), JobKindOrders)

	assert.Empty(t, queue.snapshot())
	select {
	case e := <-ch:
		assert.Equal(t, broadcast.SeverityInfo, e.Type)
		assert.Contains(t, e.Message, "no active stores")
	case <-time.After(time.Second):
		t.Fatal("expected an informational event")
	}
}

func TestStoreScheduler_EnumerationFailureDoesNotPanic(t *testing.T) {
	events := broadcast.New(zap.NewNop())
	ch, cancelSub := events.Subscribe()
	defer cancelSub()

	repo := &fakeStoreRepo{err: errors.New("database down")}
	s, err := NewStoreScheduler(testSchedulerConfig(), repo, &fakeEnqueuer{}, events, zap.NewNop())
	require.NoError(t, err)

	s.RunPass(context.Background(), JobKindOrders)

	select {
	case e := <-ch:
		assert.Equal(t, broadcast.SeverityError, e.Type)
	case <-time.After(time.Second):
		t.Fatal("expected an error event")
	}
}

func TestStoreScheduler_EnqueueFailureContinues(t *testing.T) {
	repo := &fakeStoreRepo{stores: activeStores(2)}
	queue := &fakeEnqueuer{err: ErrQueueFull}
	events := broadcast.New(zap.NewNop())
	s, err := NewStoreScheduler(testSchedulerConfig(), repo, queue, events, zap.NewNop())
	require.NoError(t, err)

	// Must not panic or abort the pass
	s.RunPass(context.Background(), JobKindProducts)
	assert.Empty(t, queue.snapshot())
}

func TestStoreScheduler_StartRunsInitialPass(t *testing.T) {
	repo := &fakeStoreRepo{stores: activeStores(1)}
	queue := &fakeEnqueuer{}
	s, err := NewStoreScheduler(testSchedulerConfig(), repo, queue, broadcast.New(zap.NewNop()), zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(context.Background())

	// One order pass and one catalog pass run at startup
	assert.Eventually(t, func() bool {
		return len(queue.snapshot()) == 2
	}, 2*time.Second, 10*time.Millisecond)
}
