package admission_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regkit/regkit/pkg/admission"
)

// countingStore mimics the registration store: CountConfirmed reads the
// current confirmed total, commit inserts.
type countingStore struct {
	mu        sync.Mutex
	confirmed map[uuid.UUID]int64
}

func newCountingStore() *countingStore {
	return &countingStore{confirmed: make(map[uuid.UUID]int64)}
}

func (s *countingStore) CountConfirmed(_ context.Context, eventID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.confirmed[eventID], nil
}

func (s *countingStore) insert(eventID uuid.UUID, status admission.Status) {
	if status != admission.StatusConfirmed {
		return
	}
	s.mu.Lock()
	s.confirmed[eventID]++
	s.mu.Unlock()
}

func capacity(n int32) *int32 { return &n }

func TestController_InitialStatus(t *testing.T) {
	t.Parallel()

	t.Run("unlimited capacity always confirms", func(t *testing.T) {
		t.Parallel()
		store := newCountingStore()
		ctrl := admission.New(store)
		eventID := uuid.New()

		store.confirmed[eventID] = 1_000_000

		status, err := ctrl.InitialStatus(context.Background(), eventID, nil)
		require.NoError(t, err)
		assert.Equal(t, admission.StatusConfirmed, status)
	})

	t.Run("below limit confirms, at limit waitlists", func(t *testing.T) {
		t.Parallel()
		store := newCountingStore()
		ctrl := admission.New(store)
		eventID := uuid.New()

		store.confirmed[eventID] = 49
		status, err := ctrl.InitialStatus(context.Background(), eventID, capacity(50))
		require.NoError(t, err)
		assert.Equal(t, admission.StatusConfirmed, status)

		store.confirmed[eventID] = 50
		status, err = ctrl.InitialStatus(context.Background(), eventID, capacity(50))
		require.NoError(t, err)
		assert.Equal(t, admission.StatusWaitlisted, status)
	})
}

func TestController_Admit_CapacityBoundary(t *testing.T) {
	t.Parallel()

	store := newCountingStore()
	ctrl := admission.New(store)
	eventID := uuid.New()
	const limit = 5

	// Registrations 1..limit confirm, limit+1 waitlists.
	for i := range limit {
		status, err := ctrl.Admit(context.Background(), eventID, capacity(limit),
			func(ctx context.Context, st admission.Status) error {
				store.insert(eventID, st)
				return nil
			})
		require.NoError(t, err)
		assert.Equal(t, admission.StatusConfirmed, status, "registration %d", i+1)
	}

	status, err := ctrl.Admit(context.Background(), eventID, capacity(limit),
		func(ctx context.Context, st admission.Status) error {
			store.insert(eventID, st)
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, admission.StatusWaitlisted, status)
}

func TestController_Admit_ConcurrentNeverOvershoots(t *testing.T) {
	t.Parallel()

	store := newCountingStore()
	ctrl := admission.New(store)
	eventID := uuid.New()

	// Capacity one, two concurrent registrants: exactly one may confirm.
	const registrants = 2
	results := make(chan admission.Status, registrants)
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(registrants)

	for range registrants {
		go func() {
			defer wg.Done()
			<-start
			status, err := ctrl.Admit(context.Background(), eventID, capacity(1),
				func(ctx context.Context, st admission.Status) error {
					time.Sleep(5 * time.Millisecond) // hold the decision window open
					store.insert(eventID, st)
					return nil
				})
			assert.NoError(t, err)
			results <- status
		}()
	}

	close(start)
	wg.Wait()
	close(results)

	var confirmed, waitlisted int
	for status := range results {
		switch status {
		case admission.StatusConfirmed:
			confirmed++
		case admission.StatusWaitlisted:
			waitlisted++
		}
	}
	assert.Equal(t, 1, confirmed, "never both confirmed")
	assert.Equal(t, 1, waitlisted)
}

func TestController_Admit_ManyConcurrent(t *testing.T) {
	t.Parallel()

	store := newCountingStore()
	ctrl := admission.New(store, admission.WithLockTimeout(5*time.Second))
	eventID := uuid.New()
	const limit = 10
	const registrants = 40

	var wg sync.WaitGroup
	wg.Add(registrants)
	for range registrants {
		go func() {
			defer wg.Done()
			_, err := ctrl.Admit(context.Background(), eventID, capacity(limit),
				func(ctx context.Context, st admission.Status) error {
					store.insert(eventID, st)
					return nil
				})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	count, err := store.CountConfirmed(context.Background(), eventID)
	require.NoError(t, err)
	assert.EqualValues(t, limit, count, "confirmed count must equal capacity exactly")
}

func TestController_Admit_CapacityRace(t *testing.T) {
	t.Parallel()

	store := newCountingStore()
	ctrl := admission.New(store, admission.WithLockTimeout(20*time.Millisecond))
	eventID := uuid.New()

	blocked := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_, _ = ctrl.Admit(context.Background(), eventID, capacity(1),
			func(ctx context.Context, st admission.Status) error {
				close(blocked)
				<-release
				return nil
			})
	}()

	<-blocked
	_, err := ctrl.Admit(context.Background(), eventID, capacity(1),
		func(ctx context.Context, st admission.Status) error { return nil })
	assert.ErrorIs(t, err, admission.ErrCapacityRace)
	close(release)
}

func TestController_Admit_CommitErrorPropagates(t *testing.T) {
	t.Parallel()

	store := newCountingStore()
	ctrl := admission.New(store)
	eventID := uuid.New()

	wantErr := assert.AnError
	_, err := ctrl.Admit(context.Background(), eventID, capacity(1),
		func(ctx context.Context, st admission.Status) error { return wantErr })
	assert.ErrorIs(t, err, wantErr)
}
