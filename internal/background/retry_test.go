package background

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/loginwatch/loginwatch/internal/models"
	"github.com/loginwatch/loginwatch/internal/repositories"
	"github.com/stretchr/testify/assert"
)

type mockUpserter struct {
	UpsertOnLoginFunc func(ctx context.Context, up repositories.LoginUpsert) error
	Calls             []repositories.LoginUpsert
}

func (m *mockUpserter) UpsertOnLogin(ctx context.Context, up repositories.LoginUpsert) error {
	m.Calls = append(m.Calls, up)
	if m.UpsertOnLoginFunc != nil {
		return m.UpsertOnLoginFunc(ctx, up)
	}
	return nil
}

func newTestWorker(repo AggregateUpserter, maxAttempts int) *RetryWorker {
	return NewRetryWorker(repo, slog.Default(), nil, time.Minute, maxAttempts)
}

func testUpsert() repositories.LoginUpsert {
	return repositories.LoginUpsert{
		UserID:            uuid.New(),
		DeviceFingerprint: "a3f5b8c2d1e4f6a7",
		SeenAt:            time.Now().UTC(),
		RiskScore:         0.1,
		RiskLevel:         "minimal",
		Classification: models.DeviceClassification{
			DeviceType:  "desktop",
			BrowserName: "Chrome",
			OSName:      "macOS",
		},
	}
}

func TestEnqueue_AcceptsUntilFull(t *testing.T) {
	w := newTestWorker(&mockUpserter{}, 3)
	w.maxSize = 2

	assert.True(t, w.Enqueue(testUpsert()))
	assert.True(t, w.Enqueue(testUpsert()))
	assert.False(t, w.Enqueue(testUpsert()))

	w.mu.Lock()
	defer w.mu.Unlock()
	assert.Len(t, w.pending, 2)
}

func TestDrain_AppliesQueuedUpserts(t *testing.T) {
	repo := &mockUpserter{}
	w := newTestWorker(repo, 3)

	up := testUpsert()
	w.Enqueue(up)
	w.drain(context.Background())

	assert.Len(t, repo.Calls, 1)
	assert.Equal(t, up.UserID, repo.Calls[0].UserID)

	w.mu.Lock()
	defer w.mu.Unlock()
	assert.Empty(t, w.pending)
}

func TestDrain_RequeuesFailedEntries(t *testing.T) {
	repo := &mockUpserter{
		UpsertOnLoginFunc: func(ctx context.Context, up repositories.LoginUpsert) error {
			return errors.New("still down")
		},
	}
	w := newTestWorker(repo, 3)

	w.Enqueue(testUpsert())
	w.drain(context.Background())

	w.mu.Lock()
	assert.Len(t, w.pending, 1)
	assert.Equal(t, 1, w.pending[0].attempts)
	w.mu.Unlock()

	// Second pass bumps the attempt counter on the same entry
	w.drain(context.Background())

	w.mu.Lock()
	defer w.mu.Unlock()
	assert.Len(t, w.pending, 1)
	assert.Equal(t, 2, w.pending[0].attempts)
}

func TestDrain_DeadLettersAtMaxAttempts(t *testing.T) {
	repo := &mockUpserter{
		UpsertOnLoginFunc: func(ctx context.Context, up repositories.LoginUpsert) error {
			return errors.New("still down")
		},
	}
	w := newTestWorker(repo, 2)

	w.Enqueue(testUpsert())
	w.drain(context.Background())
	w.drain(context.Background())

	w.mu.Lock()
	assert.Empty(t, w.pending)
	w.mu.Unlock()

	// Dropped for good, nothing left to retry
	w.drain(context.Background())
	assert.Len(t, repo.Calls, 2)
}

func TestDrain_PartialFailureKeepsOnlyFailures(t *testing.T) {
	bad := testUpsert()
	repo := &mockUpserter{
		UpsertOnLoginFunc: func(ctx context.Context, up repositories.LoginUpsert) error {
			if up.UserID == bad.UserID {
				return errors.New("conflict")
			}
			return nil
		},
	}
	w := newTestWorker(repo, 5)

	w.Enqueue(testUpsert())
	w.Enqueue(bad)
	w.Enqueue(testUpsert())
	w.drain(context.Background())

	w.mu.Lock()
	defer w.mu.Unlock()
	assert.Len(t, w.pending, 1)
	assert.Equal(t, bad.UserID, w.pending[0].up.UserID)
}

func TestStart_StopsOnSignal(t *testing.T) {
	w := NewRetryWorker(&mockUpserter{}, slog.Default(), nil, 5*time.Millisecond, 3)

	done := make(chan struct{})
	go func() {
		w.Start(context.Background())
		close(done)
	}()

	w.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestStart_DrainsOnInterval(t *testing.T) {
	applied := make(chan struct{}, 1)
	repo := &mockUpserter{
		UpsertOnLoginFunc: func(ctx context.Context, up repositories.LoginUpsert) error {
			select {
			case applied <- struct{}{}:
			default:
			}
			return nil
		},
	}
	w := NewRetryWorker(repo, slog.Default(), nil, 5*time.Millisecond, 3)
	defer w.Stop()

	w.Enqueue(testUpsert())
	go w.Start(context.Background())

	select {
	case <-applied:
	case <-time.After(time.Second):
		t.Fatal("queued upsert was not applied")
	}
}
