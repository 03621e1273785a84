package repo

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/Tickwork/internal/domain"
	"github.com/shaiso/Tickwork/internal/host"
)

type fakeJournal struct {
	mu        sync.Mutex
	started   []domain.WorkerRecord
	finished  map[uuid.UUID]time.Time
	startErr  error
	finishErr error
}

func (f *fakeJournal) RecordStarted(_ context.Context, rec *domain.WorkerRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.started = append(f.started, *rec)
	return nil
}

func (f *fakeJournal) RecordFinished(_ context.Context, runID uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.finishErr != nil {
		return f.finishErr
	}
	if f.finished == nil {
		f.finished = make(map[uuid.UUID]time.Time)
	}
	f.finished[runID] = at
	return nil
}

func TestJournalListener_StartAndFinish(t *testing.T) {
	mock := clock.NewMock()
	mock.Set(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	fj := &fakeJournal{}
	j := NewJournalListener(JournalConfig{Journal: fj, Clock: mock})

	j.OnStart(context.Background(), host.WorkerInfo{ID: 3, Provider: "cron"})
	require.Len(t, fj.started, 1)

	rec := fj.started[0]
	assert.Equal(t, int64(3), rec.WorkerID)
	assert.Equal(t, "cron", rec.Provider)
	assert.Equal(t, domain.WorkerStatusRunning, rec.Status)
	assert.Equal(t, mock.Now().UTC(), rec.StartedAt)

	mock.Add(time.Minute)
	j.OnFinish(3)
	j.Close()

	assert.Equal(t, map[uuid.UUID]time.Time{rec.RunID: mock.Now().UTC()}, fj.finished)
}

func TestJournalListener_UnknownWorkerIgnored(t *testing.T) {
	fj := &fakeJournal{}
	j := NewJournalListener(JournalConfig{Journal: fj})

	j.OnFinish(42)
	j.Close()

	assert.Empty(t, fj.finished)
}

func TestJournalListener_StartErrorSkipsFinish(t *testing.T) {
	fj := &fakeJournal{startErr: errors.New("db down")}
	j := NewJournalListener(JournalConfig{Journal: fj})

	j.OnStart(context.Background(), host.WorkerInfo{ID: 1, Provider: "counter"})
	fj.startErr = nil
	j.OnFinish(1)
	j.Close()

	assert.Empty(t, fj.started)
	assert.Empty(t, fj.finished)
}

func TestJournalListener_FinishErrorIsLogged(t *testing.T) {
	fj := &fakeJournal{}
	j := NewJournalListener(JournalConfig{Journal: fj})

	j.OnStart(context.Background(), host.WorkerInfo{ID: 1, Provider: "counter"})
	fj.finishErr = ErrNotFound
	j.OnFinish(1)

	assert.NotPanics(t, j.Close)
	assert.Empty(t, fj.finished)
}
