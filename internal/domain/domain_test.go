package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestWorkerRecord_Lifecycle(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewWorkerRecord(5, "cron", start)

	assert.NotEqual(t, uuid.Nil, r.RunID)
	assert.Equal(t, WorkerStatusRunning, r.Status)
	assert.False(t, r.Status.IsTerminal())
	assert.Zero(t, r.Duration())

	r.MarkFinished(start.Add(90 * time.Second))

	assert.True(t, r.Status.IsTerminal())
	assert.Equal(t, 90*time.Second, r.Duration())
}

func TestWorkerSpec_Validate(t *testing.T) {
	assert.NoError(t, WorkerSpec{Provider: "counter"}.Validate())
	assert.ErrorIs(t, WorkerSpec{}.Validate(), ErrInvalidWorkerSpec)
	assert.ErrorIs(t, WorkerSpec{Provider: "cron", EndTimeMillis: -1}.Validate(), ErrInvalidWorkerSpec)
}
