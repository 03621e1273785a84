package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewReplayData(t *testing.T) {
	cycles := []CycleData{
		{CycleNumber: 1, TimestampMillis: 100, Inputs: []any{"a"}},
		{CycleNumber: 2, TimestampMillis: 250, Inputs: []any{nil, 5}},
	}

	rd := NewReplayData(7, map[string]any{"every_ms": 10}, cycles)

	assert.Equal(t, int64(7), rd.WorkerID())
	assert.Equal(t, map[string]any{"every_ms": 10}, rd.Settings())
	assert.Equal(t, cycles, rd.Cycles())
}

func TestContext_ZeroValues(t *testing.T) {
	var ctx Context

	ctx.ScheduleWakeup(100)
	ctx.CancelAllScheduledWakeups()

	assert.Zero(t, ctx.CycleTimeMillis())
	assert.Zero(t, ctx.CycleNumber())
	assert.Zero(t, ctx.EndTimeMillis())
}
