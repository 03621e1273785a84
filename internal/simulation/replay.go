package simulation

import "github.com/shaiso/Tickwork/internal/processor"

// CycleData — один записанный цикл.
type CycleData struct {
	CycleNumber     int64 `json:"cycle_number"`
	TimestampMillis int64 `json:"timestamp_ms"`
	Inputs          []any `json:"inputs"`
}

// ReplayData — запись работы одного воркера.
type ReplayData interface {
	WorkerID() int64
	Settings() any
	Cycles() []CycleData
}

type replayData struct {
	workerID int64
	settings any
	cycles   []CycleData
}

// NewReplayData создаёт ReplayData из готовой записи.
func NewReplayData(workerID int64, settings any, cycles []CycleData) ReplayData {
	return &replayData{
		workerID: workerID,
		settings: settings,
		cycles:   cycles,
	}
}

func (r *replayData) WorkerID() int64     { return r.workerID }
func (r *replayData) Settings() any       { return r.settings }
func (r *replayData) Cycles() []CycleData { return r.cycles }

// ManualController управляет временем воркера вручную.
type ManualController interface {
	// Advance переводит время воркера на toMillis.
	Advance(toMillis int64)

	// Step выполняет один цикл.
	Step()
}

// Context — processor.Context для симуляции: нулевые значения,
// планирование игнорируется.
type Context struct{}

var _ processor.Context = Context{}

func (Context) ScheduleWakeup(int64) {}

// Deprecated: см. processor.Context.
func (Context) CancelAllScheduledWakeups() {}

func (Context) CycleTimeMillis() int64 { return 0 }
func (Context) CycleNumber() int64     { return 0 }
func (Context) EndTimeMillis() int64   { return 0 }
