package domain

// WorkerStatus — статус воркера в журнале.
//
// Жизненный цикл:
//
//	RUNNING → FINISHED
type WorkerStatus string

const (
	// WorkerStatusRunning — воркер запущен и ещё не завершился.
	WorkerStatusRunning WorkerStatus = "RUNNING"

	// WorkerStatusFinished — воркер завершился (End, время окончания или остановка).
	WorkerStatusFinished WorkerStatus = "FINISHED"
)

// IsTerminal возвращает true, если статус финальный.
func (s WorkerStatus) IsTerminal() bool {
	return s == WorkerStatusFinished
}
