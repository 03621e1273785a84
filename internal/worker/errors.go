package worker

import "errors"

// Ошибки воркера.
var (
	// ErrInputIndex — номер входа вне объявленных, либо входы
	// объявлены не по порядку.
	ErrInputIndex = errors.New("invalid input index")

	// ErrAlreadyStarted — Start вызван повторно.
	ErrAlreadyStarted = errors.New("worker already started")

	// ErrProviderFailed — Provider не смог создать процессор.
	ErrProviderFailed = errors.New("processor provider failed")

	// ErrSimulationNotImplemented — воспроизведение и ручной режим
	// пока не реализованы.
	ErrSimulationNotImplemented = errors.New("simulation is not implemented")
)
