package scheduler

import "errors"

// Ошибки планировщика.
var (
	// ErrDuplicateWorker — воркер с таким id уже зарегистрирован.
	ErrDuplicateWorker = errors.New("duplicate worker id")

	// ErrInterrupted — координатор прерван; дальнейшая работа невозможна.
	ErrInterrupted = errors.New("scheduler coordinator interrupted")
)
