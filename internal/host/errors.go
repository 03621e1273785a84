package host

import "errors"

// Ошибки host.
var (
	// ErrUnknownProvider — провайдер с таким именем не зарегистрирован.
	ErrUnknownProvider = errors.New("unknown processor provider")

	// ErrWorkerNotFound — воркер не найден (не создавался или уже завершён).
	ErrWorkerNotFound = errors.New("worker not found")
)
