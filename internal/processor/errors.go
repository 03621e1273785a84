package processor

import "errors"

// Ошибки контракта процессора.
var (
	// ErrUnknownResult — цикл вернул значение вне Continue/Idle/End.
	ErrUnknownResult = errors.New("unknown processor result")

	// ErrPanic — цикл или колбэк процессора запаниковал.
	ErrPanic = errors.New("processor panic")
)
