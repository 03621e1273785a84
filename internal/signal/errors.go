package signal

import "errors"

// ErrInterrupted — ожидание прервано отменой контекста.
var ErrInterrupted = errors.New("wait interrupted")
