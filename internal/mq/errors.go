package mq

import "errors"

// Ошибки mq.
var (
	// ErrNoChannel — канал недоступен (нет соединения или идёт reconnect).
	ErrNoChannel = errors.New("no channel available")

	// ErrPermanent — сообщение не может быть обработано никогда.
	// Consumer отправляет такое сообщение в DLQ без повторов.
	ErrPermanent = errors.New("permanent message failure")
)
