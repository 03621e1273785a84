package processor

import "github.com/benbjohnson/clock"

// TimeProvider отдаёт текущее время в миллисекундах.
//
// Координатор и воркеры обязаны использовать один и тот же TimeProvider,
// иначе сравнение времени пробуждения теряет смысл. Для replay/тестов
// подставляется детерминированная реализация.
type TimeProvider interface {
	Millis() int64
}

// ClockTime — TimeProvider поверх clock.Clock.
type ClockTime struct {
	Clock clock.Clock
}

// NewClockTime создаёт TimeProvider. Если c == nil — реальные часы.
func NewClockTime(c clock.Clock) ClockTime {
	if c == nil {
		c = clock.New()
	}
	return ClockTime{Clock: c}
}

// Millis возвращает Unix-время в миллисекундах.
func (t ClockTime) Millis() int64 {
	return t.Clock.Now().UnixMilli()
}
