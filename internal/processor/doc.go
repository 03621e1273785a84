// Package processor описывает контракт между хостом и пользовательской
// бизнес-логикой.
//
// Структура:
//   - processor.go — Processor, Result, StateExposer, Provider
//   - context.go   — Context (время цикла, запрос пробуждения)
//   - receiver.go  — Receiver, Binder (входы воркера)
//   - listener.go  — Listener (уведомление о завершении воркера)
//   - time.go      — TimeProvider и адаптер над benbjohnson/clock
//   - errors.go    — ошибки контракта
//
// Хост гарантирует:
//   - Init вызывается ровно один раз до первого цикла
//   - End вызывается ровно один раз после последнего цикла (даже при ошибках)
//   - HandleException вызывается синхронно в горутине воркера
//     для каждой ошибки цикла
//
// Пакет не зависит от scheduler и worker — его импортируют обе стороны.
package processor
