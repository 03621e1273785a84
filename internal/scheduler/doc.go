// Package scheduler реализует централизованный планировщик пробуждений.
//
// Scheduler хранит общий timeline: время (мс) → множество id воркеров,
// которых нужно разбудить в этот момент. Один координатор (Run) спит
// до ближайшего времени и будит всех, чьё время наступило.
//
// Структура:
//   - timeline.go  — Timeline на B-дереве (google/btree), отладочный вывод
//   - scheduler.go — реестр воркеров, Schedule, цикл координатора
//   - errors.go    — ErrDuplicateWorker, ErrInterrupted
//
// Цикл координатора:
//
//	loop:
//	  now = time.Millis()
//	  если ближайшее время <= now:
//	      ids = DrainDue(now)    // все просроченные корзины за один проход
//	      разбудить ids          // вне блокировки timeline
//	      continue
//	  иначе, под блокировкой монитора:
//	      перечитать ближайшее время
//	      нет записей → Wait
//	      есть        → WaitTimeout(время - now), если оно ещё впереди
//
// Schedule пингует монитор после каждой вставки. Так как координатор
// перечитывает timeline под той же блокировкой, вставка не может
// потеряться между решением уснуть и самим сном.
//
// Использование:
//
//	sched := scheduler.New(scheduler.Config{
//	    Time:   processor.NewClockTime(nil),
//	    Logger: logger,
//	})
//	sched.Start(ctx)
//	defer sched.Stop()
//
// Прерывание координатора (отмена ctx) фатально: Run возвращает
// ErrInterrupted и больше не будит воркеров.
package scheduler
