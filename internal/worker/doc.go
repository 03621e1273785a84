// Package worker реализует воркер: горутину, которая циклически
// вызывает Processor и между циклами спит до входа или
// запланированного пробуждения.
//
// # Ключевые компоненты
//
//   - QueueReceiver — FIFO одного входа, не блокирует
//   - cycleContext  — processor.Context: время и номер цикла, время окончания
//   - Thread        — сам воркер: цикл, блокировка, входы, завершение
//   - Factory       — создание воркеров: id, регистрация в планировщике, Provider
//
// # Цикл воркера
//
//	Init
//	пока next(time) <= endTime и не stopping:
//	    cycle++
//	    switch Process():
//	    case End:      stopping = true
//	    case Idle:     ждать Wake (вход или пробуждение планировщика)
//	    case Continue: сразу следующий цикл
//	    ошибка/паника → HandleException, цикл продолжается
//	End
//	scheduler.OnFinish(id)
//	listener.OnFinish(id)
//
// Wake выставляет флаг pending под блокировкой примитива пробуждения.
// Пробуждение, пришедшее во время цикла, не теряется: следующий Idle
// вернётся сразу.
//
// # Использование
//
//	f := worker.NewFactory(worker.FactoryConfig{
//	    Scheduler: sched,
//	    Time:      tp,
//	    Logger:    logger,
//	})
//
//	th, err := f.Create(provider, worker.Config{Settings: settings})
//	if err != nil {
//	    return err
//	}
//	if err := th.Start(); err != nil {
//	    return err
//	}
//	<-th.Done()
package worker
