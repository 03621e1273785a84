// Package host — управляющая поверхность процесса: реестр провайдеров
// процессоров и набор живых воркеров поверх одного планировщика.
//
// Host создаёт и запускает воркеры по имени провайдера, доставляет
// входы, отдаёт состояние и timeline. Сам Host — слушатель завершения
// каждого воркера: убирает его из набора и рассылает уведомление
// дополнительным слушателям (журнал, события в RabbitMQ).
//
//	reg := host.NewRegistry()
//	processors.Register(reg)
//
//	h := host.New(host.Config{
//	    Scheduler: sched,
//	    Registry:  reg,
//	    Listeners: []processor.Listener{journal},
//	})
//
//	info, err := h.Create(ctx, host.Spec{Provider: "counter"})
//	err = h.DeliverInput(info.ID, 0, 5)
package host
