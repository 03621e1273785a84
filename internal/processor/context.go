package processor

// Context — контекст выполнения воркера, передаётся в каждый цикл.
//
// Изменяется только горутиной воркера.
type Context interface {
	// ScheduleWakeup просит разбудить воркер не раньше timeMillis.
	// Повторный вызов с тем же временем не создаёт дубликат.
	ScheduleWakeup(timeMillis int64)

	// CancelAllScheduledWakeups отменяет все запланированные пробуждения воркера.
	//
	// Deprecated: операция проходит по всему timeline всех воркеров
	// под общей блокировкой — O(число записей). Процессор должен быть
	// идемпотентен к лишним пробуждениям вместо отмены.
	CancelAllScheduledWakeups()

	// CycleTimeMillis — время текущего цикла.
	CycleTimeMillis() int64

	// CycleNumber — номер текущего цикла, начиная с 1.
	CycleNumber() int64

	// EndTimeMillis — время, после которого воркер завершается.
	EndTimeMillis() int64
}
