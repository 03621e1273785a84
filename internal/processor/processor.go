package processor

import "fmt"

// Result — результат одного цикла Processor.
//
// Определяет, что воркер делает после цикла:
//
//	Continue → следующий цикл сразу, без блокировки
//	Idle     → блокировка до входа или запланированного пробуждения
//	End      → завершение воркера
type Result int

const (
	// ResultContinue — запустить следующий цикл немедленно (busy/streaming).
	ResultContinue Result = iota

	// ResultIdle — работы нет, ждать пробуждения.
	ResultIdle

	// ResultEnd — процессор закончил работу.
	ResultEnd
)

// String возвращает строковое представление Result.
func (r Result) String() string {
	switch r {
	case ResultContinue:
		return "continue"
	case ResultIdle:
		return "idle"
	case ResultEnd:
		return "end"
	default:
		return fmt.Sprintf("result(%d)", int(r))
	}
}

// Valid возвращает true для трёх известных значений.
func (r Result) Valid() bool {
	switch r {
	case ResultContinue, ResultIdle, ResultEnd:
		return true
	default:
		return false
	}
}

// Processor — бизнес-логика одного воркера.
//
// Каждый цикл должен быть детерминирован относительно состояния,
// времени цикла (Context.CycleTimeMillis) и входов.
type Processor interface {
	// Init вызывается один раз перед первым циклом.
	Init(ctx Context) error

	// Process выполняет один цикл.
	Process(ctx Context) (Result, error)

	// End вызывается один раз после последнего цикла.
	End(ctx Context) error

	// HandleException получает ошибки циклов (включая паники).
	HandleException(err error)
}

// StateExposer — опциональная возможность Processor отдавать
// своё состояние наружу (диагностика, API).
type StateExposer interface {
	ExposeState(args ...any) any
}

// Base — пустая реализация необязательных методов Processor.
// Встраивается в пользовательские процессоры.
type Base struct{}

// Init ничего не делает.
func (Base) Init(Context) error { return nil }

// End ничего не делает.
func (Base) End(Context) error { return nil }

// Provider создаёт Processor для воркера.
//
// Вызывается ровно один раз на воркер, при его создании.
// Через binder процессор объявляет свои входы (RegisterInput).
type Provider interface {
	Get(settings any, binder Binder) (Processor, error)
}

// ProviderFunc — адаптер функции к Provider.
type ProviderFunc func(settings any, binder Binder) (Processor, error)

// Get вызывает f.
func (f ProviderFunc) Get(settings any, binder Binder) (Processor, error) {
	return f(settings, binder)
}
