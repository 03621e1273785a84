package processor

// Receiver — FIFO-очередь одного входа воркера.
//
// Не блокирует: если данных нет, Receive возвращает ok=false.
type Receiver interface {
	Receive() (value any, ok bool)
	HasData() bool
	Clear()
}

// Binder — handle, через который Provider объявляет входы процессора.
type Binder interface {
	// RegisterInput создаёт вход с номером index.
	// Номера объявляются по порядку, начиная с 0.
	RegisterInput(index int) Receiver
}

// ReceiveAs извлекает значение из r и приводит его к T.
// Значение другого типа отбрасывается, ok=false.
func ReceiveAs[T any](r Receiver) (T, bool) {
	var zero T
	v, ok := r.Receive()
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}
