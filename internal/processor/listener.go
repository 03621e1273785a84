package processor

// Listener получает уведомление о завершении воркера.
// Вызывается ровно один раз на воркер, из его горутины.
type Listener interface {
	OnFinish(id int64)
}

// ListenerFunc — адаптер функции к Listener.
type ListenerFunc func(id int64)

// OnFinish вызывает f.
func (f ListenerFunc) OnFinish(id int64) { f(id) }

// Listeners рассылает уведомление нескольким слушателям по порядку.
type Listeners []Listener

// OnFinish вызывает OnFinish у каждого не-nil слушателя.
func (ls Listeners) OnFinish(id int64) {
	for _, l := range ls {
		if l != nil {
			l.OnFinish(id)
		}
	}
}
