// Package signal реализует примитив ожидания/уведомления с монитором.
//
// Sleeper — абстракция над парой mutex + condition variable:
//
//	s.Lock()
//	for !predicate() {          // предикат перепроверяется под той же блокировкой
//	    if err := s.Wait(ctx); err != nil {
//	        ...                  // прерывание (отмена ctx)
//	    }
//	}
//	s.Unlock()
//
// Notify будит не более одного ожидающего. Если никто не ждёт,
// уведомление теряется — поэтому ожидающая сторона всегда перечитывает
// своё состояние под блокировкой перед Wait, а уведомляющая сторона
// берёт ту же блокировку (Notify делает это сам).
//
// Sleeper подменяется в тестах планировщика, чтобы управлять временем
// детерминированно.
package signal
