package worker

import (
	"sync"

	"github.com/shaiso/Tickwork/internal/processor"
)

// QueueReceiver — неограниченная FIFO-очередь одного входа.
//
// Offer вызывается доставщиком входов, Receive — горутиной воркера.
type QueueReceiver struct {
	mu    sync.Mutex
	queue []any
}

var _ processor.Receiver = (*QueueReceiver)(nil)

// NewQueueReceiver создаёт пустую очередь.
func NewQueueReceiver() *QueueReceiver {
	return &QueueReceiver{}
}

// Offer добавляет значение в конец очереди.
func (q *QueueReceiver) Offer(value any) {
	q.mu.Lock()
	q.queue = append(q.queue, value)
	q.mu.Unlock()
}

// Receive извлекает значение из головы очереди.
// Пустая очередь: ok=false.
func (q *QueueReceiver) Receive() (any, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.queue) == 0 {
		return nil, false
	}
	v := q.queue[0]
	q.queue[0] = nil
	q.queue = q.queue[1:]
	return v, true
}

// HasData сообщает, есть ли значения в очереди.
func (q *QueueReceiver) HasData() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queue) > 0
}

// Len возвращает число значений в очереди.
func (q *QueueReceiver) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queue)
}

// Clear отбрасывает все значения.
func (q *QueueReceiver) Clear() {
	q.mu.Lock()
	q.queue = nil
	q.mu.Unlock()
}
