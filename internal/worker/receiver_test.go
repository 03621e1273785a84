package worker

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/Tickwork/internal/processor"
)

func TestQueueReceiver_FIFO(t *testing.T) {
	q := NewQueueReceiver()
	assert.False(t, q.HasData())

	_, ok := q.Receive()
	assert.False(t, ok)

	q.Offer(1)
	q.Offer("two")
	q.Offer(nil)
	assert.Equal(t, 3, q.Len())

	for _, want := range []any{1, "two", nil} {
		v, ok := q.Receive()
		require.True(t, ok)
		assert.Equal(t, want, v)
	}
	assert.False(t, q.HasData())
}

func TestQueueReceiver_Clear(t *testing.T) {
	q := NewQueueReceiver()
	q.Offer(1)
	q.Offer(2)

	q.Clear()

	assert.Zero(t, q.Len())
	_, ok := q.Receive()
	assert.False(t, ok)
}

func TestQueueReceiver_ConcurrentOffer(t *testing.T) {
	q := NewQueueReceiver()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				q.Offer(j)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 800, q.Len())
}

func TestReceiveAs(t *testing.T) {
	q := NewQueueReceiver()
	q.Offer(42)
	q.Offer("not an int")

	v, ok := processor.ReceiveAs[int](q)
	require.True(t, ok)
	assert.Equal(t, 42, v)

	_, ok = processor.ReceiveAs[int](q)
	assert.False(t, ok)
	assert.False(t, q.HasData())
}
