package processors

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/shaiso/Tickwork/internal/processor"
)

// Входы процессора counter.
const (
	CounterInputValues  = 0
	CounterInputControl = 1
)

// Команды управляющего входа counter.
const (
	CounterStop  = "stop"
	CounterReset = "reset"
)

// Counter суммирует числа со входа 0.
// Вход 1 — команды: "stop" завершает воркер, "reset" обнуляет сумму.
type Counter struct {
	processor.Base

	values  processor.Receiver
	control processor.Receiver

	// mu защищает sum и count: ExposeState вызывается из чужой горутины.
	mu    sync.Mutex
	sum   float64
	count int64
}

// CounterProvider — провайдер процессора counter. Настроек нет.
func CounterProvider() processor.Provider {
	return processor.ProviderFunc(func(_ any, b processor.Binder) (processor.Processor, error) {
		return &Counter{
			values:  b.RegisterInput(CounterInputValues),
			control: b.RegisterInput(CounterInputControl),
		}, nil
	})
}

// Process сначала разбирает команды, затем значения.
// Нечисловое значение — ошибка цикла; остальные значения
// дочитываются следующим циклом.
func (c *Counter) Process(processor.Context) (processor.Result, error) {
	for {
		v, ok := c.control.Receive()
		if !ok {
			break
		}
		switch v {
		case CounterStop:
			return processor.ResultEnd, nil
		case CounterReset:
			c.mu.Lock()
			c.sum, c.count = 0, 0
			c.mu.Unlock()
		default:
			return processor.ResultContinue, fmt.Errorf("unknown counter command %v", v)
		}
	}

	for {
		v, ok := c.values.Receive()
		if !ok {
			break
		}
		n, err := toFloat(v)
		if err != nil {
			return processor.ResultContinue, err
		}
		c.mu.Lock()
		c.sum += n
		c.count++
		c.mu.Unlock()
	}

	return processor.ResultIdle, nil
}

func (c *Counter) HandleException(err error) {
	slog.Default().Warn("counter processor error", "error", err)
}

// ExposeState возвращает сумму и число значений.
func (c *Counter) ExposeState(...any) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return map[string]any{
		"sum":   c.sum,
		"count": c.count,
	}
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	case json.Number:
		return n.Float64()
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("counter value %q is not a number", n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("counter value %v (%T) is not a number", v, v)
	}
}
