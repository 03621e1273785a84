package host

import (
	"fmt"
	"sort"
	"sync"

	"github.com/shaiso/Tickwork/internal/processor"
)

// Registry — реестр провайдеров процессоров по имени.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]processor.Provider
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]processor.Provider)}
}

// Register добавляет провайдер. Повторное имя заменяет прежний.
func (r *Registry) Register(name string, p processor.Provider) {
	r.mu.Lock()
	r.providers[name] = p
	r.mu.Unlock()
}

// Get возвращает провайдер по имени.
func (r *Registry) Get(name string) (processor.Provider, error) {
	r.mu.RLock()
	p, ok := r.providers[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return p, nil
}

// Names возвращает имена провайдеров по алфавиту.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
