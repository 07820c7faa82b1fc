package status

import (
	"iter"
	"maps"
	"slices"
	"sync"
)

// MetricMap holds named metrics of one atomic type
// Lookups lock; the returned pointers are then used without locking
type MetricMap[T any] struct {
	mu    sync.RWMutex
	items map[string]*T
}

// NewMetricMap creates an empty map
func NewMetricMap[T any]() *MetricMap[T] {
	return &MetricMap[T]{items: make(map[string]*T)}
}

// Get returns the metric registered under key, allocating it on first use
func (m *MetricMap[T]) Get(key string) *T {
	if ptr := m.lookup(key); ptr != nil {
		return ptr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	ptr, ok := m.items[key]
	if !ok {
		ptr = new(T)
		m.items[key] = ptr
	}
	return ptr
}

func (m *MetricMap[T]) lookup(key string) *T {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.items[key]
}

// Has reports whether key was registered
func (m *MetricMap[T]) Has(key string) bool {
	return m.lookup(key) != nil
}

// Keys returns registered keys in sorted order
func (m *MetricMap[T]) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.items))
}

// All yields metrics in key order from a copy taken at call time
// The callback may register new metrics without deadlocking
func (m *MetricMap[T]) All() iter.Seq2[string, *T] {
	m.mu.RLock()
	items := maps.Clone(m.items)
	m.mu.RUnlock()

	return func(yield func(string, *T) bool) {
		for _, k := range slices.Sorted(maps.Keys(items)) {
			if !yield(k, items[k]) {
				return
			}
		}
	}
}

// Count returns the number of registered metrics
func (m *MetricMap[T]) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
