package service

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
)

// phase tracks how far a registered service got through its lifecycle
type phase uint8

const (
	phaseRegistered phase = iota
	phaseInitialized
	phaseStarted
)

type entry struct {
	svc   Service
	phase phase
}

// Hub owns the input backends and sound output of one keybridge process
// Services are brought up in dependency order and torn down in reverse
type Hub struct {
	mu      sync.RWMutex
	entries map[string]*entry
	order   []string // Dependency order, resolved by InitAll
	log     *slog.Logger
}

// NewHub creates an empty hub
// A nil logger falls back to slog.Default
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		entries: make(map[string]*entry),
		log:     log,
	}
}

// Register adds a service; names must be unique
func (h *Hub) Register(svc Service) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	name := svc.Name()
	if _, dup := h.entries[name]; dup {
		return fmt.Errorf("service already registered: %s", name)
	}
	h.entries[name] = &entry{svc: svc}
	h.order = nil
	return nil
}

// Get looks up a service by name
func (h *Hub) Get(name string) (Service, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	e, ok := h.entries[name]
	if !ok {
		return nil, false
	}
	return e.svc, true
}

// MustGet returns the named service as T
// Panics when the service is missing or has another type
func MustGet[T any](h *Hub, name string) T {
	svc, ok := h.Get(name)
	if !ok {
		panic(fmt.Sprintf("service not found: %s", name))
	}
	typed, ok := svc.(T)
	if !ok {
		panic(fmt.Sprintf("service %s: type mismatch, got %T", name, svc))
	}
	return typed
}

// InitAll resolves dependency order and initializes every service with args
// A failure stops the services initialized so far, newest first
func (h *Hub) InitAll(args ...any) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	order, err := h.resolve()
	if err != nil {
		return err
	}
	h.order = order

	for i, name := range order {
		e := h.entries[name]
		if err := e.svc.Init(args...); err != nil {
			h.unwind(order[:i], phaseInitialized)
			return fmt.Errorf("service %s init failed: %w", name, err)
		}
		e.phase = phaseInitialized
		h.log.Debug("service initialized", "service", name)
	}
	return nil
}

// StartAll starts every initialized service in dependency order
// A failure stops the services started so far, newest first
func (h *Hub) StartAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.order == nil {
		return errors.New("services not initialized")
	}

	for i, name := range h.order {
		e := h.entries[name]
		if e.phase != phaseInitialized {
			continue
		}
		if err := e.svc.Start(); err != nil {
			h.unwind(h.order[:i], phaseStarted)
			return fmt.Errorf("service %s start failed: %w", name, err)
		}
		e.phase = phaseStarted
		h.log.Debug("service started", "service", name)
	}
	return nil
}

// StopAll stops started services in reverse dependency order
// Every service gets its Stop call; failures are logged and joined
func (h *Hub) StopAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.unwind(h.order, phaseStarted)
}

// unwind stops, newest first, the services in names that reached at least floor
// Stopped services drop back to registered
func (h *Hub) unwind(names []string, floor phase) error {
	var errs []error
	for _, name := range slices.Backward(names) {
		e := h.entries[name]
		if e.phase < floor {
			continue
		}
		e.phase = phaseRegistered
		if err := e.svc.Stop(); err != nil {
			h.log.Warn("service stop failed", "service", name, "error", err)
			errs = append(errs, fmt.Errorf("service %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// resolve orders services so each follows its dependencies
// Siblings are visited by name, which keeps the order stable across runs
func (h *Hub) resolve() ([]string, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	mark := make(map[string]int, len(h.entries))
	order := make([]string, 0, len(h.entries))

	var visit func(name string) error
	visit = func(name string) error {
		switch mark[name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("circular dependency detected at service %s", name)
		}
		mark[name] = visiting

		deps := slices.Sorted(slices.Values(h.entries[name].svc.Dependencies()))
		for _, dep := range deps {
			if _, ok := h.entries[dep]; !ok {
				return fmt.Errorf("service %s depends on unregistered service: %s", name, dep)
			}
			if err := visit(dep); err != nil {
				return err
			}
		}
		mark[name] = done
		order = append(order, name)
		return nil
	}

	for _, name := range slices.Sorted(maps.Keys(h.entries)) {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// Order returns the resolved dependency order; nil before InitAll
func (h *Hub) Order() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.order)
}

// Names returns registered service names, sorted
func (h *Hub) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Sorted(maps.Keys(h.entries))
}
