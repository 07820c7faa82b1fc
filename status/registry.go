package status

import "sync/atomic"

// Metric keys written by the input translator
const (
	MetricEvents         = "input.events"
	MetricKeysQueued     = "input.keys_queued"
	MetricMouseCoalesced = "input.mouse_coalesced"
	MetricPendingKeys    = "input.pending_keys"
	MetricPendingEvents  = "input.pending_events"
	MetricLastKey        = "input.last_key"
	MetricPollMicros     = "input.poll_us"
	MetricExitRequested  = "input.exit_requested"
)

// Registry is the central metrics facade
// Components cache pointers at construction; hot paths write directly to atomics
type Registry struct {
	Bools   *MetricMap[atomic.Bool]
	Ints    *MetricMap[atomic.Int64]
	Floats  *MetricMap[AtomicFloat]
	Strings *MetricMap[AtomicString]
}

// NewRegistry creates an initialized Registry
func NewRegistry() *Registry {
	return &Registry{
		Bools:   NewMetricMap[atomic.Bool](),
		Ints:    NewMetricMap[atomic.Int64](),
		Floats:  NewMetricMap[AtomicFloat](),
		Strings: NewMetricMap[AtomicString](),
	}
}

// TotalCount returns total metrics across all types
func (r *Registry) TotalCount() int {
	return r.Bools.Count() + r.Ints.Count() + r.Floats.Count() + r.Strings.Count()
}

// Snapshot renders every metric as a string keyed by name, for logs and status lines
func (r *Registry) Snapshot() map[string]any {
	out := make(map[string]any, r.TotalCount())
	collect(out, r.Bools, (*atomic.Bool).Load)
	collect(out, r.Ints, (*atomic.Int64).Load)
	collect(out, r.Floats, (*AtomicFloat).Get)
	collect(out, r.Strings, (*AtomicString).Load)
	return out
}

func collect[T, V any](out map[string]any, m *MetricMap[T], read func(*T) V) {
	for k, p := range m.All() {
		out[k] = read(p)
	}
}
