package status

import (
	"math"
	"sync/atomic"
	"unicode/utf8"
)

// MaxStringLen bounds AtomicString values; longer values are cut on a rune boundary
const MaxStringLen = 32

// AtomicString is a lock-free string cell for labels such as the last key name
// Zero value holds the empty string
type AtomicString struct {
	ptr atomic.Pointer[string]
}

// Store sets the value, truncated to at most MaxStringLen bytes
func (s *AtomicString) Store(val string) {
	if len(val) > MaxStringLen {
		cut := MaxStringLen
		for cut > 0 && !utf8.RuneStart(val[cut]) {
			cut--
		}
		val = val[:cut]
	}
	s.ptr.Store(&val)
}

// Load returns the current value
func (s *AtomicString) Load() string {
	if p := s.ptr.Load(); p != nil {
		return *p
	}
	return ""
}

// AtomicFloat is a lock-free float64 gauge stored as IEEE bits
// Zero value holds 0.0
type AtomicFloat struct {
	bits atomic.Uint64
}

// Set stores val
func (f *AtomicFloat) Set(val float64) {
	f.bits.Store(math.Float64bits(val))
}

// Get loads the current value
func (f *AtomicFloat) Get() float64 {
	return math.Float64frombits(f.bits.Load())
}

// Smooth folds sample into an exponential moving average with weight alpha in (0,1]
// The first sample on a zero gauge is taken as-is; returns the new average
func (f *AtomicFloat) Smooth(sample, alpha float64) float64 {
	for {
		old := f.bits.Load()
		next := sample
		if old != 0 {
			prev := math.Float64frombits(old)
			next = prev + alpha*(sample-prev)
		}
		if f.bits.CompareAndSwap(old, math.Float64bits(next)) {
			return next
		}
	}
}
