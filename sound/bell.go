// Package sound plays short audible feedback for rejected input.
package sound

import (
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(48000)

// RejectTone is the default bell: a low fundamental with two falling harmonics
var RejectTone = Tone{
	Freq:    120,
	Length:  150 * time.Millisecond,
	Attack:  20 * time.Millisecond,
	Release: 30 * time.Millisecond,
	Gain:    0.2,
	Partials: []Partial{
		{Ratio: 1, Amp: 0.3},
		{Ratio: 2, Amp: 0.15},
		{Ratio: 3, Amp: 0.075},
	},
}

// Bell is a one-shot reject buzz mixed into the speaker
// Operations are safe before initialization and after cleanup; they do nothing
type Bell struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
	muted       atomic.Bool
	disabled    atomic.Bool
	rings       atomic.Int64
	log         *slog.Logger
	tone        Tone

	// initSpeaker is swapped in tests to avoid opening an audio device
	initSpeaker func(beep.SampleRate, int) error
}

// NewBell creates a bell; nil log falls back to slog.Default
func NewBell(log *slog.Logger) *Bell {
	if log == nil {
		log = slog.Default()
	}
	return &Bell{
		mixer:       &beep.Mixer{},
		log:         log,
		tone:        RejectTone,
		initSpeaker: speaker.Init,
	}
}

// Name implements service.Service
func (b *Bell) Name() string {
	return "sound"
}

// Dependencies implements service.Service
func (b *Bell) Dependencies() []string {
	return nil
}

// Init implements service.Service
// A bool arg is the mute state (true = muted); other args are ignored
func (b *Bell) Init(args ...any) error {
	for _, arg := range args {
		if muted, ok := arg.(bool); ok {
			b.muted.Store(muted)
		}
	}
	return nil
}

// Start implements service.Service
// Opens the speaker; a missing audio backend disables the bell without failing
func (b *Bell) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.initialized || b.disabled.Load() {
		return nil
	}

	if err := b.initSpeaker(sampleRate, sampleRate.N(time.Millisecond*100)); err != nil {
		b.disabled.Store(true)
		b.log.Warn("audio unavailable, bell disabled", "error", err)
		return nil
	}

	speaker.Play(b.mixer)
	b.initialized = true
	return nil
}

// Stop implements service.Service
func (b *Bell) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		return nil
	}
	speaker.Lock()
	b.mixer.Clear()
	speaker.Unlock()
	b.initialized = false
	return nil
}

// Ring plays one reject buzz
// Returns false when the bell is muted, disabled or not started
func (b *Bell) Ring() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized || b.muted.Load() {
		return false
	}

	streamer := beep.Take(sampleRate.N(b.tone.Length), b.tone.Streamer(sampleRate))
	speaker.Lock()
	b.mixer.Add(streamer)
	speaker.Unlock()
	b.rings.Add(1)
	return true
}

// SetMuted changes the mute state; returns the previous state
func (b *Bell) SetMuted(muted bool) bool {
	return b.muted.Swap(muted)
}

// IsMuted reports the mute state
func (b *Bell) IsMuted() bool {
	return b.muted.Load()
}

// IsDisabled reports whether audio failed to initialize
func (b *Bell) IsDisabled() bool {
	return b.disabled.Load()
}

// Rings returns the number of buzzes played
func (b *Bell) Rings() int64 {
	return b.rings.Load()
}

// Partial is one component of a Tone, as a multiple of the fundamental
type Partial struct {
	Ratio float64
	Amp   float64
}

// Tone is an additive synth voice with a linear attack and release
type Tone struct {
	Freq     float64 // Fundamental in Hz
	Length   time.Duration
	Attack   time.Duration
	Release  time.Duration
	Gain     float64
	Partials []Partial
}

// Streamer renders the tone at sr; it runs for Length and then ends
func (t Tone) Streamer(sr beep.SampleRate) beep.Streamer {
	return &toneStreamer{
		tone:    t,
		sr:      float64(sr),
		total:   sr.N(t.Length),
		attack:  sr.N(t.Attack),
		release: sr.N(t.Release),
	}
}

type toneStreamer struct {
	tone                   Tone
	sr                     float64
	pos                    int
	total, attack, release int
}

// envelope ramps up over the attack and down over the release, never above 1
func (s *toneStreamer) envelope() float64 {
	env := 1.0
	if s.attack > 0 {
		env = math.Min(env, float64(s.pos)/float64(s.attack))
	}
	if s.release > 0 {
		env = math.Min(env, float64(s.total-s.pos)/float64(s.release))
	}
	return math.Max(env, 0)
}

func (s *toneStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	for n < len(samples) && s.pos < s.total {
		phase := 2 * math.Pi * s.tone.Freq * float64(s.pos) / s.sr
		v := 0.0
		for _, p := range s.tone.Partials {
			v += p.Amp * math.Sin(p.Ratio*phase)
		}
		v *= s.envelope() * s.tone.Gain

		samples[n][0], samples[n][1] = v, v
		s.pos++
		n++
	}
	return n, n > 0
}

func (s *toneStreamer) Err() error {
	return nil
}
