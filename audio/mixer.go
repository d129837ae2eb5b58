package audio

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// DefaultSampleRate is the rate every sound is resampled to before mixing.
const DefaultSampleRate = beep.SampleRate(44100)

type voice struct {
	ctrl *beep.Ctrl
	done atomic.Bool
}

// Option configures a Mixer.
type Option func(*Mixer)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Mixer) {
		m.logger = logger
	}
}

// Mixer combines named voices into one stream. The scene plays sounds from its goroutine
// while the speaker pulls samples from its own, so every method locks.
type Mixer struct {
	mu     sync.Mutex
	rate   beep.SampleRate
	mixer  *beep.Mixer
	voices map[string]*voice
	logger *slog.Logger
	played uint64
}

func NewMixer(rate beep.SampleRate, opts ...Option) *Mixer {
	m := &Mixer{
		rate:   rate,
		mixer:  &beep.Mixer{},
		voices: make(map[string]*voice),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Mixer) SampleRate() beep.SampleRate {
	return m.rate
}

// Start opens the audio device and streams the mixer to it.
func (m *Mixer) Start(buffer time.Duration) error {
	if err := speaker.Init(m.rate, m.rate.N(buffer)); err != nil {
		return err
	}
	speaker.Play(m)
	return nil
}

// Play starts s under name, replacing a voice already playing under that name.
func (m *Mixer) Play(name string, s beep.Streamer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.voices[name]; ok {
		// a nil streamer makes beep.Mixer drop the voice
		old.ctrl.Streamer = nil
		old.done.Store(true)
	}
	v := &voice{}
	v.ctrl = &beep.Ctrl{Streamer: beep.Seq(s, beep.Callback(func() { v.done.Store(true) }))}
	m.voices[name] = v
	m.mixer.Add(v.ctrl)
	m.played++
	m.logger.Debug("sound started", "name", name)
}

// Stop silences the voice playing under name.
func (m *Mixer) Stop(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.voices[name]
	if !ok {
		return false
	}
	v.ctrl.Streamer = nil
	v.done.Store(true)
	delete(m.voices, name)
	return true
}

// Playing reports whether the voice under name has samples left.
func (m *Mixer) Playing(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.voices[name]
	return ok && !v.done.Load()
}

// Voices returns the names of voices still playing.
func (m *Mixer) Voices() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var names []string
	for name, v := range m.voices {
		if v.done.Load() {
			delete(m.voices, name)
			continue
		}
		names = append(names, name)
	}
	return names
}

// Played returns how many voices were started.
func (m *Mixer) Played() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.played
}

// Stream implements beep.Streamer. It never runs dry; idle time streams silence.
func (m *Mixer) Stream(samples [][2]float64) (n int, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mixer.Stream(samples)
}

func (m *Mixer) Err() error {
	return nil
}

// Clear stops every voice.
func (m *Mixer) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mixer.Clear()
	m.voices = make(map[string]*voice)
}
