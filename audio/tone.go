package audio

import (
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// tone is a fixed-length oscillator. It can seek, so it loops like a decoded file.
type tone struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
}

// NewTone creates a seekable oscillator of the given frequency and length.
func NewTone(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.StreamSeeker {
	return &tone{
		freq:     freq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
	}
}

func (o *tone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		case WaveSaw:
			val = 2.0 * (o.phase - 0.5)
		case WaveNoise:
			val = rand.Float64()*2 - 1
		}

		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *tone) Err() error { return nil }

func (o *tone) Len() int { return o.duration }

func (o *tone) Position() int { return o.position }

func (o *tone) Seek(p int) error {
	if p < 0 || p > o.duration {
		return errors.New("tone: seek out of range")
	}
	o.position = p
	o.phase = math.Mod(float64(p)*o.freq/float64(o.rate), 1)
	return nil
}

// envelope applies a linear attack and release to a stream of known length.
type envelope struct {
	streamer       beep.StreamSeeker
	attackSamples  int
	releaseSamples int
	totalSamples   int
}

// NewEnvelope shapes s with attack and release ramps over duration.
func NewEnvelope(s beep.StreamSeeker, duration, attack, release time.Duration, rate beep.SampleRate) beep.StreamSeeker {
	return &envelope{
		streamer:       s,
		attackSamples:  rate.N(attack),
		releaseSamples: rate.N(release),
		totalSamples:   rate.N(duration),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	start := e.streamer.Position()
	n, ok = e.streamer.Stream(samples)

	releaseStart := e.totalSamples - e.releaseSamples
	for i := 0; i < n; i++ {
		pos := start + i
		vol := 1.0
		if pos < e.attackSamples && e.attackSamples > 0 {
			vol = float64(pos) / float64(e.attackSamples)
		}
		if pos >= releaseStart && e.releaseSamples > 0 {
			vol = max(float64(e.totalSamples-pos)/float64(e.releaseSamples), 0)
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

func (e *envelope) Len() int { return e.streamer.Len() }

func (e *envelope) Position() int { return e.streamer.Position() }

func (e *envelope) Seek(p int) error { return e.streamer.Seek(p) }

// newVolume applies a linear gain. A zero gain is silent.
func newVolume(s beep.Streamer, gain float64) beep.Streamer {
	if gain <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(gain)}
}

// Chime is a short bell used as the fallback for sounds that fail to load.
func Chime(rate beep.SampleRate) beep.StreamSeeker {
	const d = 400 * time.Millisecond
	return NewEnvelope(NewTone(880, d, WaveSine, rate), d, 5*time.Millisecond, 300*time.Millisecond, rate)
}

// Cricket is a single chirp of a high square wave.
func Cricket(rate beep.SampleRate) beep.StreamSeeker {
	const d = 120 * time.Millisecond
	return NewEnvelope(NewTone(4500, d, WaveSquare, rate), d, 10*time.Millisecond, 60*time.Millisecond, rate)
}

// Ambient is a soft low pad suited to looping background sound.
func Ambient(rate beep.SampleRate) beep.StreamSeeker {
	const d = 2 * time.Second
	return NewEnvelope(NewTone(110, d, WaveSine, rate), d, 500*time.Millisecond, 500*time.Millisecond, rate)
}
