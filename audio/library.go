package audio

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/wav"
)

// Factory builds a fresh streamer at the given rate.
type Factory func(rate beep.SampleRate) beep.StreamSeeker

// Library resolves opaque sound paths to streamers: registered names first, then
// .wav and .mp3 files, then the chime fallback.
type Library struct {
	rate      beep.SampleRate
	factories map[string]Factory
	logger    *slog.Logger
}

func NewLibrary(rate beep.SampleRate, logger *slog.Logger) *Library {
	if logger == nil {
		logger = slog.Default()
	}
	return &Library{
		rate:      rate,
		factories: make(map[string]Factory),
		logger:    logger,
	}
}

// NewDefaultLibrary registers the synthesized sounds, also under the base names of the
// demo assets they stand in for.
func NewDefaultLibrary(rate beep.SampleRate, logger *slog.Logger) *Library {
	l := NewLibrary(rate, logger)
	l.Register("cricket", Cricket)
	l.Register("crickets", Cricket)
	l.Register("chime", Chime)
	l.Register("ambient", Ambient)
	l.Register("wave", Ambient)
	return l
}

// Register binds name to a synthesized sound.
func (l *Library) Register(name string, f Factory) {
	l.factories[name] = f
}

func (l *Library) Has(name string) bool {
	_, ok := l.factories[name]
	return ok
}

// Open decodes a .wav or .mp3 file. The whole file is read up front so nothing is left open.
func Open(path string) (beep.StreamSeekCloser, beep.Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, beep.Format{}, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return wav.Decode(bytes.NewReader(data))
	case ".mp3":
		return mp3.Decode(io.NopCloser(bytes.NewReader(data)))
	default:
		return nil, beep.Format{}, fmt.Errorf("unsupported audio format %q", filepath.Ext(path))
	}
}

// Stream resolves path to a streamer at the library rate. Looping happens before
// resampling. A file that fails to load falls back to the synthesized sound registered
// under its base name, or the chime, and the failure is logged.
func (l *Library) Stream(path string, loop bool) beep.Streamer {
	if f, ok := l.factories[path]; ok {
		return l.loop(f(l.rate), loop)
	}

	s, format, err := Open(path)
	if err != nil {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		fallback, ok := l.factories[name]
		if !ok {
			fallback = Chime
		}
		l.logger.Warn("sound unavailable, using synthesized fallback", "path", path, "err", err)
		return l.loop(fallback(l.rate), loop)
	}
	var out beep.Streamer = l.loop(s, loop)
	if format.SampleRate != l.rate {
		out = beep.Resample(4, format.SampleRate, l.rate, out)
	}
	return out
}

func (l *Library) loop(s beep.StreamSeeker, loop bool) beep.Streamer {
	if loop {
		return beep.Loop(-1, s)
	}
	return s
}
