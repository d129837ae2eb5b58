package audio_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/helloxr/audio"
	"github.com/plus3/helloxr/behavior"
	"github.com/plus3/helloxr/scene"
)

const rate = beep.SampleRate(8000)

func drain(s beep.Streamer, limit int) int {
	buf := make([][2]float64, 256)
	total := 0
	for total < limit {
		n, ok := s.Stream(buf)
		total += n
		if !ok {
			break
		}
	}
	return total
}

func TestToneLengthAndRange(t *testing.T) {
	tone := audio.NewTone(440, 100*time.Millisecond, audio.WaveSine, rate)
	assert.Equal(t, 800, tone.Len())

	buf := make([][2]float64, 1000)
	n, ok := tone.Stream(buf)
	assert.True(t, ok)
	assert.Equal(t, 800, n)
	for _, s := range buf[:n] {
		assert.LessOrEqual(t, s[0], 1.0)
		assert.GreaterOrEqual(t, s[0], -1.0)
	}

	n, ok = tone.Stream(buf)
	assert.Equal(t, 0, n)
	assert.False(t, ok)

	require.NoError(t, tone.Seek(0))
	assert.Equal(t, 800, drain(tone, 10000))
}

func TestEnvelopeStartsSilent(t *testing.T) {
	shaped := audio.NewEnvelope(audio.NewTone(440, time.Second, audio.WaveSquare, rate),
		time.Second, 100*time.Millisecond, 100*time.Millisecond, rate)
	buf := make([][2]float64, 1)
	_, ok := shaped.Stream(buf)
	require.True(t, ok)
	assert.Equal(t, 0.0, buf[0][0])
}

func TestMixerTracksVoices(t *testing.T) {
	m := audio.NewMixer(rate)
	m.Play("chirp", audio.Cricket(rate))
	assert.True(t, m.Playing("chirp"))
	assert.Equal(t, []string{"chirp"}, m.Voices())

	// the mixer never runs dry; stream well past the chirp
	buf := make([][2]float64, 512)
	for range 10 {
		n, ok := m.Stream(buf)
		require.True(t, ok)
		require.Equal(t, len(buf), n)
	}
	assert.False(t, m.Playing("chirp"))
	assert.Empty(t, m.Voices())
	assert.Equal(t, uint64(1), m.Played())

	m.Play("pad", audio.Ambient(rate))
	assert.True(t, m.Stop("pad"))
	assert.False(t, m.Playing("pad"))
	assert.False(t, m.Stop("pad"))
}

func TestLibraryDecodesWav(t *testing.T) {
	path := filepath.Join(t.TempDir(), "beep.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	format := beep.Format{SampleRate: 16000, NumChannels: 2, Precision: 2}
	require.NoError(t, wav.Encode(f, audio.NewTone(440, 100*time.Millisecond, audio.WaveSine, 16000), format))
	require.NoError(t, f.Close())

	s, got, err := audio.Open(path)
	require.NoError(t, err)
	assert.Equal(t, beep.SampleRate(16000), got.SampleRate)
	assert.Equal(t, 1600, s.Len())

	lib := audio.NewLibrary(rate, nil)
	resampled := lib.Stream(path, false)
	assert.InDelta(t, 800, drain(resampled, 100000), 16)
}

func TestLibraryFallsBack(t *testing.T) {
	var logs bytes.Buffer
	lib := audio.NewDefaultLibrary(rate, slog.New(slog.NewTextHandler(&logs, nil)))

	s := lib.Stream("sounds/cricket.mp3", false)
	assert.Equal(t, audio.Cricket(rate).Len(), drain(s, 100000))
	assert.Contains(t, logs.String(), "sounds/cricket.mp3")

	s = lib.Stream("sounds/unknown.wav", false)
	assert.Equal(t, audio.Chime(rate).Len(), drain(s, 100000))

	_, _, err := audio.Open("notes.txt")
	assert.Error(t, err)
}

func TestLibraryLoop(t *testing.T) {
	lib := audio.NewDefaultLibrary(rate, nil)
	s := lib.Stream("cricket", true)
	assert.GreaterOrEqual(t, drain(s, 50000), 50000)
}

func TestPlaySoundAction(t *testing.T) {
	storage := scene.NewStorage(scene.NewDefaultRegistry())
	sched := scene.NewScheduler(storage)
	registry := behavior.NewRegistry(sched)
	mixer := audio.NewMixer(rate)
	lib := audio.NewDefaultLibrary(rate, nil)

	cricket := storage.Spawn("cricket", scene.KindSound, scene.Sound{Path: "cricket"})
	music := storage.Spawn("music", scene.KindSound, scene.Sound{Path: "ambient", Loop: true, Autoplay: true, Volume: 0.5})
	plane := storage.Spawn("text plane", scene.KindMesh, scene.Plane(2, 1))

	_, err := registry.NewActionManager(plane, false)
	require.NoError(t, err)

	_, err = registry.Register(plane, behavior.OnPickDown(), audio.PlaySound(plane, mixer, lib), nil)
	assert.ErrorIs(t, err, scene.ErrUnknownProperty)

	_, err = registry.Register(plane, behavior.OnPickDown(), audio.PlaySound(cricket, mixer, lib), nil)
	require.NoError(t, err)

	registry.Fire(behavior.Event{Kind: behavior.PickDown, Source: plane})
	assert.True(t, mixer.Playing("cricket"))

	assert.Equal(t, 1, audio.Autoplay(storage, mixer, lib))
	assert.True(t, mixer.Playing(storage.Name(music)))
}
