package audio

import (
	"fmt"
	"reflect"

	"github.com/gopxl/beep"

	"github.com/plus3/helloxr/behavior"
	"github.com/plus3/helloxr/scene"
)

// Voice builds the streamer for a sound component, volume applied.
// A zero volume means unity gain.
func Voice(lib *Library, sound scene.Sound) beep.Streamer {
	s := lib.Stream(sound.Path, sound.Loop)
	if sound.Volume == 0 || sound.Volume == 1 {
		return s
	}
	return newVolume(s, sound.Volume)
}

// PlaySoundAction plays the sound component of its target. It completes as soon as
// playback starts.
type PlaySoundAction struct {
	Target  scene.EntityId
	Mixer   *Mixer
	Library *Library
}

func PlaySound(target scene.EntityId, mixer *Mixer, lib *Library) *PlaySoundAction {
	return &PlaySoundAction{Target: target, Mixer: mixer, Library: lib}
}

func (a *PlaySoundAction) Validate(storage *scene.Storage, scope scene.EntityId) error {
	target := a.Target
	if !target.Valid() {
		target = scope
	}
	if err := storage.Check(target); err != nil {
		return fmt.Errorf("play sound: %w", err)
	}
	if !storage.HasComponent(target, reflect.TypeFor[scene.Sound]()) {
		return fmt.Errorf("play sound on %q: %w", storage.Name(target), scene.ErrUnknownProperty)
	}
	if a.Mixer == nil || a.Library == nil {
		return fmt.Errorf("play sound on %q: no mixer", storage.Name(target))
	}
	return nil
}

func (a *PlaySoundAction) Run(env behavior.Env, done func()) {
	target := a.Target
	if !target.Valid() {
		target = env.Scope
	}
	sound := scene.ReadComponent[scene.Sound](env.Storage, target)
	if sound == nil {
		env.Logger.Debug("play sound skipped", "target", target)
		return
	}
	a.Mixer.Play(env.Storage.Name(target), Voice(a.Library, *sound))
	done()
}

func (a *PlaySoundAction) Describe() string {
	return fmt.Sprintf("play sound %s", a.Target)
}

// Autoplay starts every sound flagged to play on load and returns how many started.
func Autoplay(storage *scene.Storage, mixer *Mixer, lib *Library) int {
	started := 0
	for id, sound := range scene.NewQuery[scene.Sound](storage).Iter() {
		if !sound.Autoplay {
			continue
		}
		mixer.Play(storage.Name(id), Voice(lib, *sound))
		started++
	}
	return started
}
