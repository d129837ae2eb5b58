package main

import (
	"testing"

	"cogentcore.org/core/math32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"

	"github.com/plus3/helloxr/scene"
	"github.com/plus3/helloxr/signal"
)

func TestViewRayHitsProjectedPoint(t *testing.T) {
	v := newView(800, 600)
	p := math32.Vec3(1.5, -0.5, 5)
	x, y := v.project(p)

	r := v.ray(x, y)
	hit := r.At(100 + p.Z)
	assert.InDelta(t, p.X, hit.X, 1e-4)
	assert.InDelta(t, p.Y, hit.Y, 1e-4)
	assert.InDelta(t, p.Z, hit.Z, 1e-4)
}

func TestViewPicksSphere(t *testing.T) {
	storage := scene.NewStorage(scene.NewDefaultRegistry())
	sphere := storage.Spawn("sphere", scene.KindMesh, scene.NewTransform(math32.Vec3(0, -0.5, 5)), scene.Sphere(1.3))

	v := newView(1280, 720)
	x, y := v.project(math32.Vec3(0, -0.5, 5))
	hit, _, ok := scene.Pick(storage, v.ray(x, y))
	assert.True(t, ok)
	assert.Equal(t, sphere, hit)

	_, _, ok = scene.Pick(storage, v.ray(10, 10))
	assert.False(t, ok)
}

func TestBackgroundFollowsBackdrop(t *testing.T) {
	storage := scene.NewStorage(scene.NewDefaultRegistry())
	assert.Equal(t, backgroundColor, background(storage))

	storage.Spawn("skybox", scene.KindMesh, scene.Backdrop{Kind: scene.BackdropSkybox, Size: 1000})
	assert.Equal(t, skyColor, background(storage))

	storage.Spawn("video dome", scene.KindMesh, scene.Backdrop{Kind: scene.BackdropVideoDome, Size: 1000})
	assert.Equal(t, domeColor, background(storage))
}

func TestKeyEvent(t *testing.T) {
	ev, ok := keyEvent(ebiten.KeyI, modifiers{ctrl: true, alt: true})
	assert.True(t, ok)
	assert.Equal(t, signal.KeyEvent{Key: "i", Ctrl: true, Alt: true}, ev)

	combo, err := signal.ParseKeyCombo("ctrl+alt+i")
	assert.NoError(t, err)
	assert.True(t, combo.Matches(ev))

	ev, ok = keyEvent(ebiten.KeyDigit3, modifiers{})
	assert.True(t, ok)
	assert.Equal(t, "3", ev.Key)

	_, ok = keyEvent(ebiten.KeyControlLeft, modifiers{ctrl: true})
	assert.False(t, ok)
}
