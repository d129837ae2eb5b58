package scene_test

import (
	"testing"
	"time"

	"cogentcore.org/core/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/helloxr/scene"
)

func lightDiffuse(t *testing.T, storage *scene.Storage) (scene.EntityId, scene.Property) {
	t.Helper()
	light := storage.Spawn("light", scene.KindLight, scene.Light{Diffuse: scene.White(), Intensity: 1})
	prop, err := scene.ResolveProperty(storage, light, "diffuse")
	require.NoError(t, err)
	return light, prop
}

func TestAnimatorTween(t *testing.T) {
	storage := newStorage()
	light, prop := lightDiffuse(t, storage)
	animator := scene.NewAnimator(nil)

	done := 0
	h, err := animator.Animate(prop, scene.Black(), time.Second, func() { done++ })
	require.NoError(t, err)
	assert.True(t, animator.Running(h))

	for range 5 {
		animator.Step(0.1)
	}
	diffuse := scene.ReadComponent[scene.Light](storage, light).Diffuse
	assert.True(t, diffuse.Near(scene.NewColor3(0.5, 0.5, 0.5), 1e-4), diffuse.String())
	assert.Equal(t, 0, done)

	for range 5 {
		animator.Step(0.1)
	}
	assert.Equal(t, scene.Black(), scene.ReadComponent[scene.Light](storage, light).Diffuse)
	assert.Equal(t, 1, done)
	assert.Equal(t, 0, animator.Active())
}

func TestAnimatorZeroDurationCompletesImmediately(t *testing.T) {
	storage := newStorage()
	light, prop := lightDiffuse(t, storage)
	animator := scene.NewAnimator(nil)

	done := false
	_, err := animator.Animate(prop, scene.Red(), 0, func() { done = true })
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, scene.Red(), scene.ReadComponent[scene.Light](storage, light).Diffuse)
	assert.Equal(t, 0, animator.Active())
}

func TestAnimatorDropsTweenOnDisposedTarget(t *testing.T) {
	storage := newStorage()
	light, prop := lightDiffuse(t, storage)
	animator := scene.NewAnimator(nil)

	done := false
	_, err := animator.Animate(prop, scene.Black(), time.Second, func() { done = true })
	require.NoError(t, err)
	animator.Step(0.5)
	storage.Dispose(light)
	animator.Step(1)

	assert.False(t, done)
	assert.Equal(t, 0, animator.Active())
}

func TestAnimatorChainedTweenStartsAtPredecessorEnd(t *testing.T) {
	storage := newStorage()
	mesh := storage.Spawn("box", scene.KindMesh, scene.NewTransform(math32.Vector3{}))
	prop, err := scene.ResolveProperty(storage, mesh, "position")
	require.NoError(t, err)
	animator := scene.NewAnimator(nil)

	_, err = animator.Animate(prop, math32.Vec3(1, 0, 0), time.Second, func() {
		_, err := animator.Animate(prop, math32.Vec3(1, 1, 0), time.Second, nil)
		require.NoError(t, err)
	})
	require.NoError(t, err)

	animator.Step(1.5)
	pos := scene.ReadComponent[scene.Transform](storage, mesh).Position
	assert.InDelta(t, 1, pos.X, 1e-6)
	assert.InDelta(t, 0.5, pos.Y, 1e-6)
	assert.Equal(t, 1, animator.Active())

	animator.Step(0.5)
	assert.Equal(t, math32.Vec3(1, 1, 0), scene.ReadComponent[scene.Transform](storage, mesh).Position)
	assert.Equal(t, 0, animator.Active())
}

func TestAnimatorOvershootSpansSeveralLinks(t *testing.T) {
	storage := newStorage()
	mesh := storage.Spawn("box", scene.KindMesh, scene.NewTransform(math32.Vector3{}))
	prop, err := scene.ResolveProperty(storage, mesh, "position")
	require.NoError(t, err)
	animator := scene.NewAnimator(nil)

	var order []int
	third := func() {
		order = append(order, 2)
		_, err := animator.Animate(prop, math32.Vec3(0, 0, 0), time.Second, func() { order = append(order, 3) })
		require.NoError(t, err)
	}
	second := func() {
		order = append(order, 1)
		_, err := animator.Animate(prop, math32.Vec3(1, 1, 0), 500*time.Millisecond, third)
		require.NoError(t, err)
	}
	_, err = animator.Animate(prop, math32.Vec3(1, 0, 0), time.Second, second)
	require.NoError(t, err)

	// 1s for the first link and 0.5s for the second leave 0.25s of the third.
	animator.Step(1.75)
	assert.Equal(t, []int{1, 2}, order)
	pos := scene.ReadComponent[scene.Transform](storage, mesh).Position
	assert.InDelta(t, 0.75, pos.X, 1e-6)
	assert.InDelta(t, 0.75, pos.Y, 1e-6)

	animator.Step(0.75)
	assert.Equal(t, []int{1, 2, 3}, order)
	assert.Equal(t, 0, animator.Active())
}

func TestAnimatorKeyframesLoop(t *testing.T) {
	storage := newStorage()
	mesh := storage.Spawn("model", scene.KindMesh, scene.NewTransform(math32.Vector3{}))
	prop, err := scene.ResolveProperty(storage, mesh, "rotation")
	require.NoError(t, err)
	animator := scene.NewAnimator(nil)

	h, err := animator.Play(prop, []scene.Keyframe{
		{Time: 0, Value: math32.Vec3(0, 0, 0)},
		{Time: 2 * time.Second, Value: math32.Vec3(0, 4, 0)},
	}, true)
	require.NoError(t, err)

	animator.Step(1)
	assert.InDelta(t, 2, scene.ReadComponent[scene.Transform](storage, mesh).Rotation.Y, 1e-4)
	animator.Step(2)
	assert.InDelta(t, 2, scene.ReadComponent[scene.Transform](storage, mesh).Rotation.Y, 1e-4)
	assert.True(t, animator.Running(h))

	assert.True(t, animator.Stop(h))
	assert.False(t, animator.Running(h))
}

func TestAnimatorRejectsBadKeyframes(t *testing.T) {
	storage := newStorage()
	_, prop := lightDiffuse(t, storage)
	animator := scene.NewAnimator(nil)

	_, err := animator.Play(prop, []scene.Keyframe{{Time: 0, Value: scene.White()}}, false)
	assert.Error(t, err)
	_, err = animator.Play(prop, []scene.Keyframe{
		{Time: time.Second, Value: scene.White()},
		{Time: 0, Value: scene.Black()},
	}, false)
	assert.Error(t, err)
}
