package scene_test

import (
	"testing"

	"cogentcore.org/core/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/helloxr/scene"
)

func TestParticleEmitterLifecycle(t *testing.T) {
	storage := newStorage()
	sched := scene.NewScheduler(storage)
	sched.Register(scene.NewParticleSystem(1))

	id := storage.Spawn("particles", scene.KindNode,
		scene.NewTransform(math32.Vec3(0, 1, 0)),
		scene.ParticleEmitter{
			Capacity:    5,
			EmitRate:    100,
			MinLifeTime: 1,
			MaxLifeTime: 1,
			MinSize:     0.01,
			MaxSize:     0.05,
			Direction1:  math32.Vec3(0, 1, 0),
			Direction2:  math32.Vec3(0, 1, 0),
			MinPower:    1,
			MaxPower:    1,
			Color1:      scene.White(),
			Color2:      scene.White(),
		})
	emitter := scene.ReadComponent[scene.ParticleEmitter](storage, id)

	sched.Once(0.1)
	assert.Empty(t, emitter.Particles)

	emitter.Start()
	sched.Once(0.1)
	require.Len(t, emitter.Particles, 5)
	for _, p := range emitter.Particles {
		assert.Equal(t, math32.Vec3(0, 1, 0), p.Position)
		assert.GreaterOrEqual(t, p.Size, float32(0.01))
		assert.LessOrEqual(t, p.Size, float32(0.05))
	}

	sched.Once(0.1)
	require.Len(t, emitter.Particles, 5)
	assert.InDelta(t, 1.1, emitter.Particles[0].Position.Y, 1e-5)

	emitter.Stop()
	sched.Once(1)
	assert.Empty(t, emitter.Particles)
}

func TestParticleGravity(t *testing.T) {
	storage := newStorage()
	sched := scene.NewScheduler(storage)
	sched.Register(scene.NewParticleSystem(7))

	id := storage.Spawn("particles", scene.KindNode, scene.NewTransform(math32.Vector3{}), scene.ParticleEmitter{
		Capacity:    1,
		EmitRate:    20,
		MinLifeTime: 5,
		MaxLifeTime: 5,
		Gravity:     math32.Vec3(0, -10, 0),
		Active:      true,
	})
	emitter := scene.ReadComponent[scene.ParticleEmitter](storage, id)

	sched.Once(0.1)
	require.Len(t, emitter.Particles, 1)
	sched.Once(0.5)
	assert.InDelta(t, -5, emitter.Particles[0].Velocity.Y, 1e-5)
	assert.InDelta(t, -2.5, emitter.Particles[0].Position.Y, 1e-5)
}
