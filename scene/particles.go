package scene

import (
	"math/rand/v2"

	"cogentcore.org/core/math32"
)

// Particle is one live point of a ParticleEmitter, in world space.
type Particle struct {
	Position math32.Vector3
	Velocity math32.Vector3
	Age      float32
	Life     float32
	Size     float32
	Color    Color3
}

// ParticleEmitter emits particles from its entity's world position while Active.
// Directions and power pick each particle's initial velocity between the two bounds.
type ParticleEmitter struct {
	Capacity    int
	Texture     string
	EmitRate    float32
	MinLifeTime float32
	MaxLifeTime float32
	MinSize     float32
	MaxSize     float32
	Direction1  math32.Vector3
	Direction2  math32.Vector3
	MinPower    float32
	MaxPower    float32
	Gravity     math32.Vector3
	Color1      Color3
	Color2      Color3
	Active      bool

	Particles []Particle
	pending   float32
}

// Start begins emission. Particles already alive keep moving either way.
func (e *ParticleEmitter) Start() { e.Active = true }

// Stop ends emission.
func (e *ParticleEmitter) Stop() { e.Active = false }

// ParticleSystem ages, moves and emits particles for every emitter once per frame.
type ParticleSystem struct {
	Emitters Query[ParticleEmitter]
	rng      *rand.Rand
}

// NewParticleSystem returns a system drawing particle spreads from a seeded source.
func NewParticleSystem(seed uint64) *ParticleSystem {
	return &ParticleSystem{rng: rand.New(rand.NewPCG(seed, seed>>1|1))}
}

func (s *ParticleSystem) Execute(frame *UpdateFrame) {
	dt := float32(frame.DeltaTime)
	for id, e := range s.Emitters.Iter() {
		live := e.Particles[:0]
		for _, p := range e.Particles {
			p.Age += dt
			if p.Age >= p.Life {
				continue
			}
			p.Velocity = p.Velocity.Add(e.Gravity.MulScalar(dt))
			p.Position = p.Position.Add(p.Velocity.MulScalar(dt))
			live = append(live, p)
		}
		e.Particles = live

		if !e.Active {
			e.pending = 0
			continue
		}
		origin := math32.Vector3{}
		if world, ok := WorldTransform(frame.Storage, id); ok {
			origin = world.Position
		}
		e.pending += e.EmitRate * dt
		for e.pending >= 1 {
			e.pending--
			if len(e.Particles) >= e.Capacity {
				continue
			}
			e.Particles = append(e.Particles, s.emit(e, origin))
		}
	}
}

func (s *ParticleSystem) emit(e *ParticleEmitter, origin math32.Vector3) Particle {
	dir := e.Direction1.Lerp(e.Direction2, s.rng.Float32())
	return Particle{
		Position: origin,
		Velocity: dir.MulScalar(s.between(e.MinPower, e.MaxPower)),
		Life:     s.between(e.MinLifeTime, e.MaxLifeTime),
		Size:     s.between(e.MinSize, e.MaxSize),
		Color:    e.Color1.Lerp(e.Color2, s.rng.Float32()),
	}
}

func (s *ParticleSystem) between(lo, hi float32) float32 {
	return lo + (hi-lo)*s.rng.Float32()
}
