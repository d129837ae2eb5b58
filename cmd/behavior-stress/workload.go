package main

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"cogentcore.org/core/math32"

	"github.com/plus3/helloxr/behavior"
	"github.com/plus3/helloxr/scene"
)

var keys = []string{"a", "b", "c", "r", "x", "z"}

// workload is a scene full of action managers hammered with random triggers.
type workload struct {
	rng      *rand.Rand
	storage  *scene.Storage
	sched    *scene.Scheduler
	registry *behavior.Registry
	light    scene.EntityId
	entities []scene.EntityId
	bindings int
	events   int
	spawned  int
	disposed int
	keyHits  int
}

func newWorkload(seed uint64, entities, bindings, events int, logger *slog.Logger) (*workload, error) {
	storage := scene.NewStorage(scene.NewDefaultRegistry())
	sched := scene.NewScheduler(storage, scene.WithLogger(logger))
	w := &workload{
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		storage:  storage,
		sched:    sched,
		registry: behavior.NewRegistry(sched, behavior.WithLogger(logger)),
		bindings: bindings,
		events:   events,
	}
	w.light = storage.Spawn("default light", scene.KindLight, scene.Light{Diffuse: scene.White(), Intensity: 0.7})
	for _, key := range keys {
		_, err := w.registry.Register(0, behavior.OnKeyUp(key), behavior.ExecuteCode("count "+key, func(behavior.Env) {
			w.keyHits++
		}), nil)
		if err != nil {
			return nil, err
		}
	}
	for range entities {
		if _, err := w.spawn(); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// spawn adds one mesh with a manager and a mix of chained, gated and key bindings.
func (w *workload) spawn() (scene.EntityId, error) {
	w.spawned++
	id := w.storage.Spawn(fmt.Sprintf("mesh %d", w.spawned), scene.KindMesh,
		scene.NewTransform(math32.Vec3(w.rng.Float32()*10, w.rng.Float32()*10, 5)),
		scene.Sphere(0.5+w.rng.Float32()),
		scene.Material{Diffuse: scene.White()},
	)
	if _, err := w.registry.NewActionManager(id, w.rng.IntN(2) == 0); err != nil {
		return 0, err
	}
	for i := range w.bindings {
		var err error
		switch i % 3 {
		case 0:
			var b *behavior.Binding
			grow := time.Duration(50+w.rng.IntN(400)) * time.Millisecond
			b, err = w.registry.Register(id, behavior.OnPickDown(),
				behavior.Interpolate(id, "scaling", math32.Vec3(2, 2, 2), grow), nil)
			if err == nil {
				_, err = b.Then(behavior.Interpolate(id, "scaling", math32.Vec3(1, 1, 1), grow))
			}
		case 1:
			_, err = w.registry.Register(id, behavior.OnPickDown(),
				behavior.Interpolate(w.light, "diffuse", scene.Black(), 200*time.Millisecond),
				behavior.Value(w.light, "diffuse", behavior.Equal, scene.White()))
		case 2:
			key := keys[w.rng.IntN(len(keys))]
			_, err = w.registry.Register(id, behavior.OnPickUp(),
				behavior.SetValue(id, "material.wireframe", key == "r"), nil)
		}
		if err != nil {
			return 0, err
		}
	}
	w.entities = append(w.entities, id)
	return id, nil
}

// frame fires random pick and key events, churns one entity now and then, then ticks.
func (w *workload) frame(dt float64) error {
	for range w.events {
		if len(w.entities) == 0 {
			break
		}
		target := w.entities[w.rng.IntN(len(w.entities))]
		switch w.rng.IntN(3) {
		case 0:
			w.registry.Fire(behavior.Event{Kind: behavior.PickDown, Source: target})
		case 1:
			w.registry.Fire(behavior.Event{Kind: behavior.PickUp, Source: target})
		default:
			w.registry.Fire(behavior.Event{Kind: behavior.KeyUp, Key: keys[w.rng.IntN(len(keys))]})
		}
	}

	if len(w.entities) > 0 && w.rng.IntN(10) == 0 {
		i := w.rng.IntN(len(w.entities))
		w.storage.Dispose(w.entities[i])
		w.entities[i] = w.entities[len(w.entities)-1]
		w.entities = w.entities[:len(w.entities)-1]
		w.disposed++
		if _, err := w.spawn(); err != nil {
			return err
		}
	}

	if light := scene.ReadComponent[scene.Light](w.storage, w.light); light != nil && light.Diffuse.Equals(scene.Black()) {
		light.Diffuse = scene.White()
	}
	w.sched.Once(dt)
	return nil
}
