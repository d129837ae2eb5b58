package behavior_test

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"cogentcore.org/core/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/helloxr/behavior"
	"github.com/plus3/helloxr/scene"
)

type fixture struct {
	storage  *scene.Storage
	sched    *scene.Scheduler
	registry *behavior.Registry
	sphere   scene.EntityId
	light    scene.EntityId
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	storage := scene.NewStorage(scene.NewDefaultRegistry())
	sched := scene.NewScheduler(storage)
	f := &fixture{
		storage:  storage,
		sched:    sched,
		registry: behavior.NewRegistry(sched),
	}
	f.sphere = storage.Spawn("sphere", scene.KindMesh,
		scene.NewTransform(math32.Vector3{}), scene.Sphere(1), scene.Material{Diffuse: scene.White()})
	f.light = storage.Spawn("default light", scene.KindLight, scene.Light{Diffuse: scene.White(), Intensity: 0.7})
	return f
}

func (f *fixture) diffuse() scene.Color3 {
	return scene.ReadComponent[scene.Light](f.storage, f.light).Diffuse
}

func (f *fixture) step(seconds float64, dt float64) {
	for elapsed := 0.0; elapsed < seconds-1e-9; elapsed += dt {
		f.sched.Once(dt)
	}
}

func TestLightFadesOutAndBack(t *testing.T) {
	f := newFixture(t)
	_, err := f.registry.NewActionManager(f.sphere, false)
	require.NoError(t, err)

	_, err = f.registry.Register(f.sphere, behavior.OnPickDown(), behavior.Chain(
		behavior.Interpolate(f.light, "diffuse", scene.Black(), time.Second),
		behavior.Interpolate(f.light, "diffuse", scene.White(), time.Second),
	), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, f.registry.Fire(behavior.Event{Kind: behavior.PickDown, Source: f.sphere}))

	f.step(0.5, 0.05)
	assert.True(t, f.diffuse().Near(scene.NewColor3(0.5, 0.5, 0.5), 1e-3), f.diffuse().String())

	f.step(0.5, 0.05)
	assert.Equal(t, scene.Black(), f.diffuse())

	f.step(0.5, 0.05)
	assert.False(t, f.diffuse().Equals(scene.White()))

	f.step(0.5, 0.05)
	assert.Equal(t, scene.White(), f.diffuse())

	b := f.registry.Bindings(f.sphere)[0]
	assert.Equal(t, behavior.BindingStats{Fired: 1, Completed: 1}, b.Stats())
}

func TestChainLinkWaitsForPreviousDuration(t *testing.T) {
	f := newFixture(t)
	var startedAt []float64
	mark := func(name string) behavior.Action {
		return behavior.ExecuteCode(name, func(behavior.Env) { startedAt = append(startedAt, f.sched.Elapsed()) })
	}

	_, err := f.registry.Register(0, behavior.OnCode("go"), behavior.Chain(
		mark("a"),
		behavior.Interpolate(f.sphere, "position", math32.Vec3(1, 0, 0), 300*time.Millisecond),
		mark("b"),
		behavior.Interpolate(f.sphere, "position", math32.Vec3(2, 0, 0), 200*time.Millisecond),
		mark("c"),
	), nil)
	require.NoError(t, err)

	f.registry.Fire(behavior.Event{Kind: behavior.Code, Name: "go"})
	f.step(1, 0.1)

	require.Len(t, startedAt, 3)
	assert.InDelta(t, 0.0, startedAt[0], 1e-9)
	assert.InDelta(t, 0.3, startedAt[1], 1e-9)
	assert.InDelta(t, 0.5, startedAt[2], 1e-9)
	assert.Equal(t, math32.Vec3(2, 0, 0), scene.ReadComponent[scene.Transform](f.storage, f.sphere).Position)
}

func TestFalseConditionChangesNothing(t *testing.T) {
	f := newFixture(t)
	_, err := f.registry.NewActionManager(f.sphere, false)
	require.NoError(t, err)

	b, err := f.registry.Register(f.sphere, behavior.OnPickDown(),
		behavior.SetValue(f.light, "diffuse", scene.Red()),
		behavior.Value(f.light, "intensity", behavior.Greater, 0.9))
	require.NoError(t, err)

	assert.Equal(t, 0, f.registry.Fire(behavior.Event{Kind: behavior.PickDown, Source: f.sphere}))
	f.step(0.5, 0.1)
	assert.Equal(t, scene.White(), f.diffuse())
	assert.Equal(t, uint64(1), b.Stats().Skipped)

	scene.ReadComponent[scene.Light](f.storage, f.light).Intensity = 1
	assert.Equal(t, 1, f.registry.Fire(behavior.Event{Kind: behavior.PickDown, Source: f.sphere}))
	assert.Equal(t, scene.Red(), f.diffuse())
}

func TestRegisterWithoutManager(t *testing.T) {
	f := newFixture(t)

	var b *behavior.Binding
	var err error
	assert.NotPanics(t, func() {
		b, err = f.registry.Register(f.sphere, behavior.OnPickDown(), behavior.SetValue(f.light, "diffuse", scene.Red()), nil)
	})
	assert.Nil(t, b)
	assert.ErrorIs(t, err, behavior.ErrNoActionManager)
	assert.Empty(t, f.registry.Bindings(f.sphere))

	assert.Equal(t, 0, f.registry.Fire(behavior.Event{Kind: behavior.PickDown, Source: f.sphere}))
	assert.Equal(t, scene.White(), f.diffuse())
}

func TestRegisterConfigurationErrors(t *testing.T) {
	f := newFixture(t)

	_, err := f.registry.Register(0, behavior.OnKeyDown("r"), behavior.SetValue(scene.NewEntityId(3, 77), "diffuse", scene.Red()), nil)
	assert.ErrorIs(t, err, scene.ErrUnknownEntity)

	_, err = f.registry.Register(0, behavior.OnKeyDown("r"), behavior.SetValue(f.light, "wireframe", true), nil)
	assert.ErrorIs(t, err, scene.ErrUnknownProperty)

	_, err = f.registry.Register(0, behavior.OnKeyDown("r"), behavior.SetValue(f.light, "diffuse", 3), nil)
	assert.ErrorIs(t, err, scene.ErrPropertyType)

	_, err = f.registry.Register(0, behavior.OnKeyDown("r"), behavior.SetValue(f.light, "diffuse", scene.Red()),
		behavior.Value(f.light, "diffuse", behavior.Greater, scene.Black()))
	assert.ErrorIs(t, err, scene.ErrPropertyType)

	_, err = f.registry.Register(0, behavior.OnIntersectionEnter(f.light, true), behavior.SetValue(f.light, "diffuse", scene.Red()), nil)
	assert.Error(t, err)

	assert.Empty(t, f.registry.Bindings(0))
}

func TestRegisterOnDisposedScope(t *testing.T) {
	var logs bytes.Buffer
	storage := scene.NewStorage(scene.NewDefaultRegistry())
	sched := scene.NewScheduler(storage)
	registry := behavior.NewRegistry(sched, behavior.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	mesh := storage.Spawn("box", scene.KindMesh, scene.Box(1))
	_, err := registry.NewActionManager(mesh, false)
	require.NoError(t, err)
	storage.Dispose(mesh)

	_, ok := registry.Manager(mesh)
	assert.False(t, ok)
	_, err = registry.Register(mesh, behavior.OnPickDown(), behavior.SetValue(0, "visible", false), nil)
	assert.ErrorIs(t, err, scene.ErrDisposed)
	assert.Contains(t, logs.String(), "binding on disposed scope ignored")

	_, err = registry.NewActionManager(mesh, false)
	assert.ErrorIs(t, err, scene.ErrDisposed)
}

func TestBindingsFireInRegistrationOrder(t *testing.T) {
	f := newFixture(t)
	var order []string
	for _, name := range []string{"first", "second", "third"} {
		_, err := f.registry.Register(0, behavior.OnKeyDown(""), behavior.ExecuteCode(name, func(behavior.Env) {
			order = append(order, name)
		}), nil)
		require.NoError(t, err)
	}

	assert.Equal(t, 3, f.registry.Fire(behavior.Event{Kind: behavior.KeyDown, Key: "x"}))
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestKeyTriggerFiltersKeys(t *testing.T) {
	f := newFixture(t)
	_, err := f.registry.Register(0, behavior.OnKeyDown("R"), behavior.SetValue(f.light, "diffuse", scene.Red()), nil)
	require.NoError(t, err)

	f.registry.Fire(behavior.Event{Kind: behavior.KeyDown, Key: "t"})
	assert.Equal(t, scene.White(), f.diffuse())
	f.registry.Fire(behavior.Event{Kind: behavior.KeyUp, Key: "r"})
	assert.Equal(t, scene.White(), f.diffuse())
	f.registry.Fire(behavior.Event{Kind: behavior.KeyDown, Key: "r"})
	assert.Equal(t, scene.Red(), f.diffuse())
}

func TestRecursiveManagerMatchesDescendants(t *testing.T) {
	f := newFixture(t)
	parent := f.storage.Spawn("hello sphere", scene.KindNode, scene.NewTransform(math32.Vector3{}))
	child := f.storage.Spawn("hello mesh", scene.KindMesh, scene.Sphere(1), scene.Material{})
	require.NoError(t, f.storage.SetParent(child, parent))
	other := f.storage.Spawn("plain", scene.KindNode)
	leaf := f.storage.Spawn("leaf", scene.KindMesh, scene.Box(1))
	require.NoError(t, f.storage.SetParent(leaf, other))

	_, err := f.registry.NewActionManager(parent, true)
	require.NoError(t, err)
	_, err = f.registry.NewActionManager(other, false)
	require.NoError(t, err)

	hits := map[string]int{}
	count := func(name string) behavior.Action {
		return behavior.ExecuteCode(name, func(behavior.Env) { hits[name]++ })
	}
	_, err = f.registry.Register(parent, behavior.OnPickDown(), count("recursive"), nil)
	require.NoError(t, err)
	_, err = f.registry.Register(other, behavior.OnPickDown(), count("flat"), nil)
	require.NoError(t, err)

	f.registry.Fire(behavior.Event{Kind: behavior.PickDown, Source: child})
	f.registry.Fire(behavior.Event{Kind: behavior.PickDown, Source: leaf})

	assert.Equal(t, 1, hits["recursive"])
	assert.Equal(t, 0, hits["flat"])
}

func TestGateHaltsChain(t *testing.T) {
	f := newFixture(t)
	allow := false
	var ran []string
	step := func(name string) behavior.Action {
		return behavior.ExecuteCode(name, func(behavior.Env) { ran = append(ran, name) })
	}

	b, err := f.registry.Register(0, behavior.OnCode("go"), step("a"), nil)
	require.NoError(t, err)
	_, err = b.Then(behavior.Gate(behavior.Predicate("allowed", func(behavior.Env) bool { return allow }), step("b")))
	require.NoError(t, err)
	_, err = b.Then(step("c"))
	require.NoError(t, err)

	f.registry.Fire(behavior.Event{Kind: behavior.Code, Name: "go"})
	assert.Equal(t, []string{"a"}, ran)
	assert.Equal(t, uint64(0), b.Stats().Completed)

	allow = true
	f.registry.Fire(behavior.Event{Kind: behavior.Code, Name: "go"})
	assert.Equal(t, []string{"a", "a", "b", "c"}, ran)
	assert.Equal(t, uint64(1), b.Stats().Completed)
}

func TestFireOnDisposedEntityIsIgnored(t *testing.T) {
	f := newFixture(t)
	_, err := f.registry.NewActionManager(f.sphere, false)
	require.NoError(t, err)
	_, err = f.registry.Register(f.sphere, behavior.OnPickDown(), behavior.SetValue(f.light, "diffuse", scene.Red()), nil)
	require.NoError(t, err)

	f.storage.Dispose(f.sphere)
	assert.Equal(t, 0, f.registry.Fire(behavior.Event{Kind: behavior.PickDown, Source: f.sphere}))
	assert.Equal(t, scene.White(), f.diffuse())
}

func TestInterpolateOnDisposedTargetNeverCompletes(t *testing.T) {
	f := newFixture(t)
	b, err := f.registry.Register(0, behavior.OnCode("fade"), behavior.Chain(
		behavior.Interpolate(f.light, "intensity", 0, time.Second),
		behavior.SetValue(f.sphere, "visible", false),
	), nil)
	require.NoError(t, err)

	f.registry.Fire(behavior.Event{Kind: behavior.Code, Name: "fade"})
	f.step(0.5, 0.1)
	f.storage.Dispose(f.light)
	f.step(1, 0.1)

	assert.Equal(t, uint64(0), b.Stats().Completed)
	assert.Nil(t, scene.ReadComponent[scene.Visibility](f.storage, f.sphere))
}

func TestIntersectionTriggersAreEdgeDetected(t *testing.T) {
	f := newFixture(t)
	wall := f.storage.Spawn("wall", scene.KindMesh, scene.Box(1))
	_, err := f.registry.NewActionManager(f.sphere, false)
	require.NoError(t, err)

	enters, exits := 0, 0
	_, err = f.registry.Register(f.sphere, behavior.OnIntersectionEnter(wall, true),
		behavior.ExecuteCode("enter", func(behavior.Env) { enters++ }), nil)
	require.NoError(t, err)
	_, err = f.registry.Register(f.sphere, behavior.OnIntersectionExit(wall, true),
		behavior.ExecuteCode("exit", func(behavior.Env) { exits++ }), nil)
	require.NoError(t, err)

	contact := []bool{false, true, true, true, false, false, true}
	for _, c := range contact {
		f.registry.EvaluateFrame(func(a, b scene.EntityId, precise bool) (bool, error) {
			assert.Equal(t, f.sphere, a)
			assert.Equal(t, wall, b)
			return c, nil
		})
	}
	assert.Equal(t, 2, enters)
	assert.Equal(t, 1, exits)
}

func TestEveryFrameTrigger(t *testing.T) {
	f := newFixture(t)
	frames := 0
	_, err := f.registry.Register(0, behavior.OnEveryFrame(), behavior.ExecuteCode("tick", func(behavior.Env) { frames++ }), nil)
	require.NoError(t, err)

	for range 4 {
		f.registry.EvaluateFrame(nil)
	}
	assert.Equal(t, 4, frames)
}

func TestUnregisterAndDispose(t *testing.T) {
	f := newFixture(t)
	b, err := f.registry.Register(0, behavior.OnKeyDown("r"), behavior.SetValue(f.light, "diffuse", scene.Red()), nil)
	require.NoError(t, err)

	assert.True(t, f.registry.Unregister(b.Handle))
	assert.False(t, f.registry.Unregister(b.Handle))
	f.registry.Fire(behavior.Event{Kind: behavior.KeyDown, Key: "r"})
	assert.Equal(t, scene.White(), f.diffuse())

	f.registry.Dispose()
	assert.True(t, f.registry.Disposed())
	assert.Empty(t, f.registry.Scopes())
	_, err = f.registry.Register(0, behavior.OnKeyDown("r"), behavior.SetValue(f.light, "diffuse", scene.Red()), nil)
	assert.ErrorIs(t, err, behavior.ErrRegistryDisposed)
}

func TestNewActionManagerIsUniquePerScope(t *testing.T) {
	f := newFixture(t)
	a, err := f.registry.NewActionManager(f.sphere, true)
	require.NoError(t, err)
	b, err := f.registry.NewActionManager(f.sphere, false)
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.True(t, b.Recursive())
	assert.Equal(t, []scene.EntityId{0, f.sphere}, f.registry.Scopes())
	assert.Same(t, f.registry.SceneManager(), mustManager(t, f.registry, 0))
}

func mustManager(t *testing.T, r *behavior.Registry, scope scene.EntityId) *behavior.ActionManager {
	t.Helper()
	m, ok := r.Manager(scope)
	require.True(t, ok)
	return m
}

// stepUntil ticks by dt until the scene clock reaches at.
func (f *fixture) stepUntil(at, dt float64) {
	for f.sched.Elapsed() < at-1e-9 {
		f.sched.Once(dt)
	}
}

func TestLightFadeScenarioAtUnevenTicks(t *testing.T) {
	for _, dt := range []float64{0.016, 0.03, 0.3, 0.7} {
		t.Run(time.Duration(dt*float64(time.Second)).String(), func(t *testing.T) {
			f := newFixture(t)
			_, err := f.registry.NewActionManager(f.sphere, false)
			require.NoError(t, err)
			b, err := f.registry.Register(f.sphere, behavior.OnPickDown(),
				behavior.Interpolate(f.light, "diffuse", scene.Black(), time.Second), nil)
			require.NoError(t, err)
			_, err = b.Then(behavior.Interpolate(f.light, "diffuse", scene.White(), time.Second))
			require.NoError(t, err)

			f.registry.Fire(behavior.Event{Kind: behavior.PickDown, Source: f.sphere})

			// On the first frame past the midpoint the return fade is only as far along
			// as that frame overshot it.
			f.stepUntil(1, dt)
			overshoot := float32(f.sched.Elapsed() - 1)
			assert.InDelta(t, overshoot, f.diffuse().R, 1e-4)

			f.stepUntil(2, dt)
			assert.Equal(t, scene.White(), f.diffuse(), "at %.3fs", f.sched.Elapsed())
			assert.Equal(t, uint64(1), b.Stats().Completed)
		})
	}
}

func TestChainOrderingAtUnevenTicks(t *testing.T) {
	for _, links := range []int{1, 2, 5} {
		for _, dt := range []float64{0.016, 0.05, 0.3, 0.7} {
			name := fmt.Sprintf("%d links/%s", links, time.Duration(dt*float64(time.Second)))
			t.Run(name, func(t *testing.T) {
				f := newFixture(t)
				var doneAt []float64
				var ends []float64
				var actions []behavior.Action
				end := 0.0
				for k := range links {
					d := time.Duration(150*(k+1)) * time.Millisecond
					end += d.Seconds()
					ends = append(ends, end)
					actions = append(actions,
						behavior.Interpolate(f.sphere, "position", math32.Vec3(float32(k+1), 0, 0), d),
						behavior.ExecuteCode(fmt.Sprintf("link %d", k), func(behavior.Env) {
							doneAt = append(doneAt, f.sched.Elapsed())
						}))
				}
				_, err := f.registry.Register(0, behavior.OnCode("go"), behavior.Chain(actions...), nil)
				require.NoError(t, err)

				f.registry.Fire(behavior.Event{Kind: behavior.Code, Name: "go"})
				f.stepUntil(end, dt)

				require.Len(t, doneAt, links)
				for k := range links {
					assert.GreaterOrEqual(t, doneAt[k], ends[k]-1e-9, "link %d", k)
					assert.Less(t, doneAt[k], ends[k]+dt, "link %d", k)
				}
				pos := scene.ReadComponent[scene.Transform](f.storage, f.sphere).Position
				assert.Equal(t, math32.Vec3(float32(links), 0, 0), pos)
			})
		}
	}
}

func TestDisposingSourceStopsDispatch(t *testing.T) {
	f := newFixture(t)
	_, err := f.registry.NewActionManager(f.sphere, false)
	require.NoError(t, err)

	_, err = f.registry.Register(f.sphere, behavior.OnPickDown(), behavior.ExecuteCode("dispose", func(behavior.Env) {
		f.storage.Dispose(f.sphere)
	}), nil)
	require.NoError(t, err)
	second, err := f.registry.Register(f.sphere, behavior.OnPickDown(), behavior.SetValue(f.light, "diffuse", scene.Red()), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, f.registry.Fire(behavior.Event{Kind: behavior.PickDown, Source: f.sphere}))
	assert.False(t, f.storage.Alive(f.sphere))
	assert.Equal(t, scene.White(), f.diffuse())
	assert.Zero(t, second.Stats().Fired)
}

func TestUnregisterDuringDispatch(t *testing.T) {
	f := newFixture(t)
	var second *behavior.Binding
	_, err := f.registry.Register(0, behavior.OnKeyUp("x"), behavior.ExecuteCode("unregister", func(behavior.Env) {
		f.registry.Unregister(second.Handle)
	}), nil)
	require.NoError(t, err)
	second, err = f.registry.Register(0, behavior.OnKeyUp("x"), behavior.SetValue(f.light, "diffuse", scene.Red()), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, f.registry.Fire(behavior.Event{Kind: behavior.KeyUp, Key: "x"}))
	assert.Equal(t, scene.White(), f.diffuse())
}

func TestDisposedScopeSkipsFrameTriggers(t *testing.T) {
	f := newFixture(t)
	other := f.storage.Spawn("other", scene.KindMesh, scene.NewTransform(math32.Vector3{}), scene.Sphere(1))
	_, err := f.registry.NewActionManager(other, false)
	require.NoError(t, err)

	ticks := 0
	_, err = f.registry.Register(0, behavior.OnEveryFrame(), behavior.ExecuteCode("dispose other", func(behavior.Env) {
		f.storage.Dispose(other)
	}), nil)
	require.NoError(t, err)
	_, err = f.registry.Register(other, behavior.OnEveryFrame(), behavior.ExecuteCode("tick", func(behavior.Env) {
		ticks++
	}), nil)
	require.NoError(t, err)

	f.registry.EvaluateFrame(nil)
	assert.Zero(t, ticks)
}

func TestKeyTriggerOnEntityScopeIsRejected(t *testing.T) {
	f := newFixture(t)
	_, err := f.registry.NewActionManager(f.sphere, false)
	require.NoError(t, err)

	for _, trigger := range []behavior.Trigger{behavior.OnKeyUp("r"), behavior.OnKeyDown("r")} {
		_, err = f.registry.Register(f.sphere, trigger, behavior.SetValue(f.light, "diffuse", scene.Red()), nil)
		assert.ErrorIs(t, err, behavior.ErrSceneTrigger)
	}
	assert.Empty(t, f.registry.Bindings(f.sphere))

	_, err = f.registry.Register(0, behavior.OnKeyUp("r"), behavior.SetValue(f.light, "diffuse", scene.Red()), nil)
	require.NoError(t, err)
	f.registry.Fire(behavior.Event{Kind: behavior.KeyUp, Key: "r"})
	assert.Equal(t, scene.Red(), f.diffuse())
}
