package signal

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/plus3/helloxr/behavior"
	"github.com/plus3/helloxr/scene"
)

// SignalInfo describes a sampled signal for the debug overlay.
type SignalInfo struct {
	Name        string
	Subscribers int
	Samples     uint64
	Last        string
}

type sampler interface {
	tick() error
	info() SignalInfo
	clear()
}

type typedSampler[T any] struct {
	name   string
	sample func() (T, error)
	out    *Observable[T]
	last   T
	seen   bool
}

func (s *typedSampler[T]) tick() error {
	v, err := s.sample()
	if err != nil {
		return err
	}
	s.last, s.seen = v, true
	s.out.Notify(v)
	return nil
}

func (s *typedSampler[T]) info() SignalInfo {
	last := "-"
	if s.seen {
		last = fmt.Sprint(s.last)
	}
	return SignalInfo{Name: s.name, Subscribers: s.out.Len(), Samples: s.out.Notified(), Last: last}
}

func (s *typedSampler[T]) clear() {
	s.out.Clear()
}

// Option configures a Bridge.
type Option func(*Bridge)

func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) {
		b.logger = logger
	}
}

// Bridge turns per-frame samples and host input into observable notifications and
// behavior triggers. It owns a single before-render hook on the scheduler.
type Bridge struct {
	sched    *scene.Scheduler
	storage  *scene.Storage
	registry *behavior.Registry
	logger   *slog.Logger
	hook     scene.HookHandle

	samplers []sampler
	drags    []*DragBehavior
	active   map[int]*dragState
	toggles  []*keyToggle
	disposed bool
}

// NewBridge wires a bridge to the scheduler. registry may be nil for a scene without behaviors.
func NewBridge(sched *scene.Scheduler, registry *behavior.Registry, opts ...Option) *Bridge {
	b := &Bridge{
		sched:    sched,
		storage:  sched.Storage(),
		registry: registry,
		logger:   sched.Logger(),
		active:   make(map[int]*dragState),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.hook = sched.BeforeRender("signal-bridge", b.tick)
	return b
}

// tick samples every signal in registration order, then resolves per-frame behavior triggers.
func (b *Bridge) tick(*scene.UpdateFrame) {
	for _, s := range slices.Clone(b.samplers) {
		if err := s.tick(); err != nil {
			b.logger.Debug("signal sampler removed", "signal", s.info().Name, "err", err)
			b.samplers = slices.DeleteFunc(b.samplers, func(x sampler) bool { return x == s })
			s.clear()
		}
	}
	if b.registry != nil {
		b.registry.EvaluateFrame(func(a, o scene.EntityId, precise bool) (bool, error) {
			return scene.Intersects(b.storage, a, o, precise)
		})
	}
}

func addSampler[T any](b *Bridge, name string, sample func() (T, error)) *Observable[T] {
	out := NewObservable[T]()
	b.samplers = append(b.samplers, &typedSampler[T]{name: name, sample: sample, out: out})
	return out
}

// AddSampler registers a signal recomputed on every tick. Subscribers are notified on
// every tick with the fresh sample, including repeats of the previous value.
func AddSampler[T any](b *Bridge, name string, sample func() T) *Observable[T] {
	return addSampler(b, name, func() (T, error) { return sample(), nil })
}

// Intersection samples whether a and b overlap on every tick. The sampler stops
// once either entity is disposed.
func (b *Bridge) Intersection(a, o scene.EntityId, precise bool) (*Observable[bool], error) {
	if err := b.storage.Check(a); err != nil {
		return nil, fmt.Errorf("intersection sampler: %w", err)
	}
	if err := b.storage.Check(o); err != nil {
		return nil, fmt.Errorf("intersection sampler: %w", err)
	}
	name := fmt.Sprintf("intersects(%s, %s)", b.storage.Name(a), b.storage.Name(o))
	return addSampler(b, name, func() (bool, error) {
		return scene.Intersects(b.storage, a, o, precise)
	}), nil
}

// Signals describes the registered samplers in registration order.
func (b *Bridge) Signals() []SignalInfo {
	out := make([]SignalInfo, len(b.samplers))
	for i, s := range b.samplers {
		out[i] = s.info()
	}
	return out
}

// KeyDown fires key-down triggers on the scene scope, then flips any matching toggle.
func (b *Bridge) KeyDown(ev KeyEvent) {
	if b.disposed {
		return
	}
	b.fire(behavior.Event{Kind: behavior.KeyDown, Key: ev.Key})
	for _, t := range b.toggles {
		if t.combo.Matches(ev) {
			*t.target = Toggle(*t.target)
			b.logger.Debug("toggle", "name", t.name, "value", *t.target)
			t.changed.Notify(*t.target)
		}
	}
}

// KeyUp fires key-up triggers on the scene scope.
func (b *Bridge) KeyUp(ev KeyEvent) {
	if b.disposed {
		return
	}
	b.fire(behavior.Event{Kind: behavior.KeyUp, Key: ev.Key})
}

// AddKeyToggle flips *target whenever combo is pressed and reports each new value.
func (b *Bridge) AddKeyToggle(name string, combo KeyCombo, target *bool) *Observable[bool] {
	t := &keyToggle{name: name, combo: combo, target: target, changed: NewObservable[bool]()}
	b.toggles = append(b.toggles, t)
	return t.changed
}

// ToggleDebugLayer binds combo to the scene's DebugLayer visibility.
func (b *Bridge) ToggleDebugLayer(combo KeyCombo) *Observable[bool] {
	layer := scene.NewSingleton[scene.DebugLayer](b.storage)
	return b.AddKeyToggle("debug layer", combo, &layer.Get().Visible)
}

func (b *Bridge) fire(ev behavior.Event) {
	if b.registry != nil {
		b.registry.Fire(ev)
	}
}

// Dispose removes the hook and drops every subscriber.
func (b *Bridge) Dispose() {
	if b.disposed {
		return
	}
	b.disposed = true
	b.sched.RemoveHook(b.hook)
	for _, s := range b.samplers {
		s.clear()
	}
	b.samplers = nil
	for _, d := range b.drags {
		d.clear()
	}
	b.drags = nil
	b.active = map[int]*dragState{}
	b.toggles = nil
}
