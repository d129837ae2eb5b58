package behavior

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/kamstrup/intmap"

	"github.com/plus3/helloxr/scene"
)

var (
	// ErrNoActionManager reports a binding aimed at a scope that has no action manager.
	ErrNoActionManager = errors.New("no action manager")
	// ErrSceneTrigger reports a key trigger bound to an entity scope. Key events have no
	// source and only reach the scene manager.
	ErrSceneTrigger = errors.New("key triggers bind on the scene scope only")
	// ErrRegistryDisposed reports use of a registry after Dispose.
	ErrRegistryDisposed = errors.New("behavior registry disposed")
)

// IntersectionTest decides whether two entities overlap this frame.
type IntersectionTest func(a, b scene.EntityId, precise bool) (bool, error)

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger for runtime no-ops and chain diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// Stats aggregates binding counters over the registry.
type Stats struct {
	Managers  int
	Bindings  int
	Events    uint64
	Fired     uint64
	Skipped   uint64
	Completed uint64
}

// Registry owns the action managers of one scene. It is created with the scene's
// scheduler, which also gives it the scene-level manager, and is disposed with it.
type Registry struct {
	sched    *scene.Scheduler
	storage  *scene.Storage
	logger   *slog.Logger
	managers *intmap.Map[scene.EntityId, *ActionManager]
	scopes   []scene.EntityId
	handles  *intmap.Map[BindingHandle, *Binding]
	next     BindingHandle
	events   uint64
	disposed bool
}

func NewRegistry(sched *scene.Scheduler, opts ...Option) *Registry {
	r := &Registry{
		sched:    sched,
		storage:  sched.Storage(),
		logger:   sched.Logger(),
		managers: intmap.New[scene.EntityId, *ActionManager](16),
		handles:  intmap.New[BindingHandle, *Binding](64),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.addManager(0, false)
	r.storage.OnDispose(func(id scene.EntityId) {
		if !r.disposed {
			r.DisposeManager(id)
		}
	})
	return r
}

func (r *Registry) addManager(scope scene.EntityId, recursive bool) *ActionManager {
	m := &ActionManager{registry: r, scope: scope, recursive: recursive}
	r.managers.Put(scope, m)
	r.scopes = append(r.scopes, scope)
	return m
}

// SceneManager returns the scene-level action manager.
func (r *Registry) SceneManager() *ActionManager {
	m, _ := r.managers.Get(0)
	return m
}

// NewActionManager gives an entity its action manager, or returns the one it already has.
func (r *Registry) NewActionManager(scope scene.EntityId, recursive bool) (*ActionManager, error) {
	if r.disposed {
		return nil, ErrRegistryDisposed
	}
	if !scope.Valid() {
		if m, ok := r.managers.Get(0); ok {
			return m, nil
		}
		return r.addManager(0, false), nil
	}
	if err := r.storage.Check(scope); err != nil {
		return nil, fmt.Errorf("action manager: %w", err)
	}
	if m, ok := r.managers.Get(scope); ok {
		return m, nil
	}
	return r.addManager(scope, recursive), nil
}

// Manager returns the action manager of scope, if any.
func (r *Registry) Manager(scope scene.EntityId) (*ActionManager, bool) {
	return r.managers.Get(scope)
}

// Scopes lists scopes with a manager in creation order, the scene scope first.
func (r *Registry) Scopes() []scene.EntityId {
	return slices.Clone(r.scopes)
}

// Bindings returns the bindings of scope in registration order; empty for a scope without a manager.
func (r *Registry) Bindings(scope scene.EntityId) []*Binding {
	m, ok := r.managers.Get(scope)
	if !ok {
		return nil
	}
	return m.Bindings()
}

// Binding looks a binding up by handle.
func (r *Registry) Binding(h BindingHandle) (*Binding, bool) {
	return r.handles.Get(h)
}

// Register binds action to trigger on scope, optionally guarded by condition.
// Unknown entities and properties are configuration errors and nothing is registered.
func (r *Registry) Register(scope scene.EntityId, trigger Trigger, action Action, condition Condition) (*Binding, error) {
	if r.disposed {
		return nil, ErrRegistryDisposed
	}
	if scope.Valid() {
		if err := r.storage.Check(scope); err != nil {
			if errors.Is(err, scene.ErrDisposed) {
				r.logger.Warn("binding on disposed scope ignored", "scope", scope, "trigger", trigger.String())
			}
			return nil, fmt.Errorf("register %s: %w", trigger, err)
		}
	}
	m, ok := r.managers.Get(scope)
	if !ok {
		return nil, fmt.Errorf("register %s on %s: %w", trigger, scope, ErrNoActionManager)
	}
	if action == nil {
		return nil, fmt.Errorf("register %s on %s: nil action", trigger, scope)
	}

	if err := trigger.validate(r.storage, scope); err != nil {
		return nil, fmt.Errorf("register %s: %w", trigger, err)
	}
	if err := action.Validate(r.storage, scope); err != nil {
		return nil, fmt.Errorf("register %s: %w", trigger, err)
	}
	if condition != nil {
		if err := condition.Validate(r.storage, scope); err != nil {
			return nil, fmt.Errorf("register %s condition: %w", trigger, err)
		}
	}

	r.next++
	b := &Binding{
		Handle:    r.next,
		Trigger:   trigger,
		Condition: condition,
		manager:   m,
		chain:     Chain(action),
	}
	m.bindings = append(m.bindings, b)
	r.handles.Put(b.Handle, b)
	return b, nil
}

// Unregister removes a binding. Effects already running finish normally.
func (r *Registry) Unregister(h BindingHandle) bool {
	b, ok := r.handles.Get(h)
	if !ok {
		return false
	}
	r.handles.Del(h)
	b.manager.remove(h)
	return true
}

// DisposeManager drops the manager of scope together with its bindings.
func (r *Registry) DisposeManager(scope scene.EntityId) bool {
	m, ok := r.managers.Get(scope)
	if !ok {
		return false
	}
	for _, b := range m.bindings {
		r.handles.Del(b.Handle)
	}
	m.bindings = nil
	m.disposed = true
	r.managers.Del(scope)
	r.scopes = slices.DeleteFunc(r.scopes, func(s scene.EntityId) bool { return s == scope })
	return true
}

// Dispose drops every manager. Later registrations fail and fired events are ignored.
func (r *Registry) Dispose() {
	if r.disposed {
		return
	}
	for _, scope := range slices.Clone(r.scopes) {
		r.DisposeManager(scope)
	}
	r.disposed = true
}

func (r *Registry) Disposed() bool {
	return r.disposed
}

// Fire delivers an event and returns how many bindings ran their action.
// Entity events reach the source's manager, then recursive managers of its ancestors;
// scene-level events reach the scene manager.
func (r *Registry) Fire(ev Event) int {
	if r.disposed {
		return 0
	}
	r.events++
	if ev.Source.Valid() && !r.storage.Alive(ev.Source) {
		r.logger.Debug("event on disposed entity ignored", "trigger", ev.Kind.String(), "source", ev.Source)
		return 0
	}

	fired := 0
	for _, m := range r.managersFor(ev.Source) {
		for _, b := range slices.Clone(m.bindings) {
			if !r.live(b) {
				continue
			}
			if ev.Source.Valid() && !r.storage.Alive(ev.Source) {
				r.logger.Debug("source disposed during dispatch", "trigger", ev.Kind.String(), "source", ev.Source)
				return fired
			}
			if b.Trigger.matches(ev) && r.run(b, ev) {
				fired++
			}
		}
	}
	return fired
}

// live reports whether b is still registered on a manager that has not been disposed.
// Earlier actions in the same dispatch may have removed either.
func (r *Registry) live(b *Binding) bool {
	if r.disposed || b.manager.disposed {
		return false
	}
	_, ok := r.handles.Get(b.Handle)
	return ok
}

func (r *Registry) managersFor(source scene.EntityId) []*ActionManager {
	if !source.Valid() {
		if m, ok := r.managers.Get(0); ok {
			return []*ActionManager{m}
		}
		return nil
	}
	var out []*ActionManager
	if m, ok := r.managers.Get(source); ok {
		out = append(out, m)
	}
	for p := r.storage.Parent(source); p.Valid(); p = r.storage.Parent(p) {
		if m, ok := r.managers.Get(p); ok && m.recursive {
			out = append(out, m)
		}
	}
	return out
}

func (r *Registry) env(b *Binding, ev Event) Env {
	return Env{
		Storage:  r.storage,
		Animator: r.sched.Animator(),
		Commands: r.sched.Commands(),
		Logger:   r.logger,
		Scope:    b.manager.scope,
		Event:    ev,
	}
}

// run evaluates the condition and starts the chain. Later links start from completion
// callbacks, so run never blocks.
func (r *Registry) run(b *Binding, ev Event) bool {
	env := r.env(b, ev)
	if b.Condition != nil && !b.Condition.Eval(env) {
		b.stats.Skipped++
		return false
	}
	b.stats.Fired++
	b.chain.Run(env, func() { b.stats.Completed++ })
	return true
}

// EvaluateFrame resolves the per-frame triggers: every-frame bindings fire on each call and
// intersection bindings fire on the frame their overlap state flips.
func (r *Registry) EvaluateFrame(test IntersectionTest) {
	if r.disposed {
		return
	}
	for _, scope := range slices.Clone(r.scopes) {
		m, ok := r.managers.Get(scope)
		if !ok {
			continue
		}
		for _, b := range slices.Clone(m.bindings) {
			if !r.live(b) {
				continue
			}
			switch {
			case b.Trigger.Kind == EveryFrame:
				r.run(b, Event{Kind: EveryFrame, Source: scope})
			case b.Trigger.isIntersection() && test != nil:
				r.evaluateIntersection(b, test)
			}
		}
	}
}

func (r *Registry) evaluateIntersection(b *Binding, test IntersectionTest) {
	scope := b.manager.scope
	inside, err := test(scope, b.Trigger.Partner, b.Trigger.Precise)
	if err != nil {
		r.logger.Debug("intersection test skipped", "scope", scope, "partner", b.Trigger.Partner, "err", err)
		return
	}
	was := b.inside
	b.inside = inside
	ev := Event{Source: scope, Partner: b.Trigger.Partner}
	switch {
	case inside && !was && b.Trigger.Kind == IntersectionEnter:
		ev.Kind = IntersectionEnter
	case !inside && was && b.Trigger.Kind == IntersectionExit:
		ev.Kind = IntersectionExit
	default:
		return
	}
	r.run(b, ev)
}

func (r *Registry) Stats() Stats {
	s := Stats{Managers: len(r.scopes), Events: r.events}
	for _, scope := range r.scopes {
		m, _ := r.managers.Get(scope)
		s.Bindings += len(m.bindings)
		for _, b := range m.bindings {
			s.Fired += b.stats.Fired
			s.Skipped += b.stats.Skipped
			s.Completed += b.stats.Completed
		}
	}
	return s
}
