package behavior

import (
	"fmt"
	"time"

	"github.com/plus3/helloxr/scene"
)

// Action is an effect run when a binding fires. Run must call done exactly once when the
// effect has completed, or never if the effect was abandoned; a chain only advances on done.
type Action interface {
	// Validate checks entity and property references at bind time. scope is the owning
	// manager's entity, which stands in for a zero target.
	Validate(storage *scene.Storage, scope scene.EntityId) error
	Run(env Env, done func())
	Describe() string
}

func targetOf(target, scope scene.EntityId) scene.EntityId {
	if target.Valid() {
		return target
	}
	return scope
}

func validateProperty(storage *scene.Storage, target scene.EntityId, path string, value any) error {
	if !target.Valid() {
		return fmt.Errorf("%s: %w", path, scene.ErrUnknownEntity)
	}
	prop, err := scene.ResolveProperty(storage, target, path)
	if err != nil {
		return err
	}
	_, err = prop.Coerce(value)
	return err
}

// SetValueAction writes a property immediately.
type SetValueAction struct {
	Target scene.EntityId
	Path   string
	Value  any
}

// SetValue returns an action writing value to path on target. A zero target means the binding's scope.
func SetValue(target scene.EntityId, path string, value any) *SetValueAction {
	return &SetValueAction{Target: target, Path: path, Value: value}
}

func (a *SetValueAction) Validate(storage *scene.Storage, scope scene.EntityId) error {
	return validateProperty(storage, targetOf(a.Target, scope), a.Path, a.Value)
}

func (a *SetValueAction) Run(env Env, done func()) {
	target := targetOf(a.Target, env.Scope)
	prop, err := scene.ResolveProperty(env.Storage, target, a.Path)
	if err == nil {
		err = prop.Set(a.Value)
	}
	if err != nil {
		env.Logger.Debug("set value skipped", "target", target, "path", a.Path, "err", err)
		return
	}
	done()
}

func (a *SetValueAction) Describe() string {
	return fmt.Sprintf("set %s.%s = %v", a.Target, a.Path, a.Value)
}

// InterpolateAction tweens a property through the scene animator.
type InterpolateAction struct {
	Target   scene.EntityId
	Path     string
	Value    any
	Duration time.Duration
}

// Interpolate returns an action tweening path on target to value over duration.
// It completes when the tween does.
func Interpolate(target scene.EntityId, path string, value any, duration time.Duration) *InterpolateAction {
	return &InterpolateAction{Target: target, Path: path, Value: value, Duration: duration}
}

func (a *InterpolateAction) Validate(storage *scene.Storage, scope scene.EntityId) error {
	if a.Duration < 0 {
		return fmt.Errorf("interpolate %s: negative duration %s", a.Path, a.Duration)
	}
	return validateProperty(storage, targetOf(a.Target, scope), a.Path, a.Value)
}

func (a *InterpolateAction) Run(env Env, done func()) {
	target := targetOf(a.Target, env.Scope)
	prop, err := scene.ResolveProperty(env.Storage, target, a.Path)
	if err == nil {
		_, err = env.Animator.Animate(prop, a.Value, a.Duration, done)
	}
	if err != nil {
		env.Logger.Debug("interpolate skipped", "target", target, "path", a.Path, "err", err)
	}
}

func (a *InterpolateAction) Describe() string {
	return fmt.Sprintf("interpolate %s.%s -> %v over %s", a.Target, a.Path, a.Value, a.Duration)
}

// CodeAction runs arbitrary application code and completes immediately.
type CodeAction struct {
	Name string
	Fn   func(env Env)
}

// ExecuteCode returns an action running fn under name.
func ExecuteCode(name string, fn func(env Env)) *CodeAction {
	return &CodeAction{Name: name, Fn: fn}
}

func (a *CodeAction) Validate(*scene.Storage, scene.EntityId) error {
	if a.Fn == nil {
		return fmt.Errorf("code action %q has no function", a.Name)
	}
	return nil
}

func (a *CodeAction) Run(env Env, done func()) {
	a.Fn(env)
	done()
}

func (a *CodeAction) Describe() string {
	return "code " + a.Name
}
