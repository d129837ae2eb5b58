package behavior

import (
	"fmt"
	"slices"

	"github.com/plus3/helloxr/scene"
)

// BindingHandle identifies a binding across the whole registry.
type BindingHandle uint64

// BindingStats counts what happened to a binding since it was registered.
type BindingStats struct {
	Fired     uint64
	Skipped   uint64
	Completed uint64
}

// Binding ties a trigger, an optional condition and an action chain to one action manager.
type Binding struct {
	Handle    BindingHandle
	Trigger   Trigger
	Condition Condition

	manager *ActionManager
	chain   *Sequence
	stats   BindingStats
	inside  bool
}

// Scope returns the entity owning the binding, zero for the scene.
func (b *Binding) Scope() scene.EntityId {
	return b.manager.scope
}

// Then appends an action to the binding's chain. It starts once the current tail completes.
func (b *Binding) Then(action Action) (*Binding, error) {
	if action == nil {
		return b, fmt.Errorf("binding %d: nil action", b.Handle)
	}
	if err := action.Validate(b.manager.registry.storage, b.manager.scope); err != nil {
		return b, err
	}
	b.chain.append(action)
	return b, nil
}

// Actions returns the chain links in execution order.
func (b *Binding) Actions() []Action {
	return b.chain.Links()
}

func (b *Binding) Stats() BindingStats {
	return b.stats
}

func (b *Binding) Describe() string {
	s := fmt.Sprintf("on %s", b.Trigger)
	if b.Condition != nil {
		s += " if " + b.Condition.Describe()
	}
	return s + ": " + b.chain.Describe()
}

// ActionManager holds the bindings of one scope. Exactly one exists per scope.
type ActionManager struct {
	registry  *Registry
	scope     scene.EntityId
	recursive bool
	bindings  []*Binding
	disposed  bool
}

func (m *ActionManager) Scope() scene.EntityId {
	return m.scope
}

// Recursive reports whether the manager also reacts to events from descendants of its scope.
func (m *ActionManager) Recursive() bool {
	return m.recursive
}

// Register binds action to trigger on this manager's scope.
func (m *ActionManager) Register(trigger Trigger, action Action, condition Condition) (*Binding, error) {
	return m.registry.Register(m.scope, trigger, action, condition)
}

// Bindings returns the manager's bindings in registration order.
func (m *ActionManager) Bindings() []*Binding {
	return slices.Clone(m.bindings)
}

func (m *ActionManager) Len() int {
	return len(m.bindings)
}

func (m *ActionManager) remove(h BindingHandle) {
	m.bindings = slices.DeleteFunc(m.bindings, func(b *Binding) bool { return b.Handle == h })
}
