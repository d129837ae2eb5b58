package behavior

import (
	"fmt"

	"github.com/plus3/helloxr/scene"
)

// Condition gates a binding or a chain link. Eval runs synchronously and must not mutate state.
type Condition interface {
	Validate(storage *scene.Storage, scope scene.EntityId) error
	Eval(env Env) bool
	Describe() string
}

// PredicateCondition wraps a pure function.
type PredicateCondition struct {
	Name string
	Fn   func(env Env) bool
}

// Predicate wraps a named read-only check.
func Predicate(name string, fn func(env Env) bool) *PredicateCondition {
	return &PredicateCondition{Name: name, Fn: fn}
}

func (p *PredicateCondition) Validate(*scene.Storage, scene.EntityId) error {
	if p.Fn == nil {
		return fmt.Errorf("predicate %q has no function", p.Name)
	}
	return nil
}

func (p *PredicateCondition) Eval(env Env) bool {
	return p.Fn(env)
}

func (p *PredicateCondition) Describe() string {
	return p.Name
}

type Operator int

const (
	Equal Operator = iota
	NotEqual
	Greater
	Lesser
)

func (o Operator) String() string {
	switch o {
	case NotEqual:
		return "!="
	case Greater:
		return ">"
	case Lesser:
		return "<"
	default:
		return "=="
	}
}

// ValueCondition compares a property against a fixed value. Greater and Lesser apply
// to numeric properties only.
type ValueCondition struct {
	Target scene.EntityId
	Path   string
	Op     Operator
	Value  any
}

// Value compares the property at path on target against value with op.
func Value(target scene.EntityId, path string, op Operator, value any) *ValueCondition {
	return &ValueCondition{Target: target, Path: path, Op: op, Value: value}
}

func (c *ValueCondition) Validate(storage *scene.Storage, scope scene.EntityId) error {
	target := targetOf(c.Target, scope)
	if err := validateProperty(storage, target, c.Path, c.Value); err != nil {
		return err
	}
	if c.Op == Greater || c.Op == Lesser {
		prop, _ := scene.ResolveProperty(storage, target, c.Path)
		if v, _ := prop.Coerce(c.Value); v != nil {
			if _, ok := v.(float32); !ok {
				return fmt.Errorf("%s %s: ordering needs a numeric property: %w", c.Path, c.Op, scene.ErrPropertyType)
			}
		}
	}
	return nil
}

func (c *ValueCondition) Eval(env Env) bool {
	prop, err := scene.ResolveProperty(env.Storage, targetOf(c.Target, env.Scope), c.Path)
	if err != nil {
		return false
	}
	current, err := prop.Get()
	if err != nil {
		return false
	}
	want, err := prop.Coerce(c.Value)
	if err != nil {
		return false
	}
	switch c.Op {
	case Equal:
		return current == want
	case NotEqual:
		return current != want
	case Greater, Lesser:
		a, okA := current.(float32)
		b, okB := want.(float32)
		if !okA || !okB {
			return false
		}
		if c.Op == Greater {
			return a > b
		}
		return a < b
	}
	return false
}

func (c *ValueCondition) Describe() string {
	return fmt.Sprintf("%s.%s %s %v", c.Target, c.Path, c.Op, c.Value)
}
