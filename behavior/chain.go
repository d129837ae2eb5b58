package behavior

import (
	"fmt"
	"strings"

	"github.com/plus3/helloxr/scene"
)

// Sequence runs its links one after another, each starting when the previous completed.
type Sequence struct {
	links []Action
}

// Chain builds a sequence. Nested sequences are flattened so a chain never branches.
func Chain(actions ...Action) *Sequence {
	s := &Sequence{}
	for _, a := range actions {
		s.append(a)
	}
	return s
}

func (s *Sequence) append(a Action) {
	if nested, ok := a.(*Sequence); ok {
		s.links = append(s.links, nested.links...)
		return
	}
	s.links = append(s.links, a)
}

// Len returns the number of links.
func (s *Sequence) Len() int {
	return len(s.links)
}

// Links returns the chain in execution order.
func (s *Sequence) Links() []Action {
	return append([]Action(nil), s.links...)
}

func (s *Sequence) Validate(storage *scene.Storage, scope scene.EntityId) error {
	for i, a := range s.links {
		if err := a.Validate(storage, scope); err != nil {
			return fmt.Errorf("link %d: %w", i, err)
		}
	}
	return nil
}

func (s *Sequence) Run(env Env, done func()) {
	s.runFrom(0, env, done)
}

func (s *Sequence) runFrom(i int, env Env, done func()) {
	if i >= len(s.links) {
		done()
		return
	}
	s.links[i].Run(env, func() { s.runFrom(i+1, env, done) })
}

func (s *Sequence) Describe() string {
	parts := make([]string, len(s.links))
	for i, a := range s.links {
		parts[i] = a.Describe()
	}
	return strings.Join(parts, " then ")
}

// GateAction is a conditioned chain link. When its condition is false on arrival the
// chain halts there.
type GateAction struct {
	Condition Condition
	Action    Action
}

// Gate guards action with cond when the chain reaches it.
func Gate(cond Condition, action Action) *GateAction {
	return &GateAction{Condition: cond, Action: action}
}

func (g *GateAction) Validate(storage *scene.Storage, scope scene.EntityId) error {
	if g.Condition == nil || g.Action == nil {
		return fmt.Errorf("gate needs a condition and an action")
	}
	if err := g.Condition.Validate(storage, scope); err != nil {
		return err
	}
	return g.Action.Validate(storage, scope)
}

func (g *GateAction) Run(env Env, done func()) {
	if !g.Condition.Eval(env) {
		env.Logger.Debug("chain halted", "condition", g.Condition.Describe())
		return
	}
	g.Action.Run(env, done)
}

func (g *GateAction) Describe() string {
	return fmt.Sprintf("if %s: %s", g.Condition.Describe(), g.Action.Describe())
}
