package behavior

import (
	"fmt"
	"strings"

	"github.com/plus3/helloxr/scene"
)

type TriggerKind int

const (
	PickDown TriggerKind = iota
	PickUp
	KeyDown
	KeyUp
	IntersectionEnter
	IntersectionExit
	EveryFrame
	// Code triggers are fired by name from application code.
	Code
)

func (k TriggerKind) String() string {
	switch k {
	case PickDown:
		return "pick-down"
	case PickUp:
		return "pick-up"
	case KeyDown:
		return "key-down"
	case KeyUp:
		return "key-up"
	case IntersectionEnter:
		return "intersection-enter"
	case IntersectionExit:
		return "intersection-exit"
	case EveryFrame:
		return "every-frame"
	case Code:
		return "code"
	default:
		return fmt.Sprintf("trigger(%d)", int(k))
	}
}

// Trigger is the event half of a binding.
type Trigger struct {
	Kind TriggerKind
	// Key filters key triggers; empty matches any key.
	Key string
	// Partner and Precise parameterize intersection triggers.
	Partner scene.EntityId
	Precise bool
	// Name identifies code triggers.
	Name string
}

func OnPickDown() Trigger { return Trigger{Kind: PickDown} }
func OnPickUp() Trigger   { return Trigger{Kind: PickUp} }

func OnKeyDown(key string) Trigger { return Trigger{Kind: KeyDown, Key: strings.ToLower(key)} }
func OnKeyUp(key string) Trigger   { return Trigger{Kind: KeyUp, Key: strings.ToLower(key)} }

func OnIntersectionEnter(partner scene.EntityId, precise bool) Trigger {
	return Trigger{Kind: IntersectionEnter, Partner: partner, Precise: precise}
}

func OnIntersectionExit(partner scene.EntityId, precise bool) Trigger {
	return Trigger{Kind: IntersectionExit, Partner: partner, Precise: precise}
}

func OnEveryFrame() Trigger { return Trigger{Kind: EveryFrame} }

func OnCode(name string) Trigger { return Trigger{Kind: Code, Name: name} }

func (t Trigger) isIntersection() bool {
	return t.Kind == IntersectionEnter || t.Kind == IntersectionExit
}

func (t Trigger) validate(storage *scene.Storage, scope scene.EntityId) error {
	if t.Kind == KeyDown || t.Kind == KeyUp {
		if scope.Valid() {
			return fmt.Errorf("%s on %s: %w", t.Kind, scope, ErrSceneTrigger)
		}
		return nil
	}
	if !t.isIntersection() {
		return nil
	}
	if !scope.Valid() {
		return fmt.Errorf("%s trigger needs an entity scope", t.Kind)
	}
	if err := storage.Check(t.Partner); err != nil {
		return fmt.Errorf("%s partner: %w", t.Kind, err)
	}
	return nil
}

func (t Trigger) matches(ev Event) bool {
	if t.Kind != ev.Kind {
		return false
	}
	switch t.Kind {
	case KeyDown, KeyUp:
		return t.Key == "" || t.Key == strings.ToLower(ev.Key)
	case Code:
		return t.Name == ev.Name
	case IntersectionEnter, IntersectionExit:
		return t.Partner == ev.Partner
	}
	return true
}

func (t Trigger) String() string {
	switch {
	case (t.Kind == KeyDown || t.Kind == KeyUp) && t.Key != "":
		return fmt.Sprintf("%s(%s)", t.Kind, t.Key)
	case t.Kind == Code:
		return fmt.Sprintf("code(%s)", t.Name)
	case t.isIntersection():
		mode := "bounds"
		if t.Precise {
			mode = "precise"
		}
		return fmt.Sprintf("%s(%s, %s)", t.Kind, t.Partner, mode)
	}
	return t.Kind.String()
}
