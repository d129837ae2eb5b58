package behavior

import (
	"log/slog"

	"cogentcore.org/core/math32"

	"github.com/plus3/helloxr/scene"
)

// Event is one occurrence delivered to the registry. A zero Source marks a scene-level event.
type Event struct {
	Kind      TriggerKind
	Source    scene.EntityId
	Key       string
	Name      string
	Partner   scene.EntityId
	PointerID int
	Point     math32.Vector3
}

// Env is what actions and conditions see while a binding runs.
// Conditions must treat it as read-only.
type Env struct {
	Storage  *scene.Storage
	Animator *scene.Animator
	Commands *scene.Commands
	Logger   *slog.Logger
	// Scope is the entity owning the binding's action manager, zero for the scene.
	Scope scene.EntityId
	Event Event
}
