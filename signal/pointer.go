package signal

import (
	"fmt"

	"cogentcore.org/core/math32"

	"github.com/plus3/helloxr/behavior"
	"github.com/plus3/helloxr/scene"
)

// PointerEvent is a pointer sample already projected into the scene as a ray.
type PointerEvent struct {
	PointerID int
	Ray       scene.Ray
}

// DragEvent is published by drag behaviors, once per pointer event.
type DragEvent struct {
	PointerID int
	Entity    scene.EntityId
	// Point is the pointer position on the drag plane; Delta is the move since the last event.
	Point math32.Vector3
	Delta math32.Vector3
}

type DragOptions struct {
	// PlaneNormal orients the drag plane through the entity; zero means facing the camera (+Z).
	PlaneNormal math32.Vector3
}

// DragBehavior moves an entity along its drag plane while a pointer holds it.
type DragBehavior struct {
	Entity      scene.EntityId
	Enabled     bool
	OnDragStart *Observable[DragEvent]
	OnDrag      *Observable[DragEvent]
	OnDragEnd   *Observable[DragEvent]
	normal      math32.Vector3
}

func (d *DragBehavior) clear() {
	d.OnDragStart.Clear()
	d.OnDrag.Clear()
	d.OnDragEnd.Clear()
}

type dragState struct {
	drag   *DragBehavior
	origin math32.Vector3
	last   math32.Vector3
}

// AttachDrag makes id draggable. Picks on any descendant of id start the drag.
func (b *Bridge) AttachDrag(id scene.EntityId, opts DragOptions) (*DragBehavior, error) {
	if err := b.storage.Check(id); err != nil {
		return nil, fmt.Errorf("drag behavior: %w", err)
	}
	if scene.ReadComponent[scene.Transform](b.storage, id) == nil {
		return nil, fmt.Errorf("drag behavior on %q: %w", b.storage.Name(id), scene.ErrUnknownProperty)
	}
	normal := opts.PlaneNormal
	if normal == (math32.Vector3{}) {
		normal = math32.Vec3(0, 0, 1)
	}
	d := &DragBehavior{
		Entity:      id,
		Enabled:     true,
		OnDragStart: NewObservable[DragEvent](),
		OnDrag:      NewObservable[DragEvent](),
		OnDragEnd:   NewObservable[DragEvent](),
		normal:      normal.Normal(),
	}
	b.drags = append(b.drags, d)
	return d, nil
}

func (b *Bridge) dragFor(hit scene.EntityId) *DragBehavior {
	for _, d := range b.drags {
		if d.Enabled && b.storage.Alive(d.Entity) && (d.Entity == hit || b.storage.IsDescendant(hit, d.Entity)) {
			return d
		}
	}
	return nil
}

// PointerDown picks the nearest entity, fires its pick-down triggers and starts a drag
// when the entity is draggable.
func (b *Bridge) PointerDown(ev PointerEvent) {
	if b.disposed {
		return
	}
	hit, point, ok := scene.Pick(b.storage, ev.Ray)
	if !ok {
		return
	}
	b.fire(behavior.Event{Kind: behavior.PickDown, Source: hit, PointerID: ev.PointerID, Point: point})

	d := b.dragFor(hit)
	if d == nil || !b.storage.Alive(d.Entity) {
		return
	}
	world, _ := scene.WorldTransform(b.storage, d.Entity)
	onPlane, ok := ev.Ray.IntersectPlane(world.Position, d.normal)
	if !ok {
		return
	}
	b.active[ev.PointerID] = &dragState{drag: d, origin: onPlane, last: onPlane}
	d.OnDragStart.Notify(DragEvent{PointerID: ev.PointerID, Entity: d.Entity, Point: onPlane})
}

// PointerMove advances an active drag by one event.
func (b *Bridge) PointerMove(ev PointerEvent) {
	state, ok := b.active[ev.PointerID]
	if !ok || b.disposed {
		return
	}
	d := state.drag
	tr := scene.ReadComponent[scene.Transform](b.storage, d.Entity)
	if tr == nil {
		b.logger.Debug("drag on disposed entity ended", "entity", d.Entity)
		delete(b.active, ev.PointerID)
		return
	}
	onPlane, ok := ev.Ray.IntersectPlane(state.last, d.normal)
	if !ok {
		return
	}
	delta := onPlane.Sub(state.last)
	state.last = onPlane

	scale := math32.Vec3(1, 1, 1)
	if parent := b.storage.Parent(d.Entity); parent.Valid() {
		if pw, ok := scene.WorldTransform(b.storage, parent); ok {
			scale = pw.Scaling
		}
	}
	tr.Position = tr.Position.Add(math32.Vec3(safeDiv(delta.X, scale.X), safeDiv(delta.Y, scale.Y), safeDiv(delta.Z, scale.Z)))
	d.OnDrag.Notify(DragEvent{PointerID: ev.PointerID, Entity: d.Entity, Point: onPlane, Delta: delta})
}

func safeDiv(v, by float32) float32 {
	if by == 0 {
		return v
	}
	return v / by
}

// PointerUp fires pick-up triggers on the entity under the pointer and ends its drag.
func (b *Bridge) PointerUp(ev PointerEvent) {
	if b.disposed {
		return
	}
	if hit, point, ok := scene.Pick(b.storage, ev.Ray); ok {
		b.fire(behavior.Event{Kind: behavior.PickUp, Source: hit, PointerID: ev.PointerID, Point: point})
	}
	state, ok := b.active[ev.PointerID]
	if !ok {
		return
	}
	delete(b.active, ev.PointerID)
	if !b.storage.Alive(state.drag.Entity) {
		return
	}
	state.drag.OnDragEnd.Notify(DragEvent{
		PointerID: ev.PointerID,
		Entity:    state.drag.Entity,
		Point:     state.last,
		Delta:     state.last.Sub(state.origin),
	})
}

// Dragging reports whether a pointer currently holds a drag.
func (b *Bridge) Dragging(pointerID int) bool {
	_, ok := b.active[pointerID]
	return ok
}
