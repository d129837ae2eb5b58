package scene

import "reflect"

// Commands buffers structural changes made while systems and hooks run.
// They are applied when the frame ends.
type Commands struct {
	spawns   []spawnCommand
	disposes []EntityId
	adds     []addComponentCommand
	removes  []removeComponentCommand
	defers   []func()
}

func newCommands() *Commands {
	return &Commands{}
}

type spawnCommand struct {
	name       string
	kind       Kind
	components []any
	done       func(EntityId)
}

type addComponentCommand struct {
	entity    EntityId
	component any
}

type removeComponentCommand struct {
	entity   EntityId
	compType reflect.Type
}

// Defer queues fn to run after every other command of the frame.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Spawn queues an entity spawn. done, if set, receives the new id.
func (c *Commands) Spawn(name string, kind Kind, done func(EntityId), components ...any) {
	c.spawns = append(c.spawns, spawnCommand{name: name, kind: kind, components: components, done: done})
}

// Dispose queues a recursive entity disposal.
func (c *Commands) Dispose(entity EntityId) {
	c.disposes = append(c.disposes, entity)
}

func (c *Commands) AddComponent(entity EntityId, component any) {
	c.adds = append(c.adds, addComponentCommand{entity: entity, component: component})
}

func (c *Commands) RemoveComponent(entity EntityId, compType reflect.Type) {
	c.removes = append(c.removes, removeComponentCommand{entity: entity, compType: compType})
}

// Len returns the number of queued commands.
func (c *Commands) Len() int {
	return len(c.spawns) + len(c.disposes) + len(c.adds) + len(c.removes) + len(c.defers)
}

// Flush applies all queued commands to storage and resets the buffer.
// Disposals run first, so component edits on a disposed entity are dropped.
func (c *Commands) Flush(storage *Storage) {
	for _, id := range c.disposes {
		storage.Dispose(id)
	}

	for _, cmd := range c.removes {
		storage.RemoveComponent(cmd.entity, cmd.compType)
	}

	for _, cmd := range c.adds {
		// a disposed target is a no-op
		_ = storage.AddComponent(cmd.entity, cmd.component)
	}

	for _, cmd := range c.spawns {
		id := storage.Spawn(cmd.name, cmd.kind, cmd.components...)
		if cmd.done != nil {
			cmd.done(id)
		}
	}

	for _, fn := range c.defers {
		fn()
	}

	c.spawns = c.spawns[:0]
	c.disposes = c.disposes[:0]
	c.adds = c.adds[:0]
	c.removes = c.removes[:0]
	c.defers = c.defers[:0]
}
