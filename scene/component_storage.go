package scene

import (
	"iter"
	"reflect"
)

// iComponentStorage is a type-erased column of components addressed by entity slot index.
type iComponentStorage interface {
	Set(index int, item any) bool
	Delete(index int)
	Get(index int) any
	Has(index int) bool
	Len() int
	Iter() iter.Seq[int]
}

// ComponentRegistry manages component type registration for a Storage.
// Each Storage has its own registry, so independent scenes never share column layouts.
type ComponentRegistry struct {
	factories map[reflect.Type]func() iComponentStorage
}

// NewComponentRegistry creates an empty component registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		factories: make(map[reflect.Type]func() iComponentStorage),
	}
}

// NewDefaultRegistry returns a registry with every built-in scene component registered.
func NewDefaultRegistry() *ComponentRegistry {
	r := NewComponentRegistry()
	RegisterComponent[Transform](r)
	RegisterComponent[Material](r)
	RegisterComponent[Light](r)
	RegisterComponent[Shape](r)
	RegisterComponent[Label](r)
	RegisterComponent[Camera](r)
	RegisterComponent[Sound](r)
	RegisterComponent[Visibility](r)
	RegisterComponent[Backdrop](r)
	RegisterComponent[Video](r)
	RegisterComponent[ParticleEmitter](r)
	return r
}

// RegisterComponent registers a component type with the given registry.
// This must be called for each component type before it can be attached to an entity.
func RegisterComponent[T any](r *ComponentRegistry) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	r.factories[t] = func() iComponentStorage {
		return &genericComponentStorage[T]{}
	}
}

// Registered reports whether the component type is known to the registry.
func (r *ComponentRegistry) Registered(t reflect.Type) bool {
	_, ok := r.factories[t]
	return ok
}

func (r *ComponentRegistry) getFactory(t reflect.Type) func() iComponentStorage {
	return r.factories[t]
}

const (
	genericBlockSize = 64
)

// genericComponentStorage stores components of type T in fixed-size blocks indexed by slot.
type genericComponentStorage[T any] struct {
	blocks [][genericBlockSize]T
	filled [][genericBlockSize]bool
	count  int
}

// Set stores a component at the given slot, growing the block list as needed.
func (cs *genericComponentStorage[T]) Set(index int, item any) bool {
	if index < 0 {
		return false
	}

	var concreteItem T
	if ptr, ok := item.(*T); ok {
		concreteItem = *ptr
	} else if val, ok := item.(T); ok {
		concreteItem = val
	} else {
		return false
	}

	blockIdx := index / genericBlockSize
	slotIdx := index % genericBlockSize

	for blockIdx >= len(cs.blocks) {
		cs.blocks = append(cs.blocks, [genericBlockSize]T{})
		cs.filled = append(cs.filled, [genericBlockSize]bool{})
	}

	if !cs.filled[blockIdx][slotIdx] {
		cs.count++
	}
	cs.blocks[blockIdx][slotIdx] = concreteItem
	cs.filled[blockIdx][slotIdx] = true
	return true
}

// Get returns a pointer to the component at the given slot.
func (cs *genericComponentStorage[T]) Get(index int) any {
	if !cs.Has(index) {
		return nil
	}
	return &cs.blocks[index/genericBlockSize][index%genericBlockSize]
}

// Delete marks a component slot as empty and zeroes it.
func (cs *genericComponentStorage[T]) Delete(index int) {
	if !cs.Has(index) {
		return
	}

	blockIdx := index / genericBlockSize
	slotIdx := index % genericBlockSize

	cs.filled[blockIdx][slotIdx] = false
	var zero T
	cs.blocks[blockIdx][slotIdx] = zero
	cs.count--
}

// Has checks if a component exists at the given slot.
func (cs *genericComponentStorage[T]) Has(index int) bool {
	if index < 0 {
		return false
	}

	blockIdx := index / genericBlockSize
	if blockIdx >= len(cs.blocks) {
		return false
	}

	return cs.filled[blockIdx][index%genericBlockSize]
}

func (cs *genericComponentStorage[T]) Len() int {
	return cs.count
}

func (cs *genericComponentStorage[T]) Iter() iter.Seq[int] {
	return func(yield func(int) bool) {
		for blockIdx := range cs.filled {
			for slotIdx, filled := range cs.filled[blockIdx] {
				if !filled {
					continue
				}
				if !yield(blockIdx*genericBlockSize + slotIdx) {
					return
				}
			}
		}
	}
}
