package scene

import "fmt"

// EntityId encodes both the slot generation (upper 32 bits) and the slot index (lower 32 bits).
// The zero EntityId never names an entity; the behavior layer uses it as the scene scope.
type EntityId uint64

// NewEntityId creates an EntityId from a generation and slot index
func NewEntityId(generation uint32, index uint32) EntityId {
	return EntityId(uint64(generation)<<32 | uint64(index))
}

// Generation extracts the slot generation from the entity ID
func (e EntityId) Generation() uint32 {
	return uint32(e >> 32)
}

// Index extracts the slot index from the entity ID
func (e EntityId) Index() uint32 {
	return uint32(e & 0xFFFFFFFF)
}

// Valid reports whether the id can name an entity at all.
func (e EntityId) Valid() bool {
	return e.Generation() != 0
}

func (e EntityId) String() string {
	if !e.Valid() {
		return "scene"
	}
	return fmt.Sprintf("%d:%d", e.Index(), e.Generation())
}

// Kind classifies what an entity stands for in the host engine.
type Kind int

const (
	KindNode Kind = iota
	KindMesh
	KindLight
	KindCamera
	KindSound
)

func (k Kind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindMesh:
		return "mesh"
	case KindLight:
		return "light"
	case KindCamera:
		return "camera"
	case KindSound:
		return "sound"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

type entitySlot struct {
	generation uint32
	alive      bool
	name       string
	kind       Kind
	parent     EntityId
	children   []EntityId
}
