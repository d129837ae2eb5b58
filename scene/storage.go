package scene

import (
	"errors"
	"fmt"
	"iter"
	"reflect"
	"slices"
	"sort"

	"cogentcore.org/core/base/ordmap"
)

var (
	// ErrUnknownEntity reports a name or id that never named a live entity.
	ErrUnknownEntity = errors.New("unknown entity")
	// ErrDisposed reports an id whose entity has been disposed.
	ErrDisposed = errors.New("entity disposed")
)

// Storage owns every entity of a scene together with its components and the scene singletons.
type Storage struct {
	registry   *ComponentRegistry
	slots      []entitySlot
	free       []uint32
	live       int
	names      *ordmap.Map[string, EntityId]
	columns    map[reflect.Type]iComponentStorage
	singletons map[reflect.Type]reflect.Value
	onDispose  []func(EntityId)
}

// NewStorage creates an empty scene storage with the given component registry
func NewStorage(registry *ComponentRegistry) *Storage {
	return &Storage{
		registry:   registry,
		names:      ordmap.New[string, EntityId](),
		columns:    make(map[reflect.Type]iComponentStorage),
		singletons: make(map[reflect.Type]reflect.Value),
	}
}

// Spawn creates a named entity of the given kind with the provided components.
// Names need not be unique; Lookup returns the earliest live entity with a name.
func (s *Storage) Spawn(name string, kind Kind, components ...any) EntityId {
	var index uint32
	if n := len(s.free); n > 0 {
		index = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		index = uint32(len(s.slots))
		s.slots = append(s.slots, entitySlot{})
	}

	slot := &s.slots[index]
	slot.generation++
	slot.alive = true
	slot.name = name
	slot.kind = kind
	slot.parent = 0
	slot.children = nil
	s.live++

	id := NewEntityId(slot.generation, index)
	for _, comp := range components {
		s.setComponent(id, comp)
	}

	if _, exists := s.names.ValueByKeyTry(name); !exists {
		s.names.Add(name, id)
	}
	return id
}

// Alive reports whether id names an entity that has not been disposed
func (s *Storage) Alive(id EntityId) bool {
	slot := s.slot(id)
	return slot != nil && slot.alive
}

func (s *Storage) slot(id EntityId) *entitySlot {
	if !id.Valid() {
		return nil
	}
	index := id.Index()
	if int(index) >= len(s.slots) {
		return nil
	}
	slot := &s.slots[index]
	if slot.generation != id.Generation() {
		return nil
	}
	return slot
}

// Check returns nil for a live entity, ErrDisposed for a disposed one and ErrUnknownEntity otherwise.
func (s *Storage) Check(id EntityId) error {
	slot := s.slot(id)
	switch {
	case slot == nil:
		if id.Valid() && int(id.Index()) < len(s.slots) {
			return fmt.Errorf("entity %s: %w", id, ErrDisposed)
		}
		return fmt.Errorf("entity %s: %w", id, ErrUnknownEntity)
	case !slot.alive:
		return fmt.Errorf("entity %s: %w", id, ErrDisposed)
	}
	return nil
}

func (s *Storage) Name(id EntityId) string {
	if slot := s.slot(id); slot != nil {
		return slot.name
	}
	return ""
}

func (s *Storage) Kind(id EntityId) Kind {
	if slot := s.slot(id); slot != nil {
		return slot.kind
	}
	return KindNode
}

// Lookup finds a live entity by name
func (s *Storage) Lookup(name string) (EntityId, bool) {
	id, ok := s.names.ValueByKeyTry(name)
	if !ok || !s.Alive(id) {
		return 0, false
	}
	return id, true
}

// Resolve is Lookup for scene assembly: a missing name is a configuration error.
func (s *Storage) Resolve(name string) (EntityId, error) {
	id, ok := s.Lookup(name)
	if !ok {
		return 0, fmt.Errorf("entity %q: %w", name, ErrUnknownEntity)
	}
	return id, nil
}

// Entities iterates live entities in slot order.
func (s *Storage) Entities() iter.Seq[EntityId] {
	return func(yield func(EntityId) bool) {
		for i := range s.slots {
			slot := &s.slots[i]
			if !slot.alive {
				continue
			}
			if !yield(NewEntityId(slot.generation, uint32(i))) {
				return
			}
		}
	}
}

// Len returns the number of live entities.
func (s *Storage) Len() int {
	return s.live
}

// SetParent attaches child under parent. A zero parent detaches the child.
func (s *Storage) SetParent(child, parent EntityId) error {
	if err := s.Check(child); err != nil {
		return err
	}
	if parent.Valid() {
		if err := s.Check(parent); err != nil {
			return err
		}
		if parent == child || s.IsDescendant(parent, child) {
			return fmt.Errorf("parent %s of %s would create a cycle", parent, child)
		}
	}

	c := s.slot(child)
	if old := s.slot(c.parent); old != nil {
		old.children = slices.DeleteFunc(old.children, func(id EntityId) bool { return id == child })
	}
	c.parent = parent
	if p := s.slot(parent); p != nil {
		p.children = append(p.children, child)
	}
	return nil
}

func (s *Storage) Parent(id EntityId) EntityId {
	if slot := s.slot(id); slot != nil && slot.alive {
		return slot.parent
	}
	return 0
}

func (s *Storage) Children(id EntityId) []EntityId {
	if slot := s.slot(id); slot != nil && slot.alive {
		return slices.Clone(slot.children)
	}
	return nil
}

// IsDescendant reports whether id sits anywhere below ancestor.
func (s *Storage) IsDescendant(id, ancestor EntityId) bool {
	for p := s.Parent(id); p.Valid(); p = s.Parent(p) {
		if p == ancestor {
			return true
		}
	}
	return false
}

// OnDispose registers a listener invoked for every disposed entity, children before parents,
// while its components are still readable.
func (s *Storage) OnDispose(fn func(EntityId)) {
	s.onDispose = append(s.onDispose, fn)
}

// Dispose removes an entity and all of its descendants. It returns false if id was not alive.
func (s *Storage) Dispose(id EntityId) bool {
	slot := s.slot(id)
	if slot == nil || !slot.alive {
		return false
	}

	for _, child := range slices.Clone(slot.children) {
		s.Dispose(child)
	}

	for _, fn := range s.onDispose {
		fn(id)
	}

	if p := s.slot(slot.parent); p != nil {
		p.children = slices.DeleteFunc(p.children, func(c EntityId) bool { return c == id })
	}

	index := int(id.Index())
	for _, column := range s.columns {
		column.Delete(index)
	}

	slot.alive = false
	if named, ok := s.names.ValueByKeyTry(slot.name); ok && named == id {
		s.names.DeleteKey(slot.name)
		s.reindexName(slot.name)
	}

	slot.parent = 0
	slot.children = nil
	s.free = append(s.free, id.Index())
	s.live--
	return true
}

// reindexName points a freed name at the next live entity that carries it, if any.
func (s *Storage) reindexName(name string) {
	for id := range s.Entities() {
		if s.slots[id.Index()].name == name {
			s.names.Add(name, id)
			return
		}
	}
}

// DisposeAll tears down every entity, as when the owning scene is destroyed.
func (s *Storage) DisposeAll() {
	for i := range s.slots {
		slot := &s.slots[i]
		if slot.alive && !slot.parent.Valid() {
			s.Dispose(NewEntityId(slot.generation, uint32(i)))
		}
	}
}

// AddComponent attaches or replaces a component on a live entity.
func (s *Storage) AddComponent(id EntityId, component any) error {
	if err := s.Check(id); err != nil {
		return err
	}
	s.setComponent(id, component)
	return nil
}

func (s *Storage) setComponent(id EntityId, component any) {
	compType := componentType(component)
	column, ok := s.columns[compType]
	if !ok {
		factory := s.registry.getFactory(compType)
		if factory == nil {
			panic("component type " + compType.String() + " not registered")
		}
		column = factory()
		s.columns[compType] = column
	}
	column.Set(int(id.Index()), component)
}

// RemoveComponent detaches a component type from an entity.
func (s *Storage) RemoveComponent(id EntityId, compType reflect.Type) {
	if !s.Alive(id) {
		return
	}
	if column, ok := s.columns[compType]; ok {
		column.Delete(int(id.Index()))
	}
}

// GetComponent returns a pointer to the component of the given type, or nil.
func (s *Storage) GetComponent(id EntityId, compType reflect.Type) any {
	if !s.Alive(id) {
		return nil
	}
	column, ok := s.columns[compType]
	if !ok {
		return nil
	}
	return column.Get(int(id.Index()))
}

// HasComponent checks if an entity has a specific component type
func (s *Storage) HasComponent(id EntityId, compType reflect.Type) bool {
	if !s.Alive(id) {
		return false
	}
	column, ok := s.columns[compType]
	return ok && column.Has(int(id.Index()))
}

// ComponentTypes lists the component types attached to an entity, sorted by name.
func (s *Storage) ComponentTypes(id EntityId) []reflect.Type {
	if !s.Alive(id) {
		return nil
	}
	var types []reflect.Type
	for t, column := range s.columns {
		if column.Has(int(id.Index())) {
			types = append(types, t)
		}
	}
	sort.Slice(types, func(i, j int) bool { return types[i].String() < types[j].String() })
	return types
}

func componentType(component any) reflect.Type {
	compType := reflect.TypeOf(component)
	if compType.Kind() == reflect.Ptr {
		compType = compType.Elem()
	}

	if compType.Kind() == reflect.Ptr || compType.Kind() == reflect.Map ||
		compType.Kind() == reflect.Chan || compType.Kind() == reflect.Func {
		panic("components cannot be pointers, maps, channels, or functions")
	}
	return compType
}

type ComponentReader interface {
	GetComponent(EntityId, reflect.Type) any
}

// ReadComponent returns the typed component pointer, or nil when absent.
func ReadComponent[T any](reader ComponentReader, entityId EntityId) *T {
	c, _ := reader.GetComponent(entityId, reflect.TypeFor[T]()).(*T)
	return c
}

// AddSingleton stores a scene-wide value not attached to any entity, such as the DebugLayer.
// Replacing an existing singleton writes through, so pointers handed out earlier stay valid.
func (s *Storage) AddSingleton(value any) {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if ptr, ok := s.singletons[v.Type()]; ok {
		ptr.Elem().Set(v)
		return
	}
	ptr := reflect.New(v.Type())
	ptr.Elem().Set(v)
	s.singletons[v.Type()] = ptr
}

// ReadSingleton fills out with a pointer to the singleton of type T and reports whether it exists.
func (s *Storage) ReadSingleton(out any) bool {
	outVal := reflect.ValueOf(out)
	if outVal.Kind() != reflect.Ptr || outVal.Elem().Kind() != reflect.Ptr {
		panic("ReadSingleton expects a pointer to a pointer")
	}
	ptr, ok := s.singletons[outVal.Elem().Type().Elem()]
	if ok {
		outVal.Elem().Set(ptr)
	}
	return ok
}

// Singleton is a typed handle on a scene singleton, held by systems as a field or created
// with NewSingleton. It resolves on every Get, so it may be declared before the value exists.
type Singleton[T any] struct {
	storage *Storage
}

// NewSingleton returns a handle on T, adding initializer (or the zero value) when the
// storage holds no T yet.
func NewSingleton[T any](storage *Storage, initializer ...T) *Singleton[T] {
	if _, ok := storage.singletons[reflect.TypeFor[T]()]; !ok {
		var value T
		if len(initializer) > 0 {
			value = initializer[0]
		}
		storage.AddSingleton(value)
	}
	return &Singleton[T]{storage: storage}
}

// Init binds the handle to a storage. The Scheduler calls it on registration.
func (s *Singleton[T]) Init(storage *Storage) {
	s.storage = storage
}

// Get returns the singleton, or nil if the storage holds none.
func (s *Singleton[T]) Get() *T {
	if s.storage == nil {
		return nil
	}
	ptr, ok := s.storage.singletons[reflect.TypeFor[T]()]
	if !ok {
		return nil
	}
	return ptr.Interface().(*T)
}

// Set replaces the singleton's value.
func (s *Singleton[T]) Set(value T) {
	s.storage.AddSingleton(value)
}

// StorageStats summarizes the storage for the debug overlay and stress reports.
type StorageStats struct {
	EntityCount    int
	KindCounts     map[Kind]int
	Components     []ComponentStats
	SingletonCount int
	SingletonTypes []string
}

type ComponentStats struct {
	Type  string
	Count int
}

func (s *Storage) CollectStats() StorageStats {
	stats := StorageStats{
		EntityCount:    s.live,
		KindCounts:     make(map[Kind]int),
		SingletonCount: len(s.singletons),
	}

	for id := range s.Entities() {
		stats.KindCounts[s.Kind(id)]++
	}

	for t, column := range s.columns {
		if column.Len() == 0 {
			continue
		}
		stats.Components = append(stats.Components, ComponentStats{Type: t.String(), Count: column.Len()})
	}
	sort.Slice(stats.Components, func(i, j int) bool { return stats.Components[i].Type < stats.Components[j].Type })

	for t := range s.singletons {
		stats.SingletonTypes = append(stats.SingletonTypes, t.String())
	}
	sort.Strings(stats.SingletonTypes)
	return stats
}

func (s *Storage) idAt(index int) (EntityId, bool) {
	if index < 0 || index >= len(s.slots) || !s.slots[index].alive {
		return 0, false
	}
	return NewEntityId(s.slots[index].generation, uint32(index)), true
}
