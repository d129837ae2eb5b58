package scene

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"cogentcore.org/core/math32"
)

var (
	// ErrUnknownProperty reports a property path the entity does not expose.
	ErrUnknownProperty = errors.New("unknown property")
	// ErrPropertyType reports a value whose type does not match the property.
	ErrPropertyType = errors.New("property type mismatch")
)

type accessor struct {
	valueType reflect.Type
	has       func(s *Storage, id EntityId) bool
	get       func(s *Storage, id EntityId) any
	set       func(s *Storage, id EntityId, v any)
}

var (
	vector3Type = reflect.TypeFor[math32.Vector3]()
	color3Type  = reflect.TypeFor[Color3]()
	float32Type = reflect.TypeFor[float32]()
	boolType    = reflect.TypeFor[bool]()
)

func transformField(field func(*Transform) *math32.Vector3) accessor {
	return accessor{
		valueType: vector3Type,
		has:       hasComponent[Transform],
		get:       func(s *Storage, id EntityId) any { return *field(ReadComponent[Transform](s, id)) },
		set:       func(s *Storage, id EntityId, v any) { *field(ReadComponent[Transform](s, id)) = v.(math32.Vector3) },
	}
}

func hasComponent[T any](s *Storage, id EntityId) bool {
	return s.HasComponent(id, reflect.TypeFor[T]())
}

var materialDiffuse = accessor{
	valueType: color3Type,
	has:       hasComponent[Material],
	get:       func(s *Storage, id EntityId) any { return ReadComponent[Material](s, id).Diffuse },
	set:       func(s *Storage, id EntityId, v any) { ReadComponent[Material](s, id).Diffuse = v.(Color3) },
}

var lightDiffuse = accessor{
	valueType: color3Type,
	has:       hasComponent[Light],
	get:       func(s *Storage, id EntityId) any { return ReadComponent[Light](s, id).Diffuse },
	set:       func(s *Storage, id EntityId, v any) { ReadComponent[Light](s, id).Diffuse = v.(Color3) },
}

var accessors = map[string][]accessor{
	"position": {transformField(func(t *Transform) *math32.Vector3 { return &t.Position })},
	"rotation": {transformField(func(t *Transform) *math32.Vector3 { return &t.Rotation })},
	"scaling":  {transformField(func(t *Transform) *math32.Vector3 { return &t.Scaling })},
	// diffuse means the light color on lights and the material color on meshes.
	"diffuse":          {lightDiffuse, materialDiffuse},
	"material.diffuse": {materialDiffuse},
	"material.wireframe": {{
		valueType: boolType,
		has:       hasComponent[Material],
		get:       func(s *Storage, id EntityId) any { return ReadComponent[Material](s, id).Wireframe },
		set:       func(s *Storage, id EntityId, v any) { ReadComponent[Material](s, id).Wireframe = v.(bool) },
	}},
	"intensity": {{
		valueType: float32Type,
		has:       hasComponent[Light],
		get:       func(s *Storage, id EntityId) any { return ReadComponent[Light](s, id).Intensity },
		set:       func(s *Storage, id EntityId, v any) { ReadComponent[Light](s, id).Intensity = v.(float32) },
	}},
	"visible": {{
		valueType: boolType,
		has:       func(*Storage, EntityId) bool { return true },
		get: func(s *Storage, id EntityId) any {
			if v := ReadComponent[Visibility](s, id); v != nil {
				return v.Visible
			}
			return true
		},
		set: func(s *Storage, id EntityId, v any) {
			if vis := ReadComponent[Visibility](s, id); vis != nil {
				vis.Visible = v.(bool)
				return
			}
			s.setComponent(id, Visibility{Visible: v.(bool)})
		},
	}},
}

// PropertyPaths lists every path ResolveProperty understands, sorted.
func PropertyPaths() []string {
	paths := make([]string, 0, len(accessors))
	for p := range accessors {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// Property is a resolved, settable piece of entity state such as a mesh position or a light color.
type Property struct {
	Entity  EntityId
	Path    string
	storage *Storage
	access  accessor
}

// ResolveProperty binds a property path on an entity. Unknown entities and paths the entity
// does not carry are configuration errors.
func ResolveProperty(storage *Storage, id EntityId, path string) (Property, error) {
	if err := storage.Check(id); err != nil {
		return Property{}, err
	}
	path = strings.ToLower(strings.TrimSpace(path))
	for _, a := range accessors[path] {
		if a.has(storage, id) {
			return Property{Entity: id, Path: path, storage: storage, access: a}, nil
		}
	}
	return Property{}, fmt.Errorf("%s on %q: %w", path, storage.Name(id), ErrUnknownProperty)
}

// Alive reports whether the property's entity still exists.
func (p Property) Alive() bool {
	return p.storage != nil && p.storage.Alive(p.Entity) && p.access.has(p.storage, p.Entity)
}

// Type is the Go type of the property value.
func (p Property) Type() reflect.Type {
	return p.access.valueType
}

func (p Property) Get() (any, error) {
	if !p.Alive() {
		return nil, fmt.Errorf("%s: %w", p, ErrDisposed)
	}
	return p.access.get(p.storage, p.Entity), nil
}

// Set writes v after coercing it to the property type.
func (p Property) Set(v any) error {
	if !p.Alive() {
		return fmt.Errorf("%s: %w", p, ErrDisposed)
	}
	value, err := p.Coerce(v)
	if err != nil {
		return err
	}
	p.access.set(p.storage, p.Entity, value)
	return nil
}

// Coerce converts v to the property type. Numbers widen to float32 and strings parse as colors.
func (p Property) Coerce(v any) (any, error) {
	if v == nil {
		return nil, fmt.Errorf("%s: nil value: %w", p, ErrPropertyType)
	}
	if reflect.TypeOf(v) == p.access.valueType {
		return v, nil
	}
	switch p.access.valueType {
	case float32Type:
		switch n := v.(type) {
		case float64:
			return float32(n), nil
		case int:
			return float32(n), nil
		}
	case color3Type:
		if s, ok := v.(string); ok {
			c, err := ParseColor3(s)
			if err != nil {
				return nil, fmt.Errorf("%s: %w: %w", p, ErrPropertyType, err)
			}
			return c, nil
		}
	}
	return nil, fmt.Errorf("%s: cannot use %T as %s: %w", p, v, p.access.valueType, ErrPropertyType)
}

func (p Property) String() string {
	if p.storage == nil {
		return p.Path
	}
	return p.storage.Name(p.Entity) + "." + p.Path
}

// Interpolate blends between two values of the same property type at t in [0, 1].
// Booleans switch to the end value only once t reaches 1.
func Interpolate(from, to any, t float32) (any, error) {
	t = math32.Clamp(t, 0, 1)
	switch f := from.(type) {
	case float32:
		if v, ok := to.(float32); ok {
			return math32.Lerp(f, v, t), nil
		}
	case math32.Vector3:
		if v, ok := to.(math32.Vector3); ok {
			return math32.Vector3{
				X: math32.Lerp(f.X, v.X, t),
				Y: math32.Lerp(f.Y, v.Y, t),
				Z: math32.Lerp(f.Z, v.Z, t),
			}, nil
		}
	case Color3:
		if v, ok := to.(Color3); ok {
			return f.Lerp(v, t), nil
		}
	case bool:
		if v, ok := to.(bool); ok {
			if t >= 1 {
				return v, nil
			}
			return f, nil
		}
	}
	return nil, fmt.Errorf("interpolate %T to %T: %w", from, to, ErrPropertyType)
}
