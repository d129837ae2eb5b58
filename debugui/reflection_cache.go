package debugui

import (
	"reflect"
	"sync"
)

// FieldInfo describes one exported field of a component struct.
type FieldInfo struct {
	Name  string
	Type  reflect.Type
	Index int
}

// fieldCache memoizes exported fields per struct type; the inspector walks them every frame.
type fieldCache struct {
	mu     sync.RWMutex
	fields map[reflect.Type][]FieldInfo
}

var fields = &fieldCache{fields: make(map[reflect.Type][]FieldInfo)}

func (c *fieldCache) get(t reflect.Type) []FieldInfo {
	c.mu.RLock()
	cached, ok := c.fields[t]
	c.mu.RUnlock()
	if ok {
		return cached
	}

	var out []FieldInfo
	if t.Kind() == reflect.Struct {
		for i := range t.NumField() {
			f := t.Field(i)
			if !f.IsExported() || f.Type.Kind() == reflect.Func {
				continue
			}
			out = append(out, FieldInfo{Name: f.Name, Type: f.Type, Index: i})
		}
	}

	c.mu.Lock()
	c.fields[t] = out
	c.mu.Unlock()
	return out
}

// SetField writes value into the field of *component found by following the index path
// through nested structs. Numeric values convert within their kind class. It reports
// whether the write happened.
func SetField(component any, path []int, value any) bool {
	v := reflect.ValueOf(component)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return false
	}
	v = v.Elem()
	for _, idx := range path {
		if v.Kind() != reflect.Struct || idx < 0 || idx >= v.NumField() {
			return false
		}
		v = v.Field(idx)
	}
	if !v.CanSet() {
		return false
	}
	nv := reflect.ValueOf(value)
	switch {
	case nv.Type().AssignableTo(v.Type()):
		v.Set(nv)
	case nv.CanConvert(v.Type()) && sameKindClass(nv.Kind(), v.Kind()):
		v.Set(nv.Convert(v.Type()))
	default:
		return false
	}
	return true
}

func sameKindClass(a, b reflect.Kind) bool {
	return kindClass(a) == kindClass(b)
}

func kindClass(k reflect.Kind) int {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return 1
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return 2
	case reflect.Float32, reflect.Float64:
		return 3
	}
	return int(k) + 10
}
