package scene

import (
	"iter"
	"reflect"
)

// Query iterates every live entity carrying component T.
// The zero value is usable once Init has bound it to a storage.
type Query[T any] struct {
	storage  *Storage
	compType reflect.Type
}

func NewQuery[T any](storage *Storage) *Query[T] {
	q := &Query[T]{}
	q.Init(storage)
	return q
}

// Init binds the query to a storage. The Scheduler calls it on registration.
func (q *Query[T]) Init(storage *Storage) {
	q.storage = storage
	q.compType = reflect.TypeFor[T]()
}

// Iter yields entity ids with a pointer to their component, in slot order.
// Components must not be added or removed while iterating; use Commands instead.
func (q *Query[T]) Iter() iter.Seq2[EntityId, *T] {
	if q.storage == nil {
		panic("Query.Iter() called before Query.Init()")
	}
	return func(yield func(EntityId, *T) bool) {
		column, ok := q.storage.columns[q.compType]
		if !ok {
			return
		}
		for index := range column.Iter() {
			id, ok := q.storage.idAt(index)
			if !ok {
				continue
			}
			if !yield(id, column.Get(index).(*T)) {
				return
			}
		}
	}
}

// Values yields only the component pointers.
func (q *Query[T]) Values() iter.Seq[*T] {
	return func(yield func(*T) bool) {
		for _, c := range q.Iter() {
			if !yield(c) {
				return
			}
		}
	}
}

func (q *Query[T]) Len() int {
	if q.storage == nil {
		return 0
	}
	if column, ok := q.storage.columns[q.compType]; ok {
		return column.Len()
	}
	return 0
}
