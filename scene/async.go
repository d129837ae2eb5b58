package scene

import (
	"context"
	"fmt"
)

// Await runs work on its own goroutine and delivers the result to done on the scheduler's
// goroutine at the start of the next frame. done is dropped if the scheduler is disposed first.
func Await[T any](s *Scheduler, ctx context.Context, work func(context.Context) (T, error), done func(T, error)) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		v, err := work(ctx)
		s.enqueue(func() { done(v, err) })
	}()
}

// EntitySpec describes one entity produced by an asset import.
// Parent names an earlier spec of the same import, or an existing entity.
type EntitySpec struct {
	Name       string
	Kind       Kind
	Parent     string
	Components []any
}

// Importer loads an asset into entity descriptions. It runs off the scene goroutine
// and must not touch the storage.
type Importer interface {
	Import(ctx context.Context, path string) ([]EntitySpec, error)
}

// ImporterFunc adapts a function to an Importer.
type ImporterFunc func(ctx context.Context, path string) ([]EntitySpec, error)

func (f ImporterFunc) Import(ctx context.Context, path string) ([]EntitySpec, error) {
	return f(ctx, path)
}

// ImportAsync imports path in the background and spawns the resulting entities on the
// scene goroutine. Nothing is spawned when the import fails; done receives the error.
func ImportAsync(s *Scheduler, ctx context.Context, importer Importer, path string, done func([]EntityId, error)) {
	Await(s, ctx, func(ctx context.Context) ([]EntitySpec, error) {
		return importer.Import(ctx, path)
	}, func(specs []EntitySpec, err error) {
		if err != nil {
			done(nil, fmt.Errorf("import %s: %w", path, err))
			return
		}
		ids, err := spawnSpecs(s.storage, specs)
		if err != nil {
			done(nil, fmt.Errorf("import %s: %w", path, err))
			return
		}
		done(ids, nil)
	})
}

func spawnSpecs(storage *Storage, specs []EntitySpec) ([]EntityId, error) {
	for _, spec := range specs {
		for _, c := range spec.Components {
			if !storage.registry.Registered(componentType(c)) {
				return nil, fmt.Errorf("entity %q: component %T not registered", spec.Name, c)
			}
		}
	}

	local := make(map[string]EntityId, len(specs))
	ids := make([]EntityId, 0, len(specs))
	for _, spec := range specs {
		var parent EntityId
		if spec.Parent != "" {
			p, ok := local[spec.Parent]
			if !ok {
				p, ok = storage.Lookup(spec.Parent)
			}
			if !ok {
				for _, id := range ids {
					storage.Dispose(id)
				}
				return nil, fmt.Errorf("parent %q of %q: %w", spec.Parent, spec.Name, ErrUnknownEntity)
			}
			parent = p
		}

		id := storage.Spawn(spec.Name, spec.Kind, spec.Components...)
		if parent.Valid() {
			// parent is live and id is fresh, so no cycle is possible
			_ = storage.SetParent(id, parent)
		}
		local[spec.Name] = id
		ids = append(ids, id)
	}
	return ids, nil
}
