package hello

import (
	"fmt"
	"log/slog"
	"time"

	"cogentcore.org/core/math32"

	"github.com/plus3/helloxr/behavior"
	"github.com/plus3/helloxr/internal/config"
	"github.com/plus3/helloxr/scene"
	"github.com/plus3/helloxr/signal"
)

// Labeled is implemented by composites carrying a text label entity.
type Labeled interface {
	Label() scene.EntityId
}

// IntersectionReactor receives one intersection sample per frame.
type IntersectionReactor interface {
	ReactToIntersection(hit bool)
}

// HelloMesh is a composite mesh with a label that reacts to contact with another mesh.
type HelloMesh interface {
	Labeled
	IntersectionReactor
	Root() scene.EntityId
	Mesh() scene.EntityId
	Intersections() *signal.Observable[bool]
	SayHello(message string)
}

// HelloSphere is a node holding a sphere mesh and a label floating above it.
// Its recursive action manager sees picks on both children.
type HelloSphere struct {
	name    string
	root    scene.EntityId
	mesh    scene.EntityId
	label   scene.EntityId
	onHit   *signal.Observable[bool]
	storage *scene.Storage
	logger  *slog.Logger
}

var _ HelloMesh = (*HelloSphere)(nil)

func newHelloSphere(storage *scene.Storage, l config.HelloSphereLayout, logger *slog.Logger) (*HelloSphere, error) {
	root := storage.Spawn(l.Name, scene.KindNode, scene.NewTransform(l.Position.Vector3()))
	mesh := storage.Spawn(l.Name+" mesh", scene.KindMesh,
		scene.NewTransform(math32.Vector3{}),
		scene.Sphere(l.Diameter),
		scene.Material{Name: l.Name + " material", Diffuse: scene.White()},
	)
	label, err := spawnLabel(storage, l.Label, math32.Vec3(0, l.Diameter/2+0.2, 0))
	if err != nil {
		storage.Dispose(root)
		storage.Dispose(mesh)
		return nil, err
	}
	for _, child := range []scene.EntityId{mesh, label} {
		if err := storage.SetParent(child, root); err != nil {
			storage.Dispose(root)
			return nil, err
		}
	}
	return &HelloSphere{
		name:    l.Name,
		root:    root,
		mesh:    mesh,
		label:   label,
		onHit:   signal.NewObservable[bool](),
		storage: storage,
		logger:  logger,
	}, nil
}

func (h *HelloSphere) Root() scene.EntityId  { return h.root }
func (h *HelloSphere) Mesh() scene.EntityId  { return h.mesh }
func (h *HelloSphere) Label() scene.EntityId { return h.label }

// Intersections is replaced by Build with the scene's intersection sampler.
func (h *HelloSphere) Intersections() *signal.Observable[bool] { return h.onHit }

func (h *HelloSphere) SayHello(message string) {
	h.logger.Info("message from hello sphere", "name", h.name, "message", message)
}

// initActions binds the sphere's behaviors: a light fade chain and a gated grow on pick,
// wireframe on contact with partner, and a scene-level reset key.
func (h *HelloSphere) initActions(reg *behavior.Registry, light, partner scene.EntityId, precise bool, resetKey string) error {
	if _, err := reg.NewActionManager(h.root, true); err != nil {
		return err
	}

	fade, err := reg.Register(h.root, behavior.OnPickDown(),
		behavior.Interpolate(light, "diffuse", scene.Black(), time.Second), nil)
	if err != nil {
		return fmt.Errorf("light fade: %w", err)
	}
	if _, err := fade.Then(behavior.Interpolate(light, "diffuse", scene.White(), time.Second)); err != nil {
		return fmt.Errorf("light fade: %w", err)
	}

	_, err = reg.Register(h.root, behavior.OnPickDown(),
		behavior.Interpolate(h.root, "scaling", math32.Vec3(2, 2, 2), time.Second),
		behavior.Value(light, "diffuse", behavior.Equal, scene.Black()))
	if err != nil {
		return fmt.Errorf("grow: %w", err)
	}

	if partner.Valid() {
		_, err = reg.Register(h.root, behavior.OnIntersectionEnter(partner, precise),
			behavior.SetValue(h.mesh, "material.wireframe", true), nil)
		if err != nil {
			return fmt.Errorf("wireframe on contact: %w", err)
		}
	}

	_, err = reg.Register(0, behavior.OnKeyUp(resetKey), behavior.ExecuteCode("reset "+h.name, func(env behavior.Env) {
		h.Reset()
		env.Logger.Info(resetKey+" was pressed: reset "+h.name, "entity", h.root)
	}), nil)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}

// Reset restores unit scaling and a solid material.
func (h *HelloSphere) Reset() {
	if tr := scene.ReadComponent[scene.Transform](h.storage, h.root); tr != nil {
		tr.Scaling = math32.Vec3(1, 1, 1)
	}
	if m := scene.ReadComponent[scene.Material](h.storage, h.mesh); m != nil {
		m.Wireframe = false
	}
}

// ReactToIntersection paints the mesh red while in contact and white otherwise,
// writing only on change.
func (h *HelloSphere) ReactToIntersection(hit bool) {
	m := scene.ReadComponent[scene.Material](h.storage, h.mesh)
	if m == nil {
		return
	}
	isRed := m.Diffuse.Equals(scene.Red())
	switch {
	case hit && !isRed:
		m.Diffuse = scene.Red()
	case !hit && isRed:
		m.Diffuse = scene.White()
	}
}

// subscribe feeds every sample of src to r.
func subscribe(src *signal.Observable[bool], r IntersectionReactor) {
	src.Add(r.ReactToIntersection)
}

func spawnLabel(storage *scene.Storage, l config.LabelLayout, pos math32.Vector3) (scene.EntityId, error) {
	bg, err := scene.ParseColor3(l.Background)
	if err != nil {
		return 0, fmt.Errorf("label %q: %w", l.Name, err)
	}
	return storage.Spawn(l.Name, scene.KindMesh,
		scene.NewTransform(pos),
		scene.Plane(l.Width, l.Height),
		scene.Material{Name: l.Name + " material", Diffuse: bg},
		scene.Label{Text: l.Text, Background: l.Background, Foreground: l.Foreground, FontSize: l.FontSize},
	), nil
}
