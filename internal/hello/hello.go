// Package hello assembles the demo scene: two spheres that react to picks, drags and
// contact, a floating text plane, a ground, and optional lights, sounds and model.
package hello

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/core/math32"

	"github.com/plus3/helloxr/audio"
	"github.com/plus3/helloxr/behavior"
	"github.com/plus3/helloxr/internal/config"
	"github.com/plus3/helloxr/internal/xr"
	"github.com/plus3/helloxr/scene"
	"github.com/plus3/helloxr/signal"
)

// Options are the host services the scene is wired to. Nil services are skipped.
type Options struct {
	Logger *slog.Logger
	// Mixer and Library enable sounds; both are needed.
	Mixer   *audio.Mixer
	Library *audio.Library
	// Runtime enables the XR session bootstrap.
	Runtime xr.Runtime
	Session xr.SessionConfig
	// InspectorKeys toggles the debug layer; empty disables the shortcut.
	InspectorKeys string
	ResetKey      string
	AssetDir      string
	Importer      scene.Importer
	// ParticleSeed seeds the particle spread; zero is a valid seed.
	ParticleSeed uint64
}

// Scene is the assembled demo. All fields are owned by the scheduler goroutine.
type Scene struct {
	Scheduler *scene.Scheduler
	Registry  *behavior.Registry
	Bridge    *signal.Bridge

	Camera    scene.EntityId
	Light     scene.EntityId
	Lights    []scene.EntityId
	Sphere    scene.EntityId
	Hello     *HelloSphere
	Ground    scene.EntityId
	TextPlane scene.EntityId
	Sounds    []scene.EntityId
	// Model holds the imported model entities once the import has completed.
	Model []scene.EntityId
	// Skybox, VideoDome and Particles are zero when the layout leaves them out.
	Skybox    scene.EntityId
	VideoDome scene.EntityId
	Particles scene.EntityId

	Intersecting *signal.Observable[bool]
	Inspector    *signal.Observable[bool]
	Session      *xr.Session

	mixer  *audio.Mixer
	logger *slog.Logger
}

// Build spawns the demo into sched's storage and wires its behaviors. The model import
// and the XR session complete asynchronously on later frames.
func Build(ctx context.Context, sched *scene.Scheduler, layout config.Layout, opts Options) (*Scene, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = sched.Logger()
	}
	if opts.ResetKey == "" {
		opts.ResetKey = "r"
	}
	storage := sched.Storage()

	s := &Scene{
		Scheduler: sched,
		Registry:  behavior.NewRegistry(sched, behavior.WithLogger(logger)),
		mixer:     opts.Mixer,
		logger:    logger,
	}
	s.Bridge = signal.NewBridge(sched, s.Registry, signal.WithLogger(logger))
	if err := s.build(ctx, layout, opts); err != nil {
		s.Dispose()
		return nil, err
	}
	logger.Info("scene built", "entities", storage.Len(), "bindings", s.Registry.Stats().Bindings)
	return s, nil
}

func (s *Scene) build(ctx context.Context, layout config.Layout, opts Options) error {
	storage := s.Scheduler.Storage()

	s.Camera = storage.Spawn("default camera", scene.KindCamera,
		scene.NewTransform(math32.Vec3(0, 0, -5)),
		scene.Camera{Kind: scene.CameraArcRotate, Target: math32.Vec3(0, 0, 5)},
	)
	light, err := spawnLight(storage, layout.Light)
	if err != nil {
		return err
	}
	s.Light = light
	for _, l := range layout.Lights {
		id, err := spawnLight(storage, l)
		if err != nil {
			return err
		}
		s.Lights = append(s.Lights, id)
	}

	s.Sphere = storage.Spawn(layout.Sphere.Name, scene.KindMesh,
		scene.NewTransform(layout.Sphere.Position.Vector3()),
		scene.Sphere(layout.Sphere.Diameter),
		scene.Material{Name: layout.Sphere.Name + " material", Diffuse: scene.White()},
	)

	if err := s.buildTextPlane(layout.TextPlane, opts); err != nil {
		return err
	}

	hello, err := newHelloSphere(storage, layout.HelloSphere, s.logger)
	if err != nil {
		return err
	}
	s.Hello = hello
	hello.SayHello(layout.HelloSphere.Greeting)

	g := layout.Ground
	s.Ground = storage.Spawn(g.Name, scene.KindMesh,
		scene.NewTransform(g.Position.Vector3()),
		scene.Ground(g.Width, g.Height),
		scene.Material{Name: g.Name + " material", Diffuse: scene.White(), BackFaceCulling: g.BackFaceCulling, Texture: g.Texture},
	)

	if err := s.attachDrags(layout); err != nil {
		return err
	}

	var partner scene.EntityId
	if layout.HelloSphere.Partner != "" {
		if partner, err = storage.Resolve(layout.HelloSphere.Partner); err != nil {
			return err
		}
		hit, err := s.Bridge.Intersection(partner, hello.Root(), layout.HelloSphere.Precise)
		if err != nil {
			return err
		}
		s.Intersecting = hit
		hello.onHit = hit
		subscribe(hit, hello)
	}
	if err := hello.initActions(s.Registry, s.Light, partner, layout.HelloSphere.Precise, opts.ResetKey); err != nil {
		return err
	}

	if err := s.buildSounds(layout.Sounds, opts); err != nil {
		return err
	}
	if err := s.buildEnvironment(layout, opts); err != nil {
		return err
	}

	if opts.InspectorKeys != "" {
		combo, err := signal.ParseKeyCombo(opts.InspectorKeys)
		if err != nil {
			return err
		}
		s.Inspector = s.Bridge.ToggleDebugLayer(combo)
		s.Inspector.Add(func(visible bool) {
			s.logger.Debug("inspector toggled", "visible", visible)
		})
	}

	if layout.Model != nil {
		s.importModel(ctx, *layout.Model, opts)
	} else {
		s.startParticles()
	}

	if opts.Runtime != nil {
		s.bootstrapXR(ctx, opts)
	}
	return nil
}

func spawnLight(storage *scene.Storage, l config.LightLayout) (scene.EntityId, error) {
	kind, err := config.ParseLightKind(l.Kind)
	if err != nil {
		return 0, err
	}
	diffuse := scene.White()
	if l.Diffuse != "" {
		if diffuse, err = scene.ParseColor3(l.Diffuse); err != nil {
			return 0, fmt.Errorf("light %q: %w", l.Name, err)
		}
	}
	return storage.Spawn(l.Name, scene.KindLight,
		scene.NewTransform(l.Position.Vector3()),
		scene.Light{Kind: kind, Diffuse: diffuse, Intensity: l.Intensity, Direction: l.Direction.Vector3()},
	), nil
}

// buildTextPlane spawns the floating label. With audio enabled, picking it plays its sound.
func (s *Scene) buildTextPlane(l config.LabelLayout, opts Options) error {
	storage := s.Scheduler.Storage()
	id, err := spawnLabel(storage, l, l.Position.Vector3())
	if err != nil {
		return err
	}
	s.TextPlane = id
	if l.Sound == "" {
		return nil
	}
	if err := storage.AddComponent(id, scene.Sound{Path: assetPath(opts.AssetDir, l.Sound), Volume: l.Volume}); err != nil {
		return err
	}
	if opts.Mixer == nil || opts.Library == nil {
		return nil
	}
	if _, err := s.Registry.NewActionManager(id, false); err != nil {
		return err
	}
	_, err = s.Registry.Register(id, behavior.OnPickDown(), audio.PlaySound(id, opts.Mixer, opts.Library), nil)
	return err
}

func (s *Scene) attachDrags(layout config.Layout) error {
	sphereDrag, err := s.Bridge.AttachDrag(s.Sphere, signal.DragOptions{PlaneNormal: layout.Sphere.DragPlane.Vector3()})
	if err != nil {
		return err
	}
	sphereDrag.OnDragStart.Add(func(ev signal.DragEvent) {
		s.logger.Info(fmt.Sprintf("drag start: pointer id - %d", ev.PointerID), "entity", ev.Entity, "point", ev.Point)
	})
	_, err = s.Bridge.AttachDrag(s.Hello.Root(), signal.DragOptions{PlaneNormal: layout.HelloSphere.DragPlane.Vector3()})
	return err
}

func (s *Scene) buildSounds(sounds []config.SoundLayout, opts Options) error {
	storage := s.Scheduler.Storage()
	for _, l := range sounds {
		id := storage.Spawn(l.Name, scene.KindSound, scene.Sound{
			Path:     assetPath(opts.AssetDir, l.Path),
			Loop:     l.Loop,
			Autoplay: l.Autoplay,
			Volume:   l.Volume,
		})
		s.Sounds = append(s.Sounds, id)
	}
	if opts.Mixer != nil && opts.Library != nil {
		if n := audio.Autoplay(storage, opts.Mixer, opts.Library); n > 0 {
			s.logger.Debug("sounds autoplaying", "count", n)
		}
	}
	return nil
}

// buildEnvironment spawns the optional skybox, video dome and particle emitter.
func (s *Scene) buildEnvironment(layout config.Layout, opts Options) error {
	storage := s.Scheduler.Storage()
	if sb := layout.Skybox; sb != nil {
		texture := assetPath(opts.AssetDir, sb.Texture)
		s.Skybox = storage.Spawn(sb.Name, scene.KindMesh,
			scene.NewTransform(math32.Vector3{}),
			scene.Backdrop{Kind: scene.BackdropSkybox, Size: sb.Size, Texture: texture},
			scene.Material{Name: sb.Name, Diffuse: scene.Black(), Texture: texture},
		)
	}
	if vd := layout.VideoDome; vd != nil {
		s.VideoDome = storage.Spawn(vd.Name, scene.KindMesh,
			scene.NewTransform(math32.Vector3{}),
			scene.Backdrop{Kind: scene.BackdropVideoDome, Size: vd.Size, Resolution: vd.Resolution},
			scene.Video{Path: assetPath(opts.AssetDir, vd.Path), Loop: vd.Loop, Autoplay: vd.Autoplay, Muted: vd.Muted},
		)
	}
	p := layout.Particles
	if p == nil {
		return nil
	}
	color1, err := scene.ParseColor3(p.Color1)
	if err != nil {
		return fmt.Errorf("particles %q: %w", p.Name, err)
	}
	color2, err := scene.ParseColor3(p.Color2)
	if err != nil {
		return fmt.Errorf("particles %q: %w", p.Name, err)
	}
	s.Particles = storage.Spawn(p.Name, scene.KindNode,
		scene.NewTransform(p.Position.Vector3()),
		scene.ParticleEmitter{
			Capacity:    p.Capacity,
			Texture:     assetPath(opts.AssetDir, p.Texture),
			EmitRate:    p.EmitRate,
			MinLifeTime: p.MinLifeTime,
			MaxLifeTime: p.MaxLifeTime,
			MinSize:     p.MinSize,
			MaxSize:     p.MaxSize,
			Direction1:  p.Direction1.Vector3(),
			Direction2:  p.Direction2.Vector3(),
			MinPower:    p.MinPower,
			MaxPower:    p.MaxPower,
			Gravity:     p.Gravity.Vector3(),
			Color1:      color1,
			Color2:      color2,
		},
	)
	s.Scheduler.Register(scene.NewParticleSystem(opts.ParticleSeed))
	return nil
}

func (s *Scene) startParticles() {
	if s.Particles == 0 {
		return
	}
	if e := scene.ReadComponent[scene.ParticleEmitter](s.Scheduler.Storage(), s.Particles); e != nil {
		e.Start()
		s.logger.Debug("particles started", "entity", s.Particles)
	}
}

// importModel loads the model in the background and spins it around Y once it lands.
// Particles start with the model, even when the import fails.
func (s *Scene) importModel(ctx context.Context, m config.ModelLayout, opts Options) {
	importer := opts.Importer
	if importer == nil {
		scaling := m.Scaling
		if scaling == 0 {
			scaling = 1
		}
		importer = ModelImporter{Root: scene.Transform{
			Position: m.Position.Vector3(),
			Rotation: m.Rotation.Vector3(),
			Scaling:  math32.Vec3(scaling, scaling, scaling),
		}}
	}
	path := assetPath(opts.AssetDir, m.Path)
	scene.ImportAsync(s.Scheduler, ctx, importer, path, func(ids []scene.EntityId, err error) {
		s.startParticles()
		if errors.Log(err) != nil {
			return
		}
		s.Model = ids
		s.logger.Info("model imported", "path", path, "entities", len(ids))
		if m.SpinPeriod > 0 && len(ids) > 0 {
			errors.Log(s.spin(ids[0], m.SpinPeriod))
		}
	})
}

func (s *Scene) spin(root scene.EntityId, period float32) error {
	prop, err := scene.ResolveProperty(s.Scheduler.Storage(), root, "rotation")
	if err != nil {
		return err
	}
	start, err := prop.Get()
	if err != nil {
		return err
	}
	from := start.(math32.Vector3)
	to := from.Add(math32.Vec3(0, 2*math32.Pi, 0))
	_, err = s.Scheduler.Animator().Play(prop, []scene.Keyframe{
		{Time: 0, Value: from},
		{Time: time.Duration(float64(period) * float64(time.Second)), Value: to},
	}, true)
	return err
}

func (s *Scene) bootstrapXR(ctx context.Context, opts Options) {
	cfg := opts.Session
	if cfg.Mode == "" {
		cfg.Mode = xr.ImmersiveVR
	}
	xr.Bootstrap(s.Scheduler, ctx, opts.Runtime, cfg, func(session *xr.Session, err error) {
		if err != nil {
			s.logger.Warn("xr session unavailable, continuing without it", "mode", cfg.Mode, "err", err)
			return
		}
		s.Session = session
		s.logger.Info("xr session started", "mode", session.Mode, "reference_space", session.ReferenceSpace)
	})
}

func assetPath(dir, path string) string {
	if dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// Dispose tears the scene down: session, sounds, bindings, signals, tweens and entities.
func (s *Scene) Dispose() {
	if s.Session != nil {
		s.Session.End()
	}
	if s.mixer != nil {
		storage := s.Scheduler.Storage()
		for _, id := range append([]scene.EntityId{s.TextPlane}, s.Sounds...) {
			if storage.Alive(id) {
				s.mixer.Stop(storage.Name(id))
			}
		}
	}
	s.Bridge.Dispose()
	s.Registry.Dispose()
	s.Scheduler.Dispose()
}
