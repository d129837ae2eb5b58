package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"cogentcore.org/core/math32"
	"github.com/pelletier/go-toml/v2"

	"github.com/plus3/helloxr/scene"
)

// Vec3 is a TOML-friendly [x, y, z] triple.
type Vec3 [3]float32

func (v Vec3) Vector3() math32.Vector3 {
	return math32.Vec3(v[0], v[1], v[2])
}

type LightLayout struct {
	Name      string  `toml:"name"`
	Kind      string  `toml:"kind"`
	Direction Vec3    `toml:"direction"`
	Position  Vec3    `toml:"position"`
	Diffuse   string  `toml:"diffuse"`
	Intensity float32 `toml:"intensity"`
}

type SphereLayout struct {
	Name      string  `toml:"name"`
	Diameter  float32 `toml:"diameter"`
	Position  Vec3    `toml:"position"`
	DragPlane Vec3    `toml:"drag_plane"`
}

type LabelLayout struct {
	Name       string  `toml:"name"`
	Width      float32 `toml:"width"`
	Height     float32 `toml:"height"`
	Position   Vec3    `toml:"position"`
	Text       string  `toml:"text"`
	Background string  `toml:"background"`
	Foreground string  `toml:"foreground"`
	FontSize   int     `toml:"font_size"`
	Sound      string  `toml:"sound"`
	Volume     float64 `toml:"volume"`
}

type HelloSphereLayout struct {
	SphereLayout
	Greeting string      `toml:"greeting"`
	Label    LabelLayout `toml:"label"`
	// Partner is the name of the entity whose contact toggles wireframe.
	Partner string `toml:"partner"`
	Precise bool   `toml:"precise"`
}

type GroundLayout struct {
	Name            string  `toml:"name"`
	Width           float32 `toml:"width"`
	Height          float32 `toml:"height"`
	Position        Vec3    `toml:"position"`
	Texture         string  `toml:"texture"`
	BackFaceCulling bool    `toml:"back_face_culling"`
}

type SoundLayout struct {
	Name     string  `toml:"name"`
	Path     string  `toml:"path"`
	Loop     bool    `toml:"loop"`
	Autoplay bool    `toml:"autoplay"`
	Volume   float64 `toml:"volume"`
}

type ModelLayout struct {
	Path     string  `toml:"path"`
	Position Vec3    `toml:"position"`
	Rotation Vec3    `toml:"rotation"`
	Scaling  float32 `toml:"scaling"`
	// SpinPeriod is the time in seconds for one full turn around Y; zero disables the spin.
	SpinPeriod float32 `toml:"spin_period"`
}

// SkyboxLayout is a large textured box around the scene, drawn from the inside.
type SkyboxLayout struct {
	Name    string  `toml:"name"`
	Size    float32 `toml:"size"`
	Texture string  `toml:"texture"`
}

// VideoDomeLayout is a 360 degree video projected on a sphere around the scene.
type VideoDomeLayout struct {
	Name       string  `toml:"name"`
	Path       string  `toml:"path"`
	Size       float32 `toml:"size"`
	Resolution int     `toml:"resolution"`
	Loop       bool    `toml:"loop"`
	Autoplay   bool    `toml:"autoplay"`
	Muted      bool    `toml:"muted"`
}

// ParticlesLayout is an emitter started once the model import lands, or at build time
// when the layout has no model.
type ParticlesLayout struct {
	Name        string  `toml:"name"`
	Position    Vec3    `toml:"position"`
	Capacity    int     `toml:"capacity"`
	Texture     string  `toml:"texture"`
	EmitRate    float32 `toml:"emit_rate"`
	MinLifeTime float32 `toml:"min_life_time"`
	MaxLifeTime float32 `toml:"max_life_time"`
	MinSize     float32 `toml:"min_size"`
	MaxSize     float32 `toml:"max_size"`
	Direction1  Vec3    `toml:"direction1"`
	Direction2  Vec3    `toml:"direction2"`
	MinPower    float32 `toml:"min_power"`
	MaxPower    float32 `toml:"max_power"`
	Gravity     Vec3    `toml:"gravity"`
	Color1      string  `toml:"color1"`
	Color2      string  `toml:"color2"`
}

func DefaultSkybox() SkyboxLayout {
	return SkyboxLayout{Name: "skybox", Size: 1000, Texture: "assets/textures/skybox"}
}

func DefaultVideoDome() VideoDomeLayout {
	return VideoDomeLayout{
		Name:       "video dome",
		Path:       "assets/videos/bridge-360.mp4",
		Size:       1000,
		Resolution: 32,
		Loop:       true,
		Autoplay:   true,
	}
}

func DefaultParticles() ParticlesLayout {
	return ParticlesLayout{
		Name:        "particles",
		Capacity:    5000,
		Texture:     "assets/textures/grass.png",
		EmitRate:    1500,
		MinLifeTime: 0.3,
		MaxLifeTime: 1.5,
		MinSize:     0.01,
		MaxSize:     0.05,
		Direction1:  Vec3{-1, 8, 1},
		Direction2:  Vec3{1, 8, -1},
		MinPower:    0.2,
		MaxPower:    0.8,
		Gravity:     Vec3{0, -9.8, 0},
		Color1:      "#b3ccff",
		Color2:      "#4d80ff",
	}
}

// Layout describes the demo scene. DefaultLayout reproduces it without a file.
// Skybox, VideoDome, Particles and Model are off unless a file names them.
type Layout struct {
	Light       LightLayout       `toml:"light"`
	Lights      []LightLayout     `toml:"lights"`
	Sphere      SphereLayout      `toml:"sphere"`
	HelloSphere HelloSphereLayout `toml:"hello_sphere"`
	Ground      GroundLayout      `toml:"ground"`
	TextPlane   LabelLayout       `toml:"text_plane"`
	Sounds      []SoundLayout     `toml:"sounds"`
	Model       *ModelLayout      `toml:"model"`
	Skybox      *SkyboxLayout     `toml:"skybox"`
	VideoDome   *VideoDomeLayout  `toml:"video_dome"`
	Particles   *ParticlesLayout  `toml:"particles"`
}

func DefaultLayout() Layout {
	return Layout{
		Light: LightLayout{
			Name:      "default light",
			Kind:      "hemispheric",
			Direction: Vec3{0, 1, 0},
			Diffuse:   "white",
			Intensity: 0.7,
		},
		Sphere: SphereLayout{
			Name:      "sphere",
			Diameter:  1.3,
			Position:  Vec3{0, -0.5, 5},
			DragPlane: Vec3{0, 1, 0},
		},
		HelloSphere: HelloSphereLayout{
			SphereLayout: SphereLayout{
				Name:      "hello sphere",
				Diameter:  1,
				Position:  Vec3{0, 1, 5},
				DragPlane: Vec3{0, 0, 1},
			},
			Greeting: "this is a test.",
			Label: LabelLayout{
				Name:       "hello sphere label",
				Width:      1.5,
				Height:     1,
				Text:       "hello sphere",
				Background: "purple",
				Foreground: "white",
				FontSize:   25,
			},
			Partner: "sphere",
			Precise: true,
		},
		Ground: GroundLayout{
			Name:            "ground",
			Width:           12,
			Height:          12,
			Position:        Vec3{0, -1, 8},
			Texture:         "assets/textures/grass.png",
			BackFaceCulling: true,
		},
		TextPlane: LabelLayout{
			Name:       "hello plane",
			Width:      3,
			Height:     1,
			Position:   Vec3{0, 2, 5},
			Text:       "Hello XR",
			Background: "white",
			Foreground: "purple",
			FontSize:   60,
			Sound:      "assets/sounds/crickets.mp3",
			Volume:     0.1,
		},
	}
}

// LoadLayout reads a TOML layout file. An empty path returns DefaultLayout.
func LoadLayout(path string) (Layout, error) {
	if path == "" {
		return DefaultLayout(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read layout: %w", err)
	}
	l, err := ParseLayout(bytes.NewReader(data))
	if err != nil {
		return Layout{}, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

// ParseLayout decodes r over DefaultLayout, so a file only names what it changes.
// An optional section that is present starts from its Default value. Unknown keys are rejected.
func ParseLayout(r io.Reader) (Layout, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Layout{}, fmt.Errorf("read layout: %w", err)
	}
	l := DefaultLayout()
	var sections map[string]any
	if toml.Unmarshal(data, &sections) == nil {
		if _, ok := sections["skybox"]; ok {
			sb := DefaultSkybox()
			l.Skybox = &sb
		}
		if _, ok := sections["video_dome"]; ok {
			vd := DefaultVideoDome()
			l.VideoDome = &vd
		}
		if _, ok := sections["particles"]; ok {
			p := DefaultParticles()
			l.Particles = &p
		}
	}
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&l); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Layout{}, fmt.Errorf("%w: %s", ErrInvalidConfig, strict.String())
		}
		return Layout{}, fmt.Errorf("decode layout: %w", err)
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

func (l Layout) Validate() error {
	names := map[string]bool{}
	check := func(name string) error {
		if name == "" {
			return fmt.Errorf("%w: entity without a name", ErrInvalidConfig)
		}
		if names[name] {
			return fmt.Errorf("%w: duplicate entity name %q", ErrInvalidConfig, name)
		}
		names[name] = true
		return nil
	}
	colors := []string{l.Light.Diffuse, l.HelloSphere.Label.Background, l.HelloSphere.Label.Foreground,
		l.TextPlane.Background, l.TextPlane.Foreground}
	if l.Particles != nil {
		colors = append(colors, l.Particles.Color1, l.Particles.Color2)
	}
	for _, light := range l.Lights {
		colors = append(colors, light.Diffuse)
	}
	for _, c := range colors {
		if c == "" {
			continue
		}
		if _, err := scene.ParseColor3(c); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}

	entities := []string{l.Light.Name, l.Sphere.Name, l.HelloSphere.Name, l.HelloSphere.Label.Name,
		l.Ground.Name, l.TextPlane.Name}
	for _, light := range l.Lights {
		entities = append(entities, light.Name)
	}
	for _, s := range l.Sounds {
		entities = append(entities, s.Name)
	}
	if l.Skybox != nil {
		entities = append(entities, l.Skybox.Name)
	}
	if l.VideoDome != nil {
		entities = append(entities, l.VideoDome.Name)
	}
	if l.Particles != nil {
		entities = append(entities, l.Particles.Name)
	}
	for _, name := range entities {
		if err := check(name); err != nil {
			return err
		}
	}

	for _, d := range []float32{l.Sphere.Diameter, l.HelloSphere.Diameter} {
		if d <= 0 {
			return fmt.Errorf("%w: sphere diameter must be positive, got %v", ErrInvalidConfig, d)
		}
	}
	if _, err := ParseLightKind(l.Light.Kind); err != nil {
		return err
	}
	for _, light := range l.Lights {
		if _, err := ParseLightKind(light.Kind); err != nil {
			return err
		}
	}
	if l.HelloSphere.Partner != "" && !names[l.HelloSphere.Partner] {
		return fmt.Errorf("%w: intersection partner %q is not in the layout", ErrInvalidConfig, l.HelloSphere.Partner)
	}
	if l.Model != nil && l.Model.Path == "" {
		return fmt.Errorf("%w: model without a path", ErrInvalidConfig)
	}
	return l.validateEnvironment()
}

func (l Layout) validateEnvironment() error {
	if sb := l.Skybox; sb != nil {
		if sb.Size <= 0 || sb.Texture == "" {
			return fmt.Errorf("%w: skybox needs a positive size and a texture", ErrInvalidConfig)
		}
	}
	if vd := l.VideoDome; vd != nil {
		if vd.Size <= 0 || vd.Path == "" {
			return fmt.Errorf("%w: video dome needs a positive size and a path", ErrInvalidConfig)
		}
	}
	if p := l.Particles; p != nil {
		switch {
		case p.Capacity <= 0:
			return fmt.Errorf("%w: particle capacity must be positive, got %d", ErrInvalidConfig, p.Capacity)
		case p.EmitRate < 0:
			return fmt.Errorf("%w: negative particle emit rate", ErrInvalidConfig)
		case p.MinLifeTime <= 0 || p.MaxLifeTime < p.MinLifeTime:
			return fmt.Errorf("%w: particle life time range [%v, %v]", ErrInvalidConfig, p.MinLifeTime, p.MaxLifeTime)
		case p.MinSize < 0 || p.MaxSize < p.MinSize:
			return fmt.Errorf("%w: particle size range [%v, %v]", ErrInvalidConfig, p.MinSize, p.MaxSize)
		case p.Color1 == "" || p.Color2 == "":
			return fmt.Errorf("%w: particles need both colors", ErrInvalidConfig)
		case p.MaxPower < p.MinPower:
			return fmt.Errorf("%w: particle power range [%v, %v]", ErrInvalidConfig, p.MinPower, p.MaxPower)
		}
	}
	return nil
}

// ParseLightKind maps a layout light kind to the scene enum. Empty means hemispheric.
func ParseLightKind(s string) (scene.LightKind, error) {
	switch s {
	case "", "hemispheric":
		return scene.LightHemispheric, nil
	case "point":
		return scene.LightPoint, nil
	case "directional":
		return scene.LightDirectional, nil
	}
	return 0, fmt.Errorf("%w: unknown light kind %q", ErrInvalidConfig, s)
}
