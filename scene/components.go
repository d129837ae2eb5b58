package scene

import "cogentcore.org/core/math32"

// Transform is the local spatial state of an entity, relative to its parent.
type Transform struct {
	Position math32.Vector3
	Rotation math32.Vector3
	Scaling  math32.Vector3
}

// NewTransform returns a transform at pos with unit scaling.
func NewTransform(pos math32.Vector3) Transform {
	return Transform{Position: pos, Scaling: math32.Vec3(1, 1, 1)}
}

// Material is the surface state of a mesh.
type Material struct {
	Name            string
	Diffuse         Color3
	Wireframe       bool
	BackFaceCulling bool
	Texture         string
}

type LightKind int

const (
	LightHemispheric LightKind = iota
	LightPoint
	LightDirectional
)

func (k LightKind) String() string {
	switch k {
	case LightPoint:
		return "point"
	case LightDirectional:
		return "directional"
	default:
		return "hemispheric"
	}
}

type Light struct {
	Kind      LightKind
	Diffuse   Color3
	Intensity float32
	Direction math32.Vector3
}

type ShapeKind int

const (
	ShapeSphere ShapeKind = iota
	ShapeBox
	ShapeGround
	ShapePlane
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeBox:
		return "box"
	case ShapeGround:
		return "ground"
	case ShapePlane:
		return "plane"
	default:
		return "sphere"
	}
}

// Shape is the mesh geometry as far as bounds are concerned.
// Size is the extent along each axis before scaling.
type Shape struct {
	Kind ShapeKind
	Size math32.Vector3
}

func Sphere(diameter float32) Shape {
	return Shape{Kind: ShapeSphere, Size: math32.Vec3(diameter, diameter, diameter)}
}

func Box(size float32) Shape {
	return Shape{Kind: ShapeBox, Size: math32.Vec3(size, size, size)}
}

// Ground is a horizontal plane in XZ.
func Ground(width, height float32) Shape {
	return Shape{Kind: ShapeGround, Size: math32.Vec3(width, 0, height)}
}

// Plane is a vertical plane in XY facing the camera.
func Plane(width, height float32) Shape {
	return Shape{Kind: ShapePlane, Size: math32.Vec3(width, height, 0)}
}

// LocalBounds returns the axis-aligned box centered at the origin.
func (s Shape) LocalBounds() math32.Box3 {
	var b math32.Box3
	b.SetFromCenterAndSize(math32.Vector3{}, s.Size)
	return b
}

// Label is a text plane: the host renders Text onto the entity's plane shape.
type Label struct {
	Text       string
	Background string
	Foreground string
	FontSize   int
}

type CameraKind int

const (
	CameraArcRotate CameraKind = iota
	CameraUniversal
)

type Camera struct {
	Kind   CameraKind
	Target math32.Vector3
}

// Sound references an opaque audio asset; playback lives in the audio package.
type Sound struct {
	Path     string
	Loop     bool
	Autoplay bool
	Volume   float64
}

type Visibility struct {
	Visible bool
}

// DebugLayer is the scene-wide singleton toggled by the inspector key combination.
type DebugLayer struct {
	Visible bool
}

type BackdropKind int

const (
	BackdropSkybox BackdropKind = iota
	BackdropVideoDome
)

func (k BackdropKind) String() string {
	if k == BackdropVideoDome {
		return "video dome"
	}
	return "skybox"
}

// Backdrop is environment geometry around the whole scene. It carries no Shape, so
// picking and intersection tests never see it.
type Backdrop struct {
	Kind       BackdropKind
	Size       float32
	Resolution int
	Texture    string
}

// Video references an opaque video asset played on the entity's surface.
type Video struct {
	Path     string
	Loop     bool
	Autoplay bool
	Muted    bool
}
