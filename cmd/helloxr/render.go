package main

import (
	"image/color"
	"slices"

	"cogentcore.org/core/math32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/plus3/helloxr/scene"
)

const (
	pixelsPerUnit = 90
	groundDepth   = 0.05
	ambientFloor  = 0.15
)

var (
	backgroundColor = color.RGBA{24, 24, 32, 255}
	skyColor        = color.RGBA{70, 110, 160, 255}
	domeColor       = color.RGBA{40, 40, 40, 255}
	grassTint       = scene.NewColor3(0.35, 0.7, 0.3)
)

// view is a front orthographic projection looking down +Z.
type view struct {
	width, height int
	center        math32.Vector2
	scale         float32
}

func newView(width, height int) view {
	return view{width: width, height: height, center: math32.Vec2(0, 0.5), scale: pixelsPerUnit}
}

func (v *view) resize(width, height int) {
	v.width, v.height = width, height
}

func (v view) project(p math32.Vector3) (float32, float32) {
	x := float32(v.width)/2 + (p.X-v.center.X)*v.scale
	y := float32(v.height)/2 - (p.Y-v.center.Y)*v.scale
	return x, y
}

// ray is the pick ray through a screen pixel.
func (v view) ray(x, y float32) scene.Ray {
	wx := (x-float32(v.width)/2)/v.scale + v.center.X
	wy := v.center.Y - (y-float32(v.height)/2)/v.scale
	return scene.NewRay(math32.Vec3(wx, wy, -100), math32.Vec3(0, 0, 1))
}

type drawable struct {
	id    scene.EntityId
	shape scene.Shape
	world scene.Transform
}

func (v view) draw(screen *ebiten.Image, storage *scene.Storage) {
	screen.Fill(background(storage))
	light := ambient(storage)

	var items []drawable
	for id, shape := range scene.NewQuery[scene.Shape](storage).Iter() {
		if vis := scene.ReadComponent[scene.Visibility](storage, id); vis != nil && !vis.Visible {
			continue
		}
		world, ok := scene.WorldTransform(storage, id)
		if !ok {
			continue
		}
		items = append(items, drawable{id: id, shape: *shape, world: world})
	}
	// Far to near, so nearer shapes paint over.
	slices.SortStableFunc(items, func(a, b drawable) int {
		switch {
		case a.world.Position.Z > b.world.Position.Z:
			return -1
		case a.world.Position.Z < b.world.Position.Z:
			return 1
		}
		return 0
	})

	for _, it := range items {
		v.drawShape(screen, storage, it, light)
	}
	for _, e := range scene.NewQuery[scene.ParticleEmitter](storage).Iter() {
		for _, p := range e.Particles {
			x, y := v.project(p.Position)
			vector.DrawFilledCircle(screen, x, y, max(1, p.Size*v.scale), p.Color.RGBA(), false)
		}
	}
}

// background is the backdrop seen behind every shape. A video dome wins over a skybox.
func background(storage *scene.Storage) color.RGBA {
	clr := backgroundColor
	for _, b := range scene.NewQuery[scene.Backdrop](storage).Iter() {
		switch b.Kind {
		case scene.BackdropVideoDome:
			return domeColor
		case scene.BackdropSkybox:
			clr = skyColor
		}
	}
	return clr
}

func (v view) drawShape(screen *ebiten.Image, storage *scene.Storage, it drawable, light scene.Color3) {
	fill := scene.White()
	wire := false
	mat := scene.ReadComponent[scene.Material](storage, it.id)
	if mat != nil {
		fill = mat.Diffuse
		wire = mat.Wireframe
		if mat.Texture != "" {
			fill = multiply(fill, grassTint)
		}
	}
	label := scene.ReadComponent[scene.Label](storage, it.id)
	if label == nil {
		fill = multiply(fill, light)
	}
	clr := fill.RGBA()

	size := it.shape.Size.Mul(it.world.Scaling)
	cx, cy := v.project(it.world.Position)
	switch it.shape.Kind {
	case scene.ShapeSphere:
		r := max(size.X, size.Y) / 2 * v.scale
		if wire {
			vector.StrokeCircle(screen, cx, cy, r, 1, clr, true)
		} else {
			vector.DrawFilledCircle(screen, cx, cy, r, clr, true)
		}
	default:
		h := size.Y
		if it.shape.Kind == scene.ShapeGround {
			h = groundDepth
		}
		w, hh := size.X*v.scale, h*v.scale
		if wire {
			vector.StrokeRect(screen, cx-w/2, cy-hh/2, w, hh, 1, clr, false)
		} else {
			vector.DrawFilledRect(screen, cx-w/2, cy-hh/2, w, hh, clr, false)
		}
	}

	if label != nil && label.Text != "" {
		// The debug font is 6x16 pixels per glyph.
		tx := int(cx) - len(label.Text)*3
		ty := int(cy) - 8
		ebitenutil.DebugPrintAt(screen, label.Text, tx, ty)
	}
}

// ambient sums the scene lights into one color, never darker than ambientFloor.
func ambient(storage *scene.Storage) scene.Color3 {
	var sum scene.Color3
	for _, l := range scene.NewQuery[scene.Light](storage).Iter() {
		sum.R += l.Diffuse.R * l.Intensity
		sum.G += l.Diffuse.G * l.Intensity
		sum.B += l.Diffuse.B * l.Intensity
	}
	clamp := func(c float32) float32 { return math32.Clamp(c, ambientFloor, 1) }
	return scene.NewColor3(clamp(sum.R), clamp(sum.G), clamp(sum.B))
}

func multiply(a, b scene.Color3) scene.Color3 {
	return scene.NewColor3(a.R*b.R, a.G*b.G, a.B*b.B)
}
