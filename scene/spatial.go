package scene

import (
	"cogentcore.org/core/math32"
)

// WorldTransform composes the parent chain of id. Scaling multiplies down the chain and
// positions are offset by scaled parent positions. Rotation accumulates but is not applied
// to positions or bounds.
func WorldTransform(storage *Storage, id EntityId) (Transform, bool) {
	if !storage.Alive(id) {
		return Transform{}, false
	}
	world := localTransform(storage, id)
	for p := storage.Parent(id); p.Valid(); p = storage.Parent(p) {
		parent := localTransform(storage, p)
		world.Position = parent.Position.Add(parent.Scaling.Mul(world.Position))
		world.Scaling = parent.Scaling.Mul(world.Scaling)
		world.Rotation = parent.Rotation.Add(world.Rotation)
	}
	return world, true
}

func localTransform(storage *Storage, id EntityId) Transform {
	if t := ReadComponent[Transform](storage, id); t != nil {
		return *t
	}
	return NewTransform(math32.Vector3{})
}

// WorldBounds returns the axis-aligned world box of id: its own shape, if any, united with
// the bounds of all descendants. Entities without geometry report false.
func WorldBounds(storage *Storage, id EntityId) (math32.Box3, bool) {
	if !storage.Alive(id) {
		return math32.Box3{}, false
	}
	bounds := math32.B3Empty()
	found := false
	if b, ok := shapeBounds(storage, id); ok {
		bounds = b
		found = true
	}
	for _, child := range storage.Children(id) {
		if b, ok := WorldBounds(storage, child); ok {
			bounds = bounds.Union(b)
			found = true
		}
	}
	return bounds, found
}

func shapeBounds(storage *Storage, id EntityId) (math32.Box3, bool) {
	shape := ReadComponent[Shape](storage, id)
	if shape == nil {
		return math32.Box3{}, false
	}
	world, _ := WorldTransform(storage, id)
	size := shape.Size.Mul(world.Scaling)
	size = math32.Vec3(math32.Abs(size.X), math32.Abs(size.Y), math32.Abs(size.Z))
	var b math32.Box3
	b.SetFromCenterAndSize(world.Position, size)
	return b, true
}

// Intersects tests two entities for overlap. Precise compares world boxes; otherwise the
// boxes' bounding spheres are compared. Touching counts as intersecting.
func Intersects(storage *Storage, a, b EntityId, precise bool) (bool, error) {
	if err := storage.Check(a); err != nil {
		return false, err
	}
	if err := storage.Check(b); err != nil {
		return false, err
	}
	ba, okA := WorldBounds(storage, a)
	bb, okB := WorldBounds(storage, b)
	if !okA || !okB {
		return false, nil
	}
	if precise {
		return ba.IntersectsBox(bb), nil
	}
	sa, sb := ba.GetBoundingSphere(), bb.GetBoundingSphere()
	return sa.Center.Sub(sb.Center).Length() <= sa.Radius+sb.Radius, nil
}

// Ray is a half-line used for pointer picking and drag planes.
type Ray struct {
	Origin    math32.Vector3
	Direction math32.Vector3
}

func NewRay(origin, direction math32.Vector3) Ray {
	return Ray{Origin: origin, Direction: direction.Normal()}
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) math32.Vector3 {
	return r.Origin.Add(r.Direction.MulScalar(t))
}

// IntersectBox returns the entry distance of the ray into b using the slab test.
func (r Ray) IntersectBox(b math32.Box3) (float32, bool) {
	tmin, tmax := -math32.Infinity, math32.Infinity
	origin := [3]float32{r.Origin.X, r.Origin.Y, r.Origin.Z}
	dir := [3]float32{r.Direction.X, r.Direction.Y, r.Direction.Z}
	lo := [3]float32{b.Min.X, b.Min.Y, b.Min.Z}
	hi := [3]float32{b.Max.X, b.Max.Y, b.Max.Z}

	for i := range 3 {
		if dir[i] == 0 {
			if origin[i] < lo[i] || origin[i] > hi[i] {
				return 0, false
			}
			continue
		}
		t1 := (lo[i] - origin[i]) / dir[i]
		t2 := (hi[i] - origin[i]) / dir[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	if tmax < 0 {
		return 0, false
	}
	return max(tmin, 0), true
}

// IntersectPlane returns where the ray crosses the plane through point with the given normal.
func (r Ray) IntersectPlane(point, normal math32.Vector3) (math32.Vector3, bool) {
	denom := normal.Dot(r.Direction)
	if math32.Abs(denom) < 1e-6 {
		return math32.Vector3{}, false
	}
	t := point.Sub(r.Origin).Dot(normal) / denom
	if t < 0 {
		return math32.Vector3{}, false
	}
	return r.At(t), true
}

// Pick returns the nearest visible entity with a shape hit by the ray, and the hit point.
func Pick(storage *Storage, ray Ray) (EntityId, math32.Vector3, bool) {
	var (
		best     EntityId
		bestDist = math32.Infinity
		found    bool
	)
	q := NewQuery[Shape](storage)
	for id := range q.Iter() {
		if vis := ReadComponent[Visibility](storage, id); vis != nil && !vis.Visible {
			continue
		}
		b, ok := shapeBounds(storage, id)
		if !ok {
			continue
		}
		if t, hit := ray.IntersectBox(b); hit && t < bestDist {
			best, bestDist, found = id, t, true
		}
	}
	if !found {
		return 0, math32.Vector3{}, false
	}
	return best, ray.At(bestDist), true
}
