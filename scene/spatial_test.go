package scene_test

import (
	"testing"

	"cogentcore.org/core/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/helloxr/scene"
)

func TestWorldTransformComposesParents(t *testing.T) {
	storage := newStorage()
	parent := storage.Spawn("parent", scene.KindNode, scene.Transform{
		Position: math32.Vec3(1, 0, 0),
		Scaling:  math32.Vec3(2, 2, 2),
	})
	child := storage.Spawn("child", scene.KindMesh, scene.NewTransform(math32.Vec3(0, 1, 0)), scene.Box(1))
	require.NoError(t, storage.SetParent(child, parent))

	world, ok := scene.WorldTransform(storage, child)
	require.True(t, ok)
	assert.Equal(t, math32.Vec3(1, 2, 0), world.Position)
	assert.Equal(t, math32.Vec3(2, 2, 2), world.Scaling)

	bounds, ok := scene.WorldBounds(storage, child)
	require.True(t, ok)
	assert.Equal(t, math32.Vec3(0, 1, -1), bounds.Min)
	assert.Equal(t, math32.Vec3(2, 3, 1), bounds.Max)
}

func TestWorldBoundsOfComposite(t *testing.T) {
	storage := newStorage()
	node := storage.Spawn("node", scene.KindNode, scene.NewTransform(math32.Vector3{}))
	a := storage.Spawn("a", scene.KindMesh, scene.NewTransform(math32.Vec3(-2, 0, 0)), scene.Box(1))
	b := storage.Spawn("b", scene.KindMesh, scene.NewTransform(math32.Vec3(2, 0, 0)), scene.Box(1))
	require.NoError(t, storage.SetParent(a, node))
	require.NoError(t, storage.SetParent(b, node))

	bounds, ok := scene.WorldBounds(storage, node)
	require.True(t, ok)
	assert.Equal(t, float32(-2.5), bounds.Min.X)
	assert.Equal(t, float32(2.5), bounds.Max.X)

	empty := storage.Spawn("empty", scene.KindNode)
	_, ok = scene.WorldBounds(storage, empty)
	assert.False(t, ok)
}

func TestIntersects(t *testing.T) {
	storage := newStorage()
	a := storage.Spawn("a", scene.KindMesh, scene.NewTransform(math32.Vector3{}), scene.Box(2))
	b := storage.Spawn("b", scene.KindMesh, scene.NewTransform(math32.Vec3(2.5, 0, 0)), scene.Box(2))

	hit, err := scene.Intersects(storage, a, b, true)
	require.NoError(t, err)
	assert.False(t, hit)

	// bounding spheres of two 2-unit cubes reach sqrt(3) from each center
	hit, err = scene.Intersects(storage, a, b, false)
	require.NoError(t, err)
	assert.True(t, hit)

	scene.ReadComponent[scene.Transform](storage, b).Position.X = 2
	hit, _ = scene.Intersects(storage, a, b, true)
	assert.True(t, hit)

	storage.Dispose(b)
	_, err = scene.Intersects(storage, a, b, true)
	assert.ErrorIs(t, err, scene.ErrDisposed)
}

func TestPickReturnsNearest(t *testing.T) {
	storage := newStorage()
	far := storage.Spawn("far", scene.KindMesh, scene.NewTransform(math32.Vec3(0, 0, 5)), scene.Box(1))
	near := storage.Spawn("near", scene.KindMesh, scene.NewTransform(math32.Vec3(0, 0, 2)), scene.Box(1))
	storage.Spawn("hidden", scene.KindMesh, scene.NewTransform(math32.Vec3(0, 0, 1)), scene.Box(1), scene.Visibility{Visible: false})

	ray := scene.NewRay(math32.Vec3(0, 0, -10), math32.Vec3(0, 0, 1))
	id, point, ok := scene.Pick(storage, ray)
	require.True(t, ok)
	assert.Equal(t, near, id)
	assert.InDelta(t, 1.5, point.Z, 1e-5)

	storage.Dispose(near)
	id, _, ok = scene.Pick(storage, ray)
	require.True(t, ok)
	assert.Equal(t, far, id)

	_, _, ok = scene.Pick(storage, scene.NewRay(math32.Vec3(10, 10, -10), math32.Vec3(0, 0, 1)))
	assert.False(t, ok)
}

func TestRayIntersectPlane(t *testing.T) {
	ray := scene.NewRay(math32.Vec3(0, 5, 0), math32.Vec3(0, -1, 0))
	p, ok := ray.IntersectPlane(math32.Vector3{}, math32.Vec3(0, 1, 0))
	require.True(t, ok)
	assert.Equal(t, math32.Vec3(0, 0, 0), p)

	_, ok = ray.IntersectPlane(math32.Vector3{}, math32.Vec3(1, 0, 0))
	assert.False(t, ok)
}
