package kdtree

import (
	"testing"

	"pathtrace/geom"
	"pathtrace/types"
)

// sphereSource resolves a primitive index into a simple ray/sphere test,
// enough to exercise Traverse without depending on the scene package.
type sphereSource struct {
	centers []types.Vec3
	radii   []float32
}

func (s sphereSource) Intersect(primIndex int32, ray geom.Ray) (geom.Intersection, bool) {
	c := s.centers[primIndex]
	r := s.radii[primIndex]

	oc := ray.Origin.Sub(c)
	b := oc.Dot(ray.Dir)
	cc := oc.Dot(oc) - r*r
	disc := b*b - cc
	if disc < 0 {
		return geom.Intersection{}, false
	}
	t := -b - sqrtApprox(disc)
	if t <= 0 {
		return geom.Intersection{}, false
	}
	return geom.Intersection{T: t, MaterialID: primIndex}, true
}

func sqrtApprox(v float32) float32 {
	x := v
	for i := 0; i < 20; i++ {
		x = 0.5 * (x + v/x)
	}
	return x
}

// twoLeafTree builds a two-primitive tree split along X at 0: a sphere at
// x=-5 in the left leaf, a sphere at x=5 in the right leaf.
func twoLeafTree() (*Tree, sphereSource) {
	src := sphereSource{
		centers: []types.Vec3{types.XYZ(-5, 0, 0), types.XYZ(5, 0, 0)},
		radii:   []float32{1, 1},
	}
	tree := &Tree{
		Nodes: []Node{
			{Axis: 0, Split: 0, Left: 1, Right: 2},
			{Axis: LeafAxis, Left: 0, Right: 1},
			{Axis: LeafAxis, Left: 1, Right: 1},
		},
		Prims:   []int32{0, 1},
		BBoxMin: types.XYZ(-6, -1, -1),
		BBoxMax: types.XYZ(6, 1, 1),
	}
	return tree, src
}

func TestTraverseFindsNearSpherePastFarSphere(t *testing.T) {
	tree, src := twoLeafTree()
	ray := geom.Ray{Origin: types.XYZ(-10, 0, 0), Dir: types.XYZ(1, 0, 0)}

	isect, hit := Traverse(tree, src, ray)
	if !hit {
		t.Fatalf("expected a hit")
	}
	if isect.MaterialID != 0 {
		t.Fatalf("expected to hit the near sphere (id 0), got id %d", isect.MaterialID)
	}
}

func TestTraverseMissesWhenRayPointsAway(t *testing.T) {
	tree, src := twoLeafTree()
	ray := geom.Ray{Origin: types.XYZ(-10, 0, 0), Dir: types.XYZ(-1, 0, 0)}

	_, hit := Traverse(tree, src, ray)
	if hit {
		t.Fatalf("expected no hit for a ray pointing away from the scene bbox")
	}
}

func TestTraverseEmptyTreeMisses(t *testing.T) {
	tree := &Tree{}
	_, hit := Traverse(tree, sphereSource{}, geom.Ray{Dir: types.XYZ(1, 0, 0)})
	if hit {
		t.Fatalf("expected no hit against an empty tree")
	}
}

func TestTraverseCrossesSplitToReachFarSphere(t *testing.T) {
	tree, src := twoLeafTree()
	ray := geom.Ray{Origin: types.XYZ(0, 0, 0), Dir: types.XYZ(1, 0, 0)}

	isect, hit := Traverse(tree, src, ray)
	if !hit {
		t.Fatalf("expected a hit")
	}
	if isect.MaterialID != 1 {
		t.Fatalf("expected to hit the far sphere (id 1) from the origin, got id %d", isect.MaterialID)
	}
}
