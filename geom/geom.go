package geom

import "pathtrace/types"

// GeomType tags the kind of primitive a Geom instance wraps (spec 3).
type GeomType uint8

const (
	Sphere GeomType = iota
	Cube
	TriangleMeshInstance
)

// Geom is one scene primitive: a GeomType plus the affine transform that
// places a canonical unit primitive (or a shared mesh) into world space,
// and its precomputed inverse (spec 3: "Geom ... plus affine transform
// ... and its inverse").
type Geom struct {
	Type GeomType

	Transform    types.Mat4
	InvTransform types.Mat4

	MaterialID int32

	// World-space bounding box, used by the k-d tree builder.
	BBoxMin, BBoxMax types.Vec3

	// For TriangleMeshInstance: a [TriStart, TriStart+TriCount) range into
	// the scene's shared TrianglePool.
	TriStart, TriCount int32
}

// Triangle references three vertex-pool indices and, optionally, three
// normal/UV-pool indices (-1 means "derive from the face" for normals and
// "no UV" for UVs). It has no material of its own; every triangle uses the
// owning Geom's material.
type Triangle struct {
	V0, V1, V2    int32
	N0, N1, N2    int32
	UV0, UV1, UV2 int32
}

// TrianglePool is the shared vertex/normal/UV/triangle data referenced by
// every TriangleMeshInstance Geom (spec 3: "a shared triangle/vertex
// pool"); built once at scene load and never mutated by the tracer.
type TrianglePool struct {
	Vertices []types.Vec3
	Normals  []types.Vec3
	UVs      []types.Vec2
	Tris     []Triangle
}

// Intersect dispatches to the primitive-specific intersection routine,
// returning the nearest positive hit in world space or (zero, false) on a
// miss (spec 4.B).
func Intersect(g *Geom, pool *TrianglePool, ray Ray) (Intersection, bool) {
	switch g.Type {
	case Sphere:
		return intersectSphere(g, ray)
	case Cube:
		return intersectCube(g, ray)
	case TriangleMeshInstance:
		return intersectMesh(g, pool, ray)
	default:
		return Intersection{}, false
	}
}

// transformToObject maps a world-space ray into the Geom's object space.
// The direction is deliberately left un-normalized: because the transform
// is affine, the hit parameter t solved in object space using this
// un-normalized direction is identical to t in world space (both
// parametrize the same line by the same affine map), which lets intersect
// routines avoid a second "convert t back to world units" step.
func transformToObject(g *Geom, ray Ray) Ray {
	return Ray{
		Origin: g.InvTransform.MulPoint(ray.Origin),
		Dir:    g.InvTransform.MulDir(ray.Dir),
	}
}

// normalToWorld transforms an object-space normal to world space using the
// inverse-transpose of the Geom's transform (spec 4.B), then renormalizes.
func normalToWorld(g *Geom, objNormal types.Vec3) types.Vec3 {
	invTranspose := g.InvTransform.Mat3().Transpose()
	return invTranspose.MulVec3(objNormal).Normalize()
}
