// Package geom implements ray/primitive intersection (spec 4.B): ray-vs-
// sphere, -cube and -triangle tests, returning barycentrics, normals and
// UVs in world space.
package geom

import "pathtrace/types"

// Ray is a parametric ray: origin + t*dir. World-space rays carry a unit
// dir; the object-space rays built by transformToObject do not.
type Ray struct {
	Origin types.Vec3
	Dir    types.Vec3
}

// At evaluates the ray at parameter t.
func (r Ray) At(t float32) types.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// selfIntersectEpsilon offsets a continuing ray's origin away from the
// surface it just left, avoiding self-intersection on the next trace
// (spec 4.B).
const selfIntersectEpsilon = 1e-3

// OffsetOrigin nudges hitPoint along dir (if dir and n agree in sign) or
// along n otherwise, by selfIntersectEpsilon, so the next ray traced from
// this point does not immediately re-hit the same surface. n should be
// the geometric normal oriented to match the side the ray is leaving from.
func OffsetOrigin(hitPoint, n, dir types.Vec3) types.Vec3 {
	offset := n
	if n.Dot(dir) < 0 {
		offset = n.Neg()
	}
	return hitPoint.Add(offset.Mul(selfIntersectEpsilon))
}
