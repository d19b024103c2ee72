package geom

import "pathtrace/types"

// Intersection is the nearest-hit record produced by Intersect / kdtree
// traversal (spec 3). T <= 0 means "miss"; callers must initialize T to
// +Inf before a descent so a leaf's first candidate always replaces it.
type Intersection struct {
	T          float32
	Normal     types.Vec3
	Tangent    types.Vec3
	UV         types.Vec2
	MaterialID int32

	// PrimIndex identifies which primitive produced this hit. geom.Intersect
	// itself never sets this (it only sees one Geom at a time); the k-d
	// tree's Source wrapper stamps it on the way out, so callers that need
	// to know which light a ray landed on (the BSDF-sampling MIS term,
	// spec 4.E.3) don't need a second traversal.
	PrimIndex int32
}

// Hit reports whether the intersection represents an actual surface hit.
func (isect Intersection) Hit() bool {
	return isect.T > 0
}
