// Package tracer implements the wavefront path tracer driver (spec 4.F):
// per-iteration ray generation, the intersect/shade/compact depth loop,
// first-bounce caching, optional material sorting and Russian-roulette
// termination. Grounded in the teacher's own per-iteration driver shape
// (achilleasa-polaris/tracer/tracer.go's BlockRequest/Stats lifecycle),
// generalized from a tile-scheduled CPU/OpenCL tracer pool to a single
// wavefront loop over a device.Context worker pool.
package tracer

import (
	"pathtrace/geom"
	"pathtrace/material"
	"pathtrace/types"
)

// PathSegment is one per-pixel path state, one per live path per
// iteration (spec 3). Its logical population shrinks every depth step
// via stream compaction; PathBuffer tracks that shrinking length.
type PathSegment struct {
	Ray    geom.Ray
	Throughput types.Vec3
	Color  types.Vec3

	PixelIndex int32

	RemainingBounces         int32
	RussianRouletteThreshold int32

	IsFromCamera     bool
	IsSpecularBounce bool

	Medium material.Medium

	// HitSurface/TFar are per-step scratch filled by the Driver's
	// intersect stage (TFar < 0 marks a miss) and read by Shade and the
	// optional material sort.
	HitSurface geom.Intersection
	TFar       float32
}

// Alive reports whether the path still has bounces left (spec 3
// invariant: remainingBounces == 0 means the path contributes no
// further and its Color is final for this iteration).
func (p *PathSegment) Alive() bool {
	return p.RemainingBounces > 0
}

// Terminate ends the path immediately (spec 4.D: "if the sampled
// direction goes into the wrong hemisphere, terminate the path").
func (p *PathSegment) Terminate() {
	p.RemainingBounces = 0
}
