// Package gbuffer captures the per-pixel surface normal and position at
// the primary hit (spec 4.H) using a compact encoding: oct-encoded
// normals and a z-depth scalar that a consumer reconstructs against the
// primary ray. This keeps the per-pixel footprint at 3 floats instead of
// 6, matching the device-memory-conscious layouts in the teacher's own
// packed buffers (kdtree.Node, asset bvh nodes).
package gbuffer

import (
	"pathtrace/geom"
	"pathtrace/types"
)

// Pixel is one G-buffer entry: an oct-encoded normal and the primary
// ray's hit distance. A miss is marked by Depth <= 0.
type Pixel struct {
	OctNormal types.Vec2
	Depth     float32
}

// Buffer is the per-iteration G-buffer, one Pixel per pixel.
type Buffer struct {
	Width, Height int
	Pixels        []Pixel
}

// NewBuffer allocates a zeroed G-buffer for a width x height image.
func NewBuffer(width, height int) *Buffer {
	return &Buffer{Width: width, Height: height, Pixels: make([]Pixel, width*height)}
}

// Capture writes a G-buffer entry for pixelIndex at the primary hit
// described by isect (spec 4.F: "On depth == 0, write the G-buffer").
func (b *Buffer) Capture(pixelIndex int, isect geom.Intersection) {
	b.Pixels[pixelIndex] = Pixel{
		OctNormal: EncodeOctNormal(isect.Normal),
		Depth:     isect.T,
	}
}

// Miss marks pixelIndex as a primary-ray miss.
func (b *Buffer) Miss(pixelIndex int) {
	b.Pixels[pixelIndex] = Pixel{Depth: -1}
}

// Position reconstructs the world-space hit position of G-buffer pixel p by
// re-evaluating that pixel's primary ray at the stored depth (spec 4.H:
// "decoding: reconstruct the primary ray from pixel coordinates").
func Position(primaryRay geom.Ray, p Pixel) (types.Vec3, bool) {
	if p.Depth <= 0 {
		return types.Vec3{}, false
	}
	return primaryRay.At(p.Depth), true
}

// Normal decodes the oct-encoded normal back to a unit Vec3.
func Normal(p Pixel) types.Vec3 {
	return DecodeOctNormal(p.OctNormal)
}

// EncodeOctNormal maps a unit normal onto the signed-octahedron 2-vector
// (spec 4.H). The forward map projects the sphere onto the octahedron,
// then unfolds the lower hemisphere's two triangles into the unit square.
func EncodeOctNormal(n types.Vec3) types.Vec2 {
	l1 := absf(n[0]) + absf(n[1]) + absf(n[2])
	if l1 == 0 {
		return types.Vec2{}
	}
	p := types.XY(n[0]/l1, n[1]/l1)
	if n[2] < 0 {
		p = types.XY(
			(1-absf(p[1]))*signNotZero(p[0]),
			(1-absf(p[0]))*signNotZero(p[1]),
		)
	}
	return p
}

// DecodeOctNormal inverts EncodeOctNormal (spec 4.H): "restore z = 1 -
// |x| - |y|; if z < 0, fold xy via (1 - |yx|) * sign(xy); renormalize".
func DecodeOctNormal(e types.Vec2) types.Vec3 {
	z := 1 - absf(e[0]) - absf(e[1])
	x, y := e[0], e[1]
	if z < 0 {
		x = (1 - absf(e[1])) * signNotZero(e[0])
		y = (1 - absf(e[0])) * signNotZero(e[1])
	}
	return types.XYZ(x, y, z).Normalize()
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// signNotZero returns 1 for non-negative v, matching the convention used
// by oct-encoding schemes where sign(0) folds to +1 (avoids a degenerate
// fold direction on the encoder's axis-aligned boundaries).
func signNotZero(v float32) float32 {
	if v < 0 {
		return -1
	}
	return 1
}
