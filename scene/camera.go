package scene

import (
	"math"

	"pathtrace/geom"
	"pathtrace/sampling"
	"pathtrace/types"
)

// Camera is a thin-lens pinhole camera (spec 4.F.1): GenerateCameraRay
// jitters sub-pixel by U[-1/2,1/2)^2 when AA is enabled, and when
// LensRadius > 0 samples a point on the lens and aims through the focal
// plane instead of through a single eye point.
//
// Grounded in MarkJulian19-path_trace_golang/internal/engine/camera.go's
// basis-vector (u, v, w) + lowerLeftCorner construction — the idiomatic
// Shirley-style thin-lens camera — rather than the teacher's own
// Mat4 view/projection/frustum-corner machinery (achilleasa-polaris/
// scene/camera.go), which targets OpenGL's clip-space pipeline and has no
// use here since this module never rasterizes.
type Camera struct {
	Position types.Vec3
	LookAt   types.Vec3
	Up       types.Vec3

	FOVDegrees float32

	LensRadius    float32
	FocalDistance float32

	AntiAlias bool

	u, v, w         types.Vec3
	lowerLeftCorner types.Vec3
	horizontal      types.Vec3
	vertical        types.Vec3
}

// NewCamera builds a Camera and precomputes its viewport basis for a
// width/height aspect ratio.
func NewCamera(position, lookAt, up types.Vec3, fovDegrees float32, width, height int) *Camera {
	c := &Camera{
		Position:   position,
		LookAt:     lookAt,
		Up:         up,
		FOVDegrees: fovDegrees,
	}
	c.Setup(width, height)
	return c
}

// Setup (re)computes the viewport basis for the given image dimensions;
// call again after changing Position/LookAt/Up/FOVDegrees/FocalDistance.
func (c *Camera) Setup(width, height int) {
	aspect := float32(width) / float32(height)

	theta := c.FOVDegrees * float32(math.Pi) / 180
	halfHeight := float32(math.Tan(float64(theta) / 2))
	halfWidth := aspect * halfHeight

	w := c.Position.Sub(c.LookAt).Normalize()
	u := c.Up.Cross(w).Normalize()
	v := w.Cross(u)

	focalDistance := c.FocalDistance
	if focalDistance <= 0 {
		focalDistance = c.Position.Sub(c.LookAt).Len()
		if focalDistance <= 0 {
			focalDistance = 1
		}
	}

	c.u, c.v, c.w = u, v, w
	c.horizontal = u.Mul(2 * halfWidth * focalDistance)
	c.vertical = v.Mul(2 * halfHeight * focalDistance)
	c.lowerLeftCorner = c.Position.
		Sub(c.horizontal.Mul(0.5)).
		Sub(c.vertical.Mul(0.5)).
		Sub(w.Mul(focalDistance))
}

// GenerateCameraRay builds the primary ray for pixel (x, y) of a width x
// height image (spec 4.F.1).
func (c *Camera) GenerateCameraRay(x, y, width, height int, rng *sampling.RNG) geom.Ray {
	px, py := float32(x), float32(y)
	if c.AntiAlias {
		jx, jy := rng.Float32_2()
		px += jx - 0.5
		py += jy - 0.5
	} else {
		px += 0.5
		py += 0.5
	}

	// Image row 0 is the top of the image; the viewport basis measures t
	// from the bottom, so v is flipped.
	s := px / float32(width)
	t := 1 - py/float32(height)

	origin := c.Position
	if c.LensRadius > 0 {
		lu, lv := rng.Float32_2()
		dx, dy := sampling.ConcentricSampleDisk(lu, lv)
		dx *= c.LensRadius
		dy *= c.LensRadius
		offset := c.u.Mul(dx).Add(c.v.Mul(dy))
		origin = origin.Add(offset)
	}

	target := c.lowerLeftCorner.Add(c.horizontal.Mul(s)).Add(c.vertical.Mul(t))
	dir := target.Sub(origin).Normalize()

	return geom.Ray{Origin: origin, Dir: dir}
}
