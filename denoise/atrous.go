// Package denoise implements the edge-aware À-Trous wavelet filter (spec
// 4.I) and an isotropic Gaussian fallback for comparison. The fallback's
// quarter-kernel caching is grounded in the teacher pack's
// gogpu-gg/internal/filter kernel cache (a mutex-guarded map keyed by
// quantized radius); the À-Trous pass itself has no teacher analogue and
// is built from the spec's own formula plus the 25-tap loop shape the
// teacher uses for its material-sort/compaction passes over flat arrays.
package denoise

import (
	"math"

	"pathtrace/framebuffer"
	"pathtrace/gbuffer"
	"pathtrace/geom"
	"pathtrace/log"
	"pathtrace/types"
)

var logger = log.New("denoise")

// b3SplineKernel is the fixed 5-tap B3-spline weights (spec 4.I).
var b3SplineKernel = [5]float32{1.0 / 16, 1.0 / 4, 3.0 / 8, 1.0 / 4, 1.0 / 16}

// Weights holds the three edge-stopping sigma parameters (spec 4.I).
type Weights struct {
	SigmaColor    float32
	SigmaNormal   float32
	SigmaPosition float32
}

// ATrous runs the iterative edge-aware wavelet filter over the
// per-pixel mean radiance (accum/iteration), producing a filtered image
// the same size as meanRadiance. primaryRays supplies the camera ray for
// each pixel so the G-buffer's z-depth encoding can be decoded back into
// a world position (spec 4.H).
//
// filterSize is the desired maximum filter footprint F; the filter runs
// floor(log2(F/4)) + 1 passes at increasing stride, ping-ponging between
// fb's two scratch buffers (spec 3: "two scratch float-RGB images
// ping-ponged by the denoiser") rather than allocating fresh ones per call.
func ATrous(meanRadiance []types.Vec3, gb *gbuffer.Buffer, primaryRays []geom.Ray, fb *framebuffer.Framebuffer, w Weights, filterSize int, iteration int) []types.Vec3 {
	width, height := gb.Width, gb.Height

	passes := 0
	if filterSize > 4 {
		passes = int(math.Floor(math.Log2(float64(filterSize)/4))) + 1
	} else {
		passes = 1
	}
	logger.Debugf("denoising %dx%d image: %d passes, weights %+v", width, height, passes, w)

	a, b := fb.ScratchA, fb.ScratchB
	copy(a, meanRadiance)

	positions := make([]types.Vec3, width*height)
	normals := make([]types.Vec3, width*height)
	hasGeom := make([]bool, width*height)
	for i, px := range gb.Pixels {
		if pos, ok := gbuffer.Position(primaryRays[i], px); ok {
			positions[i] = pos
			normals[i] = gbuffer.Normal(px)
			hasGeom[i] = true
		}
	}

	src, dst := a, b
	for k := 0; k < passes; k++ {
		stride := 1 << uint(k)
		atrousPass(src, dst, positions, normals, hasGeom, width, height, stride, w)
		src, dst = dst, src
	}

	out := make([]types.Vec3, len(src))
	scale := float32(iteration)
	for i, c := range src {
		// Spec 4.I: "multiplied back by the iteration count so the
		// display code can divide uniformly."
		out[i] = c.Mul(scale)
	}
	return out
}

func atrousPass(src, dst, positions, normals []types.Vec3, hasGeom []bool, width, height, stride int, w Weights) {
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := y*width + x
			if !hasGeom[idx] {
				dst[idx] = src[idx]
				continue
			}

			centerColor := src[idx]
			centerPos := positions[idx]
			centerNormal := normals[idx]

			var sum types.Vec3
			var weightSum float32

			for ty := -2; ty <= 2; ty++ {
				for tx := -2; tx <= 2; tx++ {
					sx := clampInt(x+tx*stride, 0, width-1)
					sy := clampInt(y+ty*stride, 0, height-1)
					sidx := sy*width + sx

					h := b3SplineKernel[tx+2] * b3SplineKernel[ty+2]

					var weight float32
					if hasGeom[sidx] {
						dc := src[sidx].Sub(centerColor)
						dn := normals[sidx].Sub(centerNormal)
						dp := positions[sidx].Sub(centerPos)

						wc := gaussianStop(dc.LenSq(), w.SigmaColor)
						wn := gaussianStop(maxf(0, dn.LenSq()), w.SigmaNormal)
						wp := gaussianStop(dp.LenSq(), w.SigmaPosition)
						weight = h * wc * wn * wp
					} else {
						weight = 0
					}

					sum = sum.Add(src[sidx].Mul(weight))
					weightSum += weight
				}
			}

			if weightSum > 0 {
				dst[idx] = sum.Mul(1 / weightSum)
			} else {
				dst[idx] = centerColor
			}
		}
	}
}

func gaussianStop(distSq, sigma float32) float32 {
	if sigma <= 0 {
		if distSq == 0 {
			return 1
		}
		return 0
	}
	return float32(math.Exp(float64(-distSq / sigma)))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
