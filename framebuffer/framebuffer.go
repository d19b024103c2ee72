// Package framebuffer implements the radiance accumulator (spec 4.J and
// 3 "Framebuffer"): a per-pixel sum across iterations, with normalization
// performed only when the display path reads it out.
package framebuffer

import "pathtrace/types"

// Framebuffer accumulates per-pixel radiance across iterations without
// clamping or tone mapping, plus two scratch images the denoiser
// ping-pongs between (spec 3: "two scratch float-RGB images ping-ponged
// by the denoiser").
type Framebuffer struct {
	Width, Height int
	Accum         []types.Vec3
	ScratchA      []types.Vec3
	ScratchB      []types.Vec3
}

// New allocates a zeroed framebuffer for a width x height image.
func New(width, height int) *Framebuffer {
	n := width * height
	return &Framebuffer{
		Width:    width,
		Height:   height,
		Accum:    make([]types.Vec3, n),
		ScratchA: make([]types.Vec3, n),
		ScratchB: make([]types.Vec3, n),
	}
}

// Accumulate scatter-adds color into pixelIndex. Spec 5 notes this needs
// no atomics: the stream-compaction invariant guarantees pixelIndex is
// unique across all live paths within one iteration's accumulate step,
// so distinct goroutines never write the same slot concurrently.
func (f *Framebuffer) Accumulate(pixelIndex int, color types.Vec3) {
	if !color.IsFinite() {
		// Spec 7: "never write NaN to the accumulator."
		return
	}
	f.Accum[pixelIndex] = f.Accum[pixelIndex].Add(color)
}

// Normalize returns the display-ready image: color / iteration per pixel
// (spec 4.J), with no clamping applied here — clamping to [0,255] is the
// display path's job (spec 4.J, §6 "external collaborator").
func (f *Framebuffer) Normalize(iteration int) []types.Vec3 {
	out := make([]types.Vec3, len(f.Accum))
	if iteration <= 0 {
		copy(out, f.Accum)
		return out
	}
	inv := 1 / float32(iteration)
	for i, c := range f.Accum {
		out[i] = c.Mul(inv)
	}
	return out
}

// Reset clears the accumulator, e.g. before re-initializing a context
// after a free() (spec 4.K).
func (f *Framebuffer) Reset() {
	for i := range f.Accum {
		f.Accum[i] = types.Vec3{}
	}
}
