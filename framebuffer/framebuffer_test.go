package framebuffer

import (
	"testing"

	"pathtrace/types"
)

func TestAccumulateSumsAcrossIterations(t *testing.T) {
	fb := New(2, 1)
	fb.Accumulate(0, types.XYZ(1, 1, 1))
	fb.Accumulate(0, types.XYZ(2, 2, 2))
	fb.Accumulate(1, types.XYZ(5, 0, 0))

	if got := fb.Accum[0]; got != types.XYZ(3, 3, 3) {
		t.Fatalf("expected (3,3,3), got %v", got)
	}
	if got := fb.Accum[1]; got != types.XYZ(5, 0, 0) {
		t.Fatalf("expected (5,0,0), got %v", got)
	}
}

func TestAccumulateRejectsNonFinite(t *testing.T) {
	fb := New(1, 1)
	fb.Accumulate(0, types.XYZ(float32(nan()), 0, 0))
	if got := fb.Accum[0]; got != (types.Vec3{}) {
		t.Fatalf("expected NaN contribution to be dropped, got %v", got)
	}
}

func TestNormalizeDividesByIterationCount(t *testing.T) {
	fb := New(1, 1)
	fb.Accumulate(0, types.XYZ(10, 20, 30))
	out := fb.Normalize(5)
	want := types.XYZ(2, 4, 6)
	if out[0] != want {
		t.Fatalf("expected %v, got %v", want, out[0])
	}
}

func nan() float64 {
	var zero float64
	return zero / zero
}
