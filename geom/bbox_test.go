package geom

import (
	"testing"

	"pathtrace/types"
)

func TestComputeBBoxUnitSphere(t *testing.T) {
	transform := types.Affine4(types.XYZ(1, 2, 3), types.QuatIdent(), types.XYZ(2, 2, 2))
	g := Geom{Type: Sphere, Transform: transform}

	min, max := ComputeBBox(&g, &TrianglePool{})

	wantMin := types.XYZ(-1, 0, 1)
	wantMax := types.XYZ(3, 4, 5)
	if min.Sub(wantMin).Len() > 1e-5 {
		t.Fatalf("min = %v, want %v", min, wantMin)
	}
	if max.Sub(wantMax).Len() > 1e-5 {
		t.Fatalf("max = %v, want %v", max, wantMax)
	}
}

func TestComputeBBoxCubeIncludesRotatedCorners(t *testing.T) {
	// A cube rotated 45 degrees about Y has a larger axis-aligned bbox
	// than its unrotated half-extent in x/z, since the corners swing out.
	rot := types.QuatFromAxisAngle(types.XYZ(0, 1, 0), 0.7853981633974483)
	transform := types.Affine4(types.Vec3{}, rot, types.XYZ(1, 1, 1))
	g := Geom{Type: Cube, Transform: transform}

	min, max := ComputeBBox(&g, &TrianglePool{})

	diag := float32(1.4142135623730951) // sqrt(2), the rotated corner's xz distance
	if max[0] < 1 || max[0] > diag+1e-4 {
		t.Fatalf("max.x = %f, want in (1, %f]", max[0], diag)
	}
	if min[1] != -1 || max[1] != 1 {
		t.Fatalf("y extent = [%f, %f], want unaffected by the Y rotation: [-1, 1]", min[1], max[1])
	}
}

func TestComputeBBoxMesh(t *testing.T) {
	pool := TrianglePool{
		Vertices: []types.Vec3{
			types.XYZ(0, 0, 0),
			types.XYZ(1, 0, 0),
			types.XYZ(0, 1, 0),
		},
		Tris: []Triangle{
			{V0: 0, V1: 1, V2: 2, N0: -1, N1: -1, N2: -1, UV0: -1, UV1: -1, UV2: -1},
		},
	}
	g := Geom{
		Type:      TriangleMeshInstance,
		Transform: types.Affine4(types.XYZ(5, 0, 0), types.QuatIdent(), types.XYZ(1, 1, 1)),
		TriStart:  0,
		TriCount:  1,
	}

	min, max := ComputeBBox(&g, &pool)

	if min.Sub(types.XYZ(5, 0, 0)).Len() > 1e-5 {
		t.Fatalf("min = %v, want (5,0,0)", min)
	}
	if max.Sub(types.XYZ(6, 1, 0)).Len() > 1e-5 {
		t.Fatalf("max = %v, want (6,1,0)", max)
	}
}

func TestComputeBBoxEmptyMesh(t *testing.T) {
	g := Geom{Type: TriangleMeshInstance, TriCount: 0}
	min, max := ComputeBBox(&g, &TrianglePool{})
	if min != (types.Vec3{}) || max != (types.Vec3{}) {
		t.Fatalf("expected zero bbox for an empty mesh, got min=%v max=%v", min, max)
	}
}
