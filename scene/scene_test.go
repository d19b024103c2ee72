package scene

import (
	"math"
	"testing"

	"pathtrace/geom"
	"pathtrace/kdtree"
	"pathtrace/material"
	"pathtrace/types"
)

// buildTestTree wraps geoms in a single-leaf k-d tree spanning a large
// bbox, enough for the light-sampling unit tests in this file (none of
// them exercise traversal directly).
func buildTestTree(geoms []geom.Geom, pool *geom.TrianglePool) *kdtree.Tree {
	min, max := types.XYZ(-100, -100, -100), types.XYZ(100, 100, 100)
	nodes := []kdtree.Node{{Axis: kdtree.LeafAxis, Left: 0, Right: int32(len(geoms))}}
	prims := make([]int32, len(geoms))
	for i := range prims {
		prims[i] = int32(i)
	}
	return &kdtree.Tree{Nodes: nodes, Prims: prims, BBoxMin: min, BBoxMax: max}
}

func TestBuildLightsComputesSphereArea(t *testing.T) {
	emissive := material.Material{Tag: material.Emissive, Albedo: types.XYZ(1, 1, 1), Emittance: 5}
	transform := types.Affine4(types.Vec3{}, types.QuatIdent(), types.XYZ(2, 2, 2))
	geoms := []geom.Geom{{Type: geom.Sphere, Transform: transform, InvTransform: transform.Inverse(), MaterialID: 0}}

	s, err := New(NewCamera(types.XYZ(0, 0, 5), types.Vec3{}, types.XYZ(0, 1, 0), 40, 64, 64),
		geoms, []material.Material{emissive}, geom.TrianglePool{}, buildTestTree(geoms, nil), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if len(s.Lights) != 1 {
		t.Fatalf("expected 1 light, got %d", len(s.Lights))
	}
	want := float32(4 * math.Pi * 4) // 4*pi*r^2, r=2
	if diff := s.Lights[0].Area - want; diff > 1e-2 || diff < -1e-2 {
		t.Fatalf("sphere light area = %f, want %f", s.Lights[0].Area, want)
	}
}

func TestBuildLightsComputesCubeArea(t *testing.T) {
	emissive := material.Material{Tag: material.Emissive, Emittance: 3}
	transform := types.Affine4(types.Vec3{}, types.QuatIdent(), types.XYZ(1, 1, 1))
	geoms := []geom.Geom{{Type: geom.Cube, Transform: transform, InvTransform: transform.Inverse(), MaterialID: 0}}

	s, err := New(NewCamera(types.XYZ(0, 0, 5), types.Vec3{}, types.XYZ(0, 1, 0), 40, 64, 64),
		geoms, []material.Material{emissive}, geom.TrianglePool{}, buildTestTree(geoms, nil), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	want := float32(24) // 6 faces * (2*2) area of a unit half-extent cube
	if diff := s.Lights[0].Area - want; diff > 1e-3 || diff < -1e-3 {
		t.Fatalf("cube light area = %f, want %f", s.Lights[0].Area, want)
	}
}

func TestBuildLightsSkipsNonEmissiveGeoms(t *testing.T) {
	diffuse := material.Material{Tag: material.Diffuse, Albedo: types.XYZ(1, 1, 1)}
	transform := types.Affine4(types.Vec3{}, types.QuatIdent(), types.XYZ(1, 1, 1))
	geoms := []geom.Geom{{Type: geom.Sphere, Transform: transform, InvTransform: transform.Inverse(), MaterialID: 0}}

	s, err := New(NewCamera(types.XYZ(0, 0, 5), types.Vec3{}, types.XYZ(0, 1, 0), 40, 64, 64),
		geoms, []material.Material{diffuse}, geom.TrianglePool{}, buildTestTree(geoms, nil), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(s.Lights) != 0 {
		t.Fatalf("expected no lights for a non-emissive scene, got %d", len(s.Lights))
	}
}

func TestBuildLightsRejectsOutOfRangeMaterial(t *testing.T) {
	transform := types.Affine4(types.Vec3{}, types.QuatIdent(), types.XYZ(1, 1, 1))
	geoms := []geom.Geom{{Type: geom.Sphere, Transform: transform, InvTransform: transform.Inverse(), MaterialID: 7}}

	_, err := New(NewCamera(types.XYZ(0, 0, 5), types.Vec3{}, types.XYZ(0, 1, 0), 40, 64, 64),
		geoms, nil, geom.TrianglePool{}, buildTestTree(geoms, nil), nil)
	if err == nil {
		t.Fatalf("expected an error for an out-of-range material id")
	}
}

func TestSampleAreaLightPointLiesOnSphereSurface(t *testing.T) {
	emissive := material.Material{Tag: material.Emissive, Emittance: 5}
	center := types.XYZ(1, 2, 3)
	radius := float32(2)
	transform := types.Affine4(center, types.QuatIdent(), types.XYZ(radius, radius, radius))
	geoms := []geom.Geom{{Type: geom.Sphere, Transform: transform, InvTransform: transform.Inverse(), MaterialID: 0}}

	s, err := New(NewCamera(types.XYZ(0, 0, 10), types.Vec3{}, types.XYZ(0, 1, 0), 40, 64, 64),
		geoms, []material.Material{emissive}, geom.TrianglePool{}, buildTestTree(geoms, nil), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	point, normal, pdfArea, emission := s.SampleAreaLight(0, 0.37, 0.81)
	distFromCenter := point.Sub(center).Len()
	if diff := distFromCenter - radius; diff > 1e-3 || diff < -1e-3 {
		t.Fatalf("sampled point is %f from center, want radius %f", distFromCenter, radius)
	}
	if pdfArea <= 0 {
		t.Fatalf("expected a positive area pdf")
	}
	if normal.Len() < 0.99 || normal.Len() > 1.01 {
		t.Fatalf("expected a unit normal, got length %f", normal.Len())
	}
	if emission.Len() <= 0 {
		t.Fatalf("expected nonzero emission")
	}
}
