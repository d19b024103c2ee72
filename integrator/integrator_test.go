package integrator

import (
	"testing"

	"pathtrace/geom"
	"pathtrace/light"
	"pathtrace/material"
	"pathtrace/sampling"
	"pathtrace/tracer"
	"pathtrace/types"
)

// fakeScene is the minimal tracer.Scene a Shade/Miss call needs: a single
// material table, no occlusion and an optional constant environment.
type fakeScene struct {
	materials   []material.Material
	environment *types.Vec3
}

func (s fakeScene) GenerateCameraRay(x, y, width, height int, rng *sampling.RNG) geom.Ray {
	return geom.Ray{}
}

func (s fakeScene) Intersect(ray geom.Ray) (geom.Intersection, bool) { return geom.Intersection{}, false }

func (s fakeScene) Material(id int32) material.Material { return s.materials[id] }

func (s fakeScene) LightSource() light.Source { return emptyLightSource{} }

func (s fakeScene) HasEnvironment() bool { return s.environment != nil }

func (s fakeScene) AntiAliasEnabled() bool { return false }

func (s fakeScene) EnvironmentLe(dir types.Vec3) types.Vec3 {
	if s.environment == nil {
		return types.Vec3{}
	}
	return *s.environment
}

// emptyLightSource has no area lights and no environment, so
// light.SampleUniformLight's early-out always fires; Shade tests below
// only need to confirm the call is made without panicking and returns
// zero extra contribution.
type emptyLightSource struct{}

func (emptyLightSource) NumAreaLights() int { return 0 }
func (emptyLightSource) SampleAreaLight(idx int, u1, u2 float32) (types.Vec3, types.Vec3, float32, types.Vec3) {
	return types.Vec3{}, types.Vec3{}, 0, types.Vec3{}
}
func (emptyLightSource) TraceToAreaLight(idx int, point, wi types.Vec3) (float32, types.Vec3, float32, types.Vec3, bool) {
	return 0, types.Vec3{}, 0, types.Vec3{}, false
}
func (emptyLightSource) HasEnvironment() bool                                 { return false }
func (emptyLightSource) SampleEnvironment(u1, u2 float32) (types.Vec3, float32) { return types.Vec3{}, 0 }
func (emptyLightSource) EnvironmentPdf(wi types.Vec3) float32                 { return 0 }
func (emptyLightSource) EnvironmentLe(wi types.Vec3) types.Vec3              { return types.Vec3{} }
func (emptyLightSource) Occluded(from, to types.Vec3) bool                   { return false }

func freshPath() *tracer.PathSegment {
	return &tracer.PathSegment{
		Ray:                      geom.Ray{Origin: types.XYZ(0, 0, 5), Dir: types.XYZ(0, 0, -1)},
		Throughput:               types.XYZ(1, 1, 1),
		RemainingBounces:         4,
		RussianRouletteThreshold: 2,
		IsFromCamera:             true,
	}
}

var emissiveHit = geom.Intersection{T: 5, Normal: types.XYZ(0, 0, 1), Tangent: types.XYZ(1, 0, 0), MaterialID: 0}
var diffuseHit = geom.Intersection{T: 5, Normal: types.XYZ(0, 0, 1), Tangent: types.XYZ(1, 0, 0), MaterialID: 1}

func TestFullShadeAddsEmissionOnPrimaryRayHit(t *testing.T) {
	scene := fakeScene{materials: []material.Material{
		{Tag: material.Emissive, Albedo: types.XYZ(1, 1, 1), Emittance: 3},
	}}
	path := freshPath()
	rng := sampling.NewRNG(0, 0, 0)

	Full{}.Shade(path, emissiveHit, scene, rng)

	if path.Alive() {
		t.Fatalf("expected the path to terminate at an emissive surface")
	}
	if path.Color[0] <= 0 {
		t.Fatalf("expected nonzero emission added to Color, got %v", path.Color)
	}
}

func TestFullShadeSuppressesDoubleCountedEmissionAfterDiffuseBounce(t *testing.T) {
	scene := fakeScene{materials: []material.Material{
		{Tag: material.Emissive, Albedo: types.XYZ(1, 1, 1), Emittance: 3},
	}}
	path := freshPath()
	path.IsFromCamera = false
	path.IsSpecularBounce = false

	Full{}.Shade(path, emissiveHit, scene, sampling.NewRNG(0, 0, 0))

	if path.Color != (types.Vec3{}) {
		t.Fatalf("expected no emission added after a non-specular bounce, got %v", path.Color)
	}
}

func TestFullShadeContinuesDiffuseBounce(t *testing.T) {
	scene := fakeScene{materials: []material.Material{
		{Tag: material.Emissive, Albedo: types.XYZ(1, 1, 1), Emittance: 3},
		{Tag: material.Diffuse, Albedo: types.XYZ(0.8, 0.8, 0.8)},
	}}
	path := freshPath()
	path.IsFromCamera = false

	before := path.RemainingBounces
	Full{}.Shade(path, diffuseHit, scene, sampling.NewRNG(1, 2, 3))

	if path.Alive() && path.RemainingBounces != before-1 {
		t.Fatalf("expected RemainingBounces to decrement by 1, got %d -> %d", before, path.RemainingBounces)
	}
}

func TestFullMissAddsEnvironmentOnPrimaryRay(t *testing.T) {
	env := types.XYZ(0.2, 0.3, 0.4)
	scene := fakeScene{environment: &env}
	path := freshPath()

	Full{}.Miss(path, types.XYZ(0, 0, -1), scene)

	if path.Alive() {
		t.Fatalf("expected Miss to always terminate the path")
	}
	if path.Color != env {
		t.Fatalf("expected Color = environment radiance %v, got %v", env, path.Color)
	}
}

func TestFullMissAddsNothingWithoutEnvironment(t *testing.T) {
	scene := fakeScene{}
	path := freshPath()

	Full{}.Miss(path, types.XYZ(0, 0, -1), scene)

	if path.Color != (types.Vec3{}) {
		t.Fatalf("expected zero Color with no environment, got %v", path.Color)
	}
}

func TestNaiveShadeAddsEmissionRegardlessOfBounceHistory(t *testing.T) {
	scene := fakeScene{materials: []material.Material{
		{Tag: material.Emissive, Albedo: types.XYZ(1, 1, 1), Emittance: 2},
	}}
	path := freshPath()
	path.IsFromCamera = false

	Naive{}.Shade(path, emissiveHit, scene, sampling.NewRNG(0, 0, 0))

	if path.Color[0] <= 0 {
		t.Fatalf("Naive should add emission unconditionally, got Color %v", path.Color)
	}
}

func TestDirectMISTerminatesAfterOneBounce(t *testing.T) {
	scene := fakeScene{materials: []material.Material{
		{Tag: material.Diffuse, Albedo: types.XYZ(0.8, 0.8, 0.8)},
	}}
	path := freshPath()

	DirectMIS{}.Shade(path, geom.Intersection{T: 5, Normal: types.XYZ(0, 0, 1), Tangent: types.XYZ(1, 0, 0), MaterialID: 0}, scene, sampling.NewRNG(0, 0, 0))

	if path.Alive() {
		t.Fatalf("DirectMIS always terminates after its one direct-lighting estimate")
	}
}
