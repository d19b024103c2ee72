package tracer

import (
	"testing"

	"pathtrace/device"
	"pathtrace/geom"
	"pathtrace/light"
	"pathtrace/material"
	"pathtrace/sampling"
	"pathtrace/types"
)

// flatScene is a minimal tracer.Scene: every ray hits a single plane-like
// surface facing the camera, with one diffuse material and no lights.
type flatScene struct {
	hitT float32
}

func (s flatScene) GenerateCameraRay(x, y, width, height int, rng *sampling.RNG) geom.Ray {
	return geom.Ray{Origin: types.XYZ(0, 0, 0), Dir: types.XYZ(0, 0, 1)}
}

func (s flatScene) Intersect(ray geom.Ray) (geom.Intersection, bool) {
	return geom.Intersection{T: s.hitT, Normal: types.XYZ(0, 0, -1), Tangent: types.XYZ(1, 0, 0), MaterialID: 0}, true
}

func (s flatScene) Material(materialID int32) material.Material {
	return material.Material{Tag: material.Diffuse, Albedo: types.XYZ(0.5, 0.5, 0.5)}
}

func (s flatScene) LightSource() light.Source { return noLights{} }
func (s flatScene) HasEnvironment() bool { return false }
func (s flatScene) EnvironmentLe(dir types.Vec3) types.Vec3 { return types.Vec3{} }
func (s flatScene) AntiAliasEnabled() bool                  { return false }

type noLights struct{}

func (noLights) NumAreaLights() int { return 0 }
func (noLights) SampleAreaLight(idx int, u1, u2 float32) (types.Vec3, types.Vec3, float32, types.Vec3) {
	return types.Vec3{}, types.Vec3{}, 0, types.Vec3{}
}
func (noLights) TraceToAreaLight(idx int, point, wi types.Vec3) (float32, types.Vec3, float32, types.Vec3, bool) {
	return 0, types.Vec3{}, 0, types.Vec3{}, false
}
func (noLights) HasEnvironment() bool                                 { return false }
func (noLights) SampleEnvironment(u1, u2 float32) (types.Vec3, float32) { return types.Vec3{}, 0 }
func (noLights) EnvironmentPdf(wi types.Vec3) float32                  { return 0 }
func (noLights) EnvironmentLe(wi types.Vec3) types.Vec3                { return types.Vec3{} }
func (noLights) Occluded(from, to types.Vec3) bool                     { return false }

// missAtDepthTwo terminates every path after its second Shade call,
// adding a fixed color; used to exercise compaction across depth steps.
type missAtDepthTwo struct{ calls map[int32]int }

func (m *missAtDepthTwo) Shade(path *PathSegment, isect geom.Intersection, scene Scene, rng *sampling.RNG) {
	if m.calls == nil {
		m.calls = map[int32]int{}
	}
	m.calls[path.PixelIndex]++
	path.Color = path.Color.Add(types.XYZ(0.1, 0.1, 0.1))
	if m.calls[path.PixelIndex] >= 2 {
		path.Terminate()
		return
	}
	path.Ray = geom.Ray{Origin: path.Ray.Origin, Dir: path.Ray.Dir}
	path.RemainingBounces--
}

func (m *missAtDepthTwo) Miss(path *PathSegment, rayDir types.Vec3, scene Scene) {
	path.Terminate()
}

func newTestDriver(t *testing.T, opts Options, integ Integrator) *Driver {
	t.Helper()
	ctx := device.NewContext(2)
	if err := ctx.Init(nil); err != nil {
		t.Fatalf("unexpected error initializing device context: %v", err)
	}
	return NewDriver(opts, ctx, flatScene{hitT: 1}, integ)
}

func TestRenderIterationAccumulatesEveryPixel(t *testing.T) {
	opts := Options{Width: 4, Height: 4, MaxDepth: 2, RussianRouletteThreshold: 100}
	d := newTestDriver(t, opts, &missAtDepthTwo{})

	if err := d.RenderIteration(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fb := d.Framebuffer()
	for i, c := range fb.Accum {
		if c.MaxComponent() <= 0 {
			t.Fatalf("pixel %d was never accumulated into", i)
		}
	}
}

func TestRenderIterationCapturesGBufferAtDepthZero(t *testing.T) {
	opts := Options{Width: 2, Height: 2, MaxDepth: 1, RussianRouletteThreshold: 100}
	d := newTestDriver(t, opts, &missAtDepthTwo{})

	if err := d.RenderIteration(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, p := range d.GBuffer().Pixels {
		if p.Depth != 1 {
			t.Fatalf("pixel %d: expected captured depth 1, got %v", i, p.Depth)
		}
	}
}

func TestRenderIterationFirstBounceCacheReusesHit(t *testing.T) {
	opts := Options{Width: 2, Height: 2, MaxDepth: 1, RussianRouletteThreshold: 100, CacheFirstBounce: true}
	d := newTestDriver(t, opts, &missAtDepthTwo{})

	if err := d.RenderIteration(0); err != nil {
		t.Fatalf("unexpected error on first iteration: %v", err)
	}
	if !d.haveFirstBounce {
		t.Fatalf("expected first-bounce cache to be populated after iteration 0")
	}
	if err := d.RenderIteration(1); err != nil {
		t.Fatalf("unexpected error on cached iteration: %v", err)
	}

	fb := d.Framebuffer()
	for i, c := range fb.Accum {
		if c.MaxComponent() <= 0 {
			t.Fatalf("pixel %d was never accumulated into on cached iteration", i)
		}
	}
}

func TestRenderIterationStopsAtMaxDepth(t *testing.T) {
	opts := Options{Width: 1, Height: 1, MaxDepth: 1, RussianRouletteThreshold: 100}
	integ := &missAtDepthTwo{}
	d := newTestDriver(t, opts, integ)

	if err := d.RenderIteration(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// MaxDepth 1 means only one Shade call happens per path, even though
	// missAtDepthTwo would otherwise keep it alive for a second bounce.
	if got := integ.calls[0]; got != 1 {
		t.Fatalf("expected exactly 1 Shade call with MaxDepth 1, got %d", got)
	}
}
