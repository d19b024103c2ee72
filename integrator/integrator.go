// Package integrator implements the three shading policies of spec 4.G
// (Naive, DirectMIS, Full), each satisfying tracer.Integrator. This
// package depends on tracer rather than the reverse, so tracer's driver
// can accept any Integrator without tracer importing this package — the
// same accept-an-interface shape used throughout this module
// (kdtree.Source, light.Source, tracer.Scene).
package integrator

import (
	"pathtrace/geom"
	"pathtrace/light"
	"pathtrace/material"
	"pathtrace/sampling"
	"pathtrace/tracer"
	"pathtrace/types"
)

// Naive adds emission at every emissive hit and otherwise keeps
// scattering; it never computes a direct-lighting estimate (spec 4.G).
type Naive struct{}

func (Naive) Shade(path *tracer.PathSegment, isect geom.Intersection, scene tracer.Scene, rng *sampling.RNG) {
	mat := scene.Material(isect.MaterialID)

	if mat.IsEmissive() {
		path.Color = path.Color.Add(path.Throughput.MulVec(mat.Emission()))
		path.Terminate()
		return
	}

	hitPoint := path.Ray.At(isect.T)
	wo := path.Ray.Dir.Neg()

	res := material.Scatter(mat, wo, isect.Normal, isect.Tangent, rng)
	if res.Terminate {
		path.Terminate()
		return
	}

	path.Throughput = path.Throughput.MulVec(res.Throughput)
	path.Ray = geom.Ray{Origin: geom.OffsetOrigin(hitPoint, isect.Normal, res.Wi), Dir: res.Wi}
	path.IsSpecularBounce = res.Specular
	path.IsFromCamera = false
	path.RemainingBounces--
}

func (Naive) Miss(path *tracer.PathSegment, rayDir types.Vec3, scene tracer.Scene) {
	if scene.HasEnvironment() {
		path.Color = path.Color.Add(path.Throughput.MulVec(scene.EnvironmentLe(rayDir)))
	}
	path.Terminate()
}

// DirectMIS is the reference/debug integrator (spec 4.G): it ignores
// emissive surfaces except at the very first hit, and otherwise always
// terminates after computing one MIS direct-lighting estimate.
type DirectMIS struct{}

func (DirectMIS) Shade(path *tracer.PathSegment, isect geom.Intersection, scene tracer.Scene, rng *sampling.RNG) {
	mat := scene.Material(isect.MaterialID)
	hitPoint := path.Ray.At(isect.T)
	wo := path.Ray.Dir.Neg()

	if mat.IsEmissive() {
		if path.IsFromCamera {
			path.Color = path.Color.Add(path.Throughput.MulVec(mat.Emission()))
		}
		path.Terminate()
		return
	}

	ld := light.SampleUniformLight(scene.LightSource(), hitPoint, wo, isect.Normal, isect.Tangent, mat, rng)
	path.Color = path.Color.Add(path.Throughput.MulVec(ld))
	path.Terminate()
}

func (DirectMIS) Miss(path *tracer.PathSegment, rayDir types.Vec3, scene tracer.Scene) {
	if scene.HasEnvironment() && path.IsFromCamera {
		path.Color = path.Color.Add(path.Throughput.MulVec(scene.EnvironmentLe(rayDir)))
	}
	path.Terminate()
}

// Full combines emission (guarded against double-counting), MIS direct
// lighting, continued indirect sampling and optional Russian-roulette
// termination (spec 4.G).
type Full struct {
	// RussianRoulette enables the probabilistic termination step once a
	// path's RemainingBounces drops below its RussianRouletteThreshold.
	RussianRoulette bool
}

func (f Full) Shade(path *tracer.PathSegment, isect geom.Intersection, scene tracer.Scene, rng *sampling.RNG) {
	mat := scene.Material(isect.MaterialID)
	hitPoint := path.Ray.At(isect.T)
	wo := path.Ray.Dir.Neg()

	if mat.IsEmissive() {
		// Avoids double-counting the direct term already added at the
		// previous hit, unless that previous hit was specular (where
		// direct lighting is necessarily deferred, spec 4.E) or this is
		// the camera's primary ray.
		if path.IsFromCamera || path.IsSpecularBounce {
			path.Color = path.Color.Add(path.Throughput.MulVec(mat.Emission()))
		}
		path.Terminate()
		return
	}

	if mat.Tag == material.Diffuse || mat.Tag == material.Microfacet {
		ld := light.SampleUniformLight(scene.LightSource(), hitPoint, wo, isect.Normal, isect.Tangent, mat, rng)
		path.Color = path.Color.Add(path.Throughput.MulVec(ld))
	}

	res := material.Scatter(mat, wo, isect.Normal, isect.Tangent, rng)
	if res.Terminate {
		path.Terminate()
		return
	}

	path.Throughput = path.Throughput.MulVec(res.Throughput)
	path.Ray = geom.Ray{Origin: geom.OffsetOrigin(hitPoint, isect.Normal, res.Wi), Dir: res.Wi}
	path.IsSpecularBounce = res.Specular
	path.IsFromCamera = false
	path.RemainingBounces--

	if f.RussianRoulette && path.RemainingBounces < path.RussianRouletteThreshold {
		q := path.Throughput.MaxComponent()
		if q > 1 {
			q = 1
		}
		if q <= 0 {
			path.Terminate()
			return
		}
		if rng.Float32() >= q {
			path.Terminate()
			return
		}
		path.Throughput = path.Throughput.Mul(1 / q)
	}
}

func (f Full) Miss(path *tracer.PathSegment, rayDir types.Vec3, scene tracer.Scene) {
	if scene.HasEnvironment() && (path.IsFromCamera || path.IsSpecularBounce) {
		path.Color = path.Color.Add(path.Throughput.MulVec(scene.EnvironmentLe(rayDir)))
	}
	path.Terminate()
}
