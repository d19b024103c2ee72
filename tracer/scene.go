package tracer

import (
	"pathtrace/geom"
	"pathtrace/light"
	"pathtrace/material"
	"pathtrace/sampling"
	"pathtrace/types"
)

// Scene is everything the driver needs from a compiled scene: primary-ray
// generation, intersection against the acceleration structure, material
// lookup and light/environment queries. The scene package implements
// this; the driver only depends on the interface, the same accept-an-
// interface shape kdtree.Source and light.Source already use to keep
// lower layers agnostic of concrete geometry.
type Scene interface {
	// GenerateCameraRay builds the primary ray for pixel (x, y) in a
	// width x height image, jittering sub-pixel by aa and sampling the
	// thin lens if depth of field is enabled (spec 4.F.1).
	GenerateCameraRay(x, y, width, height int, rng *sampling.RNG) geom.Ray

	// Intersect finds the nearest hit of ray against the scene's
	// acceleration structure.
	Intersect(ray geom.Ray) (geom.Intersection, bool)

	// Material looks up a compiled material by id.
	Material(materialID int32) material.Material

	// LightSource exposes the light.Source used for direct-lighting MIS.
	LightSource() light.Source

	// HasEnvironment reports whether a miss should sample the
	// environment instead of contributing zero radiance.
	HasEnvironment() bool

	// EnvironmentLe evaluates the environment's radiance along a miss
	// direction (spec 4.G: "Environment miss: color = throughput *
	// envLe(omega)").
	EnvironmentLe(dir types.Vec3) types.Vec3

	// AntiAliasEnabled reports whether the camera jitters sub-pixel
	// samples. The first-bounce cache (spec 4.F.3) is only sound for a
	// fixed camera ray per pixel, so the driver disables it when this is
	// true rather than silently accumulating a biased estimator.
	AntiAliasEnabled() bool
}

// Integrator is the shading policy plugged into the driver (spec 4.G).
// The tracer package only depends on this interface; concrete Naive/
// DirectMIS/Full implementations live in package integrator, which
// imports tracer — not the other way around — to keep the dependency
// acyclic.
type Integrator interface {
	// Shade updates path in place given the hit isect at the shading
	// point: it may add to path.Color, updates path.Throughput/Ray via
	// material.Scatter, and decrements/zeroes RemainingBounces when the
	// path should terminate.
	Shade(path *PathSegment, isect geom.Intersection, scene Scene, rng *sampling.RNG)

	// Miss is called when a path's ray does not hit anything; it
	// contributes environment radiance (if any) and always terminates
	// the path.
	Miss(path *PathSegment, rayDir types.Vec3, scene Scene)
}
