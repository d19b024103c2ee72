// Package scene holds the compiled scene data model (geometry, materials,
// lights, environment, camera and k-d tree) and implements the
// accept-an-interface contracts the lower layers depend on:
// kdtree.Source (acceleration-structure traversal), light.Source
// (direct-lighting sampling and MIS) and tracer.Scene (the driver's view
// of the world). Grounded in achilleasa-polaris/scene/scene.go's
// Materials/Primitives container shape, generalized from an
// incrementally-built-with-validation scene (AddMaterial/AddPrimitive)
// to an offline-compiled one assembled once by scene/reader and handed
// whole to the renderer.
package scene

import (
	"fmt"
	"math"

	"pathtrace/geom"
	"pathtrace/kdtree"
	"pathtrace/light"
	"pathtrace/material"
	"pathtrace/sampling"
	"pathtrace/types"
)

// Light is one emissive primitive: a reference into Scene.Geoms plus its
// precomputed world-space area (spec 3: "Light: handle to an emissive
// Geom ... and precomputed area/normal for sampling").
type Light struct {
	GeomIndex int32
	Area      float32

	// triCDF is only populated for TriangleMeshInstance lights: a
	// cumulative, area-weighted distribution over [TriStart, TriStart+
	// TriCount) used to pick one triangle before sampling a barycentric
	// point on it.
	triCDF []float32
}

// Scene is the fully compiled, read-only world the tracer package's
// Driver renders against.
type Scene struct {
	Camera *Camera

	Geoms     []geom.Geom
	Materials []material.Material
	Pool      geom.TrianglePool

	Tree *kdtree.Tree

	Lights      []Light
	Environment *light.Environment
}

// New assembles a Scene from already-built parts (scene/reader's job) and
// precomputes light areas/CDFs.
func New(camera *Camera, geoms []geom.Geom, materials []material.Material, pool geom.TrianglePool, tree *kdtree.Tree, env *light.Environment) (*Scene, error) {
	s := &Scene{
		Camera:      camera,
		Geoms:       geoms,
		Materials:   materials,
		Pool:        pool,
		Tree:        tree,
		Environment: env,
	}
	if err := s.buildLights(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scene) buildLights() error {
	for idx, g := range s.Geoms {
		if int(g.MaterialID) < 0 || int(g.MaterialID) >= len(s.Materials) {
			return fmt.Errorf("scene: geom %d references out-of-range material %d", idx, g.MaterialID)
		}
		if !s.Materials[g.MaterialID].IsEmissive() {
			continue
		}

		l := Light{GeomIndex: int32(idx)}
		switch g.Type {
		case geom.Sphere:
			l.Area = sphereArea(&g)
		case geom.Cube:
			l.Area = cubeArea(&g)
		case geom.TriangleMeshInstance:
			area, cdf := meshAreaAndCDF(&g, &s.Pool)
			l.Area = area
			l.triCDF = cdf
		}
		if l.Area > 0 {
			s.Lights = append(s.Lights, l)
		}
	}
	return nil
}

// transformScale approximates the uniform scale factor of a Geom's affine
// transform as the cube root of the absolute determinant of its linear
// part; exact for uniform scaling, a reasonable area proxy otherwise
// (non-uniformly scaled area lights are not a case the spec requires
// exact pdfs for).
func transformScale(g *geom.Geom) float32 {
	m3 := linearPart(g.Transform)
	det := m3[0]*(m3[4]*m3[8]-m3[5]*m3[7]) -
		m3[1]*(m3[3]*m3[8]-m3[5]*m3[6]) +
		m3[2]*(m3[3]*m3[7]-m3[4]*m3[6])
	if det < 0 {
		det = -det
	}
	return float32(math.Cbrt(float64(det)))
}

// linearPart extracts the upper-left 3x3 (rotation+scale) block of a
// row-major affine Mat4.
func linearPart(m types.Mat4) types.Mat3 {
	return types.Mat3{
		m[0], m[1], m[2],
		m[4], m[5], m[6],
		m[8], m[9], m[10],
	}
}

func sphereArea(g *geom.Geom) float32 {
	s := transformScale(g)
	return 4 * float32(math.Pi) * s * s
}

func cubeArea(g *geom.Geom) float32 {
	s := transformScale(g)
	return 24 * s * s // 6 faces of a [-1,1]^2 square each.
}

func meshAreaAndCDF(g *geom.Geom, pool *geom.TrianglePool) (float32, []float32) {
	count := int(g.TriCount)
	cdf := make([]float32, count)
	var total float32
	for i := 0; i < count; i++ {
		tri := pool.Tris[g.TriStart+int32(i)]
		v0 := g.Transform.MulPoint(pool.Vertices[tri.V0])
		v1 := g.Transform.MulPoint(pool.Vertices[tri.V1])
		v2 := g.Transform.MulPoint(pool.Vertices[tri.V2])
		area := v1.Sub(v0).Cross(v2.Sub(v0)).Len() * 0.5
		total += area
		cdf[i] = total
	}
	return total, cdf
}

func normalToWorld(g *geom.Geom, objNormal types.Vec3) types.Vec3 {
	invTranspose := linearPart(g.InvTransform).Transpose()
	return invTranspose.MulVec3(objNormal).Normalize()
}

// --- kdtree.Source ---

// kdSource adapts a Scene to kdtree.Source. It is a distinct type from
// Scene because kdtree.Source's Intersect(primIndex, ray) and
// tracer.Scene's Intersect(ray) would otherwise collide: same method
// name, different signatures, on the same receiver.
type kdSource Scene

// Intersect resolves a k-d tree leaf's primitive index (an index into
// Geoms) into an intersection test, stamping PrimIndex on the way out so
// TraceToAreaLight can tell which light a ray landed on without a second
// traversal.
func (s *kdSource) Intersect(primIndex int32, ray geom.Ray) (geom.Intersection, bool) {
	isect, hit := geom.Intersect(&s.Geoms[primIndex], &s.Pool, ray)
	if hit {
		isect.PrimIndex = primIndex
	}
	return isect, hit
}

// --- tracer.Scene ---

// GenerateCameraRay delegates to the scene's Camera.
func (s *Scene) GenerateCameraRay(x, y, width, height int, rng *sampling.RNG) geom.Ray {
	return s.Camera.GenerateCameraRay(x, y, width, height, rng)
}

// Intersect descends the k-d tree for the nearest hit of ray.
func (s *Scene) Intersect(ray geom.Ray) (geom.Intersection, bool) {
	return kdtree.Traverse(s.Tree, (*kdSource)(s), ray)
}

// Material looks up a compiled material by id.
func (s *Scene) Material(materialID int32) material.Material {
	return s.Materials[materialID]
}

// LightSource exposes the light.Source used for direct-lighting MIS; Scene
// implements it directly.
func (s *Scene) LightSource() light.Source {
	return s
}

// HasEnvironment reports whether a miss should sample the environment.
func (s *Scene) HasEnvironment() bool {
	return s.Environment != nil
}

// EnvironmentLe evaluates the environment's radiance along dir.
func (s *Scene) EnvironmentLe(dir types.Vec3) types.Vec3 {
	if s.Environment == nil {
		return types.Vec3{}
	}
	return s.Environment.Le(dir)
}

// AntiAliasEnabled reports whether the scene's camera jitters sub-pixel
// samples.
func (s *Scene) AntiAliasEnabled() bool {
	return s.Camera.AntiAlias
}

// --- light.Source ---

// NumAreaLights returns how many area lights the scene has.
func (s *Scene) NumAreaLights() int {
	return len(s.Lights)
}

// SampleAreaLight draws a point on area light idx's surface.
func (s *Scene) SampleAreaLight(idx int, u1, u2 float32) (point, normal types.Vec3, pdfArea float32, emission types.Vec3) {
	l := &s.Lights[idx]
	g := &s.Geoms[l.GeomIndex]
	emission = s.Materials[g.MaterialID].Emission()

	if l.Area <= 0 {
		return types.Vec3{}, types.Vec3{}, 0, emission
	}
	pdfArea = 1 / l.Area

	switch g.Type {
	case geom.Sphere:
		dir := uniformSphereDirection(u1, u2)
		point = g.Transform.MulPoint(dir)
		normal = normalToWorld(g, dir)
	case geom.Cube:
		point, normal = sampleCubeSurface(g, u1, u2)
	case geom.TriangleMeshInstance:
		point, normal = sampleMeshSurface(g, &s.Pool, l, u1, u2)
	}
	return point, normal, pdfArea, emission
}

// TraceToAreaLight shoots a ray from point towards wi and reports whether
// area light idx is the first thing it hits (spec 4.E.3's BSDF-sampling
// MIS term).
func (s *Scene) TraceToAreaLight(idx int, point, wi types.Vec3) (distSq float32, normal types.Vec3, pdfArea float32, emission types.Vec3, hit bool) {
	l := &s.Lights[idx]
	origin := point.Add(wi.Mul(1e-3))
	isect, ok := s.Intersect(geom.Ray{Origin: origin, Dir: wi})
	if !ok || isect.PrimIndex != l.GeomIndex {
		return 0, types.Vec3{}, 0, types.Vec3{}, false
	}
	g := &s.Geoms[l.GeomIndex]
	emission = s.Materials[g.MaterialID].Emission()
	if l.Area <= 0 {
		return 0, types.Vec3{}, 0, emission, false
	}
	return isect.T * isect.T, isect.Normal, 1 / l.Area, emission, true
}

// SampleEnvironment draws a direction from the environment's importance
// distribution.
func (s *Scene) SampleEnvironment(u1, u2 float32) (types.Vec3, float32) {
	if s.Environment == nil {
		return types.Vec3{}, 0
	}
	return s.Environment.Sample(u1, u2)
}

// EnvironmentPdf evaluates the solid-angle pdf of wi under the
// environment's importance distribution.
func (s *Scene) EnvironmentPdf(wi types.Vec3) float32 {
	if s.Environment == nil {
		return 0
	}
	return s.Environment.Pdf(wi)
}

// Occluded tests visibility of the segment [from, to).
func (s *Scene) Occluded(from, to types.Vec3) bool {
	toPoint := to.Sub(from)
	dist := toPoint.Len()
	if dist < 1e-6 {
		return false
	}
	dir := toPoint.Mul(1 / dist)
	origin := from.Add(dir.Mul(1e-3))

	isect, hit := s.Intersect(geom.Ray{Origin: origin, Dir: dir})
	return hit && isect.T < dist-2e-3
}

func uniformSphereDirection(u1, u2 float32) types.Vec3 {
	cosTheta := 1 - 2*u1
	sinTheta := float32(math.Sqrt(float64(maxFloat(0, 1-cosTheta*cosTheta))))
	phi := 2 * float32(math.Pi) * u2
	return types.XYZ(
		sinTheta*float32(math.Cos(float64(phi))),
		sinTheta*float32(math.Sin(float64(phi))),
		cosTheta,
	)
}

// sampleCubeSurface picks one of the cube's six object-space faces with
// equal probability (exact for uniform scale, approximate otherwise — see
// transformScale) and a uniform point on it.
func sampleCubeSurface(g *geom.Geom, u1, u2 float32) (types.Vec3, types.Vec3) {
	faceU := u1 * 6
	face := int(faceU)
	if face > 5 {
		face = 5
	}
	sub := faceU - float32(face)

	axis := face / 2
	sign := float32(1)
	if face%2 == 1 {
		sign = -1
	}

	a := sub*2 - 1
	b := u2*2 - 1

	var obj, objNormal types.Vec3
	obj[axis] = sign
	objNormal[axis] = sign
	other := [2]int{(axis + 1) % 3, (axis + 2) % 3}
	obj[other[0]] = a
	obj[other[1]] = b

	return g.Transform.MulPoint(obj), normalToWorld(g, objNormal)
}

func sampleMeshSurface(g *geom.Geom, pool *geom.TrianglePool, l *Light, u1, u2 float32) (types.Vec3, types.Vec3) {
	if len(l.triCDF) == 0 {
		return types.Vec3{}, types.Vec3{}
	}
	target := u1 * l.triCDF[len(l.triCDF)-1]
	triIdx := 0
	for triIdx < len(l.triCDF)-1 && l.triCDF[triIdx] < target {
		triIdx++
	}
	tri := pool.Tris[g.TriStart+int32(triIdx)]

	b0, b1 := sampling.UniformSampleTriangle(u1, u2)
	b2 := 1 - b0 - b1

	v0 := g.Transform.MulPoint(pool.Vertices[tri.V0])
	v1 := g.Transform.MulPoint(pool.Vertices[tri.V1])
	v2 := g.Transform.MulPoint(pool.Vertices[tri.V2])
	point := v0.Mul(b0).Add(v1.Mul(b1)).Add(v2.Mul(b2))
	normal := v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()

	return point, normal
}

func maxFloat(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
