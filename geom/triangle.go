package geom

import "pathtrace/types"

// intersectMesh tests a ray against every triangle in the Geom's range of
// the shared TrianglePool and keeps the nearest hit (spec 4.B: Möller-
// Trumbore; interpolate vertex normals and UVs barycentrically).
func intersectMesh(g *Geom, pool *TrianglePool, ray Ray) (Intersection, bool) {
	obj := transformToObject(g, ray)

	best := Intersection{}
	found := false

	end := g.TriStart + g.TriCount
	for i := g.TriStart; i < end; i++ {
		tri := pool.Tris[i]
		if isect, ok := intersectTriangle(pool, tri, obj); ok {
			if !found || isect.T < best.T {
				best = isect
				found = true
			}
		}
	}
	if !found {
		return Intersection{}, false
	}

	best.Normal = normalToWorld(g, best.Normal)
	best.Tangent = g.Transform.Mat3().MulVec3(best.Tangent).Normalize()
	best.MaterialID = g.MaterialID
	return best, true
}

// intersectTriangle implements Möller-Trumbore in object space and
// interpolates the per-vertex normal/UV attributes barycentrically. The
// returned Intersection's Normal/Tangent are still in object space; the
// caller transforms them to world space.
func intersectTriangle(pool *TrianglePool, tri Triangle, ray Ray) (Intersection, bool) {
	v0 := pool.Vertices[tri.V0]
	v1 := pool.Vertices[tri.V1]
	v2 := pool.Vertices[tri.V2]

	e1 := v1.Sub(v0)
	e2 := v2.Sub(v0)

	pvec := ray.Dir.Cross(e2)
	det := e1.Dot(pvec)
	if det > -1e-8 && det < 1e-8 {
		return Intersection{}, false
	}
	invDet := 1 / det

	tvec := ray.Origin.Sub(v0)
	u := tvec.Dot(pvec) * invDet
	if u < 0 || u > 1 {
		return Intersection{}, false
	}

	qvec := tvec.Cross(e1)
	v := ray.Dir.Dot(qvec) * invDet
	if v < 0 || u+v > 1 {
		return Intersection{}, false
	}

	t := e2.Dot(qvec) * invDet
	if t <= selfIntersectEpsilon {
		return Intersection{}, false
	}

	w := 1 - u - v
	normal := faceNormal(pool, tri, e1, e2, w, u, v)
	uv := interpolateUV(pool, tri, w, u, v)

	return Intersection{
		T:       t,
		Normal:  normal,
		Tangent: e1.Normalize(),
		UV:      uv,
	}, true
}

func faceNormal(pool *TrianglePool, tri Triangle, e1, e2 types.Vec3, w, u, v float32) types.Vec3 {
	if tri.N0 < 0 || tri.N1 < 0 || tri.N2 < 0 {
		return e1.Cross(e2).Normalize()
	}
	n0 := pool.Normals[tri.N0]
	n1 := pool.Normals[tri.N1]
	n2 := pool.Normals[tri.N2]
	return n0.Mul(w).Add(n1.Mul(u)).Add(n2.Mul(v)).Normalize()
}

func interpolateUV(pool *TrianglePool, tri Triangle, w, u, v float32) types.Vec2 {
	if tri.UV0 < 0 || tri.UV1 < 0 || tri.UV2 < 0 {
		return types.Vec2{}
	}
	uv0 := pool.UVs[tri.UV0]
	uv1 := pool.UVs[tri.UV1]
	uv2 := pool.UVs[tri.UV2]
	return uv0.Mul(w).Add(uv1.Mul(u)).Add(uv2.Mul(v))
}
