package geom

import (
	"math"

	"pathtrace/types"
)

// intersectSphere tests a ray against the canonical unit sphere centered
// at the object-space origin, then maps the hit back to world space.
func intersectSphere(g *Geom, ray Ray) (Intersection, bool) {
	obj := transformToObject(g, ray)

	// |O + t*D|^2 = 1
	a := obj.Dir.Dot(obj.Dir)
	b := 2 * obj.Origin.Dot(obj.Dir)
	c := obj.Origin.Dot(obj.Origin) - 1

	disc := b*b - 4*a*c
	if disc < 0 {
		return Intersection{}, false
	}
	sq := float32(math.Sqrt(float64(disc)))
	inv2a := 1 / (2 * a)

	t := (-b - sq) * inv2a
	if t <= selfIntersectEpsilon {
		t = (-b + sq) * inv2a
	}
	if t <= selfIntersectEpsilon {
		return Intersection{}, false
	}

	objHit := obj.Origin.Add(obj.Dir.Mul(t))
	objNormal := objHit.Normalize()

	u := float32(0.5) + float32(math.Atan2(float64(objNormal[2]), float64(objNormal[0])))/(2*math.Pi)
	v := float32(0.5) - float32(math.Asin(float64(objNormal[1])))/math.Pi

	return Intersection{
		T:          t,
		Normal:     normalToWorld(g, objNormal),
		Tangent:    sphereTangent(objNormal, g),
		UV:         types.XY(u, v),
		MaterialID: g.MaterialID,
	}, true
}

// sphereTangent derives a world-space tangent (d/du of the parametrization)
// for anisotropic/microfacet shading.
func sphereTangent(objNormal types.Vec3, g *Geom) types.Vec3 {
	objTangent := types.Vec3{-objNormal[2], 0, objNormal[0]}
	if objTangent.LenSq() < 1e-10 {
		objTangent = types.Vec3{1, 0, 0}
	}
	return g.Transform.Mat3().MulVec3(objTangent).Normalize()
}
