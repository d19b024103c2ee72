package geom

import "pathtrace/types"

// intersectCube tests a ray against the canonical axis-aligned cube
// [-1,1]^3 in object space (a "slab" test), then maps the hit to world
// space.
func intersectCube(g *Geom, ray Ray) (Intersection, bool) {
	obj := transformToObject(g, ray)

	tMin, tMax := float32(-1e30), float32(1e30)
	hitAxis := -1
	hitSign := float32(1)

	for axis := 0; axis < 3; axis++ {
		d := obj.Dir[axis]
		o := obj.Origin[axis]

		if d == 0 {
			if o < -1 || o > 1 {
				return Intersection{}, false
			}
			continue
		}

		invD := 1 / d
		t0 := (-1 - o) * invD
		t1 := (1 - o) * invD
		sign := float32(-1)
		if t0 > t1 {
			t0, t1 = t1, t0
			sign = 1
		}

		if t0 > tMin {
			tMin = t0
			hitAxis = axis
			hitSign = sign
		}
		if t1 < tMax {
			tMax = t1
		}
		if tMin > tMax {
			return Intersection{}, false
		}
	}

	t := tMin
	if t <= selfIntersectEpsilon {
		t = tMax
		hitSign = -hitSign
	}
	if t <= selfIntersectEpsilon || hitAxis < 0 {
		return Intersection{}, false
	}

	var objNormal types.Vec3
	objNormal[hitAxis] = hitSign

	objHit := obj.Origin.Add(obj.Dir.Mul(t))
	u0, v0 := 0, 1
	switch hitAxis {
	case 0:
		u0, v0 = 1, 2
	case 1:
		u0, v0 = 0, 2
	}
	uv := types.XY((objHit[u0]+1)*0.5, (objHit[v0]+1)*0.5)

	tangent := types.Vec3{}
	tangent[(hitAxis+1)%3] = 1

	return Intersection{
		T:          t,
		Normal:     normalToWorld(g, objNormal),
		Tangent:    g.Transform.Mat3().MulVec3(tangent).Normalize(),
		UV:         uv,
		MaterialID: g.MaterialID,
	}, true
}
