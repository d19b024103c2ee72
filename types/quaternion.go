package types

import "math"

// Quat is a unit quaternion used to represent the rotation component of a
// Geom's affine transform (spec 3: "affine transform (translation,
// rotation, non-uniform scale)").
type Quat struct {
	V Vec3
	W float32
}

// QuatIdent returns the identity rotation.
func QuatIdent() Quat {
	return Quat{V: Vec3{}, W: 1.0}
}

// QuatFromAxisAngle builds a rotation of angle radians around axis.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	sin := float32(math.Sin(float64(angle * 0.5)))
	cos := float32(math.Cos(float64(angle * 0.5)))
	return Quat{
		V: axis.Normalize().Mul(sin),
		W: cos,
	}
}

// Rotate applies the quaternion's rotation to v.
func (q1 Quat) Rotate(v Vec3) Vec3 {
	cross := q1.V.Cross(v)
	// v + 2*w*(v_axis x v) + 2*v_axis x (v_axis x v)
	return v.Add(cross.Mul(2 * q1.W)).Add(q1.V.Mul(2).Cross(cross))
}

// Mul composes two rotations; q1.Mul(q2) applies q2 first, then q1.
func (q1 Quat) Mul(q2 Quat) Quat {
	return Quat{
		q1.V.Cross(q2.V).Add(q2.V.Mul(q1.W)).Add(q1.V.Mul(q2.W)),
		q1.W*q2.W - q1.V.Dot(q2.V),
	}
}

// Len returns the quaternion's norm.
func (q1 Quat) Len() float32 {
	return float32(math.Sqrt(float64(q1.W*q1.W + q1.V.Dot(q1.V))))
}

// Normalize returns the unit quaternion (versor) of q1.
func (q1 Quat) Normalize() Quat {
	length := q1.Len()
	if length < floatCmpEpsilon {
		return QuatIdent()
	}
	inv := 1.0 / length
	return Quat{q1.V.Mul(inv), q1.W * inv}
}

// Inverse returns the inverse rotation (the conjugate divided by the
// squared length; equals the conjugate for a unit quaternion).
func (q1 Quat) Inverse() Quat {
	scaler := 1.0 / (q1.V.Dot(q1.V) + q1.W*q1.W)
	return Quat{
		q1.V.Mul(-scaler),
		q1.W * scaler,
	}
}

// Mat4 returns the homogeneous 3D rotation matrix corresponding to q1.
func (q1 Quat) Mat4() Mat4 {
	w, x, y, z := q1.W, q1.V[0], q1.V[1], q1.V[2]
	return Mat4{
		1 - 2*y*y - 2*z*z, 2*x*y - 2*w*z, 2*x*z + 2*w*y, 0,
		2*x*y + 2*w*z, 1 - 2*x*x - 2*z*z, 2*y*z - 2*w*x, 0,
		2*x*z - 2*w*y, 2*y*z + 2*w*x, 1 - 2*x*x - 2*y*y, 0,
		0, 0, 0, 1,
	}
}
