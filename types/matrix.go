package types

import "math"

// Mat3 is a row-major 3x3 matrix, used for transforming normals (as the
// inverse-transpose of a Geom's affine transform, spec 4.B).
type Mat3 [9]float32

// Mat4 is a row-major 4x4 affine matrix.
type Mat4 [16]float32

func Ident3() Mat3 {
	return Mat3{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

func Ident4() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// MulVec3 applies the 3x3 matrix to a direction vector (no translation).
func (m Mat3) MulVec3(v Vec3) Vec3 {
	return Vec3{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2],
		m[3]*v[0] + m[4]*v[1] + m[5]*v[2],
		m[6]*v[0] + m[7]*v[1] + m[8]*v[2],
	}
}

// Transpose returns the transpose of the matrix.
func (m Mat3) Transpose() Mat3 {
	return Mat3{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

// Inverse returns the matrix inverse, or the identity if m is singular.
func (m Mat3) Inverse() Mat3 {
	a, b, c := m[0], m[1], m[2]
	d, e, f := m[3], m[4], m[5]
	g, h, i := m[6], m[7], m[8]

	det := a*(e*i-f*h) - b*(d*i-f*g) + c*(d*h-e*g)
	if det > -floatCmpEpsilon && det < floatCmpEpsilon {
		return Ident3()
	}
	invDet := 1.0 / det

	return Mat3{
		(e*i - f*h) * invDet, (c*h - b*i) * invDet, (b*f - c*e) * invDet,
		(f*g - d*i) * invDet, (a*i - c*g) * invDet, (c*d - a*f) * invDet,
		(d*h - e*g) * invDet, (b*g - a*h) * invDet, (a*e - b*d) * invDet,
	}
}

// MulPoint transforms a point (applies translation).
func (m Mat4) MulPoint(v Vec3) Vec3 {
	return Vec3{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2] + m[3],
		m[4]*v[0] + m[5]*v[1] + m[6]*v[2] + m[7],
		m[8]*v[0] + m[9]*v[1] + m[10]*v[2] + m[11],
	}
}

// MulDir transforms a direction (ignores translation).
func (m Mat4) MulDir(v Vec3) Vec3 {
	return Vec3{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2],
		m[4]*v[0] + m[5]*v[1] + m[6]*v[2],
		m[8]*v[0] + m[9]*v[1] + m[10]*v[2],
	}
}

// Mul multiplies two 4x4 matrices (m * other).
func (m Mat4) Mul(o Mat4) Mat4 {
	var out Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[r*4+k] * o[k*4+c]
			}
			out[r*4+c] = sum
		}
	}
	return out
}

// Translate4 builds a translation matrix.
func Translate4(t Vec3) Mat4 {
	m := Ident4()
	m[3], m[7], m[11] = t[0], t[1], t[2]
	return m
}

// Scale4 builds a non-uniform scale matrix.
func Scale4(s Vec3) Mat4 {
	return Mat4{
		s[0], 0, 0, 0,
		0, s[1], 0, 0,
		0, 0, s[2], 0,
		0, 0, 0, 1,
	}
}

// Affine4 composes translation * rotation * scale into a single affine
// transform, matching the Geom transform model of spec 3 ("affine
// transform (translation, rotation, non-uniform scale) and its inverse").
func Affine4(translation Vec3, rotation Quat, scale Vec3) Mat4 {
	rot := rotation.Normalize().Mat4()
	return Translate4(translation).Mul(rot).Mul(Scale4(scale))
}

// Inverse computes the inverse of a 4x4 matrix via cofactor expansion.
// Returns the identity matrix if m is singular (degenerate transform).
func (m Mat4) Inverse() Mat4 {
	a00, a01, a02, a03 := m[0], m[1], m[2], m[3]
	a10, a11, a12, a13 := m[4], m[5], m[6], m[7]
	a20, a21, a22, a23 := m[8], m[9], m[10], m[11]
	a30, a31, a32, a33 := m[12], m[13], m[14], m[15]

	b00 := a00*a11 - a01*a10
	b01 := a00*a12 - a02*a10
	b02 := a00*a13 - a03*a10
	b03 := a01*a12 - a02*a11
	b04 := a01*a13 - a03*a11
	b05 := a02*a13 - a03*a12
	b06 := a20*a31 - a21*a30
	b07 := a20*a32 - a22*a30
	b08 := a20*a33 - a23*a30
	b09 := a21*a32 - a22*a31
	b10 := a21*a33 - a23*a31
	b11 := a22*a33 - a23*a32

	det := b00*b11 - b01*b10 + b02*b09 + b03*b08 - b04*b07 + b05*b06
	if float32(math.Abs(float64(det))) < floatCmpEpsilon {
		return Ident4()
	}
	invDet := 1.0 / det

	return Mat4{
		(a11*b11 - a12*b10 + a13*b09) * invDet,
		(a02*b10 - a01*b11 - a03*b09) * invDet,
		(a31*b05 - a32*b04 + a33*b03) * invDet,
		(a22*b04 - a21*b05 - a23*b03) * invDet,

		(a12*b08 - a10*b11 - a13*b07) * invDet,
		(a00*b11 - a02*b08 + a03*b07) * invDet,
		(a32*b02 - a30*b05 - a33*b01) * invDet,
		(a20*b05 - a22*b02 + a23*b01) * invDet,

		(a10*b10 - a11*b08 + a13*b06) * invDet,
		(a01*b08 - a00*b10 - a03*b06) * invDet,
		(a30*b04 - a31*b02 + a33*b00) * invDet,
		(a21*b02 - a20*b04 - a23*b00) * invDet,

		(a11*b07 - a10*b09 - a12*b06) * invDet,
		(a00*b09 - a01*b07 + a02*b06) * invDet,
		(a31*b01 - a30*b03 - a32*b00) * invDet,
		(a20*b03 - a21*b01 + a22*b00) * invDet,
	}
}

// Perspective4 builds a right-handed perspective projection matrix. No
// code in this module calls it; ray generation uses the frustum-corner
// interpolation of spec 4.F.
func Perspective4(fovDeg, aspect, near, far float32) Mat4 {
	fov := fovDeg * float32(math.Pi) / 180
	f := float32(1.0 / math.Tan(float64(fov)/2))
	nf := 1.0 / (near - far)
	return Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) * nf, 2 * far * near * nf,
		0, 0, -1, 0,
	}
}
