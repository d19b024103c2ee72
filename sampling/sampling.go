package sampling

import (
	"math"

	"pathtrace/types"
)

// ConcentricSampleDisk maps a uniform 2D sample in [0,1)^2 onto the unit
// disk using Shirley's concentric mapping (low-distortion vs. the polar
// method), as used for both the lens sample (depth of field) and the
// cosine-weighted hemisphere construction below.
func ConcentricSampleDisk(u1, u2 float32) (float32, float32) {
	// Map uniform square sample to [-1,1]^2.
	sx := 2*u1 - 1
	sy := 2*u2 - 1

	if sx == 0 && sy == 0 {
		return 0, 0
	}

	var r, theta float32
	if sx*sx > sy*sy {
		r = sx
		theta = (math.Pi / 4) * (sy / sx)
	} else {
		r = sy
		theta = (math.Pi / 2) - (math.Pi/4)*(sx/sy)
	}

	return r * float32(math.Cos(float64(theta))), r * float32(math.Sin(float64(theta)))
}

// CosineSampleHemisphere draws a direction about +Z with pdf cos(theta)/pi.
func CosineSampleHemisphere(u1, u2 float32) types.Vec3 {
	x, y := ConcentricSampleDisk(u1, u2)
	z2 := 1 - x*x - y*y
	if z2 < 0 {
		z2 = 0
	}
	z := float32(math.Sqrt(float64(z2)))
	return types.Vec3{x, y, z}
}

// CosineHemispherePdf is the exact pdf of CosineSampleHemisphere w.r.t.
// solid angle for a direction whose cosine with the hemisphere axis is
// cosTheta.
func CosineHemispherePdf(cosTheta float32) float32 {
	if cosTheta <= 0 {
		return 0
	}
	return cosTheta / math.Pi
}

// UniformSampleTriangle returns barycentric coordinates (b0, b1) uniformly
// distributed over a triangle; b2 = 1 - b0 - b1.
func UniformSampleTriangle(u1, u2 float32) (float32, float32) {
	su0 := float32(math.Sqrt(float64(u1)))
	b0 := 1 - su0
	b1 := u2 * su0
	return b0, b1
}

// SampleGGXVisibleNormal samples a microfacet normal from the GGX
// visible-normal distribution (Heitz 2014), given the local (tangent
// space) outgoing direction wo and roughness alpha. The returned half
// vector h is expressed in the same tangent frame as wo (wo.z >= 0).
func SampleGGXVisibleNormal(wo types.Vec3, alphaX, alphaY, u1, u2 float32) types.Vec3 {
	// Section 3.2: transform the view direction to the hemisphere configuration.
	vh := types.Vec3{alphaX * wo[0], alphaY * wo[1], wo[2]}.Normalize()

	// Section 4.1: orthonormal basis.
	lenSq := vh[0]*vh[0] + vh[1]*vh[1]
	var t1 types.Vec3
	if lenSq > 0 {
		invLen := float32(1.0 / math.Sqrt(float64(lenSq)))
		t1 = types.Vec3{-vh[1] * invLen, vh[0] * invLen, 0}
	} else {
		t1 = types.Vec3{1, 0, 0}
	}
	t2 := vh.Cross(t1)

	// Section 4.2: parametrization of the projected area.
	r := float32(math.Sqrt(float64(u1)))
	phi := 2 * math.Pi * u2
	p1 := r * float32(math.Cos(float64(phi)))
	p2 := r * float32(math.Sin(float64(phi)))
	s := float32(0.5) * (1 + vh[2])
	p2 = (1-s)*float32(math.Sqrt(float64(1-p1*p1))) + s*p2

	// Section 4.3: reprojection onto hemisphere.
	nh := t1.Mul(p1).Add(t2.Mul(p2)).Add(vh.Mul(float32(math.Sqrt(float64(maxFloat(0, 1-p1*p1-p2*p2))))))

	// Section 3.4: transform the normal back to the ellipsoid configuration.
	return types.Vec3{alphaX * nh[0], alphaY * nh[1], maxFloat(0, nh[2])}.Normalize()
}

// GGXVisibleNormalPdf is the pdf of the half vector h sampled by
// SampleGGXVisibleNormal, expressed w.r.t. solid angle around wo, in the
// same local tangent frame.
func GGXVisibleNormalPdf(wo, h types.Vec3, alphaX, alphaY float32) float32 {
	cosThetaO := wo[2]
	if cosThetaO <= 0 {
		return 0
	}
	d := GGXDistribution(h, alphaX, alphaY)
	g1 := GGXSmithG1(wo, alphaX, alphaY)
	return g1 * maxFloat(0, wo.Dot(h)) * d / cosThetaO
}

// GGXDistribution evaluates the Trowbridge-Reitz (GGX) normal distribution
// function D(h) in tangent space (h.z is cosTheta relative to the shading
// normal).
func GGXDistribution(h types.Vec3, alphaX, alphaY float32) float32 {
	cos2Theta := h[2] * h[2]
	if cos2Theta <= 0 {
		return 0
	}
	tan2Theta := (1 - cos2Theta) / cos2Theta
	if math.IsInf(float64(tan2Theta), 1) {
		return 0
	}
	cos4Theta := cos2Theta * cos2Theta
	e := tan2Theta * ((h[0]*h[0])/(alphaX*alphaX) + (h[1]*h[1])/(alphaY*alphaY))
	denom := math.Pi * alphaX * alphaY * cos4Theta * (1 + e) * (1 + e)
	return 1 / float32(denom)
}

// GGXSmithG1 evaluates the Smith masking term for a single direction w.
func GGXSmithG1(w types.Vec3, alphaX, alphaY float32) float32 {
	cosTheta := w[2]
	if cosTheta <= 0 {
		return 0
	}
	cos2Theta := cosTheta * cosTheta
	sin2Theta := maxFloat(0, 1-cos2Theta)
	tanTheta := float32(math.Sqrt(float64(sin2Theta))) / cosTheta
	if tanTheta == 0 {
		return 1
	}
	alpha2 := (w[0]*w[0]*alphaX*alphaX + w[1]*w[1]*alphaY*alphaY) / (w[0]*w[0] + w[1]*w[1] + 1e-12)
	a := 1.0 / (float32(math.Sqrt(float64(alpha2))) * tanTheta)
	if a >= 1.6 {
		return 1
	}
	return (3.535*a + 2.181*a*a) / (1 + 2.276*a + 2.577*a*a)
}

// GGXSmithG evaluates the separable Smith masking-shadowing term G(wo, wi).
func GGXSmithG(wo, wi types.Vec3, alphaX, alphaY float32) float32 {
	return GGXSmithG1(wo, alphaX, alphaY) * GGXSmithG1(wi, alphaX, alphaY)
}

// PdfAreaToSolidAngle converts a pdf expressed in area measure (over a
// light's surface) to one expressed in solid angle measure as seen from a
// shading point: pdf_w = pdf_A * d^2 / |cos(theta_l)|, where d is the
// distance to the sampled light point and cosThetaLight is the cosine
// between the light's surface normal and the direction back to the
// shading point.
func PdfAreaToSolidAngle(pdfArea, distSq, cosThetaLight float32) float32 {
	absCos := cosThetaLight
	if absCos < 0 {
		absCos = -absCos
	}
	if absCos < 1e-7 {
		return 0
	}
	return pdfArea * distSq / absCos
}

// PowerHeuristic computes the two-sampler power (beta=2) MIS weight for
// sampling strategy "f" given nf samples with pdf fPdf, against a second
// strategy "g" with ng samples of pdf gPdf (spec 4.E uses nf = ng = 1).
func PowerHeuristic(nf int, fPdf float32, ng int, gPdf float32) float32 {
	f := float32(nf) * fPdf
	g := float32(ng) * gPdf
	if f+g == 0 {
		return 0
	}
	return (f * f) / (f*f + g*g)
}

func maxFloat(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
