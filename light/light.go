// Package light implements direct-lighting sampling and MIS combination
// (spec 4.E). It is deliberately decoupled from the scene's concrete
// geometry: callers implement Source, the same accept-an-interface
// pattern kdtree.Source uses to keep traversal agnostic of primitive
// kinds (geom package). Only the scene package knows how to sample a
// point on a sphere, cube face or triangle; this package only needs a
// point, a normal, an area pdf and an emitted radiance.
package light

import (
	"math"

	"pathtrace/material"
	"pathtrace/sampling"
	"pathtrace/types"
)

// Source is implemented by the scene: it owns the concrete light list
// (area lights plus an optional environment), the occlusion test against
// the k-d tree, and the BSDF-sampling-term re-intersection.
type Source interface {
	// NumAreaLights returns how many area lights the scene has.
	NumAreaLights() int
	// SampleAreaLight draws a point on area light idx's surface, along
	// with its surface normal, area-measure pdf and emitted radiance.
	SampleAreaLight(idx int, u1, u2 float32) (point, normal types.Vec3, pdfArea float32, emission types.Vec3)
	// TraceToAreaLight shoots a ray from point in direction wi and
	// reports whether light idx is the first thing it hits; used for
	// the BSDF-sampling MIS term (spec 4.E.3). distSq and normal
	// describe the hit for converting the light's area pdf into the
	// solid-angle measure.
	TraceToAreaLight(idx int, point, wi types.Vec3) (distSq float32, normal types.Vec3, pdfArea float32, emission types.Vec3, hit bool)
	// HasEnvironment reports whether the scene has an environment light.
	HasEnvironment() bool
	// SampleEnvironment draws a direction from the environment's
	// importance distribution, returning the direction and its
	// solid-angle pdf.
	SampleEnvironment(u1, u2 float32) (wi types.Vec3, pdf float32)
	// EnvironmentPdf evaluates the solid-angle pdf of direction wi under
	// the environment's importance distribution (used for the BSDF-
	// sampling MIS term, spec 4.E.3).
	EnvironmentPdf(wi types.Vec3) float32
	// EnvironmentLe evaluates the environment's radiance along wi.
	EnvironmentLe(wi types.Vec3) types.Vec3
	// Occluded tests visibility of the segment [from, to); true if
	// blocked.
	Occluded(from, to types.Vec3) bool
}

// SampleUniformLight implements spec 4.E: picks one light uniformly from
// {area lights} union {environment}, combines its light-sampling term
// with a BSDF-sampling term via the power heuristic, and returns the
// direct-lighting contribution Ld for the shading point. mat/wo/n/tangent
// describe the shading point's BSDF and local frame.
func SampleUniformLight(
	src Source,
	point, wo, n, tangent types.Vec3,
	mat material.Material,
	rng *sampling.RNG,
) types.Vec3 {
	numArea := src.NumAreaLights()
	hasEnv := src.HasEnvironment()

	numLights := numArea
	if hasEnv {
		numLights++
	}
	if numLights == 0 {
		return types.Vec3{}
	}

	pick, u2 := rng.Float32_2()
	lightPick := int(pick * float32(numLights))
	if lightPick >= numLights {
		lightPick = numLights - 1
	}
	u1, _ := rng.Float32_2()

	var ld types.Vec3
	if lightPick < numArea {
		ld = sampleAreaLightMIS(src, lightPick, point, wo, n, tangent, mat, rng, u1, u2)
	} else {
		ld = sampleEnvironmentMIS(src, point, wo, n, tangent, mat, rng, u1, u2)
	}

	return ld.Mul(float32(numLights))
}

func sampleAreaLightMIS(
	src Source, idx int,
	point, wo, n, tangent types.Vec3,
	mat material.Material,
	rng *sampling.RNG,
	u1, u2 float32,
) types.Vec3 {
	var ld types.Vec3

	lightPoint, lightNormal, pdfArea, emission := src.SampleAreaLight(idx, u1, u2)
	toLight := lightPoint.Sub(point)
	distSq := toLight.LenSq()
	if distSq > 1e-12 && pdfArea > 0 {
		wi := toLight.Mul(1 / sqrtf(distSq))
		cosThetaLight := lightNormal.Dot(wi.Neg())

		if cosThetaLight > 0 && !src.Occluded(point, lightPoint) {
			pdfLightW := sampling.PdfAreaToSolidAngle(pdfArea, distSq, cosThetaLight)
			if pdfLightW > 0 {
				f, pdfBsdf := material.Eval(mat, wo, wi, n, tangent)
				if !isZero(f) {
					cosTheta := absf(wi.Dot(n))
					w := sampling.PowerHeuristic(1, pdfLightW, 1, pdfBsdf)
					ld = ld.Add(f.MulVec(emission).Mul(cosTheta * w / pdfLightW))
				}
			}
		}
	}

	// BSDF-sampling term: re-sample the BSDF and check whether it hits
	// the same light first.
	res := material.Scatter(mat, wo, n, tangent, rng)
	if !res.Terminate && !res.Specular && res.Pdf > 0 {
		hitDistSq, hitNormal, hitPdfArea, hitEmission, hit := src.TraceToAreaLight(idx, point, res.Wi)
		if hit && hitPdfArea > 0 {
			cosThetaLight := absf(hitNormal.Dot(res.Wi.Neg()))
			if cosThetaLight > 0 {
				pdfLightW := sampling.PdfAreaToSolidAngle(hitPdfArea, hitDistSq, cosThetaLight)
				w := sampling.PowerHeuristic(1, res.Pdf, 1, pdfLightW)
				ld = ld.Add(res.Throughput.MulVec(hitEmission).Mul(w))
			}
		}
	}

	return ld
}

func sampleEnvironmentMIS(
	src Source,
	point, wo, n, tangent types.Vec3,
	mat material.Material,
	rng *sampling.RNG,
	u1, u2 float32,
) types.Vec3 {
	var ld types.Vec3

	wi, pdfLight := src.SampleEnvironment(u1, u2)
	if pdfLight > 0 {
		cosTheta := wi.Dot(n)
		if cosTheta > 0 && !src.Occluded(point, point.Add(wi.Mul(envOcclusionDistance))) {
			f, pdfBsdf := material.Eval(mat, wo, wi, n, tangent)
			if !isZero(f) {
				le := src.EnvironmentLe(wi)
				w := sampling.PowerHeuristic(1, pdfLight, 1, pdfBsdf)
				ld = ld.Add(f.MulVec(le).Mul(cosTheta * w / pdfLight))
			}
		}
	}

	res := material.Scatter(mat, wo, n, tangent, rng)
	if !res.Terminate && !res.Specular && res.Pdf > 0 {
		pdfEnv := src.EnvironmentPdf(res.Wi)
		if pdfEnv > 0 {
			le := src.EnvironmentLe(res.Wi)
			w := sampling.PowerHeuristic(1, res.Pdf, 1, pdfEnv)
			ld = ld.Add(res.Throughput.MulVec(le).Mul(w))
		}
	}

	return ld
}

// envOcclusionDistance stands in for "infinity" when casting a shadow ray
// towards the environment; the scene's k-d tree bounds the real geometry
// well inside this distance.
const envOcclusionDistance = 1e6

func isZero(v types.Vec3) bool {
	return v[0] == 0 && v[1] == 0 && v[2] == 0
}

func sqrtf(v float32) float32 {
	if v <= 0 {
		return 0
	}
	return float32(math.Sqrt(float64(v)))
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
