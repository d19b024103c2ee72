// Package material implements scatter (spec 4.D): the tagged-union BSDF
// dispatch that updates a path's ray and throughput at a surface hit.
// Grounded in the teacher-pack's scatter-dispatch shape (MarkJulian19
// path_trace_golang's internal/engine/materials.go, a per-type switch
// returning a new ray and an attenuation factor) generalized from five ad
// hoc material kinds to the spec's DIFFUSE/SPEC_REFL/SPEC_TRANS/
// SPEC_FRESNEL/MICROFACET/EMISSIVE tag set with full MIS-compatible pdfs.
package material

import (
	"pathtrace/sampling"
	"pathtrace/types"
)

// Tag identifies which BSDF a Material implements.
type Tag int32

const (
	Diffuse Tag = iota
	SpecReflect
	SpecTransmit
	SpecFresnel
	Microfacet
	Emissive
)

// Medium describes a participating medium entered/left by a SPEC_TRANS
// scatter event (spec 3: "optional medium descriptor").
type Medium struct {
	Valid     bool
	IOR       float32
	Absorption types.Vec3
}

// Material is the tagged-union BSDF (spec 3): a tag plus a flat field
// block, dispatched by a small switch rather than virtual-dispatch
// classes, so that a material-sort optimization can group same-tag
// threads without any dynamic type lookup.
type Material struct {
	Tag         Tag
	Albedo      types.Vec3
	Specular    types.Vec3
	IOR         float32
	Roughness   float32
	Emittance   float32
	AlbedoTexID int32
	Medium      Medium
}

// IsEmissive reports whether m radiates light (spec 3: "emittance;
// non-zero => emissive").
func (m Material) IsEmissive() bool {
	return m.Emittance > 0
}

// Emission returns the radiance m emits towards the viewer.
func (m Material) Emission() types.Vec3 {
	return m.Albedo.Mul(m.Emittance)
}

// ScatterResult is the outcome of Scatter: the new outgoing direction, the
// BSDF throughput factor f*|cosTheta|/pdf already folded in, the sampled
// pdf (solid angle measure; 1 for specular events, whose delta density is
// folded directly into the factor), and whether the event was
// specular (spec 4.D: "isSpecularBounce <- true").
type ScatterResult struct {
	Wi        types.Vec3
	Throughput types.Vec3
	Pdf       float32
	Specular  bool
	// Terminate is set when the sampled direction falls in the wrong
	// hemisphere (spec 4.D: "terminate the path").
	Terminate bool
}

// Scatter implements 4.D: given the outgoing direction wo (pointing away
// from the surface, towards the previous vertex), the shading normal n
// and tangent t, and the material m, sample a new direction and the
// throughput multiplier for it.
func Scatter(m Material, wo, n, tangent types.Vec3, rng *sampling.RNG) ScatterResult {
	switch m.Tag {
	case Diffuse:
		return scatterDiffuse(m, n, rng)
	case SpecReflect:
		return scatterSpecReflect(m, wo, n)
	case SpecTransmit:
		return scatterSpecTransmit(m, wo, n, rng)
	case SpecFresnel:
		return scatterSpecFresnel(m, wo, n, rng)
	case Microfacet:
		return scatterMicrofacet(m, wo, n, tangent, rng)
	default:
		// EMISSIVE surfaces are not scattered here (spec 4.D); callers
		// must check IsEmissive first.
		return ScatterResult{Terminate: true}
	}
}

// Eval evaluates the BSDF f(wo, wi) and its solid-angle pdf for an
// explicit direction wi (as opposed to Scatter, which samples wi). Used
// by the light-sampling MIS term (spec 4.E.2), which needs f/pdf at a
// direction chosen by sampling the light, not the BSDF. Specular
// materials have zero measure for any fixed wi and always evaluate to
// zero; light sampling against them is skipped entirely at the call site
// (spec 4.E: "pure specular materials skip MIS").
func Eval(m Material, wo, wi, n, tangent types.Vec3) (f types.Vec3, pdf float32) {
	switch m.Tag {
	case Diffuse:
		cosTheta := wi.Dot(n)
		if cosTheta <= 0 || wo.Dot(n) <= 0 {
			return types.Vec3{}, 0
		}
		return m.Albedo, sampling.CosineHemispherePdf(cosTheta)
	case Microfacet:
		return evalMicrofacet(m, wo, wi, n, tangent)
	default:
		return types.Vec3{}, 0
	}
}

func evalMicrofacet(m Material, wo, wi, n, tangent types.Vec3) (types.Vec3, float32) {
	cosO := wo.Dot(n)
	cosI := wi.Dot(n)
	if cosO <= 0 || cosI <= 0 {
		return types.Vec3{}, 0
	}

	bitangent := n.Cross(tangent)
	toLocal := func(v types.Vec3) types.Vec3 {
		return types.XYZ(v.Dot(tangent), v.Dot(bitangent), v.Dot(n))
	}
	woLocal := toLocal(wo)
	wiLocal := toLocal(wi)

	h := woLocal.Add(wiLocal).Normalize()
	if h.LenSq() == 0 {
		return types.Vec3{}, 0
	}

	alpha := m.Roughness * m.Roughness
	d := sampling.GGXDistribution(h, alpha, alpha)
	g := sampling.GGXSmithG(woLocal, wiLocal, alpha, alpha)
	fr := fresnelSchlick(woLocal.Dot(h), 1, m.IOR)

	denom := 4 * woLocal[2] * wiLocal[2]
	if denom <= 0 {
		return types.Vec3{}, 0
	}
	f := m.Specular.Mul(fr * d * g / denom)
	pdf := sampling.GGXVisibleNormalPdf(woLocal, h, alpha, alpha) / (4 * woLocal.Dot(h))
	return f, pdf
}

func scatterDiffuse(m Material, n types.Vec3, rng *sampling.RNG) ScatterResult {
	u1, u2 := rng.Float32_2()
	local := sampling.CosineSampleHemisphere(u1, u2)
	wi := alignToNormal(local, n)

	if wi.Dot(n) <= 0 {
		return ScatterResult{Terminate: true}
	}

	pdf := sampling.CosineHemispherePdf(wi.Dot(n))
	// f = albedo/pi, throughput *= f*cos/pdf = albedo (the pi and cos
	// cancel exactly against the cosine-weighted pdf).
	return ScatterResult{Wi: wi, Throughput: m.Albedo, Pdf: pdf}
}

func scatterSpecReflect(m Material, wo, n types.Vec3) ScatterResult {
	wi := types.Reflect(wo.Neg(), n)
	if wi.Dot(n) <= 0 {
		return ScatterResult{Terminate: true}
	}
	return ScatterResult{Wi: wi, Throughput: m.Specular, Pdf: 1, Specular: true}
}

func scatterSpecTransmit(m Material, wo, n types.Vec3, rng *sampling.RNG) ScatterResult {
	eta := 1 / m.IOR
	nf := n
	cosWo := wo.Dot(n)
	entering := cosWo > 0
	if !entering {
		eta = m.IOR
		nf = n.Neg()
	}

	wt, ok := types.Refract(wo.Neg(), nf, eta)
	if !ok {
		// Total internal reflection: fall back to the reflect branch.
		return scatterSpecReflect(m, wo, nf)
	}

	result := ScatterResult{Wi: wt, Throughput: m.Specular, Pdf: 1, Specular: true}
	if m.Medium.Valid {
		result.Throughput = result.Throughput.MulVec(transmittance(m.Medium, entering))
	}
	return result
}

// transmittance applies Beer-Lambert absorption for a medium boundary
// crossing. The actual path length through the medium is unknown at the
// surface (it depends on the next intersection), so only the
// entering/leaving direction is tracked here; a full volumetric
// integrator would defer this to the segment's travel distance.
func transmittance(medium Medium, entering bool) types.Vec3 {
	if entering {
		return types.XYZ(1, 1, 1)
	}
	return types.MaxVec3(types.XYZ(1, 1, 1).Sub(medium.Absorption), types.XYZ(0, 0, 0))
}

func scatterSpecFresnel(m Material, wo, n types.Vec3, rng *sampling.RNG) ScatterResult {
	cosWo := wo.Dot(n)
	etaI, etaT := float32(1), m.IOR
	nf := n
	if cosWo < 0 {
		etaI, etaT = etaT, etaI
		nf = n.Neg()
		cosWo = -cosWo
	}

	fr := fresnelSchlick(cosWo, etaI, etaT)
	if u, _ := rng.Float32_2(); u < fr {
		res := scatterSpecReflect(m, wo, n)
		// reflectance already selected via probability
		return res
	}

	wt, ok := types.Refract(wo.Neg(), nf, etaI/etaT)
	if !ok {
		return scatterSpecReflect(m, wo, n)
	}
	return ScatterResult{Wi: wt, Throughput: m.Specular, Pdf: 1, Specular: true}
}

// fresnelSchlick is Schlick's approximation to the Fresnel dielectric
// reflectance (spec 4.D: "probability equal to the Fresnel reflectance
// (Schlick)").
func fresnelSchlick(cosTheta, etaI, etaT float32) float32 {
	r0 := (etaI - etaT) / (etaI + etaT)
	r0 *= r0
	x := 1 - cosTheta
	return r0 + (1-r0)*x*x*x*x*x
}

func scatterMicrofacet(m Material, wo, n, tangent types.Vec3, rng *sampling.RNG) ScatterResult {
	bitangent := n.Cross(tangent)
	toLocal := func(v types.Vec3) types.Vec3 {
		return types.XYZ(v.Dot(tangent), v.Dot(bitangent), v.Dot(n))
	}
	toWorld := func(v types.Vec3) types.Vec3 {
		return tangent.Mul(v[0]).Add(bitangent.Mul(v[1])).Add(n.Mul(v[2]))
	}

	woLocal := toLocal(wo)
	if woLocal[2] <= 0 {
		return ScatterResult{Terminate: true}
	}

	alpha := m.Roughness * m.Roughness
	u1, u2 := rng.Float32_2()
	h := sampling.SampleGGXVisibleNormal(woLocal, alpha, alpha, u1, u2)

	wiLocal := types.Reflect(woLocal.Neg(), h)
	if wiLocal[2] <= 0 {
		return ScatterResult{Terminate: true}
	}

	pdfH := sampling.GGXVisibleNormalPdf(woLocal, h, alpha, alpha)
	pdf := pdfH / (4 * woLocal.Dot(h))
	if pdf <= 0 {
		return ScatterResult{Terminate: true}
	}

	d := sampling.GGXDistribution(h, alpha, alpha)
	g := sampling.GGXSmithG(woLocal, wiLocal, alpha, alpha)
	fr := fresnelSchlick(woLocal.Dot(h), 1, m.IOR)

	denom := 4 * woLocal[2] * wiLocal[2]
	f := fr * d * g / denom

	throughput := m.Specular.Mul(f * wiLocal[2] / pdf)
	wi := toWorld(wiLocal)

	return ScatterResult{Wi: wi, Throughput: throughput, Pdf: pdf}
}

// alignToNormal maps a hemisphere-local direction (z-up) onto the
// geometric hemisphere around n.
func alignToNormal(local, n types.Vec3) types.Vec3 {
	var helper types.Vec3
	if abs32(n[0]) > 0.99 {
		helper = types.XYZ(0, 1, 0)
	} else {
		helper = types.XYZ(1, 0, 0)
	}
	tangent := helper.Cross(n).Normalize()
	bitangent := n.Cross(tangent)
	return tangent.Mul(local[0]).Add(bitangent.Mul(local[1])).Add(n.Mul(local[2]))
}

func abs32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
