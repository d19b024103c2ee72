// Package writer mirrors scene/reader's MATERIAL/OBJECT/CAMERA/
// ENVIRONMENT_MAP grammar back out to a text file, round-tripping a
// compiled scene.Scene (spec 6 supplement; grounded in
// achilleasa-polaris/asset/scene/writer's thin Writer-interface-over-a-
// single-Write-call shape, generalized from that teacher's gob/zip binary
// encoding to this module's own line grammar so the output stays
// human-readable and diffable in test fixtures).
package writer

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"pathtrace/geom"
	"pathtrace/light"
	"pathtrace/material"
	"pathtrace/scene"
	"pathtrace/types"
)

// Write serializes s to path using the scene/reader grammar. Material
// names are not retained by the compiled Scene, so Write synthesizes
// "matN" names consistent with the OBJECT records it emits; re-reading
// the file reproduces the same materials/geometry, just not the
// original names.
func Write(s *scene.Scene, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writer: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)

	matNames := make([]string, len(s.Materials))
	for i, m := range s.Materials {
		name := fmt.Sprintf("mat%d", i)
		matNames[i] = name
		if err := writeMaterial(w, name, m); err != nil {
			return err
		}
	}

	for i := range s.Geoms {
		if err := writeObject(w, &s.Geoms[i], &s.Pool, matNames); err != nil {
			return err
		}
	}

	if err := writeCamera(w, s.Camera); err != nil {
		return err
	}

	if s.Environment != nil {
		envPath := path + ".env"
		if err := writeEnvironmentMap(envPath, s.Environment); err != nil {
			return err
		}
		fmt.Fprintf(w, "ENVIRONMENT_MAP %s\n", filepath.Base(envPath))
	}

	return w.Flush()
}

func writeMaterial(w *bufio.Writer, name string, m material.Material) error {
	switch m.Tag {
	case material.Diffuse:
		_, err := fmt.Fprintf(w, "MATERIAL %s DIFFUSE %s\n", name, vec3(m.Albedo))
		return err
	case material.SpecReflect:
		_, err := fmt.Fprintf(w, "MATERIAL %s SPEC_REFL %s\n", name, vec3(m.Specular))
		return err
	case material.SpecTransmit:
		_, err := fmt.Fprintf(w, "MATERIAL %s SPEC_TRANS %s %g\n", name, vec3(m.Specular), m.IOR)
		return err
	case material.SpecFresnel:
		_, err := fmt.Fprintf(w, "MATERIAL %s SPEC_FRESNEL %s %g\n", name, vec3(m.Specular), m.IOR)
		return err
	case material.Microfacet:
		_, err := fmt.Fprintf(w, "MATERIAL %s MICROFACET %s %s %g %g\n", name, vec3(m.Albedo), vec3(m.Specular), m.IOR, m.Roughness)
		return err
	case material.Emissive:
		_, err := fmt.Fprintf(w, "MATERIAL %s EMISSIVE %s %g\n", name, vec3(m.Albedo), m.Emittance)
		return err
	default:
		return fmt.Errorf("writer: unknown material tag %v", m.Tag)
	}
}

func writeObject(w *bufio.Writer, g *geom.Geom, pool *geom.TrianglePool, matNames []string) error {
	matName := matNames[g.MaterialID]
	pos := translationOf(g.Transform)

	switch g.Type {
	case geom.Sphere:
		radius := uniformScaleOf(g.Transform)
		_, err := fmt.Fprintf(w, "OBJECT SPHERE %s %s %g\n", matName, vec3(pos), radius)
		return err
	case geom.Cube:
		halfExtent, rotYDeg := cubeDecompose(g.Transform)
		_, err := fmt.Fprintf(w, "OBJECT CUBE %s %s %s %g\n", matName, vec3(pos), vec3(halfExtent), rotYDeg)
		return err
	case geom.TriangleMeshInstance:
		return writeMesh(w, g, pool, matName, pos)
	default:
		return fmt.Errorf("writer: unknown geom type %v", g.Type)
	}
}

func writeMesh(w *bufio.Writer, g *geom.Geom, pool *geom.TrianglePool, matName string, pos types.Vec3) error {
	scale := uniformScaleOf(g.Transform)
	fmt.Fprintf(w, "OBJECT MESH %s %s %g\n", matName, vec3(pos), scale)

	// Pool vertices are stored in object space (the instance transform is
	// applied only at intersection time), so they are emitted as stored and
	// the 'v'/'f' block is independent of where this instance sits in the
	// world (the OBJECT MESH pos/scale arguments place it).
	seen := make(map[int32]int32)
	var order []int32
	faces := make([][3]int32, 0, g.TriCount)
	for i := int32(0); i < g.TriCount; i++ {
		tri := pool.Tris[g.TriStart+i]
		var local [3]int32
		for k, vi := range [3]int32{tri.V0, tri.V1, tri.V2} {
			if idx, ok := seen[vi]; ok {
				local[k] = idx
			} else {
				idx = int32(len(order))
				seen[vi] = idx
				order = append(order, vi)
				local[k] = idx
			}
		}
		faces = append(faces, local)
	}
	for _, vi := range order {
		fmt.Fprintf(w, "v %s\n", vec3(pool.Vertices[vi]))
	}
	for _, f := range faces {
		fmt.Fprintf(w, "f %d %d %d\n", f[0], f[1], f[2])
	}
	_, err := fmt.Fprintln(w, "END")
	return err
}

func writeCamera(w *bufio.Writer, c *scene.Camera) error {
	_, err := fmt.Fprintf(w, "CAMERA %s %s %s %g %g %g\n",
		vec3(c.Position), vec3(c.LookAt), vec3(c.Up), c.FOVDegrees, c.LensRadius, c.FocalDistance)
	return err
}

func writeEnvironmentMap(path string, env *light.Environment) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writer: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "%d %d\n", env.Width, env.Height)
	for _, p := range env.Pixels {
		fmt.Fprintf(w, "%s\n", vec3(p))
	}
	return w.Flush()
}

func vec3(v types.Vec3) string {
	return fmt.Sprintf("%g %g %g", v[0], v[1], v[2])
}

func translationOf(m types.Mat4) types.Vec3 {
	return types.XYZ(m[3], m[7], m[11])
}

// uniformScaleOf approximates a Sphere/Mesh instance's scale the same way
// scene.transformScale does: the cube root of the linear part's
// determinant.
func uniformScaleOf(m types.Mat4) float32 {
	det := m[0]*(m[5]*m[10]-m[6]*m[9]) -
		m[1]*(m[4]*m[10]-m[6]*m[8]) +
		m[2]*(m[4]*m[9]-m[5]*m[8])
	if det < 0 {
		det = -det
	}
	return float32(math.Cbrt(float64(det)))
}

// cubeDecompose recovers a Cube instance's object-space half-extent and
// Y-axis rotation in degrees from its affine transform. This is exact
// only because scene/reader's OBJECT CUBE record can only ever produce a
// pure Y-axis rotation composed with a diagonal scale (Transform =
// Translate * RotateY * Scale): each linear-part column's length equals
// the corresponding scale factor regardless of rotation, and a pure
// Y rotation is fully determined by the column-0 (x-axis) components.
func cubeDecompose(m types.Mat4) (halfExtent types.Vec3, rotYDeg float32) {
	col := func(c int) types.Vec3 {
		return types.XYZ(m[c], m[4+c], m[8+c])
	}
	cx, cy, cz := col(0), col(1), col(2)
	halfExtent = types.XYZ(cx.Len(), cy.Len(), cz.Len())

	if halfExtent[0] > 1e-8 {
		cosTheta := cx[0] / halfExtent[0]
		sinTheta := -cx[2] / halfExtent[0]
		rotYDeg = float32(math.Atan2(float64(sinTheta), float64(cosTheta))) * 180 / math.Pi
	}
	return halfExtent, rotYDeg
}
