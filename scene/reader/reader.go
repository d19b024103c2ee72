// Package reader parses the line-oriented scene text format (spec 6:
// "scene file reader ... with MATERIAL, OBJECT, CAMERA, ENVIRONMENT_MAP
// records ... implementer may copy the simple grammar from the sample
// scenes"). Grounded in achilleasa-polaris/scene/reader/wavefront.go's
// bufio.Scanner + strings.Fields tokenizer and switch-on-first-token
// parse loop, adapted from that teacher's wavefront-.obj-flavored grammar
// (v/vt/vn/f/usemtl/mtllib) to this module's own record set.
package reader

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"pathtrace/geom"
	"pathtrace/kdtree"
	"pathtrace/kdtree/build"
	"pathtrace/light"
	"pathtrace/material"
	"pathtrace/scene"
	"pathtrace/types"
)

// degToRad converts the OBJECT CUBE rotation argument (degrees) to
// radians without pulling in the math package for one constant.
const degToRad = 3.14159265358979323846 / 180

// Options configures how a parsed scene is turned into a compiled
// scene.Scene.
type Options struct {
	Width, Height int

	// KdMinLeafItems/KdMaxDepth bound the k-d tree builder (spec 6).
	KdMinLeafItems int
	KdMaxDepth     int
}

type meshBlock struct {
	vertices []types.Vec3
	tris     []geom.Triangle
}

type reader struct {
	res *resource

	materials      []material.Material
	materialByName map[string]int32

	geoms []geom.Geom
	pool  geom.TrianglePool

	camera *scene.Camera
	env    *light.Environment

	curMesh *meshBlock

	opts Options
}

// Read parses the scene file at path and compiles it into a scene.Scene,
// building its k-d tree with package kdtree/build.
func Read(path string, opts Options) (*scene.Scene, error) {
	res, err := newResource(path)
	if err != nil {
		return nil, fmt.Errorf("reader: %w", err)
	}

	r := &reader{
		res:            res,
		materialByName: make(map[string]int32),
		opts:           opts,
	}
	if err := r.parseFile(res); err != nil {
		return nil, err
	}
	if r.curMesh != nil {
		return nil, fmt.Errorf("reader: %s: unterminated OBJECT MESH block (missing END)", path)
	}
	if r.camera == nil {
		return nil, fmt.Errorf("reader: %s: scene defines no CAMERA", path)
	}
	if len(r.geoms) == 0 {
		return nil, fmt.Errorf("reader: %s: scene defines no OBJECT", path)
	}

	tree := r.buildTree()
	return scene.New(r.camera, r.geoms, r.materials, r.pool, tree, r.env)
}

func (r *reader) buildTree() *kdtree.Tree {
	prims := make([]build.BoundedPrimitive, len(r.geoms))
	for i := range r.geoms {
		min, max := geom.ComputeBBox(&r.geoms[i], &r.pool)
		r.geoms[i].BBoxMin, r.geoms[i].BBoxMax = min, max
		prims[i] = build.BoundedPrimitive{
			Index:  int32(i),
			Min:    min,
			Max:    max,
			Center: min.Add(max).Mul(0.5),
		}
	}
	minLeaf, maxDepth := r.opts.KdMinLeafItems, r.opts.KdMaxDepth
	if minLeaf <= 0 {
		minLeaf = 4
	}
	if maxDepth <= 0 {
		maxDepth = 24
	}
	return build.Build(prims, minLeaf, maxDepth)
}

func (r *reader) parseFile(res *resource) error {
	f, err := res.open()
	if err != nil {
		return fmt.Errorf("reader: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		if err := r.parseLine(res, fields); err != nil {
			return fmt.Errorf("reader: %s:%d: %w", res.path, lineNum, err)
		}
	}
	return scanner.Err()
}

func (r *reader) parseLine(res *resource, fields []string) error {
	switch fields[0] {
	case "MATERIAL":
		return r.parseMaterial(fields[1:])
	case "OBJECT":
		return r.parseObject(fields[1:])
	case "v":
		return r.parseVertex(fields[1:])
	case "f":
		return r.parseFace(fields[1:])
	case "END":
		return r.endMesh()
	case "CAMERA":
		return r.parseCamera(fields[1:])
	case "ENVIRONMENT_MAP":
		return r.parseEnvironmentMap(res, fields[1:])
	default:
		return fmt.Errorf("unknown record %q", fields[0])
	}
}

func (r *reader) parseMaterial(fields []string) error {
	if len(fields) < 2 {
		return fmt.Errorf("MATERIAL: expected at least name and type, got %d fields", len(fields))
	}
	name, tag := fields[0], fields[1]
	args := fields[2:]

	if _, exists := r.materialByName[name]; exists {
		return fmt.Errorf("MATERIAL: duplicate material name %q", name)
	}

	var m material.Material
	switch tag {
	case "DIFFUSE":
		albedo, err := parseVec3(args)
		if err != nil {
			return err
		}
		m = material.Material{Tag: material.Diffuse, Albedo: albedo}
	case "SPEC_REFL":
		specular, err := parseVec3(args)
		if err != nil {
			return err
		}
		m = material.Material{Tag: material.SpecReflect, Specular: specular}
	case "SPEC_TRANS":
		if len(args) != 4 {
			return fmt.Errorf("MATERIAL SPEC_TRANS: expected 4 args (r g b ior), got %d", len(args))
		}
		specular, err := parseVec3(args[:3])
		if err != nil {
			return err
		}
		ior, err := parseFloat(args[3])
		if err != nil {
			return err
		}
		m = material.Material{Tag: material.SpecTransmit, Specular: specular, IOR: ior}
	case "SPEC_FRESNEL":
		if len(args) != 4 {
			return fmt.Errorf("MATERIAL SPEC_FRESNEL: expected 4 args (r g b ior), got %d", len(args))
		}
		specular, err := parseVec3(args[:3])
		if err != nil {
			return err
		}
		ior, err := parseFloat(args[3])
		if err != nil {
			return err
		}
		m = material.Material{Tag: material.SpecFresnel, Specular: specular, IOR: ior}
	case "MICROFACET":
		if len(args) != 8 {
			return fmt.Errorf("MATERIAL MICROFACET: expected 8 args (albedo, specular, ior, roughness), got %d", len(args))
		}
		albedo, err := parseVec3(args[:3])
		if err != nil {
			return err
		}
		specular, err := parseVec3(args[3:6])
		if err != nil {
			return err
		}
		ior, err := parseFloat(args[6])
		if err != nil {
			return err
		}
		roughness, err := parseFloat(args[7])
		if err != nil {
			return err
		}
		m = material.Material{Tag: material.Microfacet, Albedo: albedo, Specular: specular, IOR: ior, Roughness: roughness}
	case "EMISSIVE":
		if len(args) != 4 {
			return fmt.Errorf("MATERIAL EMISSIVE: expected 4 args (r g b intensity), got %d", len(args))
		}
		color, err := parseVec3(args[:3])
		if err != nil {
			return err
		}
		intensity, err := parseFloat(args[3])
		if err != nil {
			return err
		}
		m = material.Material{Tag: material.Emissive, Albedo: color, Emittance: intensity}
	default:
		return fmt.Errorf("MATERIAL: unknown type %q", tag)
	}

	r.materials = append(r.materials, m)
	r.materialByName[name] = int32(len(r.materials) - 1)
	return nil
}

func (r *reader) lookupMaterial(name string) (int32, error) {
	id, ok := r.materialByName[name]
	if !ok {
		return 0, fmt.Errorf("undefined material %q", name)
	}
	return id, nil
}

func (r *reader) parseObject(fields []string) error {
	if len(fields) < 2 {
		return fmt.Errorf("OBJECT: expected at least a type and material name")
	}
	kind, matName := fields[0], fields[1]
	args := fields[2:]

	matID, err := r.lookupMaterial(matName)
	if err != nil {
		return fmt.Errorf("OBJECT %s: %w", kind, err)
	}

	switch kind {
	case "SPHERE":
		if len(args) != 4 {
			return fmt.Errorf("OBJECT SPHERE: expected 4 args (pos, radius), got %d", len(args))
		}
		pos, err := parseVec3(args[:3])
		if err != nil {
			return err
		}
		radius, err := parseFloat(args[3])
		if err != nil {
			return err
		}
		transform := types.Affine4(pos, types.QuatIdent(), types.XYZ(radius, radius, radius))
		r.geoms = append(r.geoms, geom.Geom{
			Type:         geom.Sphere,
			Transform:    transform,
			InvTransform: transform.Inverse(),
			MaterialID:   matID,
		})
	case "CUBE":
		if len(args) != 7 {
			return fmt.Errorf("OBJECT CUBE: expected 7 args (pos, halfExtent, rotYDeg), got %d", len(args))
		}
		pos, err := parseVec3(args[:3])
		if err != nil {
			return err
		}
		halfExtent, err := parseVec3(args[3:6])
		if err != nil {
			return err
		}
		rotYDeg, err := parseFloat(args[6])
		if err != nil {
			return err
		}
		rot := types.QuatFromAxisAngle(types.XYZ(0, 1, 0), rotYDeg*degToRad)
		transform := types.Affine4(pos, rot, halfExtent)
		r.geoms = append(r.geoms, geom.Geom{
			Type:         geom.Cube,
			Transform:    transform,
			InvTransform: transform.Inverse(),
			MaterialID:   matID,
		})
	case "MESH":
		if len(args) != 4 {
			return fmt.Errorf("OBJECT MESH: expected 4 args (pos, scale), got %d", len(args))
		}
		pos, err := parseVec3(args[:3])
		if err != nil {
			return err
		}
		scaleF, err := parseFloat(args[3])
		if err != nil {
			return err
		}
		transform := types.Affine4(pos, types.QuatIdent(), types.XYZ(scaleF, scaleF, scaleF))

		r.curMesh = &meshBlock{}
		// The Geom is appended here; endMesh fills in TriStart/TriCount
		// with the final pool offsets once END closes the block.
		r.geoms = append(r.geoms, geom.Geom{
			Type:         geom.TriangleMeshInstance,
			Transform:    transform,
			InvTransform: transform.Inverse(),
			MaterialID:   matID,
		})
	default:
		return fmt.Errorf("OBJECT: unknown type %q", kind)
	}
	return nil
}

func (r *reader) parseVertex(fields []string) error {
	if r.curMesh == nil {
		return fmt.Errorf("'v' outside an OBJECT MESH block")
	}
	v, err := parseVec3(fields)
	if err != nil {
		return err
	}
	r.curMesh.vertices = append(r.curMesh.vertices, v)
	return nil
}

func (r *reader) parseFace(fields []string) error {
	if r.curMesh == nil {
		return fmt.Errorf("'f' outside an OBJECT MESH block")
	}
	if len(fields) != 3 {
		return fmt.Errorf("'f': expected 3 vertex indices, got %d", len(fields))
	}
	idx := make([]int32, 3)
	for i, tok := range fields {
		v, err := strconv.Atoi(tok)
		if err != nil {
			return fmt.Errorf("'f': bad vertex index %q: %w", tok, err)
		}
		if v < 0 || v >= len(r.curMesh.vertices) {
			return fmt.Errorf("'f': vertex index %d out of range [0,%d)", v, len(r.curMesh.vertices))
		}
		idx[i] = int32(v)
	}
	r.curMesh.tris = append(r.curMesh.tris, geom.Triangle{
		V0: idx[0], V1: idx[1], V2: idx[2],
		N0: -1, N1: -1, N2: -1,
		UV0: -1, UV1: -1, UV2: -1,
	})
	return nil
}

func (r *reader) endMesh() error {
	if r.curMesh == nil {
		return fmt.Errorf("END outside an OBJECT MESH block")
	}
	if len(r.curMesh.tris) == 0 {
		return fmt.Errorf("OBJECT MESH block has no faces")
	}

	vertexBase := int32(len(r.pool.Vertices))
	r.pool.Vertices = append(r.pool.Vertices, r.curMesh.vertices...)

	triStart := int32(len(r.pool.Tris))
	for _, tri := range r.curMesh.tris {
		tri.V0 += vertexBase
		tri.V1 += vertexBase
		tri.V2 += vertexBase
		r.pool.Tris = append(r.pool.Tris, tri)
	}

	g := &r.geoms[len(r.geoms)-1]
	g.TriStart = triStart
	g.TriCount = int32(len(r.curMesh.tris))

	r.curMesh = nil
	return nil
}

func (r *reader) parseCamera(fields []string) error {
	if len(fields) != 10 && len(fields) != 12 {
		return fmt.Errorf("CAMERA: expected 10 args (eye, look, up, fov) or 12 (+ lensRadius, focalDistance), got %d", len(fields))
	}
	eye, err := parseVec3(fields[0:3])
	if err != nil {
		return err
	}
	look, err := parseVec3(fields[3:6])
	if err != nil {
		return err
	}
	up, err := parseVec3(fields[6:9])
	if err != nil {
		return err
	}
	fov, err := parseFloat(fields[9])
	if err != nil {
		return err
	}

	cam := scene.NewCamera(eye, look, up, fov, r.opts.Width, r.opts.Height)
	cam.AntiAlias = true

	if len(fields) == 12 {
		lensRadius, err := parseFloat(fields[10])
		if err != nil {
			return err
		}
		focalDistance, err := parseFloat(fields[11])
		if err != nil {
			return err
		}
		cam.LensRadius = lensRadius
		cam.FocalDistance = focalDistance
		cam.Setup(r.opts.Width, r.opts.Height)
	}

	r.camera = cam
	return nil
}

func (r *reader) parseEnvironmentMap(res *resource, fields []string) error {
	if len(fields) != 1 {
		return fmt.Errorf("ENVIRONMENT_MAP: expected 1 arg (path), got %d", len(fields))
	}
	env, err := readEnvironmentMap(res.resolve(fields[0]))
	if err != nil {
		return err
	}
	r.env = env
	return nil
}

func parseVec3(fields []string) (types.Vec3, error) {
	if len(fields) != 3 {
		return types.Vec3{}, fmt.Errorf("expected 3 floats, got %d", len(fields))
	}
	x, err := parseFloat(fields[0])
	if err != nil {
		return types.Vec3{}, err
	}
	y, err := parseFloat(fields[1])
	if err != nil {
		return types.Vec3{}, err
	}
	z, err := parseFloat(fields[2])
	if err != nil {
		return types.Vec3{}, err
	}
	return types.XYZ(x, y, z), nil
}

func parseFloat(tok string) (float32, error) {
	v, err := strconv.ParseFloat(tok, 32)
	if err != nil {
		return 0, fmt.Errorf("bad float %q: %w", tok, err)
	}
	return float32(v), nil
}

