package geom

import "pathtrace/types"

// unitCubeCorners are the 8 corners of the canonical [-1,1]^3 object-space
// box every Sphere/Cube primitive is bounded by.
var unitCubeCorners = [8]types.Vec3{
	types.XYZ(-1, -1, -1), types.XYZ(1, -1, -1),
	types.XYZ(-1, 1, -1), types.XYZ(1, 1, -1),
	types.XYZ(-1, -1, 1), types.XYZ(1, -1, 1),
	types.XYZ(-1, 1, 1), types.XYZ(1, 1, 1),
}

// ComputeBBox derives a Geom's world-space bounding box from its transform
// (Sphere/Cube: the 8 corners of the canonical unit box: a conservative
// but cheap bound, tight for Cube and never looser than sqrt(3)x for
// Sphere; TriangleMeshInstance: the exact min/max over its triangles'
// world-space vertices), used by the k-d tree builder (spec 6, external
// collaborator) and by Scene.buildLights' area computation.
func ComputeBBox(g *Geom, pool *TrianglePool) (min, max types.Vec3) {
	switch g.Type {
	case TriangleMeshInstance:
		return computeMeshBBox(g, pool)
	default:
		return computeUnitBoxBBox(g)
	}
}

func computeUnitBoxBBox(g *Geom) (types.Vec3, types.Vec3) {
	min := g.Transform.MulPoint(unitCubeCorners[0])
	max := min
	for i := 1; i < len(unitCubeCorners); i++ {
		p := g.Transform.MulPoint(unitCubeCorners[i])
		min = types.MinVec3(min, p)
		max = types.MaxVec3(max, p)
	}
	return min, max
}

func computeMeshBBox(g *Geom, pool *TrianglePool) (types.Vec3, types.Vec3) {
	count := int(g.TriCount)
	if count == 0 {
		return types.Vec3{}, types.Vec3{}
	}
	first := pool.Tris[g.TriStart]
	min := g.Transform.MulPoint(pool.Vertices[first.V0])
	max := min
	for i := 0; i < count; i++ {
		tri := pool.Tris[g.TriStart+int32(i)]
		for _, vi := range [3]int32{tri.V0, tri.V1, tri.V2} {
			p := g.Transform.MulPoint(pool.Vertices[vi])
			min = types.MinVec3(min, p)
			max = types.MaxVec3(max, p)
		}
	}
	return min, max
}
