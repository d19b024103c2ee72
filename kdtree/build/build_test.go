package build

import "testing"

func box(idx int32, minX, minY, minZ, maxX, maxY, maxZ float32) BoundedPrimitive {
	min := [3]float32{minX, minY, minZ}
	max := [3]float32{maxX, maxY, maxZ}
	var center [3]float32
	for i := range center {
		center[i] = (min[i] + max[i]) / 2
	}
	return BoundedPrimitive{Index: idx, Min: min, Max: max, Center: center}
}

func TestBuildPartitionsAllPrimitives(t *testing.T) {
	prims := []BoundedPrimitive{
		box(0, 0, 0, 0, 1, 1, 1),
		box(1, 5, 0, 0, 6, 1, 1),
		box(2, 10, 0, 0, 11, 1, 1),
		box(3, 15, 0, 0, 16, 1, 1),
	}

	tree := Build(prims, 1, 16)

	seen := map[int32]bool{}
	for _, idx := range tree.Prims {
		seen[idx] = true
	}
	if len(seen) != len(prims) {
		t.Fatalf("expected %d distinct primitives in leaves, got %d", len(prims), len(seen))
	}
}

func TestBuildSingleLeafWhenUnderThreshold(t *testing.T) {
	prims := []BoundedPrimitive{
		box(0, 0, 0, 0, 1, 1, 1),
		box(1, 1, 0, 0, 2, 1, 1),
	}
	tree := Build(prims, 4, 16)
	if len(tree.Nodes) != 1 {
		t.Fatalf("expected a single leaf node, got %d nodes", len(tree.Nodes))
	}
	if !tree.Nodes[0].IsLeaf() {
		t.Fatalf("expected root to be a leaf")
	}
}

func TestBuildRespectsMaxDepth(t *testing.T) {
	prims := make([]BoundedPrimitive, 0, 64)
	for i := 0; i < 64; i++ {
		x := float32(i)
		prims = append(prims, box(int32(i), x, 0, 0, x+0.5, 1, 1))
	}
	tree := Build(prims, 1, 3)

	var maxDepth func(node int32, depth int) int
	maxDepth = func(node int32, depth int) int {
		n := tree.Nodes[node]
		if n.IsLeaf() {
			return depth
		}
		l := maxDepth(n.Left, depth+1)
		r := maxDepth(n.Right, depth+1)
		if l > r {
			return l
		}
		return r
	}
	if d := maxDepth(0, 0); d > 3 {
		t.Fatalf("tree depth %d exceeds maxDepth 3", d)
	}
}
