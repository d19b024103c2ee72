package kdtree

import (
	"pathtrace/geom"
	"pathtrace/types"
)

// Source resolves a primitive index stored in a leaf's range into an
// intersection test. The tree itself is agnostic to what a "primitive"
// is (sphere, cube, or a single mesh triangle) — the scene package
// supplies the Source that maps indices to its own primitive table.
type Source interface {
	Intersect(primIndex int32, ray geom.Ray) (geom.Intersection, bool)
}

// stackEntry is one frame of the short-stack traversal (spec 4.C).
type stackEntry struct {
	node       int32
	tMin, tMax float32
}

// Traverse descends the tree along ray, returning the nearest hit (spec
// 4.C). It uses a bounded local array as the short-stack rather than
// recursion, so a single goroutine's traversal never grows the Go stack
// and the worst case is bounded by MaxStackDepth regardless of tree depth
// irregularities.
func Traverse(tree *Tree, src Source, ray geom.Ray) (geom.Intersection, bool) {
	if len(tree.Nodes) == 0 {
		return geom.Intersection{}, false
	}

	tMin, tMax, ok := intersectBBox(tree.BBoxMin, tree.BBoxMax, ray)
	if !ok {
		return geom.Intersection{}, false
	}

	var stack [MaxStackDepth]stackEntry
	sp := 0
	stack[sp] = stackEntry{node: 0, tMin: tMin, tMax: tMax}
	sp++

	best := geom.Intersection{}
	found := false
	closest := tMax

	for sp > 0 {
		sp--
		cur := stack[sp]
		if found && cur.tMin > closest {
			continue
		}

		node := tree.Nodes[cur.node]
		if node.IsLeaf() {
			start, count := node.PrimRange()
			for i := start; i < start+count; i++ {
				primIndex := tree.Prims[i]
				if isect, hit := src.Intersect(primIndex, ray); hit {
					if isect.T > 0 && isect.T < cur.tMax+selfIntersectSlack && (!found || isect.T < best.T) {
						best = isect
						found = true
						closest = isect.T
					}
				}
			}
			continue
		}

		axis := int(node.Axis)
		origin := ray.Origin[axis]
		dir := ray.Dir[axis]

		var tSplit float32
		if dir == 0 {
			// Parallel to the split plane: force "only near", where near is
			// the child on the origin's side (left when origin <= Split).
			tSplit = cur.tMax + 1
		} else {
			tSplit = (node.Split - origin) / dir
		}

		near, far := node.Left, node.Right
		if dir < 0 || (dir == 0 && origin > node.Split) {
			near, far = node.Right, node.Left
		}

		switch {
		case tSplit >= cur.tMax || tSplit < 0:
			sp = pushEntry(&stack, sp, near, cur.tMin, cur.tMax)
		case tSplit <= cur.tMin:
			sp = pushEntry(&stack, sp, far, cur.tMin, cur.tMax)
		default:
			sp = pushEntry(&stack, sp, far, tSplit, cur.tMax)
			sp = pushEntry(&stack, sp, near, cur.tMin, tSplit)
		}
	}

	return best, found
}

// selfIntersectSlack allows a hit found exactly at a leaf's tMax boundary
// (floating point slop) to still register.
const selfIntersectSlack = 1e-4

func pushEntry(stack *[MaxStackDepth]stackEntry, sp int, node int32, tMin, tMax float32) int {
	if sp >= MaxStackDepth {
		// Tree deeper than the bounded stack: drop the overflow entry
		// rather than corrupt memory. A well-formed builder keeps depth
		// well under MaxStackDepth (spec 4.C: "traversal must terminate;
		// depth is bounded by tree depth").
		return sp
	}
	stack[sp] = stackEntry{node: node, tMin: tMin, tMax: tMax}
	return sp + 1
}

// intersectBBox performs a standard slab test against an axis-aligned box,
// returning the entry/exit parametric distances.
func intersectBBox(bmin, bmax types.Vec3, ray geom.Ray) (float32, float32, bool) {
	tMin, tMax := float32(0), float32(1e30)
	for axis := 0; axis < 3; axis++ {
		d := ray.Dir[axis]
		o := ray.Origin[axis]
		if d == 0 {
			if o < bmin[axis] || o > bmax[axis] {
				return 0, 0, false
			}
			continue
		}
		invD := 1 / d
		t0 := (bmin[axis] - o) * invD
		t1 := (bmax[axis] - o) * invD
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tMin {
			tMin = t0
		}
		if t1 < tMax {
			tMax = t1
		}
		if tMin > tMax {
			return 0, 0, false
		}
	}
	return tMin, tMax, true
}
