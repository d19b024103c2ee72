// Package build is the k-d tree builder: an external collaborator (spec 6,
// "the k-d tree builder ... is not part of the core spec") that produces
// the flat node/primitive arrays kdtree.Traverse consumes. It is grounded
// in the teacher's BVH builder (asset/compiler/bvh/bvh_builder.go),
// adapted from binary bounding-volume splits to axis-aligned k-d splits:
// each node picks one split axis and a single split plane rather than
// partitioning into two arbitrary sub-boxes.
package build

import (
	"math"

	"pathtrace/kdtree"
	"pathtrace/log"
	"pathtrace/types"
)

const (
	minSideLength float32 = 1e-4

	// Candidate split points are sampled evenly across a node's extent
	// along the chosen axis; more candidates means a tighter split at the
	// cost of more scoring work per node.
	splitCandidates = 16
)

// BoundedPrimitive is anything the builder can partition: a primitive
// index (opaque to the builder) plus its world-space bounding box.
type BoundedPrimitive struct {
	Index  int32
	Min    types.Vec3
	Max    types.Vec3
	Center types.Vec3
}

type splitCandidate struct {
	axis       int
	splitPoint float32
	leftCount  int
	rightCount int
	score      float32
}

type builder struct {
	logger       log.Logger
	nodes        []kdtree.Node
	prims        []int32
	minLeafItems int
	maxDepth     int
	scoreChan    chan splitCandidate

	nodeCount, leafCount, maxDepthSeen int
}

// Build constructs a k-d tree over prims using a surface-area-heuristic
// split scorer, stopping a branch once it has <= minLeafItems primitives
// or has reached maxDepth.
func Build(prims []BoundedPrimitive, minLeafItems, maxDepth int) *kdtree.Tree {
	b := &builder{
		logger:       log.New("kdtree/build"),
		minLeafItems: minLeafItems,
		maxDepth:     maxDepth,
		scoreChan:    make(chan splitCandidate),
	}

	bboxMin, bboxMax := boundsOf(prims)
	b.partition(prims, 0)

	b.logger.Debugf(
		"k-d tree build: %d primitives, %d nodes, %d leaves, max depth %d",
		len(prims), b.nodeCount, b.leafCount, b.maxDepthSeen,
	)

	return &kdtree.Tree{
		Nodes:   b.nodes,
		Prims:   b.prims,
		BBoxMin: bboxMin,
		BBoxMax: bboxMax,
	}
}

func boundsOf(prims []BoundedPrimitive) (types.Vec3, types.Vec3) {
	min := types.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	max := types.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}
	for _, p := range prims {
		min = types.MinVec3(min, p.Min)
		max = types.MaxVec3(max, p.Max)
	}
	return min, max
}

// partition recursively splits workList and returns the index of the node
// it created (interior or leaf) in b.nodes.
func (b *builder) partition(workList []BoundedPrimitive, depth int) int32 {
	if depth > b.maxDepthSeen {
		b.maxDepthSeen = depth
	}

	if len(workList) <= b.minLeafItems || depth >= b.maxDepth {
		return b.createLeaf(workList)
	}

	bmin, bmax := boundsOf(workList)
	side := bmax.Sub(bmin)

	bestScore := b.scorePartition(workList)
	var best *splitCandidate
	pending := 0

	for axis := 0; axis < 3; axis++ {
		if side[axis] < minSideLength {
			continue
		}
		step := side[axis] / splitCandidates
		for i := 1; i < splitCandidates; i++ {
			splitPoint := bmin[axis] + step*float32(i)
			pending++
			go func(axis int, splitPoint float32) {
				lCount, rCount, score := b.scoreSplit(workList, axis, splitPoint)
				b.scoreChan <- splitCandidate{axis: axis, splitPoint: splitPoint, leftCount: lCount, rightCount: rCount, score: score}
			}(axis, splitPoint)
		}
	}

	for ; pending > 0; pending-- {
		cand := <-b.scoreChan
		if cand.leftCount == 0 || cand.rightCount == 0 {
			continue
		}
		if cand.score < bestScore {
			bestScore = cand.score
			c := cand
			best = &c
		}
	}

	if best == nil {
		return b.createLeaf(workList)
	}

	left := make([]BoundedPrimitive, 0, best.leftCount)
	right := make([]BoundedPrimitive, 0, best.rightCount)
	for _, p := range workList {
		if p.Center[best.axis] < best.splitPoint {
			left = append(left, p)
		} else {
			right = append(right, p)
		}
	}

	nodeIndex := int32(len(b.nodes))
	b.nodes = append(b.nodes, kdtree.Node{})
	b.nodeCount++

	leftIndex := b.partition(left, depth+1)
	rightIndex := b.partition(right, depth+1)

	b.nodes[nodeIndex] = kdtree.Node{
		Axis:  int8(best.axis),
		Split: best.splitPoint,
		Left:  leftIndex,
		Right: rightIndex,
	}
	return nodeIndex
}

func (b *builder) createLeaf(workList []BoundedPrimitive) int32 {
	start := int32(len(b.prims))
	for _, p := range workList {
		b.prims = append(b.prims, p.Index)
	}

	nodeIndex := int32(len(b.nodes))
	b.nodes = append(b.nodes, kdtree.Node{
		Axis:  kdtree.LeafAxis,
		Left:  start,
		Right: int32(len(workList)),
	})
	b.nodeCount++
	b.leafCount++
	return nodeIndex
}

// scorePartition is the SAH cost of leaving workList as a single leaf:
// item count * bbox surface area.
func (b *builder) scorePartition(workList []BoundedPrimitive) float32 {
	bmin, bmax := boundsOf(workList)
	return float32(len(workList)) * surfaceArea(bmin, bmax)
}

// scoreSplit is the SAH cost of splitting workList at splitPoint along
// axis: leftCount * leftArea + rightCount * rightArea. Lower is better.
func (b *builder) scoreSplit(workList []BoundedPrimitive, axis int, splitPoint float32) (leftCount, rightCount int, score float32) {
	lmin := types.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	rmin := types.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	lmax := types.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}
	rmax := types.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}

	for _, p := range workList {
		if p.Center[axis] < splitPoint {
			lmin = types.MinVec3(lmin, p.Min)
			lmax = types.MaxVec3(lmax, p.Max)
			leftCount++
		} else {
			rmin = types.MinVec3(rmin, p.Min)
			rmax = types.MaxVec3(rmax, p.Max)
			rightCount++
		}
	}

	if leftCount == 0 || rightCount == 0 {
		return leftCount, rightCount, math.MaxFloat32
	}

	score = float32(leftCount)*surfaceArea(lmin, lmax) + float32(rightCount)*surfaceArea(rmin, rmax)
	return leftCount, rightCount, score
}

func surfaceArea(min, max types.Vec3) float32 {
	d := max.Sub(min)
	return 2 * (d[0]*d[1] + d[1]*d[2] + d[2]*d[0])
}
