// Package kdtree implements traversal (spec 4.C) over a flat, prebuilt k-d
// tree node array. The tree is built offline (package kdtree/build, an
// external collaborator per spec 6) and uploaded once per scene; this
// package only consumes it.
package kdtree

import "pathtrace/types"

// LeafAxis marks a Node as a leaf (spec 3: "packed struct with either (a)
// an axis and split position and two child indices, or (b) a leaf holding
// a primitive-index range").
const LeafAxis = -1

// Node is one entry of the flat, array-indexed k-d tree (spec 9: "Arena +
// index ... no per-node heap; children are array indices"). For an
// interior node, Axis in {0,1,2} and Split/Left/Right describe the split
// plane and child indices. For a leaf, Axis == LeafAxis and Left/Right
// hold the primitive-index range [Left, Left+Right) into Tree.Prims.
type Node struct {
	Axis  int8
	Split float32
	Left  int32
	Right int32
}

// IsLeaf reports whether n is a leaf node.
func (n Node) IsLeaf() bool {
	return n.Axis == LeafAxis
}

// PrimRange returns the [start, count) primitive-index range of a leaf.
func (n Node) PrimRange() (start, count int32) {
	return n.Left, n.Right
}

// Tree is the complete, immutable, device-uploaded k-d tree: the node
// array, the permuted primitive-index array leaves reference into, and
// the overall scene bounding box used to seed traversal's (tMin, tMax).
type Tree struct {
	Nodes []Node
	Prims []int32

	BBoxMin, BBoxMax types.Vec3
}

// MaxStackDepth bounds the short-stack used during traversal (spec 5: "the
// k-d traversal needs a bounded per-thread stack (<= tree depth)").
const MaxStackDepth = 64
