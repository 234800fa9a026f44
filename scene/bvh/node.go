package bvh

import "github.com/ms-elk/rtcamp11/types"

// A binary BVH node. Inner nodes reference their children through Left and
// Right; leaves have Left < 0 and reference Count entries of the tree item
// list starting at First.
type Node struct {
	Min types.Vec3
	Max types.Vec3

	Left, Right int32
	First       int32
	Count       int32
}

// Returns true if this node is a leaf.
func (n *Node) IsLeaf() bool {
	return n.Left < 0
}

// Set the child node indices for an inner node.
func (n *Node) SetChildNodes(left, right uint32) {
	n.Left = int32(left)
	n.Right = int32(right)
}

// Get the surface area of the node bounding box.
func (n *Node) Area() float32 {
	side := n.Max.Sub(n.Min)
	return 2 * (side[0]*side[1] + side[1]*side[2] + side[0]*side[2])
}

// The maximum number of children of a wide node.
const WideWidth = 4

// A 4-wide BVH node produced by collapsing a binary tree. Child i is an inner
// node if Child[i] >= 0; otherwise it is a leaf spanning Count[i] items
// starting at First[i].
type WideNode struct {
	Min [WideWidth]types.Vec3
	Max [WideWidth]types.Vec3

	Child [WideWidth]int32
	First [WideWidth]int32
	Count [WideWidth]int32

	// Number of populated child slots.
	N int
}
