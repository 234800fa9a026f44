package bvh

import (
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/ms-elk/rtcamp11/types"
)

// Traversal stack depth. Deeper trees are not produced by the builder for
// any realistic item count.
const stackSize = 256

// A Tree references the items it was built from by their index in the
// original item list.
type Tree struct {
	Nodes []Node
	Wide  []WideNode

	// Item indices referenced by the leaves.
	Items []int32
}

type indexedVolume struct {
	BoundedVolume
	index int32
}

// Build a tree over items. If wide is true the binary tree is collapsed into
// a 4-wide tree that is used for traversal.
func NewTree(items []BoundedVolume, minLeafItems int, wide bool) *Tree {
	t := &Tree{
		Items: make([]int32, 0, len(items)),
	}

	workList := make([]BoundedVolume, len(items))
	for i, item := range items {
		workList[i] = indexedVolume{item, int32(i)}
	}

	t.Nodes = Build(workList, minLeafItems, func(leaf *Node, itemList []BoundedVolume) {
		leaf.First = int32(len(t.Items))
		leaf.Count = int32(len(itemList))
		for _, item := range itemList {
			t.Items = append(t.Items, item.(indexedVolume).index)
		}
	}, SurfaceAreaHeuristic)

	if wide {
		t.Wide = Collapse(t.Nodes)
	}
	return t
}

// Get the bounds of the whole tree.
func (t *Tree) BBox() [2]types.Vec3 {
	if len(t.Nodes) == 0 {
		return [2]types.Vec3{}
	}
	return [2]types.Vec3{t.Nodes[0].Min, t.Nodes[0].Max}
}

// A callback invoked for each item whose leaf is hit by a ray. It receives the
// current closest distance and returns the (possibly updated) closest distance.
// Returning a negative value stops the traversal.
type VisitFunc func(item int32, tMax float32) float32

// Intersect a ray with the tree and invoke visit for every candidate item.
func (t *Tree) Traverse(origin, dir types.Vec3, tMax float32, visit VisitFunc) {
	if len(t.Nodes) == 0 {
		return
	}
	invDir := types.XYZ(1/dir[0], 1/dir[1], 1/dir[2])
	if t.Wide != nil {
		t.traverseWide(origin, invDir, tMax, visit)
		return
	}
	t.traverseBinary(origin, invDir, tMax, visit)
}

func (t *Tree) visitLeaf(first, count int32, tMax float32, visit VisitFunc) float32 {
	for i := first; i < first+count; i++ {
		if tMax = visit(t.Items[i], tMax); tMax < 0 {
			return tMax
		}
	}
	return tMax
}

func (t *Tree) traverseBinary(origin, invDir types.Vec3, tMax float32, visit VisitFunc) {
	var stack [stackSize]int32
	sp := 0
	stack[sp] = 0
	sp++

	for sp > 0 {
		sp--
		node := &t.Nodes[stack[sp]]
		if _, hit := hitBox(node.Min, node.Max, origin, invDir, tMax); !hit {
			continue
		}

		if node.IsLeaf() {
			if tMax = t.visitLeaf(node.First, node.Count, tMax, visit); tMax < 0 {
				return
			}
			continue
		}

		// Visit the nearest child first
		left, right := &t.Nodes[node.Left], &t.Nodes[node.Right]
		tl, hitL := hitBox(left.Min, left.Max, origin, invDir, tMax)
		tr, hitR := hitBox(right.Min, right.Max, origin, invDir, tMax)
		switch {
		case hitL && hitR:
			near, far := node.Left, node.Right
			if tr < tl {
				near, far = far, near
			}
			stack[sp], stack[sp+1] = far, near
			sp += 2
		case hitL:
			stack[sp] = node.Left
			sp++
		case hitR:
			stack[sp] = node.Right
			sp++
		}
	}
}

func (t *Tree) traverseWide(origin, invDir types.Vec3, tMax float32, visit VisitFunc) {
	var stack [stackSize]int32
	sp := 0
	stack[sp] = 0
	sp++

	for sp > 0 {
		sp--
		node := &t.Wide[stack[sp]]

		for slot := 0; slot < node.N; slot++ {
			if _, hit := hitBox(node.Min[slot], node.Max[slot], origin, invDir, tMax); !hit {
				continue
			}
			if node.Child[slot] >= 0 {
				stack[sp] = node.Child[slot]
				sp++
				continue
			}
			if tMax = t.visitLeaf(node.First[slot], node.Count[slot], tMax, visit); tMax < 0 {
				return
			}
		}
	}
}

// Slab test. Returns the entry distance and whether the box is hit in [0, tMax].
func hitBox(min, max, origin, invDir types.Vec3, tMax float32) (float32, bool) {
	tx1 := (min[0] - origin[0]) * invDir[0]
	tx2 := (max[0] - origin[0]) * invDir[0]
	tNear, tFar := math32.Min(tx1, tx2), math32.Max(tx1, tx2)

	ty1 := (min[1] - origin[1]) * invDir[1]
	ty2 := (max[1] - origin[1]) * invDir[1]
	tNear, tFar = math32.Max(tNear, math32.Min(ty1, ty2)), math32.Min(tFar, math32.Max(ty1, ty2))

	tz1 := (min[2] - origin[2]) * invDir[2]
	tz2 := (max[2] - origin[2]) * invDir[2]
	tNear, tFar = math32.Max(tNear, math32.Min(tz1, tz2)), math32.Min(tFar, math32.Max(tz1, tz2))

	return tNear, tNear <= tFar && tFar >= 0 && tNear <= tMax
}

// Get the number of bytes used by the tree nodes and item indices.
func (t *Tree) Footprint() uint64 {
	return uint64(len(t.Nodes))*uint64(unsafe.Sizeof(Node{})) +
		uint64(len(t.Wide))*uint64(unsafe.Sizeof(WideNode{})) +
		uint64(len(t.Items))*4
}
