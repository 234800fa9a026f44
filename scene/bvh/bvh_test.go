package bvh

import (
	"math/rand"
	"testing"

	"github.com/ms-elk/rtcamp11/types"
)

type box struct {
	min, max types.Vec3
}

func (b box) BBox() [2]types.Vec3 {
	return [2]types.Vec3{b.min, b.max}
}

func (b box) Center() types.Vec3 {
	return b.min.Add(b.max).Mul(0.5)
}

func TestLeafCallback(t *testing.T) {
	itemList := []BoundedVolume{
		box{types.Vec3{-2, 0, -2}, types.Vec3{-1, 1, -1}},
		box{types.Vec3{1, 0, -2}, types.Vec3{2, 1, -1}},
		box{types.Vec3{-2, 0, 1}, types.Vec3{-1, 1, 2}},
		box{types.Vec3{1, 0, 1}, types.Vec3{2, 1, 2}},
	}

	var cbCount = 0
	var expItemListCount = 0
	cb := func(leaf *Node, itemList []BoundedVolume) {
		cbCount++
		if len(itemList) != expItemListCount {
			t.Fatalf("expected leaf callback to be called with %d items; got %d", expItemListCount, len(itemList))
		}
	}

	// Partition each item in a single leaf
	expItemListCount = 1
	treeNodes := Build(itemList, 1, cb, SurfaceAreaHeuristic)

	if expCount := 4; cbCount != expCount {
		t.Fatalf("expected leaf callback to be called %d times; called %d", expCount, cbCount)
	}
	if expCount := 7; len(treeNodes) != expCount {
		t.Fatalf("expected bvh tree to have %d nodes; got %d", expCount, len(treeNodes))
	}

	// Partition two items in a single leaf
	cbCount = 0
	expItemListCount = 2
	treeNodes = Build(itemList, 2, cb, SurfaceAreaHeuristic)

	if expCount := 2; cbCount != expCount {
		t.Fatalf("expected leaf callback to be called %d times; called %d", expCount, cbCount)
	}
	if expCount := 3; len(treeNodes) != expCount {
		t.Fatalf("expected bvh tree to have %d nodes; got %d", expCount, len(treeNodes))
	}
}

func TestCollapse(t *testing.T) {
	itemList := []BoundedVolume{
		box{types.Vec3{-2, 0, -2}, types.Vec3{-1, 1, -1}},
		box{types.Vec3{1, 0, -2}, types.Vec3{2, 1, -1}},
		box{types.Vec3{-2, 0, 1}, types.Vec3{-1, 1, 2}},
		box{types.Vec3{1, 0, 1}, types.Vec3{2, 1, 2}},
	}

	tree := NewTree(itemList, 1, true)
	if len(tree.Wide) != 1 {
		t.Fatalf("expected 4 leaves to collapse into a single wide node; got %d nodes", len(tree.Wide))
	}
	if tree.Wide[0].N != 4 {
		t.Fatalf("expected wide root to have 4 children; got %d", tree.Wide[0].N)
	}
	for slot := 0; slot < tree.Wide[0].N; slot++ {
		if tree.Wide[0].Child[slot] >= 0 || tree.Wide[0].Count[slot] != 1 {
			t.Fatalf("expected slot %d to be a leaf with a single item", slot)
		}
	}
}

// Closest hit by brute force against the item boxes.
func bruteForce(items []box, origin, dir types.Vec3) (int32, float32) {
	invDir := types.XYZ(1/dir[0], 1/dir[1], 1/dir[2])
	closest, closestT := int32(-1), float32(1e30)
	for i, b := range items {
		if tHit, hit := hitBox(b.min, b.max, origin, invDir, closestT); hit && tHit >= 0 && tHit < closestT {
			closest, closestT = int32(i), tHit
		}
	}
	return closest, closestT
}

func TestTraversalMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	items := make([]box, 200)
	volumes := make([]BoundedVolume, len(items))
	for i := range items {
		c := types.XYZ(rng.Float32()*20-10, rng.Float32()*20-10, rng.Float32()*20-10)
		items[i] = box{c.Sub(types.XYZ(0.3, 0.3, 0.3)), c.Add(types.XYZ(0.3, 0.3, 0.3))}
		volumes[i] = items[i]
	}

	for _, wide := range []bool{false, true} {
		tree := NewTree(volumes, 2, wide)
		if len(tree.Items) != len(items) {
			t.Fatalf("expected tree to reference %d items; got %d", len(items), len(tree.Items))
		}

		for ray := 0; ray < 100; ray++ {
			origin := types.XYZ(0, 0, -30)
			dir := types.XYZ(rng.Float32()*0.8-0.4, rng.Float32()*0.8-0.4, 1).Normalize()
			invDir := types.XYZ(1/dir[0], 1/dir[1], 1/dir[2])

			expItem, expT := bruteForce(items, origin, dir)

			gotItem, gotT := int32(-1), float32(1e30)
			tree.Traverse(origin, dir, gotT, func(item int32, tMax float32) float32 {
				b := items[item]
				if tHit, hit := hitBox(b.min, b.max, origin, invDir, tMax); hit && tHit >= 0 && tHit < tMax {
					gotItem, gotT = item, tHit
					return tHit
				}
				return tMax
			})

			if gotItem != expItem || (expItem >= 0 && gotT != expT) {
				t.Fatalf("[wide %t, ray %d] expected hit %d at %f; got %d at %f", wide, ray, expItem, expT, gotItem, gotT)
			}
		}
	}
}

func TestEmptyTree(t *testing.T) {
	tree := NewTree(nil, 1, true)
	visited := false
	tree.Traverse(types.XYZ(0, 0, 0), types.XYZ(0, 0, 1), 1e30, func(int32, float32) float32 {
		visited = true
		return 0
	})
	if visited {
		t.Fatal("expected empty tree traversal not to visit any item")
	}
}
