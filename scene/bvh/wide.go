package bvh

// Collapse a binary BVH into a 4-wide BVH. Each wide node adopts the
// grandchildren of its binary node, always opening the inner child with the
// largest surface area first, until it holds WideWidth children or only
// leaves remain.
func Collapse(nodes []Node) []WideNode {
	if len(nodes) == 0 {
		return nil
	}

	wide := make([]WideNode, 0, len(nodes)/2+1)
	var collapse func(index int32) int32
	collapse = func(index int32) int32 {
		var children []int32
		if nodes[index].IsLeaf() {
			children = []int32{index}
		} else {
			children = []int32{nodes[index].Left, nodes[index].Right}
		}

		for len(children) < WideWidth {
			best := -1
			var bestArea float32
			for i, child := range children {
				if nodes[child].IsLeaf() {
					continue
				}
				if area := nodes[child].Area(); best < 0 || area > bestArea {
					best, bestArea = i, area
				}
			}
			if best < 0 {
				break
			}

			open := nodes[children[best]]
			children[best] = open.Left
			children = append(children, open.Right)
		}

		wideIndex := int32(len(wide))
		wide = append(wide, WideNode{N: len(children)})
		for slot, child := range children {
			n := &nodes[child]
			wide[wideIndex].Min[slot] = n.Min
			wide[wideIndex].Max[slot] = n.Max
			if n.IsLeaf() {
				wide[wideIndex].Child[slot] = -1
				wide[wideIndex].First[slot] = n.First
				wide[wideIndex].Count[slot] = n.Count
				continue
			}
			childIndex := collapse(child)
			wide[wideIndex].Child[slot] = childIndex
		}
		return wideIndex
	}

	collapse(0)
	return wide
}
