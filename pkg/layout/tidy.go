package layout

import "math"

// Separation factors applied to the horizontal gap between neighbouring
// pods. Same-union siblings sit closest, cousins furthest apart.
const (
	sepSameUnion   = 1.0
	sepSameParent  = 1.5
	sepOtherParent = 2.0
)

// SeparationFunc returns the minimum centre-to-centre distance between a
// node and its right-hand neighbour on the same level.
type SeparationFunc func(left, right *HierarchyNode) float64

// PodSeparation returns the separation function for the given metrics.
//
// A pod is a person plus their companion boxes. A pod with k spouses spans
// one node width plus k companion steps, so a person with two spouses
// reserves three slots. Companions alternate right (odd index) and left
// (even index), which makes the extents asymmetric.
func PodSeparation(m Metrics) SeparationFunc {
	return func(left, right *HierarchyNode) float64 {
		factor := sepOtherParent
		if left.Parent != nil && left.Parent == right.Parent {
			factor = sepSameParent
			if left.MotherID == right.MotherID {
				factor = sepSameUnion
			}
		}
		return podRight(left, m) + podLeft(right, m) + m.SpacingX*factor
	}
}

// podRight is the extent of a pod to the right of its primary's centre.
func podRight(n *HierarchyNode, m Metrics) float64 {
	k := len(n.Spouses)
	return m.NodeWidth/2 + float64((k+1)/2)*m.companionStep()
}

// podLeft is the extent of a pod to the left of its primary's centre.
func podLeft(n *HierarchyNode, m Metrics) float64 {
	k := len(n.Spouses)
	return m.NodeWidth/2 + float64(k/2)*m.companionStep()
}

// companionOffset is the signed cross-axis offset of the companion with
// the given 1-based index: +1, -1, +2, -2 ... steps.
func companionOffset(index int, m Metrics) float64 {
	steps := math.Ceil(float64(index) / 2)
	if index%2 == 0 {
		steps = -steps
	}
	return steps * m.companionStep()
}

// =============================================================================
// Tidy tree
// =============================================================================

// tidyNode carries the bookkeeping of the linear-time tidy tree algorithm
// (Walker's algorithm as improved by Buchheim, Jünger and Leipert).
type tidyNode struct {
	h        *HierarchyNode
	parent   *tidyNode
	children []*tidyNode

	ancestorDefault *tidyNode // A
	ancestor        *tidyNode // a
	thread          *tidyNode // t

	prelim float64 // z
	mod    float64 // m
	change float64 // c
	shift  float64 // s
	index  int     // i
}

// Solve assigns every node in the hierarchy an abstract X. The root is
// placed at 0; depth is taken from HierarchyNode.Depth. Neighbouring
// subtrees are pushed apart until every pair of contour nodes satisfies sep.
func Solve(root *HierarchyNode, sep SeparationFunc) {
	if root == nil {
		return
	}
	t := newTidyTree(root)
	for _, v := range postOrder(t) {
		firstWalk(v, sep)
	}
	t.parent.mod = -t.prelim
	for _, v := range preOrder(t) {
		v.h.X = v.prelim + v.parent.mod
		v.mod += v.parent.mod
	}
}

func newTidyTree(root *HierarchyNode) *tidyNode {
	t := &tidyNode{h: root}
	t.ancestor = t
	stack := []*tidyNode{t}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if len(n.h.Children) == 0 {
			continue
		}
		n.children = make([]*tidyNode, len(n.h.Children))
		for i, c := range n.h.Children {
			child := &tidyNode{h: c, parent: n, index: i}
			child.ancestor = child
			n.children[i] = child
			stack = append(stack, child)
		}
	}
	t.parent = &tidyNode{children: []*tidyNode{t}}
	return t
}

// postOrder lists nodes so that every node follows its descendants and
// siblings appear left to right.
func postOrder(root *tidyNode) []*tidyNode {
	var next []*tidyNode
	stack := []*tidyNode{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		next = append(next, n)
		stack = append(stack, n.children...)
	}
	out := make([]*tidyNode, len(next))
	for i, n := range next {
		out[len(next)-1-i] = n
	}
	return out
}

func preOrder(root *tidyNode) []*tidyNode {
	var out []*tidyNode
	stack := []*tidyNode{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, n)
		for i := len(n.children) - 1; i >= 0; i-- {
			stack = append(stack, n.children[i])
		}
	}
	return out
}

func firstWalk(v *tidyNode, sep SeparationFunc) {
	siblings := v.parent.children
	var w *tidyNode
	if v.index > 0 {
		w = siblings[v.index-1]
	}
	if len(v.children) > 0 {
		executeShifts(v)
		mid := (v.children[0].prelim + v.children[len(v.children)-1].prelim) / 2
		if w != nil {
			v.prelim = w.prelim + sep(w.h, v.h)
			v.mod = v.prelim - mid
		} else {
			v.prelim = mid
		}
	} else if w != nil {
		v.prelim = w.prelim + sep(w.h, v.h)
	}
	anc := v.parent.ancestorDefault
	if anc == nil {
		anc = siblings[0]
	}
	v.parent.ancestorDefault = apportion(v, w, anc, sep)
}

func apportion(v, w, ancestor *tidyNode, sep SeparationFunc) *tidyNode {
	if w == nil {
		return ancestor
	}
	vip, vop := v, v
	vim := w
	vom := vip.parent.children[0]
	sip, sop, sim, som := vip.mod, vop.mod, vim.mod, vom.mod
	for {
		vim, vip = nextRight(vim), nextLeft(vip)
		if vim == nil || vip == nil {
			break
		}
		vom, vop = nextLeft(vom), nextRight(vop)
		vop.ancestor = v
		shift := vim.prelim + sim - vip.prelim - sip + sep(vim.h, vip.h)
		if shift > 0 {
			moveSubtree(nextAncestor(vim, v, ancestor), v, shift)
			sip += shift
			sop += shift
		}
		sim += vim.mod
		sip += vip.mod
		som += vom.mod
		sop += vop.mod
	}
	if vim != nil && nextRight(vop) == nil {
		vop.thread = vim
		vop.mod += sim - sop
	}
	if vip != nil && nextLeft(vom) == nil {
		vom.thread = vip
		vom.mod += sip - som
		ancestor = v
	}
	return ancestor
}

func nextLeft(v *tidyNode) *tidyNode {
	if len(v.children) > 0 {
		return v.children[0]
	}
	return v.thread
}

func nextRight(v *tidyNode) *tidyNode {
	if len(v.children) > 0 {
		return v.children[len(v.children)-1]
	}
	return v.thread
}

func moveSubtree(wm, wp *tidyNode, shift float64) {
	change := shift / float64(wp.index-wm.index)
	wp.change -= change
	wp.shift += shift
	wm.change += change
	wp.prelim += shift
	wp.mod += shift
}

func executeShifts(v *tidyNode) {
	var shift, change float64
	for i := len(v.children) - 1; i >= 0; i-- {
		w := v.children[i]
		w.prelim += shift
		w.mod += shift
		change += w.change
		shift += w.shift + change
	}
}

func nextAncestor(vim, v, ancestor *tidyNode) *tidyNode {
	if vim.ancestor.parent == v.parent {
		return vim.ancestor
	}
	return ancestor
}
