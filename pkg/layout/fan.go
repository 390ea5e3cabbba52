package layout

import (
	"math"
	"slices"

	"github.com/matzehuels/lineage/pkg/family"
)

// Fan chart ring geometry in pixels. Rings have constant width; depth does
// not rescale them.
const (
	FanCenterRadius = 90.0
	FanRingWidth    = 80.0
)

const (
	slotFather = "father"
	slotMother = "mother"
)

type fanNode struct {
	id       family.NodeID
	person   *family.Person
	depth    int
	children []*fanNode // father slot, mother slot
	value    float64
}

// LayoutFan computes the fan chart for focusID down to depthLimit
// generations, the focus person included. A non-positive limit means
// [DefaultGenerationLimit]; limits above [MaxFanGenerations] are clamped.
//
// Every ring is complete: empty parent slots are filled with placeholder
// persons so each generation divides its parent's span in two. Angular
// spans are proportional to leaf count and the focus spans the full
// circle. With IsRTL the mother slot precedes the father slot in angle
// order. Result.Truncated is set when a real person in the outermost ring
// still has a known parent.
func LayoutFan(people family.People, focusID string, depthLimit int, s Settings) Result {
	res := NewResult()
	if len(people) == 0 {
		return res
	}
	if depthLimit <= 0 {
		depthLimit = DefaultGenerationLimit
	}
	depthLimit = min(depthLimit, MaxFanGenerations)

	focus := people.Get(people.ResolveFocus(focusID))
	if focus == nil {
		return res
	}
	b := &fanBuilder{people: people, limit: depthLimit}
	root := b.build(family.PersonID(focus.ID), focus, 0, map[string]bool{})
	res.Truncated = b.truncated
	countLeaves(root)

	type frame struct {
		n          *fanNode
		start, end float64
	}
	stack := []frame{{n: root, start: 0, end: 2 * math.Pi}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		inner, outer := fanRadii(f.n.depth)
		res.FanArcs = append(res.FanArcs, FanArc{
			ID:          f.n.id,
			Person:      f.n.person,
			StartAngle:  finite(f.start),
			EndAngle:    finite(f.end),
			InnerRadius: inner,
			OuterRadius: outer,
			Depth:       f.n.depth,
			Value:       f.n.value,
			HasChildren: len(f.n.children) > 0,
		})

		span := f.end - f.start
		at := f.start
		children := f.n.children
		if s.IsRTL {
			children = slices.Clone(children)
			slices.Reverse(children)
		}
		next := make([]frame, 0, len(children))
		for _, c := range children {
			width := span * c.value / f.n.value
			next = append(next, frame{n: c, start: at, end: at + width})
			at += width
		}
		// Keep the end exact so children never leak past the parent span.
		if len(next) > 0 {
			next[len(next)-1].end = f.end
		}
		for i := len(next) - 1; i >= 0; i-- {
			stack = append(stack, next[i])
		}
	}
	return res
}

// fanRadii returns the ring bounds for a depth: the centre disc for the
// focus, then constant-width rings outward.
func fanRadii(depth int) (inner, outer float64) {
	if depth == 0 {
		return 0, FanCenterRadius
	}
	return FanCenterRadius + float64(depth-1)*FanRingWidth, FanCenterRadius + float64(depth)*FanRingWidth
}

type fanBuilder struct {
	people    family.People
	limit     int
	truncated bool
}

// build creates the ancestor tree below p. path holds the IDs on the
// current branch and is copied per branch so sibling branches do not see
// each other's ancestors.
func (b *fanBuilder) build(id family.NodeID, p *family.Person, depth int, path map[string]bool) *fanNode {
	n := &fanNode{id: id, person: p, depth: depth}

	fatherID, motherID := "", ""
	if !p.Placeholder {
		fatherID = b.people.Father(p)
		motherID = b.people.Mother(p, fatherID)
	}
	if depth+1 >= b.limit {
		if fatherID != "" || motherID != "" {
			b.truncated = true
		}
		return n
	}

	branch := make(map[string]bool, len(path)+1)
	for k := range path {
		branch[k] = true
	}
	if !p.Placeholder {
		branch[p.ID] = true
	}

	for _, slot := range []struct{ name, parentID string }{
		{slotFather, fatherID},
		{slotMother, motherID},
	} {
		parent := b.people.Get(slot.parentID)
		var childID family.NodeID
		if parent != nil && !branch[parent.ID] {
			childID = family.PersonID(parent.ID)
		} else {
			childID = family.PlaceholderID(id.String(), slot.name)
			parent = placeholder(childID, slot.name)
		}
		n.children = append(n.children, b.build(childID, parent, depth+1, branch))
	}
	return n
}

func placeholder(id family.NodeID, slot string) *family.Person {
	gender := family.GenderFemale
	if slot == slotFather {
		gender = family.GenderMale
	}
	return &family.Person{ID: id.String(), Gender: gender, Placeholder: true}
}

// countLeaves sets value to the number of leaves under each node.
func countLeaves(n *fanNode) float64 {
	if len(n.children) == 0 {
		n.value = 1
		return 1
	}
	n.value = 0
	for _, c := range n.children {
		n.value += countLeaves(c)
	}
	return n.value
}
