package layout

import (
	"math"

	"github.com/matzehuels/lineage/pkg/family"
)

type pedigreeNode struct {
	person *family.Person
	gen    int
	// repeat is set for every appearance of a person after the first.
	repeat bool
	father *pedigreeNode
	mother *pedigreeNode
}

// LayoutPedigree computes the ancestor-only chart for focusID. Each person
// has one father slot and one mother slot; branch spread halves every
// generation so the two halves of the tree never cross.
//
// The recursion does not use the hierarchy builder. Each branch carries
// its own path set: an ancestor shared by both sides of the family
// (pedigree collapse) is drawn in every branch that reaches it, with
// IsReference set after the first appearance, while a parent already on
// the current path (a cycle in the data) ends the branch. Depth is bounded
// by [MaxPedigreeGenerations] and size by [MaxPedigreeNodes]; hitting
// either bound with ancestors left sets Result.Truncated.
//
// Because a person may appear more than once, links carry explicit Origin
// and Terminal points.
func LayoutPedigree(people family.People, focusID string, s Settings) Result {
	res := NewResult()
	if len(people) == 0 {
		return res
	}
	b := &pedigreeBuilder{people: people, seen: make(map[string]bool)}
	root := b.build(people.ResolveFocus(focusID), 0, map[string]bool{})
	if root == nil {
		return res
	}
	res.Truncated = b.truncated

	m := MetricsFor(s, people)
	perp := max(m.slot(), 2*m.NodeWidth+SpouseGap)
	spread := perp * math.Pow(2, float64(max(b.depth-2, 0)))
	level := m.levelDistance(s.LayoutMode)

	place := func(gen int, offset float64) Point {
		if s.LayoutMode == ModeHorizontal {
			x := float64(gen) * level
			if s.IsRTL {
				x = -x
			}
			return finitePoint(Point{X: x, Y: offset})
		}
		// Radial has no pedigree form; it falls back to vertical.
		return finitePoint(Point{X: offset, Y: -float64(gen) * level})
	}

	type frame struct {
		n      *pedigreeNode
		offset float64
		spread float64
	}
	stack := []frame{{n: root, spread: spread}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		pos := place(f.n.gen, f.offset)
		res.Nodes = append(res.Nodes, TreeNode{
			ID:          family.PersonID(f.n.person.ID),
			X:           pos.X,
			Y:           pos.Y,
			Person:      f.n.person,
			Role:        pedigreeRole(f.n.gen),
			IsReference: f.n.repeat,
		})

		half := f.spread / 2
		for _, parent := range []struct {
			n      *pedigreeNode
			offset float64
		}{{f.n.mother, f.offset + half}, {f.n.father, f.offset - half}} {
			if parent.n == nil {
				continue
			}
			origin, terminal := place(parent.n.gen, parent.offset), pos
			res.Links = append(res.Links, TreeLink{
				Source:   family.PersonID(parent.n.person.ID),
				Target:   family.PersonID(f.n.person.ID),
				Type:     LinkParentChild,
				Origin:   &origin,
				Terminal: &terminal,
			})
			stack = append(stack, frame{n: parent.n, offset: parent.offset, spread: half})
		}
	}
	return res
}

func pedigreeRole(gen int) Role {
	switch gen {
	case 0:
		return RoleFocus
	case 1:
		return RoleParent
	}
	return RoleAncestor
}

type pedigreeBuilder struct {
	people family.People
	// seen holds every person drawn so far, across branches.
	seen      map[string]bool
	nodes     int
	depth     int
	truncated bool
}

// build creates the ancestor tree above id. path holds the IDs on the
// current branch and is copied per branch, so sibling branches do not
// see each other's ancestors.
func (b *pedigreeBuilder) build(id string, gen int, path map[string]bool) *pedigreeNode {
	p := b.people.Get(id)
	if p == nil || path[id] {
		return nil
	}
	if b.nodes >= MaxPedigreeNodes {
		b.truncated = true
		return nil
	}
	b.nodes++
	b.depth = max(b.depth, gen+1)

	n := &pedigreeNode{person: p, gen: gen, repeat: b.seen[id]}
	b.seen[id] = true

	fatherID := b.people.Father(p)
	motherID := b.people.Mother(p, fatherID)
	if gen+1 >= MaxPedigreeGenerations {
		b.truncated = b.truncated || fatherID != "" || motherID != ""
		return n
	}

	branch := make(map[string]bool, len(path)+1)
	for k := range path {
		branch[k] = true
	}
	branch[id] = true
	if fatherID != "" {
		n.father = b.build(fatherID, gen+1, branch)
	}
	if motherID != "" {
		n.mother = b.build(motherID, gen+1, branch)
	}
	return n
}
