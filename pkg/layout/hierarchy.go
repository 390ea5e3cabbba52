package layout

import (
	"slices"

	"github.com/matzehuels/lineage/pkg/family"
)

// HierarchyNode is a person placed in the rooted multi-tree built from the
// family graph. It lives for one layout request only.
type HierarchyNode struct {
	Person *family.Person

	// GroupIndex is the 1-based spouse union the node descends from, or 0
	// for the single-parent group and the root.
	GroupIndex int
	// MotherID is the co-parent component of the union key the node hangs
	// from: a spouse ID or family.SingleParent. Empty for the root.
	MotherID string
	// IsReference marks a person who was already drawn as a spouse
	// companion elsewhere. Unions with a spouse who is already placed are
	// Shared and stay empty here; all other unions are expanded.
	IsReference bool

	Spouses  []*Companion
	Unions   []*Union
	Children []*HierarchyNode
	Parent   *HierarchyNode
	Depth    int

	// X is the abstract cross-axis position assigned by [Solve].
	X float64
}

// Companion is a spouse box drawn next to a primary person.
type Companion struct {
	Person *family.Person
	// Index is 1-based; odd indices sit after the primary, even before.
	Index int
	// IsReference marks a spouse who is also drawn as a primary elsewhere.
	IsReference bool
}

// Union groups the children a primary person has with one spouse, or the
// children with no co-parent among the spouses.
type Union struct {
	Key        family.NodeID
	Spouse     *Companion // nil for the single-parent group
	GroupIndex int

	// Collapsed is set when the key is in the caller's collapsed set.
	Collapsed bool
	// Shared is set when the spouse was already placed as a primary, so the
	// union's children were (or will be) rendered under that placement.
	Shared bool

	Children []*HierarchyNode
}

// Walk visits n and all descendants in pre-order.
func (n *HierarchyNode) Walk(fn func(*HierarchyNode)) {
	if n == nil {
		return
	}
	stack := []*HierarchyNode{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(cur)
		for i := len(cur.Children) - 1; i >= 0; i-- {
			stack = append(stack, cur.Children[i])
		}
	}
}

// Count returns the number of nodes in the hierarchy.
func (n *HierarchyNode) Count() int {
	count := 0
	n.Walk(func(*HierarchyNode) { count++ })
	return count
}

// UnionKey returns the key of the union this node hangs from, or the zero
// ID for the root.
func (n *HierarchyNode) UnionKey() family.NodeID {
	if n.Parent == nil {
		return family.NodeID{}
	}
	return family.UnionID(n.Parent.Person.ID, n.MotherID)
}

type hierarchyBuilder struct {
	people       family.People
	showDeceased bool
	collapsed    map[string]bool
	childIndex   map[string][]string

	// placed holds every primary in this traversal. Cross-branch sharing is
	// intended: a person is a primary at most once.
	placed map[string]bool
	// companions holds every person drawn as a spouse box so far.
	companions map[string]bool
}

// BuildHierarchy converts the family graph into a rooted multi-tree
// starting at rootID. It returns nil when the root is absent or filtered.
//
// Each person is a primary at most once per traversal. Children of a
// person are grouped by spouse union (in spouse order, then the
// single-parent group) and sorted by birth year within each group, unknown
// years last. Unions whose key is in collapsedIDs keep no children.
func BuildHierarchy(people family.People, rootID string, s Settings, collapsedIDs []string) *HierarchyNode {
	b := &hierarchyBuilder{
		people:       people,
		showDeceased: s.ShowsDeceased(),
		collapsed:    make(map[string]bool, len(collapsedIDs)),
		childIndex:   people.ChildIndex(),
		placed:       make(map[string]bool),
		companions:   make(map[string]bool),
	}
	for _, id := range collapsedIDs {
		b.collapsed[id] = true
	}
	return b.build(rootID, nil, 0, "", 0)
}

func (b *hierarchyBuilder) build(id string, parent *HierarchyNode, group int, motherID string, depth int) *HierarchyNode {
	p := b.people.Get(id)
	if p == nil || b.placed[id] || !b.visible(p) {
		return nil
	}
	b.placed[id] = true

	node := &HierarchyNode{
		Person:      p,
		GroupIndex:  group,
		MotherID:    motherID,
		IsReference: b.companions[id],
		Parent:      parent,
		Depth:       depth,
	}
	b.attachSpouses(node)

	children := b.people.ChildrenOf(p, b.childIndex)
	grouped := make(map[string]bool, len(children))
	for _, c := range node.Spouses {
		var kids []string
		for _, kid := range children {
			if b.people[kid].HasParent(c.Person.ID) {
				kids = append(kids, kid)
				grouped[kid] = true
			}
		}
		b.addUnion(node, family.UnionID(p.ID, c.Person.ID), c, c.Index, kids)
	}

	// Children whose co-parent is absent or hidden fall into the single group.
	var single []string
	for _, kid := range children {
		if !grouped[kid] {
			single = append(single, kid)
		}
	}
	b.addUnion(node, family.UnionID(p.ID, family.SingleParent), nil, 0, single)
	return node
}

func (b *hierarchyBuilder) visible(p *family.Person) bool {
	return b.showDeceased || !p.IsDeceased
}

// attachSpouses adds companion boxes. Spouses are never pruned for having
// been seen before; only their further descent is blocked.
func (b *hierarchyBuilder) attachSpouses(node *HierarchyNode) {
	seen := make(map[string]bool, len(node.Person.Spouses))
	for _, sid := range node.Person.Spouses {
		s := b.people.Get(sid)
		if s == nil || sid == node.Person.ID || seen[sid] || !b.visible(s) {
			continue
		}
		seen[sid] = true
		node.Spouses = append(node.Spouses, &Companion{
			Person:      s,
			Index:       len(node.Spouses) + 1,
			IsReference: b.placed[sid],
		})
		b.companions[sid] = true
	}
}

func (b *hierarchyBuilder) addUnion(node *HierarchyNode, key family.NodeID, spouse *Companion, group int, kids []string) {
	if len(kids) == 0 {
		return
	}
	u := &Union{Key: key, Spouse: spouse, GroupIndex: group}
	node.Unions = append(node.Unions, u)

	switch {
	case spouse != nil && b.placed[spouse.Person.ID]:
		u.Shared = true
		return
	case b.collapsed[key.String()]:
		u.Collapsed = true
		return
	}

	sortByBirthYear(b.people, kids)
	for _, kid := range kids {
		child := b.build(kid, node, group, key.Other, node.Depth+1)
		if child == nil {
			continue
		}
		u.Children = append(u.Children, child)
		node.Children = append(node.Children, child)
	}
}

func sortByBirthYear(people family.People, ids []string) {
	slices.SortStableFunc(ids, func(a, b string) int {
		return people[a].BirthYear() - people[b].BirthYear()
	})
}
