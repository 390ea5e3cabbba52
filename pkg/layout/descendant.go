package layout

import (
	"github.com/matzehuels/lineage/pkg/family"
)

// LayoutDescendant computes the descendant chart for focusID.
//
// The traversal root is the topmost ancestor of the focus person (see
// [family.FindRoot]); an absent focus falls back to the first person ID.
// Unions listed in collapsedIDs keep their collapse point but lose their
// children. An empty graph yields an empty result, never an error.
func LayoutDescendant(people family.People, focusID string, s Settings, collapsedIDs []string) Result {
	res := NewResult()
	if len(people) == 0 {
		return res
	}
	focus := people.ResolveFocus(focusID)
	root := BuildHierarchy(people, family.FindRoot(people, focus), s, collapsedIDs)
	if root == nil {
		return res
	}

	m := MetricsFor(s, people)
	Solve(root, PodSeparation(m))
	t := NewTransformer(s, m, people, root)
	roles := newRoleResolver(people, focus)

	root.Walk(func(n *HierarchyNode) {
		p := n.Person
		pos := t.Place(n)
		res.Nodes = append(res.Nodes, TreeNode{
			ID:          family.PersonID(p.ID),
			X:           pos.X,
			Y:           pos.Y,
			Person:      p,
			Role:        roles.role(p),
			IsReference: n.IsReference,
		})

		for _, c := range n.Spouses {
			id := family.SpouseBoxID(p.ID, c.Person.ID)
			cpos := t.PlaceCompanion(n, c)
			res.Nodes = append(res.Nodes, TreeNode{
				ID:          id,
				X:           cpos.X,
				Y:           cpos.Y,
				Person:      c.Person,
				Role:        RoleSpouse,
				IsReference: c.IsReference,
			})
			res.Links = append(res.Links, TreeLink{
				Source: family.PersonID(p.ID),
				Target: id,
				Type:   LinkMarriage,
			})
		}

		for _, u := range n.Unions {
			if u.Shared {
				continue
			}
			origin, junction := t.Junction(n, u)
			res.CollapsePoints = append(res.CollapsePoints, CollapsePoint{
				ID:          u.Key,
				X:           junction.X,
				Y:           junction.Y,
				Origin:      origin,
				IsCollapsed: u.Collapsed,
			})
			for _, child := range u.Children {
				at := junction
				res.Links = append(res.Links, TreeLink{
					Source: u.Key,
					Target: family.PersonID(child.Person.ID),
					Type:   LinkParentChild,
					Origin: &at,
				})
			}
		}
	})
	return res
}

// roleResolver tags persons relative to the focus person.
type roleResolver struct {
	people    family.People
	focus     *family.Person
	ancestors map[string]bool
}

func newRoleResolver(people family.People, focusID string) *roleResolver {
	return &roleResolver{
		people:    people,
		focus:     people.Get(focusID),
		ancestors: family.Ancestors(people, focusID, MaxPedigreeGenerations),
	}
}

func (r *roleResolver) role(p *family.Person) Role {
	f := r.focus
	switch {
	case f == nil:
		return RoleDescendant
	case p.ID == f.ID:
		return RoleFocus
	case f.HasParent(p.ID):
		return RoleParent
	case p.HasParent(f.ID):
		return RoleChild
	case r.isSibling(p):
		return RoleSibling
	case r.ancestors[p.ID]:
		return RoleAncestor
	}
	return RoleDescendant
}

func (r *roleResolver) isSibling(p *family.Person) bool {
	for _, id := range r.focus.Parents {
		if id != r.focus.ID && r.people.Has(id) && p.HasParent(id) {
			return true
		}
	}
	return false
}
