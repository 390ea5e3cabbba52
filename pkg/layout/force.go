package layout

import (
	"math"
	"math/rand/v2"

	"github.com/matzehuels/lineage/pkg/family"
)

// ForceSeed seeds the jitter of the initial force layout grid. A fixed seed
// keeps repeated requests identical.
const ForceSeed = 42

// PrepareForce emits the initial graph for an external force simulation.
// Nodes are laid out on a jittered grid in ID order so that no two start at
// the same point. Links are one parent-child link per present parent and
// one marriage link per unordered spouse pair.
func PrepareForce(people family.People, focusID string, s Settings) Result {
	res := NewResult()
	if len(people) == 0 {
		return res
	}
	m := MetricsFor(s, people)
	roles := newRoleResolver(people, people.ResolveFocus(focusID))
	rng := rand.New(rand.NewPCG(ForceSeed, ForceSeed))

	ids := people.SortedIDs()
	cols := int(math.Ceil(math.Sqrt(float64(len(ids)))))
	cellX, cellY := m.slot(), m.NodeHeight+m.SpacingY
	for i, id := range ids {
		p := people[id]
		x := float64(i%cols)*cellX + (rng.Float64()-0.5)*cellX/2
		y := float64(i/cols)*cellY + (rng.Float64()-0.5)*cellY/2
		res.Nodes = append(res.Nodes, TreeNode{
			ID:     family.PersonID(id),
			X:      finite(x),
			Y:      finite(y),
			Person: p,
			Role:   roles.role(p),
		})
	}

	married := make(map[[2]string]bool)
	for _, id := range ids {
		p := people[id]
		seen := make(map[string]bool, len(p.Parents))
		for _, parent := range p.Parents {
			if parent == id || seen[parent] || !people.Has(parent) {
				continue
			}
			seen[parent] = true
			res.Links = append(res.Links, TreeLink{
				Source: family.PersonID(parent),
				Target: family.PersonID(id),
				Type:   LinkParentChild,
			})
		}
		for _, spouse := range p.Spouses {
			if spouse == id || !people.Has(spouse) {
				continue
			}
			key := [2]string{min(id, spouse), max(id, spouse)}
			if married[key] {
				continue
			}
			married[key] = true
			res.Links = append(res.Links, TreeLink{
				Source: family.PersonID(key[0]),
				Target: family.PersonID(key[1]),
				Type:   LinkMarriage,
			})
		}
	}
	return res
}
