package family

// MaxRootHops bounds the upward walk performed by [FindRoot].
const MaxRootHops = 50

// FindRoot walks parent links upward from startID and returns the topmost
// ancestor reached. At each step it follows the first parent that is present
// in people. The walk stops after [MaxRootHops] hops, when an ID repeats, or
// when no present parent exists, so it terminates on any input.
//
// Callers are responsible for substituting a present start ID (see
// [People.ResolveFocus]); an absent startID is returned unchanged.
func FindRoot(people People, startID string) string {
	current := startID
	visited := map[string]bool{current: true}
	for range MaxRootHops {
		p := people.Get(current)
		if p == nil {
			return current
		}
		next := firstPresentParent(people, p)
		if next == "" || visited[next] {
			return current
		}
		visited[next] = true
		current = next
	}
	return current
}

func firstPresentParent(people People, p *Person) string {
	for _, id := range p.Parents {
		if people.Has(id) {
			return id
		}
	}
	return ""
}

// Ancestors returns the set of IDs reachable upward from id through present
// parents, excluding id itself unless it is its own ancestor. The walk is
// breadth-first with a visited set and at most maxDepth generations.
func Ancestors(people People, id string, maxDepth int) map[string]bool {
	out := make(map[string]bool)
	frontier := []string{id}
	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		var next []string
		for _, cur := range frontier {
			p := people.Get(cur)
			if p == nil {
				continue
			}
			for _, parent := range p.Parents {
				if !people.Has(parent) || out[parent] {
					continue
				}
				out[parent] = true
				next = append(next, parent)
			}
		}
		frontier = next
	}
	return out
}
