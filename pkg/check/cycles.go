package check

import (
	"slices"

	"github.com/matzehuels/lineage/pkg/family"
)

type dfsFrame struct {
	id   string
	next int // index into the person's Parents
}

// findCycles reports every person that is their own ancestor.
//
// A person is their own ancestor exactly when they share a strongly
// connected component of the parent graph with someone else, or list
// themselves as a parent. Components are found with Tarjan's algorithm on
// an explicit stack: onStack is the current ancestor path, index the
// global visited set. Every member of a cyclic component is flagged, even
// one that is only reachable through an already finished person.
func findCycles(people family.People) []Issue {
	t := &tarjan{
		people:  people,
		index:   make(map[string]int),
		low:     make(map[string]int),
		onStack: make(map[string]bool),
	}
	for _, id := range people.SortedIDs() {
		if _, seen := t.index[id]; !seen {
			t.visit(id)
		}
	}

	var issues []Issue
	for _, component := range t.components {
		if len(component) == 1 && !people[component[0]].HasParent(component[0]) {
			continue
		}
		slices.Sort(component)
		members := make(map[string]bool, len(component))
		for _, id := range component {
			members[id] = true
		}
		for _, id := range component {
			p := people[id]
			issues = append(issues, newIssue(KindCircularReference, SeverityError, id, cycleParent(p, members),
				"circular reference: %s is their own ancestor", p.DisplayName()))
		}
	}
	return issues
}

// cycleParent returns the first parent of p inside its component.
func cycleParent(p *family.Person, members map[string]bool) string {
	for _, id := range p.Parents {
		if members[id] {
			return id
		}
	}
	return ""
}

type tarjan struct {
	people     family.People
	index      map[string]int
	low        map[string]int
	onStack    map[string]bool
	stack      []string
	components [][]string
}

func (t *tarjan) open(id string) {
	n := len(t.index)
	t.index[id] = n
	t.low[id] = n
	t.onStack[id] = true
	t.stack = append(t.stack, id)
}

func (t *tarjan) visit(start string) {
	t.open(start)
	frames := []dfsFrame{{id: start}}

	for len(frames) > 0 {
		top := &frames[len(frames)-1]
		parents := t.people[top.id].Parents
		if top.next < len(parents) {
			parent := parents[top.next]
			top.next++
			if !t.people.Has(parent) {
				continue
			}
			if _, seen := t.index[parent]; !seen {
				t.open(parent)
				frames = append(frames, dfsFrame{id: parent})
			} else if t.onStack[parent] {
				t.low[top.id] = min(t.low[top.id], t.index[parent])
			}
			continue
		}

		id := top.id
		frames = frames[:len(frames)-1]
		if len(frames) > 0 {
			caller := frames[len(frames)-1].id
			t.low[caller] = min(t.low[caller], t.low[id])
		}
		if t.low[id] != t.index[id] {
			continue
		}
		var component []string
		for {
			last := t.stack[len(t.stack)-1]
			t.stack = t.stack[:len(t.stack)-1]
			t.onStack[last] = false
			component = append(component, last)
			if last == id {
				break
			}
		}
		t.components = append(t.components, component)
	}
}
