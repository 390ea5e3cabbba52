package layout

import "github.com/matzehuels/lineage/pkg/family"

// Compute dispatches to the engine selected by s.ChartType. Settings are
// expected to be normalized; an unknown chart type falls back to the
// descendant chart. Nil entries in people are treated as absent persons.
func Compute(people family.People, focusID string, s Settings, collapsedIDs []string) Result {
	switch s.ChartType {
	case ChartPedigree:
		return LayoutPedigree(people, focusID, s)
	case ChartFan:
		return LayoutFan(people, focusID, s.GenerationLimit, s)
	case ChartForce:
		return PrepareForce(people, focusID, s)
	default:
		return LayoutDescendant(people, focusID, s, collapsedIDs)
	}
}
