package family

import (
	"slices"
	"strings"
)

// Gender is the binary gender recorded for a person.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// IsMale reports whether g is male. Common single-letter spellings are accepted.
func (g Gender) IsMale() bool {
	switch strings.ToLower(string(g)) {
	case "male", "m":
		return true
	}
	return false
}

// IsFemale reports whether g is female. Common single-letter spellings are accepted.
func (g Gender) IsFemale() bool {
	switch strings.ToLower(string(g)) {
	case "female", "f":
		return true
	}
	return false
}

// Person is a single individual in the family graph.
//
// Only the fields needed for geometry and validation are modelled; richer
// biographical data stays with the caller. Relationship lists are ordered
// and may contain IDs that are absent from the enclosing [People] map.
type Person struct {
	ID         string   `json:"id" yaml:"id"`
	FirstName  string   `json:"firstName,omitempty" yaml:"firstName,omitempty"`
	LastName   string   `json:"lastName,omitempty" yaml:"lastName,omitempty"`
	Gender     Gender   `json:"gender,omitempty" yaml:"gender,omitempty"`
	BirthDate  string   `json:"birthDate,omitempty" yaml:"birthDate,omitempty"`
	DeathDate  string   `json:"deathDate,omitempty" yaml:"deathDate,omitempty"`
	IsDeceased bool     `json:"isDeceased,omitempty" yaml:"isDeceased,omitempty"`
	Parents    []string `json:"parents,omitempty" yaml:"parents,omitempty"`
	Spouses    []string `json:"spouses,omitempty" yaml:"spouses,omitempty"`
	Children   []string `json:"children,omitempty" yaml:"children,omitempty"`

	// Placeholder marks a synthetic person standing in for an unknown
	// ancestor in fan charts. Placeholders never come from input data.
	Placeholder bool `json:"placeholder,omitempty" yaml:"-"`
}

// BirthYear returns the parsed birth year or [UnknownYear].
func (p *Person) BirthYear() int { return ParseYear(p.BirthDate) }

// DeathYear returns the parsed death year or [UnknownYear].
func (p *Person) DeathYear() int { return ParseYear(p.DeathDate) }

// DisplayName returns "First Last", falling back to the ID.
func (p *Person) DisplayName() string {
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name == "" {
		return p.ID
	}
	return name
}

// HasParent reports whether id appears in the person's parent list.
func (p *Person) HasParent(id string) bool { return slices.Contains(p.Parents, id) }

// People is the family graph: persons keyed by ID.
//
// The map is treated as read-only by every engine; layouts and checks
// allocate new output and never mutate the input.
type People map[string]*Person

// Get returns the person with the given ID, or nil when absent.
func (ps People) Get(id string) *Person {
	if ps == nil {
		return nil
	}
	return ps[id]
}

// Has reports whether a person with the given ID is present.
func (ps People) Has(id string) bool { return ps.Get(id) != nil }

// SortedIDs returns the IDs of all present persons in ascending order.
// Nil entries are skipped, like any other absent person.
// Engines iterate in this order so that output is deterministic.
func (ps People) SortedIDs() []string {
	ids := make([]string, 0, len(ps))
	for id, p := range ps {
		if p != nil {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// FirstID returns the smallest present ID in the graph, or "" when there is
// none. It is the conventional fallback focus when the requested focus
// person is absent.
func (ps People) FirstID() string {
	ids := ps.SortedIDs()
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

// ResolveFocus returns focusID when present, otherwise [People.FirstID].
func (ps People) ResolveFocus(focusID string) string {
	if ps.Has(focusID) {
		return focusID
	}
	return ps.FirstID()
}

// Father returns the father-slot parent ID of p: the first present parent
// with male gender, or the first present parent when none is marked male.
func (ps People) Father(p *Person) string {
	first := ""
	for _, id := range p.Parents {
		parent := ps.Get(id)
		if parent == nil || id == p.ID {
			continue
		}
		if parent.Gender.IsMale() {
			return id
		}
		if first == "" {
			first = id
		}
	}
	return first
}

// Mother returns the mother-slot parent ID of p: the first present parent
// with female gender that is not the father, or the first present parent
// that is not the father.
func (ps People) Mother(p *Person, fatherID string) string {
	first := ""
	for _, id := range p.Parents {
		parent := ps.Get(id)
		if parent == nil || id == fatherID || id == p.ID {
			continue
		}
		if parent.Gender.IsFemale() {
			return id
		}
		if first == "" {
			first = id
		}
	}
	return first
}

// OldestBirthYear returns the smallest known birth year among ids, and false
// when none of them has a known year.
func (ps People) OldestBirthYear(ids []string) (int, bool) {
	oldest, found := UnknownYear, false
	for _, id := range ids {
		p := ps.Get(id)
		if p == nil {
			continue
		}
		if y := p.BirthYear(); y != UnknownYear && y < oldest {
			oldest, found = y, true
		}
	}
	return oldest, found
}

// ChildIndex maps each parent ID to the IDs of persons listing it as a
// parent, in ascending child ID order. It lets engines see children that
// the parent's own Children list omits.
func (ps People) ChildIndex() map[string][]string {
	index := make(map[string][]string)
	for _, id := range ps.SortedIDs() {
		seen := make(map[string]bool, len(ps[id].Parents))
		for _, parent := range ps[id].Parents {
			if parent == id || seen[parent] {
				continue
			}
			seen[parent] = true
			index[parent] = append(index[parent], id)
		}
	}
	return index
}

// ChildrenOf returns the present children of p: first its own Children
// list in order, then any further persons from index that list p as a
// parent. Duplicates, self-references and absent IDs are dropped.
func (ps People) ChildrenOf(p *Person, index map[string][]string) []string {
	seen := map[string]bool{p.ID: true}
	var out []string
	add := func(id string) {
		if seen[id] || !ps.Has(id) {
			return
		}
		seen[id] = true
		out = append(out, id)
	}
	for _, id := range p.Children {
		add(id)
	}
	for _, id := range index[p.ID] {
		add(id)
	}
	return out
}
