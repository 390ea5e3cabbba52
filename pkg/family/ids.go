package family

import (
	"encoding/json"
	"fmt"
	"strings"
)

// IDKind distinguishes real person IDs from identifiers synthesized by the
// layout engines.
type IDKind int

const (
	// KindPerson is a real person ID from the input graph.
	KindPerson IDKind = iota
	// KindSpouseBox is a companion box drawn next to a primary person.
	KindSpouseBox
	// KindUnion is a couple (or single parent) junction that children hang from.
	KindUnion
	// KindPlaceholder stands in for an unknown ancestor in fan charts.
	KindPlaceholder
)

// SingleParent is the co-parent component of a union key for children that
// have no co-parent among the person's spouses.
const SingleParent = "single"

// NodeID is a typed identifier for layout output. The zero value is an
// empty person ID.
//
// Person and Other hold the two components: for a spouse box they are the
// primary person and the spouse, for a union the person and the co-parent
// (or [SingleParent]), for a placeholder the child and the parent slot.
type NodeID struct {
	Kind   IDKind
	Person string
	Other  string
}

// PersonID returns the ID of a real person.
func PersonID(id string) NodeID { return NodeID{Kind: KindPerson, Person: id} }

// SpouseBoxID returns the ID of the companion box for spouse next to person.
func SpouseBoxID(person, spouse string) NodeID {
	return NodeID{Kind: KindSpouseBox, Person: person, Other: spouse}
}

// UnionID returns the union key for person and co-parent.
// Pass [SingleParent] for children without a co-parent.
func UnionID(person, coParent string) NodeID {
	return NodeID{Kind: KindUnion, Person: person, Other: coParent}
}

// PlaceholderID returns the ID of a synthetic ancestor in the given slot
// ("father" or "mother") above child.
func PlaceholderID(child, slot string) NodeID {
	return NodeID{Kind: KindPlaceholder, Person: child, Other: slot}
}

// IsSingle reports whether a union key refers to a single-parent group.
func (id NodeID) IsSingle() bool { return id.Kind == KindUnion && id.Other == SingleParent }

// String renders the wire form of the ID:
//
//	person       <id>
//	spouse box   spouse-<person>-<spouse>
//	union        <person>:<spouse|single>
//	placeholder  placeholder-<child>-<slot>
func (id NodeID) String() string {
	switch id.Kind {
	case KindSpouseBox:
		return "spouse-" + id.Person + "-" + id.Other
	case KindUnion:
		return id.Person + ":" + id.Other
	case KindPlaceholder:
		return "placeholder-" + id.Person + "-" + id.Other
	default:
		return id.Person
	}
}

// MarshalJSON encodes the ID as its wire string.
func (id NodeID) MarshalJSON() ([]byte, error) { return json.Marshal(id.String()) }

// UnmarshalJSON decodes a wire string. Strings containing a colon are read
// as union keys; everything else is treated as a person ID because the
// spouse and placeholder prefixes cannot be split unambiguously.
func (id *NodeID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if key, err := ParseUnionKey(s); err == nil {
		*id = key
		return nil
	}
	*id = PersonID(s)
	return nil
}

// ParseUnionKey parses "<person>:<co-parent>". The split happens at the
// last colon so person IDs may themselves contain colons.
func ParseUnionKey(s string) (NodeID, error) {
	i := strings.LastIndex(s, ":")
	if i <= 0 || i == len(s)-1 {
		return NodeID{}, fmt.Errorf("invalid union key %q", s)
	}
	return UnionID(s[:i], s[i+1:]), nil
}
