package layout

import (
	"math"

	"github.com/matzehuels/lineage/pkg/family"
)

// Point is a position in screen space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Role tags a node relative to the focus person.
type Role string

const (
	RoleFocus      Role = "focus"
	RoleSpouse     Role = "spouse"
	RoleParent     Role = "parent"
	RoleChild      Role = "child"
	RoleSibling    Role = "sibling"
	RoleAncestor   Role = "ancestor"
	RoleDescendant Role = "descendant"
)

// LinkType distinguishes descent lines from marriage lines.
type LinkType string

const (
	LinkParentChild LinkType = "parent-child"
	LinkMarriage    LinkType = "marriage"
)

// TreeNode is a positioned person box.
type TreeNode struct {
	ID          family.NodeID  `json:"id"`
	X           float64        `json:"x"`
	Y           float64        `json:"y"`
	Person      *family.Person `json:"person"`
	Role        Role           `json:"role"`
	IsReference bool           `json:"isReference,omitempty"`
}

// TreeLink connects two nodes, or a union junction and a child. Origin and
// Terminal, when set, override the source and target positions; they are
// needed wherever an ID is drawn more than once.
type TreeLink struct {
	Source   family.NodeID `json:"source"`
	Target   family.NodeID `json:"target"`
	Type     LinkType      `json:"type"`
	Origin   *Point        `json:"origin,omitempty"`
	Terminal *Point        `json:"terminal,omitempty"`
}

// CollapsePoint is a toggleable union junction.
type CollapsePoint struct {
	ID          family.NodeID `json:"id"`
	X           float64       `json:"x"`
	Y           float64       `json:"y"`
	Origin      Point         `json:"origin"`
	IsCollapsed bool          `json:"isCollapsed"`
}

// FanArc is one annular segment of a fan chart.
type FanArc struct {
	ID          family.NodeID  `json:"id"`
	Person      *family.Person `json:"person"`
	StartAngle  float64        `json:"startAngle"`
	EndAngle    float64        `json:"endAngle"`
	InnerRadius float64        `json:"innerRadius"`
	OuterRadius float64        `json:"outerRadius"`
	Depth       int            `json:"depth"`
	Value       float64        `json:"value"`
	HasChildren bool           `json:"hasChildren"`
}

// Result is the geometry produced by any engine. Slices are never nil so
// an empty result serializes as empty arrays.
type Result struct {
	Nodes          []TreeNode      `json:"nodes"`
	Links          []TreeLink      `json:"links"`
	CollapsePoints []CollapsePoint `json:"collapsePoints"`
	FanArcs        []FanArc        `json:"fanArcs"`

	// Truncated reports that a depth limit cut the ancestry short, so the
	// chart is partial rather than exhaustive.
	Truncated bool `json:"truncated,omitempty"`
}

// NewResult returns an empty, non-nil result.
func NewResult() Result {
	return Result{
		Nodes:          []TreeNode{},
		Links:          []TreeLink{},
		CollapsePoints: []CollapsePoint{},
		FanArcs:        []FanArc{},
	}
}

// IsEmpty reports whether the result carries no nodes and no arcs.
func (r Result) IsEmpty() bool { return len(r.Nodes) == 0 && len(r.FanArcs) == 0 }

// Node returns the node with the given ID.
func (r Result) Node(id family.NodeID) (TreeNode, bool) {
	for _, n := range r.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return TreeNode{}, false
}

// finite clamps NaN and ±Inf to 0. Every emitted coordinate passes
// through it; NaN in SVG output fails silently.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func finitePoint(p Point) Point { return Point{X: finite(p.X), Y: finite(p.Y)} }
