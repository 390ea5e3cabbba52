package layout

import (
	"math"

	"github.com/matzehuels/lineage/pkg/family"
)

const (
	// yearsPerGeneration estimates a missing birth year in time-offset mode.
	yearsPerGeneration = 25
	// timeScaleBase is the per-year scale divisor: a default 120 px
	// generation gap spreads over 50 years.
	timeScaleBase = 50.0
	jitterModulus = 100.0
	jitterDivisor = 10.0
)

// Transformer maps abstract (x, depth) positions produced by [Solve] into
// screen space for one layout mode.
type Transformer struct {
	mode    Mode
	rtl     bool
	level   float64
	metrics Metrics

	// radial
	minX    float64
	breadth float64

	// time offset
	timeOffset   bool
	oldest       int
	scalePerYear float64
}

// NewTransformer prepares a transformer for the solved hierarchy rooted at
// root. Time offset is only enabled in non-radial modes and only when at
// least one placed person has a known birth year.
func NewTransformer(s Settings, m Metrics, people family.People, root *HierarchyNode) *Transformer {
	t := &Transformer{
		mode:    s.LayoutMode,
		rtl:     s.IsRTL,
		level:   m.levelDistance(s.LayoutMode),
		metrics: m,
	}

	var ids []string
	minX, maxX := math.Inf(1), math.Inf(-1)
	root.Walk(func(n *HierarchyNode) {
		ids = append(ids, n.Person.ID)
		for _, c := range n.Spouses {
			ids = append(ids, c.Person.ID)
		}
		minX = min(minX, n.X-podLeft(n, m))
		maxX = max(maxX, n.X+podRight(n, m))
	})
	if root != nil {
		t.minX = minX
		t.breadth = maxX - minX + m.SpacingX
	}

	if s.EnableTimeOffset && s.LayoutMode != ModeRadial {
		if oldest, ok := people.OldestBirthYear(ids); ok {
			t.timeOffset = true
			t.oldest = oldest
			t.scalePerYear = s.NodeSpacingY / timeScaleBase * (s.TimeScaleFactor / DefaultTimeScaleFactor)
		}
	}
	return t
}

// ToScreen maps an abstract position to screen coordinates. birthYear is
// only consulted in time-offset mode; jitterX is the abstract position the
// same-year jitter is derived from, normally x itself.
func (t *Transformer) ToScreen(x, jitterX float64, depth int, birthYear int) Point {
	if t.mode == ModeRadial {
		return t.radial(x, float64(depth))
	}
	return t.linear(x, t.generational(jitterX, depth, birthYear))
}

// generational returns the position along the generation axis.
func (t *Transformer) generational(jitterX float64, depth int, birthYear int) float64 {
	if !t.timeOffset {
		return float64(depth) * t.level
	}
	if !family.KnownYear(birthYear) {
		birthYear = t.oldest + depth*yearsPerGeneration
	}
	return float64(birthYear-t.oldest)*t.scalePerYear + jitter(jitterX)
}

// jitter is a small deterministic nudge so that same-year siblings do not
// share a generational coordinate. It gives no non-overlap guarantee.
func jitter(x float64) float64 {
	return math.Mod(math.Abs(x), jitterModulus) / jitterDivisor
}

func (t *Transformer) linear(cross, gen float64) Point {
	if t.mode == ModeHorizontal {
		if t.rtl {
			gen = -gen
		}
		return finitePoint(Point{X: gen, Y: cross})
	}
	return finitePoint(Point{X: cross, Y: gen})
}

func (t *Transformer) radial(x, depth float64) Point {
	var angle float64
	if t.breadth > 0 {
		angle = (x - t.minX) / t.breadth * 2 * math.Pi
	}
	var radius float64
	if depth > 0 {
		radius = t.metrics.NodeWidth/2 + depth*t.level
	}
	return finitePoint(Point{X: math.Cos(angle) * radius, Y: math.Sin(angle) * radius})
}

// Place returns the screen position of a primary hierarchy node.
func (t *Transformer) Place(n *HierarchyNode) Point {
	return t.ToScreen(n.X, n.X, n.Depth, n.Person.BirthYear())
}

// PlaceCompanion returns the screen position of a spouse box. Companions
// share the primary's generational coordinate and are offset along the
// cross axis.
func (t *Transformer) PlaceCompanion(n *HierarchyNode, c *Companion) Point {
	offset := companionOffset(c.Index, t.metrics)
	if t.mode == ModeRadial && n.Depth == 0 {
		// The radial centre has no angular extent to offset along.
		return finitePoint(Point{X: offset})
	}
	return t.ToScreen(n.X+offset, n.X, n.Depth, n.Person.BirthYear())
}

// Junction returns the origin (couple midpoint) and the branching point of
// a union. The branching point sits half a generation below the couple.
func (t *Transformer) Junction(n *HierarchyNode, u *Union) (origin, junction Point) {
	x := n.X
	if u.Spouse != nil {
		x += companionOffset(u.Spouse.Index, t.metrics) / 2
	}
	if t.mode == ModeRadial {
		origin = t.radial(x, float64(n.Depth))
		if n.Depth == 0 && u.Spouse != nil {
			origin = finitePoint(Point{X: companionOffset(u.Spouse.Index, t.metrics) / 2})
		}
		return origin, t.radial(x, float64(n.Depth)+0.5)
	}

	gen := t.generational(n.X, n.Depth, n.Person.BirthYear())
	half := t.level / 2
	return t.linear(x, gen), t.linear(x, gen+half)
}
