package layout

import (
	"math"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/family"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// ChartType selects the engine a request is dispatched to.
type ChartType string

const (
	ChartDescendant ChartType = "descendant"
	ChartPedigree   ChartType = "pedigree"
	ChartFan        ChartType = "fan"
	ChartForce      ChartType = "force"
)

// Mode selects the coordinate space for descendant and pedigree charts.
type Mode string

const (
	ModeVertical   Mode = "vertical"
	ModeHorizontal Mode = "horizontal"
	ModeRadial     Mode = "radial"
)

// Default values. Spacing and sizes are in pixels.
const (
	DefaultNodeWidth       = 180.0
	DefaultNodeHeight      = 80.0
	DefaultNodeSpacingX    = 40.0
	DefaultNodeSpacingY    = 120.0
	DefaultTimeScaleFactor = 5.0
	DefaultGenerationLimit = 6

	// SpouseGap is the horizontal gap between a person and a companion box.
	SpouseGap = 20.0

	// MaxPedigreeGenerations bounds pedigree recursion on corrupted data.
	MaxPedigreeGenerations = 50

	// MaxPedigreeNodes bounds pedigree size when heavy pedigree collapse
	// repeats the same ancestors in many branches.
	MaxPedigreeNodes = 4096

	// MaxFanGenerations bounds the fan chart; a full binary ring set at this
	// depth already has 2^10 outer arcs.
	MaxFanGenerations = 10

	compactNodeHeight = 56.0
	compactMinWidth   = 90.0
	compactMaxWidth   = 140.0
	compactCharWidth  = 7.0
	compactPadding    = 24.0
)

// ValidChartTypes is the set of supported chart types.
var ValidChartTypes = map[ChartType]bool{
	ChartDescendant: true,
	ChartPedigree:   true,
	ChartFan:        true,
	ChartForce:      true,
}

// ValidModes is the set of supported layout modes.
var ValidModes = map[Mode]bool{
	ModeVertical:   true,
	ModeHorizontal: true,
	ModeRadial:     true,
}

// =============================================================================
// Settings
// =============================================================================

// Settings is the layout configuration record. Each field has an
// independent effect. JSON names match the worker wire format.
type Settings struct {
	ChartType        ChartType `json:"chartType,omitempty" toml:"chart_type"`
	LayoutMode       Mode      `json:"layoutMode,omitempty" toml:"layout_mode"`
	IsCompact        bool      `json:"isCompact,omitempty" toml:"compact"`
	NodeSpacingX     float64   `json:"nodeSpacingX,omitempty" toml:"node_spacing_x"`
	NodeSpacingY     float64   `json:"nodeSpacingY,omitempty" toml:"node_spacing_y"`
	EnableTimeOffset bool      `json:"enableTimeOffset,omitempty" toml:"time_offset"`
	TimeScaleFactor  float64   `json:"timeScaleFactor,omitempty" toml:"time_scale_factor"`
	GenerationLimit  int       `json:"generationLimit,omitempty" toml:"generation_limit"`
	// ShowDeceased is a pointer so that an absent value means true.
	ShowDeceased *bool   `json:"showDeceased,omitempty" toml:"show_deceased"`
	IsRTL        bool    `json:"isRtl,omitempty" toml:"rtl"`
	NodeWidth    float64 `json:"nodeWidth,omitempty" toml:"node_width"`
}

// DefaultSettings returns settings with every default applied.
func DefaultSettings() Settings {
	s := Settings{}
	s.Normalize()
	return s
}

// Normalize fills zero values with defaults. It is idempotent.
func (s *Settings) Normalize() {
	if s.ChartType == "" {
		s.ChartType = ChartDescendant
	}
	if s.LayoutMode == "" {
		s.LayoutMode = ModeVertical
	}
	if s.NodeSpacingX == 0 {
		s.NodeSpacingX = DefaultNodeSpacingX
	}
	if s.NodeSpacingY == 0 {
		s.NodeSpacingY = DefaultNodeSpacingY
	}
	if s.TimeScaleFactor == 0 {
		s.TimeScaleFactor = DefaultTimeScaleFactor
	}
	if s.GenerationLimit == 0 {
		s.GenerationLimit = DefaultGenerationLimit
	}
	if s.ShowDeceased == nil {
		show := true
		s.ShowDeceased = &show
	}
}

// Validate rejects unknown enum values and non-finite or negative numbers.
// Call Normalize first; zero values are treated as invalid here.
func (s *Settings) Validate() error {
	if !ValidChartTypes[s.ChartType] {
		return errors.New(errors.ErrCodeInvalidChartType,
			"invalid chartType: %q (must be one of: descendant, pedigree, fan, force)", s.ChartType)
	}
	if !ValidModes[s.LayoutMode] {
		return errors.New(errors.ErrCodeInvalidLayoutMode,
			"invalid layoutMode: %q (must be one of: vertical, horizontal, radial)", s.LayoutMode)
	}
	numbers := []struct {
		name  string
		value float64
	}{
		{"nodeSpacingX", s.NodeSpacingX},
		{"nodeSpacingY", s.NodeSpacingY},
		{"timeScaleFactor", s.TimeScaleFactor},
		{"nodeWidth", s.NodeWidth},
	}
	for _, n := range numbers {
		if math.IsNaN(n.value) || math.IsInf(n.value, 0) || n.value < 0 {
			return errors.New(errors.ErrCodeInvalidSettings, "%s must be a finite, non-negative number", n.name)
		}
	}
	if s.GenerationLimit < 1 {
		return errors.New(errors.ErrCodeInvalidSettings, "generationLimit must be at least 1")
	}
	return nil
}

// ShowsDeceased reports whether deceased persons are included.
func (s *Settings) ShowsDeceased() bool { return s.ShowDeceased == nil || *s.ShowDeceased }

// =============================================================================
// Metrics - derived node dimensions
// =============================================================================

// Metrics holds the pixel dimensions derived from settings and the graph.
type Metrics struct {
	NodeWidth  float64
	NodeHeight float64
	SpacingX   float64
	SpacingY   float64
}

// slot is the cross-axis distance between two adjacent single boxes.
func (m Metrics) slot() float64 { return m.NodeWidth + m.SpacingX }

// levelDistance is the generational-axis distance between two generations.
func (m Metrics) levelDistance(mode Mode) float64 {
	if mode == ModeHorizontal {
		return m.NodeWidth + m.SpacingY
	}
	return m.NodeHeight + m.SpacingY
}

// companionStep is the offset between consecutive spouse boxes.
func (m Metrics) companionStep() float64 { return m.NodeWidth + SpouseGap }

// MetricsFor derives node dimensions. An explicit NodeWidth wins; compact
// mode sizes the box from the longest name in people and halves spacing.
func MetricsFor(s Settings, people family.People) Metrics {
	m := Metrics{
		NodeWidth:  DefaultNodeWidth,
		NodeHeight: DefaultNodeHeight,
		SpacingX:   s.NodeSpacingX,
		SpacingY:   s.NodeSpacingY,
	}
	if s.IsCompact {
		m.NodeWidth = compactWidth(people)
		m.NodeHeight = compactNodeHeight
		m.SpacingX /= 2
		m.SpacingY /= 2
	}
	if s.NodeWidth > 0 {
		m.NodeWidth = s.NodeWidth
	}
	return m
}

func compactWidth(people family.People) float64 {
	longest := 0
	for _, p := range people {
		if p == nil {
			continue
		}
		longest = max(longest, len([]rune(p.FirstName))+len([]rune(p.LastName))+1)
	}
	return min(compactMaxWidth, max(compactMinWidth, float64(longest)*compactCharWidth+compactPadding))
}
