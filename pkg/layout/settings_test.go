package layout

import (
	"math"
	"testing"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/family"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if s.ChartType != ChartDescendant || s.LayoutMode != ModeVertical {
		t.Errorf("DefaultSettings() chart/mode = %s/%s, want descendant/vertical", s.ChartType, s.LayoutMode)
	}
	if s.TimeScaleFactor != DefaultTimeScaleFactor || s.GenerationLimit != DefaultGenerationLimit {
		t.Errorf("DefaultSettings() scale/limit = %v/%d", s.TimeScaleFactor, s.GenerationLimit)
	}
	if !s.ShowsDeceased() {
		t.Error("DefaultSettings() should show deceased")
	}
	if err := s.Validate(); err != nil {
		t.Errorf("DefaultSettings().Validate() error: %v", err)
	}
}

func TestSettingsNormalizeKeepsValues(t *testing.T) {
	hide := false
	s := Settings{ChartType: ChartFan, NodeSpacingX: 10, GenerationLimit: 3, ShowDeceased: &hide}
	s.Normalize()
	s.Normalize()

	if s.ChartType != ChartFan || s.NodeSpacingX != 10 || s.GenerationLimit != 3 {
		t.Errorf("Normalize() overwrote explicit values: %+v", s)
	}
	if s.ShowsDeceased() {
		t.Error("Normalize() should keep showDeceased = false")
	}
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Settings)
		code   errors.Code
	}{
		{"valid", func(*Settings) {}, ""},
		{"unknown chart", func(s *Settings) { s.ChartType = "spiral" }, errors.ErrCodeInvalidChartType},
		{"unknown mode", func(s *Settings) { s.LayoutMode = "diagonal" }, errors.ErrCodeInvalidLayoutMode},
		{"NaN spacing", func(s *Settings) { s.NodeSpacingX = math.NaN() }, errors.ErrCodeInvalidSettings},
		{"infinite scale", func(s *Settings) { s.TimeScaleFactor = math.Inf(1) }, errors.ErrCodeInvalidSettings},
		{"negative width", func(s *Settings) { s.NodeWidth = -1 }, errors.ErrCodeInvalidSettings},
		{"zero generations", func(s *Settings) { s.GenerationLimit = 0 }, errors.ErrCodeInvalidSettings},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.modify(&s)
			err := s.Validate()
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("Validate() code = %q, want %q (err %v)", got, tt.code, err)
			}
		})
	}
}

func TestMetricsFor(t *testing.T) {
	people := family.People{
		"a": {ID: "a", FirstName: "Al"},
		"b": {ID: "b", FirstName: "Maximiliane", LastName: "Oberhausen-Wittelsbach"},
	}

	tests := []struct {
		name   string
		modify func(*Settings)
		check  func(t *testing.T, m Metrics)
	}{
		{
			name:   "defaults",
			modify: func(*Settings) {},
			check: func(t *testing.T, m Metrics) {
				if m.NodeWidth != DefaultNodeWidth || m.NodeHeight != DefaultNodeHeight {
					t.Errorf("size = %vx%v, want default", m.NodeWidth, m.NodeHeight)
				}
				if m.SpacingX != DefaultNodeSpacingX || m.SpacingY != DefaultNodeSpacingY {
					t.Errorf("spacing = %v/%v, want default", m.SpacingX, m.SpacingY)
				}
			},
		},
		{
			name:   "compact clamps long names",
			modify: func(s *Settings) { s.IsCompact = true },
			check: func(t *testing.T, m Metrics) {
				if m.NodeWidth != compactMaxWidth {
					t.Errorf("NodeWidth = %v, want %v", m.NodeWidth, compactMaxWidth)
				}
				if m.NodeHeight != compactNodeHeight || m.SpacingX != DefaultNodeSpacingX/2 {
					t.Errorf("compact height/spacing = %v/%v", m.NodeHeight, m.SpacingX)
				}
			},
		},
		{
			name:   "explicit width wins",
			modify: func(s *Settings) { s.IsCompact = true; s.NodeWidth = 200 },
			check: func(t *testing.T, m Metrics) {
				if m.NodeWidth != 200 {
					t.Errorf("NodeWidth = %v, want 200", m.NodeWidth)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.modify(&s)
			tt.check(t, MetricsFor(s, people))
		})
	}
}

func TestCompactWidthMinimum(t *testing.T) {
	people := family.People{"a": {ID: "a", FirstName: "Al"}}
	if got := compactWidth(people); got != compactMinWidth {
		t.Errorf("compactWidth() = %v, want %v", got, compactMinWidth)
	}
}
