// Package pipeline is the dispatch boundary between callers and the chart
// engines.
//
// The CLI, the HTTP server and the background worker all go through a
// [Runner]. It validates requests, dispatches to the engine selected by the
// chart type, converts engine panics into structured errors, and caches
// results keyed by graph version, focus, settings and collapsed set.
//
// # Stages
//
//  1. Layout: compute chart geometry ([layout.Compute])
//  2. Check: run the consistency checker ([check.Check])
//  3. Render: draw the geometry (SVG, PNG, PDF, DOT, JSON)
//
// Each stage can be run on its own, and [Runner.Analyze] runs layout and
// check concurrently.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache.NewMemoryCache(0), nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    People:   people,
//	    FocusID:  "p1",
//	    Settings: layout.Settings{ChartType: layout.ChartFan},
//	    Formats:  []string{pipeline.FormatSVG},
//	})
//	svg := res.Artifacts[pipeline.FormatSVG]
//
// # Worker contract
//
// [LayoutRequest] and [LayoutResponse] are the message shapes exchanged
// with a layout worker; [Runner.HandleLayout] never returns an error and
// reports failures in the response's Error field with empty geometry.
package pipeline

import (
	"time"

	"github.com/matzehuels/lineage/pkg/cache"
	"github.com/matzehuels/lineage/pkg/check"
	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/family"
	"github.com/matzehuels/lineage/pkg/graph"
	"github.com/matzehuels/lineage/pkg/layout"
)

// =============================================================================
// Constants - Single Source of Truth for CLI, API, and Worker
// =============================================================================

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// ValidFormats lists the supported output formats in display order.
var ValidFormats = []string{FormatSVG, FormatPNG, FormatPDF, FormatDOT, FormatJSON}

// PNGScale is the rasterization scale for PNG output.
const PNGScale = 2.0

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
type Options struct {
	People       family.People   `json:"people"`
	FocusID      string          `json:"focusId,omitempty"`
	Settings     layout.Settings `json:"settings"`
	CollapsedIDs []string        `json:"collapsedIds,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`

	// Refresh skips cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	version   string
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Layout is the computed chart geometry.
	Layout layout.Result

	// Issues is the consistency report (only set by Analyze).
	Issues check.Report

	// GraphVersion is the content hash of the input people.
	GraphVersion string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	PersonCount int
	NodeCount   int
	LinkCount   int
	ArcCount    int
	IssueCount  int
	LayoutTime  time.Duration
	CheckTime   time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool
	CheckHit  bool
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	return errors.ValidateFormat(format, ValidFormats...)
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateCollapsedIDs checks every collapsed entry is a union key.
func ValidateCollapsedIDs(ids []string) error {
	for _, id := range ids {
		if err := errors.ValidateUnionKey(id); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults normalizes people and settings and rejects bad
// input. An empty focus ID is allowed; the engines fall back to the first
// person. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.People = graph.Normalize(o.People)
	o.Settings.Normalize()
	if err := o.Settings.Validate(); err != nil {
		return err
	}
	if o.FocusID != "" {
		if err := errors.ValidatePersonID(o.FocusID); err != nil {
			return err
		}
	}
	if err := ValidateCollapsedIDs(o.CollapsedIDs); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForRender validates options and sets the default output format.
func (o *Options) ValidateForRender() error {
	if err := o.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	return ValidateFormats(o.Formats)
}

// GraphVersion returns the content hash of People, computed once.
func (o *Options) GraphVersion() (string, error) {
	if o.version != "" {
		return o.version, nil
	}
	v, err := graph.Version(o.People)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "hash people")
	}
	o.version = v
	return v, nil
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Focus:     o.FocusID,
		Settings:  o.Settings,
		Collapsed: o.CollapsedIDs,
	}
}

// IsForce reports whether the force chart is selected.
func (o *Options) IsForce() bool {
	return o.Settings.ChartType == layout.ChartForce
}
