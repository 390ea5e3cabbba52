package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lineage/pkg/cache"
	"github.com/matzehuels/lineage/pkg/check"
	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/family"
	"github.com/matzehuels/lineage/pkg/graph"
	"github.com/matzehuels/lineage/pkg/layout"
	"github.com/matzehuels/lineage/pkg/observability"
)

func testRunner() *Runner {
	return NewRunner(cache.NewMemoryCache(0), nil, log.NewWithOptions(io.Discard, log.Options{}))
}

func testPeople() family.People {
	return family.People{
		"g":  {ID: "g", FirstName: "Otto", BirthDate: "1880", Spouses: []string{"gm"}},
		"gm": {ID: "gm", FirstName: "Frieda", BirthDate: "1884", Spouses: []string{"g"}},
		"p":  {ID: "p", FirstName: "Hans", BirthDate: "1910", Parents: []string{"g", "gm"}},
		"q":  {ID: "q", FirstName: "Ilse", BirthDate: "1912", Parents: []string{"g", "gm"}},
		"c":  {ID: "c", FirstName: "Jan", BirthDate: "1940", Parents: []string{"p"}},
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"dot", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateCollapsedIDs(t *testing.T) {
	tests := []struct {
		ids     []string
		wantErr bool
	}{
		{nil, false},
		{[]string{"a:b", "a:single"}, false},
		{[]string{"a:b", "nocolon"}, true},
		{[]string{":b"}, true},
	}

	for _, tt := range tests {
		err := ValidateCollapsedIDs(tt.ids)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateCollapsedIDs(%v) error = %v, wantErr %v", tt.ids, err, tt.wantErr)
		}
	}
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		wantCode errors.Code
	}{
		{"defaults", Options{People: testPeople()}, ""},
		{"bad chart", Options{Settings: layout.Settings{ChartType: "tree"}}, errors.ErrCodeInvalidChartType},
		{"bad mode", Options{Settings: layout.Settings{LayoutMode: "spiral"}}, errors.ErrCodeInvalidLayoutMode},
		{"nan spacing", Options{Settings: layout.Settings{NodeSpacingX: math.NaN()}}, errors.ErrCodeInvalidSettings},
		{"bad focus", Options{FocusID: "a\x00b"}, errors.ErrCodeInvalidPersonID},
		{"bad collapsed", Options{CollapsedIDs: []string{"x"}}, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if got := errors.GetCode(err); got != tt.wantCode {
				t.Errorf("ValidateAndSetDefaults() code = %q, want %q (err %v)", got, tt.wantCode, err)
			}
		})
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{People: family.People{"a": nil, "b": {}}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error: %v", err)
	}
	if opts.Settings.ChartType != layout.ChartDescendant {
		t.Errorf("ChartType = %q, want %q", opts.Settings.ChartType, layout.ChartDescendant)
	}
	if opts.People.Has("a") {
		t.Error("nil person should be dropped")
	}
	if got := opts.People.Get("b").ID; got != "b" {
		t.Errorf("person ID = %q, want %q", got, "b")
	}
	first := opts.Settings
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("second ValidateAndSetDefaults() error: %v", err)
	}
	if opts.Settings.NodeSpacingX != first.NodeSpacingX || opts.Settings.ChartType != first.ChartType {
		t.Error("ValidateAndSetDefaults() not idempotent")
	}
}

func TestValidateForRenderDefaultsToSVG(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateForRender(); err != nil {
		t.Fatalf("ValidateForRender() error: %v", err)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}
}

func TestRunnerLayoutCaching(t *testing.T) {
	r := testRunner()
	ctx := context.Background()

	opts := Options{People: testPeople(), FocusID: "p"}
	first, hit, err := r.LayoutWithCacheInfo(ctx, &opts)
	if err != nil {
		t.Fatalf("LayoutWithCacheInfo() error: %v", err)
	}
	if hit {
		t.Error("first call should miss the cache")
	}

	again := Options{People: testPeople(), FocusID: "p"}
	second, hit, err := r.LayoutWithCacheInfo(ctx, &again)
	if err != nil {
		t.Fatalf("LayoutWithCacheInfo() error: %v", err)
	}
	if !hit {
		t.Error("second call should hit the cache")
	}
	if len(second.Nodes) != len(first.Nodes) || len(second.Links) != len(first.Links) {
		t.Fatalf("cached result differs: %d/%d nodes", len(second.Nodes), len(first.Nodes))
	}
	// Spouse box IDs come back as plain strings; compare wire forms.
	cached := make(map[string]layout.TreeNode, len(second.Nodes))
	for _, n := range second.Nodes {
		cached[n.ID.String()] = n
	}
	for _, n := range first.Nodes {
		got, ok := cached[n.ID.String()]
		if !ok || got.X != n.X || got.Y != n.Y {
			t.Errorf("cached node %s = %+v, want (%v, %v)", n.ID, got, n.X, n.Y)
		}
	}

	refresh := Options{People: testPeople(), FocusID: "p", Refresh: true}
	if _, hit, _ := r.LayoutWithCacheInfo(ctx, &refresh); hit {
		t.Error("Refresh should bypass the cache")
	}
}

func TestRunnerLayoutCollapsedOrderSharesKey(t *testing.T) {
	r := testRunner()
	ctx := context.Background()

	a := Options{People: testPeople(), FocusID: "g", CollapsedIDs: []string{"p:single", "g:gm"}}
	if _, _, err := r.LayoutWithCacheInfo(ctx, &a); err != nil {
		t.Fatalf("LayoutWithCacheInfo() error: %v", err)
	}
	b := Options{People: testPeople(), FocusID: "g", CollapsedIDs: []string{"g:gm", "p:single"}}
	_, hit, err := r.LayoutWithCacheInfo(ctx, &b)
	if err != nil {
		t.Fatalf("LayoutWithCacheInfo() error: %v", err)
	}
	if !hit {
		t.Error("collapsed set order should not change the cache key")
	}
}

func TestRunnerLayoutCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testRunner().Layout(ctx, Options{People: testPeople()})
	if !errors.Is(err, errors.ErrCodeCanceled) {
		t.Errorf("Layout() error = %v, want CANCELED", err)
	}
}

func TestGenerateLayoutRecoversPanic(t *testing.T) {
	s := layout.Settings{ChartType: layout.ChartFan}
	s.Normalize()

	// A nil person is normally dropped by validation; the fan engine
	// dereferences it.
	res, err := GenerateLayout(Options{People: family.People{"a": nil}, Settings: s})
	if !errors.Is(err, errors.ErrCodeLayoutFailed) {
		t.Fatalf("GenerateLayout() error = %v, want LAYOUT_FAILED", err)
	}
	if !res.IsEmpty() || res.Nodes == nil {
		t.Errorf("GenerateLayout() on panic = %+v, want empty non-nil result", res)
	}
}

func TestHandleLayout(t *testing.T) {
	r := testRunner()
	resp := r.HandleLayout(context.Background(), LayoutRequest{
		RequestID: 7,
		People:    testPeople(),
		FocusID:   "g",
	})

	if resp.Failed() {
		t.Fatalf("HandleLayout() error: %s", resp.Error)
	}
	if resp.RequestID != 7 {
		t.Errorf("RequestID = %d, want 7", resp.RequestID)
	}
	if len(resp.Nodes) == 0 {
		t.Error("HandleLayout() returned no nodes")
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	var wire map[string]any
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	for _, key := range []string{"requestId", "nodes", "links", "collapsePoints", "fanArcs"} {
		if _, ok := wire[key]; !ok {
			t.Errorf("response JSON missing %q", key)
		}
	}
	if _, ok := wire["error"]; ok {
		t.Error("successful response should not carry error")
	}
}

func TestHandleLayoutError(t *testing.T) {
	resp := testRunner().HandleLayout(context.Background(), LayoutRequest{
		RequestID: 3,
		People:    testPeople(),
		Settings:  layout.Settings{ChartType: "sunburst"},
	})

	if !resp.Failed() {
		t.Fatal("HandleLayout() should fail for unknown chart type")
	}
	if resp.RequestID != 3 {
		t.Errorf("RequestID = %d, want 3", resp.RequestID)
	}
	if strings.HasPrefix(resp.Error, string(errors.ErrCodeInvalidChartType)) {
		t.Errorf("Error = %q, want message without code prefix", resp.Error)
	}
	if len(resp.Nodes) != 0 || len(resp.FanArcs) != 0 {
		t.Error("failed response should carry empty geometry")
	}
}

func TestHandleLayoutEmptyPeople(t *testing.T) {
	resp := testRunner().HandleLayout(context.Background(), LayoutRequest{RequestID: 1, FocusID: "anyone"})

	if resp.Failed() {
		t.Fatalf("HandleLayout() error: %s", resp.Error)
	}
	if !resp.IsEmpty() {
		t.Error("empty people should give an empty result")
	}
}

func TestHandleCheck(t *testing.T) {
	people := family.People{
		"a": {ID: "a", Parents: []string{"b"}},
		"b": {ID: "b", Parents: []string{"a"}},
	}
	resp := testRunner().HandleCheck(context.Background(), CheckRequest{People: people})

	if resp.Type != CheckSuccess {
		t.Fatalf("Type = %q, want %q (%s)", resp.Type, CheckSuccess, resp.Error)
	}
	for _, id := range []string{"a", "b"} {
		if len(resp.Errors[id]) == 0 {
			t.Errorf("Errors[%q] empty, want circular reference", id)
		}
	}
}

func TestRunnerCheckCaching(t *testing.T) {
	r := testRunner()
	ctx := context.Background()
	people := family.People{"a": {ID: "a", BirthDate: "1950", DeathDate: "1940"}}

	first, hit, err := r.CheckWithCacheInfo(ctx, &Options{People: people})
	if err != nil || hit {
		t.Fatalf("CheckWithCacheInfo() = hit %v, err %v", hit, err)
	}
	second, hit, err := r.CheckWithCacheInfo(ctx, &Options{People: people})
	if err != nil || !hit {
		t.Fatalf("CheckWithCacheInfo() second = hit %v, err %v", hit, err)
	}
	if !second.Has("a", check.KindDeathBeforeBirth) || first.Count() != second.Count() {
		t.Errorf("cached report = %v, want %v", second, first)
	}
}

func TestRunnerAnalyze(t *testing.T) {
	res, err := testRunner().Analyze(context.Background(), Options{People: testPeople(), FocusID: "c"})
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if res.GraphVersion == "" {
		t.Error("Analyze() GraphVersion empty")
	}
	if res.Stats.PersonCount != 5 {
		t.Errorf("PersonCount = %d, want 5", res.Stats.PersonCount)
	}
	if res.Stats.NodeCount != len(res.Layout.Nodes) || res.Stats.NodeCount == 0 {
		t.Errorf("NodeCount = %d, want %d", res.Stats.NodeCount, len(res.Layout.Nodes))
	}
	if res.Issues == nil {
		t.Error("Analyze() Issues not set")
	}
}

func TestExecute(t *testing.T) {
	res, err := testRunner().Execute(context.Background(), Options{
		People:  testPeople(),
		FocusID: "g",
		Formats: []string{FormatSVG, FormatJSON, FormatDOT},
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if !strings.Contains(string(res.Artifacts[FormatSVG]), "<svg") {
		t.Error("svg artifact missing <svg> tag")
	}
	if !strings.Contains(string(res.Artifacts[FormatDOT]), "graph G") {
		t.Error("dot artifact missing graph declaration")
	}
	decoded, err := graph.UnmarshalResult(res.Artifacts[FormatJSON])
	if err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if len(decoded.Nodes) != len(res.Layout.Nodes) {
		t.Errorf("json artifact nodes = %d, want %d", len(decoded.Nodes), len(res.Layout.Nodes))
	}
}

func TestExecuteInvalidFormat(t *testing.T) {
	_, err := testRunner().Execute(context.Background(), Options{People: testPeople(), Formats: []string{"gif"}})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Execute() error = %v, want INVALID_FORMAT", err)
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	charts []string
	errs   []error
}

func (h *recordingHooks) OnLayoutComplete(_ context.Context, chart string, _ int, _ time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.charts = append(h.charts, chart)
	h.errs = append(h.errs, err)
}

func TestLayoutHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	r := NewRunner(nil, nil, log.NewWithOptions(io.Discard, log.Options{}))
	if _, err := r.Layout(context.Background(), Options{People: testPeople(), Settings: layout.Settings{ChartType: layout.ChartPedigree}}); err != nil {
		t.Fatalf("Layout() error: %v", err)
	}

	if len(hooks.charts) != 1 || hooks.charts[0] != "pedigree" {
		t.Errorf("OnLayoutComplete charts = %v, want [pedigree]", hooks.charts)
	}
	if hooks.errs[0] != nil {
		t.Errorf("OnLayoutComplete err = %v, want nil", hooks.errs[0])
	}
}
