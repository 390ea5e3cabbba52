package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/lineage/pkg/cache"
	"github.com/matzehuels/lineage/pkg/check"
	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/family"
	"github.com/matzehuels/lineage/pkg/graph"
	"github.com/matzehuels/lineage/pkg/layout"
	"github.com/matzehuels/lineage/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// The CLI, the server and the worker share it so caching and error
// handling behave the same everywhere.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs layout → render with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	result := &Result{}

	layoutStart := time.Now()
	res, hit, err := r.LayoutWithCacheInfo(ctx, &opts)
	if err != nil {
		return nil, err
	}
	result.Layout = res
	result.GraphVersion = opts.version
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = hit
	result.fillCounts(opts)

	renderStart := time.Now()
	artifacts, err := r.Render(ctx, res, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Analyze computes the layout and the consistency report concurrently.
func (r *Runner) Analyze(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	// Hash once before the goroutines share opts.
	version, err := opts.GraphVersion()
	if err != nil {
		return nil, err
	}

	result := &Result{GraphVersion: version}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		start := time.Now()
		layoutOpts := opts
		res, hit, err := r.LayoutWithCacheInfo(gctx, &layoutOpts)
		if err != nil {
			return err
		}
		result.Layout = res
		result.Stats.LayoutTime = time.Since(start)
		result.CacheInfo.LayoutHit = hit
		return nil
	})

	g.Go(func() error {
		start := time.Now()
		checkOpts := opts
		report, hit, err := r.CheckWithCacheInfo(gctx, &checkOpts)
		if err != nil {
			return err
		}
		result.Issues = report
		result.Stats.CheckTime = time.Since(start)
		result.CacheInfo.CheckHit = hit
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	result.fillCounts(opts)
	return result, nil
}

// LayoutWithCacheInfo computes a layout with caching and returns cache hit
// info. opts is validated in place.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, opts *Options) (layout.Result, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return layout.NewResult(), false, err
	}
	if err := ctx.Err(); err != nil {
		return layout.NewResult(), false, errors.Wrap(errors.ErrCodeCanceled, err, "layout canceled")
	}
	version, err := opts.GraphVersion()
	if err != nil {
		return layout.NewResult(), false, err
	}
	chart := string(opts.Settings.ChartType)
	cacheKey := r.Keyer.LayoutKey(version, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, ok := r.cacheGet(ctx, "layout", cacheKey); ok {
			cached, err := graph.UnmarshalResult(data)
			if err == nil {
				r.Logger.Debug("layout cache hit", "chart", chart, "focus", opts.FocusID, "cache_hit", true)
				return cached, true, nil
			}
			// If deserialization fails, fall through to recompute
		}
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, chart, len(opts.People))
	start := time.Now()
	res, err := GenerateLayout(*opts)
	duration := time.Since(start)
	hooks.OnLayoutComplete(ctx, chart, len(res.Nodes)+len(res.FanArcs), duration, err)
	if err != nil {
		r.Logger.Error("layout failed", "chart", chart, "focus", opts.FocusID, "err", err)
		return layout.NewResult(), false, err
	}

	r.Logger.Info("computed layout",
		"chart", chart,
		"focus", opts.FocusID,
		"nodes", len(res.Nodes),
		"links", len(res.Links),
		"arcs", len(res.FanArcs),
		"duration", duration,
		"cache_hit", false)
	if res.Truncated {
		r.Logger.Warn("layout truncated at depth limit", "chart", chart, "focus", opts.FocusID)
	}

	if data, err := graph.MarshalResult(res); err == nil {
		r.cacheSet(ctx, "layout", cacheKey, data, cache.LayoutTTL)
	}

	return res, false, nil
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, opts Options) (layout.Result, error) {
	res, _, err := r.LayoutWithCacheInfo(ctx, &opts)
	return res, err
}

// CheckWithCacheInfo runs the consistency checker with caching and returns
// cache hit info. Only People is read from opts.
func (r *Runner) CheckWithCacheInfo(ctx context.Context, opts *Options) (check.Report, bool, error) {
	if !opts.validated {
		opts.People = graph.Normalize(opts.People)
	}
	if err := ctx.Err(); err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeCanceled, err, "check canceled")
	}
	version, err := opts.GraphVersion()
	if err != nil {
		return nil, false, err
	}
	cacheKey := r.Keyer.CheckKey(version)

	if !opts.Refresh {
		if data, ok := r.cacheGet(ctx, "check", cacheKey); ok {
			var cached check.Report
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, true, nil
			}
		}
	}

	hooks := observability.Pipeline()
	hooks.OnCheckStart(ctx, len(opts.People))
	start := time.Now()
	report, err := RunCheck(*opts)
	duration := time.Since(start)
	hooks.OnCheckComplete(ctx, report.Count(), duration, err)
	if err != nil {
		r.Logger.Error("consistency check failed", "err", err)
		return nil, false, err
	}

	r.Logger.Info("checked consistency",
		"people", len(opts.People),
		"issues", report.Count(),
		"errors", report.CountBySeverity(check.SeverityError),
		"duration", duration)

	if data, err := json.Marshal(report); err == nil {
		r.cacheSet(ctx, "check", cacheKey, data, cache.CheckTTL)
	}

	return report, false, nil
}

// Check is a convenience wrapper that calls CheckWithCacheInfo and discards the cache hit info.
func (r *Runner) Check(ctx context.Context, people family.People) (check.Report, error) {
	report, _, err := r.CheckWithCacheInfo(ctx, &Options{People: people})
	return report, err
}

// Render draws a computed layout in the formats named by opts.
func (r *Runner) Render(ctx context.Context, res layout.Result, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		hooks.OnRenderStart(ctx, format)
		start := time.Now()
		one := opts
		one.Formats = []string{format}
		out, err := Render(ctx, res, one)
		hooks.OnRenderComplete(ctx, format, time.Since(start), err)
		if err != nil {
			return nil, err
		}
		artifacts[format] = out[format]
	}
	return artifacts, nil
}

// =============================================================================
// Worker Boundary
// =============================================================================

// HandleLayout answers a worker layout message. It never fails: errors are
// reported in the response with empty geometry.
func (r *Runner) HandleLayout(ctx context.Context, req LayoutRequest) LayoutResponse {
	opts := req.Options()
	res, _, err := r.LayoutWithCacheInfo(ctx, &opts)
	if err != nil {
		r.Logger.Warn("layout request failed", "request_id", req.RequestID, "code", errors.GetCode(err))
	}
	return NewLayoutResponse(req.RequestID, res, err)
}

// HandleCheck answers a consistency-check message.
func (r *Runner) HandleCheck(ctx context.Context, req CheckRequest) CheckResponse {
	report, _, err := r.CheckWithCacheInfo(ctx, &Options{People: req.People})
	if err != nil {
		return CheckResponse{Type: CheckError, Error: errors.UserMessage(err)}
	}
	return CheckResponse{Type: CheckSuccess, Errors: report.Messages()}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) cacheGet(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache read failed", "key", key, "err", err)
		return nil, false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, keyType)
		return data, true
	}
	observability.Cache().OnCacheMiss(ctx, keyType)
	return nil, false
}

func (r *Runner) cacheSet(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

func (res *Result) fillCounts(opts Options) {
	res.Stats.PersonCount = len(opts.People)
	res.Stats.NodeCount = len(res.Layout.Nodes)
	res.Stats.LinkCount = len(res.Layout.Links)
	res.Stats.ArcCount = len(res.Layout.FanArcs)
	res.Stats.IssueCount = res.Issues.Count()
}

// String summarizes the result for log lines.
func (res *Result) String() string {
	return fmt.Sprintf("%d nodes, %d links, %d arcs, %d issues",
		res.Stats.NodeCount, res.Stats.LinkCount, res.Stats.ArcCount, res.Stats.IssueCount)
}
