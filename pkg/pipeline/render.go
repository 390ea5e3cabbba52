package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/lineage/pkg/graph"
	"github.com/matzehuels/lineage/pkg/layout"
	"github.com/matzehuels/lineage/pkg/render"
)

// Render generates output artifacts in the requested formats. Force charts
// are drawn by Graphviz fdp starting from the engine's seeded positions;
// every other chart is drawn from its computed geometry.
func Render(ctx context.Context, res layout.Result, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte)
	var svg []byte

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG, FormatPNG, FormatPDF:
			if svg == nil {
				if svg, err = renderSVG(ctx, res, opts); err != nil {
					return nil, fmt.Errorf("render %s: %w", format, err)
				}
			}
			switch format {
			case FormatSVG:
				data = svg
			case FormatPNG:
				data, err = render.ToPNG(ctx, svg, PNGScale)
			case FormatPDF:
				data, err = render.ToPDF(ctx, svg)
			}
		case FormatDOT:
			data = []byte(render.ToDOT(res, render.DOTOptions{Pin: !opts.IsForce(), Years: true}))
		case FormatJSON:
			data, err = graph.MarshalResult(res)
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

func renderSVG(ctx context.Context, res layout.Result, opts Options) ([]byte, error) {
	if opts.IsForce() {
		return render.RenderGraphviz(ctx, render.ToDOT(res, render.DOTOptions{Years: true}))
	}
	m := layout.MetricsFor(opts.Settings, opts.People)
	return render.RenderSVG(res, render.WithNodeSize(m.NodeWidth, m.NodeHeight), render.WithTitle(title(opts))), nil
}

func title(opts Options) string {
	focus := opts.People.Get(opts.People.ResolveFocus(opts.FocusID))
	if focus == nil {
		return string(opts.Settings.ChartType)
	}
	return fmt.Sprintf("%s chart: %s", opts.Settings.ChartType, focus.DisplayName())
}
