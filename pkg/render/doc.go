// Package render turns computed chart geometry into images.
//
// # Overview
//
// The layout engines in [github.com/matzehuels/lineage/pkg/layout] produce
// positions only. This package draws them:
//
//   - [RenderSVG] draws descendant, pedigree and fan charts directly from a
//     [layout.Result]: person boxes, descent and marriage lines, collapse
//     toggles and fan-chart ring segments.
//   - [ToDOT] exports the same nodes and links as a Graphviz graph, and
//     [RenderGraphviz] runs the Graphviz fdp engine over it. Force charts
//     use this path: the engine supplies seeded start positions and links,
//     fdp supplies the simulation.
//   - [ToPDF] and [ToPNG] convert any SVG through rsvg-convert.
//
// # Usage
//
//	res := layout.Compute(people, focus, settings, nil)
//	m := layout.MetricsFor(settings, people)
//	svg := render.RenderSVG(res, render.WithNodeSize(m.NodeWidth, m.NodeHeight))
//
// For force charts:
//
//	dot := render.ToDOT(res, render.DOTOptions{})
//	svg, err := render.RenderGraphviz(ctx, dot)
//
// # Coordinates
//
// Node coordinates are box centres in screen space (y grows downward).
// Fan-chart angles start at twelve o'clock and run clockwise, so a point at
// angle a and radius r sits at (r·sin a, −r·cos a).
package render
