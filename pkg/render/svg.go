package render

import (
	"bytes"
	"fmt"
	"math"

	"github.com/matzehuels/lineage/pkg/layout"
)

const (
	defaultPadding     = 40.0
	collapseRadius     = 8.0
	fanLabelMinSpan    = 0.08
	fullCircle         = 2 * math.Pi
	fullCircleEpsilon  = 1e-9
	placeholderFill    = "#f2f2f2"
	defaultFill        = "#eeeeee"
	strokeColor        = "#555555"
	linkColor          = "#888888"
	collapsedFill      = "#555555"
	expandedFill       = "#ffffff"
	referenceDashArray = "6,4"
)

var roleFills = map[layout.Role]string{
	layout.RoleFocus:      "#f6c453",
	layout.RoleParent:     "#9ecae1",
	layout.RoleChild:      "#a1d99b",
	layout.RoleSibling:    "#c6dbef",
	layout.RoleAncestor:   "#dadaeb",
	layout.RoleDescendant: "#c7e9c0",
	layout.RoleSpouse:     "#fdd0a2",
}

// fanFills cycles by ring depth.
var fanFills = []string{"#f6c453", "#9ecae1", "#a1d99b", "#fdd0a2", "#dadaeb", "#c6dbef"}

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	nodeWidth  float64
	nodeHeight float64
	padding    float64
	title      string
}

// WithNodeSize sets the person box size. Use [layout.MetricsFor] so boxes
// match the spacing the engine laid out.
func WithNodeSize(w, h float64) SVGOption {
	return func(r *svgRenderer) { r.nodeWidth, r.nodeHeight = w, h }
}

// WithPadding sets the margin around the drawing.
func WithPadding(p float64) SVGOption { return func(r *svgRenderer) { r.padding = p } }

// WithTitle adds a <title> element.
func WithTitle(t string) SVGOption { return func(r *svgRenderer) { r.title = t } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{
		nodeWidth:  layout.DefaultNodeWidth,
		nodeHeight: layout.DefaultNodeHeight,
		padding:    defaultPadding,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG draws a computed chart. Links are drawn first, then fan arcs,
// collapse toggles and person boxes, so boxes sit on top of lines.
func RenderSVG(res layout.Result, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	minX, minY, maxX, maxY := r.bounds(res)
	w, h := maxX-minX, maxY-minY

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.1f %.1f %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		minX, minY, w, h, w, h)
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escapeXML(r.title))
	}
	buf.WriteString(`  <style>text { font-family: sans-serif; fill: #222; } .years { fill: #555; }</style>` + "\n")

	positions := make(map[string]layout.Point, len(res.Nodes))
	for _, n := range res.Nodes {
		positions[n.ID.String()] = layout.Point{X: n.X, Y: n.Y}
	}

	buf.WriteString(`  <g class="links">` + "\n")
	for _, l := range res.Links {
		r.renderLink(&buf, l, positions)
	}
	buf.WriteString("  </g>\n")

	if len(res.FanArcs) > 0 {
		buf.WriteString(`  <g class="fan">` + "\n")
		for _, a := range res.FanArcs {
			r.renderArc(&buf, a)
		}
		buf.WriteString("  </g>\n")
	}

	if len(res.CollapsePoints) > 0 {
		buf.WriteString(`  <g class="collapse">` + "\n")
		for _, c := range res.CollapsePoints {
			renderCollapsePoint(&buf, c)
		}
		buf.WriteString("  </g>\n")
	}

	buf.WriteString(`  <g class="nodes">` + "\n")
	for _, n := range res.Nodes {
		r.renderNode(&buf, n)
	}
	buf.WriteString("  </g>\n")

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// bounds returns the padded drawing extent. An empty result yields a
// padding-sized canvas around the origin.
func (r svgRenderer) bounds(res layout.Result) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	grow := func(x0, y0, x1, y1 float64) {
		minX, minY = min(minX, x0), min(minY, y0)
		maxX, maxY = max(maxX, x1), max(maxY, y1)
	}
	hw, hh := r.nodeWidth/2, r.nodeHeight/2
	for _, n := range res.Nodes {
		grow(n.X-hw, n.Y-hh, n.X+hw, n.Y+hh)
	}
	for _, c := range res.CollapsePoints {
		grow(c.X-collapseRadius, c.Y-collapseRadius, c.X+collapseRadius, c.Y+collapseRadius)
	}
	for _, a := range res.FanArcs {
		grow(-a.OuterRadius, -a.OuterRadius, a.OuterRadius, a.OuterRadius)
	}
	if math.IsInf(minX, 1) {
		minX, minY, maxX, maxY = 0, 0, 0, 0
	}
	return minX - r.padding, minY - r.padding, maxX + r.padding, maxY + r.padding
}

func (r svgRenderer) renderLink(buf *bytes.Buffer, l layout.TreeLink, positions map[string]layout.Point) {
	from, ok := positions[l.Source.String()]
	if l.Origin != nil {
		from, ok = *l.Origin, true
	}
	to, found := positions[l.Target.String()]
	if l.Terminal != nil {
		to, found = *l.Terminal, true
	}
	if !ok || !found {
		return
	}
	if l.Type == layout.LinkMarriage {
		fmt.Fprintf(buf, `    <line class="marriage" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="2" stroke-dasharray="4,3"/>`+"\n",
			from.X, from.Y, to.X, to.Y, linkColor)
		return
	}
	fmt.Fprintf(buf, `    <path class="descent" d="%s" fill="none" stroke="%s" stroke-width="1.5"/>`+"\n",
		curve(from, to), linkColor)
}

// curve bends along the dominant axis so vertical and horizontal charts
// both get S-shaped connectors.
func curve(from, to layout.Point) string {
	if math.Abs(to.X-from.X) > math.Abs(to.Y-from.Y) {
		mx := (from.X + to.X) / 2
		return fmt.Sprintf("M%.2f,%.2f C%.2f,%.2f %.2f,%.2f %.2f,%.2f", from.X, from.Y, mx, from.Y, mx, to.Y, to.X, to.Y)
	}
	my := (from.Y + to.Y) / 2
	return fmt.Sprintf("M%.2f,%.2f C%.2f,%.2f %.2f,%.2f %.2f,%.2f", from.X, from.Y, from.X, my, to.X, my, to.X, to.Y)
}

func (r svgRenderer) renderNode(buf *bytes.Buffer, n layout.TreeNode) {
	fill, ok := roleFills[n.Role]
	if !ok {
		fill = defaultFill
	}
	dash := ""
	if n.IsReference {
		dash = fmt.Sprintf(` stroke-dasharray="%s"`, referenceDashArray)
	}
	x, y := n.X-r.nodeWidth/2, n.Y-r.nodeHeight/2
	fmt.Fprintf(buf, `    <g class="node role-%s" id="node-%s">`+"\n", n.Role, escapeXML(n.ID.String()))
	fmt.Fprintf(buf, `      <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="6" fill="%s" stroke="%s"%s/>`+"\n",
		x, y, r.nodeWidth, r.nodeHeight, fill, strokeColor, dash)

	if n.Person != nil {
		name := n.Person.DisplayName()
		size := fontSize(r.nodeWidth, len([]rune(name)))
		years := lifespan(n.Person)
		nameY := n.Y
		if years != "" {
			nameY -= size * 0.4
		}
		fmt.Fprintf(buf, `      <text x="%.2f" y="%.2f" font-size="%.1f" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
			n.X, nameY, size, escapeXML(truncate(name, r.nodeWidth, size)))
		if years != "" {
			fmt.Fprintf(buf, `      <text class="years" x="%.2f" y="%.2f" font-size="%.1f" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
				n.X, n.Y+size*0.8, size*0.8, escapeXML(years))
		}
	}
	buf.WriteString("    </g>\n")
}

func renderCollapsePoint(buf *bytes.Buffer, c layout.CollapsePoint) {
	fill, sign := expandedFill, "-"
	if c.IsCollapsed {
		fill, sign = collapsedFill, "+"
	}
	fmt.Fprintf(buf, `    <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s"/>`+"\n",
		c.Origin.X, c.Origin.Y, c.X, c.Y, linkColor)
	fmt.Fprintf(buf, `    <circle id="collapse-%s" cx="%.2f" cy="%.2f" r="%.1f" fill="%s" stroke="%s"><title>%s</title></circle>`+"\n",
		escapeXML(c.ID.String()), c.X, c.Y, collapseRadius, fill, strokeColor, sign)
}

func (r svgRenderer) renderArc(buf *bytes.Buffer, a layout.FanArc) {
	fill := fanFills[a.Depth%len(fanFills)]
	if a.Person != nil && a.Person.Placeholder {
		fill = placeholderFill
	}
	fmt.Fprintf(buf, `    <path id="arc-%s" d="%s" fill="%s" fill-rule="evenodd" stroke="#ffffff" stroke-width="1"/>`+"\n",
		escapeXML(a.ID.String()), annularSector(a.InnerRadius, a.OuterRadius, a.StartAngle, a.EndAngle), fill)

	if a.Person == nil || a.Person.Placeholder || a.EndAngle-a.StartAngle < fanLabelMinSpan {
		return
	}
	mid := (a.StartAngle + a.EndAngle) / 2
	radius := (a.InnerRadius + a.OuterRadius) / 2
	if a.InnerRadius == 0 {
		radius = 0
	}
	p := polar(radius, mid)
	width := a.OuterRadius - a.InnerRadius
	if a.InnerRadius == 0 {
		width = 2 * a.OuterRadius
	}
	name := a.Person.DisplayName()
	size := fontSize(width, len([]rune(name)))
	fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" font-size="%.1f" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
		p.X, p.Y, size, escapeXML(truncate(name, width, size)))
}

// polar maps an angle measured clockwise from twelve o'clock.
func polar(radius, angle float64) layout.Point {
	return layout.Point{X: radius * math.Sin(angle), Y: -radius * math.Cos(angle)}
}

// annularSector returns the path of a ring segment. A zero inner radius
// gives a pie slice; a full-circle span is split in two half arcs since a
// single SVG arc cannot close on itself.
func annularSector(inner, outer, start, end float64) string {
	if end-start >= fullCircle-fullCircleEpsilon {
		mid := start + math.Pi
		o0, o1 := polar(outer, start), polar(outer, mid)
		d := fmt.Sprintf("M%.2f,%.2f A%.2f,%.2f 0 1 1 %.2f,%.2f A%.2f,%.2f 0 1 1 %.2f,%.2f Z",
			o0.X, o0.Y, outer, outer, o1.X, o1.Y, outer, outer, o0.X, o0.Y)
		if inner > 0 {
			i0, i1 := polar(inner, start), polar(inner, mid)
			d += fmt.Sprintf(" M%.2f,%.2f A%.2f,%.2f 0 1 0 %.2f,%.2f A%.2f,%.2f 0 1 0 %.2f,%.2f Z",
				i0.X, i0.Y, inner, inner, i1.X, i1.Y, inner, inner, i0.X, i0.Y)
		}
		return d
	}

	large := 0
	if end-start > math.Pi {
		large = 1
	}
	o0, o1 := polar(outer, start), polar(outer, end)
	if inner <= 0 {
		return fmt.Sprintf("M0,0 L%.2f,%.2f A%.2f,%.2f 0 %d 1 %.2f,%.2f Z",
			o0.X, o0.Y, outer, outer, large, o1.X, o1.Y)
	}
	i0, i1 := polar(inner, start), polar(inner, end)
	return fmt.Sprintf("M%.2f,%.2f A%.2f,%.2f 0 %d 1 %.2f,%.2f L%.2f,%.2f A%.2f,%.2f 0 %d 0 %.2f,%.2f Z",
		o0.X, o0.Y, outer, outer, large, o1.X, o1.Y, i1.X, i1.Y, inner, inner, large, i0.X, i0.Y)
}
