package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/lineage/pkg/layout"
)

// DOTOptions configures Graphviz export.
type DOTOptions struct {
	// Pin marks node positions as fixed ("pos=x,y!"), so fdp keeps the
	// computed geometry instead of simulating from it.
	Pin bool
	// Years appends the lifespan line to node labels.
	Years bool
}

// ToDOT converts chart geometry to an undirected Graphviz graph for the
// fdp engine. Node positions become start positions; descent links become
// edges and marriage links dashed edges. Links whose endpoints are not
// both nodes (union junctions) are dropped.
func ToDOT(res layout.Result, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=fdp;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	ids := make(map[string]bool, len(res.Nodes))
	for _, n := range res.Nodes {
		id := n.ID.String()
		ids[id] = true
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(nodeAttrs(n, opts), ", "))
	}

	buf.WriteString("\n")
	for _, l := range res.Links {
		src, dst := l.Source.String(), l.Target.String()
		if !ids[src] || !ids[dst] {
			continue
		}
		if l.Type == layout.LinkMarriage {
			fmt.Fprintf(&buf, "  %q -- %q [style=dashed];\n", src, dst)
			continue
		}
		fmt.Fprintf(&buf, "  %q -- %q;\n", src, dst)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n layout.TreeNode, opts DOTOptions) []string {
	label := n.ID.String()
	if n.Person != nil {
		label = n.Person.DisplayName()
		if years := lifespan(n.Person); opts.Years && years != "" {
			label += "\n" + years
		}
	}
	pin := ""
	if opts.Pin {
		pin = "!"
	}
	// Graphviz y grows upward.
	attrs := []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("pos=\"%.2f,%.2f%s\"", n.X, -n.Y, pin),
	}
	if fill, ok := roleFills[n.Role]; ok {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fill))
	}
	if n.IsReference {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	}
	return attrs
}

// RenderGraphviz lays out a DOT graph with fdp and renders it to SVG.
func RenderGraphviz(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.FDP)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with a
// pixel-sized one anchored at the origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(header))
}
