package render

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/matzehuels/lineage/pkg/family"
	"github.com/matzehuels/lineage/pkg/layout"
)

func samplePeople() family.People {
	return family.People{
		"dad": {ID: "dad", FirstName: "Karl", LastName: "Weber", Gender: family.GenderMale, BirthDate: "1901", DeathDate: "1980", Spouses: []string{"mom"}},
		"mom": {ID: "mom", FirstName: "Anna", LastName: "Weber", Gender: family.GenderFemale, BirthDate: "1905", Spouses: []string{"dad"}},
		"kid": {ID: "kid", FirstName: "Lena", LastName: "Weber", BirthDate: "1930", Parents: []string{"dad", "mom"}},
	}
}

func TestRenderSVG_Empty(t *testing.T) {
	svg := string(RenderSVG(layout.NewResult()))

	if !strings.HasPrefix(svg, "<svg") {
		t.Error("RenderSVG() output missing <svg> tag")
	}
	if !strings.Contains(svg, `viewBox="-40.0 -40.0 80.0 80.0"`) {
		t.Errorf("RenderSVG() empty viewBox wrong: %s", svg)
	}
	if strings.Contains(svg, "<rect") {
		t.Error("RenderSVG() empty result should draw no boxes")
	}
}

func TestRenderSVG_Descendant(t *testing.T) {
	people := samplePeople()
	s := layout.DefaultSettings()
	res := layout.Compute(people, "dad", s, nil)
	m := layout.MetricsFor(s, people)

	svg := string(RenderSVG(res, WithNodeSize(m.NodeWidth, m.NodeHeight), WithTitle("Weber & family")))

	if got := strings.Count(svg, "<rect"); got != len(res.Nodes) {
		t.Errorf("RenderSVG() rects = %d, want %d", got, len(res.Nodes))
	}
	for _, want := range []string{"Karl Weber", "1901-1980", "b. 1905", `class="marriage"`, `class="descent"`, "Weber &amp; family"} {
		if !strings.Contains(svg, want) {
			t.Errorf("RenderSVG() output missing %q", want)
		}
	}
	if !strings.Contains(svg, `id="collapse-dad:mom"`) {
		t.Error("RenderSVG() output missing collapse toggle")
	}
	if strings.Contains(svg, "NaN") || strings.Contains(svg, "Inf") {
		t.Error("RenderSVG() output contains non-finite numbers")
	}
}

func TestRenderSVG_Reference(t *testing.T) {
	res := layout.NewResult()
	res.Nodes = append(res.Nodes, layout.TreeNode{
		ID:          family.PersonID("x"),
		Person:      &family.Person{ID: "x"},
		Role:        layout.RoleDescendant,
		IsReference: true,
	})

	svg := string(RenderSVG(res))

	if !strings.Contains(svg, referenceDashArray) {
		t.Error("RenderSVG() reference node missing dashed outline")
	}
}

func TestRenderSVG_Fan(t *testing.T) {
	res := layout.LayoutFan(samplePeople(), "kid", 3, layout.DefaultSettings())

	svg := string(RenderSVG(res))

	if got := strings.Count(svg, `<path id="arc-`); got != len(res.FanArcs) {
		t.Errorf("RenderSVG() arcs = %d, want %d", got, len(res.FanArcs))
	}
	if !strings.Contains(svg, placeholderFill) {
		t.Error("RenderSVG() fan missing placeholder fill")
	}
}

func TestAnnularSector(t *testing.T) {
	tests := []struct {
		name         string
		inner, outer float64
		start, end   float64
		wantPrefix   string
		wantArcs     int
	}{
		{"pie", 0, 90, 0, math.Pi / 2, "M0,0 L", 1},
		{"ring segment", 90, 170, 0, math.Pi, "M0.00,-170.00", 2},
		{"full disc", 0, 90, 0, 2 * math.Pi, "M0.00,-90.00", 2},
		{"full ring", 90, 170, 0, 2 * math.Pi, "M0.00,-170.00", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := annularSector(tt.inner, tt.outer, tt.start, tt.end)
			if !strings.HasPrefix(d, tt.wantPrefix) {
				t.Errorf("annularSector() = %q, want prefix %q", d, tt.wantPrefix)
			}
			if got := strings.Count(d, "A"); got != tt.wantArcs {
				t.Errorf("annularSector() arcs = %d, want %d", got, tt.wantArcs)
			}
		})
	}
}

func TestPolar(t *testing.T) {
	tests := []struct {
		angle float64
		want  layout.Point
	}{
		{0, layout.Point{X: 0, Y: -10}},
		{math.Pi / 2, layout.Point{X: 10, Y: 0}},
		{math.Pi, layout.Point{X: 0, Y: 10}},
	}

	for _, tt := range tests {
		got := polar(10, tt.angle)
		if math.Abs(got.X-tt.want.X) > 1e-9 || math.Abs(got.Y-tt.want.Y) > 1e-9 {
			t.Errorf("polar(10, %v) = %v, want %v", tt.angle, got, tt.want)
		}
	}
}

func TestLifespan(t *testing.T) {
	tests := []struct {
		birth, death string
		want         string
	}{
		{"1901", "1980", "1901-1980"},
		{"abt. 1850", "", "b. 1850"},
		{"", "12 MAR 1920", "d. 1920"},
		{"", "", ""},
	}

	for _, tt := range tests {
		p := &family.Person{BirthDate: tt.birth, DeathDate: tt.death}
		if got := lifespan(p); got != tt.want {
			t.Errorf("lifespan(%q, %q) = %q, want %q", tt.birth, tt.death, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Anna", 180, 12); got != "Anna" {
		t.Errorf("truncate() short = %q, want %q", got, "Anna")
	}
	got := truncate("Maximilian Alexander von Hohenberg-Lichtenstein", 90, 12)
	if !strings.HasSuffix(got, "..") {
		t.Errorf("truncate() long = %q, want trailing ..", got)
	}
}

func TestToDOT(t *testing.T) {
	people := samplePeople()
	res := layout.PrepareForce(people, "kid", layout.DefaultSettings())

	dot := ToDOT(res, DOTOptions{})

	if !strings.Contains(dot, "graph G") {
		t.Error("ToDOT() output missing graph declaration")
	}
	if !strings.Contains(dot, "layout=fdp") {
		t.Error("ToDOT() output missing fdp layout")
	}
	if !strings.Contains(dot, `"dad" -- "kid"`) {
		t.Error("ToDOT() output missing descent edge")
	}
	if !strings.Contains(dot, `[style=dashed]`) {
		t.Error("ToDOT() output missing marriage edge")
	}
	if strings.Contains(dot, "!") {
		t.Error("ToDOT() unpinned output should not fix positions")
	}
}

func TestToDOT_Pinned(t *testing.T) {
	res := layout.NewResult()
	res.Nodes = append(res.Nodes, layout.TreeNode{ID: family.PersonID("a"), X: 10, Y: 20, Person: &family.Person{ID: "a", BirthDate: "1900"}})

	dot := ToDOT(res, DOTOptions{Pin: true, Years: true})

	if !strings.Contains(dot, `pos="10.00,-20.00!"`) {
		t.Errorf("ToDOT() pinned pos missing: %s", dot)
	}
	if !strings.Contains(dot, `b. 1900`) {
		t.Error("ToDOT() label missing years")
	}
}

func TestToDOT_SkipsJunctionLinks(t *testing.T) {
	res := layout.NewResult()
	res.Nodes = append(res.Nodes, layout.TreeNode{ID: family.PersonID("c")})
	res.Links = append(res.Links, layout.TreeLink{Source: family.UnionID("a", "b"), Target: family.PersonID("c"), Type: layout.LinkParentChild})

	dot := ToDOT(res, DOTOptions{})

	if strings.Contains(dot, "--") {
		t.Errorf("ToDOT() kept a link without a source node: %s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		svg  string
		want string
	}{
		{
			name: "with viewBox",
			svg:  `<svg viewBox="10 20 800 600" xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 800.00 600.00" width="800" height="600">content</svg>`,
		},
		{
			name: "no viewBox",
			svg:  `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
		},
		{
			name: "zero dimensions",
			svg:  `<svg viewBox="0 0 0 0">content</svg>`,
			want: `<svg viewBox="0 0 0 0">content</svg>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeViewBox([]byte(tt.svg))
			if string(got) != tt.want {
				t.Errorf("normalizeViewBox() = %q, want %q", string(got), tt.want)
			}
		})
	}
}

func TestRenderGraphviz(t *testing.T) {
	res := layout.PrepareForce(samplePeople(), "kid", layout.DefaultSettings())
	svg, err := RenderGraphviz(context.Background(), ToDOT(res, DOTOptions{}))
	if err != nil {
		t.Fatalf("RenderGraphviz() error: %v", err)
	}

	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderGraphviz() output missing <svg> tag")
	}
}

func TestRenderGraphviz_InvalidDOT(t *testing.T) {
	_, err := RenderGraphviz(context.Background(), `not valid DOT {{{`)
	if err == nil {
		t.Error("RenderGraphviz() should return error for invalid DOT")
	}
}
