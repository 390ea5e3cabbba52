// Package pkg provides the core libraries for lineage family chart layout.
//
// # Overview
//
// Lineage turns a graph of people (parents, spouses, children) into chart
// geometry and draws it. The pkg directory is organized as:
//
//  1. [family] - People, years, typed node IDs, root resolution
//  2. [layout] - Descendant, pedigree, fan and force engines plus settings
//  3. [check] - Consistency checker (cycles, implausible dates)
//  4. [pipeline] - Orchestration (validate → layout → render) with caching
//  5. [worker] - Background layout worker with latest-wins responses
//  6. [render] - SVG, Graphviz DOT, PNG and PDF output
//  7. [graph] - People and layout file serialization (JSON, YAML)
//  8. [cache], [errors], [observability], [buildinfo] - Infrastructure
//
// # Architecture
//
//	people.json / people.yaml
//	         ↓
//	    [graph] package (read + normalize)
//	         ↓
//	    [layout] package (engine selected by chart type)
//	         ↓
//	    [render] package (SVG, DOT, PNG, PDF)
//
// The [check] package runs beside the layout, usually concurrently via
// [pipeline.Runner.Analyze].
//
// # Quick Start
//
//	people, _ := graph.ReadPeopleFile("family.json")
//	runner := pipeline.NewRunner(cache.NewMemoryCache(0), nil, nil)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    People:   people,
//	    FocusID:  "p1",
//	    Settings: layout.Settings{ChartType: layout.ChartPedigree},
//	    Formats:  []string{pipeline.FormatSVG},
//	})
//	os.WriteFile("pedigree.svg", result.Artifacts[pipeline.FormatSVG], 0o644)
package pkg
