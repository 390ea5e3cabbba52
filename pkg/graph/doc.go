// Package graph provides serialization for family graphs and layout results.
//
// This package defines the file formats lineage reads and writes, used by
// the CLI, the HTTP server and the result cache.
//
// # People Files
//
// A people file holds the family graph either as an object keyed by person
// ID (the worker wire shape) or as a list of persons:
//
//	{
//	  "p1": {"firstName": "Ada", "gender": "female", "children": ["p2"]},
//	  "p2": {"firstName": "Ben", "parents": ["p1"], "birthDate": "1901"}
//	}
//
// or, in YAML:
//
//	- id: p1
//	  firstName: Ada
//	  gender: female
//	- id: p2
//	  firstName: Ben
//	  parents: [p1]
//	  birthDate: "1901"
//
// The format is chosen by file extension (.yaml and .yml are YAML,
// everything else JSON). Keyed entries without an id take their key.
//
// Common operations:
//
//	people, _ := graph.ReadPeopleFile("family.yaml")   // File → People
//	graph.WritePeopleFile(people, "family.json")       // People → File
//	version, _ := graph.Version(people)                // content hash
//
// # Layout Results
//
// Results are written as JSON with empty arrays rather than nulls, so an
// empty layout is distinguishable from a failed one:
//
//	graph.WriteResult(res, os.Stdout)
//	res, _ := graph.ReadResultFile("layout.json")
//
// # Concurrency
//
// All functions are safe for concurrent use; none keeps state.
package graph
