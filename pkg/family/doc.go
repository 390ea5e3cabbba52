// Package family provides the person/relationship graph that every lineage
// engine reads.
//
// # Overview
//
// A family graph is a map of [Person] values keyed by ID. Each person lists
// parent, spouse and child IDs. The lists come straight from user-edited
// data, so nothing about them is guaranteed: they may be asymmetric (A lists
// B as a child but B does not list A as a parent), they may reference IDs
// that are not present in the map, a person may be their own ancestor, and a
// child may list more than two parents.
//
// Engines built on this package never assume a tree or a DAG. Every traversal
// carries a visited set or a depth bound.
//
// # Years
//
// Birth and death dates are free-form strings. [ParseYear] extracts a year
// lazily and returns [UnknownYear] (9999) when nothing usable is found, so
// unknown dates sort last.
//
// # Identifiers
//
// Layout output mixes real person IDs with synthesized ones (spouse
// companion boxes, union junctions, fan placeholders). [NodeID] keeps the
// kinds apart so a person called "spouse-a-b" can never collide with a
// companion box.
//
// # Root Resolution
//
// [FindRoot] walks first-parent links upward from a focus person, bounded
// at [MaxRootHops] hops and stopping on cycles or dangling references.
package family
