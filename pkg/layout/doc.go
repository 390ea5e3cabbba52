// Package layout converts a family graph into chart geometry.
//
// Four engines share one output shape, [Result]:
//
//   - [LayoutDescendant] builds a rooted multi-tree with [BuildHierarchy],
//     assigns abstract positions with [Solve] using pod-aware separation,
//     and maps them to vertical, horizontal or radial screen space with a
//     [Transformer], optionally offset by birth year.
//   - [LayoutPedigree] places ancestors of the focus person in a binary
//     father/mother split.
//   - [LayoutFan] partitions a bounded ancestor tree into concentric rings
//     of arcs.
//   - [PrepareForce] seeds a flat graph for an external force simulation.
//
// All engines read the graph without modifying it and tolerate cycles,
// self-references and dangling IDs by pruning. They never return errors;
// the worst case is a partial or empty result. Every coordinate is finite.
//
// Engines are deterministic: the same people, focus, settings and
// collapsed set produce identical geometry.
package layout
