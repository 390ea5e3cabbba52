package graph

import (
	"path/filepath"
	"strings"

	"github.com/matzehuels/lineage/pkg/family"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Format names a serialization format.
type Format string

// Supported people file formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks the format from a file extension. Unknown extensions
// are read as JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// =============================================================================
// Normalization
// =============================================================================

// Normalize returns a copy of people fit for the engines: nil entries are
// dropped and every person's ID is set to its map key. The key wins over a
// conflicting ID because relationship lists are resolved by key.
// Relationship lists are left as they are; engines tolerate dangling and
// cyclic references.
func Normalize(people family.People) family.People {
	out := make(family.People, len(people))
	for key, p := range people {
		if p == nil {
			continue
		}
		cp := *p
		cp.ID = key
		out[key] = &cp
	}
	return out
}

// fromList keys a person list by ID. Later duplicates replace earlier ones;
// entries without an ID are skipped.
func fromList(list []*family.Person) family.People {
	out := make(family.People, len(list))
	for _, p := range list {
		if p == nil || p.ID == "" {
			continue
		}
		out[p.ID] = p
	}
	return out
}
