package cache

import (
	"slices"
	"strings"
)

// Keyer generates cache keys.
type Keyer interface {
	// LayoutKey keys a layout result for one graph version.
	LayoutKey(graphVersion string, opts LayoutKeyOpts) string
	// CheckKey keys a consistency report for one graph version.
	CheckKey(graphVersion string) string
}

// LayoutKeyOpts holds the request inputs a layout depends on besides the
// graph itself.
type LayoutKeyOpts struct {
	Focus string `json:"focus"`
	// Settings is any JSON-encodable settings record.
	Settings any `json:"settings"`
	// Collapsed is the collapsed union key set; order does not matter.
	Collapsed []string `json:"-"`
}

// DefaultKeyer is the standard keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey returns "layout:<hash>". The collapsed set is sorted and
// comma-joined before hashing, so its order never changes the key.
func (DefaultKeyer) LayoutKey(graphVersion string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphVersion, opts, CollapsedKey(opts.Collapsed))
}

// CheckKey returns "check:<hash>".
func (DefaultKeyer) CheckKey(graphVersion string) string {
	return hashKey("check", graphVersion)
}

// CollapsedKey returns the canonical form of a collapsed set: sorted,
// deduplicated and comma-joined.
func CollapsedKey(ids []string) string {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	return strings.Join(slices.Compact(sorted), ",")
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = DefaultKeyer{}
