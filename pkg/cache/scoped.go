package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// This is useful when several family trees or tenants share one Redis
// instance and need separate cache namespaces.
//
// Example usage:
//
//	// Per-tree keys on a shared server
//	treeKeyer := NewScopedKeyer(NewDefaultKeyer(), "tree:smith:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(graphVersion string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(graphVersion, opts)
}

// CheckKey generates a prefixed key for consistency report caching.
func (k *ScopedKeyer) CheckKey(graphVersion string) string {
	return k.prefix + k.inner.CheckKey(graphVersion)
}
