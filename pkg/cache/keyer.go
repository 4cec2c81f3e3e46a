package cache

// Keyer builds cache keys.
type Keyer interface {
	// LinksKey is the key of the outgoing link list of title on the
	// given language edition.
	LinksKey(lang, title string) string
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LinksKey returns "links:<lang>:<title>".
func (DefaultKeyer) LinksKey(lang, title string) string {
	return "links:" + lang + ":" + title
}

// ScopedKeyer wraps a Keyer with a prefix, so that several deployments can
// share one Redis or MongoDB backend:
//
//	k := NewScopedKeyer(NewDefaultKeyer(), "wikigraph:")
//	k.LinksKey("en", "Tree") // "wikigraph:links:en:Tree"
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

// LinksKey generates a prefixed links key.
func (k *ScopedKeyer) LinksKey(lang, title string) string {
	return k.prefix + k.inner.LinksKey(lang, title)
}
