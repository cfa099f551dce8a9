package cache

// ScopedKeyer wraps a Keyer with a prefix so that several producers can
// share one backend without colliding. The API server scopes its keys
// this way when it shares a Redis instance with CLI users.
//
//	apiKeyer := NewScopedKeyer(NewDefaultKeyer(), "api:")
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

// MatrixKey generates a prefixed overlap matrix key.
func (k *ScopedKeyer) MatrixKey(fingerprint string) string {
	return k.prefix + k.inner.MatrixKey(fingerprint)
}

// ResultKey generates a prefixed run result key.
func (k *ScopedKeyer) ResultKey(fingerprint string, opts ResultKeyOpts) string {
	return k.prefix + k.inner.ResultKey(fingerprint, opts)
}
