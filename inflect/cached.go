// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package inflect

// Cached wraps another Inflector and remembers its recent answers.
// Since inflections are pure, a cached answer is always the answer
// the wrapped inflector would give.  Cached can be safely used from
// multiple goroutines.
type Cached struct {
	inner       Inflector
	plural      *lru
	singular    *lru
	underscored *lru
	pascal      *lru
}

// NewCached creates a memoizing inflector that keeps up to size
// results for each kind of transformation.
func NewCached(inner Inflector, size int) *Cached {
	return &Cached{
		inner:       inner,
		plural:      newLRU(size),
		singular:    newLRU(size),
		underscored: newLRU(size),
		pascal:      newLRU(size),
	}
}

// Pluralize implements Inflector.
func (c *Cached) Pluralize(word string) string {
	return c.plural.Get(word, c.inner.Pluralize)
}

// Singularize implements Inflector.
func (c *Cached) Singularize(word string) string {
	return c.singular.Get(word, c.inner.Singularize)
}

// Underscore implements Inflector.
func (c *Cached) Underscore(word string) string {
	return c.underscored.Get(word, c.inner.Underscore)
}

// Pascalize implements Inflector.
func (c *Cached) Pascalize(word string) string {
	return c.pascal.Get(word, c.inner.Pascalize)
}
