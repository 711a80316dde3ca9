// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package inflect provides the word transformations used to turn a
// resource name into URL path segments and envelope keys.
//
// The agents never inflect words themselves; they are handed an
// Inflector.  Default() returns one backed by
// github.com/gobuffalo/flect whose results are memoized.
package inflect

import (
	"github.com/gobuffalo/flect"
)

// Inflector transforms resource names.  All of the methods must be
// pure functions of their input.
type Inflector interface {
	// Pluralize returns the plural form of a word, "user" =>
	// "users".  Words that are already plural are returned as is.
	Pluralize(word string) string

	// Singularize returns the singular form of a word.
	Singularize(word string) string

	// Underscore converts a camel-cased name to snake case,
	// "UserAccount" => "user_account".
	Underscore(word string) string

	// Pascalize converts a snake-cased name to Pascal case,
	// "foo_bar" => "FooBar".
	Pascalize(word string) string
}

// Tableize returns the collection name for a resource, the pluralized
// snake-cased form of name: "UserAccount" => "user_accounts".
func Tableize(in Inflector, name string) string {
	return in.Pluralize(in.Underscore(name))
}

// Flect is an Inflector backed by the flect library.
type Flect struct{}

// Pluralize implements Inflector.
func (Flect) Pluralize(word string) string {
	return flect.Pluralize(word)
}

// Singularize implements Inflector.
func (Flect) Singularize(word string) string {
	return flect.Singularize(word)
}

// Underscore implements Inflector.
func (Flect) Underscore(word string) string {
	return flect.Underscore(word)
}

// Pascalize implements Inflector.
func (Flect) Pascalize(word string) string {
	return flect.Pascalize(word)
}

// defaultCacheSize bounds the number of memoized results per
// transformation in the default inflector.
const defaultCacheSize = 256

var defaultInflector = NewCached(Flect{}, defaultCacheSize)

// Default returns the shared memoizing flect inflector.
func Default() Inflector {
	return defaultInflector
}
