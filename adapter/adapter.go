// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package adapter holds the response hooks that adjust agents to a
// particular backend's conventions.
//
// An adapter is registered under a name such as "rails" or "foo_bar"
// and is stored under the key "RailsAdapter" or "FooBarAdapter".
// After every successful response, an agent configured with that
// adapter name calls the adapter with itself and the parsed body.
// The adapter may inspect or change the agent's headers, and may
// return a replacement body.
package adapter

import (
	"fmt"
	"net/http"
)

// Target is the view of an agent that an adapter is given.
type Target interface {
	// ResourceName returns the agent's configured resource name.
	ResourceName() string

	// Data returns the agent's data from its previous successful
	// response; the body being adapted has not been stored yet.
	Data() interface{}

	// Header returns the headers sent with each request.  Adapters
	// may modify it.
	Header() http.Header

	// ResponseHeader returns the headers of the response being
	// adapted.
	ResponseHeader() http.Header
}

// Adapter transforms a parsed response body.  Returning a nil body
// and nil error keeps the original body; returning a non-nil body
// replaces it.  A non-nil error fails the request.
type Adapter interface {
	Adapt(t Target, body interface{}) (interface{}, error)
}

// Func adapts an ordinary function to the Adapter interface.
type Func func(t Target, body interface{}) (interface{}, error)

// Adapt calls f.
func (f Func) Adapt(t Target, body interface{}) (interface{}, error) {
	return f(t, body)
}

// Identity is an Adapter that leaves the body unchanged.
var Identity Adapter = Func(func(Target, interface{}) (interface{}, error) {
	return nil, nil
})

// ErrUnknownAdapter is returned when an agent names an adapter that
// is not registered.
type ErrUnknownAdapter struct {
	Name string
}

func (e ErrUnknownAdapter) Error() string {
	return fmt.Sprintf("No such adapter %q", e.Name)
}

// Apply runs a (possibly nil) adapter against a body and returns the
// body to use thereafter.
func Apply(a Adapter, t Target, body interface{}) (interface{}, error) {
	if a == nil {
		return body, nil
	}
	out, err := a.Adapt(t, body)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return body, nil
	}
	return out, nil
}
