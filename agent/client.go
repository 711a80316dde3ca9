// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package agent

// Client is the UI component an agent works for.  The agent calls
// Refresh() whenever its data changes in a way the client should
// redraw.  The client owns the agent; the agent never destroys it.
type Client interface {
	Refresh()
}

// ValueSetter is implemented by form-like clients that accept the
// attributes of a resource.  ResourceAgent.Init pushes the fetched
// resource into such a client.
type ValueSetter interface {
	SetValues(resourceName string, attrs map[string]interface{})
}

// ParamsProvider is implemented by form-like clients that can produce
// request parameters for a resource.  ResourceAgent uses it to build
// create and update bodies.
type ParamsProvider interface {
	ParamsFor(resourceName string) map[string]interface{}
}

// ClientFunc adapts an ordinary function to the Client interface.
type ClientFunc func()

// Refresh calls f.
func (f ClientFunc) Refresh() {
	f()
}

// Params holds request parameters.  GET and HEAD requests send them
// as a query string; other verbs send them as a JSON body.
type Params map[string]interface{}

// Callback is called with the agent after a successful request.
type Callback func(Agent)

// ErrorHandler is called with the error from a failed request.
type ErrorHandler func(error)
