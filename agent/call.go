// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package agent

// Call represents one request issued by an agent.  Agent methods
// return a Call immediately; the request runs in the background.
// Done is closed once the request has finished and its callback or
// error handler has returned.  Data and Error must not be read
// before then.
type Call struct {
	// Method is the HTTP verb of the request.
	Method string

	// Path is the request path, without query string.
	Path string

	// Data holds the (adapted) response body after success.
	Data interface{}

	// Error holds the failure, or nil on success.
	Error error

	// Done is closed when the call completes.
	Done chan struct{}
}

func newCall(method, path string) *Call {
	return &Call{
		Method: method,
		Path:   path,
		Done:   make(chan struct{}),
	}
}

// Wait blocks until the call completes and returns its error.
func (c *Call) Wait() error {
	<-c.Done
	return c.Error
}
