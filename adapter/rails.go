// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package adapter

// CSRFHeader is the header Rails uses to carry its authenticity
// token.
const CSRFHeader = "X-CSRF-Token"

// Rails adapts agents to a Ruby on Rails backend.  Rails protects
// unsafe requests with an authenticity token; whenever a response
// carries one, it is copied into the agent's request headers so later
// requests send it back.  The body is not changed.
var Rails Adapter = Func(func(t Target, body interface{}) (interface{}, error) {
	if token := t.ResponseHeader().Get(CSRFHeader); token != "" {
		t.Header().Set(CSRFHeader, token)
	}
	return nil, nil
})
