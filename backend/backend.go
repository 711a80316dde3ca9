// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package backend provides a standard way to construct an agent
// transport based on command-line flags.
package backend

import (
	"errors"
	"net/http"
	"strings"

	"github.com/diffeo/go-cape/restclient"
)

// Backend describes user-visible parameters to reach a REST server.
// This implements the flag.Value interface, and so a typical use is
//
//     func main() {
//         backend := backend.Backend{"http", "//localhost:5980/"}
//         flag.Var(&backend, "backend", "impl:address of the server")
//         flag.Parse()
//         transport, err := backend.Transport(nil)
//     }
//
// An "http" or "https" backend is a URL, so that passing
// "http://localhost:5980/" to Set() produces the expected result.
type Backend struct {
	// Implementation holds the name of the implementation; for
	// instance, "http" or "memory".
	Implementation string

	// Address holds some backend-specific address.  For "http"
	// and "https" this is the rest of the base URL.
	Address string
}

// ErrNoHandler is returned by Transport for a "memory" backend
// without a handler.
var ErrNoHandler = errors.New("memory backend requires a handler")

// Transport creates a new transport.  A "memory" backend serves
// requests in-process with handler, which would typically come from
// memserver.Server.Handler(); other backends ignore it.
func (b *Backend) Transport(handler http.Handler) (restclient.Transport, error) {
	switch b.Implementation {
	case "http", "https":
		t, err := restclient.New(b.String())
		if err != nil {
			return nil, err
		}
		return t, nil
	case "memory":
		if handler == nil {
			return nil, ErrNoHandler
		}
		return restclient.HandlerTransport{Handler: handler}, nil
	default:
		return nil, errors.New("unknown backend " + b.Implementation)
	}
}

// String renders a backend description as a string.
func (b *Backend) String() string {
	if b.Address == "" {
		return b.Implementation
	}
	return b.Implementation + ":" + b.Address
}

// Set parses a string into an existing backend description.  The
// string should be of the form "implementation:address", where
// address can be any string.  Set checks to see if the provided
// implementation is any of the known implementations, and returns an
// appropriate error if not.
//
// This is part of the flag.Value interface.  Note that neither this
// nor Transport() attempts to actually make a connection.
func (b *Backend) Set(param string) error {
	parts := strings.SplitN(param, ":", 2)
	switch parts[0] {
	case "http", "https", "memory":
	case "":
		return errors.New("must specify a backend type")
	default:
		return errors.New("unknown backend " + parts[0])
	}
	b.Implementation = parts[0]
	b.Address = ""
	if len(parts) == 2 {
		b.Address = parts[1]
	}
	return nil
}
