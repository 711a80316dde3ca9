// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package agent connects client components to REST resources.
//
// A CollectionAgent manages a list resource such as /users.  A
// ResourceAgent manages one member (/users/123), a new-member form
// (/users/new) or a singular resource (/profile).  Both are created
// with the client they serve, a Config naming the resource, and
// Options supplying the transport:
//
//     transport, _ := restclient.New("http://localhost:5980/")
//     users, err := agent.NewCollectionAgent(list, agent.Config{
//         ResourceName: "user",
//         BasePath:     "/api/",
//     }, agent.Options{Transport: transport})
//     users.Refresh(ctx)
//
// Every request method returns a *Call at once and completes in the
// background.  When the response arrives it is parsed (as JSON if
// possible, otherwise kept as text), passed through the configured
// adapter, and stored as the agent's Data; then the success callback
// runs.  Failures go to the caller's error handler, or are logged.
// Exactly one of the two runs for each call.
package agent

import (
	"context"
	"net/http"

	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-cape/adapter"
	"github.com/diffeo/go-cape/inflect"
	"github.com/diffeo/go-cape/restclient"
	"github.com/sirupsen/logrus"
)

// Agent is the behavior shared by collection and resource agents.
type Agent interface {
	// Config returns the agent's current configuration.
	Config() Config

	// Configure replaces the agent's configuration.  The new
	// paths take effect for the next request.
	Configure(config Config) error

	// Client returns the client the agent works for.
	Client() Client

	// ResourceName returns the configured resource name.
	ResourceName() string

	// Data returns the body of the last successful response, or
	// nil if there has been none.
	Data() interface{}

	// Header returns a copy of the headers sent with requests.
	Header() http.Header

	// SetHeader sets a header sent with later requests.
	SetHeader(key, value string)

	// ResponseHeader returns a copy of the headers of the last
	// successful response.
	ResponseHeader() http.Header

	// CollectionPath returns the path of the resource's
	// collection.
	CollectionPath() string

	// Refresh reloads the agent's data and notifies its client.
	Refresh(ctx context.Context) *Call
}

// Options holds the collaborators of an agent.
type Options struct {
	// Transport performs the HTTP requests.  This field is
	// required.
	Transport restclient.Transport

	// Registry holds the adapters the agent can name.  If nil,
	// adapter.Shared() is used.
	Registry *adapter.Registry

	// Inflector turns resource names into path segments.  If
	// nil, inflect.Default() is used.
	Inflector inflect.Inflector

	// Logger receives request logs and unhandled failures.  If
	// nil, the logrus standard logger is used.
	Logger logrus.FieldLogger

	// Clock times requests.  Only test code should need to set
	// this.  If nil, uses a time source backed by real wall-clock
	// time.
	Clock clock.Clock

	// ErrorHandler handles failures of calls that were not given
	// an error handler.  If nil, failures are logged.  It must
	// not panic.
	ErrorHandler ErrorHandler
}

// setDefaults fills in any unset optional fields.
func (o *Options) setDefaults() error {
	if o.Transport == nil {
		return ErrNoTransport
	}
	if o.Registry == nil {
		o.Registry = adapter.Shared()
	}
	if o.Inflector == nil {
		o.Inflector = inflect.Default()
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	if o.Clock == nil {
		o.Clock = clock.New()
	}
	return nil
}
