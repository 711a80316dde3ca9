// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package agent

import (
	"context"
	"fmt"
	"net/http"

	"github.com/diffeo/go-cape/restpath"
	"golang.org/x/sync/singleflight"
)

// ResourceAgent manages a single resource: a collection member such
// as /users/123, a member yet to be created, or a singular resource
// such as /profile.  The member is chosen by Config.ID.
//
// Form-like clients can implement ValueSetter to receive the fetched
// resource from Init(), and ParamsProvider to supply the bodies of
// Create() and Update().
type ResourceAgent struct {
	base
	refresh singleflight.Group
}

// NewResourceAgent creates an agent for client.  Returns
// ErrNoResourceName if config has no resource name and
// ErrNoTransport if opts has no transport.
func NewResourceAgent(client Client, config Config, opts Options) (*ResourceAgent, error) {
	a := &ResourceAgent{}
	if err := a.init(a, client, config, opts); err != nil {
		return nil, err
	}
	return a, nil
}

// ID returns the id of the member the agent works on, or "".
func (a *ResourceAgent) ID() string {
	return a.Config().ID
}

// SetID changes the member the agent works on.
func (a *ResourceAgent) SetID(id string) {
	a.lock.Lock()
	defer a.lock.Unlock()
	a.config.ID = id
}

// RequestPath returns the singular path for a singular resource, the
// member path if the agent has an id, or the collection path.
func (a *ResourceAgent) RequestPath() string {
	return a.resolver().RequestPath(a.ID())
}

// initPath is like RequestPath, but asks for the new-member form
// rather than the collection when there is no id.
func (a *ResourceAgent) initPath() string {
	config := a.Config()
	switch {
	case config.Singular:
		return a.SingularPath()
	case config.ID != "":
		return a.MemberPath(config.ID)
	default:
		return a.NewPath()
	}
}

// Init loads the resource (or, without an id, the new-member form)
// and pushes its attributes into the client.  The response envelope
// is expected to hold the attributes under the resource name, as in
// {"user": {"id": 123, "name": "John"}}.  After the client's values
// are set, the client is refreshed once and then cb runs.
func (a *ResourceAgent) Init(ctx context.Context, cb Callback, eh ErrorHandler) *Call {
	return a.issue(ctx, http.MethodGet, a.initPath(), nil, cb, eh, func(data interface{}) {
		if setter, isSetter := a.client.(ValueSetter); isSetter {
			if attrs, present := a.attributes(data); present {
				setter.SetValues(a.ResourceName(), attrs)
			}
		}
		a.notifyClient()
	})
}

// Show fetches the resource at RequestPath().
func (a *ResourceAgent) Show(ctx context.Context, cb Callback, eh ErrorHandler) *Call {
	return a.issue(ctx, http.MethodGet, a.RequestPath(), nil, cb, eh, nil)
}

// Refresh fetches the resource and then refreshes the client.  If a
// refresh is already in flight, the returned call completes with that
// refresh instead of starting another.  The call fails early if ctx
// is cancelled, without cancelling a refresh other callers share.
func (a *ResourceAgent) Refresh(ctx context.Context) *Call {
	return a.coalesce(ctx, &a.refresh, a.RequestPath(), false, func(ctx context.Context) *Call {
		return a.issue(ctx, http.MethodGet, a.RequestPath(), nil, nil, nil, func(interface{}) {
			a.notifyClient()
		})
	})
}

// Create posts the client's parameters to the collection path, or to
// the singular path for a singular resource.  If the response holds
// the new member's id, the agent adopts it.
func (a *ResourceAgent) Create(ctx context.Context, cb Callback, eh ErrorHandler) *Call {
	path := a.CollectionPath()
	if a.Config().Singular {
		path = a.SingularPath()
	}
	return a.issue(ctx, http.MethodPost, path, a.paramsFor(), cb, eh, func(data interface{}) {
		if a.Config().Singular {
			return
		}
		if attrs, present := a.attributes(data); present && attrs["id"] != nil {
			a.SetID(fmt.Sprint(attrs["id"]))
		}
	})
}

// Update patches the resource at RequestPath() with the client's
// parameters.
func (a *ResourceAgent) Update(ctx context.Context, cb Callback, eh ErrorHandler) *Call {
	return a.issue(ctx, http.MethodPatch, a.RequestPath(), a.paramsFor(), cb, eh, nil)
}

// Destroy deletes the resource at RequestPath().
func (a *ResourceAgent) Destroy(ctx context.Context, cb Callback, eh ErrorHandler) *Call {
	return a.issue(ctx, http.MethodDelete, a.RequestPath(), nil, cb, eh, nil)
}

// Request issues a request with an arbitrary verb to RequestPath(),
// followed by "/action" if action is non-empty.
func (a *ResourceAgent) Request(ctx context.Context, method, action string, params interface{}, cb Callback, eh ErrorHandler) *Call {
	path := restpath.ActionPath(a.RequestPath(), action)
	return a.issue(ctx, method, path, params, cb, eh, nil)
}

// Get issues a GET request; see Request.
func (a *ResourceAgent) Get(ctx context.Context, action string, params interface{}, cb Callback, eh ErrorHandler) *Call {
	return a.Request(ctx, http.MethodGet, action, params, cb, eh)
}

// Head issues a HEAD request; see Request.
func (a *ResourceAgent) Head(ctx context.Context, action string, params interface{}, cb Callback, eh ErrorHandler) *Call {
	return a.Request(ctx, http.MethodHead, action, params, cb, eh)
}

// Post issues a POST request; see Request.
func (a *ResourceAgent) Post(ctx context.Context, action string, params interface{}, cb Callback, eh ErrorHandler) *Call {
	return a.Request(ctx, http.MethodPost, action, params, cb, eh)
}

// Patch issues a PATCH request; see Request.
func (a *ResourceAgent) Patch(ctx context.Context, action string, params interface{}, cb Callback, eh ErrorHandler) *Call {
	return a.Request(ctx, http.MethodPatch, action, params, cb, eh)
}

// Put issues a PUT request; see Request.
func (a *ResourceAgent) Put(ctx context.Context, action string, params interface{}, cb Callback, eh ErrorHandler) *Call {
	return a.Request(ctx, http.MethodPut, action, params, cb, eh)
}

// Delete issues a DELETE request; see Request.
func (a *ResourceAgent) Delete(ctx context.Context, action string, params interface{}, cb Callback, eh ErrorHandler) *Call {
	return a.Request(ctx, http.MethodDelete, action, params, cb, eh)
}

// paramsFor asks the client for the request body, if it can say.
func (a *ResourceAgent) paramsFor() Params {
	if provider, isProvider := a.client.(ParamsProvider); isProvider {
		if params := provider.ParamsFor(a.ResourceName()); params != nil {
			return Params(params)
		}
	}
	return Params{}
}

// attributes returns the resource object in a response envelope.
func (a *ResourceAgent) attributes(data interface{}) (map[string]interface{}, bool) {
	envelope, isMap := data.(map[string]interface{})
	if !isMap {
		return nil, false
	}
	attrs, isMap := envelope[a.ResourceName()].(map[string]interface{})
	return attrs, isMap
}
