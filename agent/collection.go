// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package agent

import (
	"context"
	"net/http"

	"github.com/diffeo/go-cape/inflect"
	"github.com/diffeo/go-cape/restpath"
	"golang.org/x/sync/singleflight"
)

// CollectionHooks customize how a collection agent refreshes.  Any
// nil hook uses the default behavior.  Set hooks before issuing any
// requests.
type CollectionHooks struct {
	// ParamsForRefresh returns the query parameters of the
	// refresh request.  By default there are none.
	ParamsForRefresh func() Params

	// RefreshObjects picks the objects out of a refresh
	// response.  By default these are the array under the
	// agent's ParamName() in the response envelope.
	RefreshObjects func(data interface{}) []interface{}

	// AfterRefresh runs after a refresh has updated the agent's
	// data and objects.  By default it refreshes the client.
	AfterRefresh func()
}

// CollectionAgent manages a collection resource such as /users and
// the list of objects it contains.
type CollectionAgent struct {
	base

	// Hooks customize refreshing.
	Hooks CollectionHooks

	objects *ObjectList
	refresh singleflight.Group
}

// NewCollectionAgent creates an agent for client.  Returns
// ErrNoResourceName if config has no resource name and
// ErrNoTransport if opts has no transport.
func NewCollectionAgent(client Client, config Config, opts Options) (*CollectionAgent, error) {
	a := &CollectionAgent{objects: &ObjectList{}}
	if err := a.init(a, client, config, opts); err != nil {
		return nil, err
	}
	return a, nil
}

// Objects returns the agent's object list.  The same list is
// returned for the life of the agent.
func (a *CollectionAgent) Objects() *ObjectList {
	return a.objects
}

// ParamName returns the envelope key that holds the collection's
// objects: the configured ParamName, or else the tableized resource
// name ("user" => "users").
func (a *CollectionAgent) ParamName() string {
	config := a.Config()
	if config.ParamName != "" {
		return config.ParamName
	}
	return inflect.Tableize(a.opts.Inflector, config.ResourceName)
}

// ParamsForRefresh returns the query parameters of the refresh
// request.
func (a *CollectionAgent) ParamsForRefresh() Params {
	if a.Hooks.ParamsForRefresh != nil {
		return a.Hooks.ParamsForRefresh()
	}
	return Params{}
}

// RefreshObjects replaces the contents of the object list with the
// objects in a response.  If the response does not hold an array
// under ParamName(), the list is left empty.
func (a *CollectionAgent) RefreshObjects(data interface{}) {
	var items []interface{}
	if a.Hooks.RefreshObjects != nil {
		items = a.Hooks.RefreshObjects(data)
	} else {
		items = envelopeObjects(data, a.ParamName())
	}
	a.objects.reset(items)
}

// AfterRefresh runs after a refresh updates the data and objects.
func (a *CollectionAgent) AfterRefresh() {
	if a.Hooks.AfterRefresh != nil {
		a.Hooks.AfterRefresh()
		return
	}
	a.notifyClient()
}

// Refresh fetches the collection, refills the object list, and runs
// AfterRefresh().  If a refresh is already in flight, the returned
// call completes with that refresh instead of starting another.  The
// call fails early if ctx is cancelled, without cancelling a refresh
// other callers share.  Failures go to the agent's default error
// handler.
func (a *CollectionAgent) Refresh(ctx context.Context) *Call {
	return a.coalesce(ctx, &a.refresh, a.CollectionPath(), false, a.fetch)
}

// refreshAfterChange refreshes with a request sent after a change
// landed, never joining an older refresh.
func (a *CollectionAgent) refreshAfterChange(ctx context.Context) *Call {
	return a.coalesce(ctx, &a.refresh, a.CollectionPath(), true, a.fetch)
}

func (a *CollectionAgent) fetch(ctx context.Context) *Call {
	return a.issue(ctx, http.MethodGet, a.CollectionPath(), a.ParamsForRefresh(), nil, nil, func(data interface{}) {
		a.RefreshObjects(data)
		a.AfterRefresh()
	})
}

// Index fetches the collection.
func (a *CollectionAgent) Index(ctx context.Context, params interface{}, cb Callback, eh ErrorHandler) *Call {
	return a.Get(ctx, "", "", params, cb, eh)
}

// Create posts a new member to the collection.
func (a *CollectionAgent) Create(ctx context.Context, params interface{}, cb Callback, eh ErrorHandler) *Call {
	return a.Post(ctx, "", "", params, cb, eh)
}

// Update patches the member with some id.
func (a *CollectionAgent) Update(ctx context.Context, id string, params interface{}, cb Callback, eh ErrorHandler) *Call {
	return a.Patch(ctx, "", id, params, cb, eh)
}

// Destroy deletes the member with some id.
func (a *CollectionAgent) Destroy(ctx context.Context, id string, cb Callback, eh ErrorHandler) *Call {
	return a.Delete(ctx, "", id, Params{}, cb, eh)
}

// Request issues a request with an arbitrary verb.  The path is the
// member path if id is non-empty and the collection path otherwise,
// followed by "/action" if action is non-empty: Request(ctx, "PATCH",
// "suspend", "1", ...) patches /users/1/suspend.
//
// If AutoRefresh is on, a successful POST, PATCH, PUT or DELETE
// refreshes the agent before the callback runs.  The call's Data is
// the response to this request, though the agent's Data is then the
// refreshed collection.
func (a *CollectionAgent) Request(ctx context.Context, method, action, id string, params interface{}, cb Callback, eh ErrorHandler) *Call {
	path := a.CollectionPath()
	if id != "" {
		path = a.MemberPath(id)
	}
	path = restpath.ActionPath(path, action)

	var after func(interface{})
	if isUnsafe(method) && a.Config().Refreshes() {
		after = func(interface{}) {
			a.refreshAfterChange(ctx).Wait()
		}
	}
	return a.issue(ctx, method, path, params, cb, eh, after)
}

// Get issues a GET request; see Request.
func (a *CollectionAgent) Get(ctx context.Context, action, id string, params interface{}, cb Callback, eh ErrorHandler) *Call {
	return a.Request(ctx, http.MethodGet, action, id, params, cb, eh)
}

// Head issues a HEAD request; see Request.
func (a *CollectionAgent) Head(ctx context.Context, action, id string, params interface{}, cb Callback, eh ErrorHandler) *Call {
	return a.Request(ctx, http.MethodHead, action, id, params, cb, eh)
}

// Post issues a POST request; see Request.
func (a *CollectionAgent) Post(ctx context.Context, action, id string, params interface{}, cb Callback, eh ErrorHandler) *Call {
	return a.Request(ctx, http.MethodPost, action, id, params, cb, eh)
}

// Patch issues a PATCH request; see Request.
func (a *CollectionAgent) Patch(ctx context.Context, action, id string, params interface{}, cb Callback, eh ErrorHandler) *Call {
	return a.Request(ctx, http.MethodPatch, action, id, params, cb, eh)
}

// Put issues a PUT request; see Request.
func (a *CollectionAgent) Put(ctx context.Context, action, id string, params interface{}, cb Callback, eh ErrorHandler) *Call {
	return a.Request(ctx, http.MethodPut, action, id, params, cb, eh)
}

// Delete issues a DELETE request; see Request.
func (a *CollectionAgent) Delete(ctx context.Context, action, id string, params interface{}, cb Callback, eh ErrorHandler) *Call {
	return a.Request(ctx, http.MethodDelete, action, id, params, cb, eh)
}

// isUnsafe reports whether a verb changes server state.
func isUnsafe(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}
