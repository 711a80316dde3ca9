// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const johnBody = `{"user":{"id":123,"name":"John"}}`

func newResource(t *testing.T, transport *mockTransport, client Client, config Config) (*ResourceAgent, *countingAdapter) {
	if config.ResourceName == "" {
		config.ResourceName = "user"
	}
	opts, _ := testOptions(transport)
	counter := &countingAdapter{}
	opts.Registry.Register("foo_bar", counter)
	a, err := NewResourceAgent(client, config, opts)
	require.NoError(t, err)
	return a, counter
}

func TestResourceInitMember(t *testing.T) {
	transport := stubTransport(johnBody)
	client := &spyClient{}
	a, counter := newResource(t, transport, client, Config{ID: "123", Adapter: "foo_bar"})

	var refreshesAtCallback int
	call := a.Init(context.Background(), func(Agent) {
		refreshesAtCallback = client.Refreshes()
	}, nil)
	require.NoError(t, call.Wait())

	assert.Equal(t, []string{"GET /users/123"}, transport.Calls())
	user := a.Data().(map[string]interface{})["user"].(map[string]interface{})
	assert.Equal(t, "John", user["name"])
	assert.Equal(t, 1, counter.Calls())
	assert.Equal(t, 1, client.Refreshes())
	assert.Equal(t, 1, refreshesAtCallback)

	setValues := client.SetValuesCalls()
	if assert.Len(t, setValues, 1) {
		assert.Equal(t, "user", setValues[0].Name)
		assert.Equal(t, "John", setValues[0].Attrs["name"])
		assert.EqualValues(t, 123, setValues[0].Attrs["id"])
	}
}

func TestResourceInitPaths(t *testing.T) {
	tests := []struct {
		config Config
		path   string
	}{
		{Config{ResourceName: "user"}, "GET /users/new"},
		{Config{ResourceName: "user", ID: "5"}, "GET /users/5"},
		{Config{ResourceName: "user", BasePath: "/api/", NestedIn: "teams/9/"}, "GET /api/teams/9/users/new"},
		{Config{ResourceName: "user", NestedIn: "teams/9/", Shallow: true, ID: "5"}, "GET /users/5"},
		{Config{ResourceName: "profile", Singular: true}, "GET /profile"},
		{Config{ResourceName: "profile", Singular: true, ID: "5"}, "GET /profile"},
	}
	for _, test := range tests {
		transport := stubTransport(`{}`)
		a, _ := newResource(t, transport, nil, test.config)
		require.NoError(t, a.Init(context.Background(), nil, nil).Wait())
		assert.Equal(t, []string{test.path}, transport.Calls(), "%+v", test.config)
	}
}

func TestResourceInitWithoutEnvelope(t *testing.T) {
	transport := stubTransport(`{"profile":{"theme":"dark"}}`)
	client := &spyClient{}
	a, _ := newResource(t, transport, client, Config{ID: "1"})

	require.NoError(t, a.Init(context.Background(), nil, nil).Wait())
	assert.Empty(t, client.SetValuesCalls())
	assert.Equal(t, 1, client.Refreshes())
}

func TestResourceInitPlainClient(t *testing.T) {
	transport := stubTransport(johnBody)
	client := &plainClient{}
	a, _ := newResource(t, transport, client, Config{ID: "123"})

	require.NoError(t, a.Init(context.Background(), nil, nil).Wait())
	assert.Equal(t, 1, client.Refreshes())
}

func TestResourceInitFailure(t *testing.T) {
	transport := stubTransport(``)
	transport.Default = mockResponse{Err: errors.New("offline")}
	client := &spyClient{}
	a, counter := newResource(t, transport, client, Config{ID: "123", Adapter: "foo_bar"})

	var got error
	succeeded := false
	err := a.Init(context.Background(), func(Agent) { succeeded = true }, func(err error) { got = err }).Wait()
	assert.EqualError(t, err, "offline")
	assert.Equal(t, err, got)
	assert.False(t, succeeded)
	assert.Equal(t, 0, counter.Calls())
	assert.Equal(t, 0, client.Refreshes())
	assert.Empty(t, client.SetValuesCalls())
	assert.Nil(t, a.Data())
}

func TestResourceShowAndRefresh(t *testing.T) {
	transport := stubTransport(johnBody)
	client := &spyClient{}
	a, _ := newResource(t, transport, client, Config{ID: "123"})

	require.NoError(t, a.Show(context.Background(), nil, nil).Wait())
	assert.Equal(t, 0, client.Refreshes())

	require.NoError(t, a.Refresh(context.Background()).Wait())
	assert.Equal(t, 1, client.Refreshes())
	assert.Empty(t, client.SetValuesCalls())
	assert.Equal(t, []string{"GET /users/123", "GET /users/123"}, transport.Calls())
}

func TestResourceRefreshCoalesced(t *testing.T) {
	transport := stubTransport(johnBody)
	transport.Gate = make(chan struct{})
	client := &plainClient{}
	a, _ := newResource(t, transport, client, Config{ID: "123"})

	first := a.Refresh(context.Background())
	second := a.Refresh(context.Background())
	close(transport.Gate)

	assert.NoError(t, first.Wait())
	assert.NoError(t, second.Wait())
	assert.Len(t, transport.Calls(), 1)
	assert.Equal(t, 1, client.Refreshes())
}

func TestResourceRefreshCallerCancel(t *testing.T) {
	transport := stubTransport(johnBody)
	transport.Gate = make(chan struct{})
	client := &plainClient{}
	a, _ := newResource(t, transport, client, Config{ID: "123"})

	ctx, cancel := context.WithCancel(context.Background())
	first := a.Refresh(ctx)
	second := a.Refresh(context.Background())
	cancel()
	assert.Equal(t, context.Canceled, first.Wait())

	close(transport.Gate)
	assert.NoError(t, second.Wait())
	assert.Equal(t, []string{"GET /users/123"}, transport.Calls())
	assert.Equal(t, 1, client.Refreshes())
}

func TestResourceCreateAdoptsID(t *testing.T) {
	transport := stubTransport(`{}`)
	transport.Routes["POST /users"] = mockResponse{Status: 201, Body: `{"user":{"id":9,"name":"Cy"}}`}
	client := &spyClient{params: map[string]interface{}{"user": map[string]interface{}{"name": "Cy"}}}
	a, _ := newResource(t, transport, client, Config{})

	assert.Equal(t, "/users", a.RequestPath())
	require.NoError(t, a.Create(context.Background(), nil, nil).Wait())
	assert.Equal(t, "9", a.ID())
	assert.Equal(t, "/users/9", a.RequestPath())

	require.NoError(t, a.Update(context.Background(), nil, nil).Wait())
	require.NoError(t, a.Destroy(context.Background(), nil, nil).Wait())

	assert.Equal(t, []string{"POST /users", "PATCH /users/9", "DELETE /users/9"}, transport.Calls())
	requests := transport.Requests()
	assert.Equal(t, `{"user":{"name":"Cy"}}`, string(requests[0].Body))
	assert.Equal(t, `{"user":{"name":"Cy"}}`, string(requests[1].Body))
	assert.Nil(t, requests[2].Body)
}

func TestResourceCreateWithoutProvider(t *testing.T) {
	transport := stubTransport(`"ok"`)
	a, _ := newResource(t, transport, &plainClient{}, Config{})

	require.NoError(t, a.Create(context.Background(), nil, nil).Wait())
	assert.Equal(t, "", a.ID())
	assert.Equal(t, "ok", a.Data())
	assert.Equal(t, "{}", string(transport.Requests()[0].Body))
}

func TestResourceSingular(t *testing.T) {
	transport := stubTransport(`{"profile":{"id":4}}`)
	a, _ := newResource(t, transport, nil, Config{ResourceName: "profile", Singular: true, BasePath: "/api/"})

	ctx := context.Background()
	require.NoError(t, a.Create(ctx, nil, nil).Wait())
	assert.Equal(t, "", a.ID())
	require.NoError(t, a.Update(ctx, nil, nil).Wait())
	require.NoError(t, a.Destroy(ctx, nil, nil).Wait())
	assert.Equal(t, []string{"POST /api/profile", "PATCH /api/profile", "DELETE /api/profile"}, transport.Calls())
}

func TestResourceVerbs(t *testing.T) {
	transport := stubTransport(`{}`)
	a, _ := newResource(t, transport, nil, Config{ID: "3"})
	ctx := context.Background()

	require.NoError(t, a.Get(ctx, "history", Params{"limit": 5}, nil, nil).Wait())
	require.NoError(t, a.Head(ctx, "", nil, nil, nil).Wait())
	require.NoError(t, a.Post(ctx, "activate", Params{}, nil, nil).Wait())
	require.NoError(t, a.Patch(ctx, "", Params{"user": Params{}}, nil, nil).Wait())
	require.NoError(t, a.Put(ctx, "avatar", "raw", nil, nil).Wait())
	require.NoError(t, a.Delete(ctx, "sessions", nil, nil, nil).Wait())

	a.SetID("")
	require.NoError(t, a.Get(ctx, "search", nil, nil, nil).Wait())

	assert.Equal(t, []string{
		"GET /users/3/history?limit=5",
		"HEAD /users/3",
		"POST /users/3/activate",
		"PATCH /users/3",
		"PUT /users/3/avatar",
		"DELETE /users/3/sessions",
		"GET /users/search",
	}, transport.Calls())
	assert.Equal(t, "raw", string(transport.Requests()[4].Body))
}
