// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package agent

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-cape/adapter"
	"github.com/diffeo/go-cape/restclient"
	"github.com/sirupsen/logrus/hooks/test"
)

// mockResponse is a canned transport response.
type mockResponse struct {
	Status int
	Body   string
	Header http.Header
	Err    error
}

// mockTransport records requests and answers them with canned
// responses.  Routes are keyed by "METHOD path", with the path
// including any query string; unmatched requests get Default.
type mockTransport struct {
	Default mockResponse
	Routes  map[string]mockResponse

	// Gate, if non-nil, blocks every request until it is closed.
	Gate chan struct{}

	lock     sync.Mutex
	requests []*restclient.Request
}

func stubTransport(body string) *mockTransport {
	return &mockTransport{
		Default: mockResponse{Status: http.StatusOK, Body: body},
		Routes:  make(map[string]mockResponse),
	}
}

func (m *mockTransport) RoundTrip(ctx context.Context, req *restclient.Request) (*restclient.Response, error) {
	m.lock.Lock()
	m.requests = append(m.requests, req)
	resp, present := m.Routes[req.Method+" "+req.Path]
	if !present {
		resp = m.Default
	}
	m.lock.Unlock()

	if m.Gate != nil {
		<-m.Gate
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	header := http.Header{}
	for k, vs := range resp.Header {
		header[k] = vs
	}
	return &restclient.Response{
		StatusCode: status,
		Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
		Header:     header,
		Body:       []byte(resp.Body),
	}, nil
}

// Requests returns the requests made so far.
func (m *mockTransport) Requests() []*restclient.Request {
	m.lock.Lock()
	defer m.lock.Unlock()
	return append([]*restclient.Request(nil), m.requests...)
}

// Calls returns "METHOD path" for each request made so far.
func (m *mockTransport) Calls() []string {
	var calls []string
	for _, req := range m.Requests() {
		calls = append(calls, req.Method+" "+req.Path)
	}
	return calls
}

// setValuesCall records one SetValues call.
type setValuesCall struct {
	Name  string
	Attrs map[string]interface{}
}

// spyClient is a form-like client that records what agents do to it.
type spyClient struct {
	lock      sync.Mutex
	refreshes int
	setValues []setValuesCall
	params    map[string]interface{}
}

func (c *spyClient) Refresh() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.refreshes++
}

func (c *spyClient) SetValues(name string, attrs map[string]interface{}) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.setValues = append(c.setValues, setValuesCall{Name: name, Attrs: attrs})
}

func (c *spyClient) ParamsFor(name string) map[string]interface{} {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.params
}

func (c *spyClient) Refreshes() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.refreshes
}

func (c *spyClient) SetValuesCalls() []setValuesCall {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]setValuesCall(nil), c.setValues...)
}

// plainClient only knows how to refresh.
type plainClient struct {
	lock      sync.Mutex
	refreshes int
}

func (c *plainClient) Refresh() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.refreshes++
}

func (c *plainClient) Refreshes() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.refreshes
}

// testOptions builds agent options around a transport, with a private
// adapter registry, a mock clock and a logger whose entries can be
// inspected.
func testOptions(transport restclient.Transport) (Options, *test.Hook) {
	logger, hook := test.NewNullLogger()
	registry := adapter.NewRegistry(nil)
	adapter.RegisterBuiltins(registry)
	return Options{
		Transport: transport,
		Registry:  registry,
		Logger:    logger,
		Clock:     clock.NewMock(),
	}, hook
}

// countingAdapter counts its invocations and leaves bodies alone.
type countingAdapter struct {
	lock   sync.Mutex
	calls  int
	bodies []interface{}
}

func (c *countingAdapter) Adapt(t adapter.Target, body interface{}) (interface{}, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.calls++
	c.bodies = append(c.bodies, body)
	return nil, nil
}

func (c *countingAdapter) Calls() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.calls
}
