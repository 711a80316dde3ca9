// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restclient is the HTTP boundary of the resource agents.
//
// Agents hand a Transport a fully built Request (method, path with
// query string, headers and serialized body) and get back the raw
// Response.  Everything above that, such as parsing bodies and
// deciding what a failure means, belongs to the agent.  The usual
// transport is an HTTPTransport rooted at a base URL:
//
//     t, err := restclient.New("http://localhost:5980/")
package restclient

import (
	"bytes"
	"context"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
)

// Request is one HTTP request issued by an agent.
type Request struct {
	// Method is the HTTP verb, e.g. "GET".
	Method string

	// Path is the request path, possibly with a query string.
	// It is resolved relative to the transport's base URL.
	Path string

	// Header holds the request headers.
	Header http.Header

	// Body is the serialized request body, or nil.
	Body []byte
}

// Response is the raw result of a request that reached the server.
type Response struct {
	// StatusCode is the numeric HTTP status, e.g. 200.
	StatusCode int

	// Status is the status line text, e.g. "200 OK".
	Status string

	// Header holds the response headers.
	Header http.Header

	// Body holds the complete response body.
	Body []byte
}

// Transport performs HTTP requests.  RoundTrip returns an error only
// if the request could not be made or the response could not be read;
// a response with a failing status is still a Response.
type Transport interface {
	RoundTrip(ctx context.Context, req *Request) (*Response, error)
}

// TransportFunc adapts an ordinary function to the Transport
// interface.
type TransportFunc func(ctx context.Context, req *Request) (*Response, error)

// RoundTrip calls f.
func (f TransportFunc) RoundTrip(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// HTTPTransport is a Transport that speaks to an HTTP server.
type HTTPTransport struct {
	// URL is the base URL that request paths are resolved against.
	URL *url.URL

	// Client is the HTTP client used for requests.  If nil,
	// http.DefaultClient is used.  Timeouts are configured here.
	Client *http.Client
}

// New creates a transport rooted at baseURL.
func New(baseURL string) (*HTTPTransport, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, ErrBadBaseURL{URL: baseURL}
	}
	return &HTTPTransport{URL: u}, nil
}

// Resolve returns the absolute URL of a request path.
func (t *HTTPTransport) Resolve(path string) (*url.URL, error) {
	return t.URL.Parse(path)
}

// RoundTrip implements Transport.
func (t *HTTPTransport) RoundTrip(ctx context.Context, r *Request) (resp *Response, err error) {
	u, err := t.Resolve(r.Path)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, u.String(), body)
	if err != nil {
		return nil, err
	}
	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}
	hresp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = firstError(err, hresp.Body.Close())
	}()

	data, err := ioutil.ReadAll(hresp.Body)
	if err != nil {
		return nil, err
	}
	return &Response{
		StatusCode: hresp.StatusCode,
		Status:     hresp.Status,
		Header:     hresp.Header,
		Body:       data,
	}, nil
}
