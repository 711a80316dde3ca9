// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import (
	"bytes"
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
)

// HandlerTransport is a Transport that serves requests in-process
// with an http.Handler, without a network connection.
type HandlerTransport struct {
	Handler http.Handler
}

// RoundTrip implements Transport.
func (t HandlerTransport) RoundTrip(ctx context.Context, r *Request) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, r.Method, r.Path, bytes.NewReader(r.Body))
	if err != nil {
		return nil, err
	}
	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec := httptest.NewRecorder()
	t.Handler.ServeHTTP(rec, req)
	result := rec.Result()
	defer result.Body.Close()
	data, err := ioutil.ReadAll(result.Body)
	if err != nil {
		return nil, err
	}
	return &Response{
		StatusCode: result.StatusCode,
		Status:     result.Status,
		Header:     result.Header,
		Body:       data,
	}, nil
}
