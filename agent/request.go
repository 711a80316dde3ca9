// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package agent

// This file holds the request pipeline shared by both agent types.

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"sort"
	"sync"

	"github.com/diffeo/go-cape/adapter"
	"github.com/diffeo/go-cape/restclient"
	"github.com/diffeo/go-cape/restpath"
	"github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
)

// RequestIDHeader carries a unique id for every request.
const RequestIDHeader = "X-Request-Id"

// base is the state and request machinery embedded in both agent
// types.
type base struct {
	// self is the outer agent, handed to callbacks and adapters.
	self Agent

	client Client
	opts   Options

	lock           sync.Mutex
	config         Config
	data           interface{}
	header         http.Header
	responseHeader http.Header
}

func (b *base) init(self Agent, client Client, config Config, opts Options) error {
	if err := config.Validate(); err != nil {
		return err
	}
	if err := opts.setDefaults(); err != nil {
		return err
	}
	b.self = self
	b.client = client
	b.opts = opts
	b.config = config
	b.header = http.Header{"Content-Type": []string{restclient.JSONMediaType}}
	b.responseHeader = http.Header{}
	return nil
}

// Config returns the agent's current configuration.
func (b *base) Config() Config {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.config
}

// Configure replaces the agent's configuration.  Data, objects and
// headers are kept.
func (b *base) Configure(config Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	b.lock.Lock()
	defer b.lock.Unlock()
	b.config = config
	return nil
}

// Client returns the client the agent works for.
func (b *base) Client() Client {
	return b.client
}

// ResourceName returns the configured resource name.
func (b *base) ResourceName() string {
	return b.Config().ResourceName
}

// Data returns the body of the last successful response.
func (b *base) Data() interface{} {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.data
}

// Header returns a copy of the request headers.
func (b *base) Header() http.Header {
	b.lock.Lock()
	defer b.lock.Unlock()
	return cloneHeader(b.header)
}

// SetHeader sets a request header.
func (b *base) SetHeader(key, value string) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.header.Set(key, value)
}

// ResponseHeader returns a copy of the last response's headers.
func (b *base) ResponseHeader() http.Header {
	b.lock.Lock()
	defer b.lock.Unlock()
	return cloneHeader(b.responseHeader)
}

// resolver returns a path resolver for the current configuration.
func (b *base) resolver() restpath.Resolver {
	return restpath.Resolver{
		Config:    b.Config().PathConfig(),
		Inflector: b.opts.Inflector,
	}
}

// CollectionPath returns the path of the whole collection.
func (b *base) CollectionPath() string {
	return b.resolver().CollectionPath()
}

// MemberPath returns the path of the member with some id.
func (b *base) MemberPath(id string) string {
	return b.resolver().MemberPath(id)
}

// NewPath returns the path of the new-member form.
func (b *base) NewPath() string {
	return b.resolver().NewPath()
}

// SingularPath returns the path of a singular resource.
func (b *base) SingularPath() string {
	return b.resolver().SingularPath()
}

// notifyClient tells the client to redraw, if there is a client.
func (b *base) notifyClient() {
	if b.client != nil {
		b.client.Refresh()
	}
}

func (b *base) logger() logrus.FieldLogger {
	return b.opts.Logger.WithField("resource", b.ResourceName())
}

// defaultErrorHandler logs a failure nobody else handled.
func (b *base) defaultErrorHandler(call *Call, err error) {
	if b.opts.ErrorHandler != nil {
		b.opts.ErrorHandler(err)
		return
	}
	b.logger().WithFields(logrus.Fields{
		"method": call.Method,
		"path":   call.Path,
		"err":    err,
	}).Error("Agent request failed")
}

// issue starts a request in the background and returns its call.
// On success the response is stored, then after (if any) runs with
// the data, then the callback.  On failure only the error handler
// runs.
func (b *base) issue(ctx context.Context, method, path string, params interface{}, cb Callback, eh ErrorHandler, after func(data interface{})) *Call {
	call := newCall(method, path)
	go b.complete(ctx, call, params, cb, eh, after)
	return call
}

func (b *base) complete(ctx context.Context, call *Call, params interface{}, cb Callback, eh ErrorHandler, after func(data interface{})) {
	// handled is set once the callback or error handler is entered
	handled := false
	fail := func(err error) {
		handled = true
		if eh != nil {
			eh(err)
		} else {
			b.defaultErrorHandler(call, err)
		}
	}

	defer close(call.Done)
	defer func() {
		obj := recover()
		if obj == nil {
			return
		}
		err := ErrPanic{Value: obj}
		b.logger().WithFields(logrus.Fields{
			"method": call.Method,
			"path":   call.Path,
			"err":    err,
		}).Error("Agent callback panicked")
		if call.Error == nil {
			call.Error = err
		}
		if !handled {
			b.failAfterPanic(call, err, fail)
		}
	}()

	data, err := b.roundTrip(ctx, call.Method, call.Path, params)
	if err != nil {
		call.Error = err
		fail(err)
		return
	}

	call.Data = data
	if after != nil {
		after(data)
	}
	if cb != nil {
		handled = true
		cb(b.self)
	}
}

// failAfterPanic reports a panic that struck before the callback or
// error handler ran.  A second panic from the error handler is only
// logged.
func (b *base) failAfterPanic(call *Call, err ErrPanic, fail func(error)) {
	defer func() {
		if obj := recover(); obj != nil {
			b.logger().WithFields(logrus.Fields{
				"method": call.Method,
				"path":   call.Path,
				"err":    ErrPanic{Value: obj},
			}).Error("Agent error handler panicked")
		}
	}()
	fail(err)
}

// roundTrip performs one request and stores its adapted response.
func (b *base) roundTrip(ctx context.Context, method, path string, params interface{}) (interface{}, error) {
	b.lock.Lock()
	config := b.config
	header := cloneHeader(b.header)
	b.lock.Unlock()

	// An unknown adapter fails before anything reaches the server
	adapt, err := b.opts.Registry.Resolve(config.Adapter)
	if err != nil {
		return nil, err
	}

	req, err := buildRequest(method, path, params, config.DataType, header)
	if err != nil {
		return nil, err
	}

	start := b.opts.Clock.Now()
	resp, err := b.opts.Transport.RoundTrip(ctx, req)
	elapsed := b.opts.Clock.Now().Sub(start)
	observe(method, resp, err, elapsed)
	b.logger().WithFields(logrus.Fields{
		"method":     method,
		"path":       req.Path,
		"request_id": req.Header.Get(RequestIDHeader),
		"status":     statusCode(resp, err),
		"duration":   elapsed,
	}).Debug("Agent request")
	if err != nil {
		return nil, err
	}
	if err = restclient.CheckStatus(resp); err != nil {
		return nil, err
	}

	data := parseBody(config.DataType, resp.Body)
	target := &adapterTarget{
		base:     b,
		header:   cloneHeader(header),
		response: cloneHeader(resp.Header),
	}
	data, err = adapter.Apply(adapt, target, data)
	if err != nil {
		return nil, err
	}

	b.lock.Lock()
	defer b.lock.Unlock()
	b.data = data
	b.responseHeader = target.response
	if adapt != nil {
		mergeHeader(b.header, header, target.header)
	}
	return data, nil
}

// buildRequest serializes a request for the transport.
func buildRequest(method, path string, params interface{}, dataType string, header http.Header) (*restclient.Request, error) {
	req := &restclient.Request{
		Method: method,
		Path:   path,
		Header: cloneHeader(header),
	}
	req.Header.Set(RequestIDHeader, uuid.NewV4().String())
	switch dataType {
	case DataTypeJSON:
		req.Header.Set("Accept", restclient.JSONMediaType)
	case DataTypeText:
		req.Header.Set("Accept", restclient.TextMediaType)
	default:
		req.Header.Set("Accept", restclient.JSONMediaType+", "+restclient.TextMediaType+", */*")
	}

	if method == http.MethodGet || method == http.MethodHead {
		query, err := queryString(params)
		if err != nil {
			return nil, err
		}
		if query != "" {
			req.Path = path + "?" + query
		}
		req.Header.Del("Content-Type")
		return req, nil
	}

	switch body := params.(type) {
	case nil:
		req.Header.Del("Content-Type")
	case string:
		req.Body = []byte(body)
		if dataType == DataTypeText {
			req.Header.Set("Content-Type", restclient.TextMediaType)
		}
	case []byte:
		req.Body = body
		if dataType == DataTypeText {
			req.Header.Set("Content-Type", restclient.TextMediaType)
		}
	case Params:
		if len(body) == 0 && method == http.MethodDelete {
			req.Header.Del("Content-Type")
			break
		}
		data, err := restclient.EncodeJSON(map[string]interface{}(body))
		if err != nil {
			return nil, err
		}
		req.Body = data
	default:
		data, err := restclient.EncodeJSON(body)
		if err != nil {
			return nil, err
		}
		req.Body = data
	}
	return req, nil
}

// queryString encodes parameters in a stable order.  Slices become
// repeated "key[]" values, as Rails expects.
func queryString(params interface{}) (string, error) {
	var m map[string]interface{}
	switch p := params.(type) {
	case nil:
		return "", nil
	case url.Values:
		return p.Encode(), nil
	case Params:
		m = p
	case map[string]interface{}:
		m = p
	case map[string]string:
		m = make(map[string]interface{}, len(p))
		for k, v := range p {
			m[k] = v
		}
	default:
		return "", ErrBadParams{Params: params}
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := url.Values{}
	for _, k := range keys {
		v := reflect.ValueOf(m[k])
		if m[k] != nil && (v.Kind() == reflect.Slice || v.Kind() == reflect.Array) {
			for i := 0; i < v.Len(); i++ {
				values.Add(k+"[]", fmt.Sprint(v.Index(i).Interface()))
			}
			continue
		}
		if m[k] == nil {
			values.Add(k, "")
			continue
		}
		values.Add(k, fmt.Sprint(m[k]))
	}
	return values.Encode(), nil
}

// parseBody turns a response body into agent data.  It never returns
// nil for a body that is not JSON null: anything that does not parse
// is kept as text.
func parseBody(dataType string, body []byte) interface{} {
	if dataType == DataTypeText {
		return string(body)
	}
	var data interface{}
	if err := restclient.DecodeJSON(body, &data); err != nil {
		return string(body)
	}
	return data
}

// mergeHeader applies to dst the edits that turned before into after,
// leaving every other key of dst alone.
func mergeHeader(dst, before, after http.Header) {
	for k, vs := range after {
		if !reflect.DeepEqual(before[k], vs) {
			dst[k] = append([]string(nil), vs...)
		}
	}
	for k := range before {
		if _, kept := after[k]; !kept {
			delete(dst, k)
		}
	}
}

func cloneHeader(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for k, vs := range h {
		out[k] = append([]string(nil), vs...)
	}
	return out
}

// adapterTarget is what an adapter sees of an agent while it adapts
// one response.  Header edits are merged back into the agent's
// headers after the adapter returns.
type adapterTarget struct {
	base     *base
	header   http.Header
	response http.Header
}

func (t *adapterTarget) ResourceName() string        { return t.base.ResourceName() }
func (t *adapterTarget) Data() interface{}           { return t.base.Data() }
func (t *adapterTarget) Header() http.Header         { return t.header }
func (t *adapterTarget) ResponseHeader() http.Header { return t.response }

// Agent returns the agent being adapted, for adapters that need
// more than the Target interface.
func (t *adapterTarget) Agent() Agent { return t.base.self }
