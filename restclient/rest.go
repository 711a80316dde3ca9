// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

// This file provides the JSON codec and status handling shared by
// agents and the in-memory server.

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"

	"github.com/ugorji/go/codec"
)

// JSONMediaType is the MIME type of JSON request and response bodies.
const JSONMediaType = "application/json"

// TextMediaType is the MIME type of plain-text bodies.
const TextMediaType = "text/plain"

// jsonHandle returns a codec handle that decodes JSON objects as
// map[string]interface{} and integers as int64.
func jsonHandle() *codec.JsonHandle {
	h := &codec.JsonHandle{}
	h.MapType = reflect.TypeOf(map[string]interface{}(nil))
	h.SignedInteger = true
	return h
}

// EncodeJSON serializes v as JSON.
func EncodeJSON(v interface{}) ([]byte, error) {
	var out []byte
	err := codec.NewEncoderBytes(&out, jsonHandle()).Encode(v)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ErrNotJSON is returned from DecodeJSON if the data is not exactly
// one JSON document.
var ErrNotJSON = errors.New("not a JSON document")

// DecodeJSON deserializes JSON data into out, which must be of
// pointer type.  The data must hold a single JSON document, with
// nothing but whitespace after it.
func DecodeJSON(data []byte, out interface{}) error {
	if !json.Valid(data) {
		return ErrNotJSON
	}
	return codec.NewDecoderBytes(data, jsonHandle()).Decode(out)
}

// ErrBadBaseURL is returned from New() if the base URL is not an
// absolute URL.
type ErrBadBaseURL struct {
	URL string
}

func (e ErrBadBaseURL) Error() string {
	return fmt.Sprintf("Base URL %q must be absolute", e.URL)
}

// ErrorHTTP is a catch-all error for non-successes returned from the
// REST endpoint.
type ErrorHTTP struct {
	// StatusCode is the failing HTTP status code.
	StatusCode int

	// Status is the failing HTTP status line.
	Status string

	// Body holds the contents of the message body, presumed to
	// be text.
	Body string

	// Data holds the decoded message body if it was JSON, or nil.
	Data interface{}
}

func (e ErrorHTTP) Error() string {
	if e.Status != "" {
		return e.Status
	}
	return fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// CheckStatus examines a response and returns an ErrorHTTP if it is
// not successful.
func CheckStatus(resp *Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	// Take a shot at decoding the body; servers often explain
	// themselves in JSON
	var data interface{}
	if err := DecodeJSON(resp.Body, &data); err != nil {
		data = nil
	}
	return ErrorHTTP{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       string(resp.Body),
		Data:       data,
	}
}

func firstError(e1, e2 error) error {
	if e1 != nil {
		return e1
	}
	return e2
}
