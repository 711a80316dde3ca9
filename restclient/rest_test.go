// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyURL(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)

	_, err = New("/relative/only")
	assert.Equal(t, ErrBadBaseURL{URL: "/relative/only"}, err)
}

func TestRoundTrip(t *testing.T) {
	var gotMethod, gotPath, gotQuery, gotHeader, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotHeader = r.Header.Get("X-Test")
		body, _ := ioutil.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("Content-Type", JSONMediaType)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	transport, err := New(server.URL + "/")
	require.NoError(t, err)

	resp, err := transport.RoundTrip(context.Background(), &Request{
		Method: http.MethodPost,
		Path:   "/api/users?x=1",
		Header: http.Header{"X-Test": []string{"yes"}},
		Body:   []byte(`{"user":{}}`),
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, `{"ok":true}`, string(resp.Body))
	assert.Equal(t, JSONMediaType, resp.Header.Get("Content-Type"))

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/users", gotPath)
	assert.Equal(t, "x=1", gotQuery)
	assert.Equal(t, "yes", gotHeader)
	assert.Equal(t, `{"user":{}}`, gotBody)
}

func TestRoundTripCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	transport, err := New(server.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = transport.RoundTrip(ctx, &Request{Method: http.MethodGet, Path: "/"})
	assert.Error(t, err)
}

func TestCheckStatus(t *testing.T) {
	assert.NoError(t, CheckStatus(&Response{StatusCode: 200}))
	assert.NoError(t, CheckStatus(&Response{StatusCode: 204}))

	err := CheckStatus(&Response{
		StatusCode: 422,
		Status:     "422 Unprocessable Entity",
		Body:       []byte(`{"errors":["name is blank"]}`),
	})
	if assert.IsType(t, ErrorHTTP{}, err) {
		e := err.(ErrorHTTP)
		assert.Equal(t, 422, e.StatusCode)
		assert.Equal(t, "422 Unprocessable Entity", e.Error())
		assert.Equal(t, map[string]interface{}{"errors": []interface{}{"name is blank"}}, e.Data)
	}

	err = CheckStatus(&Response{StatusCode: 500, Body: []byte("oops")})
	if assert.IsType(t, ErrorHTTP{}, err) {
		e := err.(ErrorHTTP)
		assert.Equal(t, "500 Internal Server Error", e.Error())
		assert.Equal(t, "oops", e.Body)
		assert.Nil(t, e.Data)
	}
}

func TestJSONCodec(t *testing.T) {
	data, err := EncodeJSON(map[string]interface{}{"name": "John"})
	require.NoError(t, err)
	assert.Equal(t, `{"name":"John"}`, string(data))

	var out interface{}
	require.NoError(t, DecodeJSON([]byte(`{"user":{"id":123,"tags":["a"]}}`), &out))
	user := out.(map[string]interface{})["user"].(map[string]interface{})
	assert.EqualValues(t, 123, user["id"])
	assert.Equal(t, []interface{}{"a"}, user["tags"])

	assert.Error(t, DecodeJSON([]byte("not json"), &out))

	for _, text := range []string{"null and void", "true story", "42 apples", `{"a":1} trailing`, ""} {
		assert.Equal(t, ErrNotJSON, DecodeJSON([]byte(text), &out), text)
	}
	require.NoError(t, DecodeJSON([]byte(" 42\n"), &out))
	assert.EqualValues(t, 42, out)
}
