// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	assert.Equal(t, ErrNoResourceName, Config{}.Validate())
	assert.NoError(t, Config{ResourceName: "user"}.Validate())
	assert.NoError(t, Config{ResourceName: "user", DataType: DataTypeJSON}.Validate())
	assert.NoError(t, Config{ResourceName: "user", DataType: DataTypeText}.Validate())
	assert.Equal(t, ErrBadDataType{DataType: "xml"},
		Config{ResourceName: "user", DataType: "xml"}.Validate())
}

func TestConfigRefreshes(t *testing.T) {
	assert.True(t, Config{}.Refreshes())
	assert.True(t, Config{AutoRefresh: Bool(true)}.Refreshes())
	assert.False(t, Config{AutoRefresh: Bool(false)}.Refreshes())
}

func TestConfigFromMap(t *testing.T) {
	config, err := ConfigFromMap(map[string]interface{}{
		"resource_name": "user",
		"base_path":     "/api/",
		"nested_in":     "teams/9/",
		"shallow":       true,
		"adapter":       "rails",
		"auto_refresh":  false,
		"id":            123,
	})
	if assert.NoError(t, err) {
		assert.Equal(t, "user", config.ResourceName)
		assert.Equal(t, "/api/", config.BasePath)
		assert.Equal(t, "teams/9/", config.NestedIn)
		assert.True(t, config.Shallow)
		assert.Equal(t, "rails", config.Adapter)
		assert.False(t, config.Refreshes())
		assert.Equal(t, "123", config.ID)
	}

	_, err = ConfigFromMap(map[string]interface{}{"base_path": "/api/"})
	assert.Equal(t, ErrNoResourceName, err)

	_, err = ConfigFromMap(map[string]interface{}{"resource_name": "user", "colour": "red"})
	assert.Error(t, err)
}

func TestConstructorErrors(t *testing.T) {
	opts, _ := testOptions(stubTransport("{}"))

	_, err := NewCollectionAgent(nil, Config{}, opts)
	assert.Equal(t, ErrNoResourceName, err)

	_, err = NewResourceAgent(nil, Config{}, opts)
	assert.Equal(t, ErrNoResourceName, err)

	_, err = NewCollectionAgent(nil, Config{ResourceName: "user"}, Options{})
	assert.Equal(t, ErrNoTransport, err)
}

func TestConfigure(t *testing.T) {
	opts, _ := testOptions(stubTransport("{}"))
	a, err := NewCollectionAgent(nil, Config{ResourceName: "user"}, opts)
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, "/users", a.CollectionPath())

	assert.NoError(t, a.Configure(Config{ResourceName: "user", BasePath: "/api/"}))
	assert.Equal(t, "/api/users", a.CollectionPath())

	assert.Equal(t, ErrNoResourceName, a.Configure(Config{}))
	assert.Equal(t, "/api/users", a.CollectionPath())
}
