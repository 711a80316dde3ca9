// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package agent

import (
	"github.com/diffeo/go-cape/restpath"
	"github.com/mitchellh/mapstructure"
)

const (
	// DataTypeAuto parses responses as JSON when possible and
	// keeps the text otherwise.
	DataTypeAuto = ""

	// DataTypeJSON asks the server for JSON.  Responses that do
	// not parse are still kept as text.
	DataTypeJSON = "json"

	// DataTypeText keeps responses as text without parsing.
	DataTypeText = "text"
)

// Config holds the options of one agent.
type Config struct {
	// ResourceName is the name of the resource, e.g. "user".
	// This field is required.
	ResourceName string `mapstructure:"resource_name" yaml:"resource_name"`

	// BasePath is prepended to every request path.  If empty,
	// defaults to "/".
	BasePath string `mapstructure:"base_path" yaml:"base_path"`

	// NestedIn is inserted between the base path and the resource
	// name, e.g. "companies/123/".
	NestedIn string `mapstructure:"nested_in" yaml:"nested_in"`

	// Shallow omits NestedIn from member paths.
	Shallow bool `mapstructure:"shallow" yaml:"shallow"`

	// Singular marks a resource that has no collection, such as
	// "/profile".
	Singular bool `mapstructure:"singular" yaml:"singular"`

	// Adapter names the response adapter, e.g. "rails".  If
	// empty, the registry's default adapter is used.
	Adapter string `mapstructure:"adapter" yaml:"adapter"`

	// AutoRefresh controls whether a successful POST, PATCH, PUT
	// or DELETE from a collection agent refreshes it.  If nil,
	// defaults to true.
	AutoRefresh *bool `mapstructure:"auto_refresh" yaml:"auto_refresh"`

	// DataType is the expected response type: DataTypeAuto,
	// DataTypeJSON or DataTypeText.
	DataType string `mapstructure:"data_type" yaml:"data_type"`

	// ParamName is the envelope key holding a collection's
	// objects.  If empty, it is derived from ResourceName, so
	// that "user" reads the "users" key.
	ParamName string `mapstructure:"param_name" yaml:"param_name"`

	// ID identifies the member a resource agent works on.
	// Collection agents ignore it.
	ID string `mapstructure:"id" yaml:"id"`
}

// Bool returns a pointer to b, for filling in Config.AutoRefresh.
func Bool(b bool) *bool {
	return &b
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.ResourceName == "" {
		return ErrNoResourceName
	}
	switch c.DataType {
	case DataTypeAuto, DataTypeJSON, DataTypeText:
	default:
		return ErrBadDataType{DataType: c.DataType}
	}
	return nil
}

// Refreshes reports whether unsafe requests trigger a refresh.
func (c Config) Refreshes() bool {
	return c.AutoRefresh == nil || *c.AutoRefresh
}

// PathConfig returns the path-related subset of the configuration.
func (c Config) PathConfig() restpath.Config {
	return restpath.Config{
		ResourceName: c.ResourceName,
		BasePath:     c.BasePath,
		NestedIn:     c.NestedIn,
		Shallow:      c.Shallow,
		Singular:     c.Singular,
	}
}

// ConfigFromMap decodes an option map, such as one read from YAML,
// into a validated Config.  Keys are the snake-case field names, e.g.
// "resource_name".  Values are converted loosely, so that a numeric
// "id" becomes a string.
func ConfigFromMap(options map[string]interface{}) (Config, error) {
	var config Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &config,
	})
	if err == nil {
		err = decoder.Decode(options)
	}
	if err == nil {
		err = config.Validate()
	}
	return config, err
}
