// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"fmt"
	"io/ioutil"
	"strings"

	"github.com/diffeo/go-cape/agent"
	"github.com/diffeo/go-cape/memserver"
	"gopkg.in/yaml.v2"
)

// fileConfig is the layout of the YAML configuration file.
type fileConfig struct {
	Resources map[string]map[string]interface{} `yaml:"resources"`
}

func loadConfigYaml(filename string) (map[string]agent.Config, error) {
	bytes, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return parseConfigYaml(bytes)
}

// parseConfigYaml decodes resource configurations.  Each resource's
// name defaults to its key.
func parseConfigYaml(data []byte) (map[string]agent.Config, error) {
	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	result := make(map[string]agent.Config, len(file.Resources))
	for name, options := range file.Resources {
		if options == nil {
			options = make(map[string]interface{})
		}
		if _, present := options["resource_name"]; !present {
			options["resource_name"] = name
		}
		config, err := agent.ConfigFromMap(options)
		if err != nil {
			return nil, fmt.Errorf("resource %q: %v", name, err)
		}
		result[name] = config
	}
	return result, nil
}

// config returns the agent configuration for a named resource.
// Commands are one-shot, so agents never refresh on their own.
func (ctl *capectl) config(name string) agent.Config {
	config, present := ctl.Resources[name]
	if !present {
		config = agent.Config{ResourceName: name, BasePath: ctl.BasePath}
	}
	if ctl.Adapter != "" {
		config.Adapter = ctl.Adapter
	}
	config.AutoRefresh = agent.Bool(false)
	return config
}

// registerResource adds a resource to an in-memory server at the
// paths an agent with config would use.
func registerResource(s *memserver.Server, config agent.Config) {
	prefix := config.BasePath
	if prefix == "" {
		prefix = "/"
	}
	if config.Singular {
		s.Singular(prefix+config.NestedIn, config.ResourceName)
		return
	}
	s.Collection(prefix+config.NestedIn, config.ResourceName)
	if config.Shallow && config.NestedIn != "" {
		s.Collection(prefix, config.ResourceName)
	}
}

// parseParams turns "key=value" arguments into request parameters.
// Values that read as YAML numbers or booleans keep that type.
func parseParams(args []string) (agent.Params, error) {
	params := agent.Params{}
	for _, arg := range args {
		parts := strings.SplitN(arg, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, fmt.Errorf("expected key=value, got %q", arg)
		}
		var value interface{}
		if err := yaml.Unmarshal([]byte(parts[1]), &value); err != nil {
			value = parts[1]
		}
		switch value.(type) {
		case int, int64, float64, bool:
		default:
			value = parts[1]
		}
		params[parts[0]] = value
	}
	return params, nil
}
