// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package agent

import (
	"errors"
	"fmt"
)

// ErrNoResourceName is returned when creating or reconfiguring an
// agent without a resource name.
var ErrNoResourceName = errors.New("Agent 'resource_name' is required")

// ErrNoTransport is returned when creating an agent without a
// transport.
var ErrNoTransport = errors.New("Agent requires a transport")

// ErrBadDataType is returned when an agent is configured with a data
// type other than "json" or "text".
type ErrBadDataType struct {
	DataType string
}

func (e ErrBadDataType) Error() string {
	return fmt.Sprintf("Unsupported data type %q", e.DataType)
}

// ErrBadParams is returned when GET or HEAD parameters cannot be
// converted to a query string.
type ErrBadParams struct {
	Params interface{}
}

func (e ErrBadParams) Error() string {
	return fmt.Sprintf("Cannot build a query string from %T", e.Params)
}

// ErrPanic is recorded as a call's error if a callback or error
// handler panics.  The panic does not escape the agent.
type ErrPanic struct {
	Value interface{}
}

func (e ErrPanic) Error() string {
	if err, isError := e.Value.(error); isError {
		return "Callback panicked: " + err.Error()
	}
	return fmt.Sprintf("Callback panicked: %+v", e.Value)
}
