// Copyright 2016-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package poller keeps agents fresh by refreshing them on a fixed
// interval.
package poller

import (
	"context"
	"errors"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-cape/agent"
)

// ErrNoAgents is returned from Run if there is nothing to poll.
var ErrNoAgents = errors.New("poller has no agents")

// Refresher is anything that can be refreshed like an agent.  Both
// *agent.CollectionAgent and *agent.ResourceAgent qualify.
type Refresher interface {
	Refresh(ctx context.Context) *agent.Call
}

// Poller refreshes a set of agents periodically.
type Poller struct {
	// Agents are the agents to refresh.  This field is required.
	Agents []Refresher

	// PollInterval states how often the agents are refreshed.
	// If unset, defaults to 15 seconds.
	PollInterval time.Duration

	// ErrorHandler is called with every failed refresh.  If
	// unset, failures are ignored here; each agent still reports
	// them through its own default error handler.
	ErrorHandler func(error)

	// Clock defines a time source for the poller.  Only test
	// code should need to set this.  If unset, uses a time source
	// backed by real wall-clock time.
	Clock clock.Clock
}

// setDefaults sets default values for any Poller fields that are
// uninitialized.
func (p *Poller) setDefaults() {
	if p.PollInterval == time.Duration(0) {
		p.PollInterval = time.Duration(15) * time.Second
	}

	if p.Clock == nil {
		p.Clock = clock.New()
	}
}

// Run refreshes every agent at once, and then again every
// PollInterval, until the provided context is cancelled.  A poll
// waits for all of its refreshes to finish, so polls never overlap.
// Returns ErrNoAgents if there is nothing to poll, and otherwise nil
// once the context is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	p.setDefaults()
	if len(p.Agents) == 0 {
		return ErrNoAgents
	}

	ticker := p.Clock.Ticker(p.PollInterval)
	defer ticker.Stop()

	p.Poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.Poll(ctx)
		}
	}
}

// Poll refreshes every agent once, in parallel, and waits for them
// all to finish.
func (p *Poller) Poll(ctx context.Context) {
	calls := make([]*agent.Call, len(p.Agents))
	for i, a := range p.Agents {
		calls[i] = a.Refresh(ctx)
	}
	for _, call := range calls {
		if err := call.Wait(); err != nil && p.ErrorHandler != nil {
			p.ErrorHandler(err)
		}
	}
}
