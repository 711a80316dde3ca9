// Copyright 2016-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package poller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-cape/agent"
	"github.com/stretchr/testify/assert"
)

// fakeAgent signals every refresh and completes it with Err.
type fakeAgent struct {
	Refreshed chan struct{}
	Err       error
}

func newFakeAgent() *fakeAgent {
	return &fakeAgent{Refreshed: make(chan struct{}, 10)}
}

func (f *fakeAgent) Refresh(ctx context.Context) *agent.Call {
	call := &agent.Call{Method: "GET", Path: "/fake", Error: f.Err, Done: make(chan struct{})}
	close(call.Done)
	f.Refreshed <- struct{}{}
	return call
}

// expectRefresh waits a bounded time for one refresh.
func expectRefresh(t *testing.T, f *fakeAgent) bool {
	select {
	case <-f.Refreshed:
		return true
	case <-time.After(5 * time.Second):
		t.Error("agent was not refreshed")
		return false
	}
}

func expectNoRefresh(t *testing.T, f *fakeAgent) {
	select {
	case <-f.Refreshed:
		t.Error("unexpected refresh")
	default:
	}
}

func TestNoAgents(t *testing.T) {
	p := Poller{}
	assert.Equal(t, ErrNoAgents, p.Run(context.Background()))
}

func TestDefaults(t *testing.T) {
	p := Poller{}
	p.setDefaults()
	assert.Equal(t, 15*time.Second, p.PollInterval)
	assert.NotNil(t, p.Clock)
}

func TestRun(t *testing.T) {
	mock := clock.NewMock()
	a, b := newFakeAgent(), newFakeAgent()
	p := Poller{
		Agents:       []Refresher{a, b},
		PollInterval: time.Minute,
		Clock:        mock,
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- p.Run(ctx) }()

	// Immediately...
	if !expectRefresh(t, a) || !expectRefresh(t, b) {
		cancel()
		return
	}
	expectNoRefresh(t, a)

	// ...and then every interval
	mock.Add(time.Minute)
	expectRefresh(t, a)
	expectRefresh(t, b)

	cancel()
	assert.NoError(t, <-done)
}

func TestPollErrors(t *testing.T) {
	good, bad := newFakeAgent(), newFakeAgent()
	bad.Err = errors.New("unavailable")
	var errs []error
	p := Poller{
		Agents:       []Refresher{good, bad},
		ErrorHandler: func(err error) { errs = append(errs, err) },
	}
	p.Poll(context.Background())
	assert.Equal(t, []error{bad.Err}, errs)
	assert.Len(t, good.Refreshed, 1)
	assert.Len(t, bad.Refreshed, 1)
}
