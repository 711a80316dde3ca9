// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package agent

import (
	"context"
	"net/http"

	"golang.org/x/sync/singleflight"
)

const refreshKey = "refresh"

// coalesce runs fetch as the single in-flight refresh tracked by
// group, and returns a call for this caller.  A caller arriving while
// a refresh is running shares its result, unless fresh is set: then
// a new refresh starts and later callers join that one instead.
//
// The shared request is not cancelled when any one caller's context
// is, but each returned call completes with ctx.Err() as soon as its
// own context is done.
func (b *base) coalesce(ctx context.Context, group *singleflight.Group, path string, fresh bool, fetch func(context.Context) *Call) *Call {
	call := newCall(http.MethodGet, path)
	if err := ctx.Err(); err != nil {
		call.Error = err
		close(call.Done)
		return call
	}

	if fresh {
		group.Forget(refreshKey)
	}
	shared := context.WithoutCancel(ctx)
	ch := group.DoChan(refreshKey, func() (interface{}, error) {
		inner := fetch(shared)
		err := inner.Wait()
		return inner.Data, err
	})

	go func() {
		select {
		case result := <-ch:
			call.Data, call.Error = result.Val, result.Err
		case <-ctx.Done():
			call.Error = ctx.Err()
		}
		close(call.Done)
	}()
	return call
}
