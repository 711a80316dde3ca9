// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package agent

import (
	"sync"
)

// ObjectList is the ordered list of records a collection agent holds.
// An agent keeps the same ObjectList for its whole life and refills
// it in place on every refresh, so holding on to it is safe.
type ObjectList struct {
	lock  sync.RWMutex
	items []interface{}
}

// Len returns the number of objects.
func (l *ObjectList) Len() int {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return len(l.items)
}

// At returns the object at index i, which must be in range.
func (l *ObjectList) At(i int) interface{} {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return l.items[i]
}

// Slice returns a copy of the objects.
func (l *ObjectList) Slice() []interface{} {
	l.lock.RLock()
	defer l.lock.RUnlock()
	out := make([]interface{}, len(l.items))
	copy(out, l.items)
	return out
}

// reset clears the list and appends items one by one.
func (l *ObjectList) reset(items []interface{}) {
	l.lock.Lock()
	defer l.lock.Unlock()
	for i := range l.items {
		l.items[i] = nil
	}
	l.items = l.items[:0]
	for _, item := range items {
		l.items = append(l.items, item)
	}
}

// envelopeObjects returns the array under key in a response
// envelope.  Anything malformed yields nil.
func envelopeObjects(data interface{}, key string) []interface{} {
	envelope, isMap := data.(map[string]interface{})
	if !isMap {
		return nil
	}
	items, isArray := envelope[key].([]interface{})
	if !isArray {
		return nil
	}
	return items
}
