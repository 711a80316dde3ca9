// Copyright 2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package inflect

import (
	"container/list"
	"sync"
)

// entry is one memoized word transformation.
type entry struct {
	key   string
	value string
}

// lru is a least-recently-used cache of strings with a fixed
// capacity.  The cache can be safely accessed from multiple
// goroutines.
type lru struct {
	size      int
	lock      sync.Mutex
	evictList *list.List
	index     map[string]*list.Element
}

func newLRU(size int) *lru {
	if size < 1 {
		size = 1
	}
	return &lru{
		size:      size,
		evictList: list.New(),
		index:     make(map[string]*list.Element),
	}
}

// Get retrieves an item from the cache.  If it is not present, calls
// the compute function and saves its result.
func (lru *lru) Get(key string, compute func(string) string) string {
	lru.lock.Lock()
	defer lru.lock.Unlock()

	if element, present := lru.index[key]; present {
		lru.evictList.MoveToBack(element)
		return element.Value.(entry).value
	}

	value := compute(key)
	lru.add(entry{key: key, value: value})
	return value
}

// Len returns the number of items currently cached.
func (lru *lru) Len() int {
	lru.lock.Lock()
	defer lru.lock.Unlock()
	return len(lru.index)
}

// add is an internal helper, running under the lock, that adds a new
// item to the cache.  The item is known to not already exist.
func (lru *lru) add(item entry) {
	element := lru.evictList.PushBack(item)
	lru.index[item.key] = element

	// If this caused the cache to go over size, start evicting items
	for len(lru.index) > lru.size {
		head := lru.evictList.Front()
		old := head.Value.(entry)
		delete(lru.index, old.key)
		lru.evictList.Remove(head)
	}
}
