// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package datastore shares state among several client components.
//
// A Store keeps a list of attached clients and refreshes all of them
// together.  Since a Store is itself an agent.Client, it can be the
// client of an agent, so that one agent's responses redraw every
// component that shows the same data:
//
//     store := datastore.New()
//     store.Attach(list)
//     store.Attach(badge)
//     users, err := agent.NewCollectionAgent(store, config, opts)
package datastore

import (
	"reflect"
	"sync"

	"github.com/diffeo/go-cape/agent"
	"github.com/sirupsen/logrus"
)

// Store propagates refreshes to its attached clients.  It can be
// safely used from multiple goroutines.
type Store struct {
	// Logger receives a debug message for every propagation.
	Logger logrus.FieldLogger

	lock    sync.Mutex
	clients []agent.Client
}

// New creates a store with no attached clients.
func New() *Store {
	return &Store{Logger: logrus.StandardLogger()}
}

// Attach adds a client to the store.  Attaching a client twice has
// no effect.  Clients that cannot be compared, such as bare
// agent.ClientFunc values, are always added and can never be
// detached; attach a pointer to them instead.
func (s *Store) Attach(c agent.Client) {
	s.lock.Lock()
	defer s.lock.Unlock()
	for _, existing := range s.clients {
		if sameClient(existing, c) {
			return
		}
	}
	s.clients = append(s.clients, c)
}

// Detach removes a client from the store, if it is attached.
func (s *Store) Detach(c agent.Client) {
	s.lock.Lock()
	defer s.lock.Unlock()
	for i, existing := range s.clients {
		if sameClient(existing, c) {
			s.clients = append(s.clients[:i], s.clients[i+1:]...)
			return
		}
	}
}

func sameClient(a, b agent.Client) bool {
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || ta == nil || !ta.Comparable() {
		return false
	}
	return a == b
}

// Clients returns the attached clients in the order they were
// attached.
func (s *Store) Clients() []agent.Client {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]agent.Client(nil), s.clients...)
}

// Propagate refreshes every attached client.  Clients may attach or
// detach while being refreshed; those changes apply to the next
// propagation.
func (s *Store) Propagate() {
	clients := s.Clients()
	if s.Logger != nil {
		s.Logger.WithField("clients", len(clients)).Debug("Propagating refresh")
	}
	for _, c := range clients {
		c.Refresh()
	}
}

// Refresh propagates, so that a store can serve as an agent's
// client.
func (s *Store) Refresh() {
	s.Propagate()
}

// Holder lazily creates a single shared Store.  The zero Holder is
// ready to use.
type Holder struct {
	// New creates the store on first use.  If nil, datastore.New
	// is used.
	New func() *Store

	lock  sync.Mutex
	store *Store
}

// Get returns the held store, creating it if needed.
func (h *Holder) Get() *Store {
	h.lock.Lock()
	defer h.lock.Unlock()
	if h.store == nil {
		if h.New != nil {
			h.store = h.New()
		} else {
			h.store = New()
		}
	}
	return h.store
}

// Reset discards the held store; the next Get creates a new one.
func (h *Holder) Reset() {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.store = nil
}
