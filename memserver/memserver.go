// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package memserver provides an in-memory REST server that speaks the
// Rails conventions the agents expect.  It is intended for tests,
// demos and local development against the "capectl" tool.
//
// Register resources, then serve the handler:
//
//     s := memserver.New()
//     s.Collection("/api/", "user")
//     s.Collection("/api/teams/{team_id}/", "user")
//     s.Singular("/api/", "profile")
//     http.ListenAndServe(":5980", s.Handler())
//
// A collection "user" under "/api/" answers
//
//     GET    /api/users                 {"users": [...]}
//     POST   /api/users                 {"user": {...}} => 201 {"user": {...}}
//     GET    /api/users/new             {"user": {}}
//     GET    /api/users/{id}            {"user": {...}}
//     PATCH  /api/users/{id}            (also PUT) merges attributes
//     DELETE /api/users/{id}            {"user": {...}}
//     *      /api/users/{id}/{action}   {"result": "OK", "action": ...}
//     *      /api/users/{action}        {"result": "OK", "action": ...}
//
// Collections registered under different prefixes with the same name
// share their records, so nested and shallow paths see the same data.
// GET on a collection filters on query parameters that match record
// attributes.
package memserver

import (
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/diffeo/go-cape/inflect"
	"github.com/diffeo/go-cape/restclient"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/urfave/negroni"
)

// Record is the attribute map of one stored resource.
type Record map[string]interface{}

// Server is an in-memory REST server.  It can be safely used from
// multiple goroutines.
type Server struct {
	// Logger receives request logs.
	Logger logrus.FieldLogger

	inflector inflect.Inflector
	router    *mux.Router

	lock      sync.Mutex
	tables    map[string]*table
	singulars map[string]Record
	actions   []Action
}

// Action records one call to a custom action.
type Action struct {
	Method   string
	Resource string
	ID       string
	Name     string
}

// table holds the records of one collection.
type table struct {
	nextID  int64
	records map[int64]Record
}

// New creates an empty server.
func New() *Server {
	return &Server{
		Logger:    logrus.StandardLogger(),
		inflector: inflect.Default(),
		router:    mux.NewRouter(),
		tables:    make(map[string]*table),
		singulars: make(map[string]Record),
	}
}

// Router returns the server's router, for adding further routes.
func (s *Server) Router() *mux.Router {
	return s.router
}

// Handler returns the HTTP handler serving all registered resources,
// wrapped with panic recovery and request logging.
func (s *Server) Handler() http.Handler {
	recovery := negroni.NewRecovery()
	recovery.Logger = s.Logger
	recovery.PrintStack = false
	n := negroni.New(recovery, negroni.HandlerFunc(s.logRequest))
	n.UseHandler(s.router)
	return n
}

func (s *Server) logRequest(rw http.ResponseWriter, req *http.Request, next http.HandlerFunc) {
	start := time.Now()
	next(rw, req)
	fields := logrus.Fields{
		"method":   req.Method,
		"path":     req.URL.Path,
		"duration": time.Since(start),
	}
	if res, isNegroni := rw.(negroni.ResponseWriter); isNegroni {
		fields["status"] = res.Status()
	}
	s.Logger.WithFields(fields).Debug("memserver request")
}

// Collection registers a collection resource under prefix.  prefix
// may contain gorilla/mux variables such as "/teams/{team_id}/";
// they are accepted but otherwise ignored.
func (s *Server) Collection(prefix, name string) {
	plural := inflect.Tableize(s.inflector, name)
	s.lock.Lock()
	if _, present := s.tables[name]; !present {
		s.tables[name] = &table{nextID: 1, records: make(map[int64]Record)}
	}
	s.lock.Unlock()

	c := &collectionHandler{server: s, name: name, plural: plural}
	base := prefix + plural
	s.router.Path(base).Methods("GET", "HEAD").HandlerFunc(c.index)
	s.router.Path(base).Methods("POST").HandlerFunc(c.create)
	s.router.Path(base + "/new").Methods("GET", "HEAD").HandlerFunc(c.newForm)
	s.router.Path(base + "/{id:[0-9]+}").Methods("GET", "HEAD").HandlerFunc(c.show)
	s.router.Path(base + "/{id:[0-9]+}").Methods("PATCH", "PUT").HandlerFunc(c.update)
	s.router.Path(base + "/{id:[0-9]+}").Methods("DELETE").HandlerFunc(c.destroy)
	s.router.Path(base + "/{id:[0-9]+}/{action}").HandlerFunc(c.action)
	s.router.Path(base + "/{action}").HandlerFunc(c.action)
}

// Singular registers a singular resource at prefix + name.
func (s *Server) Singular(prefix, name string) {
	h := &singularHandler{server: s, name: name}
	path := prefix + name
	s.router.Path(path).Methods("GET", "HEAD").HandlerFunc(h.show)
	s.router.Path(path).Methods("POST", "PATCH", "PUT").HandlerFunc(h.update)
	s.router.Path(path).Methods("DELETE").HandlerFunc(h.destroy)
	s.router.Path(path + "/{action}").HandlerFunc(h.action)
}

// Seed adds a record to a registered collection and returns its id.
func (s *Server) Seed(name string, attrs Record) (int64, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	t, present := s.tables[name]
	if !present {
		return 0, ErrNoSuchResource{Name: name}
	}
	return t.insert(attrs), nil
}

// Records returns copies of a collection's records in id order.
func (s *Server) Records(name string) []Record {
	s.lock.Lock()
	defer s.lock.Unlock()
	t, present := s.tables[name]
	if !present {
		return nil
	}
	return t.list(nil)
}

// Summarize returns the number of records in each collection.
func (s *Server) Summarize() map[string]int {
	s.lock.Lock()
	defer s.lock.Unlock()
	result := make(map[string]int, len(s.tables))
	for name, t := range s.tables {
		result[name] = len(t.records)
	}
	return result
}

// Actions returns the custom actions called so far.
func (s *Server) Actions() []Action {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]Action(nil), s.actions...)
}

func (s *Server) recordAction(a Action) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.actions = append(s.actions, a)
}

// ErrNoSuchResource is returned by Seed for an unregistered
// collection.
type ErrNoSuchResource struct {
	Name string
}

func (e ErrNoSuchResource) Error() string {
	return fmt.Sprintf("No such resource %q", e.Name)
}

func (t *table) insert(attrs Record) int64 {
	id := t.nextID
	t.nextID++
	record := copyRecord(attrs)
	record["id"] = id
	t.records[id] = record
	return id
}

// list returns the records matching every filter, in id order.
func (t *table) list(filters map[string]string) []Record {
	ids := make([]int64, 0, len(t.records))
	for id := range t.records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	result := make([]Record, 0, len(ids))
	for _, id := range ids {
		record := t.records[id]
		if matches(record, filters) {
			result = append(result, copyRecord(record))
		}
	}
	return result
}

func matches(record Record, filters map[string]string) bool {
	for k, v := range filters {
		if fmt.Sprint(record[k]) != v {
			return false
		}
	}
	return true
}

func copyRecord(r Record) Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// writeJSON writes a JSON response body.
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	data, err := restclient.EncodeJSON(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", restclient.JSONMediaType)
	w.WriteHeader(status)
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{"error": message})
}
