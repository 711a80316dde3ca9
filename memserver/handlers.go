// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memserver

import (
	"io/ioutil"
	"net/http"
	"strconv"

	"github.com/diffeo/go-cape/restclient"
	"github.com/gorilla/mux"
)

type collectionHandler struct {
	server *Server
	name   string
	plural string
}

// readAttrs decodes a request body.  Both {"user": {...}} and a bare
// attribute object are accepted.
func readAttrs(req *http.Request, name string) (Record, error) {
	data, err := ioutil.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return Record{}, nil
	}
	var body map[string]interface{}
	if err := restclient.DecodeJSON(data, &body); err != nil {
		return nil, err
	}
	if inner, isMap := body[name].(map[string]interface{}); isMap {
		return Record(inner), nil
	}
	return Record(body), nil
}

func (c *collectionHandler) table() *table {
	return c.server.tables[c.name]
}

// lookup finds the record named by the {id} route variable.  Must be
// called with the server lock held.
func (c *collectionHandler) lookup(req *http.Request) (int64, Record, bool) {
	id, err := strconv.ParseInt(mux.Vars(req)["id"], 10, 64)
	if err != nil {
		return 0, nil, false
	}
	record, present := c.table().records[id]
	return id, record, present
}

func (c *collectionHandler) index(w http.ResponseWriter, req *http.Request) {
	filters := make(map[string]string)
	for k, vs := range req.URL.Query() {
		if len(vs) > 0 {
			filters[k] = vs[0]
		}
	}
	c.server.lock.Lock()
	records := c.table().list(filters)
	c.server.lock.Unlock()
	writeJSON(w, http.StatusOK, map[string]interface{}{c.plural: records})
}

func (c *collectionHandler) create(w http.ResponseWriter, req *http.Request) {
	attrs, err := readAttrs(req, c.name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	c.server.lock.Lock()
	id := c.table().insert(attrs)
	record := copyRecord(c.table().records[id])
	c.server.lock.Unlock()
	writeJSON(w, http.StatusCreated, map[string]interface{}{c.name: record})
}

func (c *collectionHandler) newForm(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{c.name: Record{}})
}

func (c *collectionHandler) show(w http.ResponseWriter, req *http.Request) {
	c.server.lock.Lock()
	_, record, present := c.lookup(req)
	if present {
		record = copyRecord(record)
	}
	c.server.lock.Unlock()
	if !present {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{c.name: record})
}

func (c *collectionHandler) update(w http.ResponseWriter, req *http.Request) {
	attrs, err := readAttrs(req, c.name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	c.server.lock.Lock()
	id, record, present := c.lookup(req)
	if present {
		for k, v := range attrs {
			if k != "id" {
				record[k] = v
			}
		}
		record["id"] = id
		record = copyRecord(record)
	}
	c.server.lock.Unlock()
	if !present {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{c.name: record})
}

func (c *collectionHandler) destroy(w http.ResponseWriter, req *http.Request) {
	c.server.lock.Lock()
	id, record, present := c.lookup(req)
	if present {
		delete(c.table().records, id)
	}
	c.server.lock.Unlock()
	if !present {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{c.name: record})
}

func (c *collectionHandler) action(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	if id := vars["id"]; id != "" {
		c.server.lock.Lock()
		_, _, present := c.lookup(req)
		c.server.lock.Unlock()
		if !present {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
	}
	c.server.recordAction(Action{
		Method:   req.Method,
		Resource: c.name,
		ID:       vars["id"],
		Name:     vars["action"],
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"result": "OK",
		"action": vars["action"],
	})
}

type singularHandler struct {
	server *Server
	name   string
}

func (h *singularHandler) show(w http.ResponseWriter, req *http.Request) {
	h.server.lock.Lock()
	record, present := h.server.singulars[h.name]
	if present {
		record = copyRecord(record)
	}
	h.server.lock.Unlock()
	if !present {
		record = Record{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{h.name: record})
}

func (h *singularHandler) update(w http.ResponseWriter, req *http.Request) {
	attrs, err := readAttrs(req, h.name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.server.lock.Lock()
	record, present := h.server.singulars[h.name]
	if !present || req.Method == http.MethodPost {
		record = Record{}
	}
	for k, v := range attrs {
		record[k] = v
	}
	h.server.singulars[h.name] = record
	record = copyRecord(record)
	h.server.lock.Unlock()
	writeJSON(w, http.StatusOK, map[string]interface{}{h.name: record})
}

func (h *singularHandler) destroy(w http.ResponseWriter, req *http.Request) {
	h.server.lock.Lock()
	delete(h.server.singulars, h.name)
	h.server.lock.Unlock()
	writeJSON(w, http.StatusOK, map[string]interface{}{"result": "OK"})
}

func (h *singularHandler) action(w http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["action"]
	h.server.recordAction(Action{Method: req.Method, Resource: h.name, Name: name})
	writeJSON(w, http.StatusOK, map[string]interface{}{"result": "OK", "action": name})
}
