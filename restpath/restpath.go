// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restpath derives the canonical REST paths for a resource.
//
// Given a resource name "user", a base path "/api/" and a nesting
// string "companies/123/", the four path shapes are
//
//     collection  /api/companies/123/users
//     member      /api/companies/123/users/{id}
//     new         /api/companies/123/users/new
//     singular    /api/companies/123/user
//
// With Shallow set, member paths drop the nesting string:
// /api/users/{id}.  Paths are recomputed from the Config on every
// call and never cached.
package restpath

import (
	"github.com/diffeo/go-cape/inflect"
	"github.com/jtacoma/uritemplates"
)

// DefaultBasePath is used when Config.BasePath is empty.
const DefaultBasePath = "/"

// memberTemplate builds member paths.  The prefix is a reserved
// expansion so its slashes survive; the id is percent-encoded.
var memberTemplate *uritemplates.UriTemplate

func init() {
	var err error
	memberTemplate, err = uritemplates.Parse("{+prefix}{resources}/{id}")
	if err != nil {
		panic(err)
	}
}

// Config is a snapshot of the options that affect path resolution.
type Config struct {
	// ResourceName is the name of the resource, singular or
	// plural.  Collection and member paths pluralize it; the
	// singular path uses it verbatim.
	ResourceName string

	// BasePath is prepended to every path.  Defaults to "/".
	BasePath string

	// NestedIn is inserted between the base path and the
	// resource name, e.g. "teams/9/".
	NestedIn string

	// Shallow omits NestedIn from member paths.
	Shallow bool

	// Singular makes RequestPath return the singular path.
	Singular bool
}

// Resolver computes paths for a Config.
type Resolver struct {
	Config    Config
	Inflector inflect.Inflector
}

// New creates a resolver using the default inflector.
func New(config Config) Resolver {
	return Resolver{Config: config, Inflector: inflect.Default()}
}

func (r Resolver) inflector() inflect.Inflector {
	if r.Inflector == nil {
		return inflect.Default()
	}
	return r.Inflector
}

func (r Resolver) basePath() string {
	if r.Config.BasePath == "" {
		return DefaultBasePath
	}
	return r.Config.BasePath
}

// pathPrefix returns the base path plus the nesting string, leaving
// out the nesting string for shallow member paths.
func (r Resolver) pathPrefix(member bool) string {
	if member && r.Config.Shallow {
		return r.basePath()
	}
	return r.basePath() + r.Config.NestedIn
}

// resources returns the pluralized, snake-cased resource name.
func (r Resolver) resources() string {
	return inflect.Tableize(r.inflector(), r.Config.ResourceName)
}

// CollectionPath returns the path of the whole collection, e.g.
// "/api/companies/123/users".
func (r Resolver) CollectionPath() string {
	return r.pathPrefix(false) + r.resources()
}

// MemberPath returns the path of the collection member with some id,
// e.g. "/teams/9/users/123".  The id is percent-encoded if needed.
func (r Resolver) MemberPath(id string) string {
	path, err := memberTemplate.Expand(map[string]interface{}{
		"prefix":    r.pathPrefix(true),
		"resources": r.resources(),
		"id":        id,
	})
	if err != nil {
		// Only string values are expanded, which cannot fail
		return r.pathPrefix(true) + r.resources() + "/" + id
	}
	return path
}

// NewPath returns the path of the form for a new member, e.g.
// "/users/new".
func (r Resolver) NewPath() string {
	return r.CollectionPath() + "/new"
}

// SingularPath returns the path of a singular resource, e.g.
// "/api/profile".  The resource name is not inflected.
func (r Resolver) SingularPath() string {
	return r.pathPrefix(false) + r.Config.ResourceName
}

// RequestPath returns the singular path if the resource is singular,
// the member path if id is non-empty, and otherwise the collection
// path.
func (r Resolver) RequestPath(id string) string {
	switch {
	case r.Config.Singular:
		return r.SingularPath()
	case id != "":
		return r.MemberPath(id)
	default:
		return r.CollectionPath()
	}
}

// ActionPath appends a custom action segment to path, so that
// ActionPath("/users/1", "suspend") is "/users/1/suspend".  An empty
// action returns path unchanged.
func ActionPath(path, action string) string {
	if action == "" {
		return path
	}
	return path + "/" + action
}
