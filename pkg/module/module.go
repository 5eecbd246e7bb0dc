// Package module mounts self-contained HTTP handlers under path prefixes.
package module

import (
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/JaimeStill/scrivener/pkg/middleware"
)

// Module serves an inner router under a path prefix such as "/api" or
// "/api/v1". The prefix is removed before the router sees the request.
type Module struct {
	prefix     string
	router     http.Handler
	middleware *middleware.Stack
}

// New creates a Module. It panics on a prefix that is empty, relative,
// "/", or not in clean form.
func New(prefix string, router http.Handler) *Module {
	if err := ValidatePrefix(prefix); err != nil {
		panic(err)
	}
	return &Module{
		prefix:     prefix,
		router:     router,
		middleware: middleware.New(),
	}
}

// Handler returns the inner router wrapped with the module's middleware.
func (m *Module) Handler() http.Handler {
	return m.middleware.Apply(m.router)
}

// Prefix returns the module's path prefix.
func (m *Module) Prefix() string {
	return m.prefix
}

// Matches reports whether p falls under the module prefix.
func (m *Module) Matches(p string) bool {
	return p == m.prefix || strings.HasPrefix(p, m.prefix+"/")
}

// Serve strips the module prefix from the request and dispatches it.
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	m.Handler().ServeHTTP(w, stripPrefix(req, m.prefix))
}

// Use appends middleware to the module's stack.
func (m *Module) Use(mws ...middleware.Middleware) {
	m.middleware.Use(mws...)
}

// ValidatePrefix reports whether prefix can mount a module.
func ValidatePrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("module prefix cannot be empty")
	case !strings.HasPrefix(prefix, "/"):
		return fmt.Errorf("module prefix must start with /: %s", prefix)
	case prefix == "/":
		return fmt.Errorf("module prefix cannot be the root path")
	case path.Clean(prefix) != prefix:
		return fmt.Errorf("module prefix must be a clean path without a trailing slash: %s", prefix)
	}
	return nil
}

// stripPrefix clones req with prefix removed from both the decoded and the
// escaped path, so encoded segments such as file names survive.
func stripPrefix(req *http.Request, prefix string) *http.Request {
	r := new(http.Request)
	*r = *req
	r.URL = new(url.URL)
	*r.URL = *req.URL

	r.URL.Path = trim(req.URL.Path, prefix)
	r.URL.RawPath = ""
	if raw := req.URL.RawPath; raw != "" && strings.HasPrefix(raw, prefix) {
		r.URL.RawPath = trim(raw, prefix)
	}
	return r
}

func trim(p, prefix string) string {
	p = strings.TrimPrefix(p, prefix)
	if p == "" {
		return "/"
	}
	return p
}
