// Package routes declares HTTP routes as data and registers them on a ServeMux.
package routes

import (
	"fmt"
	"net/http"
)

// Route binds a method and a pattern, relative to its group, to a handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// FullPattern returns the ServeMux pattern for r mounted under prefix.
// An empty route pattern addresses the prefix itself.
func (r Route) FullPattern(prefix string) string {
	p := prefix + r.Pattern
	if p == "" {
		p = "/"
	}
	return r.Method + " " + p
}

func (r Route) validate(prefix string) error {
	if r.Method == "" {
		return fmt.Errorf("route %q: method required", prefix+r.Pattern)
	}
	if r.Handler == nil {
		return fmt.Errorf("route %s: handler required", r.FullPattern(prefix))
	}
	return nil
}
