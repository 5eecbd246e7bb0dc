package routes

import "net/http"

// Group nests routes and child groups under a shared prefix.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Patterns lists the ServeMux patterns of g and its children in
// registration order.
func (g Group) Patterns() []string {
	var out []string
	g.walk("", func(prefix string, r Route) {
		out = append(out, r.FullPattern(prefix))
	})
	return out
}

func (g Group) walk(parent string, fn func(prefix string, r Route)) {
	prefix := parent + g.Prefix
	for _, r := range g.Routes {
		fn(prefix, r)
	}
	for _, child := range g.Children {
		child.walk(prefix, fn)
	}
}

// Register adds every route of groups to mux and returns the registered
// patterns. It panics on a route without a method or handler, as ServeMux
// does on conflicting patterns.
func Register(mux *http.ServeMux, groups ...Group) []string {
	var patterns []string
	for _, g := range groups {
		g.walk("", func(prefix string, r Route) {
			if err := r.validate(prefix); err != nil {
				panic(err)
			}
			pattern := r.FullPattern(prefix)
			mux.HandleFunc(pattern, r.Handler)
			patterns = append(patterns, pattern)
		})
	}
	return patterns
}
