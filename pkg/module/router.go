package module

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/JaimeStill/scrivener/pkg/middleware"
)

// Router dispatches requests to mounted modules by longest matching prefix
// and falls back to a native ServeMux for everything else.
type Router struct {
	modules    []*Module
	native     *http.ServeMux
	middleware *middleware.Stack
}

// NewRouter creates a Router with no modules and an empty native mux.
func NewRouter() *Router {
	return &Router{
		native:     http.NewServeMux(),
		middleware: middleware.New(),
	}
}

// HandleNative registers a handler on the native fallback mux.
func (r *Router) HandleNative(pattern string, handler http.HandlerFunc) {
	r.native.HandleFunc(pattern, handler)
}

// Use adds middleware applied to native routes only; modules carry their
// own stacks.
func (r *Router) Use(mws ...middleware.Middleware) {
	r.middleware.Use(mws...)
}

// Mount registers m. It panics when another module already owns the prefix.
func (r *Router) Mount(m *Module) {
	for _, existing := range r.modules {
		if existing.prefix == m.prefix {
			panic(fmt.Sprintf("module prefix already mounted: %s", m.prefix))
		}
	}

	r.modules = append(r.modules, m)
	slices.SortFunc(r.modules, func(a, b *Module) int {
		return len(b.prefix) - len(a.prefix)
	})
}

// ServeHTTP dispatches to the matching module or falls back to the native mux.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	p := normalizePath(req)

	for _, m := range r.modules {
		if m.Matches(p) {
			m.Serve(w, req)
			return
		}
	}

	r.middleware.Apply(r.native).ServeHTTP(w, req)
}

func normalizePath(req *http.Request) string {
	p := req.URL.Path
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimSuffix(p, "/")
		req.URL.Path = p
		req.URL.RawPath = strings.TrimSuffix(req.URL.RawPath, "/")
	}
	return p
}
