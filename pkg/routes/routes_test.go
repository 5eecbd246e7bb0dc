package routes_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/scrivener/pkg/routes"
)

func TestRegisterNestedGroups(t *testing.T) {
	hit := ""
	handler := func(name string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) { hit = name }
	}

	mux := http.NewServeMux()
	routes.Register(mux, routes.Group{
		Prefix: "/processes",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: handler("list")},
			{Method: "GET", Pattern: "/{id}", Handler: handler("find")},
		},
		Children: []routes.Group{{
			Prefix: "/{id}/events",
			Routes: []routes.Route{{Method: "GET", Pattern: "", Handler: handler("events")}},
		}},
	})

	for path, want := range map[string]string{
		"/processes":          "list",
		"/processes/1":        "find",
		"/processes/1/events": "events",
	} {
		hit = ""
		mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", path, nil))
		if hit != want {
			t.Errorf("%s: hit %q, want %q", path, hit, want)
		}
	}
}

func TestPatterns(t *testing.T) {
	noop := func(http.ResponseWriter, *http.Request) {}
	g := routes.Group{
		Prefix: "/processes",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: noop},
			{Method: "DELETE", Pattern: "/{id}", Handler: noop},
		},
		Children: []routes.Group{{
			Prefix: "/{id}",
			Routes: []routes.Route{{Method: "POST", Pattern: "/cancel", Handler: noop}},
		}},
	}

	want := []string{
		"GET /processes",
		"DELETE /processes/{id}",
		"POST /processes/{id}/cancel",
	}

	got := g.Patterns()
	registered := routes.Register(http.NewServeMux(), g)
	if len(got) != len(want) || len(registered) != len(want) {
		t.Fatalf("Patterns = %v, Register = %v, want %v", got, registered, want)
	}

	for i, w := range want {
		if i >= len(got) || got[i] != w {
			t.Fatalf("Patterns = %v, want %v", got, want)
		}
		if i >= len(registered) || registered[i] != w {
			t.Fatalf("Register = %v, want %v", registered, want)
		}
	}
}

func TestRegisterRejectsMissingMethod(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for route without method")
		}
	}()
	routes.Register(http.NewServeMux(), routes.Group{
		Prefix: "/adapters",
		Routes: []routes.Route{{Pattern: "", Handler: func(http.ResponseWriter, *http.Request) {}}},
	})
}
