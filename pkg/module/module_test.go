package module_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/scrivener/pkg/module"
)

func TestNewInvalidPrefixPanics(t *testing.T) {
	for _, prefix := range []string{"", "api", "/", "/api/", "/api/../v1"} {
		t.Run(prefix, func(t *testing.T) {
			defer func() {
				if r := recover(); r == nil {
					t.Error("expected panic for invalid prefix")
				}
			}()
			module.New(prefix, http.NewServeMux())
		})
	}
}

func TestRouterDispatch(t *testing.T) {
	var received string
	api := http.NewServeMux()
	api.HandleFunc("GET /processes/{id}", func(w http.ResponseWriter, r *http.Request) {
		received = r.URL.Path
		w.Write([]byte("api"))
	})

	moduleCalls := 0
	m := module.New("/api", api)
	m.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			moduleCalls++
			next.ServeHTTP(w, r)
		})
	})

	nativeCalls := 0
	router := module.NewRouter()
	router.Mount(m)
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			nativeCalls++
			next.ServeHTTP(w, r)
		})
	})
	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	tests := []struct {
		path string
		want string
	}{
		{"/api/processes/abc/", "api"},
		{"/healthz", "ok"},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))

		if rec.Code != http.StatusOK {
			t.Errorf("%s: status %d", tt.path, rec.Code)
		}
		if rec.Body.String() != tt.want {
			t.Errorf("%s: body %q, want %q", tt.path, rec.Body.String(), tt.want)
		}
	}

	if received != "/processes/abc" {
		t.Errorf("module path = %q, want /processes/abc", received)
	}
	if moduleCalls != 1 || nativeCalls != 1 {
		t.Errorf("middleware calls: module=%d native=%d, want 1 each", moduleCalls, nativeCalls)
	}
}

func TestRouterLongestPrefix(t *testing.T) {
	hit := func(name string) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(name + ":" + r.URL.Path))
		})
	}

	router := module.NewRouter()
	router.Mount(module.New("/api", hit("api")))
	router.Mount(module.New("/api/v2", hit("v2")))

	tests := []struct {
		path string
		want string
	}{
		{"/api/processes", "api:/processes"},
		{"/api/v2/processes", "v2:/processes"},
		{"/api/v2", "v2:/"},
		{"/api/v20/processes", "api:/v20/processes"},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))
		if rec.Body.String() != tt.want {
			t.Errorf("%s: body %q, want %q", tt.path, rec.Body.String(), tt.want)
		}
	}
}

func TestServeKeepsEscapedPath(t *testing.T) {
	var raw string
	m := module.New("/api/v1", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw = r.URL.EscapedPath()
	}))

	router := module.NewRouter()
	router.Mount(m)
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/v1/files/a%2Fb.pdf", nil))

	if raw != "/files/a%2Fb.pdf" {
		t.Errorf("escaped path = %q, want /files/a%%2Fb.pdf", raw)
	}
}

func TestMountDuplicatePanics(t *testing.T) {
	router := module.NewRouter()
	router.Mount(module.New("/api", http.NewServeMux()))

	defer func() {
		if recover() == nil {
			t.Error("expected panic for duplicate prefix")
		}
	}()
	router.Mount(module.New("/api", http.NewServeMux()))
}
