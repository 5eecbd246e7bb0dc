package pagination_test

import (
	"net/url"
	"strings"
	"testing"

	"github.com/JaimeStill/scrivener/pkg/pagination"
)

func defaultConfig() pagination.Config {
	return pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}
}

func TestConfigFinalize(t *testing.T) {
	t.Setenv("TEST_PAGE_SIZE", "50")

	cfg := pagination.Config{}
	if err := cfg.Finalize(&pagination.ConfigEnv{DefaultPageSize: "TEST_PAGE_SIZE"}); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.DefaultPageSize != 50 {
		t.Errorf("DefaultPageSize = %d, want 50", cfg.DefaultPageSize)
	}
	if cfg.MaxPageSize != 100 {
		t.Errorf("MaxPageSize = %d, want 100", cfg.MaxPageSize)
	}

	bad := pagination.Config{DefaultPageSize: 200, MaxPageSize: 100}
	if err := bad.Finalize(nil); err == nil {
		t.Error("expected error when default exceeds max")
	}
}

func TestConfigFinalizeRejectsMalformedEnv(t *testing.T) {
	t.Setenv("TEST_PAGE_SIZE", "twenty")
	t.Setenv("TEST_MAX_PAGE_SIZE", "lots")

	cfg := pagination.Config{}
	err := cfg.Finalize(&pagination.ConfigEnv{
		DefaultPageSize: "TEST_PAGE_SIZE",
		MaxPageSize:     "TEST_MAX_PAGE_SIZE",
	})
	if err == nil {
		t.Fatal("expected error for non-integer env values")
	}
	for _, name := range []string{"TEST_PAGE_SIZE", "TEST_MAX_PAGE_SIZE"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q should name %s", err, name)
		}
	}
}

func TestPageRequestFromQuery(t *testing.T) {
	values := url.Values{
		"page":      {"3"},
		"page_size": {"500"},
		"search":    {"deed"},
		"sort":      {"-UpdatedAt"},
	}

	req := pagination.PageRequestFromQuery(values, defaultConfig())

	if req.Page != 3 {
		t.Errorf("Page = %d, want 3", req.Page)
	}
	if req.PageSize != 100 {
		t.Errorf("PageSize = %d, want clamped 100", req.PageSize)
	}
	if req.Search == nil || *req.Search != "deed" {
		t.Errorf("Search = %v, want deed", req.Search)
	}
	if len(req.Sort) != 1 || !req.Sort[0].Descending {
		t.Errorf("Sort = %+v", req.Sort)
	}
	if req.Offset() != 200 {
		t.Errorf("Offset = %d, want 200", req.Offset())
	}
}

func TestNewPageResult(t *testing.T) {
	tests := []struct {
		total, pageSize, want int
	}{
		{0, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{95, 10, 10},
	}

	for _, tt := range tests {
		r := pagination.NewPageResult[int](nil, tt.total, 1, tt.pageSize)
		if r.TotalPages != tt.want {
			t.Errorf("total=%d size=%d: TotalPages = %d, want %d", tt.total, tt.pageSize, r.TotalPages, tt.want)
		}
		if r.Data == nil {
			t.Error("Data should be non-nil")
		}
	}
}
