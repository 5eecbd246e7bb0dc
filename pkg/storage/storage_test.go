package storage_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/JaimeStill/scrivener/pkg/lifecycle"
	"github.com/JaimeStill/scrivener/pkg/storage"
)

func TestLocalRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := storage.NewLocal(t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := store.Start(lifecycle.New()); err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := store.Upload(ctx, "sources/a/deed.pdf", strings.NewReader("%PDF"), "application/pdf"); err != nil {
		t.Fatalf("upload: %v", err)
	}

	rc, err := store.Download(ctx, "sources/a/deed.pdf")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()

	if string(data) != "%PDF" {
		t.Errorf("data = %q", data)
	}

	if err := store.Delete(ctx, "sources/a/deed.pdf"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Download(ctx, "sources/a/deed.pdf"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("download after delete: %v, want ErrNotFound", err)
	}
}

func TestKeyValidation(t *testing.T) {
	store := storage.NewLocal(t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	if err := store.Delete(context.Background(), ""); !errors.Is(err, storage.ErrEmptyKey) {
		t.Errorf("empty key: %v", err)
	}
	if _, err := store.Download(context.Background(), "../etc/passwd"); !errors.Is(err, storage.ErrInvalidKey) {
		t.Errorf("traversal key: %v", err)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{storage.ErrNotFound, http.StatusNotFound},
		{storage.ErrEmptyKey, http.StatusBadRequest},
		{storage.ErrInvalidKey, http.StatusBadRequest},
		{errors.New("other"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := storage.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Setenv("TEST_STORAGE_URL", "https://acct.blob.core.windows.net")

	cfg := storage.Config{}
	if err := cfg.Finalize(&storage.Env{ServiceURL: "TEST_STORAGE_URL"}); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if cfg.ContainerName != "sources" {
		t.Errorf("ContainerName = %q", cfg.ContainerName)
	}

	empty := storage.Config{}
	if err := empty.Finalize(nil); err == nil {
		t.Error("expected error without connection string or service url")
	}
}
