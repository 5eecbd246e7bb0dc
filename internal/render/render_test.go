package render_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/JaimeStill/scrivener/internal/render"
)

func TestConfigFinalize(t *testing.T) {
	t.Setenv("SCRIVENER_RENDER_HEADLESS", "false")
	t.Setenv("SCRIVENER_RENDER_TIMEOUT", "10s")

	cfg := render.Config{}
	env := &render.Env{Timeout: "SCRIVENER_RENDER_TIMEOUT", Headless: "SCRIVENER_RENDER_HEADLESS"}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if got := cfg.TimeoutDuration(); got != 10*time.Second {
		t.Errorf("timeout: got %v, want 10s", got)
	}
	if cfg.IsHeadless() {
		t.Error("headless: got true, want false")
	}
	if cfg.Dir == "" {
		t.Error("dir: expected default temp dir")
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := render.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if got := cfg.TimeoutDuration(); got != 30*time.Second {
		t.Errorf("timeout: got %v, want 30s", got)
	}
	if !cfg.IsHeadless() {
		t.Error("headless should default to true")
	}
}

func TestConfigInvalidTimeout(t *testing.T) {
	cfg := render.Config{Timeout: "-1s"}
	if err := cfg.Finalize(nil); err == nil {
		t.Error("expected error for non-positive timeout")
	}
}

func TestRenderRequiresStart(t *testing.T) {
	cfg := render.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatal(err)
	}
	r := render.New(&cfg, slog.New(slog.DiscardHandler))

	_, err := r.Render(context.Background(), render.Request{HTML: "<p>x</p>", Width: 10, Height: 10})
	if err != render.ErrNotStarted {
		t.Errorf("got %v, want ErrNotStarted", err)
	}

	_, err = r.Render(context.Background(), render.Request{HTML: "<p>x</p>"})
	if err != render.ErrInvalidDimensions {
		t.Errorf("got %v, want ErrInvalidDimensions", err)
	}
}
