package workflow

import (
	"log/slog"

	"github.com/JaimeStill/scrivener/internal/providers"
	"github.com/JaimeStill/scrivener/internal/render"
)

// Runtime bundles the dependencies a translation run requires.
type Runtime struct {
	Rasterizer Rasterizer
	Renderer   render.Service
	Adapters   *providers.Registry
	TempDir    string
	Logger     *slog.Logger
}
