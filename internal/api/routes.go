package api

import (
	"net/http"

	"github.com/JaimeStill/scrivener/internal/config"
	"github.com/JaimeStill/scrivener/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
) []string {
	h := domain.Processes.Handler(cfg.API.MaxUploadSizeBytes())

	return routes.Register(
		mux,
		h.Routes(),
		h.AdapterRoutes(),
	)
}
