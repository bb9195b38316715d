package web

import (
	"github.com/rohanthewiz/rweb"

	"plugyard/registry"
	"plugyard/storage"
)

var (
	pluginRegistry *registry.Registry
	fileStore      *storage.Local
)

// SetupRoutes configures all HTTP routes for the server. files may be nil
// when the local storage backend is not in use.
func SetupRoutes(s *rweb.Server, reg *registry.Registry, files *storage.Local) {
	pluginRegistry = reg
	fileStore = files

	// Root endpoint - serves the playground UI
	s.Get("/", playgroundHandler)

	// API endpoints
	s.Get("/api/health", healthHandler)
	s.Get("/api/plugins", pluginListHandler)
	s.Post("/api/execute", executeHandler)
	s.Get("/api/executions", executionListHandler)

	// Stored file downloads (local backend only)
	s.Get("/files", fileHandler)
}

// healthHandler returns service information
func healthHandler(c rweb.Context) error {
	return c.WriteJSON(map[string]interface{}{
		"status":  "ok",
		"version": "0.1.0",
		"plugins": len(pluginRegistry.Plugins()),
	})
}
