package api

import (
	"net/http"

	"github.com/Nexus-Agni/just-server-vpn-proxy/api/router/handlers"
	"github.com/Nexus-Agni/just-server-vpn-proxy/logger"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates and configures the API router.
// All registered paths are relative to the /api base path.
func NewRouter(d handlers.Dispatcher, badge handlers.BadgeSource) http.Handler {
	router := chi.NewRouter()

	handlers.RegisterHealthRoutes(router)
	handlers.RegisterProxyRoutes(router, d)
	handlers.RegisterMessageRoutes(router, d)
	handlers.RegisterBadgeRoutes(router, badge)

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		logger.Error("API SUB-ROUTER CATCH-ALL: Unhandled route relative to /api: %s %s", r.Method, r.URL.Path)
		http.NotFound(w, r)
	})

	return router
}
