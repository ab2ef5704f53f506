package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterProxyRoutes sets up the proxy status/toggle/server-status routes.
func RegisterProxyRoutes(r chi.Router, d Dispatcher) {
	h := &proxyHandlers{dispatcher: d}
	r.Get("/status", h.GetProxyStatusHandler)
	r.Post("/toggle", h.ToggleProxyHandler)
	r.Get("/server-status", h.CheckServerStatusHandler)
}
