package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterBadgeRoutes exposes the badge projection so UI surfaces can
// mirror it. The badge is display-only state, never authoritative.
func RegisterBadgeRoutes(r chi.Router, src BadgeSource) {
	r.Get("/badge", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, src.CurrentBadge())
	})
}
