package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Nexus-Agni/just-server-vpn-proxy/logger"
	"github.com/Nexus-Agni/just-server-vpn-proxy/models"
)

// Dispatcher delivers one message to the background controller and returns
// its single reply. *core.Broker satisfies it.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg models.Message) (models.Reply, error)
}

// BadgeSource exposes the current badge projection for the UI mirror.
type BadgeSource interface {
	CurrentBadge() models.Badge
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Error encoding response body: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.ErrorResponse{Message: message})
}
