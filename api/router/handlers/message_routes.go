package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Nexus-Agni/just-server-vpn-proxy/core"
	"github.com/Nexus-Agni/just-server-vpn-proxy/logger"
	"github.com/Nexus-Agni/just-server-vpn-proxy/models"

	"github.com/go-chi/chi/v5"
)

// RegisterMessageRoutes sets up the raw message-envelope route used by UI
// surfaces that speak the {action, payload} protocol directly.
func RegisterMessageRoutes(r chi.Router, d Dispatcher) {
	h := &messageHandlers{dispatcher: d}
	r.Post("/message", h.DispatchMessageHandler)
}

type messageHandlers struct {
	dispatcher Dispatcher
}

// DispatchMessageHandler accepts one {action, payload} envelope and answers
// with the action's response payload. An action outside the closed set is
// rejected with 400, never silently dropped.
func (h *messageHandlers) DispatchMessageHandler(w http.ResponseWriter, r *http.Request) {
	var msg models.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		logger.Error("DispatchMessageHandler: Error decoding request body: %v", err)
		writeError(w, http.StatusBadRequest, "Invalid message envelope: "+err.Error())
		return
	}
	defer r.Body.Close()

	reply, err := h.dispatcher.Dispatch(r.Context(), msg)
	if err != nil {
		if errors.Is(err, core.ErrUnknownAction) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.Error("DispatchMessageHandler: dispatch failed for action %q: %v", msg.Action, err)
		writeError(w, http.StatusInternalServerError, "Failed to handle message")
		return
	}

	body := reply.Body()
	if body == nil {
		logger.Error("DispatchMessageHandler: empty reply for action %q", msg.Action)
		writeError(w, http.StatusInternalServerError, "Empty reply")
		return
	}
	if t := reply.Toggle; t != nil && !t.Success {
		writeJSON(w, http.StatusBadGateway, t)
		return
	}
	writeJSON(w, http.StatusOK, body)
}
