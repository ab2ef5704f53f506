package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Nexus-Agni/just-server-vpn-proxy/logger"
	"github.com/Nexus-Agni/just-server-vpn-proxy/models"
)

type proxyHandlers struct {
	dispatcher Dispatcher
}

// GetProxyStatusHandler answers with the persisted toggle flag.
func (h *proxyHandlers) GetProxyStatusHandler(w http.ResponseWriter, r *http.Request) {
	reply, err := h.dispatcher.Dispatch(r.Context(), models.Message{Action: models.ActionGetProxyStatus})
	if err != nil {
		logger.Error("GetProxyStatusHandler: dispatch failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve proxy status")
		return
	}
	writeJSON(w, http.StatusOK, reply.Status)
}

// ToggleProxyHandler requests a mode switch. An engine rejection comes back
// as success:false with the failure kind; the persisted state is untouched.
func (h *proxyHandlers) ToggleProxyHandler(w http.ResponseWriter, r *http.Request) {
	var payload models.TogglePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		logger.Error("ToggleProxyHandler: Error decoding request body: %v", err)
		writeError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	raw, err := json.Marshal(payload)
	if err != nil {
		logger.Error("ToggleProxyHandler: Error re-encoding payload: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to build toggle request")
		return
	}

	reply, err := h.dispatcher.Dispatch(r.Context(), models.Message{
		Action:  models.ActionToggleProxy,
		Payload: raw,
	})
	if err != nil {
		logger.Error("ToggleProxyHandler: dispatch failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to toggle proxy")
		return
	}

	if reply.Toggle != nil && !reply.Toggle.Success {
		writeJSON(w, http.StatusBadGateway, reply.Toggle)
		return
	}
	writeJSON(w, http.StatusOK, reply.Toggle)
}

// CheckServerStatusHandler reports the remote endpoint's liveness.
func (h *proxyHandlers) CheckServerStatusHandler(w http.ResponseWriter, r *http.Request) {
	reply, err := h.dispatcher.Dispatch(r.Context(), models.Message{Action: models.ActionCheckServerStatus})
	if err != nil {
		logger.Error("CheckServerStatusHandler: dispatch failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to check server status")
		return
	}
	writeJSON(w, http.StatusOK, reply.Server)
}
