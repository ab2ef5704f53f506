package models

import "encoding/json"

// Actions accepted by the message broker. The set is closed: anything else
// is rejected explicitly rather than silently ignored.
const (
	ActionGetProxyStatus    = "getProxyStatus"
	ActionToggleProxy       = "toggleProxy"
	ActionCheckServerStatus = "checkServerStatus"
)

// Message is the request half of a broker exchange.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// KnownAction reports whether action belongs to the closed action set.
func KnownAction(action string) bool {
	switch action {
	case ActionGetProxyStatus, ActionToggleProxy, ActionCheckServerStatus:
		return true
	}
	return false
}

// TogglePayload is the request payload for ActionToggleProxy.
type TogglePayload struct {
	Enabled bool `json:"enabled"`
}

// StatusResponse answers ActionGetProxyStatus.
type StatusResponse struct {
	Enabled bool `json:"enabled"`
}

// ToggleResponse answers ActionToggleProxy. Enabled is set only on success;
// Error carries the engine failure kind on rejection.
type ToggleResponse struct {
	Success bool   `json:"success"`
	Enabled *bool  `json:"enabled,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ServerStatusResponse answers ActionCheckServerStatus. Status is the HTTP
// status code when a response was received at all.
type ServerStatusResponse struct {
	Online bool   `json:"online"`
	Status *int   `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Reply is the one-of union of response payloads; exactly one field is set,
// matching the action of the request it answers.
type Reply struct {
	Status *StatusResponse       `json:"status,omitempty"`
	Toggle *ToggleResponse       `json:"toggle,omitempty"`
	Server *ServerStatusResponse `json:"server,omitempty"`
}

// Body returns whichever payload is set, for encoding on the wire.
func (r Reply) Body() interface{} {
	switch {
	case r.Status != nil:
		return r.Status
	case r.Toggle != nil:
		return r.Toggle
	case r.Server != nil:
		return r.Server
	}
	return nil
}
