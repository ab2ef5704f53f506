package models

// ToggleState is the durable, user-intended proxy mode. It is created with
// ToggleDisabled on first install and mutated only by the controller.
type ToggleState int

const (
	ToggleDisabled ToggleState = iota
	ToggleEnabled
)

// ToggleStateFor maps the wire-level boolean onto a ToggleState.
func ToggleStateFor(enabled bool) ToggleState {
	if enabled {
		return ToggleEnabled
	}
	return ToggleDisabled
}

// Enabled reports whether the state represents redirected mode.
func (s ToggleState) Enabled() bool {
	return s == ToggleEnabled
}

func (s ToggleState) String() string {
	if s == ToggleEnabled {
		return "enabled"
	}
	return "disabled"
}

// TransitionState is the ephemeral, in-memory phase of the controller's
// toggle state machine. It never survives a process restart.
type TransitionState int

const (
	// TransitionIdle means no toggle is in flight.
	TransitionIdle TransitionState = iota
	// TransitionActive is the window during which persisted intent and
	// enforced state may diverge while a toggle is being applied.
	TransitionActive
	// TransitionError means the last engine operation failed. The controller
	// treats it like Idle when accepting the next toggle.
	TransitionError
)

func (t TransitionState) String() string {
	switch t {
	case TransitionActive:
		return "transitioning"
	case TransitionError:
		return "error"
	default:
		return "idle"
	}
}

// ServerHealth is the derived liveness classification of the remote proxy
// endpoint. It is recomputed on demand and never persisted.
type ServerHealth int

const (
	HealthUnknown ServerHealth = iota
	HealthOnline
	HealthOffline
)

func (h ServerHealth) String() string {
	switch h {
	case HealthOnline:
		return "online"
	case HealthOffline:
		return "offline"
	default:
		return "unknown"
	}
}
