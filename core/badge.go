package core

import (
	"github.com/Nexus-Agni/just-server-vpn-proxy/logger"
	"github.com/Nexus-Agni/just-server-vpn-proxy/models"
)

// Indicator renders the badge somewhere visible. Implementations must treat
// the badge as display-only state.
type Indicator interface {
	Set(models.Badge)
}

// ProjectBadge computes the badge for a given toggle and transition state.
// It is the only place badge content is decided (invariant: the badge is a
// pure function of these two values).
func ProjectBadge(state models.ToggleState, transition models.TransitionState) models.Badge {
	if transition == models.TransitionError {
		return models.Badge{Text: models.BadgeTextError, Color: models.BadgeColorRed}
	}
	if state.Enabled() {
		return models.Badge{Text: models.BadgeTextOn, Color: models.BadgeColorGreen}
	}
	return models.Badge{}
}

// LogIndicator is the headless fallback adapter: badge changes go to the
// application log only.
type LogIndicator struct{}

func (LogIndicator) Set(b models.Badge) {
	if b.Text == "" {
		logger.Info("Badge cleared")
		return
	}
	logger.Info("Badge set to %q (%s)", b.Text, b.Color)
}
