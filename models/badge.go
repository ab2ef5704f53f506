package models

// Badge is the short text/color state rendered by the indicator. It is a
// pure projection of (ToggleState, TransitionState) and never a source of
// truth.
type Badge struct {
	Text  string `json:"text"`
	Color string `json:"color,omitempty"`
}

// Badge text values and their colors.
const (
	BadgeTextOn    = "ON"
	BadgeTextError = "ERR"

	BadgeColorGreen = "green"
	BadgeColorRed   = "red"
)
