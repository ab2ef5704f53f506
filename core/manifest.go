package core

import (
	"fmt"
	"os"

	"github.com/Nexus-Agni/just-server-vpn-proxy/logger"

	"github.com/muhammadmuzzammil1998/jsonc"
	"github.com/tidwall/gjson"
)

// RulesetManifest is the pre-declared ruleset description shipped next to
// the controller. Comments and trailing commas are allowed in the file.
type RulesetManifest struct {
	RulesetID string
	EngineURL string
	APIToken  string
}

// LoadRulesetManifest reads the ruleset declaration from path. Only the
// first declared ruleset is used; the controller manages a single on/off
// mode, not multiple targets.
func LoadRulesetManifest(path string) (RulesetManifest, error) {
	var m RulesetManifest

	data, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("failed to read ruleset manifest: %w", err)
	}

	clean := stripTrailingCommas(jsonc.ToJSON(data))
	if !gjson.ValidBytes(clean) {
		return m, fmt.Errorf("ruleset manifest %s is not valid JSON", path)
	}

	m.RulesetID = gjson.GetBytes(clean, "rulesets.0.id").String()
	m.EngineURL = gjson.GetBytes(clean, "engine.base_url").String()
	m.APIToken = gjson.GetBytes(clean, "engine.api_token").String()

	if m.RulesetID == "" {
		return m, fmt.Errorf("ruleset manifest %s declares no ruleset id", path)
	}

	logger.Info("Ruleset manifest loaded from %s: ruleset '%s', engine '%s'", path, m.RulesetID, m.EngineURL)
	return m, nil
}

// stripTrailingCommas removes a comma whose next non-whitespace byte closes
// an object or array. jsonc.ToJSON strips comments only, and gjson rejects
// trailing commas, so the loader elides them itself. Commas inside string
// values are left alone.
func stripTrailingCommas(data []byte) []byte {
	out := make([]byte, 0, len(data))
	inString := false
	escaped := false
	for i := 0; i < len(data); i++ {
		c := data[i]
		if inString {
			out = append(out, c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
			out = append(out, c)
		case ',':
			j := i + 1
			for j < len(data) && (data[j] == ' ' || data[j] == '\t' || data[j] == '\n' || data[j] == '\r') {
				j++
			}
			if j < len(data) && (data[j] == '}' || data[j] == ']') {
				continue
			}
			out = append(out, c)
		default:
			out = append(out, c)
		}
	}
	return out
}
