package core

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/Nexus-Agni/just-server-vpn-proxy/logger"

	"github.com/tidwall/gjson"
)

// EngineErrorKind classifies rule-engine failures. PermissionDenied and
// UnknownRuleset are the only kinds callers branch on; everything else is
// reported as Unavailable.
type EngineErrorKind int

const (
	EnginePermissionDenied EngineErrorKind = iota
	EngineUnknownRuleset
	EngineUnavailable
)

func (k EngineErrorKind) String() string {
	switch k {
	case EnginePermissionDenied:
		return "PermissionDenied"
	case EngineUnknownRuleset:
		return "UnknownRuleset"
	default:
		return "EngineUnavailable"
	}
}

// EngineError is returned by RuleEngine adapters when the enforcement
// engine rejects an operation.
type EngineError struct {
	Kind   EngineErrorKind
	Detail string
}

func (e *EngineError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("rule engine: %s", e.Kind)
	}
	return fmt.Sprintf("rule engine: %s: %s", e.Kind, e.Detail)
}

// RuleEngine enables or disables one fixed, pre-declared redirection rule
// set. The rules' matching logic lives entirely inside the engine.
type RuleEngine interface {
	Enable(ctx context.Context) error
	Disable(ctx context.Context) error
}

const engineDialTimeout = 5 * time.Second

// HTTPRuleEngine drives a remote rule-enforcement engine over its admin
// API. The ruleset identifier is fixed at construction.
type HTTPRuleEngine struct {
	baseURL   string
	apiToken  string
	rulesetID string
	client    *http.Client
}

// NewHTTPRuleEngine builds an adapter for the engine at baseURL. The token
// may be empty when the engine runs without authentication.
func NewHTTPRuleEngine(baseURL, apiToken, rulesetID string, timeout time.Duration) *HTTPRuleEngine {
	return &HTTPRuleEngine{
		baseURL:   baseURL,
		apiToken:  apiToken,
		rulesetID: rulesetID,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: engineDialTimeout}).DialContext,
			},
		},
	}
}

func (e *HTTPRuleEngine) Enable(ctx context.Context) error {
	return e.setEnabled(ctx, true)
}

func (e *HTTPRuleEngine) Disable(ctx context.Context) error {
	return e.setEnabled(ctx, false)
}

func (e *HTTPRuleEngine) setEnabled(ctx context.Context, enabled bool) error {
	url := fmt.Sprintf("%s/rulesets/%s", e.baseURL, e.rulesetID)
	body := fmt.Sprintf(`{"enabled":%t}`, enabled)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader([]byte(body)))
	if err != nil {
		return &EngineError{Kind: EngineUnavailable, Detail: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiToken)
	}

	logger.EngineDebug("setEnabled: PUT %s body=%s", url, body)
	resp, err := e.client.Do(req)
	if err != nil {
		logger.EngineError("setEnabled: request failed: %v", err)
		return &EngineError{Kind: EngineUnavailable, Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		logger.EngineInfo("Ruleset '%s' %s (status %d)", e.rulesetID, stateWord(enabled), resp.StatusCode)
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	detail := gjson.GetBytes(raw, "message").String()
	if detail == "" {
		detail = gjson.GetBytes(raw, "error").String()
	}
	if detail == "" {
		detail = resp.Status
	}

	var kind EngineErrorKind
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = EnginePermissionDenied
	case http.StatusNotFound, http.StatusGone:
		kind = EngineUnknownRuleset
	default:
		kind = EngineUnavailable
	}
	logger.EngineError("setEnabled: ruleset '%s' %s rejected: %s (%s)", e.rulesetID, stateWord(enabled), detail, kind)
	return &EngineError{Kind: kind, Detail: detail}
}

func stateWord(enabled bool) string {
	if enabled {
		return "enable"
	}
	return "disable"
}

// NoopRuleEngine is the fallback capability adapter used when no engine
// endpoint is configured. Operations log and succeed so the rest of the
// controller behaves normally in a hosted-less environment.
type NoopRuleEngine struct{}

func (NoopRuleEngine) Enable(ctx context.Context) error {
	logger.EngineInfo("NoopRuleEngine: enable requested (no engine configured)")
	return nil
}

func (NoopRuleEngine) Disable(ctx context.Context) error {
	logger.EngineInfo("NoopRuleEngine: disable requested (no engine configured)")
	return nil
}
