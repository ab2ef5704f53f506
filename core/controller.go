package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/Nexus-Agni/just-server-vpn-proxy/logger"
	"github.com/Nexus-Agni/just-server-vpn-proxy/models"
)

// SettingsStore is the durable persistence surface for the toggle flag.
// *database.Store satisfies it.
type SettingsStore interface {
	ProxyEnabled() (bool, error)
	SetProxyEnabled(enabled bool) error
}

// Controller owns the toggle state machine. All mutating methods are called
// from the broker's single event loop, so the transition guard needs no
// lock; only the badge snapshot is read from other goroutines.
type Controller struct {
	store     SettingsStore
	engine    RuleEngine
	prober    Prober
	indicator Indicator

	transition models.TransitionState

	mu    sync.Mutex
	badge models.Badge
}

func NewController(store SettingsStore, engine RuleEngine, prober Prober, indicator Indicator) *Controller {
	return &Controller{
		store:      store,
		engine:     engine,
		prober:     prober,
		indicator:  indicator,
		transition: models.TransitionIdle,
	}
}

// Startup reconciles the enforcement engine with the persisted flag. The
// engine's own state does not survive restarts, so the stored intent is
// re-applied before any request is served. A crash mid-toggle leaves no
// stale Transitioning state behind: the transition lives only in memory
// and a fresh controller always starts Idle.
func (c *Controller) Startup(ctx context.Context) error {
	enabled, err := c.store.ProxyEnabled()
	if err != nil {
		logger.Error("Startup: cannot read persisted state, assuming disabled: %v", err)
		enabled = false
	}
	state := models.ToggleStateFor(enabled)
	logger.Info("Startup: restoring persisted state '%s'", state)

	if err := c.applyEngine(ctx, enabled); err != nil {
		c.transition = models.TransitionError
		c.publishBadge(state)
		return fmt.Errorf("startup reconciliation failed for state '%s': %w", state, err)
	}

	c.transition = models.TransitionIdle
	c.publishBadge(state)
	logger.Info("Startup: engine reconciled to '%s'", state)
	return nil
}

// Toggle switches the proxy mode. A request arriving while another toggle
// is in flight is a no-op that reports the current state. The flag is
// persisted only after the engine accepted the change, so a failed toggle
// leaves the stored intent untouched.
func (c *Controller) Toggle(ctx context.Context, enabled bool) (models.ToggleState, error) {
	if c.transition == models.TransitionActive {
		logger.Warn("Toggle: transition already in flight, ignoring request for '%s'", models.ToggleStateFor(enabled))
		current, err := c.store.ProxyEnabled()
		if err != nil {
			logger.Error("Toggle: cannot read current state during in-flight rejection: %v", err)
		}
		return models.ToggleStateFor(current), nil
	}

	requested := models.ToggleStateFor(enabled)
	confirmed, err := c.store.ProxyEnabled()
	if err != nil {
		return models.ToggleDisabled, fmt.Errorf("failed to read persisted state before toggle: %w", err)
	}
	current := models.ToggleStateFor(confirmed)

	c.transition = models.TransitionActive
	logger.Info("Toggle: '%s' -> '%s'", current, requested)

	if err := c.applyEngine(ctx, enabled); err != nil {
		c.transition = models.TransitionError
		c.publishBadge(current)
		logger.Error("Toggle: engine rejected '%s', staying at '%s': %v", requested, current, err)
		return current, err
	}

	if err := c.store.SetProxyEnabled(enabled); err != nil {
		// Engine and store now disagree; the next startup reconciliation
		// re-applies the stale flag and converges them again.
		c.transition = models.TransitionError
		c.publishBadge(current)
		logger.Error("Toggle: engine applied '%s' but persisting failed: %v", requested, err)
		return current, fmt.Errorf("failed to persist state '%s': %w", requested, err)
	}

	c.transition = models.TransitionIdle
	c.publishBadge(requested)
	logger.Info("Toggle: completed, now '%s'", requested)
	return requested, nil
}

// Status reads the persisted toggle state. Side-effect free.
func (c *Controller) Status(ctx context.Context) (models.ToggleState, error) {
	enabled, err := c.store.ProxyEnabled()
	if err != nil {
		return models.ToggleDisabled, fmt.Errorf("failed to read persisted state: %w", err)
	}
	return models.ToggleStateFor(enabled), nil
}

// ServerHealth delegates to the probe. Pure query, no state mutation.
func (c *Controller) ServerHealth(ctx context.Context) ServerStatus {
	return c.prober.Check(ctx)
}

// CurrentBadge returns the last published badge projection. Safe to call
// from any goroutine; used by the UI mirror endpoint.
func (c *Controller) CurrentBadge() models.Badge {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.badge
}

func (c *Controller) applyEngine(ctx context.Context, enabled bool) error {
	if enabled {
		return c.engine.Enable(ctx)
	}
	return c.engine.Disable(ctx)
}

func (c *Controller) publishBadge(state models.ToggleState) {
	b := ProjectBadge(state, c.transition)
	c.mu.Lock()
	c.badge = b
	c.mu.Unlock()
	if c.indicator != nil {
		c.indicator.Set(b)
	}
}
