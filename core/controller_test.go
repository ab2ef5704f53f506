package core

import (
	"context"
	"errors"
	"testing"

	"github.com/Nexus-Agni/just-server-vpn-proxy/models"
)

type fakeStore struct {
	enabled  bool
	getErr   error
	setErr   error
	setCalls []bool
}

func (s *fakeStore) ProxyEnabled() (bool, error) {
	if s.getErr != nil {
		return false, s.getErr
	}
	return s.enabled, nil
}

func (s *fakeStore) SetProxyEnabled(enabled bool) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.setCalls = append(s.setCalls, enabled)
	s.enabled = enabled
	return nil
}

type fakeEngine struct {
	err     error
	applied bool
	calls   []bool // true = enable, false = disable
}

func (e *fakeEngine) Enable(ctx context.Context) error {
	e.calls = append(e.calls, true)
	if e.err != nil {
		return e.err
	}
	e.applied = true
	return nil
}

func (e *fakeEngine) Disable(ctx context.Context) error {
	e.calls = append(e.calls, false)
	if e.err != nil {
		return e.err
	}
	e.applied = false
	return nil
}

type fakeIndicator struct {
	badges []models.Badge
}

func (i *fakeIndicator) Set(b models.Badge) {
	i.badges = append(i.badges, b)
}

func (i *fakeIndicator) last(t *testing.T) models.Badge {
	t.Helper()
	if len(i.badges) == 0 {
		t.Fatal("no badge was ever published")
	}
	return i.badges[len(i.badges)-1]
}

type stubProber struct {
	status ServerStatus
}

func (p stubProber) Check(ctx context.Context) ServerStatus {
	return p.status
}

func newTestController(store *fakeStore, engine *fakeEngine) (*Controller, *fakeIndicator) {
	ind := &fakeIndicator{}
	return NewController(store, engine, stubProber{}, ind), ind
}

func TestToggleSequenceKeepsEngineAndStoreConverged(t *testing.T) {
	store := &fakeStore{}
	engine := &fakeEngine{}
	ctrl, _ := newTestController(store, engine)
	ctx := context.Background()

	sequence := []bool{true, false, true, true, false}
	for i, want := range sequence {
		state, err := ctrl.Toggle(ctx, want)
		if err != nil {
			t.Fatalf("step %d: unexpected error: %v", i, err)
		}
		if state.Enabled() != want {
			t.Errorf("step %d: got state %s, want enabled=%v", i, state, want)
		}
		if engine.applied != store.enabled {
			t.Errorf("step %d: engine state %v diverged from persisted %v", i, engine.applied, store.enabled)
		}
		if store.enabled != want {
			t.Errorf("step %d: persisted %v, want %v", i, store.enabled, want)
		}
	}
}

func TestToggleToCurrentStateStillInvokesEngine(t *testing.T) {
	store := &fakeStore{enabled: true}
	engine := &fakeEngine{applied: true}
	ctrl, _ := newTestController(store, engine)

	state, err := ctrl.Toggle(context.Background(), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !state.Enabled() {
		t.Errorf("got state %s, want enabled", state)
	}
	if len(engine.calls) != 1 || !engine.calls[0] {
		t.Errorf("engine calls = %v, want exactly one enable", engine.calls)
	}
	if !store.enabled {
		t.Error("persisted state changed, want still enabled")
	}
}

func TestStartupReappliesPersistedStateBeforeStatus(t *testing.T) {
	store := &fakeStore{enabled: true}
	engine := &fakeEngine{}
	ctrl, _ := newTestController(store, engine)
	ctx := context.Background()

	if err := ctrl.Startup(ctx); err != nil {
		t.Fatalf("startup failed: %v", err)
	}
	if len(engine.calls) != 1 || !engine.calls[0] {
		t.Fatalf("engine calls = %v, want exactly one enable during startup", engine.calls)
	}

	state, err := ctrl.Status(ctx)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !state.Enabled() {
		t.Errorf("status after startup = %s, want enabled", state)
	}
}

func TestStartupWithDefaultStateDisablesEngine(t *testing.T) {
	store := &fakeStore{}
	engine := &fakeEngine{applied: true} // engine left enabled by a previous run
	ctrl, ind := newTestController(store, engine)

	if err := ctrl.Startup(context.Background()); err != nil {
		t.Fatalf("startup failed: %v", err)
	}
	if engine.applied {
		t.Error("engine still enabled after reconciling to disabled")
	}
	if b := ind.last(t); b.Text != "" {
		t.Errorf("badge after disabled startup = %q, want empty", b.Text)
	}
}

func TestStartupEngineFailureSetsErrorBadge(t *testing.T) {
	store := &fakeStore{enabled: true}
	engine := &fakeEngine{err: &EngineError{Kind: EngineUnavailable, Detail: "connection refused"}}
	ctrl, ind := newTestController(store, engine)

	err := ctrl.Startup(context.Background())
	if err == nil {
		t.Fatal("expected startup error, got nil")
	}
	if b := ind.last(t); b.Text != models.BadgeTextError || b.Color != models.BadgeColorRed {
		t.Errorf("badge = %+v, want ERR/red", b)
	}
}

func TestToggleRejectedWhileTransitioning(t *testing.T) {
	store := &fakeStore{}
	engine := &fakeEngine{}
	ctrl, _ := newTestController(store, engine)
	ctrl.transition = models.TransitionActive

	state, err := ctrl.Toggle(context.Background(), true)
	if err != nil {
		t.Fatalf("in-flight rejection must be a no-op, got error: %v", err)
	}
	if state.Enabled() {
		t.Errorf("rejected toggle reported %s, want current (disabled)", state)
	}
	if len(engine.calls) != 0 {
		t.Errorf("engine was invoked during rejection: %v", engine.calls)
	}
	if len(store.setCalls) != 0 {
		t.Errorf("store was written during rejection: %v", store.setCalls)
	}
	if ctrl.transition != models.TransitionActive {
		t.Errorf("rejection corrupted the in-flight transition: %s", ctrl.transition)
	}
}

func TestToggleEngineFailureLeavesStateAndSetsErrBadge(t *testing.T) {
	store := &fakeStore{}
	engine := &fakeEngine{err: &EngineError{Kind: EnginePermissionDenied}}
	ctrl, ind := newTestController(store, engine)

	state, err := ctrl.Toggle(context.Background(), true)
	if err == nil {
		t.Fatal("expected engine error, got nil")
	}
	var engErr *EngineError
	if !errors.As(err, &engErr) || engErr.Kind != EnginePermissionDenied {
		t.Errorf("error = %v, want EngineError{PermissionDenied}", err)
	}
	if state.Enabled() {
		t.Errorf("state after failed toggle = %s, want unchanged (disabled)", state)
	}
	if store.enabled {
		t.Error("failed toggle persisted the new flag")
	}
	if b := ind.last(t); b.Text != models.BadgeTextError || b.Color != models.BadgeColorRed {
		t.Errorf("badge = %+v, want ERR/red", b)
	}
}

func TestToggleAcceptedAgainAfterEngineFailure(t *testing.T) {
	store := &fakeStore{}
	engine := &fakeEngine{err: &EngineError{Kind: EngineUnknownRuleset}}
	ctrl, ind := newTestController(store, engine)
	ctx := context.Background()

	if _, err := ctrl.Toggle(ctx, true); err == nil {
		t.Fatal("expected first toggle to fail")
	}

	engine.err = nil
	state, err := ctrl.Toggle(ctx, true)
	if err != nil {
		t.Fatalf("retry after failure rejected: %v", err)
	}
	if !state.Enabled() {
		t.Errorf("retry result = %s, want enabled", state)
	}
	if b := ind.last(t); b.Text != models.BadgeTextOn || b.Color != models.BadgeColorGreen {
		t.Errorf("badge = %+v, want ON/green", b)
	}
}

func TestTogglePersistFailureReportsErrorWithoutFlippingState(t *testing.T) {
	store := &fakeStore{setErr: errors.New("disk full")}
	engine := &fakeEngine{}
	ctrl, ind := newTestController(store, engine)

	state, err := ctrl.Toggle(context.Background(), true)
	if err == nil {
		t.Fatal("expected persist error, got nil")
	}
	if state.Enabled() {
		t.Errorf("reported state = %s, want last confirmed (disabled)", state)
	}
	if b := ind.last(t); b.Text != models.BadgeTextError {
		t.Errorf("badge = %+v, want ERR", b)
	}
}

func TestToggleBadgeProjection(t *testing.T) {
	store := &fakeStore{}
	engine := &fakeEngine{}
	ctrl, ind := newTestController(store, engine)
	ctx := context.Background()

	if _, err := ctrl.Toggle(ctx, true); err != nil {
		t.Fatalf("toggle on failed: %v", err)
	}
	if b := ind.last(t); b.Text != models.BadgeTextOn || b.Color != models.BadgeColorGreen {
		t.Errorf("badge after enable = %+v, want ON/green", b)
	}
	if b := ctrl.CurrentBadge(); b.Text != models.BadgeTextOn {
		t.Errorf("CurrentBadge = %+v, want ON", b)
	}

	if _, err := ctrl.Toggle(ctx, false); err != nil {
		t.Fatalf("toggle off failed: %v", err)
	}
	if b := ind.last(t); b.Text != "" || b.Color != "" {
		t.Errorf("badge after disable = %+v, want cleared", b)
	}
}

func TestServerHealthDelegatesToProber(t *testing.T) {
	store := &fakeStore{}
	engine := &fakeEngine{}
	ind := &fakeIndicator{}
	want := ServerStatus{Health: models.HealthOffline, StatusCode: 503, Detail: "503 Service Unavailable"}
	ctrl := NewController(store, engine, stubProber{status: want}, ind)

	got := ctrl.ServerHealth(context.Background())
	if got != want {
		t.Errorf("ServerHealth() = %+v, want %+v", got, want)
	}
	if len(engine.calls) != 0 || len(store.setCalls) != 0 {
		t.Error("health check mutated controller state")
	}
}
