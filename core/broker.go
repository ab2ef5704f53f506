package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Nexus-Agni/just-server-vpn-proxy/logger"
	"github.com/Nexus-Agni/just-server-vpn-proxy/models"

	"github.com/google/uuid"
)

// ErrUnknownAction is returned for any action outside the closed set.
var ErrUnknownAction = errors.New("unrecognized action")

// Broker carries request/response exchanges from transient UI surfaces to
// the long-lived controller loop. Every exchange gets exactly one reply;
// the reply channel is abandoned afterwards. Dispatching through a single
// goroutine serializes all controller work, which is what enforces the
// one-transition-at-a-time rule together with the transition guard.
type Broker struct {
	ctrl     *Controller
	requests chan *exchange
}

type exchange struct {
	id    string
	msg   models.Message
	reply chan outcome
}

type outcome struct {
	out models.Reply
	err error
}

// NewBroker wires a broker to its controller. queueSize bounds the number
// of exchanges waiting for the loop.
func NewBroker(ctrl *Controller, queueSize int) *Broker {
	if queueSize < 1 {
		queueSize = 16
	}
	return &Broker{
		ctrl:     ctrl,
		requests: make(chan *exchange, queueSize),
	}
}

// Run executes startup reconciliation and then serves exchanges until ctx
// is cancelled. Startup runs strictly before the first request so a
// restored flag is always re-applied to the engine before any status or
// toggle is answered. A failed reconciliation is logged, not fatal: the
// loop still serves requests and the user can retry by toggling.
func (b *Broker) Run(ctx context.Context) {
	if err := b.ctrl.Startup(ctx); err != nil {
		logger.Error("Broker: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("Broker: shutting down: %v", ctx.Err())
			return
		case ex := <-b.requests:
			ex.reply <- b.handle(ctx, ex)
		}
	}
}

// Dispatch sends one message to the controller loop and waits for its
// reply or until ctx expires. The deadline cancels only this wait: an
// already-running operation completes in the loop and its reply lands in
// the abandoned buffered channel.
func (b *Broker) Dispatch(ctx context.Context, msg models.Message) (models.Reply, error) {
	if !models.KnownAction(msg.Action) {
		logger.Error("Dispatch: rejecting unrecognized action %q", msg.Action)
		return models.Reply{}, fmt.Errorf("%w: %q", ErrUnknownAction, msg.Action)
	}

	ex := &exchange{
		id:    uuid.NewString(),
		msg:   msg,
		reply: make(chan outcome, 1),
	}
	logger.Debug("Dispatch: exchange %s action=%s", ex.id, msg.Action)

	select {
	case b.requests <- ex:
	case <-ctx.Done():
		return models.Reply{}, fmt.Errorf("dispatch of %q abandoned before delivery: %w", msg.Action, ctx.Err())
	}

	select {
	case res := <-ex.reply:
		return res.out, res.err
	case <-ctx.Done():
		logger.Warn("Dispatch: exchange %s (%s) abandoned waiting for reply: %v", ex.id, msg.Action, ctx.Err())
		return models.Reply{}, fmt.Errorf("no reply for %q within deadline: %w", msg.Action, ctx.Err())
	}
}

func (b *Broker) handle(ctx context.Context, ex *exchange) outcome {
	switch ex.msg.Action {
	case models.ActionGetProxyStatus:
		state, err := b.ctrl.Status(ctx)
		if err != nil {
			return outcome{err: err}
		}
		return outcome{out: models.Reply{Status: &models.StatusResponse{Enabled: state.Enabled()}}}

	case models.ActionToggleProxy:
		var payload models.TogglePayload
		if len(ex.msg.Payload) == 0 {
			return outcome{err: fmt.Errorf("toggleProxy requires a payload")}
		}
		if err := json.Unmarshal(ex.msg.Payload, &payload); err != nil {
			return outcome{err: fmt.Errorf("invalid toggleProxy payload: %w", err)}
		}
		state, err := b.ctrl.Toggle(ctx, payload.Enabled)
		if err != nil {
			return outcome{out: models.Reply{Toggle: &models.ToggleResponse{
				Success: false,
				Error:   engineErrorName(err),
			}}}
		}
		enabled := state.Enabled()
		return outcome{out: models.Reply{Toggle: &models.ToggleResponse{
			Success: true,
			Enabled: &enabled,
		}}}

	case models.ActionCheckServerStatus:
		status := b.ctrl.ServerHealth(ctx)
		resp := &models.ServerStatusResponse{Online: status.Health == models.HealthOnline}
		if status.StatusCode != 0 {
			code := status.StatusCode
			resp.Status = &code
		}
		if !resp.Online {
			resp.Error = status.Detail
		}
		return outcome{out: models.Reply{Server: resp}}
	}

	// Unreachable for validated dispatches; defend against direct sends.
	return outcome{err: fmt.Errorf("%w: %q", ErrUnknownAction, ex.msg.Action)}
}

// engineErrorName reduces a toggle failure to the wire-level error string:
// the engine failure kind when available, the plain message otherwise.
func engineErrorName(err error) string {
	var engErr *EngineError
	if errors.As(err, &engErr) {
		return engErr.Kind.String()
	}
	return err.Error()
}
