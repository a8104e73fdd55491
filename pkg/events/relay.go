package events

import (
	"context"
	"fmt"

	"github.com/PSM90/fuorid20-arena-market/pkg/logger"
)

// Executor runs forwarded shop transactions on the authoritative process.
type Executor interface {
	ExecutePurchase(ctx context.Context, req PurchaseRequestPayload) (TransactionResultPayload, error)
	ExecuteReserve(ctx context.Context, req ReserveRequestPayload) (TransactionResultPayload, error)
}

// Relay listens for request envelopes, executes them, and emits a result
// envelope targeted back at the requesting session with the request's
// correlation id.
type Relay struct {
	bus    *Bus
	exec   Executor
	logger *logger.Logger
}

// NewRelay registers the relay's listeners on the bus.
func NewRelay(bus *Bus, exec Executor, logg *logger.Logger) (*Relay, error) {
	if bus == nil || exec == nil || logg == nil {
		return nil, fmt.Errorf("events: relay requires bus, executor, and logger")
	}
	relay := &Relay{bus: bus, exec: exec, logger: logg}
	bus.Subscribe(KindPurchaseRequest, relay.onPurchaseRequest)
	bus.Subscribe(KindReserveRequest, relay.onReserveRequest)
	return relay, nil
}

func (r *Relay) onPurchaseRequest(ctx context.Context, env Envelope) error {
	var req PurchaseRequestPayload
	if err := UnmarshalPayload(env, &req); err != nil {
		return err
	}
	result, err := r.exec.ExecutePurchase(ctx, req)
	if err != nil {
		return fmt.Errorf("execute purchase: %w", err)
	}
	return r.reply(ctx, env, KindPurchaseResult, result)
}

func (r *Relay) onReserveRequest(ctx context.Context, env Envelope) error {
	var req ReserveRequestPayload
	if err := UnmarshalPayload(env, &req); err != nil {
		return err
	}
	result, err := r.exec.ExecuteReserve(ctx, req)
	if err != nil {
		return fmt.Errorf("execute reserve: %w", err)
	}
	return r.reply(ctx, env, KindReserveResult, result)
}

func (r *Relay) reply(ctx context.Context, req Envelope, kind Kind, result TransactionResultPayload) error {
	payload, err := MarshalPayload(result)
	if err != nil {
		return err
	}
	return r.bus.Emit(ctx, Envelope{
		Kind:          kind,
		SessionID:     r.bus.SessionID(),
		TargetSession: req.SessionID,
		CorrelationID: req.CorrelationID,
		Payload:       payload,
	})
}
