package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/PSM90/fuorid20-arena-market/pkg/logger"
)

// Listener handles a delivered envelope. Errors are logged and never stop
// delivery to the remaining listeners.
type Listener func(ctx context.Context, env Envelope) error

// Transport fans envelopes out to other processes.
type Transport interface {
	Publish(ctx context.Context, payload []byte) error
	Subscribe(ctx context.Context) (<-chan []byte, func() error, error)
}

// BusParams configures a Bus.
type BusParams struct {
	// SessionID identifies this process on the bus. Envelopes carrying a
	// TargetSession for someone else are dropped by the Run loop.
	SessionID string
	Transport Transport
	Logger    *logger.Logger
}

// Bus dispatches envelopes to local listeners and mirrors them over the
// transport. A nil transport makes the bus purely local.
type Bus struct {
	mu        sync.RWMutex
	listeners map[Kind][]Listener

	sessionID string
	originID  string
	transport Transport
	logger    *logger.Logger
}

// NewBus builds a Bus. The logger is required.
func NewBus(params BusParams) (*Bus, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("events: logger is required")
	}
	return &Bus{
		listeners: make(map[Kind][]Listener),
		sessionID: params.SessionID,
		originID:  uuid.NewString(),
		transport: params.Transport,
		logger:    params.Logger,
	}, nil
}

// SessionID returns the bus identity used for targeted delivery.
func (b *Bus) SessionID() string {
	return b.sessionID
}

// Subscribe registers a listener for the given kind. KindAny receives every
// envelope regardless of kind.
func (b *Bus) Subscribe(kind Kind, listener Listener) {
	if listener == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[kind] = append(b.listeners[kind], listener)
}

// Emit stamps the envelope, delivers it to local listeners, then mirrors it
// over the transport. Local listener errors do not block the publish.
func (b *Bus) Emit(ctx context.Context, env Envelope) error {
	if env.Kind == "" || env.Kind == KindAny {
		return fmt.Errorf("events: envelope kind %q is not emittable", env.Kind)
	}
	if env.ID == uuid.Nil {
		env.ID = uuid.New()
	}
	if env.EmittedAt.IsZero() {
		env.EmittedAt = time.Now().UTC()
	}
	env.OriginID = b.originID

	b.dispatch(ctx, env)

	if b.transport == nil {
		return nil
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("events: marshal envelope: %w", err)
	}
	if err := b.transport.Publish(ctx, raw); err != nil {
		return fmt.Errorf("events: publish envelope: %w", err)
	}
	return nil
}

// Run consumes the transport until the context is cancelled. Envelopes
// published by this bus instance are skipped, as are envelopes targeted at a
// different session.
func (b *Bus) Run(ctx context.Context) error {
	if b.transport == nil {
		return fmt.Errorf("events: bus has no transport")
	}
	messages, closeFn, err := b.transport.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("events: subscribe: %w", err)
	}
	defer func() {
		if cerr := closeFn(); cerr != nil {
			b.logger.Error(ctx, "events: close subscription", cerr)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw, ok := <-messages:
			if !ok {
				return fmt.Errorf("events: transport closed")
			}
			var env Envelope
			if err := json.Unmarshal(raw, &env); err != nil {
				b.logger.Error(ctx, "events: decode envelope", err)
				continue
			}
			if env.OriginID == b.originID {
				continue
			}
			if env.TargetSession != "" && env.TargetSession != b.sessionID {
				continue
			}
			b.dispatch(ctx, env)
		}
	}
}

func (b *Bus) dispatch(ctx context.Context, env Envelope) {
	b.mu.RLock()
	listeners := make([]Listener, 0, len(b.listeners[env.Kind])+len(b.listeners[KindAny]))
	listeners = append(listeners, b.listeners[env.Kind]...)
	listeners = append(listeners, b.listeners[KindAny]...)
	b.mu.RUnlock()

	var errs error
	for _, listener := range listeners {
		errs = multierr.Append(errs, b.deliver(ctx, env, listener))
	}
	if errs != nil {
		b.logger.Error(ctx, fmt.Sprintf("events: listeners failed for %s", env.Kind), errs)
	}
}

func (b *Bus) deliver(ctx context.Context, env Envelope, listener Listener) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listener panic: %v", r)
		}
	}()
	return listener(ctx, env)
}
