package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/PSM90/fuorid20-arena-market/pkg/logger"
)

type fakeTransport struct {
	published [][]byte
	incoming  chan []byte
	closed    bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{incoming: make(chan []byte, 8)}
}

func (t *fakeTransport) Publish(_ context.Context, payload []byte) error {
	t.published = append(t.published, payload)
	return nil
}

func (t *fakeTransport) Subscribe(_ context.Context) (<-chan []byte, func() error, error) {
	return t.incoming, func() error {
		t.closed = true
		return nil
	}, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{
		ServiceName: "events-test",
		Level:       logger.ParseLevel("error"),
		Output:      &bytes.Buffer{},
	})
}

func newTestBus(t *testing.T, sessionID string, transport Transport) *Bus {
	t.Helper()
	bus, err := NewBus(BusParams{
		SessionID: sessionID,
		Transport: transport,
		Logger:    testLogger(),
	})
	if err != nil {
		t.Fatalf("new bus: %v", err)
	}
	return bus
}

func TestEmitDeliversToAllListenersDespiteFailures(t *testing.T) {
	bus := newTestBus(t, "session-a", nil)

	var first, second, wildcard int
	bus.Subscribe(KindRefresh, func(_ context.Context, _ Envelope) error {
		first++
		return errors.New("listener blew up")
	})
	bus.Subscribe(KindRefresh, func(_ context.Context, _ Envelope) error {
		second++
		panic("listener panicked")
	})
	bus.Subscribe(KindAny, func(_ context.Context, _ Envelope) error {
		wildcard++
		return nil
	})

	if err := bus.Emit(context.Background(), Envelope{Kind: KindRefresh}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if first != 1 || second != 1 || wildcard != 1 {
		t.Fatalf("expected every listener called once, got %d/%d/%d", first, second, wildcard)
	}
}

func TestEmitStampsEnvelopeAndPublishes(t *testing.T) {
	transport := newFakeTransport()
	bus := newTestBus(t, "session-a", transport)

	err := bus.Emit(context.Background(), Envelope{Kind: KindShopStateChanged})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(transport.published) != 1 {
		t.Fatalf("expected 1 published envelope, got %d", len(transport.published))
	}

	var env Envelope
	if err := json.Unmarshal(transport.published[0], &env); err != nil {
		t.Fatalf("decode published envelope: %v", err)
	}
	if env.ID == uuid.Nil {
		t.Fatal("expected envelope id to be stamped")
	}
	if env.OriginID == "" {
		t.Fatal("expected origin id to be stamped")
	}
	if env.EmittedAt.IsZero() {
		t.Fatal("expected emitted_at to be stamped")
	}
}

func TestEmitRejectsWildcardKind(t *testing.T) {
	bus := newTestBus(t, "session-a", nil)
	if err := bus.Emit(context.Background(), Envelope{Kind: KindAny}); err == nil {
		t.Fatal("expected error emitting wildcard kind")
	}
	if err := bus.Emit(context.Background(), Envelope{}); err == nil {
		t.Fatal("expected error emitting empty kind")
	}
}

func TestRunSkipsOwnOriginAndForeignTargets(t *testing.T) {
	transport := newFakeTransport()
	bus := newTestBus(t, "session-a", transport)

	received := make(chan Envelope, 8)
	bus.Subscribe(KindPurchaseResult, func(_ context.Context, env Envelope) error {
		received <- env
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- bus.Run(ctx) }()

	encode := func(env Envelope) []byte {
		raw, err := json.Marshal(env)
		if err != nil {
			t.Fatalf("encode envelope: %v", err)
		}
		return raw
	}

	// One from this bus, one aimed at a different session, one for us.
	if err := bus.Emit(context.Background(), Envelope{Kind: KindPurchaseResult, CorrelationID: "own"}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	transport.incoming <- transport.published[0]
	transport.incoming <- encode(Envelope{
		ID: uuid.New(), Kind: KindPurchaseResult, OriginID: "remote",
		TargetSession: "session-b", CorrelationID: "foreign",
	})
	transport.incoming <- encode(Envelope{
		ID: uuid.New(), Kind: KindPurchaseResult, OriginID: "remote",
		TargetSession: "session-a", CorrelationID: "mine",
	})

	// The Emit call already delivered "own" locally once.
	first := waitForEnvelope(t, received)
	if first.CorrelationID != "own" {
		t.Fatalf("expected local delivery first, got %q", first.CorrelationID)
	}
	second := waitForEnvelope(t, received)
	if second.CorrelationID != "mine" {
		t.Fatalf("expected only the targeted envelope from the transport, got %q", second.CorrelationID)
	}

	select {
	case env := <-received:
		t.Fatalf("unexpected extra delivery: %q", env.CorrelationID)
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !transport.closed {
		t.Fatal("expected subscription to be closed")
	}
}

func waitForEnvelope(t *testing.T, ch <-chan Envelope) Envelope {
	t.Helper()
	select {
	case env := <-ch:
		return env
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for envelope")
		return Envelope{}
	}
}

type fakeExecutor struct {
	purchases []PurchaseRequestPayload
	reserves  []ReserveRequestPayload
	result    TransactionResultPayload
}

func (e *fakeExecutor) ExecutePurchase(_ context.Context, req PurchaseRequestPayload) (TransactionResultPayload, error) {
	e.purchases = append(e.purchases, req)
	return e.result, nil
}

func (e *fakeExecutor) ExecuteReserve(_ context.Context, req ReserveRequestPayload) (TransactionResultPayload, error) {
	e.reserves = append(e.reserves, req)
	return e.result, nil
}

func TestRelayRepliesWithCorrelationAndTarget(t *testing.T) {
	bus := newTestBus(t, "authoritative", nil)
	exec := &fakeExecutor{result: TransactionResultPayload{Outcome: "completed", Price: 40}}
	if _, err := NewRelay(bus, exec, testLogger()); err != nil {
		t.Fatalf("new relay: %v", err)
	}

	var results []Envelope
	bus.Subscribe(KindPurchaseResult, func(_ context.Context, env Envelope) error {
		results = append(results, env)
		return nil
	})

	itemRef := uuid.New()
	actorID := uuid.New()
	payload, err := MarshalPayload(PurchaseRequestPayload{ItemRef: itemRef, ActorID: actorID})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	err = bus.Emit(context.Background(), Envelope{
		Kind:          KindPurchaseRequest,
		SessionID:     "player-session",
		CorrelationID: "corr-1",
		Payload:       payload,
	})
	if err != nil {
		t.Fatalf("emit request: %v", err)
	}

	if len(exec.purchases) != 1 {
		t.Fatalf("expected 1 executed purchase, got %d", len(exec.purchases))
	}
	if exec.purchases[0].ItemRef != itemRef || exec.purchases[0].ActorID != actorID {
		t.Fatal("executor received wrong request payload")
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result envelope, got %d", len(results))
	}
	result := results[0]
	if result.CorrelationID != "corr-1" {
		t.Fatalf("expected correlation id carried over, got %q", result.CorrelationID)
	}
	if result.TargetSession != "player-session" {
		t.Fatalf("expected result targeted at requester, got %q", result.TargetSession)
	}

	var body TransactionResultPayload
	if err := UnmarshalPayload(result, &body); err != nil {
		t.Fatalf("decode result payload: %v", err)
	}
	if body.Outcome != "completed" || body.Price != 40 {
		t.Fatalf("unexpected result payload: %+v", body)
	}
}
