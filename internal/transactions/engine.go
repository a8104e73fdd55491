package transactions

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/PSM90/fuorid20-arena-market/internal/actors"
	"github.com/PSM90/fuorid20-arena-market/internal/activity"
	"github.com/PSM90/fuorid20-arena-market/internal/catalog"
	"github.com/PSM90/fuorid20-arena-market/internal/settings"
	"github.com/PSM90/fuorid20-arena-market/internal/shop"
	"github.com/PSM90/fuorid20-arena-market/pkg/enums"
	pkgerrors "github.com/PSM90/fuorid20-arena-market/pkg/errors"
	"github.com/PSM90/fuorid20-arena-market/pkg/events"
	"github.com/PSM90/fuorid20-arena-market/pkg/logger"
	"github.com/PSM90/fuorid20-arena-market/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type emitter interface {
	Emit(ctx context.Context, env events.Envelope) error
}

// Engine executes purchases and reservations. A single mutex serializes every
// transaction: the whole check-then-mutate sequence runs with no interleaving,
// and the mutations themselves share one database transaction, so a failure
// partway leaves no partial change behind.
type Engine struct {
	mu sync.Mutex

	tx       txRunner
	shop     shop.Service
	catalog  catalog.Service
	actors   actors.Service
	activity activity.Service
	settings settings.Service
	bus      emitter
	metrics  *metrics.ShopMetrics
	logger   *logger.Logger
}

// Params bundles the dependencies required to build an Engine.
type Params struct {
	Tx       txRunner
	Shop     shop.Service
	Catalog  catalog.Service
	Actors   actors.Service
	Activity activity.Service
	Settings settings.Service
	Bus      emitter
	Metrics  *metrics.ShopMetrics
	Logger   *logger.Logger
}

// NewEngine constructs the transaction engine. Bus and metrics are optional.
func NewEngine(params Params) (*Engine, error) {
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.Shop == nil {
		return nil, fmt.Errorf("shop service is required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog service is required")
	}
	if params.Actors == nil {
		return nil, fmt.Errorf("actors service is required")
	}
	if params.Activity == nil {
		return nil, fmt.Errorf("activity service is required")
	}
	if params.Settings == nil {
		return nil, fmt.Errorf("settings service is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Engine{
		tx:       params.Tx,
		shop:     params.Shop,
		catalog:  params.Catalog,
		actors:   params.Actors,
		activity: params.Activity,
		settings: params.Settings,
		bus:      params.Bus,
		metrics:  params.Metrics,
		logger:   params.Logger,
	}, nil
}

// Purchase runs the full purchase protocol for one actor and one item.
// Failure outcomes come back in the result with no mutation performed;
// returned errors are infrastructure failures only.
func (e *Engine) Purchase(ctx context.Context, actorID, itemRef uuid.UUID) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	started := time.Now()
	result, err := e.purchaseLocked(ctx, actorID, itemRef)
	e.observe("purchase", started, result, err)
	if err != nil {
		return nil, err
	}
	if result.Outcome.Success() {
		e.emitPurchased(ctx, actorID, itemRef, result)
	}
	return result, nil
}

func (e *Engine) purchaseLocked(ctx context.Context, actorID, itemRef uuid.UUID) (*Result, error) {
	open, err := e.settings.ShopOpen(ctx)
	if err != nil {
		return nil, err
	}
	if !open {
		return failure(OutcomeShopClosed), nil
	}

	actor, err := e.actors.Get(ctx, actorID)
	if err != nil {
		if isNotFound(err) {
			return failure(OutcomeActorNotFound), nil
		}
		return nil, err
	}

	item, err := e.catalog.ResolveItem(ctx, itemRef)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return failure(OutcomeItemNotFound), nil
	}

	entry, err := e.shop.Entry(ctx, itemRef)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return failure(OutcomeItemNotConfigured), nil
	}

	if entry.Mode == enums.AvailabilityLimited {
		if available := entry.Available(); available == nil || *available <= 0 {
			return failure(OutcomeSoldOut), nil
		}
	}

	price := entry.EffectivePrice(item.BasePrice)
	if actor.Balance < price {
		return failure(OutcomeInsufficientFunds), nil
	}

	currency, err := e.settings.CurrencyName(ctx)
	if err != nil {
		return nil, err
	}
	playerName := e.actors.OwnerName(ctx, actor)

	var newStock *int
	err = e.tx.WithTx(ctx, func(tx *gorm.DB) error {
		actorsTx := e.actors.WithTx(tx)
		shopTx := e.shop.WithTx(tx)
		activityTx := e.activity.WithTx(tx)

		if err := actorsTx.SetBalance(ctx, actorID, actor.Balance-price); err != nil {
			return err
		}
		if err := actorsTx.GrantItem(ctx, catalog.CopyForGrant(*item, actorID, price)); err != nil {
			return err
		}
		if entry.Mode == enums.AvailabilityLimited {
			if err := shopTx.DecrementStock(ctx, itemRef); err != nil {
				return err
			}
			updated, err := shopTx.Entry(ctx, itemRef)
			if err != nil {
				return err
			}
			if updated != nil {
				newStock = updated.Available()
			}
		}
		return activityTx.Record(ctx, activity.Entry{
			Type:       enums.ActivityPurchase,
			ActorID:    actorID,
			ActorName:  actor.Name,
			PlayerName: playerName,
			ItemRef:    itemRef,
			ItemName:   item.Name,
			Price:      &price,
			Currency:   currency,
		})
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		Outcome:   OutcomeCompleted,
		Message:   OutcomeCompleted.Message(),
		ItemName:  item.Name,
		ActorName: actor.Name,
		Price:     price,
		Currency:  currency,
		NewStock:  newStock,
	}, nil
}

// Reserve runs the reservation protocol for one actor and one item.
func (e *Engine) Reserve(ctx context.Context, actorID, itemRef uuid.UUID) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	started := time.Now()
	result, err := e.reserveLocked(ctx, actorID, itemRef)
	e.observe("reserve", started, result, err)
	if err != nil {
		return nil, err
	}
	if result.Outcome.Success() {
		e.emitReserved(ctx, actorID, itemRef, result)
	}
	return result, nil
}

func (e *Engine) reserveLocked(ctx context.Context, actorID, itemRef uuid.UUID) (*Result, error) {
	open, err := e.settings.ShopOpen(ctx)
	if err != nil {
		return nil, err
	}
	if !open {
		return failure(OutcomeShopClosed), nil
	}

	actor, err := e.actors.Get(ctx, actorID)
	if err != nil {
		if isNotFound(err) {
			return failure(OutcomeActorNotFound), nil
		}
		return nil, err
	}

	item, err := e.catalog.ResolveItem(ctx, itemRef)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return failure(OutcomeItemNotFound), nil
	}

	entry, err := e.shop.Entry(ctx, itemRef)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return failure(OutcomeItemNotConfigured), nil
	}
	if entry.Mode != enums.AvailabilityReservation {
		return failure(OutcomeNotReservable), nil
	}

	reserved, err := e.shop.HasReservation(ctx, itemRef, actorID)
	if err != nil {
		return nil, err
	}
	if reserved {
		return failure(OutcomeAlreadyReserved), nil
	}

	currency, err := e.settings.CurrencyName(ctx)
	if err != nil {
		return nil, err
	}
	playerName := e.actors.OwnerName(ctx, actor)

	err = e.tx.WithTx(ctx, func(tx *gorm.DB) error {
		shopTx := e.shop.WithTx(tx)
		activityTx := e.activity.WithTx(tx)

		if _, err := shopTx.AddReservation(ctx, shop.ReservationInput{
			ItemRef:    itemRef,
			ActorID:    actorID,
			ActorName:  actor.Name,
			PlayerName: playerName,
		}); err != nil {
			return err
		}
		return activityTx.Record(ctx, activity.Entry{
			Type:       enums.ActivityReservation,
			ActorID:    actorID,
			ActorName:  actor.Name,
			PlayerName: playerName,
			ItemRef:    itemRef,
			ItemName:   item.Name,
			Currency:   currency,
		})
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeConflict {
			return failure(OutcomeAlreadyReserved), nil
		}
		return nil, err
	}

	return &Result{
		Outcome:   OutcomeCompleted,
		Message:   OutcomeCompleted.Message(),
		ItemName:  item.Name,
		ActorName: actor.Name,
		Currency:  currency,
	}, nil
}

// ExecutePurchase satisfies the event relay's executor contract.
func (e *Engine) ExecutePurchase(ctx context.Context, req events.PurchaseRequestPayload) (events.TransactionResultPayload, error) {
	result, err := e.Purchase(ctx, req.ActorID, req.ItemRef)
	if err != nil {
		return events.TransactionResultPayload{}, err
	}
	return toResultPayload(req.ItemRef, req.ActorID, result), nil
}

// ExecuteReserve satisfies the event relay's executor contract.
func (e *Engine) ExecuteReserve(ctx context.Context, req events.ReserveRequestPayload) (events.TransactionResultPayload, error) {
	result, err := e.Reserve(ctx, req.ActorID, req.ItemRef)
	if err != nil {
		return events.TransactionResultPayload{}, err
	}
	return toResultPayload(req.ItemRef, req.ActorID, result), nil
}

func (e *Engine) observe(operation string, started time.Time, result *Result, err error) {
	if e.metrics == nil {
		return
	}
	e.metrics.ObserveDuration(operation, time.Since(started))
	outcome := "error"
	if err == nil && result != nil {
		outcome = string(result.Outcome)
	}
	if operation == "purchase" {
		e.metrics.IncPurchase(outcome)
	} else {
		e.metrics.IncReservation(outcome)
	}
}

func (e *Engine) emitPurchased(ctx context.Context, actorID, itemRef uuid.UUID, result *Result) {
	e.emit(ctx, events.KindItemPurchased, events.ItemPurchasedPayload{
		ItemRef:   itemRef,
		ItemName:  result.ItemName,
		ActorID:   actorID,
		ActorName: result.ActorName,
		Price:     result.Price,
		Currency:  result.Currency,
	})
}

func (e *Engine) emitReserved(ctx context.Context, actorID, itemRef uuid.UUID, result *Result) {
	e.emit(ctx, events.KindItemReserved, events.ItemReservedPayload{
		ItemRef:   itemRef,
		ItemName:  result.ItemName,
		ActorID:   actorID,
		ActorName: result.ActorName,
	})
}

func (e *Engine) emit(ctx context.Context, kind events.Kind, payload any) {
	if e.bus == nil {
		return
	}
	raw, err := events.MarshalPayload(payload)
	if err != nil {
		e.logger.Error(ctx, "encode transaction event", err)
		return
	}
	if err := e.bus.Emit(ctx, events.Envelope{Kind: kind, Payload: raw}); err != nil {
		e.logger.Error(ctx, "emit transaction event", err)
	}
}

func toResultPayload(itemRef, actorID uuid.UUID, result *Result) events.TransactionResultPayload {
	return events.TransactionResultPayload{
		Outcome:  string(result.Outcome),
		Message:  result.Message,
		ItemRef:  itemRef,
		ActorID:  actorID,
		Price:    result.Price,
		Currency: result.Currency,
	}
}

func isNotFound(err error) bool {
	typed := pkgerrors.As(err)
	return typed != nil && typed.Code() == pkgerrors.CodeNotFound
}

var _ events.Executor = (*Engine)(nil)
