package transactions

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/PSM90/fuorid20-arena-market/internal/actors"
	"github.com/PSM90/fuorid20-arena-market/internal/activity"
	"github.com/PSM90/fuorid20-arena-market/internal/catalog"
	"github.com/PSM90/fuorid20-arena-market/internal/players"
	"github.com/PSM90/fuorid20-arena-market/internal/settings"
	"github.com/PSM90/fuorid20-arena-market/internal/shop"
	"github.com/PSM90/fuorid20-arena-market/pkg/db/models"
	"github.com/PSM90/fuorid20-arena-market/pkg/enums"
	"github.com/PSM90/fuorid20-arena-market/pkg/events"
	"github.com/PSM90/fuorid20-arena-market/pkg/logger"
	"github.com/PSM90/fuorid20-arena-market/pkg/pagination"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type recordingEmitter struct {
	envelopes []events.Envelope
}

func (r *recordingEmitter) Emit(_ context.Context, env events.Envelope) error {
	r.envelopes = append(r.envelopes, env)
	return nil
}

type testStack struct {
	engine   *Engine
	db       *gorm.DB
	shop     shop.Service
	catalog  catalog.Service
	actors   actors.Service
	activity activity.Service
	settings settings.Service
	emitter  *recordingEmitter
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()
	dsn := "file:engine_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = conn.AutoMigrate(
		&models.Player{}, &models.Actor{}, &models.ActorItem{},
		&models.CatalogSource{}, &models.CatalogItem{},
		&models.Setting{}, &models.Reservation{}, &models.ActivityEntry{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	settingsSvc, err := settings.NewService(settings.NewRepository(conn))
	if err != nil {
		t.Fatalf("settings service: %v", err)
	}
	catalogSvc, err := catalog.NewService(catalog.NewRepository(conn))
	if err != nil {
		t.Fatalf("catalog service: %v", err)
	}
	actorsSvc, err := actors.NewService(actors.NewRepository(conn), players.NewRepository(conn))
	if err != nil {
		t.Fatalf("actors service: %v", err)
	}
	activitySvc, err := activity.NewService(activity.NewRepository(conn))
	if err != nil {
		t.Fatalf("activity service: %v", err)
	}
	shopSvc, err := shop.NewService(settingsSvc, shop.NewReservationRepository(conn), catalogSvc)
	if err != nil {
		t.Fatalf("shop service: %v", err)
	}

	emitter := &recordingEmitter{}
	engine, err := NewEngine(Params{
		Tx:       gormTxRunner{db: conn},
		Shop:     shopSvc,
		Catalog:  catalogSvc,
		Actors:   actorsSvc,
		Activity: activitySvc,
		Settings: settingsSvc,
		Bus:      emitter,
		Logger:   logger.New(logger.Options{ServiceName: "engine-test", Level: logger.ParseLevel("error")}),
	})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return &testStack{
		engine:   engine,
		db:       conn,
		shop:     shopSvc,
		catalog:  catalogSvc,
		actors:   actorsSvc,
		activity: activitySvc,
		settings: settingsSvc,
		emitter:  emitter,
	}
}

func (s *testStack) openShop(t *testing.T) {
	t.Helper()
	if err := s.settings.SetShopOpen(context.Background(), true); err != nil {
		t.Fatalf("open shop: %v", err)
	}
}

func (s *testStack) seedItem(t *testing.T, name string, basePrice int) *models.CatalogItem {
	t.Helper()
	ctx := context.Background()
	source, err := s.catalog.CreateSource(ctx, "source-"+uuid.NewString())
	if err != nil {
		t.Fatalf("create source: %v", err)
	}
	item, err := s.catalog.CreateItem(ctx, catalog.ItemInput{SourceID: source.ID, Name: name, BasePrice: basePrice})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	return item
}

func (s *testStack) seedActor(t *testing.T, name string, balance int, ownerID *uuid.UUID) *models.Actor {
	t.Helper()
	actor, err := s.actors.Create(context.Background(), actors.CreateInput{Name: name, OwnerID: ownerID, Balance: balance})
	if err != nil {
		t.Fatalf("create actor: %v", err)
	}
	return actor
}

func (s *testStack) putOnSale(t *testing.T, entry shop.Entry) {
	t.Helper()
	cfg, err := s.shop.Config(context.Background())
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.Entries = append(cfg.Entries, entry)
	if err := s.shop.ReplaceConfig(context.Background(), cfg); err != nil {
		t.Fatalf("replace config: %v", err)
	}
}

func intPtr(v int) *int { return &v }

func TestPurchaseHappyPath(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()
	stack.openShop(t)

	item := stack.seedItem(t, "Healing Draught", 40)
	actor := stack.seedActor(t, "Kestrel", 100, nil)
	stack.putOnSale(t, shop.Entry{ItemRef: item.ID, Mode: enums.AvailabilityLimited, Stock: intPtr(3)})

	result, err := stack.engine.Purchase(ctx, actor.ID, item.ID)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if !result.Outcome.Success() {
		t.Fatalf("expected success, got %s", result.Outcome)
	}
	if result.ItemName != "Healing Draught" || result.Price != 40 || result.Currency != settings.DefaultCurrencyName {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.ActorName != "Kestrel" {
		t.Fatalf("expected actor name in result, got %q", result.ActorName)
	}
	if result.NewStock == nil || *result.NewStock != 2 {
		t.Fatalf("expected new stock 2, got %v", result.NewStock)
	}

	// Balance deducted, item granted as a structural copy.
	updated, err := stack.actors.Get(ctx, actor.ID)
	if err != nil {
		t.Fatalf("get actor: %v", err)
	}
	if updated.Balance != 60 {
		t.Fatalf("expected balance 60, got %d", updated.Balance)
	}
	if len(updated.Items) != 1 {
		t.Fatalf("expected 1 inventory item, got %d", len(updated.Items))
	}
	granted := updated.Items[0]
	if granted.ID == item.ID {
		t.Fatal("granted item must not share identity with the catalog item")
	}
	if granted.SourceItemID == nil || *granted.SourceItemID != item.ID {
		t.Fatal("granted item must record its provenance")
	}

	// Activity logged with the Unknown placeholder for ownerless actors.
	page, err := stack.activity.List(ctx, pagination.Params{})
	if err != nil {
		t.Fatalf("list activity: %v", err)
	}
	if len(page.Entries) != 1 {
		t.Fatalf("expected 1 activity entry, got %d", len(page.Entries))
	}
	entry := page.Entries[0]
	if entry.Type != enums.ActivityPurchase || entry.PlayerName != actors.UnknownOwnerName {
		t.Fatalf("unexpected activity entry: %+v", entry)
	}

	// A purchased event was emitted with the full actor and item detail.
	if len(stack.emitter.envelopes) != 1 || stack.emitter.envelopes[0].Kind != events.KindItemPurchased {
		t.Fatalf("expected one item_purchased event, got %+v", stack.emitter.envelopes)
	}
	var payload events.ItemPurchasedPayload
	if err := json.Unmarshal(stack.emitter.envelopes[0].Payload, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.ActorID != actor.ID || payload.ActorName != "Kestrel" || payload.ItemName != "Healing Draught" || payload.Price != 40 {
		t.Fatalf("unexpected purchased payload: %+v", payload)
	}
}

func TestPurchaseRecordsOwnerDisplayName(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()
	stack.openShop(t)

	owner := &models.Player{ID: uuid.New(), Name: "aria", DisplayName: "Aria", PasswordHash: "x", Role: enums.RolePlayer, IsActive: true}
	if err := stack.db.Create(owner).Error; err != nil {
		t.Fatalf("seed player: %v", err)
	}

	item := stack.seedItem(t, "Healing Draught", 10)
	actor := stack.seedActor(t, "Kestrel", 50, &owner.ID)
	stack.putOnSale(t, shop.Entry{ItemRef: item.ID, Mode: enums.AvailabilityUnlimited})

	if _, err := stack.engine.Purchase(ctx, actor.ID, item.ID); err != nil {
		t.Fatalf("purchase: %v", err)
	}

	page, err := stack.activity.List(ctx, pagination.Params{})
	if err != nil {
		t.Fatalf("list activity: %v", err)
	}
	if page.Entries[0].PlayerName != "Aria" {
		t.Fatalf("expected owner display name, got %q", page.Entries[0].PlayerName)
	}
}

func TestPurchaseInsufficientFundsLeavesNoTrace(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()
	stack.openShop(t)

	item := stack.seedItem(t, "Greatsword", 30)
	actor := stack.seedActor(t, "Kestrel", 10, nil)
	stack.putOnSale(t, shop.Entry{ItemRef: item.ID, Mode: enums.AvailabilityUnlimited})

	result, err := stack.engine.Purchase(ctx, actor.ID, item.ID)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if result.Outcome != OutcomeInsufficientFunds {
		t.Fatalf("expected insufficient funds, got %s", result.Outcome)
	}

	updated, err := stack.actors.Get(ctx, actor.ID)
	if err != nil {
		t.Fatalf("get actor: %v", err)
	}
	if updated.Balance != 10 || len(updated.Items) != 0 {
		t.Fatalf("expected no mutation, balance=%d items=%d", updated.Balance, len(updated.Items))
	}
	page, err := stack.activity.List(ctx, pagination.Params{})
	if err != nil {
		t.Fatalf("list activity: %v", err)
	}
	if len(page.Entries) != 0 {
		t.Fatalf("expected no activity entry, got %d", len(page.Entries))
	}
	if len(stack.emitter.envelopes) != 0 {
		t.Fatal("expected no event for a failed purchase")
	}
}

func TestPurchaseSoldOutDespiteFunds(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()
	stack.openShop(t)

	item := stack.seedItem(t, "Relic", 5)
	actor := stack.seedActor(t, "Kestrel", 100, nil)
	stack.putOnSale(t, shop.Entry{ItemRef: item.ID, Mode: enums.AvailabilityLimited, Stock: intPtr(0)})

	result, err := stack.engine.Purchase(ctx, actor.ID, item.ID)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if result.Outcome != OutcomeSoldOut {
		t.Fatalf("expected sold out, got %s", result.Outcome)
	}
}

func TestPurchaseDrainsLimitedStockExactly(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()
	stack.openShop(t)

	item := stack.seedItem(t, "Potion", 1)
	actor := stack.seedActor(t, "Kestrel", 100, nil)
	stack.putOnSale(t, shop.Entry{ItemRef: item.ID, Mode: enums.AvailabilityLimited, Stock: intPtr(3)})

	for i := 0; i < 3; i++ {
		result, err := stack.engine.Purchase(ctx, actor.ID, item.ID)
		if err != nil {
			t.Fatalf("purchase %d: %v", i, err)
		}
		if !result.Outcome.Success() {
			t.Fatalf("purchase %d failed: %s", i, result.Outcome)
		}
	}

	result, err := stack.engine.Purchase(ctx, actor.ID, item.ID)
	if err != nil {
		t.Fatalf("final purchase: %v", err)
	}
	if result.Outcome != OutcomeSoldOut {
		t.Fatalf("expected sold out after draining stock, got %s", result.Outcome)
	}

	entry, err := stack.shop.Entry(ctx, item.ID)
	if err != nil {
		t.Fatalf("entry: %v", err)
	}
	if available := entry.Available(); available == nil || *available != 0 {
		t.Fatalf("expected stock 0, got %v", available)
	}
}

func TestPurchaseGates(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()

	item := stack.seedItem(t, "Potion", 1)
	actor := stack.seedActor(t, "Kestrel", 100, nil)
	stack.putOnSale(t, shop.Entry{ItemRef: item.ID, Mode: enums.AvailabilityUnlimited})

	// Closed shop rejects everything first.
	result, err := stack.engine.Purchase(ctx, actor.ID, item.ID)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if result.Outcome != OutcomeShopClosed {
		t.Fatalf("expected shop closed, got %s", result.Outcome)
	}

	stack.openShop(t)

	result, err = stack.engine.Purchase(ctx, uuid.New(), item.ID)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if result.Outcome != OutcomeActorNotFound {
		t.Fatalf("expected actor not found, got %s", result.Outcome)
	}

	result, err = stack.engine.Purchase(ctx, actor.ID, uuid.New())
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if result.Outcome != OutcomeItemNotFound {
		t.Fatalf("expected item not found, got %s", result.Outcome)
	}

	offSale := stack.seedItem(t, "Unlisted", 5)
	result, err = stack.engine.Purchase(ctx, actor.ID, offSale.ID)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if result.Outcome != OutcomeItemNotConfigured {
		t.Fatalf("expected item not configured, got %s", result.Outcome)
	}
}

func TestReserveProtocol(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()
	stack.openShop(t)

	item := stack.seedItem(t, "Rare Mount", 500)
	actorA := stack.seedActor(t, "Kestrel", 0, nil)
	actorB := stack.seedActor(t, "Drifter", 0, nil)
	stack.putOnSale(t, shop.Entry{ItemRef: item.ID, Mode: enums.AvailabilityReservation})

	result, err := stack.engine.Reserve(ctx, actorA.ID, item.ID)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if !result.Outcome.Success() || result.ItemName != "Rare Mount" || result.ActorName != "Kestrel" {
		t.Fatalf("unexpected result: %+v", result)
	}
	var payload events.ItemReservedPayload
	if err := json.Unmarshal(stack.emitter.envelopes[0].Payload, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.ActorName != "Kestrel" || payload.ItemName != "Rare Mount" {
		t.Fatalf("unexpected reserved payload: %+v", payload)
	}

	// Same actor again fails; a different actor succeeds.
	result, err = stack.engine.Reserve(ctx, actorA.ID, item.ID)
	if err != nil {
		t.Fatalf("reserve again: %v", err)
	}
	if result.Outcome != OutcomeAlreadyReserved {
		t.Fatalf("expected already reserved, got %s", result.Outcome)
	}
	result, err = stack.engine.Reserve(ctx, actorB.ID, item.ID)
	if err != nil {
		t.Fatalf("reserve as second actor: %v", err)
	}
	if !result.Outcome.Success() {
		t.Fatalf("expected second actor to reserve, got %s", result.Outcome)
	}

	reservations, err := stack.shop.ListReservationsForItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("list reservations: %v", err)
	}
	if len(reservations) != 2 {
		t.Fatalf("expected 2 reservations, got %d", len(reservations))
	}

	// No currency or inventory change for reservations.
	updated, err := stack.actors.Get(ctx, actorA.ID)
	if err != nil {
		t.Fatalf("get actor: %v", err)
	}
	if updated.Balance != 0 || len(updated.Items) != 0 {
		t.Fatal("expected reservation to leave actor untouched")
	}

	// Activity carries the reservation type.
	page, err := stack.activity.List(ctx, pagination.Params{})
	if err != nil {
		t.Fatalf("list activity: %v", err)
	}
	if len(page.Entries) != 2 || page.Entries[0].Type != enums.ActivityReservation {
		t.Fatalf("unexpected activity: %+v", page.Entries)
	}
}

func TestReserveRejectsNonReservationModes(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()
	stack.openShop(t)

	item := stack.seedItem(t, "Potion", 1)
	actor := stack.seedActor(t, "Kestrel", 100, nil)
	stack.putOnSale(t, shop.Entry{ItemRef: item.ID, Mode: enums.AvailabilityLimited, Stock: intPtr(5)})

	result, err := stack.engine.Reserve(ctx, actor.ID, item.ID)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if result.Outcome != OutcomeNotReservable {
		t.Fatalf("expected not reservable, got %s", result.Outcome)
	}
}

func TestExecutePurchaseMapsResultPayload(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()
	stack.openShop(t)

	item := stack.seedItem(t, "Potion", 15)
	actor := stack.seedActor(t, "Kestrel", 20, nil)
	stack.putOnSale(t, shop.Entry{ItemRef: item.ID, Mode: enums.AvailabilityUnlimited})

	payload, err := stack.engine.ExecutePurchase(ctx, events.PurchaseRequestPayload{ItemRef: item.ID, ActorID: actor.ID})
	if err != nil {
		t.Fatalf("execute purchase: %v", err)
	}
	if payload.Outcome != string(OutcomeCompleted) || payload.Price != 15 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if payload.ItemRef != item.ID || payload.ActorID != actor.ID {
		t.Fatal("payload must echo the request references")
	}
}
