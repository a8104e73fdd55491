package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/PSM90/fuorid20-arena-market/pkg/db/models"
	pkgerrors "github.com/PSM90/fuorid20-arena-market/pkg/errors"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	dsn := "file:catalog_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.CatalogSource{}, &models.CatalogItem{}); err != nil {
		t.Fatalf("migrate catalog: %v", err)
	}
	svc, err := NewService(NewRepository(conn))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCreateSourceRejectsDuplicateName(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateSource(ctx, "Core Rulebook"); err != nil {
		t.Fatalf("create source: %v", err)
	}
	_, err := svc.CreateSource(ctx, "Core Rulebook")
	if err == nil {
		t.Fatal("expected conflict for duplicate source name")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("unexpected error code: %v", err)
	}
}

func TestItemLifecycle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	source, err := svc.CreateSource(ctx, "Bazaar Goods")
	if err != nil {
		t.Fatalf("create source: %v", err)
	}

	item, err := svc.CreateItem(ctx, ItemInput{SourceID: source.ID, Name: "Healing Draught", BasePrice: 40})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}

	updated, err := svc.UpdateItem(ctx, item.ID, ItemInput{SourceID: source.ID, Name: "Healing Draught", BasePrice: 55})
	if err != nil {
		t.Fatalf("update item: %v", err)
	}
	if updated.BasePrice != 55 {
		t.Fatalf("expected price 55, got %d", updated.BasePrice)
	}

	items, err := svc.ListItems(ctx, source.ID)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	if err := svc.DeleteItem(ctx, item.ID); err != nil {
		t.Fatalf("delete item: %v", err)
	}
	items, err = svc.ListItems(ctx, source.ID)
	if err != nil {
		t.Fatalf("list items after delete: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items, got %d", len(items))
	}
}

func TestCreateItemRejectsMissingSource(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateItem(context.Background(), ItemInput{SourceID: uuid.New(), Name: "Orphan", BasePrice: 1})
	if err == nil {
		t.Fatal("expected not found for missing source")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error code: %v", err)
	}
}

func TestResolveItemReturnsNilForDanglingRef(t *testing.T) {
	svc := newTestService(t)

	item, err := svc.ResolveItem(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("resolve item: %v", err)
	}
	if item != nil {
		t.Fatalf("expected nil item for dangling reference, got %+v", item)
	}
}

func TestCopyForGrantIsStructural(t *testing.T) {
	desc := "restores vigor"
	item := models.CatalogItem{ID: uuid.New(), Name: "Healing Draught", Description: &desc, BasePrice: 40}
	actorID := uuid.New()

	granted := CopyForGrant(item, actorID, 36)

	if granted.ID == item.ID {
		t.Fatal("expected the copy to get a fresh identity")
	}
	if granted.SourceItemID == nil || *granted.SourceItemID != item.ID {
		t.Fatal("expected provenance to point at the catalog item")
	}
	if granted.ActorID != actorID {
		t.Fatal("expected copy bound to the actor")
	}
	if granted.Name != item.Name || granted.Price != 36 {
		t.Fatalf("unexpected copy fields: %+v", granted)
	}
}
