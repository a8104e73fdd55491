package activity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/PSM90/fuorid20-arena-market/pkg/db/models"
	"github.com/PSM90/fuorid20-arena-market/pkg/enums"
	"github.com/PSM90/fuorid20-arena-market/pkg/pagination"
)

func newTestStack(t *testing.T) (Service, Repository) {
	t.Helper()
	dsn := "file:activity_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.ActivityEntry{}); err != nil {
		t.Fatalf("migrate activity: %v", err)
	}
	repo := NewRepository(conn)
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo
}

func purchaseEntry(name string) Entry {
	price := 40
	return Entry{
		Type:       enums.ActivityPurchase,
		ActorID:    uuid.New(),
		ActorName:  name,
		PlayerName: "Aria",
		ItemRef:    uuid.New(),
		ItemName:   "Healing Draught",
		Price:      &price,
		Currency:   "Ori",
	}
}

func TestRecordEvictsOldestPastCap(t *testing.T) {
	svc, repo := newTestStack(t)
	ctx := context.Background()

	for i := 0; i < MaxEntries+10; i++ {
		if err := svc.Record(ctx, purchaseEntry("Kestrel")); err != nil {
			t.Fatalf("record entry %d: %v", i, err)
		}
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != MaxEntries {
		t.Fatalf("expected log bounded at %d, got %d", MaxEntries, count)
	}
}

func TestListPagesNewestFirst(t *testing.T) {
	svc, repo := newTestStack(t)
	ctx := context.Background()

	// Seed with explicit timestamps so ordering is deterministic.
	base := time.Now().UTC().Add(-time.Hour)
	names := []string{"first", "second", "third"}
	for i, name := range names {
		entry := &models.ActivityEntry{
			ID:         uuid.New(),
			Type:       enums.ActivityPurchase,
			ActorID:    uuid.New(),
			ActorName:  name,
			PlayerName: "Aria",
			ItemRef:    uuid.New(),
			ItemName:   "Healing Draught",
			Currency:   "Ori",
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Append(ctx, entry); err != nil {
			t.Fatalf("seed entry: %v", err)
		}
	}

	page, err := svc.List(ctx, pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(page.Entries))
	}
	if page.Entries[0].ActorName != "third" || page.Entries[1].ActorName != "second" {
		t.Fatalf("expected newest first, got %q then %q", page.Entries[0].ActorName, page.Entries[1].ActorName)
	}
	if page.NextCursor == "" {
		t.Fatal("expected next cursor on a full page")
	}

	rest, err := svc.List(ctx, pagination.Params{Limit: 2, Cursor: page.NextCursor})
	if err != nil {
		t.Fatalf("list second page: %v", err)
	}
	if len(rest.Entries) != 1 || rest.Entries[0].ActorName != "first" {
		t.Fatalf("unexpected second page: %+v", rest.Entries)
	}
	if rest.NextCursor != "" {
		t.Fatal("expected no cursor on the final page")
	}
}

func TestDeleteAndClear(t *testing.T) {
	svc, repo := newTestStack(t)
	ctx := context.Background()

	if err := svc.Record(ctx, purchaseEntry("Kestrel")); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := svc.Record(ctx, purchaseEntry("Drifter")); err != nil {
		t.Fatalf("record: %v", err)
	}

	page, err := svc.List(ctx, pagination.Params{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if err := svc.Delete(ctx, page.Entries[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, uuid.New()); err == nil {
		t.Fatal("expected not found deleting unknown entry")
	}

	if err := svc.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected empty log, got %d", count)
	}
}
