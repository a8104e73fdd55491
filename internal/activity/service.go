package activity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/PSM90/fuorid20-arena-market/pkg/db/models"
	"github.com/PSM90/fuorid20-arena-market/pkg/enums"
	pkgerrors "github.com/PSM90/fuorid20-arena-market/pkg/errors"
	"github.com/PSM90/fuorid20-arena-market/pkg/pagination"
)

// MaxEntries bounds the activity log. Appending past the cap evicts the
// oldest entries.
const MaxEntries = 500

// Entry carries the fields recorded for one purchase or reservation.
type Entry struct {
	Type       enums.ActivityType
	ActorID    uuid.UUID
	ActorName  string
	PlayerName string
	ItemRef    uuid.UUID
	ItemName   string
	Price      *int
	Currency   string
}

// Page is one cursor-paginated slice of the log, newest first.
type Page struct {
	Entries    []models.ActivityEntry `json:"entries"`
	NextCursor string                 `json:"next_cursor,omitempty"`
}

// Service records and serves the recent-activity log.
type Service interface {
	WithTx(tx *gorm.DB) Service
	Record(ctx context.Context, entry Entry) error
	List(ctx context.Context, params pagination.Params) (*Page, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Clear(ctx context.Context) error
}

type service struct {
	repo Repository
}

// NewService builds an activity service on the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("activity repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	return &service{repo: s.repo.WithTx(tx)}
}

func (s *service) Record(ctx context.Context, entry Entry) error {
	if !entry.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid activity type %q", entry.Type))
	}
	if entry.ActorID == uuid.Nil || entry.ItemRef == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "actor and item references are required")
	}
	record := &models.ActivityEntry{
		ID:         uuid.New(),
		Type:       entry.Type,
		ActorID:    entry.ActorID,
		ActorName:  entry.ActorName,
		PlayerName: entry.PlayerName,
		ItemRef:    entry.ItemRef,
		ItemName:   entry.ItemName,
		Price:      entry.Price,
		Currency:   entry.Currency,
	}
	if err := s.repo.Append(ctx, record); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append activity entry")
	}
	if err := s.repo.TrimToCap(ctx, MaxEntries); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "trim activity log")
	}
	return nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*Page, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	entries, err := s.repo.ListPage(ctx, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list activity entries")
	}

	page := &Page{Entries: entries}
	if len(entries) > limit {
		page.Entries = entries[:limit]
		last := page.Entries[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "activity entry not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete activity entry")
	}
	return nil
}

func (s *service) Clear(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear activity log")
	}
	return nil
}
