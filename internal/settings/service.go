package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	pkgerrors "github.com/PSM90/fuorid20-arena-market/pkg/errors"
)

// Well-known settings keys. Each key holds one whole JSON value.
const (
	KeyCurrencyName = "currency_name"
	KeyShopOpen     = "shop_open"
	KeyShopConfig   = "shop_config"
)

// DefaultCurrencyName is used until the GM picks a display name.
const DefaultCurrencyName = "Ori"

// Service reads and writes the shop's durable configuration records.
// Missing records fall back to defaults instead of erroring.
type Service interface {
	WithTx(tx *gorm.DB) Service

	CurrencyName(ctx context.Context) (string, error)
	SetCurrencyName(ctx context.Context, name string) error
	ShopOpen(ctx context.Context) (bool, error)
	SetShopOpen(ctx context.Context, open bool) error

	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	PutJSON(ctx context.Context, key string, value any) error
}

type service struct {
	repo Repository
}

// NewService builds a settings service on the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	return &service{repo: s.repo.WithTx(tx)}
}

func (s *service) CurrencyName(ctx context.Context) (string, error) {
	var name string
	found, err := s.GetJSON(ctx, KeyCurrencyName, &name)
	if err != nil {
		return "", err
	}
	if !found || name == "" {
		return DefaultCurrencyName, nil
	}
	return name, nil
}

func (s *service) SetCurrencyName(ctx context.Context, name string) error {
	if name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "currency name is required")
	}
	return s.PutJSON(ctx, KeyCurrencyName, name)
}

func (s *service) ShopOpen(ctx context.Context) (bool, error) {
	var open bool
	found, err := s.GetJSON(ctx, KeyShopOpen, &open)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	return open, nil
}

func (s *service) SetShopOpen(ctx context.Context, open bool) error {
	return s.PutJSON(ctx, KeyShopOpen, open)
}

// GetJSON loads a record into dest. It reports false when no record exists.
func (s *service) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	record, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load setting")
	}
	if err := json.Unmarshal(record.Value, dest); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("decode setting %q", key))
	}
	return true, nil
}

// PutJSON replaces the record wholesale with the encoded value.
func (s *service) PutJSON(ctx context.Context, key string, value any) error {
	if key == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "setting key is required")
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("encode setting %q", key))
	}
	if err := s.repo.Upsert(ctx, key, raw); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store setting")
	}
	return nil
}
