package actors

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/PSM90/fuorid20-arena-market/pkg/db/models"
	"github.com/PSM90/fuorid20-arena-market/pkg/enums"
	pkgerrors "github.com/PSM90/fuorid20-arena-market/pkg/errors"
)

// UnknownOwnerName is shown when an actor has no resolvable owner.
const UnknownOwnerName = "Unknown"

type playerLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Player, error)
}

// Service exposes actor operations. Balances are whole currency units and
// never go negative.
type Service interface {
	WithTx(tx *gorm.DB) Service

	Get(ctx context.Context, id uuid.UUID) (*models.Actor, error)
	List(ctx context.Context) ([]models.Actor, error)
	// ListPermitted returns the actors a player may act with: their own
	// for regular players, everyone's for the game master.
	ListPermitted(ctx context.Context, playerID uuid.UUID, role enums.PlayerRole) ([]models.Actor, error)
	CanAct(ctx context.Context, playerID uuid.UUID, role enums.PlayerRole, actorID uuid.UUID) (bool, error)

	Create(ctx context.Context, input CreateInput) (*models.Actor, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AssignOwner(ctx context.Context, actorID uuid.UUID, ownerID *uuid.UUID) error

	SetBalance(ctx context.Context, actorID uuid.UUID, balance int) error
	GrantItem(ctx context.Context, item models.ActorItem) error
	RemoveItem(ctx context.Context, actorID, itemID uuid.UUID) error

	// OwnerName resolves the display name of an actor's owning player.
	OwnerName(ctx context.Context, actor *models.Actor) string
}

// CreateInput carries the fields for a new actor.
type CreateInput struct {
	Name    string
	OwnerID *uuid.UUID
	Balance int
}

type service struct {
	repo    Repository
	players playerLoader
}

// NewService builds an actor service on the provided stack.
func NewService(repo Repository, players playerLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("actors repository required")
	}
	if players == nil {
		return nil, fmt.Errorf("player loader required")
	}
	return &service{repo: repo, players: players}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	return &service{repo: s.repo.WithTx(tx), players: s.players}
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Actor, error) {
	actor, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "actor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load actor")
	}
	return actor, nil
}

func (s *service) List(ctx context.Context) ([]models.Actor, error) {
	actors, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list actors")
	}
	return actors, nil
}

func (s *service) ListPermitted(ctx context.Context, playerID uuid.UUID, role enums.PlayerRole) ([]models.Actor, error) {
	if role == enums.RoleGameMaster {
		return s.List(ctx)
	}
	actors, err := s.repo.ListByOwner(ctx, playerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list actors by owner")
	}
	return actors, nil
}

func (s *service) CanAct(ctx context.Context, playerID uuid.UUID, role enums.PlayerRole, actorID uuid.UUID) (bool, error) {
	if role == enums.RoleGameMaster {
		return true, nil
	}
	actor, err := s.Get(ctx, actorID)
	if err != nil {
		return false, err
	}
	return actor.OwnerID != nil && *actor.OwnerID == playerID, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Actor, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor name is required")
	}
	if input.Balance < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "balance must be non-negative")
	}
	if input.OwnerID != nil {
		if _, err := s.players.GetByID(ctx, *input.OwnerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "owner player not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load owner")
		}
	}
	actor := &models.Actor{
		ID:      uuid.New(),
		Name:    input.Name,
		OwnerID: input.OwnerID,
		Balance: input.Balance,
	}
	if err := s.repo.Create(ctx, actor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create actor")
	}
	return actor, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete actor")
	}
	return nil
}

func (s *service) AssignOwner(ctx context.Context, actorID uuid.UUID, ownerID *uuid.UUID) error {
	actor, err := s.Get(ctx, actorID)
	if err != nil {
		return err
	}
	if ownerID != nil {
		if _, err := s.players.GetByID(ctx, *ownerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "owner player not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load owner")
		}
	}
	actor.OwnerID = ownerID
	if err := s.repo.Update(ctx, actor); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update actor")
	}
	return nil
}

func (s *service) SetBalance(ctx context.Context, actorID uuid.UUID, balance int) error {
	if balance < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "balance must be non-negative")
	}
	if err := s.repo.UpdateBalance(ctx, actorID, balance); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "actor not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update balance")
	}
	return nil
}

func (s *service) GrantItem(ctx context.Context, item models.ActorItem) error {
	if item.ActorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "actor id is required")
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if err := s.repo.AddItem(ctx, &item); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "grant item")
	}
	return nil
}

func (s *service) RemoveItem(ctx context.Context, actorID, itemID uuid.UUID) error {
	if err := s.repo.RemoveItem(ctx, actorID, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove item")
	}
	return nil
}

func (s *service) OwnerName(ctx context.Context, actor *models.Actor) string {
	if actor == nil || actor.OwnerID == nil {
		return UnknownOwnerName
	}
	player, err := s.players.GetByID(ctx, *actor.OwnerID)
	if err != nil {
		return UnknownOwnerName
	}
	return player.DisplayName
}
