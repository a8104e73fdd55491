package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/PSM90/fuorid20-arena-market/api/middleware"
	"github.com/PSM90/fuorid20-arena-market/api/responses"
	"github.com/PSM90/fuorid20-arena-market/api/validators"
	"github.com/PSM90/fuorid20-arena-market/internal/shop"
	"github.com/PSM90/fuorid20-arena-market/internal/transactions"
	"github.com/PSM90/fuorid20-arena-market/pkg/enums"
	pkgerrors "github.com/PSM90/fuorid20-arena-market/pkg/errors"
	"github.com/PSM90/fuorid20-arena-market/pkg/logger"
)

type transactionEngine interface {
	Purchase(ctx context.Context, actorID, itemRef uuid.UUID) (*transactions.Result, error)
	Reserve(ctx context.Context, actorID, itemRef uuid.UUID) (*transactions.Result, error)
}

type actorGuard interface {
	CanAct(ctx context.Context, playerID uuid.UUID, role enums.PlayerRole, actorID uuid.UUID) (bool, error)
}

// ShopStorefront serves the player-facing shop view.
func ShopStorefront(svc shop.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shop service unavailable"))
			return
		}

		view, err := svc.Storefront(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

type transactionRequest struct {
	ActorID string `json:"actor_id" validate:"required,uuid"`
}

// ShopPurchase runs a purchase for the item in the path on behalf of the
// actor in the body. Failure outcomes are part of the result payload, not
// HTTP errors.
func ShopPurchase(engine transactionEngine, guard actorGuard, logg *logger.Logger) http.HandlerFunc {
	return transact(engine, guard, logg, func(e transactionEngine, ctx context.Context, actorID, itemRef uuid.UUID) (*transactions.Result, error) {
		return e.Purchase(ctx, actorID, itemRef)
	})
}

// ShopReserve queues a reservation for the item in the path.
func ShopReserve(engine transactionEngine, guard actorGuard, logg *logger.Logger) http.HandlerFunc {
	return transact(engine, guard, logg, func(e transactionEngine, ctx context.Context, actorID, itemRef uuid.UUID) (*transactions.Result, error) {
		return e.Reserve(ctx, actorID, itemRef)
	})
}

func transact(
	engine transactionEngine,
	guard actorGuard,
	logg *logger.Logger,
	run func(transactionEngine, context.Context, uuid.UUID, uuid.UUID) (*transactions.Result, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if engine == nil || guard == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transaction engine unavailable"))
			return
		}

		itemRef, err := validators.ParsePathUUID(chi.URLParam(r, "itemRef"), "itemRef")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body transactionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		actorID, err := uuid.Parse(body.ActorID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid actor id"))
			return
		}

		playerID, role, err := callerIdentity(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		allowed, err := guard.CanAct(ctx, playerID, role, actorID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if !allowed {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "actor does not belong to you"))
			return
		}

		result, err := run(engine, ctx, actorID, itemRef)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func callerIdentity(ctx context.Context) (uuid.UUID, enums.PlayerRole, error) {
	raw := middleware.PlayerIDFromContext(ctx)
	if raw == "" {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "player context missing")
	}
	playerID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid player context")
	}
	role, err := enums.ParsePlayerRole(middleware.RoleFromContext(ctx))
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid role context")
	}
	return playerID, role, nil
}
