package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/PSM90/fuorid20-arena-market/api/responses"
	"github.com/PSM90/fuorid20-arena-market/api/validators"
	"github.com/PSM90/fuorid20-arena-market/internal/actors"
	pkgerrors "github.com/PSM90/fuorid20-arena-market/pkg/errors"
	"github.com/PSM90/fuorid20-arena-market/pkg/logger"
)

// AdminActorsList returns every actor on the table.
func AdminActorsList(svc actors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "actors service unavailable"))
			return
		}

		list, err := svc.List(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

type createActorRequest struct {
	Name    string  `json:"name" validate:"required,min=1,max=128"`
	OwnerID *string `json:"owner_id,omitempty" validate:"omitempty,uuid"`
	Balance int     `json:"balance" validate:"min=0"`
}

// AdminActorCreate adds an actor, optionally bound to an owning player.
func AdminActorCreate(svc actors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "actors service unavailable"))
			return
		}

		var body createActorRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := actors.CreateInput{
			Name:    strings.TrimSpace(body.Name),
			Balance: body.Balance,
		}
		if body.OwnerID != nil {
			ownerID, err := uuid.Parse(*body.OwnerID)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid owner id"))
				return
			}
			input.OwnerID = &ownerID
		}

		actor, err := svc.Create(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, actor)
	}
}

// AdminActorDelete removes an actor and its inventory.
func AdminActorDelete(svc actors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "actors service unavailable"))
			return
		}

		actorID, err := validators.ParsePathUUID(chi.URLParam(r, "actorId"), "actorId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, actorID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type assignOwnerRequest struct {
	OwnerID *string `json:"owner_id,omitempty" validate:"omitempty,uuid"`
}

// AdminActorAssignOwner rebinds an actor to a player, or detaches it when
// owner_id is null.
func AdminActorAssignOwner(svc actors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "actors service unavailable"))
			return
		}

		actorID, err := validators.ParsePathUUID(chi.URLParam(r, "actorId"), "actorId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body assignOwnerRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var ownerID *uuid.UUID
		if body.OwnerID != nil {
			parsed, err := uuid.Parse(*body.OwnerID)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid owner id"))
				return
			}
			ownerID = &parsed
		}

		if err := svc.AssignOwner(ctx, actorID, ownerID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}

type balanceRequest struct {
	Balance *int `json:"balance" validate:"required,min=0"`
}

// AdminActorSetBalance overwrites an actor's wallet.
func AdminActorSetBalance(svc actors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "actors service unavailable"))
			return
		}

		actorID, err := validators.ParsePathUUID(chi.URLParam(r, "actorId"), "actorId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body balanceRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.SetBalance(ctx, actorID, *body.Balance); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int{"balance": *body.Balance})
	}
}
