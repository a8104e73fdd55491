package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/PSM90/fuorid20-arena-market/api/responses"
	"github.com/PSM90/fuorid20-arena-market/api/validators"
	"github.com/PSM90/fuorid20-arena-market/internal/actors"
	"github.com/PSM90/fuorid20-arena-market/pkg/enums"
	pkgerrors "github.com/PSM90/fuorid20-arena-market/pkg/errors"
	"github.com/PSM90/fuorid20-arena-market/pkg/logger"
)

// ActorsList returns the actors the caller may act with.
func ActorsList(svc actors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "actors service unavailable"))
			return
		}

		playerID, role, err := callerIdentity(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		list, err := svc.ListPermitted(ctx, playerID, role)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ActorDetail returns one actor with its inventory, restricted to the owner
// or the game master.
func ActorDetail(svc actors.Service, logg *logger.Logger) http.HandlerFunc {
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

		playerID, role, err := callerIdentity(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		actor, err := svc.Get(ctx, actorID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if role != enums.RoleGameMaster {
			if actor.OwnerID == nil || *actor.OwnerID != playerID {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "actor does not belong to you"))
				return
			}
		}
		responses.WriteSuccess(w, actor)
	}
}
