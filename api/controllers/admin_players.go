package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/PSM90/fuorid20-arena-market/api/responses"
	"github.com/PSM90/fuorid20-arena-market/api/validators"
	"github.com/PSM90/fuorid20-arena-market/internal/players"
	"github.com/PSM90/fuorid20-arena-market/pkg/enums"
	pkgerrors "github.com/PSM90/fuorid20-arena-market/pkg/errors"
	"github.com/PSM90/fuorid20-arena-market/pkg/logger"
)

// AdminPlayersList returns every player account.
func AdminPlayersList(svc players.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "players service unavailable"))
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

type createPlayerRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=64"`
	DisplayName string `json:"display_name" validate:"required,min=1,max=128"`
	Password    string `json:"password" validate:"required,min=8"`
	Role        string `json:"role" validate:"omitempty,oneof=gamemaster player"`
}

// AdminPlayerCreate registers a new player account.
func AdminPlayerCreate(svc players.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "players service unavailable"))
			return
		}

		var body createPlayerRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := players.CreateInput{
			Name:        strings.TrimSpace(body.Name),
			DisplayName: strings.TrimSpace(body.DisplayName),
			Password:    body.Password,
		}
		if body.Role != "" {
			role, err := enums.ParsePlayerRole(body.Role)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
				return
			}
			input.Role = role
		}

		player, err := svc.Create(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, player)
	}
}

type playerActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// AdminPlayerSetActive enables or disables a player's table access.
func AdminPlayerSetActive(svc players.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "players service unavailable"))
			return
		}

		playerID, err := validators.ParsePathUUID(chi.URLParam(r, "playerId"), "playerId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body playerActiveRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.SetActive(ctx, playerID, *body.Active); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"active": *body.Active})
	}
}
