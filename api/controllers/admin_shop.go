package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/PSM90/fuorid20-arena-market/api/middleware"
	"github.com/PSM90/fuorid20-arena-market/api/responses"
	"github.com/PSM90/fuorid20-arena-market/api/validators"
	"github.com/PSM90/fuorid20-arena-market/internal/settings"
	"github.com/PSM90/fuorid20-arena-market/internal/shop"
	pkgerrors "github.com/PSM90/fuorid20-arena-market/pkg/errors"
	"github.com/PSM90/fuorid20-arena-market/pkg/events"
	"github.com/PSM90/fuorid20-arena-market/pkg/logger"
)

type eventEmitter interface {
	Emit(ctx context.Context, env events.Envelope) error
}

// AdminShopConfig returns the full shop configuration record.
func AdminShopConfig(svc shop.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shop service unavailable"))
			return
		}

		cfg, err := svc.Config(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, cfg)
	}
}

// AdminShopConfigReplace swaps the whole configuration record and notifies
// connected sessions.
func AdminShopConfigReplace(svc shop.Service, bus eventEmitter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shop service unavailable"))
			return
		}

		var cfg shop.Config
		if err := validators.DecodeJSONBody(r, &cfg); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.ReplaceConfig(ctx, cfg); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		emitEvent(ctx, bus, logg, events.KindConfigUpdated, events.ConfigUpdatedPayload{
			UpdatedBy: middleware.PlayerIDFromContext(ctx),
		})
		responses.WriteSuccess(w, cfg)
	}
}

type shopOpenRequest struct {
	Open *bool `json:"open" validate:"required"`
}

// AdminShopSetOpen flips the storefront gate and broadcasts the new state.
func AdminShopSetOpen(svc settings.Service, bus eventEmitter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		var body shopOpenRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.SetShopOpen(ctx, *body.Open); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		emitEvent(ctx, bus, logg, events.KindShopStateChanged, events.ShopStateChangedPayload{Open: *body.Open})
		responses.WriteSuccess(w, map[string]bool{"open": *body.Open})
	}
}

type currencyRequest struct {
	Name string `json:"name" validate:"required,min=1,max=64"`
}

// AdminCurrencySet renames the table's currency.
func AdminCurrencySet(svc settings.Service, bus eventEmitter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		var body currencyRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.SetCurrencyName(ctx, body.Name); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		emitEvent(ctx, bus, logg, events.KindConfigUpdated, events.ConfigUpdatedPayload{
			UpdatedBy: middleware.PlayerIDFromContext(ctx),
		})
		responses.WriteSuccess(w, map[string]string{"currency": body.Name})
	}
}

type stockRequest struct {
	Stock *int `json:"stock" validate:"required,min=0"`
}

// AdminStockSet overwrites the remaining stock for a limited item.
func AdminStockSet(svc shop.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shop service unavailable"))
			return
		}

		itemRef, err := validators.ParsePathUUID(chi.URLParam(r, "itemRef"), "itemRef")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body stockRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.SetStock(ctx, itemRef, *body.Stock); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int{"stock": *body.Stock})
	}
}

// AdminRefresh asks every connected session to re-pull shop state.
func AdminRefresh(bus eventEmitter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if bus == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "event bus unavailable"))
			return
		}

		env := events.Envelope{Kind: events.KindRefresh}
		if err := bus.Emit(ctx, env); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "broadcast refresh"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "refresh requested"})
	}
}

// AdminReservationsList returns the reservation queue, optionally narrowed
// to one item with the item_ref query parameter.
func AdminReservationsList(svc shop.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shop service unavailable"))
			return
		}

		if raw := r.URL.Query().Get("item_ref"); raw != "" {
			itemRef, err := validators.ParsePathUUID(raw, "item_ref")
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			list, err := svc.ListReservationsForItem(ctx, itemRef)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			responses.WriteSuccess(w, list)
			return
		}

		list, err := svc.ListReservations(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminReservationDelete removes one reservation from the queue.
func AdminReservationDelete(svc shop.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shop service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "reservationId"), "reservationId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.DeleteReservation(ctx, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// emitEvent publishes a notification without failing the request. The durable
// write already happened; connected sessions can always re-pull state.
func emitEvent(ctx context.Context, bus eventEmitter, logg *logger.Logger, kind events.Kind, payload any) {
	if bus == nil {
		return
	}
	raw, err := events.MarshalPayload(payload)
	if err != nil {
		warn(ctx, logg, kind, "failed to encode event payload")
		return
	}
	if err := bus.Emit(ctx, events.Envelope{Kind: kind, Payload: raw}); err != nil {
		warn(ctx, logg, kind, "failed to emit event")
	}
}

func warn(ctx context.Context, logg *logger.Logger, kind events.Kind, msg string) {
	if logg == nil {
		return
	}
	logg.Warn(logg.WithField(ctx, "event_kind", string(kind)), msg)
}
