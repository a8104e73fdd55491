package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/PSM90/fuorid20-arena-market/api/responses"
	"github.com/PSM90/fuorid20-arena-market/api/validators"
	"github.com/PSM90/fuorid20-arena-market/internal/catalog"
	"github.com/PSM90/fuorid20-arena-market/internal/shop"
	"github.com/PSM90/fuorid20-arena-market/pkg/db/models"
	pkgerrors "github.com/PSM90/fuorid20-arena-market/pkg/errors"
	"github.com/PSM90/fuorid20-arena-market/pkg/logger"
)

// CatalogSources lists the catalog sources the GM has put in play. An empty
// selection exposes every source.
func CatalogSources(shopSvc shop.Service, catalogSvc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if shopSvc == nil || catalogSvc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		cfg, err := shopSvc.Config(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		sources, err := catalogSvc.ListSources(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		selected := make([]models.CatalogSource, 0, len(sources))
		for _, source := range sources {
			if cfg.HasSource(source.ID) {
				selected = append(selected, source)
			}
		}
		responses.WriteSuccess(w, selected)
	}
}

// ShopItemReservations returns the reservation queue for one item, oldest
// first.
func ShopItemReservations(svc shop.Service, logg *logger.Logger) http.HandlerFunc {
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

		list, err := svc.ListReservationsForItem(ctx, itemRef)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
