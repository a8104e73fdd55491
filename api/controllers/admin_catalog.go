package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/PSM90/fuorid20-arena-market/api/responses"
	"github.com/PSM90/fuorid20-arena-market/api/validators"
	"github.com/PSM90/fuorid20-arena-market/internal/catalog"
	pkgerrors "github.com/PSM90/fuorid20-arena-market/pkg/errors"
	"github.com/PSM90/fuorid20-arena-market/pkg/logger"
)

// AdminSourcesList lists the imported catalog sources.
func AdminSourcesList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		list, err := svc.ListSources(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

type createSourceRequest struct {
	Name string `json:"name" validate:"required,min=1,max=128"`
}

// AdminSourceCreate registers a new catalog source.
func AdminSourceCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var body createSourceRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		source, err := svc.CreateSource(ctx, strings.TrimSpace(body.Name))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, source)
	}
}

// AdminSourceDelete removes a source and its items.
func AdminSourceDelete(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		sourceID, err := validators.ParsePathUUID(chi.URLParam(r, "sourceId"), "sourceId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.DeleteSource(ctx, sourceID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AdminItemsList lists the items under one source.
func AdminItemsList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		sourceID, err := validators.ParsePathUUID(chi.URLParam(r, "sourceId"), "sourceId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		items, err := svc.ListItems(ctx, sourceID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

type itemRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=256"`
	Image       *string `json:"image,omitempty"`
	Description *string `json:"description,omitempty"`
	BasePrice   int     `json:"base_price" validate:"min=0"`
}

func (req itemRequest) toInput(sourceID uuid.UUID) catalog.ItemInput {
	return catalog.ItemInput{
		SourceID:    sourceID,
		Name:        strings.TrimSpace(req.Name),
		Image:       req.Image,
		Description: req.Description,
		BasePrice:   req.BasePrice,
	}
}

// AdminItemCreate adds an item to a source.
func AdminItemCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		sourceID, err := validators.ParsePathUUID(chi.URLParam(r, "sourceId"), "sourceId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body itemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		item, err := svc.CreateItem(ctx, body.toInput(sourceID))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// AdminItemUpdate rewrites an item's template fields.
func AdminItemUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		sourceID, err := validators.ParsePathUUID(chi.URLParam(r, "sourceId"), "sourceId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		itemID, err := validators.ParsePathUUID(chi.URLParam(r, "itemId"), "itemId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body itemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		item, err := svc.UpdateItem(ctx, itemID, body.toInput(sourceID))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// AdminItemDelete removes an item template. Copies already granted to actors
// are untouched.
func AdminItemDelete(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		itemID, err := validators.ParsePathUUID(chi.URLParam(r, "itemId"), "itemId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.DeleteItem(ctx, itemID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
