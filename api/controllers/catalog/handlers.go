package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Nishantvt5/merch-app/api/responses"
	"github.com/Nishantvt5/merch-app/api/validators"
	"github.com/Nishantvt5/merch-app/internal/catalog"
	pkgerrors "github.com/Nishantvt5/merch-app/pkg/errors"
	"github.com/Nishantvt5/merch-app/pkg/logger"
	"github.com/Nishantvt5/merch-app/pkg/pagination"
)

const maxSlugParamLen = 255

// ListCategories returns the active categories ordered by name.
func ListCategories(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		categories, err := svc.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"categories": categories})
	}
}

// ListProducts returns a page of available products, optionally within one category.
func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := r.URL.Query()
		result, err := svc.ListProducts(r.Context(), catalog.ListParams{
			CategorySlug: validators.SanitizeString(query.Get("category"), maxSlugParamLen),
			Cursor:       validators.SanitizeString(query.Get("cursor"), 0),
			Limit:        limit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ProductDetail resolves a product by its category and product slugs.
func ProductDetail(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		detail, err := svc.ProductDetail(r.Context(),
			validators.SanitizeString(chi.URLParam(r, "categorySlug"), maxSlugParamLen),
			validators.SanitizeString(chi.URLParam(r, "productSlug"), maxSlugParamLen),
		)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}
