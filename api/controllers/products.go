package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dferrantino/quotehub-backend/api/responses"
	"github.com/dferrantino/quotehub-backend/api/validators"
	"github.com/dferrantino/quotehub-backend/internal/catalog"
	"github.com/dferrantino/quotehub-backend/pkg/enums"
	pkgerrors "github.com/dferrantino/quotehub-backend/pkg/errors"
	"github.com/dferrantino/quotehub-backend/pkg/logger"
)

type createProductRequest struct {
	SKU             string   `json:"sku" validate:"required"`
	Name            string   `json:"name" validate:"required"`
	Description     *string  `json:"description,omitempty"`
	Categories      []string `json:"categories,omitempty"`
	Unit            string   `json:"unit" validate:"required"`
	DefaultPrice    string   `json:"default_price" validate:"required"`
	DefaultCurrency string   `json:"default_currency" validate:"required"`
	MinOrderQty     *string  `json:"min_order_qty,omitempty"`
	IsActive        *bool    `json:"is_active,omitempty"`
}

func (r createProductRequest) toInput() (catalog.CreateProductInput, error) {
	unit, err := enums.ParseProductUnit(strings.TrimSpace(r.Unit))
	if err != nil {
		return catalog.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit")
	}
	price, err := decimal.NewFromString(strings.TrimSpace(r.DefaultPrice))
	if err != nil {
		return catalog.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid default_price")
	}
	currency, err := enums.ParseCurrency(strings.TrimSpace(r.DefaultCurrency))
	if err != nil {
		return catalog.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid default_currency")
	}

	input := catalog.CreateProductInput{
		SKU:             r.SKU,
		Name:            r.Name,
		Description:     r.Description,
		Categories:      r.Categories,
		Unit:            unit,
		DefaultPrice:    price,
		DefaultCurrency: currency,
		IsActive:        true,
	}
	if r.IsActive != nil {
		input.IsActive = *r.IsActive
	}
	if input.MinOrderQty, err = parseOptionalDecimal("min_order_qty", r.MinOrderQty); err != nil {
		return catalog.CreateProductInput{}, err
	}
	return input, nil
}

// CreateProduct handles product creation for supplier parties.
func CreateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		partyID, userID, _, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), userID, partyID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

type updateProductRequest struct {
	Name            *string   `json:"name,omitempty" validate:"omitempty,min=1"`
	Description     *string   `json:"description,omitempty"`
	Categories      *[]string `json:"categories,omitempty"`
	Unit            *string   `json:"unit,omitempty"`
	DefaultPrice    *string   `json:"default_price,omitempty"`
	DefaultCurrency *string   `json:"default_currency,omitempty"`
	MinOrderQty     *string   `json:"min_order_qty,omitempty"`
	IsActive        *bool     `json:"is_active,omitempty"`
}

func (r updateProductRequest) toInput() (catalog.UpdateProductInput, error) {
	input := catalog.UpdateProductInput{
		Name:        r.Name,
		Description: r.Description,
		Categories:  r.Categories,
		IsActive:    r.IsActive,
	}

	if r.Unit != nil {
		unit, err := enums.ParseProductUnit(strings.TrimSpace(*r.Unit))
		if err != nil {
			return catalog.UpdateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit")
		}
		input.Unit = &unit
	}

	var err error
	if input.DefaultPrice, err = parseOptionalDecimal("default_price", r.DefaultPrice); err != nil {
		return catalog.UpdateProductInput{}, err
	}
	if input.DefaultCurrency, err = parseOptionalCurrency("default_currency", r.DefaultCurrency); err != nil {
		return catalog.UpdateProductInput{}, err
	}
	if input.MinOrderQty, err = parseOptionalDecimal("min_order_qty", r.MinOrderQty); err != nil {
		return catalog.UpdateProductInput{}, err
	}
	return input, nil
}

// UpdateProduct adjusts the mutable product fields for the owning supplier.
func UpdateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		partyID, userID, _, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), userID, partyID, productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// DeactivateProduct retires a product without breaking quote history.
func DeactivateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		partyID, userID, _, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeactivateProduct(r.Context(), userID, partyID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ProductDetail returns a single product by id.
func ProductDetail(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// ListProducts returns the paginated catalog with optional filters.
func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		input := catalog.ListProductsInput{
			Category: strings.TrimSpace(r.URL.Query().Get("category")),
			Cursor:   strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("supplier_party_id")); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid supplier_party_id"))
				return
			}
			input.SupplierPartyID = &id
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("active_only")); raw != "" {
			value, err := strconv.ParseBool(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid active_only value"))
				return
			}
			input.ActiveOnly = value
		}

		if limitStr := strings.TrimSpace(r.URL.Query().Get("limit")); limitStr != "" {
			value, err := strconv.Atoi(limitStr)
			if err != nil || value <= 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a positive integer"))
				return
			}
			input.Pagination.Limit = value
		}

		result, err := svc.ListProducts(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
