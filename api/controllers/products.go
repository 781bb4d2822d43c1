package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockroomhq/stockroom-backend/api/responses"
	"github.com/stockroomhq/stockroom-backend/api/validators"
	productsvc "github.com/stockroomhq/stockroom-backend/internal/products"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
)

type createProductRequest struct {
	Name          string                 `json:"name" validate:"required"`
	Description   *string                `json:"description,omitempty"`
	CategoryID    uuid.UUID              `json:"categoryId" validate:"required"`
	SubcategoryID *uuid.UUID             `json:"subcategoryId,omitempty"`
	BrandID       *uuid.UUID             `json:"brandId,omitempty"`
	Variants      []createVariantRequest `json:"variants" validate:"omitempty,dive"`
}

type createVariantRequest struct {
	Size     string          `json:"size"`
	Color    string          `json:"color"`
	StockQty int             `json:"stockQty" validate:"min=0"`
	Price    decimal.Decimal `json:"price"`
}

type addVariantRequest struct {
	Size     string          `json:"size"`
	Color    string          `json:"color"`
	StockQty int             `json:"stockQty" validate:"min=0"`
	Price    decimal.Decimal `json:"price"`
}

type updateProductRequest struct {
	Name          *string    `json:"name,omitempty"`
	Description   *string    `json:"description,omitempty"`
	CategoryID    *uuid.UUID `json:"categoryId,omitempty"`
	SubcategoryID *uuid.UUID `json:"subcategoryId,omitempty"`
	BrandID       *uuid.UUID `json:"brandId,omitempty"`
	IsActive      *bool      `json:"isActive,omitempty"`
}

type updateVariantRequest struct {
	Size     *string          `json:"size,omitempty"`
	Color    *string          `json:"color,omitempty"`
	StockQty *int             `json:"stockQty,omitempty"`
	Price    *decimal.Decimal `json:"price,omitempty"`
}

// ProductCreate registers a product with optional initial variants. Slugs and
// barcodes are generated server side.
func ProductCreate(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := productsvc.CreateProductInput{
			Name:          strings.TrimSpace(payload.Name),
			Description:   payload.Description,
			CategoryID:    payload.CategoryID,
			SubcategoryID: payload.SubcategoryID,
			BrandID:       payload.BrandID,
			Variants:      make([]productsvc.CreateVariantSpec, 0, len(payload.Variants)),
		}
		for _, spec := range payload.Variants {
			input.Variants = append(input.Variants, productsvc.CreateVariantSpec{
				Size:     spec.Size,
				Color:    spec.Color,
				StockQty: spec.StockQty,
				Price:    spec.Price,
			})
		}

		product, err := svc.CreateProduct(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

func ProductList(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, err := validators.ParseQueryUUID(r, "categoryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		brandID, err := validators.ParseQueryUUID(r, "brandId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := productsvc.ListFilter{
			CategoryID: categoryID,
			BrandID:    brandID,
			ActiveOnly: strings.EqualFold(r.URL.Query().Get("active"), "true"),
		}

		list, err := svc.ListProducts(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func ProductGet(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func ProductUpdate(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), id, productsvc.UpdateProductInput{
			Name:          payload.Name,
			Description:   payload.Description,
			CategoryID:    payload.CategoryID,
			SubcategoryID: payload.SubcategoryID,
			BrandID:       payload.BrandID,
			IsActive:      payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func ProductDelete(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func VariantCreate(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addVariantRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		variant, err := svc.CreateVariant(r.Context(), productsvc.CreateVariantInput{
			ProductID: productID,
			Size:      payload.Size,
			Color:     payload.Color,
			StockQty:  payload.StockQty,
			Price:     payload.Price,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, variant)
	}
}

func VariantGet(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "variantId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		variant, err := svc.GetVariant(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, variant)
	}
}

func VariantUpdate(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "variantId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateVariantRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		variant, err := svc.UpdateVariant(r.Context(), id, productsvc.UpdateVariantInput{
			Size:     payload.Size,
			Color:    payload.Color,
			StockQty: payload.StockQty,
			Price:    payload.Price,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, variant)
	}
}

func VariantDelete(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "variantId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteVariant(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
