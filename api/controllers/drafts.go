package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockroomhq/stockroom-backend/api/responses"
	"github.com/stockroomhq/stockroom-backend/api/validators"
	draftsvc "github.com/stockroomhq/stockroom-backend/internal/drafts"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
)

type createDraftRequest struct {
	CustomerName  string                   `json:"customerName,omitempty"`
	CustomerPhone string                   `json:"customerPhone,omitempty"`
	Subtotal      decimal.Decimal          `json:"subtotal"`
	Discount      decimal.Decimal          `json:"discount"`
	Tax           decimal.Decimal          `json:"tax"`
	Total         decimal.Decimal          `json:"total"`
	PaymentMode   *string                  `json:"paymentMode,omitempty"`
	Items         []createDraftItemRequest `json:"items" validate:"omitempty,dive"`
}

type createDraftItemRequest struct {
	VariantID uuid.UUID       `json:"variantId" validate:"required"`
	Quantity  int             `json:"quantity" validate:"required,min=1"`
	Total     decimal.Decimal `json:"total"`
}

func (r createDraftRequest) toInput() (draftsvc.CreateDraftInput, error) {
	input := draftsvc.CreateDraftInput{
		CustomerName:  strings.TrimSpace(r.CustomerName),
		CustomerPhone: strings.TrimSpace(r.CustomerPhone),
		Subtotal:      r.Subtotal,
		Discount:      r.Discount,
		Tax:           r.Tax,
		Total:         r.Total,
	}

	if r.PaymentMode != nil {
		mode, err := enums.ParsePaymentMode(strings.TrimSpace(*r.PaymentMode))
		if err != nil {
			return draftsvc.CreateDraftInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment mode")
		}
		input.PaymentMode = &mode
	}

	input.Items = make([]draftsvc.DraftItemInput, 0, len(r.Items))
	for _, item := range r.Items {
		input.Items = append(input.Items, draftsvc.DraftItemInput{
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			Total:     item.Total,
		})
	}
	return input, nil
}

type updateDraftRequest struct {
	Subtotal    *decimal.Decimal `json:"subtotal,omitempty"`
	Discount    *decimal.Decimal `json:"discount,omitempty"`
	Tax         *decimal.Decimal `json:"tax,omitempty"`
	Total       *decimal.Decimal `json:"total,omitempty"`
	PaymentMode *string          `json:"paymentMode,omitempty"`
}

type updateDraftItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// DraftCreate opens a new invoice draft, optionally attaching a customer and
// initial lines in the same request.
func DraftCreate(svc draftsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createDraftRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		draft, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, draft)
	}
}

func DraftList(svc draftsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func DraftGet(svc draftsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		draft, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, draft)
	}
}

func DraftUpdate(svc draftsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateDraftRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := draftsvc.UpdateDraftInput{
			Subtotal: payload.Subtotal,
			Discount: payload.Discount,
			Tax:      payload.Tax,
			Total:    payload.Total,
		}
		if payload.PaymentMode != nil {
			mode, err := enums.ParsePaymentMode(strings.TrimSpace(*payload.PaymentMode))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment mode"))
				return
			}
			input.PaymentMode = &mode
		}

		draft, err := svc.UpdateHeader(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, draft)
	}
}

func DraftDelete(svc draftsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// DraftItemUpdate changes a line's quantity; the total is recomputed from the
// unit price captured at creation.
func DraftItemUpdate(svc draftsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateDraftItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.UpdateItem(r.Context(), itemID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func DraftItemDelete(svc draftsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteItem(r.Context(), itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
