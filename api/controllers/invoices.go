package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/stockroomhq/stockroom-backend/api/responses"
	"github.com/stockroomhq/stockroom-backend/api/validators"
	invoicesvc "github.com/stockroomhq/stockroom-backend/internal/invoices"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
	"github.com/stockroomhq/stockroom-backend/pkg/pagination"
)

type convertDraftRequest struct {
	DraftID     uuid.UUID `json:"draftId" validate:"required"`
	PaymentMode *string   `json:"paymentMode,omitempty"`
}

type updateInvoiceRequest struct {
	Status      *string `json:"status,omitempty"`
	PaymentMode *string `json:"paymentMode,omitempty"`
}

// InvoiceConvertDraft finalizes a draft into an invoice. Lines are repriced
// from the live catalog and stock is decremented in the same transaction.
func InvoiceConvertDraft(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload convertDraftRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := invoicesvc.ConvertDraftInput{DraftID: payload.DraftID}
		if payload.PaymentMode != nil {
			mode, err := enums.ParsePaymentMode(strings.TrimSpace(*payload.PaymentMode))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment mode"))
				return
			}
			input.PaymentMode = &mode
		}

		invoice, err := svc.ConvertDraft(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, invoice)
	}
}

func InvoiceList(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func InvoiceGet(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, invoice)
	}
}

func InvoiceUpdateStatus(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateInvoiceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input invoicesvc.UpdateStatusInput
		if payload.Status != nil {
			status, err := enums.ParseInvoiceStatus(strings.TrimSpace(*payload.Status))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid invoice status"))
				return
			}
			input.Status = &status
		}
		if payload.PaymentMode != nil {
			mode, err := enums.ParsePaymentMode(strings.TrimSpace(*payload.PaymentMode))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment mode"))
				return
			}
			input.PaymentMode = &mode
		}

		invoice, err := svc.UpdateStatus(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, invoice)
	}
}

func InvoiceDelete(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
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
