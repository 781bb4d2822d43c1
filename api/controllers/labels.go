package controllers

import (
	"net/http"

	"github.com/stockroomhq/stockroom-backend/api/responses"
	"github.com/stockroomhq/stockroom-backend/api/validators"
	labelsvc "github.com/stockroomhq/stockroom-backend/internal/labels"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
)

type labelBatchRequest struct {
	Items []labelsvc.BatchRequestItem `json:"items" validate:"required,min=1,dive"`
}

// LabelBatch resolves barcode label data for a set of variants.
func LabelBatch(svc labelsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload labelBatchRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		batch, err := svc.BuildBatch(r.Context(), payload.Items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, batch)
	}
}
