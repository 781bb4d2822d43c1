package controllers

import (
	"net/http"

	"github.com/stockroomhq/stockroom-backend/api/responses"
	"github.com/stockroomhq/stockroom-backend/api/validators"
	reportsvc "github.com/stockroomhq/stockroom-backend/internal/reports"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
)

// ReportSales returns daily sales rollups; the window defaults to the last
// 30 days when from/to are absent.
func ReportSales(svc reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, err := validators.ParseQueryTime(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryTime(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.Sales(r.Context(), from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

func ReportInventory(svc reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := svc.Inventory(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
