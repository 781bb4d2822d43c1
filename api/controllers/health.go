package controllers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/stockroomhq/stockroom-backend/api/responses"
	"github.com/stockroomhq/stockroom-backend/pkg/config"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
)

const readinessTimeout = 5 * time.Second

// Pinger is the dependency health surface checked by the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Stockroom-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady aggregates dependency probe failures so one unhealthy backend
// does not mask another.
func HealthReady(cfg *config.Config, logg *logger.Logger, db Pinger, cache Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		var probeErr error
		if db != nil {
			if err := db.Ping(ctx); err != nil {
				probeErr = multierr.Append(probeErr, err)
			}
		}
		if cache != nil {
			if err := cache.Ping(ctx); err != nil {
				probeErr = multierr.Append(probeErr, err)
			}
		}

		w.Header().Set("X-Stockroom-Env", cfg.App.Env)
		if probeErr != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, probeErr, "dependencies unavailable"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
