package controllers

import (
	"net/http"
	"time"

	"github.com/rmoralesdev/brickvest-backend/api/responses"
	"github.com/rmoralesdev/brickvest-backend/internal/investments"
	"github.com/rmoralesdev/brickvest-backend/pkg/logger"
)

// SweepExpiredReservations runs the expiry sweep on demand, outside the cron
// cadence. Safe to call concurrently with the worker.
func SweepExpiredReservations(svc investments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		swept, err := svc.SweepExpired(r.Context(), time.Now().UTC())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"swept": swept})
	}
}
