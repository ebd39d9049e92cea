package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rmoralesdev/brickvest-backend/api/responses"
	"github.com/rmoralesdev/brickvest-backend/api/validators"
	"github.com/rmoralesdev/brickvest-backend/internal/distributions"
	"github.com/rmoralesdev/brickvest-backend/pkg/logger"
)

// MarkDistributionProcessed finalizes one payout row. Repeating the call on
// an already-processed row returns it unchanged.
func MarkDistributionProcessed(svc distributions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		distributionID, err := validators.ParsePathUUID(chi.URLParam(r, "distributionId"), "distributionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.MarkProcessed(r.Context(), distributionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}
