package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rmoralesdev/brickvest-backend/api/responses"
	"github.com/rmoralesdev/brickvest-backend/api/validators"
	"github.com/rmoralesdev/brickvest-backend/internal/distributions"
	"github.com/rmoralesdev/brickvest-backend/internal/fees"
	"github.com/rmoralesdev/brickvest-backend/internal/inventory"
	"github.com/rmoralesdev/brickvest-backend/pkg/enums"
	pkgerrors "github.com/rmoralesdev/brickvest-backend/pkg/errors"
	"github.com/rmoralesdev/brickvest-backend/pkg/logger"
)

// PropertyAvailability reports live share inventory for a property.
func PropertyAvailability(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		propertyID, err := validators.ParsePathUUID(chi.URLParam(r, "propertyId"), "propertyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		availability, err := svc.Availability(r.Context(), propertyID)
		if err != nil {
			// The availability read is an advisory projection; when the store
			// is unreachable it degrades to an empty snapshot instead of
			// failing the page. The reservation path re-derives inventory
			// inside its transaction and still fails hard.
			if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeDependency {
				logg.Error(r.Context(), "availability read degraded", err)
				responses.WriteSuccess(w, &inventory.Availability{PropertyID: propertyID})
				return
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, availability)
	}
}

// PropertyQuote prices a prospective purchase without writing anything.
func PropertyQuote(svc fees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		propertyID, err := validators.ParsePathUUID(chi.URLParam(r, "propertyId"), "propertyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shares, err := validators.ParseQueryInt(r, "shares", 0, 1, 1_000_000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if shares == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "shares query parameter is required"))
			return
		}

		quote, err := svc.Quote(r.Context(), propertyID, int64(shares))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

type distributeRequest struct {
	AmountCents      int64  `json:"amount_cents" validate:"required,gt=0"`
	DistributionType string `json:"distribution_type" validate:"required"`
	DistributionDate string `json:"distribution_date" validate:"required"`
	Actor            string `json:"actor"`
}

// PropertyDistribute splits a cash amount across every active owner of a
// property, creating pending distribution rows.
func PropertyDistribute(svc distributions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		propertyID, err := validators.ParsePathUUID(chi.URLParam(r, "propertyId"), "propertyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req distributeRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		distributionType, err := enums.ParseDistributionType(req.DistributionType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid distribution type"))
			return
		}
		distributionDate, err := time.Parse("2006-01-02", req.DistributionDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "distribution date must be YYYY-MM-DD"))
			return
		}

		result, err := svc.Distribute(r.Context(), distributions.DistributeInput{
			PropertyID:       propertyID,
			AmountCents:      req.AmountCents,
			DistributionType: distributionType,
			DistributionDate: distributionDate,
			Actor:            req.Actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
