package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rmoralesdev/brickvest-backend/api/responses"
	"github.com/rmoralesdev/brickvest-backend/api/validators"
	"github.com/rmoralesdev/brickvest-backend/internal/activity"
	"github.com/rmoralesdev/brickvest-backend/internal/investments"
	"github.com/rmoralesdev/brickvest-backend/pkg/enums"
	pkgerrors "github.com/rmoralesdev/brickvest-backend/pkg/errors"
	"github.com/rmoralesdev/brickvest-backend/pkg/logger"
	"github.com/rmoralesdev/brickvest-backend/pkg/pagination"
)

type createInvestmentRequest struct {
	PropertyID string `json:"property_id" validate:"required,uuid"`
	UserID     string `json:"user_id" validate:"required,uuid"`
	Shares     int64  `json:"shares" validate:"required,gt=0"`
}

// CreateInvestment opens a pending transaction with a snapshotted quote.
func CreateInvestment(svc investments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createInvestmentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		propertyID, _ := uuid.Parse(req.PropertyID)
		userID, _ := uuid.Parse(req.UserID)

		txn, err := svc.Create(r.Context(), investments.CreateInput{
			PropertyID: propertyID,
			UserID:     userID,
			Shares:     req.Shares,
			Actor:      userID.String(),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, txn)
	}
}

type reserveRequest struct {
	Minutes int `json:"minutes" validate:"omitempty,gt=0"`
}

// ReserveInvestment holds shares for the transaction within the configured
// reservation window.
func ReserveInvestment(svc investments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		transactionID, err := validators.ParsePathUUID(chi.URLParam(r, "transactionId"), "transactionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req reserveRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &req); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		txn, err := svc.Reserve(r.Context(), investments.ReserveInput{
			TransactionID: transactionID,
			Minutes:       req.Minutes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, txn)
	}
}

type markPaidRequest struct {
	PaymentReference string `json:"payment_reference" validate:"required"`
	PaymentMethod    string `json:"payment_method" validate:"required"`
}

// MarkInvestmentPaid records a confirmed payment against a reservation.
func MarkInvestmentPaid(svc investments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		transactionID, err := validators.ParsePathUUID(chi.URLParam(r, "transactionId"), "transactionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req markPaidRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(req.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		txn, err := svc.MarkPaid(r.Context(), investments.MarkPaidInput{
			TransactionID:    transactionID,
			PaymentReference: req.PaymentReference,
			PaymentMethod:    method,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, txn)
	}
}

// CompleteInvestment finalizes a paid transaction into ownership.
func CompleteInvestment(svc investments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		transactionID, err := validators.ParsePathUUID(chi.URLParam(r, "transactionId"), "transactionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		txn, err := svc.Complete(r.Context(), investments.CompleteInput{TransactionID: transactionID})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, txn)
	}
}

type cancelRequest struct {
	Reason        string `json:"reason"`
	AdminOverride bool   `json:"admin_override"`
}

// CancelInvestment voids a transaction and releases any held shares.
func CancelInvestment(svc investments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		transactionID, err := validators.ParsePathUUID(chi.URLParam(r, "transactionId"), "transactionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req cancelRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &req); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		txn, err := svc.Cancel(r.Context(), investments.CancelInput{
			TransactionID: transactionID,
			Reason:        req.Reason,
			AdminOverride: req.AdminOverride,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, txn)
	}
}

// GetInvestment returns one transaction by id.
func GetInvestment(svc investments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		transactionID, err := validators.ParsePathUUID(chi.URLParam(r, "transactionId"), "transactionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		txn, err := svc.Get(r.Context(), transactionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, txn)
	}
}

// ListInvestmentActivities pages through the audit trail of a transaction.
func ListInvestmentActivities(svc activity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		transactionID, err := validators.ParsePathUUID(chi.URLParam(r, "transactionId"), "transactionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), transactionID, pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}
