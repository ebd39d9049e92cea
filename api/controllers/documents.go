package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rmoralesdev/brickvest-backend/api/responses"
	"github.com/rmoralesdev/brickvest-backend/api/validators"
	"github.com/rmoralesdev/brickvest-backend/internal/documents"
	"github.com/rmoralesdev/brickvest-backend/pkg/logger"
)

type attachDocumentRequest struct {
	DocType string `json:"doc_type" validate:"required"`
}

// AttachDocument records a new unsigned document against a transaction.
func AttachDocument(svc documents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		transactionID, err := validators.ParsePathUUID(chi.URLParam(r, "transactionId"), "transactionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req attachDocumentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		doc, err := svc.Attach(r.Context(), documents.AttachInput{
			TransactionID: transactionID,
			DocType:       req.DocType,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, doc)
	}
}

// ListDocuments returns the documents attached to a transaction.
func ListDocuments(svc documents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		transactionID, err := validators.ParsePathUUID(chi.URLParam(r, "transactionId"), "transactionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		docs, err := svc.ListByTransaction(r.Context(), transactionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, docs)
	}
}

type signDocumentRequest struct {
	SignatureData string `json:"signature_data" validate:"required"`
	Actor         string `json:"actor"`
}

// SignDocument stores a signature; re-signing is a no-op.
func SignDocument(svc documents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		documentID, err := validators.ParsePathUUID(chi.URLParam(r, "documentId"), "documentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req signDocumentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		doc, err := svc.Sign(r.Context(), documents.SignInput{
			DocumentID:    documentID,
			SignatureData: req.SignatureData,
			Actor:         req.Actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, doc)
	}
}
