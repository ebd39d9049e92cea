package documents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmoralesdev/brickvest-backend/internal/activity"
	"github.com/rmoralesdev/brickvest-backend/pkg/db/models"
	"github.com/rmoralesdev/brickvest-backend/pkg/enums"
	pkgerrors "github.com/rmoralesdev/brickvest-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// AttachInput describes a document to attach to a transaction.
type AttachInput struct {
	TransactionID uuid.UUID
	DocType       string
}

// SignInput captures a signature submission for an attached document.
type SignInput struct {
	DocumentID    uuid.UUID
	SignatureData string
	Actor         string
}

// Service manages the signature lifecycle of investment documents. Signing is
// deliberately decoupled from the transaction state machine: completing an
// investment does not require every document to be signed.
type Service interface {
	Attach(ctx context.Context, input AttachInput) (*models.InvestmentDocument, error)
	Sign(ctx context.Context, input SignInput) (*models.InvestmentDocument, error)
	ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]models.InvestmentDocument, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	activity activity.Service
	now      func() time.Time
}

// NewService wires a document service with its dependencies.
func NewService(repo Repository, tx txRunner, activitySvc activity.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("documents repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("documents tx runner required")
	}
	if activitySvc == nil {
		return nil, fmt.Errorf("documents activity service required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		activity: activitySvc,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Attach(ctx context.Context, input AttachInput) (*models.InvestmentDocument, error) {
	if input.TransactionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id is required")
	}
	docType := strings.TrimSpace(input.DocType)
	if docType == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "document type is required")
	}

	doc := &models.InvestmentDocument{
		InvestmentTransactionID: input.TransactionID,
		DocType:                 docType,
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating investment document")
	}
	return doc, nil
}

// Sign records a signature and appends an audit row in the same transaction.
// Re-signing an already-signed document is a no-op that returns the stored
// row, so retried submissions never overwrite the original signature.
func (s *service) Sign(ctx context.Context, input SignInput) (*models.InvestmentDocument, error) {
	if input.DocumentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "document id is required")
	}
	if strings.TrimSpace(input.SignatureData) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "signature data is required")
	}

	var signed *models.InvestmentDocument
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		doc, err := s.repo.WithTx(tx).FindByID(ctx, input.DocumentID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "document not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading document")
		}
		if doc.Signed {
			signed = doc
			return nil
		}

		signedAt := s.now()
		doc.Signed = true
		doc.SignedAt = &signedAt
		doc.SignatureData = &input.SignatureData
		if err := s.repo.WithTx(tx).Update(ctx, doc); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recording signature")
		}

		description := fmt.Sprintf("Document %s signed", doc.DocType)
		if err := s.activity.Append(ctx, tx, doc.InvestmentTransactionID, enums.ActivityTypeDocumentSigned, description, input.Actor); err != nil {
			return err
		}
		signed = doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return signed, nil
}

func (s *service) ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]models.InvestmentDocument, error) {
	if transactionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id is required")
	}
	docs, err := s.repo.ListByTransaction(ctx, transactionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing documents")
	}
	return docs, nil
}
