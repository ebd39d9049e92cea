package documents

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmoralesdev/brickvest-backend/pkg/db/models"
)

// Repository manages persistence for investment documents.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, doc *models.InvestmentDocument) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.InvestmentDocument, error)
	Update(ctx context.Context, doc *models.InvestmentDocument) error
	ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]models.InvestmentDocument, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a document repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, doc *models.InvestmentDocument) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.InvestmentDocument, error) {
	var doc models.InvestmentDocument
	if err := r.db.WithContext(ctx).First(&doc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *repository) Update(ctx context.Context, doc *models.InvestmentDocument) error {
	return r.db.WithContext(ctx).Save(doc).Error
}

func (r *repository) ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]models.InvestmentDocument, error) {
	var docs []models.InvestmentDocument
	if err := r.db.WithContext(ctx).
		Where("investment_transaction_id = ?", transactionID).
		Order("created_at ASC").
		Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}
