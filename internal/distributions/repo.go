package distributions

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmoralesdev/brickvest-backend/pkg/db/models"
	"github.com/rmoralesdev/brickvest-backend/pkg/enums"
)

// Repository persists income distribution rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindProperty(ctx context.Context, id uuid.UUID) (*models.Property, error)
	CreateBatch(ctx context.Context, rows []models.IncomeDistribution) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.IncomeDistribution, error)
	UpdateWhereStatus(ctx context.Context, id uuid.UUID, from enums.DistributionStatus, updates map[string]any) (int64, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.IncomeDistribution, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a distributions repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindProperty(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	var property models.Property
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&property).Error
	if err != nil {
		return nil, err
	}
	return &property, nil
}

func (r *repository) CreateBatch(ctx context.Context, rows []models.IncomeDistribution) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.IncomeDistribution, error) {
	var row models.IncomeDistribution
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) UpdateWhereStatus(ctx context.Context, id uuid.UUID, from enums.DistributionStatus, updates map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.IncomeDistribution{}).
		Where("id = ?", id).
		Where("status = ?", from).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.IncomeDistribution, error) {
	var rows []models.IncomeDistribution
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("distribution_date DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
