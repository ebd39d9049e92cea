package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	pkgerrors "github.com/rmoralesdev/brickvest-backend/pkg/errors"
)

// Availability is the live share inventory position of a property. It is
// derived on every call; nothing stores a sold counter that could drift.
type Availability struct {
	PropertyID      uuid.UUID `json:"property_id"`
	TotalShares     int64     `json:"total_shares"`
	SoldShares      int64     `json:"sold_shares"`
	AvailableShares int64     `json:"available_shares"`
	PercentageSold  float64   `json:"percentage_sold"`
	SharePriceCents int64     `json:"share_price_cents"`
	FundingOpen     bool      `json:"funding_open"`
}

// Service computes share availability for quoting and reservation.
type Service interface {
	Availability(ctx context.Context, propertyID uuid.UUID) (*Availability, error)
	// AvailabilityForUpdate recomputes availability inside the caller's
	// transaction while holding the property row lock, so a concurrent
	// reservation cannot interleave between check and write.
	AvailabilityForUpdate(ctx context.Context, tx *gorm.DB, propertyID uuid.UUID) (*Availability, error)
}

type service struct {
	repo Repository
}

// NewService builds an inventory service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Availability(ctx context.Context, propertyID uuid.UUID) (*Availability, error) {
	if propertyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "property id required")
	}
	property, err := s.repo.FindProperty(ctx, propertyID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "property not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load property")
	}
	sold, err := s.repo.SumConsumedShares(ctx, propertyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum consumed shares")
	}
	return buildAvailability(property.ID, property.TotalShares, sold, property.SharePriceCents, property.FundingOpen), nil
}

func (s *service) AvailabilityForUpdate(ctx context.Context, tx *gorm.DB, propertyID uuid.UUID) (*Availability, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for locked availability read")
	}
	repo := s.repo.WithTx(tx)
	property, err := repo.LockProperty(ctx, propertyID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "property not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock property")
	}
	sold, err := repo.SumConsumedShares(ctx, propertyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum consumed shares")
	}
	return buildAvailability(property.ID, property.TotalShares, sold, property.SharePriceCents, property.FundingOpen), nil
}

func buildAvailability(propertyID uuid.UUID, total, sold, sharePriceCents int64, fundingOpen bool) *Availability {
	available := total - sold
	if available < 0 {
		available = 0
	}
	var pct float64
	if total > 0 {
		pct, _ = decimal.NewFromInt(sold).
			Div(decimal.NewFromInt(total)).
			Mul(decimal.NewFromInt(100)).
			Round(2).
			Float64()
	}
	return &Availability{
		PropertyID:      propertyID,
		TotalShares:     total,
		SoldShares:      sold,
		AvailableShares: available,
		PercentageSold:  pct,
		SharePriceCents: sharePriceCents,
		FundingOpen:     fundingOpen,
	}
}
