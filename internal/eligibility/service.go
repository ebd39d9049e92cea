package eligibility

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/rmoralesdev/brickvest-backend/pkg/db"
	"github.com/rmoralesdev/brickvest-backend/pkg/db/models"
	"github.com/rmoralesdev/brickvest-backend/pkg/enums"
	pkgerrors "github.com/rmoralesdev/brickvest-backend/pkg/errors"
)

// Check reasons surfaced to callers. These are business outcomes, not errors.
const (
	ReasonKYCNotApproved = "kyc_not_approved"
	ReasonAMLBlocked     = "aml_blocked"
	ReasonAnnualLimit    = "annual_limit_exceeded"
)

// CheckResult is the gate decision for one prospective investment.
type CheckResult struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"`
}

// Service gates investments on investor standing and records invested totals.
type Service interface {
	// Check runs the ordered eligibility rules. A failing rule yields
	// Eligible=false with the first blocking reason; it is not an error.
	Check(ctx context.Context, userID uuid.UUID, amountCents int64) (*CheckResult, error)
	// RecordInvestment adds a completed investment to the investor's running
	// totals. Called inside the completion transaction.
	RecordInvestment(ctx context.Context, tx *gorm.DB, userID uuid.UUID, amountCents int64) error
}

type service struct {
	repo Repository
}

// NewService builds an eligibility service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("eligibility repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Check(ctx context.Context, userID uuid.UUID, amountCents int64) (*CheckResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if amountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	record, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Rules run in a fixed order; the first block wins.
	if record.KYCStatus != enums.KYCStatusApproved {
		return &CheckResult{Eligible: false, Reason: ReasonKYCNotApproved}, nil
	}
	if record.AMLStatus.Blocks() {
		return &CheckResult{Eligible: false, Reason: ReasonAMLBlocked}, nil
	}
	if record.AnnualInvestmentLimitCents != nil {
		if record.CurrentYearInvestedCents+amountCents > *record.AnnualInvestmentLimitCents {
			return &CheckResult{Eligible: false, Reason: ReasonAnnualLimit}, nil
		}
	}
	return &CheckResult{Eligible: true}, nil
}

func (s *service) RecordInvestment(ctx context.Context, tx *gorm.DB, userID uuid.UUID, amountCents int64) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for recording investment")
	}
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if amountCents <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	repo := s.repo.WithTx(tx)
	if _, err := s.loadOrCreateWith(ctx, repo, userID); err != nil {
		return err
	}
	if err := repo.IncrementTotals(ctx, userID, amountCents); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment invested totals")
	}
	return nil
}

func (s *service) loadOrCreate(ctx context.Context, userID uuid.UUID) (*models.EligibilityRecord, error) {
	return s.loadOrCreateWith(ctx, s.repo, userID)
}

// loadOrCreateWith fetches the investor's record, creating a default
// pending-KYC row on first contact. Concurrent first contacts race on the
// unique user index; the loser re-reads the winner's row.
func (s *service) loadOrCreateWith(ctx context.Context, repo Repository, userID uuid.UUID) (*models.EligibilityRecord, error) {
	record, err := repo.FindByUserID(ctx, userID)
	if err == nil {
		return record, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load eligibility record")
	}

	created, err := repo.Create(ctx, &models.EligibilityRecord{
		UserID:            userID,
		AccreditationType: enums.AccreditationTypeNone,
		KYCStatus:         enums.KYCStatusPending,
		AMLStatus:         enums.AMLStatusPending,
	})
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			record, err = repo.FindByUserID(ctx, userID)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload eligibility record")
			}
			return record, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create eligibility record")
	}
	return created, nil
}
