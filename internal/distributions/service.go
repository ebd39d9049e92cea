package distributions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rmoralesdev/brickvest-backend/internal/activity"
	"github.com/rmoralesdev/brickvest-backend/pkg/db/models"
	"github.com/rmoralesdev/brickvest-backend/pkg/enums"
	pkgerrors "github.com/rmoralesdev/brickvest-backend/pkg/errors"
	"github.com/rmoralesdev/brickvest-backend/pkg/outbox"
	"github.com/rmoralesdev/brickvest-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// DistributeInput describes one cash distribution event to allocate.
type DistributeInput struct {
	PropertyID       uuid.UUID
	AmountCents      int64
	DistributionType enums.DistributionType
	DistributionDate time.Time
	Actor            string
}

// DistributeResult reports how the amount was split. ResidualCents is the
// undistributed remainder left by floor rounding, always below the position
// count.
type DistributeResult struct {
	Distributions         []models.IncomeDistribution `json:"distributions"`
	OwnerCount            int                         `json:"owner_count"`
	TotalPpm              int64                       `json:"total_ppm"`
	TotalDistributedCents int64                       `json:"total_distributed_cents"`
	ResidualCents         int64                       `json:"residual_cents"`
}

// Service allocates cash distributions across both ownership ledgers.
type Service interface {
	Distribute(ctx context.Context, input DistributeInput) (*DistributeResult, error)
	// MarkProcessed finalizes a payout. Calling it again on a processed row
	// is a no-op returning the stored row.
	MarkProcessed(ctx context.Context, distributionID uuid.UUID) (*models.IncomeDistribution, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.IncomeDistribution, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	sources  []OwnershipSource
	activity activity.Service
	outbox   outboxPublisher
	now      func() time.Time
}

// NewService builds a distribution service reading from the given ownership
// sources, normally the legacy and transaction ledgers.
func NewService(repo Repository, tx txRunner, sources []OwnershipSource, act activity.Service, ob outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("distributions repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("at least one ownership source required")
	}
	if act == nil {
		return nil, fmt.Errorf("activity service required")
	}
	if ob == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		sources:  sources,
		activity: act,
		outbox:   ob,
		now:      time.Now,
	}, nil
}

func (s *service) Distribute(ctx context.Context, input DistributeInput) (*DistributeResult, error) {
	if input.PropertyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "property id required")
	}
	if input.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if !input.DistributionType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid distribution type")
	}
	if input.DistributionDate.IsZero() {
		input.DistributionDate = s.now().UTC()
	}

	var result *DistributeResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindProperty(ctx, input.PropertyID); err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "property not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load property")
		}

		owners := []Owner{}
		for _, source := range s.sources {
			batch, err := source.Owners(ctx, tx, input.PropertyID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "collect property owners")
			}
			owners = append(owners, batch...)
		}

		var totalPpm int64
		for _, owner := range owners {
			totalPpm += owner.OwnershipPpm
		}
		if totalPpm <= 0 {
			return pkgerrors.New(pkgerrors.CodeNoActiveInvestments, "property has no active investments")
		}

		rows := make([]models.IncomeDistribution, 0, len(owners))
		var distributed int64
		for _, owner := range owners {
			// Floor division: each position gets its exact proportional share
			// rounded down; the remainder stays with the property account.
			share := proportionalShare(input.AmountCents, owner.OwnershipPpm, totalPpm)
			if share <= 0 {
				continue
			}
			distributed += share
			rows = append(rows, models.IncomeDistribution{
				PropertyID:              input.PropertyID,
				UserID:                  owner.UserID,
				LegacyInvestmentID:      owner.LegacyInvestmentID,
				InvestmentTransactionID: owner.InvestmentTransactionID,
				AmountCents:             share,
				DistributionType:        input.DistributionType,
				DistributionDate:        input.DistributionDate,
				Status:                  enums.DistributionStatusPending,
			})
		}

		if err := repo.CreateBatch(ctx, rows); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create distribution rows")
		}

		for i := range rows {
			row := rows[i]
			if row.InvestmentTransactionID != nil {
				desc := fmt.Sprintf("distribution of %d allocated (%s)", row.AmountCents, row.DistributionType)
				if err := s.activity.Append(ctx, tx, *row.InvestmentTransactionID, enums.ActivityTypeDistributionCreated, desc, input.Actor); err != nil {
					return err
				}
			}
			if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventDistributionCreated,
				AggregateType: enums.AggregateDistribution,
				AggregateID:   row.ID,
				Version:       1,
				Data: payloads.DistributionCreatedEvent{
					DistributionID:   row.ID,
					PropertyID:       row.PropertyID,
					UserID:           row.UserID,
					AmountCents:      row.AmountCents,
					DistributionType: row.DistributionType,
					DistributionDate: row.DistributionDate,
					Status:           row.Status,
				},
			}); err != nil {
				return err
			}
		}

		result = &DistributeResult{
			Distributions:         rows,
			OwnerCount:            len(owners),
			TotalPpm:              totalPpm,
			TotalDistributedCents: distributed,
			ResidualCents:         input.AmountCents - distributed,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) MarkProcessed(ctx context.Context, distributionID uuid.UUID) (*models.IncomeDistribution, error) {
	if distributionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "distribution id required")
	}

	var row *models.IncomeDistribution
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := repo.FindByID(ctx, distributionID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "distribution not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load distribution")
		}
		if loaded.Status == enums.DistributionStatusProcessed {
			row = loaded
			return nil
		}

		now := s.now().UTC()
		affected, err := repo.UpdateWhereStatus(ctx, loaded.ID, enums.DistributionStatusPending, map[string]any{
			"status":       enums.DistributionStatusProcessed,
			"processed_at": now,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark distribution processed")
		}
		if affected == 0 {
			// Raced with another processor; re-read and accept its result.
			loaded, err = repo.FindByID(ctx, loaded.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload distribution")
			}
			row = loaded
			return nil
		}

		loaded.Status = enums.DistributionStatusProcessed
		loaded.ProcessedAt = &now
		row = loaded

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDistributionProcessed,
			AggregateType: enums.AggregateDistribution,
			AggregateID:   loaded.ID,
			Version:       1,
			Data: payloads.DistributionProcessedEvent{
				DistributionID: loaded.ID,
				PropertyID:     loaded.PropertyID,
				UserID:         loaded.UserID,
				AmountCents:    loaded.AmountCents,
				ProcessedAt:    now,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.IncomeDistribution, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list user distributions")
	}
	return rows, nil
}

// proportionalShare computes floor(amountCents × ppm / totalPpm). The
// intermediate product can exceed int64 for large distributions, so it is
// carried through decimal; QuoRem with zero precision is an exact integer
// division.
func proportionalShare(amountCents, ppm, totalPpm int64) int64 {
	numerator := decimal.NewFromInt(amountCents).Mul(decimal.NewFromInt(ppm))
	quotient, _ := numerator.QuoRem(decimal.NewFromInt(totalPpm), 0)
	return quotient.IntPart()
}
