package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/rmoralesdev/brickvest-backend/pkg/enums"
	pkgerrors "github.com/rmoralesdev/brickvest-backend/pkg/errors"
	"github.com/rmoralesdev/brickvest-backend/pkg/logger"
)

// Source identifies which ledger a unified row came from.
type Source string

const (
	SourceLegacy      Source = "legacy"
	SourceTransaction Source = "transaction"
)

// UnifiedInvestment is one row of the merged ledger view. Rows from the
// historical investments table and the transaction state machine are
// normalized into a single shape with a shared status vocabulary.
type UnifiedInvestment struct {
	ID           uuid.UUID           `json:"id"`
	Source       Source              `json:"source"`
	PropertyID   uuid.UUID           `json:"property_id"`
	Shares       int64               `json:"shares"`
	AmountCents  int64               `json:"amount_cents"`
	OwnershipPpm int64               `json:"ownership_ppm"`
	Status       enums.UnifiedStatus `json:"status"`
	CreatedAt    time.Time           `json:"created_at"`
}

// Service exposes the read-only unified ledger projection.
type Service interface {
	UserLedger(ctx context.Context, userID uuid.UUID) ([]UnifiedInvestment, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("ledger logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

// UserLedger merges both ledgers for a user, newest first. The projection is
// advisory: a failing source is logged and contributes nothing rather than
// failing the whole view.
func (s *service) UserLedger(ctx context.Context, userID uuid.UUID) ([]UnifiedInvestment, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	merged := make([]UnifiedInvestment, 0)

	legacy, err := s.repo.ListLegacyByUser(ctx, userID)
	if err != nil {
		s.logg.Error(s.logg.WithUserID(ctx, userID.String()), "legacy ledger read failed", err)
	}
	for _, row := range legacy {
		merged = append(merged, UnifiedInvestment{
			ID:           row.ID,
			Source:       SourceLegacy,
			PropertyID:   row.PropertyID,
			Shares:       row.Shares,
			AmountCents:  row.AmountCents,
			OwnershipPpm: row.OwnershipPpm,
			Status:       row.Status.UnifiedStatus(),
			CreatedAt:    row.CreatedAt,
		})
	}

	txns, err := s.repo.ListTransactionsByUser(ctx, userID)
	if err != nil {
		s.logg.Error(s.logg.WithUserID(ctx, userID.String()), "transaction ledger read failed", err)
	}
	for _, row := range txns {
		merged = append(merged, UnifiedInvestment{
			ID:           row.ID,
			Source:       SourceTransaction,
			PropertyID:   row.PropertyID,
			Shares:       row.NumberOfShares,
			AmountCents:  row.InvestmentAmountCents,
			OwnershipPpm: row.OwnershipPpm,
			Status:       enums.UnifiedStatusFromTransaction(row.Status),
			CreatedAt:    row.CreatedAt,
		})
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].CreatedAt.Equal(merged[j].CreatedAt) {
			return merged[i].ID.String() > merged[j].ID.String()
		}
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})
	return merged, nil
}
