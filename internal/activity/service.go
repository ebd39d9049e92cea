package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmoralesdev/brickvest-backend/pkg/db/models"
	"github.com/rmoralesdev/brickvest-backend/pkg/enums"
	pkgerrors "github.com/rmoralesdev/brickvest-backend/pkg/errors"
	"github.com/rmoralesdev/brickvest-backend/pkg/pagination"
)

// SystemActor tags audit rows produced by automated jobs rather than users.
const SystemActor = "system"

// Entry is one audit log item in API responses.
type Entry struct {
	ID           uuid.UUID          `json:"id"`
	ActivityType enums.ActivityType `json:"activity_type"`
	Description  string             `json:"description"`
	PerformedBy  string             `json:"performed_by"`
	CreatedAt    string             `json:"created_at"`
}

// Page is a cursor-paginated slice of audit entries.
type Page struct {
	Entries    []Entry `json:"entries"`
	NextCursor string  `json:"next_cursor,omitempty"`
}

// Service provides the append-only audit trail for investment transactions.
type Service interface {
	// Append writes one audit row inside the caller's transaction so the row
	// commits atomically with the transition it describes.
	Append(ctx context.Context, tx *gorm.DB, transactionID uuid.UUID, activityType enums.ActivityType, description, performedBy string) error
	List(ctx context.Context, transactionID uuid.UUID, params pagination.Params) (*Page, error)
}

type service struct {
	repo Repository
}

// NewService builds an activity service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("activity repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Append(ctx context.Context, tx *gorm.DB, transactionID uuid.UUID, activityType enums.ActivityType, description, performedBy string) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for audit append")
	}
	if transactionID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}
	if !activityType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid activity type")
	}
	if performedBy == "" {
		performedBy = SystemActor
	}
	row := &models.InvestmentActivity{
		InvestmentTransactionID: transactionID,
		ActivityType:            activityType,
		Description:             description,
		PerformedBy:             performedBy,
	}
	if err := s.repo.WithTx(tx).Append(ctx, row); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append activity row")
	}
	return nil
}

func (s *service) List(ctx context.Context, transactionID uuid.UUID, params pagination.Params) (*Page, error) {
	if transactionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	rows, err := s.repo.ListByTransaction(ctx, transactionID, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list activity rows")
	}

	page := &Page{Entries: make([]Entry, 0, len(rows))}
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	for _, row := range rows {
		page.Entries = append(page.Entries, Entry{
			ID:           row.ID,
			ActivityType: row.ActivityType,
			Description:  row.Description,
			PerformedBy:  row.PerformedBy,
			CreatedAt:    row.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	if hasMore {
		last := rows[len(rows)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}
