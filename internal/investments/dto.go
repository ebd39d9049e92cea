package investments

import (
	"github.com/google/uuid"

	"github.com/rmoralesdev/brickvest-backend/pkg/enums"
)

// CreateInput captures a new investment intent. Fees and ownership are
// snapshotted from the live quote at creation time; nothing is reserved yet.
type CreateInput struct {
	PropertyID uuid.UUID
	UserID     uuid.UUID
	Shares     int64
	Actor      string
}

// ReserveInput commits inventory to a pending transaction for a bounded time.
// Minutes outside the configured window are clamped; zero means the default.
type ReserveInput struct {
	TransactionID uuid.UUID
	Minutes       int
	Actor         string
}

// MarkPaidInput records confirmed payment against a reserved transaction.
type MarkPaidInput struct {
	TransactionID    uuid.UUID
	PaymentReference string
	PaymentMethod    enums.PaymentMethod
	Actor            string
}

// CompleteInput finalizes a processing transaction into ownership.
type CompleteInput struct {
	TransactionID uuid.UUID
	Actor         string
}

// CancelInput voids a transaction. AdminOverride extends cancellation to the
// processing state, which regular actors cannot touch.
type CancelInput struct {
	TransactionID uuid.UUID
	Actor         string
	Reason        string
	AdminOverride bool
}
