package enums

import "fmt"

// LegacyInvestmentStatus is the status vocabulary of the historical
// investments table. It predates the transaction state machine and is only
// ever read, never written, by this system.
type LegacyInvestmentStatus string

const (
	LegacyInvestmentStatusPending   LegacyInvestmentStatus = "pending"
	LegacyInvestmentStatusConfirmed LegacyInvestmentStatus = "confirmed"
	LegacyInvestmentStatusActive    LegacyInvestmentStatus = "active"
	LegacyInvestmentStatusExited    LegacyInvestmentStatus = "exited"
	LegacyInvestmentStatusCancelled LegacyInvestmentStatus = "cancelled"
)

var validLegacyInvestmentStatuses = []LegacyInvestmentStatus{
	LegacyInvestmentStatusPending,
	LegacyInvestmentStatusConfirmed,
	LegacyInvestmentStatusActive,
	LegacyInvestmentStatusExited,
	LegacyInvestmentStatusCancelled,
}

// IsValid reports whether the value is a known LegacyInvestmentStatus.
func (s LegacyInvestmentStatus) IsValid() bool {
	for _, candidate := range validLegacyInvestmentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// OwnsShares reports whether a legacy record in this status counts as an
// active owner for distribution purposes.
func (s LegacyInvestmentStatus) OwnsShares() bool {
	return s == LegacyInvestmentStatusConfirmed || s == LegacyInvestmentStatusActive
}

// UnifiedStatus translates a legacy status into the unified ledger vocabulary.
func (s LegacyInvestmentStatus) UnifiedStatus() UnifiedStatus {
	switch s {
	case LegacyInvestmentStatusPending:
		return UnifiedStatusPending
	case LegacyInvestmentStatusConfirmed, LegacyInvestmentStatusActive, LegacyInvestmentStatusExited:
		return UnifiedStatusCompleted
	case LegacyInvestmentStatusCancelled:
		return UnifiedStatusCancelled
	}
	return UnifiedStatusPending
}

// ParseLegacyInvestmentStatus converts raw input into a LegacyInvestmentStatus.
func ParseLegacyInvestmentStatus(value string) (LegacyInvestmentStatus, error) {
	for _, candidate := range validLegacyInvestmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid legacy investment status %q", value)
}

// UnifiedStatus is the normalized status exposed by the unified ledger view.
type UnifiedStatus string

const (
	UnifiedStatusPending   UnifiedStatus = "pending"
	UnifiedStatusReserved  UnifiedStatus = "reserved"
	UnifiedStatusCompleted UnifiedStatus = "completed"
	UnifiedStatusCancelled UnifiedStatus = "cancelled"
)

// UnifiedStatusFromTransaction maps a transaction status into the unified
// ledger vocabulary.
func UnifiedStatusFromTransaction(s TransactionStatus) UnifiedStatus {
	switch s {
	case TransactionStatusPending:
		return UnifiedStatusPending
	case TransactionStatusReserved, TransactionStatusProcessing:
		return UnifiedStatusReserved
	case TransactionStatusCompleted:
		return UnifiedStatusCompleted
	case TransactionStatusCancelled:
		return UnifiedStatusCancelled
	}
	return UnifiedStatusPending
}
