package enums

import "fmt"

// KYCStatus is the investor identity verification state.
type KYCStatus string

const (
	KYCStatusPending  KYCStatus = "pending"
	KYCStatusApproved KYCStatus = "approved"
	KYCStatusRejected KYCStatus = "rejected"
)

var validKYCStatuses = []KYCStatus{
	KYCStatusPending,
	KYCStatusApproved,
	KYCStatusRejected,
}

// IsValid reports whether the value is a known KYCStatus.
func (s KYCStatus) IsValid() bool {
	for _, candidate := range validKYCStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseKYCStatus converts raw input into a KYCStatus.
func ParseKYCStatus(value string) (KYCStatus, error) {
	for _, candidate := range validKYCStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid kyc status %q", value)
}

// AMLStatus is the anti-money-laundering screening state.
type AMLStatus string

const (
	AMLStatusPending  AMLStatus = "pending"
	AMLStatusCleared  AMLStatus = "cleared"
	AMLStatusFlagged  AMLStatus = "flagged"
	AMLStatusRejected AMLStatus = "rejected"
)

var validAMLStatuses = []AMLStatus{
	AMLStatusPending,
	AMLStatusCleared,
	AMLStatusFlagged,
	AMLStatusRejected,
}

// IsValid reports whether the value is a known AMLStatus.
func (s AMLStatus) IsValid() bool {
	for _, candidate := range validAMLStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Blocks reports whether the screening state disallows new investments.
func (s AMLStatus) Blocks() bool {
	return s == AMLStatusFlagged || s == AMLStatusRejected
}

// ParseAMLStatus converts raw input into an AMLStatus.
func ParseAMLStatus(value string) (AMLStatus, error) {
	for _, candidate := range validAMLStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aml status %q", value)
}

// AccreditationType classifies how an investor qualified as accredited.
type AccreditationType string

const (
	AccreditationTypeNone     AccreditationType = "none"
	AccreditationTypeIncome   AccreditationType = "income"
	AccreditationTypeNetWorth AccreditationType = "net_worth"
	AccreditationTypeEntity   AccreditationType = "entity"
)

var validAccreditationTypes = []AccreditationType{
	AccreditationTypeNone,
	AccreditationTypeIncome,
	AccreditationTypeNetWorth,
	AccreditationTypeEntity,
}

// IsValid reports whether the value is a known AccreditationType.
func (t AccreditationType) IsValid() bool {
	for _, candidate := range validAccreditationTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseAccreditationType converts raw input into an AccreditationType.
func ParseAccreditationType(value string) (AccreditationType, error) {
	for _, candidate := range validAccreditationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid accreditation type %q", value)
}
