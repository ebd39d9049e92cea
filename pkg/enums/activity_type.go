package enums

import "fmt"

// ActivityType labels an append-only audit row on an investment transaction.
type ActivityType string

const (
	ActivityTypeCreated             ActivityType = "created"
	ActivityTypeReserved            ActivityType = "reserved"
	ActivityTypePaymentReceived     ActivityType = "payment_received"
	ActivityTypeCompleted           ActivityType = "completed"
	ActivityTypeCancelled           ActivityType = "cancelled"
	ActivityTypeReservationExpired  ActivityType = "reservation_expired"
	ActivityTypeCertificateIssued   ActivityType = "certificate_issued"
	ActivityTypeDocumentSigned      ActivityType = "document_signed"
	ActivityTypeDistributionCreated ActivityType = "distribution_created"
)

var validActivityTypes = []ActivityType{
	ActivityTypeCreated,
	ActivityTypeReserved,
	ActivityTypePaymentReceived,
	ActivityTypeCompleted,
	ActivityTypeCancelled,
	ActivityTypeReservationExpired,
	ActivityTypeCertificateIssued,
	ActivityTypeDocumentSigned,
	ActivityTypeDistributionCreated,
}

// IsValid reports whether the value is a known ActivityType.
func (t ActivityType) IsValid() bool {
	for _, candidate := range validActivityTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseActivityType converts raw input into an ActivityType.
func ParseActivityType(value string) (ActivityType, error) {
	for _, candidate := range validActivityTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid activity type %q", value)
}
