package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateInvestmentTransaction OutboxAggregateType = "investment_transaction"
	AggregateProperty              OutboxAggregateType = "property"
	AggregateDistribution          OutboxAggregateType = "income_distribution"
	AggregateNotification          OutboxAggregateType = "notification"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateInvestmentTransaction,
	AggregateProperty,
	AggregateDistribution,
	AggregateNotification,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventInvestmentCreated      OutboxEventType = "investment_created"
	EventSharesReserved         OutboxEventType = "shares_reserved"
	EventPaymentReceived        OutboxEventType = "payment_received"
	EventInvestmentCompleted    OutboxEventType = "investment_completed"
	EventInvestmentCancelled    OutboxEventType = "investment_cancelled"
	EventReservationExpired     OutboxEventType = "reservation_expired"
	EventDistributionCreated    OutboxEventType = "distribution_created"
	EventDistributionProcessed  OutboxEventType = "distribution_processed"
	EventCertificateIssued      OutboxEventType = "certificate_issued"
	EventNotificationRequested  OutboxEventType = "notification_requested"
)

var validEventTypes = []OutboxEventType{
	EventInvestmentCreated,
	EventSharesReserved,
	EventPaymentReceived,
	EventInvestmentCompleted,
	EventInvestmentCancelled,
	EventReservationExpired,
	EventDistributionCreated,
	EventDistributionProcessed,
	EventCertificateIssued,
	EventNotificationRequested,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
