package enums

import "fmt"

// DistributionStatus tracks an income distribution row from creation to payout.
type DistributionStatus string

const (
	DistributionStatusPending   DistributionStatus = "pending"
	DistributionStatusProcessed DistributionStatus = "processed"
)

var validDistributionStatuses = []DistributionStatus{
	DistributionStatusPending,
	DistributionStatusProcessed,
}

// IsValid reports whether the value is a known DistributionStatus.
func (s DistributionStatus) IsValid() bool {
	for _, candidate := range validDistributionStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseDistributionStatus converts raw input into a DistributionStatus.
func ParseDistributionStatus(value string) (DistributionStatus, error) {
	for _, candidate := range validDistributionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid distribution status %q", value)
}

// DistributionType classifies the cash event being split among owners.
type DistributionType string

const (
	DistributionTypeRentalIncome DistributionType = "rental_income"
	DistributionTypeCapitalGain  DistributionType = "capital_gain"
	DistributionTypeExitProceeds DistributionType = "exit_proceeds"
)

var validDistributionTypes = []DistributionType{
	DistributionTypeRentalIncome,
	DistributionTypeCapitalGain,
	DistributionTypeExitProceeds,
}

// IsValid reports whether the value is a known DistributionType.
func (t DistributionType) IsValid() bool {
	for _, candidate := range validDistributionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseDistributionType converts raw input into a DistributionType.
func ParseDistributionType(value string) (DistributionType, error) {
	for _, candidate := range validDistributionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid distribution type %q", value)
}

// DistributionFrequency is the cadence a property pays rental income on.
type DistributionFrequency string

const (
	DistributionFrequencyMonthly   DistributionFrequency = "monthly"
	DistributionFrequencyQuarterly DistributionFrequency = "quarterly"
	DistributionFrequencyAnnual    DistributionFrequency = "annual"
)

var validDistributionFrequencies = []DistributionFrequency{
	DistributionFrequencyMonthly,
	DistributionFrequencyQuarterly,
	DistributionFrequencyAnnual,
}

// IsValid reports whether the value is a known DistributionFrequency.
func (f DistributionFrequency) IsValid() bool {
	for _, candidate := range validDistributionFrequencies {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseDistributionFrequency converts raw input into a DistributionFrequency.
func ParseDistributionFrequency(value string) (DistributionFrequency, error) {
	for _, candidate := range validDistributionFrequencies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid distribution frequency %q", value)
}
