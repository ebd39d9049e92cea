package fees

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rmoralesdev/brickvest-backend/pkg/config"
)

// Policy supplies the fee parameters applied to every quote. It is injected
// so the calculator itself stays pure and tests can pin exact values.
type Policy interface {
	PlatformFeePercent() decimal.Decimal
	ProcessingFeeCents() int64
}

type staticPolicy struct {
	platformPercent decimal.Decimal
	processingCents int64
}

func (p staticPolicy) PlatformFeePercent() decimal.Decimal { return p.platformPercent }
func (p staticPolicy) ProcessingFeeCents() int64           { return p.processingCents }

// NewStaticPolicy pins fee parameters to fixed values.
func NewStaticPolicy(platformPercent decimal.Decimal, processingCents int64) Policy {
	return staticPolicy{platformPercent: platformPercent, processingCents: processingCents}
}

// NewConfigPolicy builds a policy from environment configuration. The percent
// is parsed once here so a malformed value fails at boot, not per request.
func NewConfigPolicy(cfg config.FeeConfig) (Policy, error) {
	pct, err := decimal.NewFromString(cfg.PlatformFeePercent)
	if err != nil {
		return nil, fmt.Errorf("parsing platform fee percent %q: %w", cfg.PlatformFeePercent, err)
	}
	if pct.IsNegative() {
		return nil, fmt.Errorf("platform fee percent must not be negative")
	}
	if cfg.ProcessingFeeCents < 0 {
		return nil, fmt.Errorf("processing fee must not be negative")
	}
	return staticPolicy{platformPercent: pct, processingCents: cfg.ProcessingFeeCents}, nil
}
