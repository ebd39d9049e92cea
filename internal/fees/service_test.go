package fees

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rmoralesdev/brickvest-backend/internal/inventory"
	"github.com/rmoralesdev/brickvest-backend/pkg/config"
	"github.com/rmoralesdev/brickvest-backend/pkg/db/models"
	"github.com/rmoralesdev/brickvest-backend/pkg/enums"
	pkgerrors "github.com/rmoralesdev/brickvest-backend/pkg/errors"
)

func setupFeesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:fees_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Property{},
		&models.InvestmentTransaction{},
	))
	return db
}

func newFeesService(t *testing.T, db *gorm.DB, policy Policy) Service {
	t.Helper()

	inv, err := inventory.NewService(inventory.NewRepository(db))
	require.NoError(t, err)
	svc, err := NewService(inv, policy)
	require.NoError(t, err)
	return svc
}

func defaultPolicy(t *testing.T) Policy {
	t.Helper()

	policy, err := NewConfigPolicy(config.FeeConfig{PlatformFeePercent: "2.5", ProcessingFeeCents: 500})
	require.NoError(t, err)
	return policy
}

func TestQuoteWorkedScenario(t *testing.T) {
	t.Parallel()

	db := setupFeesTestDB(t)
	property := &models.Property{
		Title:           "Harborview",
		TotalShares:     1000,
		SharePriceCents: 10_000,
		FundingOpen:     true,
	}
	require.NoError(t, db.Create(property).Error)

	svc := newFeesService(t, db, defaultPolicy(t))

	quote, err := svc.Quote(context.Background(), property.ID, 50)
	require.NoError(t, err)

	// 50 × 10000 = 500000; 2.5% = 12500; +500 flat = 513000 total.
	assert.Equal(t, int64(500_000), quote.InvestmentAmountCents)
	assert.Equal(t, int64(12_500), quote.PlatformFeeCents)
	assert.Equal(t, int64(500), quote.ProcessingFeeCents)
	assert.Equal(t, int64(513_000), quote.TotalAmountCents)
	assert.Equal(t, int64(50_000), quote.OwnershipPpm)
}

func TestQuotePlatformFeeRoundsDown(t *testing.T) {
	t.Parallel()

	db := setupFeesTestDB(t)
	property := &models.Property{
		Title:           "Oak Row",
		TotalShares:     1000,
		SharePriceCents: 333,
		FundingOpen:     true,
	}
	require.NoError(t, db.Create(property).Error)

	svc := newFeesService(t, db, defaultPolicy(t))

	quote, err := svc.Quote(context.Background(), property.ID, 3)
	require.NoError(t, err)

	// 999 × 2.5% = 24.975 → 24 after floor.
	assert.Equal(t, int64(999), quote.InvestmentAmountCents)
	assert.Equal(t, int64(24), quote.PlatformFeeCents)
}

func TestQuoteIsPure(t *testing.T) {
	t.Parallel()

	db := setupFeesTestDB(t)
	property := &models.Property{
		Title:           "Pine Court",
		TotalShares:     100,
		SharePriceCents: 5_000,
		FundingOpen:     true,
	}
	require.NoError(t, db.Create(property).Error)

	svc := newFeesService(t, db, defaultPolicy(t))

	for i := 0; i < 3; i++ {
		_, err := svc.Quote(context.Background(), property.ID, 10)
		require.NoError(t, err)
	}

	var count int64
	require.NoError(t, db.Model(&models.InvestmentTransaction{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestQuoteInsufficientInventory(t *testing.T) {
	t.Parallel()

	db := setupFeesTestDB(t)
	property := &models.Property{
		Title:           "Mill District",
		TotalShares:     100,
		SharePriceCents: 10_000,
		FundingOpen:     true,
	}
	require.NoError(t, db.Create(property).Error)
	require.NoError(t, db.Create(&models.InvestmentTransaction{
		PropertyID:            property.ID,
		UserID:                uuid.New(),
		NumberOfShares:        90,
		PricePerShareCents:    10_000,
		InvestmentAmountCents: 900_000,
		TotalAmountCents:      900_000,
		Status:                enums.TransactionStatusCompleted,
	}).Error)

	svc := newFeesService(t, db, defaultPolicy(t))

	_, err := svc.Quote(context.Background(), property.ID, 11)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInsufficientInventory, typed.Code())
}

func TestQuoteValidation(t *testing.T) {
	t.Parallel()

	db := setupFeesTestDB(t)
	svc := newFeesService(t, db, defaultPolicy(t))

	_, err := svc.Quote(context.Background(), uuid.Nil, 10)
	require.Error(t, err)

	_, err = svc.Quote(context.Background(), uuid.New(), 0)
	require.Error(t, err)
}

func TestNewConfigPolicyValidation(t *testing.T) {
	t.Parallel()

	_, err := NewConfigPolicy(config.FeeConfig{PlatformFeePercent: "abc", ProcessingFeeCents: 500})
	require.Error(t, err)

	_, err = NewConfigPolicy(config.FeeConfig{PlatformFeePercent: "-1", ProcessingFeeCents: 500})
	require.Error(t, err)

	_, err = NewConfigPolicy(config.FeeConfig{PlatformFeePercent: "2.5", ProcessingFeeCents: -1})
	require.Error(t, err)
}

func TestOwnershipPpmRounds(t *testing.T) {
	t.Parallel()

	// Rounded division, not truncation: 2 of 3 shares carries the half up.
	assert.Equal(t, int64(666_667), OwnershipPpm(2, 3))
	assert.Equal(t, int64(333_333), OwnershipPpm(1, 3))
	assert.Equal(t, int64(1_000_000), OwnershipPpm(3, 3))
	assert.Equal(t, int64(0), OwnershipPpm(1, 0))
}

func TestOwnershipPpmRoundTrip(t *testing.T) {
	t.Parallel()

	// shares -> ppm -> shares must recover within one share.
	cases := []struct{ shares, total int64 }{
		{50, 1000},
		{1, 3},
		{2, 3},
		{333, 999},
		{7, 11},
	}
	for _, tc := range cases {
		ppm := OwnershipPpm(tc.shares, tc.total)
		back := ppm * tc.total / models.OwnershipScale
		diff := tc.shares - back
		if diff < 0 {
			diff = -diff
		}
		assert.LessOrEqual(t, diff, int64(1), "shares=%d total=%d", tc.shares, tc.total)
	}
}

func TestStaticPolicy(t *testing.T) {
	t.Parallel()

	policy := NewStaticPolicy(decimal.NewFromInt(3), 250)
	assert.True(t, policy.PlatformFeePercent().Equal(decimal.NewFromInt(3)))
	assert.Equal(t, int64(250), policy.ProcessingFeeCents())
}
