package distributions

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rmoralesdev/brickvest-backend/internal/activity"
	"github.com/rmoralesdev/brickvest-backend/pkg/db/models"
	"github.com/rmoralesdev/brickvest-backend/pkg/enums"
	pkgerrors "github.com/rmoralesdev/brickvest-backend/pkg/errors"
	"github.com/rmoralesdev/brickvest-backend/pkg/outbox"
)

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func setupDistributionsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:distributions_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Property{},
		&models.InvestmentTransaction{},
		&models.LegacyInvestment{},
		&models.IncomeDistribution{},
		&models.InvestmentActivity{},
		&models.OutboxEvent{},
	))
	return db
}

func newDistributionService(t *testing.T, db *gorm.DB) Service {
	t.Helper()

	actSvc, err := activity.NewService(activity.NewRepository(db))
	require.NoError(t, err)
	obSvc := outbox.NewService(outbox.NewRepository(db), nil)

	svc, err := NewService(
		NewRepository(db),
		testTxRunner{db: db},
		[]OwnershipSource{NewLegacySource(), NewTransactionSource()},
		actSvc,
		obSvc,
	)
	require.NoError(t, err)
	return svc
}

func newDistProperty(t *testing.T, db *gorm.DB) *models.Property {
	t.Helper()

	property := &models.Property{
		Title:           "Riverside Flats",
		TotalShares:     1000,
		SharePriceCents: 10_000,
		FundingOpen:     false,
	}
	require.NoError(t, db.Create(property).Error)
	return property
}

func newCompletedTransaction(t *testing.T, db *gorm.DB, propertyID uuid.UUID, ppm int64) *models.InvestmentTransaction {
	t.Helper()

	now := time.Now().UTC()
	txn := &models.InvestmentTransaction{
		PropertyID:            propertyID,
		UserID:                uuid.New(),
		NumberOfShares:        ppm * 1000 / models.OwnershipScale,
		PricePerShareCents:    10_000,
		InvestmentAmountCents: 1,
		TotalAmountCents:      1,
		OwnershipPpm:          ppm,
		Status:                enums.TransactionStatusCompleted,
		CompletedAt:           &now,
	}
	require.NoError(t, db.Create(txn).Error)
	return txn
}

func newLegacyInvestment(t *testing.T, db *gorm.DB, propertyID uuid.UUID, ppm int64, status enums.LegacyInvestmentStatus) *models.LegacyInvestment {
	t.Helper()

	inv := &models.LegacyInvestment{
		PropertyID:   propertyID,
		UserID:       uuid.New(),
		AmountCents:  1,
		Shares:       1,
		OwnershipPpm: ppm,
		Status:       status,
	}
	require.NoError(t, db.Create(inv).Error)
	return inv
}

func TestDistributeProportionalSplit(t *testing.T) {
	t.Parallel()

	db := setupDistributionsTestDB(t)
	svc := newDistributionService(t, db)
	property := newDistProperty(t, db)

	// 25% / 50% / 25% over fully-allocated ppm.
	newCompletedTransaction(t, db, property.ID, 250_000)
	newCompletedTransaction(t, db, property.ID, 500_000)
	newCompletedTransaction(t, db, property.ID, 250_000)

	result, err := svc.Distribute(context.Background(), DistributeInput{
		PropertyID:       property.ID,
		AmountCents:      100_000,
		DistributionType: enums.DistributionTypeRentalIncome,
		DistributionDate: time.Now(),
	})
	require.NoError(t, err)

	require.Len(t, result.Distributions, 3)
	assert.Equal(t, int64(1_000_000), result.TotalPpm)
	assert.Equal(t, int64(100_000), result.TotalDistributedCents)
	assert.Zero(t, result.ResidualCents)

	amounts := []int64{}
	for _, row := range result.Distributions {
		amounts = append(amounts, row.AmountCents)
		assert.Equal(t, enums.DistributionStatusPending, row.Status)
		assert.NotNil(t, row.InvestmentTransactionID)
		assert.Nil(t, row.LegacyInvestmentID)
	}
	assert.ElementsMatch(t, []int64{25_000, 50_000, 25_000}, amounts)
}

func TestDistributeFloorRoundingResidual(t *testing.T) {
	t.Parallel()

	db := setupDistributionsTestDB(t)
	svc := newDistributionService(t, db)
	property := newDistProperty(t, db)

	// Three equal thirds of 100 minor units: 33 each, residual 1.
	newCompletedTransaction(t, db, property.ID, 333_333)
	newCompletedTransaction(t, db, property.ID, 333_333)
	newCompletedTransaction(t, db, property.ID, 333_334)

	result, err := svc.Distribute(context.Background(), DistributeInput{
		PropertyID:       property.ID,
		AmountCents:      100,
		DistributionType: enums.DistributionTypeRentalIncome,
	})
	require.NoError(t, err)

	require.Len(t, result.Distributions, 3)
	for _, row := range result.Distributions {
		assert.Equal(t, int64(33), row.AmountCents)
	}
	assert.Equal(t, int64(99), result.TotalDistributedCents)
	assert.Equal(t, int64(1), result.ResidualCents)
	assert.Less(t, result.ResidualCents, int64(result.OwnerCount))
}

func TestDistributeLargeAmountDoesNotOverflow(t *testing.T) {
	t.Parallel()

	db := setupDistributionsTestDB(t)
	svc := newDistributionService(t, db)
	property := newDistProperty(t, db)

	newCompletedTransaction(t, db, property.ID, 333_333)
	newCompletedTransaction(t, db, property.ID, 666_667)

	// 4e15 cents × ppm exceeds int64 as a raw product; the decimal
	// intermediate must keep the division exact.
	result, err := svc.Distribute(context.Background(), DistributeInput{
		PropertyID:       property.ID,
		AmountCents:      4_000_000_000_000_000,
		DistributionType: enums.DistributionTypeExitProceeds,
	})
	require.NoError(t, err)

	amounts := []int64{}
	for _, row := range result.Distributions {
		amounts = append(amounts, row.AmountCents)
	}
	assert.ElementsMatch(t, []int64{1_333_332_000_000_000, 2_666_668_000_000_000}, amounts)
	assert.Equal(t, int64(4_000_000_000_000_000), result.TotalDistributedCents)
	assert.Zero(t, result.ResidualCents)
}

func TestDistributeMergesBothLedgers(t *testing.T) {
	t.Parallel()

	db := setupDistributionsTestDB(t)
	svc := newDistributionService(t, db)
	property := newDistProperty(t, db)

	legacy := newLegacyInvestment(t, db, property.ID, 400_000, enums.LegacyInvestmentStatusActive)
	newLegacyInvestment(t, db, property.ID, 100_000, enums.LegacyInvestmentStatusExited)
	newLegacyInvestment(t, db, property.ID, 100_000, enums.LegacyInvestmentStatusCancelled)
	current := newCompletedTransaction(t, db, property.ID, 400_000)

	result, err := svc.Distribute(context.Background(), DistributeInput{
		PropertyID:       property.ID,
		AmountCents:      80_000,
		DistributionType: enums.DistributionTypeCapitalGain,
	})
	require.NoError(t, err)

	// Exited and cancelled legacy rows are ignored; two equal owners remain.
	require.Len(t, result.Distributions, 2)
	assert.Equal(t, int64(800_000), result.TotalPpm)
	for _, row := range result.Distributions {
		assert.Equal(t, int64(40_000), row.AmountCents)
		if row.LegacyInvestmentID != nil {
			assert.Equal(t, legacy.ID, *row.LegacyInvestmentID)
		} else {
			require.NotNil(t, row.InvestmentTransactionID)
			assert.Equal(t, current.ID, *row.InvestmentTransactionID)
		}
	}
}

func TestDistributeTotalPpmNotAssumedFull(t *testing.T) {
	t.Parallel()

	db := setupDistributionsTestDB(t)
	svc := newDistributionService(t, db)
	property := newDistProperty(t, db)

	// Only 30% of the property is owned; the two owners split the full
	// amount by relative weight, not by absolute ppm.
	newCompletedTransaction(t, db, property.ID, 200_000)
	newCompletedTransaction(t, db, property.ID, 100_000)

	result, err := svc.Distribute(context.Background(), DistributeInput{
		PropertyID:       property.ID,
		AmountCents:      90_000,
		DistributionType: enums.DistributionTypeRentalIncome,
	})
	require.NoError(t, err)

	amounts := []int64{}
	for _, row := range result.Distributions {
		amounts = append(amounts, row.AmountCents)
	}
	assert.ElementsMatch(t, []int64{60_000, 30_000}, amounts)
}

func TestDistributeSkipsZeroShares(t *testing.T) {
	t.Parallel()

	db := setupDistributionsTestDB(t)
	svc := newDistributionService(t, db)
	property := newDistProperty(t, db)

	newCompletedTransaction(t, db, property.ID, 999_999)
	newCompletedTransaction(t, db, property.ID, 1)

	result, err := svc.Distribute(context.Background(), DistributeInput{
		PropertyID:       property.ID,
		AmountCents:      100,
		DistributionType: enums.DistributionTypeRentalIncome,
	})
	require.NoError(t, err)

	// The 1-ppm position floors to zero and gets no row.
	require.Len(t, result.Distributions, 1)
	assert.Equal(t, 2, result.OwnerCount)
	assert.Equal(t, int64(99), result.Distributions[0].AmountCents)
}

func TestDistributeNoActiveInvestments(t *testing.T) {
	t.Parallel()

	db := setupDistributionsTestDB(t)
	svc := newDistributionService(t, db)
	property := newDistProperty(t, db)

	newLegacyInvestment(t, db, property.ID, 500_000, enums.LegacyInvestmentStatusCancelled)

	_, err := svc.Distribute(context.Background(), DistributeInput{
		PropertyID:       property.ID,
		AmountCents:      10_000,
		DistributionType: enums.DistributionTypeRentalIncome,
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNoActiveInvestments, typed.Code())
}

func TestDistributeUnknownProperty(t *testing.T) {
	t.Parallel()

	db := setupDistributionsTestDB(t)
	svc := newDistributionService(t, db)

	_, err := svc.Distribute(context.Background(), DistributeInput{
		PropertyID:       uuid.New(),
		AmountCents:      10_000,
		DistributionType: enums.DistributionTypeRentalIncome,
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestDistributeEmitsEventsAndActivity(t *testing.T) {
	t.Parallel()

	db := setupDistributionsTestDB(t)
	svc := newDistributionService(t, db)
	property := newDistProperty(t, db)

	txn := newCompletedTransaction(t, db, property.ID, 500_000)

	result, err := svc.Distribute(context.Background(), DistributeInput{
		PropertyID:       property.ID,
		AmountCents:      10_000,
		DistributionType: enums.DistributionTypeRentalIncome,
	})
	require.NoError(t, err)
	require.Len(t, result.Distributions, 1)

	var events []models.OutboxEvent
	require.NoError(t, db.Where("event_type = ?", enums.EventDistributionCreated).Find(&events).Error)
	assert.Len(t, events, 1)

	var activities []models.InvestmentActivity
	require.NoError(t, db.Where("investment_transaction_id = ?", txn.ID).Find(&activities).Error)
	require.Len(t, activities, 1)
	assert.Equal(t, enums.ActivityTypeDistributionCreated, activities[0].ActivityType)
}

func TestMarkProcessedIdempotent(t *testing.T) {
	t.Parallel()

	db := setupDistributionsTestDB(t)
	svc := newDistributionService(t, db)
	property := newDistProperty(t, db)
	newCompletedTransaction(t, db, property.ID, 500_000)

	result, err := svc.Distribute(context.Background(), DistributeInput{
		PropertyID:       property.ID,
		AmountCents:      10_000,
		DistributionType: enums.DistributionTypeRentalIncome,
	})
	require.NoError(t, err)
	distID := result.Distributions[0].ID

	processed, err := svc.MarkProcessed(context.Background(), distID)
	require.NoError(t, err)
	assert.Equal(t, enums.DistributionStatusProcessed, processed.Status)
	require.NotNil(t, processed.ProcessedAt)
	firstProcessedAt := *processed.ProcessedAt

	again, err := svc.MarkProcessed(context.Background(), distID)
	require.NoError(t, err)
	assert.Equal(t, enums.DistributionStatusProcessed, again.Status)
	require.NotNil(t, again.ProcessedAt)
	assert.WithinDuration(t, firstProcessedAt, *again.ProcessedAt, time.Second)

	// Only one processed event despite the repeat call.
	var events []models.OutboxEvent
	require.NoError(t, db.Where("event_type = ?", enums.EventDistributionProcessed).Find(&events).Error)
	assert.Len(t, events, 1)
}

func TestMarkProcessedNotFound(t *testing.T) {
	t.Parallel()

	db := setupDistributionsTestDB(t)
	svc := newDistributionService(t, db)

	_, err := svc.MarkProcessed(context.Background(), uuid.New())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
