package eligibility

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rmoralesdev/brickvest-backend/pkg/db/models"
	"github.com/rmoralesdev/brickvest-backend/pkg/enums"
)

func setupEligibilityTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:eligibility_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.EligibilityRecord{}))
	return db
}

func newEligibilityService(t *testing.T, db *gorm.DB) Service {
	t.Helper()

	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	return svc
}

func approvedRecord(t *testing.T, db *gorm.DB, userID uuid.UUID) *models.EligibilityRecord {
	t.Helper()

	record := &models.EligibilityRecord{
		UserID:    userID,
		KYCStatus: enums.KYCStatusApproved,
		AMLStatus: enums.AMLStatusCleared,
	}
	require.NoError(t, db.Create(record).Error)
	return record
}

func TestCheckLazilyCreatesPendingRecord(t *testing.T) {
	t.Parallel()

	db := setupEligibilityTestDB(t)
	svc := newEligibilityService(t, db)
	userID := uuid.New()

	result, err := svc.Check(context.Background(), userID, 100_000)
	require.NoError(t, err)
	assert.False(t, result.Eligible)
	assert.Equal(t, ReasonKYCNotApproved, result.Reason)

	var record models.EligibilityRecord
	require.NoError(t, db.Where("user_id = ?", userID).First(&record).Error)
	assert.Equal(t, enums.KYCStatusPending, record.KYCStatus)
	assert.Equal(t, enums.AMLStatusPending, record.AMLStatus)
	assert.False(t, record.IsAccredited)
}

func TestCheckRuleOrder(t *testing.T) {
	t.Parallel()

	db := setupEligibilityTestDB(t)
	svc := newEligibilityService(t, db)

	limit := int64(500_000)
	cases := []struct {
		name   string
		record models.EligibilityRecord
		amount int64
		want   string
	}{
		{
			name: "kyc blocks before aml",
			record: models.EligibilityRecord{
				UserID:    uuid.New(),
				KYCStatus: enums.KYCStatusPending,
				AMLStatus: enums.AMLStatusFlagged,
			},
			amount: 1_000,
			want:   ReasonKYCNotApproved,
		},
		{
			name: "aml flagged blocks",
			record: models.EligibilityRecord{
				UserID:    uuid.New(),
				KYCStatus: enums.KYCStatusApproved,
				AMLStatus: enums.AMLStatusFlagged,
			},
			amount: 1_000,
			want:   ReasonAMLBlocked,
		},
		{
			name: "aml rejected blocks",
			record: models.EligibilityRecord{
				UserID:    uuid.New(),
				KYCStatus: enums.KYCStatusApproved,
				AMLStatus: enums.AMLStatusRejected,
			},
			amount: 1_000,
			want:   ReasonAMLBlocked,
		},
		{
			name: "annual limit blocks",
			record: models.EligibilityRecord{
				UserID:                     uuid.New(),
				KYCStatus:                  enums.KYCStatusApproved,
				AMLStatus:                  enums.AMLStatusCleared,
				AnnualInvestmentLimitCents: &limit,
				CurrentYearInvestedCents:   450_000,
			},
			amount: 100_000,
			want:   ReasonAnnualLimit,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			record := tc.record
			require.NoError(t, db.Create(&record).Error)

			result, err := svc.Check(context.Background(), record.UserID, tc.amount)
			require.NoError(t, err)
			assert.False(t, result.Eligible)
			assert.Equal(t, tc.want, result.Reason)
		})
	}
}

func TestCheckEligible(t *testing.T) {
	t.Parallel()

	db := setupEligibilityTestDB(t)
	svc := newEligibilityService(t, db)
	userID := uuid.New()
	approvedRecord(t, db, userID)

	result, err := svc.Check(context.Background(), userID, 1_000_000)
	require.NoError(t, err)
	assert.True(t, result.Eligible)
	assert.Empty(t, result.Reason)
}

func TestCheckAnnualLimitExactHeadroom(t *testing.T) {
	t.Parallel()

	db := setupEligibilityTestDB(t)
	svc := newEligibilityService(t, db)

	limit := int64(100_000)
	record := &models.EligibilityRecord{
		UserID:                     uuid.New(),
		KYCStatus:                  enums.KYCStatusApproved,
		AMLStatus:                  enums.AMLStatusCleared,
		AnnualInvestmentLimitCents: &limit,
		CurrentYearInvestedCents:   40_000,
	}
	require.NoError(t, db.Create(record).Error)

	// Exactly reaching the limit is allowed; exceeding it is not.
	result, err := svc.Check(context.Background(), record.UserID, 60_000)
	require.NoError(t, err)
	assert.True(t, result.Eligible)

	result, err = svc.Check(context.Background(), record.UserID, 60_001)
	require.NoError(t, err)
	assert.False(t, result.Eligible)
	assert.Equal(t, ReasonAnnualLimit, result.Reason)
}

func TestRecordInvestmentIncrementsTotals(t *testing.T) {
	t.Parallel()

	db := setupEligibilityTestDB(t)
	svc := newEligibilityService(t, db)
	userID := uuid.New()
	approvedRecord(t, db, userID)

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.RecordInvestment(context.Background(), tx, userID, 250_000)
	})
	require.NoError(t, err)

	err = db.Transaction(func(tx *gorm.DB) error {
		return svc.RecordInvestment(context.Background(), tx, userID, 100_000)
	})
	require.NoError(t, err)

	var record models.EligibilityRecord
	require.NoError(t, db.Where("user_id = ?", userID).First(&record).Error)
	assert.Equal(t, int64(350_000), record.CurrentYearInvestedCents)
	assert.Equal(t, int64(350_000), record.LifetimeInvestedCents)
}

func TestRecordInvestmentCreatesMissingRecord(t *testing.T) {
	t.Parallel()

	db := setupEligibilityTestDB(t)
	svc := newEligibilityService(t, db)
	userID := uuid.New()

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.RecordInvestment(context.Background(), tx, userID, 75_000)
	})
	require.NoError(t, err)

	var record models.EligibilityRecord
	require.NoError(t, db.Where("user_id = ?", userID).First(&record).Error)
	assert.Equal(t, int64(75_000), record.LifetimeInvestedCents)
}

func TestRecordInvestmentRequiresTx(t *testing.T) {
	t.Parallel()

	db := setupEligibilityTestDB(t)
	svc := newEligibilityService(t, db)

	err := svc.RecordInvestment(context.Background(), nil, uuid.New(), 100)
	require.Error(t, err)
}
