package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rmoralesdev/brickvest-backend/internal/activity"
	"github.com/rmoralesdev/brickvest-backend/internal/distributions"
	"github.com/rmoralesdev/brickvest-backend/internal/documents"
	"github.com/rmoralesdev/brickvest-backend/internal/eligibility"
	"github.com/rmoralesdev/brickvest-backend/internal/fees"
	"github.com/rmoralesdev/brickvest-backend/internal/inventory"
	"github.com/rmoralesdev/brickvest-backend/internal/investments"
	"github.com/rmoralesdev/brickvest-backend/internal/ledger"
	"github.com/rmoralesdev/brickvest-backend/pkg/config"
	"github.com/rmoralesdev/brickvest-backend/pkg/db/models"
	"github.com/rmoralesdev/brickvest-backend/pkg/enums"
	"github.com/rmoralesdev/brickvest-backend/pkg/logger"
	"github.com/rmoralesdev/brickvest-backend/pkg/outbox"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Env:         "test",
			Port:        "0",
			CORSOrigins: []string{"http://localhost:3000"},
		},
		Reservation: config.ReservationConfig{
			DefaultMinutes: 15,
			MinMinutes:     5,
			MaxMinutes:     30,
		},
	}
}

func newTestRouter(t *testing.T) (http.Handler, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:routes_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Property{},
		&models.InvestmentTransaction{},
		&models.LegacyInvestment{},
		&models.EligibilityRecord{},
		&models.InvestmentActivity{},
		&models.InvestmentDocument{},
		&models.IncomeDistribution{},
		&models.OutboxEvent{},
	))

	logg := logger.New(logger.Options{ServiceName: "routes-test", Output: io.Discard})
	runner := testTxRunner{db: db}
	cfg := testConfig()

	inventorySvc, err := inventory.NewService(inventory.NewRepository(db))
	require.NoError(t, err)
	policy := fees.NewStaticPolicy(decimal.RequireFromString("2.5"), 500)
	feeSvc, err := fees.NewService(inventorySvc, policy)
	require.NoError(t, err)
	eligibilitySvc, err := eligibility.NewService(eligibility.NewRepository(db))
	require.NoError(t, err)
	activitySvc, err := activity.NewService(activity.NewRepository(db))
	require.NoError(t, err)
	outboxSvc := outbox.NewService(outbox.NewRepository(db), logg)
	investmentSvc, err := investments.NewService(
		investments.NewRepository(db),
		runner,
		inventorySvc,
		eligibilitySvc,
		feeSvc,
		policy,
		activitySvc,
		outboxSvc,
		nil,
		cfg.Reservation,
		logg,
	)
	require.NoError(t, err)
	documentSvc, err := documents.NewService(documents.NewRepository(db), runner, activitySvc)
	require.NoError(t, err)
	distributionSvc, err := distributions.NewService(
		distributions.NewRepository(db),
		runner,
		[]distributions.OwnershipSource{distributions.NewLegacySource(), distributions.NewTransactionSource()},
		activitySvc,
		outboxSvc,
	)
	require.NoError(t, err)
	ledgerSvc, err := ledger.NewService(ledger.NewRepository(db), logg)
	require.NoError(t, err)

	router := NewRouter(
		cfg,
		logg,
		stubPinger{},
		stubPinger{},
		inventorySvc,
		feeSvc,
		investmentSvc,
		activitySvc,
		documentSvc,
		distributionSvc,
		ledgerSvc,
	)
	return router, db
}

func seedFundingProperty(t *testing.T, db *gorm.DB) *models.Property {
	t.Helper()

	property := &models.Property{
		Title:           "Harborview Lofts",
		TotalShares:     1000,
		SharePriceCents: 10_000,
		FundingOpen:     true,
	}
	require.NoError(t, db.Create(property).Error)
	return property
}

func seedEligibleUser(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()

	userID := uuid.New()
	record := &models.EligibilityRecord{
		UserID:    userID,
		KYCStatus: enums.KYCStatusApproved,
		AMLStatus: enums.AMLStatusCleared,
	}
	require.NoError(t, db.Create(record).Error)
	return userID
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var envelope struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	return envelope.Data
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test", rec.Header().Get("X-BrickVest-Env"))

	rec = doJSON(t, router, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestInvestmentLifecycleOverHTTP(t *testing.T) {
	t.Parallel()

	router, db := newTestRouter(t)
	property := seedFundingProperty(t, db)
	userID := seedEligibleUser(t, db)

	// Quote is free of side effects and prices 50 shares at 513000 cents.
	rec := doJSON(t, router, http.MethodGet,
		fmt.Sprintf("/api/v1/properties/%s/quote?shares=50", property.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	quote := decodeData(t, rec)
	assert.Equal(t, float64(513_000), quote["total_amount_cents"])

	rec = doJSON(t, router, http.MethodPost, "/api/v1/investments", map[string]any{
		"property_id": property.ID.String(),
		"user_id":     userID.String(),
		"shares":      50,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	txnID := decodeData(t, rec)["ID"].(string)

	// A pending transaction does not consume inventory yet.
	rec = doJSON(t, router, http.MethodGet,
		fmt.Sprintf("/api/v1/properties/%s/availability", property.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1000), decodeData(t, rec)["available_shares"])

	rec = doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/v1/investments/%s/reserve", txnID), map[string]any{"minutes": 20})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet,
		fmt.Sprintf("/api/v1/properties/%s/availability", property.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(950), decodeData(t, rec)["available_shares"])

	rec = doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/v1/investments/%s/payment", txnID), map[string]any{
			"payment_reference": "wire-001",
			"payment_method":    "bank_transfer",
		})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/v1/investments/%s/complete", txnID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "completed", decodeData(t, rec)["Status"])

	// The completed purchase shows up on the unified ledger.
	rec = doJSON(t, router, http.MethodGet,
		fmt.Sprintf("/api/v1/users/%s/ledger", userID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var ledgerEnvelope struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&ledgerEnvelope))
	require.Len(t, ledgerEnvelope.Data, 1)
	assert.Equal(t, "completed", ledgerEnvelope.Data[0]["status"])

	// The audit trail is reachable over the API as well.
	rec = doJSON(t, router, http.MethodGet,
		fmt.Sprintf("/api/v1/investments/%s/activities", txnID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestQuoteValidationOverHTTP(t *testing.T) {
	t.Parallel()

	router, db := newTestRouter(t)
	property := seedFundingProperty(t, db)

	rec := doJSON(t, router, http.MethodGet,
		fmt.Sprintf("/api/v1/properties/%s/quote", property.ID), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet,
		"/api/v1/properties/not-a-uuid/quote?shares=5", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet,
		fmt.Sprintf("/api/v1/properties/%s/quote?shares=5", uuid.New()), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDistributionFlowOverHTTP(t *testing.T) {
	t.Parallel()

	router, db := newTestRouter(t)
	property := seedFundingProperty(t, db)

	owner := uuid.New()
	legacy := &models.LegacyInvestment{
		PropertyID:   property.ID,
		UserID:       owner,
		AmountCents:  2_500_000,
		Shares:       250,
		OwnershipPpm: 250_000,
		Status:       enums.LegacyInvestmentStatusActive,
	}
	require.NoError(t, db.Create(legacy).Error)

	rec := doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/v1/properties/%s/distributions", property.ID), map[string]any{
			"amount_cents":      100_000,
			"distribution_type": "rental_income",
			"distribution_date": "2026-08-01",
		})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	result := decodeData(t, rec)
	assert.Equal(t, float64(1), result["owner_count"])

	var rows []models.IncomeDistribution
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(25_000), rows[0].AmountCents)

	rec = doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/v1/distributions/%s/processed", rows[0].ID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "processed", decodeData(t, rec)["Status"])

	rec = doJSON(t, router, http.MethodGet,
		fmt.Sprintf("/api/v1/users/%s/distributions", owner), nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestDocumentSignOverHTTP(t *testing.T) {
	t.Parallel()

	router, db := newTestRouter(t)
	property := seedFundingProperty(t, db)
	userID := seedEligibleUser(t, db)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/investments", map[string]any{
		"property_id": property.ID.String(),
		"user_id":     userID.String(),
		"shares":      10,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	txnID := decodeData(t, rec)["ID"].(string)

	rec = doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/v1/investments/%s/documents", txnID), map[string]any{
			"doc_type": "subscription_agreement",
		})
	require.Equal(t, http.StatusCreated, rec.Code)

	var doc models.InvestmentDocument
	require.NoError(t, db.First(&doc).Error)

	rec = doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/v1/documents/%s/sign", doc.ID), map[string]any{
			"signature_data": "sig-bytes",
			"actor":          userID.String(),
		})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.NoError(t, db.First(&doc, "id = ?", doc.ID).Error)
	assert.True(t, doc.Signed)
}

func TestAdminSweepOverHTTP(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/admin/sweep-expired", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decodeData(t, rec)["swept"])
}
