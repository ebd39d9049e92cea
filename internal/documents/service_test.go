package documents

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rmoralesdev/brickvest-backend/internal/activity"
	"github.com/rmoralesdev/brickvest-backend/pkg/db/models"
	"github.com/rmoralesdev/brickvest-backend/pkg/enums"
	pkgerrors "github.com/rmoralesdev/brickvest-backend/pkg/errors"
)

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func setupDocumentsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:documents_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.InvestmentDocument{},
		&models.InvestmentActivity{},
	))
	return db
}

func newDocumentService(t *testing.T, db *gorm.DB) Service {
	t.Helper()

	actSvc, err := activity.NewService(activity.NewRepository(db))
	require.NoError(t, err)
	svc, err := NewService(NewRepository(db), testTxRunner{db: db}, actSvc)
	require.NoError(t, err)
	return svc
}

func TestAttachAndListDocuments(t *testing.T) {
	t.Parallel()

	db := setupDocumentsTestDB(t)
	svc := newDocumentService(t, db)
	txnID := uuid.New()

	agreement, err := svc.Attach(context.Background(), AttachInput{TransactionID: txnID, DocType: "subscription_agreement"})
	require.NoError(t, err)
	_, err = svc.Attach(context.Background(), AttachInput{TransactionID: txnID, DocType: "risk_disclosure"})
	require.NoError(t, err)

	docs, err := svc.ListByTransaction(context.Background(), txnID)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, agreement.ID, docs[0].ID)
	assert.False(t, docs[0].Signed)
	assert.Nil(t, docs[0].SignedAt)
}

func TestSignRecordsSignatureAndActivity(t *testing.T) {
	t.Parallel()

	db := setupDocumentsTestDB(t)
	svc := newDocumentService(t, db)
	txnID := uuid.New()
	userID := uuid.New()

	doc, err := svc.Attach(context.Background(), AttachInput{TransactionID: txnID, DocType: "subscription_agreement"})
	require.NoError(t, err)

	signed, err := svc.Sign(context.Background(), SignInput{
		DocumentID:    doc.ID,
		SignatureData: "data:image/png;base64,iVBORw0KGgo=",
		Actor:         userID.String(),
	})
	require.NoError(t, err)
	assert.True(t, signed.Signed)
	require.NotNil(t, signed.SignedAt)
	require.NotNil(t, signed.SignatureData)
	assert.Equal(t, "data:image/png;base64,iVBORw0KGgo=", *signed.SignatureData)

	var activities []models.InvestmentActivity
	require.NoError(t, db.Where("investment_transaction_id = ?", txnID).Find(&activities).Error)
	require.Len(t, activities, 1)
	assert.Equal(t, enums.ActivityTypeDocumentSigned, activities[0].ActivityType)
	assert.Equal(t, userID.String(), activities[0].PerformedBy)
}

func TestSignAlreadySignedIsNoOp(t *testing.T) {
	t.Parallel()

	db := setupDocumentsTestDB(t)
	svc := newDocumentService(t, db)

	doc, err := svc.Attach(context.Background(), AttachInput{TransactionID: uuid.New(), DocType: "risk_disclosure"})
	require.NoError(t, err)

	first, err := svc.Sign(context.Background(), SignInput{DocumentID: doc.ID, SignatureData: "sig-one", Actor: "investor"})
	require.NoError(t, err)

	second, err := svc.Sign(context.Background(), SignInput{DocumentID: doc.ID, SignatureData: "sig-two", Actor: "investor"})
	require.NoError(t, err)
	require.NotNil(t, second.SignatureData)
	assert.Equal(t, "sig-one", *second.SignatureData)
	assert.Equal(t, first.SignedAt.UTC(), second.SignedAt.UTC())

	var count int64
	require.NoError(t, db.Model(&models.InvestmentActivity{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSignValidation(t *testing.T) {
	t.Parallel()

	db := setupDocumentsTestDB(t)
	svc := newDocumentService(t, db)

	cases := []struct {
		name  string
		input SignInput
		code  pkgerrors.Code
	}{
		{"missing document id", SignInput{SignatureData: "sig"}, pkgerrors.CodeValidation},
		{"missing signature", SignInput{DocumentID: uuid.New()}, pkgerrors.CodeValidation},
		{"unknown document", SignInput{DocumentID: uuid.New(), SignatureData: "sig"}, pkgerrors.CodeNotFound},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := svc.Sign(context.Background(), tc.input)
			require.Error(t, err)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, tc.code, typed.Code())
		})
	}
}
