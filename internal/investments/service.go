package investments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmoralesdev/brickvest-backend/internal/activity"
	"github.com/rmoralesdev/brickvest-backend/internal/certificates"
	"github.com/rmoralesdev/brickvest-backend/internal/eligibility"
	"github.com/rmoralesdev/brickvest-backend/internal/fees"
	"github.com/rmoralesdev/brickvest-backend/internal/inventory"
	"github.com/rmoralesdev/brickvest-backend/pkg/config"
	"github.com/rmoralesdev/brickvest-backend/pkg/db/models"
	"github.com/rmoralesdev/brickvest-backend/pkg/enums"
	pkgerrors "github.com/rmoralesdev/brickvest-backend/pkg/errors"
	"github.com/rmoralesdev/brickvest-backend/pkg/logger"
	"github.com/rmoralesdev/brickvest-backend/pkg/outbox"
	"github.com/rmoralesdev/brickvest-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service drives the investment transaction state machine:
// pending → reserved → processing → completed, with cancelled reachable from
// every non-terminal state. Each transition appends an audit row and emits an
// outbox event inside the same transaction.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.InvestmentTransaction, error)
	Reserve(ctx context.Context, input ReserveInput) (*models.InvestmentTransaction, error)
	MarkPaid(ctx context.Context, input MarkPaidInput) (*models.InvestmentTransaction, error)
	Complete(ctx context.Context, input CompleteInput) (*models.InvestmentTransaction, error)
	Cancel(ctx context.Context, input CancelInput) (*models.InvestmentTransaction, error)
	Get(ctx context.Context, id uuid.UUID) (*models.InvestmentTransaction, error)
	// SweepExpired cancels every reserved transaction whose reservation lapsed
	// at or before now, freeing its shares. Idempotent.
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}

type service struct {
	repo        Repository
	tx          txRunner
	inventory   inventory.Service
	eligibility eligibility.Service
	fees        fees.Service
	policy      fees.Policy
	activity    activity.Service
	outbox      outboxPublisher
	issuer      certificates.Issuer
	reservation config.ReservationConfig
	logg        *logger.Logger
	now         func() time.Time
}

// NewService builds the investment transaction service. The certificate
// issuer is optional; all other dependencies are required.
func NewService(
	repo Repository,
	tx txRunner,
	inv inventory.Service,
	elig eligibility.Service,
	feeSvc fees.Service,
	policy fees.Policy,
	act activity.Service,
	ob outboxPublisher,
	issuer certificates.Issuer,
	reservation config.ReservationConfig,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("investments repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if inv == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	if elig == nil {
		return nil, fmt.Errorf("eligibility service required")
	}
	if feeSvc == nil {
		return nil, fmt.Errorf("fee service required")
	}
	if policy == nil {
		return nil, fmt.Errorf("fee policy required")
	}
	if act == nil {
		return nil, fmt.Errorf("activity service required")
	}
	if ob == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if reservation.DefaultMinutes <= 0 || reservation.MinMinutes <= 0 || reservation.MaxMinutes < reservation.MinMinutes {
		return nil, fmt.Errorf("invalid reservation window config")
	}
	return &service{
		repo:        repo,
		tx:          tx,
		inventory:   inv,
		eligibility: elig,
		fees:        feeSvc,
		policy:      policy,
		activity:    act,
		outbox:      ob,
		issuer:      issuer,
		reservation: reservation,
		logg:        logg,
		now:         time.Now,
	}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.InvestmentTransaction, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}
	txn, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "investment transaction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load investment transaction")
	}
	return txn, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.InvestmentTransaction, error) {
	if input.PropertyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "property id required")
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if input.Shares <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shares must be positive")
	}

	quote, err := s.fees.Quote(ctx, input.PropertyID, input.Shares)
	if err != nil {
		return nil, err
	}
	if !quote.Availability.FundingOpen {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "property funding is closed")
	}

	check, err := s.eligibility.Check(ctx, input.UserID, quote.TotalAmountCents)
	if err != nil {
		return nil, err
	}
	if !check.Eligible {
		return nil, pkgerrors.New(pkgerrors.CodeIneligible, "investor not eligible").
			WithDetails(map[string]string{"reason": check.Reason})
	}

	property, err := s.repo.FindProperty(ctx, input.PropertyID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "property not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load property")
	}

	txn := &models.InvestmentTransaction{
		PropertyID:            input.PropertyID,
		UserID:                input.UserID,
		NumberOfShares:        input.Shares,
		PricePerShareCents:    quote.PricePerShareCents,
		InvestmentAmountCents: quote.InvestmentAmountCents,
		PlatformFeeCents:      quote.PlatformFeeCents,
		ProcessingFeeCents:    quote.ProcessingFeeCents,
		TotalAmountCents:      quote.TotalAmountCents,
		OwnershipPpm:          quote.OwnershipPpm,
		Status:                enums.TransactionStatusPending,
		PaymentStatus:         enums.PaymentStatusUnpaid,
		DistributionFrequency: property.DistributionFrequency,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).Create(ctx, txn); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create investment transaction")
		}
		desc := fmt.Sprintf("investment created: %d shares for %d", input.Shares, txn.TotalAmountCents)
		if err := s.activity.Append(ctx, tx, txn.ID, enums.ActivityTypeCreated, desc, input.Actor); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventInvestmentCreated,
			AggregateType: enums.AggregateInvestmentTransaction,
			AggregateID:   txn.ID,
			Version:       1,
			Actor:         actorRef(input.UserID),
			Data: payloads.InvestmentCreatedEvent{
				InvestmentTransactionID: txn.ID,
				PropertyID:              txn.PropertyID,
				UserID:                  txn.UserID,
				Shares:                  txn.NumberOfShares,
				TotalAmountCents:        txn.TotalAmountCents,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *service) Reserve(ctx context.Context, input ReserveInput) (*models.InvestmentTransaction, error) {
	if input.TransactionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}
	minutes := s.clampMinutes(input.Minutes)

	var txn *models.InvestmentTransaction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := findForTransition(ctx, repo, input.TransactionID)
		if err != nil {
			return err
		}
		if loaded.Status != enums.TransactionStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only pending transactions can be reserved").
				WithDetails(map[string]string{"status": string(loaded.Status)})
		}

		// Lock the property row before rechecking: the availability derived
		// here cannot change until this transaction commits.
		avail, err := s.inventory.AvailabilityForUpdate(ctx, tx, loaded.PropertyID)
		if err != nil {
			return err
		}
		if loaded.NumberOfShares > avail.AvailableShares {
			return pkgerrors.New(pkgerrors.CodeInsufficientInventory, "requested shares no longer available").
				WithDetails(map[string]int64{
					"requested_shares": loaded.NumberOfShares,
					"available_shares": avail.AvailableShares,
				})
		}

		now := s.now().UTC()
		expiresAt := now.Add(time.Duration(minutes) * time.Minute)
		affected, err := repo.UpdateWhereStatus(ctx, loaded.ID, enums.TransactionStatusPending, map[string]any{
			"status":                 enums.TransactionStatusReserved,
			"reserved_at":            now,
			"reservation_expires_at": expiresAt,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve transaction")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "transaction state changed concurrently")
		}

		loaded.Status = enums.TransactionStatusReserved
		loaded.ReservedAt = &now
		loaded.ReservationExpiresAt = &expiresAt
		txn = loaded

		desc := fmt.Sprintf("%d shares reserved for %d minutes", loaded.NumberOfShares, minutes)
		if err := s.activity.Append(ctx, tx, loaded.ID, enums.ActivityTypeReserved, desc, input.Actor); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSharesReserved,
			AggregateType: enums.AggregateInvestmentTransaction,
			AggregateID:   loaded.ID,
			Version:       1,
			Actor:         actorRef(loaded.UserID),
			Data: payloads.SharesReservedEvent{
				InvestmentTransactionID: loaded.ID,
				PropertyID:              loaded.PropertyID,
				UserID:                  loaded.UserID,
				Shares:                  loaded.NumberOfShares,
				ReservationExpiresAt:    expiresAt,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *service) MarkPaid(ctx context.Context, input MarkPaidInput) (*models.InvestmentTransaction, error) {
	if input.TransactionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}
	if input.PaymentReference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment reference required")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}

	var txn *models.InvestmentTransaction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := findForTransition(ctx, repo, input.TransactionID)
		if err != nil {
			return err
		}
		if loaded.Status != enums.TransactionStatusReserved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only reserved transactions can accept payment").
				WithDetails(map[string]string{"status": string(loaded.Status)})
		}
		now := s.now().UTC()
		if loaded.ReservationExpiresAt != nil && now.After(*loaded.ReservationExpiresAt) {
			// The sweep hasn't caught this row yet; refuse rather than accept
			// payment against lapsed inventory.
			return pkgerrors.New(pkgerrors.CodeStateConflict, "reservation has expired")
		}

		affected, err := repo.UpdateWhereStatus(ctx, loaded.ID, enums.TransactionStatusReserved, map[string]any{
			"status":            enums.TransactionStatusProcessing,
			"payment_status":    enums.PaymentStatusCompleted,
			"payment_reference": input.PaymentReference,
			"payment_method":    input.PaymentMethod,
			"paid_at":           now,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark transaction paid")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "transaction state changed concurrently")
		}

		loaded.Status = enums.TransactionStatusProcessing
		loaded.PaymentStatus = enums.PaymentStatusCompleted
		loaded.PaymentReference = &input.PaymentReference
		method := input.PaymentMethod
		loaded.PaymentMethod = &method
		loaded.PaidAt = &now
		txn = loaded

		desc := fmt.Sprintf("payment received via %s (ref %s)", input.PaymentMethod, input.PaymentReference)
		if err := s.activity.Append(ctx, tx, loaded.ID, enums.ActivityTypePaymentReceived, desc, input.Actor); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentReceived,
			AggregateType: enums.AggregateInvestmentTransaction,
			AggregateID:   loaded.ID,
			Version:       1,
			Actor:         actorRef(loaded.UserID),
			Data: payloads.PaymentReceivedEvent{
				InvestmentTransactionID: loaded.ID,
				PropertyID:              loaded.PropertyID,
				UserID:                  loaded.UserID,
				AmountCents:             loaded.TotalAmountCents,
				PaymentReference:        input.PaymentReference,
				PaymentMethod:           input.PaymentMethod,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *service) Complete(ctx context.Context, input CompleteInput) (*models.InvestmentTransaction, error) {
	if input.TransactionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}

	var txn *models.InvestmentTransaction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := findForTransition(ctx, repo, input.TransactionID)
		if err != nil {
			return err
		}
		if loaded.Status != enums.TransactionStatusProcessing {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only processing transactions can be completed").
				WithDetails(map[string]string{"status": string(loaded.Status)})
		}

		now := s.now().UTC()
		affected, err := repo.UpdateWhereStatus(ctx, loaded.ID, enums.TransactionStatusProcessing, map[string]any{
			"status":       enums.TransactionStatusCompleted,
			"completed_at": now,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete transaction")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "transaction state changed concurrently")
		}

		if err := s.eligibility.RecordInvestment(ctx, tx, loaded.UserID, loaded.TotalAmountCents); err != nil {
			return err
		}

		loaded.Status = enums.TransactionStatusCompleted
		loaded.CompletedAt = &now
		txn = loaded

		desc := fmt.Sprintf("investment completed: %d shares (%d ppm)", loaded.NumberOfShares, loaded.OwnershipPpm)
		if err := s.activity.Append(ctx, tx, loaded.ID, enums.ActivityTypeCompleted, desc, input.Actor); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventInvestmentCompleted,
			AggregateType: enums.AggregateInvestmentTransaction,
			AggregateID:   loaded.ID,
			Version:       1,
			Actor:         actorRef(loaded.UserID),
			Data: payloads.InvestmentCompletedEvent{
				InvestmentTransactionID: loaded.ID,
				PropertyID:              loaded.PropertyID,
				UserID:                  loaded.UserID,
				Shares:                  loaded.NumberOfShares,
				OwnershipPpm:            loaded.OwnershipPpm,
				CompletedAt:             now,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	// Certificate issuance is best-effort after commit: a store outage must
	// not undo a completed investment.
	s.issueCertificate(ctx, txn)
	return txn, nil
}

func (s *service) Cancel(ctx context.Context, input CancelInput) (*models.InvestmentTransaction, error) {
	if input.TransactionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}

	var txn *models.InvestmentTransaction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := findForTransition(ctx, repo, input.TransactionID)
		if err != nil {
			return err
		}
		if loaded.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "transaction already finalized").
				WithDetails(map[string]string{"status": string(loaded.Status)})
		}
		if loaded.Status == enums.TransactionStatusProcessing && !input.AdminOverride {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "processing transactions require admin cancellation")
		}

		updates := map[string]any{"status": enums.TransactionStatusCancelled}
		paymentStatus := loaded.PaymentStatus
		if loaded.PaymentStatus == enums.PaymentStatusCompleted {
			paymentStatus = enums.PaymentStatusRefunded
			updates["payment_status"] = paymentStatus
		}

		affected, err := repo.UpdateWhereStatus(ctx, loaded.ID, loaded.Status, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel transaction")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "transaction state changed concurrently")
		}

		loaded.Status = enums.TransactionStatusCancelled
		loaded.PaymentStatus = paymentStatus
		txn = loaded

		desc := "investment cancelled"
		if input.Reason != "" {
			desc = fmt.Sprintf("investment cancelled: %s", input.Reason)
		}
		if err := s.activity.Append(ctx, tx, loaded.ID, enums.ActivityTypeCancelled, desc, input.Actor); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventInvestmentCancelled,
			AggregateType: enums.AggregateInvestmentTransaction,
			AggregateID:   loaded.ID,
			Version:       1,
			Actor:         actorRef(loaded.UserID),
			Data: payloads.InvestmentCancelledEvent{
				InvestmentTransactionID: loaded.ID,
				PropertyID:              loaded.PropertyID,
				UserID:                  loaded.UserID,
				Shares:                  loaded.NumberOfShares,
				Reason:                  input.Reason,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *service) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	if now.IsZero() {
		now = s.now()
	}
	now = now.UTC()

	var swept int64
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		rows, err := repo.FindExpiredReserved(ctx, now, 0)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find expired reservations")
		}
		for _, row := range rows {
			affected, err := repo.UpdateWhereStatus(ctx, row.ID, enums.TransactionStatusReserved, map[string]any{
				"status":         enums.TransactionStatusCancelled,
				"payment_status": enums.PaymentStatusExpired,
			})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expire reservation")
			}
			if affected == 0 {
				// Lost the race to a payment or cancel; not ours to sweep.
				continue
			}
			swept++

			desc := fmt.Sprintf("reservation expired at %s, %d shares released", row.ReservationExpiresAt.UTC().Format(time.RFC3339), row.NumberOfShares)
			if err := s.activity.Append(ctx, tx, row.ID, enums.ActivityTypeReservationExpired, desc, activity.SystemActor); err != nil {
				return err
			}
			if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventReservationExpired,
				AggregateType: enums.AggregateInvestmentTransaction,
				AggregateID:   row.ID,
				Version:       1,
				Data: payloads.InvestmentCancelledEvent{
					InvestmentTransactionID: row.ID,
					PropertyID:              row.PropertyID,
					UserID:                  row.UserID,
					Shares:                  row.NumberOfShares,
					Reason:                  "reservation expired",
					Expired:                 true,
				},
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return swept, nil
}

func (s *service) issueCertificate(ctx context.Context, txn *models.InvestmentTransaction) {
	if s.issuer == nil || txn == nil {
		return
	}

	ref, err := s.issuer.Issue(ctx, txn)
	if err != nil {
		if s.logg != nil {
			logCtx := s.logg.WithInvestmentID(ctx, txn.ID.String())
			s.logg.Error(logCtx, "certificate issuance failed", err)
		}
		return
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		now := s.now().UTC()
		if err := s.repo.WithTx(tx).Update(ctx, txn.ID, map[string]any{
			"certificate_issued":    true,
			"certificate_issued_at": now,
			"certificate_ref":       ref,
		}); err != nil {
			return err
		}
		desc := fmt.Sprintf("ownership certificate issued: %s", ref)
		if err := s.activity.Append(ctx, tx, txn.ID, enums.ActivityTypeCertificateIssued, desc, activity.SystemActor); err != nil {
			return err
		}
		return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCertificateIssued,
			AggregateType: enums.AggregateInvestmentTransaction,
			AggregateID:   txn.ID,
			Version:       1,
			Data: payloads.CertificateIssuedEvent{
				InvestmentTransactionID: txn.ID,
				PropertyID:              txn.PropertyID,
				UserID:                  txn.UserID,
				CertificateRef:          ref,
				IssuedAt:                s.now().UTC(),
			},
		})
	})
	if err != nil && s.logg != nil {
		logCtx := s.logg.WithInvestmentID(ctx, txn.ID.String())
		s.logg.Error(logCtx, "recording issued certificate failed", err)
	}
}

func (s *service) clampMinutes(minutes int) int {
	if minutes == 0 {
		return s.reservation.DefaultMinutes
	}
	if minutes < s.reservation.MinMinutes {
		return s.reservation.MinMinutes
	}
	if minutes > s.reservation.MaxMinutes {
		return s.reservation.MaxMinutes
	}
	return minutes
}

func findForTransition(ctx context.Context, repo Repository, id uuid.UUID) (*models.InvestmentTransaction, error) {
	txn, err := repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "investment transaction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load investment transaction")
	}
	return txn, nil
}

func actorRef(userID uuid.UUID) *outbox.ActorRef {
	return &outbox.ActorRef{UserID: userID, Role: "investor"}
}
