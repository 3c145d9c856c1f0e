package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AsgerSP/donation-platform/internal/models"

	"github.com/google/uuid"
)

var ErrSubscriptionNotFound = errors.New("subscription not found")

// Store groups the donation queries around one connection pool so handlers
// can take it behind a narrow interface.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

type CreateDonationParams struct {
	Name          string
	Email         string
	TIN           string
	Address       string
	PostalCode    string
	City          string
	TaxDeductible bool
	Membership    bool
	Amount        int64
	Currency      string
	Method        models.PaymentMethod
	Frequency     models.DonationFrequency
}

// DonationReceipt carries the identifiers a caller needs after a submit:
// the charge short id doubles as the bank-transfer reference and the gateway
// order id for one-off payments; the subscription short id is the order id
// for recurring setup.
type DonationReceipt struct {
	DonorID             string
	ChargeShortID       string
	SubscriptionShortID string
}

// CreateDonation inserts the donor, the initial pending charge and, for
// monthly donations, the subscription row in a single transaction.
func (s *Store) CreateDonation(ctx context.Context, p CreateDonationParams) (*DonationReceipt, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin donation transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	receipt := &DonationReceipt{DonorID: uuid.NewString()}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO donors (id, name, email, tin, address, postal_code, city, tax_deductible, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		receipt.DonorID,
		p.Name,
		p.Email,
		sql.NullString{String: p.TIN, Valid: p.TIN != ""},
		sql.NullString{String: p.Address, Valid: p.Address != ""},
		sql.NullString{String: p.PostalCode, Valid: p.PostalCode != ""},
		sql.NullString{String: p.City, Valid: p.City != ""},
		p.TaxDeductible,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert donor: %w", err)
	}

	var subscriptionID sql.NullString
	if p.Frequency == models.FrequencyMonthly {
		subID := uuid.NewString()
		receipt.SubscriptionShortID = newShortID()
		_, err = tx.ExecContext(ctx,
			`INSERT INTO subscriptions (id, donor_id, short_id, amount, currency, frequency, membership, status, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			subID,
			receipt.DonorID,
			receipt.SubscriptionShortID,
			p.Amount,
			p.Currency,
			p.Frequency,
			p.Membership,
			"active",
			now,
			now,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert subscription: %w", err)
		}
		subscriptionID = sql.NullString{String: subID, Valid: true}
	}

	receipt.ChargeShortID = newShortID()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO charges (id, donor_id, subscription_id, short_id, amount, currency, method, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		receipt.DonorID,
		subscriptionID,
		receipt.ChargeShortID,
		p.Amount,
		p.Currency,
		p.Method,
		models.ChargeStatusPending,
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert charge: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit donation transaction: %w", err)
	}
	return receipt, nil
}

// UpdateChargeFromGateway sets the charge status and stores the raw gateway
// payload. Re-delivery of the same notification overwrites the row with the
// same values, so webhook retries are harmless.
func (s *Store) UpdateChargeFromGateway(ctx context.Context, shortID string, status models.ChargeStatus, gatewayResponse []byte) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE charges SET status = ?, gateway_response = ?, updated_at = ? WHERE short_id = ?`,
		status, gatewayResponse, time.Now(), shortID,
	)
	if err != nil {
		slog.Error("Failed to update charge from gateway response", "short_id", shortID, "status", status, "error", err)
		return fmt.Errorf("failed to update charge %s: %w", shortID, err)
	}
	return nil
}

// CreateInitialCharge inserts a new pending charge for the subscription
// identified by its short id, copying amount and currency from the
// subscription row. Used for recurring renewals reported by the gateway.
func (s *Store) CreateInitialCharge(ctx context.Context, subscriptionShortID string) error {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, donor_id, amount, currency FROM subscriptions WHERE short_id = ?`,
		subscriptionShortID,
	)

	var subID, donorID, currency string
	var amount int64
	if err := row.Scan(&subID, &donorID, &amount, &currency); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrSubscriptionNotFound, subscriptionShortID)
		}
		return fmt.Errorf("failed to load subscription %s: %w", subscriptionShortID, err)
	}

	now := time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO charges (id, donor_id, subscription_id, short_id, amount, currency, method, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		donorID,
		subID,
		newShortID(),
		amount,
		currency,
		models.MethodCreditCard,
		models.ChargeStatusPending,
		now,
		now,
	)
	if err != nil {
		slog.Error("Failed to insert initial charge for subscription", "subscription_short_id", subscriptionShortID, "error", err)
		return fmt.Errorf("failed to insert charge for subscription %s: %w", subscriptionShortID, err)
	}
	return nil
}

// newShortID is the compact reference surfaced to bank-transfer payers and
// used as the gateway order id.
func newShortID() string {
	return uuid.NewString()[:8]
}
