package payments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"home-kitchen-market/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the contract for payment intent storage.
type RepositoryInterface interface {
	Create(ctx context.Context, intent *models.PaymentIntent) (*models.PaymentIntent, error)
	FindByID(ctx context.Context, intentID string) (*models.PaymentIntent, error)
	// UpdateStatus settles an intent; the update only applies while the
	// intent is still in 'created' state, so duplicate confirmations
	// cannot flip an already-settled intent.
	UpdateStatus(ctx context.Context, intentID string, status models.IntentStatus) error
}

// Repository is the PostgreSQL implementation of RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new payment intent repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const intentColumns = `id, customer_id, order_id, subscription_id, amount, currency, receipt, status, created_at, updated_at`

func scanIntent(row pgx.Row) (*models.PaymentIntent, error) {
	intent := &models.PaymentIntent{}
	err := row.Scan(
		&intent.ID,
		&intent.CustomerID,
		&intent.OrderID,
		&intent.SubscriptionID,
		&intent.Amount,
		&intent.Currency,
		&intent.Receipt,
		&intent.Status,
		&intent.CreatedAt,
		&intent.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan payment intent: %w", err)
	}
	return intent, nil
}

// Create inserts the local record of a provider-side intent. The id is the
// provider's intent id, so a duplicate provider callback can never create a
// second row.
func (r *Repository) Create(ctx context.Context, intent *models.PaymentIntent) (*models.PaymentIntent, error) {
	query := `
		INSERT INTO payment_intents (id, customer_id, order_id, subscription_id, amount, currency, receipt, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'created')
		RETURNING ` + intentColumns

	row := r.db.QueryRow(ctx, query,
		intent.ID, intent.CustomerID, intent.OrderID, intent.SubscriptionID,
		intent.Amount, intent.Currency, intent.Receipt,
	)
	created, err := scanIntent(row)
	if err != nil {
		return nil, fmt.Errorf("repository.CreateIntent: %w", err)
	}
	return created, nil
}

// FindByID retrieves a single intent by its provider id.
func (r *Repository) FindByID(ctx context.Context, intentID string) (*models.PaymentIntent, error) {
	query := `SELECT ` + intentColumns + ` FROM payment_intents WHERE id = $1`
	intent, err := scanIntent(r.db.QueryRow(ctx, query, intentID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindIntentByID: %w", err)
	}
	return intent, nil
}

// UpdateStatus settles an intent, guarded on it still being unsettled.
func (r *Repository) UpdateStatus(ctx context.Context, intentID string, status models.IntentStatus) error {
	query := `
		UPDATE payment_intents
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = 'created'`

	cmdTag, err := r.db.Exec(ctx, query, status, intentID)
	if err != nil {
		return fmt.Errorf("repository.UpdateIntentStatus: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM payment_intents WHERE id = $1)`, intentID).Scan(&exists); err != nil {
			return fmt.Errorf("repository.UpdateIntentStatus: %w", err)
		}
		if !exists {
			return models.ErrNotFound
		}
		return models.ErrInvalidState
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
