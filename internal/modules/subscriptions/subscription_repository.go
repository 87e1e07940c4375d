package subscriptions

import (
	"context"
	"errors"
	"fmt"

	"home-kitchen-market/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the contract for subscription storage. As in
// the order ledger, every transition is a single conditional UPDATE guarded
// on the expected current state.
type RepositoryInterface interface {
	Create(ctx context.Context, sub *models.Subscription) (*models.Subscription, error)
	FindByID(ctx context.Context, subscriptionID string) (*models.Subscription, error)
	ListByCustomer(ctx context.Context, customerID string, page, limit int) ([]*models.Subscription, int, error)
	// UpdateStatus moves a subscription from exactly `from` to `to`.
	UpdateStatus(ctx context.Context, subscriptionID string, from, to models.SubscriptionStatus) (*models.Subscription, error)
	// CancelFromAny cancels from active or paused in one guarded update.
	CancelFromAny(ctx context.Context, subscriptionID, customerID string) (*models.Subscription, error)
	// RecordDelivery atomically increments meals_delivered while status is
	// active, flips to completed when the counter reaches total_meals, and
	// inserts the auto-renewal successor in the same transaction. The
	// renewal return value is non-nil only when one was created.
	RecordDelivery(ctx context.Context, subscriptionID string) (*models.Subscription, *models.Subscription, error)
	// SetPaymentResult settles the payment status while it is pending.
	SetPaymentResult(ctx context.Context, subscriptionID string, status models.PaymentStatus) (*models.Subscription, error)
}

// Repository implements the RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new subscription repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const subscriptionColumns = `id, customer_id, vendor_id, plan_type, delivery_days, start_date, end_date,
		price_per_meal, total_meals, meals_delivered, status, payment_status, auto_renewal, meal_preference,
		created_at, updated_at`

func scanSubscription(row pgx.Row) (*models.Subscription, error) {
	var sub models.Subscription
	var days int16
	err := row.Scan(
		&sub.ID,
		&sub.CustomerID,
		&sub.VendorID,
		&sub.PlanType,
		&days,
		&sub.StartDate,
		&sub.EndDate,
		&sub.PricePerMeal,
		&sub.TotalMeals,
		&sub.MealsDelivered,
		&sub.Status,
		&sub.PaymentStatus,
		&sub.AutoRenewal,
		&sub.Preference,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan subscription: %w", err)
	}
	sub.DeliveryDays = models.WeekdaySet(days)
	return &sub, nil
}

// Create inserts a new subscription with status 'active' and payment 'pending'.
func (r *Repository) Create(ctx context.Context, sub *models.Subscription) (*models.Subscription, error) {
	query := `
		INSERT INTO subscriptions (id, customer_id, vendor_id, plan_type, delivery_days, start_date, end_date,
			price_per_meal, total_meals, meals_delivered, status, payment_status, auto_renewal, meal_preference)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, 'active', 'pending', $10, $11)
		RETURNING ` + subscriptionColumns

	row := r.db.QueryRow(ctx, query,
		uuid.New().String(), sub.CustomerID, sub.VendorID, sub.PlanType, int16(sub.DeliveryDays),
		sub.StartDate, sub.EndDate, sub.PricePerMeal, sub.TotalMeals, sub.AutoRenewal, sub.Preference,
	)
	created, err := scanSubscription(row)
	if err != nil {
		return nil, fmt.Errorf("repository.CreateSubscription: %w", err)
	}
	return created, nil
}

// FindByID retrieves a single subscription.
func (r *Repository) FindByID(ctx context.Context, subscriptionID string) (*models.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`
	sub, err := scanSubscription(r.db.QueryRow(ctx, query, subscriptionID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindSubscriptionByID: %w", err)
	}
	return sub, nil
}

// ListByCustomer retrieves a customer's subscriptions with pagination.
func (r *Repository) ListByCustomer(ctx context.Context, customerID string, page, limit int) ([]*models.Subscription, int, error) {
	offset := (page - 1) * limit
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE customer_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, customerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListSubscriptions.Query: %w", err)
	}
	defer rows.Close()

	var subs []*models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repository.ListSubscriptions.Scan: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repository.ListSubscriptions.Rows: %w", err)
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM subscriptions WHERE customer_id = $1", customerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository.ListSubscriptions.Count: %w", err)
	}

	return subs, total, nil
}

// UpdateStatus applies a guarded transition between two explicit states.
func (r *Repository) UpdateStatus(ctx context.Context, subscriptionID string, from, to models.SubscriptionStatus) (*models.Subscription, error) {
	query := `
		UPDATE subscriptions
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
		RETURNING ` + subscriptionColumns

	sub, err := scanSubscription(r.db.QueryRow(ctx, query, to, subscriptionID, from))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, r.classifyGuardFailure(ctx, subscriptionID, models.ErrInvalidState)
		}
		return nil, fmt.Errorf("repository.UpdateSubscriptionStatus: %w", err)
	}
	return sub, nil
}

// CancelFromAny cancels a subscription from active or paused.
func (r *Repository) CancelFromAny(ctx context.Context, subscriptionID, customerID string) (*models.Subscription, error) {
	query := `
		UPDATE subscriptions
		SET status = 'cancelled', updated_at = NOW()
		WHERE id = $1 AND customer_id = $2 AND status IN ('active', 'paused')
		RETURNING ` + subscriptionColumns

	sub, err := scanSubscription(r.db.QueryRow(ctx, query, subscriptionID, customerID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			var owned bool
			if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM subscriptions WHERE id = $1 AND customer_id = $2)`, subscriptionID, customerID).Scan(&owned); err != nil {
				return nil, fmt.Errorf("repository.CancelSubscription: %w", err)
			}
			if !owned {
				return nil, models.ErrNotFound
			}
			return nil, models.ErrInvalidState
		}
		return nil, fmt.Errorf("repository.CancelSubscription: %w", err)
	}
	return sub, nil
}

// RecordDelivery increments the delivered counter under the active guard,
// flips to completed on the last meal, and creates the renewal row inside
// the same transaction so completion and renewal are visible together or
// not at all.
func (r *Repository) RecordDelivery(ctx context.Context, subscriptionID string) (*models.Subscription, *models.Subscription, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("repository.RecordDelivery.Begin: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE subscriptions
		SET meals_delivered = meals_delivered + 1,
		    status = CASE WHEN meals_delivered + 1 >= total_meals THEN 'completed' ELSE status END,
		    updated_at = NOW()
		WHERE id = $1 AND status = 'active' AND meals_delivered < total_meals
		RETURNING ` + subscriptionColumns

	sub, err := scanSubscription(tx.QueryRow(ctx, query, subscriptionID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil, r.classifyGuardFailure(ctx, subscriptionID, models.ErrInvalidState)
		}
		return nil, nil, fmt.Errorf("repository.RecordDelivery: %w", err)
	}

	var renewal *models.Subscription
	if sub.Status == models.SubscriptionCompleted && sub.AutoRenewal {
		renewal, err = r.insertRenewal(ctx, tx, sub)
		if err != nil {
			return nil, nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("repository.RecordDelivery.Commit: %w", err)
	}
	return sub, renewal, nil
}

// insertRenewal creates a fresh subscription with the same terms starting
// the day after the completed one ends. Renewal is creation of a new
// entity, never mutation of the completed one.
func (r *Repository) insertRenewal(ctx context.Context, tx pgx.Tx, old *models.Subscription) (*models.Subscription, error) {
	duration := old.EndDate.Sub(old.StartDate)
	start := old.EndDate.AddDate(0, 0, 1)
	end := start.Add(duration)

	query := `
		INSERT INTO subscriptions (id, customer_id, vendor_id, plan_type, delivery_days, start_date, end_date,
			price_per_meal, total_meals, meals_delivered, status, payment_status, auto_renewal, meal_preference)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, 'active', 'pending', $10, $11)
		RETURNING ` + subscriptionColumns

	row := tx.QueryRow(ctx, query,
		uuid.New().String(), old.CustomerID, old.VendorID, old.PlanType, int16(old.DeliveryDays),
		start, end, old.PricePerMeal, old.TotalMeals, old.AutoRenewal, old.Preference,
	)
	renewal, err := scanSubscription(row)
	if err != nil {
		return nil, fmt.Errorf("repository.insertRenewal: %w", err)
	}
	return renewal, nil
}

// SetPaymentResult settles the payment status while it is still pending.
func (r *Repository) SetPaymentResult(ctx context.Context, subscriptionID string, status models.PaymentStatus) (*models.Subscription, error) {
	query := `
		UPDATE subscriptions
		SET payment_status = $1, updated_at = NOW()
		WHERE id = $2 AND payment_status = 'pending'
		RETURNING ` + subscriptionColumns

	sub, err := scanSubscription(r.db.QueryRow(ctx, query, status, subscriptionID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, r.classifyGuardFailure(ctx, subscriptionID, models.ErrInvalidState)
		}
		return nil, fmt.Errorf("repository.SetSubscriptionPaymentResult: %w", err)
	}
	return sub, nil
}

func (r *Repository) classifyGuardFailure(ctx context.Context, subscriptionID string, guardErr error) error {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM subscriptions WHERE id = $1)`, subscriptionID).Scan(&exists); err != nil {
		return fmt.Errorf("repository.classifyGuardFailure: %w", err)
	}
	if !exists {
		return models.ErrNotFound
	}
	return guardErr
}
