package orders

import (
	"context"
	"errors"
	"fmt"

	"home-kitchen-market/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the contract for the order ledger storage.
// Every state transition is a single conditional UPDATE guarded on the
// expected current state, so two concurrent requests can never both pass
// the same check.
type RepositoryInterface interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, orderID string) (*models.Order, error)
	ListByCustomer(ctx context.Context, customerID string, page, limit int) ([]*models.Order, int, error)
	ListByVendor(ctx context.Context, vendorID string, page, limit int) ([]*models.Order, int, error)
	// UpdateStatus moves an order from exactly `from` to `to`; if the order
	// moved concurrently the guard fails and ErrInvalidTransition is
	// returned with the order unchanged.
	UpdateStatus(ctx context.Context, orderID string, from, to models.OrderStatus) (*models.Order, error)
	// CancelForCustomer jumps to cancelled from any non-terminal status,
	// only for the order's owner.
	CancelForCustomer(ctx context.Context, orderID, customerID string) (*models.Order, error)
	// SetPaymentResult settles the payment status; the pending-only guard
	// is the idempotency boundary for duplicate confirmations.
	SetPaymentResult(ctx context.Context, orderID string, status models.PaymentStatus) (*models.Order, error)
}

// Repository implements the RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new order repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const orderColumns = `id, customer_id, vendor_id, menu_id, quantity, unit_amount, total_amount, currency,
		delivery_date, delivery_slot, address_id, instructions, payment_method, payment_status, status,
		created_at, updated_at`

// scanOrder is a helper to scan a row into an Order model.
func scanOrder(row pgx.Row) (*models.Order, error) {
	var order models.Order
	err := row.Scan(
		&order.ID,
		&order.CustomerID,
		&order.VendorID,
		&order.MenuID,
		&order.Quantity,
		&order.UnitAmount,
		&order.TotalAmount,
		&order.Currency,
		&order.DeliveryDate,
		&order.DeliverySlot,
		&order.AddressID,
		&order.Instructions,
		&order.PaymentMethod,
		&order.PaymentStatus,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}
	return &order, nil
}

// Create inserts a new order with status 'placed' and payment 'pending'.
func (r *Repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	query := `
		INSERT INTO orders (id, customer_id, vendor_id, menu_id, quantity, unit_amount, total_amount, currency,
			delivery_date, delivery_slot, address_id, instructions, payment_method, payment_status, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 'pending', 'placed')
		RETURNING ` + orderColumns

	row := r.db.QueryRow(ctx, query,
		uuid.New().String(), order.CustomerID, order.VendorID, order.MenuID,
		order.Quantity, order.UnitAmount, order.TotalAmount, order.Currency,
		order.DeliveryDate, order.DeliverySlot, order.AddressID, order.Instructions,
		order.PaymentMethod,
	)
	created, err := scanOrder(row)
	if err != nil {
		return nil, fmt.Errorf("repository.CreateOrder: %w", err)
	}
	return created, nil
}

// FindByID retrieves a single order by its ID.
func (r *Repository) FindByID(ctx context.Context, orderID string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	order, err := scanOrder(r.db.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return order, nil
}

func (r *Repository) list(ctx context.Context, whereCol, id string, page, limit int) ([]*models.Order, int, error) {
	offset := (page - 1) * limit
	query := fmt.Sprintf(`SELECT `+orderColumns+` FROM orders WHERE %s = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, whereCol)

	rows, err := r.db.Query(ctx, query, id, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListOrders.Query: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repository.ListOrders.Scan: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repository.ListOrders.Rows: %w", err)
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM orders WHERE %s = $1", whereCol)
	if err := r.db.QueryRow(ctx, countQuery, id).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository.ListOrders.Count: %w", err)
	}

	return orders, total, nil
}

// ListByCustomer retrieves a customer's orders with pagination.
func (r *Repository) ListByCustomer(ctx context.Context, customerID string, page, limit int) ([]*models.Order, int, error) {
	return r.list(ctx, "customer_id", customerID, page, limit)
}

// ListByVendor retrieves a vendor's incoming orders with pagination.
func (r *Repository) ListByVendor(ctx context.Context, vendorID string, page, limit int) ([]*models.Order, int, error) {
	return r.list(ctx, "vendor_id", vendorID, page, limit)
}

// UpdateStatus applies a guarded single-step transition.
func (r *Repository) UpdateStatus(ctx context.Context, orderID string, from, to models.OrderStatus) (*models.Order, error) {
	query := `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
		RETURNING ` + orderColumns

	order, err := scanOrder(r.db.QueryRow(ctx, query, to, orderID, from))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, r.classifyGuardFailure(ctx, orderID, models.ErrInvalidTransition)
		}
		return nil, fmt.Errorf("repository.UpdateStatus: %w", err)
	}
	return order, nil
}

// CancelForCustomer cancels an order from any non-terminal status.
func (r *Repository) CancelForCustomer(ctx context.Context, orderID, customerID string) (*models.Order, error) {
	query := `
		UPDATE orders
		SET status = 'cancelled', updated_at = NOW()
		WHERE id = $1 AND customer_id = $2 AND status NOT IN ('delivered', 'cancelled')
		RETURNING ` + orderColumns

	order, err := scanOrder(r.db.QueryRow(ctx, query, orderID, customerID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Not owned looks identical to not existing on purpose.
			var owned bool
			if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1 AND customer_id = $2)`, orderID, customerID).Scan(&owned); err != nil {
				return nil, fmt.Errorf("repository.CancelForCustomer: %w", err)
			}
			if !owned {
				return nil, models.ErrNotFound
			}
			return nil, models.ErrInvalidTransition
		}
		return nil, fmt.Errorf("repository.CancelForCustomer: %w", err)
	}
	return order, nil
}

// SetPaymentResult settles the payment status while it is still pending.
func (r *Repository) SetPaymentResult(ctx context.Context, orderID string, status models.PaymentStatus) (*models.Order, error) {
	query := `
		UPDATE orders
		SET payment_status = $1, updated_at = NOW()
		WHERE id = $2 AND payment_status = 'pending'
		RETURNING ` + orderColumns

	order, err := scanOrder(r.db.QueryRow(ctx, query, status, orderID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, r.classifyGuardFailure(ctx, orderID, models.ErrInvalidState)
		}
		return nil, fmt.Errorf("repository.SetPaymentResult: %w", err)
	}
	return order, nil
}

// classifyGuardFailure distinguishes "no such order" from "guard rejected
// the transition" after a conditional update touched zero rows.
func (r *Repository) classifyGuardFailure(ctx context.Context, orderID string, guardErr error) error {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, orderID).Scan(&exists); err != nil {
		return fmt.Errorf("repository.classifyGuardFailure: %w", err)
	}
	if !exists {
		return models.ErrNotFound
	}
	return guardErr
}
