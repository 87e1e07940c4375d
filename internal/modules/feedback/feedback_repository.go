package feedback

import (
	"context"
	"errors"
	"fmt"

	"home-kitchen-market/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the contract for feedback storage. The
// one-review-per-order rule is backed by a unique constraint on order_id,
// so even a race between two submits cannot create a second row.
type RepositoryInterface interface {
	Create(ctx context.Context, fb *models.Feedback) (*models.Feedback, error)
	FindByID(ctx context.Context, feedbackID string) (*models.Feedback, error)
	FindByOrderID(ctx context.Context, orderID string) (*models.Feedback, error)
	ListByVendor(ctx context.Context, vendorID string, page, limit int) ([]*models.Feedback, int, error)
	VendorAggregate(ctx context.Context, vendorID string) (*models.VendorRating, error)
	SetVendorResponse(ctx context.Context, feedbackID, vendorID, response string) (*models.Feedback, error)
}

// Repository implements the RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new feedback repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const feedbackColumns = `id, order_id, vendor_id, customer_id, rating, comment, vendor_response, created_at`

func scanFeedback(row pgx.Row) (*models.Feedback, error) {
	var fb models.Feedback
	err := row.Scan(
		&fb.ID,
		&fb.OrderID,
		&fb.VendorID,
		&fb.CustomerID,
		&fb.Rating,
		&fb.Comment,
		&fb.VendorResponse,
		&fb.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan feedback: %w", err)
	}
	return &fb, nil
}

// Create inserts a review. A unique violation on order_id means someone
// else won the race; it maps to ErrAlreadyReviewed.
func (r *Repository) Create(ctx context.Context, fb *models.Feedback) (*models.Feedback, error) {
	query := `
		INSERT INTO feedback (id, order_id, vendor_id, customer_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + feedbackColumns

	row := r.db.QueryRow(ctx, query,
		uuid.New().String(), fb.OrderID, fb.VendorID, fb.CustomerID, fb.Rating, fb.Comment,
	)
	created, err := scanFeedback(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, models.ErrAlreadyReviewed
		}
		return nil, fmt.Errorf("repository.CreateFeedback: %w", err)
	}
	return created, nil
}

// FindByID retrieves a single review.
func (r *Repository) FindByID(ctx context.Context, feedbackID string) (*models.Feedback, error) {
	query := `SELECT ` + feedbackColumns + ` FROM feedback WHERE id = $1`
	fb, err := scanFeedback(r.db.QueryRow(ctx, query, feedbackID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindFeedbackByID: %w", err)
	}
	return fb, nil
}

// FindByOrderID retrieves the review for an order, if any.
func (r *Repository) FindByOrderID(ctx context.Context, orderID string) (*models.Feedback, error) {
	query := `SELECT ` + feedbackColumns + ` FROM feedback WHERE order_id = $1`
	fb, err := scanFeedback(r.db.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindFeedbackByOrderID: %w", err)
	}
	return fb, nil
}

// ListByVendor retrieves a vendor's reviews with pagination.
func (r *Repository) ListByVendor(ctx context.Context, vendorID string, page, limit int) ([]*models.Feedback, int, error) {
	offset := (page - 1) * limit
	query := `SELECT ` + feedbackColumns + ` FROM feedback WHERE vendor_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, vendorID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListFeedback.Query: %w", err)
	}
	defer rows.Close()

	var items []*models.Feedback
	for rows.Next() {
		fb, err := scanFeedback(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repository.ListFeedback.Scan: %w", err)
		}
		items = append(items, fb)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repository.ListFeedback.Rows: %w", err)
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM feedback WHERE vendor_id = $1", vendorID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository.ListFeedback.Count: %w", err)
	}

	return items, total, nil
}

// VendorAggregate computes the review count and mean rating rounded to one
// decimal place. A vendor with no reviews gets {0, 0}, not an error.
func (r *Repository) VendorAggregate(ctx context.Context, vendorID string) (*models.VendorRating, error) {
	query := `
		SELECT COUNT(*), COALESCE(ROUND(AVG(rating)::numeric, 1), 0)
		FROM feedback
		WHERE vendor_id = $1`

	agg := &models.VendorRating{VendorID: vendorID}
	if err := r.db.QueryRow(ctx, query, vendorID).Scan(&agg.Count, &agg.AverageRating); err != nil {
		return nil, fmt.Errorf("repository.VendorAggregate: %w", err)
	}
	return agg, nil
}

// SetVendorResponse stores the vendor's reply on their own review.
func (r *Repository) SetVendorResponse(ctx context.Context, feedbackID, vendorID, response string) (*models.Feedback, error) {
	query := `
		UPDATE feedback
		SET vendor_response = $1
		WHERE id = $2 AND vendor_id = $3
		RETURNING ` + feedbackColumns

	fb, err := scanFeedback(r.db.QueryRow(ctx, query, response, feedbackID, vendorID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.SetVendorResponse: %w", err)
	}
	return fb, nil
}
