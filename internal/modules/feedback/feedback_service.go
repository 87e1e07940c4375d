package feedback

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"home-kitchen-market/internal/models"
)

// OrderReaderInterface is the slice of the order ledger the gate needs:
// reviews are only ever accepted against a delivered order the reviewer
// actually placed.
type OrderReaderInterface interface {
	GetOrderForCustomer(ctx context.Context, orderID, customerID string) (*models.Order, error)
}

// ServiceInterface defines the contract for the feedback gate.
type ServiceInterface interface {
	Submit(ctx context.Context, customerID, orderID string, req models.SubmitFeedbackRequest) (*models.Feedback, error)
	VendorAggregate(ctx context.Context, vendorID string) (*models.VendorRating, error)
	ListVendorFeedback(ctx context.Context, vendorID string, page, limit int) ([]*models.Feedback, int, error)
	RespondToFeedback(ctx context.Context, vendorID, feedbackID string, req models.VendorResponseRequest) (*models.Feedback, error)
}

// Service implements the feedback gate logic.
type Service struct {
	repo   RepositoryInterface
	orders OrderReaderInterface
}

// NewService creates a new feedback service.
func NewService(repo RepositoryInterface, orders OrderReaderInterface) *Service {
	return &Service{repo: repo, orders: orders}
}

// Submit files the single review an order may ever receive. The order must
// belong to the customer and be delivered; the repository's unique
// constraint closes the race two concurrent submits would otherwise win
// together.
func (s *Service) Submit(ctx context.Context, customerID, orderID string, req models.SubmitFeedbackRequest) (*models.Feedback, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", models.ErrInvalidInput)
	}

	order, err := s.orders.GetOrderForCustomer(ctx, orderID, customerID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderDelivered {
		return nil, fmt.Errorf("%w: order %s is %s, feedback requires delivered", models.ErrNotEligible, orderID, order.Status)
	}

	if _, err := s.repo.FindByOrderID(ctx, orderID); err == nil {
		return nil, models.ErrAlreadyReviewed
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("service.SubmitFeedback: %w", err)
	}

	fb := &models.Feedback{
		OrderID:    orderID,
		VendorID:   order.VendorID,
		CustomerID: customerID,
		Rating:     req.Rating,
		Comment:    sql.NullString{String: req.Comment, Valid: req.Comment != ""},
	}

	created, err := s.repo.Create(ctx, fb)
	if err != nil {
		if errors.Is(err, models.ErrAlreadyReviewed) {
			return nil, models.ErrAlreadyReviewed
		}
		return nil, fmt.Errorf("service.SubmitFeedback: %w", err)
	}
	return created, nil
}

// VendorAggregate reports the count and mean rating for a vendor.
func (s *Service) VendorAggregate(ctx context.Context, vendorID string) (*models.VendorRating, error) {
	agg, err := s.repo.VendorAggregate(ctx, vendorID)
	if err != nil {
		return nil, fmt.Errorf("service.VendorAggregate: %w", err)
	}
	return agg, nil
}

// ListVendorFeedback retrieves a vendor's reviews.
func (s *Service) ListVendorFeedback(ctx context.Context, vendorID string, page, limit int) ([]*models.Feedback, int, error) {
	items, total, err := s.repo.ListByVendor(ctx, vendorID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ListVendorFeedback: %w", err)
	}
	return items, total, nil
}

// RespondToFeedback stores a vendor's reply on a review of their kitchen.
func (s *Service) RespondToFeedback(ctx context.Context, vendorID, feedbackID string, req models.VendorResponseRequest) (*models.Feedback, error) {
	fb, err := s.repo.SetVendorResponse(ctx, feedbackID, vendorID, req.Response)
	if err != nil {
		return nil, fmt.Errorf("service.RespondToFeedback: %w", err)
	}
	return fb, nil
}
