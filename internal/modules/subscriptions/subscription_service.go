package subscriptions

import (
	"context"
	"fmt"
	"time"

	"home-kitchen-market/internal/models"
)

// CatalogInterface is the read-only vendor lookup consumed at purchase time.
type CatalogInterface interface {
	GetVendor(ctx context.Context, vendorID string) (*models.Vendor, error)
}

// NotifierInterface receives fire-and-forget lifecycle notifications.
type NotifierInterface interface {
	SubscriptionCompleted(ctx context.Context, sub *models.Subscription, renewal *models.Subscription)
}

// ServiceInterface defines the contract for the subscription scheduler.
type ServiceInterface interface {
	Create(ctx context.Context, customerID string, req models.CreateSubscriptionRequest) (*models.Subscription, error)
	GetSubscriptionDetails(ctx context.Context, subscriptionID, userID, role string) (*models.Subscription, error)
	GetSubscriptionForCustomer(ctx context.Context, subscriptionID, customerID string) (*models.Subscription, error)
	ListMySubscriptions(ctx context.Context, customerID string, page, limit int) ([]*models.Subscription, int, error)
	NextDelivery(ctx context.Context, subscriptionID, userID, role string, asOf time.Time) (*models.NextDeliveryResponse, error)
	RecordDelivery(ctx context.Context, subscriptionID, actorID, role string) (*models.RecordDeliveryResult, error)
	Pause(ctx context.Context, subscriptionID, customerID string) (*models.Subscription, error)
	Resume(ctx context.Context, subscriptionID, customerID string) (*models.Subscription, error)
	Cancel(ctx context.Context, subscriptionID, customerID string) (*models.Subscription, error)
	RecordPaymentResult(ctx context.Context, subscriptionID string, verified bool) (*models.Subscription, error)
}

// Service implements the subscription scheduler logic.
type Service struct {
	repo     RepositoryInterface
	catalog  CatalogInterface
	notifier NotifierInterface
}

// NewService creates a new subscription service.
func NewService(repo RepositoryInterface, catalog CatalogInterface, notifier NotifierInterface) *Service {
	return &Service{repo: repo, catalog: catalog, notifier: notifier}
}

// Create purchases a new recurring plan.
func (s *Service) Create(ctx context.Context, customerID string, req models.CreateSubscriptionRequest) (*models.Subscription, error) {
	days, err := models.WeekdaySetFromNames(req.DeliveryDays)
	if err != nil {
		return nil, err
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: start_date must be YYYY-MM-DD", models.ErrInvalidInput)
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: end_date must be YYYY-MM-DD", models.ErrInvalidInput)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end_date is before start_date", models.ErrInvalidInput)
	}
	if req.PricePerMeal <= 0 || req.TotalMeals <= 0 {
		return nil, fmt.Errorf("%w: price and meal count must be positive", models.ErrInvalidInput)
	}

	vendor, err := s.catalog.GetVendor(ctx, req.VendorID)
	if err != nil {
		return nil, err
	}
	if !vendor.IsActive {
		return nil, fmt.Errorf("%w: vendor %s is not accepting subscriptions", models.ErrNotEligible, vendor.ID)
	}

	sub := &models.Subscription{
		CustomerID:   customerID,
		VendorID:     vendor.ID,
		PlanType:     req.PlanType,
		DeliveryDays: days,
		StartDate:    start,
		EndDate:      end,
		PricePerMeal: req.PricePerMeal,
		TotalMeals:   req.TotalMeals,
		AutoRenewal:  req.AutoRenewal,
		Preference:   req.Preference,
	}

	created, err := s.repo.Create(ctx, sub)
	if err != nil {
		return nil, fmt.Errorf("service.CreateSubscription: %w", err)
	}
	return created, nil
}

// GetSubscriptionDetails retrieves a subscription, visible to its customer,
// its vendor, and admins.
func (s *Service) GetSubscriptionDetails(ctx context.Context, subscriptionID, userID, role string) (*models.Subscription, error) {
	sub, err := s.repo.FindByID(ctx, subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("service.GetSubscriptionDetails: %w", err)
	}
	if sub.CustomerID != userID && sub.VendorID != userID && role != models.RoleAdmin {
		return nil, models.ErrNotFound
	}
	return sub, nil
}

// GetSubscriptionForCustomer retrieves a subscription only for its owner.
func (s *Service) GetSubscriptionForCustomer(ctx context.Context, subscriptionID, customerID string) (*models.Subscription, error) {
	sub, err := s.repo.FindByID(ctx, subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("service.GetSubscriptionForCustomer: %w", err)
	}
	if sub.CustomerID != customerID {
		return nil, models.ErrNotFound
	}
	return sub, nil
}

// ListMySubscriptions retrieves all plans for a customer.
func (s *Service) ListMySubscriptions(ctx context.Context, customerID string, page, limit int) ([]*models.Subscription, int, error) {
	subs, total, err := s.repo.ListByCustomer(ctx, customerID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ListMySubscriptions: %w", err)
	}
	return subs, total, nil
}

// NextDelivery computes the next date the weekday rule produces. Paused
// plans report none until resumed; the computation itself never mutates
// anything, so asking twice with the same asOf always gives the same answer.
func (s *Service) NextDelivery(ctx context.Context, subscriptionID, userID, role string, asOf time.Time) (*models.NextDeliveryResponse, error) {
	sub, err := s.GetSubscriptionDetails(ctx, subscriptionID, userID, role)
	if err != nil {
		return nil, err
	}

	next, ok := NextDeliveryDate(sub, asOf)
	resp := &models.NextDeliveryResponse{SubscriptionID: sub.ID, None: !ok}
	if ok {
		resp.NextDelivery = next.Format("2006-01-02")
	}
	return resp, nil
}

// RecordDelivery advances the plan by one fulfilled meal. Driven by an
// external fulfillment event, never an internal timer. Completing the last
// meal flips the plan to completed and, with auto-renewal set, creates a
// fresh successor plan in the same transaction.
func (s *Service) RecordDelivery(ctx context.Context, subscriptionID, actorID, role string) (*models.RecordDeliveryResult, error) {
	if role != models.RoleVendor && role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: only the vendor may record a delivery", models.ErrInvalidState)
	}

	sub, err := s.repo.FindByID(ctx, subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("service.RecordDelivery: %w", err)
	}
	if role == models.RoleVendor && sub.VendorID != actorID {
		return nil, models.ErrNotFound
	}

	updated, renewal, err := s.repo.RecordDelivery(ctx, subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("service.RecordDelivery %s: %w", subscriptionID, err)
	}

	if updated.Status == models.SubscriptionCompleted && s.notifier != nil {
		s.notifier.SubscriptionCompleted(ctx, updated, renewal)
	}
	return &models.RecordDeliveryResult{Subscription: updated, Renewal: renewal}, nil
}

// Pause freezes the delivered counter and suspends next-delivery
// computation. Valid only from active. Pausing does not extend the end
// date; days missed while paused are skipped.
func (s *Service) Pause(ctx context.Context, subscriptionID, customerID string) (*models.Subscription, error) {
	if _, err := s.GetSubscriptionForCustomer(ctx, subscriptionID, customerID); err != nil {
		return nil, err
	}
	sub, err := s.repo.UpdateStatus(ctx, subscriptionID, models.SubscriptionActive, models.SubscriptionPaused)
	if err != nil {
		return nil, fmt.Errorf("service.Pause %s: %w", subscriptionID, err)
	}
	return sub, nil
}

// Resume reactivates a paused plan. Valid only from paused.
func (s *Service) Resume(ctx context.Context, subscriptionID, customerID string) (*models.Subscription, error) {
	if _, err := s.GetSubscriptionForCustomer(ctx, subscriptionID, customerID); err != nil {
		return nil, err
	}
	sub, err := s.repo.UpdateStatus(ctx, subscriptionID, models.SubscriptionPaused, models.SubscriptionActive)
	if err != nil {
		return nil, fmt.Errorf("service.Resume %s: %w", subscriptionID, err)
	}
	return sub, nil
}

// Cancel is terminal and valid from active or paused.
func (s *Service) Cancel(ctx context.Context, subscriptionID, customerID string) (*models.Subscription, error) {
	sub, err := s.repo.CancelFromAny(ctx, subscriptionID, customerID)
	if err != nil {
		return nil, fmt.Errorf("service.CancelSubscription %s: %w", subscriptionID, err)
	}
	return sub, nil
}

// RecordPaymentResult settles the plan's purchase (or renewal) charge from
// a verified signature check, with the same pending-only idempotency guard
// the order ledger uses.
func (s *Service) RecordPaymentResult(ctx context.Context, subscriptionID string, verified bool) (*models.Subscription, error) {
	status := models.PaymentFailed
	if verified {
		status = models.PaymentPaid
	}
	sub, err := s.repo.SetPaymentResult(ctx, subscriptionID, status)
	if err != nil {
		return nil, fmt.Errorf("service.RecordPaymentResult %s: %w", subscriptionID, err)
	}
	return sub, nil
}
