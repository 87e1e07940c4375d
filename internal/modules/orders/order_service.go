package orders

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"home-kitchen-market/internal/models"
)

// CatalogInterface is the read-only slice of the catalog this service
// consumes at placement time. Menu pricing is copied into the order
// snapshot; the catalog is never mutated from here.
type CatalogInterface interface {
	GetMenu(ctx context.Context, menuID string) (*models.Menu, error)
}

// AddressBookInterface resolves a delivery address owned by the customer.
type AddressBookInterface interface {
	GetAddress(ctx context.Context, addressID, userID string) (*models.Address, error)
}

// NotifierInterface receives fire-and-forget lifecycle notifications.
type NotifierInterface interface {
	OrderStatusChanged(ctx context.Context, order *models.Order)
}

// ServiceInterface defines the contract for the order ledger.
type ServiceInterface interface {
	Place(ctx context.Context, customerID string, req models.PlaceOrderRequest) (*models.Order, error)
	GetOrderDetails(ctx context.Context, orderID, userID, role string) (*models.Order, error)
	GetOrderForCustomer(ctx context.Context, orderID, customerID string) (*models.Order, error)
	ListMyOrders(ctx context.Context, customerID string, page, limit int) ([]*models.Order, int, error)
	ListVendorOrders(ctx context.Context, vendorID string, page, limit int) ([]*models.Order, int, error)
	RecordPaymentResult(ctx context.Context, orderID string, verified bool) (*models.Order, error)
	AdvanceStatus(ctx context.Context, orderID string, next models.OrderStatus, actorID, role string) (*models.Order, error)
	Cancel(ctx context.Context, orderID, customerID string) (*models.Order, error)
}

// Service implements the order ledger logic.
type Service struct {
	repo     RepositoryInterface
	catalog  CatalogInterface
	addrs    AddressBookInterface
	notifier NotifierInterface
}

// NewService creates a new order service.
func NewService(repo RepositoryInterface, catalog CatalogInterface, addrs AddressBookInterface, notifier NotifierInterface) *Service {
	return &Service{repo: repo, catalog: catalog, addrs: addrs, notifier: notifier}
}

// Place constructs a new order with a price snapshot taken from the current
// catalog. Later menu price changes never alter an existing order's total.
func (s *Service) Place(ctx context.Context, customerID string, req models.PlaceOrderRequest) (*models.Order, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", models.ErrInvalidInput)
	}

	deliveryDate, err := time.Parse("2006-01-02", req.DeliveryDate)
	if err != nil {
		return nil, fmt.Errorf("%w: delivery_date must be YYYY-MM-DD", models.ErrInvalidInput)
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if deliveryDate.Before(today) {
		return nil, fmt.Errorf("%w: delivery date %s is in the past", models.ErrInvalidInput, req.DeliveryDate)
	}

	menu, err := s.catalog.GetMenu(ctx, req.MenuID)
	if err != nil {
		return nil, err
	}
	if !menu.IsAvailable {
		return nil, fmt.Errorf("%w: menu %s is not available", models.ErrNotEligible, menu.ID)
	}

	if _, err := s.addrs.GetAddress(ctx, req.AddressID, customerID); err != nil {
		return nil, err
	}

	order := &models.Order{
		CustomerID:    customerID,
		VendorID:      menu.VendorID,
		MenuID:        menu.ID,
		Quantity:      req.Quantity,
		UnitAmount:    menu.Price,
		TotalAmount:   menu.Price * int64(req.Quantity),
		Currency:      "INR",
		DeliveryDate:  deliveryDate,
		DeliverySlot:  req.DeliverySlot,
		AddressID:     req.AddressID,
		Instructions:  sql.NullString{String: req.Instructions, Valid: req.Instructions != ""},
		PaymentMethod: req.PaymentMethod,
	}

	created, err := s.repo.Create(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("service.Place: %w", err)
	}
	return created, nil
}

// GetOrderDetails retrieves a single order, visible to its customer, its
// vendor, and admins. Anyone else gets NotFound rather than a hint that
// the order exists.
func (s *Service) GetOrderDetails(ctx context.Context, orderID, userID, role string) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("service.GetOrderDetails: %w", err)
	}
	if order.CustomerID != userID && order.VendorID != userID && role != models.RoleAdmin {
		return nil, models.ErrNotFound
	}
	return order, nil
}

// GetOrderForCustomer retrieves an order only when the customer owns it.
func (s *Service) GetOrderForCustomer(ctx context.Context, orderID, customerID string) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("service.GetOrderForCustomer: %w", err)
	}
	if order.CustomerID != customerID {
		return nil, models.ErrNotFound
	}
	return order, nil
}

// ListMyOrders retrieves all orders for a customer.
func (s *Service) ListMyOrders(ctx context.Context, customerID string, page, limit int) ([]*models.Order, int, error) {
	orders, total, err := s.repo.ListByCustomer(ctx, customerID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ListMyOrders: %w", err)
	}
	return orders, total, nil
}

// ListVendorOrders retrieves the orders placed against a vendor's kitchen.
func (s *Service) ListVendorOrders(ctx context.Context, vendorID string, page, limit int) ([]*models.Order, int, error) {
	orders, total, err := s.repo.ListByVendor(ctx, vendorID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ListVendorOrders: %w", err)
	}
	return orders, total, nil
}

// RecordPaymentResult settles the order's payment status from a verified
// signature check. It must only ever be called with the outcome of the
// payment service's verification, never a client-supplied flag. The
// pending-only guard makes duplicate deliveries fail with ErrInvalidState,
// leaving the state produced by the first call.
func (s *Service) RecordPaymentResult(ctx context.Context, orderID string, verified bool) (*models.Order, error) {
	status := models.PaymentFailed
	if verified {
		status = models.PaymentPaid
	}
	order, err := s.repo.SetPaymentResult(ctx, orderID, status)
	if err != nil {
		return nil, fmt.Errorf("service.RecordPaymentResult %s: %w", orderID, err)
	}
	return order, nil
}

// AdvanceStatus moves an order one step forward along the fixed pipeline
// placed -> confirmed -> preparing -> out_for_delivery -> delivered. All
// forward progress is vendor/operator-driven; the conditional update in
// the repository makes the read-check-write atomic.
func (s *Service) AdvanceStatus(ctx context.Context, orderID string, next models.OrderStatus, actorID, role string) (*models.Order, error) {
	if role != models.RoleVendor && role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: only the vendor may advance an order", models.ErrInvalidTransition)
	}

	required, ok := next.RequiredPredecessor()
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a forward pipeline step", models.ErrInvalidTransition, next)
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("service.AdvanceStatus: %w", err)
	}
	if role == models.RoleVendor && order.VendorID != actorID {
		return nil, models.ErrNotFound
	}
	if order.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: order %s is already %s", models.ErrInvalidTransition, orderID, order.Status)
	}
	if order.Status != required {
		return nil, fmt.Errorf("%w: order %s is %s, cannot move to %s", models.ErrInvalidTransition, orderID, order.Status, next)
	}

	updated, err := s.repo.UpdateStatus(ctx, orderID, required, next)
	if err != nil {
		return nil, fmt.Errorf("service.AdvanceStatus %s: %w", orderID, err)
	}

	if s.notifier != nil && (next == models.OrderOutForDelivery || next == models.OrderDelivered) {
		s.notifier.OrderStatusChanged(ctx, updated)
	}
	return updated, nil
}

// Cancel jumps an order to cancelled from any state strictly before
// delivered. Consumers may only request this transition.
func (s *Service) Cancel(ctx context.Context, orderID, customerID string) (*models.Order, error) {
	order, err := s.repo.CancelForCustomer(ctx, orderID, customerID)
	if err != nil {
		return nil, fmt.Errorf("service.Cancel %s: %w", orderID, err)
	}
	return order, nil
}
