package payments

import (
	"context"
	"fmt"
	"math"

	"home-kitchen-market/internal/models"
	"home-kitchen-market/pkg/utils"
)

// OrderLedgerInterface is the slice of the order module this service drives
// once a confirmation has been verified.
type OrderLedgerInterface interface {
	GetOrderForCustomer(ctx context.Context, orderID, customerID string) (*models.Order, error)
	RecordPaymentResult(ctx context.Context, orderID string, verified bool) (*models.Order, error)
}

// SubscriptionLedgerInterface is the same contract for subscription charges.
type SubscriptionLedgerInterface interface {
	GetSubscriptionForCustomer(ctx context.Context, subscriptionID, customerID string) (*models.Subscription, error)
	RecordPaymentResult(ctx context.Context, subscriptionID string, verified bool) (*models.Subscription, error)
}

// NotifierInterface receives fire-and-forget lifecycle notifications.
type NotifierInterface interface {
	PaymentReceived(ctx context.Context, intent *models.PaymentIntent)
}

// ServiceInterface defines the contract for the payment intent service.
type ServiceInterface interface {
	CreateIntent(ctx context.Context, customerID string, req models.CreateIntentRequest) (*models.PaymentIntent, error)
	ConfirmOrderPayment(ctx context.Context, customerID string, req models.ConfirmPaymentRequest) (*models.Order, error)
	ConfirmSubscriptionPayment(ctx context.Context, customerID string, req models.ConfirmPaymentRequest) (*models.Subscription, error)
}

// Service implements the payment intent logic.
type Service struct {
	repo          RepositoryInterface
	gateway       GatewayInterface
	orders        OrderLedgerInterface
	subscriptions SubscriptionLedgerInterface
	notifier      NotifierInterface
	secret        string
}

// NewService creates a new payment service. The secret is the shared HMAC
// key the provider signs confirmations with.
func NewService(
	repo RepositoryInterface,
	gateway GatewayInterface,
	orders OrderLedgerInterface,
	subscriptions SubscriptionLedgerInterface,
	notifier NotifierInterface,
	secret string,
) *Service {
	return &Service{
		repo:          repo,
		gateway:       gateway,
		orders:        orders,
		subscriptions: subscriptions,
		notifier:      notifier,
		secret:        secret,
	}
}

// CreateIntent validates the requested charge against the entity it pays
// for, opens a provider-side intent, and records it locally. The recorded
// amount is what later confirmations are reconciled against.
func (s *Service) CreateIntent(ctx context.Context, customerID string, req models.CreateIntentRequest) (*models.PaymentIntent, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", models.ErrInvalidInput)
	}
	// Integer minor units from here on; no floating point in money math.
	amountMinor := int64(math.Round(req.Amount * 100))

	// The intent must pay for exactly one order or one subscription, and
	// its amount must match that entity's stored total.
	var expected int64
	switch {
	case req.OrderID != "":
		order, err := s.orders.GetOrderForCustomer(ctx, req.OrderID, customerID)
		if err != nil {
			return nil, err
		}
		if order.PaymentStatus != models.PaymentPending {
			return nil, fmt.Errorf("%w: order %s payment is already %s", models.ErrInvalidState, order.ID, order.PaymentStatus)
		}
		expected = order.TotalAmount
	case req.SubscriptionID != "":
		sub, err := s.subscriptions.GetSubscriptionForCustomer(ctx, req.SubscriptionID, customerID)
		if err != nil {
			return nil, err
		}
		if sub.PaymentStatus != models.PaymentPending {
			return nil, fmt.Errorf("%w: subscription %s payment is already %s", models.ErrInvalidState, sub.ID, sub.PaymentStatus)
		}
		expected = sub.TotalAmount()
	default:
		return nil, fmt.Errorf("%w: an intent must reference an order or a subscription", models.ErrInvalidInput)
	}

	if amountMinor != expected {
		return nil, fmt.Errorf("%w: amount %d does not match the expected total %d", models.ErrInvalidInput, amountMinor, expected)
	}

	receipt := req.Receipt
	if receipt == "" {
		token, err := utils.GenerateSecureToken(8)
		if err != nil {
			return nil, fmt.Errorf("service.CreateIntent: %w", err)
		}
		receipt = "rcpt_" + token
	}

	gwIntent, err := s.gateway.CreateIntent(ctx, amountMinor, req.Currency, receipt)
	if err != nil {
		return nil, fmt.Errorf("service.CreateIntent: %w", err)
	}

	intent := &models.PaymentIntent{
		ID:             gwIntent.ID,
		CustomerID:     customerID,
		OrderID:        nullString(req.OrderID),
		SubscriptionID: nullString(req.SubscriptionID),
		Amount:         amountMinor,
		Currency:       req.Currency,
		Receipt:        receipt,
	}
	created, err := s.repo.Create(ctx, intent)
	if err != nil {
		return nil, fmt.Errorf("service.CreateIntent: %w", err)
	}
	return created, nil
}

// ConfirmOrderPayment turns a (intent id, payment id, signature) triple into
// a settled order payment. The order is marked paid only when the signature
// verifies AND the intent's recorded amount equals the order's stored total;
// a valid signature over a cheaper intent must not settle a pricier order.
func (s *Service) ConfirmOrderPayment(ctx context.Context, customerID string, req models.ConfirmPaymentRequest) (*models.Order, error) {
	intent, err := s.repo.FindByID(ctx, req.IntentID)
	if err != nil {
		return nil, fmt.Errorf("service.ConfirmOrderPayment: %w", err)
	}
	if intent.CustomerID != customerID || !intent.OrderID.Valid {
		return nil, models.ErrNotFound
	}

	order, err := s.orders.GetOrderForCustomer(ctx, intent.OrderID.String, customerID)
	if err != nil {
		return nil, err
	}

	verified := intent.Amount == order.TotalAmount &&
		VerifySignature(req.IntentID, req.PaymentID, req.Signature, s.secret)

	// The order's pending-only guard is the idempotency boundary: a second
	// delivery of the same confirmation fails here and changes nothing.
	updated, err := s.orders.RecordPaymentResult(ctx, order.ID, verified)
	if err != nil {
		return nil, err
	}

	if err := s.settleIntent(ctx, intent, verified); err != nil {
		return nil, err
	}
	if verified && s.notifier != nil {
		s.notifier.PaymentReceived(ctx, intent)
	}
	return updated, nil
}

// ConfirmSubscriptionPayment is the same flow for a plan purchase or a
// periodic renewal charge.
func (s *Service) ConfirmSubscriptionPayment(ctx context.Context, customerID string, req models.ConfirmPaymentRequest) (*models.Subscription, error) {
	intent, err := s.repo.FindByID(ctx, req.IntentID)
	if err != nil {
		return nil, fmt.Errorf("service.ConfirmSubscriptionPayment: %w", err)
	}
	if intent.CustomerID != customerID || !intent.SubscriptionID.Valid {
		return nil, models.ErrNotFound
	}

	sub, err := s.subscriptions.GetSubscriptionForCustomer(ctx, intent.SubscriptionID.String, customerID)
	if err != nil {
		return nil, err
	}

	verified := intent.Amount == sub.TotalAmount() &&
		VerifySignature(req.IntentID, req.PaymentID, req.Signature, s.secret)

	updated, err := s.subscriptions.RecordPaymentResult(ctx, sub.ID, verified)
	if err != nil {
		return nil, err
	}

	if err := s.settleIntent(ctx, intent, verified); err != nil {
		return nil, err
	}
	if verified && s.notifier != nil {
		s.notifier.PaymentReceived(ctx, intent)
	}
	return updated, nil
}

func (s *Service) settleIntent(ctx context.Context, intent *models.PaymentIntent, verified bool) error {
	status := models.IntentFailed
	if verified {
		status = models.IntentPaid
	}
	if err := s.repo.UpdateStatus(ctx, intent.ID, status); err != nil {
		return fmt.Errorf("service.settleIntent %s: %w", intent.ID, err)
	}
	return nil
}
