package models

import (
	"database/sql"
	"time"
)

// IntentStatus tracks the local view of a gateway payment intent.
type IntentStatus string

const (
	IntentCreated IntentStatus = "created"
	IntentPaid    IntentStatus = "paid"
	IntentFailed  IntentStatus = "failed"
)

// PaymentIntent is the local record of a provider-side intent. Amount is in
// integer minor currency units and is the value reconciled against the
// order's stored total before any verification result is trusted.
type PaymentIntent struct {
	ID             string         `json:"id"`
	CustomerID     string         `json:"customer_id"`
	OrderID        sql.NullString `json:"order_id,omitempty"`
	SubscriptionID sql.NullString `json:"subscription_id,omitempty"`
	Amount         int64          `json:"amount"`
	Currency       string         `json:"currency"`
	Receipt        string         `json:"receipt"`
	Status         IntentStatus   `json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// CreateIntentRequest is the body for opening a payment intent. Amount is in
// major currency units as entered by the client; the service converts to
// minor units before anything touches the gateway.
type CreateIntentRequest struct {
	OrderID        string  `json:"order_id,omitempty" validate:"required_without=SubscriptionID,excluded_with=SubscriptionID"`
	SubscriptionID string  `json:"subscription_id,omitempty" validate:"required_without=OrderID"`
	Amount         float64 `json:"amount" validate:"required,gt=0"`
	Currency       string  `json:"currency" validate:"required,len=3,uppercase"`
	Receipt        string  `json:"receipt,omitempty" validate:"omitempty,max=40"`
}

// ConfirmPaymentRequest carries the (intent id, payment id, signature)
// triple the gateway hands the client after checkout. The signature, not
// any client-supplied success flag, is the sole basis for trust.
type ConfirmPaymentRequest struct {
	IntentID  string `json:"intent_id" validate:"required"`
	PaymentID string `json:"payment_id" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}
