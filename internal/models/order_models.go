package models

import (
	"database/sql"
	"time"
)

// OrderStatus is the single enumerated delivery state of an order.
type OrderStatus string

const (
	OrderPlaced         OrderStatus = "placed"
	OrderConfirmed      OrderStatus = "confirmed"
	OrderPreparing      OrderStatus = "preparing"
	OrderOutForDelivery OrderStatus = "out_for_delivery"
	OrderDelivered      OrderStatus = "delivered"
	OrderCancelled      OrderStatus = "cancelled"
)

// orderPipeline maps each forward status to the status it must be entered
// from. Orders advance one step at a time; anything else is rejected.
var orderPipeline = map[OrderStatus]OrderStatus{
	OrderConfirmed:      OrderPlaced,
	OrderPreparing:      OrderConfirmed,
	OrderOutForDelivery: OrderPreparing,
	OrderDelivered:      OrderOutForDelivery,
}

// RequiredPredecessor returns the status an order must currently be in for
// the given forward transition to be legal. ok is false for statuses that
// are not forward pipeline steps (placed, cancelled).
func (s OrderStatus) RequiredPredecessor() (OrderStatus, bool) {
	prev, ok := orderPipeline[s]
	return prev, ok
}

// IsTerminal reports whether no further status transition is permitted.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// PaymentStatus tracks the settlement state of an order or subscription.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// Order represents one customer purchase of one menu on one delivery date.
// All monetary amounts are integer minor currency units (paise); UnitAmount
// and TotalAmount are snapshots taken at placement time and never change
// when the catalog price does.
type Order struct {
	ID            string         `json:"id"`
	CustomerID    string         `json:"customer_id"`
	VendorID      string         `json:"vendor_id"`
	MenuID        string         `json:"menu_id"`
	Quantity      int            `json:"quantity"`
	UnitAmount    int64          `json:"unit_amount"`
	TotalAmount   int64          `json:"total_amount"`
	Currency      string         `json:"currency"`
	DeliveryDate  time.Time      `json:"delivery_date"`
	DeliverySlot  string         `json:"delivery_slot"`
	AddressID     string         `json:"address_id"`
	Instructions  sql.NullString `json:"instructions,omitempty"`
	PaymentMethod string         `json:"payment_method"`
	PaymentStatus PaymentStatus  `json:"payment_status"`
	Status        OrderStatus    `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// PlaceOrderRequest is the body for creating a new order.
type PlaceOrderRequest struct {
	MenuID        string `json:"menu_id" validate:"required"`
	Quantity      int    `json:"quantity" validate:"required,gt=0"`
	DeliveryDate  string `json:"delivery_date" validate:"required,datetime=2006-01-02"`
	DeliverySlot  string `json:"delivery_slot" validate:"required,oneof=breakfast lunch dinner"`
	AddressID     string `json:"address_id" validate:"required"`
	Instructions  string `json:"instructions,omitempty" validate:"omitempty,max=500"`
	PaymentMethod string `json:"payment_method" validate:"required,oneof=upi card netbanking cod"`
}

// AdvanceOrderRequest is the body for a vendor moving an order one step
// forward along the delivery pipeline.
type AdvanceOrderRequest struct {
	Status OrderStatus `json:"status" validate:"required,oneof=confirmed preparing out_for_delivery delivered"`
}
