package models

import (
	"database/sql"
	"time"
)

// Feedback is the single review a customer may file for a delivered order.
type Feedback struct {
	ID             string         `json:"id"`
	OrderID        string         `json:"order_id"`
	VendorID       string         `json:"vendor_id"`
	CustomerID     string         `json:"customer_id"`
	Rating         int            `json:"rating"`
	Comment        sql.NullString `json:"comment,omitempty"`
	VendorResponse sql.NullString `json:"vendor_response,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// SubmitFeedbackRequest is the body for reviewing a delivered order.
type SubmitFeedbackRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment,omitempty" validate:"omitempty,max=1000"`
}

// VendorResponseRequest is the body for a vendor replying to a review.
type VendorResponseRequest struct {
	Response string `json:"response" validate:"required,max=1000"`
}

// VendorRating aggregates all ratings filed against one vendor. Average is
// the arithmetic mean rounded to one decimal place; zero reviews yield an
// average of 0, not an error.
type VendorRating struct {
	VendorID      string  `json:"vendor_id"`
	Count         int     `json:"count"`
	AverageRating float64 `json:"average_rating"`
}
