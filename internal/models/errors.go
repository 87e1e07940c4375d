package models

import "errors"

var (
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when request data is malformed or out of
	// range (e.g., a rating outside 1-5). Nothing is persisted.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidState is returned when an operation is not legal from the
	// entity's current state (e.g., recording a payment result against an
	// order whose payment is already settled). The entity is left unchanged.
	ErrInvalidState = errors.New("operation not allowed in current state")

	// ErrInvalidTransition is returned when a requested status change is not
	// the next step on the delivery pipeline, or the entity moved under a
	// concurrent request. The entity is left unchanged.
	ErrInvalidTransition = errors.New("status transition not permitted")

	// ErrNotEligible is returned when a business rule rejects the request,
	// e.g. feedback for an order that has not been delivered yet.
	ErrNotEligible = errors.New("not eligible for this operation")

	// ErrAlreadyReviewed is returned when feedback already exists for an order.
	ErrAlreadyReviewed = errors.New("feedback has already been submitted for this order")

	// ErrGatewayUnavailable is returned when the payment provider cannot be
	// reached or answers with an error. This service never retries on its
	// own; the caller surfaces the failure and lets the user try again.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
)
