package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")

	// Checkout validation failures. These are rejected before any side effect.
	ErrEmptyCart            = errors.New("cart is empty")
	ErrInvalidAddress       = errors.New("shipping address is incomplete")
	ErrInvalidPaymentMethod = errors.New("unknown payment method")

	// ErrInsufficientStock is returned when a reservation cannot be satisfied.
	// Any partial reservations of the same checkout have been released.
	ErrInsufficientStock = errors.New("insufficient stock")

	// Reconciliation transition failures. State is never mutated when these
	// are returned.
	ErrAlreadyPaid      = errors.New("order already paid")
	ErrNotYetPaid       = errors.New("order not yet paid")
	ErrAlreadyDelivered = errors.New("order already delivered")
)
