// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrOrderNotFound indicates that a reference number or order
// id does not resolve to a stored order, while ErrConflict signals
// that an operation cannot proceed because of conflicting state, such
// as an illegal payment-status transition losing a compare-and-set.
package repository

import "errors"

// ErrOrderNotFound is returned when an order lookup by reference number
// or internal id matches no row. Handlers should translate this into an
// HTTP 404 response.
var ErrOrderNotFound = errors.New("order not found")

// ErrConflict is returned when a write loses a race or would violate
// state that must not change, such as a duplicate reference number that
// cannot be re-read or a payment status that moved underneath a
// compare-and-set update. Handlers should translate this into an HTTP
// 409 response.
var ErrConflict = errors.New("conflict")
