package model

import "fmt"

// PaymentStatus enumerates the payment lifecycle of an order.  An order
// enters the system either already PAID (checkout completed upstream) or
// PENDING when an admin records a manual booking.  PAID, FAILED and
// CANCELLED are terminal.
type PaymentStatus string

const (
    PaymentPending   PaymentStatus = "PENDING"
    PaymentPaid      PaymentStatus = "PAID"
    PaymentFailed    PaymentStatus = "FAILED"
    PaymentCancelled PaymentStatus = "CANCELLED"
)

// OrderConfirmed is the default order-level status assigned at ingestion.
// Order status is a separate axis from payment status.
const OrderConfirmed = "CONFIRMED"

// paymentTransitions lists the legal edges of the payment state machine.
// Re-applying the current status is always allowed and treated as a no-op
// by callers; it is not listed here.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
    PaymentPending: {PaymentPaid, PaymentFailed, PaymentCancelled},
    // Terminal states have no outgoing edges.
    PaymentPaid:      {},
    PaymentFailed:    {},
    PaymentCancelled: {},
}

// ParsePaymentStatus validates a raw status string coming from a gateway
// callback or an admin request.  Unknown values are rejected so that a
// typo can never end up persisted on an order.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
    switch PaymentStatus(s) {
    case PaymentPending, PaymentPaid, PaymentFailed, PaymentCancelled:
        return PaymentStatus(s), nil
    }
    return "", fmt.Errorf("unknown payment status %q", s)
}

// CanTransition reports whether moving from one payment status to another
// is a legal edge.  Identity transitions return true so that idempotent
// re-application of the same status succeeds.
func CanTransition(from, to PaymentStatus) bool {
    if from == to {
        return true
    }
    for _, next := range paymentTransitions[from] {
        if next == to {
            return true
        }
    }
    return false
}

// IsTerminal reports whether a payment status admits no further change.
func IsTerminal(s PaymentStatus) bool {
    return len(paymentTransitions[s]) == 0
}
