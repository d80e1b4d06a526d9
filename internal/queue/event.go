// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderConfirmedEvent is published when a checkout is ingested as a local
// order.  It contains enough information for downstream consumers to
// notify the customer or feed analytics without querying the primary
// database.
type OrderConfirmedEvent struct {
    OrderID       uint64   `json:"order_id"`
    ReferenceNo   string   `json:"reference_no"`
    MovieTitle    string   `json:"movie_title"`
    CinemaName    string   `json:"cinema_name"`
    HallName      string   `json:"hall_name"`
    Seats         []string `json:"seats"`
    TotalAmount   string   `json:"total_amount"`
    PaymentStatus string   `json:"payment_status"`
    ConfirmedAt   string   `json:"confirmed_at"`
}
