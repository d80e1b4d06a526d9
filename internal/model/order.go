package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// Order is one confirmed checkout, keyed by the reference number issued by
// the upstream booking gateway.  The reference number is the join key
// between the gateway's booking record and this local order row, so it is
// immutable and unique.
//
// Fields:
//  ID            – primary key identifier.
//  ReferenceNo   – gateway-issued reference, unique and immutable.
//  CustomerName  – optional customer name.
//  CustomerEmail – optional customer email.
//  CustomerPhone – optional customer phone.
//  MovieTitle    – movie shown on the ticket.
//  CinemaName    – cinema location.
//  HallName      – hall within the cinema.
//  ShowTime      – scheduled show time (nullable).
//  Seats         – ordered seat identifiers, persisted as JSON.
//  TicketType    – e.g. "Adult", "Student".
//  TotalAmount   – fixed-point ticket total, never negative.
//  PaymentStatus – PENDING/PAID/FAILED/CANCELLED.
//  PaymentMethod – defaults to "Online".
//  Status        – order-level status, defaults to CONFIRMED.
//  CreatedAt     – server-assigned creation timestamp.
//  UpdatedAt     – server-assigned last-update timestamp.
type Order struct {
    ID            uint64          `json:"id"`
    ReferenceNo   string          `json:"reference_no"`
    CustomerName  *string         `json:"customer_name,omitempty"`
    CustomerEmail *string         `json:"customer_email,omitempty"`
    CustomerPhone *string         `json:"customer_phone,omitempty"`
    MovieTitle    string          `json:"movie_title"`
    CinemaName    string          `json:"cinema_name,omitempty"`
    HallName      string          `json:"hall_name,omitempty"`
    ShowTime      *time.Time      `json:"show_time,omitempty"`
    Seats         []string        `json:"seats"`
    TicketType    string          `json:"ticket_type,omitempty"`
    TotalAmount   decimal.Decimal `json:"total_amount"`
    PaymentStatus PaymentStatus   `json:"payment_status"`
    PaymentMethod string          `json:"payment_method"`
    Status        string          `json:"status"`
    CreatedAt     time.Time       `json:"created_at"`
    UpdatedAt     time.Time       `json:"updated_at"`
}

// DefaultPaymentMethod is assigned when a checkout does not name one.
const DefaultPaymentMethod = "Online"
