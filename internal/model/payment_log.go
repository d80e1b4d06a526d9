package model

import (
    "encoding/json"
    "time"
)

// PaymentLog is one append-only audit row per payment-gateway interaction.
// Rows are never updated or deleted; replaying the raw payload is the only
// way to reconstruct what the gateway actually sent.  At least one of the
// correlation keys (order ID, reference number, transaction number) is
// populated on every row.
//
// Fields:
//  ID            – primary key identifier.
//  OrderID       – local order, when resolvable (nullable).
//  ReferenceNo   – gateway reference number, when present.
//  TransactionNo – gateway transaction number, when present.
//  Status        – gateway-reported status string.
//  IsSuccess     – whether the interaction succeeded.
//  Payload       – raw gateway payload kept verbatim for audit/replay.
//  CreatedAt     – server-assigned creation timestamp.
type PaymentLog struct {
    ID            uint64          `json:"id"`
    OrderID       *uint64         `json:"order_id,omitempty"`
    ReferenceNo   string          `json:"reference_no,omitempty"`
    TransactionNo string          `json:"transaction_no,omitempty"`
    Status        string          `json:"status"`
    IsSuccess     bool            `json:"is_success"`
    Payload       json.RawMessage `json:"payload,omitempty"`
    CreatedAt     time.Time       `json:"created_at"`
}
