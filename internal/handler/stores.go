package handler

import (
    "context"

    "github.com/amirulhm/cinema-booking-core/internal/model"
    "github.com/amirulhm/cinema-booking-core/internal/repository"
)

// OrderStore is the slice of the order repository the handlers depend on.
// Declared here so tests can substitute an in-memory store and exercise
// the idempotency and transition rules without a database.
type OrderStore interface {
    CreateIdempotent(ctx context.Context, rec *repository.OrderRecord, logRec *repository.PaymentLogRecord) (bool, error)
    GetByReference(ctx context.Context, referenceNo string) (*repository.OrderRecord, error)
    GetByID(ctx context.Context, id uint64) (*repository.OrderRecord, error)
    UpdatePaymentStatus(ctx context.Context, id uint64, from, to model.PaymentStatus, method string) (bool, error)
}

// PaymentLogStore is the append/query surface of the payment audit log.
type PaymentLogStore interface {
    Append(ctx context.Context, rec *repository.PaymentLogRecord) error
    List(ctx context.Context, f repository.PaymentLogFilter) ([]repository.PaymentLogRecord, int64, error)
}

// toOrder converts a repository record into the response model.
func toOrder(rec *repository.OrderRecord) model.Order {
    return model.Order{
        ID:            rec.ID,
        ReferenceNo:   rec.ReferenceNo,
        CustomerName:  rec.CustomerName,
        CustomerEmail: rec.CustomerEmail,
        CustomerPhone: rec.CustomerPhone,
        MovieTitle:    rec.MovieTitle,
        CinemaName:    rec.CinemaName,
        HallName:      rec.HallName,
        ShowTime:      rec.ShowTime,
        Seats:         rec.Seats,
        TicketType:    rec.TicketType,
        TotalAmount:   rec.TotalAmount,
        PaymentStatus: model.PaymentStatus(rec.PaymentStatus),
        PaymentMethod: rec.PaymentMethod,
        Status:        rec.Status,
        CreatedAt:     rec.CreatedAt,
        UpdatedAt:     rec.UpdatedAt,
    }
}

// toPaymentLog converts a repository record into the response model.
func toPaymentLog(rec repository.PaymentLogRecord) model.PaymentLog {
    return model.PaymentLog{
        ID:            rec.ID,
        OrderID:       rec.OrderID,
        ReferenceNo:   rec.ReferenceNo,
        TransactionNo: rec.TransactionNo,
        Status:        rec.Status,
        IsSuccess:     rec.IsSuccess,
        Payload:       rec.Payload,
        CreatedAt:     rec.CreatedAt,
    }
}

// totalPages computes the page count for offset pagination, rounding up.
func totalPages(total int64, limit int) int64 {
    if limit <= 0 {
        return 0
    }
    return (total + int64(limit) - 1) / int64(limit)
}

// optString returns nil for an empty string so that optional fields are
// stored as NULL instead of "".
func optString(s string) *string {
    if s == "" {
        return nil
    }
    return &s
}
