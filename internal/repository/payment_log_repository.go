package repository

import (
    "context"
    "database/sql"
    "encoding/json"
    "time"
)

// PaymentLogRecord mirrors the schema of the payment_logs table.  Rows are
// append-only: the table has no UPDATE or DELETE path in this codebase, so
// a row is a permanent record of one gateway interaction.
type PaymentLogRecord struct {
    ID            uint64
    OrderID       *uint64
    ReferenceNo   string
    TransactionNo string
    Status        string
    IsSuccess     bool
    Payload       json.RawMessage
    CreatedAt     time.Time
}

// PaymentLogFilter narrows a List query.  Search matches the order id,
// reference number or transaction number as free text.  Status matches the
// gateway-reported status string exactly.  IsSuccess, when non-nil,
// restricts to successful or failed interactions.  Page starts at 1.
type PaymentLogFilter struct {
    Search    string
    Status    string
    IsSuccess *bool
    Page      int
    Limit     int
}

// PaymentLogRepo provides append and query access to the payment_logs
// table.  There is intentionally no update or delete method.
type PaymentLogRepo struct {
    db *sql.DB
}

// NewPaymentLogRepo returns a new PaymentLogRepo bound to the given database.
func NewPaymentLogRepo(db *sql.DB) *PaymentLogRepo { return &PaymentLogRepo{db: db} }

// execer is satisfied by both *sql.DB and *sql.Tx so that appendLog can
// participate in the order-creation transaction as well as run standalone.
type execer interface {
    ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// appendLog inserts one payment log row via the supplied executor.  The
// created_at column is assigned by the database.
func appendLog(ctx context.Context, ex execer, rec *PaymentLogRecord) error {
    const q = `INSERT INTO payment_logs (order_id, reference_no, transaction_no, status, is_success, payload)
               VALUES (?, ?, ?, ?, ?, ?)`
    payload := rec.Payload
    if len(payload) == 0 {
        payload = json.RawMessage("{}")
    }
    result, err := ex.ExecContext(ctx, q,
        rec.OrderID, rec.ReferenceNo, rec.TransactionNo, rec.Status, rec.IsSuccess, []byte(payload),
    )
    if err != nil {
        return err
    }
    if id, err := result.LastInsertId(); err == nil {
        rec.ID = uint64(id)
    }
    return nil
}

// Append writes one audit row outside of any transaction.  Callers treat a
// failure here as reportable but never fatal to their primary operation.
func (r *PaymentLogRepo) Append(ctx context.Context, rec *PaymentLogRecord) error {
    return appendLog(ctx, r.db, rec)
}

// List returns one page of payment log rows matching the filter together
// with the total number of matching rows, newest first.  The total allows
// callers to compute a page count without a second round trip.
func (r *PaymentLogRepo) List(ctx context.Context, f PaymentLogFilter) ([]PaymentLogRecord, int64, error) {
    where := " WHERE 1=1"
    args := make([]interface{}, 0, 5)
    if f.Search != "" {
        where += " AND (reference_no LIKE ? OR transaction_no LIKE ? OR CAST(order_id AS CHAR) LIKE ?)"
        like := "%" + f.Search + "%"
        args = append(args, like, like, like)
    }
    if f.Status != "" {
        where += " AND status = ?"
        args = append(args, f.Status)
    }
    if f.IsSuccess != nil {
        where += " AND is_success = ?"
        args = append(args, *f.IsSuccess)
    }

    var total int64
    if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM payment_logs"+where, args...).Scan(&total); err != nil {
        return nil, 0, err
    }

    page := f.Page
    if page < 1 {
        page = 1
    }
    limit := f.Limit
    if limit < 1 {
        limit = 20
    }
    offset := (page - 1) * limit

    q := `SELECT id, order_id, reference_no, transaction_no, status, is_success, payload, created_at
          FROM payment_logs` + where + ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
    rows, err := r.db.QueryContext(ctx, q, append(args, limit, offset)...)
    if err != nil {
        return nil, 0, err
    }
    defer rows.Close()

    logs := make([]PaymentLogRecord, 0, limit)
    for rows.Next() {
        var rec PaymentLogRecord
        var orderID sql.NullInt64
        var payload []byte
        if err := rows.Scan(&rec.ID, &orderID, &rec.ReferenceNo, &rec.TransactionNo,
            &rec.Status, &rec.IsSuccess, &payload, &rec.CreatedAt); err != nil {
            return nil, 0, err
        }
        if orderID.Valid {
            id := uint64(orderID.Int64)
            rec.OrderID = &id
        }
        rec.Payload = json.RawMessage(payload)
        logs = append(logs, rec)
    }
    if err := rows.Err(); err != nil {
        return nil, 0, err
    }
    return logs, total, nil
}
