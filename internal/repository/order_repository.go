package repository

import (
    "context"
    "database/sql"
    "encoding/json"
    "errors"
    "time"

    "github.com/go-sql-driver/mysql"
    "github.com/shopspring/decimal"

    "github.com/amirulhm/cinema-booking-core/internal/model"
)

// OrderRecord mirrors the schema of the orders table.  It is used by the
// repository layer when inserting and scanning rows; handlers convert it
// to model.Order for responses.  The reference_no column carries a UNIQUE
// constraint which is the single source of truth for "has this checkout
// already been recorded".
type OrderRecord struct {
    ID            uint64
    ReferenceNo   string
    CustomerName  *string
    CustomerEmail *string
    CustomerPhone *string
    MovieTitle    string
    CinemaName    string
    HallName      string
    ShowTime      *time.Time
    Seats         []string
    TicketType    string
    TotalAmount   decimal.Decimal
    PaymentStatus string
    PaymentMethod string
    Status        string
    CreatedAt     time.Time
    UpdatedAt     time.Time
}

// OrderRepo provides data access to the orders table.  All timestamps are
// stored in UTC.
type OrderRepo struct {
    db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the provided database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderColumns = `id, reference_no, customer_name, customer_email, customer_phone,
    movie_title, cinema_name, hall_name, show_time, seats, ticket_type,
    total_amount, payment_status, payment_method, status, created_at, updated_at`

// isDuplicateKey reports whether err is a MySQL duplicate-entry violation
// (error 1062), which on this table can only come from reference_no.
func isDuplicateKey(err error) bool {
    var me *mysql.MySQLError
    return errors.As(err, &me) && me.Number == 1062
}

// CreateIdempotent inserts a new order together with its audit log entry
// in a single transaction.  The UNIQUE constraint on reference_no is the
// authoritative duplicate check: when the insert reports a duplicate key,
// the existing row is re-read into rec and (false, nil) is returned, so
// concurrent creations with the same reference always converge on one row.
// On success rec is populated with generated id and timestamps and
// (true, nil) is returned.
func (r *OrderRepo) CreateIdempotent(ctx context.Context, rec *OrderRecord, logRec *PaymentLogRecord) (bool, error) {
    seatsJSON, err := json.Marshal(rec.Seats)
    if err != nil {
        return false, err
    }

    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return false, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    const ins = `INSERT INTO orders
        (reference_no, customer_name, customer_email, customer_phone, movie_title,
         cinema_name, hall_name, show_time, seats, ticket_type, total_amount,
         payment_status, payment_method, status)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
    result, err := tx.ExecContext(ctx, ins,
        rec.ReferenceNo, rec.CustomerName, rec.CustomerEmail, rec.CustomerPhone,
        rec.MovieTitle, rec.CinemaName, rec.HallName, rec.ShowTime, seatsJSON,
        rec.TicketType, rec.TotalAmount, rec.PaymentStatus, rec.PaymentMethod, rec.Status,
    )
    if err != nil {
        if isDuplicateKey(err) {
            _ = tx.Rollback()
            // Another request won the insert. Re-read outside the failed
            // transaction and hand the caller the authoritative row.
            existing, readErr := r.GetByReference(ctx, rec.ReferenceNo)
            if readErr != nil {
                if errors.Is(readErr, ErrOrderNotFound) {
                    // The winning transaction has not committed yet.
                    return false, ErrConflict
                }
                return false, readErr
            }
            *rec = *existing
            return false, nil
        }
        return false, err
    }

    id, err := result.LastInsertId()
    if err != nil {
        return false, err
    }
    rec.ID = uint64(id)

    // Read back server-assigned defaults and timestamps.
    row := tx.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, rec.ID)
    if err := scanOrder(row, rec); err != nil {
        return false, err
    }

    if logRec != nil {
        logRec.OrderID = &rec.ID
        if logRec.ReferenceNo == "" {
            logRec.ReferenceNo = rec.ReferenceNo
        }
        if err := appendLog(ctx, tx, logRec); err != nil {
            return false, err
        }
    }

    if err := tx.Commit(); err != nil {
        return false, err
    }
    committed = true
    return true, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanOrder.
type rowScanner interface {
    Scan(dest ...interface{}) error
}

// scanOrder populates rec from a row selected with orderColumns.
func scanOrder(row rowScanner, rec *OrderRecord) error {
    var (
        name, email, phone sql.NullString
        showTime           sql.NullTime
        seatsJSON          []byte
    )
    err := row.Scan(&rec.ID, &rec.ReferenceNo, &name, &email, &phone,
        &rec.MovieTitle, &rec.CinemaName, &rec.HallName, &showTime, &seatsJSON,
        &rec.TicketType, &rec.TotalAmount, &rec.PaymentStatus, &rec.PaymentMethod,
        &rec.Status, &rec.CreatedAt, &rec.UpdatedAt)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return ErrOrderNotFound
        }
        return err
    }
    if name.Valid {
        rec.CustomerName = &name.String
    }
    if email.Valid {
        rec.CustomerEmail = &email.String
    }
    if phone.Valid {
        rec.CustomerPhone = &phone.String
    }
    if showTime.Valid {
        t := showTime.Time
        rec.ShowTime = &t
    }
    rec.Seats = nil
    if len(seatsJSON) > 0 {
        if err := json.Unmarshal(seatsJSON, &rec.Seats); err != nil {
            return err
        }
    }
    return nil
}

// GetByReference looks up an order by its gateway reference number.
func (r *OrderRepo) GetByReference(ctx context.Context, referenceNo string) (*OrderRecord, error) {
    row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE reference_no = ?`, referenceNo)
    var rec OrderRecord
    if err := scanOrder(row, &rec); err != nil {
        return nil, err
    }
    return &rec, nil
}

// GetByID looks up an order by its internal id.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (*OrderRecord, error) {
    row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
    var rec OrderRecord
    if err := scanOrder(row, &rec); err != nil {
        return nil, err
    }
    return &rec, nil
}

// UpdatePaymentStatus overwrites payment_status (and optionally
// payment_method) guarded by the status the caller read.  The WHERE clause
// on the old status makes this a compare-and-set: if another request moved
// the status first, zero rows match and (false, nil) is returned so the
// caller can re-read and decide whether the outcome is still acceptable.
func (r *OrderRepo) UpdatePaymentStatus(ctx context.Context, id uint64, from, to model.PaymentStatus, method string) (bool, error) {
    const q = `UPDATE orders
               SET payment_status = ?,
                   payment_method = IF(? = '', payment_method, ?),
                   updated_at = UTC_TIMESTAMP()
               WHERE id = ? AND payment_status = ?`
    result, err := r.db.ExecContext(ctx, q, string(to), method, method, id, string(from))
    if err != nil {
        return false, err
    }
    n, err := result.RowsAffected()
    if err != nil {
        return false, err
    }
    return n > 0, nil
}
