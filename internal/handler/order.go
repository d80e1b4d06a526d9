package handler

import (
    "context"
    "encoding/json"
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/shopspring/decimal"

    "github.com/amirulhm/cinema-booking-core/internal/model"
    "github.com/amirulhm/cinema-booking-core/internal/queue"
    "github.com/amirulhm/cinema-booking-core/internal/repository"
)

// OrderHandler ingests confirmed checkouts into the local order store.
// The endpoint is called after the upstream payment already succeeded, so
// creation defaults the payment status to PAID and must be idempotent on
// the gateway reference number: replaying the same checkout returns the
// stored row instead of creating a duplicate or failing.
type OrderHandler struct {
    Orders  OrderStore
    Logs    PaymentLogStore
    Publish func(ctx context.Context, ev queue.OrderConfirmedEvent) error // optional, best-effort
}

// NewOrderHandler constructs an OrderHandler.  Publish may be nil when no
// broker is configured.
func NewOrderHandler(orders OrderStore, logs PaymentLogStore, publish func(ctx context.Context, ev queue.OrderConfirmedEvent) error) *OrderHandler {
    if orders == nil || logs == nil {
        panic("nil store passed to NewOrderHandler")
    }
    return &OrderHandler{Orders: orders, Logs: logs, Publish: publish}
}

// createOrderRequest is the checkout-completion payload.
type createOrderRequest struct {
    ReferenceNo   string   `json:"reference_no"`
    CustomerName  string   `json:"customer_name"`
    CustomerEmail string   `json:"customer_email"`
    CustomerPhone string   `json:"customer_phone"`
    MovieTitle    string   `json:"movie_title"`
    CinemaName    string   `json:"cinema_name"`
    HallName      string   `json:"hall_name"`
    ShowTime      string   `json:"show_time"` // RFC3339, optional
    Seats         []string `json:"seats"`
    TicketType    string   `json:"ticket_type"`
    TotalAmount   string   `json:"total_amount"`
    PaymentStatus string   `json:"payment_status"`
    PaymentMethod string   `json:"payment_method"`
    Status        string   `json:"status"`
}

// CreateOrder handles POST /v1/orders.  Required fields are reference_no,
// movie_title and a positive total_amount; everything else is optional
// with documented defaults.  The response is 200 for both a fresh insert
// and a replay of an existing reference, with "created" telling them
// apart.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
    var body createOrderRequest
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.ReferenceNo == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "reference_no is required"})
    }
    if body.MovieTitle == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "movie_title is required"})
    }
    amount, err := decimal.NewFromString(body.TotalAmount)
    if err != nil || !amount.IsPositive() {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "total_amount must be a positive decimal"})
    }

    paymentStatus := model.PaymentPaid
    if body.PaymentStatus != "" {
        paymentStatus, err = model.ParsePaymentStatus(body.PaymentStatus)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payment_status"})
        }
    }
    status := body.Status
    if status == "" {
        status = model.OrderConfirmed
    }
    method := body.PaymentMethod
    if method == "" {
        method = model.DefaultPaymentMethod
    }

    var showTime *time.Time
    if body.ShowTime != "" {
        t, err := time.Parse(time.RFC3339, body.ShowTime)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "show_time must be RFC3339"})
        }
        showTime = &t
    }

    rec := repository.OrderRecord{
        ReferenceNo:   body.ReferenceNo,
        CustomerName:  optString(body.CustomerName),
        CustomerEmail: optString(body.CustomerEmail),
        CustomerPhone: optString(body.CustomerPhone),
        MovieTitle:    body.MovieTitle,
        CinemaName:    body.CinemaName,
        HallName:      body.HallName,
        ShowTime:      showTime,
        Seats:         body.Seats,
        TicketType:    body.TicketType,
        TotalAmount:   amount,
        PaymentStatus: string(paymentStatus),
        PaymentMethod: method,
        Status:        status,
    }
    payload, _ := json.Marshal(body)
    logRec := repository.PaymentLogRecord{
        ReferenceNo: body.ReferenceNo,
        Status:      "ORDER_CREATED",
        IsSuccess:   true,
        Payload:     payload,
    }

    ctx := c.Request().Context()
    created, err := h.Orders.CreateIdempotent(ctx, &rec, &logRec)
    if err != nil {
        if errors.Is(err, repository.ErrConflict) {
            // The winning insert has not committed yet; the caller can
            // safely retry and will get the stored row.
            return c.JSON(http.StatusConflict, echo.Map{"error": "order is being created, retry"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    if created && h.Publish != nil {
        ev := queue.OrderConfirmedEvent{
            OrderID:       rec.ID,
            ReferenceNo:   rec.ReferenceNo,
            MovieTitle:    rec.MovieTitle,
            CinemaName:    rec.CinemaName,
            HallName:      rec.HallName,
            Seats:         rec.Seats,
            TotalAmount:   rec.TotalAmount.StringFixed(2),
            PaymentStatus: rec.PaymentStatus,
            ConfirmedAt:   rec.CreatedAt.UTC().Format(time.RFC3339),
        }
        logger := c.Logger()
        go func() {
            ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
            defer cancel()
            if err := h.Publish(ctx, ev); err != nil {
                logger.Warnf("order.confirmed publish failed for %s: %v", ev.ReferenceNo, err)
            }
        }()
    }

    return c.JSON(http.StatusOK, echo.Map{
        "order":   toOrder(&rec),
        "created": created,
    })
}

// GetOrder handles GET /v1/orders/:reference.  The checkout success page
// uses it to render the confirmed booking.
func (h *OrderHandler) GetOrder(c echo.Context) error {
    ref := c.Param("reference")
    if ref == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "reference is required"})
    }
    rec, err := h.Orders.GetByReference(c.Request().Context(), ref)
    if err != nil {
        if errors.Is(err, repository.ErrOrderNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"order": toOrder(rec)})
}
