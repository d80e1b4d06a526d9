package handler

import (
    "errors"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/amirulhm/cinema-booking-core/internal/model"
    "github.com/amirulhm/cinema-booking-core/internal/repository"
)

// AdminHandler exposes the back-office side of the payment core: status
// overrides by internal order id and the paginated audit log query.  All
// routes are mounted behind JWT + ADMIN role middleware.
type AdminHandler struct {
    Payments *PaymentHandler
    Logs     PaymentLogStore
}

// NewAdminHandler constructs an AdminHandler.  It reuses the payment
// handler so that admin overrides pass through the same transition guard
// as gateway callbacks.
func NewAdminHandler(payments *PaymentHandler, logs PaymentLogStore) *AdminHandler {
    if payments == nil || logs == nil {
        panic("nil dependency passed to NewAdminHandler")
    }
    return &AdminHandler{Payments: payments, Logs: logs}
}

// SetOrderStatus handles POST /v1/admin/orders/:id/status.  Admins see
// the real reason for a rejected change: unknown status and bad ids are
// 400, illegal transitions are 409 with the offending edge.
func (a *AdminHandler) SetOrderStatus(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
    }
    var body struct {
        PaymentStatus string `json:"payment_status"`
        PaymentMethod string `json:"payment_method"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    target, err := model.ParsePaymentStatus(body.PaymentStatus)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payment_status"})
    }

    ord, err := a.Payments.Orders.GetByID(c.Request().Context(), id)
    if err != nil {
        if errors.Is(err, repository.ErrOrderNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return a.Payments.applyPaymentStatus(c, ord, target, body.PaymentMethod, "")
}

// ListPaymentLogs handles GET /v1/admin/payment-logs with query params
// page, limit, search, status and paymentStatus ("success"/"failed").
// The response carries the total row count and the derived page count so
// the CMS can render pagination without a second request.
func (a *AdminHandler) ListPaymentLogs(c echo.Context) error {
    page, _ := strconv.Atoi(c.QueryParam("page"))
    if page < 1 {
        page = 1
    }
    limit, _ := strconv.Atoi(c.QueryParam("limit"))
    if limit < 1 {
        limit = 20
    }
    if limit > 100 {
        limit = 100
    }

    var isSuccess *bool
    switch c.QueryParam("paymentStatus") {
    case "":
    case "success", "true":
        t := true
        isSuccess = &t
    case "failed", "false":
        f := false
        isSuccess = &f
    default:
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "paymentStatus must be success or failed"})
    }

    filter := repository.PaymentLogFilter{
        Search:    c.QueryParam("search"),
        Status:    c.QueryParam("status"),
        IsSuccess: isSuccess,
        Page:      page,
        Limit:     limit,
    }
    rows, total, err := a.Logs.List(c.Request().Context(), filter)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    logs := make([]model.PaymentLog, 0, len(rows))
    for _, rec := range rows {
        logs = append(logs, toPaymentLog(rec))
    }
    return c.JSON(http.StatusOK, echo.Map{
        "logs":        logs,
        "total":       total,
        "page":        page,
        "limit":       limit,
        "total_pages": totalPages(total, limit),
    })
}
