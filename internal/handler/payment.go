package handler

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/amirulhm/cinema-booking-core/internal/model"
    "github.com/amirulhm/cinema-booking-core/internal/repository"
    "github.com/amirulhm/cinema-booking-core/internal/signature"
)

// PaymentHandler verifies gateway callbacks and reconciles payment status.
// Signature verification is pure; status reconciliation enforces the
// payment state machine and records every attempt in the audit log.
type PaymentHandler struct {
    SecretKey string
    Orders    OrderStore
    Logs      PaymentLogStore
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(secretKey string, orders OrderStore, logs PaymentLogStore) *PaymentHandler {
    if orders == nil || logs == nil {
        panic("nil store passed to NewPaymentHandler")
    }
    return &PaymentHandler{SecretKey: secretKey, Orders: orders, Logs: logs}
}

// VerifySignature handles POST /v1/payment/verify.  The body is the raw
// field map the gateway posted back, including its signature entry.  The
// outcome is always 200 with {"valid": bool}; a missing or forged
// signature is a normal false, not an error, so callers can branch
// without exception handling.
func (h *PaymentHandler) VerifySignature(c echo.Context) error {
    var payload map[string]interface{}
    if err := c.Bind(&payload); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }

    fields := make(map[string]string, len(payload))
    for k, v := range payload {
        switch t := v.(type) {
        case string:
            fields[k] = t
        case nil:
            fields[k] = ""
        default:
            fields[k] = fmt.Sprint(t)
        }
    }
    valid := signature.Verify(fields, h.SecretKey)

    raw, _ := json.Marshal(payload)
    h.appendLog(c, &repository.PaymentLogRecord{
        ReferenceNo:   fields["reference_no"],
        TransactionNo: fields["transaction_no"],
        Status:        "SIGNATURE_VERIFY",
        IsSuccess:     valid,
        Payload:       raw,
    })

    return c.JSON(http.StatusOK, echo.Map{"valid": valid})
}

// updateStatusRequest reconciles a payment status by reference number.
type updateStatusRequest struct {
    ReferenceNo   string `json:"reference_no"`
    PaymentStatus string `json:"payment_status"`
    PaymentMethod string `json:"payment_method"`
    TransactionNo string `json:"transaction_no"`
}

// UpdateStatus handles POST /v1/payment/update-status.  The new status
// must be a known value and the transition must be a legal edge of the
// payment state machine; re-applying the current status is a no-op
// success.
func (h *PaymentHandler) UpdateStatus(c echo.Context) error {
    var body updateStatusRequest
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.ReferenceNo == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "reference_no is required"})
    }
    target, err := model.ParsePaymentStatus(body.PaymentStatus)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payment_status"})
    }

    ord, err := h.Orders.GetByReference(c.Request().Context(), body.ReferenceNo)
    if err != nil {
        if errors.Is(err, repository.ErrOrderNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return h.applyPaymentStatus(c, ord, target, body.PaymentMethod, body.TransactionNo)
}

// applyPaymentStatus runs the shared transition logic for both the
// gateway-callback path and the admin override path.  The update is a
// compare-and-set against the status that was read, so two racing
// reconciliations cannot both win; the loser re-reads and either finds
// the target already applied (idempotent success) or reports a conflict.
func (h *PaymentHandler) applyPaymentStatus(c echo.Context, ord *repository.OrderRecord, target model.PaymentStatus, method, transactionNo string) error {
    ctx := c.Request().Context()
    from := model.PaymentStatus(ord.PaymentStatus)

    logRec := repository.PaymentLogRecord{
        OrderID:       &ord.ID,
        ReferenceNo:   ord.ReferenceNo,
        TransactionNo: transactionNo,
        Status:        "STATUS_" + string(target),
    }

    if from == target {
        logRec.IsSuccess = true
        h.appendLog(c, &logRec)
        return c.JSON(http.StatusOK, echo.Map{"order": toOrder(ord), "changed": false})
    }
    if !model.CanTransition(from, target) {
        h.appendLog(c, &logRec)
        return c.JSON(http.StatusConflict, echo.Map{
            "error": "illegal payment status transition",
            "from":  from,
            "to":    target,
        })
    }

    ok, err := h.Orders.UpdatePaymentStatus(ctx, ord.ID, from, target, method)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if !ok {
        // Lost the compare-and-set; decide from the fresh row.
        cur, err := h.Orders.GetByID(ctx, ord.ID)
        if err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
        }
        if model.PaymentStatus(cur.PaymentStatus) == target {
            logRec.IsSuccess = true
            h.appendLog(c, &logRec)
            return c.JSON(http.StatusOK, echo.Map{"order": toOrder(cur), "changed": false})
        }
        h.appendLog(c, &logRec)
        return c.JSON(http.StatusConflict, echo.Map{
            "error": "payment status changed concurrently",
            "from":  cur.PaymentStatus,
            "to":    target,
        })
    }

    cur, err := h.Orders.GetByID(ctx, ord.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    logRec.IsSuccess = true
    h.appendLog(c, &logRec)
    return c.JSON(http.StatusOK, echo.Map{"order": toOrder(cur), "changed": true})
}

// appendLog records an audit row and only warns on failure: losing a log
// line must never roll back or fail the caller's primary operation.
func (h *PaymentHandler) appendLog(c echo.Context, rec *repository.PaymentLogRecord) {
    if err := h.Logs.Append(context.WithoutCancel(c.Request().Context()), rec); err != nil {
        c.Logger().Warnf("payment log append failed (ref=%s status=%s): %v", rec.ReferenceNo, rec.Status, err)
    }
}
