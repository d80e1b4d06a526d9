package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4" // Echo web framework used for routing

    "github.com/amirulhm/cinema-booking-core/internal/handler"    // handlers implementing the endpoints
    "github.com/amirulhm/cinema-booking-core/internal/middleware" // JWT auth, role checks and rate limiting
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check,
// which load balancers and monitoring probes use to verify liveness.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
}

// RegisterBooking wires the checkout-facing endpoints: idempotent order
// ingestion, order lookup, callback signature verification and payment
// status reconciliation.  These are called by the storefront and by the
// payment gateway, not by humans, so they sit behind the rate limiter
// rather than behind a session.
func RegisterBooking(e *echo.Echo, o *handler.OrderHandler, p *handler.PaymentHandler, limiter echo.MiddlewareFunc) {
    g := e.Group("/v1")
    if limiter != nil {
        g.Use(limiter)
    }
    // Order ingestion is invoked once payment succeeded upstream; replays
    // of the same reference return the stored order.
    g.POST("/orders", o.CreateOrder)
    g.GET("/orders/:reference", o.GetOrder)
    // Gateway callback verification and status reconciliation.
    g.POST("/payment/verify", p.VerifySignature)
    g.POST("/payment/update-status", p.UpdateStatus)
}

// RegisterAdmin wires the back-office surface.  Login is open; everything
// else under /v1/admin requires a valid admin access token.
func RegisterAdmin(e *echo.Echo, auth *handler.AuthHandler, admin *handler.AdminHandler, jwtSecret string) {
    e.POST("/v1/auth/login", auth.Login)

    g := e.Group("/v1/admin")
    g.Use(middleware.JWTAuth(jwtSecret))
    g.Use(middleware.RequireRole("ADMIN"))
    g.POST("/orders/:id/status", admin.SetOrderStatus)
    g.GET("/payment-logs", admin.ListPaymentLogs)
}
