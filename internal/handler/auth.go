package handler

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/amirulhm/cinema-booking-core/internal/utils"
)

// AuthHandler issues admin access tokens.  There is a single configured
// back-office account; the password is stored only as a bcrypt hash in
// process configuration.  The token is an opaque bearer credential to the
// CMS frontend, verified by the JWT middleware on /v1/admin routes.
type AuthHandler struct {
    AdminUser     string
    AdminPassHash string
    JWTSecret     string
    AccessTTLMin  int
}

// NewAuthHandler constructs an AuthHandler from configuration values.
func NewAuthHandler(adminUser, adminPassHash, jwtSecret string, accessTTLMin int) *AuthHandler {
    return &AuthHandler{
        AdminUser:     adminUser,
        AdminPassHash: adminPassHash,
        JWTSecret:     jwtSecret,
        AccessTTLMin:  accessTTLMin,
    }
}

// Login handles POST /v1/auth/login.  On valid credentials it returns an
// access token and its expiry; on any mismatch a uniform 401 is returned
// so the response does not reveal whether the username exists.
func (a *AuthHandler) Login(c echo.Context) error {
    var body struct {
        Username string `json:"username"`
        Password string `json:"password"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.Username == "" || body.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and password are required"})
    }
    if body.Username != a.AdminUser || !utils.VerifyPassword(a.AdminPassHash, body.Password) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    }
    tok, err := utils.NewAccessToken(a.JWTSecret, body.Username, "ADMIN", a.AccessTTLMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to issue token"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "access_token": tok.Token,
        "expires_at":   tok.Exp.Format(time.RFC3339),
    })
}
