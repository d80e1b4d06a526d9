// Package gateway is the HTTP client for the upstream booking gateway,
// which owns the authoritative seat locks and booking records.  The core
// only consumes it: listing half-way bookings inside a scan window,
// releasing abandoned locks, and obtaining the access token that
// authorizes those calls.
package gateway

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "net/http"
    "time"

    "go.uber.org/zap"

    "github.com/amirulhm/cinema-booking-core/internal/cache"
    "github.com/amirulhm/cinema-booking-core/internal/model"
)

const tokenCacheKey = "gateway:access_token"

// Config carries the connection settings for the upstream gateway.  The
// guest credentials are fixed per deployment and supplied via process
// configuration, never hard-coded.
type Config struct {
    BaseURL  string
    Username string
    Password string
    Timeout  time.Duration
}

// Client talks to the upstream booking gateway over HTTP.  Every call
// carries the configured timeout so no operation can hang indefinitely.
// Access tokens are cached with a TTL and fetched single-flight, so a
// burst of concurrent sweeps performs at most one token request.
type Client struct {
    baseURL  string
    username string
    password string
    http     *http.Client
    tokens   *cache.TTLCache
    log      *zap.Logger
}

// New returns a Client for the given gateway configuration.
func New(cfg Config, log *zap.Logger) *Client {
    if cfg.Timeout <= 0 {
        cfg.Timeout = 10 * time.Second
    }
    if log == nil {
        log = zap.NewNop()
    }
    return &Client{
        baseURL:  cfg.BaseURL,
        username: cfg.Username,
        password: cfg.Password,
        http:     &http.Client{Timeout: cfg.Timeout},
        tokens:   cache.New(4),
        log:      log,
    }
}

type tokenResponse struct {
    Token     string `json:"token"`
    ExpiresIn int    `json:"expires_in"`
}

// AccessToken returns a bearer token for the configured guest credentials,
// reusing a cached token until shortly before it expires.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
    v, err := c.tokens.GetOrLoad(ctx, tokenCacheKey, func(ctx context.Context) (interface{}, time.Duration, error) {
        body, err := json.Marshal(map[string]string{
            "username": c.username,
            "password": c.password,
        })
        if err != nil {
            return nil, 0, err
        }
        var tr tokenResponse
        if err := c.postJSON(ctx, "/api/token", "", bytes.NewReader(body), &tr); err != nil {
            return nil, 0, err
        }
        if tr.Token == "" {
            return nil, 0, fmt.Errorf("gateway: token response missing token")
        }
        // Cache slightly short of the reported lifetime so a token is
        // never used right at its expiry boundary.  A response without a
        // lifetime gets a conservative short one rather than no expiry.
        ttl := time.Duration(tr.ExpiresIn) * time.Second
        if ttl > 30*time.Second {
            ttl -= 30 * time.Second
        } else if ttl <= 0 {
            ttl = 30 * time.Second
        }
        return tr.Token, ttl, nil
    })
    if err != nil {
        return "", err
    }
    return v.(string), nil
}

type halfwayListResponse struct {
    Data []model.HalfwayBooking `json:"data"`
}

// ListHalfwayBookings asks the gateway for the half-way bookings inside
// the given scan window.  The window parameters are passed through as the
// gateway defines them.
func (c *Client) ListHalfwayBookings(ctx context.Context, windowStart, windowSize int) ([]model.HalfwayBooking, error) {
    token, err := c.AccessToken(ctx)
    if err != nil {
        return nil, fmt.Errorf("gateway: access token: %w", err)
    }
    body, err := json.Marshal(map[string]int{
        "window_start": windowStart,
        "window_size":  windowSize,
    })
    if err != nil {
        return nil, err
    }
    var resp halfwayListResponse
    if err := c.postJSON(ctx, "/api/bookings/halfway", token, bytes.NewReader(body), &resp); err != nil {
        return nil, err
    }
    return resp.Data, nil
}

// Release returns the seat lock behind referenceNo to sellable inventory.
// Releasing a booking that is already released or already paid is a safe
// no-op upstream; the gateway answers 404 for a reference it no longer
// tracks and we treat that the same as success.
func (c *Client) Release(ctx context.Context, referenceNo string) error {
    token, err := c.AccessToken(ctx)
    if err != nil {
        return fmt.Errorf("gateway: access token: %w", err)
    }
    body, err := json.Marshal(map[string]string{"reference_no": referenceNo})
    if err != nil {
        return err
    }
    err = c.postJSON(ctx, "/api/bookings/release", token, bytes.NewReader(body), nil)
    if err != nil {
        var se *statusError
        if asStatusError(err, &se) && se.code == http.StatusNotFound {
            c.log.Info("release skipped, booking no longer tracked",
                zap.String("reference_no", referenceNo))
            return nil
        }
        return err
    }
    return nil
}

// statusError carries a non-2xx gateway response code.
type statusError struct {
    code int
    path string
}

func (e *statusError) Error() string {
    return fmt.Sprintf("gateway: %s returned status %d", e.path, e.code)
}

func asStatusError(err error, target **statusError) bool {
    se, ok := err.(*statusError)
    if ok {
        *target = se
    }
    return ok
}

// postJSON issues one POST to path, optionally authorized by token, and
// decodes a JSON response into out when out is non-nil.
func (c *Client) postJSON(ctx context.Context, path, token string, body *bytes.Reader, out interface{}) error {
    req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
    if err != nil {
        return err
    }
    req.Header.Set("Content-Type", "application/json")
    if token != "" {
        req.Header.Set("Authorization", "Bearer "+token)
    }
    resp, err := c.http.Do(req)
    if err != nil {
        return fmt.Errorf("gateway: %s: %w", path, err)
    }
    defer resp.Body.Close()
    if resp.StatusCode < 200 || resp.StatusCode > 299 {
        return &statusError{code: resp.StatusCode, path: path}
    }
    if out == nil {
        return nil
    }
    return json.NewDecoder(resp.Body).Decode(out)
}
