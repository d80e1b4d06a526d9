package gateway

import (
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "sync/atomic"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

// fakeGateway spins up an httptest server impersonating the upstream
// booking gateway and counts the requests it sees.
type fakeGatewayServer struct {
    *httptest.Server
    tokenCalls   atomic.Int32
    releaseCalls atomic.Int32
    releaseCode  int
    expiresIn    int
}

func newFakeGateway(t *testing.T) *fakeGatewayServer {
    t.Helper()
    f := &fakeGatewayServer{releaseCode: http.StatusOK, expiresIn: 3600}
    mux := http.NewServeMux()

    mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
        f.tokenCalls.Add(1)
        var creds map[string]string
        require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
        if creds["username"] != "guest" || creds["password"] != "guest-pass" {
            w.WriteHeader(http.StatusUnauthorized)
            return
        }
        _ = json.NewEncoder(w).Encode(map[string]interface{}{
            "token":      "tok-123",
            "expires_in": f.expiresIn,
        })
    })

    requireBearer := func(w http.ResponseWriter, r *http.Request) bool {
        if r.Header.Get("Authorization") != "Bearer tok-123" {
            w.WriteHeader(http.StatusUnauthorized)
            return false
        }
        return true
    }

    mux.HandleFunc("/api/bookings/halfway", func(w http.ResponseWriter, r *http.Request) {
        if !requireBearer(w, r) {
            return
        }
        var window map[string]int
        require.NoError(t, json.NewDecoder(r.Body).Decode(&window))
        assert.Equal(t, 2, window["window_start"])
        assert.Equal(t, 50, window["window_size"])
        _ = json.NewEncoder(w).Encode(map[string]interface{}{
            "data": []map[string]interface{}{
                {"reference_no": "HW-1", "booking_datetime": "25-01-2024 10:00:00", "status": 1},
                {"reference_no": "HW-2", "booking_datetime": "25-01-2024 10:05:00", "status": 2},
            },
        })
    })

    mux.HandleFunc("/api/bookings/release", func(w http.ResponseWriter, r *http.Request) {
        if !requireBearer(w, r) {
            return
        }
        f.releaseCalls.Add(1)
        w.WriteHeader(f.releaseCode)
    })

    f.Server = httptest.NewServer(mux)
    t.Cleanup(f.Close)
    return f
}

func newTestClient(f *fakeGatewayServer) *Client {
    return New(Config{
        BaseURL:  f.URL,
        Username: "guest",
        Password: "guest-pass",
        Timeout:  2 * time.Second,
    }, nil)
}

func TestAccessTokenCached(t *testing.T) {
    f := newFakeGateway(t)
    c := newTestClient(f)

    for i := 0; i < 3; i++ {
        tok, err := c.AccessToken(context.Background())
        require.NoError(t, err)
        assert.Equal(t, "tok-123", tok)
    }
    assert.Equal(t, int32(1), f.tokenCalls.Load(), "token is fetched once and reused")
}

func TestAccessTokenRefetchedAfterExpiry(t *testing.T) {
    f := newFakeGateway(t)
    f.expiresIn = 1
    c := newTestClient(f)

    _, err := c.AccessToken(context.Background())
    require.NoError(t, err)
    require.Equal(t, int32(1), f.tokenCalls.Load())

    time.Sleep(1500 * time.Millisecond)

    // The cached token's lifetime has elapsed; serving it now would make
    // every gateway call fail with 401.
    tok, err := c.AccessToken(context.Background())
    require.NoError(t, err)
    assert.Equal(t, "tok-123", tok)
    assert.Equal(t, int32(2), f.tokenCalls.Load(), "an expired token must be refetched, not served from the cache")
}

func TestAccessTokenBadCredentials(t *testing.T) {
    f := newFakeGateway(t)
    c := New(Config{BaseURL: f.URL, Username: "guest", Password: "wrong"}, nil)

    _, err := c.AccessToken(context.Background())
    assert.Error(t, err)
    assert.Equal(t, int32(1), f.tokenCalls.Load())

    // Failures are not cached; the next call retries the fetch.
    _, err = c.AccessToken(context.Background())
    assert.Error(t, err)
    assert.Equal(t, int32(2), f.tokenCalls.Load())
}

func TestListHalfwayBookings(t *testing.T) {
    f := newFakeGateway(t)
    c := newTestClient(f)

    bookings, err := c.ListHalfwayBookings(context.Background(), 2, 50)
    require.NoError(t, err)
    require.Len(t, bookings, 2)
    assert.Equal(t, "HW-1", bookings[0].ReferenceNo)
    assert.Equal(t, "25-01-2024 10:00:00", bookings[0].BookingDateTime)
    assert.Equal(t, 1, bookings[0].Status)
    assert.Equal(t, 2, bookings[1].Status)
}

func TestReleaseSuccess(t *testing.T) {
    f := newFakeGateway(t)
    c := newTestClient(f)

    require.NoError(t, c.Release(context.Background(), "HW-1"))
    assert.Equal(t, int32(1), f.releaseCalls.Load())
}

func TestReleaseNotFoundIsNoOp(t *testing.T) {
    f := newFakeGateway(t)
    f.releaseCode = http.StatusNotFound
    c := newTestClient(f)

    assert.NoError(t, c.Release(context.Background(), "GONE"),
        "a reference the gateway no longer tracks is already released")
}

func TestReleaseServerErrorPropagates(t *testing.T) {
    f := newFakeGateway(t)
    f.releaseCode = http.StatusInternalServerError
    c := newTestClient(f)

    err := c.Release(context.Background(), "HW-1")
    require.Error(t, err)
    assert.Contains(t, err.Error(), "500")
}
