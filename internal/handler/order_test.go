package handler

import (
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "strings"
    "sync"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

// invoke runs a handler against a synthetic JSON request and returns the
// recorder.  Path parameters are applied in the order given.
func invoke(t *testing.T, h echo.HandlerFunc, method, path, body string, paramNames, paramValues []string) *httptest.ResponseRecorder {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(method, path, strings.NewReader(body))
    if body != "" {
        req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    }
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    if len(paramNames) > 0 {
        c.SetParamNames(paramNames...)
        c.SetParamValues(paramValues...)
    }
    require.NoError(t, h(c))
    return rec
}

const validOrderBody = `{
    "reference_no": "CIN-2024-0001",
    "customer_name": "Aina",
    "movie_title": "Dune: Part Two",
    "cinema_name": "Mid Valley",
    "hall_name": "Hall 3",
    "seats": ["E5", "E6"],
    "ticket_type": "Adult",
    "total_amount": "36.00"
}`

func TestCreateOrderValidation(t *testing.T) {
    h := NewOrderHandler(newMemStore(), newMemStore(), nil)

    cases := []struct {
        name string
        body string
    }{
        {"missing reference", `{"movie_title":"Dune","total_amount":"10.00"}`},
        {"missing title", `{"reference_no":"R1","total_amount":"10.00"}`},
        {"zero amount", `{"reference_no":"R1","movie_title":"Dune","total_amount":"0"}`},
        {"negative amount", `{"reference_no":"R1","movie_title":"Dune","total_amount":"-5.00"}`},
        {"garbage amount", `{"reference_no":"R1","movie_title":"Dune","total_amount":"ten"}`},
        {"bad payment status", `{"reference_no":"R1","movie_title":"Dune","total_amount":"10.00","payment_status":"SETTLED"}`},
        {"bad show time", `{"reference_no":"R1","movie_title":"Dune","total_amount":"10.00","show_time":"25-01-2024"}`},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            rec := invoke(t, h.CreateOrder, http.MethodPost, "/v1/orders", tc.body, nil, nil)
            assert.Equal(t, http.StatusBadRequest, rec.Code)
        })
    }
}

func TestCreateOrderDefaults(t *testing.T) {
    store := newMemStore()
    h := NewOrderHandler(store, store, nil)

    rec := invoke(t, h.CreateOrder, http.MethodPost, "/v1/orders", validOrderBody, nil, nil)
    require.Equal(t, http.StatusOK, rec.Code)

    var resp struct {
        Created bool `json:"created"`
        Order   struct {
            ReferenceNo   string   `json:"reference_no"`
            PaymentStatus string   `json:"payment_status"`
            PaymentMethod string   `json:"payment_method"`
            Status        string   `json:"status"`
            Seats         []string `json:"seats"`
            TotalAmount   string   `json:"total_amount"`
        } `json:"order"`
    }
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
    assert.True(t, resp.Created)
    assert.Equal(t, "CIN-2024-0001", resp.Order.ReferenceNo)
    assert.Equal(t, "PAID", resp.Order.PaymentStatus)
    assert.Equal(t, "Online", resp.Order.PaymentMethod)
    assert.Equal(t, "CONFIRMED", resp.Order.Status)
    assert.Equal(t, []string{"E5", "E6"}, resp.Order.Seats)
    assert.Equal(t, "36", resp.Order.TotalAmount)
}

func TestCreateOrderIdempotent(t *testing.T) {
    store := newMemStore()
    h := NewOrderHandler(store, store, nil)

    first := invoke(t, h.CreateOrder, http.MethodPost, "/v1/orders", validOrderBody, nil, nil)
    require.Equal(t, http.StatusOK, first.Code)
    second := invoke(t, h.CreateOrder, http.MethodPost, "/v1/orders", validOrderBody, nil, nil)
    require.Equal(t, http.StatusOK, second.Code)

    var r1, r2 struct {
        Created bool `json:"created"`
        Order   struct {
            ID uint64 `json:"id"`
        } `json:"order"`
    }
    require.NoError(t, json.Unmarshal(first.Body.Bytes(), &r1))
    require.NoError(t, json.Unmarshal(second.Body.Bytes(), &r2))

    assert.True(t, r1.Created)
    assert.False(t, r2.Created, "replay must not create a second order")
    assert.Equal(t, r1.Order.ID, r2.Order.ID, "replay must return the original row")
    assert.Equal(t, 1, store.orderCount())
}

func TestCreateOrderConcurrentSameReference(t *testing.T) {
    store := newMemStore()
    h := NewOrderHandler(store, store, nil)

    const n = 16
    var wg sync.WaitGroup
    codes := make([]int, n)
    for i := 0; i < n; i++ {
        wg.Add(1)
        go func(i int) {
            defer wg.Done()
            e := echo.New()
            req := httptest.NewRequest(http.MethodPost, "/v1/orders", strings.NewReader(validOrderBody))
            req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
            rec := httptest.NewRecorder()
            if err := h.CreateOrder(e.NewContext(req, rec)); err == nil {
                codes[i] = rec.Code
            }
        }(i)
    }
    wg.Wait()

    for i, code := range codes {
        assert.Equal(t, http.StatusOK, code, "request %d", i)
    }
    assert.Equal(t, 1, store.orderCount(), "concurrent creations must converge on one row")
}

func TestGetOrder(t *testing.T) {
    store := newMemStore()
    h := NewOrderHandler(store, store, nil)
    invoke(t, h.CreateOrder, http.MethodPost, "/v1/orders", validOrderBody, nil, nil)

    found := invoke(t, h.GetOrder, http.MethodGet, "/v1/orders/CIN-2024-0001", "",
        []string{"reference"}, []string{"CIN-2024-0001"})
    assert.Equal(t, http.StatusOK, found.Code)

    missing := invoke(t, h.GetOrder, http.MethodGet, "/v1/orders/NOPE", "",
        []string{"reference"}, []string{"NOPE"})
    assert.Equal(t, http.StatusNotFound, missing.Code)
}
