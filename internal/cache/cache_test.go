package cache

import (
    "context"
    "errors"
    "fmt"
    "sync"
    "sync/atomic"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestGetSetDelete(t *testing.T) {
    c := New(8)

    _, ok := c.Get("missing")
    assert.False(t, ok)

    c.Set("k", "v", time.Minute)
    v, ok := c.Get("k")
    require.True(t, ok)
    assert.Equal(t, "v", v)

    c.Delete("k")
    _, ok = c.Get("k")
    assert.False(t, ok)
}

func TestExpiry(t *testing.T) {
    c := New(8)
    c.Set("short", "v", 10*time.Millisecond)
    c.Set("forever", "v", 0)

    time.Sleep(30 * time.Millisecond)

    _, ok := c.Get("short")
    assert.False(t, ok, "expired entry must not be returned")
    _, ok = c.Get("forever")
    assert.True(t, ok, "zero ttl means no expiry")
}

func TestBoundedEviction(t *testing.T) {
    c := New(3)
    for i := 0; i < 3; i++ {
        c.Set(fmt.Sprintf("k%d", i), i, time.Duration(i+1)*time.Hour)
    }
    // A fourth insert evicts the entry closest to expiry (k0).
    c.Set("k3", 3, 4*time.Hour)

    _, ok := c.Get("k0")
    assert.False(t, ok)
    for _, k := range []string{"k1", "k2", "k3"} {
        _, ok := c.Get(k)
        assert.True(t, ok, "%s should survive eviction", k)
    }
}

func TestGetOrLoadCachesResult(t *testing.T) {
    c := New(8)
    var calls atomic.Int32
    load := func(context.Context) (interface{}, time.Duration, error) {
        calls.Add(1)
        return "loaded", time.Minute, nil
    }

    for i := 0; i < 3; i++ {
        v, err := c.GetOrLoad(context.Background(), "k", load)
        require.NoError(t, err)
        assert.Equal(t, "loaded", v)
    }
    assert.Equal(t, int32(1), calls.Load(), "subsequent calls hit the cache")
}

func TestGetOrLoadHonorsLoaderTTL(t *testing.T) {
    c := New(8)
    var calls atomic.Int32
    load := func(context.Context) (interface{}, time.Duration, error) {
        calls.Add(1)
        return "loaded", 10 * time.Millisecond, nil
    }

    _, err := c.GetOrLoad(context.Background(), "k", load)
    require.NoError(t, err)

    time.Sleep(30 * time.Millisecond)

    _, err = c.GetOrLoad(context.Background(), "k", load)
    require.NoError(t, err)
    assert.Equal(t, int32(2), calls.Load(), "an entry past its loader-supplied ttl is reloaded")
}

func TestGetOrLoadSingleFlight(t *testing.T) {
    c := New(8)
    var calls atomic.Int32
    gate := make(chan struct{})
    load := func(context.Context) (interface{}, time.Duration, error) {
        calls.Add(1)
        <-gate
        return "loaded", time.Minute, nil
    }

    const n = 10
    var wg sync.WaitGroup
    results := make([]interface{}, n)
    for i := 0; i < n; i++ {
        wg.Add(1)
        go func(i int) {
            defer wg.Done()
            v, err := c.GetOrLoad(context.Background(), "k", load)
            require.NoError(t, err)
            results[i] = v
        }(i)
    }
    time.Sleep(20 * time.Millisecond) // let the goroutines pile onto the flight
    close(gate)
    wg.Wait()

    assert.Equal(t, int32(1), calls.Load(), "concurrent callers share one load")
    for i, v := range results {
        assert.Equal(t, "loaded", v, "caller %d", i)
    }
}

func TestGetOrLoadErrorNotCached(t *testing.T) {
    c := New(8)
    var calls atomic.Int32
    boom := errors.New("boom")
    load := func(context.Context) (interface{}, time.Duration, error) {
        if calls.Add(1) == 1 {
            return nil, 0, boom
        }
        return "recovered", time.Minute, nil
    }

    _, err := c.GetOrLoad(context.Background(), "k", load)
    assert.ErrorIs(t, err, boom)

    v, err := c.GetOrLoad(context.Background(), "k", load)
    require.NoError(t, err)
    assert.Equal(t, "recovered", v, "a failed load leaves the key loadable")
}
