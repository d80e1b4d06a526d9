// Package sweeper scans the upstream gateway for half-way bookings that
// were locked for checkout but never paid, and releases the stale ones so
// their seats return to sellable inventory.  One Sweep call is one
// scheduled execution; the cadence is chosen by whatever invokes it.
package sweeper

import (
    "context"
    "time"

    "go.uber.org/zap"

    "github.com/amirulhm/cinema-booking-core/internal/model"
)

// BookingGateway is the slice of the upstream gateway the sweeper needs.
type BookingGateway interface {
    ListHalfwayBookings(ctx context.Context, windowStart, windowSize int) ([]model.HalfwayBooking, error)
    Release(ctx context.Context, referenceNo string) error
}

// Clock supplies the current instant.  Injected so tests can pin "now".
type Clock interface {
    Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// DefaultStaleAfter is the grace window a locked booking gets before its
// seat lock is considered abandoned.
const DefaultStaleAfter = 10 * time.Minute

// cinemaZone is the wall clock the gateway writes bookingDateTime in.
// Pinned to a fixed offset so age math is identical on every host,
// whatever its local timezone.
var cinemaZone = time.FixedZone("MYT", 8*60*60)

// Sweeper decides which half-way bookings are stale.  Booking age is
// computed on the absolute timeline: the gateway's wall-clock string is
// parsed in the cinema's zone (UTC+8) and subtracted from the injected
// clock's current instant.
type Sweeper struct {
    gw          BookingGateway
    clock       Clock
    log         *zap.Logger
    staleAfter  time.Duration
    loc         *time.Location
    autoRelease bool
}

// Option customizes a Sweeper.
type Option func(*Sweeper)

// WithClock replaces the system clock, used by tests to simulate "now".
func WithClock(c Clock) Option {
    return func(s *Sweeper) {
        if c != nil {
            s.clock = c
        }
    }
}

// WithStaleAfter overrides the grace window for locked bookings.
func WithStaleAfter(d time.Duration) Option {
    return func(s *Sweeper) {
        if d > 0 {
            s.staleAfter = d
        }
    }
}

// WithAutoRelease controls whether stale bookings are released upstream or
// only reported.  Deployment policy decides; the release operation itself
// stays independently callable either way.
func WithAutoRelease(enabled bool) Option {
    return func(s *Sweeper) { s.autoRelease = enabled }
}

// WithLogger attaches a structured logger.
func WithLogger(log *zap.Logger) Option {
    return func(s *Sweeper) {
        if log != nil {
            s.log = log
        }
    }
}

// New returns a Sweeper over the given gateway.  Auto-release is enabled
// by default.
func New(gw BookingGateway, opts ...Option) *Sweeper {
    s := &Sweeper{
        gw:          gw,
        clock:       systemClock{},
        log:         zap.NewNop(),
        staleAfter:  DefaultStaleAfter,
        loc:         cinemaZone,
        autoRelease: true,
    }
    for _, opt := range opts {
        opt(s)
    }
    return s
}

// Sweep runs one scan cycle over the given gateway window and returns the
// reference numbers of the bookings found stale (and released, when
// auto-release is on).
//
// Only bookings still locked pending payment (status 1) are candidates;
// a paid or released booking is never touched regardless of age.  A
// gateway failure aborts the cycle and is surfaced to the caller: there
// is no in-process retry loop, the next scheduled invocation is the
// retry.  Releasing is idempotent upstream, so racing a concurrently
// completing payment cannot corrupt anything; the worst case is a release
// that the gateway answers as a no-op.
func (s *Sweeper) Sweep(ctx context.Context, windowStart, windowSize int) ([]string, error) {
    bookings, err := s.gw.ListHalfwayBookings(ctx, windowStart, windowSize)
    if err != nil {
        return nil, err
    }

    now := s.clock.Now()
    var released []string
    for _, b := range bookings {
        if b.Status != model.HalfwayStatusLocked {
            continue
        }
        instant, err := b.BookingInstant(s.loc)
        if err != nil {
            // A malformed timestamp is the gateway's bug; skip the row
            // rather than kill the whole cycle over it.
            s.log.Warn("skipping booking with unparseable datetime",
                zap.String("reference_no", b.ReferenceNo),
                zap.String("booking_datetime", b.BookingDateTime),
                zap.Error(err))
            continue
        }
        age := now.Sub(instant)
        if age <= s.staleAfter {
            continue
        }
        s.log.Info("stale half-way booking",
            zap.String("reference_no", b.ReferenceNo),
            zap.Float64("age_minutes", age.Minutes()),
            zap.Bool("auto_release", s.autoRelease))
        if s.autoRelease {
            if err := s.gw.Release(ctx, b.ReferenceNo); err != nil {
                // Abort the cycle; whatever was released stays released
                // and the remainder is picked up next invocation.
                return released, err
            }
        }
        released = append(released, b.ReferenceNo)
    }
    return released, nil
}
