package model

import "time"

// HalfwayBooking is the read-only view of a seat hold owned by the upstream
// booking gateway.  A half-way booking was locked for checkout but has not
// been confirmed as paid; it either becomes a local Order once payment
// completes or must be released back to sellable inventory.
//
// BookingDateTime is a gateway-formatted wall-clock string in the cinema's
// local timezone (UTC+8).  Use BookingInstant to turn it into an absolute
// point in time before doing any age arithmetic.
type HalfwayBooking struct {
    ReferenceNo     string `json:"reference_no"`
    BookingDateTime string `json:"booking_datetime"`
    Status          int    `json:"status"`
}

// HalfwayStatusLocked marks a booking still locked pending payment.  Only
// locked bookings are candidates for release.
const HalfwayStatusLocked = 1

// bookingTimeLayout is the gateway wire format: DD-MM-YYYY HH:mm:ss.
const bookingTimeLayout = "02-01-2006 15:04:05"

// BookingInstant parses BookingDateTime in the supplied location and
// returns the absolute instant it denotes.  The caller chooses the
// location; business rules pin it to UTC+8 regardless of host timezone.
func (b HalfwayBooking) BookingInstant(loc *time.Location) (time.Time, error) {
    return time.ParseInLocation(bookingTimeLayout, b.BookingDateTime, loc)
}
