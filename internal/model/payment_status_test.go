package model

import (
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
    all := []PaymentStatus{PaymentPending, PaymentPaid, PaymentFailed, PaymentCancelled}

    // PENDING may move to any terminal state.
    for _, to := range []PaymentStatus{PaymentPaid, PaymentFailed, PaymentCancelled} {
        assert.True(t, CanTransition(PaymentPending, to), "PENDING -> %s", to)
    }

    // Terminal states admit nothing but themselves.
    for _, from := range []PaymentStatus{PaymentPaid, PaymentFailed, PaymentCancelled} {
        for _, to := range all {
            want := from == to
            assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
        }
    }

    // Identity is always legal, including for PENDING.
    assert.True(t, CanTransition(PaymentPending, PaymentPending))
}

func TestParsePaymentStatus(t *testing.T) {
    for _, s := range []string{"PENDING", "PAID", "FAILED", "CANCELLED"} {
        got, err := ParsePaymentStatus(s)
        assert.NoError(t, err)
        assert.Equal(t, PaymentStatus(s), got)
    }
    for _, s := range []string{"", "paid", "SETTLED", "Pending ", "REFUNDED"} {
        _, err := ParsePaymentStatus(s)
        assert.Error(t, err, "input %q", s)
    }
}

func TestIsTerminal(t *testing.T) {
    assert.False(t, IsTerminal(PaymentPending))
    assert.True(t, IsTerminal(PaymentPaid))
    assert.True(t, IsTerminal(PaymentFailed))
    assert.True(t, IsTerminal(PaymentCancelled))
}
