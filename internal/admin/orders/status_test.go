package orders

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		current Status
		next    Status
		reason  string
	}{
		{current: StatusPending, next: StatusDelivery},
		{current: StatusDelivery, next: StatusPaid},
		{current: StatusPaid, reason: "order is already paid"},
		{current: StatusCancel, reason: "order is cancelled"},
		{current: Status("shipped"), reason: "unknown status"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(string(tc.current), func(t *testing.T) {
			t.Parallel()

			next, err := NextStatus(tc.current)
			if tc.reason == "" {
				require.NoError(t, err)
				require.Equal(t, tc.next, next)
				require.True(t, CanTransition(tc.current, next))
				return
			}
			require.ErrorIs(t, err, ErrInvalidTransition)
			var transitionErr *StatusTransitionError
			require.True(t, errors.As(err, &transitionErr))
			require.Equal(t, tc.current, transitionErr.From)
			require.Equal(t, tc.reason, transitionErr.Reason)
			require.Empty(t, next)
		})
	}
}

func TestCancelReachableOnlyFromNonTerminal(t *testing.T) {
	t.Parallel()

	require.True(t, CanTransition(StatusPending, StatusCancel))
	require.True(t, CanTransition(StatusDelivery, StatusCancel))
	require.False(t, CanTransition(StatusPaid, StatusCancel))
	require.False(t, CanTransition(StatusCancel, StatusPending))
	require.False(t, CanTransition(StatusPaid, StatusPending))
}

func TestParseStatus(t *testing.T) {
	t.Parallel()

	status, err := ParseStatus("  Delivery ")
	require.NoError(t, err)
	require.Equal(t, StatusDelivery, status)
	require.Equal(t, "Delivery", status.Label())

	_, err = ParseStatus("refunded")
	require.ErrorIs(t, err, ErrInvalidTransition)
}
