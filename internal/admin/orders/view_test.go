package orders

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestItemCount(t *testing.T) {
	t.Parallel()

	order := Order{LineItems: []LineItem{{Quantity: 2}, {Quantity: 3}}}
	require.Equal(t, 5, ItemCount(order))
	require.Zero(t, ItemCount(Order{}))
}

func TestLineTotal(t *testing.T) {
	t.Parallel()

	require.Equal(t, "31.50", LineTotal(decimal.RequireFromString("10.50"), 3))
	require.Equal(t, "0.30", LineTotal(decimal.RequireFromString("0.1"), 3))
	require.Equal(t, "0.00", LineTotal(decimal.Zero, 4))
}

func TestShortID(t *testing.T) {
	t.Parallel()

	short := ShortID("abcdef1234")
	require.True(t, strings.HasSuffix(short, "1234"))
	require.Equal(t, len(short), len(ShortID("1234")))
	require.Equal(t, len(short), len(ShortID("6712f0a1b2c3d4e5f6a71052")))
	require.Equal(t, "N/A", ShortID(""))
	require.Equal(t, "ORD...ab", ShortID("ab"))
	require.Equal(t, "Pro...1a01", ShortProductID("6701a9e2c4b1f0d3a8e41a01"))
}

func TestStatusToneAndGuards(t *testing.T) {
	t.Parallel()

	require.Equal(t, "success", StatusTone(StatusPaid))
	require.Equal(t, "danger", StatusTone(StatusCancel))
	require.Equal(t, "warning", StatusTone(StatusPending))
	require.Equal(t, "warning", StatusTone(StatusDelivery))
	require.Equal(t, "warning", StatusTone(Status("")))

	require.True(t, CanAdvance(StatusPending))
	require.True(t, CanAdvance(StatusDelivery))
	require.False(t, CanAdvance(StatusPaid))
	require.False(t, CanAdvance(StatusCancel))

	require.Equal(t, "unknown", PaymentMethodLabel(Order{}))
	require.Equal(t, "cod", PaymentMethodLabel(Order{PaymentMethod: "cod"}))
}
