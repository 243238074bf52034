package helpers

import (
	"time"

	"github.com/shopspring/decimal"

	"finitefield.org/orders-admin/internal/admin/orders"
)

// DateLayout is the console's timestamp layout: hour:minute day/month/year.
const DateLayout = "15:04 02/01/2006"

// Money formats a decimal amount in dollars with two decimals.
func Money(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "-$" + amount.Neg().StringFixed(2)
	}
	return "$" + amount.StringFixed(2)
}

// Date formats ts in the local zone. Zero timestamps render as "-".
func Date(ts time.Time, layout string) string {
	if ts.IsZero() {
		return "-"
	}
	if layout == "" {
		layout = DateLayout
	}
	return ts.In(time.Local).Format(layout)
}

// NavClass returns sidebar link classes.
func NavClass(active bool) string {
	if active {
		return "flex items-center gap-2 rounded-md bg-slate-900 px-3 py-2 text-sm font-medium text-white shadow-sm"
	}
	return "flex items-center gap-2 rounded-md px-3 py-2 text-sm font-medium text-slate-600 hover:bg-slate-100 hover:text-slate-900"
}

// BadgeClass maps semantic tones to utility classes.
func BadgeClass(tone string) string {
	switch tone {
	case "success":
		return "inline-flex items-center rounded-full bg-emerald-100 px-2 py-1 text-xs font-medium text-emerald-700"
	case "warning":
		return "inline-flex items-center rounded-full bg-amber-100 px-2 py-1 text-xs font-medium text-amber-700"
	case "danger":
		return "inline-flex items-center rounded-full bg-rose-100 px-2 py-1 text-xs font-medium text-rose-700"
	default:
		return "inline-flex items-center rounded-full bg-slate-100 px-2 py-1 text-xs font-medium text-slate-700"
	}
}

// StatusBadgeClass returns the badge classes for an order status.
func StatusBadgeClass(status orders.Status) string {
	return BadgeClass(orders.StatusTone(status))
}

// ButtonClass returns classes for action buttons of the given tone.
func ButtonClass(tone string) string {
	base := "inline-flex items-center rounded-md px-3 py-1.5 text-sm font-medium shadow-sm disabled:opacity-50 "
	switch tone {
	case "primary":
		return base + "bg-slate-900 text-white hover:bg-slate-700"
	case "danger":
		return base + "bg-rose-600 text-white hover:bg-rose-500"
	default:
		return base + "border border-slate-300 bg-white text-slate-700 hover:bg-slate-50"
	}
}
