package orders

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	shortIDLength      = 4
	orderIDPrefix      = "ORD..."
	productIDPrefix    = "Pro..."
	unknownPayment     = "unknown"
	missingIDPlacehold = "N/A"
)

// ItemCount returns the total quantity across the order's line items.
func ItemCount(order Order) int {
	total := 0
	for _, item := range order.LineItems {
		total += item.Quantity
	}
	return total
}

// LineTotal returns price*quantity formatted to two decimal places.
func LineTotal(price decimal.Decimal, quantity int) string {
	return price.Mul(decimal.NewFromInt(int64(quantity))).StringFixed(2)
}

// ShortID returns the display form of an order id: a fixed prefix and the last four characters.
func ShortID(id string) string {
	return shorten(orderIDPrefix, id)
}

// ShortProductID returns the display form of a product id.
func ShortProductID(id string) string {
	return shorten(productIDPrefix, id)
}

func shorten(prefix, id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return missingIDPlacehold
	}
	runes := []rune(id)
	if len(runes) > shortIDLength {
		runes = runes[len(runes)-shortIDLength:]
	}
	return prefix + string(runes)
}

// StatusTone maps a status onto a badge tone.
func StatusTone(status Status) string {
	switch status {
	case StatusPaid:
		return "success"
	case StatusCancel:
		return "danger"
	default:
		return "warning"
	}
}

// PaymentMethodLabel returns the payment method or "unknown" when absent.
func PaymentMethodLabel(order Order) string {
	if method := strings.TrimSpace(order.PaymentMethod); method != "" {
		return method
	}
	return unknownPayment
}

// CanAdvance reports whether the advance action should be offered for status.
func CanAdvance(status Status) bool {
	return status.Valid() && !IsTerminal(status)
}
