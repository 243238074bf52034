package orders

import (
	"fmt"
	"strings"
)

// Status represents the lifecycle state of an order.
type Status string

const (
	// StatusPending is the initial state of every order.
	StatusPending Status = "pending"
	// StatusDelivery indicates the order has been handed to delivery.
	StatusDelivery Status = "delivery"
	// StatusPaid is terminal: the order has been paid for.
	StatusPaid Status = "paid"
	// StatusCancel is terminal: the order was cancelled.
	StatusCancel Status = "cancel"
)

// advance is the linear progression applied by AdvanceStatus.
var advance = map[Status]Status{
	StatusPending:  StatusDelivery,
	StatusDelivery: StatusPaid,
}

// allowed lists every permitted transition, including the cancel escape.
var allowed = map[Status]map[Status]bool{
	StatusPending:  {StatusDelivery: true, StatusCancel: true},
	StatusDelivery: {StatusPaid: true, StatusCancel: true},
	StatusPaid:     {},
	StatusCancel:   {},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := allowed[s]
	return ok
}

// Label returns the capitalised status for display.
func (s Status) Label() string {
	if s == "" {
		return ""
	}
	raw := string(s)
	return strings.ToUpper(raw[:1]) + raw[1:]
}

// ParseStatus converts raw input into a known status.
func ParseStatus(raw string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, raw)
	}
	return status, nil
}

// IsTerminal reports whether no further transition is permitted from s.
func IsTerminal(s Status) bool {
	return s == StatusPaid || s == StatusCancel
}

// CanTransition reports whether from -> to is permitted.
func CanTransition(from, to Status) bool {
	return allowed[from][to]
}

// NextStatus returns the status AdvanceStatus moves current to.
func NextStatus(current Status) (Status, error) {
	if next, ok := advance[current]; ok {
		return next, nil
	}
	reason := "unknown status"
	switch current {
	case StatusPaid:
		reason = "order is already paid"
	case StatusCancel:
		reason = "order is cancelled"
	}
	return "", &StatusTransitionError{From: current, Reason: reason}
}

// StatusTransitionError represents a refused status change.
type StatusTransitionError struct {
	From   Status
	To     Status
	Reason string
}

// Error implements the error interface.
func (e *StatusTransitionError) Error() string {
	if e == nil {
		return ErrInvalidTransition.Error()
	}
	reason := e.Reason
	if strings.TrimSpace(reason) == "" {
		reason = "transition not permitted"
	}
	if e.To == "" {
		return "order status transition from " + string(e.From) + ": " + reason
	}
	return "order status transition from " + string(e.From) + " to " + string(e.To) + ": " + reason
}

// Unwrap lets errors.Is match ErrInvalidTransition.
func (e *StatusTransitionError) Unwrap() error {
	return ErrInvalidTransition
}
