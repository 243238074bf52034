package orders

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Call records a single request received by StaticBackend.
type Call struct {
	Method  string
	OrderID string
	Status  Status
}

// Backend call names recorded by StaticBackend.
const (
	CallList         = "list"
	CallDetail       = "detail"
	CallUpdateStatus = "update_status"
	CallDelete       = "delete"
)

// StaticBackend is an in-memory Backend with representative orders, used for local
// development when no backend URL is configured and as a test double.
type StaticBackend struct {
	mu       sync.Mutex
	orders   []OrderDetail
	calls    []Call
	failures map[string]error
}

// NewStaticBackend returns a StaticBackend seeded with the provided details, or with
// representative orders when none are given.
func NewStaticBackend(seed ...OrderDetail) *StaticBackend {
	if len(seed) == 0 {
		seed = sampleOrders(time.Now())
	}
	orders := make([]OrderDetail, 0, len(seed))
	for _, d := range seed {
		orders = append(orders, d.clone())
	}
	return &StaticBackend{
		orders:   orders,
		failures: make(map[string]error),
	}
}

// FailOn makes every subsequent call named method return err. A nil err clears the failure.
func (s *StaticBackend) FailOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, method)
		return
	}
	s.failures[method] = err
}

// Calls returns a copy of the recorded calls.
func (s *StaticBackend) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallsTo returns the recorded calls named method.
func (s *StaticBackend) CallsTo(method string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// List implements Backend.
func (s *StaticBackend) List(_ context.Context, _ string) ([]Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Method: CallList})
	if err := s.failures[CallList]; err != nil {
		return nil, fmt.Errorf("%w: list orders: %w", ErrTransportFailure, err)
	}
	out := make([]Order, 0, len(s.orders))
	for _, d := range s.orders {
		out = append(out, d.Order.clone())
	}
	return out, nil
}

// Detail implements Backend.
func (s *StaticBackend) Detail(_ context.Context, _ string, orderID string) (OrderDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Method: CallDetail, OrderID: orderID})
	if err := s.failures[CallDetail]; err != nil {
		return OrderDetail{}, fmt.Errorf("%w: order detail %s: %w", ErrTransportFailure, orderID, err)
	}
	idx := s.indexOf(orderID)
	if idx < 0 {
		return OrderDetail{}, fmt.Errorf("%w: order detail %s: %w", ErrTransportFailure, orderID, ErrOrderNotFound)
	}
	return s.orders[idx].clone(), nil
}

// UpdateStatus implements Backend. Like the real backend it does not validate the transition.
func (s *StaticBackend) UpdateStatus(_ context.Context, _ string, orderID string, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Method: CallUpdateStatus, OrderID: orderID, Status: status})
	if err := s.failures[CallUpdateStatus]; err != nil {
		return fmt.Errorf("%w: update order %s: %w", ErrTransportFailure, orderID, err)
	}
	idx := s.indexOf(orderID)
	if idx < 0 {
		return fmt.Errorf("%w: update order %s: %w", ErrTransportFailure, orderID, ErrOrderNotFound)
	}
	s.orders[idx].Status = status
	return nil
}

// Delete implements Backend.
func (s *StaticBackend) Delete(_ context.Context, _ string, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Method: CallDelete, OrderID: orderID})
	if err := s.failures[CallDelete]; err != nil {
		return fmt.Errorf("%w: delete order %s: %w", ErrTransportFailure, orderID, err)
	}
	idx := s.indexOf(orderID)
	if idx < 0 {
		return fmt.Errorf("%w: delete order %s: %w", ErrTransportFailure, orderID, ErrOrderNotFound)
	}
	s.orders = append(s.orders[:idx], s.orders[idx+1:]...)
	return nil
}

func (s *StaticBackend) indexOf(orderID string) int {
	for i, d := range s.orders {
		if d.ID == orderID {
			return i
		}
	}
	return -1
}

func sampleOrders(now time.Time) []OrderDetail {
	ring := ProductRef{ID: "6701a9e2c4b1f0d3a8e41a01", Name: "Silver Ring", Color: "silver", Price: decimal.RequireFromString("10.50"), Resolved: true}
	necklace := ProductRef{ID: "6701a9e2c4b1f0d3a8e41a02", Name: "Pearl Necklace", Color: "white", Price: decimal.RequireFromString("42.00"), Resolved: true}
	bracelet := ProductRef{ID: "6701a9e2c4b1f0d3a8e41a03", Name: "Leather Bracelet", Color: "brown", Price: decimal.RequireFromString("15.25"), Resolved: true}

	return []OrderDetail{
		{Order: Order{
			ID:            "6712f0a1b2c3d4e5f6a71052",
			Customer:      Customer{ID: "6650aa01", Username: "linh.nguyen"},
			LineItems:     []LineItem{{ID: "li-1052-1", Quantity: 2, Product: ring}, {ID: "li-1052-2", Quantity: 1, Product: necklace}},
			Amount:        decimal.RequireFromString("63.00"),
			CreatedAt:     now.Add(-9 * time.Hour),
			PaymentMethod: "cod",
			Status:        StatusPending,
		}},
		{Order: Order{
			ID:            "6712f0a1b2c3d4e5f6a71051",
			Customer:      Customer{ID: "6650aa02", Username: "minh.tran"},
			LineItems:     []LineItem{{ID: "li-1051-1", Quantity: 3, Product: bracelet}},
			Amount:        decimal.RequireFromString("45.75"),
			CreatedAt:     now.Add(-26 * time.Hour),
			PaymentMethod: "vnpay",
			Status:        StatusDelivery,
		}},
		{Order: Order{
			ID:            "6712f0a1b2c3d4e5f6a71050",
			Customer:      Customer{ID: "6650aa03", Username: "an.pham"},
			LineItems:     []LineItem{{ID: "li-1050-1", Quantity: 1, Product: necklace}},
			Amount:        decimal.RequireFromString("42.00"),
			CreatedAt:     now.Add(-72 * time.Hour),
			PaymentMethod: "momo",
			Status:        StatusPaid,
		}},
		{Order: Order{
			ID:        "6712f0a1b2c3d4e5f6a71049",
			Customer:  Customer{ID: "6650aa04", Username: "hoa.le"},
			LineItems: []LineItem{{ID: "li-1049-1", Quantity: 1, Product: ring}},
			Amount:    decimal.RequireFromString("10.50"),
			CreatedAt: now.Add(-96 * time.Hour),
			Status:    StatusCancel,
		}},
	}
}
