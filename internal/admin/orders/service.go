package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Backend is the data-access collaborator the controller issues requests through.
type Backend interface {
	// List returns every order known to the backend, in backend order.
	List(ctx context.Context, token string) ([]Order, error)

	// Detail returns the order with resolved product references.
	Detail(ctx context.Context, token, orderID string) (OrderDetail, error)

	// UpdateStatus sets the order status. The updated order returned by the backend is ignored.
	UpdateStatus(ctx context.Context, token, orderID string, status Status) error

	// Delete removes the order.
	Delete(ctx context.Context, token, orderID string) error
}

var (
	// ErrTransportFailure covers network, HTTP-level and decode failures. Backends do not
	// distinguish 4xx from 5xx, so a missing order also surfaces as a transport failure.
	ErrTransportFailure = errors.New("orders: transport failure")
	// ErrOrderNotFound is returned when an operation references an order the controller does not know.
	ErrOrderNotFound = errors.New("orders: order not found")
	// ErrInvalidTransition is returned when a requested status change is not permitted.
	ErrInvalidTransition = errors.New("orders: invalid status transition")
	// ErrConfirmationDeclined short-circuits a delete the user did not confirm. It is not a failure.
	ErrConfirmationDeclined = errors.New("orders: confirmation declined")
	// ErrInvalidPayload is returned when a backend payload fails boundary validation.
	ErrInvalidPayload = errors.New("orders: invalid payload")
)

// Customer is the purchasing account as displayed in the console.
type Customer struct {
	ID       string
	Username string
}

// DisplayName returns the best available label for the customer.
func (c Customer) DisplayName() string {
	if name := strings.TrimSpace(c.Username); name != "" {
		return name
	}
	if id := strings.TrimSpace(c.ID); id != "" {
		return id
	}
	return "N/A"
}

// UnmarshalJSON accepts either a populated account object or a bare account id.
func (c *Customer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*c = Customer{}
		return nil
	}
	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*c = Customer{ID: id}
		return nil
	}
	var wire struct {
		ID       string `json:"_id"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*c = Customer{ID: wire.ID, Username: wire.Username}
	return nil
}

// ProductRef references a product from a line item. List payloads usually carry only the
// id; detail payloads resolve the name, color and price.
type ProductRef struct {
	ID       string
	Name     string
	Color    string
	Price    decimal.Decimal
	Resolved bool
}

// UnmarshalJSON accepts either a bare product id or a resolved product object.
func (p *ProductRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*p = ProductRef{}
		return nil
	}
	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*p = ProductRef{ID: id}
		return nil
	}
	var wire struct {
		ID          string          `json:"_id"`
		ProductName string          `json:"productName"`
		Color       string          `json:"color"`
		Price       decimal.Decimal `json:"price"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*p = ProductRef{
		ID:       wire.ID,
		Name:     wire.ProductName,
		Color:    wire.Color,
		Price:    wire.Price,
		Resolved: true,
	}
	return nil
}

// LineItem is one product-quantity pair within an order.
type LineItem struct {
	ID       string     `json:"_id"`
	Quantity int        `json:"quantity"`
	Product  ProductRef `json:"productId"`
}

// Order is a customer purchase record tracked through the status lifecycle.
type Order struct {
	ID            string
	Customer      Customer
	LineItems     []LineItem
	Amount        decimal.Decimal
	CreatedAt     time.Time
	PaymentMethod string
	Status        Status
}

type orderWire struct {
	ID            string          `json:"_id"`
	UserID        Customer        `json:"userId"`
	Products      []LineItem      `json:"products"`
	Amount        decimal.Decimal `json:"amount"`
	CreatedAt     string          `json:"createdAt"`
	PaymentMethod string          `json:"paymentMethod"`
	Status        string          `json:"status"`
}

// UnmarshalJSON decodes the backend order document. An absent status decodes as pending.
func (o *Order) UnmarshalJSON(data []byte) error {
	var wire orderWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	var created time.Time
	if raw := strings.TrimSpace(wire.CreatedAt); raw != "" {
		ts, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return fmt.Errorf("parse createdAt: %w", err)
		}
		created = ts
	}
	status := Status(strings.ToLower(strings.TrimSpace(wire.Status)))
	if status == "" {
		status = StatusPending
	}
	*o = Order{
		ID:            wire.ID,
		Customer:      wire.UserID,
		LineItems:     wire.Products,
		Amount:        wire.Amount,
		CreatedAt:     created,
		PaymentMethod: strings.TrimSpace(wire.PaymentMethod),
		Status:        status,
	}
	return nil
}

// Validate checks the fields the controller relies on.
func (o Order) Validate() error {
	if strings.TrimSpace(o.ID) == "" {
		return fmt.Errorf("%w: order id is empty", ErrInvalidPayload)
	}
	if !o.Status.Valid() {
		return fmt.Errorf("%w: order %s has unknown status %q", ErrInvalidPayload, o.ID, o.Status)
	}
	if o.Amount.IsNegative() {
		return fmt.Errorf("%w: order %s has negative amount", ErrInvalidPayload, o.ID)
	}
	for i, item := range o.LineItems {
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: order %s line %d has non-positive quantity", ErrInvalidPayload, o.ID, i)
		}
	}
	return nil
}

func (o Order) clone() Order {
	out := o
	if o.LineItems != nil {
		out.LineItems = append([]LineItem(nil), o.LineItems...)
	}
	return out
}

// OrderDetail is an Order whose line items carry resolved products. It is display-only and
// never sent back to the backend.
type OrderDetail struct {
	Order
}

// UnmarshalJSON decodes the detail document.
func (d *OrderDetail) UnmarshalJSON(data []byte) error {
	return d.Order.UnmarshalJSON(data)
}

// Validate checks the order fields and that every line resolved its product.
func (d OrderDetail) Validate() error {
	if err := d.Order.Validate(); err != nil {
		return err
	}
	for i, item := range d.LineItems {
		if !item.Product.Resolved {
			return fmt.Errorf("%w: order %s line %d has no resolved product", ErrInvalidPayload, d.ID, i)
		}
	}
	return nil
}

func (d OrderDetail) clone() OrderDetail {
	return OrderDetail{Order: d.Order.clone()}
}
