// Package catalog manages the product catalogue shown in the console.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrTransportFailure covers network, HTTP-level and decode failures.
	ErrTransportFailure = errors.New("catalog: transport failure")
	// ErrInvalidProduct is returned when product input fails validation.
	ErrInvalidProduct = errors.New("catalog: invalid product")
	// ErrConfirmationDeclined short-circuits a delete the user did not confirm.
	ErrConfirmationDeclined = errors.New("catalog: confirmation declined")
)

// Backend is the data-access collaborator for products.
type Backend interface {
	List(ctx context.Context, token string) ([]Product, error)
	Get(ctx context.Context, token, productID string) (Product, error)
	Create(ctx context.Context, token string, input Input) (Product, error)
	Update(ctx context.Context, token, productID string, input Input) (Product, error)
	Delete(ctx context.Context, token, productID string) error
}

// Product is a catalogue entry.
type Product struct {
	ID          string          `json:"_id"`
	Name        string          `json:"productName"`
	Price       decimal.Decimal `json:"price"`
	Color       string          `json:"color"`
	Description string          `json:"des"`
	Badge       bool            `json:"badge"`
	Image       string          `json:"img"`
}

// Input carries the editable product fields as submitted by the form.
type Input struct {
	Name        string
	Price       string
	Color       string
	Description string
	Badge       bool
	Image       string
}

// InputFromProduct prefills the edit form.
func InputFromProduct(p Product) Input {
	return Input{
		Name:        p.Name,
		Price:       p.Price.String(),
		Color:       p.Color,
		Description: p.Description,
		Badge:       p.Badge,
		Image:       p.Image,
	}
}

// ValidationError lists the fields that failed validation, keyed by form field name.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e == nil || len(e.FieldErrors) == 0 {
		return ErrInvalidProduct.Error()
	}
	fields := make([]string, 0, len(e.FieldErrors))
	for field := range e.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+e.FieldErrors[field])
	}
	return fmt.Sprintf("%s (%s)", ErrInvalidProduct.Error(), strings.Join(parts, ", "))
}

// Unwrap lets errors.Is match ErrInvalidProduct.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidProduct
}

// Validate normalises the input and returns the parsed price.
func (in Input) Validate() (Input, decimal.Decimal, error) {
	out := Input{
		Name:        strings.TrimSpace(in.Name),
		Price:       strings.TrimSpace(in.Price),
		Color:       strings.TrimSpace(in.Color),
		Description: strings.TrimSpace(in.Description),
		Badge:       in.Badge,
		Image:       strings.TrimSpace(in.Image),
	}

	fieldErrors := map[string]string{}
	if out.Name == "" {
		fieldErrors["productName"] = "Product name is required."
	}

	var price decimal.Decimal
	if out.Price == "" {
		fieldErrors["price"] = "Price is required."
	} else {
		parsed, err := decimal.NewFromString(out.Price)
		switch {
		case err != nil:
			fieldErrors["price"] = "Price must be a number."
		case parsed.IsNegative():
			fieldErrors["price"] = "Price cannot be negative."
		default:
			price = parsed
		}
	}

	if len(fieldErrors) > 0 {
		return out, decimal.Zero, &ValidationError{FieldErrors: fieldErrors}
	}
	return out, price, nil
}

type productWire struct {
	Name        string `json:"productName"`
	Price       string `json:"price"`
	Color       string `json:"color"`
	Description string `json:"des"`
	Badge       bool   `json:"badge"`
	Image       string `json:"img"`
}

func (in Input) wire(price decimal.Decimal) productWire {
	return productWire{
		Name:        in.Name,
		Price:       price.String(),
		Color:       in.Color,
		Description: in.Description,
		Badge:       in.Badge,
		Image:       in.Image,
	}
}
