package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StaticBackend is an in-memory Backend used for local development and tests.
type StaticBackend struct {
	mu       sync.Mutex
	products []Product
	failures map[string]error
}

// Operation names accepted by FailOn.
const (
	OpList   = "list"
	OpGet    = "get"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// NewStaticBackend seeds the backend with products, or with sample products when none are given.
func NewStaticBackend(seed ...Product) *StaticBackend {
	if len(seed) == 0 {
		seed = []Product{
			{ID: "6701a9e2c4b1f0d3a8e41a01", Name: "Silver Ring", Price: decimal.RequireFromString("10.50"), Color: "silver", Description: "Polished sterling band.", Badge: true, Image: "/images/silver-ring.png"},
			{ID: "6701a9e2c4b1f0d3a8e41a02", Name: "Pearl Necklace", Price: decimal.RequireFromString("42.00"), Color: "white", Description: "Freshwater pearls.", Image: "/images/pearl-necklace.png"},
			{ID: "6701a9e2c4b1f0d3a8e41a03", Name: "Leather Bracelet", Price: decimal.RequireFromString("15.25"), Color: "brown", Badge: true, Image: "/images/leather-bracelet.png"},
		}
	}
	return &StaticBackend{
		products: append([]Product(nil), seed...),
		failures: make(map[string]error),
	}
}

// FailOn makes op return err until cleared with a nil err.
func (s *StaticBackend) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

// List implements Backend.
func (s *StaticBackend) List(context.Context, string) ([]Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures[OpList]; err != nil {
		return nil, fmt.Errorf("%w: list products: %w", ErrTransportFailure, err)
	}
	return append([]Product{}, s.products...), nil
}

// Get implements Backend.
func (s *StaticBackend) Get(_ context.Context, _ string, productID string) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures[OpGet]; err != nil {
		return Product{}, fmt.Errorf("%w: get product %s: %w", ErrTransportFailure, productID, err)
	}
	idx := s.indexOf(productID)
	if idx < 0 {
		return Product{}, fmt.Errorf("%w: get product %s: not found", ErrTransportFailure, productID)
	}
	return s.products[idx], nil
}

// Create implements Backend.
func (s *StaticBackend) Create(_ context.Context, _ string, input Input) (Product, error) {
	normalized, price, err := input.Validate()
	if err != nil {
		return Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures[OpCreate]; err != nil {
		return Product{}, fmt.Errorf("%w: create product: %w", ErrTransportFailure, err)
	}
	product := productFromInput(uuid.NewString(), normalized, price)
	s.products = append(s.products, product)
	return product, nil
}

// Update implements Backend.
func (s *StaticBackend) Update(_ context.Context, _ string, productID string, input Input) (Product, error) {
	normalized, price, err := input.Validate()
	if err != nil {
		return Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures[OpUpdate]; err != nil {
		return Product{}, fmt.Errorf("%w: update product %s: %w", ErrTransportFailure, productID, err)
	}
	idx := s.indexOf(productID)
	if idx < 0 {
		return Product{}, fmt.Errorf("%w: update product %s: not found", ErrTransportFailure, productID)
	}
	s.products[idx] = productFromInput(productID, normalized, price)
	return s.products[idx], nil
}

// Delete implements Backend.
func (s *StaticBackend) Delete(_ context.Context, _ string, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures[OpDelete]; err != nil {
		return fmt.Errorf("%w: delete product %s: %w", ErrTransportFailure, productID, err)
	}
	idx := s.indexOf(productID)
	if idx < 0 {
		return fmt.Errorf("%w: delete product %s: not found", ErrTransportFailure, productID)
	}
	s.products = append(s.products[:idx], s.products[idx+1:]...)
	return nil
}

func (s *StaticBackend) indexOf(productID string) int {
	for i, p := range s.products {
		if p.ID == productID {
			return i
		}
	}
	return -1
}

func productFromInput(id string, in Input, price decimal.Decimal) Product {
	return Product{
		ID:          id,
		Name:        in.Name,
		Price:       price,
		Color:       in.Color,
		Description: in.Description,
		Badge:       in.Badge,
		Image:       in.Image,
	}
}
