package catalog

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"finitefield.org/orders-admin/internal/admin/restclient"
)

const productsEndpoint = "/api/v1/product"

// HTTPBackend implements Backend against the REST product endpoints.
type HTTPBackend struct {
	client *restclient.Client
}

// NewHTTPBackend constructs a Backend rooted at baseURL.
func NewHTTPBackend(baseURL string, client restclient.HTTPClient, logger *zap.Logger) (*HTTPBackend, error) {
	rc, err := restclient.New(baseURL, client, logger)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return &HTTPBackend{client: rc}, nil
}

// List fetches every product.
func (b *HTTPBackend) List(ctx context.Context, token string) ([]Product, error) {
	var payload []Product
	if err := b.client.Do(ctx, http.MethodGet, productsEndpoint, token, nil, &payload); err != nil {
		return nil, fmt.Errorf("%w: list products: %w", ErrTransportFailure, err)
	}
	if payload == nil {
		payload = []Product{}
	}
	return payload, nil
}

// Get fetches a single product.
func (b *HTTPBackend) Get(ctx context.Context, token, productID string) (Product, error) {
	var payload Product
	if err := b.client.Do(ctx, http.MethodGet, restclient.Path(productsEndpoint, productID), token, nil, &payload); err != nil {
		return Product{}, fmt.Errorf("%w: get product %s: %w", ErrTransportFailure, productID, err)
	}
	return payload, nil
}

// Create posts a new product. Input must already be validated.
func (b *HTTPBackend) Create(ctx context.Context, token string, input Input) (Product, error) {
	body, err := wireBody(input)
	if err != nil {
		return Product{}, err
	}
	var payload Product
	if err := b.client.Do(ctx, http.MethodPost, productsEndpoint, token, body, &payload); err != nil {
		return Product{}, fmt.Errorf("%w: create product: %w", ErrTransportFailure, err)
	}
	return payload, nil
}

// Update replaces the product fields. Input must already be validated.
func (b *HTTPBackend) Update(ctx context.Context, token, productID string, input Input) (Product, error) {
	body, err := wireBody(input)
	if err != nil {
		return Product{}, err
	}
	var payload Product
	if err := b.client.Do(ctx, http.MethodPut, restclient.Path(productsEndpoint, productID), token, body, &payload); err != nil {
		return Product{}, fmt.Errorf("%w: update product %s: %w", ErrTransportFailure, productID, err)
	}
	if strings.TrimSpace(payload.ID) == "" {
		payload.ID = productID
	}
	return payload, nil
}

// Delete removes the product.
func (b *HTTPBackend) Delete(ctx context.Context, token, productID string) error {
	if err := b.client.Do(ctx, http.MethodDelete, restclient.Path(productsEndpoint, productID), token, nil, nil); err != nil {
		return fmt.Errorf("%w: delete product %s: %w", ErrTransportFailure, productID, err)
	}
	return nil
}

func wireBody(input Input) (productWire, error) {
	normalized, price, err := input.Validate()
	if err != nil {
		return productWire{}, err
	}
	return normalized.wire(price), nil
}
