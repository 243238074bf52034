package orders

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"finitefield.org/orders-admin/internal/admin/restclient"
)

const ordersEndpoint = "/api/v1/orderr"

// HTTPBackend implements Backend against the REST order endpoints.
type HTTPBackend struct {
	client *restclient.Client
}

// NewHTTPBackend constructs a Backend rooted at baseURL.
func NewHTTPBackend(baseURL string, client restclient.HTTPClient, logger *zap.Logger) (*HTTPBackend, error) {
	rc, err := restclient.New(baseURL, client, logger)
	if err != nil {
		return nil, fmt.Errorf("orders: %w", err)
	}
	return &HTTPBackend{client: rc}, nil
}

// List fetches every order and validates each one before returning.
func (b *HTTPBackend) List(ctx context.Context, token string) ([]Order, error) {
	var payload []Order
	if err := b.client.Do(ctx, http.MethodGet, ordersEndpoint, token, nil, &payload); err != nil {
		return nil, fmt.Errorf("%w: list orders: %w", ErrTransportFailure, err)
	}
	for _, order := range payload {
		if err := order.Validate(); err != nil {
			return nil, fmt.Errorf("%w: list orders: %w", ErrTransportFailure, err)
		}
	}
	if payload == nil {
		payload = []Order{}
	}
	return payload, nil
}

// Detail fetches a single order with resolved products.
func (b *HTTPBackend) Detail(ctx context.Context, token, orderID string) (OrderDetail, error) {
	var payload OrderDetail
	if err := b.client.Do(ctx, http.MethodGet, restclient.Path(ordersEndpoint, orderID), token, nil, &payload); err != nil {
		return OrderDetail{}, fmt.Errorf("%w: order detail %s: %w", ErrTransportFailure, orderID, err)
	}
	if err := payload.Validate(); err != nil {
		return OrderDetail{}, fmt.Errorf("%w: order detail %s: %w", ErrTransportFailure, orderID, err)
	}
	return payload, nil
}

// UpdateStatus sends {"status": status}. The response body is discarded.
func (b *HTTPBackend) UpdateStatus(ctx context.Context, token, orderID string, status Status) error {
	body := map[string]string{"status": string(status)}
	if err := b.client.Do(ctx, http.MethodPut, restclient.Path(ordersEndpoint, orderID), token, body, nil); err != nil {
		return fmt.Errorf("%w: update order %s: %w", ErrTransportFailure, orderID, err)
	}
	return nil
}

// Delete removes the order.
func (b *HTTPBackend) Delete(ctx context.Context, token, orderID string) error {
	if err := b.client.Do(ctx, http.MethodDelete, restclient.Path(ordersEndpoint, orderID), token, nil, nil); err != nil {
		return fmt.Errorf("%w: delete order %s: %w", ErrTransportFailure, orderID, err)
	}
	return nil
}
