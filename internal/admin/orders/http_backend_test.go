package orders

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"finitefield.org/orders-admin/internal/admin/restclient"
)

const listPayload = `[
  {
    "_id": "6712f0a1b2c3d4e5f6a71052",
    "userId": {"_id": "6650aa01", "username": "linh.nguyen"},
    "products": [
      {"_id": "li-1", "quantity": 2, "productId": "6701a9e2c4b1f0d3a8e41a01"},
      {"_id": "li-2", "quantity": 3, "productId": "6701a9e2c4b1f0d3a8e41a02"}
    ],
    "amount": 63,
    "createdAt": "2024-10-18T09:30:00.000Z",
    "paymentMethod": "cod",
    "status": "delivery"
  },
  {
    "_id": "6712f0a1b2c3d4e5f6a71053",
    "userId": "6650aa02",
    "products": [],
    "amount": "0"
  }
]`

const detailPayload = `{
  "_id": "6712f0a1b2c3d4e5f6a71052",
  "userId": {"_id": "6650aa01", "username": "linh.nguyen"},
  "products": [
    {"_id": "li-1", "quantity": 3, "productId": {"_id": "6701a9e2c4b1f0d3a8e41a01", "productName": "Silver Ring", "color": "silver", "price": "10.50"}}
  ],
  "amount": 31.5,
  "createdAt": "2024-10-18T09:30:00Z",
  "status": "pending"
}`

func newTestBackend(t *testing.T, handler http.HandlerFunc) *HTTPBackend {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	backend, err := NewHTTPBackend(ts.URL, ts.Client(), nil)
	require.NoError(t, err)
	return backend
}

func TestHTTPBackendList(t *testing.T) {
	t.Parallel()

	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/v1/orderr", r.URL.Path)
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(listPayload))
	})

	list, err := backend.List(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, list, 2)

	first := list[0]
	require.Equal(t, "6712f0a1b2c3d4e5f6a71052", first.ID)
	require.Equal(t, "linh.nguyen", first.Customer.DisplayName())
	require.Equal(t, StatusDelivery, first.Status)
	require.Equal(t, 5, ItemCount(first))
	require.Equal(t, "63.00", first.Amount.StringFixed(2))
	require.Equal(t, time.Date(2024, 10, 18, 9, 30, 0, 0, time.UTC), first.CreatedAt.UTC())
	require.False(t, first.LineItems[0].Product.Resolved)

	second := list[1]
	require.Equal(t, StatusPending, second.Status, "absent status decodes as pending")
	require.Equal(t, "6650aa02", second.Customer.DisplayName())
	require.Equal(t, "unknown", PaymentMethodLabel(second))
}

func TestHTTPBackendDetail(t *testing.T) {
	t.Parallel()

	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/orderr/6712f0a1b2c3d4e5f6a71052", r.URL.Path)
		_, _ = w.Write([]byte(detailPayload))
	})

	detail, err := backend.Detail(context.Background(), "", "6712f0a1b2c3d4e5f6a71052")
	require.NoError(t, err)
	require.Len(t, detail.LineItems, 1)
	product := detail.LineItems[0].Product
	require.True(t, product.Resolved)
	require.Equal(t, "Silver Ring", product.Name)
	require.Equal(t, "31.50", LineTotal(product.Price, detail.LineItems[0].Quantity))
}

func TestHTTPBackendUpdateStatus(t *testing.T) {
	t.Parallel()

	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/v1/orderr/o-1", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, map[string]any{"status": "paid"}, body)

		_, _ = w.Write([]byte(`{"_id":"o-1","status":"paid"}`))
	})

	require.NoError(t, backend.UpdateStatus(context.Background(), "", "o-1", StatusPaid))
}

func TestHTTPBackendDelete(t *testing.T) {
	t.Parallel()

	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/api/v1/orderr/o-1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, backend.Delete(context.Background(), "", "o-1"))
}

func TestHTTPBackendErrorsAreTransportFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		invoke  func(*HTTPBackend) error
		payload bool
	}{
		{
			name:   "not found",
			status: http.StatusNotFound,
			body:   `{"message":"order not found"}`,
			invoke: func(b *HTTPBackend) error { _, err := b.Detail(context.Background(), "", "x"); return err },
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   "boom",
			invoke: func(b *HTTPBackend) error { return b.UpdateStatus(context.Background(), "", "x", StatusPaid) },
		},
		{
			name:    "unknown status",
			status:  http.StatusOK,
			body:    `[{"_id":"x","status":"refunded","products":[]}]`,
			invoke:  func(b *HTTPBackend) error { _, err := b.List(context.Background(), ""); return err },
			payload: true,
		},
		{
			name:    "unresolved detail product",
			status:  http.StatusOK,
			body:    `{"_id":"x","status":"pending","products":[{"_id":"li","quantity":1,"productId":"p"}]}`,
			invoke:  func(b *HTTPBackend) error { _, err := b.Detail(context.Background(), "", "x"); return err },
			payload: true,
		},
		{
			name:   "malformed json",
			status: http.StatusOK,
			body:   `{"_id":`,
			invoke: func(b *HTTPBackend) error { _, err := b.Detail(context.Background(), "", "x"); return err },
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})

			err := tc.invoke(backend)
			require.ErrorIs(t, err, ErrTransportFailure)
			if tc.payload {
				require.ErrorIs(t, err, ErrInvalidPayload)
			}
			if tc.status >= 400 {
				var statusErr *restclient.StatusError
				require.True(t, errors.As(err, &statusErr))
				require.Equal(t, tc.status, statusErr.StatusCode)
			}
		})
	}
}

func TestHTTPBackendNetworkFailure(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	backend, err := NewHTTPBackend(url, nil, nil)
	require.NoError(t, err)
	_, err = backend.List(context.Background(), "")
	require.ErrorIs(t, err, ErrTransportFailure)
}
