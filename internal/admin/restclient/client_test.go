package restclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"finitefield.org/orders-admin/internal/admin/restclient"
)

func TestClientSendsJSONAndHeaders(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/backend/api/v1/thing/a%20b", r.URL.EscapedPath())
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NotEmpty(t, r.Header.Get(restclient.RequestIDHeader))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "x", body["value"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(ts.Close)

	client, err := restclient.New(ts.URL+"/backend", ts.Client(), nil)
	require.NoError(t, err)

	var out struct {
		OK bool `json:"ok"`
	}
	err = client.Do(context.Background(), http.MethodPut, restclient.Path("/api/v1/thing", "a b"), "tok", map[string]string{"value": "x"}, &out)
	require.NoError(t, err)
	require.True(t, out.OK)
}

func TestClientMapsErrorResponses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		message string
		code    string
	}{
		{name: "json envelope", status: http.StatusNotFound, body: `{"code":"not_found","message":"order missing"}`, message: "order missing", code: "not_found"},
		{name: "plain body", status: http.StatusInternalServerError, body: "boom", message: "boom"},
		{name: "empty body", status: http.StatusBadGateway, message: "Bad Gateway"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			t.Cleanup(ts.Close)

			client, err := restclient.New(ts.URL, ts.Client(), nil)
			require.NoError(t, err)

			err = client.Do(context.Background(), http.MethodGet, "/x", "", nil, nil)
			var statusErr *restclient.StatusError
			require.True(t, errors.As(err, &statusErr))
			require.Equal(t, tc.status, statusErr.StatusCode)
			require.Equal(t, tc.message, statusErr.Message)
			require.Equal(t, tc.code, statusErr.Code)
		})
	}
}

func TestNewRequiresBaseURL(t *testing.T) {
	t.Parallel()

	_, err := restclient.New("  ", nil, nil)
	require.Error(t, err)
}
