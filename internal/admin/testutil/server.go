package testutil

import (
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"finitefield.org/orders-admin/internal/admin/catalog"
	"finitefield.org/orders-admin/internal/admin/feedback"
	"finitefield.org/orders-admin/internal/admin/httpserver"
	"finitefield.org/orders-admin/internal/admin/httpserver/middleware"
	adminorders "finitefield.org/orders-admin/internal/admin/orders"
	"finitefield.org/orders-admin/internal/admin/session"
)

type serverOptions struct {
	cfg            httpserver.Config
	ordersBackend  adminorders.Backend
	catalogBackend catalog.Backend
}

// ServerOption customises the HTTP server configuration for tests.
type ServerOption func(*serverOptions)

// WithAuthenticator overrides the authenticator used by the admin server.
func WithAuthenticator(auth middleware.Authenticator) ServerOption {
	return func(o *serverOptions) {
		o.cfg.Authenticator = auth
	}
}

// WithBasePath sets a custom base path for the admin routes.
func WithBasePath(path string) ServerOption {
	return func(o *serverOptions) {
		o.cfg.BasePath = path
	}
}

// WithOrdersBackend wires a custom orders backend.
func WithOrdersBackend(backend adminorders.Backend) ServerOption {
	return func(o *serverOptions) {
		o.ordersBackend = backend
	}
}

// WithCatalogBackend wires a custom product backend.
func WithCatalogBackend(backend catalog.Backend) ServerOption {
	return func(o *serverOptions) {
		o.catalogBackend = backend
	}
}

// NewServer constructs an httptest server running the admin HTTP stack with static backends.
func NewServer(t testing.TB, opts ...ServerOption) *httptest.Server {
	t.Helper()

	o := serverOptions{
		cfg: httpserver.Config{
			Address:        ":0",
			BasePath:       "/admin",
			CSRFCookieName: "csrf_token",
			CSRFHeaderName: "X-CSRF-Token",
			Authenticator:  middleware.DefaultAuthenticator(),
			Logger:         zap.NewNop(),
		},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.ordersBackend == nil {
		o.ordersBackend = adminorders.NewStaticBackend()
	}
	if o.catalogBackend == nil {
		o.catalogBackend = catalog.NewStaticBackend()
	}

	sessions, err := session.NewManager(session.Config{
		HashKey:  []byte("0123456789abcdef0123456789abcdef"),
		BlockKey: []byte("fedcba9876543210fedcba9876543210"),
	})
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}
	registry, err := adminorders.NewRegistry(adminorders.Options{
		Backend:   o.ordersBackend,
		Notifier:  feedback.Contextual{},
		Navigator: feedback.Contextual{},
		Confirmer: feedback.Contextual{},
	}, 0)
	if err != nil {
		t.Fatalf("orders registry: %v", err)
	}
	products, err := catalog.NewManager(catalog.Options{
		Backend:   o.catalogBackend,
		Notifier:  feedback.Contextual{},
		Navigator: feedback.Contextual{},
		Confirmer: feedback.Contextual{},
	})
	if err != nil {
		t.Fatalf("catalog manager: %v", err)
	}

	o.cfg.Sessions = sessions
	o.cfg.Orders = registry
	o.cfg.Catalog = products

	srv, err := httpserver.New(o.cfg)
	if err != nil {
		t.Fatalf("httpserver: %v", err)
	}
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}
