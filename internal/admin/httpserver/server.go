package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"finitefield.org/orders-admin/internal/admin/catalog"
	custommw "finitefield.org/orders-admin/internal/admin/httpserver/middleware"
	"finitefield.org/orders-admin/internal/admin/httpserver/ui"
	"finitefield.org/orders-admin/internal/admin/observability"
	adminorders "finitefield.org/orders-admin/internal/admin/orders"
	"finitefield.org/orders-admin/internal/admin/rbac"
	"finitefield.org/orders-admin/public"
)

// Config holds runtime options for the admin HTTP server.
type Config struct {
	Address          string
	BasePath         string
	LoginPath        string
	Environment      string
	Authenticator    custommw.Authenticator
	Sessions         custommw.SessionStore
	CSRFCookieName   string
	CSRFCookieSecure bool
	CSRFHeaderName   string
	RequestTimeout   time.Duration

	Orders  *adminorders.Registry
	Catalog *catalog.Manager
	Logger  *zap.Logger
}

// New constructs the HTTP server with its middleware stack and embedded assets.
func New(cfg Config) (*http.Server, error) {
	if cfg.Sessions == nil {
		return nil, errors.New("httpserver: session store is required")
	}
	if cfg.Orders == nil || cfg.Catalog == nil {
		return nil, errors.New("httpserver: orders registry and catalog manager are required")
	}
	staticContent, err := public.StaticFS()
	if err != nil {
		return nil, fmt.Errorf("httpserver: embed static: %w", err)
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(observability.RequestLogger(cfg.Logger))
	router.Use(chimw.Recoverer)
	router.Use(chimw.Timeout(timeout))

	basePath := custommw.NormaliseBasePath(firstNonEmpty(cfg.BasePath, "/admin"))
	loginPath := firstNonEmpty(cfg.LoginPath, path.Join(basePath, "login"))

	authenticator := cfg.Authenticator
	if authenticator == nil {
		authenticator = custommw.DefaultAuthenticator()
	}

	handlers := ui.NewHandlers(ui.Dependencies{Orders: cfg.Orders, Catalog: cfg.Catalog})
	auth := newAuthHandlers(authenticator, basePath, loginPath, cfg.Orders.Forget)

	mountAdminRoutes(router, basePath, routeOptions{
		Authenticator: authenticator,
		LoginPath:     loginPath,
		Environment:   cfg.Environment,
		Sessions:      cfg.Sessions,
		Static:        http.FileServer(http.FS(staticContent)),
		CSRF: custommw.CSRFConfig{
			CookieName: cfg.CSRFCookieName,
			CookiePath: basePath,
			HeaderName: cfg.CSRFHeaderName,
			Secure:     cfg.CSRFCookieSecure,
		},
	}, handlers, auth)

	return &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: timeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}, nil
}

type routeOptions struct {
	Authenticator custommw.Authenticator
	LoginPath     string
	Environment   string
	Sessions      custommw.SessionStore
	Static        http.Handler
	CSRF          custommw.CSRFConfig
}

func mountAdminRoutes(router chi.Router, base string, opts routeOptions, h *ui.Handlers, auth *authHandlers) {
	router.Route(base, func(r chi.Router) {
		r.Handle("/static/*", http.StripPrefix(strings.TrimRight(base, "/")+"/static/", opts.Static))

		r.Group(func(r chi.Router) {
			r.Use(custommw.HTMX())
			r.Use(custommw.RequestInfoMiddleware(base))
			r.Use(custommw.Environment(opts.Environment))
			r.Use(custommw.Session(opts.Sessions))
			r.Use(custommw.CSRF(opts.CSRF))

			r.Get(relative(base, opts.LoginPath), auth.LoginForm)
			r.Post(relative(base, opts.LoginPath), auth.LoginSubmit)
			r.Post("/logout", auth.Logout)

			r.Group(func(r chi.Router) {
				r.Use(custommw.NoStore())
				r.Use(custommw.Auth(opts.Authenticator, opts.LoginPath))

				r.Get("/", h.Home)

				r.Route("/orders", func(r chi.Router) {
					r.With(custommw.RequireCapability(rbac.CapOrdersList)).Get("/", h.OrdersPage)
					RegisterFragment(r.With(custommw.RequireCapability(rbac.CapOrdersList)), "/table", h.OrdersTable)
					r.With(custommw.RequireCapability(rbac.CapOrdersDetail)).Get("/{orderID}/detail", h.OrdersDetail)
					r.With(custommw.RequireCapability(rbac.CapOrdersDetail)).Post("/detail/close", h.OrdersDetailClose)

					r.Group(func(r chi.Router) {
						r.Use(custommw.RequireCapability(rbac.CapOrdersManage))
						r.Post("/{orderID}/advance", h.OrdersAdvance)
						r.Post("/{orderID}/cancel", h.OrdersCancel)
						r.Get("/{orderID}/delete", h.OrdersDeleteConfirm)
						r.Post("/{orderID}/delete", h.OrdersDelete)
					})
				})

				r.Route("/products", func(r chi.Router) {
					r.Use(custommw.RequireCapability(rbac.CapCatalogManage))
					r.Get("/", h.ProductsPage)
					r.Post("/", h.ProductCreate)
					r.Get("/new", h.ProductNew)
					r.Get("/{productID}/edit", h.ProductEdit)
					r.Post("/{productID}", h.ProductUpdate)
					r.Get("/{productID}/delete", h.ProductDeleteConfirm)
					r.Post("/{productID}/delete", h.ProductDelete)
				})
			})
		})
	})
}

// relative strips the base prefix so a route can be registered inside the base sub-router.
func relative(base, full string) string {
	if base == "/" {
		return full
	}
	if rel := strings.TrimPrefix(full, base); rel != full {
		return firstNonEmpty(rel, "/")
	}
	return full
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// RegisterFragment registers a GET handler intended for htmx fragment rendering.
func RegisterFragment(r chi.Router, pattern string, handler http.HandlerFunc) {
	r.With(custommw.RequireHTMX()).Get(pattern, handler)
}
