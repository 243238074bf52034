package ui

import (
	"net/http"

	"github.com/a-h/templ"

	"finitefield.org/orders-admin/internal/admin/catalog"
	"finitefield.org/orders-admin/internal/admin/feedback"
	custommw "finitefield.org/orders-admin/internal/admin/httpserver/middleware"
	adminorders "finitefield.org/orders-admin/internal/admin/orders"
	"finitefield.org/orders-admin/internal/admin/templates/layout"
)

// Dependencies collects the domain collaborators required by the UI handlers. Both must be
// built with feedback.Contextual collaborators so each request supplies its own.
type Dependencies struct {
	Orders  *adminorders.Registry
	Catalog *catalog.Manager
}

// Handlers exposes HTTP handlers for admin UI pages and fragments.
type Handlers struct {
	orders  *adminorders.Registry
	catalog *catalog.Manager
}

// NewHandlers wires the UI handler set.
func NewHandlers(deps Dependencies) *Handlers {
	if deps.Orders == nil || deps.Catalog == nil {
		panic("ui: orders registry and catalog manager are required")
	}
	return &Handlers{orders: deps.Orders, catalog: deps.Catalog}
}

// Home redirects to the orders list.
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, joinBasePath(custommw.BasePathFromContext(r.Context()), feedback.ListOrders), http.StatusFound)
}

func renderPage(w http.ResponseWriter, r *http.Request, data layout.Data, body templ.Component, status int) {
	templ.Handler(layout.Page(data, body), templ.WithStatus(status)).ServeHTTP(w, r)
}

func renderFragment(w http.ResponseWriter, r *http.Request, status int, components ...templ.Component) {
	templ.Handler(templ.Join(components...), templ.WithStatus(status)).ServeHTTP(w, r)
}

func userToken(r *http.Request) (string, bool) {
	user, ok := custommw.UserFromContext(r.Context())
	if !ok {
		return "", false
	}
	return user.Token, true
}
