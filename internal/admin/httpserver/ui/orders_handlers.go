package ui

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"finitefield.org/orders-admin/internal/admin/feedback"
	custommw "finitefield.org/orders-admin/internal/admin/httpserver/middleware"
	"finitefield.org/orders-admin/internal/admin/observability"
	adminorders "finitefield.org/orders-admin/internal/admin/orders"
	"finitefield.org/orders-admin/internal/admin/rbac"
	"finitefield.org/orders-admin/internal/admin/templates/helpers"
	"finitefield.org/orders-admin/internal/admin/templates/layout"
	orderstpl "finitefield.org/orders-admin/internal/admin/templates/orders"
)

// OrdersPage loads the orders and renders the full page.
func (h *Handlers) OrdersPage(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	ex := newExchange(w, r)

	errMsg := ""
	if err := ctrl.Load(ex.ctx); err != nil {
		errMsg = "Showing the last loaded orders."
	}

	state := ctrl.Snapshot()
	data := layout.Data{Title: "Orders", Flashes: ex.flashes()}
	if detail := orderstpl.BuildDetail(state, canManage(r)); detail.Visible {
		data.Modal = orderstpl.DetailModal(detail)
	}
	renderPage(w, r, data, orderstpl.Index(h.table(r, state, errMsg)), http.StatusOK)
}

// OrdersTable renders the table fragment from the session's current list without reloading.
func (h *Handlers) OrdersTable(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	renderFragment(w, r, http.StatusOK, orderstpl.Table(h.table(r, ctrl.Snapshot(), "")))
}

// OrdersAdvance moves an order one step along pending, delivery, paid. The posted status is
// the status the user saw.
func (h *Handlers) OrdersAdvance(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	ex := newExchange(w, r)

	orderID := chi.URLParam(r, "orderID")
	current := adminorders.Status(strings.ToLower(strings.TrimSpace(r.PostFormValue("status"))))
	if _, err := ctrl.AdvanceStatus(ex.ctx, orderID, current); err != nil {
		observability.FromContext(r.Context()).Debug("advance not applied", zap.String("order_id", orderID), zap.Error(err))
	}
	ex.finishAction(h.ordersPath(r))
}

// OrdersDetail fetches and renders the detail modal. On failure the open modal is left alone.
func (h *Handlers) OrdersDetail(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	ex := newExchange(w, r)

	if err := ctrl.FetchDetail(ex.ctx, chi.URLParam(r, "orderID")); err != nil {
		if !ex.htmx {
			ex.finishRedirect(h.ordersPath(r))
			return
		}
		ex.trigger()
		w.Header().Set("HX-Reswap", "none")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if !ex.htmx {
		http.Redirect(w, r, h.ordersPath(r), http.StatusSeeOther)
		return
	}
	renderFragment(w, r, http.StatusOK, orderstpl.DetailModal(orderstpl.BuildDetail(ctrl.Snapshot(), canManage(r))))
}

// OrdersDetailClose hides the detail modal.
func (h *Handlers) OrdersDetailClose(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	ctrl.CloseDetail()
	if !custommw.IsHTMXRequest(r.Context()) {
		http.Redirect(w, r, h.ordersPath(r), http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// OrdersCancel cancels an order. Success navigates back to the freshly loaded list.
func (h *Handlers) OrdersCancel(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	ex := newExchange(w, r)

	_ = ctrl.Cancel(ex.ctx, chi.URLParam(r, "orderID"))
	ex.finishAction(h.ordersPath(r))
}

// OrdersDeleteConfirm renders the delete confirmation into the modal host.
func (h *Handlers) OrdersDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	component := orderstpl.DeleteConfirm(orderID, custommw.CSRFTokenFromContext(r.Context()))
	if !custommw.IsHTMXRequest(r.Context()) {
		renderPage(w, r, layout.Data{Title: "Delete order"}, component, http.StatusOK)
		return
	}
	renderFragment(w, r, http.StatusOK, component)
}

// OrdersDelete removes an order when the posted confirm answer is yes, then re-renders the
// table from the session's list.
func (h *Handlers) OrdersDelete(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	ex := newExchange(w, r)

	orderID := chi.URLParam(r, "orderID")
	if err := ctrl.Remove(ex.ctx, orderID); err != nil && !errors.Is(err, adminorders.ErrConfirmationDeclined) {
		observability.FromContext(r.Context()).Debug("remove not applied", zap.String("order_id", orderID), zap.Error(err))
	}

	if !ex.htmx {
		ex.finishRedirect(h.ordersPath(r))
		return
	}
	ex.trigger()
	renderFragment(w, r, http.StatusOK,
		orderstpl.Table(h.table(r, ctrl.Snapshot(), "")),
		orderstpl.ClearModal(),
	)
}

func (h *Handlers) controller(w http.ResponseWriter, r *http.Request) (*adminorders.Controller, bool) {
	token, ok := userToken(r)
	sess, hasSession := custommw.SessionFromContext(r.Context())
	if !ok || !hasSession {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return nil, false
	}
	ctrl, err := h.orders.For(sess.ID(), token)
	if err != nil {
		observability.FromContext(r.Context()).Error("orders controller unavailable", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return nil, false
	}
	return ctrl, true
}

func (h *Handlers) table(r *http.Request, state adminorders.State, errMsg string) orderstpl.TableData {
	ctx := r.Context()
	return orderstpl.BuildTable(state, errMsg, helpers.HasCapability(ctx, rbac.CapOrdersDetail), canManage(r))
}

func (h *Handlers) ordersPath(r *http.Request) string {
	return joinBasePath(custommw.BasePathFromContext(r.Context()), feedback.ListOrders)
}

func canManage(r *http.Request) bool {
	return helpers.HasCapability(r.Context(), rbac.CapOrdersManage)
}
