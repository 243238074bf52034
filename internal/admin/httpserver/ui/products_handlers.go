package ui

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"finitefield.org/orders-admin/internal/admin/catalog"
	"finitefield.org/orders-admin/internal/admin/feedback"
	custommw "finitefield.org/orders-admin/internal/admin/httpserver/middleware"
	"finitefield.org/orders-admin/internal/admin/templates/layout"
	productstpl "finitefield.org/orders-admin/internal/admin/templates/products"
)

// ProductsPage renders the product list.
func (h *Handlers) ProductsPage(w http.ResponseWriter, r *http.Request) {
	token, _ := userToken(r)
	ex := newExchange(w, r)

	products, err := h.catalog.List(ex.ctx, token)
	errMsg := ""
	if err != nil {
		errMsg = "Products are unavailable right now."
	}
	data := productstpl.BuildList(products, errMsg, custommw.CSRFTokenFromContext(r.Context()))
	renderPage(w, r, layout.Data{Title: "Products", Flashes: ex.flashes()}, productstpl.Index(data), http.StatusOK)
}

// ProductNew renders an empty create form.
func (h *Handlers) ProductNew(w http.ResponseWriter, r *http.Request) {
	ex := newExchange(w, r)
	form := productstpl.BuildForm("", catalog.Input{}, nil, custommw.CSRFTokenFromContext(r.Context()))
	renderPage(w, r, layout.Data{Title: "New product", Flashes: ex.flashes()}, productstpl.Form(form), http.StatusOK)
}

// ProductCreate validates and creates a product, returning to the list on success.
func (h *Handlers) ProductCreate(w http.ResponseWriter, r *http.Request) {
	token, _ := userToken(r)
	ex := newExchange(w, r)

	input := productInput(r)
	_, err := h.catalog.Create(ex.ctx, token, input)
	if ex.finishNavigation() {
		return
	}
	h.renderFormError(w, r, ex, "", input, err)
}

// ProductEdit renders the edit form for an existing product.
func (h *Handlers) ProductEdit(w http.ResponseWriter, r *http.Request) {
	token, _ := userToken(r)
	ex := newExchange(w, r)

	productID := chi.URLParam(r, "productID")
	product, err := h.catalog.Get(ex.ctx, token, productID)
	if err != nil {
		ex.finishRedirect(h.productsPath(r))
		return
	}
	form := productstpl.BuildForm(productID, catalog.InputFromProduct(product), nil, custommw.CSRFTokenFromContext(r.Context()))
	renderPage(w, r, layout.Data{Title: "Edit product", Flashes: ex.flashes()}, productstpl.Form(form), http.StatusOK)
}

// ProductUpdate validates and saves an existing product.
func (h *Handlers) ProductUpdate(w http.ResponseWriter, r *http.Request) {
	token, _ := userToken(r)
	ex := newExchange(w, r)

	productID := chi.URLParam(r, "productID")
	input := productInput(r)
	_, err := h.catalog.Update(ex.ctx, token, productID, input)
	if ex.finishNavigation() {
		return
	}
	h.renderFormError(w, r, ex, productID, input, err)
}

// ProductDelete deletes a product once the confirm field says yes.
// ProductDeleteConfirm renders the confirmation step for a product delete.
func (h *Handlers) ProductDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	component := productstpl.DeleteConfirm(chi.URLParam(r, "productID"), custommw.CSRFTokenFromContext(r.Context()))
	if !custommw.IsHTMXRequest(r.Context()) {
		renderPage(w, r, layout.Data{Title: "Delete product"}, component, http.StatusOK)
		return
	}
	renderFragment(w, r, http.StatusOK, component)
}

// ProductDelete deletes a product when the posted confirm answer is yes. A declined htmx
// confirmation answers with an empty body, closing the modal.
func (h *Handlers) ProductDelete(w http.ResponseWriter, r *http.Request) {
	token, _ := userToken(r)
	ex := newExchange(w, r)

	err := h.catalog.Delete(ex.ctx, token, chi.URLParam(r, "productID"))
	if errors.Is(err, catalog.ErrConfirmationDeclined) && ex.htmx {
		w.WriteHeader(http.StatusOK)
		return
	}
	ex.finishAction(h.productsPath(r))
}

func (h *Handlers) renderFormError(w http.ResponseWriter, r *http.Request, ex *exchange, productID string, input catalog.Input, err error) {
	status := http.StatusBadGateway
	if errors.Is(err, catalog.ErrInvalidProduct) {
		status = http.StatusUnprocessableEntity
	}
	form := productstpl.BuildForm(productID, input, err, custommw.CSRFTokenFromContext(r.Context()))
	title := "New product"
	if productID != "" {
		title = "Edit product"
	}
	renderPage(w, r, layout.Data{Title: title, Flashes: ex.flashes()}, productstpl.Form(form), status)
}

func (h *Handlers) productsPath(r *http.Request) string {
	return joinBasePath(custommw.BasePathFromContext(r.Context()), feedback.ListProducts)
}

func productInput(r *http.Request) catalog.Input {
	return catalog.Input{
		Name:        r.PostFormValue("productName"),
		Price:       r.PostFormValue("price"),
		Color:       r.PostFormValue("color"),
		Description: r.PostFormValue("des"),
		Badge:       parseConfirm(r.PostFormValue("badge")),
		Image:       r.PostFormValue("img"),
	}
}
