package products

import (
	"errors"

	"finitefield.org/orders-admin/internal/admin/catalog"
	adminorders "finitefield.org/orders-admin/internal/admin/orders"
	"finitefield.org/orders-admin/internal/admin/templates/helpers"
)

// ListData is the payload of the product list page.
type ListData struct {
	Rows      []Row
	Error     string
	CSRFToken string
}

// Row is one product in the list.
type Row struct {
	ID      string
	ShortID string
	Name    string
	Price   string
	Color   string
	Badge   bool
}

// FormData drives the create and edit form.
type FormData struct {
	ProductID   string
	Input       catalog.Input
	FieldErrors map[string]string
	Error       string
	CSRFToken   string
}

// Editing reports whether the form updates an existing product.
func (f FormData) Editing() bool {
	return f.ProductID != ""
}

// BuildList derives list rows from products.
func BuildList(products []catalog.Product, errMsg, csrfToken string) ListData {
	rows := make([]Row, 0, len(products))
	for _, p := range products {
		rows = append(rows, Row{
			ID:      p.ID,
			ShortID: adminorders.ShortProductID(p.ID),
			Name:    p.Name,
			Price:   helpers.Money(p.Price),
			Color:   p.Color,
			Badge:   p.Badge,
		})
	}
	return ListData{Rows: rows, Error: errMsg, CSRFToken: csrfToken}
}

// BuildForm pairs input with the field errors carried by err, if any.
func BuildForm(productID string, input catalog.Input, err error, csrfToken string) FormData {
	data := FormData{ProductID: productID, Input: input, CSRFToken: csrfToken}
	var verr *catalog.ValidationError
	switch {
	case err == nil:
	case errors.As(err, &verr):
		data.FieldErrors = verr.FieldErrors
	default:
		data.Error = "Failed to save the product."
	}
	return data
}
