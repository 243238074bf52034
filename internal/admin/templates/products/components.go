package products

import (
	"context"

	"github.com/a-h/templ"

	"finitefield.org/orders-admin/internal/admin/catalog"
	adminorders "finitefield.org/orders-admin/internal/admin/orders"
	"finitefield.org/orders-admin/internal/admin/templates/helpers"
)

// Index renders the product list page body.
func Index(data ListData) templ.Component {
	return helpers.Component(func(ctx context.Context, m *helpers.Markup) {
		m.Raw(`<header class="mb-4 flex items-center justify-between"><h1 class="text-xl font-semibold">Products</h1><a`)
		m.Attr("href", helpers.Path(ctx, "products", "new"))
		m.Attr("class", helpers.ButtonClass("primary"))
		m.Raw(`>New product</a></header>`)
		if data.Error != "" {
			m.Raw(`<p class="mb-2 text-sm text-rose-600" role="alert">`)
			m.Text(data.Error)
			m.Raw(`</p>`)
		}
		m.Raw(`<table id="products-table"><thead><tr><th>Product</th><th>Name</th><th>Price</th><th>Color</th><th></th></tr></thead><tbody>`)
		for _, row := range data.Rows {
			m.Raw(`<tr`)
			m.Attr("data-product-id", row.ID)
			m.Raw(`><td class="font-mono">`)
			m.Text(row.ShortID)
			m.Raw(`</td><td>`)
			m.Text(row.Name)
			if row.Badge {
				m.Raw(` <span`)
				m.Attr("class", helpers.BadgeClass("success"))
				m.Raw(`>Featured</span>`)
			}
			m.Raw(`</td><td>`)
			m.Text(row.Price)
			m.Raw(`</td><td>`)
			m.Text(row.Color)
			m.Raw(`</td><td class="flex gap-2"><a`)
			m.Attr("href", helpers.Path(ctx, "products", row.ID, "edit"))
			m.Attr("class", helpers.ButtonClass(""))
			m.Raw(`>Edit</a><a data-action="delete"`)
			confirm := helpers.Path(ctx, "products", row.ID, "delete")
			m.Attr("href", confirm)
			m.Attr("hx-get", confirm)
			m.Attr("hx-target", "#modal")
			m.Attr("class", helpers.ButtonClass("danger"))
			m.Raw(`>Delete</a></td></tr>`)
		}
		m.Raw(`</tbody></table>`)
	})
}

// DeleteConfirm renders the yes/no form that gates a product delete. It works as a modal
// fragment and as a standalone page.
func DeleteConfirm(productID, csrfToken string) templ.Component {
	return helpers.Component(func(ctx context.Context, m *helpers.Markup) {
		action := helpers.Path(ctx, "products", productID, "delete")
		m.Raw(`<div class="modal-backdrop"><form class="modal" method="post" data-confirm-delete`)
		m.Attr("action", action)
		m.Attr("hx-post", action)
		m.Attr("hx-target", "#modal")
		m.Raw(`>`)
		m.Render(ctx, helpers.CSRFField(csrfToken))
		m.Raw(`<p class="mb-1">`)
		m.Text(catalog.DeletePrompt)
		m.Raw(`</p><p class="mb-4 font-mono text-sm">`)
		m.Text(adminorders.ShortProductID(productID))
		m.Raw(`</p><div class="flex justify-end gap-2"><button type="submit" name="confirm" value="no"`)
		m.Attr("class", helpers.ButtonClass(""))
		m.Raw(`>No</button><button type="submit" name="confirm" value="yes"`)
		m.Attr("class", helpers.ButtonClass("danger"))
		m.Raw(`>Yes, delete</button></div></form></div>`)
	})
}

// Form renders the create or edit form.
func Form(data FormData) templ.Component {
	return helpers.Component(func(ctx context.Context, m *helpers.Markup) {
		title, action := "New product", helpers.Path(ctx, "products")
		if data.Editing() {
			title, action = "Edit product", helpers.Path(ctx, "products", data.ProductID)
		}

		m.Raw(`<h1 class="mb-4 text-xl font-semibold">`)
		m.Text(title)
		m.Raw(`</h1>`)
		if data.Error != "" {
			m.Raw(`<p class="mb-2 text-sm text-rose-600" role="alert">`)
			m.Text(data.Error)
			m.Raw(`</p>`)
		}
		m.Raw(`<form method="post" class="grid max-w-lg gap-3" id="product-form"`)
		m.Attr("action", action)
		m.Raw(`>`)
		m.Render(ctx, helpers.CSRFField(data.CSRFToken))
		field(m, "productName", "Name", "text", data.Input.Name, data.FieldErrors)
		field(m, "price", "Price", "text", data.Input.Price, data.FieldErrors)
		field(m, "color", "Color", "text", data.Input.Color, data.FieldErrors)
		field(m, "img", "Image URL", "url", data.Input.Image, data.FieldErrors)
		m.Raw(`<label>Description<textarea name="des" rows="3">`)
		m.Text(data.Input.Description)
		m.Raw(`</textarea></label><label><input type="checkbox" name="badge" value="true"`)
		m.AttrIf(data.Input.Badge, "checked")
		m.Raw(`> Featured</label><div class="flex gap-2"><button type="submit"`)
		m.Attr("class", helpers.ButtonClass("primary"))
		m.Raw(`>Save</button><a`)
		m.Attr("href", helpers.Path(ctx, "products"))
		m.Attr("class", helpers.ButtonClass(""))
		m.Raw(`>Back</a></div></form>`)
	})
}

func field(m *helpers.Markup, name, label, kind, value string, errs map[string]string) {
	m.Raw(`<label>`)
	m.Text(label)
	m.Raw(`<input`)
	m.Attr("type", kind)
	m.Attr("name", name)
	m.Attr("value", value)
	m.Raw(`></label>`)
	if msg, ok := errs[name]; ok {
		m.Raw(`<p class="field-error"`)
		m.Attr("data-field-error", name)
		m.Raw(`>`)
		m.Text(msg)
		m.Raw(`</p>`)
	}
}
