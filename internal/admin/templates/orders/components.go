package orders

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	adminorders "finitefield.org/orders-admin/internal/admin/orders"
	"finitefield.org/orders-admin/internal/admin/templates/helpers"
)

// TableID is the DOM id fragments swap into.
const TableID = "orders-table"

// Index renders the orders page body.
func Index(table TableData) templ.Component {
	return helpers.Component(func(ctx context.Context, m *helpers.Markup) {
		m.Raw(`<header class="mb-4 flex items-center justify-between"><h1 class="text-xl font-semibold">Orders</h1><a data-action="reload"`)
		m.Attr("class", helpers.ButtonClass(""))
		m.Attr("href", helpers.Path(ctx, "orders"))
		m.Raw(`>Reload</a></header>`)
		m.Render(ctx, Table(table))
	})
}

// Table renders the orders table fragment.
func Table(data TableData) templ.Component {
	return helpers.Component(func(ctx context.Context, m *helpers.Markup) {
		m.Raw(`<section`)
		m.Attr("id", TableID)
		m.Raw(`>`)
		if data.Error != "" {
			m.Raw(`<p class="mb-2 text-sm text-rose-600" role="alert">`)
			m.Text(data.Error)
			m.Raw(`</p>`)
		}
		if len(data.Rows) == 0 {
			m.Raw(`<p class="text-sm text-slate-500" data-empty>`)
			m.Text(data.EmptyMessage)
			m.Raw(`</p></section>`)
			return
		}

		m.Raw(`<table><thead><tr><th>Order</th><th>Customer</th><th>Items</th><th>Amount</th><th>Created</th><th>Payment</th><th>Status</th><th></th></tr></thead><tbody>`)
		for _, row := range data.Rows {
			renderRow(ctx, m, data, row)
		}
		m.Raw(`</tbody></table></section>`)
	})
}

func renderRow(ctx context.Context, m *helpers.Markup, data TableData, row Row) {
	m.Raw(`<tr`)
	m.Attr("id", "order-row-"+row.ID)
	m.Attr("data-order-id", row.ID)
	m.Attr("data-status", string(row.Status))
	m.Raw(`><td class="font-mono"`)
	m.Attr("title", row.ID)
	m.Raw(`>`)
	m.Text(row.ShortID)
	m.Raw(`</td><td>`)
	m.Text(row.Customer)
	m.Raw(`</td><td>`)
	m.Text(strconv.Itoa(row.ItemCount))
	m.Raw(`</td><td>`)
	m.Text(row.Amount)
	m.Raw(`</td><td>`)
	m.Text(row.CreatedAt)
	m.Raw(`</td><td>`)
	m.Text(row.Payment)
	m.Raw(`</td><td><span`)
	m.Attr("class", row.BadgeClass)
	m.Raw(`>`)
	m.Text(row.StatusLabel)
	m.Raw(`</span></td><td class="flex gap-2">`)

	if row.CanAdvance {
		m.Raw(`<button type="button" data-action="advance"`)
		m.Attr("class", helpers.ButtonClass("primary"))
		m.Attr("hx-post", helpers.Path(ctx, "orders", row.ID, "advance"))
		m.Attr("hx-vals", `{"status":"`+string(row.Status)+`"}`)
		m.Raw(` hx-swap="none">Advance</button>`)
	}
	if data.CanView {
		m.Raw(`<button type="button" data-action="detail"`)
		m.Attr("class", helpers.ButtonClass(""))
		m.Attr("hx-get", helpers.Path(ctx, "orders", row.ID, "detail"))
		m.Raw(` hx-target="#modal">View</button>`)
	}
	if data.CanManage {
		m.Raw(`<button type="button" data-action="delete"`)
		m.Attr("class", helpers.ButtonClass("danger"))
		m.Attr("hx-get", helpers.Path(ctx, "orders", row.ID, "delete"))
		m.Raw(` hx-target="#modal">Delete</button>`)
	}
	m.Raw(`</td></tr>`)
}

// DetailModal renders the detail dialog, or nothing when no detail is shown.
func DetailModal(data DetailData) templ.Component {
	return helpers.Component(func(ctx context.Context, m *helpers.Markup) {
		if !data.Visible {
			return
		}
		m.Raw(`<div class="modal-backdrop"><div class="modal" role="dialog" aria-modal="true"`)
		m.Attr("data-order-id", data.ID)
		m.Raw(`><header class="mb-3 flex items-center justify-between"><h2 class="text-lg font-semibold">Order `)
		m.Text(data.ShortID)
		m.Raw(`</h2><span`)
		m.Attr("class", data.BadgeClass)
		m.Raw(`>`)
		m.Text(data.StatusLabel)
		m.Raw(`</span></header><dl class="mb-3 grid grid-cols-2 gap-1 text-sm"><dt>Customer</dt><dd>`)
		m.Text(data.Customer)
		m.Raw(`</dd><dt>Created</dt><dd>`)
		m.Text(data.CreatedAt)
		m.Raw(`</dd><dt>Payment</dt><dd>`)
		m.Text(data.Payment)
		m.Raw(`</dd><dt>Amount</dt><dd>`)
		m.Text(data.Amount)
		m.Raw(`</dd></dl><table><thead><tr><th>Product</th><th>Name</th><th>Color</th><th>Price</th><th>Qty</th><th>Total</th></tr></thead><tbody>`)
		for _, line := range data.Lines {
			m.Raw(`<tr data-line><td class="font-mono">`)
			m.Text(line.ProductID)
			m.Raw(`</td><td>`)
			m.Text(line.Name)
			m.Raw(`</td><td>`)
			m.Text(line.Color)
			m.Raw(`</td><td>`)
			m.Text(line.Price)
			m.Raw(`</td><td>`)
			m.Text(strconv.Itoa(line.Quantity))
			m.Raw(`</td><td data-line-total>`)
			m.Text(line.Total)
			m.Raw(`</td></tr>`)
		}
		m.Raw(`</tbody></table><footer class="mt-4 flex justify-end gap-2">`)
		if data.CanCancel {
			m.Raw(`<button type="button" data-action="cancel"`)
			m.Attr("class", helpers.ButtonClass("danger"))
			m.Attr("hx-post", helpers.Path(ctx, "orders", data.ID, "cancel"))
			m.Raw(` hx-swap="none">Cancel order</button>`)
		}
		m.Raw(`<button type="button" data-action="close"`)
		m.Attr("class", helpers.ButtonClass(""))
		m.Attr("hx-post", helpers.Path(ctx, "orders", "detail", "close"))
		m.Raw(` hx-target="#modal">Close</button></footer></div></div>`)
	})
}

// DeleteConfirm renders the yes/no gate in front of an order delete. The form also works
// without htmx.
func DeleteConfirm(orderID, csrfToken string) templ.Component {
	return helpers.Component(func(ctx context.Context, m *helpers.Markup) {
		action := helpers.Path(ctx, "orders", orderID, "delete")
		m.Raw(`<div class="modal-backdrop"><form class="modal" method="post" data-confirm-delete`)
		m.Attr("action", action)
		m.Attr("hx-post", action)
		m.Attr("hx-target", "#"+TableID)
		m.Raw(` hx-swap="outerHTML">`)
		m.Render(ctx, helpers.CSRFField(csrfToken))
		m.Raw(`<p class="mb-1">`)
		m.Text(adminorders.DeletePrompt)
		m.Raw(`</p><p class="mb-4 font-mono text-sm">`)
		m.Text(adminorders.ShortID(orderID))
		m.Raw(`</p><div class="flex justify-end gap-2"><button type="submit" name="confirm" value="no"`)
		m.Attr("class", helpers.ButtonClass(""))
		m.Raw(`>No</button><button type="submit" name="confirm" value="yes"`)
		m.Attr("class", helpers.ButtonClass("danger"))
		m.Raw(`>Yes, delete</button></div></form></div>`)
	})
}

// ClearModal empties the modal host out of band alongside another swap.
func ClearModal() templ.Component {
	return helpers.Component(func(_ context.Context, m *helpers.Markup) {
		m.Raw(`<div id="modal" hx-swap-oob="innerHTML"></div>`)
	})
}
