package orders

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	adminorders "finitefield.org/orders-admin/internal/admin/orders"
)

func renderDoc(t *testing.T, fn func(*bytes.Buffer) error) *goquery.Document {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, fn(&buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func sampleState() adminorders.State {
	price := decimal.RequireFromString("10.50")
	paid := adminorders.Order{
		ID:       "6712f0a1b2c3d4e5f6a71050",
		Customer: adminorders.Customer{Username: "mika"},
		LineItems: []adminorders.LineItem{
			{ID: "l1", Quantity: 3, Product: adminorders.ProductRef{ID: "6701a9e2c4b1f0d3a8e41a01", Name: "Silver Ring", Color: "silver", Price: price, Resolved: true}},
		},
		Amount:    decimal.RequireFromString("31.50"),
		CreatedAt: time.Date(2024, 10, 18, 9, 5, 0, 0, time.Local),
		Status:    adminorders.StatusPaid,
	}
	pending := adminorders.Order{ID: "o-pending-0001", Status: adminorders.StatusPending, Amount: decimal.NewFromInt(5)}
	return adminorders.State{
		Orders:        []adminorders.Order{pending, paid},
		Detail:        &adminorders.OrderDetail{Order: paid},
		DetailVisible: true,
	}
}

func TestTableRendersRowsAndGuards(t *testing.T) {
	t.Parallel()

	data := BuildTable(sampleState(), "", true, true)
	doc := renderDoc(t, func(buf *bytes.Buffer) error {
		return Table(data).Render(context.Background(), buf)
	})

	rows := doc.Find("tr[data-order-id]")
	require.Equal(t, 2, rows.Length())

	pending := doc.Find(`tr[data-order-id="o-pending-0001"]`)
	require.Equal(t, "ORD...0001", pending.Find("td").First().Text())
	require.Equal(t, 1, pending.Find(`[data-action="advance"]`).Length())
	vals, _ := pending.Find(`[data-action="advance"]`).Attr("hx-vals")
	require.Equal(t, `{"status":"pending"}`, vals)

	paid := doc.Find(`tr[data-order-id="6712f0a1b2c3d4e5f6a71050"]`)
	require.Equal(t, 0, paid.Find(`[data-action="advance"]`).Length())
	require.Equal(t, "Paid", paid.Find("span").Text())
	require.Contains(t, paid.Text(), "$31.50")
	require.Contains(t, paid.Text(), "mika")
}

func TestTableHidesManageActionsWithoutCapability(t *testing.T) {
	t.Parallel()

	data := BuildTable(sampleState(), "Failed to load orders.", true, false)
	doc := renderDoc(t, func(buf *bytes.Buffer) error {
		return Table(data).Render(context.Background(), buf)
	})

	require.Equal(t, 0, doc.Find(`[data-action="advance"]`).Length())
	require.Equal(t, 0, doc.Find(`[data-action="delete"]`).Length())
	require.Equal(t, 2, doc.Find(`[data-action="detail"]`).Length())
	require.Equal(t, "Failed to load orders.", doc.Find(`[role="alert"]`).Text())
}

func TestTableEmpty(t *testing.T) {
	t.Parallel()

	data := BuildTable(adminorders.State{Orders: []adminorders.Order{}}, "", true, true)
	doc := renderDoc(t, func(buf *bytes.Buffer) error {
		return Table(data).Render(context.Background(), buf)
	})
	require.Equal(t, "No orders yet.", doc.Find("[data-empty]").Text())
}

func TestDetailModal(t *testing.T) {
	t.Parallel()

	data := BuildDetail(sampleState(), true)
	require.True(t, data.Visible)
	doc := renderDoc(t, func(buf *bytes.Buffer) error {
		return DetailModal(data).Render(context.Background(), buf)
	})

	require.Equal(t, "$31.50", doc.Find("[data-line-total]").Text())
	require.Contains(t, doc.Find("[data-line]").Text(), "Pro...1a01")
	require.Equal(t, 1, doc.Find(`[data-action="cancel"]`).Length())

	hidden := BuildDetail(adminorders.State{}, true)
	require.False(t, hidden.Visible)
	var buf bytes.Buffer
	require.NoError(t, DetailModal(hidden).Render(context.Background(), &buf))
	require.Empty(t, buf.String())
}

func TestDeleteConfirm(t *testing.T) {
	t.Parallel()

	doc := renderDoc(t, func(buf *bytes.Buffer) error {
		return DeleteConfirm("o-pending-0001", "tok").Render(context.Background(), buf)
	})

	form := doc.Find("form[data-confirm-delete]")
	action, _ := form.Attr("action")
	require.Equal(t, "/orders/o-pending-0001/delete", action)
	require.Contains(t, form.Text(), adminorders.DeletePrompt)
	csrf, _ := form.Find(`input[name="csrf_token"]`).Attr("value")
	require.Equal(t, "tok", csrf)
	require.Equal(t, 2, form.Find(`button[name="confirm"]`).Length())
}
