package orders

import (
	adminorders "finitefield.org/orders-admin/internal/admin/orders"
	"finitefield.org/orders-admin/internal/admin/templates/helpers"
)

const emptyMessage = "No orders yet."

// TableData is the payload of the orders table fragment.
type TableData struct {
	Rows         []Row
	Error        string
	EmptyMessage string
	CanManage    bool
	CanView      bool
}

// Row is one order in the table.
type Row struct {
	ID          string
	ShortID     string
	Customer    string
	ItemCount   int
	Amount      string
	CreatedAt   string
	Payment     string
	Status      adminorders.Status
	StatusLabel string
	BadgeClass  string
	CanAdvance  bool
}

// DetailData is the payload of the detail modal.
type DetailData struct {
	Visible     bool
	ID          string
	ShortID     string
	Customer    string
	Status      adminorders.Status
	StatusLabel string
	BadgeClass  string
	CreatedAt   string
	Payment     string
	Amount      string
	Lines       []LineRow
	CanCancel   bool
}

// LineRow is one product line inside the detail modal.
type LineRow struct {
	ProductID string
	Name      string
	Color     string
	Price     string
	Quantity  int
	Total     string
}

// BuildTable derives the table rows from a controller snapshot.
func BuildTable(state adminorders.State, errMsg string, canView, canManage bool) TableData {
	rows := make([]Row, 0, len(state.Orders))
	for _, o := range state.Orders {
		rows = append(rows, Row{
			ID:          o.ID,
			ShortID:     adminorders.ShortID(o.ID),
			Customer:    o.Customer.DisplayName(),
			ItemCount:   adminorders.ItemCount(o),
			Amount:      helpers.Money(o.Amount),
			CreatedAt:   helpers.Date(o.CreatedAt, ""),
			Payment:     adminorders.PaymentMethodLabel(o),
			Status:      o.Status,
			StatusLabel: o.Status.Label(),
			BadgeClass:  helpers.StatusBadgeClass(o.Status),
			CanAdvance:  canManage && adminorders.CanAdvance(o.Status),
		})
	}
	return TableData{
		Rows:         rows,
		Error:        errMsg,
		EmptyMessage: emptyMessage,
		CanManage:    canManage,
		CanView:      canView,
	}
}

// BuildDetail derives the modal payload. It is invisible unless the snapshot shows a detail.
func BuildDetail(state adminorders.State, canManage bool) DetailData {
	if !state.DetailVisible || state.Detail == nil {
		return DetailData{}
	}
	o := state.Detail.Order
	lines := make([]LineRow, 0, len(o.LineItems))
	for _, item := range o.LineItems {
		lines = append(lines, LineRow{
			ProductID: adminorders.ShortProductID(item.Product.ID),
			Name:      item.Product.Name,
			Color:     item.Product.Color,
			Price:     helpers.Money(item.Product.Price),
			Quantity:  item.Quantity,
			Total:     "$" + adminorders.LineTotal(item.Product.Price, item.Quantity),
		})
	}
	return DetailData{
		Visible:     true,
		ID:          o.ID,
		ShortID:     adminorders.ShortID(o.ID),
		Customer:    o.Customer.DisplayName(),
		Status:      o.Status,
		StatusLabel: o.Status.Label(),
		BadgeClass:  helpers.StatusBadgeClass(o.Status),
		CreatedAt:   helpers.Date(o.CreatedAt, ""),
		Payment:     adminorders.PaymentMethodLabel(o),
		Amount:      helpers.Money(o.Amount),
		Lines:       lines,
		CanCancel:   canManage && o.Status != adminorders.StatusCancel,
	}
}
