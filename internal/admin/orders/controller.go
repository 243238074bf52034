package orders

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"finitefield.org/orders-admin/internal/admin/audit"
	"finitefield.org/orders-admin/internal/admin/feedback"
)

// User-facing messages reported through the Notifier.
const (
	msgLoadFailed      = "Failed to load orders."
	msgAdvanceFailed   = "Failed to update the order status."
	msgAlreadyPaid     = "Order is already paid and its status can no longer change."
	msgAlreadyCanceled = "Order is cancelled and its status can no longer change."
	msgUnknownStatus   = "Order status is unknown and cannot be advanced."
	msgCancelled       = "Order cancelled."
	msgCancelFailed    = "Failed to cancel the order."
	msgDeleted         = "Order deleted successfully."
	msgDeleteFailed    = "Failed to delete the order."
	msgDetailFailed    = "Failed to load order details."
	msgNotFound        = "Order not found."

	// DeletePrompt is the question the confirmation gate is asked before a delete.
	DeletePrompt = "Are you sure you want to delete this order?"
)

// Options configures a Controller.
type Options struct {
	Backend   Backend
	Notifier  feedback.Notifier
	Navigator feedback.Navigator
	Confirmer feedback.Confirmer
	Audit     audit.Logger
	Logger    *zap.Logger
	Token     string

	// CoalesceDetail collapses concurrent FetchDetail calls for the same id into one request.
	// The shared request outlives a cancelled caller, so it is bounded only by the backend client.
	CoalesceDetail bool

	Now func() time.Time
}

// State is a point-in-time copy of the controller state used for rendering.
type State struct {
	Orders        []Order
	Detail        *OrderDetail
	DetailVisible bool
}

// Controller owns the orders known to the console and the detail modal, and issues
// lifecycle requests through the Backend.
//
// The mutex guards state only and is never held across a backend call. Concurrent
// operations on the same order race and the last response to arrive wins.
type Controller struct {
	backend   Backend
	notifier  feedback.Notifier
	navigator feedback.Navigator
	confirmer feedback.Confirmer
	audit     audit.Logger
	logger    *zap.Logger
	now       func() time.Time
	coalesce  bool
	detail    singleflight.Group

	mu            sync.Mutex
	token         string
	orders        []Order
	selected      *OrderDetail
	detailVisible bool
}

// NewController constructs a Controller. Backend is required.
func NewController(opts Options) (*Controller, error) {
	if opts.Backend == nil {
		return nil, errors.New("orders: backend is required")
	}
	c := &Controller{
		backend:   opts.Backend,
		notifier:  opts.Notifier,
		navigator: opts.Navigator,
		confirmer: opts.Confirmer,
		audit:     opts.Audit,
		logger:    opts.Logger,
		now:       opts.Now,
		coalesce:  opts.CoalesceDetail,
		token:     opts.Token,
		orders:    []Order{},
	}
	if c.notifier == nil {
		c.notifier = feedback.Discard{}
	}
	if c.navigator == nil {
		c.navigator = feedback.Discard{}
	}
	if c.confirmer == nil {
		c.confirmer = feedback.Deny{}
	}
	if c.audit == nil {
		c.audit = audit.Nop{}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c, nil
}

// SetToken replaces the bearer credential forwarded to the backend.
func (c *Controller) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := State{
		Orders:        make([]Order, 0, len(c.orders)),
		DetailVisible: c.detailVisible,
	}
	for _, o := range c.orders {
		out.Orders = append(out.Orders, o.clone())
	}
	if c.selected != nil {
		d := c.selected.clone()
		out.Detail = &d
	}
	return out
}

// Load replaces the known orders with the backend list. On failure the previous list is kept.
func (c *Controller) Load(ctx context.Context) error {
	list, err := c.backend.List(ctx, c.currentToken())
	if err != nil {
		c.logger.Error("load orders failed", zap.Error(err))
		c.notify(ctx, msgLoadFailed, feedback.ToneDanger)
		return fmt.Errorf("orders: load: %w", err)
	}

	c.mu.Lock()
	c.orders = list
	c.mu.Unlock()
	return nil
}

// AdvanceStatus requests the next status in the pending, delivery, paid progression.
// current is the caller's view of the order status and is not checked against the backend.
// The local list is not changed; the next Load reflects the new status.
func (c *Controller) AdvanceStatus(ctx context.Context, orderID string, current Status) (Status, error) {
	if !c.known(orderID) {
		c.notify(ctx, msgNotFound, feedback.ToneWarning)
		return "", fmt.Errorf("orders: advance %s: %w", orderID, ErrOrderNotFound)
	}

	next, err := NextStatus(current)
	if err != nil {
		c.logger.Info("advance refused",
			zap.String("order_id", orderID),
			zap.String("status", string(current)),
		)
		c.notify(ctx, refusalMessage(current), feedback.ToneWarning)
		return "", err
	}

	if err := c.backend.UpdateStatus(ctx, c.currentToken(), orderID, next); err != nil {
		c.logger.Error("advance order failed",
			zap.String("order_id", orderID),
			zap.String("from", string(current)),
			zap.String("to", string(next)),
			zap.Error(err),
		)
		c.notify(ctx, msgAdvanceFailed, feedback.ToneDanger)
		return "", fmt.Errorf("orders: advance %s: %w", orderID, err)
	}

	c.record(ctx, audit.ActionStatusChange, orderID, string(current), string(next))
	c.notify(ctx, "Order moved to "+next.Label(), feedback.ToneSuccess)
	return next, nil
}

// Cancel requests the cancel status whatever the order's current status, closes the
// detail view on success and leaves the list untouched. Callers reload to resynchronise.
func (c *Controller) Cancel(ctx context.Context, orderID string) error {
	if err := c.backend.UpdateStatus(ctx, c.currentToken(), orderID, StatusCancel); err != nil {
		c.logger.Error("cancel order failed", zap.String("order_id", orderID), zap.Error(err))
		c.notify(ctx, msgCancelFailed, feedback.ToneDanger)
		return fmt.Errorf("orders: cancel %s: %w", orderID, err)
	}

	c.CloseDetail()
	c.record(ctx, audit.ActionCancel, orderID, "", string(StatusCancel))
	c.notify(ctx, msgCancelled, feedback.ToneSuccess)
	c.navigator.NavigateToList(ctx, feedback.ListOrders)
	return nil
}

// Remove deletes the order after the Confirmer approves, and drops it from the list
// without a reload.
func (c *Controller) Remove(ctx context.Context, orderID string) error {
	if !c.known(orderID) {
		c.notify(ctx, msgNotFound, feedback.ToneWarning)
		return fmt.Errorf("orders: remove %s: %w", orderID, ErrOrderNotFound)
	}
	if !c.confirmer.Confirm(ctx, DeletePrompt) {
		return ErrConfirmationDeclined
	}

	if err := c.backend.Delete(ctx, c.currentToken(), orderID); err != nil {
		c.logger.Error("delete order failed", zap.String("order_id", orderID), zap.Error(err))
		c.notify(ctx, msgDeleteFailed, feedback.ToneDanger)
		return fmt.Errorf("orders: remove %s: %w", orderID, err)
	}

	c.mu.Lock()
	kept := c.orders[:0:0]
	for _, o := range c.orders {
		if o.ID != orderID {
			kept = append(kept, o)
		}
	}
	c.orders = kept
	c.mu.Unlock()

	c.record(ctx, audit.ActionDelete, orderID, "", "")
	c.notify(ctx, msgDeleted, feedback.ToneSuccess)
	return nil
}

// FetchDetail loads the order detail and shows it, replacing any detail already shown.
// On failure the previous detail stays as it was.
func (c *Controller) FetchDetail(ctx context.Context, orderID string) error {
	detail, err := c.fetchDetail(ctx, orderID)
	if err != nil {
		c.logger.Error("fetch order detail failed", zap.String("order_id", orderID), zap.Error(err))
		c.notify(ctx, msgDetailFailed, feedback.ToneDanger)
		return fmt.Errorf("orders: detail %s: %w", orderID, err)
	}

	c.mu.Lock()
	c.selected = &detail
	c.detailVisible = true
	c.mu.Unlock()
	return nil
}

// CloseDetail hides and clears the detail. It is safe to call when nothing is shown.
func (c *Controller) CloseDetail() {
	c.mu.Lock()
	c.selected = nil
	c.detailVisible = false
	c.mu.Unlock()
}

func (c *Controller) fetchDetail(ctx context.Context, orderID string) (OrderDetail, error) {
	if !c.coalesce {
		return c.backend.Detail(ctx, c.currentToken(), orderID)
	}
	// The shared fetch is detached from whichever caller started it; each caller still
	// stops waiting when its own context ends.
	ch := c.detail.DoChan(orderID, func() (any, error) {
		return c.backend.Detail(context.WithoutCancel(ctx), c.currentToken(), orderID)
	})
	select {
	case <-ctx.Done():
		return OrderDetail{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return OrderDetail{}, res.Err
		}
		// Shared results must not alias between callers.
		return res.Val.(OrderDetail).clone(), nil
	}
}

func (c *Controller) known(orderID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, o := range c.orders {
		if o.ID == orderID {
			return true
		}
	}
	return false
}

func (c *Controller) currentToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Controller) notify(ctx context.Context, message string, tone feedback.Tone) {
	c.notifier.Notify(ctx, feedback.Notification{Message: message, Tone: tone})
}

func (c *Controller) record(ctx context.Context, action, orderID, from, to string) {
	entry := audit.Entry{
		Resource:   audit.ResourceOrder,
		ResourceID: orderID,
		Action:     action,
		From:       from,
		To:         to,
		ActorID:    audit.ActorFromContext(ctx),
		OccurredAt: c.now().UTC(),
	}
	if err := c.audit.Record(ctx, entry); err != nil {
		c.logger.Warn("audit record failed",
			zap.String("order_id", orderID),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

func refusalMessage(current Status) string {
	switch current {
	case StatusPaid:
		return msgAlreadyPaid
	case StatusCancel:
		return msgAlreadyCanceled
	default:
		return msgUnknownStatus
	}
}
