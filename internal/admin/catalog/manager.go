package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"finitefield.org/orders-admin/internal/admin/audit"
	"finitefield.org/orders-admin/internal/admin/feedback"
)

const (
	msgListFailed   = "Failed to load products."
	msgGetFailed    = "Failed to load the product."
	msgCreated      = "Product created successfully!"
	msgUpdated      = "Product updated successfully!"
	msgDeleted      = "Product deleted successfully."
	msgInvalid      = "Please correct the highlighted fields."
	msgCreateFailed = "Failed to create the product."
	msgUpdateFailed = "Failed to update the product."
	msgDeleteFailed = "Failed to delete the product."

	// DeletePrompt is the question the confirmation gate is asked before a delete.
	DeletePrompt = "Are you sure you want to delete this product?"
)

// Options configures a Manager. Feedback collaborators are resolved per call, so a single
// Manager can serve every request when they are feedback.Contextual.
type Options struct {
	Backend   Backend
	Notifier  feedback.Notifier
	Navigator feedback.Navigator
	Confirmer feedback.Confirmer
	Audit     audit.Logger
	Logger    *zap.Logger
	Now       func() time.Time
}

// Manager runs the product create, edit and delete flows. It holds no per-user state.
type Manager struct {
	backend   Backend
	notifier  feedback.Notifier
	navigator feedback.Navigator
	confirmer feedback.Confirmer
	audit     audit.Logger
	logger    *zap.Logger
	now       func() time.Time
}

// NewManager constructs a Manager. Backend is required.
func NewManager(opts Options) (*Manager, error) {
	if opts.Backend == nil {
		return nil, errors.New("catalog: backend is required")
	}
	m := &Manager{
		backend:   opts.Backend,
		notifier:  opts.Notifier,
		navigator: opts.Navigator,
		confirmer: opts.Confirmer,
		audit:     opts.Audit,
		logger:    opts.Logger,
		now:       opts.Now,
	}
	if m.notifier == nil {
		m.notifier = feedback.Discard{}
	}
	if m.navigator == nil {
		m.navigator = feedback.Discard{}
	}
	if m.confirmer == nil {
		m.confirmer = feedback.Deny{}
	}
	if m.audit == nil {
		m.audit = audit.Nop{}
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m, nil
}

// List returns every product. On failure it returns an empty slice alongside the error.
func (m *Manager) List(ctx context.Context, token string) ([]Product, error) {
	products, err := m.backend.List(ctx, token)
	if err != nil {
		m.logger.Error("list products failed", zap.Error(err))
		m.notify(ctx, msgListFailed, feedback.ToneDanger)
		return []Product{}, fmt.Errorf("catalog: list: %w", err)
	}
	return products, nil
}

// Get loads a product for the edit form.
func (m *Manager) Get(ctx context.Context, token, productID string) (Product, error) {
	product, err := m.backend.Get(ctx, token, productID)
	if err != nil {
		m.logger.Error("get product failed", zap.String("product_id", productID), zap.Error(err))
		m.notify(ctx, msgGetFailed, feedback.ToneDanger)
		return Product{}, fmt.Errorf("catalog: get %s: %w", productID, err)
	}
	return product, nil
}

// Create validates and creates a product, then returns the user to the product list.
func (m *Manager) Create(ctx context.Context, token string, input Input) (Product, error) {
	if _, _, err := input.Validate(); err != nil {
		m.notify(ctx, msgInvalid, feedback.ToneWarning)
		return Product{}, err
	}
	product, err := m.backend.Create(ctx, token, input)
	if err != nil {
		m.logger.Error("create product failed", zap.Error(err))
		m.notify(ctx, msgCreateFailed, feedback.ToneDanger)
		return Product{}, fmt.Errorf("catalog: create: %w", err)
	}

	m.record(ctx, audit.ActionCreate, product.ID)
	m.notify(ctx, msgCreated, feedback.ToneSuccess)
	m.navigator.NavigateToList(ctx, feedback.ListProducts)
	return product, nil
}

// Update validates and saves a product, then returns the user to the product list.
func (m *Manager) Update(ctx context.Context, token, productID string, input Input) (Product, error) {
	if _, _, err := input.Validate(); err != nil {
		m.notify(ctx, msgInvalid, feedback.ToneWarning)
		return Product{}, err
	}
	product, err := m.backend.Update(ctx, token, productID, input)
	if err != nil {
		m.logger.Error("update product failed", zap.String("product_id", productID), zap.Error(err))
		m.notify(ctx, msgUpdateFailed, feedback.ToneDanger)
		return Product{}, fmt.Errorf("catalog: update %s: %w", productID, err)
	}

	m.record(ctx, audit.ActionUpdate, productID)
	m.notify(ctx, msgUpdated, feedback.ToneSuccess)
	m.navigator.NavigateToList(ctx, feedback.ListProducts)
	return product, nil
}

// Delete removes a product once the confirmation gate approves.
func (m *Manager) Delete(ctx context.Context, token, productID string) error {
	if !m.confirmer.Confirm(ctx, DeletePrompt) {
		return ErrConfirmationDeclined
	}
	if err := m.backend.Delete(ctx, token, productID); err != nil {
		m.logger.Error("delete product failed", zap.String("product_id", productID), zap.Error(err))
		m.notify(ctx, msgDeleteFailed, feedback.ToneDanger)
		return fmt.Errorf("catalog: delete %s: %w", productID, err)
	}

	m.record(ctx, audit.ActionDelete, productID)
	m.notify(ctx, msgDeleted, feedback.ToneSuccess)
	m.navigator.NavigateToList(ctx, feedback.ListProducts)
	return nil
}

func (m *Manager) notify(ctx context.Context, message string, tone feedback.Tone) {
	m.notifier.Notify(ctx, feedback.Notification{Message: message, Tone: tone})
}

func (m *Manager) record(ctx context.Context, action, productID string) {
	err := m.audit.Record(ctx, audit.Entry{
		Resource:   audit.ResourceProduct,
		ResourceID: productID,
		Action:     action,
		ActorID:    audit.ActorFromContext(ctx),
		OccurredAt: m.now().UTC(),
	})
	if err != nil {
		m.logger.Warn("audit record failed", zap.String("product_id", productID), zap.Error(err))
	}
}
