package audit

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Resource kinds recorded in the audit trail.
const (
	ResourceOrder   = "order"
	ResourceProduct = "product"
)

// Actions recorded in the audit trail.
const (
	ActionStatusChange = "status_change"
	ActionCancel       = "cancel"
	ActionDelete       = "delete"
	ActionCreate       = "create"
	ActionUpdate       = "update"
)

// Entry describes a single mutation issued from the console.
type Entry struct {
	Resource   string    `json:"resource"`
	ResourceID string    `json:"resource_id"`
	Action     string    `json:"action"`
	From       string    `json:"from,omitempty"`
	To         string    `json:"to,omitempty"`
	ActorID    string    `json:"actor_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Logger records audit trail entries. Callers treat failures as non-fatal.
type Logger interface {
	Record(ctx context.Context, entry Entry) error
}

type actorContextKey struct{}

// WithActor attaches the acting staff identifier to ctx.
func WithActor(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actorID)
}

// ActorFromContext returns the actor stored by WithActor.
func ActorFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	actor, _ := ctx.Value(actorContextKey{}).(string)
	return actor
}

// ZapLogger writes entries to a structured logger.
type ZapLogger struct {
	logger *zap.Logger
}

// NewZapLogger constructs a ZapLogger. The logger is used as given; callers choose its name.
func NewZapLogger(logger *zap.Logger) *ZapLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapLogger{logger: logger}
}

// Record implements Logger.
func (l *ZapLogger) Record(_ context.Context, entry Entry) error {
	l.logger.Info("audit",
		zap.String("resource", entry.Resource),
		zap.String("resource_id", entry.ResourceID),
		zap.String("action", entry.Action),
		zap.String("from", entry.From),
		zap.String("to", entry.To),
		zap.String("actor_id", entry.ActorID),
		zap.Time("occurred_at", entry.OccurredAt),
	)
	return nil
}

// Multi fans an entry out to every logger and joins their errors.
type Multi []Logger

// Record implements Logger.
func (m Multi) Record(ctx context.Context, entry Entry) error {
	var errs []error
	for _, l := range m {
		if l == nil {
			continue
		}
		if err := l.Record(ctx, entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards entries.
type Nop struct{}

// Record implements Logger.
func (Nop) Record(context.Context, Entry) error { return nil }
