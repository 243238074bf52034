// Package feedback defines the user-facing collaborators that controllers report through:
// toast notifications, list navigation and the yes/no confirmation gate.
package feedback

import (
	"context"
	"sync"
)

// Tone classifies a notification for styling.
type Tone string

const (
	ToneSuccess Tone = "success"
	ToneInfo    Tone = "info"
	ToneWarning Tone = "warning"
	ToneDanger  Tone = "danger"
)

// Notification is a single user-facing message.
type Notification struct {
	Message string `json:"message"`
	Tone    Tone   `json:"tone"`
}

// Notifier surfaces success and failure text to the user.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Navigator moves the user to a list view after a successful mutation.
type Navigator interface {
	NavigateToList(ctx context.Context, list string)
}

// Confirmer gates destructive operations on an explicit yes/no answer.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// List names used with Navigator.
const (
	ListOrders   = "orders"
	ListProducts = "products"
)

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, list string)

// NavigateToList implements Navigator.
func (f NavigatorFunc) NavigateToList(ctx context.Context, list string) { f(ctx, list) }

// ConfirmerFunc adapts a function to Confirmer.
type ConfirmerFunc func(ctx context.Context, prompt string) bool

// Confirm implements Confirmer.
func (f ConfirmerFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// Discard drops notifications and navigation requests.
type Discard struct{}

// Notify implements Notifier.
func (Discard) Notify(context.Context, Notification) {}

// NavigateToList implements Navigator.
func (Discard) NavigateToList(context.Context, string) {}

// Deny is a Confirmer that always answers no.
type Deny struct{}

// Confirm implements Confirmer.
func (Deny) Confirm(context.Context, string) bool { return false }

// Recorder captures notifications, navigations and confirmation prompts. It answers
// confirmations with Answer. Safe for concurrent use.
type Recorder struct {
	Answer bool

	mu            sync.Mutex
	notifications []Notification
	navigations   []string
	prompts       []string
}

// Notify implements Notifier.
func (r *Recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, n)
}

// NavigateToList implements Navigator.
func (r *Recorder) NavigateToList(_ context.Context, list string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.navigations = append(r.navigations, list)
}

// Confirm implements Confirmer.
func (r *Recorder) Confirm(_ context.Context, prompt string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts = append(r.prompts, prompt)
	return r.Answer
}

// Notifications returns a copy of the recorded notifications.
func (r *Recorder) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.notifications...)
}

// Navigations returns a copy of the recorded list navigations.
func (r *Recorder) Navigations() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.navigations...)
}

// Prompts returns a copy of the recorded confirmation prompts.
func (r *Recorder) Prompts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.prompts...)
}

// Last returns the most recent notification, if any.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notifications) == 0 {
		return Notification{}, false
	}
	return r.notifications[len(r.notifications)-1], true
}

// Scope binds the collaborators of a single request.
type Scope struct {
	Notifier  Notifier
	Navigator Navigator
	Confirmer Confirmer
}

type scopeContextKey struct{}

// WithScope attaches request-bound collaborators to ctx.
func WithScope(ctx context.Context, s Scope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, s)
}

// ScopeFromContext returns the collaborators attached by WithScope.
func ScopeFromContext(ctx context.Context) (Scope, bool) {
	if ctx == nil {
		return Scope{}, false
	}
	s, ok := ctx.Value(scopeContextKey{}).(Scope)
	return s, ok
}

// Contextual dispatches to the Scope carried by the call's context. Without a scope,
// notifications and navigations are dropped and confirmations are denied.
type Contextual struct{}

// Notify implements Notifier.
func (Contextual) Notify(ctx context.Context, n Notification) {
	if s, ok := ScopeFromContext(ctx); ok && s.Notifier != nil {
		s.Notifier.Notify(ctx, n)
	}
}

// NavigateToList implements Navigator.
func (Contextual) NavigateToList(ctx context.Context, list string) {
	if s, ok := ScopeFromContext(ctx); ok && s.Navigator != nil {
		s.Navigator.NavigateToList(ctx, list)
	}
}

// Confirm implements Confirmer.
func (Contextual) Confirm(ctx context.Context, prompt string) bool {
	if s, ok := ScopeFromContext(ctx); ok && s.Confirmer != nil {
		return s.Confirmer.Confirm(ctx, prompt)
	}
	return false
}
