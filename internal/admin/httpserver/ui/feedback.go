package ui

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"finitefield.org/orders-admin/internal/admin/feedback"
	custommw "finitefield.org/orders-admin/internal/admin/httpserver/middleware"
	"finitefield.org/orders-admin/internal/admin/observability"
)

// exchange binds the feedback collaborators to one request/response pair. Controllers
// reach it through feedback.Contextual, so a long-lived controller never holds a writer.
type exchange struct {
	w        http.ResponseWriter
	r        *http.Request
	ctx      context.Context
	basePath string
	htmx     bool

	notes    []feedback.Notification
	redirect string
}

func newExchange(w http.ResponseWriter, r *http.Request) *exchange {
	ex := &exchange{
		w:        w,
		r:        r,
		basePath: custommw.BasePathFromContext(r.Context()),
		htmx:     custommw.IsHTMXRequest(r.Context()),
	}
	ex.ctx = feedback.WithScope(r.Context(), feedback.Scope{Notifier: ex, Navigator: ex, Confirmer: ex})
	return ex
}

// Notify implements feedback.Notifier.
func (ex *exchange) Notify(_ context.Context, n feedback.Notification) {
	ex.notes = append(ex.notes, n)
}

// NavigateToList implements feedback.Navigator.
func (ex *exchange) NavigateToList(_ context.Context, list string) {
	ex.redirect = joinBasePath(ex.basePath, list)
}

// Confirm implements feedback.Confirmer by reading the confirm form field.
func (ex *exchange) Confirm(_ context.Context, _ string) bool {
	return parseConfirm(ex.r.PostFormValue("confirm"))
}

// navigated reports whether a collaborator asked to leave the current view.
func (ex *exchange) navigated() bool {
	return ex.redirect != ""
}

// flashes returns session flashes queued by earlier requests followed by this request's notes.
func (ex *exchange) flashes() []feedback.Notification {
	var out []feedback.Notification
	if sess, ok := custommw.SessionFromContext(ex.r.Context()); ok {
		out = append(out, sess.PopFlashes()...)
	}
	return append(out, ex.notes...)
}

// trigger sets the HX-Trigger toast for the latest note.
func (ex *exchange) trigger() {
	if len(ex.notes) == 0 {
		return
	}
	payload, err := json.Marshal(map[string]feedback.Notification{"toast": ex.notes[len(ex.notes)-1]})
	if err != nil {
		observability.FromContext(ex.ctx).Warn("encode toast failed", zap.Error(err))
		return
	}
	ex.w.Header().Set("HX-Trigger", string(payload))
}

// finishRedirect completes the response by moving to target: HX-Redirect for htmx, otherwise
// a 303 with the notes carried over as session flashes.
func (ex *exchange) finishRedirect(target string) {
	if ex.htmx {
		ex.trigger()
		ex.w.Header().Set("HX-Redirect", target)
		ex.w.WriteHeader(http.StatusNoContent)
		return
	}
	if sess, ok := custommw.SessionFromContext(ex.r.Context()); ok {
		for _, n := range ex.notes {
			sess.AddFlash(n)
		}
	}
	http.Redirect(ex.w, ex.r, target, http.StatusSeeOther)
}

// finishNavigation follows a collaborator navigation, if any. It reports whether the response was written.
func (ex *exchange) finishNavigation() bool {
	if !ex.navigated() {
		return false
	}
	ex.finishRedirect(ex.redirect)
	return true
}

// finishAction ends an htmx action that swaps nothing, or redirects plain form posts back to fallback.
func (ex *exchange) finishAction(fallback string) {
	if ex.finishNavigation() {
		return
	}
	if !ex.htmx {
		ex.finishRedirect(fallback)
		return
	}
	ex.trigger()
	ex.w.WriteHeader(http.StatusNoContent)
}

func parseConfirm(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "true", "1", "on":
		return true
	default:
		return false
	}
}
