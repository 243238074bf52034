package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"finitefield.org/orders-admin/internal/admin/observability"
	"finitefield.org/orders-admin/internal/admin/rbac"
)

// RequireCapability answers 403 unless the signed-in staff member's roles grant capability.
// htmx callers also get HX-Refresh so the page drops controls they can no longer use.
func RequireCapability(capability rbac.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if ok && rbac.HasCapability(user.Roles, capability) {
				next.ServeHTTP(w, r)
				return
			}

			uid := ""
			if ok {
				uid = user.UID
			}
			observability.FromContext(r.Context()).Info("capability denied",
				zap.String("uid", uid),
				zap.String("capability", string(capability)),
				zap.String("path", r.URL.Path),
			)
			if IsHTMXRequest(r.Context()) {
				w.Header().Set("HX-Refresh", "true")
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}
