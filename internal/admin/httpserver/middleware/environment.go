package middleware

import (
	"context"
	"net/http"
	"strings"
)

type environmentContextKey struct{}

const defaultEnvironment = "Development"

// Environment labels every request with the deployment name shown in the sidebar, so staff can
// tell a staging console from production before advancing or deleting an order.
func Environment(name string) func(http.Handler) http.Handler {
	label := strings.TrimSpace(name)
	if label == "" {
		label = defaultEnvironment
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), environmentContextKey{}, label)))
		})
	}
}

// EnvironmentFromContext returns the deployment label, defaulting to Development.
func EnvironmentFromContext(ctx context.Context) string {
	if label, ok := ctx.Value(environmentContextKey{}).(string); ok && label != "" {
		return label
	}
	return defaultEnvironment
}
