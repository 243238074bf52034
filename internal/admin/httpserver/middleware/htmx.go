package middleware

import (
	"context"
	"net/http"
	"strings"
)

type htmxContextKey struct{}

// HTMX marks requests issued by htmx so handlers can answer with fragments and HX-* headers.
func HTMX() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Vary", "HX-Request")
			isHTMX := strings.EqualFold(r.Header.Get("HX-Request"), "true")
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), htmxContextKey{}, isHTMX)))
		})
	}
}

// IsHTMXRequest reports whether HTMX flagged the request as an htmx call.
func IsHTMXRequest(ctx context.Context) bool {
	isHTMX, _ := ctx.Value(htmxContextKey{}).(bool)
	return isHTMX
}

// RequireHTMX answers 404 when a fragment route is opened directly.
func RequireHTMX() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsHTMXRequest(r.Context()) {
				http.NotFound(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NoStore keeps signed-in pages, which embed order data, out of browser and proxy caches.
func NoStore() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "no-store, max-age=0")
			w.Header().Set("Pragma", "no-cache")
			next.ServeHTTP(w, r)
		})
	}
}
