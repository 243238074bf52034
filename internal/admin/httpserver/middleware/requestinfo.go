package middleware

import (
	"context"
	"net/http"
	"strings"
)

type requestInfoKey struct{}

type requestInfo struct {
	path     string
	basePath string
}

// RequestInfoMiddleware records the request path and the console mount point for templates
// that build links and highlight the active navigation entry.
func RequestInfoMiddleware(basePath string) func(http.Handler) http.Handler {
	base := NormaliseBasePath(basePath)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info := requestInfo{path: r.URL.Path, basePath: base}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestInfoKey{}, info)))
		})
	}
}

// RequestPathFromContext returns the request path, or "" outside RequestInfoMiddleware.
func RequestPathFromContext(ctx context.Context) string {
	info, _ := ctx.Value(requestInfoKey{}).(requestInfo)
	return info.path
}

// BasePathFromContext returns the console mount point, or "/" outside RequestInfoMiddleware.
func BasePathFromContext(ctx context.Context) string {
	if info, ok := ctx.Value(requestInfoKey{}).(requestInfo); ok && info.basePath != "" {
		return info.basePath
	}
	return "/"
}

// NormaliseBasePath turns "admin/", " /admin" and "/admin" into "/admin". Blank means "/".
func NormaliseBasePath(base string) string {
	base = strings.Trim(strings.TrimSpace(base), "/")
	if base == "" {
		return "/"
	}
	return "/" + base
}
