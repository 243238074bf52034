package helpers

import (
	"context"
	"net/url"
	"strings"

	"finitefield.org/orders-admin/internal/admin/httpserver/middleware"
)

// RequestPath returns the current request URL path.
func RequestPath(ctx context.Context) string {
	return normalizeRoute(middleware.RequestPathFromContext(ctx))
}

// BasePath returns the configured admin base path.
func BasePath(ctx context.Context) string {
	return normalizeRoute(middleware.BasePathFromContext(ctx))
}

// Path joins escaped segments onto the admin base path.
func Path(ctx context.Context, segments ...string) string {
	base := BasePath(ctx)
	if len(segments) == 0 {
		return base
	}
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg = strings.Trim(seg, "/"); seg != "" {
			parts = append(parts, url.PathEscape(seg))
		}
	}
	return normalizeRoute(base + "/" + strings.Join(parts, "/"))
}

// NavActive reports whether the current request should highlight the menu item
// pointing at pattern. With prefix, nested routes also match.
func NavActive(ctx context.Context, pattern string, prefix bool) bool {
	current := RequestPath(ctx)
	target := normalizeRoute(pattern)
	if !prefix || target == "/" {
		return current == target
	}
	return current == target || strings.HasPrefix(current, target+"/")
}

func normalizeRoute(path string) string {
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}
