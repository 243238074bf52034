// Package layout renders the console chrome shared by every full page.
package layout

import (
	"context"
	"encoding/json"

	"github.com/a-h/templ"

	"finitefield.org/orders-admin/internal/admin/feedback"
	"finitefield.org/orders-admin/internal/admin/httpserver/middleware"
	"finitefield.org/orders-admin/internal/admin/rbac"
	"finitefield.org/orders-admin/internal/admin/templates/helpers"
)

const htmxScript = "https://unpkg.com/htmx.org@2.0.3"

// Data carries per-page chrome state.
type Data struct {
	Title   string
	Flashes []feedback.Notification
	// Modal is rendered inside the modal host, e.g. a detail left open by the session.
	Modal templ.Component
}

type navItem struct {
	Label      string
	Segment    string
	Capability rbac.Capability
}

var navItems = []navItem{
	{Label: "Orders", Segment: "orders", Capability: rbac.CapOrdersList},
	{Label: "Products", Segment: "products", Capability: rbac.CapCatalogManage},
}

// Page wraps body in the document shell, navigation and toast host.
func Page(data Data, body templ.Component) templ.Component {
	return helpers.Component(func(ctx context.Context, m *helpers.Markup) {
		title := "Orders Admin"
		if data.Title != "" {
			title = data.Title + " | " + title
		}

		m.Raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>`)
		m.Text(title)
		m.Raw(`</title><link rel="stylesheet"`)
		m.Attr("href", helpers.Path(ctx, "static", "admin.css"))
		m.Raw(`><script`)
		m.Attr("src", htmxScript)
		m.Raw(`></script></head><body`)
		m.Attr("hx-headers", csrfHeaders(ctx))
		m.Raw(`><div class="layout">`)
		m.Render(ctx, sidebar())
		m.Raw(`<main class="content">`)
		m.Render(ctx, body)
		m.Raw(`</main></div><div id="modal">`)
		m.Render(ctx, data.Modal)
		m.Raw(`</div><div id="toasts" aria-live="polite">`)
		for _, flash := range data.Flashes {
			m.Raw(`<span hidden`)
			m.Attr("data-flash", flash.Message)
			m.Attr("data-tone", string(flash.Tone))
			m.Raw(`></span>`)
		}
		m.Raw(`</div><script`)
		m.Attr("src", helpers.Path(ctx, "static", "admin.js"))
		m.Raw(`></script></body></html>`)
	})
}

// Bare renders body in the document shell without navigation, for signed-out pages.
func Bare(title string, body templ.Component) templ.Component {
	return helpers.Component(func(ctx context.Context, m *helpers.Markup) {
		m.Raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>`)
		m.Text(title + " | Orders Admin")
		m.Raw(`</title><link rel="stylesheet"`)
		m.Attr("href", helpers.Path(ctx, "static", "admin.css"))
		m.Raw(`></head><body>`)
		m.Render(ctx, body)
		m.Raw(`</body></html>`)
	})
}

func sidebar() templ.Component {
	return helpers.Component(func(ctx context.Context, m *helpers.Markup) {
		m.Raw(`<aside class="sidebar"><p class="text-xs uppercase text-slate-500">`)
		m.Text(middleware.EnvironmentFromContext(ctx))
		m.Raw(`</p><nav>`)
		for _, item := range navItems {
			if !helpers.HasCapability(ctx, item.Capability) {
				continue
			}
			href := helpers.Path(ctx, item.Segment)
			m.Raw(`<a`)
			m.Attr("href", href)
			m.Attr("class", helpers.NavClass(helpers.NavActive(ctx, href, true)))
			m.Raw(`>`)
			m.Text(item.Label)
			m.Raw(`</a>`)
		}
		m.Raw(`</nav>`)
		if user, ok := middleware.UserFromContext(ctx); ok {
			name := user.Email
			if name == "" {
				name = user.UID
			}
			m.Raw(`<form method="post"`)
			m.Attr("action", helpers.Path(ctx, "logout"))
			m.Raw(`>`)
			m.Render(ctx, helpers.CSRFField(middleware.CSRFTokenFromContext(ctx)))
			m.Raw(`<span class="text-sm">`)
			m.Text(name)
			m.Raw(`</span> <button type="submit"`)
			m.Attr("class", helpers.ButtonClass(""))
			m.Raw(`>Sign out</button></form>`)
		}
		m.Raw(`</aside>`)
	})
}

func csrfHeaders(ctx context.Context) string {
	token := middleware.CSRFTokenFromContext(ctx)
	if token == "" {
		return "{}"
	}
	raw, err := json.Marshal(map[string]string{"X-CSRF-Token": token})
	if err != nil {
		return "{}"
	}
	return string(raw)
}
