package auth

import (
	"context"

	"github.com/a-h/templ"

	"finitefield.org/orders-admin/internal/admin/templates/helpers"
	"finitefield.org/orders-admin/internal/admin/templates/layout"
)

// LoginPage renders the sign-in form. The ID token is obtained client-side and posted as id_token.
func LoginPage(data LoginPageData) templ.Component {
	return layout.Bare("Sign in", helpers.Component(func(ctx context.Context, m *helpers.Markup) {
		m.Raw(`<main class="content"><h1 class="mb-4 text-xl font-semibold">Sign in</h1>`)
		if data.Message != "" {
			m.Raw(`<p class="mb-2 text-sm text-slate-600" data-login-message>`)
			m.Text(data.Message)
			m.Raw(`</p>`)
		}
		if data.Error != "" {
			m.Raw(`<p class="mb-2 text-sm text-rose-600" role="alert">`)
			m.Text(data.Error)
			m.Raw(`</p>`)
		}
		m.Raw(`<form method="post" class="grid max-w-sm gap-3" id="login-form"`)
		m.Attr("action", data.LoginPath)
		m.Raw(`>`)
		m.Render(ctx, helpers.CSRFField(data.CSRFToken))
		m.Raw(`<input type="hidden" name="next"`)
		m.Attr("value", data.Next)
		m.Raw(`><label>Email<input type="email" name="email" autocomplete="username"`)
		m.Attr("value", data.Email)
		m.Raw(`></label><label>ID token<input type="password" name="id_token" autocomplete="off" required></label><label><input type="checkbox" name="remember" value="true"`)
		m.AttrIf(data.Remember, "checked")
		m.Raw(`> Keep me signed in</label><button type="submit"`)
		m.Attr("class", helpers.ButtonClass("primary"))
		m.Raw(`>Sign in</button></form></main>`)
	}))
}
