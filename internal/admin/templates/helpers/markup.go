package helpers

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Markup writes HTML fragments for hand-built components, remembering the first error so
// callers can emit markup linearly and check once.
type Markup struct {
	w   io.Writer
	err error
}

// NewMarkup wraps w.
func NewMarkup(w io.Writer) *Markup {
	return &Markup{w: w}
}

// Raw writes trusted markup verbatim.
func (m *Markup) Raw(s string) {
	if m.err != nil {
		return
	}
	_, m.err = io.WriteString(m.w, s)
}

// Text writes s with HTML escaping.
func (m *Markup) Text(s string) {
	m.Raw(templ.EscapeString(s))
}

// Attr writes ` name="value"` with the value escaped.
func (m *Markup) Attr(name, value string) {
	m.Raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

// AttrIf writes a boolean attribute when cond holds.
func (m *Markup) AttrIf(cond bool, name string) {
	if cond {
		m.Raw(" " + name)
	}
}

// Render writes a nested component.
func (m *Markup) Render(ctx context.Context, c templ.Component) {
	if m.err != nil || c == nil {
		return
	}
	m.err = c.Render(ctx, m.w)
}

// Err returns the first write error.
func (m *Markup) Err() error {
	return m.err
}

// Component adapts a Markup-based render function to templ.Component.
func Component(fn func(ctx context.Context, m *Markup)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := NewMarkup(w)
		fn(ctx, m)
		return m.Err()
	})
}

// TextComponent returns a component that renders escaped text.
func TextComponent(value string) templ.Component {
	return Component(func(_ context.Context, m *Markup) {
		m.Text(value)
	})
}

// CSRFField renders the hidden csrf_token input.
func CSRFField(token string) templ.Component {
	return Component(func(_ context.Context, m *Markup) {
		m.Raw(`<input type="hidden" name="csrf_token"`)
		m.Attr("value", token)
		m.Raw(">")
	})
}
