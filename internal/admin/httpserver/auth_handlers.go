package httpserver

import (
	"errors"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	custommw "finitefield.org/orders-admin/internal/admin/httpserver/middleware"
	"finitefield.org/orders-admin/internal/admin/observability"
	appsession "finitefield.org/orders-admin/internal/admin/session"
	"finitefield.org/orders-admin/internal/admin/templates/auth"
)

const (
	msgLoginRequired  = "Please sign in to continue."
	msgSessionExpired = "Your session has expired. Please sign in again."
	msgLoggedOut      = "You have been signed out."
	msgTokenMissing   = "Enter your ID token to sign in."
	msgLoginInvalid   = "Sign-in failed. Check your credentials and try again."
	msgFormInvalid    = "The form could not be read. Please try again."
)

type authHandlers struct {
	authenticator custommw.Authenticator
	basePath      string
	loginPath     string
	onLogout      func(sessionID string)
}

func newAuthHandlers(authenticator custommw.Authenticator, basePath, loginPath string, onLogout func(string)) *authHandlers {
	if authenticator == nil {
		panic("auth: authenticator is required")
	}
	basePath = custommw.NormaliseBasePath(basePath)
	if strings.TrimSpace(loginPath) == "" {
		loginPath = path.Join(basePath, "login")
	}
	return &authHandlers{
		authenticator: authenticator,
		basePath:      basePath,
		loginPath:     loginPath,
		onLogout:      onLogout,
	}
}

func (h *authHandlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	if h.isAuthenticated(r) && custommw.RequestToken(r) != "" {
		http.Redirect(w, r, h.redirectTarget(r.URL.Query().Get("next")), http.StatusFound)
		return
	}
	h.renderLoginPage(w, r, h.buildLoginPageData(r, nil), http.StatusOK)
}

func (h *authHandlers) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	logger := observability.FromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		h.renderLoginPage(w, r, h.buildLoginPageData(r, &loginFormState{Error: msgFormInvalid}), http.StatusBadRequest)
		return
	}

	state := &loginFormState{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Remember: parseCheckbox(r.PostFormValue("remember")),
		Next:     r.PostFormValue("next"),
	}
	token := strings.TrimSpace(r.PostFormValue("id_token"))
	if token == "" {
		state.Error = msgTokenMissing
		h.renderLoginPage(w, r, h.buildLoginPageData(r, state), http.StatusBadRequest)
		return
	}

	user, err := h.authenticator.Authenticate(r, token)
	if err != nil || user == nil {
		logger.Info("admin login failed", zap.Error(err))
		state.Error = loginErrorMessage(err)
		h.renderLoginPage(w, r, h.buildLoginPageData(r, state), http.StatusUnauthorized)
		return
	}

	if sess, ok := custommw.SessionFromContext(r.Context()); ok {
		if user.Email == "" {
			user.Email = state.Email
		}
		if h.onLogout != nil {
			h.onLogout(sess.ID())
		}
		sess.RenewID()
		sess.SetUser(&appsession.User{UID: user.UID, Email: user.Email, Roles: user.Roles})
		sess.SetRememberMe(state.Remember)
	}
	if user.Token != "" {
		token = user.Token
	}
	h.setAuthCookie(w, r, token, state.Remember)
	logger.Info("admin login", zap.String("uid", user.UID))

	target := h.redirectTarget(state.Next)
	if custommw.IsHTMXRequest(r.Context()) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *authHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := custommw.SessionFromContext(r.Context()); ok {
		if h.onLogout != nil {
			h.onLogout(sess.ID())
		}
		sess.Destroy()
	}
	h.clearAuthCookie(w)

	redirect := h.loginURL(url.Values{"status": {"logged_out"}})
	if custommw.IsHTMXRequest(r.Context()) {
		w.Header().Set("HX-Redirect", redirect)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}

type loginFormState struct {
	Email    string
	Remember bool
	Next     string
	Error    string
}

func (h *authHandlers) buildLoginPageData(r *http.Request, state *loginFormState) auth.LoginPageData {
	q := r.URL.Query()
	data := auth.LoginPageData{
		Email:     strings.TrimSpace(q.Get("email")),
		Message:   loginQueryMessage(q),
		Next:      h.normalizeNext(q.Get("next")),
		LoginPath: h.loginPath,
		CSRFToken: custommw.CSRFTokenFromContext(r.Context()),
	}
	if sess, ok := custommw.SessionFromContext(r.Context()); ok {
		data.Remember = sess.RememberMe()
	}
	if state != nil {
		data.Email = state.Email
		data.Remember = state.Remember
		data.Error = state.Error
		if state.Next != "" {
			data.Next = h.normalizeNext(state.Next)
		}
	}
	return data
}

func (h *authHandlers) renderLoginPage(w http.ResponseWriter, r *http.Request, data auth.LoginPageData, status int) {
	templ.Handler(auth.LoginPage(data), templ.WithStatus(status)).ServeHTTP(w, r)
}

func (h *authHandlers) isAuthenticated(r *http.Request) bool {
	sess, ok := custommw.SessionFromContext(r.Context())
	if !ok {
		return false
	}
	user := sess.User()
	return user != nil && strings.TrimSpace(user.UID) != ""
}

func loginErrorMessage(err error) string {
	var authErr *custommw.AuthError
	if errors.As(err, &authErr) && authErr.Reason == custommw.ReasonTokenExpired {
		return msgSessionExpired
	}
	return msgLoginInvalid
}

func loginQueryMessage(q url.Values) string {
	if q.Get("status") == "logged_out" {
		return msgLoggedOut
	}
	switch q.Get("reason") {
	case custommw.ReasonTokenExpired, "expired":
		return msgSessionExpired
	case "":
		if q.Get("next") != "" {
			return msgLoginRequired
		}
	}
	return ""
}

func (h *authHandlers) redirectTarget(raw string) string {
	if next := h.normalizeNext(raw); next != "" {
		return next
	}
	return h.basePath
}

func (h *authHandlers) setAuthCookie(w http.ResponseWriter, r *http.Request, token string, remember bool) {
	value := token
	if !strings.HasPrefix(strings.ToLower(token), "bearer ") {
		value = "Bearer " + token
	}
	cookie := &http.Cookie{
		Name:     custommw.TokenCookieName,
		Value:    value,
		Path:     h.basePath,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	}
	if remember {
		if sess, ok := custommw.SessionFromContext(r.Context()); ok {
			if expiry := sess.ExpiresAt(); !expiry.IsZero() {
				cookie.Expires = expiry.UTC()
				if remaining := time.Until(expiry); remaining > 0 {
					cookie.MaxAge = int(remaining.Round(time.Second).Seconds())
				}
			}
		}
	}
	http.SetCookie(w, cookie)
}

func (h *authHandlers) clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     custommw.TokenCookieName,
		Value:    "",
		Path:     h.basePath,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *authHandlers) loginURL(params url.Values) string {
	parsed, err := url.Parse(h.loginPath)
	if err != nil {
		return h.loginPath
	}
	parsed.RawQuery = params.Encode()
	return parsed.String()
}

func parseCheckbox(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "on", "yes":
		return true
	default:
		return false
	}
}

// normalizeNext keeps only same-origin targets under the base path, and never the login page.
func (h *authHandlers) normalizeNext(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme != "" || parsed.Host != "" {
		return ""
	}
	unescaped, err := url.PathUnescape(parsed.Path)
	if err != nil || strings.Contains(unescaped, `\`) {
		return ""
	}
	cleaned := path.Clean("/" + unescaped)
	if strings.HasPrefix(cleaned, "//") || !underBase(cleaned, h.basePath) || cleaned == path.Clean(h.loginPath) {
		return ""
	}
	if parsed.RawQuery != "" {
		cleaned += "?" + parsed.RawQuery
	}
	return cleaned
}

func underBase(p, base string) bool {
	if base == "/" {
		return true
	}
	return p == base || strings.HasPrefix(p, base+"/")
}
