package session

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"finitefield.org/orders-admin/internal/admin/feedback"
)

type fixedClock struct {
	current time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.current
}

func newTestManager(t *testing.T) (*Manager, *fixedClock) {
	t.Helper()

	clock := &fixedClock{current: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	mgr, err := NewManager(Config{
		CookieName:       "test_session",
		HashKey:          []byte("12345678901234567890123456789012"),
		BlockKey:         []byte("abcdefghijklmnopqrstuv0123456789"),
		IdleTimeout:      10 * time.Minute,
		Lifetime:         2 * time.Hour,
		RememberLifetime: 48 * time.Hour,
		Now:              clock.Now,
	})
	require.NoError(t, err)
	return mgr, clock
}

func roundTrip(t *testing.T, mgr *Manager, sess *Session) *http.Cookie {
	t.Helper()

	rec := httptest.NewRecorder()
	require.NoError(t, mgr.Save(rec, sess))
	cookie := findCookie(rec.Result().Cookies(), "test_session")
	require.NotNil(t, cookie)
	return cookie
}

func TestManagerRoundTrip(t *testing.T) {
	mgr, clock := newTestManager(t)

	sess, err := mgr.Load(httptest.NewRequest(http.MethodGet, "/admin", nil))
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID())
	require.True(t, sess.CreatedAt().Equal(clock.current))

	sess.SetUser(&User{UID: "user-1", Email: "ops@example.com", Roles: []string{"ops"}})
	sess.SetRememberMe(true)
	sess.AddFlash(feedback.Notification{Message: "Order deleted successfully.", Tone: feedback.ToneSuccess})
	cookie := roundTrip(t, mgr, sess)

	clock.current = clock.current.Add(5 * time.Minute)
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(cookie)
	loaded, err := mgr.Load(req)
	require.NoError(t, err)
	require.Equal(t, sess.ID(), loaded.ID())
	require.Equal(t, "ops@example.com", loaded.User().Email)
	require.True(t, loaded.RememberMe())
	require.True(t, loaded.ExpiresAt().Equal(clock.current.Add(-5*time.Minute).Add(48*time.Hour)))

	flashes := loaded.PopFlashes()
	require.Equal(t, []feedback.Notification{{Message: "Order deleted successfully.", Tone: feedback.ToneSuccess}}, flashes)
	require.Empty(t, loaded.PopFlashes())
}

func TestManagerFlashesAreCapped(t *testing.T) {
	mgr, _ := newTestManager(t)
	sess := mgr.New()
	for i := 0; i < maxFlashes+3; i++ {
		sess.AddFlash(feedback.Notification{Message: string(rune('a' + i))})
	}
	flashes := sess.PopFlashes()
	require.Len(t, flashes, maxFlashes)
	require.Equal(t, "d", flashes[0].Message)
}

func TestSessionRenewIDKeepsUserState(t *testing.T) {
	mgr, _ := newTestManager(t)
	sess := mgr.New()
	sess.SetUser(&User{UID: "user-1"})
	sess.AddFlash(feedback.Notification{Message: "stale"})
	before := sess.ID()

	sess.RenewID()
	require.NotEqual(t, before, sess.ID())
	require.NotEmpty(t, sess.ID())
	require.Equal(t, "user-1", sess.User().UID)
	require.Empty(t, sess.PopFlashes())

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(roundTrip(t, mgr, sess))
	loaded, err := mgr.Load(req)
	require.NoError(t, err)
	require.Equal(t, sess.ID(), loaded.ID())
}

func TestManagerIdleTimeout(t *testing.T) {
	mgr, clock := newTestManager(t)
	cookie := roundTrip(t, mgr, mgr.New())

	clock.current = clock.current.Add(20 * time.Minute)
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(cookie)
	_, err := mgr.Load(req)
	require.True(t, errors.Is(err, ErrExpired))
}

func TestManagerTamperedCookieStartsFresh(t *testing.T) {
	mgr, _ := newTestManager(t)
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: "test_session", Value: "garbage"})

	sess, err := mgr.Load(req)
	require.NoError(t, err)
	require.Nil(t, sess.User())
}

func TestManagerDestroy(t *testing.T) {
	mgr, _ := newTestManager(t)
	sess := mgr.New()
	sess.Destroy()

	rec := httptest.NewRecorder()
	require.NoError(t, mgr.Save(rec, sess))
	cookie := findCookie(rec.Result().Cookies(), "test_session")
	require.NotNil(t, cookie)
	require.Equal(t, -1, cookie.MaxAge)
}

func TestNewManagerRequiresHashKey(t *testing.T) {
	_, err := NewManager(Config{})
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}
