package session

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"
	echosession "github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const (
	// CookieName is the name of the cookie session holding the username.
	CookieName = "livechat-session"
	// usernameKey is the session value key for the username.
	usernameKey = "username"
	// cookieMaxAge keeps the session for 30 days.
	cookieMaxAge = 86400 * 30
)

// NewCookieBackend returns the gorilla cookie store that backs every
// CookieStore. The session middleware must be installed with it.
func NewCookieBackend(secret string, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = cookieOptions(secure)
	return store
}

func cookieOptions(secure bool) *sessions.Options {
	return &sessions.Options{
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// CookieStore is the Store of one browser, bound to the current request.
type CookieStore struct {
	c echo.Context
}

// FromEcho binds a CookieStore to the request in c.
func FromEcho(c echo.Context) *CookieStore {
	return &CookieStore{c: c}
}

// Load implements Store.
func (s *CookieStore) Load() (string, bool) {
	sess, err := echosession.Get(CookieName, s.c)
	if err != nil {
		// a cookie signed with an old secret decodes as an error; treat it as signed out
		slog.DebugContext(s.c.Request().Context(), "Discarding unreadable session cookie", "error", err)
		return "", false
	}
	username, ok := sess.Values[usernameKey].(string)
	if !ok || username == "" {
		return "", false
	}
	return username, true
}

// Save implements Store.
func (s *CookieStore) Save(username string) error {
	sess, err := echosession.Get(CookieName, s.c)
	if err != nil && sess == nil {
		return err
	}
	sess.Values[usernameKey] = username
	return sess.Save(s.c.Request(), s.c.Response())
}

// Clear implements Store.
func (s *CookieStore) Clear() error {
	sess, err := echosession.Get(CookieName, s.c)
	if err != nil && sess == nil {
		return err
	}
	delete(sess.Values, usernameKey)
	opts := *cookieOptions(false)
	if sess.Options != nil {
		opts = *sess.Options
	}
	opts.MaxAge = -1
	sess.Options = &opts
	return sess.Save(s.c.Request(), s.c.Response())
}
