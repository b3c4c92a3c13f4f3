package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/sessions"
	echosession "github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/livechat/internal/domain"
	"github.com/nfrund/livechat/internal/handlers"
	"github.com/nfrund/livechat/internal/session"
	"github.com/nfrund/livechat/internal/view"
	"github.com/stretchr/testify/require"
)

const testSessionSecret = "a-very-secret-key-for-testing-!"

type fakeMessages struct {
	mu       sync.Mutex
	messages []domain.Message
	err      error
	limits   []int
	created  []domain.Message
	writeErr error
}

func (f *fakeMessages) Latest(_ context.Context, limit int) ([]domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limits = append(f.limits, limit)
	return f.messages, f.err
}

func (f *fakeMessages) Create(_ context.Context, msg *domain.Message) (*domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	created := *msg
	created.ID = "messages:new"
	f.created = append(f.created, created)
	return &created, nil
}

// newTestEcho returns an echo instance with sessions, the validator and two
// helper routes: one that signs a user in and one that dumps pending flashes.
func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = handlers.NewValidator()
	e.Use(echosession.Middleware(sessions.NewCookieStore([]byte(testSessionSecret))))

	e.GET("/test/login/:name", func(c echo.Context) error {
		if err := session.FromEcho(c).Save(c.Param("name")); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	})
	e.GET("/test/flashes", func(c echo.Context) error {
		return c.JSON(http.StatusOK, view.GetFlashData(c))
	})
	e.GET("/test/whoami", func(c echo.Context) error {
		name, _ := session.FromEcho(c).Load()
		return c.String(http.StatusOK, name)
	})
	return e
}

// client replays cookies across requests like a browser.
type client struct {
	t       *testing.T
	e       *echo.Echo
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T, e *echo.Echo) *client {
	return &client{t: t, e: e, cookies: map[string]*http.Cookie{}}
}

func (cl *client) do(req *http.Request) *httptest.ResponseRecorder {
	cl.t.Helper()
	for _, c := range cl.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	cl.e.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(cl.cookies, c.Name)
			continue
		}
		cl.cookies[c.Name] = c
	}
	return rec
}

func (cl *client) get(path string) *httptest.ResponseRecorder {
	return cl.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (cl *client) postForm(path string, form url.Values, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return cl.do(req)
}

func (cl *client) login(name string) {
	cl.t.Helper()
	require.Equal(cl.t, http.StatusNoContent, cl.get("/test/login/"+name).Code)
}
