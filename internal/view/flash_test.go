package view_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/livechat/internal/notify"
	"github.com/nfrund/livechat/internal/view"
	"github.com/stretchr/testify/assert"
)

const testSessionSecret = "a-very-secret-key-for-testing-!"

func setupTestContext() echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	store := sessions.NewCookieStore([]byte(testSessionSecret))

	var c echo.Context
	handler := func(ctx echo.Context) error { c = ctx; return nil }
	_ = session.Middleware(store)(handler)(e.NewContext(req, rec))
	return c
}

func TestFlashMessages(t *testing.T) {
	t.Run("success flash is read once", func(t *testing.T) {
		c := setupTestContext()

		view.SetFlashSuccess(c, "Welcome back!")

		flashes := view.GetFlashData(c)
		assert.Equal(t, []string{"Welcome back!"}, flashes.Success)
		assert.Empty(t, flashes.Error)

		assert.True(t, view.GetFlashData(c).Empty(), "flashes should be cleared after being read")
	})

	t.Run("error flash", func(t *testing.T) {
		c := setupTestContext()

		view.SetFlashError(c, "Invalid credentials")

		flashes := view.GetFlashData(c)
		assert.Equal(t, []string{"Invalid credentials"}, flashes.Error)
		assert.Empty(t, flashes.Success)
	})

	t.Run("notice flash keeps its level", func(t *testing.T) {
		c := setupTestContext()

		view.SetFlash(c, notify.Error("Failed to send message"))
		view.SetFlash(c, notify.Success("Logged out successfully"))

		flashes := view.GetFlashData(c)
		assert.Equal(t, []string{"Failed to send message"}, flashes.Error)
		assert.Equal(t, []string{"Logged out successfully"}, flashes.Success)
	})

	t.Run("no flashes", func(t *testing.T) {
		c := setupTestContext()
		assert.True(t, view.GetFlashData(c).Empty())
	})
}

func TestFlashFromNotices(t *testing.T) {
	data := view.FlashFromNotices([]notify.Notice{
		notify.Error("Failed to load messages"),
		notify.Success("Welcome back!"),
		notify.Error("Failed to send message"),
	})

	assert.Equal(t, []string{"Welcome back!"}, data.Success)
	assert.Equal(t, []string{"Failed to load messages", "Failed to send message"}, data.Error)
}
