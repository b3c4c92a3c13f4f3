package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/livechat/internal/domain"
	"github.com/nfrund/livechat/internal/handlers"
	"github.com/nfrund/livechat/internal/middleware"
	"github.com/nfrund/livechat/internal/rendering"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMessagesTest(t *testing.T, store *fakeMessages) *client {
	e := newTestEcho()
	h := handlers.NewMessagesHandler(store, store, 50, rendering.NewUniversalRenderer())
	e.POST("/messages", h.Create, middleware.RequireSession())
	e.GET("/api/messages", h.List, middleware.RequireSession())
	return newClient(t, e)
}

func TestCreateMessageHTMX(t *testing.T) {
	store := &fakeMessages{}
	cl := setupMessagesTest(t, store)
	cl.login("alice")

	rec := cl.postForm("/messages", url.Values{"content": {"hello  "}}, "HX-Request", "true")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="composer"`)
	assert.NotContains(t, rec.Body.String(), "value=", "composer is cleared after a send")

	require.Len(t, store.created, 1)
	assert.Equal(t, "hello  ", store.created[0].Content, "content is stored as typed")
	assert.Equal(t, "alice", store.created[0].UserName)
	assert.Equal(t, domain.AvatarURL("alice"), store.created[0].AvatarURL)
}

func TestCreateBlankMessageDoesNotWrite(t *testing.T) {
	store := &fakeMessages{}
	cl := setupMessagesTest(t, store)
	cl.login("alice")

	for _, content := range []string{"", "   "} {
		rec := cl.postForm("/messages", url.Values{"content": {content}}, "HX-Request", "true")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "toast")
	}
	assert.Empty(t, store.created)
}

func TestCreateMessageFailure(t *testing.T) {
	store := &fakeMessages{writeErr: errors.New("db down")}
	cl := setupMessagesTest(t, store)
	cl.login("alice")

	rec := cl.postForm("/messages", url.Values{"content": {"hello"}}, "HX-Request", "true")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `id="composer"`)
	assert.NotContains(t, body, `value="hello"`, "the input is cleared even when the send fails")
	assert.Contains(t, body, "Failed to send message")
	assert.Contains(t, body, `hx-swap-oob="beforeend"`)
}

func TestCreateMessageFormPost(t *testing.T) {
	store := &fakeMessages{writeErr: errors.New("db down")}
	cl := setupMessagesTest(t, store)
	cl.login("alice")

	rec := cl.postForm("/messages", url.Values{"content": {"hello"}})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
	assert.Equal(t, []string{"Failed to send message"}, flashes(t, cl).Error)
}

func TestCreateMessageRequiresSession(t *testing.T) {
	store := &fakeMessages{}
	cl := setupMessagesTest(t, store)

	rec := cl.postForm("/messages", url.Values{"content": {"hello"}}, "HX-Request", "true")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, store.created)
}

func TestListMessages(t *testing.T) {
	store := &fakeMessages{messages: []domain.Message{
		{ID: "messages:2", Content: "b", UserName: "bob"},
		{ID: "messages:1", Content: "a", UserName: "alice"},
	}}
	cl := setupMessagesTest(t, store)
	cl.login("alice")

	rec := cl.get("/api/messages?limit=10")
	require.Equal(t, http.StatusOK, rec.Code)

	var body handlers.MessagesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, "messages:2", body.Messages[0].ID)
	assert.Equal(t, []int{10}, store.limits)

	rec = cl.get("/api/messages?limit=500")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	store.err = errors.New("db down")
	rec = cl.get("/api/messages")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to load messages")
}

type staticHealth bool

func (s staticHealth) IsHealthy() bool { return bool(s) }

func TestHealth(t *testing.T) {
	e := echo.New()
	e.GET("/up", handlers.Health(staticHealth(true)))
	e.GET("/down", handlers.Health(staticHealth(false)))
	cl := newClient(t, e)

	assert.Equal(t, http.StatusOK, cl.get("/up").Code)
	assert.Equal(t, http.StatusServiceUnavailable, cl.get("/down").Code)
}
