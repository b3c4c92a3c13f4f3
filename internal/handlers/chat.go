package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/livechat/internal/auth"
	"github.com/nfrund/livechat/internal/messagesync"
	"github.com/nfrund/livechat/internal/middleware"
	"github.com/nfrund/livechat/internal/rendering"
	"github.com/nfrund/livechat/internal/session"
	"github.com/nfrund/livechat/internal/view"
	"github.com/nfrund/livechat/web/src/templates/layouts"
	"github.com/nfrund/livechat/web/src/templates/pages"
)

// ChatHandler renders the single page: the gate without a session, the chat
// otherwise.
type ChatHandler struct {
	messages messagesync.Fetcher
	limit    int
	renderer rendering.Renderer
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(messages messagesync.Fetcher, limit int, renderer rendering.Renderer) *ChatHandler {
	if limit <= 0 {
		limit = messagesync.DefaultLimit
	}
	return &ChatHandler{messages: messages, limit: limit, renderer: renderer}
}

// Index handles GET /.
func (h *ChatHandler) Index(c echo.Context) error {
	flashes := view.GetFlashData(c)

	username, ok := session.FromEcho(c).Load()
	if !ok {
		mode := h.gateMode(c)
		title := "Sign In"
		if mode == auth.ModeSignup {
			title = "Sign Up"
		}
		return h.renderer.RenderPage(c, http.StatusOK, layouts.Base(title, flashes, pages.Gate(mode)))
	}

	// The page is rendered with the current list so it is usable without
	// the websocket; a failed load shows the skeleton until the live view
	// catches up.
	ctx := c.Request().Context()
	data := pages.ChatData{Username: username}
	messages, err := h.messages.Latest(ctx, h.limit)
	if err != nil {
		middleware.FromContext(ctx).WarnContext(ctx, "Failed to load messages for page", "event", "page_load_failure", "error", err)
		flashes.Error = append(flashes.Error, messagesync.MsgLoadFailed)
		data.Loading = true
	} else {
		data.Messages = messages
	}

	return h.renderer.RenderPage(c, http.StatusOK, layouts.Base("Messages", flashes, pages.Chat(data)))
}

func (h *ChatHandler) gateMode(c echo.Context) auth.Mode {
	var req GatePageRequest
	if err := c.Bind(&req); err != nil {
		return auth.ModeLogin
	}
	if err := c.Validate(&req); err != nil {
		return auth.ModeLogin
	}
	mode, err := auth.ParseMode(req.Mode)
	if err != nil {
		return auth.ModeLogin
	}
	return mode
}
