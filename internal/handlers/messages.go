package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/livechat/internal/compose"
	"github.com/nfrund/livechat/internal/domain"
	"github.com/nfrund/livechat/internal/messagesync"
	"github.com/nfrund/livechat/internal/middleware"
	"github.com/nfrund/livechat/internal/notify"
	"github.com/nfrund/livechat/internal/rendering"
	"github.com/nfrund/livechat/internal/view"
	"github.com/nfrund/livechat/web/src/templates/partials"
	"maragu.dev/gomponents"
)

// MessagesHandler handles the composer form and the JSON snapshot.
type MessagesHandler struct {
	writer   compose.Writer
	messages messagesync.Fetcher
	limit    int
	renderer rendering.Renderer
}

// NewMessagesHandler creates a new MessagesHandler.
func NewMessagesHandler(writer compose.Writer, messages messagesync.Fetcher, limit int, renderer rendering.Renderer) *MessagesHandler {
	if limit <= 0 {
		limit = messagesync.DefaultLimit
	}
	return &MessagesHandler{writer: writer, messages: messages, limit: limit, renderer: renderer}
}

// Create handles POST /messages. htmx requests get a cleared composer back,
// plus out-of-band toasts on failure; only blank input is kept as typed.
// Plain form posts are redirected.
// The new message itself reaches the list through the live feed.
func (h *MessagesHandler) Create(c echo.Context) error {
	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	ctx := c.Request().Context()
	notices := &notify.Recorder{}
	composer := compose.New(h.writer, middleware.Username(c), notices, middleware.FromContext(ctx))

	_, err := composer.Send(ctx, req.Content)
	if errors.Is(err, domain.ErrNoSession) {
		return echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
	}

	if !isHTMX(c) {
		for _, n := range notices.Take() {
			view.SetFlash(c, n)
		}
		return c.Redirect(http.StatusSeeOther, "/")
	}

	switch {
	case err == nil:
		return h.renderer.RenderPage(c, http.StatusOK, partials.Composer(partials.ComposerData{}))
	case errors.Is(err, domain.ErrEmptyMessage):
		return h.renderer.RenderPage(c, http.StatusOK, partials.Composer(partials.ComposerData{Value: req.Content}))
	default:
		return h.renderer.RenderPage(c, http.StatusOK, gomponents.Group{
			partials.Composer(partials.ComposerData{}),
			partials.ToastsOOB(view.FlashFromNotices(notices.Take())),
		})
	}
}

// List handles GET /api/messages.
func (h *MessagesHandler) List(c echo.Context) error {
	var req ListMessagesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Code: "invalid_request", Message: "invalid query"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Code: "invalid_request", Message: "limit must be between 1 and 50"})
	}

	limit := h.limit
	if req.Limit > 0 && req.Limit < limit {
		limit = req.Limit
	}

	ctx := c.Request().Context()
	messages, err := h.messages.Latest(ctx, limit)
	if err != nil {
		middleware.FromContext(ctx).ErrorContext(ctx, "Failed to list messages", "event", "api_list_failure", "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Code: "load_failed", Message: messagesync.MsgLoadFailed})
	}
	return c.JSON(http.StatusOK, NewMessagesResponse(messages))
}

func isHTMX(c echo.Context) bool {
	return c.Request().Header.Get("HX-Request") == "true"
}
