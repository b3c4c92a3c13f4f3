package server

import (
	"github.com/labstack/echo/v4"
	"github.com/nfrund/livechat/internal/handlers"
	"github.com/nfrund/livechat/internal/middleware"
	"github.com/nfrund/livechat/internal/websocket"
	"github.com/nfrund/livechat/web"
)

// RegisterRoutes sets up all the application routes.
func (s *Server) RegisterRoutes() {
	limit := s.Cfg.GetMessageLimit()

	chatHandler := handlers.NewChatHandler(s.deps.Messages, limit, s.renderer)
	authHandler := handlers.NewAuthHandler(s.deps.Gateway)
	messagesHandler := handlers.NewMessagesHandler(s.deps.Messages, s.deps.Messages, limit, s.renderer)
	liveHandler := websocket.NewLiveHandler(websocket.LiveDependencies{
		Fetcher:            s.deps.Messages,
		Feed:               s.deps.Feed,
		Renderer:           s.renderer,
		Interval:           s.Cfg.GetSyncInterval(),
		Limit:              limit,
		InsecureSkipVerify: s.deps.InsecureWebSocket,
	})
	requireSession := middleware.RequireSession()

	s.E.StaticFS("/static", echo.MustSubFS(web.FS, "static"))

	s.E.GET("/", chatHandler.Index)
	s.E.POST("/auth", authHandler.AuthPost)
	s.E.POST("/logout", authHandler.Logout)

	s.E.POST("/messages", messagesHandler.Create, requireSession)
	s.E.GET("/ws", liveHandler.Serve, requireSession)
	s.E.GET("/api/messages", messagesHandler.List, requireSession, middleware.APIRateLimiter())

	s.E.GET("/health", handlers.Health(s.deps.Health))
}
