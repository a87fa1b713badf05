package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Apple-Square/moment-notification/internal/metrics"
	"github.com/Apple-Square/moment-notification/internal/transport/mw"
)

// NewRouter sets up all Echo routes and middleware.
func NewRouter(h *Handler, jwtSecret string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Global middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{"Authorization", "Content-Type", "Last-Event-ID"},
		AllowMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
	}))

	// Unauthenticated surfaces
	e.GET("/health", h.Health)
	e.GET("/metrics", metrics.Handler())

	// API — requires authentication
	v1 := e.Group("")
	v1.Use(mw.JWTAuth(jwtSecret))

	// REST endpoints
	v1.GET("/notifications", h.ListNotifications)
	v1.GET("/notifications/unread-count", h.GetUnreadCount)
	v1.GET("/notifications/unread-count/chat", h.GetChatUnreadCount)
	v1.PATCH("/notifications/:id/read", h.MarkRead)
	v1.POST("/notifications/read-all", h.MarkAllRead)
	v1.DELETE("/notifications/:id", h.Delete)

	// SSE endpoint
	v1.GET("/notifications/stream", h.Stream)

	// Chat presence
	v1.POST("/chat/rooms/:roomId/presence", h.PresenceHeartbeat)
	v1.DELETE("/chat/rooms/:roomId/presence", h.PresenceClear)

	return e
}
