package api

import (
	"github.com/gin-gonic/gin"

	"github.com/dumumtergo/server/internal/handlers"
)

func registerNotificationRoutes(api *gin.RouterGroup, requireAuth gin.HandlerFunc, notifications *handlers.NotificationHandler) {
	group := api.Group("/notifications", requireAuth)
	{
		group.GET("", notifications.List)
		group.GET("/unread", notifications.UnreadCount)
		group.POST("/:id/read", notifications.MarkRead)
		group.POST("/read_all", notifications.MarkAllRead)
	}
}
