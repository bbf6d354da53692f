package api

import (
	"github.com/gin-gonic/gin"

	"github.com/dumumtergo/server/internal/handlers"
	"github.com/dumumtergo/server/internal/middleware"
)

func registerEventRoutes(api *gin.RouterGroup, requireAuth gin.HandlerFunc, events *handlers.EventHandler) {
	user := api.Group("/events", requireAuth, middleware.RequireUser())
	{
		user.GET("", events.List)
		user.GET("/:id", events.Get)
		user.POST("/:id/participate", events.Participate)
		user.DELETE("/:id/participate", events.CancelParticipation)
	}

	admin := api.Group("/admin/events", requireAuth, middleware.RequireAdmin())
	{
		admin.GET("", events.List)
		admin.GET("/:id", events.Get)
		admin.POST("", events.Create)
		admin.DELETE("/:id", events.Delete)
	}
}
