package api

import (
	"github.com/gin-gonic/gin"

	"github.com/dumumtergo/server/internal/handlers"
	"github.com/dumumtergo/server/internal/middleware"
)

func registerAdminRoutes(api *gin.RouterGroup, requireAuth gin.HandlerFunc, admin *handlers.AdminHandler) {
	group := api.Group("/admin", requireAuth, middleware.RequireAdmin())
	{
		group.GET("/stats", admin.Stats)
		group.GET("/users", admin.ListUsers)
		group.GET("/vendors", admin.ListVendors)
		group.POST("/users/:id/ban", admin.BanUser)
		group.POST("/users/:id/unban", admin.UnbanUser)
		group.POST("/vendors/:id/ban", admin.BanVendor)
		group.POST("/vendors/:id/unban", admin.UnbanVendor)
		group.POST("/cars/:id/ban", admin.BanCar)
		group.POST("/cars/:id/unban", admin.UnbanCar)
	}
}

func registerAdminComplaintRoutes(api *gin.RouterGroup, requireAuth gin.HandlerFunc, complaints *handlers.ComplaintHandler) {
	group := api.Group("/admin/complaints", requireAuth, middleware.RequireAdmin())
	{
		group.GET("", complaints.ListAll)
		group.GET("/:id", complaints.Get)
		group.POST("/:id/resolve", complaints.Resolve)
	}
}
