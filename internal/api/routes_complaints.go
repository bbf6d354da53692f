package api

import (
	"github.com/gin-gonic/gin"

	"github.com/dumumtergo/server/internal/handlers"
)

func registerComplaintRoutes(api *gin.RouterGroup, requireAuth gin.HandlerFunc, complaints *handlers.ComplaintHandler) {
	group := api.Group("/complaints", requireAuth)
	{
		group.POST("", complaints.File)
		group.GET("", complaints.ListMine)
	}
}
