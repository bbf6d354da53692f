package api

import (
	"github.com/gin-gonic/gin"

	"github.com/dumumtergo/server/internal/handlers"
	"github.com/dumumtergo/server/internal/middleware"
)

func registerVendorRoutes(api *gin.RouterGroup, requireAuth gin.HandlerFunc, vendors *handlers.VendorHandler) {
	public := api.Group("/vendors")
	{
		public.POST("/login/request", vendors.RequestLogin)
		public.POST("/login/verify", vendors.VerifyLogin)
		public.GET("/:id", vendors.PublicProfile)
		public.GET("/:id/ratings", vendors.Ratings)
	}

	rated := api.Group("/vendors", requireAuth, middleware.RequireUser())
	{
		rated.PUT("/:id/rating", vendors.Rate)
		rated.DELETE("/:id/rating", vendors.DeleteRating)
	}

	me := api.Group("/vendor", requireAuth, middleware.RequireVendor())
	{
		me.GET("/profile", vendors.Profile)
		me.PUT("/profile", vendors.CompleteProfile)
		me.POST("/mobile/request", vendors.RequestMobileChange)
		me.POST("/mobile/verify", vendors.VerifyMobileChange)
	}
}
