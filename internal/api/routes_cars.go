package api

import (
	"github.com/gin-gonic/gin"

	"github.com/dumumtergo/server/internal/handlers"
	"github.com/dumumtergo/server/internal/middleware"
)

func registerCarRoutes(api *gin.RouterGroup, requireAuth, requireSubscription gin.HandlerFunc, cars *handlers.CarHandler) {
	public := api.Group("/cars")
	{
		public.GET("", cars.Search)
		public.GET("/:id", cars.Get)
		public.GET("/:id/availability", cars.Availability)
	}

	vendor := api.Group("/vendor/cars", requireAuth, middleware.RequireVendor(), requireSubscription)
	{
		vendor.GET("", cars.ListMine)
		vendor.POST("", cars.Create)
		vendor.PUT("/:id", cars.Update)
		vendor.DELETE("/:id", cars.Delete)
	}
}
