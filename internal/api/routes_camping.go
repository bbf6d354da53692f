package api

import (
	"github.com/gin-gonic/gin"

	"github.com/dumumtergo/server/internal/handlers"
	"github.com/dumumtergo/server/internal/middleware"
)

func registerCampingRoutes(api *gin.RouterGroup, requireAuth, requireSubscription gin.HandlerFunc, camping *handlers.CampingHandler) {
	public := api.Group("/camping/items")
	{
		public.GET("", camping.ListItems)
		public.GET("/:id", camping.GetItem)
	}

	user := api.Group("/camping", requireAuth, middleware.RequireUser())
	{
		user.POST("/orders", camping.PlaceOrder)
		user.GET("/orders", camping.ListMyOrders)
		user.POST("/rentals", camping.RentItem)
		user.GET("/rentals", camping.ListMyRentals)
	}

	shared := api.Group("/camping", requireAuth)
	{
		shared.POST("/rentals/:id/cancel", camping.CancelRental)
	}

	vendor := api.Group("/vendor/camping", requireAuth, middleware.RequireVendor(), requireSubscription)
	{
		vendor.GET("/items", camping.ListMyItems)
		vendor.POST("/items", camping.CreateItem)
		vendor.PUT("/items/:id", camping.UpdateItem)
		vendor.DELETE("/items/:id", camping.DeleteItem)
		vendor.GET("/orders", camping.ListVendorOrders)
		vendor.POST("/orders/:id/status", camping.UpdateOrderStatus)
		vendor.GET("/rentals", camping.ListVendorRentals)
		vendor.POST("/rentals/:id/confirm", camping.ConfirmRental)
	}
}
