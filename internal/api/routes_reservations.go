package api

import (
	"github.com/gin-gonic/gin"

	"github.com/dumumtergo/server/internal/handlers"
	"github.com/dumumtergo/server/internal/middleware"
)

func registerReservationRoutes(api *gin.RouterGroup, requireAuth gin.HandlerFunc, reservations *handlers.ReservationHandler) {
	user := api.Group("/reservations", requireAuth, middleware.RequireUser())
	{
		user.POST("", reservations.Create)
		user.GET("", reservations.ListMine)
		user.POST("/:id/cancel", reservations.Cancel)
	}

	// Either participant may read a reservation.
	shared := api.Group("/reservations", requireAuth)
	{
		shared.GET("/:id", reservations.Get)
	}

	vendor := api.Group("/vendor/reservations", requireAuth, middleware.RequireVendor())
	{
		vendor.GET("", reservations.ListForVendor)
		vendor.POST("/:id/accept", reservations.Accept)
		vendor.POST("/:id/reject", reservations.Reject)
		vendor.POST("/:id/complete", reservations.Complete)
	}
}
