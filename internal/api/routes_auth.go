package api

import (
	"github.com/gin-gonic/gin"

	"github.com/dumumtergo/server/internal/handlers"
	"github.com/dumumtergo/server/internal/middleware"
)

func registerAuthRoutes(api *gin.RouterGroup, requireAuth gin.HandlerFunc, auth *handlers.AuthHandler, profile *handlers.ProfileHandler) {
	public := api.Group("/auth")
	{
		public.POST("/register", auth.Register)
		public.POST("/login", auth.Login)
		public.POST("/google", auth.GoogleLogin)
		public.POST("/password/forgot", auth.RequestPasswordReset)
		public.POST("/password/reset", auth.ResetPassword)
	}

	me := api.Group("/profile", requireAuth, middleware.RequireUser())
	{
		me.GET("", profile.Get)
		me.PUT("", profile.Update)
		me.POST("/password", profile.ChangePassword)
	}
}
