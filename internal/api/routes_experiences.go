package api

import (
	"github.com/gin-gonic/gin"

	"github.com/dumumtergo/server/internal/handlers"
	"github.com/dumumtergo/server/internal/middleware"
)

func registerExperienceRoutes(api *gin.RouterGroup, requireAuth gin.HandlerFunc, experiences *handlers.ExperienceHandler) {
	public := api.Group("/experiences")
	{
		public.GET("", experiences.List)
		public.GET("/search", experiences.Search)
		public.GET("/:id", experiences.Get)
	}

	user := api.Group("/experiences", requireAuth, middleware.RequireUser())
	{
		user.POST("", experiences.Create)
		user.GET("/favorites", experiences.ListFavorites)
		user.PUT("/:id/description", experiences.UpdateDescription)
		user.POST("/:id/favorite", experiences.AddFavorite)
		user.DELETE("/:id/favorite", experiences.RemoveFavorite)
		user.DELETE("/:id", experiences.Delete)
		user.POST("/:id/like", experiences.Like)
		user.DELETE("/:id/like", experiences.Unlike)
		user.POST("/:id/comments", experiences.AddComment)
		user.DELETE("/:id/comments/:commentId", experiences.DeleteComment)
	}
}
