package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dumumtergo/server/internal/services"
	"github.com/dumumtergo/server/pkg/errors"
	"github.com/dumumtergo/server/pkg/response"
)

// ExperienceHandler exposes the social feed endpoints.
type ExperienceHandler struct {
	experiences *services.ExperienceService
}

// NewExperienceHandler constructs an experience handler.
func NewExperienceHandler(experiences *services.ExperienceService) *ExperienceHandler {
	return &ExperienceHandler{experiences: experiences}
}

// List returns the feed, newest first.
func (h *ExperienceHandler) List(c *gin.Context) {
	experiences, err := h.experiences.List(requestContext(c), parseIntQuery(c, "limit", 25), parseIntQuery(c, "offset", 0))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, experiences)
}

// Get returns one post with its likes and comments.
func (h *ExperienceHandler) Get(c *gin.Context) {
	experience, err := h.experiences.Get(requestContext(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, experience)
}

// Create publishes a new post for the authenticated user.
func (h *ExperienceHandler) Create(c *gin.Context) {
	userID := accountID(c)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var payload services.CreateExperienceInput
	if !bindAndValidate(c, &payload) {
		return
	}

	experience, err := h.experiences.Create(requestContext(c), userID, payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, experience)
}

// Delete removes an owned post.
func (h *ExperienceHandler) Delete(c *gin.Context) {
	userID := accountID(c)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	if err := h.experiences.Delete(requestContext(c), userID, strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// Like records a like on a post.
func (h *ExperienceHandler) Like(c *gin.Context) {
	userID := accountID(c)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	if err := h.experiences.Like(requestContext(c), userID, strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"liked": true})
}

// Unlike removes a like from a post.
func (h *ExperienceHandler) Unlike(c *gin.Context) {
	userID := accountID(c)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	if err := h.experiences.Unlike(requestContext(c), userID, strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"liked": false})
}

// AddComment appends a comment to a post.
func (h *ExperienceHandler) AddComment(c *gin.Context) {
	userID := accountID(c)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var payload struct {
		Text string `json:"text" validate:"required,min=1,max=2000"`
	}
	if !bindAndValidate(c, &payload) {
		return
	}

	comment, err := h.experiences.AddComment(requestContext(c), userID, strings.TrimSpace(c.Param("id")), payload.Text)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, comment)
}

// DeleteComment removes a comment from a post.
func (h *ExperienceHandler) DeleteComment(c *gin.Context) {
	userID := accountID(c)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	err := h.experiences.DeleteComment(requestContext(c), userID, strings.TrimSpace(c.Param("id")), strings.TrimSpace(c.Param("commentId")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// Search filters the feed by tag and/or proximity to a point.
func (h *ExperienceHandler) Search(c *gin.Context) {
	input := services.SearchExperiencesInput{
		Tag:      strings.TrimSpace(c.Query("tag")),
		RadiusKm: parseFloatQuery(c, "radius", 10),
	}
	if c.Query("lat") != "" && c.Query("lng") != "" {
		lat := parseFloatQuery(c, "lat", 0)
		lng := parseFloatQuery(c, "lng", 0)
		input.Lat = &lat
		input.Lng = &lng
	}

	experiences, err := h.experiences.Search(requestContext(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, experiences)
}

// UpdateDescription replaces the body of an owned post.
func (h *ExperienceHandler) UpdateDescription(c *gin.Context) {
	userID := accountID(c)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var payload struct {
		Description string `json:"description" validate:"required,min=1,max=10000"`
	}
	if !bindAndValidate(c, &payload) {
		return
	}

	experience, err := h.experiences.UpdateDescription(requestContext(c), userID, strings.TrimSpace(c.Param("id")), payload.Description)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, experience)
}

// AddFavorite bookmarks a post for the authenticated user.
func (h *ExperienceHandler) AddFavorite(c *gin.Context) {
	userID := accountID(c)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	if err := h.experiences.AddFavorite(requestContext(c), userID, strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"favorited": true})
}

// RemoveFavorite drops a bookmark.
func (h *ExperienceHandler) RemoveFavorite(c *gin.Context) {
	userID := accountID(c)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	if err := h.experiences.RemoveFavorite(requestContext(c), userID, strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"favorited": false})
}

// ListFavorites returns the user's bookmarked posts.
func (h *ExperienceHandler) ListFavorites(c *gin.Context) {
	userID := accountID(c)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	experiences, err := h.experiences.ListFavorites(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, experiences)
}
