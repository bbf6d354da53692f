package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dumumtergo/server/internal/services"
	"github.com/dumumtergo/server/pkg/errors"
	"github.com/dumumtergo/server/pkg/response"
)

// ProfileHandler exposes the authenticated user's profile endpoints.
type ProfileHandler struct {
	users *services.UserService
}

// NewProfileHandler constructs a profile handler.
func NewProfileHandler(users *services.UserService) *ProfileHandler {
	return &ProfileHandler{users: users}
}

// Get returns the current user's profile.
func (h *ProfileHandler) Get(c *gin.Context) {
	userID := accountID(c)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	profile, err := h.users.GetProfile(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, profile)
}

// Update applies profile changes for the current user.
func (h *ProfileHandler) Update(c *gin.Context) {
	userID := accountID(c)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var payload services.UpdateProfileInput
	if !bindAndValidate(c, &payload) {
		return
	}

	profile, err := h.users.UpdateProfile(requestContext(c), userID, payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, profile)
}

// ChangePassword rotates the current user's password.
func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	userID := accountID(c)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var payload struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
	}
	if !bindAndValidate(c, &payload) {
		return
	}

	if err := h.users.ChangePassword(requestContext(c), userID, payload.CurrentPassword, payload.NewPassword); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": true})
}
