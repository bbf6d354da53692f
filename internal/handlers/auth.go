package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dumumtergo/server/internal/services"
	"github.com/dumumtergo/server/pkg/response"
)

// AuthHandler exposes signup, login, and password reset endpoints for users.
type AuthHandler struct {
	users *services.UserService
}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler(users *services.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

// Register creates a new user account.
func (h *AuthHandler) Register(c *gin.Context) {
	var payload services.RegisterUserInput
	if !bindAndValidate(c, &payload) {
		return
	}

	result, err := h.users.Register(requestContext(c), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, result)
}

// Login authenticates with email and password.
func (h *AuthHandler) Login(c *gin.Context) {
	var payload services.LoginInput
	if !bindAndValidate(c, &payload) {
		return
	}

	result, err := h.users.Login(requestContext(c), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// GoogleLogin exchanges an OAuth authorization code for a session token.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var payload struct {
		Code string `json:"code" validate:"required"`
	}
	if !bindAndValidate(c, &payload) {
		return
	}

	result, err := h.users.LoginWithGoogle(requestContext(c), payload.Code)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// RequestPasswordReset starts the email reset flow. The response never
// reveals whether the address is registered.
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var payload struct {
		Email string `json:"email" validate:"required,email"`
	}
	if !bindAndValidate(c, &payload) {
		return
	}

	challengeID, err := h.users.RequestPasswordReset(requestContext(c), payload.Email)
	if err != nil {
		response.Error(c, err)
		return
	}

	body := gin.H{"sent": true}
	if challengeID != "" {
		body["challenge_id"] = challengeID
	}
	response.Success(c, http.StatusOK, body)
}

// ResetPassword completes the reset flow with the emailed code.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var payload struct {
		ChallengeID string `json:"challenge_id" validate:"required"`
		Code        string `json:"code" validate:"required,min=4,max=10"`
		NewPassword string `json:"new_password" validate:"required,min=8,max=128"`
	}
	if !bindAndValidate(c, &payload) {
		return
	}

	if err := h.users.ResetPassword(requestContext(c), strings.TrimSpace(payload.ChallengeID), payload.Code, payload.NewPassword); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reset": true})
}
