package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dumumtergo/server/internal/services"
	"github.com/dumumtergo/server/pkg/errors"
	"github.com/dumumtergo/server/pkg/response"
)

// VendorHandler exposes vendor authentication and profile endpoints.
type VendorHandler struct {
	vendors *services.VendorService
	ratings *services.RatingService
}

// NewVendorHandler constructs a vendor handler.
func NewVendorHandler(vendors *services.VendorService, ratings *services.RatingService) *VendorHandler {
	return &VendorHandler{vendors: vendors, ratings: ratings}
}

// RequestLogin starts the passwordless login flow for a mobile number.
func (h *VendorHandler) RequestLogin(c *gin.Context) {
	var payload services.RequestVendorLoginInput
	if !bindAndValidate(c, &payload) {
		return
	}

	challengeID, err := h.vendors.RequestLogin(requestContext(c), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"challenge_id": challengeID})
}

// VerifyLogin redeems the one-time code and returns a session token.
func (h *VendorHandler) VerifyLogin(c *gin.Context) {
	var payload services.VerifyVendorLoginInput
	if !bindAndValidate(c, &payload) {
		return
	}

	result, err := h.vendors.VerifyLogin(requestContext(c), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// Profile returns the authenticated vendor's profile.
func (h *VendorHandler) Profile(c *gin.Context) {
	vendorID := accountID(c)
	if vendorID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	profile, err := h.vendors.GetProfile(requestContext(c), vendorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, profile)
}

// CompleteProfile fills in the vendor's business details.
func (h *VendorHandler) CompleteProfile(c *gin.Context) {
	vendorID := accountID(c)
	if vendorID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var payload services.CompleteVendorProfileInput
	if !bindAndValidate(c, &payload) {
		return
	}

	profile, err := h.vendors.CompleteProfile(requestContext(c), vendorID, payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, profile)
}

// RequestMobileChange stages a new mobile number pending verification.
func (h *VendorHandler) RequestMobileChange(c *gin.Context) {
	vendorID := accountID(c)
	if vendorID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var payload struct {
		NewMobile string `json:"new_mobile" validate:"required,mobile"`
	}
	if !bindAndValidate(c, &payload) {
		return
	}

	challengeID, err := h.vendors.RequestMobileChange(requestContext(c), vendorID, payload.NewMobile)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"challenge_id": challengeID})
}

// VerifyMobileChange commits the staged mobile number.
func (h *VendorHandler) VerifyMobileChange(c *gin.Context) {
	vendorID := accountID(c)
	if vendorID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var payload struct {
		ChallengeID string `json:"challenge_id" validate:"required"`
		Code        string `json:"code" validate:"required,min=4,max=10"`
	}
	if !bindAndValidate(c, &payload) {
		return
	}

	profile, err := h.vendors.VerifyMobileChange(requestContext(c), vendorID, strings.TrimSpace(payload.ChallengeID), payload.Code)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, profile)
}

// PublicProfile returns a vendor's storefront view with rating summary.
func (h *VendorHandler) PublicProfile(c *gin.Context) {
	vendorID := strings.TrimSpace(c.Param("id"))

	profile, err := h.vendors.GetProfile(requestContext(c), vendorID)
	if err != nil {
		response.Error(c, err)
		return
	}

	summary, err := h.ratings.Summary(requestContext(c), vendorID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"vendor": profile,
		"rating": summary,
	})
}

// Ratings lists individual ratings for a vendor.
func (h *VendorHandler) Ratings(c *gin.Context) {
	vendorID := strings.TrimSpace(c.Param("id"))

	ratings, err := h.ratings.ListForVendor(requestContext(c), vendorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, ratings)
}

// Rate records the authenticated user's rating for a vendor.
func (h *VendorHandler) Rate(c *gin.Context) {
	userID := accountID(c)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var payload struct {
		Score   int    `json:"score" validate:"required,min=1,max=5"`
		Comment string `json:"comment" validate:"omitempty,max=2000"`
	}
	if !bindAndValidate(c, &payload) {
		return
	}

	rating, err := h.ratings.Rate(requestContext(c), userID, services.RateVendorInput{
		VendorID: strings.TrimSpace(c.Param("id")),
		Score:    payload.Score,
		Comment:  payload.Comment,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, rating)
}

// DeleteRating removes the authenticated user's rating for a vendor.
func (h *VendorHandler) DeleteRating(c *gin.Context) {
	userID := accountID(c)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	if err := h.ratings.Delete(requestContext(c), userID, strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
