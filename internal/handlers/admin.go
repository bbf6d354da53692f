package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dumumtergo/server/internal/services"
	"github.com/dumumtergo/server/pkg/errors"
	"github.com/dumumtergo/server/pkg/response"
)

// AdminHandler exposes moderation and reporting endpoints. All routes are
// gated behind the admin role by the router.
type AdminHandler struct {
	admin *services.AdminService
}

// NewAdminHandler constructs an admin handler.
func NewAdminHandler(admin *services.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// BanUser bans a user account.
func (h *AdminHandler) BanUser(c *gin.Context) {
	var payload services.BanInput
	if !bindAndValidate(c, &payload) {
		return
	}

	if err := h.admin.BanUser(requestContext(c), strings.TrimSpace(c.Param("id")), payload.Reason); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"banned": true})
}

// UnbanUser lifts a ban from a user account.
func (h *AdminHandler) UnbanUser(c *gin.Context) {
	if err := h.admin.UnbanUser(requestContext(c), strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"banned": false})
}

// BanVendor bans a vendor account.
func (h *AdminHandler) BanVendor(c *gin.Context) {
	var payload services.BanInput
	if !bindAndValidate(c, &payload) {
		return
	}

	if err := h.admin.BanVendor(requestContext(c), strings.TrimSpace(c.Param("id")), payload.Reason); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"banned": true})
}

// UnbanVendor lifts a ban from a vendor account.
func (h *AdminHandler) UnbanVendor(c *gin.Context) {
	if err := h.admin.UnbanVendor(requestContext(c), strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"banned": false})
}

// BanCar takes a listing off the platform and notifies its vendor.
func (h *AdminHandler) BanCar(c *gin.Context) {
	adminID := accountID(c)
	if adminID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var payload services.BanInput
	if !bindAndValidate(c, &payload) {
		return
	}

	if err := h.admin.BanCar(requestContext(c), adminID, strings.TrimSpace(c.Param("id")), payload.Reason); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"banned": true})
}

// UnbanCar restores a banned listing.
func (h *AdminHandler) UnbanCar(c *gin.Context) {
	if err := h.admin.UnbanCar(requestContext(c), strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"banned": false})
}

// ListUsers returns a page of user accounts.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.admin.ListUsers(requestContext(c), parseIntQuery(c, "limit", 50), parseIntQuery(c, "offset", 0))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, users)
}

// ListVendors returns a page of vendor accounts.
func (h *AdminHandler) ListVendors(c *gin.Context) {
	vendors, err := h.admin.ListVendors(requestContext(c), parseIntQuery(c, "limit", 50), parseIntQuery(c, "offset", 0))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, vendors)
}

// Stats returns headline platform counts.
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.admin.Stats(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}
