package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dumumtergo/server/internal/services"
	"github.com/dumumtergo/server/pkg/errors"
	"github.com/dumumtergo/server/pkg/response"
)

// ComplaintHandler exposes the grievance endpoints.
type ComplaintHandler struct {
	complaints *services.ComplaintService
}

// NewComplaintHandler constructs a complaint handler.
func NewComplaintHandler(complaints *services.ComplaintService) *ComplaintHandler {
	return &ComplaintHandler{complaints: complaints}
}

// File records a new complaint by the authenticated account.
func (h *ComplaintHandler) File(c *gin.Context) {
	complainant, complainantType := accountID(c), accountType(c)
	if complainant == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var payload services.FileComplaintInput
	if !bindAndValidate(c, &payload) {
		return
	}

	complaint, err := h.complaints.File(requestContext(c), complainant, complainantType, payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, complaint)
}

// ListMine returns the authenticated account's complaints.
func (h *ComplaintHandler) ListMine(c *gin.Context) {
	complainant, complainantType := accountID(c), accountType(c)
	if complainant == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	complaints, err := h.complaints.ListForAccount(requestContext(c), complainant, complainantType)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, complaints)
}

// ListAll returns every complaint, optionally filtered by status. Admin only.
func (h *ComplaintHandler) ListAll(c *gin.Context) {
	complaints, err := h.complaints.ListAll(requestContext(c), strings.TrimSpace(c.Query("status")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, complaints)
}

// Get returns a single complaint by id. Admin only.
func (h *ComplaintHandler) Get(c *gin.Context) {
	complaint, err := h.complaints.Get(requestContext(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, complaint)
}

// Resolve updates a complaint's status and records the admin's response.
func (h *ComplaintHandler) Resolve(c *gin.Context) {
	var payload services.ResolveComplaintInput
	if !bindAndValidate(c, &payload) {
		return
	}

	complaint, err := h.complaints.Resolve(requestContext(c), strings.TrimSpace(c.Param("id")), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, complaint)
}
