package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dumumtergo/server/internal/models"
	"github.com/dumumtergo/server/internal/services"
	"github.com/dumumtergo/server/pkg/errors"
	"github.com/dumumtergo/server/pkg/response"
)

// ReservationHandler exposes car booking endpoints for users and vendors.
type ReservationHandler struct {
	reservations *services.ReservationService
}

// NewReservationHandler constructs a reservation handler.
func NewReservationHandler(reservations *services.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservations: reservations}
}

// Create places a booking for the authenticated user.
func (h *ReservationHandler) Create(c *gin.Context) {
	userID := accountID(c)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var payload services.CreateReservationInput
	if !bindAndValidate(c, &payload) {
		return
	}

	reservation, err := h.reservations.Create(requestContext(c), userID, payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, reservation)
}

// Get returns one reservation visible to the caller.
func (h *ReservationHandler) Get(c *gin.Context) {
	id := accountID(c)
	if id == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	reservation, err := h.reservations.Get(requestContext(c), id, strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, reservation)
}

// ListMine returns the authenticated user's bookings.
func (h *ReservationHandler) ListMine(c *gin.Context) {
	userID := accountID(c)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	reservations, err := h.reservations.ListForUser(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, reservations)
}

// ListForVendor returns bookings against the authenticated vendor's cars.
func (h *ReservationHandler) ListForVendor(c *gin.Context) {
	vendorID := accountID(c)
	if vendorID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	reservations, err := h.reservations.ListForVendor(requestContext(c), vendorID, strings.TrimSpace(c.Query("status")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, reservations)
}

// Accept approves a pending booking.
func (h *ReservationHandler) Accept(c *gin.Context) {
	h.vendorTransition(c, h.reservations.Accept)
}

// Reject declines a pending booking.
func (h *ReservationHandler) Reject(c *gin.Context) {
	h.vendorTransition(c, h.reservations.Reject)
}

// Complete closes an accepted booking after the rental period.
func (h *ReservationHandler) Complete(c *gin.Context) {
	h.vendorTransition(c, h.reservations.Complete)
}

// Cancel withdraws the authenticated user's booking.
func (h *ReservationHandler) Cancel(c *gin.Context) {
	userID := accountID(c)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	reservation, err := h.reservations.Cancel(requestContext(c), userID, strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, reservation)
}

func (h *ReservationHandler) vendorTransition(c *gin.Context, fn func(ctx context.Context, vendorID, reservationID string) (*models.Reservation, error)) {
	vendorID := accountID(c)
	if vendorID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	reservation, err := fn(requestContext(c), vendorID, strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, reservation)
}
