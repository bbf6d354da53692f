package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dumumtergo/server/internal/services"
	"github.com/dumumtergo/server/pkg/errors"
	"github.com/dumumtergo/server/pkg/response"
)

// EventHandler exposes the camping outing endpoints.
type EventHandler struct {
	events *services.EventService
}

// NewEventHandler constructs an event handler.
func NewEventHandler(events *services.EventService) *EventHandler {
	return &EventHandler{events: events}
}

// Create publishes a new event. Admin only.
func (h *EventHandler) Create(c *gin.Context) {
	adminID := accountID(c)
	if adminID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var payload services.CreateEventInput
	if !bindAndValidate(c, &payload) {
		return
	}

	event, err := h.events.Create(requestContext(c), adminID, payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, event)
}

// List returns upcoming events, or the ones near a point when lat/lng are
// supplied.
func (h *EventHandler) List(c *gin.Context) {
	ctx := requestContext(c)

	if c.Query("lat") != "" && c.Query("lng") != "" {
		events, err := h.events.Nearby(ctx,
			parseFloatQuery(c, "lat", 0),
			parseFloatQuery(c, "lng", 0),
			parseFloatQuery(c, "radius", 10))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, http.StatusOK, events)
		return
	}

	events, err := h.events.ListUpcoming(ctx)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, events)
}

// Get returns one event with its participants.
func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.events.Get(requestContext(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, event)
}

// Delete removes an event. Admin only.
func (h *EventHandler) Delete(c *gin.Context) {
	if err := h.events.Delete(requestContext(c), strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// Participate signs the authenticated user up for an event.
func (h *EventHandler) Participate(c *gin.Context) {
	userID := accountID(c)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	event, err := h.events.Participate(requestContext(c), userID, strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, event)
}

// CancelParticipation withdraws the authenticated user's signup.
func (h *EventHandler) CancelParticipation(c *gin.Context) {
	userID := accountID(c)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	event, err := h.events.CancelParticipation(requestContext(c), userID, strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, event)
}
