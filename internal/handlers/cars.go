package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dumumtergo/server/internal/services"
	"github.com/dumumtergo/server/pkg/errors"
	"github.com/dumumtergo/server/pkg/response"
)

// CarHandler exposes car listing and search endpoints.
type CarHandler struct {
	cars *services.CarService
}

// NewCarHandler constructs a car handler.
func NewCarHandler(cars *services.CarService) *CarHandler {
	return &CarHandler{cars: cars}
}

// Search lists available cars matching the query filters.
func (h *CarHandler) Search(c *gin.Context) {
	input := services.SearchCarsInput{
		Brand:        strings.TrimSpace(c.Query("brand")),
		Location:     strings.TrimSpace(c.Query("location")),
		Transmission: strings.TrimSpace(c.Query("transmission")),
		MaxPrice:     parseFloatQuery(c, "max_price", 0),
		MinSeats:     parseIntQuery(c, "min_seats", 0),
		Limit:        parseIntQuery(c, "limit", 25),
		Offset:       parseIntQuery(c, "offset", 0),
	}

	if start, ok := parseDateQuery(c, "start_date"); ok {
		input.StartDate = start
	}
	if end, ok := parseDateQuery(c, "end_date"); ok {
		input.EndDate = end
	}

	cars, err := h.cars.Search(requestContext(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, cars)
}

// Get returns a single car listing.
func (h *CarHandler) Get(c *gin.Context) {
	car, err := h.cars.Get(requestContext(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, car)
}

// Availability reports whether the car is free over a date window.
func (h *CarHandler) Availability(c *gin.Context) {
	start, okStart := parseDateQuery(c, "start_date")
	end, okEnd := parseDateQuery(c, "end_date")
	if !okStart || !okEnd || !end.After(start) {
		response.Error(c, errors.NewBadRequest("start_date and end_date are required, end after start"))
		return
	}

	available, err := h.cars.AvailableBetween(requestContext(c), strings.TrimSpace(c.Param("id")), start, end)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"available": available})
}

// Create lists a new car under the authenticated vendor.
func (h *CarHandler) Create(c *gin.Context) {
	vendorID := accountID(c)
	if vendorID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var payload services.CreateCarInput
	if !bindAndValidate(c, &payload) {
		return
	}

	car, err := h.cars.Create(requestContext(c), vendorID, payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, car)
}

// Update applies a partial update to an owned car.
func (h *CarHandler) Update(c *gin.Context) {
	vendorID := accountID(c)
	if vendorID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var payload services.UpdateCarInput
	if !bindAndValidate(c, &payload) {
		return
	}

	car, err := h.cars.Update(requestContext(c), vendorID, strings.TrimSpace(c.Param("id")), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, car)
}

// Delete removes an owned car listing.
func (h *CarHandler) Delete(c *gin.Context) {
	vendorID := accountID(c)
	if vendorID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	if err := h.cars.Delete(requestContext(c), vendorID, strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// ListMine returns the authenticated vendor's fleet.
func (h *CarHandler) ListMine(c *gin.Context) {
	vendorID := accountID(c)
	if vendorID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	cars, err := h.cars.ListByVendor(requestContext(c), vendorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, cars)
}

func parseDateQuery(c *gin.Context, key string) (time.Time, bool) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return time.Time{}, false
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, true
	}
	if parsed, err := time.Parse("2006-01-02", value); err == nil {
		return parsed, true
	}
	return time.Time{}, false
}
