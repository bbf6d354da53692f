package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dumumtergo/server/internal/services"
	"github.com/dumumtergo/server/pkg/errors"
	"github.com/dumumtergo/server/pkg/response"
)

// CampingHandler exposes gear listing, purchase, and gear rental endpoints.
type CampingHandler struct {
	camping *services.CampingService
}

// NewCampingHandler constructs a camping handler.
func NewCampingHandler(camping *services.CampingService) *CampingHandler {
	return &CampingHandler{camping: camping}
}

// ListItems lists gear matching the query filters.
func (h *CampingHandler) ListItems(c *gin.Context) {
	input := services.ListCampingItemsInput{
		Category: strings.TrimSpace(c.Query("category")),
		MaxPrice: parseFloatQuery(c, "max_price", 0),
		Limit:    parseIntQuery(c, "limit", 25),
		Offset:   parseIntQuery(c, "offset", 0),
	}
	if value := strings.TrimSpace(c.Query("for_sale")); value != "" {
		forSale := value == "true"
		input.ForSale = &forSale
	}
	if value := strings.TrimSpace(c.Query("for_rent")); value != "" {
		forRent := value == "true"
		input.ForRent = &forRent
	}

	items, err := h.camping.ListItems(requestContext(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// GetItem returns a single gear listing.
func (h *CampingHandler) GetItem(c *gin.Context) {
	item, err := h.camping.GetItem(requestContext(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// CreateItem lists new gear under the authenticated vendor.
func (h *CampingHandler) CreateItem(c *gin.Context) {
	vendorID := accountID(c)
	if vendorID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var payload services.CreateCampingItemInput
	if !bindAndValidate(c, &payload) {
		return
	}

	item, err := h.camping.CreateItem(requestContext(c), vendorID, payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, item)
}

// UpdateItem applies a partial update to an owned listing.
func (h *CampingHandler) UpdateItem(c *gin.Context) {
	vendorID := accountID(c)
	if vendorID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var payload services.UpdateCampingItemInput
	if !bindAndValidate(c, &payload) {
		return
	}

	item, err := h.camping.UpdateItem(requestContext(c), vendorID, strings.TrimSpace(c.Param("id")), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// DeleteItem removes an owned listing.
func (h *CampingHandler) DeleteItem(c *gin.Context) {
	vendorID := accountID(c)
	if vendorID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	if err := h.camping.DeleteItem(requestContext(c), vendorID, strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// ListMyItems returns the authenticated vendor's listings.
func (h *CampingHandler) ListMyItems(c *gin.Context) {
	vendorID := accountID(c)
	if vendorID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	items, err := h.camping.ListVendorItems(requestContext(c), vendorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// PlaceOrder purchases gear for the authenticated user.
func (h *CampingHandler) PlaceOrder(c *gin.Context) {
	userID := accountID(c)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var payload services.PlaceOrderInput
	if !bindAndValidate(c, &payload) {
		return
	}

	order, err := h.camping.PlaceOrder(requestContext(c), userID, payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, order)
}

// ListMyOrders returns the authenticated user's purchase history.
func (h *CampingHandler) ListMyOrders(c *gin.Context) {
	userID := accountID(c)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	orders, err := h.camping.ListOrdersForBuyer(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, orders)
}

// ListVendorOrders returns orders placed against the vendor's listings.
func (h *CampingHandler) ListVendorOrders(c *gin.Context) {
	vendorID := accountID(c)
	if vendorID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	orders, err := h.camping.ListOrdersForVendor(requestContext(c), vendorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, orders)
}

// UpdateOrderStatus moves an order through its lifecycle.
func (h *CampingHandler) UpdateOrderStatus(c *gin.Context) {
	vendorID := accountID(c)
	if vendorID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var payload struct {
		Status string `json:"status" validate:"required,oneof=shipped delivered cancelled"`
	}
	if !bindAndValidate(c, &payload) {
		return
	}

	order, err := h.camping.UpdateOrderStatus(requestContext(c), vendorID, strings.TrimSpace(c.Param("id")), payload.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, order)
}

// RentItem starts a gear rental for the authenticated user.
func (h *CampingHandler) RentItem(c *gin.Context) {
	userID := accountID(c)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var payload services.RentItemInput
	if !bindAndValidate(c, &payload) {
		return
	}

	rental, err := h.camping.RentItem(requestContext(c), userID, payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, rental)
}

// ConfirmRental approves a pending gear rental.
func (h *CampingHandler) ConfirmRental(c *gin.Context) {
	vendorID := accountID(c)
	if vendorID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	rental, err := h.camping.ConfirmRental(requestContext(c), vendorID, strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, rental)
}

// CancelRental cancels a rental for either party.
func (h *CampingHandler) CancelRental(c *gin.Context) {
	id := accountID(c)
	if id == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	rental, err := h.camping.CancelRental(requestContext(c), id, strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, rental)
}

// ListMyRentals returns the authenticated user's gear rentals.
func (h *CampingHandler) ListMyRentals(c *gin.Context) {
	userID := accountID(c)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	rentals, err := h.camping.ListRentalsForRenter(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, rentals)
}

// ListVendorRentals returns rentals against the vendor's listings.
func (h *CampingHandler) ListVendorRentals(c *gin.Context) {
	vendorID := accountID(c)
	if vendorID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	rentals, err := h.camping.ListRentalsForVendor(requestContext(c), vendorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, rentals)
}
