package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumumtergo/server/internal/models"
	apperrors "github.com/dumumtergo/server/pkg/errors"
	"github.com/dumumtergo/server/pkg/logger"
)

// CreateCampingItemInput describes a new gear listing.
type CreateCampingItemInput struct {
	Name        string   `json:"name" validate:"required,min=2,max=255"`
	Description string   `json:"description" validate:"required,max=5000"`
	Category    string   `json:"category" validate:"required,min=2,max=64"`
	IsForSale   bool     `json:"is_for_sale"`
	IsForRent   bool     `json:"is_for_rent"`
	Price       float64  `json:"price" validate:"omitempty,gte=0"`
	RentalPrice float64  `json:"rental_price" validate:"omitempty,gte=0"`
	Stock       int      `json:"stock" validate:"omitempty,gte=0"`
	Images      []string `json:"images"`
}

// UpdateCampingItemInput describes a partial listing update.
type UpdateCampingItemInput struct {
	Name        *string   `json:"name" validate:"omitempty,min=2,max=255"`
	Description *string   `json:"description" validate:"omitempty,max=5000"`
	Category    *string   `json:"category" validate:"omitempty,min=2,max=64"`
	IsForSale   *bool     `json:"is_for_sale"`
	IsForRent   *bool     `json:"is_for_rent"`
	Price       *float64  `json:"price" validate:"omitempty,gte=0"`
	RentalPrice *float64  `json:"rental_price" validate:"omitempty,gte=0"`
	Stock       *int      `json:"stock" validate:"omitempty,gte=0"`
	Images      *[]string `json:"images"`
}

// OrderItemInput is one line of a purchase request.
type OrderItemInput struct {
	ItemID   string `json:"item_id" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"required,min=1,max=50"`
}

// PlaceOrderInput captures a gear purchase. All items must belong to the
// same vendor; cross-vendor carts are split by the client.
type PlaceOrderInput struct {
	Items           []OrderItemInput `json:"items" validate:"required,min=1,dive"`
	ShippingAddress string           `json:"shipping_address" validate:"required,max=500"`
	PaymentMethod   string           `json:"payment_method" validate:"required,oneof=credit_card paypal on_delivery"`
}

// RentItemInput captures a gear rental request.
type RentItemInput struct {
	ItemID         string    `json:"item_id" validate:"required,uuid"`
	StartDate      time.Time `json:"start_date" validate:"required"`
	EndDate        time.Time `json:"end_date" validate:"required"`
	PickupLocation string    `json:"pickup_location" validate:"required,max=255"`
	ReturnLocation string    `json:"return_location" validate:"required,max=255"`
}

// ListCampingItemsInput filters the public gear search.
type ListCampingItemsInput struct {
	Category string
	ForSale  *bool
	ForRent  *bool
	MaxPrice float64
	Limit    int
	Offset   int
}

// CampingService manages gear listings, purchases, and gear rentals.
type CampingService struct {
	db            *gorm.DB
	notifications *NotificationService
}

// NewCampingService constructs a CampingService.
func NewCampingService(db *gorm.DB, notifications *NotificationService) (*CampingService, error) {
	if db == nil {
		return nil, errors.New("camping service: db is required")
	}
	if notifications == nil {
		return nil, errors.New("camping service: notification service is required")
	}
	return &CampingService{db: db, notifications: notifications}, nil
}

// CreateItem lists a new piece of gear under the vendor.
func (s *CampingService) CreateItem(ctx context.Context, vendorID string, input CreateCampingItemInput) (*models.CampingItem, error) {
	if !input.IsForSale && !input.IsForRent {
		return nil, apperrors.NewBadRequest("Item must be for sale, for rent, or both")
	}
	if input.IsForSale && input.Price <= 0 {
		return nil, apperrors.NewBadRequest("Sale items need a positive price")
	}
	if input.IsForRent && input.RentalPrice <= 0 {
		return nil, apperrors.NewBadRequest("Rental items need a positive daily price")
	}

	item := models.CampingItem{
		VendorID:    vendorID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Category:    strings.ToLower(strings.TrimSpace(input.Category)),
		IsForSale:   input.IsForSale,
		IsForRent:   input.IsForRent,
		Price:       input.Price,
		RentalPrice: input.RentalPrice,
		Stock:       input.Stock,
		Images:      encodeJSON(sliceOrEmpty(input.Images)),
	}

	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, fmt.Errorf("camping service: create item: %w", err)
	}
	return &item, nil
}

// UpdateItem applies a partial update to a listing owned by the vendor.
func (s *CampingService) UpdateItem(ctx context.Context, vendorID, itemID string, input UpdateCampingItemInput) (*models.CampingItem, error) {
	item, err := s.loadOwnedItem(ctx, vendorID, itemID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Category != nil {
		updates["category"] = strings.ToLower(strings.TrimSpace(*input.Category))
	}
	if input.IsForSale != nil {
		updates["is_for_sale"] = *input.IsForSale
	}
	if input.IsForRent != nil {
		updates["is_for_rent"] = *input.IsForRent
	}
	if input.Price != nil {
		updates["price"] = *input.Price
	}
	if input.RentalPrice != nil {
		updates["rental_price"] = *input.RentalPrice
	}
	if input.Stock != nil {
		updates["stock"] = *input.Stock
	}
	if input.Images != nil {
		updates["images"] = encodeJSON(sliceOrEmpty(*input.Images))
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(item).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("camping service: update item: %w", err)
		}
	}
	return s.GetItem(ctx, itemID)
}

// DeleteItem removes a listing owned by the vendor.
func (s *CampingService) DeleteItem(ctx context.Context, vendorID, itemID string) error {
	item, err := s.loadOwnedItem(ctx, vendorID, itemID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(item).Error; err != nil {
		return fmt.Errorf("camping service: delete item: %w", err)
	}
	return nil
}

// GetItem loads a single gear listing.
func (s *CampingService) GetItem(ctx context.Context, itemID string) (*models.CampingItem, error) {
	var item models.CampingItem
	if err := s.db.WithContext(ctx).Preload("Vendor").Where("id = ?", itemID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("camping service: load item: %w", err)
	}
	return &item, nil
}

// ListItems returns gear listings matching the filters.
func (s *CampingService) ListItems(ctx context.Context, input ListCampingItemsInput) ([]models.CampingItem, error) {
	limit := input.Limit
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}

	query := s.db.WithContext(ctx).Preload("Vendor")
	if input.Category != "" {
		query = query.Where("category = ?", strings.ToLower(input.Category))
	}
	if input.ForSale != nil {
		query = query.Where("is_for_sale = ?", *input.ForSale)
	}
	if input.ForRent != nil {
		query = query.Where("is_for_rent = ?", *input.ForRent)
	}
	if input.MaxPrice > 0 {
		query = query.Where("price <= ? OR rental_price <= ?", input.MaxPrice, input.MaxPrice)
	}

	var items []models.CampingItem
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("camping service: list items: %w", err)
	}
	return items, nil
}

// ListVendorItems returns every listing owned by the vendor.
func (s *CampingService) ListVendorItems(ctx context.Context, vendorID string) ([]models.CampingItem, error) {
	var items []models.CampingItem
	if err := s.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("camping service: list vendor items: %w", err)
	}
	return items, nil
}

// PlaceOrder purchases sale items, decrementing stock atomically. The whole
// order fails if any line cannot be satisfied.
func (s *CampingService) PlaceOrder(ctx context.Context, buyerID string, input PlaceOrderInput) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lines := make([]models.OrderLine, 0, len(input.Items))
		var total float64
		var vendorID string

		for _, line := range input.Items {
			var item models.CampingItem
			if err := tx.Where("id = ?", line.ItemID).First(&item).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.ErrNotFound.WithMessage("Item not found")
				}
				return fmt.Errorf("camping service: load item: %w", err)
			}
			if !item.IsForSale {
				return apperrors.NewBadRequest("Item is not for sale")
			}
			if vendorID == "" {
				vendorID = item.VendorID
			} else if vendorID != item.VendorID {
				return apperrors.NewBadRequest("All items must belong to the same vendor")
			}

			result := tx.Model(&models.CampingItem{}).
				Where("id = ? AND stock >= ?", item.ID, line.Quantity).
				Update("stock", gorm.Expr("stock - ?", line.Quantity))
			if result.Error != nil {
				return fmt.Errorf("camping service: reserve stock: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return apperrors.ErrConflict.WithMessage("Insufficient stock for " + item.Name)
			}

			lines = append(lines, models.OrderLine{
				ItemID:          item.ID,
				Name:            item.Name,
				Quantity:        line.Quantity,
				PriceAtPurchase: item.Price,
			})
			total += item.Price * float64(line.Quantity)
		}

		order = models.Order{
			BuyerID:         buyerID,
			VendorID:        vendorID,
			Items:           encodeJSON(lines),
			TotalAmount:     total,
			ShippingAddress: input.ShippingAddress,
			PaymentMethod:   input.PaymentMethod,
			PaymentStatus:   models.PaymentPending,
			OrderStatus:     models.OrderProcessing,
		}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("camping service: create order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, order.VendorID, models.RecipientVendor, models.NotificationNewOrder, map[string]any{
		"order_id":     order.ID,
		"total_amount": order.TotalAmount,
	})
	return &order, nil
}

// UpdateOrderStatus lets the vendor advance an order through its lifecycle.
func (s *CampingService) UpdateOrderStatus(ctx context.Context, vendorID, orderID, status string) (*models.Order, error) {
	switch status {
	case models.OrderShipped, models.OrderDelivered, models.OrderCancelled:
	default:
		return nil, apperrors.NewBadRequest("Unknown order status")
	}

	var order models.Order
	if err := s.db.WithContext(ctx).Where("id = ?", orderID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("camping service: load order: %w", err)
	}
	if order.VendorID != vendorID {
		return nil, apperrors.ErrForbidden
	}
	if order.OrderStatus == models.OrderDelivered || order.OrderStatus == models.OrderCancelled {
		return nil, apperrors.ErrConflict.WithMessage("Order is already finalized")
	}

	if err := s.db.WithContext(ctx).Model(&order).Update("order_status", status).Error; err != nil {
		return nil, fmt.Errorf("camping service: update order: %w", err)
	}
	order.OrderStatus = status
	return &order, nil
}

// ListOrdersForBuyer returns the user's purchase history, newest first.
func (s *CampingService) ListOrdersForBuyer(ctx context.Context, buyerID string) ([]models.Order, error) {
	var orders []models.Order
	if err := s.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("camping service: list buyer orders: %w", err)
	}
	return orders, nil
}

// ListOrdersForVendor returns orders placed against the vendor's items.
func (s *CampingService) ListOrdersForVendor(ctx context.Context, vendorID string) ([]models.Order, error) {
	var orders []models.Order
	if err := s.db.WithContext(ctx).
		Preload("Buyer").
		Where("vendor_id = ?", vendorID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("camping service: list vendor orders: %w", err)
	}
	return orders, nil
}

// RentItem creates a pending gear rental and notifies the vendor.
func (s *CampingService) RentItem(ctx context.Context, renterID string, input RentItemInput) (*models.Rental, error) {
	if !input.EndDate.After(input.StartDate) {
		return nil, apperrors.NewBadRequest("End date must be after start date")
	}

	item, err := s.GetItem(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}
	if !item.IsForRent {
		return nil, apperrors.NewBadRequest("Item is not available for rent")
	}

	days := int(math.Ceil(input.EndDate.Sub(input.StartDate).Hours() / 24))
	if days < 1 {
		days = 1
	}

	rental := models.Rental{
		ItemID:         item.ID,
		RenterID:       renterID,
		VendorID:       item.VendorID,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		TotalPrice:     float64(days) * item.RentalPrice,
		Status:         models.RentalPending,
		PaymentStatus:  models.PaymentPending,
		DepositAmount:  item.RentalPrice,
		DepositStatus:  models.PaymentPending,
		PickupLocation: input.PickupLocation,
		ReturnLocation: input.ReturnLocation,
	}

	if err := s.db.WithContext(ctx).Create(&rental).Error; err != nil {
		return nil, fmt.Errorf("camping service: create rental: %w", err)
	}

	s.notify(ctx, rental.VendorID, models.RecipientVendor, models.NotificationNewRental, map[string]any{
		"rental_id": rental.ID,
		"item_id":   item.ID,
	})
	return &rental, nil
}

// ConfirmRental moves a pending rental to confirmed and notifies the renter.
func (s *CampingService) ConfirmRental(ctx context.Context, vendorID, rentalID string) (*models.Rental, error) {
	rental, err := s.updateRentalStatus(ctx, rentalID, models.RentalConfirmed, func(r *models.Rental) error {
		if r.VendorID != vendorID {
			return apperrors.ErrForbidden
		}
		if r.Status != models.RentalPending {
			return apperrors.ErrConflict.WithMessage("Rental is no longer pending")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, rental.RenterID, models.RecipientUser, models.NotificationRentalConfirmed, map[string]any{
		"rental_id": rental.ID,
		"item_id":   rental.ItemID,
	})
	return rental, nil
}

// CancelRental lets either party cancel a rental that has not started.
func (s *CampingService) CancelRental(ctx context.Context, accountID, rentalID string) (*models.Rental, error) {
	return s.updateRentalStatus(ctx, rentalID, models.RentalCancelled, func(r *models.Rental) error {
		if r.RenterID != accountID && r.VendorID != accountID {
			return apperrors.ErrForbidden
		}
		if r.Status != models.RentalPending && r.Status != models.RentalConfirmed {
			return apperrors.ErrConflict.WithMessage("Rental can no longer be cancelled")
		}
		return nil
	})
}

// ListRentalsForRenter returns the user's gear rentals, newest first.
func (s *CampingService) ListRentalsForRenter(ctx context.Context, renterID string) ([]models.Rental, error) {
	var rentals []models.Rental
	if err := s.db.WithContext(ctx).
		Preload("Item").
		Where("renter_id = ?", renterID).
		Order("created_at DESC").
		Find(&rentals).Error; err != nil {
		return nil, fmt.Errorf("camping service: list renter rentals: %w", err)
	}
	return rentals, nil
}

// ListRentalsForVendor returns rentals against the vendor's items.
func (s *CampingService) ListRentalsForVendor(ctx context.Context, vendorID string) ([]models.Rental, error) {
	var rentals []models.Rental
	if err := s.db.WithContext(ctx).
		Preload("Item").
		Preload("Renter").
		Where("vendor_id = ?", vendorID).
		Order("created_at DESC").
		Find(&rentals).Error; err != nil {
		return nil, fmt.Errorf("camping service: list vendor rentals: %w", err)
	}
	return rentals, nil
}

// OrderLines decodes the frozen line items of an order.
func OrderLines(order models.Order) []models.OrderLine {
	var lines []models.OrderLine
	if len(order.Items) == 0 {
		return lines
	}
	if err := json.Unmarshal(order.Items, &lines); err != nil {
		return nil
	}
	return lines
}

func (s *CampingService) updateRentalStatus(ctx context.Context, rentalID, next string, guard func(*models.Rental) error) (*models.Rental, error) {
	var rental models.Rental
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", rentalID).First(&rental).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return fmt.Errorf("camping service: load rental: %w", err)
		}
		if err := guard(&rental); err != nil {
			return err
		}
		if err := tx.Model(&rental).Update("status", next).Error; err != nil {
			return fmt.Errorf("camping service: update rental: %w", err)
		}
		rental.Status = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rental, nil
}

func (s *CampingService) loadOwnedItem(ctx context.Context, vendorID, itemID string) (*models.CampingItem, error) {
	var item models.CampingItem
	if err := s.db.WithContext(ctx).Where("id = ?", itemID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("camping service: load item: %w", err)
	}
	if item.VendorID != vendorID {
		return nil, apperrors.ErrForbidden
	}
	return &item, nil
}

func (s *CampingService) notify(ctx context.Context, recipient, recipientType, notificationType string, data map[string]any) {
	if _, _, err := s.notifications.Create(ctx, CreateNotificationInput{
		Recipient:     recipient,
		RecipientType: recipientType,
		Type:          notificationType,
		Data:          data,
	}); err != nil {
		logger.Error("failed to record camping notification", zap.Error(err))
	}
}
