package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumumtergo/server/internal/models"
	apperrors "github.com/dumumtergo/server/pkg/errors"
	"github.com/dumumtergo/server/pkg/logger"
)

// BanInput carries the reason recorded alongside a ban.
type BanInput struct {
	Reason string `json:"reason" validate:"required,min=3,max=1000"`
}

// PlatformStats aggregates headline counts for the admin dashboard.
type PlatformStats struct {
	Users               int64 `json:"users"`
	Vendors             int64 `json:"vendors"`
	Cars                int64 `json:"cars"`
	CampingItems        int64 `json:"camping_items"`
	Reservations        int64 `json:"reservations"`
	PendingReservations int64 `json:"pending_reservations"`
	Orders              int64 `json:"orders"`
	Rentals             int64 `json:"rentals"`
	Experiences         int64 `json:"experiences"`
	OpenComplaints      int64 `json:"open_complaints"`
}

// AdminService implements moderation and reporting for admin accounts.
type AdminService struct {
	db            *gorm.DB
	notifications *NotificationService
	now           func() time.Time
}

// NewAdminService constructs an AdminService.
func NewAdminService(db *gorm.DB, notifications *NotificationService) (*AdminService, error) {
	if db == nil {
		return nil, errors.New("admin service: db is required")
	}
	if notifications == nil {
		return nil, errors.New("admin service: notification service is required")
	}
	return &AdminService{db: db, notifications: notifications, now: time.Now}, nil
}

// BanUser bans a user account and notifies it.
func (s *AdminService) BanUser(ctx context.Context, userID, reason string) error {
	if err := s.setBan(ctx, &models.User{}, userID, true, reason); err != nil {
		return err
	}
	s.notifyBan(ctx, userID, models.RecipientUser, reason)
	return nil
}

// UnbanUser lifts a user ban.
func (s *AdminService) UnbanUser(ctx context.Context, userID string) error {
	return s.setBan(ctx, &models.User{}, userID, false, "")
}

// BanVendor bans a vendor account, suspends its subscription and notifies it.
func (s *AdminService) BanVendor(ctx context.Context, vendorID, reason string) error {
	if err := s.setBan(ctx, &models.Vendor{}, vendorID, true, reason); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(&models.Vendor{}).
		Where("id = ?", vendorID).
		Update("subscription_status", models.SubscriptionInactive).Error; err != nil {
		return fmt.Errorf("admin service: suspend subscription: %w", err)
	}
	s.notifyBan(ctx, vendorID, models.RecipientVendor, reason)
	return nil
}

// UnbanVendor lifts a vendor ban.
func (s *AdminService) UnbanVendor(ctx context.Context, vendorID string) error {
	return s.setBan(ctx, &models.Vendor{}, vendorID, false, "")
}

// BanCar delists a car and notifies its vendor.
func (s *AdminService) BanCar(ctx context.Context, adminID, carID, reason string) error {
	var car models.Car
	if err := s.db.WithContext(ctx).Where("id = ?", carID).First(&car).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("admin service: load car: %w", err)
	}

	now := s.now()
	updates := map[string]any{
		"is_banned":  true,
		"ban_reason": reason,
		"banned_at":  &now,
		"banned_by":  adminID,
	}
	if err := s.db.WithContext(ctx).Model(&car).Updates(updates).Error; err != nil {
		return fmt.Errorf("admin service: ban car: %w", err)
	}

	if _, _, err := s.notifications.Create(ctx, CreateNotificationInput{
		Recipient:     car.VendorID,
		RecipientType: models.RecipientVendor,
		Type:          models.NotificationCarBanned,
		Data: map[string]any{
			"car_id": car.ID,
			"reason": reason,
		},
	}); err != nil {
		logger.Error("failed to record car ban notification", zap.Error(err))
	}
	return nil
}

// UnbanCar relists a previously banned car.
func (s *AdminService) UnbanCar(ctx context.Context, carID string) error {
	result := s.db.WithContext(ctx).
		Model(&models.Car{}).
		Where("id = ?", carID).
		Updates(map[string]any{
			"is_banned":  false,
			"ban_reason": "",
			"banned_at":  nil,
			"banned_by":  "",
		})
	if result.Error != nil {
		return fmt.Errorf("admin service: unban car: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ListUsers pages over user accounts for the admin console.
func (s *AdminService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var users []models.User
	if err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("admin service: list users: %w", err)
	}
	return users, nil
}

// ListVendors pages over vendor accounts for the admin console.
func (s *AdminService) ListVendors(ctx context.Context, limit, offset int) ([]models.Vendor, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var vendors []models.Vendor
	if err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&vendors).Error; err != nil {
		return nil, fmt.Errorf("admin service: list vendors: %w", err)
	}
	return vendors, nil
}

// Stats computes the dashboard counters.
func (s *AdminService) Stats(ctx context.Context) (*PlatformStats, error) {
	stats := &PlatformStats{}
	counts := []struct {
		model any
		query func(*gorm.DB) *gorm.DB
		out   *int64
	}{
		{&models.User{}, nil, &stats.Users},
		{&models.Vendor{}, nil, &stats.Vendors},
		{&models.Car{}, nil, &stats.Cars},
		{&models.CampingItem{}, nil, &stats.CampingItems},
		{&models.Reservation{}, nil, &stats.Reservations},
		{&models.Reservation{}, func(db *gorm.DB) *gorm.DB {
			return db.Where("status = ?", models.ReservationPending)
		}, &stats.PendingReservations},
		{&models.Order{}, nil, &stats.Orders},
		{&models.Rental{}, nil, &stats.Rentals},
		{&models.Experience{}, nil, &stats.Experiences},
		{&models.Complaint{}, func(db *gorm.DB) *gorm.DB {
			return db.Where("status IN ?", []string{models.ComplaintPending, models.ComplaintInProgress})
		}, &stats.OpenComplaints},
	}

	for _, c := range counts {
		query := s.db.WithContext(ctx).Model(c.model)
		if c.query != nil {
			query = c.query(query)
		}
		if err := query.Count(c.out).Error; err != nil {
			return nil, fmt.Errorf("admin service: count: %w", err)
		}
	}
	return stats, nil
}

func (s *AdminService) setBan(ctx context.Context, model any, id string, banned bool, reason string) error {
	updates := map[string]any{"is_banned": banned}
	if banned {
		now := s.now()
		updates["ban_reason"] = reason
		updates["banned_at"] = &now
	} else {
		updates["ban_reason"] = ""
		updates["banned_at"] = nil
	}

	result := s.db.WithContext(ctx).Model(model).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("admin service: set ban: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *AdminService) notifyBan(ctx context.Context, accountID, accountType, reason string) {
	if _, _, err := s.notifications.Create(ctx, CreateNotificationInput{
		Recipient:     accountID,
		RecipientType: accountType,
		Type:          models.NotificationAccountBanned,
		Data:          map[string]any{"reason": reason},
	}); err != nil {
		logger.Error("failed to record ban notification", zap.Error(err))
	}
}
