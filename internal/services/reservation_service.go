package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumumtergo/server/internal/models"
	apperrors "github.com/dumumtergo/server/pkg/errors"
	"github.com/dumumtergo/server/pkg/logger"
)

// Per-item daily surcharges applied on top of the base rate.
const (
	childSeatDailyFee    = 30.0
	extraDriverDailyFee  = 30.0
	maxReservationLength = 90 * 24 * time.Hour
)

// CreateReservationInput captures a booking request.
type CreateReservationInput struct {
	CarID             string         `json:"car_id" validate:"required,uuid"`
	StartDate         time.Time      `json:"start_date" validate:"required"`
	EndDate           time.Time      `json:"end_date" validate:"required"`
	ChildSeats        int            `json:"child_seats" validate:"omitempty,min=0,max=4"`
	AdditionalDrivers int            `json:"additional_drivers" validate:"omitempty,min=0,max=3"`
	Location          string         `json:"location" validate:"required,max=255"`
	DriverDetails     map[string]any `json:"driver_details"`
}

// ReservationService manages car bookings and their lifecycle.
type ReservationService struct {
	db            *gorm.DB
	cars          *CarService
	notifications *NotificationService
	now           func() time.Time
}

// NewReservationService constructs a ReservationService.
func NewReservationService(db *gorm.DB, cars *CarService, notifications *NotificationService) (*ReservationService, error) {
	if db == nil {
		return nil, errors.New("reservation service: db is required")
	}
	if cars == nil {
		return nil, errors.New("reservation service: car service is required")
	}
	if notifications == nil {
		return nil, errors.New("reservation service: notification service is required")
	}
	return &ReservationService{db: db, cars: cars, notifications: notifications, now: time.Now}, nil
}

// QuotePrice computes the total for a window and the selected extras. Partial
// days round up to a full day.
func QuotePrice(pricePerDay float64, start, end time.Time, childSeats, additionalDrivers int) float64 {
	days := int(math.Ceil(end.Sub(start).Hours() / 24))
	if days < 1 {
		days = 1
	}
	perDay := pricePerDay + float64(childSeats)*childSeatDailyFee + float64(additionalDrivers)*extraDriverDailyFee
	return float64(days) * perDay
}

// Create places a pending reservation and notifies the vendor.
func (s *ReservationService) Create(ctx context.Context, userID string, input CreateReservationInput) (*models.Reservation, error) {
	if !input.EndDate.After(input.StartDate) {
		return nil, apperrors.NewBadRequest("End date must be after start date")
	}
	if input.StartDate.Before(s.now().Truncate(24 * time.Hour)) {
		return nil, apperrors.NewBadRequest("Start date cannot be in the past")
	}
	if input.EndDate.Sub(input.StartDate) > maxReservationLength {
		return nil, apperrors.NewBadRequest("Reservation window is too long")
	}

	car, err := s.cars.Get(ctx, input.CarID)
	if err != nil {
		return nil, err
	}
	if car.IsBanned || !car.IsAvailable {
		return nil, apperrors.ErrNotFound
	}
	if car.VendorID == userID {
		return nil, apperrors.ErrForbidden
	}
	if !carAvailableBetween(*car, input.StartDate, input.EndDate) {
		return nil, apperrors.ErrConflict.WithMessage("Car is not available over the requested dates")
	}

	reservation := models.Reservation{
		CarID:             car.ID,
		UserID:            userID,
		VendorID:          car.VendorID,
		StartDate:         input.StartDate,
		EndDate:           input.EndDate,
		TotalPrice:        QuotePrice(car.PricePerDay, input.StartDate, input.EndDate, input.ChildSeats, input.AdditionalDrivers),
		Status:            models.ReservationPending,
		PaymentStatus:     models.PaymentPending,
		ChildSeats:        input.ChildSeats,
		AdditionalDrivers: input.AdditionalDrivers,
		Location:          input.Location,
		DriverDetails:     encodeJSON(mapOrEmpty(input.DriverDetails)),
	}

	if err := s.db.WithContext(ctx).Create(&reservation).Error; err != nil {
		return nil, fmt.Errorf("reservation service: create reservation: %w", err)
	}

	s.notify(ctx, car.VendorID, models.RecipientVendor, models.NotificationNewReservation, map[string]any{
		"reservation_id": reservation.ID,
		"car_id":         car.ID,
		"start_date":     reservation.StartDate,
		"end_date":       reservation.EndDate,
		"total_price":    reservation.TotalPrice,
	})

	return &reservation, nil
}

// Accept moves a pending reservation to accepted and blocks the car dates.
func (s *ReservationService) Accept(ctx context.Context, vendorID, reservationID string) (*models.Reservation, error) {
	reservation, err := s.transition(ctx, reservationID, models.ReservationAccepted, func(r *models.Reservation) error {
		if r.VendorID != vendorID {
			return apperrors.ErrForbidden
		}
		if r.Status != models.ReservationPending {
			return apperrors.ErrConflict.WithMessage("Reservation is no longer pending")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.cars.BlockDates(ctx, reservation.CarID, reservation.StartDate, reservation.EndDate); err != nil {
		logger.Error("failed to block car dates after accept", zap.Error(err))
	}

	s.notify(ctx, reservation.UserID, models.RecipientUser, models.NotificationReservationAccepted, map[string]any{
		"reservation_id": reservation.ID,
		"car_id":         reservation.CarID,
	})
	return reservation, nil
}

// Reject moves a pending reservation to rejected.
func (s *ReservationService) Reject(ctx context.Context, vendorID, reservationID string) (*models.Reservation, error) {
	reservation, err := s.transition(ctx, reservationID, models.ReservationRejected, func(r *models.Reservation) error {
		if r.VendorID != vendorID {
			return apperrors.ErrForbidden
		}
		if r.Status != models.ReservationPending {
			return apperrors.ErrConflict.WithMessage("Reservation is no longer pending")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, reservation.UserID, models.RecipientUser, models.NotificationReservationRejected, map[string]any{
		"reservation_id": reservation.ID,
		"car_id":         reservation.CarID,
	})
	return reservation, nil
}

// Cancel lets the booking user withdraw a pending or accepted reservation.
// Cancelling an accepted reservation frees the blocked car dates.
func (s *ReservationService) Cancel(ctx context.Context, userID, reservationID string) (*models.Reservation, error) {
	var wasAccepted bool
	reservation, err := s.transition(ctx, reservationID, models.ReservationCancelled, func(r *models.Reservation) error {
		if r.UserID != userID {
			return apperrors.ErrForbidden
		}
		if r.Status != models.ReservationPending && r.Status != models.ReservationAccepted {
			return apperrors.ErrConflict.WithMessage("Reservation can no longer be cancelled")
		}
		wasAccepted = r.Status == models.ReservationAccepted
		return nil
	})
	if err != nil {
		return nil, err
	}

	if wasAccepted {
		if err := s.cars.ReleaseDates(ctx, reservation.CarID, reservation.StartDate, reservation.EndDate); err != nil {
			logger.Error("failed to release car dates after cancel", zap.Error(err))
		}
	}

	s.notify(ctx, reservation.VendorID, models.RecipientVendor, models.NotificationReservationCanceled, map[string]any{
		"reservation_id": reservation.ID,
		"car_id":         reservation.CarID,
	})
	return reservation, nil
}

// Complete marks an accepted reservation as finished once the window ends.
func (s *ReservationService) Complete(ctx context.Context, vendorID, reservationID string) (*models.Reservation, error) {
	return s.transition(ctx, reservationID, models.ReservationCompleted, func(r *models.Reservation) error {
		if r.VendorID != vendorID {
			return apperrors.ErrForbidden
		}
		if r.Status != models.ReservationAccepted {
			return apperrors.ErrConflict.WithMessage("Only accepted reservations can be completed")
		}
		return nil
	})
}

// Get loads a reservation visible to the given account.
func (s *ReservationService) Get(ctx context.Context, accountID, reservationID string) (*models.Reservation, error) {
	reservation, err := s.load(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.UserID != accountID && reservation.VendorID != accountID {
		return nil, apperrors.ErrForbidden
	}
	return reservation, nil
}

// ListForUser returns the user's reservations, newest first.
func (s *ReservationService) ListForUser(ctx context.Context, userID string) ([]models.Reservation, error) {
	var reservations []models.Reservation
	if err := s.db.WithContext(ctx).
		Preload("Car").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&reservations).Error; err != nil {
		return nil, fmt.Errorf("reservation service: list user reservations: %w", err)
	}
	return reservations, nil
}

// ListForVendor returns reservations against the vendor's cars, optionally
// filtered by status.
func (s *ReservationService) ListForVendor(ctx context.Context, vendorID, status string) ([]models.Reservation, error) {
	query := s.db.WithContext(ctx).
		Preload("Car").
		Preload("User").
		Where("vendor_id = ?", vendorID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var reservations []models.Reservation
	if err := query.Order("created_at DESC").Find(&reservations).Error; err != nil {
		return nil, fmt.Errorf("reservation service: list vendor reservations: %w", err)
	}
	return reservations, nil
}

// ExpireStalePending rejects pending reservations whose start date passed
// more than the grace period ago; used by the maintenance scheduler.
func (s *ReservationService) ExpireStalePending(ctx context.Context, olderThan time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("status = ? AND start_date < ?", models.ReservationPending, olderThan).
		Update("status", models.ReservationRejected)
	if result.Error != nil {
		return 0, fmt.Errorf("reservation service: expire pending: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *ReservationService) transition(ctx context.Context, reservationID, next string, guard func(*models.Reservation) error) (*models.Reservation, error) {
	var reservation models.Reservation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", reservationID).First(&reservation).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return fmt.Errorf("reservation service: load reservation: %w", err)
		}
		if err := guard(&reservation); err != nil {
			return err
		}
		if err := tx.Model(&reservation).Update("status", next).Error; err != nil {
			return fmt.Errorf("reservation service: update status: %w", err)
		}
		reservation.Status = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (s *ReservationService) load(ctx context.Context, reservationID string) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := s.db.WithContext(ctx).Preload("Car").Where("id = ?", reservationID).First(&reservation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("reservation service: load reservation: %w", err)
	}
	return &reservation, nil
}

func (s *ReservationService) notify(ctx context.Context, recipient, recipientType, notificationType string, data map[string]any) {
	if _, _, err := s.notifications.Create(ctx, CreateNotificationInput{
		Recipient:     recipient,
		RecipientType: recipientType,
		Type:          notificationType,
		Data:          data,
	}); err != nil {
		logger.Error("failed to record reservation notification", zap.Error(err))
	}
}

func mapOrEmpty(data map[string]any) map[string]any {
	if data == nil {
		return map[string]any{}
	}
	return data
}
