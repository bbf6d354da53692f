package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/dumumtergo/server/internal/models"
	apperrors "github.com/dumumtergo/server/pkg/errors"
)

// CreateCarInput describes a new vehicle listing.
type CreateCarInput struct {
	Brand              string   `json:"brand" validate:"required,min=1,max=64"`
	Model              string   `json:"model" validate:"required,min=1,max=64"`
	Year               int      `json:"year" validate:"required,min=1980,max=2100"`
	RegistrationNumber string   `json:"registration_number" validate:"required,min=2,max=32"`
	Color              string   `json:"color" validate:"omitempty,max=32"`
	Seats              int      `json:"seats" validate:"required,min=1,max=12"`
	Transmission       string   `json:"transmission" validate:"omitempty,oneof=manual automatic"`
	MileagePolicy      string   `json:"mileage_policy" validate:"omitempty,oneof=limited unlimited"`
	MileageLimit       int      `json:"mileage_limit" validate:"omitempty,min=0"`
	PricePerDay        float64  `json:"price_per_day" validate:"required,gt=0"`
	Deposit            float64  `json:"deposit" validate:"omitempty,gte=0"`
	Location           string   `json:"location" validate:"omitempty,max=255"`
	Images             []string `json:"images"`
	Features           []string `json:"features"`
}

// UpdateCarInput describes a partial update of a listing.
type UpdateCarInput struct {
	Color         *string   `json:"color" validate:"omitempty,max=32"`
	Transmission  *string   `json:"transmission" validate:"omitempty,oneof=manual automatic"`
	MileagePolicy *string   `json:"mileage_policy" validate:"omitempty,oneof=limited unlimited"`
	MileageLimit  *int      `json:"mileage_limit" validate:"omitempty,min=0"`
	PricePerDay   *float64  `json:"price_per_day" validate:"omitempty,gt=0"`
	Deposit       *float64  `json:"deposit" validate:"omitempty,gte=0"`
	Location      *string   `json:"location" validate:"omitempty,max=255"`
	Images        *[]string `json:"images"`
	Features      *[]string `json:"features"`
	IsAvailable   *bool     `json:"is_available"`
}

// SearchCarsInput filters the public listing search.
type SearchCarsInput struct {
	Brand        string
	Location     string
	Transmission string
	MaxPrice     float64
	MinSeats     int
	StartDate    time.Time
	EndDate      time.Time
	Limit        int
	Offset       int
}

// CarService manages vehicle listings and their booking availability.
type CarService struct {
	db *gorm.DB
}

// NewCarService constructs a CarService.
func NewCarService(db *gorm.DB) (*CarService, error) {
	if db == nil {
		return nil, errors.New("car service: db is required")
	}
	return &CarService{db: db}, nil
}

// Create registers a new car under the vendor.
func (s *CarService) Create(ctx context.Context, vendorID string, input CreateCarInput) (*models.Car, error) {
	car := models.Car{
		VendorID:           vendorID,
		Brand:              strings.TrimSpace(input.Brand),
		Model:              strings.TrimSpace(input.Model),
		Year:               input.Year,
		RegistrationNumber: strings.ToUpper(strings.TrimSpace(input.RegistrationNumber)),
		Color:              input.Color,
		Seats:              input.Seats,
		Transmission:       defaultString(input.Transmission, models.TransmissionManual),
		MileagePolicy:      defaultString(input.MileagePolicy, models.MileageUnlimited),
		MileageLimit:       input.MileageLimit,
		PricePerDay:        input.PricePerDay,
		Location:           input.Location,
		Images:             encodeJSON(sliceOrEmpty(input.Images)),
		Features:           encodeJSON(sliceOrEmpty(input.Features)),
		UnavailableDates:   encodeJSON([]models.DateRange{}),
		IsAvailable:        true,
	}
	if input.Deposit > 0 {
		car.Deposit = input.Deposit
	}

	if err := s.db.WithContext(ctx).Create(&car).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrConflict.WithMessage("Registration number is already listed")
		}
		return nil, fmt.Errorf("car service: create car: %w", err)
	}
	return &car, nil
}

// Update applies a partial update to a car owned by the vendor.
func (s *CarService) Update(ctx context.Context, vendorID, carID string, input UpdateCarInput) (*models.Car, error) {
	car, err := s.loadOwned(ctx, vendorID, carID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Color != nil {
		updates["color"] = *input.Color
	}
	if input.Transmission != nil {
		updates["transmission"] = *input.Transmission
	}
	if input.MileagePolicy != nil {
		updates["mileage_policy"] = *input.MileagePolicy
	}
	if input.MileageLimit != nil {
		updates["mileage_limit"] = *input.MileageLimit
	}
	if input.PricePerDay != nil {
		updates["price_per_day"] = *input.PricePerDay
	}
	if input.Deposit != nil {
		updates["deposit"] = *input.Deposit
	}
	if input.Location != nil {
		updates["location"] = *input.Location
	}
	if input.Images != nil {
		updates["images"] = encodeJSON(sliceOrEmpty(*input.Images))
	}
	if input.Features != nil {
		updates["features"] = encodeJSON(sliceOrEmpty(*input.Features))
	}
	if input.IsAvailable != nil {
		updates["is_available"] = *input.IsAvailable
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(car).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("car service: update car: %w", err)
		}
	}
	return s.Get(ctx, carID)
}

// Delete removes a car owned by the vendor.
func (s *CarService) Delete(ctx context.Context, vendorID, carID string) error {
	car, err := s.loadOwned(ctx, vendorID, carID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(car).Error; err != nil {
		return fmt.Errorf("car service: delete car: %w", err)
	}
	return nil
}

// Get returns a single car by id.
func (s *CarService) Get(ctx context.Context, carID string) (*models.Car, error) {
	var car models.Car
	if err := s.db.WithContext(ctx).Preload("Vendor").Where("id = ?", carID).First(&car).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("car service: load car: %w", err)
	}
	return &car, nil
}

// ListByVendor returns every car owned by the vendor, banned ones included.
func (s *CarService) ListByVendor(ctx context.Context, vendorID string) ([]models.Car, error) {
	var cars []models.Car
	if err := s.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("created_at DESC").
		Find(&cars).Error; err != nil {
		return nil, fmt.Errorf("car service: list vendor cars: %w", err)
	}
	return cars, nil
}

// Search returns available, unbanned cars matching the filters. When a date
// window is supplied, cars already booked over that window are filtered out.
func (s *CarService) Search(ctx context.Context, input SearchCarsInput) ([]models.Car, error) {
	limit := input.Limit
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}

	query := s.db.WithContext(ctx).
		Preload("Vendor").
		Where("is_available = ? AND is_banned = ?", true, false)
	if input.Brand != "" {
		query = query.Where("LOWER(brand) = ?", strings.ToLower(input.Brand))
	}
	if input.Location != "" {
		query = query.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(input.Location)+"%")
	}
	if input.Transmission != "" {
		query = query.Where("transmission = ?", input.Transmission)
	}
	if input.MaxPrice > 0 {
		query = query.Where("price_per_day <= ?", input.MaxPrice)
	}
	if input.MinSeats > 0 {
		query = query.Where("seats >= ?", input.MinSeats)
	}

	var cars []models.Car
	if err := query.Order("price_per_day ASC").Limit(limit).Offset(offset).Find(&cars).Error; err != nil {
		return nil, fmt.Errorf("car service: search cars: %w", err)
	}

	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return cars, nil
	}

	filtered := cars[:0]
	for _, car := range cars {
		if carAvailableBetween(car, input.StartDate, input.EndDate) {
			filtered = append(filtered, car)
		}
	}
	return filtered, nil
}

// AvailableBetween reports whether the car can be booked over the window.
func (s *CarService) AvailableBetween(ctx context.Context, carID string, start, end time.Time) (bool, error) {
	car, err := s.Get(ctx, carID)
	if err != nil {
		return false, err
	}
	if !car.IsAvailable || car.IsBanned {
		return false, nil
	}
	return carAvailableBetween(*car, start, end), nil
}

// BlockDates appends an accepted booking window to the car's unavailable set.
func (s *CarService) BlockDates(ctx context.Context, carID string, start, end time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var car models.Car
		if err := tx.Where("id = ?", carID).First(&car).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return fmt.Errorf("car service: load car: %w", err)
		}

		ranges := decodeDateRanges(car.UnavailableDates)
		ranges = append(ranges, models.DateRange{From: start, To: end})
		return tx.Model(&car).Update("unavailable_dates", encodeJSON(ranges)).Error
	})
}

// ReleaseDates removes a previously blocked window, used when an accepted
// reservation is cancelled.
func (s *CarService) ReleaseDates(ctx context.Context, carID string, start, end time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var car models.Car
		if err := tx.Where("id = ?", carID).First(&car).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return fmt.Errorf("car service: load car: %w", err)
		}

		ranges := decodeDateRanges(car.UnavailableDates)
		kept := make([]models.DateRange, 0, len(ranges))
		for _, r := range ranges {
			if r.From.Equal(start) && r.To.Equal(end) {
				continue
			}
			kept = append(kept, r)
		}
		return tx.Model(&car).Update("unavailable_dates", encodeJSON(kept)).Error
	})
}

func (s *CarService) loadOwned(ctx context.Context, vendorID, carID string) (*models.Car, error) {
	var car models.Car
	if err := s.db.WithContext(ctx).Where("id = ?", carID).First(&car).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("car service: load car: %w", err)
	}
	if car.VendorID != vendorID {
		return nil, apperrors.ErrForbidden
	}
	return &car, nil
}

func carAvailableBetween(car models.Car, start, end time.Time) bool {
	for _, r := range decodeDateRanges(car.UnavailableDates) {
		if start.Before(r.To) && r.From.Before(end) {
			return false
		}
	}
	return true
}

func decodeDateRanges(raw []byte) []models.DateRange {
	if len(raw) == 0 {
		return nil
	}
	var ranges []models.DateRange
	if err := json.Unmarshal(raw, &ranges); err != nil {
		return nil
	}
	return ranges
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func sliceOrEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
