package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/dumumtergo/server/internal/models"
	apperrors "github.com/dumumtergo/server/pkg/errors"
	"github.com/dumumtergo/server/pkg/geo"
)

// CreateEventInput captures a new camping outing.
type CreateEventInput struct {
	Place       string    `json:"place" validate:"required,min=1,max=255"`
	Date        time.Time `json:"date" validate:"required"`
	Description string    `json:"description" validate:"omitempty,max=10000"`
	Address     string    `json:"address" validate:"required,min=1"`
	Latitude    float64   `json:"latitude" validate:"latitude"`
	Longitude   float64   `json:"longitude" validate:"longitude"`
	Images      []string  `json:"images"`
}

// EventService manages admin-organized camping outings and their signups.
type EventService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewEventService constructs an EventService.
func NewEventService(db *gorm.DB) (*EventService, error) {
	if db == nil {
		return nil, errors.New("event service: db is required")
	}
	return &EventService{db: db, now: time.Now}, nil
}

// Create publishes a new event on behalf of an admin.
func (s *EventService) Create(ctx context.Context, adminID string, input CreateEventInput) (*models.Event, error) {
	event := models.Event{
		Place:       strings.TrimSpace(input.Place),
		Date:        input.Date,
		Description: strings.TrimSpace(input.Description),
		Address:     strings.TrimSpace(input.Address),
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		Images:      encodeJSON(sliceOrEmpty(input.Images)),
		CreatedBy:   adminID,
		IsActive:    true,
	}
	if event.Address == "" {
		return nil, apperrors.NewBadRequest("Event address is required")
	}
	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		return nil, fmt.Errorf("event service: create event: %w", err)
	}
	return &event, nil
}

// ListUpcoming returns events whose date is still in the future, soonest
// first.
func (s *EventService) ListUpcoming(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := s.db.WithContext(ctx).
		Preload("Creator").
		Where("date > ?", s.now()).
		Order("date ASC").
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("event service: list events: %w", err)
	}
	return events, nil
}

// Nearby returns upcoming events within radiusKm of a point. Rows are
// prefiltered with a bounding box in SQL; the exact haversine cut happens in
// memory.
func (s *EventService) Nearby(ctx context.Context, lat, lng, radiusKm float64) ([]models.Event, error) {
	if radiusKm <= 0 {
		radiusKm = 10
	}

	minLat, maxLat, minLon, maxLon := geo.BoundingBox(lat, lng, radiusKm)
	var events []models.Event
	if err := s.db.WithContext(ctx).
		Preload("Creator").
		Where("date > ?", s.now()).
		Where("latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?",
			minLat, maxLat, minLon, maxLon).
		Order("date ASC").
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("event service: nearby events: %w", err)
	}

	filtered := events[:0]
	for _, event := range events {
		if geo.DistanceKm(lat, lng, event.Latitude, event.Longitude) <= radiusKm {
			filtered = append(filtered, event)
		}
	}
	return filtered, nil
}

// Get loads an event with its creator and participants.
func (s *EventService) Get(ctx context.Context, eventID string) (*models.Event, error) {
	var event models.Event
	if err := s.db.WithContext(ctx).
		Preload("Creator").
		Preload("Participants").
		Preload("Participants.User").
		Where("id = ?", eventID).
		First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("event service: load event: %w", err)
	}
	return &event, nil
}

// Delete removes an event and its signups.
func (s *EventService) Delete(ctx context.Context, eventID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.Where("id = ?", eventID).First(&event).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return fmt.Errorf("event service: load event: %w", err)
		}
		if err := tx.Where("event_id = ?", eventID).Delete(&models.EventParticipant{}).Error; err != nil {
			return fmt.Errorf("event service: delete participants: %w", err)
		}
		return tx.Delete(&event).Error
	})
}

// Participate signs the user up. The event must still be active and in the
// future, and each user may join only once.
func (s *EventService) Participate(ctx context.Context, userID, eventID string) (*models.Event, error) {
	event, err := s.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if !event.IsActive {
		return nil, apperrors.NewBadRequest("Event is no longer active")
	}
	if event.Date.Before(s.now()) {
		return nil, apperrors.NewBadRequest("Event already took place")
	}

	participant := models.EventParticipant{EventID: eventID, UserID: userID}
	if err := s.db.WithContext(ctx).Create(&participant).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrAlreadyParticipating
		}
		return nil, fmt.Errorf("event service: create participant: %w", err)
	}
	return s.Get(ctx, eventID)
}

// CancelParticipation withdraws the user's signup.
func (s *EventService) CancelParticipation(ctx context.Context, userID, eventID string) (*models.Event, error) {
	if _, err := s.Get(ctx, eventID); err != nil {
		return nil, err
	}

	result := s.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Delete(&models.EventParticipant{})
	if result.Error != nil {
		return nil, fmt.Errorf("event service: delete participant: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.ErrNotParticipating
	}
	return s.Get(ctx, eventID)
}
