package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/dumumtergo/server/internal/models"
	apperrors "github.com/dumumtergo/server/pkg/errors"
)

// RateVendorInput captures a user's vendor rating.
type RateVendorInput struct {
	VendorID string `json:"vendor_id" validate:"required,uuid"`
	Score    int    `json:"score" validate:"required,min=1,max=5"`
	Comment  string `json:"comment" validate:"omitempty,max=2000"`
}

// VendorRatingSummary aggregates a vendor's ratings.
type VendorRatingSummary struct {
	VendorID string  `json:"vendor_id"`
	Average  float64 `json:"average"`
	Count    int64   `json:"count"`
}

// RatingService manages user ratings of vendors.
type RatingService struct {
	db *gorm.DB
}

// NewRatingService constructs a RatingService.
func NewRatingService(db *gorm.DB) (*RatingService, error) {
	if db == nil {
		return nil, errors.New("rating service: db is required")
	}
	return &RatingService{db: db}, nil
}

// Rate records or replaces the user's rating for a vendor. A user only ever
// holds one rating per vendor; rating again overwrites score and comment.
func (s *RatingService) Rate(ctx context.Context, userID string, input RateVendorInput) (*models.Rating, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Vendor{}).Where("id = ?", input.VendorID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("rating service: check vendor: %w", err)
	}
	if count == 0 {
		return nil, apperrors.ErrNotFound
	}

	var rating models.Rating
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND vendor_id = ?", userID, input.VendorID).
		First(&rating).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		rating = models.Rating{
			UserID:   userID,
			VendorID: input.VendorID,
			Score:    input.Score,
			Comment:  strings.TrimSpace(input.Comment),
		}
		if err := s.db.WithContext(ctx).Create(&rating).Error; err != nil {
			return nil, fmt.Errorf("rating service: create rating: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("rating service: load rating: %w", err)
	default:
		updates := map[string]any{"score": input.Score, "comment": strings.TrimSpace(input.Comment)}
		if err := s.db.WithContext(ctx).Model(&rating).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("rating service: update rating: %w", err)
		}
		rating.Score = input.Score
		rating.Comment = input.Comment
	}
	return &rating, nil
}

// Delete removes the user's rating for a vendor; idempotent.
func (s *RatingService) Delete(ctx context.Context, userID, vendorID string) error {
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND vendor_id = ?", userID, vendorID).
		Delete(&models.Rating{}).Error; err != nil {
		return fmt.Errorf("rating service: delete rating: %w", err)
	}
	return nil
}

// ListForVendor returns all ratings for the vendor, newest first.
func (s *RatingService) ListForVendor(ctx context.Context, vendorID string) ([]models.Rating, error) {
	var ratings []models.Rating
	if err := s.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("created_at DESC").
		Find(&ratings).Error; err != nil {
		return nil, fmt.Errorf("rating service: list ratings: %w", err)
	}
	return ratings, nil
}

// Summary computes the vendor's average score and rating count.
func (s *RatingService) Summary(ctx context.Context, vendorID string) (*VendorRatingSummary, error) {
	summary := VendorRatingSummary{VendorID: vendorID}

	row := struct {
		Average float64
		Count   int64
	}{}
	if err := s.db.WithContext(ctx).
		Model(&models.Rating{}).
		Select("COALESCE(AVG(score), 0) AS average, COUNT(*) AS count").
		Where("vendor_id = ?", vendorID).
		Scan(&row).Error; err != nil {
		return nil, fmt.Errorf("rating service: summarize ratings: %w", err)
	}

	summary.Average = row.Average
	summary.Count = row.Count
	return &summary, nil
}
