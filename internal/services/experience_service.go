package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/dumumtergo/server/internal/models"
	apperrors "github.com/dumumtergo/server/pkg/errors"
	"github.com/dumumtergo/server/pkg/geo"
	"github.com/dumumtergo/server/pkg/logger"
)

// CreateExperienceInput captures a new feed post.
type CreateExperienceInput struct {
	Title     string   `json:"title" validate:"omitempty,max=255"`
	Content   string   `json:"content" validate:"required,min=1,max=10000"`
	Images    []string `json:"images"`
	Tags      []string `json:"tags" validate:"omitempty,max=10,dive,min=1,max=64"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" validate:"omitempty,longitude"`
}

// SearchExperiencesInput filters the feed by tag and/or proximity to a point.
type SearchExperiencesInput struct {
	Tag      string
	Lat      *float64
	Lng      *float64
	RadiusKm float64
}

// ExperienceService manages the social feed: posts, likes, and comments.
type ExperienceService struct {
	db            *gorm.DB
	notifications *NotificationService
}

// NewExperienceService constructs an ExperienceService.
func NewExperienceService(db *gorm.DB, notifications *NotificationService) (*ExperienceService, error) {
	if db == nil {
		return nil, errors.New("experience service: db is required")
	}
	if notifications == nil {
		return nil, errors.New("experience service: notification service is required")
	}
	return &ExperienceService{db: db, notifications: notifications}, nil
}

// Create publishes a new experience.
func (s *ExperienceService) Create(ctx context.Context, userID string, input CreateExperienceInput) (*models.Experience, error) {
	experience := models.Experience{
		UserID:    userID,
		Title:     strings.TrimSpace(input.Title),
		Content:   input.Content,
		Images:    encodeJSON(sliceOrEmpty(input.Images)),
		Tags:      encodeJSON(sliceOrEmpty(input.Tags)),
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
	}
	if err := s.db.WithContext(ctx).Create(&experience).Error; err != nil {
		return nil, fmt.Errorf("experience service: create experience: %w", err)
	}
	return &experience, nil
}

// Get loads an experience with its author, likes, and comments.
func (s *ExperienceService) Get(ctx context.Context, experienceID string) (*models.Experience, error) {
	var experience models.Experience
	if err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Likes").
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Comments.User").
		Where("id = ?", experienceID).
		First(&experience).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("experience service: load experience: %w", err)
	}
	return &experience, nil
}

// List returns the feed, newest first.
func (s *ExperienceService) List(ctx context.Context, limit, offset int) ([]models.Experience, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}

	var experiences []models.Experience
	if err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Likes").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&experiences).Error; err != nil {
		return nil, fmt.Errorf("experience service: list experiences: %w", err)
	}
	return experiences, nil
}

// Delete removes an experience owned by the user along with its likes and
// comments.
func (s *ExperienceService) Delete(ctx context.Context, userID, experienceID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var experience models.Experience
		if err := tx.Where("id = ?", experienceID).First(&experience).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return fmt.Errorf("experience service: load experience: %w", err)
		}
		if experience.UserID != userID {
			return apperrors.ErrForbidden
		}

		if err := tx.Where("experience_id = ?", experienceID).Delete(&models.ExperienceLike{}).Error; err != nil {
			return fmt.Errorf("experience service: delete likes: %w", err)
		}
		if err := tx.Where("experience_id = ?", experienceID).Delete(&models.ExperienceComment{}).Error; err != nil {
			return fmt.Errorf("experience service: delete comments: %w", err)
		}
		if err := tx.Where("experience_id = ?", experienceID).Delete(&models.ExperienceFavorite{}).Error; err != nil {
			return fmt.Errorf("experience service: delete favorites: %w", err)
		}
		return tx.Delete(&experience).Error
	})
}

// Like records a like and notifies the author unless they liked their own
// post. Liking twice is a no-op.
func (s *ExperienceService) Like(ctx context.Context, userID, experienceID string) error {
	experience, err := s.Get(ctx, experienceID)
	if err != nil {
		return err
	}

	like := models.ExperienceLike{ExperienceID: experienceID, UserID: userID}
	if err := s.db.WithContext(ctx).Create(&like).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil
		}
		return fmt.Errorf("experience service: create like: %w", err)
	}

	if experience.UserID != userID {
		s.notify(ctx, experience.UserID, models.NotificationExperienceLike, map[string]any{
			"experience_id": experienceID,
			"liked_by":      userID,
		})
	}
	return nil
}

// Unlike removes the user's like; idempotent.
func (s *ExperienceService) Unlike(ctx context.Context, userID, experienceID string) error {
	if err := s.db.WithContext(ctx).
		Where("experience_id = ? AND user_id = ?", experienceID, userID).
		Delete(&models.ExperienceLike{}).Error; err != nil {
		return fmt.Errorf("experience service: delete like: %w", err)
	}
	return nil
}

// AddComment appends a comment and notifies the author unless they commented
// on their own post.
func (s *ExperienceService) AddComment(ctx context.Context, userID, experienceID, text string) (*models.ExperienceComment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewBadRequest("Comment text is required")
	}

	experience, err := s.Get(ctx, experienceID)
	if err != nil {
		return nil, err
	}

	comment := models.ExperienceComment{
		ExperienceID: experienceID,
		UserID:       userID,
		Text:         text,
	}
	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("experience service: create comment: %w", err)
	}

	if experience.UserID != userID {
		s.notify(ctx, experience.UserID, models.NotificationExperienceComment, map[string]any{
			"experience_id": experienceID,
			"comment_id":    comment.ID,
			"commented_by":  userID,
		})
	}
	return &comment, nil
}

// DeleteComment removes a comment. The comment author and the post author
// may both delete it.
func (s *ExperienceService) DeleteComment(ctx context.Context, userID, experienceID, commentID string) error {
	var comment models.ExperienceComment
	if err := s.db.WithContext(ctx).
		Where("id = ? AND experience_id = ?", commentID, experienceID).
		First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("experience service: load comment: %w", err)
	}

	if comment.UserID != userID {
		experience, err := s.Get(ctx, experienceID)
		if err != nil {
			return err
		}
		if experience.UserID != userID {
			return apperrors.ErrForbidden
		}
	}

	if err := s.db.WithContext(ctx).Delete(&comment).Error; err != nil {
		return fmt.Errorf("experience service: delete comment: %w", err)
	}
	return nil
}

// UpdateDescription replaces the body of a post. Only the author may edit.
func (s *ExperienceService) UpdateDescription(ctx context.Context, userID, experienceID, content string) (*models.Experience, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewBadRequest("Description is required")
	}

	var experience models.Experience
	if err := s.db.WithContext(ctx).Where("id = ?", experienceID).First(&experience).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("experience service: load experience: %w", err)
	}
	if experience.UserID != userID {
		return nil, apperrors.ErrForbidden
	}

	if err := s.db.WithContext(ctx).Model(&experience).Update("content", content).Error; err != nil {
		return nil, fmt.Errorf("experience service: update description: %w", err)
	}
	return s.Get(ctx, experienceID)
}

// Search filters the feed by tag and/or proximity, newest first. The
// proximity filter prefilters with a bounding box in SQL and applies the
// exact haversine cut in memory.
func (s *ExperienceService) Search(ctx context.Context, input SearchExperiencesInput) ([]models.Experience, error) {
	query := s.db.WithContext(ctx).Preload("User").Preload("Likes").Order("created_at DESC")

	if tag := strings.TrimSpace(input.Tag); tag != "" {
		query = query.Where(datatypes.JSONArrayQuery("tags").Contains(tag))
	}

	byDistance := input.Lat != nil && input.Lng != nil
	radius := input.RadiusKm
	if radius <= 0 {
		radius = 10
	}
	if byDistance {
		minLat, maxLat, minLon, maxLon := geo.BoundingBox(*input.Lat, *input.Lng, radius)
		query = query.Where("latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?",
			minLat, maxLat, minLon, maxLon)
	}

	var experiences []models.Experience
	if err := query.Find(&experiences).Error; err != nil {
		return nil, fmt.Errorf("experience service: search experiences: %w", err)
	}

	if !byDistance {
		return experiences, nil
	}

	filtered := experiences[:0]
	for _, experience := range experiences {
		if experience.Latitude == nil || experience.Longitude == nil {
			continue
		}
		if geo.DistanceKm(*input.Lat, *input.Lng, *experience.Latitude, *experience.Longitude) <= radius {
			filtered = append(filtered, experience)
		}
	}
	return filtered, nil
}

// AddFavorite bookmarks an experience. Favoriting twice is a conflict.
func (s *ExperienceService) AddFavorite(ctx context.Context, userID, experienceID string) error {
	if _, err := s.Get(ctx, experienceID); err != nil {
		return err
	}

	favorite := models.ExperienceFavorite{ExperienceID: experienceID, UserID: userID}
	if err := s.db.WithContext(ctx).Create(&favorite).Error; err != nil {
		if isUniqueConstraintError(err) {
			return apperrors.NewBadRequest("Experience is already in your favorites")
		}
		return fmt.Errorf("experience service: create favorite: %w", err)
	}
	return nil
}

// RemoveFavorite drops a bookmark. Removing a non-favorite is an error so
// clients can surface the mismatch.
func (s *ExperienceService) RemoveFavorite(ctx context.Context, userID, experienceID string) error {
	result := s.db.WithContext(ctx).
		Where("experience_id = ? AND user_id = ?", experienceID, userID).
		Delete(&models.ExperienceFavorite{})
	if result.Error != nil {
		return fmt.Errorf("experience service: delete favorite: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewBadRequest("Experience is not in your favorites")
	}
	return nil
}

// ListFavorites returns the user's bookmarked experiences, newest bookmark
// first.
func (s *ExperienceService) ListFavorites(ctx context.Context, userID string) ([]models.Experience, error) {
	var favorites []models.ExperienceFavorite
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&favorites).Error; err != nil {
		return nil, fmt.Errorf("experience service: list favorites: %w", err)
	}
	if len(favorites) == 0 {
		return []models.Experience{}, nil
	}

	ids := make([]string, 0, len(favorites))
	for _, favorite := range favorites {
		ids = append(ids, favorite.ExperienceID)
	}

	var experiences []models.Experience
	if err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Likes").
		Where("id IN ?", ids).
		Find(&experiences).Error; err != nil {
		return nil, fmt.Errorf("experience service: load favorites: %w", err)
	}

	byID := make(map[string]models.Experience, len(experiences))
	for _, experience := range experiences {
		byID[experience.ID] = experience
	}
	ordered := make([]models.Experience, 0, len(ids))
	for _, id := range ids {
		if experience, ok := byID[id]; ok {
			ordered = append(ordered, experience)
		}
	}
	return ordered, nil
}

func (s *ExperienceService) notify(ctx context.Context, recipient, notificationType string, data map[string]any) {
	if _, _, err := s.notifications.Create(ctx, CreateNotificationInput{
		Recipient:     recipient,
		RecipientType: models.RecipientUser,
		Type:          notificationType,
		Data:          data,
	}); err != nil {
		logger.Error("failed to record experience notification", zap.Error(err))
	}
}
