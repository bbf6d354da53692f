package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/dumumtergo/server/internal/models"
	"github.com/dumumtergo/server/internal/realtime"
	apperrors "github.com/dumumtergo/server/pkg/errors"
)

// NotificationDTO represents the API-friendly notification payload.
type NotificationDTO struct {
	ID            string         `json:"id"`
	Recipient     string         `json:"recipient"`
	RecipientType string         `json:"recipient_type"`
	Type          string         `json:"type"`
	Data          map[string]any `json:"data"`
	Read          bool           `json:"read"`
	CreatedAt     time.Time      `json:"created_at"`
}

// CreateNotificationInput defines attributes required to persist a notification.
type CreateNotificationInput struct {
	Recipient     string
	RecipientType string
	Type          string
	Data          map[string]any
}

// ListNotificationsInput defines filters for querying notifications.
type ListNotificationsInput struct {
	Recipient     string
	RecipientType string
	Limit         int
	Offset        int
}

// NotificationService persists notification records and hands them to the
// realtime registry for best-effort live delivery.
type NotificationService struct {
	db       *gorm.DB
	registry *realtime.Registry
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(db *gorm.DB, registry *realtime.Registry) (*NotificationService, error) {
	if db == nil {
		return nil, errors.New("notification service: db is required")
	}
	return &NotificationService{db: db, registry: registry}, nil
}

// Create persists the notification record and then attempts realtime
// delivery. The record is written regardless of whether the recipient is
// connected; the returned delivered flag only reports the live send outcome
// and a false value is not an error.
func (s *NotificationService) Create(ctx context.Context, input CreateNotificationInput) (*NotificationDTO, bool, error) {
	recipient := strings.TrimSpace(input.Recipient)
	if recipient == "" {
		return nil, false, errors.New("notification service: recipient is required")
	}
	recipientType := strings.TrimSpace(input.RecipientType)
	if recipientType != models.RecipientUser && recipientType != models.RecipientVendor {
		return nil, false, fmt.Errorf("notification service: unknown recipient type %q", input.RecipientType)
	}
	if !models.KnownNotificationType(input.Type) {
		return nil, false, fmt.Errorf("notification service: unknown notification type %q", input.Type)
	}

	data := input.Data
	if data == nil {
		data = map[string]any{}
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, false, fmt.Errorf("notification service: marshal data: %w", err)
	}

	notification := models.Notification{
		Recipient:     recipient,
		RecipientType: recipientType,
		Type:          input.Type,
		Data:          datatypes.JSON(encoded),
	}

	if err := s.db.WithContext(ctx).Create(&notification).Error; err != nil {
		return nil, false, fmt.Errorf("notification service: create notification: %w", err)
	}

	delivered := false
	if s.registry != nil {
		delivered = s.registry.Notify(recipient, realtime.Message{
			Type:           notification.Type,
			Data:           data,
			NotificationID: notification.ID,
		})
	}

	dto := mapNotification(notification)
	return &dto, delivered, nil
}

// ListForRecipient returns notifications for the supplied account, newest first.
func (s *NotificationService) ListForRecipient(ctx context.Context, input ListNotificationsInput) ([]NotificationDTO, error) {
	recipient := strings.TrimSpace(input.Recipient)
	if recipient == "" {
		return nil, errors.New("notification service: recipient is required")
	}

	limit := input.Limit
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}

	var rows []models.Notification
	if err := s.db.WithContext(ctx).
		Where("recipient = ? AND recipient_type = ?", recipient, input.RecipientType).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("notification service: list notifications: %w", err)
	}

	items := make([]NotificationDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapNotification(row))
	}
	return items, nil
}

// UnreadCount returns the number of unread notifications for the account.
func (s *NotificationService) UnreadCount(ctx context.Context, recipient, recipientType string) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient = ? AND recipient_type = ? AND is_read = ?", recipient, recipientType, false).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("notification service: unread count: %w", err)
	}
	return count, nil
}

// MarkRead flips the read flag on a notification owned by the account.
func (s *NotificationService) MarkRead(ctx context.Context, recipient, recipientType, notificationID string) (*NotificationDTO, error) {
	var notification models.Notification
	if err := s.db.WithContext(ctx).
		Where("id = ? AND recipient = ? AND recipient_type = ?", notificationID, recipient, recipientType).
		First(&notification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("notification service: load notification: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&notification).Update("is_read", true).Error; err != nil {
		return nil, fmt.Errorf("notification service: mark read: %w", err)
	}

	notification.Read = true
	dto := mapNotification(notification)
	return &dto, nil
}

// MarkAllRead marks every unread notification for the account as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, recipient, recipientType string) error {
	if err := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient = ? AND recipient_type = ? AND is_read = ?", recipient, recipientType, false).
		Update("is_read", true).Error; err != nil {
		return fmt.Errorf("notification service: mark all read: %w", err)
	}
	return nil
}

// PruneRead deletes read notifications created before the cutoff; used by the
// maintenance scheduler.
func (s *NotificationService) PruneRead(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("is_read = ? AND created_at < ?", true, cutoff).
		Delete(&models.Notification{})
	if result.Error != nil {
		return 0, fmt.Errorf("notification service: prune read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func mapNotification(row models.Notification) NotificationDTO {
	return NotificationDTO{
		ID:            row.ID,
		Recipient:     row.Recipient,
		RecipientType: row.RecipientType,
		Type:          row.Type,
		Data:          decodeJSONMap(row.Data),
		Read:          row.Read,
		CreatedAt:     row.CreatedAt,
	}
}
