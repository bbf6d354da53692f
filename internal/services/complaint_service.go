package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumumtergo/server/internal/models"
	apperrors "github.com/dumumtergo/server/pkg/errors"
	"github.com/dumumtergo/server/pkg/logger"
)

// FileComplaintInput captures a new grievance.
type FileComplaintInput struct {
	AccusedID   string `json:"accused_id" validate:"required,uuid"`
	AccusedType string `json:"accused_type" validate:"required,oneof=user vendor"`
	Subject     string `json:"subject" validate:"required,min=3,max=255"`
	Description string `json:"description" validate:"required,min=10,max=5000"`
}

// ResolveComplaintInput carries the admin's decision on a complaint.
type ResolveComplaintInput struct {
	Status        string `json:"status" validate:"required,oneof=in_progress resolved rejected"`
	AdminResponse string `json:"admin_response" validate:"omitempty,max=5000"`
}

// ComplaintService manages grievances between accounts.
type ComplaintService struct {
	db            *gorm.DB
	notifications *NotificationService
}

// NewComplaintService constructs a ComplaintService.
func NewComplaintService(db *gorm.DB, notifications *NotificationService) (*ComplaintService, error) {
	if db == nil {
		return nil, errors.New("complaint service: db is required")
	}
	if notifications == nil {
		return nil, errors.New("complaint service: notification service is required")
	}
	return &ComplaintService{db: db, notifications: notifications}, nil
}

// File records a new complaint by the given account.
func (s *ComplaintService) File(ctx context.Context, complainantID, complainantType string, input FileComplaintInput) (*models.Complaint, error) {
	if complainantID == input.AccusedID && complainantType == input.AccusedType {
		return nil, apperrors.NewBadRequest("Cannot file a complaint against yourself")
	}

	complaint := models.Complaint{
		ComplainantID:   complainantID,
		ComplainantType: complainantType,
		AccusedID:       input.AccusedID,
		AccusedType:     input.AccusedType,
		Subject:         strings.TrimSpace(input.Subject),
		Description:     input.Description,
		Status:          models.ComplaintPending,
	}

	if err := s.db.WithContext(ctx).Create(&complaint).Error; err != nil {
		return nil, fmt.Errorf("complaint service: create complaint: %w", err)
	}
	return &complaint, nil
}

// ListForAccount returns complaints the account filed, newest first.
func (s *ComplaintService) ListForAccount(ctx context.Context, accountID, accountType string) ([]models.Complaint, error) {
	var complaints []models.Complaint
	if err := s.db.WithContext(ctx).
		Where("complainant_id = ? AND complainant_type = ?", accountID, accountType).
		Order("created_at DESC").
		Find(&complaints).Error; err != nil {
		return nil, fmt.Errorf("complaint service: list complaints: %w", err)
	}
	return complaints, nil
}

// ListAll returns complaints for admin review, optionally filtered by status.
func (s *ComplaintService) ListAll(ctx context.Context, status string) ([]models.Complaint, error) {
	query := s.db.WithContext(ctx)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var complaints []models.Complaint
	if err := query.Order("created_at DESC").Find(&complaints).Error; err != nil {
		return nil, fmt.Errorf("complaint service: list all complaints: %w", err)
	}
	return complaints, nil
}

// Get loads a complaint visible to the account or an admin.
func (s *ComplaintService) Get(ctx context.Context, complaintID string) (*models.Complaint, error) {
	var complaint models.Complaint
	if err := s.db.WithContext(ctx).Where("id = ?", complaintID).First(&complaint).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("complaint service: load complaint: %w", err)
	}
	return &complaint, nil
}

// Resolve applies the admin decision and notifies the complainant.
func (s *ComplaintService) Resolve(ctx context.Context, complaintID string, input ResolveComplaintInput) (*models.Complaint, error) {
	complaint, err := s.Get(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if complaint.Status == models.ComplaintResolved || complaint.Status == models.ComplaintRejected {
		return nil, apperrors.ErrConflict.WithMessage("Complaint is already closed")
	}

	updates := map[string]any{"status": input.Status}
	if input.AdminResponse != "" {
		updates["admin_response"] = input.AdminResponse
	}
	if err := s.db.WithContext(ctx).Model(complaint).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("complaint service: update complaint: %w", err)
	}
	complaint.Status = input.Status
	complaint.AdminResponse = input.AdminResponse

	if _, _, err := s.notifications.Create(ctx, CreateNotificationInput{
		Recipient:     complaint.ComplainantID,
		RecipientType: complaint.ComplainantType,
		Type:          models.NotificationComplaintUpdate,
		Data: map[string]any{
			"complaint_id": complaint.ID,
			"status":       complaint.Status,
		},
	}); err != nil {
		logger.Error("failed to record complaint notification", zap.Error(err))
	}

	return complaint, nil
}
