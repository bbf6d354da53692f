package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dumumtergo/server/internal/database/testutil"
	"github.com/dumumtergo/server/internal/models"
	"github.com/dumumtergo/server/internal/realtime"
	apperrors "github.com/dumumtergo/server/pkg/errors"
)

func newComplaintFixture(t *testing.T) (*ComplaintService, *NotificationService) {
	t.Helper()

	db := testutil.MustOpenTestDB(t)

	notifications, err := NewNotificationService(db, realtime.NewRegistry())
	require.NoError(t, err)
	svc, err := NewComplaintService(db, notifications)
	require.NoError(t, err)

	return svc, notifications
}

func TestComplaintFileAndList(t *testing.T) {
	svc, _ := newComplaintFixture(t)

	ctx := context.Background()
	complaint, err := svc.File(ctx, "user-1", models.RecipientUser, FileComplaintInput{
		AccusedID:   "vendor-1",
		AccusedType: models.RecipientVendor,
		Subject:     "Car not as described",
		Description: "The car had half the fuel and bald tires.",
	})
	require.NoError(t, err)
	require.Equal(t, models.ComplaintPending, complaint.Status)

	mine, err := svc.ListForAccount(ctx, "user-1", models.RecipientUser)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	others, err := svc.ListForAccount(ctx, "user-2", models.RecipientUser)
	require.NoError(t, err)
	require.Empty(t, others)
}

func TestComplaintRejectsSelfComplaint(t *testing.T) {
	svc, _ := newComplaintFixture(t)

	_, err := svc.File(context.Background(), "user-1", models.RecipientUser, FileComplaintInput{
		AccusedID:   "user-1",
		AccusedType: models.RecipientUser,
		Subject:     "Self report",
		Description: "This should not be possible at all.",
	})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestComplaintResolveNotifiesComplainant(t *testing.T) {
	svc, notifications := newComplaintFixture(t)

	ctx := context.Background()
	complaint, err := svc.File(ctx, "vendor-1", models.RecipientVendor, FileComplaintInput{
		AccusedID:   "user-2",
		AccusedType: models.RecipientUser,
		Subject:     "Gear returned damaged",
		Description: "Tent poles came back bent after the rental.",
	})
	require.NoError(t, err)

	resolved, err := svc.Resolve(ctx, complaint.ID, ResolveComplaintInput{
		Status:        models.ComplaintResolved,
		AdminResponse: "Deposit withheld.",
	})
	require.NoError(t, err)
	require.Equal(t, models.ComplaintResolved, resolved.Status)

	items, err := notifications.ListForRecipient(ctx, ListNotificationsInput{
		Recipient:     "vendor-1",
		RecipientType: models.RecipientVendor,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, models.NotificationComplaintUpdate, items[0].Type)
	require.Equal(t, models.ComplaintResolved, items[0].Data["status"])
}

func TestComplaintResolveRejectsClosedComplaint(t *testing.T) {
	svc, _ := newComplaintFixture(t)

	ctx := context.Background()
	complaint, err := svc.File(ctx, "user-1", models.RecipientUser, FileComplaintInput{
		AccusedID:   "vendor-1",
		AccusedType: models.RecipientVendor,
		Subject:     "No-show pickup",
		Description: "Nobody was at the agreed pickup location.",
	})
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, complaint.ID, ResolveComplaintInput{Status: models.ComplaintRejected})
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, complaint.ID, ResolveComplaintInput{Status: models.ComplaintResolved})
	require.ErrorIs(t, err, apperrors.ErrConflict)
}
