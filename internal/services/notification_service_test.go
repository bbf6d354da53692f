package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dumumtergo/server/internal/database/testutil"
	"github.com/dumumtergo/server/internal/models"
	"github.com/dumumtergo/server/internal/realtime"
	apperrors "github.com/dumumtergo/server/pkg/errors"
)

func TestNotificationServiceCreatePersistsWhenOffline(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	svc, err := NewNotificationService(db, realtime.NewRegistry())
	require.NoError(t, err)

	ctx := context.Background()
	dto, delivered, err := svc.Create(ctx, CreateNotificationInput{
		Recipient:     "user-1",
		RecipientType: models.RecipientUser,
		Type:          models.NotificationNewReservation,
		Data:          map[string]any{"reservation_id": "res-1"},
	})
	require.NoError(t, err)
	require.False(t, delivered)
	require.NotEmpty(t, dto.ID)
	require.False(t, dto.Read)
	require.Equal(t, "res-1", dto.Data["reservation_id"])

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestNotificationServiceCreateRejectsUnknownType(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	svc, err := NewNotificationService(db, realtime.NewRegistry())
	require.NoError(t, err)

	_, _, err = svc.Create(context.Background(), CreateNotificationInput{
		Recipient:     "user-1",
		RecipientType: models.RecipientUser,
		Type:          "made_up_event",
	})
	require.Error(t, err)
}

func TestNotificationServiceListNewestFirst(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	svc, err := NewNotificationService(db, realtime.NewRegistry())
	require.NoError(t, err)

	ctx := context.Background()
	first, _, err := svc.Create(ctx, CreateNotificationInput{
		Recipient:     "vendor-1",
		RecipientType: models.RecipientVendor,
		Type:          models.NotificationNewOrder,
	})
	require.NoError(t, err)
	second, _, err := svc.Create(ctx, CreateNotificationInput{
		Recipient:     "vendor-1",
		RecipientType: models.RecipientVendor,
		Type:          models.NotificationNewRental,
	})
	require.NoError(t, err)

	// Force distinct ordering even when both rows share a timestamp.
	require.NoError(t, db.Model(&models.Notification{}).
		Where("id = ?", first.ID).
		Update("created_at", second.CreatedAt.Add(-time.Second)).Error)

	items, err := svc.ListForRecipient(ctx, ListNotificationsInput{
		Recipient:     "vendor-1",
		RecipientType: models.RecipientVendor,
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, second.ID, items[0].ID)
	require.Equal(t, first.ID, items[1].ID)
}

func TestNotificationServiceListScopedToRecipientType(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	svc, err := NewNotificationService(db, realtime.NewRegistry())
	require.NoError(t, err)

	ctx := context.Background()
	_, _, err = svc.Create(ctx, CreateNotificationInput{
		Recipient:     "acct-1",
		RecipientType: models.RecipientUser,
		Type:          models.NotificationReservationAccepted,
	})
	require.NoError(t, err)
	_, _, err = svc.Create(ctx, CreateNotificationInput{
		Recipient:     "acct-1",
		RecipientType: models.RecipientVendor,
		Type:          models.NotificationNewOrder,
	})
	require.NoError(t, err)

	items, err := svc.ListForRecipient(ctx, ListNotificationsInput{
		Recipient:     "acct-1",
		RecipientType: models.RecipientUser,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, models.NotificationReservationAccepted, items[0].Type)
}

func TestNotificationServiceMarkReadAndUnreadCount(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	svc, err := NewNotificationService(db, realtime.NewRegistry())
	require.NoError(t, err)

	ctx := context.Background()
	dto, _, err := svc.Create(ctx, CreateNotificationInput{
		Recipient:     "user-2",
		RecipientType: models.RecipientUser,
		Type:          models.NotificationExperienceLike,
	})
	require.NoError(t, err)

	count, err := svc.UnreadCount(ctx, "user-2", models.RecipientUser)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	updated, err := svc.MarkRead(ctx, "user-2", models.RecipientUser, dto.ID)
	require.NoError(t, err)
	require.True(t, updated.Read)

	count, err = svc.UnreadCount(ctx, "user-2", models.RecipientUser)
	require.NoError(t, err)
	require.EqualValues(t, 0, count)
}

func TestNotificationServiceMarkReadRejectsForeignRecipient(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	svc, err := NewNotificationService(db, realtime.NewRegistry())
	require.NoError(t, err)

	ctx := context.Background()
	dto, _, err := svc.Create(ctx, CreateNotificationInput{
		Recipient:     "user-3",
		RecipientType: models.RecipientUser,
		Type:          models.NotificationExperienceComment,
	})
	require.NoError(t, err)

	_, err = svc.MarkRead(ctx, "someone-else", models.RecipientUser, dto.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestNotificationServiceMarkAllRead(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	svc, err := NewNotificationService(db, realtime.NewRegistry())
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, _, err := svc.Create(ctx, CreateNotificationInput{
			Recipient:     "user-4",
			RecipientType: models.RecipientUser,
			Type:          models.NotificationExperienceLike,
		})
		require.NoError(t, err)
	}

	require.NoError(t, svc.MarkAllRead(ctx, "user-4", models.RecipientUser))

	count, err := svc.UnreadCount(ctx, "user-4", models.RecipientUser)
	require.NoError(t, err)
	require.EqualValues(t, 0, count)
}

func TestNotificationServiceReadColumnName(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	svc, err := NewNotificationService(db, realtime.NewRegistry())
	require.NoError(t, err)

	ctx := context.Background()
	dto, _, err := svc.Create(ctx, CreateNotificationInput{
		Recipient:     "user-9",
		RecipientType: models.RecipientUser,
		Type:          models.NotificationExperienceLike,
	})
	require.NoError(t, err)
	_, err = svc.MarkRead(ctx, "user-9", models.RecipientUser, dto.ID)
	require.NoError(t, err)

	// The column must be named is_read: "read" is reserved in MySQL and
	// breaks raw queries there.
	var isRead bool
	err = db.Raw("SELECT is_read FROM notifications WHERE id = ?", dto.ID).Scan(&isRead).Error
	require.NoError(t, err)
	require.True(t, isRead)
}
