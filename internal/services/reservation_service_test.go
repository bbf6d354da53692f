package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dumumtergo/server/internal/database/testutil"
	"github.com/dumumtergo/server/internal/models"
	"github.com/dumumtergo/server/internal/realtime"
	apperrors "github.com/dumumtergo/server/pkg/errors"
)

func newReservationFixture(t *testing.T) (*gorm.DB, *ReservationService, *NotificationService, models.User, models.Vendor, models.Car) {
	t.Helper()

	db := testutil.MustOpenTestDB(t)

	notifications, err := NewNotificationService(db, realtime.NewRegistry())
	require.NoError(t, err)
	cars, err := NewCarService(db)
	require.NoError(t, err)
	svc, err := NewReservationService(db, cars, notifications)
	require.NoError(t, err)

	user := models.User{Name: "Amine", Email: "amine@example.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	vendor := models.Vendor{Mobile: "+21612345678"}
	require.NoError(t, db.Create(&vendor).Error)

	car, err := cars.Create(context.Background(), vendor.ID, CreateCarInput{
		Brand:              "Dacia",
		Model:              "Duster",
		Year:               2022,
		RegistrationNumber: "200TU1234",
		Seats:              5,
		PricePerDay:        120,
	})
	require.NoError(t, err)

	return db, svc, notifications, user, vendor, *car
}

func reservationWindow(days int) (time.Time, time.Time) {
	start := time.Now().Add(48 * time.Hour).Truncate(time.Hour)
	return start, start.Add(time.Duration(days) * 24 * time.Hour)
}

func TestQuotePriceIncludesExtras(t *testing.T) {
	start := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(3 * 24 * time.Hour)

	require.Equal(t, 360.0, QuotePrice(120, start, end, 0, 0))
	require.Equal(t, 450.0, QuotePrice(120, start, end, 1, 0))
	require.Equal(t, 540.0, QuotePrice(120, start, end, 1, 1))
}

func TestQuotePriceRoundsPartialDaysUp(t *testing.T) {
	start := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(26 * time.Hour)

	require.Equal(t, 240.0, QuotePrice(120, start, end, 0, 0))
}

func TestReservationCreateNotifiesVendor(t *testing.T) {
	_, svc, notifications, user, vendor, car := newReservationFixture(t)

	start, end := reservationWindow(3)
	reservation, err := svc.Create(context.Background(), user.ID, CreateReservationInput{
		CarID:     car.ID,
		StartDate: start,
		EndDate:   end,
		Location:  "Tunis Carthage",
	})
	require.NoError(t, err)
	require.Equal(t, models.ReservationPending, reservation.Status)
	require.Equal(t, vendor.ID, reservation.VendorID)
	require.Equal(t, 360.0, reservation.TotalPrice)

	items, err := notifications.ListForRecipient(context.Background(), ListNotificationsInput{
		Recipient:     vendor.ID,
		RecipientType: models.RecipientVendor,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, models.NotificationNewReservation, items[0].Type)
}

func TestReservationCreateRejectsPastStart(t *testing.T) {
	_, svc, _, user, _, car := newReservationFixture(t)

	start := time.Now().Add(-72 * time.Hour)
	_, err := svc.Create(context.Background(), user.ID, CreateReservationInput{
		CarID:     car.ID,
		StartDate: start,
		EndDate:   start.Add(24 * time.Hour),
		Location:  "Tunis",
	})
	require.Error(t, err)
}

func TestReservationAcceptBlocksOverlappingBooking(t *testing.T) {
	_, svc, notifications, user, vendor, car := newReservationFixture(t)

	ctx := context.Background()
	start, end := reservationWindow(3)
	reservation, err := svc.Create(ctx, user.ID, CreateReservationInput{
		CarID:     car.ID,
		StartDate: start,
		EndDate:   end,
		Location:  "Tunis",
	})
	require.NoError(t, err)

	accepted, err := svc.Accept(ctx, vendor.ID, reservation.ID)
	require.NoError(t, err)
	require.Equal(t, models.ReservationAccepted, accepted.Status)

	items, err := notifications.ListForRecipient(ctx, ListNotificationsInput{
		Recipient:     user.ID,
		RecipientType: models.RecipientUser,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, models.NotificationReservationAccepted, items[0].Type)

	// The same window is now booked out.
	_, err = svc.Create(ctx, user.ID, CreateReservationInput{
		CarID:     car.ID,
		StartDate: start.Add(24 * time.Hour),
		EndDate:   end.Add(24 * time.Hour),
		Location:  "Tunis",
	})
	require.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestReservationAcceptRequiresOwningVendor(t *testing.T) {
	_, svc, _, user, _, car := newReservationFixture(t)

	ctx := context.Background()
	start, end := reservationWindow(2)
	reservation, err := svc.Create(ctx, user.ID, CreateReservationInput{
		CarID:     car.ID,
		StartDate: start,
		EndDate:   end,
		Location:  "Tunis",
	})
	require.NoError(t, err)

	_, err = svc.Accept(ctx, "other-vendor", reservation.ID)
	require.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestReservationCancelReleasesAcceptedDates(t *testing.T) {
	_, svc, _, user, vendor, car := newReservationFixture(t)

	ctx := context.Background()
	start, end := reservationWindow(2)
	reservation, err := svc.Create(ctx, user.ID, CreateReservationInput{
		CarID:     car.ID,
		StartDate: start,
		EndDate:   end,
		Location:  "Tunis",
	})
	require.NoError(t, err)

	_, err = svc.Accept(ctx, vendor.ID, reservation.ID)
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, user.ID, reservation.ID)
	require.NoError(t, err)
	require.Equal(t, models.ReservationCancelled, cancelled.Status)

	// The window is bookable again.
	_, err = svc.Create(ctx, user.ID, CreateReservationInput{
		CarID:     car.ID,
		StartDate: start,
		EndDate:   end,
		Location:  "Tunis",
	})
	require.NoError(t, err)
}

func TestReservationRejectOnlyWhilePending(t *testing.T) {
	_, svc, _, user, vendor, car := newReservationFixture(t)

	ctx := context.Background()
	start, end := reservationWindow(2)
	reservation, err := svc.Create(ctx, user.ID, CreateReservationInput{
		CarID:     car.ID,
		StartDate: start,
		EndDate:   end,
		Location:  "Tunis",
	})
	require.NoError(t, err)

	_, err = svc.Accept(ctx, vendor.ID, reservation.ID)
	require.NoError(t, err)

	_, err = svc.Reject(ctx, vendor.ID, reservation.ID)
	require.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestReservationExpireStalePending(t *testing.T) {
	db, svc, _, user, vendor, car := newReservationFixture(t)

	ctx := context.Background()
	start, end := reservationWindow(2)
	reservation, err := svc.Create(ctx, user.ID, CreateReservationInput{
		CarID:     car.ID,
		StartDate: start,
		EndDate:   end,
		Location:  "Tunis",
	})
	require.NoError(t, err)
	_ = vendor

	// Backdate the start so the reservation reads as stale.
	require.NoError(t, db.Model(&models.Reservation{}).
		Where("id = ?", reservation.ID).
		Update("start_date", time.Now().Add(-96*time.Hour)).Error)

	expired, err := svc.ExpireStalePending(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, expired)

	var reloaded models.Reservation
	require.NoError(t, db.Where("id = ?", reservation.ID).First(&reloaded).Error)
	require.Equal(t, models.ReservationRejected, reloaded.Status)
}
