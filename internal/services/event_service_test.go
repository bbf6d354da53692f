package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dumumtergo/server/internal/database/testutil"
	"github.com/dumumtergo/server/internal/models"
	apperrors "github.com/dumumtergo/server/pkg/errors"
)

func newEventFixture(t *testing.T) (*gorm.DB, *EventService, models.User, models.User) {
	t.Helper()

	db := testutil.MustOpenTestDB(t)

	svc, err := NewEventService(db)
	require.NoError(t, err)

	admin := models.User{Name: "Admin", Email: "eventadmin@example.com", Password: "x", Role: models.RoleAdmin}
	require.NoError(t, db.Create(&admin).Error)
	camper := models.User{Name: "Camper", Email: "camper@example.com", Password: "x"}
	require.NoError(t, db.Create(&camper).Error)

	return db, svc, admin, camper
}

func futureEvent(t *testing.T, svc *EventService, adminID, place string, lat, lng float64) *models.Event {
	t.Helper()

	event, err := svc.Create(context.Background(), adminID, CreateEventInput{
		Place:     place,
		Date:      time.Now().Add(72 * time.Hour),
		Address:   "Route forestière, " + place,
		Latitude:  lat,
		Longitude: lng,
	})
	require.NoError(t, err)
	return event
}

func TestEventListUpcomingSkipsPastEvents(t *testing.T) {
	db, svc, admin, _ := newEventFixture(t)

	ctx := context.Background()
	upcoming := futureEvent(t, svc, admin.ID, "Ain Draham", 36.77, 8.68)

	past := models.Event{
		Place:     "Zaghouan",
		Date:      time.Now().Add(-24 * time.Hour),
		Address:   "Djebel Zaghouan",
		Latitude:  36.37,
		Longitude: 10.10,
		CreatedBy: admin.ID,
		IsActive:  true,
	}
	require.NoError(t, db.Create(&past).Error)

	events, err := svc.ListUpcoming(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, upcoming.ID, events[0].ID)
	require.Equal(t, admin.Name, events[0].Creator.Name)
}

func TestEventNearbyFiltersByDistance(t *testing.T) {
	_, svc, admin, _ := newEventFixture(t)

	ctx := context.Background()
	north := futureEvent(t, svc, admin.ID, "Tabarka", 36.95, 8.75)
	futureEvent(t, svc, admin.ID, "Douz", 33.45, 9.02)

	events, err := svc.Nearby(ctx, 36.95, 8.75, 50)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, north.ID, events[0].ID)
}

func TestEventParticipationLifecycle(t *testing.T) {
	_, svc, admin, camper := newEventFixture(t)

	ctx := context.Background()
	event := futureEvent(t, svc, admin.ID, "Beni Mtir", 36.73, 8.74)

	joined, err := svc.Participate(ctx, camper.ID, event.ID)
	require.NoError(t, err)
	require.Len(t, joined.Participants, 1)
	require.Equal(t, camper.ID, joined.Participants[0].UserID)

	_, err = svc.Participate(ctx, camper.ID, event.ID)
	require.ErrorIs(t, err, apperrors.ErrAlreadyParticipating)

	left, err := svc.CancelParticipation(ctx, camper.ID, event.ID)
	require.NoError(t, err)
	require.Empty(t, left.Participants)

	_, err = svc.CancelParticipation(ctx, camper.ID, event.ID)
	require.ErrorIs(t, err, apperrors.ErrNotParticipating)
}

func TestEventParticipateRejectsInactiveAndPast(t *testing.T) {
	db, svc, admin, camper := newEventFixture(t)

	ctx := context.Background()
	inactive := futureEvent(t, svc, admin.ID, "Haouaria", 37.05, 11.01)
	require.NoError(t, db.Model(&models.Event{}).Where("id = ?", inactive.ID).Update("is_active", false).Error)

	_, err := svc.Participate(ctx, camper.ID, inactive.ID)
	require.Error(t, err)

	finished := models.Event{
		Place:     "Kroumirie",
		Date:      time.Now().Add(-time.Hour),
		Address:   "Forêt de Kroumirie",
		Latitude:  36.78,
		Longitude: 8.70,
		CreatedBy: admin.ID,
		IsActive:  true,
	}
	require.NoError(t, db.Create(&finished).Error)

	_, err = svc.Participate(ctx, camper.ID, finished.ID)
	require.Error(t, err)

	_, err = svc.Participate(ctx, camper.ID, "4c2f2a44-0000-0000-0000-000000000000")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestEventDeleteRemovesSignups(t *testing.T) {
	db, svc, admin, camper := newEventFixture(t)

	ctx := context.Background()
	event := futureEvent(t, svc, admin.ID, "Ichkeul", 37.16, 9.67)

	_, err := svc.Participate(ctx, camper.ID, event.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, event.ID))
	require.ErrorIs(t, svc.Delete(ctx, event.ID), apperrors.ErrNotFound)

	var signups int64
	require.NoError(t, db.Model(&models.EventParticipant{}).Where("event_id = ?", event.ID).Count(&signups).Error)
	require.Zero(t, signups)
}
