package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dumumtergo/server/internal/database/testutil"
	"github.com/dumumtergo/server/internal/models"
	apperrors "github.com/dumumtergo/server/pkg/errors"
)

func newRatingFixture(t *testing.T) (*gorm.DB, *RatingService, models.Vendor) {
	t.Helper()

	db := testutil.MustOpenTestDB(t)

	svc, err := NewRatingService(db)
	require.NoError(t, err)

	vendor := models.Vendor{Mobile: "+21610101010"}
	require.NoError(t, db.Create(&vendor).Error)

	return db, svc, vendor
}

func TestRatingUpsertsPerUserVendorPair(t *testing.T) {
	db, svc, vendor := newRatingFixture(t)

	ctx := context.Background()
	first, err := svc.Rate(ctx, "user-1", RateVendorInput{VendorID: vendor.ID, Score: 3, Comment: "ok"})
	require.NoError(t, err)

	second, err := svc.Rate(ctx, "user-1", RateVendorInput{VendorID: vendor.ID, Score: 5, Comment: "great"})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, 5, second.Score)

	var count int64
	require.NoError(t, db.Model(&models.Rating{}).Where("vendor_id = ?", vendor.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestRatingRejectsUnknownVendor(t *testing.T) {
	_, svc, _ := newRatingFixture(t)

	_, err := svc.Rate(context.Background(), "user-1", RateVendorInput{VendorID: "missing", Score: 4})
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRatingSummaryAveragesScores(t *testing.T) {
	_, svc, vendor := newRatingFixture(t)

	ctx := context.Background()
	_, err := svc.Rate(ctx, "user-1", RateVendorInput{VendorID: vendor.ID, Score: 5})
	require.NoError(t, err)
	_, err = svc.Rate(ctx, "user-2", RateVendorInput{VendorID: vendor.ID, Score: 2})
	require.NoError(t, err)

	summary, err := svc.Summary(ctx, vendor.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, summary.Count)
	require.InDelta(t, 3.5, summary.Average, 0.001)
}

func TestRatingSummaryEmptyVendor(t *testing.T) {
	_, svc, vendor := newRatingFixture(t)

	summary, err := svc.Summary(context.Background(), vendor.ID)
	require.NoError(t, err)
	require.Zero(t, summary.Count)
	require.Zero(t, summary.Average)
}

func TestRatingDeleteIsIdempotent(t *testing.T) {
	_, svc, vendor := newRatingFixture(t)

	ctx := context.Background()
	_, err := svc.Rate(ctx, "user-1", RateVendorInput{VendorID: vendor.ID, Score: 4})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "user-1", vendor.ID))
	require.NoError(t, svc.Delete(ctx, "user-1", vendor.ID))

	ratings, err := svc.ListForVendor(ctx, vendor.ID)
	require.NoError(t, err)
	require.Empty(t, ratings)
}
