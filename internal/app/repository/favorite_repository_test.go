package repository

import (
	"context"
	"testing"
	"time"

	"github.com/automarket/automarket-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFavoriteRepository_Lifecycle(t *testing.T) {
	testDB := setupTestDB(t)
	repo := NewFavoriteRepository(testDB)
	listings := NewListingRepository(testDB)
	ctx := context.Background()
	seller := createTestUser(t, testDB, "seller@example.com")
	buyer := createTestUser(t, testDB, "buyer@example.com")

	listing := newTestListing(seller.ID, "Honda", time.Now())
	require.NoError(t, listings.Create(ctx, listing))

	exists, err := repo.Exists(ctx, buyer.ID, listing.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.Create(ctx, &model.Favorite{UserID: buyer.ID, VehicleID: listing.ID}))
	assert.Error(t, repo.Create(ctx, &model.Favorite{UserID: buyer.ID, VehicleID: listing.ID}), "unique (user_id, vehicle_id)")

	exists, err = repo.Exists(ctx, buyer.ID, listing.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	removed, err := repo.Delete(ctx, buyer.ID, listing.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(ctx, buyer.ID, listing.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestFavoriteRepository_UnknownVehicle(t *testing.T) {
	testDB := setupTestDB(t)
	repo := NewFavoriteRepository(testDB)
	buyer := createTestUser(t, testDB, "buyer@example.com")

	err := repo.Create(context.Background(), &model.Favorite{UserID: buyer.ID, VehicleID: "missing"})
	assert.Error(t, err)
}

func TestFavoriteRepository_FindListingsByUser(t *testing.T) {
	testDB := setupTestDB(t)
	repo := NewFavoriteRepository(testDB)
	listings := NewListingRepository(testDB)
	ctx := context.Background()
	seller := createTestUser(t, testDB, "seller@example.com")
	buyer := createTestUser(t, testDB, "buyer@example.com")
	other := createTestUser(t, testDB, "other@example.com")

	first := newTestListing(seller.ID, "First", time.Now())
	second := newTestListing(seller.ID, "Second", time.Now())
	paused := newTestListing(seller.ID, "Paused", time.Now())
	for _, l := range []*model.VehicleListing{first, second, paused} {
		require.NoError(t, listings.Create(ctx, l))
	}
	require.NoError(t, listings.UpdateStatus(ctx, paused.ID, model.ListingInactive))

	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, &model.Favorite{UserID: buyer.ID, VehicleID: first.ID, CreatedAt: base}))
	require.NoError(t, repo.Create(ctx, &model.Favorite{UserID: buyer.ID, VehicleID: second.ID, CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, repo.Create(ctx, &model.Favorite{UserID: buyer.ID, VehicleID: paused.ID, CreatedAt: base.Add(2 * time.Minute)}))
	require.NoError(t, repo.Create(ctx, &model.Favorite{UserID: other.ID, VehicleID: first.ID}))

	found, err := repo.FindListingsByUser(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Second", found[0].Brand)
	assert.Equal(t, "First", found[1].Brand)
	assert.Equal(t, first.Images, found[1].Images)
}
