package repository

import (
	"context"

	"github.com/automarket/automarket-backend/internal/app/model"
	"github.com/automarket/automarket-backend/pkg/logger"
	"gorm.io/gorm"
)

type FavoriteRepository interface {
	Create(ctx context.Context, favorite *model.Favorite) error
	Exists(ctx context.Context, userID uint, vehicleID string) (bool, error)
	Delete(ctx context.Context, userID uint, vehicleID string) (bool, error)
	FindListingsByUser(ctx context.Context, userID uint) ([]model.VehicleListing, error)
}

type favoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Create(ctx context.Context, favorite *model.Favorite) error {
	logger.Debug("Creating favorite in database", map[string]interface{}{
		"user_id":    favorite.UserID,
		"vehicle_id": favorite.VehicleID,
	})

	if err := r.db.WithContext(ctx).Omit("Vehicle").Create(favorite).Error; err != nil {
		logger.Error("Failed to create favorite in database", err, map[string]interface{}{
			"user_id":    favorite.UserID,
			"vehicle_id": favorite.VehicleID,
		})
		return err
	}
	return nil
}

func (r *favoriteRepository) Exists(ctx context.Context, userID uint, vehicleID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Favorite{}).
		Where("user_id = ? AND vehicle_id = ?", userID, vehicleID).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to check favorite", err, map[string]interface{}{
			"user_id":    userID,
			"vehicle_id": vehicleID,
		})
		return false, err
	}
	return count > 0, nil
}

// Delete reports whether a row was removed.
func (r *favoriteRepository) Delete(ctx context.Context, userID uint, vehicleID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND vehicle_id = ?", userID, vehicleID).
		Delete(&model.Favorite{})
	if result.Error != nil {
		logger.Error("Failed to delete favorite from database", result.Error, map[string]interface{}{
			"user_id":    userID,
			"vehicle_id": vehicleID,
		})
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// FindListingsByUser joins the user's favorites to active listings, most
// recently favorited first.
func (r *favoriteRepository) FindListingsByUser(ctx context.Context, userID uint) ([]model.VehicleListing, error) {
	var listings []model.VehicleListing
	err := r.db.WithContext(ctx).Model(&model.VehicleListing{}).
		Select("vehicle_listings.*").
		Joins("JOIN favorites ON favorites.vehicle_id = vehicle_listings.id").
		Where("favorites.user_id = ? AND vehicle_listings.status = ?", userID, model.ListingActive).
		Order("favorites.created_at DESC, favorites.id DESC").
		Find(&listings).Error
	if err != nil {
		logger.Error("Failed to find favorite listings", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("Favorite listings found", map[string]interface{}{
		"user_id": userID,
		"count":   len(listings),
	})
	return listings, nil
}
