package repository

import (
	"context"

	"github.com/automarket/automarket-backend/internal/app/model"
	"github.com/automarket/automarket-backend/pkg/logger"
	"gorm.io/gorm"
)

type ListingRepository interface {
	Create(ctx context.Context, listing *model.VehicleListing) error
	FindByID(ctx context.Context, id string) (*model.VehicleListing, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.VehicleListing, error)
	FindActive(ctx context.Context) ([]model.VehicleListing, error)
	FindByUser(ctx context.Context, userID uint) ([]model.VehicleListing, error)
	Update(ctx context.Context, listing *model.VehicleListing) error
	UpdateStatus(ctx context.Context, id string, status model.ListingStatus) error
	Delete(ctx context.Context, id string) error
	ListImageURLs(ctx context.Context) ([]string, error)
}

type listingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) Create(ctx context.Context, listing *model.VehicleListing) error {
	logger.Debug("Creating vehicle listing in database", map[string]interface{}{
		"user_id": listing.UserID,
		"brand":   listing.Brand,
		"model":   listing.Model,
		"images":  len(listing.Images),
	})

	if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
		logger.Error("Failed to create vehicle listing in database", err, map[string]interface{}{
			"user_id": listing.UserID,
		})
		return err
	}

	logger.Debug("Vehicle listing created in database", map[string]interface{}{
		"listing_id": listing.ID,
	})
	return nil
}

func (r *listingRepository) FindByID(ctx context.Context, id string) (*model.VehicleListing, error) {
	var listing model.VehicleListing
	if err := r.db.WithContext(ctx).First(&listing, "id = ?", id).Error; err != nil {
		logger.Debug("Vehicle listing not found", map[string]interface{}{
			"listing_id": id,
			"error":      err.Error(),
		})
		return nil, err
	}
	return &listing, nil
}

// FindByIDs returns the listings that exist, in no particular order.
func (r *listingRepository) FindByIDs(ctx context.Context, ids []string) ([]model.VehicleListing, error) {
	var listings []model.VehicleListing
	if len(ids) == 0 {
		return listings, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&listings).Error; err != nil {
		logger.Error("Failed to find vehicle listings by IDs", err, map[string]interface{}{
			"count": len(ids),
		})
		return nil, err
	}
	return listings, nil
}

func (r *listingRepository) FindActive(ctx context.Context) ([]model.VehicleListing, error) {
	var listings []model.VehicleListing
	err := r.db.WithContext(ctx).
		Where("status = ?", model.ListingActive).
		Order("created_at DESC").
		Find(&listings).Error
	if err != nil {
		logger.Error("Failed to find active vehicle listings", err)
		return nil, err
	}

	logger.Debug("Active vehicle listings loaded", map[string]interface{}{
		"count": len(listings),
	})
	return listings, nil
}

func (r *listingRepository) FindByUser(ctx context.Context, userID uint) ([]model.VehicleListing, error) {
	var listings []model.VehicleListing
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&listings).Error
	if err != nil {
		logger.Error("Failed to find vehicle listings by user", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return listings, nil
}

func (r *listingRepository) Update(ctx context.Context, listing *model.VehicleListing) error {
	if err := r.db.WithContext(ctx).Save(listing).Error; err != nil {
		logger.Error("Failed to update vehicle listing in database", err, map[string]interface{}{
			"listing_id": listing.ID,
		})
		return err
	}

	logger.Debug("Vehicle listing updated in database", map[string]interface{}{
		"listing_id": listing.ID,
	})
	return nil
}

func (r *listingRepository) UpdateStatus(ctx context.Context, id string, status model.ListingStatus) error {
	result := r.db.WithContext(ctx).Model(&model.VehicleListing{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		logger.Error("Failed to update vehicle listing status", result.Error, map[string]interface{}{
			"listing_id": id,
			"status":     status,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the listing and every favorite pointing at it.
func (r *listingRepository) Delete(ctx context.Context, id string) error {
	logger.Debug("Deleting vehicle listing from database", map[string]interface{}{
		"listing_id": id,
	})

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("vehicle_id = ?", id).Delete(&model.Favorite{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.VehicleListing{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to delete vehicle listing from database", err, map[string]interface{}{
			"listing_id": id,
		})
		return err
	}
	return nil
}

// ListImageURLs returns every image URL referenced by any listing,
// active or not.
func (r *listingRepository) ListImageURLs(ctx context.Context) ([]string, error) {
	var listings []model.VehicleListing
	if err := r.db.WithContext(ctx).Select("id", "images").Find(&listings).Error; err != nil {
		logger.Error("Failed to list vehicle image URLs", err)
		return nil, err
	}

	var urls []string
	for _, l := range listings {
		urls = append(urls, l.Images...)
	}
	return urls, nil
}
