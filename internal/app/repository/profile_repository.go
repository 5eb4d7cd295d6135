package repository

import (
	"context"

	"github.com/automarket/automarket-backend/internal/app/model"
	"github.com/automarket/automarket-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepository stores personal and business profiles. Both are keyed
// by user id and written with upserts.
type ProfileRepository interface {
	FindProfile(ctx context.Context, userID uint) (*model.Profile, error)
	UpsertProfile(ctx context.Context, profile *model.Profile) error
	FindBusinessProfile(ctx context.Context, userID uint) (*model.BusinessProfile, error)
	UpsertBusinessProfile(ctx context.Context, profile *model.BusinessProfile) error
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) FindProfile(ctx context.Context, userID uint) (*model.Profile, error) {
	var profile model.Profile
	if err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) UpsertProfile(ctx context.Context, profile *model.Profile) error {
	logger.Debug("Upserting profile in database", map[string]interface{}{
		"user_id": profile.UserID,
	})

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"full_name", "username", "phone", "region", "city", "updated_at"}),
	}).Create(profile).Error
	if err != nil {
		logger.Error("Failed to upsert profile in database", err, map[string]interface{}{
			"user_id": profile.UserID,
		})
		return err
	}
	return nil
}

func (r *profileRepository) FindBusinessProfile(ctx context.Context, userID uint) (*model.BusinessProfile, error) {
	var profile model.BusinessProfile
	if err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) UpsertBusinessProfile(ctx context.Context, profile *model.BusinessProfile) error {
	logger.Debug("Upserting business profile in database", map[string]interface{}{
		"user_id": profile.UserID,
	})

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"legal_name", "commercial_name", "rut", "region", "city",
			"address", "corporate_email", "phone", "website", "updated_at",
		}),
	}).Create(profile).Error
	if err != nil {
		logger.Error("Failed to upsert business profile in database", err, map[string]interface{}{
			"user_id": profile.UserID,
		})
		return err
	}
	return nil
}
