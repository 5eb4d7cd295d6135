package service

import (
	"context"
	"errors"

	"github.com/automarket/automarket-backend/internal/app/model"
	"github.com/automarket/automarket-backend/internal/app/repository"
	"github.com/automarket/automarket-backend/internal/events"
	"github.com/automarket/automarket-backend/pkg/logger"
	"gorm.io/gorm"
)

var ErrFavoriteAlreadyExists = errors.New("vehicle already in favorites")

// FavoriteService manages the user x listing favorites relation. Every
// operation needs an authenticated user; userID 0 means anonymous.
type FavoriteService interface {
	AddFavorite(ctx context.Context, userID uint, vehicleID string) error
	RemoveFavorite(ctx context.Context, userID uint, vehicleID string) error
	IsFavorite(ctx context.Context, userID uint, vehicleID string) (bool, error)
	ListFavorites(ctx context.Context, userID uint) ([]model.VehicleListing, error)
}

type favoriteService struct {
	favoriteRepo repository.FavoriteRepository
	listingRepo  repository.ListingRepository
	publisher    events.Publisher
}

func NewFavoriteService(
	favoriteRepo repository.FavoriteRepository,
	listingRepo repository.ListingRepository,
	publisher events.Publisher,
) FavoriteService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &favoriteService{
		favoriteRepo: favoriteRepo,
		listingRepo:  listingRepo,
		publisher:    publisher,
	}
}

func (s *favoriteService) AddFavorite(ctx context.Context, userID uint, vehicleID string) error {
	if userID == 0 {
		return ErrAuthRequired
	}

	if _, err := s.listingRepo.FindByID(ctx, vehicleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrListingNotFound
		}
		return err
	}

	exists, err := s.favoriteRepo.Exists(ctx, userID, vehicleID)
	if err != nil {
		return err
	}
	if exists {
		return ErrFavoriteAlreadyExists
	}

	if err := s.favoriteRepo.Create(ctx, &model.Favorite{UserID: userID, VehicleID: vehicleID}); err != nil {
		// a concurrent add won the unique index
		if exists, _ := s.favoriteRepo.Exists(ctx, userID, vehicleID); exists {
			return ErrFavoriteAlreadyExists
		}
		return err
	}

	logger.Info("Favorite added", map[string]interface{}{
		"user_id":    userID,
		"vehicle_id": vehicleID,
	})
	events.PublishOrLog(ctx, s.publisher, events.New(events.FavoriteAdded, vehicleID, userID, nil))
	return nil
}

func (s *favoriteService) RemoveFavorite(ctx context.Context, userID uint, vehicleID string) error {
	if userID == 0 {
		return ErrAuthRequired
	}

	removed, err := s.favoriteRepo.Delete(ctx, userID, vehicleID)
	if err != nil {
		return err
	}
	if removed {
		logger.Info("Favorite removed", map[string]interface{}{
			"user_id":    userID,
			"vehicle_id": vehicleID,
		})
		events.PublishOrLog(ctx, s.publisher, events.New(events.FavoriteRemoved, vehicleID, userID, nil))
	}
	return nil
}

func (s *favoriteService) IsFavorite(ctx context.Context, userID uint, vehicleID string) (bool, error) {
	if userID == 0 {
		return false, ErrAuthRequired
	}
	return s.favoriteRepo.Exists(ctx, userID, vehicleID)
}

func (s *favoriteService) ListFavorites(ctx context.Context, userID uint) ([]model.VehicleListing, error) {
	if userID == 0 {
		return nil, ErrAuthRequired
	}

	listings, err := s.favoriteRepo.FindListingsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if listings == nil {
		listings = []model.VehicleListing{}
	}
	return listings, nil
}
