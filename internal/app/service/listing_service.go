package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/automarket/automarket-backend/internal/app/model"
	"github.com/automarket/automarket-backend/internal/app/repository"
	"github.com/automarket/automarket-backend/internal/events"
	"github.com/automarket/automarket-backend/internal/storage"
	"github.com/automarket/automarket-backend/pkg/logger"
	"gorm.io/gorm"
)

const (
	MinVehicleYear = 1900
	MaxImageSize   = 10 * 1024 * 1024
	imageFolder    = "vehicles"
)

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrUploadFailed    = errors.New("image upload failed")
)

// ImageStore is the object storage listing images live in.
type ImageStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(url string) (string, bool)
}

// SearchIndex keeps listings searchable. It is optional.
type SearchIndex interface {
	Index(ctx context.Context, v *model.VehicleListing) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string, from, size int) ([]string, int64, error)
}

// ListingInput carries the editable fields of a listing. Numeric fields are
// pointers so a missing value can be told apart from zero.
type ListingInput struct {
	Brand        string
	Model        string
	Year         *int
	Price        *int
	Mileage      *int
	Transmission string
	FuelType     string
	Color        string
	EngineSize   *int
	Condition    string
	VehicleType  string
	Description  string

	// HostedImages are URLs of images the user already put in storage
	// through a presigned upload. They must live under the user's folder.
	HostedImages []string
}

type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ListingDetail is a listing with its seller card and the viewer's
// favorite flag.
type ListingDetail struct {
	Vehicle    *model.VehicleListing `json:"vehicle"`
	Seller     *model.SellerProfile  `json:"seller"`
	IsFavorite bool                  `json:"is_favorite"`
}

type ListingService interface {
	Create(ctx context.Context, userID uint, in ListingInput, images []ImageUpload) (*model.VehicleListing, error)
	Import(ctx context.Context, userID uint, in ListingInput, imageURLs []string) (*model.VehicleListing, error)
	Update(ctx context.Context, userID uint, id string, in ListingInput, removeImages []string, newImages []ImageUpload) (*model.VehicleListing, error)
	ToggleStatus(ctx context.Context, userID uint, id string) (*model.VehicleListing, error)
	Delete(ctx context.Context, userID uint, id string) error
	ListMine(ctx context.Context, userID uint) ([]model.VehicleListing, error)
	GetDetail(ctx context.Context, id string, viewerID uint) (*ListingDetail, error)
}

type listingService struct {
	listingRepo    repository.ListingRepository
	favoriteRepo   repository.FavoriteRepository
	profileService ProfileService
	images         ImageStore
	index          SearchIndex
	publisher      events.Publisher
	now            func() time.Time
}

// NewListingService wires the publication workflow. index may be nil.
func NewListingService(
	listingRepo repository.ListingRepository,
	favoriteRepo repository.FavoriteRepository,
	profileService ProfileService,
	images ImageStore,
	index SearchIndex,
	publisher events.Publisher,
) ListingService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &listingService{
		listingRepo:    listingRepo,
		favoriteRepo:   favoriteRepo,
		profileService: profileService,
		images:         images,
		index:          index,
		publisher:      publisher,
		now:            time.Now,
	}
}

func (s *listingService) validate(in *ListingInput, imageCount int) error {
	in.Brand = strings.TrimSpace(in.Brand)
	in.Model = strings.TrimSpace(in.Model)
	in.Transmission = strings.TrimSpace(in.Transmission)
	in.FuelType = strings.TrimSpace(in.FuelType)
	in.Color = strings.TrimSpace(in.Color)
	in.Condition = strings.TrimSpace(in.Condition)
	in.VehicleType = strings.TrimSpace(in.VehicleType)
	in.Description = strings.TrimSpace(in.Description)

	v := validator{}
	v.require("brand", in.Brand)
	v.require("model", in.Model)
	v.require("transmission", in.Transmission)
	v.require("fuel_type", in.FuelType)
	v.require("color", in.Color)
	v.require("description", in.Description)
	v.require("condition", in.Condition)
	v.check(in.Condition == "" || model.VehicleCondition(in.Condition).Valid(),
		"condition", "condition must be one of new, semi_new, used")
	v.check(in.VehicleType == "" || model.IsValidVehicleType(in.VehicleType),
		"vehicle_type", "vehicle_type is not supported")

	maxYear := s.now().Year() + 1
	requireInt(v, "year", in.Year)
	v.check(in.Year == nil || (*in.Year >= MinVehicleYear && *in.Year <= maxYear),
		"year", fmt.Sprintf("year must be between %d and %d", MinVehicleYear, maxYear))
	for field, n := range map[string]*int{"price": in.Price, "mileage": in.Mileage, "engine_size": in.EngineSize} {
		requireInt(v, field, n)
		v.check(n == nil || *n >= 0, field, field+" cannot be negative")
	}

	v.check(imageCount >= 1, "images", "at least one image is required")
	v.check(imageCount <= model.MaxListingImages, "images",
		fmt.Sprintf("at most %d images are allowed", model.MaxListingImages))
	return v.err()
}

func requireInt(v validator, field string, n *int) {
	if n == nil {
		v[field] = field + " is required"
	}
}

func validateUploads(images []ImageUpload) error {
	v := validator{}
	for _, img := range images {
		v.check(storage.ValidateContentType(img.ContentType, storage.ImageContentTypes) == nil,
			"images", "only JPEG, PNG, WebP and GIF images are allowed")
		v.check(storage.ValidateFileSize(int64(len(img.Data)), MaxImageSize) == nil,
			"images", "each image must be at most 10MB")
	}
	return v.err()
}

// checkHosted verifies that every hosted image URL points into the
// user's own folder and returns them without duplicates.
func (s *listingService) checkHosted(userID uint, urls []string) ([]string, error) {
	prefix := fmt.Sprintf("%s/%d/", imageFolder, userID)
	seen := make(map[string]bool, len(urls))
	hosted := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			continue
		}
		key, ok := s.images.KeyFromURL(u)
		if !ok || !strings.HasPrefix(key, prefix) || strings.Contains(key, "..") {
			return nil, &ValidationError{Fields: map[string]string{
				"image_urls": "image_urls must reference your own uploaded images",
			}}
		}
		seen[u] = true
		hosted = append(hosted, u)
	}
	return hosted, nil
}

func (in ListingInput) apply(l *model.VehicleListing) {
	l.Brand = in.Brand
	l.Model = in.Model
	l.Year = *in.Year
	l.Price = *in.Price
	l.Mileage = *in.Mileage
	l.Transmission = in.Transmission
	l.FuelType = in.FuelType
	l.Color = in.Color
	l.EngineSize = *in.EngineSize
	l.Condition = model.VehicleCondition(in.Condition)
	l.VehicleType = in.VehicleType
	l.Description = in.Description
}

// upload stores images under vehicles/<user>/. On failure the images
// already uploaded are removed again.
func (s *listingService) upload(ctx context.Context, userID uint, images []ImageUpload) ([]string, error) {
	folder := fmt.Sprintf("%s/%d", imageFolder, userID)
	urls := make([]string, 0, len(images))
	for _, img := range images {
		url, err := s.images.Upload(ctx, storage.NewObjectKey(folder, img.Filename), img.ContentType, img.Data)
		if err != nil {
			logger.Error("Failed to upload listing image", err, map[string]interface{}{
				"user_id":  userID,
				"filename": img.Filename,
			})
			s.deleteImages(ctx, urls)
			return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// deleteImages removes objects best-effort. Leftovers are collected by the
// orphan sweeper.
func (s *listingService) deleteImages(ctx context.Context, urls []string) {
	for _, u := range urls {
		key, ok := s.images.KeyFromURL(u)
		if !ok {
			continue
		}
		if err := s.images.Delete(ctx, key); err != nil {
			logger.Warn("Failed to delete listing image", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
	}
}

func (s *listingService) reindex(ctx context.Context, l *model.VehicleListing) {
	if s.index == nil {
		return
	}
	if err := s.index.Index(ctx, l); err != nil {
		logger.Error("Failed to index listing", err, map[string]interface{}{
			"listing_id": l.ID,
		})
	}
}

func (s *listingService) Create(ctx context.Context, userID uint, in ListingInput, images []ImageUpload) (*model.VehicleListing, error) {
	if userID == 0 {
		return nil, ErrAuthRequired
	}
	hosted, err := s.checkHosted(userID, in.HostedImages)
	if err != nil {
		return nil, err
	}
	if err := s.validate(&in, len(hosted)+len(images)); err != nil {
		return nil, err
	}
	if err := validateUploads(images); err != nil {
		return nil, err
	}

	urls, err := s.upload(ctx, userID, images)
	if err != nil {
		return nil, err
	}

	listing := &model.VehicleListing{
		UserID: userID,
		Images: append(hosted, urls...),
		Status: model.ListingActive,
	}
	in.apply(listing)

	if err := s.listingRepo.Create(ctx, listing); err != nil {
		logger.Warn("Listing insert failed, removing uploaded images", map[string]interface{}{
			"user_id": userID,
			"images":  len(urls),
		})
		s.deleteImages(context.WithoutCancel(ctx), urls)
		return nil, err
	}

	logger.Info("Listing created", map[string]interface{}{
		"listing_id": listing.ID,
		"user_id":    userID,
	})
	s.reindex(ctx, listing)
	events.PublishOrLog(ctx, s.publisher, events.New(events.ListingCreated, listing.ID, userID, map[string]interface{}{
		"brand": listing.Brand,
		"model": listing.Model,
		"price": listing.Price,
	}))
	return listing, nil
}

// Import publishes a listing whose images are already hosted, as done by
// the bulk seed command. Validation is the same as Create.
func (s *listingService) Import(ctx context.Context, userID uint, in ListingInput, imageURLs []string) (*model.VehicleListing, error) {
	if userID == 0 {
		return nil, ErrAuthRequired
	}
	if err := s.validate(&in, len(imageURLs)); err != nil {
		return nil, err
	}

	listing := &model.VehicleListing{
		UserID: userID,
		Images: imageURLs,
		Status: model.ListingActive,
	}
	in.apply(listing)

	if err := s.listingRepo.Create(ctx, listing); err != nil {
		return nil, err
	}

	s.reindex(ctx, listing)
	events.PublishOrLog(ctx, s.publisher, events.New(events.ListingCreated, listing.ID, userID, map[string]interface{}{
		"brand":    listing.Brand,
		"model":    listing.Model,
		"price":    listing.Price,
		"imported": true,
	}))
	return listing, nil
}

// findOwned loads a listing and checks that userID published it.
func (s *listingService) findOwned(ctx context.Context, userID uint, id string) (*model.VehicleListing, error) {
	if userID == 0 {
		return nil, ErrAuthRequired
	}

	listing, err := s.listingRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	if listing.UserID != userID {
		logger.Warn("Listing modification by non-owner", map[string]interface{}{
			"listing_id": id,
			"user_id":    userID,
			"owner_id":   listing.UserID,
		})
		return nil, ErrNotOwner
	}
	return listing, nil
}

func (s *listingService) Update(ctx context.Context, userID uint, id string, in ListingInput, removeImages []string, newImages []ImageUpload) (*model.VehicleListing, error) {
	listing, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	remove := make(map[string]bool, len(removeImages))
	for _, u := range removeImages {
		remove[u] = true
	}
	var kept, removed []string
	for _, u := range listing.Images {
		if remove[u] {
			removed = append(removed, u)
		} else {
			kept = append(kept, u)
		}
	}

	hosted, err := s.checkHosted(userID, in.HostedImages)
	if err != nil {
		return nil, err
	}
	current := make(map[string]bool, len(kept))
	for _, u := range kept {
		current[u] = true
	}
	for _, u := range hosted {
		if !current[u] {
			kept = append(kept, u)
			current[u] = true
		}
	}
	if len(hosted) > 0 {
		stillRemoved := removed[:0]
		for _, u := range removed {
			if !current[u] {
				stillRemoved = append(stillRemoved, u)
			}
		}
		removed = stillRemoved
	}

	if err := s.validate(&in, len(kept)+len(newImages)); err != nil {
		return nil, err
	}
	if err := validateUploads(newImages); err != nil {
		return nil, err
	}

	added, err := s.upload(ctx, userID, newImages)
	if err != nil {
		return nil, err
	}

	in.apply(listing)
	listing.Images = append(kept, added...)
	if err := s.listingRepo.Update(ctx, listing); err != nil {
		s.deleteImages(context.WithoutCancel(ctx), added)
		return nil, err
	}

	s.deleteImages(ctx, removed)

	logger.Info("Listing updated", map[string]interface{}{
		"listing_id":     id,
		"images_added":   len(added),
		"images_removed": len(removed),
	})
	s.reindex(ctx, listing)
	events.PublishOrLog(ctx, s.publisher, events.New(events.ListingUpdated, id, userID, nil))
	return listing, nil
}

func (s *listingService) ToggleStatus(ctx context.Context, userID uint, id string) (*model.VehicleListing, error) {
	listing, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	next := model.ListingInactive
	if listing.Status != model.ListingActive {
		next = model.ListingActive
	}
	if err := s.listingRepo.UpdateStatus(ctx, id, next); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	listing.Status = next

	logger.Info("Listing status changed", map[string]interface{}{
		"listing_id": id,
		"status":     next,
	})
	s.reindex(ctx, listing)
	events.PublishOrLog(ctx, s.publisher, events.New(events.ListingStatusChanged, id, userID, map[string]interface{}{
		"status": next,
	}))
	return listing, nil
}

func (s *listingService) Delete(ctx context.Context, userID uint, id string) error {
	listing, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.listingRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrListingNotFound
		}
		return err
	}

	s.deleteImages(ctx, listing.Images)
	if s.index != nil {
		if err := s.index.Delete(ctx, id); err != nil {
			logger.Error("Failed to remove listing from index", err, map[string]interface{}{
				"listing_id": id,
			})
		}
	}

	logger.Info("Listing deleted", map[string]interface{}{
		"listing_id": id,
		"user_id":    userID,
	})
	events.PublishOrLog(ctx, s.publisher, events.New(events.ListingDeleted, id, userID, nil))
	return nil
}

func (s *listingService) ListMine(ctx context.Context, userID uint) ([]model.VehicleListing, error) {
	if userID == 0 {
		return nil, ErrAuthRequired
	}
	listings, err := s.listingRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if listings == nil {
		listings = []model.VehicleListing{}
	}
	return listings, nil
}

// GetDetail loads the listing, then its seller card and the viewer's
// favorite flag in parallel. Inactive listings are only shown to their
// owner. viewerID 0 is an anonymous viewer.
func (s *listingService) GetDetail(ctx context.Context, id string, viewerID uint) (*ListingDetail, error) {
	listing, err := s.listingRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	if !listing.IsActive() && listing.UserID != viewerID {
		return nil, ErrListingNotFound
	}

	detail := &ListingDetail{Vehicle: listing}
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		seller, err := s.profileService.GetSellerProfile(ctx, listing.UserID)
		if err != nil {
			logger.Warn("Failed to load seller profile", map[string]interface{}{
				"listing_id": id,
				"error":      err.Error(),
			})
			return
		}
		detail.Seller = seller
	}()

	if viewerID != 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fav, err := s.favoriteRepo.Exists(ctx, viewerID, id)
			if err != nil {
				logger.Warn("Failed to load favorite flag", map[string]interface{}{
					"listing_id": id,
					"error":      err.Error(),
				})
				return
			}
			detail.IsFavorite = fav
		}()
	}

	wg.Wait()
	return detail, nil
}
