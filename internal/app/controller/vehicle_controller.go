package controller

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/automarket/automarket-backend/internal/app/model"
	"github.com/automarket/automarket-backend/internal/app/service"
	"github.com/automarket/automarket-backend/internal/catalog"
	apperrors "github.com/automarket/automarket-backend/internal/errors"
	"github.com/automarket/automarket-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// maxMultipartMemory bounds the form parsed in memory; larger parts spill
// to temporary files.
const maxMultipartMemory = 32 << 20

// maxListingBody fits a full set of images plus the text fields.
const maxListingBody = int64(model.MaxListingImages)*service.MaxImageSize + 1<<20

type VehicleController struct {
	listingService service.ListingService
	catalogService service.CatalogService
	maxBodyBytes   int64
}

func NewVehicleController(listingService service.ListingService, catalogService service.CatalogService) *VehicleController {
	return &VehicleController{
		listingService: listingService,
		catalogService: catalogService,
		maxBodyBytes:   maxListingBody,
	}
}

func respondListingError(c *gin.Context, err error) bool {
	switch {
	case respondValidation(c, err):
	case errors.Is(err, service.ErrAuthRequired):
		apperrors.Unauthorized(c, "Login required")
	case errors.Is(err, service.ErrListingNotFound):
		apperrors.NotFound(c, apperrors.ListingNotFound, "Vehicle not found")
	case errors.Is(err, service.ErrNotOwner):
		apperrors.Forbidden(c, apperrors.AuthzOwnerOnly, "Only the publisher can modify this vehicle")
	case errors.Is(err, service.ErrUploadFailed):
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "Failed to upload images")
	default:
		return false
	}
	return true
}

// bindListingForm reads the listing fields of a multipart form. Numbers
// that are present but not integers are reported per field.
func bindListingForm(c *gin.Context) (service.ListingInput, map[string]string) {
	bad := map[string]string{}
	intField := func(name string) *int {
		raw := strings.TrimSpace(c.PostForm(name))
		if raw == "" {
			return nil
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			bad[name] = name + " must be a whole number"
			return nil
		}
		return &n
	}

	in := service.ListingInput{
		Brand:        c.PostForm("brand"),
		Model:        c.PostForm("model"),
		Year:         intField("year"),
		Price:        intField("price"),
		Mileage:      intField("mileage"),
		Transmission: c.PostForm("transmission"),
		FuelType:     c.PostForm("fuel_type"),
		Color:        c.PostForm("color"),
		EngineSize:   intField("engine_size"),
		Condition:    c.PostForm("condition"),
		VehicleType:  c.PostForm("vehicle_type"),
		Description:  c.PostForm("description"),
		HostedImages: c.PostFormArray("image_urls"),
	}
	return in, bad
}

func readImages(form *multipart.Form) ([]service.ImageUpload, error) {
	if form == nil {
		return nil, nil
	}
	headers := form.File["images"]
	if len(headers) > model.MaxListingImages {
		return nil, &service.ValidationError{Fields: map[string]string{
			"images": fmt.Sprintf("at most %d images are allowed", model.MaxListingImages),
		}}
	}
	images := make([]service.ImageUpload, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > service.MaxImageSize {
			return nil, &service.ValidationError{Fields: map[string]string{
				"images": "each image must be at most 10MB",
			}}
		}
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
		}
		images = append(images, service.ImageUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return images, nil
}

func (ctrl *VehicleController) parseMultipart(c *gin.Context) (service.ListingInput, []service.ImageUpload, bool) {
	log := middleware.GetLoggerFromContext(c)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, ctrl.maxBodyBytes)
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
		log.Warn("Invalid multipart form", map[string]interface{}{
			"error": err.Error(),
		})
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			apperrors.RespondWithError(c, http.StatusRequestEntityTooLarge, apperrors.UploadTooLarge,
				fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit))
			return service.ListingInput{}, nil, false
		}
		apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Expected a multipart form")
		return service.ListingInput{}, nil, false
	}

	in, bad := bindListingForm(c)
	if len(bad) > 0 {
		apperrors.RespondWithValidationError(c, bad)
		return in, nil, false
	}

	images, err := readImages(c.Request.MultipartForm)
	if err != nil {
		if !respondValidation(c, err) {
			log.Error("Failed to read uploaded images", err, nil)
			apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Could not read uploaded images")
		}
		return in, nil, false
	}
	return in, images, true
}

// CreateVehicle publishes a listing
// POST /api/v1/vehicles
func (ctrl *VehicleController) CreateVehicle(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	in, images, ok := ctrl.parseMultipart(c)
	if !ok {
		return
	}

	listing, err := ctrl.listingService.Create(c.Request.Context(), userID, in, images)
	if err != nil {
		if respondListingError(c, err) {
			return
		}
		log.Error("Failed to create vehicle", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create listing")
		return
	}

	log.Info("Vehicle published", map[string]interface{}{
		"listing_id": listing.ID,
		"images":     len(listing.Images),
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Vehicle published successfully",
		"vehicle": listing,
	})
}

// UpdateVehicle edits a listing. remove_images lists image URLs to drop;
// images are new uploads and image_urls are presigned uploads to attach.
// PUT /api/v1/vehicles/:id
func (ctrl *VehicleController) UpdateVehicle(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	in, images, ok := ctrl.parseMultipart(c)
	if !ok {
		return
	}
	removeImages := c.PostFormArray("remove_images")

	id := c.Param("id")
	listing, err := ctrl.listingService.Update(c.Request.Context(), userID, id, in, removeImages, images)
	if err != nil {
		if respondListingError(c, err) {
			return
		}
		log.Error("Failed to update vehicle", err, map[string]interface{}{
			"listing_id": id,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update listing")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Vehicle updated successfully",
		"vehicle": listing,
	})
}

// ToggleStatus switches a listing between active and inactive
// PATCH /api/v1/vehicles/:id/status
func (ctrl *VehicleController) ToggleStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	id := c.Param("id")
	listing, err := ctrl.listingService.ToggleStatus(c.Request.Context(), userID, id)
	if err != nil {
		if respondListingError(c, err) {
			return
		}
		log.Error("Failed to change vehicle status", err, map[string]interface{}{
			"listing_id": id,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update listing")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Vehicle status updated",
		"vehicle": listing,
	})
}

// DeleteVehicle removes a listing and its images
// DELETE /api/v1/vehicles/:id
func (ctrl *VehicleController) DeleteVehicle(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if err := ctrl.listingService.Delete(c.Request.Context(), userID, id); err != nil {
		if respondListingError(c, err) {
			return
		}
		log.Error("Failed to delete vehicle", err, map[string]interface{}{
			"listing_id": id,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "delete listing")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Vehicle deleted successfully",
	})
}

// ListMine returns the current user's listings, active or not
// GET /api/v1/vehicles/mine
func (ctrl *VehicleController) ListMine(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	listings, err := ctrl.listingService.ListMine(c.Request.Context(), userID)
	if err != nil {
		log.Error("Failed to fetch own vehicles", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list listings")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"vehicles": listings,
		"count":    len(listings),
	})
}

// GetVehicle returns a listing with its seller card and, for logged in
// viewers, whether it is a favorite
// GET /api/v1/vehicles/:id
func (ctrl *VehicleController) GetVehicle(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	viewerID, _ := middleware.GetUserID(c)
	id := c.Param("id")

	detail, err := ctrl.listingService.GetDetail(c.Request.Context(), id, viewerID)
	if err != nil {
		if respondListingError(c, err) {
			return
		}
		log.Error("Failed to fetch vehicle", err, map[string]interface{}{
			"listing_id": id,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get listing")
		return
	}

	c.JSON(http.StatusOK, detail)
}

// ListVehicles runs the active catalog through the filter/sort engine
// GET /api/v1/vehicles
func (ctrl *VehicleController) ListVehicles(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	criteria, sortKey := catalog.ParseCriteria(c.Request.URL.Query())

	listings, err := ctrl.catalogService.Browse(c.Request.Context(), criteria, sortKey)
	if err != nil {
		log.Error("Failed to browse catalog", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list listings")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"vehicles":       listings,
		"count":          len(listings),
		"sort":           sortKey,
		"filters_active": catalog.HasActiveFilters(criteria, sortKey),
	})
}

// SearchVehicles runs a free-text search
// GET /api/v1/vehicles/search?q=
func (ctrl *VehicleController) SearchVehicles(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	query := c.Query("q")
	limit := service.DefaultSearchLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "limit must be a positive number")
			return
		}
		limit = min(n, service.MaxSearchLimit)
	}

	listings, err := ctrl.catalogService.Search(c.Request.Context(), query, limit)
	if err != nil {
		log.Error("Vehicle search failed", err, map[string]interface{}{
			"query": query,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "search listings")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"vehicles": listings,
		"count":    len(listings),
		"query":    query,
		"limit":    limit,
	})
}
