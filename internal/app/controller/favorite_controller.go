package controller

import (
	"errors"
	"net/http"

	"github.com/automarket/automarket-backend/internal/app/service"
	apperrors "github.com/automarket/automarket-backend/internal/errors"
	"github.com/automarket/automarket-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type FavoriteController struct {
	favoriteService service.FavoriteService
}

func NewFavoriteController(favoriteService service.FavoriteService) *FavoriteController {
	return &FavoriteController{
		favoriteService: favoriteService,
	}
}

// AddFavorite marks a vehicle as favorite
// POST /api/v1/favorites/:vehicle_id
func (ctrl *FavoriteController) AddFavorite(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, _ := middleware.GetUserID(c)
	vehicleID := c.Param("vehicle_id")

	err := ctrl.favoriteService.AddFavorite(c.Request.Context(), userID, vehicleID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAuthRequired):
			apperrors.Unauthorized(c, "Login required")
		case errors.Is(err, service.ErrListingNotFound):
			apperrors.NotFound(c, apperrors.ListingNotFound, "Vehicle not found")
		case errors.Is(err, service.ErrFavoriteAlreadyExists):
			apperrors.Conflict(c, apperrors.FavoriteAlreadyExists, "Vehicle is already in your favorites")
		default:
			log.Error("Failed to add favorite", err, map[string]interface{}{
				"user_id":    userID,
				"vehicle_id": vehicleID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "add favorite")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Added to favorites",
		"is_favorite": true,
	})
}

// RemoveFavorite unmarks a vehicle. Removing a missing favorite succeeds.
// DELETE /api/v1/favorites/:vehicle_id
func (ctrl *FavoriteController) RemoveFavorite(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, _ := middleware.GetUserID(c)
	vehicleID := c.Param("vehicle_id")

	if err := ctrl.favoriteService.RemoveFavorite(c.Request.Context(), userID, vehicleID); err != nil {
		if errors.Is(err, service.ErrAuthRequired) {
			apperrors.Unauthorized(c, "Login required")
			return
		}
		log.Error("Failed to remove favorite", err, map[string]interface{}{
			"user_id":    userID,
			"vehicle_id": vehicleID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "remove favorite")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Removed from favorites",
		"is_favorite": false,
	})
}

// GetFavoriteStatus
// GET /api/v1/favorites/:vehicle_id
func (ctrl *FavoriteController) GetFavoriteStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, _ := middleware.GetUserID(c)
	vehicleID := c.Param("vehicle_id")

	fav, err := ctrl.favoriteService.IsFavorite(c.Request.Context(), userID, vehicleID)
	if err != nil {
		if errors.Is(err, service.ErrAuthRequired) {
			apperrors.Unauthorized(c, "Login required")
			return
		}
		log.Error("Failed to check favorite", err, map[string]interface{}{
			"vehicle_id": vehicleID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"is_favorite": fav,
	})
}

// ListFavorites returns the favorite vehicles of the current user
// GET /api/v1/favorites
func (ctrl *FavoriteController) ListFavorites(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, _ := middleware.GetUserID(c)

	listings, err := ctrl.favoriteService.ListFavorites(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrAuthRequired) {
			apperrors.Unauthorized(c, "Login required")
			return
		}
		log.Error("Failed to fetch favorites", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list favorites")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"vehicles": listings,
		"count":    len(listings),
	})
}
