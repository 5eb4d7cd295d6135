package controller

import (
	"errors"
	"net/http"

	"github.com/automarket/automarket-backend/internal/app/service"
	apperrors "github.com/automarket/automarket-backend/internal/errors"
	"github.com/automarket/automarket-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type ProfileController struct {
	profileService service.ProfileService
}

func NewProfileController(profileService service.ProfileService) *ProfileController {
	return &ProfileController{
		profileService: profileService,
	}
}

// respondProfileError maps profile service errors. It returns false for
// errors it does not know.
func respondProfileError(c *gin.Context, err error) bool {
	switch {
	case respondValidation(c, err):
	case errors.Is(err, service.ErrProfileNotFound):
		apperrors.NotFound(c, apperrors.ProfileNotFound, "Profile has not been created yet")
	case errors.Is(err, service.ErrBusinessOnly):
		apperrors.Forbidden(c, apperrors.AuthzBusinessOnly, "Only business accounts have a business profile")
	case errors.Is(err, service.ErrUserNotFound):
		apperrors.NotFound(c, apperrors.ResourceNotFound, "User not found")
	default:
		return false
	}
	return true
}

// GetProfile returns the personal profile of the current user
// GET /api/v1/profile
func (ctrl *ProfileController) GetProfile(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	profile, err := ctrl.profileService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if respondProfileError(c, err) {
			return
		}
		log.Error("Failed to fetch profile", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile": profile,
	})
}

// UpdateProfile creates or replaces the personal profile
// PUT /api/v1/profile
func (ctrl *ProfileController) UpdateProfile(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req service.ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid profile request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}

	profile, err := ctrl.profileService.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		if respondProfileError(c, err) {
			return
		}
		log.Error("Failed to update profile", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"profile": profile,
	})
}

// GetBusinessProfile returns the company data of a business account
// GET /api/v1/business-profile
func (ctrl *ProfileController) GetBusinessProfile(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	profile, err := ctrl.profileService.GetBusinessProfile(c.Request.Context(), userID)
	if err != nil {
		if respondProfileError(c, err) {
			return
		}
		log.Error("Failed to fetch business profile", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get business profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"business_profile": profile,
	})
}

// UpdateBusinessProfile creates or replaces the company data
// PUT /api/v1/business-profile
func (ctrl *ProfileController) UpdateBusinessProfile(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req service.BusinessProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}

	profile, err := ctrl.profileService.UpdateBusinessProfile(c.Request.Context(), userID, req)
	if err != nil {
		if respondProfileError(c, err) {
			return
		}
		log.Error("Failed to update business profile", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update business profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":          "Business profile updated successfully",
		"business_profile": profile,
	})
}
