package controller

import (
	"context"
	"net/http"

	apperrors "github.com/automarket/automarket-backend/internal/errors"
	"github.com/automarket/automarket-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Sweeper removes uploaded images no listing references.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

type MaintenanceController struct {
	sweeper Sweeper
}

func NewMaintenanceController(sweeper Sweeper) *MaintenanceController {
	return &MaintenanceController{sweeper: sweeper}
}

// SweepOrphanImages runs the scheduled orphan sweep on demand.
// POST /api/v1/admin/maintenance/orphan-sweep
func (ctrl *MaintenanceController) SweepOrphanImages(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	deleted, err := ctrl.sweeper.Sweep(c.Request.Context())
	if err != nil {
		log.Error("Manual orphan sweep failed", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "Failed to sweep orphaned images")
		return
	}

	log.Info("Manual orphan sweep finished", map[string]interface{}{
		"user_id": userID,
		"deleted": deleted,
	})
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
