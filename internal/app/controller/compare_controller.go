package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/automarket/automarket-backend/internal/app/service"
	apperrors "github.com/automarket/automarket-backend/internal/errors"
	"github.com/automarket/automarket-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type CompareController struct {
	catalogService service.CatalogService
}

func NewCompareController(catalogService service.CatalogService) *CompareController {
	return &CompareController{
		catalogService: catalogService,
	}
}

// Compare fills up to three slots, left to right. Empty positions keep
// their slot empty, e.g. slots=a,,b.
// GET /api/v1/compare?slots=
func (ctrl *CompareController) Compare(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var slots []string
	if raw := c.Query("slots"); raw != "" {
		slots = strings.Split(raw, ",")
	}

	cmp, err := ctrl.catalogService.Compare(c.Request.Context(), slots)
	if err != nil {
		if errors.Is(err, service.ErrTooManySlots) {
			apperrors.BadRequest(c, apperrors.CompareTooManySlots, "At most 3 vehicles can be compared")
			return
		}
		log.Error("Failed to build comparison", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "compare listings")
		return
	}

	c.JSON(http.StatusOK, cmp)
}
