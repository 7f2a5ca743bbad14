package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kindergarten-canvas/backend/internal/app/models/dto"
	"github.com/kindergarten-canvas/backend/internal/app/services"
	"github.com/kindergarten-canvas/backend/internal/middleware"
)

// StatsController serves the dashboard counters.
type StatsController struct {
	statsService services.StatsService
}

// NewStatsController creates a new StatsController
func NewStatsController(statsService services.StatsService) *StatsController {
	return &StatsController{statsService: statsService}
}

// ContentCounts godoc
// @Summary Content counts
// @Description Draft and published counts per content section
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{content=dto.ContentCounts}
// @Failure 401 {object} dto.ErrorResponse
// @Router /stats/content-counts [get]
func (c *StatsController) ContentCounts(ctx *gin.Context) {
	counts, err := c.statsService.GetContentCounts(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(counts))
}
