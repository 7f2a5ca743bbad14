package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kindergarten-canvas/backend/internal/app/models/dto"
	"github.com/kindergarten-canvas/backend/internal/app/services"
	"github.com/kindergarten-canvas/backend/internal/pkg/apperrors"
	"github.com/rs/zerolog"
)

const (
	msgPublicNewsNotFound = "News item not found"
	msgPublicInternal     = "Internal server error"
)

// PublicController serves the anonymous marketing site. Responses use the
// JSend envelope.
type PublicController struct {
	newsService services.NewsService
	logger      zerolog.Logger
}

// NewPublicController creates a new PublicController
func NewPublicController(newsService services.NewsService, logger zerolog.Logger) *PublicController {
	return &PublicController{
		newsService: newsService,
		logger:      logger,
	}
}

func (c *PublicController) fail(ctx *gin.Context, status int, message string) {
	ctx.AbortWithStatusJSON(status, dto.JSendResponse{
		Status: dto.JSendFail,
		Data:   gin.H{"message": message},
	})
}

func (c *PublicController) internalError(ctx *gin.Context, err error) {
	c.logger.Error().Err(err).Str("path", ctx.Request.URL.Path).Msg("Public request failed")
	ctx.AbortWithStatusJSON(http.StatusInternalServerError, dto.JSendResponse{
		Status:  dto.JSendError,
		Message: msgPublicInternal,
	})
}

// ListNews godoc
// @Summary Published news
// @Description Up to 100 published news items, newest publication first
// @Tags public
// @Produce json
// @Success 200 {object} dto.JSendResponse{data=dto.PublicNewsList}
// @Failure 500 {object} dto.JSendResponse
// @Router /public/news [get]
func (c *PublicController) ListNews(ctx *gin.Context) {
	news, err := c.newsService.ListPublic(ctx.Request.Context())
	if err != nil {
		c.internalError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.JSendResponse{
		Status: dto.JSendSuccess,
		Data:   dto.PublicNewsList{News: news},
	})
}

// GetNews godoc
// @Summary Published news item
// @Description Drafts and unknown ids are reported as not found
// @Tags public
// @Produce json
// @Param id path int true "News ID"
// @Success 200 {object} dto.JSendResponse{data=dto.PublicNewsItem}
// @Failure 404 {object} dto.JSendResponse
// @Failure 500 {object} dto.JSendResponse
// @Router /public/news/{id} [get]
func (c *PublicController) GetNews(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.fail(ctx, http.StatusNotFound, msgPublicNewsNotFound)
		return
	}

	item, err := c.newsService.GetPublic(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNewsNotFound) {
			c.fail(ctx, http.StatusNotFound, msgPublicNewsNotFound)
			return
		}
		c.internalError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.JSendResponse{Status: dto.JSendSuccess, Data: item})
}
