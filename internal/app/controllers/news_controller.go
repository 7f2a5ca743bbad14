package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kindergarten-canvas/backend/internal/app/models/dto"
	"github.com/kindergarten-canvas/backend/internal/app/services"
	"github.com/kindergarten-canvas/backend/internal/middleware"
)

// NewsController serves the news section of the admin panel.
type NewsController struct {
	newsService services.NewsService
}

// NewNewsController creates a new NewsController
func NewNewsController(newsService services.NewsService) *NewsController {
	return &NewsController{newsService: newsService}
}

// List returns news items, newest first
// @Summary List news
// @Description Lists all news items, optionally filtered by status
// @Tags news
// @Produce json
// @Security BearerAuth
// @Param status query string false "DRAFT or PUBLISHED"
// @Success 200 {object} dto.APIResponse{content=[]models.NewsItem}
// @Failure 401 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse "Invalid status"
// @Router /admin/v1/news [get]
func (c *NewsController) List(ctx *gin.Context) {
	var query dto.NewsListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.HandleBindingErrorWithStatus(ctx, http.StatusUnprocessableEntity, err)
		return
	}

	items, err := c.newsService.List(ctx.Request.Context(), query.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(items))
}

// Get returns one news item
// @Summary Get news item
// @Tags news
// @Produce json
// @Security BearerAuth
// @Param id path int true "News ID"
// @Success 200 {object} dto.APIResponse{content=models.NewsItem}
// @Failure 400 {object} dto.ErrorResponse "Invalid ID"
// @Failure 404 {object} dto.ErrorResponse "News not found"
// @Router /admin/v1/news/{id} [get]
func (c *NewsController) Get(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	item, err := c.newsService.GetByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(item))
}

// Create adds a news item
// @Summary Create news item
// @Description Creates a news item. Publishing without a date stamps the current time.
// @Tags news
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateNewsRequest true "News item"
// @Success 201 {object} dto.APIResponse{content=models.NewsItem}
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 401 {object} dto.ErrorResponse
// @Router /admin/v1/news [post]
func (c *NewsController) Create(ctx *gin.Context) {
	var req dto.CreateNewsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	item, err := c.newsService.Create(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewCreatedResponse(item))
}

// Update changes the fields present in the body
// @Summary Update news item
// @Tags news
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "News ID"
// @Param request body dto.UpdateNewsRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{content=models.NewsItem}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/v1/news/{id} [put]
func (c *NewsController) Update(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateNewsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	item, err := c.newsService.Update(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(item))
}

// Delete removes a news item
// @Summary Delete news item
// @Tags news
// @Produce json
// @Security BearerAuth
// @Param id path int true "News ID"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/v1/news/{id} [delete]
func (c *NewsController) Delete(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	if err := c.newsService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse(dto.MsgNewsDeleted))
}
