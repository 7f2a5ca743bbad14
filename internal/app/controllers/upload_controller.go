package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kindergarten-canvas/backend/internal/app/models/dto"
	"github.com/kindergarten-canvas/backend/internal/app/services"
	"github.com/kindergarten-canvas/backend/internal/middleware"
	"github.com/kindergarten-canvas/backend/internal/pkg/apperrors"
	"github.com/rs/zerolog"
)

// UploadController accepts images for news items and teacher profiles.
type UploadController struct {
	uploadService services.UploadService
	logger        zerolog.Logger
}

// NewUploadController creates a new UploadController
func NewUploadController(uploadService services.UploadService, logger zerolog.Logger) *UploadController {
	return &UploadController{
		uploadService: uploadService,
		logger:        logger,
	}
}

// Upload godoc
// @Summary Upload image
// @Description Stores a JPEG, PNG, GIF or WebP image of at most 10MB
// @Tags upload
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image"
// @Success 201 {object} dto.APIResponse{content=dto.UploadResponse}
// @Failure 400 {object} dto.ErrorResponse "No file, invalid type or too large"
// @Failure 500 {object} dto.ErrorResponse "Upload failed"
// @Router /admin/v1/upload [post]
func (c *UploadController) Upload(ctx *gin.Context) {
	header, err := ctx.FormFile("file")
	if err != nil {
		if !errors.Is(err, http.ErrMissingFile) {
			c.logger.Warn().Err(err).Msg("Failed to read multipart upload")
		}
		middleware.HandleAPIError(ctx, apperrors.ErrNoFile)
		return
	}

	file, err := header.Open()
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to open uploaded file")
		middleware.HandleAPIError(ctx, apperrors.ErrUploadFailed)
		return
	}
	defer file.Close()

	resp, err := c.uploadService.UploadImage(ctx.Request.Context(), file, header.Size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewCreatedResponse(resp))
}
