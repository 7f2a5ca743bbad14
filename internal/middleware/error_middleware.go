package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kindergarten-canvas/backend/internal/app/models/dto"
	"github.com/kindergarten-canvas/backend/internal/pkg/apperrors"
	"github.com/kindergarten-canvas/backend/internal/pkg/logger"
)

type errorMapping struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

// errorMappings is checked in order, so specific errors come before the
// generic ones they may wrap.
var errorMappings = []errorMapping{
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, dto.MsgInvalidData},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeBadRequest, dto.MsgInvalidData},
	{apperrors.ErrNotImplemented, http.StatusUnprocessableEntity, dto.ErrorCodeNotImplemented, dto.MsgNotImplemented},

	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeAuth, dto.MsgInvalidCredentials},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, dto.MsgSessionExpired},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, dto.MsgInvalidRefresh},
	{apperrors.ErrTokenNotFound, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, dto.MsgInvalidRefresh},
	{apperrors.ErrTokenRevoked, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, dto.MsgInvalidRefresh},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, dto.MsgUnauthorized},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, dto.MsgForbidden},
	{apperrors.ErrRateLimited, http.StatusTooManyRequests, dto.ErrorCodeRateLimit, dto.MsgRateLimitExceeded},

	{apperrors.ErrNewsNotFound, http.StatusNotFound, dto.ErrorCodeNewsNotFound, dto.MsgNewsNotFound},
	{apperrors.ErrTeacherNotFound, http.StatusNotFound, dto.ErrorCodeTeacherNotFound, dto.MsgTeacherNotFound},
	{apperrors.ErrUserNotFound, http.StatusNotFound, dto.ErrorCodeUserNotFound, dto.MsgUserNotFound},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeNotFound, dto.MsgNotFound},

	{apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeEmailExists, dto.MsgEmailExists},
	{apperrors.ErrResourceAlreadyExists, http.StatusConflict, dto.ErrorCodeConflict, dto.MsgConflict},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict, dto.MsgConflict},

	{apperrors.ErrNoFile, http.StatusBadRequest, dto.ErrorCodeNoFile, dto.MsgNoFile},
	{apperrors.ErrInvalidFileType, http.StatusBadRequest, dto.ErrorCodeInvalidFileType, dto.MsgInvalidFileType},
	{apperrors.ErrFileSizeExceeded, http.StatusBadRequest, dto.ErrorCodeFileSizeExceeded, dto.MsgFileSizeExceeded},
	{apperrors.ErrUploadFailed, http.StatusInternalServerError, dto.ErrorCodeUploadFailed, dto.MsgUploadFailed},
}

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	status, detail := resolveError(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("request_id", c.GetString(ContextRequestID)).
			Msg("Request failed")
	}
	RespondError(c, status, detail)
}

// RespondError aborts the request with the error envelope.
func RespondError(c *gin.Context, status int, detail *dto.ErrorDetail) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

func resolveError(err error) (int, *dto.ErrorDetail) {
	var custom *apperrors.CustomError
	hasCustom := errors.As(err, &custom)

	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}

		detail := dto.NewErrorDetail(m.code, m.message)
		if hasCustom {
			if custom.Message != "" {
				detail.Message = custom.Message
			}
			if field, ok := custom.Details["field"].(string); ok && field != "" {
				detail.WithField(field)
			}
		}
		return m.status, detail
	}

	return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, dto.MsgInternalError)
}
