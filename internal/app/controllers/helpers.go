package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kindergarten-canvas/backend/internal/app/models/dto"
	"github.com/kindergarten-canvas/backend/internal/middleware"
)

// parseID reads a positive numeric path parameter. On failure it writes a
// 400 response and returns false.
func parseID(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		middleware.RespondError(ctx, http.StatusBadRequest,
			dto.NewErrorDetail(dto.ErrorCodeBadRequest, dto.MsgInvalidID).WithField(name))
		return 0, false
	}
	return id, true
}

// currentUserID returns the authenticated user. Routes using it sit behind
// JWTAuth, so a miss means a wiring error and is answered with 401.
func currentUserID(ctx *gin.Context) (int64, bool) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.RespondError(ctx, http.StatusUnauthorized,
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, dto.MsgUnauthorized))
		return 0, false
	}
	return userID, true
}
