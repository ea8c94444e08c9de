package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arkgate/server/internal/shared/logger"
	apperrors "github.com/arkgate/server/internal/utils/errors"
)

// handleError writes err as a {"detail": ...} envelope with its mapped status.
// Nothing is written when the client has already gone away.
func handleError(c *gin.Context, log *zap.Logger, err error) {
	if err == nil {
		return
	}

	reqLog := logger.FromContext(c.Request.Context(), log)
	if errors.Is(err, context.Canceled) && c.Request.Context().Err() != nil {
		reqLog.Info("client disconnected before completion")
		c.Abort()
		return
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.NewAppError(apperrors.CodeInternal, err.Error(), apperrors.GetStatusCode(err), err)
	}
	if appErr.StatusCode >= 500 {
		reqLog.Error("request failed", zap.Int("status", appErr.StatusCode), zap.Error(err))
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(appErr.StatusCode, appErr.ToResponse())
}
