// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"focustube-ml/internal/interfaces/http/dto"
	apperrors "focustube-ml/pkg/errors"
	"focustube-ml/pkg/logger"
)

// respondError 按 AppError 返回错误，服务端错误记录日志
func respondError(c *gin.Context, msg string, err error) {
	appErr := apperrors.AsAppError(err)
	if appErr.HTTPStatus >= 500 {
		logger.Error(c.Request.Context(), msg, err, "code", appErr.Code)
	} else {
		logger.Debug(c.Request.Context(), msg, "error", err.Error())
	}
	dto.AbortWithError(c, appErr)
}

// bindJSON 绑定请求体，失败时直接返回 400
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return false
	}
	return true
}
