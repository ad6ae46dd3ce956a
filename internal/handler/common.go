package handler

import (
	"errors"
	"strconv"

	"moodmeal/internal/service"
	"moodmeal/pkg/jwt"
	"moodmeal/pkg/logger"
	"moodmeal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// currentUserID 取当前登录用户，未认证时直接写入 401 响应
func currentUserID(c *gin.Context) (uint, bool) {
	id, err := jwt.GetUserID(c)
	if err != nil {
		response.Unauthorized(c, "用户未认证")
		return 0, false
	}
	return id, true
}

// pathID 解析路径中的正整数ID，非法时写入 400 响应
func pathID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(v), true
}

// queryInt 宽松解析整数查询参数，缺失或非法时返回 def
func queryInt(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return v
}

// writeError 把业务错误映射为响应码
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidParam),
		errors.Is(err, service.ErrSelfRequest):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, err.Error())
	case errors.Is(err, service.ErrPermissionDenied):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrRequestNotFound),
		errors.Is(err, service.ErrMoodNotFound),
		errors.Is(err, service.ErrPreferencesNotFound),
		errors.Is(err, service.ErrNotFriends):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrUserExists),
		errors.Is(err, service.ErrAlreadyFriends),
		errors.Is(err, service.ErrRequestPending),
		errors.Is(err, service.ErrRequestProcessed):
		response.Conflict(c, err.Error())
	default:
		_ = c.Error(err)
		logger.Ctx(c.Request.Context()).Error("请求处理失败",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		response.ErrorWithDetails(c, response.CodeInternalError, "服务器内部错误", err)
	}
}
