package response

import (
	"errors"
	"net/http"

	"karmafeed/pkg/errs"
	"karmafeed/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`    // 业务码
	Message string      `json:"message"` // 提示信息
	Data    interface{} `json:"data"`    // 数据
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    CodeSuccess,
		Message: "created",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, httpCode int, errCode int, msg string) {
	c.JSON(httpCode, Response{
		Code:    errCode,
		Message: msg,
		Data:    nil,
	})
}

// FromError 根据错误类别输出对应的 HTTP 状态码和业务码
// 未分类的错误一律按 500 处理，具体原因只写日志不返回给客户端
func FromError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrValidation):
		Error(c, http.StatusBadRequest, ErrContentInvalid, errs.Message(err))
	case errors.Is(err, errs.ErrNotFound):
		Error(c, http.StatusNotFound, ErrTargetNotFound, errs.Message(err))
	case errors.Is(err, errs.ErrDepthExceeded):
		Error(c, http.StatusUnprocessableEntity, ErrDepthExceeded, errs.Message(err))
	case errors.Is(err, errs.ErrAuthentication):
		Error(c, http.StatusUnauthorized, ErrTokenInvalid, errs.Message(err))
	case errors.Is(err, errs.ErrConflict):
		Error(c, http.StatusConflict, ErrConflict, errs.Message(err))
	default:
		logger.Log.Error("unhandled error",
			zap.String("path", c.FullPath()),
			zap.String("method", c.Request.Method),
			zap.Error(err),
		)
		Error(c, http.StatusInternalServerError, ErrServerInternal, "internal server error")
	}
}
