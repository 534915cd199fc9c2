package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// ContextTraceIDKey 追踪ID在 gin.Context 中的 key
	ContextTraceIDKey = "traceID"
	// TraceHeader 请求与响应中携带追踪ID的头
	TraceHeader = "X-Trace-ID"

	maxTraceIDLen = 64
)

// TraceMiddleware 透传或生成请求追踪ID
// 客户端传入的值会写入日志并回显，超长或含非法字符时重新生成
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceHeader)
		if !validTraceID(traceID) {
			traceID = uuid.NewString()
		}

		c.Set(ContextTraceIDKey, traceID)
		c.Header(TraceHeader, traceID)
		c.Next()
	}
}

func validTraceID(id string) bool {
	if id == "" || len(id) > maxTraceIDLen {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}
