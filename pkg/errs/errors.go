// Package errs 定义业务错误分类
//
// 领域代码用 fmt.Errorf("%w: ...") 包装这些哨兵错误，调用方通过 errors.Is 判断类别，
// HTTP 层统一由 response.FromError 转换为状态码和业务码。
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation 输入不合法（空内容、超长等）
	ErrValidation = errors.New("validation error")
	// ErrNotFound 引用的帖子/评论/目标不存在
	ErrNotFound = errors.New("not found")
	// ErrDepthExceeded 回复层级超过上限
	ErrDepthExceeded = errors.New("reply depth exceeded")
	// ErrAuthentication 凭证缺失或无效
	ErrAuthentication = errors.New("authentication error")
	// ErrConflict 并发写冲突或唯一约束冲突
	ErrConflict = errors.New("conflict")
)

// Validation 包装一个校验错误
func Validation(format string, args ...interface{}) error {
	return wrap(ErrValidation, format, args...)
}

// NotFound 包装一个不存在错误
func NotFound(format string, args ...interface{}) error {
	return wrap(ErrNotFound, format, args...)
}

// DepthExceeded 包装一个层级超限错误
func DepthExceeded(format string, args ...interface{}) error {
	return wrap(ErrDepthExceeded, format, args...)
}

// Authentication 包装一个认证错误
func Authentication(format string, args ...interface{}) error {
	return wrap(ErrAuthentication, format, args...)
}

// Conflict 包装一个冲突错误
func Conflict(format string, args ...interface{}) error {
	return wrap(ErrConflict, format, args...)
}

func wrap(kind error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// Message 返回去掉类别前缀的错误描述，用于返回给客户端
func Message(err error) string {
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrDepthExceeded, ErrAuthentication, ErrConflict} {
		if errors.Is(err, kind) {
			msg := err.Error()
			prefix := kind.Error() + ": "
			if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
				return msg[len(prefix):]
			}
			return msg
		}
	}
	return err.Error()
}
