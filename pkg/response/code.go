package response

// 业务状态码
const (
	CodeSuccess = 0

	// 认证错误 100xx
	ErrTokenInvalid = 10004

	// 内容模块错误 4xxxx
	ErrContentInvalid = 40001
	ErrTargetNotFound = 40401
	ErrConflict       = 40901
	ErrDepthExceeded  = 42201

	// 系统错误 500xx
	ErrServerInternal  = 50001
	ErrInvalidParam    = 50002
	ErrTooManyRequests = 50003
)
