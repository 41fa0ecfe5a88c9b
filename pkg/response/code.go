package response

// 业务状态码
const (
	CodeSuccess = 0
	CodeError   = 1

	// 认证模块错误 100xx
	ErrAuthFailed      = 10003
	ErrTokenInvalid    = 10004
	ErrNoPermission    = 10005
	ErrUnauthenticated = 10006

	// 审核模块错误 200xx
	ErrPostNotFound      = 20001
	ErrInvalidTransition = 20002
	ErrRecordingActive   = 20003

	// 远端调用错误 400xx
	ErrNetwork    = 40001
	ErrSubmission = 40002

	// 系统错误 500xx
	ErrServerInternal  = 50001
	ErrInvalidParam    = 50002
	ErrTooManyRequests = 50003
)
