package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound 资源不存在
	ErrNotFound = errors.New("resource not found")
	// ErrUnauthenticated 未登录
	ErrUnauthenticated = errors.New("authentication required")
	// ErrAuthFailed 远端拒绝了凭证
	ErrAuthFailed = errors.New("authentication failed")
	// ErrRecordingActive 同一会话已有录音在进行
	ErrRecordingActive = errors.New("a recording is already in progress")
)

// PublicError 携带面向用户的提示，错误链保持不变
type PublicError struct {
	Msg string
	Err error
}

func (e *PublicError) Error() string { return e.Msg }

func (e *PublicError) Unwrap() error { return e.Err }

// WithMessage 替换展示给用户的文案
func WithMessage(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &PublicError{Msg: msg, Err: err}
}

// ValidationError 客户端校验失败，不会发起任何网络请求
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validation 构造字段级校验错误
func Validation(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// NetworkError 远端不可达（连接失败、超时）
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// SubmissionError 远端调用失败（网络或业务拒绝）
type SubmissionError struct {
	Op  string
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// InvalidTransitionError 审核状态迁移非法
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

// PermissionError 非管理员执行管理员操作
type PermissionError struct {
	Action string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s requires admin role", e.Action)
}

// IsNetwork 是否为连接类错误（包括被 SubmissionError 包装的情况）
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsValidation 是否为校验错误
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
