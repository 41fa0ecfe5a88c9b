package response

import (
	"errors"
	"net/http"

	"social_moderation/internal/pkg/apperr"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`    // 业务码
	Message string      `json:"message"` // 提示信息
	Field   string      `json:"field,omitempty"`
	Data    interface{} `json:"data"` // 数据
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
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

// Fail 业务失败响应 (HTTP 200, 业务码非 0)
func Fail(c *gin.Context, errCode int, msg string) {
	c.JSON(http.StatusOK, Response{
		Code:    errCode,
		Message: msg,
		Data:    nil,
	})
}

// FromError 按错误分类输出响应
// data 会原样带回，用于回填表单（失败时不清空已填写的字段）
func FromError(c *gin.Context, err error, data interface{}) {
	status, code, field := Classify(err)
	msg := err.Error()
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		msg = ve.Message
	}
	c.JSON(status, Response{
		Code:    code,
		Message: msg,
		Field:   field,
		Data:    data,
	})
}

// Classify 返回错误对应的 HTTP 状态码、业务码和出错字段
func Classify(err error) (int, int, string) {
	var (
		ve *apperr.ValidationError
		pe *apperr.PermissionError
		te *apperr.InvalidTransitionError
		ne *apperr.NetworkError
		se *apperr.SubmissionError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ErrInvalidParam, ve.Field
	case errors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized, ErrUnauthenticated, ""
	case errors.Is(err, apperr.ErrAuthFailed):
		return http.StatusUnauthorized, ErrAuthFailed, ""
	case errors.Is(err, apperr.ErrRecordingActive):
		return http.StatusConflict, ErrRecordingActive, ""
	case errors.As(err, &pe):
		return http.StatusForbidden, ErrNoPermission, ""
	case errors.As(err, &te):
		return http.StatusConflict, ErrInvalidTransition, ""
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, ErrPostNotFound, ""
	case errors.As(err, &ne):
		return http.StatusBadGateway, ErrNetwork, ""
	case errors.As(err, &se):
		return http.StatusBadGateway, ErrSubmission, ""
	default:
		return http.StatusInternalServerError, ErrServerInternal, ""
	}
}
