package directory

import (
	"errors"
	"fmt"
)

// Error 表示签名目录服务错误
type Error struct {
	Code       ErrorCode
	Message    string
	StatusCode int // HTTP 状态码，仅 ErrorCodeRequestFailed 时有效
	Err        error
}

// ErrorCode 错误码
type ErrorCode int

const (
	// ErrorCodeConnectionFailed 连接失败
	ErrorCodeConnectionFailed ErrorCode = iota + 1
	// ErrorCodeRequestFailed 服务返回非 2xx 状态
	ErrorCodeRequestFailed
	// ErrorCodeInvalidResponse 无效响应
	ErrorCodeInvalidResponse
	// ErrorCodeTimeout 超时
	ErrorCodeTimeout
)

// Error 实现error接口
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("directory error [%d]: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("directory error [%d]: %s", e.Code, e.Message)
}

// Unwrap 返回包装的错误
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError 创建新的签名目录服务错误
func NewError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// AsError 从错误链中提取 *Error
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsConnectionError 检查是否是连接错误
func IsConnectionError(err error) bool {
	e, ok := AsError(err)
	return ok && e.Code == ErrorCodeConnectionFailed
}

// IsTimeoutError 检查是否是超时错误
func IsTimeoutError(err error) bool {
	e, ok := AsError(err)
	return ok && e.Code == ErrorCodeTimeout
}

// IsInvalidResponseError 检查是否是无效响应错误
func IsInvalidResponseError(err error) bool {
	e, ok := AsError(err)
	return ok && e.Code == ErrorCodeInvalidResponse
}

// IsStatusError 检查是否是非 2xx 状态错误
func IsStatusError(err error) bool {
	e, ok := AsError(err)
	return ok && e.Code == ErrorCodeRequestFailed
}

// IsRetryable 检查错误是否允许重试：连接失败或 5xx
func IsRetryable(err error) bool {
	e, ok := AsError(err)
	if !ok {
		return false
	}
	switch e.Code {
	case ErrorCodeConnectionFailed:
		return true
	case ErrorCodeRequestFailed:
		return e.StatusCode >= 500
	default:
		return false
	}
}

// WrapError 包装错误为签名目录服务错误
func WrapError(err error, code ErrorCode, message string) error {
	if err == nil {
		return nil
	}
	return NewError(code, message, err)
}

// ConnectionError 创建连接错误
func ConnectionError(err error) error {
	return WrapError(err, ErrorCodeConnectionFailed, "failed to connect to signature directory")
}

// StatusError 创建非 2xx 状态错误
func StatusError(status int, body string) error {
	return &Error{
		Code:       ErrorCodeRequestFailed,
		Message:    "signature directory request failed",
		StatusCode: status,
		Err:        fmt.Errorf("signature directory returned status %d: %s", status, body),
	}
}

// InvalidResponseError 创建无效响应错误
func InvalidResponseError(err error) error {
	return WrapError(err, ErrorCodeInvalidResponse, "invalid response from signature directory")
}

// TimeoutError 创建超时错误
func TimeoutError(err error) error {
	return WrapError(err, ErrorCodeTimeout, "request to signature directory timed out")
}
