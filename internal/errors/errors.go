package errors

import (
	"fmt"
	"net/http"

	"github.com/mowind/txinsight-go/internal/jsonrpc"
)

// ErrorType 错误类型
type ErrorType string

const (
	// 系统级错误
	ErrorTypeInternal   ErrorType = "INTERNAL_ERROR"
	ErrorTypeConfig     ErrorType = "CONFIG_ERROR"
	ErrorTypeValidation ErrorType = "VALIDATION_ERROR"

	// 签名查询错误（传输失败、非 2xx 状态、响应无法解析）
	ErrorTypeLookup ErrorType = "LOOKUP_ERROR"

	// 调用数据解码错误（数据不足、未知类型、签名格式错误）
	ErrorTypeDecode ErrorType = "DECODE_ERROR"

	// 交易相关错误
	ErrorTypeInvalidTransaction ErrorType = "INVALID_TRANSACTION"

	// JSON-RPC 相关错误
	ErrorTypeJSONRPC        ErrorType = "JSONRPC_ERROR"
	ErrorTypeMethodNotFound ErrorType = "METHOD_NOT_FOUND"
	ErrorTypeInvalidParams  ErrorType = "INVALID_PARAMS"
)

// AppError 应用统一的错误类型
type AppError struct {
	Type        ErrorType              `json:"type"`
	Code        int                    `json:"code"`
	Message     string                 `json:"message"`
	Details     string                 `json:"details,omitempty"`
	Context     map[string]interface{} `json:"context,omitempty"`
	OriginalErr error                  `json:"-"`
}

// New 创建新的应用错误
func New(errorType ErrorType, code int, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Code:    code,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

// Newf 创建带格式的应用错误
func Newf(errorType ErrorType, code int, format string, args ...interface{}) *AppError {
	return New(errorType, code, fmt.Sprintf(format, args...))
}

// Wrap 包装现有错误
func Wrap(err error, errorType ErrorType, code int, message string) *AppError {
	if err == nil {
		return nil
	}

	appErr := New(errorType, code, message)
	appErr.OriginalErr = err
	appErr.Details = err.Error()
	return appErr
}

// WithContext 添加上下文信息
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithDetails 添加详细信息
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("%s [%s:%d]: %s", e.Message, e.Type, e.Code, e.OriginalErr.Error())
	}
	if e.Details != "" {
		return fmt.Sprintf("%s [%s:%d] (details: %s)", e.Message, e.Type, e.Code, e.Details)
	}
	return fmt.Sprintf("%s [%s:%d]", e.Message, e.Type, e.Code)
}

// Unwrap 返回原始错误
func (e *AppError) Unwrap() error {
	return e.OriginalErr
}

// Is 检查错误类型
func (e *AppError) Is(target error) bool {
	if targetErr, ok := target.(*AppError); ok {
		return e.Type == targetErr.Type
	}
	return false
}

// ToJSONRPCError 转换为 JSON-RPC 错误
func (e *AppError) ToJSONRPCError() *jsonrpc.Error {
	// 根据错误类型映射到合适的 JSON-RPC 错误码
	var jsonrpcCode int
	switch e.Type {
	case ErrorTypeInvalidParams, ErrorTypeValidation, ErrorTypeInvalidTransaction:
		jsonrpcCode = jsonrpc.CodeInvalidParams
	case ErrorTypeMethodNotFound:
		jsonrpcCode = jsonrpc.CodeMethodNotFound
	case ErrorTypeLookup:
		jsonrpcCode = jsonrpc.CodeLookupFailure
	case ErrorTypeDecode:
		jsonrpcCode = jsonrpc.CodeDecodeFailure
	default:
		jsonrpcCode = jsonrpc.CodeInternalError
	}

	// 构建错误数据
	errorData := map[string]interface{}{
		"type":    string(e.Type),
		"code":    e.Code,
		"details": e.Details,
	}

	// 添加上下文信息
	for k, v := range e.Context {
		errorData[k] = v
	}

	return &jsonrpc.Error{
		Code:    jsonrpcCode,
		Message: e.Message,
		Data:    errorData,
	}
}

// HTTPStatus 返回 REST 接口使用的 HTTP 状态码
func (e *AppError) HTTPStatus() int {
	switch e.Type {
	case ErrorTypeInvalidParams, ErrorTypeValidation, ErrorTypeInvalidTransaction, ErrorTypeJSONRPC:
		return http.StatusBadRequest
	case ErrorTypeMethodNotFound:
		return http.StatusNotFound
	case ErrorTypeLookup:
		return http.StatusBadGateway
	case ErrorTypeDecode:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Common errors 常用错误
var (
	// 内部错误
	ErrInternal   = New(ErrorTypeInternal, jsonrpc.CodeInternalError, "Internal server error")
	ErrConfig     = New(ErrorTypeConfig, jsonrpc.CodeInternalError, "Configuration error")
	ErrValidation = New(ErrorTypeValidation, jsonrpc.CodeInvalidParams, "Validation failed")

	// 签名查询与解码错误
	ErrLookupFailure = New(ErrorTypeLookup, jsonrpc.CodeLookupFailure, "Signature lookup failed")
	ErrDecodeFailure = New(ErrorTypeDecode, jsonrpc.CodeDecodeFailure, "Call data decoding failed")

	// 交易错误
	ErrInvalidTransaction = New(ErrorTypeInvalidTransaction, jsonrpc.CodeInvalidParams, "Invalid transaction")

	// JSON-RPC 错误
	ErrMethodNotFound = New(ErrorTypeMethodNotFound, jsonrpc.CodeMethodNotFound, "Method not found")
	ErrInvalidParams  = New(ErrorTypeInvalidParams, jsonrpc.CodeInvalidParams, "Invalid parameters")
)
