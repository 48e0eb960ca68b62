package errors

import (
	stderrors "errors"

	"github.com/mowind/txinsight-go/internal/abi"
	"github.com/mowind/txinsight-go/internal/directory"
	"github.com/mowind/txinsight-go/internal/jsonrpc"
)

// Converter 错误转换器
type Converter struct{}

// NewConverter 创建新的错误转换器
func NewConverter() *Converter {
	return &Converter{}
}

// FromJSONRPC 从 JSON-RPC 错误转换
func (c *Converter) FromJSONRPC(jsonErr *jsonrpc.Error) *AppError {
	if jsonErr == nil {
		return nil
	}

	// 根据错误码映射错误类型
	var errorType ErrorType
	switch jsonErr.Code {
	case jsonrpc.CodeParseError, jsonrpc.CodeInvalidRequest:
		errorType = ErrorTypeJSONRPC
	case jsonrpc.CodeMethodNotFound:
		errorType = ErrorTypeMethodNotFound
	case jsonrpc.CodeInvalidParams:
		errorType = ErrorTypeInvalidParams
	case jsonrpc.CodeInternalError:
		errorType = ErrorTypeInternal
	case jsonrpc.CodeLookupFailure:
		errorType = ErrorTypeLookup
	case jsonrpc.CodeDecodeFailure:
		errorType = ErrorTypeDecode
	default:
		if jsonrpc.IsServerError(jsonErr.Code) {
			errorType = ErrorTypeInternal
		} else {
			errorType = ErrorTypeJSONRPC
		}
	}

	return &AppError{
		Type:    errorType,
		Code:    jsonErr.Code,
		Message: jsonErr.Message,
		Context: map[string]interface{}{
			"original_data": jsonErr.Data,
		},
	}
}

// FromDirectory 从签名目录错误转换为查询失败
func (c *Converter) FromDirectory(err error) *AppError {
	if err == nil {
		return nil
	}

	appErr := Wrap(err, ErrorTypeLookup, jsonrpc.CodeLookupFailure, "Signature lookup failed")

	switch {
	case directory.IsConnectionError(err):
		appErr.WithContext("reason", "connection")
	case directory.IsTimeoutError(err):
		appErr.WithContext("reason", "timeout")
	case directory.IsInvalidResponseError(err):
		appErr.WithContext("reason", "invalid_response")
	case directory.IsStatusError(err):
		appErr.WithContext("reason", "status")
		if dirErr, _ := directory.AsError(err); dirErr.StatusCode != 0 {
			appErr.WithContext("status", dirErr.StatusCode)
		}
	}

	return appErr
}

// FromDecode 从解码错误转换为解码失败
func (c *Converter) FromDecode(err error) *AppError {
	if err == nil {
		return nil
	}
	return Wrap(err, ErrorTypeDecode, jsonrpc.CodeDecodeFailure, "Call data decoding failed")
}

// Common conversion helpers 常用转换辅助函数

// ConvertError 通用的错误转换函数
func ConvertError(err error) *AppError {
	if err == nil {
		return nil
	}

	// 如果已经是 AppError，直接返回
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	// 如果是 JSON-RPC 错误
	var jsonErr *jsonrpc.Error
	if stderrors.As(err, &jsonErr) {
		return NewConverter().FromJSONRPC(jsonErr)
	}

	// 如果是签名目录错误
	if _, ok := directory.AsError(err); ok {
		return NewConverter().FromDirectory(err)
	}

	// 如果是解码错误
	if abi.IsDecodeError(err) {
		return NewConverter().FromDecode(err)
	}

	// 普通错误，包装为内部错误
	return Wrap(err, ErrorTypeInternal, jsonrpc.CodeInternalError, "Internal error")
}

// ConvertToJSONRPC 快速转换为 JSON-RPC 错误
func ConvertToJSONRPC(err error) *jsonrpc.Error {
	if err == nil {
		return nil
	}

	appErr := ConvertError(err)
	return appErr.ToJSONRPCError()
}

// IsClientError 检查是否由调用方输入导致（4xx 类），解码失败也算在内
func IsClientError(err error) bool {
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return false
	}
	switch appErr.Type {
	case ErrorTypeValidation, ErrorTypeInvalidParams, ErrorTypeMethodNotFound,
		ErrorTypeInvalidTransaction, ErrorTypeJSONRPC, ErrorTypeDecode:
		return true
	}
	return false
}
