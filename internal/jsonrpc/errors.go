package jsonrpc

import "fmt"

// 错误码：-32700 至 -32600 为协议保留，-32099 至 -32000 由服务端自定义
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603

	CodeServerErrorStart = -32000
	CodeServerErrorEnd   = -32099

	// 签名目录不可用或返回异常
	CodeLookupFailure = -32010
	// 调用数据与签名不匹配
	CodeDecodeFailure = -32011
)

// codeMessages 错误码对应的固定消息
var codeMessages = map[int]string{
	CodeParseError:     "Parse error",
	CodeInvalidRequest: "Invalid request",
	CodeMethodNotFound: "Method not found",
	CodeInvalidParams:  "Invalid params",
	CodeInternalError:  "Internal error",
	CodeLookupFailure:  "Signature lookup failed",
	CodeDecodeFailure:  "Call data decoding failed",
}

// 路由层直接返回、不携带数据的错误
var (
	ParseError          = NewError(CodeParseError, nil)
	InvalidRequestError = NewError(CodeInvalidRequest, nil)
	MethodNotFoundError = NewError(CodeMethodNotFound, nil)
	InternalError       = NewError(CodeInternalError, nil)
)

// NewError 按错误码生成错误，消息取该错误码的固定文本
func NewError(code int, data interface{}) *Error {
	msg, ok := codeMessages[code]
	if !ok {
		msg = "Server error"
	}
	return &Error{Code: code, Message: msg, Data: data}
}

// IsServerError 错误码是否落在服务端自定义区间
func IsServerError(code int) bool {
	return code <= CodeServerErrorStart && code >= CodeServerErrorEnd
}

func (e *Error) Error() string {
	if e.Data == nil {
		return fmt.Sprintf("JSON-RPC error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("JSON-RPC error %d: %s (data: %v)", e.Code, e.Message, e.Data)
}
