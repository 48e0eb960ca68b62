package errors

import (
	"context"

	"github.com/google/uuid"
)

// contextKey 请求上下文中的键
type contextKey string

const (
	// RequestIDKey 请求 ID
	RequestIDKey contextKey = "request_id"
	// OperationKey 当前处理的 JSON-RPC 方法或 REST 操作
	OperationKey contextKey = "operation"
)

// NewContextWithRequestID 写入请求 ID，为空时生成新的 ID
func NewContextWithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		requestID = GenerateRequestID()
	}
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// EnsureRequestID 返回带请求 ID 的上下文以及该 ID
//
// 上下文中已有 ID 时原样返回；否则使用 candidate，candidate 为空时生成。
func EnsureRequestID(ctx context.Context, candidate string) (context.Context, string) {
	if id := GetRequestID(ctx); id != "" {
		return ctx, id
	}
	ctx = NewContextWithRequestID(ctx, candidate)
	return ctx, GetRequestID(ctx)
}

// NewContextWithOperation 写入操作名称
func NewContextWithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, OperationKey, operation)
}

// GetRequestID 读取请求 ID
func GetRequestID(ctx context.Context) string {
	return stringValue(ctx, RequestIDKey)
}

// GetOperation 读取操作名称
func GetOperation(ctx context.Context) string {
	return stringValue(ctx, OperationKey)
}

// GenerateRequestID 生成新的请求 ID（UUID v4）
func GenerateRequestID() string {
	return uuid.New().String()
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}
