package directory

import (
	"context"
	"time"
)

// Resolver 定义签名解析接口
type Resolver interface {
	// Resolve 将 4 字节选择器解析为文本签名，未找到时 found 为 false
	Resolve(ctx context.Context, selector string) (signature string, found bool, err error)
}

// Observer 接收查询结果的观测数据
type Observer interface {
	// ObserveLookup 记录一次查询的结果状态和耗时
	ObserveLookup(status string, duration time.Duration)
}

// 查询结果状态
const (
	StatusFound       = "found"
	StatusNotFound    = "not_found"
	StatusLookupError = "error"
)

// VerifyInterfaceImplementation 验证接口实现
var _ Resolver = (*Client)(nil)
