package router

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/mowind/txinsight-go/internal/directory"
	"github.com/mowind/txinsight-go/internal/insight"
	"github.com/mowind/txinsight-go/internal/jsonrpc"
)

// InsightMethods 交易检查处理器支持的方法
var InsightMethods = []string{
	jsonrpc.MethodOnTransaction,
	jsonrpc.MethodResolveSignature,
	jsonrpc.MethodDecodeCallData,
}

// RouterFactory 路由器工厂，简化路由器的创建和配置
type RouterFactory struct {
	logger         *logrus.Logger
	maxRequestSize int64
}

// NewRouterFactory 创建路由器工厂
func NewRouterFactory(logger *logrus.Logger) *RouterFactory {
	return &RouterFactory{
		logger:         logger,
		maxRequestSize: DefaultMaxRequestSize,
	}
}

// WithMaxRequestSize 设置请求体大小上限
func (f *RouterFactory) WithMaxRequestSize(size int64) *RouterFactory {
	if size > 0 {
		f.maxRequestSize = size
	}
	return f
}

// CreateRouter 创建完整配置的路由器
func (f *RouterFactory) CreateRouter(inspector *insight.Inspector, resolver directory.Resolver) *Router {
	router := NewRouterWithMaxSize(f.logger, f.maxRequestSize)

	// InsightHandler 处理多个方法，为每个方法注册同一个处理器
	insightHandler := NewInsightHandler(inspector, resolver, f.logger)
	for _, method := range InsightMethods {
		if err := router.Register(&MethodHandler{
			handler: insightHandler,
			method:  method,
		}); err != nil {
			f.logger.WithError(err).WithField("method", method).Error("Failed to register handler")
		}
	}

	return router
}

// MethodHandler 包装处理器，使其符合 Handler 接口
type MethodHandler struct {
	handler Handler
	method  string
}

// Method 返回方法名
func (m *MethodHandler) Method() string {
	return m.method
}

// Handle 处理请求
func (m *MethodHandler) Handle(ctx context.Context, request *jsonrpc.Request) (*jsonrpc.Response, error) {
	return m.handler.Handle(ctx, request)
}
