package server

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	ginlogrus "github.com/toorop/gin-logrus"

	"github.com/mowind/txinsight-go/internal/config"
	"github.com/mowind/txinsight-go/internal/directory"
	apperrors "github.com/mowind/txinsight-go/internal/errors"
	"github.com/mowind/txinsight-go/internal/insight"
	"github.com/mowind/txinsight-go/internal/metrics"
	"github.com/mowind/txinsight-go/internal/router"
)

// Builder 服务器构建器
type Builder struct {
	cfg       *config.Config
	logger    *logrus.Logger
	resolver  directory.Resolver
	collector *metrics.Collector
}

// NewBuilder 创建新的服务器构建器
func NewBuilder(cfg *config.Config) *Builder {
	return &Builder{cfg: cfg}
}

// WithLogger 使用指定的日志器
func (b *Builder) WithLogger(logger *logrus.Logger) *Builder {
	b.logger = logger
	return b
}

// WithResolver 使用指定的签名解析器，未设置时按配置创建目录客户端
func (b *Builder) WithResolver(resolver directory.Resolver) *Builder {
	b.resolver = resolver
	return b
}

// WithMetrics 使用指定的指标收集器
func (b *Builder) WithMetrics(collector *metrics.Collector) *Builder {
	b.collector = collector
	return b
}

// Build 构建服务器
func (b *Builder) Build() (*Server, error) {
	b.setGinMode()

	logger := b.logger
	if logger == nil {
		var err error
		if logger, err = b.createLogger(); err != nil {
			return nil, err
		}
	}

	collector := b.collector
	if collector == nil {
		collector = metrics.NewCollector()
	}

	resolver := b.resolver
	if resolver == nil {
		client := directory.NewClient(&b.cfg.Directory, logger)
		client.SetObserver(collector)
		logger.WithField("endpoint", client.GetEndpoint()).Info("Using signature directory")
		resolver = client
	}

	inspector := insight.NewInspector(resolver, logger)
	inspector.SetObserver(collector)

	maxSize := b.maxRequestSize()
	jsonRPCRouter := router.NewRouterFactory(logger).
		WithMaxRequestSize(maxSize).
		CreateRouter(inspector, resolver)

	s := &Server{
		config:         b.cfg,
		logger:         logger,
		inspector:      inspector,
		collector:      collector,
		jsonRPCRouter:  jsonRPCRouter,
		maxRequestSize: maxSize,
	}
	s.router = b.createGinRouter(logger)
	s.setupRoutes()

	logger.WithField("methods", jsonRPCRouter.GetRegisteredMethods()).Debug("Registered JSON-RPC methods")
	return s, nil
}

// setGinMode 设置 gin 模式
func (b *Builder) setGinMode() {
	if b.cfg.Log.Level == config.LogLevelDebug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
}

// createGinRouter 创建 gin 路由器并挂载中间件
func (b *Builder) createGinRouter(logger *logrus.Logger) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestIDMiddleware())
	engine.Use(ginlogrus.Logger(logger))
	engine.Use(CORSMiddleware())
	engine.Use(AuthMiddleware(b.cfg.Auth.Enabled, b.cfg.Auth.Secret, b.cfg.Auth.Whitelist))
	return engine
}

// createLogger 按日志配置创建日志器
func (b *Builder) createLogger() (*logrus.Logger, error) {
	cfg := &apperrors.LoggerConfig{
		Level:  b.cfg.Log.Level,
		Format: b.cfg.Log.Format,
		Output: "stdout",
	}
	if cfg.Level == "" {
		cfg.Level = config.DefaultLogLevel
	}
	if cfg.Format == "" {
		cfg.Format = config.DefaultLogFormat
	}
	return apperrors.NewLogger(cfg)
}

// maxRequestSize 返回请求体大小上限（字节）
func (b *Builder) maxRequestSize() int64 {
	if b.cfg.HTTP.MaxRequestSizeMB <= 0 {
		return router.DefaultMaxRequestSize
	}
	return b.cfg.HTTP.MaxRequestSizeMB * 1024 * 1024
}
