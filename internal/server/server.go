package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mowind/txinsight-go/internal/config"
	apperrors "github.com/mowind/txinsight-go/internal/errors"
	"github.com/mowind/txinsight-go/internal/insight"
	"github.com/mowind/txinsight-go/internal/jsonrpc"
	"github.com/mowind/txinsight-go/internal/metrics"
	"github.com/mowind/txinsight-go/internal/router"
)

// Server 表示 HTTP 服务器
type Server struct {
	config        *config.Config
	router        *gin.Engine
	server        *http.Server
	logger        *logrus.Logger
	inspector     *insight.Inspector
	collector     *metrics.Collector
	jsonRPCRouter *router.Router

	// maxRequestSize REST 与 JSON-RPC 共用的请求体上限（字节）
	maxRequestSize int64
}

// New 按配置创建 HTTP 服务器
func New(cfg *config.Config) (*Server, error) {
	return NewBuilder(cfg).Build()
}

// Handler 返回服务器的 HTTP 处理器
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes 设置服务器路由
func (s *Server) setupRoutes() {
	// 健康检查端点
	s.router.GET("/health", s.healthHandler)
	s.router.GET("/ready", s.readyHandler)

	// 指标端点
	s.router.GET("/metrics", gin.WrapH(s.collector.Handler()))

	// REST 端点
	v1 := s.router.Group("/v1")
	v1.POST("/insights", s.insightsHandler)

	// JSON-RPC 端点
	s.router.POST("/", s.jsonRPCHandler)
}

// healthHandler 处理健康检查请求
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// readyHandler 处理就绪检查请求
func (s *Server) readyHandler(c *gin.Context) {
	if s.inspector == nil || s.jsonRPCRouter == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"directory": s.config.Directory.URL,
		"time":      time.Now().UTC().Format(time.RFC3339),
	})
}

// insightsHandler 处理 POST /v1/insights
func (s *Server) insightsHandler(c *gin.Context) {
	ctx := apperrors.NewContextWithOperation(c.Request.Context(), "insights")
	entry := apperrors.WithContext(s.logger, ctx)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxRequestSize)

	var req insight.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			entry.WithField("max_size_bytes", tooLarge.Limit).Warn("Insight request body too large")
			appErr := apperrors.Newf(apperrors.ErrorTypeValidation, jsonrpc.CodeInvalidParams,
				"Request body exceeds %d bytes", tooLarge.Limit).WithDetails(err.Error())
			s.writeErrorStatus(c, http.StatusRequestEntityTooLarge, appErr)
			return
		}
		entry.WithError(err).Warn("Failed to parse insight request")
		s.writeError(c, apperrors.Wrap(err, apperrors.ErrorTypeValidation, jsonrpc.CodeInvalidParams, "Request body must be a JSON object"))
		return
	}

	resp, err := s.inspector.OnTransaction(ctx, req)
	if err != nil {
		appErr := apperrors.ConvertError(err)
		// 调用方数据问题记为警告，查询失败和内部错误记为错误
		if apperrors.IsClientError(appErr) {
			entry.WithFields(apperrors.ErrorFields(appErr)).Warn("Transaction inspection rejected")
		} else {
			apperrors.LogError(entry, appErr, "Transaction inspection failed")
		}
		s.writeError(c, appErr)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// writeError 以统一的错误结构写出应用错误
func (s *Server) writeError(c *gin.Context, appErr *apperrors.AppError) {
	s.writeErrorStatus(c, appErr.HTTPStatus(), appErr)
}

func (s *Server) writeErrorStatus(c *gin.Context, status int, appErr *apperrors.AppError) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"type":    appErr.Type,
			"code":    appErr.Code,
			"message": appErr.Message,
			"details": appErr.Details,
		},
	})
}

// jsonRPCHandler 处理 JSON-RPC 请求
func (s *Server) jsonRPCHandler(c *gin.Context) {
	entry := apperrors.WithContext(s.logger, c.Request.Context())
	s.jsonRPCRouter.HandleHTTPRequestWithContext(c.Writer, c.Request, entry)
}

// Start 启动 HTTP 服务器
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.HTTP.Host, s.config.HTTP.Port)

	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.logger.WithFields(logrus.Fields{
		"host":      s.config.HTTP.Host,
		"port":      s.config.HTTP.Port,
		"directory": s.config.Directory.URL,
	}).Info("Starting HTTP server")

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Fatal("HTTP server error")
		}
	}()

	return nil
}

// Stop 优雅停止 HTTP 服务器
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		s.logger.Info("Shutting down HTTP server")
		return s.server.Shutdown(ctx)
	}
	return nil
}
