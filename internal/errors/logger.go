package errors

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level        string `json:"level" yaml:"level"`
	Format       string `json:"format" yaml:"format"`
	Output       string `json:"output" yaml:"output"`
	EnableCaller bool   `json:"enable_caller" yaml:"enable_caller"`
}

// DefaultLoggerConfig 默认日志配置
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:        "info",
		Format:       "json",
		Output:       "stdout",
		EnableCaller: false,
	}
}

// NewLogger 创建 logrus 日志器
func NewLogger(config *LoggerConfig) (*logrus.Logger, error) {
	if config == nil {
		config = DefaultLoggerConfig()
	}

	logger := logrus.New()

	// 设置日志级别
	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %s: %w", config.Level, err)
	}
	logger.SetLevel(level)

	// 设置格式化器
	formatter, err := createFormatter(config.Format, config.EnableCaller)
	if err != nil {
		return nil, fmt.Errorf("failed to create formatter: %w", err)
	}
	logger.SetFormatter(formatter)
	logger.SetReportCaller(config.EnableCaller)

	// 设置输出
	output, err := createOutput(config.Output)
	if err != nil {
		return nil, fmt.Errorf("failed to create output: %w", err)
	}
	logger.SetOutput(output)

	return logger, nil
}

// createFormatter 创建格式化器
func createFormatter(format string, enableCaller bool) (logrus.Formatter, error) {
	switch strings.ToLower(format) {
	case "json":
		return &logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			CallerPrettyfier: func(f *runtime.Frame) (string, string) {
				if !enableCaller {
					return "", ""
				}
				// 简化调用者信息
				filename := f.File
				if idx := strings.LastIndex(filename, "/"); idx >= 0 {
					filename = filename[idx+1:]
				}
				return fmt.Sprintf("%s:%d", filename, f.Line), f.Function
			},
		}, nil
	case "text":
		return &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339Nano,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported log format: %s", format)
	}
}

// createOutput 创建输出
func createOutput(output string) (io.Writer, error) {
	switch strings.ToLower(output) {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		// 尝试作为文件路径
		// #nosec G304 - 日志文件路径来自配置，不是用户输入
		file, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", output, err)
		}
		return file, nil
	}
}

// WithContext 返回带有请求ID和操作名称字段的日志条目
func WithContext(logger *logrus.Logger, ctx context.Context) *logrus.Entry {
	entry := logrus.NewEntry(logger)
	if requestID := GetRequestID(ctx); requestID != "" {
		entry = entry.WithField("request_id", requestID)
	}
	if operation := GetOperation(ctx); operation != "" {
		entry = entry.WithField("operation", operation)
	}
	return entry
}

// ErrorFields 返回错误的结构化日志字段
func ErrorFields(err error) logrus.Fields {
	appErr := ConvertError(err)
	if appErr == nil {
		return logrus.Fields{}
	}

	fields := logrus.Fields{
		"error_type":    string(appErr.Type),
		"error_code":    appErr.Code,
		"error_message": appErr.Message,
	}
	if appErr.Details != "" {
		fields["error_details"] = appErr.Details
	}
	for k, v := range appErr.Context {
		fields[fmt.Sprintf("context_%s", k)] = v
	}
	return fields
}

// LogError 以错误级别记录应用错误
func LogError(entry *logrus.Entry, err error, msg string) {
	entry.WithFields(ErrorFields(err)).Error(msg)
}
