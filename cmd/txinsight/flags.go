package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mowind/txinsight-go/internal/config"
)

// Flag 定义命令行标志
type Flag struct {
	Name         string
	DefaultValue interface{}
	Description  string
	BindTo       string // viper 键名
	Required     bool
}

// flags 定义所有命令行标志
var flags = []Flag{
	// HTTP 服务器配置
	{
		Name:         "http-host",
		DefaultValue: config.DefaultHTTPHost,
		Description:  "HTTP server host",
		BindTo:       "http.host",
	},
	{
		Name:         "http-port",
		DefaultValue: config.DefaultHTTPPort,
		Description:  "HTTP server port",
		BindTo:       "http.port",
	},
	{
		Name:         "http-max-request-size-mb",
		DefaultValue: config.DefaultMaxRequestSizeMB,
		Description:  "Maximum request body size in MB",
		BindTo:       "http.max-request-size-mb",
	},

	// 签名目录服务配置
	{
		Name:         "directory-url",
		DefaultValue: config.DefaultDirectoryURL,
		Description:  "Signature directory lookup URL",
		BindTo:       "directory.url",
	},
	{
		Name:         "directory-timeout",
		DefaultValue: config.DefaultDirectoryTimeout,
		Description:  "Signature directory request timeout in seconds (0 disables)",
		BindTo:       "directory.timeout",
	},
	{
		Name:         "directory-retries",
		DefaultValue: config.DefaultDirectoryRetries,
		Description:  "Extra attempts after a retryable lookup failure",
		BindTo:       "directory.retries",
	},
	{
		Name:         "directory-retry-backoff-ms",
		DefaultValue: config.DefaultDirectoryRetryBackoffMS,
		Description:  "Delay between lookup retries in milliseconds",
		BindTo:       "directory.retry-backoff-ms",
	},

	// 认证配置
	{
		Name:         "auth-enabled",
		DefaultValue: false,
		Description:  "Require a Bearer token or X-API-Key header",
		BindTo:       "auth.enabled",
	},
	{
		Name:         "auth-secret",
		DefaultValue: "",
		Description:  "Shared secret for authentication",
		BindTo:       "auth.secret",
	},
	{
		Name:         "auth-whitelist",
		DefaultValue: config.DefaultAuthWhitelist,
		Description:  "Comma separated path prefixes that skip authentication",
		BindTo:       "auth.whitelist",
	},

	// 日志配置
	{
		Name:         "log-level",
		DefaultValue: config.DefaultLogLevel,
		Description:  "Log level (debug, info, warn, error, fatal)",
		BindTo:       "log.level",
	},
	{
		Name:         "log-format",
		DefaultValue: config.DefaultLogFormat,
		Description:  "Log format (json, text)",
		BindTo:       "log.format",
	},
}

// registerFlags 注册所有命令行标志
//
// 标志注册为持久标志，子命令（如 inspect）同样可用。
func registerFlags(cmd *cobra.Command, v *viper.Viper) error {
	fs := cmd.PersistentFlags()
	for _, flag := range flags {
		// 根据类型添加标志
		switch val := flag.DefaultValue.(type) {
		case string:
			fs.String(flag.Name, val, flag.Description)
		case int:
			fs.Int(flag.Name, val, flag.Description)
		case int64:
			fs.Int64(flag.Name, val, flag.Description)
		case bool:
			fs.Bool(flag.Name, val, flag.Description)
		default:
			return fmt.Errorf("unsupported flag type: %T for flag %s", val, flag.Name)
		}

		// 绑定到 viper
		if err := v.BindPFlag(flag.BindTo, fs.Lookup(flag.Name)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flag.Name, err)
		}

		// 标记必需标志
		if flag.Required {
			if err := cmd.MarkPersistentFlagRequired(flag.Name); err != nil {
				return fmt.Errorf("failed to mark flag %s required: %w", flag.Name, err)
			}
		}
	}

	return nil
}
