package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config 表示应用程序的完整配置
type Config struct {
	// HTTP 服务器配置
	HTTP HTTPConfig `mapstructure:"http"`

	// 签名目录服务配置
	Directory DirectoryConfig `mapstructure:"directory"`

	// 认证配置
	Auth AuthConfig `mapstructure:"auth"`

	// 日志配置
	Log LogConfig `mapstructure:"log"`
}

// HTTPConfig 定义 HTTP 服务器配置
type HTTPConfig struct {
	Host             string `mapstructure:"host"`
	Port             int    `mapstructure:"port"`
	MaxRequestSizeMB int64  `mapstructure:"max-request-size-mb"`
}

// Validate 验证 HTTP 配置
func (c *HTTPConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("http-host is required")
	}
	if c.Port <= 0 || c.Port > MaxPort {
		return fmt.Errorf("http-port must be between 1 and %d", MaxPort)
	}
	if c.MaxRequestSizeMB < 0 {
		return fmt.Errorf("http-max-request-size-mb must not be negative")
	}
	if c.MaxRequestSizeMB == 0 {
		c.MaxRequestSizeMB = DefaultMaxRequestSizeMB
	}
	return nil
}

// DirectoryConfig 定义签名目录服务配置
type DirectoryConfig struct {
	URL            string `mapstructure:"url"`              // 查询地址，如 https://www.4byte.directory/api/v1/signatures/
	Timeout        int    `mapstructure:"timeout"`          // 请求超时（秒），0 表示不限制
	Retries        int    `mapstructure:"retries"`          // 额外重试次数，默认 0（只请求一次）
	RetryBackoffMS int    `mapstructure:"retry-backoff-ms"` // 重试间隔（毫秒）
}

// Validate 验证签名目录服务配置
func (c *DirectoryConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("directory-url is required")
	}
	if !strings.HasPrefix(c.URL, "http://") && !strings.HasPrefix(c.URL, "https://") {
		return fmt.Errorf("directory-url must start with http:// or https://")
	}
	if _, err := url.Parse(c.URL); err != nil {
		return fmt.Errorf("directory-url is invalid: %w", err)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("directory-timeout must not be negative")
	}
	if c.Retries < 0 || c.Retries > MaxDirectoryRetries {
		return fmt.Errorf("directory-retries must be between 0 and %d", MaxDirectoryRetries)
	}
	if c.RetryBackoffMS < 0 {
		return fmt.Errorf("directory-retry-backoff-ms must not be negative")
	}
	return nil
}

// TimeoutDuration 返回请求超时时长
func (c *DirectoryConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// RetryBackoff 返回重试间隔
func (c *DirectoryConfig) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffMS) * time.Millisecond
}

// AuthConfig 定义认证配置
type AuthConfig struct {
	Enabled   bool     `mapstructure:"enabled"`
	Secret    string   `mapstructure:"secret"`
	Whitelist []string `mapstructure:"whitelist"` // 无需认证的路径前缀
}

// Validate 验证认证配置
func (c *AuthConfig) Validate() error {
	if c.Enabled && c.Secret == "" {
		return fmt.Errorf("auth-secret is required when auth is enabled")
	}
	return nil
}

// LogConfig 定义日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Validate 验证日志配置
func (c *LogConfig) Validate() error {
	if !validLogLevels[strings.ToLower(c.Level)] {
		return fmt.Errorf("log-level must be one of: debug, info, warn, error, fatal, got: %s", c.Level)
	}
	if !validLogFormats[strings.ToLower(c.Format)] {
		return fmt.Errorf("log-format must be one of: json, text, got: %s", c.Format)
	}
	return nil
}

// Validate 验证配置是否有效
func (c *Config) Validate() error {
	// 设置默认值
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}

	// 验证所有子配置
	validators := []Validator{&c.HTTP, &c.Directory, &c.Auth, &c.Log}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// String 返回配置的安全摘要（不包含敏感信息）
func (c *Config) String() string {
	return fmt.Sprintf(
		"HTTP: {Host: %s, Port: %d}, "+
			"Directory: {URL: %s, Timeout: %ds, Retries: %d}, "+
			"Auth: {Enabled: %t, Secret: [REDACTED]}, "+
			"Log: {Level: %s, Format: %s}",
		c.HTTP.Host, c.HTTP.Port,
		c.Directory.URL, c.Directory.Timeout, c.Directory.Retries,
		c.Auth.Enabled,
		c.Log.Level, c.Log.Format,
	)
}
