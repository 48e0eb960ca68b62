package config

import (
	"strings"
	"testing"
	"time"
)

func TestHTTPConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  HTTPConfig
		wantErr bool
	}{
		{
			name: "valid config",
			config: HTTPConfig{
				Host: "localhost",
				Port: 8080,
			},
			wantErr: false,
		},
		{
			name: "empty host",
			config: HTTPConfig{
				Host: "",
				Port: 8080,
			},
			wantErr: true,
		},
		{
			name: "port too low",
			config: HTTPConfig{
				Host: "localhost",
				Port: 0,
			},
			wantErr: true,
		},
		{
			name: "port too high",
			config: HTTPConfig{
				Host: "localhost",
				Port: MaxPort + 1,
			},
			wantErr: true,
		},
		{
			name: "negative request size",
			config: HTTPConfig{
				Host:             "localhost",
				Port:             8080,
				MaxRequestSizeMB: -1,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("HTTPConfig.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestHTTPConfig_DefaultRequestSize(t *testing.T) {
	cfg := HTTPConfig{Host: "localhost", Port: 8080}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("HTTPConfig.Validate() error = %v", err)
	}
	if cfg.MaxRequestSizeMB != DefaultMaxRequestSizeMB {
		t.Errorf("expected max request size %d, got %d", DefaultMaxRequestSizeMB, cfg.MaxRequestSizeMB)
	}
}

func TestDirectoryConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  DirectoryConfig
		wantErr bool
	}{
		{
			name: "valid config",
			config: DirectoryConfig{
				URL:     DefaultDirectoryURL,
				Timeout: DefaultDirectoryTimeout,
			},
			wantErr: false,
		},
		{
			name: "no timeout",
			config: DirectoryConfig{
				URL: "http://localhost:8000/api/v1/signatures/",
			},
			wantErr: false,
		},
		{
			name:    "missing url",
			config:  DirectoryConfig{},
			wantErr: true,
		},
		{
			name: "url without scheme",
			config: DirectoryConfig{
				URL: "www.4byte.directory/api/v1/signatures/",
			},
			wantErr: true,
		},
		{
			name: "negative timeout",
			config: DirectoryConfig{
				URL:     DefaultDirectoryURL,
				Timeout: -1,
			},
			wantErr: true,
		},
		{
			name: "too many retries",
			config: DirectoryConfig{
				URL:     DefaultDirectoryURL,
				Retries: MaxDirectoryRetries + 1,
			},
			wantErr: true,
		},
		{
			name: "negative backoff",
			config: DirectoryConfig{
				URL:            DefaultDirectoryURL,
				RetryBackoffMS: -5,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("DirectoryConfig.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDirectoryConfig_Durations(t *testing.T) {
	cfg := DirectoryConfig{Timeout: 30, RetryBackoffMS: 200}
	if got := cfg.TimeoutDuration(); got != 30*time.Second {
		t.Errorf("TimeoutDuration() = %v, want 30s", got)
	}
	if got := cfg.RetryBackoff(); got != 200*time.Millisecond {
		t.Errorf("RetryBackoff() = %v, want 200ms", got)
	}
}

func TestAuthConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  AuthConfig
		wantErr bool
	}{
		{"disabled", AuthConfig{}, false},
		{"enabled with secret", AuthConfig{Enabled: true, Secret: "s3cret"}, false},
		{"enabled without secret", AuthConfig{Enabled: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("AuthConfig.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLogConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  LogConfig
		wantErr bool
	}{
		{
			name:    "valid debug",
			config:  LogConfig{Level: LogLevelDebug, Format: LogFormatText},
			wantErr: false,
		},
		{
			name:    "valid info json",
			config:  LogConfig{Level: LogLevelInfo, Format: LogFormatJSON},
			wantErr: false,
		},
		{
			name:    "invalid level",
			config:  LogConfig{Level: "invalid", Format: LogFormatText},
			wantErr: true,
		},
		{
			name:    "invalid format",
			config:  LogConfig{Level: LogLevelInfo, Format: "xml"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("LogConfig.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	validConfig := Config{
		HTTP: HTTPConfig{
			Host: "localhost",
			Port: 9000,
		},
		Directory: DirectoryConfig{
			URL:     DefaultDirectoryURL,
			Timeout: DefaultDirectoryTimeout,
		},
		Log: LogConfig{Level: LogLevelInfo, Format: LogFormatJSON},
	}

	t.Run("valid config", func(t *testing.T) {
		cfg := validConfig
		if err := cfg.Validate(); err != nil {
			t.Errorf("Config.Validate() error = %v", err)
		}
	})

	t.Run("sets default log level and format", func(t *testing.T) {
		cfg := validConfig
		cfg.Log = LogConfig{}
		if err := cfg.Validate(); err != nil {
			t.Errorf("Config.Validate() error = %v", err)
		}
		if cfg.Log.Level != DefaultLogLevel {
			t.Errorf("expected log level %s, got %s", DefaultLogLevel, cfg.Log.Level)
		}
		if cfg.Log.Format != DefaultLogFormat {
			t.Errorf("expected log format %s, got %s", DefaultLogFormat, cfg.Log.Format)
		}
	})

	t.Run("invalid http config", func(t *testing.T) {
		cfg := validConfig
		cfg.HTTP.Host = ""
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for invalid http config")
		}
	})

	t.Run("invalid directory config", func(t *testing.T) {
		cfg := validConfig
		cfg.Directory.URL = ""
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for invalid directory config")
		}
	})

	t.Run("invalid auth config", func(t *testing.T) {
		cfg := validConfig
		cfg.Auth = AuthConfig{Enabled: true}
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for invalid auth config")
		}
	})
}

func TestConfig_StringRedactsSecret(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{Host: "localhost", Port: 9000},
		Directory: DirectoryConfig{URL: DefaultDirectoryURL, Timeout: 30},
		Auth:      AuthConfig{Enabled: true, Secret: "very-secret-key"},
		Log:       LogConfig{Level: LogLevelInfo, Format: LogFormatText},
	}

	s := cfg.String()
	if strings.Contains(s, "very-secret-key") {
		t.Errorf("String() leaked secret: %s", s)
	}
	if !strings.Contains(s, "[REDACTED]") {
		t.Errorf("String() should mark secret as redacted: %s", s)
	}
	if !strings.Contains(s, DefaultDirectoryURL) {
		t.Errorf("String() should include directory url: %s", s)
	}
}
