package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mowind/txinsight-go/internal/config"
	"github.com/mowind/txinsight-go/internal/directory/directorytest"
	"github.com/mowind/txinsight-go/internal/metrics"
)

const transferCallData = "0xa9059cbb" +
	"0000000000000000000000000000000000000000000000000000000000000abc" +
	"0000000000000000000000000000000000000000000000000000000000000064"

func testConfig(directoryURL string) *config.Config {
	return &config.Config{
		HTTP: config.HTTPConfig{Host: "localhost", Port: 9000},
		Directory: config.DirectoryConfig{
			URL:     directoryURL,
			Timeout: 5,
		},
		Auth: config.AuthConfig{Whitelist: []string{"/health", "/ready", "/metrics"}},
		Log:  config.LogConfig{Level: config.LogLevelError, Format: config.LogFormatText},
	}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	s, err := NewBuilder(cfg).WithLogger(quietLogger()).Build()
	require.NoError(t, err)
	return s
}

func newDirectoryServer(t *testing.T) *directorytest.Server {
	t.Helper()
	srv := directorytest.NewServer()
	t.Cleanup(srv.Close)
	return srv
}

func serve(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestBuilder_setGinMode(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
		expected string
	}{
		{
			name:     "debug mode",
			logLevel: config.LogLevelDebug,
			expected: gin.DebugMode,
		},
		{
			name:     "info mode",
			logLevel: config.LogLevelInfo,
			expected: gin.ReleaseMode,
		},
		{
			name:     "error mode",
			logLevel: config.LogLevelError,
			expected: gin.ReleaseMode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)

			cfg := &config.Config{
				Log: config.LogConfig{Level: tt.logLevel},
			}
			builder := NewBuilder(cfg)
			builder.setGinMode()

			if mode := gin.Mode(); mode != tt.expected {
				t.Errorf("Expected gin mode %s, got %s", tt.expected, mode)
			}
		})
	}
	gin.SetMode(gin.TestMode)
}

func TestBuilder_createLogger(t *testing.T) {
	logger, err := NewBuilder(&config.Config{}).createLogger()
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())

	logger, err = NewBuilder(&config.Config{
		Log: config.LogConfig{Level: config.LogLevelDebug, Format: config.LogFormatJSON},
	}).createLogger()
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	_, err = NewBuilder(&config.Config{Log: config.LogConfig{Level: "loud"}}).createLogger()
	assert.Error(t, err)
}

func TestBuilder_maxRequestSize(t *testing.T) {
	assert.Equal(t, int64(10*1024*1024), NewBuilder(&config.Config{}).maxRequestSize())
	assert.Equal(t, int64(2*1024*1024), NewBuilder(&config.Config{
		HTTP: config.HTTPConfig{MaxRequestSizeMB: 2},
	}).maxRequestSize())
}

func TestBuilder_Build(t *testing.T) {
	srv := newDirectoryServer(t)
	collector := metrics.NewCollector()

	s, err := NewBuilder(testConfig(srv.URL())).
		WithLogger(quietLogger()).
		WithMetrics(collector).
		Build()
	require.NoError(t, err)

	assert.NotNil(t, s.router)
	assert.NotNil(t, s.logger)
	assert.NotNil(t, s.inspector)
	assert.NotNil(t, s.jsonRPCRouter)
	assert.Same(t, collector, s.collector)
	assert.Len(t, s.jsonRPCRouter.GetRegisteredMethods(), 3)
}

func TestServer_healthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := newTestServer(t, testConfig(newDirectoryServer(t).URL()))

	w := serve(s, "GET", "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	response := make(map[string]interface{})
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response["status"])
}

func TestServer_readyHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := newDirectoryServer(t)
	s := newTestServer(t, testConfig(srv.URL()))

	w := serve(s, "GET", "/ready", "")
	require.Equal(t, http.StatusOK, w.Code)

	response := make(map[string]interface{})
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "ready", response["status"])
	assert.Equal(t, srv.URL(), response["directory"])

	s.inspector = nil
	w = serve(s, "GET", "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestServer_insightsHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := newDirectoryServer(t)
	srv.AddSignature("transfer(address,uint256)", "2016-07-09T03:58:28.234977Z")
	srv.AddCandidate("0xc2985578", "foo()", "2020-01-01T00:00:00Z")
	srv.AddCandidate("0x095ea7b3", "approve(address,uint256,bytes)", "2020-01-01T00:00:00Z")
	s := newTestServer(t, testConfig(srv.URL()))

	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedBody   string
		errorType      string
	}{
		{
			name:           "decoded transfer",
			body:           `{"transaction":{"data":"` + transferCallData + `"}}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"insights":{"type":"transfer(address,uint256)","params":["0x0000000000000000000000000000000000000abc","100"]}}`,
		},
		{
			name:           "no params",
			body:           `{"transaction":{"data":"0xc2985578"}}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"insights":{"type":"foo()","params":[]}}`,
		},
		{
			name:           "missing data",
			body:           `{"transaction":{"value":"0x1"}}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"insights":{"type":"Unknown Transaction"}}`,
		},
		{
			name:           "decode failure",
			body:           `{"transaction":{"data":"0x095ea7b3"}}`,
			expectedStatus: http.StatusUnprocessableEntity,
			errorType:      "DECODE_ERROR",
		},
		{
			name:           "body is not an object",
			body:           `[1,2,3]`,
			expectedStatus: http.StatusBadRequest,
			errorType:      "VALIDATION_ERROR",
		},
		{
			name:           "empty body",
			body:           ``,
			expectedStatus: http.StatusBadRequest,
			errorType:      "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(s, "POST", "/v1/insights", tt.body)
			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())

			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, w.Body.String())
				return
			}

			var body struct {
				Error struct {
					Type    string `json:"type"`
					Code    int    `json:"code"`
					Message string `json:"message"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.errorType, body.Error.Type)
			assert.NotEmpty(t, body.Error.Message)
		})
	}
}

func TestServer_insightsHandler_LookupFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := newDirectoryServer(t)
	srv.SetStatus(http.StatusServiceUnavailable)
	s := newTestServer(t, testConfig(srv.URL()))

	w := serve(s, "POST", "/v1/insights", `{"transaction":{"data":"`+transferCallData+`"}}`)
	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "LOOKUP_ERROR")
	assert.NotContains(t, w.Body.String(), "insights")
}

func TestServer_insightsHandler_BodyTooLarge(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := newDirectoryServer(t)
	cfg := testConfig(srv.URL())
	cfg.HTTP.MaxRequestSizeMB = 1
	s := newTestServer(t, cfg)

	padding := strings.Repeat("0", 1024*1024)
	oversized := `{"transaction":{"data":"` + transferCallData + padding + `"}}`

	w := serve(s, "POST", "/v1/insights", oversized)
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code, w.Body.String())

	var body struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION_ERROR", body.Error.Type)
	assert.Contains(t, body.Error.Message, "1048576")
	assert.Empty(t, srv.Requests(), "oversized body must not reach the directory")

	// 未超过上限的请求照常处理
	srv.AddSignature("transfer(address,uint256)", "2016-07-09T03:58:28.234977Z")
	w = serve(s, "POST", "/v1/insights", `{"transaction":{"data":"`+transferCallData+`"}}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(s, "POST", "/", `{"jsonrpc":"2.0","method":"txinsight_decodeCallData","params":[{"signature":"f()","data":"0x`+padding+`"}],"id":1}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestServer_insightsHandler_LogLevel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := newDirectoryServer(t)
	srv.AddCandidate("0x095ea7b3", "approve(address,uint256,bytes)", "2020-01-01T00:00:00Z")

	logger, hook := test.NewNullLogger()
	s, err := NewBuilder(testConfig(srv.URL())).WithLogger(logger).Build()
	require.NoError(t, err)

	levelOf := func(msg string) logrus.Level {
		for _, e := range hook.AllEntries() {
			if e.Message == msg {
				return e.Level
			}
		}
		t.Fatalf("no log entry %q", msg)
		return 0
	}

	w := serve(s, "POST", "/v1/insights", `{"transaction":{"data":"0x095ea7b3"}}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, logrus.WarnLevel, levelOf("Transaction inspection rejected"))

	srv.SetStatus(http.StatusServiceUnavailable)
	w = serve(s, "POST", "/v1/insights", `{"transaction":{"data":"`+transferCallData+`"}}`)
	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, logrus.ErrorLevel, levelOf("Transaction inspection failed"))
}

func TestServer_jsonRPCHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := newDirectoryServer(t)
	srv.AddSignature("transfer(address,uint256)", "2016-07-09T03:58:28.234977Z")
	s := newTestServer(t, testConfig(srv.URL()))

	t.Run("valid JSON-RPC request", func(t *testing.T) {
		body := `{"jsonrpc":"2.0","id":1,"method":"txinsight_onTransaction","params":[{"transaction":{"data":"` + transferCallData + `"}}]}`
		w := serve(s, "POST", "/", body)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var resp struct {
			Result json.RawMessage `json:"result"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.JSONEq(t, `{"insights":{"type":"transfer(address,uint256)","params":["0x0000000000000000000000000000000000000abc","100"]}}`, string(resp.Result))
	})

	t.Run("invalid JSON-RPC request", func(t *testing.T) {
		w := serve(s, "POST", "/", `{invalid json}`)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "-32700")
	})

	t.Run("unknown method", func(t *testing.T) {
		w := serve(s, "POST", "/", `{"jsonrpc":"2.0","id":1,"method":"eth_sign","params":[]}`)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "-32601")
	})

	t.Run("CORS preflight request", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/", nil)
		req.Header.Set("Origin", "https://wallet.example")
		req.Header.Set("Access-Control-Request-Method", "POST")
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestServer_metricsHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := newDirectoryServer(t)
	s := newTestServer(t, testConfig(srv.URL()))

	serve(s, "POST", "/v1/insights", `{"transaction":{"data":"0xdeadbeef"}}`)

	w := serve(s, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `txinsight_inspections_total{outcome="unknown"} 1`)
	assert.Contains(t, w.Body.String(), "txinsight_signature_lookups_total")
}

func TestServer_Auth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig(newDirectoryServer(t).URL())
	cfg.Auth.Enabled = true
	cfg.Auth.Secret = "test-secret"
	s := newTestServer(t, cfg)

	w := serve(s, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(s, "POST", "/v1/insights", `{"transaction":{}}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest("POST", "/v1/insights", bytes.NewReader([]byte(`{"transaction":{}}`)))
	req.Header.Set("X-API-Key", "test-secret")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_StartStop(t *testing.T) {
	cfg := testConfig(newDirectoryServer(t).URL())
	cfg.HTTP.Host = "127.0.0.1"
	cfg.HTTP.Port = 0
	s := newTestServer(t, cfg)

	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.Start())
	require.NoError(t, s.Stop(context.Background()))
}
