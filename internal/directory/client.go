// Package directory resolves 4-byte function selectors to text signatures
// using a 4byte.directory compatible HTTP service.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/mowind/txinsight-go/internal/config"
	"github.com/mowind/txinsight-go/internal/utils"
	"github.com/sirupsen/logrus"
)

// maxErrorBodyBytes 错误响应体在错误信息中保留的最大长度
const maxErrorBodyBytes = 512

// Client 表示签名目录服务客户端
type Client struct {
	config     *config.DirectoryConfig
	httpClient *http.Client
	logger     *logrus.Logger
	observer   Observer
}

// NewClient 创建新的签名目录服务客户端
func NewClient(cfg *config.DirectoryConfig, logger *logrus.Logger) *Client {
	if logger == nil {
		logger = logrus.New()
	}
	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout:   cfg.TimeoutDuration(),
			Transport: utils.CreateTransport(100, 90*time.Second),
		},
		logger: logger,
	}
}

// SetObserver 设置查询观测器
func (c *Client) SetObserver(o Observer) {
	c.observer = o
}

// GetEndpoint 获取签名目录查询地址
func (c *Client) GetEndpoint() string {
	return c.config.URL
}

// Resolve 将选择器解析为最早登记的文本签名
func (c *Client) Resolve(ctx context.Context, selector string) (string, bool, error) {
	start := time.Now()

	candidates, err := c.Lookup(ctx, selector)
	if err != nil {
		c.observe(StatusLookupError, start)
		return "", false, err
	}

	best, ok := SelectEarliest(candidates)
	if !ok || best.TextSignature == "" {
		c.observe(StatusNotFound, start)
		return "", false, nil
	}

	c.logger.WithFields(logrus.Fields{
		"selector":   utils.Add0x(selector),
		"signature":  best.TextSignature,
		"candidates": len(candidates),
	}).Debug("Resolved selector")

	c.observe(StatusFound, start)
	return best.TextSignature, true, nil
}

// Lookup 查询选择器的全部候选签名
//
// 默认只请求一次；配置了重试次数时，仅对连接失败和 5xx 响应重试。
func (c *Client) Lookup(ctx context.Context, selector string) ([]Signature, error) {
	endpoint, err := c.buildURL(selector)
	if err != nil {
		return nil, err
	}

	attempts := 1 + c.config.Retries
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		page, err := c.fetch(ctx, endpoint)
		if err == nil {
			return page.Results, nil
		}
		lastErr = err

		if attempt == attempts || !IsRetryable(err) {
			break
		}

		c.logger.WithFields(logrus.Fields{
			"selector": utils.Add0x(selector),
			"attempt":  attempt,
		}).WithError(err).Warn("Signature lookup failed, retrying")

		select {
		case <-ctx.Done():
			return nil, TimeoutError(ctx.Err())
		case <-time.After(c.config.RetryBackoff()):
		}
	}

	return nil, lastErr
}

// buildURL 构建带 hex_signature 参数的查询地址
func (c *Client) buildURL(selector string) (string, error) {
	u, err := url.Parse(c.config.URL)
	if err != nil {
		return "", WrapError(err, ErrorCodeRequestFailed, "invalid directory url")
	}
	q := u.Query()
	q.Set("hex_signature", utils.Add0x(selector))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// fetch 执行一次查询请求
func (c *Client) fetch(ctx context.Context, endpoint string) (*Page, error) {
	// 创建HTTP请求
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, WrapError(err, ErrorCodeRequestFailed, "failed to create HTTP request")
	}

	// 设置请求头
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	// 执行请求
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, TimeoutError(err)
		}
		return nil, ConnectionError(err)
	}
	defer resp.Body.Close()

	// 读取响应体
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, WrapError(err, ErrorCodeInvalidResponse, "failed to read response body")
	}

	// 检查HTTP状态码
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body := string(respBody)
		if len(body) > maxErrorBodyBytes {
			body = body[:maxErrorBodyBytes]
		}
		return nil, StatusError(resp.StatusCode, body)
	}

	// 解析分页结果
	var page Page
	if err := json.Unmarshal(respBody, &page); err != nil {
		return nil, InvalidResponseError(err)
	}
	if page.Results == nil {
		return nil, InvalidResponseError(fmt.Errorf("response has no results field"))
	}

	return &page, nil
}

// observe 上报一次查询结果
func (c *Client) observe(status string, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveLookup(status, time.Since(start))
	}
}

// isTimeout 判断请求错误是否由超时引起
func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
