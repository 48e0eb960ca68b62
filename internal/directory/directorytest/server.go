// Package directorytest provides an in-process signature directory for tests.
package directorytest

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/mowind/txinsight-go/internal/abi"
	"github.com/mowind/txinsight-go/internal/directory"
)

// Server 模拟 4byte.directory 的签名查询接口
type Server struct {
	server     *httptest.Server
	mu         sync.RWMutex
	signatures map[string][]directory.Signature
	nextID     int64
	status     int
	delay      time.Duration
	requests   []string
}

// NewServer 创建并启动模拟签名目录
func NewServer() *Server {
	s := &Server{
		signatures: make(map[string][]directory.Signature),
		nextID:     1,
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.handleRequest))
	return s
}

// URL 返回查询地址
func (s *Server) URL() string {
	return s.server.URL + "/api/v1/signatures/"
}

// Close 关闭服务器
func (s *Server) Close() {
	s.server.Close()
}

// AddSignature 登记文本签名，选择器由签名计算得出
func (s *Server) AddSignature(text, createdAt string) directory.Signature {
	sel := abi.Selector(text)
	return s.AddCandidate("0x"+hex.EncodeToString(sel[:]), text, createdAt)
}

// AddCandidate 以指定选择器登记候选签名（可用于构造碰撞）
func (s *Server) AddCandidate(selector, text, createdAt string) directory.Signature {
	s.mu.Lock()
	defer s.mu.Unlock()

	selector = strings.ToLower(selector)
	sig := directory.Signature{
		ID:             s.nextID,
		CreatedAt:      createdAt,
		TextSignature:  text,
		HexSignature:   selector,
		BytesSignature: string(decodeHex(selector)),
	}
	s.nextID++
	s.signatures[selector] = append(s.signatures[selector], sig)
	return sig
}

// SetStatus 设置固定的失败状态码，0 表示正常响应
func (s *Server) SetStatus(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// SetDelay 设置响应延迟
func (s *Server) SetDelay(delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = delay
}

// Requests 返回已收到的 hex_signature 查询参数
func (s *Server) Requests() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestCount 返回已收到的请求数
func (s *Server) RequestCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.requests)
}

// handleRequest 处理查询请求
func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	selector := strings.ToLower(r.URL.Query().Get("hex_signature"))

	s.mu.Lock()
	s.requests = append(s.requests, selector)
	status := s.status
	delay := s.delay
	results := append([]directory.Signature{}, s.signatures[selector]...)
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	if status != 0 {
		http.Error(w, fmt.Sprintf("mock failure %d", status), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(directory.Page{
		Count:   len(results),
		Results: results,
	})
}

func decodeHex(s string) []byte {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil
	}
	return b
}
